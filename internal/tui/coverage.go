package tui

import (
	"github.com/verte-zerg/codeswitch/internal/ngram"
	"github.com/verte-zerg/codeswitch/internal/weights"
)

type lang uint8

const (
	langNone lang = iota
	langES
	langEN
	langShared
)

// coverage attributes each rune to the model whose n-grams cover it with
// more total weight.
func coverage(runes []rune, es, en *weights.Model, opts ngram.Options) []lang {
	out := make([]lang, len(runes))
	if len(runes) == 0 {
		return out
	}
	spans, err := ngram.Spans(runes, opts)
	if err != nil {
		return out
	}
	esWeight := make([]float64, len(runes))
	enWeight := make([]float64, len(runes))
	for _, s := range spans {
		if w, ok := es.Weight(s.Gram); ok {
			for i := s.Start; i < s.End; i++ {
				esWeight[i] += w
			}
		}
		if w, ok := en.Weight(s.Gram); ok {
			for i := s.Start; i < s.End; i++ {
				enWeight[i] += w
			}
		}
	}
	for i := range out {
		switch {
		case esWeight[i] == 0 && enWeight[i] == 0:
			out[i] = langNone
		case esWeight[i] > enWeight[i]:
			out[i] = langES
		case enWeight[i] > esWeight[i]:
			out[i] = langEN
		default:
			out[i] = langShared
		}
	}
	return out
}
