// Package train builds weighted n-gram models from corpus text.
package train

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"unicode/utf8"

	"github.com/verte-zerg/codeswitch/internal/corpus"
	"github.com/verte-zerg/codeswitch/internal/ngram"
	"github.com/verte-zerg/codeswitch/internal/weights"
)

const (
	DefaultK              = 500
	DefaultProbExponent   = 0.27
	DefaultLengthExponent = 0.09
)

var (
	// ErrEmptyCorpus is returned when training text is empty.
	ErrEmptyCorpus = errors.New("empty corpus")
	// ErrInvalidK is returned when the top-K cutoff is below 1.
	ErrInvalidK = errors.New("k must be at least 1")
)

// Options control single-language training.
type Options struct {
	K              int
	ProbExponent   float64
	LengthExponent float64
	Extract        ngram.Options
	// NFC normalizes corpora read from disk.
	NFC bool
}

// DefaultOptions returns the standard training parameters.
func DefaultOptions() Options {
	return Options{
		K:              DefaultK,
		ProbExponent:   DefaultProbExponent,
		LengthExponent: DefaultLengthExponent,
		Extract:        ngram.DefaultOptions(),
	}
}

// Report summarizes one training run.
type Report struct {
	Distinct   int
	AfterTopK  int
	AfterPrune int
}

func (r Report) String() string {
	return fmt.Sprintf("%d distinct n-grams, %d after top-k, %d after pruning", r.Distinct, r.AfterTopK, r.AfterPrune)
}

type entry struct {
	gram   string
	weight float64
	length int
}

// Weigh extracts n-grams from text and weights every distinct one as
// (f/bytes)^ProbExponent * length^LengthExponent. No truncation is applied.
func Weigh(text string, opts Options) (map[string]float64, error) {
	if text == "" {
		return nil, ErrEmptyCorpus
	}
	table, err := ngram.ExtractWith(text, opts.Extract)
	if err != nil {
		return nil, err
	}
	total := float64(len(text))
	out := make(map[string]float64, len(table))
	for g, f := range table {
		length := float64(utf8.RuneCountInString(g))
		out[g] = math.Pow(float64(f)/total, opts.ProbExponent) * math.Pow(length, opts.LengthExponent)
	}
	return out, nil
}

// Train builds a model from text: weigh, keep the top K, prune, round.
func Train(text string, opts Options) (*weights.Model, Report, error) {
	if opts.K < 1 {
		return nil, Report{}, fmt.Errorf("%w: got %d", ErrInvalidK, opts.K)
	}
	raw, err := Weigh(text, opts)
	if err != nil {
		return nil, Report{}, err
	}
	model, report, err := Finalize(raw, opts.K)
	if err != nil {
		return nil, Report{}, err
	}
	return model, report, nil
}

// Finalize drops non-positive weights, keeps the K heaviest n-grams, removes
// n-grams contained in a longer kept n-gram and rounds the rest.
func Finalize(raw map[string]float64, k int) (*weights.Model, Report, error) {
	if k < 1 {
		return nil, Report{}, fmt.Errorf("%w: got %d", ErrInvalidK, k)
	}
	entries := make([]entry, 0, len(raw))
	for g, w := range raw {
		if w <= 0 {
			continue
		}
		entries = append(entries, entry{gram: g, weight: w, length: utf8.RuneCountInString(g)})
	}
	report := Report{Distinct: len(raw)}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].weight != entries[j].weight {
			return entries[i].weight > entries[j].weight
		}
		return entries[i].gram < entries[j].gram
	})
	if len(entries) > k {
		entries = entries[:k]
	}
	report.AfterTopK = len(entries)

	kept := prune(entries)
	report.AfterPrune = len(kept)

	out := make(map[string]float64, len(kept))
	for _, e := range kept {
		out[e.gram] = weights.Round(e.weight)
	}
	return weights.New(out), report, nil
}

// prune walks entries longest first and drops any n-gram that occurs inside
// an already accepted, strictly longer one.
func prune(entries []entry) []entry {
	ordered := make([]entry, len(entries))
	copy(ordered, entries)
	sort.Slice(ordered, func(i, j int) bool {
		a, b := ordered[i], ordered[j]
		if a.length != b.length {
			return a.length > b.length
		}
		if a.weight != b.weight {
			return a.weight > b.weight
		}
		return a.gram < b.gram
	})

	// covered holds every proper substring of the accepted n-grams.
	covered := make(map[string]struct{})
	accepted := make([]entry, 0, len(ordered))
	for _, e := range ordered {
		if _, ok := covered[e.gram]; ok {
			continue
		}
		accepted = append(accepted, e)
		runes := []rune(e.gram)
		for i := range runes {
			for j := i + 1; j <= len(runes); j++ {
				if j-i < len(runes) {
					covered[string(runes[i:j])] = struct{}{}
				}
			}
		}
	}
	return accepted
}

// TrainFile trains on the corpus at corpusPath and writes the model to
// outPath. Nothing is written when reading or training fails.
func TrainFile(corpusPath, outPath string, opts Options) (Report, error) {
	text, err := corpus.Load(corpusPath, corpus.LoadOptions{NFC: opts.NFC})
	if err != nil {
		return Report{}, err
	}
	if text == "" {
		return Report{}, fmt.Errorf("%w: %s", ErrEmptyCorpus, corpusPath)
	}
	model, report, err := Train(text, opts)
	if err != nil {
		return Report{}, err
	}
	if err := weights.Save(outPath, model); err != nil {
		return Report{}, err
	}
	return report, nil
}
