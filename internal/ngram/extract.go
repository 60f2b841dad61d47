// Package ngram extracts overlapping character n-grams from raw text.
package ngram

import (
	"errors"
	"fmt"
	"unicode"
)

const (
	// DefaultMinN is the shortest n-gram length used for training and detection.
	DefaultMinN = 3
	// DefaultMaxN is the longest n-gram length used for training and detection.
	DefaultMaxN = 6
)

// ErrInvalidRange is returned when the requested length range is unusable.
var ErrInvalidRange = errors.New("invalid n-gram range")

// Table maps an n-gram to its occurrence count within one text.
type Table map[string]int

// Set holds distinct n-grams.
type Set map[string]struct{}

// Options configures extraction.
type Options struct {
	MinN        int
	MaxN        int
	FilterNoise bool
}

// DefaultOptions returns the 3..6 range with noise filtering enabled.
func DefaultOptions() Options {
	return Options{MinN: DefaultMinN, MaxN: DefaultMaxN, FilterNoise: true}
}

// Extract counts every substring of length minN..maxN of text, sliding one
// rune at a time. Noisy candidates are skipped when filter is set.
func Extract(text string, minN, maxN int, filter bool) (Table, error) {
	if text == "" {
		return Table{}, nil
	}
	if minN < 1 || maxN < minN {
		return nil, fmt.Errorf("%w: min=%d max=%d (need 1 <= min <= max)", ErrInvalidRange, minN, maxN)
	}

	table := make(Table)
	walk([]rune(text), minN, maxN, filter, func(_ int, window []rune) {
		table[string(window)]++
	})
	return table, nil
}

// ExtractWith is Extract driven by Options.
func ExtractWith(text string, opts Options) (Table, error) {
	return Extract(text, opts.MinN, opts.MaxN, opts.FilterNoise)
}

// Span is one extracted window and its rune offsets.
type Span struct {
	Start int
	End   int
	Gram  string
}

// Spans lists the windows Extract would count, in position order per
// length, keeping duplicates.
func Spans(runes []rune, opts Options) ([]Span, error) {
	if opts.MinN < 1 || opts.MaxN < opts.MinN {
		return nil, fmt.Errorf("%w: min=%d max=%d (need 1 <= min <= max)", ErrInvalidRange, opts.MinN, opts.MaxN)
	}
	var spans []Span
	walk(runes, opts.MinN, opts.MaxN, opts.FilterNoise, func(start int, window []rune) {
		spans = append(spans, Span{Start: start, End: start + len(window), Gram: string(window)})
	})
	return spans, nil
}

func walk(runes []rune, minN, maxN int, filter bool, visit func(start int, window []rune)) {
	for n := minN; n <= maxN; n++ {
		for i := 0; i+n <= len(runes); i++ {
			window := runes[i : i+n]
			if filter && isNoise(window) {
				continue
			}
			visit(i, window)
		}
	}
}

// Keys returns the distinct n-grams of the table.
func (t Table) Keys() Set {
	set := make(Set, len(t))
	for k := range t {
		set[k] = struct{}{}
	}
	return set
}

// Total returns the number of counted windows.
func (t Table) Total() int {
	total := 0
	for _, c := range t {
		total += c
	}
	return total
}

// WindowCount returns how many windows an unfiltered extraction visits over a
// text of runeLen runes.
func WindowCount(runeLen, minN, maxN int) int {
	total := 0
	for n := minN; n <= maxN; n++ {
		if runeLen-n+1 > 0 {
			total += runeLen - n + 1
		}
	}
	return total
}

func isNoise(window []rune) bool {
	if unicode.IsSpace(window[0]) {
		return true
	}
	digitRun := 0
	sameRun := 0
	hasWord := false
	for i, r := range window {
		if unicode.IsDigit(r) {
			digitRun++
			if digitRun >= 3 {
				return true
			}
		} else {
			digitRun = 0
		}
		if i > 0 && r == window[i-1] {
			sameRun++
			if sameRun >= 3 {
				return true
			}
		} else {
			sameRun = 1
		}
		if isWordRune(r) {
			hasWord = true
		}
	}
	return !hasWord
}

// isWordRune mirrors the \w class: letters, numbers and underscore.
func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsNumber(r)
}
