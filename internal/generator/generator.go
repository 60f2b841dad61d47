// Package generator builds synthetic code-switched sentences for threshold
// calibration.
package generator

import (
	"math/rand"
	"strings"
	"time"
	"unicode"
)

// Category labels a generated sample.
type Category string

const (
	// Pure samples draw every word from the base vocabulary.
	Pure Category = "pure"
	// Borrowed samples mix in a few foreign words.
	Borrowed Category = "borrowed"
	// Mixed samples switch language freely.
	Mixed Category = "mixed"
)

// Sample is one generated sentence.
type Sample struct {
	Text     string
	Category Category
	// Share is the fraction of words taken from the secondary vocabulary.
	Share float64
	// Base is "es" or "en", the vocabulary the sentence starts from.
	Base string
}

// Generator produces randomized sentences.
type Generator struct {
	rnd *rand.Rand
}

// New returns a Generator seeded with the current time.
func New() *Generator {
	return NewSeeded(time.Now().UnixNano())
}

// NewSeeded returns a Generator with a fixed seed.
func NewSeeded(seed int64) *Generator {
	return &Generator{rnd: rand.New(rand.NewSource(seed))}
}

// Sentence picks count words, each from secondary with probability share,
// capitalizes the first one and ends it with a period.
func (g *Generator) Sentence(primary, secondary []string, count int, share float64) string {
	if count <= 0 || len(primary) == 0 {
		return ""
	}
	words := make([]string, 0, count)
	for i := 0; i < count; i++ {
		source := primary
		if len(secondary) > 0 && g.rnd.Float64() < share {
			source = secondary
		}
		words = append(words, source[g.rnd.Intn(len(source))])
	}
	words[0] = capitalize(words[0])
	return strings.Join(words, " ") + "."
}

// Samples returns n sentences per category, alternating which vocabulary
// is the base language.
func (g *Generator) Samples(es, en []string, n, words int) []Sample {
	shares := []struct {
		category Category
		share    float64
	}{
		{Pure, 0},
		{Borrowed, 0.15},
		{Mixed, 0.5},
	}
	samples := make([]Sample, 0, n*len(shares))
	for _, s := range shares {
		for i := 0; i < n; i++ {
			primary, secondary, base := es, en, "es"
			if i%2 == 1 {
				primary, secondary, base = en, es, "en"
			}
			samples = append(samples, Sample{
				Text:     g.Sentence(primary, secondary, words, s.share),
				Category: s.category,
				Share:    s.share,
				Base:     base,
			})
		}
	}
	return samples
}

func capitalize(word string) string {
	runes := []rune(word)
	if len(runes) == 0 {
		return word
	}
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
