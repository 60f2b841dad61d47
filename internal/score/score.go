// Package score measures how well a set of n-grams matches a weight model.
package score

import (
	"math"

	"github.com/verte-zerg/codeswitch/internal/ngram"
	"github.com/verte-zerg/codeswitch/internal/weights"
)

// Score is the result of scoring one n-gram set against one model.
type Score struct {
	Matches    int
	SumWeights float64
	Cosine     float64
}

// Against scores query against m. The query side reuses the model weights
// of matched n-grams, so Cosine is sum(w^2) / (sqrt(sum(w^2)) * |m|) over
// the matches. Empty queries, empty models and zero norms score zero.
func Against(query ngram.Set, m *weights.Model) Score {
	var s Score
	var sumSq float64
	for g := range query {
		w, ok := m.Weight(g)
		if !ok {
			continue
		}
		s.Matches++
		s.SumWeights += w
		sumSq += w * w
	}
	if s.Matches == 0 {
		return Score{}
	}
	normQuery := math.Sqrt(sumSq)
	normModel := m.Norm()
	if normQuery == 0 || normModel == 0 {
		return Score{Matches: s.Matches, SumWeights: s.SumWeights}
	}
	s.Cosine = sumSq / (normQuery * normModel)
	return s
}

// Percentages splits a and b into shares of their sum, in percent.
func Percentages(a, b float64) (float64, float64) {
	total := a + b
	if total <= 0 {
		return 0, 0
	}
	return a / total * 100, b / total * 100
}
