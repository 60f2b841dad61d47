// Package weights defines the trained n-gram weight model and its file codecs.
//
// A Model is immutable once built: it can be shared by any number of
// concurrent readers without locking.
package weights

import (
	"iter"
	"math"
	"sort"
)

// Precision is the number of decimals kept when a model is persisted.
const Precision = 5

// Model maps n-grams to non-negative weights. The L2 norm over all entries is
// computed once at construction. A nil *Model behaves as an empty model.
type Model struct {
	entries map[string]float64
	norm    float64
}

// New copies entries into a new Model.
func New(entries map[string]float64) *Model {
	m := &Model{entries: make(map[string]float64, len(entries))}
	var sumSq float64
	for k, w := range entries {
		m.entries[k] = w
		sumSq += w * w
	}
	m.norm = math.Sqrt(sumSq)
	return m
}

// Len returns the number of n-grams in the model.
func (m *Model) Len() int {
	if m == nil {
		return 0
	}
	return len(m.entries)
}

// Weight returns the weight of g and whether g is present.
func (m *Model) Weight(g string) (float64, bool) {
	if m == nil {
		return 0, false
	}
	w, ok := m.entries[g]
	return w, ok
}

// Norm returns sqrt(sum of squared weights) over every entry.
func (m *Model) Norm() float64 {
	if m == nil {
		return 0
	}
	return m.norm
}

// Keys returns the n-grams sorted lexically.
func (m *Model) Keys() []string {
	if m == nil {
		return nil
	}
	keys := make([]string, 0, len(m.entries))
	for k := range m.entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// All iterates over the entries in lexical key order.
func (m *Model) All() iter.Seq2[string, float64] {
	return func(yield func(string, float64) bool) {
		for _, k := range m.Keys() {
			if !yield(k, m.entries[k]) {
				return
			}
		}
	}
}

// Map returns a copy of the entries.
func (m *Model) Map() map[string]float64 {
	out := make(map[string]float64, m.Len())
	if m == nil {
		return out
	}
	for k, w := range m.entries {
		out[k] = w
	}
	return out
}

// Round rounds w to Precision decimals.
func Round(w float64) float64 {
	scale := math.Pow10(Precision)
	return math.Round(w*scale) / scale
}
