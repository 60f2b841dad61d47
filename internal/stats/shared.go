package stats

import (
	"fmt"
	"io"
	"math"
	"sort"

	"github.com/verte-zerg/codeswitch/internal/weights"
)

// SharedNgram is an n-gram present in both models.
type SharedNgram struct {
	Gram string
	A    float64
	B    float64
}

// Diff is the absolute weight difference.
func (s SharedNgram) Diff() float64 {
	return math.Abs(s.A - s.B)
}

// SharedReport describes the overlap of two models.
type SharedReport struct {
	LenA   int
	LenB   int
	Shared []SharedNgram
}

// OverlapPercent is the shared count relative to the smaller model.
func (r SharedReport) OverlapPercent() float64 {
	smaller := min(r.LenA, r.LenB)
	if smaller == 0 {
		return 0
	}
	return float64(len(r.Shared)) / float64(smaller) * 100
}

// SharedNgrams lists the n-grams of a that also appear in b, heaviest
// combined weight first.
func SharedNgrams(a, b *weights.Model) SharedReport {
	report := SharedReport{LenA: a.Len(), LenB: b.Len()}
	for g, wa := range a.All() {
		if wb, ok := b.Weight(g); ok {
			report.Shared = append(report.Shared, SharedNgram{Gram: g, A: wa, B: wb})
		}
	}
	sort.Slice(report.Shared, func(i, j int) bool {
		si, sj := report.Shared[i], report.Shared[j]
		if si.A+si.B != sj.A+sj.B {
			return si.A+si.B > sj.A+sj.B
		}
		return si.Gram < sj.Gram
	})
	return report
}

// RenderShared prints the overlap summary and the top shared n-grams.
func RenderShared(w io.Writer, r SharedReport, top int) error {
	if _, err := fmt.Fprintf(w, "Model A: %d n-grams\nModel B: %d n-grams\nShared:  %d (%.1f%%)\n",
		r.LenA, r.LenB, len(r.Shared), r.OverlapPercent()); err != nil {
		return err
	}
	if len(r.Shared) == 0 {
		return nil
	}
	shown := r.Shared
	if top > 0 && len(shown) > top {
		shown = shown[:top]
	}
	if _, err := fmt.Fprintf(w, "\nTop %d shared n-grams by combined weight:\n", len(shown)); err != nil {
		return err
	}
	rows := make([][]string, 0, len(shown))
	for _, s := range shown {
		rows = append(rows, []string{
			fmt.Sprintf("%q", s.Gram),
			fmt.Sprintf("%.5f", s.A),
			fmt.Sprintf("%.5f", s.B),
			fmt.Sprintf("%.5f", s.Diff()),
		})
	}
	return writeTable(w, []string{"N-gram", "Weight A", "Weight B", "Diff"}, rows, map[int]bool{1: true, 2: true, 3: true})
}
