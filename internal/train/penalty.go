package train

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// PenaltyMode selects how n-grams shared by two corpora are down-weighted.
type PenaltyMode string

const (
	PenaltyZero           PenaltyMode = "zero"
	PenaltyProportional   PenaltyMode = "proportional"
	PenaltyRatio          PenaltyMode = "ratio"
	PenaltyUniqueBoost    PenaltyMode = "unique_boost"
	PenaltyDiscriminative PenaltyMode = "discriminative"
)

const (
	// UniqueBoost multiplies n-grams found in only one corpus under unique_boost.
	UniqueBoost = 2.0
	// DefaultPenaltyFactor is used by proportional and discriminative modes.
	DefaultPenaltyFactor = 0.1
)

var (
	// ErrUnknownPenaltyMode is returned for an unrecognized mode name.
	ErrUnknownPenaltyMode = errors.New("unknown penalty mode")
	// ErrInvalidPenaltyFactor is returned when a factor outside (0, 1] is
	// given to a mode that uses it.
	ErrInvalidPenaltyFactor = errors.New("penalty factor must be in (0, 1]")
)

// PenaltyModes lists every mode in display order.
func PenaltyModes() []PenaltyMode {
	return []PenaltyMode{PenaltyZero, PenaltyProportional, PenaltyRatio, PenaltyUniqueBoost, PenaltyDiscriminative}
}

// ParsePenaltyMode resolves a mode name, case-insensitively.
func ParsePenaltyMode(s string) (PenaltyMode, error) {
	name := PenaltyMode(strings.ToLower(strings.TrimSpace(s)))
	for _, mode := range PenaltyModes() {
		if name == mode {
			return mode, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownPenaltyMode, s)
}

// UsesFactor reports whether the mode reads the penalty factor.
func (m PenaltyMode) UsesFactor() bool {
	return m == PenaltyProportional || m == PenaltyDiscriminative
}

// Overlap is the shared/unique partition of two weight maps.
type Overlap struct {
	Shared  []string
	UniqueA []string
	UniqueB []string
}

// SharedPercent returns the shared keys as a share of the union.
func (o Overlap) SharedPercent() float64 {
	union := len(o.Shared) + len(o.UniqueA) + len(o.UniqueB)
	if union == 0 {
		return 0
	}
	return float64(len(o.Shared)) / float64(union) * 100
}

// Partition splits the keys of a and b into shared and unique sets, each
// sorted.
func Partition(a, b map[string]float64) Overlap {
	var o Overlap
	for k := range a {
		if _, ok := b[k]; ok {
			o.Shared = append(o.Shared, k)
		} else {
			o.UniqueA = append(o.UniqueA, k)
		}
	}
	for k := range b {
		if _, ok := a[k]; !ok {
			o.UniqueB = append(o.UniqueB, k)
		}
	}
	sort.Strings(o.Shared)
	sort.Strings(o.UniqueA)
	sort.Strings(o.UniqueB)
	return o
}

// ApplyPenalty returns penalized copies of a and b. The inputs are only read.
func ApplyPenalty(a, b map[string]float64, mode PenaltyMode, factor float64) (map[string]float64, map[string]float64, Overlap, error) {
	if mode.UsesFactor() && (factor <= 0 || factor > 1) {
		return nil, nil, Overlap{}, fmt.Errorf("%w: got %v", ErrInvalidPenaltyFactor, factor)
	}
	overlap := Partition(a, b)
	outA := cloneWeights(a)
	outB := cloneWeights(b)

	switch mode {
	case PenaltyZero:
		for _, k := range overlap.Shared {
			outA[k] = 0
			outB[k] = 0
		}
	case PenaltyProportional:
		for _, k := range overlap.Shared {
			outA[k] = a[k] * factor
			outB[k] = b[k] * factor
		}
	case PenaltyRatio:
		for _, k := range overlap.Shared {
			wa, wb := a[k], b[k]
			switch {
			case wa < wb && wb > 0:
				outA[k] = wa * (wa / wb)
			case wb < wa && wa > 0:
				outB[k] = wb * (wb / wa)
			}
		}
	case PenaltyUniqueBoost:
		for _, k := range overlap.UniqueA {
			outA[k] = a[k] * UniqueBoost
		}
		for _, k := range overlap.UniqueB {
			outB[k] = b[k] * UniqueBoost
		}
	case PenaltyDiscriminative:
		for _, k := range overlap.Shared {
			wa, wb := a[k], b[k]
			similarity := 1.0
			if hi := max(wa, wb); hi > 0 {
				similarity = min(wa, wb) / hi
			}
			penalty := 1 - similarity*(1-factor)
			outA[k] = wa * penalty
			outB[k] = wb * penalty
		}
	default:
		return nil, nil, Overlap{}, fmt.Errorf("%w: %q", ErrUnknownPenaltyMode, mode)
	}
	return outA, outB, overlap, nil
}

func cloneWeights(src map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(src))
	for k, w := range src {
		out[k] = w
	}
	return out
}
