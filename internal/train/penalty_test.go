package train

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func fixtureMaps() (map[string]float64, map[string]float64) {
	a := map[string]float64{"the": 0.8, "con": 0.4, "que": 0.9}
	b := map[string]float64{"the": 0.2, "con": 0.4, "and": 0.7}
	return a, b
}

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-12
}

func TestParsePenaltyMode(t *testing.T) {
	for _, mode := range PenaltyModes() {
		got, err := ParsePenaltyMode(strings.ToUpper(string(mode)))
		if err != nil || got != mode {
			t.Fatalf("expected %s, got %s (%v)", mode, got, err)
		}
	}
	if _, err := ParsePenaltyMode("harsh"); !errors.Is(err, ErrUnknownPenaltyMode) {
		t.Fatalf("expected ErrUnknownPenaltyMode, got %v", err)
	}
}

func TestPartition(t *testing.T) {
	a, b := fixtureMaps()
	o := Partition(a, b)
	if strings.Join(o.Shared, ",") != "con,the" {
		t.Fatalf("unexpected shared %v", o.Shared)
	}
	if strings.Join(o.UniqueA, ",") != "que" || strings.Join(o.UniqueB, ",") != "and" {
		t.Fatalf("unexpected unique sets %v %v", o.UniqueA, o.UniqueB)
	}
	if !approx(o.SharedPercent(), 50) {
		t.Fatalf("expected 50%% shared, got %v", o.SharedPercent())
	}
}

func TestPenaltyZero(t *testing.T) {
	a, b := fixtureMaps()
	outA, outB, _, err := ApplyPenalty(a, b, PenaltyZero, 0)
	if err != nil {
		t.Fatalf("ApplyPenalty failed: %v", err)
	}
	for _, k := range []string{"the", "con"} {
		if outA[k] != 0 || outB[k] != 0 {
			t.Fatalf("expected %q zeroed, got %v %v", k, outA[k], outB[k])
		}
	}
	if outA["que"] != 0.9 || outB["and"] != 0.7 {
		t.Fatalf("unique entries must be untouched")
	}
	modelA, _, err := Finalize(outA, 10)
	if err != nil {
		t.Fatalf("Finalize failed: %v", err)
	}
	if strings.Join(modelA.Keys(), ",") != "que" {
		t.Fatalf("expected shared keys removed, got %v", modelA.Keys())
	}
}

func TestPenaltyProportional(t *testing.T) {
	a, b := fixtureMaps()
	outA, outB, _, err := ApplyPenalty(a, b, PenaltyProportional, 0.1)
	if err != nil {
		t.Fatalf("ApplyPenalty failed: %v", err)
	}
	if !approx(outA["the"], 0.08) || !approx(outB["the"], 0.02) {
		t.Fatalf("unexpected proportional weights %v %v", outA["the"], outB["the"])
	}
	if !approx(outA["con"], 0.04) || !approx(outB["con"], 0.04) {
		t.Fatalf("unexpected proportional weights %v %v", outA["con"], outB["con"])
	}
	if outA["que"] != 0.9 {
		t.Fatalf("unique entries must be untouched")
	}
}

func TestPenaltyRatio(t *testing.T) {
	a, b := fixtureMaps()
	outA, outB, _, err := ApplyPenalty(a, b, PenaltyRatio, 0)
	if err != nil {
		t.Fatalf("ApplyPenalty failed: %v", err)
	}
	if outA["the"] != 0.8 {
		t.Fatalf("larger weight must stay, got %v", outA["the"])
	}
	if !approx(outB["the"], 0.2*0.25) {
		t.Fatalf("expected smaller weight scaled by 0.25, got %v", outB["the"])
	}
	if outA["con"] != 0.4 || outB["con"] != 0.4 {
		t.Fatalf("equal weights must stay unchanged")
	}
}

func TestPenaltyUniqueBoost(t *testing.T) {
	a, b := fixtureMaps()
	outA, outB, _, err := ApplyPenalty(a, b, PenaltyUniqueBoost, 0)
	if err != nil {
		t.Fatalf("ApplyPenalty failed: %v", err)
	}
	if !approx(outA["que"], 1.8) || !approx(outB["and"], 1.4) {
		t.Fatalf("expected unique entries boosted, got %v %v", outA["que"], outB["and"])
	}
	if outA["the"] != 0.8 || outB["the"] != 0.2 {
		t.Fatalf("shared entries must be untouched")
	}
}

func TestPenaltyDiscriminative(t *testing.T) {
	a, b := fixtureMaps()
	outA, outB, _, err := ApplyPenalty(a, b, PenaltyDiscriminative, 0.1)
	if err != nil {
		t.Fatalf("ApplyPenalty failed: %v", err)
	}
	// the: similarity 0.25, penalty 1 - 0.25*0.9 = 0.775
	if !approx(outA["the"], 0.8*0.775) || !approx(outB["the"], 0.2*0.775) {
		t.Fatalf("unexpected weights for the: %v %v", outA["the"], outB["the"])
	}
	// con: similarity 1, penalty equals the factor
	if !approx(outA["con"], 0.04) || !approx(outB["con"], 0.04) {
		t.Fatalf("unexpected weights for con: %v %v", outA["con"], outB["con"])
	}
}

func TestPenaltyDiscriminativeZeroWeights(t *testing.T) {
	a := map[string]float64{"abc": 0}
	b := map[string]float64{"abc": 0}
	outA, outB, _, err := ApplyPenalty(a, b, PenaltyDiscriminative, 0.5)
	if err != nil {
		t.Fatalf("ApplyPenalty failed: %v", err)
	}
	if outA["abc"] != 0 || outB["abc"] != 0 {
		t.Fatalf("expected zero weights to stay zero")
	}
}

func TestPenaltyDoesNotMutateInputs(t *testing.T) {
	for _, mode := range PenaltyModes() {
		a, b := fixtureMaps()
		if _, _, _, err := ApplyPenalty(a, b, mode, 0.1); err != nil {
			t.Fatalf("%s: ApplyPenalty failed: %v", mode, err)
		}
		wantA, wantB := fixtureMaps()
		for k, w := range wantA {
			if a[k] != w {
				t.Fatalf("%s mutated input a[%q]", mode, k)
			}
		}
		for k, w := range wantB {
			if b[k] != w {
				t.Fatalf("%s mutated input b[%q]", mode, k)
			}
		}
	}
}

func TestPenaltyFactorValidation(t *testing.T) {
	a, b := fixtureMaps()
	for _, factor := range []float64{0, -0.5, 1.5} {
		for _, mode := range []PenaltyMode{PenaltyProportional, PenaltyDiscriminative} {
			if _, _, _, err := ApplyPenalty(a, b, mode, factor); !errors.Is(err, ErrInvalidPenaltyFactor) {
				t.Fatalf("%s factor %v: expected ErrInvalidPenaltyFactor, got %v", mode, factor, err)
			}
		}
	}
	if _, _, _, err := ApplyPenalty(a, b, PenaltyZero, 5); err != nil {
		t.Fatalf("zero mode should ignore the factor: %v", err)
	}
}

func TestTrainDiscriminativeSeparatesShared(t *testing.T) {
	opts := DefaultDiscriminativeOptions()
	opts.Mode = PenaltyZero
	es, en, report, err := TrainDiscriminative(spanishSample, englishSample, opts)
	if err != nil {
		t.Fatalf("TrainDiscriminative failed: %v", err)
	}
	if len(report.Overlap.Shared) == 0 {
		t.Fatalf("expected some shared n-grams between samples")
	}
	for _, k := range report.Overlap.Shared {
		if _, ok := es.Weight(k); ok {
			t.Fatalf("shared %q left in model a", k)
		}
		if _, ok := en.Weight(k); ok {
			t.Fatalf("shared %q left in model b", k)
		}
	}
}

func TestTrainDiscriminativeEmptyCorpus(t *testing.T) {
	_, _, _, err := TrainDiscriminative(spanishSample, "", DefaultDiscriminativeOptions())
	if !errors.Is(err, ErrEmptyCorpus) {
		t.Fatalf("expected ErrEmptyCorpus, got %v", err)
	}
}

func TestTrainDiscriminativeFiles(t *testing.T) {
	dir := t.TempDir()
	esPath := filepath.Join(dir, "es.txt")
	enPath := filepath.Join(dir, "en.txt")
	if err := os.WriteFile(esPath, []byte(spanishSample), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := os.WriteFile(enPath, []byte(englishSample), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	outES := filepath.Join(dir, "models", "model_es_disc.json")
	outEN := filepath.Join(dir, "models", "model_en_disc.msgpack")
	if _, err := TrainDiscriminativeFiles(esPath, enPath, outES, outEN, DefaultDiscriminativeOptions()); err != nil {
		t.Fatalf("TrainDiscriminativeFiles failed: %v", err)
	}
	for _, p := range []string{outES, outEN} {
		if _, err := os.Stat(p); err != nil {
			t.Fatalf("expected %s to exist: %v", p, err)
		}
	}

	missingOut := filepath.Join(dir, "none", "a.json")
	_, err := TrainDiscriminativeFiles(esPath, filepath.Join(dir, "missing.txt"), missingOut, filepath.Join(dir, "none", "b.json"), DefaultDiscriminativeOptions())
	if err == nil {
		t.Fatalf("expected error for missing corpus")
	}
	if _, statErr := os.Stat(missingOut); !errors.Is(statErr, os.ErrNotExist) {
		t.Fatalf("expected no output written when a corpus is missing")
	}
}

func TestTrainDiscriminativeFilesKeepsPairConsistent(t *testing.T) {
	dir := t.TempDir()
	esPath := filepath.Join(dir, "es.txt")
	enPath := filepath.Join(dir, "en.txt")
	if err := os.WriteFile(esPath, []byte(spanishSample), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := os.WriteFile(enPath, []byte(englishSample), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	outES := filepath.Join(dir, "model_es_disc.json")
	stale := []byte(`{"old": 0.5}`)
	if err := os.WriteFile(outES, stale, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	// A regular file where the directory of the second output should be.
	blocker := filepath.Join(dir, "blocker")
	if err := os.WriteFile(blocker, nil, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	outEN := filepath.Join(blocker, "model_en_disc.json")

	if _, err := TrainDiscriminativeFiles(esPath, enPath, outES, outEN, DefaultDiscriminativeOptions()); err == nil {
		t.Fatalf("expected error when the second model cannot be written")
	}
	got, err := os.ReadFile(outES)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(got) != string(stale) {
		t.Fatalf("first model was replaced although the second failed: %s", got)
	}
	leftovers, err := filepath.Glob(filepath.Join(dir, "model-*.tmp"))
	if err != nil {
		t.Fatalf("glob: %v", err)
	}
	if len(leftovers) != 0 {
		t.Fatalf("expected temp files to be removed, found %v", leftovers)
	}
}
