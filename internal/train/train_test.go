package train

import (
	"bytes"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/verte-zerg/codeswitch/internal/corpus"
	"github.com/verte-zerg/codeswitch/internal/weights"
)

const spanishSample = `El perro corre por el parque todos los días. La casa de mi abuela
está cerca del río y tiene un jardín con muchas flores. Mañana vamos a la
playa con mis amigos porque hace buen tiempo. ¿Qué quieres comer esta noche?
Los niños juegan en la calle hasta que su madre los llama para cenar.`

const englishSample = `The dog runs through the park every day. My grandmother's house is
near the river and has a garden with many flowers. Tomorrow we are going to
the beach with my friends because the weather is nice. What do you want to eat
tonight? The children play in the street until their mother calls them home.`

func TestWeighFormula(t *testing.T) {
	opts := DefaultOptions()
	opts.Extract.MinN, opts.Extract.MaxN = 3, 3
	text := "abcabc"
	raw, err := Weigh(text, opts)
	if err != nil {
		t.Fatalf("Weigh failed: %v", err)
	}
	want := math.Pow(2.0/6.0, 0.27) * math.Pow(3, 0.09)
	if got := raw["abc"]; math.Abs(got-want) > 1e-12 {
		t.Fatalf("expected %v, got %v", want, got)
	}
	wantOnce := math.Pow(1.0/6.0, 0.27) * math.Pow(3, 0.09)
	if got := raw["bca"]; math.Abs(got-wantOnce) > 1e-12 {
		t.Fatalf("expected %v, got %v", wantOnce, got)
	}
}

func TestWeighUsesByteLength(t *testing.T) {
	opts := DefaultOptions()
	opts.Extract.MinN, opts.Extract.MaxN = 3, 3
	raw, err := Weigh("ñañ", opts)
	if err != nil {
		t.Fatalf("Weigh failed: %v", err)
	}
	want := math.Pow(1.0/5.0, 0.27) * math.Pow(3, 0.09)
	if got := raw["ñañ"]; math.Abs(got-want) > 1e-12 {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestTrainEmptyCorpus(t *testing.T) {
	_, _, err := Train("", DefaultOptions())
	if !errors.Is(err, ErrEmptyCorpus) {
		t.Fatalf("expected ErrEmptyCorpus, got %v", err)
	}
}

func TestTrainInvalidK(t *testing.T) {
	opts := DefaultOptions()
	opts.K = 0
	_, _, err := Train(spanishSample, opts)
	if !errors.Is(err, ErrInvalidK) {
		t.Fatalf("expected ErrInvalidK, got %v", err)
	}
}

func TestTrainRespectsK(t *testing.T) {
	opts := DefaultOptions()
	opts.K = 50
	model, report, err := Train(spanishSample, opts)
	if err != nil {
		t.Fatalf("Train failed: %v", err)
	}
	if report.AfterTopK != 50 {
		t.Fatalf("expected 50 after top-k, got %d", report.AfterTopK)
	}
	if model.Len() != report.AfterPrune || model.Len() > 50 {
		t.Fatalf("unexpected model size %d (report %+v)", model.Len(), report)
	}
	if report.Distinct <= report.AfterTopK {
		t.Fatalf("expected more distinct n-grams than k, got %+v", report)
	}
}

func TestTrainNoRedundantSubstrings(t *testing.T) {
	for _, text := range []string{spanishSample, englishSample} {
		model, _, err := Train(text, DefaultOptions())
		if err != nil {
			t.Fatalf("Train failed: %v", err)
		}
		keys := model.Keys()
		for _, a := range keys {
			for _, b := range keys {
				if utf8.RuneCountInString(a) < utf8.RuneCountInString(b) && strings.Contains(b, a) {
					t.Fatalf("%q is contained in longer %q", a, b)
				}
			}
		}
	}
}

func TestTrainRoundsWeights(t *testing.T) {
	model, _, err := Train(englishSample, DefaultOptions())
	if err != nil {
		t.Fatalf("Train failed: %v", err)
	}
	for g, w := range model.All() {
		if w != weights.Round(w) {
			t.Fatalf("weight for %q not rounded: %v", g, w)
		}
		if w <= 0 {
			t.Fatalf("weight for %q not positive: %v", g, w)
		}
	}
}

func TestTrainIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	corpusPath := filepath.Join(dir, "es.txt")
	if err := os.WriteFile(corpusPath, []byte(spanishSample), 0o644); err != nil {
		t.Fatalf("write corpus: %v", err)
	}
	opts := DefaultOptions()
	opts.K = 120
	var outputs [][]byte
	for _, name := range []string{"a.json", "b.json"} {
		out := filepath.Join(dir, name)
		if _, err := TrainFile(corpusPath, out, opts); err != nil {
			t.Fatalf("TrainFile failed: %v", err)
		}
		data, err := os.ReadFile(out)
		if err != nil {
			t.Fatalf("read model: %v", err)
		}
		outputs = append(outputs, data)
	}
	if !bytes.Equal(outputs[0], outputs[1]) {
		t.Fatalf("expected byte-identical models")
	}
}

func TestTrainFileMissingCorpus(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "model.json")
	_, err := TrainFile(filepath.Join(dir, "missing.txt"), out, DefaultOptions())
	if !errors.Is(err, corpus.ErrCorpusNotFound) {
		t.Fatalf("expected ErrCorpusNotFound, got %v", err)
	}
	if _, statErr := os.Stat(out); !errors.Is(statErr, os.ErrNotExist) {
		t.Fatalf("expected no output on failure")
	}
}

func TestTrainFileEmptyCorpus(t *testing.T) {
	dir := t.TempDir()
	corpusPath := filepath.Join(dir, "empty.txt")
	if err := os.WriteFile(corpusPath, nil, 0o644); err != nil {
		t.Fatalf("write corpus: %v", err)
	}
	out := filepath.Join(dir, "model.json")
	_, err := TrainFile(corpusPath, out, DefaultOptions())
	if !errors.Is(err, ErrEmptyCorpus) {
		t.Fatalf("expected ErrEmptyCorpus, got %v", err)
	}
	if _, statErr := os.Stat(out); !errors.Is(statErr, os.ErrNotExist) {
		t.Fatalf("expected no output on failure")
	}
}

func TestFinalizeOrdering(t *testing.T) {
	raw := map[string]float64{
		"abcd": 0.5,
		"abc":  0.9,
		"bcd":  0.8,
		"xyz":  0.7,
		"zero": 0,
		"neg":  -1,
	}
	model, report, err := Finalize(raw, 3)
	if err != nil {
		t.Fatalf("Finalize failed: %v", err)
	}
	// Top 3 by weight: abc, bcd, xyz. None is contained in another.
	if strings.Join(model.Keys(), ",") != "abc,bcd,xyz" {
		t.Fatalf("unexpected keys %v", model.Keys())
	}
	if report.AfterTopK != 3 || report.AfterPrune != 3 {
		t.Fatalf("unexpected report %+v", report)
	}

	model, _, err = Finalize(raw, 4)
	if err != nil {
		t.Fatalf("Finalize failed: %v", err)
	}
	// abcd now survives top-k and absorbs abc and bcd.
	if strings.Join(model.Keys(), ",") != "abcd,xyz" {
		t.Fatalf("unexpected keys %v", model.Keys())
	}
}

func TestFinalizeTieBreakIsDeterministic(t *testing.T) {
	raw := map[string]float64{"ccc1": 1, "aaa1": 1, "bbb1": 1}
	model, _, err := Finalize(raw, 2)
	if err != nil {
		t.Fatalf("Finalize failed: %v", err)
	}
	if strings.Join(model.Keys(), ",") != "aaa1,bbb1" {
		t.Fatalf("unexpected keys %v", model.Keys())
	}
}

func TestPruneKeepsLongestCover(t *testing.T) {
	entries := []entry{
		{gram: "ción", weight: 0.5, length: 4},
		{gram: "ció", weight: 0.9, length: 3},
		{gram: "ión", weight: 0.2, length: 3},
		{gram: "cas", weight: 0.4, length: 3},
		{gram: "ción ", weight: 0.1, length: 5},
	}
	got := prune(entries)
	want := []string{"ción ", "cas"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %+v", want, got)
	}
	for i, g := range want {
		if got[i].gram != g {
			t.Fatalf("position %d: expected %q, got %q", i, g, got[i].gram)
		}
	}
}
