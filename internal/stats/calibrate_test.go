package stats

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/verte-zerg/codeswitch/internal/detect"
	"github.com/verte-zerg/codeswitch/internal/generator"
)

var toyCases = []Case{
	{Text: "hola", Category: CategoryPureSpanish},
	{Text: "hello", Category: CategoryPureEnglish},
	{Text: "hola hello", Category: CategorySpanglish},
}

func TestCalibrate(t *testing.T) {
	cal, err := Calibrate(toyDetector(t), toyCases, detect.DefaultThreshold)
	if err != nil {
		t.Fatalf("Calibrate failed: %v", err)
	}
	if cal.PureMax != 0 || cal.MixedMin != 50 || cal.Suggested != 25 {
		t.Fatalf("unexpected bounds: pure=%v mixed=%v suggested=%v", cal.PureMax, cal.MixedMin, cal.Suggested)
	}
	if cal.Accuracy() != 100 {
		t.Fatalf("expected every verdict to match, got %+v", cal.Results)
	}
	if len(cal.Categories) != 3 || cal.Categories[0].Category != CategoryPureSpanish || cal.Categories[2].Category != CategorySpanglish {
		t.Fatalf("unexpected categories %+v", cal.Categories)
	}
}

func TestCalibrateNeedsBothKinds(t *testing.T) {
	_, err := Calibrate(toyDetector(t), toyCases[:2], detect.DefaultThreshold)
	if !errors.Is(err, ErrNoCases) {
		t.Fatalf("expected ErrNoCases, got %v", err)
	}
}

func TestCalibrateUnknownCategory(t *testing.T) {
	_, err := Calibrate(toyDetector(t), []Case{{Text: "hola", Category: "klingon"}}, detect.DefaultThreshold)
	if !errors.Is(err, ErrUnknownCategory) {
		t.Fatalf("expected ErrUnknownCategory, got %v", err)
	}
}

func TestDefaultCases(t *testing.T) {
	counts := map[string]int{}
	for _, c := range DefaultCases {
		counts[c.Category]++
	}
	if counts[CategoryPureSpanish] != 10 || counts[CategoryPureEnglish] != 10 || counts[CategorySpanglish] != 10 {
		t.Fatalf("unexpected default case counts %v", counts)
	}
	if DefaultCases[0].Category != CategoryPureSpanish {
		t.Fatalf("expected categories in display order")
	}
}

func TestLoadCases(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cases.toml")
	data := `[[case]]
text = "Hola, ¿cómo estás?"
category = "pure_spanish"

[[case]]
text = "Estoy learning English"
category = "spanglish"
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write cases: %v", err)
	}
	cases, err := LoadCases(path)
	if err != nil {
		t.Fatalf("LoadCases failed: %v", err)
	}
	if len(cases) != 2 || cases[1].Category != CategorySpanglish {
		t.Fatalf("unexpected cases %+v", cases)
	}
}

func TestLoadCasesRejectsBadInput(t *testing.T) {
	dir := t.TempDir()
	tests := map[string]string{
		"unknown-key.toml":      "[[case]]\ntext = \"x\"\ncategory = \"spanglish\"\nweight = 1\n",
		"unknown-category.toml": "[[case]]\ntext = \"x\"\ncategory = \"latin\"\n",
		"empty-text.toml":       "[[case]]\ntext = \" \"\ncategory = \"spanglish\"\n",
		"empty.toml":            "",
	}
	for name, data := range tests {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
		if _, err := LoadCases(path); err == nil {
			t.Fatalf("%s: expected an error", name)
		}
	}
	if _, err := LoadCases(filepath.Join(dir, "missing.toml")); err == nil || !strings.Contains(err.Error(), "not found") {
		t.Fatalf("expected not found error, got %v", err)
	}
}

func TestSyntheticCases(t *testing.T) {
	samples := []generator.Sample{
		{Text: "Casa perro.", Category: generator.Pure, Base: "es"},
		{Text: "House dog.", Category: generator.Pure, Base: "en"},
		{Text: "Casa dog.", Category: generator.Borrowed, Base: "es"},
		{Text: "House perro casa.", Category: generator.Mixed, Base: "en"},
		{Text: "", Category: generator.Pure, Base: "es"},
	}
	cases := SyntheticCases(samples)
	want := []string{CategoryPureSpanish, CategoryPureEnglish, CategoryBorrowedES, CategorySpanglish}
	if len(cases) != len(want) {
		t.Fatalf("expected %d cases, got %d", len(want), len(cases))
	}
	for i, c := range cases {
		if c.Category != want[i] {
			t.Fatalf("case %d: expected %s, got %s", i, want[i], c.Category)
		}
	}
}

func TestRenderCalibration(t *testing.T) {
	cal, err := Calibrate(toyDetector(t), toyCases, detect.DefaultThreshold)
	if err != nil {
		t.Fatalf("Calibrate failed: %v", err)
	}
	var buf bytes.Buffer
	if err := RenderCalibration(&buf, cal, 30, false); err != nil {
		t.Fatalf("RenderCalibration failed: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"Pure Spanish", "Spanglish", "Suggested threshold:          25.0%", "Accuracy:                     100.0%", "threshold 25.0%"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestCategoryTitle(t *testing.T) {
	if got := categoryTitle("borrowed_english"); got != "Borrowed English" {
		t.Fatalf("unexpected title %q", got)
	}
}
