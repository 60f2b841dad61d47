package tui

import (
	"strings"
	"testing"

	"github.com/verte-zerg/codeswitch/internal/model"
)

func TestRenderFooterFormats(t *testing.T) {
	sub := model.ESDominant
	m := &Model{
		hasResult: true,
		result: model.Result{
			DominantLanguage: model.LabelSpanish,
			IsSpanglish:      true,
			SpanglishType:    &sub,
			Confidence:       58.2,
			Proportions:      model.Proportions{Spanish: 58.2, English: 41.8},
		},
	}
	out := m.renderFooter()
	if !containsAll(out, []string{"Spanglish (ES-dominant)", "ES 58.2%", "EN 41.8%", "Confidence 58.2%"}) {
		t.Fatalf("footer missing expected segments: %s", out)
	}
}

func TestRenderFooterWaiting(t *testing.T) {
	m := &Model{}
	if !strings.Contains(m.renderFooter(), "Waiting for input") {
		t.Fatalf("expected waiting footer")
	}
}

func containsAll(haystack string, needles []string) bool {
	for _, needle := range needles {
		if !strings.Contains(haystack, needle) {
			return false
		}
	}
	return true
}
