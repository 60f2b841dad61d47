package generator

import (
	"strings"
	"testing"
)

var (
	spanish = []string{"casa", "perro", "comer", "ahora", "niño"}
	english = []string{"house", "dog", "eat", "now", "child"}
)

func contains(list []string, word string) bool {
	for _, w := range list {
		if w == word {
			return true
		}
	}
	return false
}

func TestSentencePure(t *testing.T) {
	g := NewSeeded(1)
	sentence := g.Sentence(spanish, english, 8, 0)
	if !strings.HasSuffix(sentence, ".") {
		t.Fatalf("expected trailing period, got %q", sentence)
	}
	words := strings.Fields(strings.TrimSuffix(sentence, "."))
	if len(words) != 8 {
		t.Fatalf("expected 8 words, got %d", len(words))
	}
	for i, w := range words {
		if i == 0 {
			w = strings.ToLower(w)
		}
		if !contains(spanish, w) {
			t.Fatalf("unexpected word %q in pure sentence", w)
		}
	}
}

func TestSentenceCapitalizesUnicode(t *testing.T) {
	g := NewSeeded(2)
	sentence := g.Sentence([]string{"ñandú"}, nil, 1, 0)
	if sentence != "Ñandú." {
		t.Fatalf("unexpected sentence %q", sentence)
	}
}

func TestSentenceFullShare(t *testing.T) {
	g := NewSeeded(3)
	sentence := g.Sentence(spanish, english, 6, 1)
	for i, w := range strings.Fields(strings.TrimSuffix(sentence, ".")) {
		if i == 0 {
			w = strings.ToLower(w)
		}
		if !contains(english, w) {
			t.Fatalf("expected only secondary words, got %q", w)
		}
	}
}

func TestSentenceEmpty(t *testing.T) {
	g := NewSeeded(4)
	if g.Sentence(nil, english, 5, 0.5) != "" {
		t.Fatalf("expected empty sentence without a primary vocabulary")
	}
	if g.Sentence(spanish, english, 0, 0.5) != "" {
		t.Fatalf("expected empty sentence for zero words")
	}
}

func TestSamplesDeterministic(t *testing.T) {
	a := NewSeeded(42).Samples(spanish, english, 4, 6)
	b := NewSeeded(42).Samples(spanish, english, 4, 6)
	if len(a) != 12 {
		t.Fatalf("expected 12 samples, got %d", len(a))
	}
	counts := map[Category]int{}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("expected identical samples for equal seeds")
		}
		counts[a[i].Category]++
		if want := []string{"es", "en"}[(i%4)%2]; a[i].Base != want {
			t.Fatalf("sample %d: expected base %q, got %q", i, want, a[i].Base)
		}
	}
	if counts[Pure] != 4 || counts[Borrowed] != 4 || counts[Mixed] != 4 {
		t.Fatalf("unexpected category counts %v", counts)
	}
}
