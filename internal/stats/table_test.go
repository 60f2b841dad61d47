package stats

import (
	"bytes"
	"testing"
)

func TestTableAlignsColumns(t *testing.T) {
	headers := []string{"N-gram", "Weight A", "Diff"}
	rows := [][]string{
		{`"que"`, "0.41000", "0.1"},
		{`"ción"`, "0.38000", "0.25"},
	}
	rightAlign := map[int]bool{1: true, 2: true}

	lines := table{headers: headers, rows: rows, right: rightAlign}.lines()
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}
	if lines[0] != "N-gram Weight A Diff" {
		t.Fatalf("unexpected header line: %q", lines[0])
	}
	if lines[1] != `"que"   0.41000  0.1` {
		t.Fatalf("unexpected row line: %q", lines[1])
	}
	if lines[2] != `"ción"  0.38000 0.25` {
		t.Fatalf("unexpected row line: %q", lines[2])
	}
}

func TestTableRaggedRows(t *testing.T) {
	lines := table{rows: [][]string{{"a"}, {"bb", "c"}}}.lines()
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	if lines[0] != "a   " || lines[1] != "bb c" {
		t.Fatalf("unexpected lines %q", lines)
	}
	if got := (table{}).lines(); got != nil {
		t.Fatalf("expected no lines for an empty table, got %q", got)
	}
}

func TestDisplayWidthWide(t *testing.T) {
	if got := displayWidth("日本"); got != 4 {
		t.Fatalf("expected wide runes to count double, got %d", got)
	}
	if got := displayWidth("ñá"); got != 2 {
		t.Fatalf("expected 2, got %d", got)
	}
}

func TestWriteTableTrimsTrailingSpace(t *testing.T) {
	var buf bytes.Buffer
	if err := writeTable(&buf, []string{"Text", "ES"}, [][]string{{"hola", ""}}, nil); err != nil {
		t.Fatalf("writeTable failed: %v", err)
	}
	if buf.String() != "Text ES\nhola\n" {
		t.Fatalf("unexpected output %q", buf.String())
	}
}
