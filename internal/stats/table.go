// Package stats analyzes trained models and calibrates the decision
// thresholds.
package stats

import (
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"
)

// table is a plain-text grid with one space between columns. Widths are
// measured in terminal cells so accented and wide runes line up.
type table struct {
	headers []string
	rows    [][]string
	// right holds the indexes of right-aligned columns.
	right map[int]bool
}

func (t table) columnWidths() []int {
	cols := len(t.headers)
	for _, row := range t.rows {
		cols = max(cols, len(row))
	}
	widths := make([]int, cols)
	measure := func(row []string) {
		for i, cell := range row {
			widths[i] = max(widths[i], displayWidth(cell))
		}
	}
	measure(t.headers)
	for _, row := range t.rows {
		measure(row)
	}
	return widths
}

func (t table) lines() []string {
	widths := t.columnWidths()
	if len(widths) == 0 {
		return nil
	}
	out := make([]string, 0, len(t.rows)+1)
	if len(t.headers) > 0 {
		out = append(out, t.render(t.headers, widths))
	}
	for _, row := range t.rows {
		out = append(out, t.render(row, widths))
	}
	return out
}

func (t table) render(row []string, widths []int) string {
	cells := make([]string, len(widths))
	for i, width := range widths {
		var cell string
		if i < len(row) {
			cell = row[i]
		}
		gap := max(width-displayWidth(cell), 0)
		if t.right[i] {
			cells[i] = strings.Repeat(" ", gap) + cell
		} else {
			cells[i] = cell + strings.Repeat(" ", gap)
		}
	}
	return strings.Join(cells, " ")
}

func displayWidth(value string) int {
	return runewidth.StringWidth(value)
}

// writeTable prints the grid with trailing blanks trimmed from each line.
func writeTable(w io.Writer, headers []string, rows [][]string, right map[int]bool) error {
	for _, line := range (table{headers: headers, rows: rows, right: right}).lines() {
		if _, err := fmt.Fprintln(w, strings.TrimRight(line, " ")); err != nil {
			return err
		}
	}
	return nil
}
