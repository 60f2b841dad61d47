package stats

import (
	"fmt"
	"io"
	"math"
	"os"
	"strings"
	"unicode/utf8"

	"golang.org/x/term"
)

// Series is a named list of percentages in [0, 100].
type Series struct {
	Name   string
	Values []float64
}

const (
	defaultPlotHeight   = 8
	minPlotWidth        = 10
	axisLabelTop        = "100%"
	axisLabelMid        = "50%"
	axisLabelBottom     = "0%"
	axisSeparator       = " │ "
	colorReset          = "\x1b[0m"
	terminalWidthBackup = 80
)

var seriesColors = []string{"\x1b[36m", "\x1b[35m", "\x1b[33m", "\x1b[32m"}

// PlotShares draws each series as a braille curve on a fixed 0..100 scale,
// plus a dashed horizontal line at marker when marker is in range.
func PlotShares(w io.Writer, title string, series []Series, marker float64, width, height int, forceColor bool) error {
	if height <= 0 {
		height = defaultPlotHeight
	}
	if width <= 0 {
		width = PlotWidthFor(terminalWidth())
	}
	width = max(width, minPlotWidth)

	dotsY := height * 4
	layers := make([][][]uint8, 0, len(series)+1)
	names := make([]string, 0, len(series))
	for _, s := range series {
		if len(s.Values) == 0 {
			continue
		}
		cells := makeCells(height, width)
		prevX, prevY := -1, -1
		for x, v := range stretch(s.Values, width) {
			px, py := x*2, shareToRow(v, dotsY)
			if prevX >= 0 {
				drawLine(prevX, prevY, px, py, func(dx, dy int) { setBrailleDot(cells, dx, dy) })
			} else {
				setBrailleDot(cells, px, py)
			}
			prevX, prevY = px, py
		}
		layers = append(layers, cells)
		names = append(names, s.Name)
	}
	if len(layers) == 0 {
		return nil
	}
	markerLayer := -1
	if marker >= 0 && marker <= 100 {
		cells := makeCells(height, width)
		row := shareToRow(marker, dotsY)
		for x := 0; x < width*2; x++ {
			if x%4 < 2 {
				setBrailleDot(cells, x, row)
			}
		}
		markerLayer = len(layers)
		layers = append(layers, cells)
	}

	useColor := shouldUseColor(w, forceColor)
	if title != "" {
		if _, err := fmt.Fprintln(w, title); err != nil {
			return err
		}
	}
	labels := axisLabels(height)
	for y := 0; y < height; y++ {
		var row strings.Builder
		fmt.Fprintf(&row, "%*s%s", utf8.RuneCountInString(axisLabelTop), labels[y], axisSeparator)
		for x := 0; x < width; x++ {
			var mask uint8
			owner := -1
			for i, cells := range layers {
				if cells[y][x] == 0 {
					continue
				}
				if owner == -1 {
					owner = i
				}
				mask |= cells[y][x]
			}
			ch := rune(0x2800 + int(mask))
			if useColor && owner >= 0 && owner != markerLayer {
				row.WriteString(seriesColors[owner%len(seriesColors)])
				row.WriteRune(ch)
				row.WriteString(colorReset)
				continue
			}
			row.WriteRune(ch)
		}
		if _, err := fmt.Fprintln(w, row.String()); err != nil {
			return err
		}
	}

	legend := make([]string, 0, len(names)+1)
	for i, name := range names {
		label := "⠉ " + name
		if useColor {
			label = seriesColors[i%len(seriesColors)] + label + colorReset
		}
		legend = append(legend, label)
	}
	if markerLayer >= 0 {
		legend = append(legend, fmt.Sprintf("⠒ threshold %.1f%%", marker))
	}
	_, err := fmt.Fprintln(w, "Legend: "+strings.Join(legend, "  "))
	return err
}

// PlotWidthFor computes a plot width that fits within the total available width.
func PlotWidthFor(totalWidth int) int {
	if totalWidth <= 0 {
		return minPlotWidth
	}
	axisWidth := utf8.RuneCountInString(axisLabelTop) + utf8.RuneCountInString(axisSeparator)
	return max(totalWidth-axisWidth, minPlotWidth)
}

func terminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return terminalWidthBackup
	}
	return width
}

func shouldUseColor(w io.Writer, force bool) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	if force {
		return true
	}
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(file.Fd()))
}

func axisLabels(height int) []string {
	labels := make([]string, height)
	labels[0] = axisLabelTop
	if height > 2 {
		labels[height/2] = axisLabelMid
	}
	if height > 1 {
		labels[height-1] = axisLabelBottom
	}
	return labels
}

func makeCells(height, width int) [][]uint8 {
	cells := make([][]uint8, height)
	for y := range cells {
		cells[y] = make([]uint8, width)
	}
	return cells
}

// stretch maps values onto width columns by nearest index.
func stretch(values []float64, width int) []float64 {
	out := make([]float64, width)
	if len(values) == 1 || width == 1 {
		for i := range out {
			out[i] = values[0]
		}
		return out
	}
	for i := range out {
		idx := int(math.Round(float64(i) * float64(len(values)-1) / float64(width-1)))
		out[i] = values[idx]
	}
	return out
}

func shareToRow(v float64, rows int) int {
	v = math.Max(0, math.Min(100, v))
	return int(math.Round((1 - v/100) * float64(rows-1)))
}

func drawLine(x0, y0, x1, y1 int, plot func(x, y int)) {
	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	err := dx + dy
	for {
		plot(x0, y0)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// setBrailleDot sets dot (x, y) where each cell is 2 dots wide and 4 high.
func setBrailleDot(cells [][]uint8, x, y int) {
	cy, cx := y/4, x/2
	if y < 0 || x < 0 || cy >= len(cells) || cx >= len(cells[cy]) {
		return
	}
	masks := [2][4]uint8{
		{0x01, 0x02, 0x04, 0x40},
		{0x08, 0x10, 0x20, 0x80},
	}
	cells[cy][cx] |= masks[x%2][y%4]
}
