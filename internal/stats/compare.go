package stats

import (
	"fmt"
	"io"
	"math"

	"github.com/verte-zerg/codeswitch/internal/detect"
	"github.com/verte-zerg/codeswitch/internal/score"
)

// LabeledText is a sample text with a free-form label.
type LabeledText struct {
	Text  string
	Label string
}

// DefaultComparisonTexts covers pure, Latin-heavy, technical and mixed
// sentences in both languages.
var DefaultComparisonTexts = []LabeledText{
	{"Hoy es un día hermoso para caminar por el parque", "Spanish"},
	{"La situación económica del país ha mejorado considerablemente", "Spanish, formal"},
	{"The weather is beautiful today for a walk in the park", "English"},
	{"The economic situation of the country has improved considerably", "English, formal"},
	{"The information technology revolution transformed communication", "English, technical"},
	{"La revolución de la tecnología de información transformó la comunicación", "Spanish, technical"},
	{"Voy a hacer shopping porque necesito unos jeans nuevos", "Spanglish"},
	{"I'm going to the tienda to buy some tortillas for dinner", "Spanglish, English base"},
}

// ModelView is one model pair's reading of a text.
type ModelView struct {
	CosES  float64
	CosEN  float64
	PctES  float64
	PctEN  float64
	Winner string
}

// Diff is the gap between the two percentages.
func (v ModelView) Diff() float64 {
	return math.Abs(v.PctES - v.PctEN)
}

func newView(es, en score.Score) ModelView {
	pes, pen := score.Percentages(es.Cosine, en.Cosine)
	winner := "EN"
	if es.Cosine > en.Cosine {
		winner = "ES"
	}
	return ModelView{CosES: es.Cosine, CosEN: en.Cosine, PctES: pes, PctEN: pen, Winner: winner}
}

// Comparison contrasts original and discriminative models on one text.
type Comparison struct {
	LabeledText
	Original       ModelView
	Discriminative ModelView
}

// Improvement is how much more decisive the discriminative pair is.
func (c Comparison) Improvement() float64 {
	return c.Discriminative.Diff() - c.Original.Diff()
}

// Compare scores each text against both model pairs.
func Compare(d *detect.Detector, texts []LabeledText) []Comparison {
	out := make([]Comparison, 0, len(texts))
	for _, t := range texts {
		s := d.Score(t.Text)
		out = append(out, Comparison{
			LabeledText:    t,
			Original:       newView(s.OriginalES, s.OriginalEN),
			Discriminative: newView(s.DiscriminativeES, s.DiscriminativeEN),
		})
	}
	return out
}

// RenderComparison prints one block per text.
func RenderComparison(w io.Writer, comparisons []Comparison) error {
	headers := []string{"Model", "ES score", "EN score", "ES %", "EN %", "Winner"}
	right := map[int]bool{1: true, 2: true, 3: true, 4: true, 5: true}
	for i, c := range comparisons {
		if i > 0 {
			if _, err := fmt.Fprintln(w); err != nil {
				return err
			}
		}
		header := fmt.Sprintf("%q", truncate(c.Text, 60))
		if c.Label != "" {
			header = c.Label + ": " + header
		}
		if _, err := fmt.Fprintln(w, header); err != nil {
			return err
		}
		rows := [][]string{
			viewRow("Original", c.Original),
			viewRow("Discriminative", c.Discriminative),
		}
		if err := writeTable(w, headers, rows, right); err != nil {
			return err
		}
		verdict := fmt.Sprintf("Gap: original %.1f, discriminative %.1f", c.Original.Diff(), c.Discriminative.Diff())
		if c.Improvement() > 0 {
			verdict += fmt.Sprintf(" (+%.1f confidence)", c.Improvement())
		} else {
			verdict += " (no gain, possibly mixed)"
		}
		if _, err := fmt.Fprintln(w, verdict); err != nil {
			return err
		}
	}
	return nil
}

func viewRow(name string, v ModelView) []string {
	return []string{
		name,
		fmt.Sprintf("%.4f", v.CosES),
		fmt.Sprintf("%.4f", v.CosEN),
		fmt.Sprintf("%.1f%%", v.PctES),
		fmt.Sprintf("%.1f%%", v.PctEN),
		v.Winner,
	}
}

func truncate(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit]) + "..."
}
