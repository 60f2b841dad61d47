package stats

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/verte-zerg/codeswitch/internal/detect"
	"github.com/verte-zerg/codeswitch/internal/generator"
	"github.com/verte-zerg/codeswitch/internal/model"
	"github.com/verte-zerg/codeswitch/internal/score"
)

// Case categories.
const (
	CategoryPureSpanish = "pure_spanish"
	CategoryPureEnglish = "pure_english"
	CategorySpanglish   = "spanglish"
	CategoryBorrowedES  = "borrowed_spanish"
	CategoryBorrowedEN  = "borrowed_english"
)

var categoryOrder = []string{
	CategoryPureSpanish,
	CategoryPureEnglish,
	CategoryBorrowedES,
	CategoryBorrowedEN,
	CategorySpanglish,
}

var (
	ErrNoCases         = errors.New("no calibration cases")
	ErrUnknownCategory = errors.New("unknown case category")
)

// Case is a labeled calibration text.
type Case struct {
	Text     string `toml:"text"`
	Category string `toml:"category"`
}

// DefaultCases are short everyday sentences, ten per category.
var DefaultCases = buildCases(map[string][]string{
	CategoryPureSpanish: {
		"Hola, ¿cómo estás?",
		"Me gusta mucho el fútbol",
		"Gracias por tu ayuda",
		"Buenos días, ¿qué tal?",
		"El clima está muy agradable hoy",
		"Vamos al cine esta noche",
		"¿Dónde está la biblioteca?",
		"Necesito ayuda con mi tarea",
		"La comida está deliciosa",
		"Tengo que ir al trabajo mañana",
	},
	CategoryPureEnglish: {
		"Hello, how are you?",
		"I really like football",
		"Thank you for your help",
		"Good morning, how are you doing?",
		"The weather is very nice today",
		"Let's go to the movies tonight",
		"Where is the library?",
		"I need help with my homework",
		"The food is delicious",
		"I have to go to work tomorrow",
	},
	CategorySpanglish: {
		"Hola world, esto es un test",
		"I feel shame when with you, el martes",
		"Me gusta mucho the weather today",
		"Vamos a watch a movie en el cine",
		"Let's go to la playa this weekend",
		"Tengo que hacer my homework ahora",
		"The party estuvo muy fun anoche",
		"Quiero comer pizza and drink soda",
		"My familia vive en Mexico City",
		"Estoy learning English at school",
	},
})

func buildCases(byCategory map[string][]string) []Case {
	var cases []Case
	for _, category := range categoryOrder {
		for _, text := range byCategory[category] {
			cases = append(cases, Case{Text: text, Category: category})
		}
	}
	return cases
}

func knownCategory(category string) bool {
	for _, c := range categoryOrder {
		if c == category {
			return true
		}
	}
	return false
}

func isPure(category string) bool {
	return category == CategoryPureSpanish || category == CategoryPureEnglish
}

// LoadCases reads [[case]] tables from a TOML file.
func LoadCases(path string) ([]Case, error) {
	var file struct {
		Case []Case `toml:"case"`
	}
	meta, err := toml.DecodeFile(path, &file)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("cases file not found: %s", path)
		}
		return nil, fmt.Errorf("parse cases: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("unknown keys in cases file: %v", undecoded)
	}
	for i, c := range file.Case {
		if strings.TrimSpace(c.Text) == "" {
			return nil, fmt.Errorf("case %d: text is empty", i+1)
		}
		if !knownCategory(c.Category) {
			return nil, fmt.Errorf("case %d: %w %q", i+1, ErrUnknownCategory, c.Category)
		}
	}
	if len(file.Case) == 0 {
		return nil, ErrNoCases
	}
	return file.Case, nil
}

// SyntheticCases labels generated samples. Pure and borrowed samples keep
// their base language; mixed ones count as Spanglish.
func SyntheticCases(samples []generator.Sample) []Case {
	cases := make([]Case, 0, len(samples))
	for _, s := range samples {
		if s.Text == "" {
			continue
		}
		var category string
		switch s.Category {
		case generator.Pure:
			category = CategoryPureEnglish
			if s.Base == "es" {
				category = CategoryPureSpanish
			}
		case generator.Borrowed:
			category = CategoryBorrowedEN
			if s.Base == "es" {
				category = CategoryBorrowedES
			}
		case generator.Mixed:
			category = CategorySpanglish
		default:
			continue
		}
		cases = append(cases, Case{Text: s.Text, Category: category})
	}
	return cases
}

// CaseResult is one scored case.
type CaseResult struct {
	Case
	PctES float64
	PctEN float64
	// Minority is the smaller of the two original-model percentages.
	Minority float64
	Result   model.Result
	Correct  bool
}

// CategorySummary aggregates the cases of one category.
type CategorySummary struct {
	Category    string
	Count       int
	AvgMinority float64
	MaxMinority float64
	MinMinority float64
	Correct     int
}

// Calibration is the outcome of scoring a labeled case set.
type Calibration struct {
	Results    []CaseResult
	Categories []CategorySummary
	// PureMax is the largest minority share among pure cases.
	PureMax float64
	// MixedMin is the smallest minority share among Spanglish cases.
	MixedMin float64
	// Suggested is the midpoint of PureMax and MixedMin.
	Suggested float64
	Threshold float64
}

// Accuracy is the share of cases whose verdict matched the label.
func (c Calibration) Accuracy() float64 {
	if len(c.Results) == 0 {
		return 0
	}
	correct := 0
	for _, r := range c.Results {
		if r.Correct {
			correct++
		}
	}
	return float64(correct) / float64(len(c.Results)) * 100
}

// Calibrate scores every case with the original models, classifies it with
// the detector and suggests a minority-share threshold. At least one pure
// case and one Spanglish case are required.
func Calibrate(d *detect.Detector, cases []Case, threshold float64) (Calibration, error) {
	cal := Calibration{Threshold: threshold, PureMax: math.Inf(-1), MixedMin: math.Inf(1)}
	summaries := make(map[string]*CategorySummary)
	for _, c := range cases {
		if !knownCategory(c.Category) {
			return Calibration{}, fmt.Errorf("%w %q", ErrUnknownCategory, c.Category)
		}
		s := d.Score(c.Text)
		pes, pen := score.Percentages(s.OriginalES.Cosine, s.OriginalEN.Cosine)
		res := d.Detect(c.Text, threshold)
		r := CaseResult{
			Case:     c,
			PctES:    pes,
			PctEN:    pen,
			Minority: math.Min(pes, pen),
			Result:   res,
			Correct:  correctVerdict(c.Category, res),
		}
		cal.Results = append(cal.Results, r)

		sum, ok := summaries[c.Category]
		if !ok {
			sum = &CategorySummary{Category: c.Category, MinMinority: math.Inf(1)}
			summaries[c.Category] = sum
		}
		sum.Count++
		sum.AvgMinority += r.Minority
		sum.MaxMinority = math.Max(sum.MaxMinority, r.Minority)
		sum.MinMinority = math.Min(sum.MinMinority, r.Minority)
		if r.Correct {
			sum.Correct++
		}

		switch {
		case isPure(c.Category):
			cal.PureMax = math.Max(cal.PureMax, r.Minority)
		case c.Category == CategorySpanglish:
			cal.MixedMin = math.Min(cal.MixedMin, r.Minority)
		}
	}
	if math.IsInf(cal.PureMax, -1) || math.IsInf(cal.MixedMin, 1) {
		return Calibration{}, fmt.Errorf("%w: need pure and spanglish cases", ErrNoCases)
	}
	cal.Suggested = (cal.PureMax + cal.MixedMin) / 2
	for _, category := range categoryOrder {
		sum, ok := summaries[category]
		if !ok {
			continue
		}
		sum.AvgMinority /= float64(sum.Count)
		cal.Categories = append(cal.Categories, *sum)
	}
	return cal, nil
}

func correctVerdict(category string, r model.Result) bool {
	switch category {
	case CategoryPureSpanish:
		return !r.IsSpanglish && r.DominantLanguage == model.LabelSpanish
	case CategoryPureEnglish:
		return !r.IsSpanglish && r.DominantLanguage == model.LabelEnglish
	case CategoryBorrowedES:
		return !r.IsSpanglish && r.DominantLanguage == model.LabelSpanish
	case CategoryBorrowedEN:
		return !r.IsSpanglish && r.DominantLanguage == model.LabelEnglish
	case CategorySpanglish:
		return r.IsSpanglish
	}
	return false
}

func categoryTitle(category string) string {
	words := strings.Split(category, "_")
	for i, w := range words {
		if w != "" {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}

// RenderCalibration prints per-case rows, per-category statistics, the
// suggested threshold and a plot of minority shares.
func RenderCalibration(w io.Writer, cal Calibration, plotWidth int, forceColor bool) error {
	right := map[int]bool{0: true, 1: true, 2: true}
	for _, sum := range cal.Categories {
		if _, err := fmt.Fprintf(w, "%s\n", categoryTitle(sum.Category)); err != nil {
			return err
		}
		var rows [][]string
		for _, r := range cal.Results {
			if r.Category != sum.Category {
				continue
			}
			mark := "ok"
			if !r.Correct {
				mark = "MISS"
			}
			rows = append(rows, []string{
				fmt.Sprintf("%.1f", r.PctES),
				fmt.Sprintf("%.1f", r.PctEN),
				fmt.Sprintf("%.1f", r.Minority),
				r.Result.Verdict(),
				mark,
				truncate(r.Text, 50),
			})
		}
		if err := writeTable(w, []string{"ES %", "EN %", "Min %", "Verdict", "", "Text"}, rows, right); err != nil {
			return err
		}
		if _, err := fmt.Fprintln(w); err != nil {
			return err
		}
	}

	rows := make([][]string, 0, len(cal.Categories))
	for _, sum := range cal.Categories {
		rows = append(rows, []string{
			categoryTitle(sum.Category),
			fmt.Sprintf("%.1f%%", sum.AvgMinority),
			fmt.Sprintf("%.1f%%", sum.MaxMinority),
			fmt.Sprintf("%d/%d", sum.Correct, sum.Count),
		})
	}
	if err := writeTable(w, []string{"Category", "Avg minority", "Max minority", "Correct"}, rows, map[int]bool{1: true, 2: true, 3: true}); err != nil {
		return err
	}

	if _, err := fmt.Fprintf(w, "\nMax noise in pure cases:      %.1f%%\nMin mix in Spanglish cases:   %.1f%%\nSuggested threshold:          %.1f%% (midpoint)\nCurrent threshold:            %.1f%%\nAccuracy:                     %.1f%%\n\n",
		cal.PureMax, cal.MixedMin, cal.Suggested, cal.Threshold, cal.Accuracy()); err != nil {
		return err
	}

	series := make([]Series, 0, len(cal.Categories))
	for _, sum := range cal.Categories {
		var values []float64
		for _, r := range cal.Results {
			if r.Category == sum.Category {
				values = append(values, r.Minority)
			}
		}
		series = append(series, Series{Name: categoryTitle(sum.Category), Values: values})
	}
	return PlotShares(w, "Minority share per case", series, cal.Suggested, plotWidth, 0, forceColor)
}
