// Package detect classifies text as Spanish, English or Spanglish by
// combining original and discriminative n-gram models.
package detect

import (
	"fmt"
	"math"

	"golang.org/x/text/unicode/norm"

	"github.com/verte-zerg/codeswitch/internal/model"
	"github.com/verte-zerg/codeswitch/internal/ngram"
	"github.com/verte-zerg/codeswitch/internal/score"
	"github.com/verte-zerg/codeswitch/internal/weights"
)

// DefaultThreshold is the mixed-language threshold accepted by callers.
// The decision rules do not read it.
const DefaultThreshold = 40.0

const previewRunes = 50

// Models are the four weight models used by one detection.
type Models struct {
	OriginalES       *weights.Model
	OriginalEN       *weights.Model
	DiscriminativeES *weights.Model
	DiscriminativeEN *weights.Model
}

// Thresholds are the percentage cut-offs of the decision rules.
type Thresholds struct {
	// MixedMaxDiff and MixedMinShare drive the primary mixed rule.
	MixedMaxDiff  float64
	MixedMinShare float64
	// SecondaryMaxDiff and SecondaryMinShare apply when both
	// discriminative models matched something.
	SecondaryMaxDiff  float64
	SecondaryMinShare float64
	// SubtypeMargin separates ES-dominant and EN-dominant from balanced.
	SubtypeMargin float64
}

// DefaultThresholds returns the calibrated cut-offs.
func DefaultThresholds() Thresholds {
	return Thresholds{
		MixedMaxDiff:      15,
		MixedMinShare:     35,
		SecondaryMaxDiff:  25,
		SecondaryMinShare: 30,
		SubtypeMargin:     3,
	}
}

// Config controls a Detector.
type Config struct {
	Extract    ngram.Options
	Thresholds Thresholds
	// NFC composes query text before extraction.
	NFC bool
}

// DefaultConfig returns the 3..6 extractor and the default thresholds.
func DefaultConfig() Config {
	return Config{Extract: ngram.DefaultOptions(), Thresholds: DefaultThresholds()}
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if c.Extract.MinN < 1 || c.Extract.MaxN < c.Extract.MinN {
		return fmt.Errorf("%w: min=%d max=%d", ngram.ErrInvalidRange, c.Extract.MinN, c.Extract.MaxN)
	}
	t := c.Thresholds
	for name, v := range map[string]float64{
		"mixed-max-diff":      t.MixedMaxDiff,
		"mixed-min-share":     t.MixedMinShare,
		"secondary-max-diff":  t.SecondaryMaxDiff,
		"secondary-min-share": t.SecondaryMinShare,
		"subtype-margin":      t.SubtypeMargin,
	} {
		if v < 0 || v > 100 || math.IsNaN(v) {
			return fmt.Errorf("%s must be between 0 and 100, got %v", name, v)
		}
	}
	return nil
}

// Detector classifies texts against a fixed set of models. It holds no
// mutable state and may be used from multiple goroutines.
type Detector struct {
	models Models
	cfg    Config
}

// New returns a Detector. Models are used as given; loading them is up to
// the caller.
func New(models Models, cfg Config) (*Detector, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Detector{models: models, cfg: cfg}, nil
}

// Models returns the models the detector scores against.
func (d *Detector) Models() Models {
	return d.models
}

// Config returns the detector configuration.
func (d *Detector) Config() Config {
	return d.cfg
}

// Detect classifies text with the default configuration.
func Detect(text string, models Models, threshold float64) model.Result {
	d := &Detector{models: models, cfg: DefaultConfig()}
	return d.Detect(text, threshold)
}

// Scores are the raw per-model scores for one text.
type Scores struct {
	OriginalES       score.Score
	OriginalEN       score.Score
	DiscriminativeES score.Score
	DiscriminativeEN score.Score
}

// Score extracts the query n-grams once and scores them against all four
// models.
func (d *Detector) Score(text string) Scores {
	if d.cfg.NFC {
		text = norm.NFC.String(text)
	}
	table, err := ngram.ExtractWith(text, d.cfg.Extract)
	if err != nil {
		// The range was validated in New.
		table = ngram.Table{}
	}
	query := table.Keys()
	return Scores{
		OriginalES:       score.Against(query, d.models.OriginalES),
		OriginalEN:       score.Against(query, d.models.OriginalEN),
		DiscriminativeES: score.Against(query, d.models.DiscriminativeES),
		DiscriminativeEN: score.Against(query, d.models.DiscriminativeEN),
	}
}

// Detect classifies text. threshold is accepted for callers that send one;
// the verdict depends only on Thresholds.
func (d *Detector) Detect(text string, threshold float64) model.Result {
	s := d.Score(text)
	return decide(text, s, d.cfg.Thresholds)
}

func decide(text string, s Scores, t Thresholds) model.Result {
	esOrig, enOrig := score.Percentages(s.OriginalES.Cosine, s.OriginalEN.Cosine)
	esDisc, enDisc := score.Percentages(s.DiscriminativeES.Cosine, s.DiscriminativeEN.Cosine)
	matchesES, matchesEN := s.DiscriminativeES.Matches, s.DiscriminativeEN.Matches

	diff := math.Abs(esOrig - enOrig)
	minority := math.Min(esOrig, enOrig)

	var kind *model.SpanglishType
	switch {
	case diff <= t.MixedMaxDiff && minority >= t.MixedMinShare:
		sub := model.Balanced
		if esOrig > enOrig+t.SubtypeMargin {
			sub = model.ESDominant
		} else if enOrig > esOrig+t.SubtypeMargin {
			sub = model.ENDominant
		}
		kind = &sub
	case diff <= t.SecondaryMaxDiff && minority >= t.SecondaryMinShare && matchesES > 0 && matchesEN > 0:
		sub := model.ENDominant
		if esOrig > enOrig {
			sub = model.ESDominant
		}
		kind = &sub
	}

	res := model.Result{
		Text:          preview(text),
		IsSpanglish:   kind != nil,
		SpanglishType: kind,
		Details: model.Details{
			Original:       model.Pair{ES: esOrig, EN: enOrig},
			Discriminative: model.Pair{ES: esDisc, EN: enDisc},
			MatchesDisc:    model.CountPair{ES: matchesES, EN: matchesEN},
		},
	}

	discTotal := s.DiscriminativeES.Cosine + s.DiscriminativeEN.Cosine
	switch {
	case res.IsSpanglish:
		res.DominantLanguage = dominant(esOrig, enOrig)
		res.Confidence = math.Max(esOrig, enOrig)
		res.Proportions = model.Proportions{Spanish: esOrig, English: enOrig}
	case discTotal > 0 && (matchesES > 0 || matchesEN > 0):
		res.DominantLanguage = dominant(s.DiscriminativeES.Cosine, s.DiscriminativeEN.Cosine)
		res.Confidence = math.Max(esDisc, enDisc)
		res.Proportions = model.Proportions{Spanish: esDisc, English: enDisc}
	default:
		res.DominantLanguage = dominant(s.OriginalES.Cosine, s.OriginalEN.Cosine)
		res.Confidence = math.Max(esOrig, enOrig)
		res.Proportions = model.Proportions{Spanish: esOrig, English: enOrig}
	}
	return res
}

// dominant breaks ties toward English.
func dominant(es, en float64) string {
	if es > en {
		return model.LabelSpanish
	}
	return model.LabelEnglish
}

func preview(text string) string {
	runes := []rune(text)
	if len(runes) <= previewRunes {
		return text
	}
	return string(runes[:previewRunes]) + "..."
}
