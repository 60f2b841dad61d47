// Package model defines shared data structures.
package model

// Language labels reported in results.
const (
	LabelSpanish = "Español"
	LabelEnglish = "Inglés"
)

// SpanglishType qualifies a mixed-language verdict.
type SpanglishType string

const (
	ESDominant SpanglishType = "ES-dominant"
	ENDominant SpanglishType = "EN-dominant"
	Balanced   SpanglishType = "balanced"
)

// Pair holds one value per language.
type Pair struct {
	ES float64 `json:"es"`
	EN float64 `json:"en"`
}

// CountPair holds one count per language.
type CountPair struct {
	ES int `json:"es"`
	EN int `json:"en"`
}

// Proportions are the reported language shares in percent.
type Proportions struct {
	Spanish float64 `json:"español"`
	English float64 `json:"inglés"`
}

// Details exposes the intermediate scores behind a verdict.
type Details struct {
	Original       Pair      `json:"original"`
	Discriminative Pair      `json:"discriminative"`
	MatchesDisc    CountPair `json:"matches_disc"`
}

// Result is the classification of one text.
type Result struct {
	Text             string         `json:"text"`
	DominantLanguage string         `json:"dominant_language"`
	IsSpanglish      bool           `json:"is_spanglish"`
	SpanglishType    *SpanglishType `json:"spanglish_type"`
	Confidence       float64        `json:"confidence"`
	Proportions      Proportions    `json:"proportions"`
	Details          Details        `json:"details"`
}

// Type returns the sub-type or "" when the text is not mixed.
func (r Result) Type() SpanglishType {
	if r.SpanglishType == nil {
		return ""
	}
	return *r.SpanglishType
}

// Verdict is a short label: the dominant language or "Spanglish".
func (r Result) Verdict() string {
	if r.IsSpanglish {
		return "Spanglish"
	}
	return r.DominantLanguage
}
