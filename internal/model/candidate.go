package model

import "strings"

// Category is the grammatical category of a blank candidate
type Category string

const (
	CategoryVerb        Category = "VERB"
	CategoryAdj         Category = "ADJ"
	CategoryAdv         Category = "ADV"
	CategoryNoun        Category = "NOUN"
	CategoryIdiom       Category = "IDIOM"
	CategoryExpression  Category = "EXPRESSION"
	CategoryCollocation Category = "COLLOCATION"
)

// ParseCategory maps a tagger POS label to a Category.
// Unknown labels fall back to NOUN.
func ParseCategory(pos string) Category {
	switch Category(strings.ToUpper(strings.TrimSpace(pos))) {
	case CategoryVerb:
		return CategoryVerb
	case CategoryAdj:
		return CategoryAdj
	case CategoryAdv:
		return CategoryAdv
	case CategoryIdiom:
		return CategoryIdiom
	case CategoryExpression:
		return CategoryExpression
	case CategoryCollocation:
		return CategoryCollocation
	default:
		return CategoryNoun
	}
}

// Register is the stylistic tier of a phrase
type Register string

const (
	RegisterFormal  Register = "formal"
	RegisterNeutral Register = "neutral"
	RegisterCasual  Register = "casual"
)

// Bucket is the locked-chunk bucket of a phrase
type Bucket string

const (
	BucketNone Bucket = ""
	BucketA    Bucket = "A" // primary
	BucketB    Bucket = "B" // secondary
)

// IsLocked reports whether the bucket is A or B
func (b Bucket) IsLocked() bool {
	return b == BucketA || b == BucketB
}

// Candidate is one extracted phrase occurrence that could be blanked
type Candidate struct {
	Phrase        string   `json:"phrase"`
	Category      Category `json:"category"`
	TurnIndex     int      `json:"turn_index"`
	SentenceIndex int      `json:"sentence_index"`
	WordStart     int      `json:"word_start"`
	WordEnd       int      `json:"word_end"`
	Lemma         string   `json:"lemma"`
	Register      Register `json:"register"`
	IsPhrasalVerb bool     `json:"is_phrasal_verb,omitempty"`
	IsIdiom       bool     `json:"is_idiom,omitempty"`
	IsExpression  bool     `json:"is_expression,omitempty"`
	IsCollocation bool     `json:"is_collocation,omitempty"`
	CEFR          CEFR     `json:"cefr_level"`
	Bucket        Bucket   `json:"locked_chunk_bucket,omitempty"`
	Score         float64  `json:"score"`
}

// WordCount returns the number of whitespace-separated words in the phrase
func (c Candidate) WordCount() int {
	return len(strings.Fields(c.Phrase))
}

// Confidence labels how well-covered a blank is by alternatives
type Confidence string

const (
	ConfidenceHigh   Confidence = "HIGH"
	ConfidenceMedium Confidence = "MEDIUM"
	ConfidenceLow    Confidence = "LOW"
)

// ConfidenceFor maps an alternative count to a confidence label
func ConfidenceFor(alternatives int) Confidence {
	switch {
	case alternatives >= 4:
		return ConfidenceHigh
	case alternatives == 3:
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}

// SelectedBlank is a candidate chosen for blanking
type SelectedBlank struct {
	Candidate  Candidate
	TurnIndex  int
	Confidence Confidence
}
