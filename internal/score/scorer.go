package score

import (
	"math"

	"github.com/ppiankov/gapfill/internal/knowledge"
	"github.com/ppiankov/gapfill/internal/model"
)

// DefaultTarget is used when the requested target level is not a CEFR level
const DefaultTarget = model.CEFRB2

// Scorer assigns a 0-100 pedagogical value to blank candidates
type Scorer struct {
	kb *knowledge.KnowledgeBase
}

// NewScorer creates a new scorer backed by the given knowledge base
func NewScorer(kb *knowledge.KnowledgeBase) *Scorer {
	return &Scorer{kb: kb}
}

// Breakdown is the transparent sub-score split of one candidate
type Breakdown struct {
	Grammar     float64 `json:"grammar"`      // 0-85
	LockedChunk float64 `json:"locked_chunk"` // 5, 20 or 30
	Difficulty  float64 `json:"difficulty"`   // 0-15
	Pedagogy    float64 `json:"pedagogy"`     // 0-35
	Total       float64 `json:"total"`        // Clamped sum
}

// Score returns the candidate's value against the target level, in [0,100]
func (s *Scorer) Score(c model.Candidate, target model.CEFR) float64 {
	return s.Breakdown(c, target).Total
}

// Breakdown computes the four sub-scores. They are summed unnormalized and
// only the sum is clamped.
func (s *Scorer) Breakdown(c model.Candidate, target model.CEFR) Breakdown {
	b := Breakdown{
		Grammar:     scoreGrammar(c),
		LockedChunk: scoreLockedChunk(c.Bucket),
		Difficulty:  scoreDifficulty(c, target),
		Pedagogy:    s.scorePedagogy(c),
	}
	b.Total = math.Min(math.Max(b.Grammar+b.LockedChunk+b.Difficulty+b.Pedagogy, 0), 100)
	return b
}

// ScoreAll annotates every candidate in place and returns the mean score.
// The mean of an empty slice is 0.
func (s *Scorer) ScoreAll(candidates []model.Candidate, target model.CEFR) float64 {
	if len(candidates) == 0 {
		return 0
	}

	var sum float64
	for i := range candidates {
		candidates[i].Score = s.Score(candidates[i], target)
		sum += candidates[i].Score
	}
	return sum / float64(len(candidates))
}

// scoreGrammar: VERB 40 (+10 phrasal), ADJ/ADV 25, NOUN 15; idiom +35 else expression +30
func scoreGrammar(c model.Candidate) float64 {
	var score float64

	switch model.ParseCategory(string(c.Category)) {
	case model.CategoryVerb:
		score += 40
		if c.IsPhrasalVerb {
			score += 10
		}
	case model.CategoryAdj, model.CategoryAdv:
		score += 25
	case model.CategoryNoun:
		score += 15
	}

	if c.IsIdiom {
		score += 35
	} else if c.IsExpression {
		score += 30
	}

	return score
}

// scoreLockedChunk never returns zero; unbucketed phrases get a floor of 5
func scoreLockedChunk(b model.Bucket) float64 {
	switch b {
	case model.BucketA:
		return 30
	case model.BucketB:
		return 20
	default:
		return 5
	}
}

func scoreDifficulty(c model.Candidate, target model.CEFR) float64 {
	if !target.Valid() {
		target = DefaultTarget
	}
	level := c.CEFR
	if !level.Valid() {
		level = model.CEFRByLength(c.Phrase)
	}

	d := target.Index() - level.Index()
	if d < 0 {
		d = -d
	}

	switch d {
	case 0:
		return 15
	case 1:
		return 10
	case 2:
		return 5
	default:
		return 0
	}
}

func (s *Scorer) scorePedagogy(c model.Candidate) float64 {
	var score float64

	if _, ok := s.kb.LearnerError(c.Phrase); ok {
		score += 20
	}
	if len(s.kb.Variations(c.Lemma)) >= 3 {
		score += 10
	}
	if c.Register == model.RegisterNeutral {
		score += 5
	}

	return score
}
