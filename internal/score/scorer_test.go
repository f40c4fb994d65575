package score

import (
	"testing"

	"github.com/ppiankov/gapfill/internal/knowledge"
	"github.com/ppiankov/gapfill/internal/model"
	"github.com/stretchr/testify/assert"
)

func TestScorer_Score_WorkedExample(t *testing.T) {
	scorer := NewScorer(knowledge.Default())

	c := model.Candidate{
		Phrase:   "trying",
		Lemma:    "try",
		Category: model.CategoryVerb,
		Register: model.RegisterNeutral,
		CEFR:     model.CEFRB1,
	}

	b := scorer.Breakdown(c, model.CEFRB2)

	assert.Equal(t, 40.0, b.Grammar)
	assert.Equal(t, 5.0, b.LockedChunk)
	assert.Equal(t, 10.0, b.Difficulty)
	assert.Equal(t, 35.0, b.Pedagogy)
	assert.Equal(t, 90.0, b.Total)
	assert.Equal(t, 90.0, scorer.Score(c, model.CEFRB2))
}

func TestScorer_Score_ClampsAt100(t *testing.T) {
	scorer := NewScorer(knowledge.Default())

	// 40+10+35 grammar, 30 bucket A, 15 exact level, 20+10+5 pedagogy = 165 before clamping
	c := model.Candidate{
		Phrase:        "break",
		Lemma:         "break",
		Category:      model.CategoryVerb,
		Register:      model.RegisterNeutral,
		CEFR:          model.CEFRB2,
		IsPhrasalVerb: true,
		IsIdiom:       true,
		Bucket:        model.BucketA,
	}

	b := scorer.Breakdown(c, model.CEFRB2)
	assert.Equal(t, 165.0, b.Grammar+b.LockedChunk+b.Difficulty+b.Pedagogy)
	assert.Equal(t, 100.0, b.Total)
}

func TestScoreGrammar(t *testing.T) {
	tests := []struct {
		name string
		c    model.Candidate
		want float64
	}{
		{"verb", model.Candidate{Category: model.CategoryVerb}, 40},
		{"phrasal verb", model.Candidate{Category: model.CategoryVerb, IsPhrasalVerb: true}, 50},
		{"adjective", model.Candidate{Category: model.CategoryAdj}, 25},
		{"adverb", model.Candidate{Category: model.CategoryAdv}, 25},
		{"noun", model.Candidate{Category: model.CategoryNoun}, 15},
		{"unknown category counts as noun", model.Candidate{Category: "PRON"}, 15},
		{"idiom category alone", model.Candidate{Category: model.CategoryIdiom}, 0},
		{"idiom flag", model.Candidate{Category: model.CategoryIdiom, IsIdiom: true}, 35},
		{"expression flag", model.Candidate{Category: model.CategoryNoun, IsExpression: true}, 45},
		{"idiom wins over expression", model.Candidate{Category: model.CategoryVerb, IsIdiom: true, IsExpression: true}, 75},
		{"phrasal flag ignored on adjective", model.Candidate{Category: model.CategoryAdj, IsPhrasalVerb: true}, 25},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, scoreGrammar(tt.c))
		})
	}
}

func TestScoreLockedChunk(t *testing.T) {
	assert.Equal(t, 30.0, scoreLockedChunk(model.BucketA))
	assert.Equal(t, 20.0, scoreLockedChunk(model.BucketB))
	assert.Equal(t, 5.0, scoreLockedChunk(model.BucketNone))
}

func TestScoreDifficulty(t *testing.T) {
	tests := []struct {
		name   string
		level  model.CEFR
		phrase string
		target model.CEFR
		want   float64
	}{
		{"exact", model.CEFRB2, "x", model.CEFRB2, 15},
		{"one below", model.CEFRB1, "x", model.CEFRB2, 10},
		{"one above", model.CEFRC1, "x", model.CEFRB2, 10},
		{"two apart", model.CEFRA2, "x", model.CEFRB2, 5},
		{"three apart", model.CEFRA1, "x", model.CEFRB2, 0},
		{"five apart", model.CEFRA1, "x", model.CEFRC2, 0},
		{"invalid level short phrase is A1", "Z9", "cat", model.CEFRA1, 15},
		{"invalid level mid phrase is A2", "", "kitchen", model.CEFRA1, 10},
		{"invalid level long phrase is B1", "", "celebrated", model.CEFRB1, 15},
		{"invalid target falls back to B2", model.CEFRB2, "x", "ZZ", 15},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := model.Candidate{Phrase: tt.phrase, CEFR: tt.level}
			assert.Equal(t, tt.want, scoreDifficulty(c, tt.target))
		})
	}
}

func TestScorePedagogy(t *testing.T) {
	scorer := NewScorer(knowledge.Default())

	tests := []struct {
		name string
		c    model.Candidate
		want float64
	}{
		{"error hit is case-insensitive", model.Candidate{Phrase: "Missing", Lemma: "zzz", Register: model.RegisterCasual}, 20},
		{"variation hit by lemma", model.Candidate{Phrase: "helped", Lemma: "help", Register: model.RegisterFormal}, 10},
		{"neutral register", model.Candidate{Phrase: "table", Lemma: "table", Register: model.RegisterNeutral}, 5},
		{"all three", model.Candidate{Phrase: "make", Lemma: "make", Register: model.RegisterNeutral}, 35},
		{"nothing", model.Candidate{Phrase: "table", Lemma: "table", Register: model.RegisterCasual}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, scorer.scorePedagogy(tt.c))
		})
	}
}

func TestScorer_ScoreAll(t *testing.T) {
	scorer := NewScorer(knowledge.Default())

	assert.Equal(t, 0.0, scorer.ScoreAll(nil, model.CEFRB2), "empty input must not divide by zero")

	candidates := []model.Candidate{
		{Phrase: "trying", Lemma: "try", Category: model.CategoryVerb, Register: model.RegisterNeutral, CEFR: model.CEFRB1},
		{Phrase: "table", Lemma: "table", Category: model.CategoryNoun, Register: model.RegisterCasual, CEFR: model.CEFRA1},
	}

	avg := scorer.ScoreAll(candidates, model.CEFRB2)

	assert.Equal(t, 90.0, candidates[0].Score)
	assert.Equal(t, 20.0, candidates[1].Score) // 15 noun + 5 floor + 0 difficulty + 0 pedagogy
	assert.Equal(t, 55.0, avg)
}

func TestScorer_ScoreAlwaysInRange(t *testing.T) {
	scorer := NewScorer(knowledge.Default())

	categories := []model.Category{
		model.CategoryVerb, model.CategoryAdj, model.CategoryAdv, model.CategoryNoun,
		model.CategoryIdiom, model.CategoryExpression, model.CategoryCollocation,
	}
	buckets := []model.Bucket{model.BucketNone, model.BucketA, model.BucketB}
	phrases := []string{"trying", "break", "kitchen", "piece of cake", ""}

	for _, cat := range categories {
		for _, b := range buckets {
			for _, p := range phrases {
				for _, lvl := range append([]model.CEFR{"bogus"}, model.CEFRLevels...) {
					c := model.Candidate{
						Phrase: p, Lemma: p, Category: cat, Bucket: b, CEFR: lvl,
						Register: model.RegisterNeutral, IsIdiom: true, IsPhrasalVerb: true,
					}
					s := scorer.Score(c, model.CEFRC2)
					assert.GreaterOrEqual(t, s, 0.0)
					assert.LessOrEqual(t, s, 100.0)
				}
			}
		}
	}
}
