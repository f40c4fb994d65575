package selection

import (
	"fmt"
	"testing"

	"github.com/ppiankov/gapfill/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func verb(turn int, score float64) model.Candidate {
	return model.Candidate{Phrase: fmt.Sprintf("verb%d", turn), Category: model.CategoryVerb, TurnIndex: turn, Score: score}
}

func TestTargetBlanks(t *testing.T) {
	assert.Equal(t, 5, TargetBlanks(20, 0.25))
	assert.Equal(t, 3, TargetBlanks(4, 0.25), "floor of 3")
	assert.Equal(t, 3, TargetBlanks(0, 0.25))
	assert.Equal(t, 7, TargetBlanks(23, 0.33))
}

func TestNewPlan(t *testing.T) {
	assert.Equal(t, Plan{Target: 5, Verbs: 2, Idioms: 1, Locked: 1, Other: 0}, NewPlan(20, 0.25))
	assert.Equal(t, Plan{Target: 10, Verbs: 4, Idioms: 2, Locked: 3, Other: 1}, NewPlan(40, 0.25))
	assert.Equal(t, Plan{Target: 3, Verbs: 1, Idioms: 0, Locked: 0, Other: 0}, NewPlan(6, 0.25))
}

func TestSelect_Empty(t *testing.T) {
	s := NewSelector()
	assert.Empty(t, s.Select(nil, 10, 0.25))
}

func TestSelect_TopScoringVerbs(t *testing.T) {
	s := NewSelector()

	// 40 turns -> target 10 -> 4 verbs
	var candidates []model.Candidate
	for turn := 0; turn < 40; turn += 4 {
		candidates = append(candidates, verb(turn, float64(turn)))
	}

	got := s.Select(candidates, 40, 0.25)
	require.Len(t, got, 4)
	turns := []int{got[0].TurnIndex, got[1].TurnIndex, got[2].TurnIndex, got[3].TurnIndex}
	assert.Equal(t, []int{24, 28, 32, 36}, turns)
}

func TestSelect_LastMergedWinsPerTurn(t *testing.T) {
	s := NewSelector()

	// Same turn carries a high-scoring verb and a low-scoring locked chunk.
	// The locked bucket merges after verbs, so it owns the turn.
	candidates := []model.Candidate{
		{Phrase: "trying", Category: model.CategoryVerb, TurnIndex: 2, Score: 95},
		{Phrase: "kitchen", Category: model.CategoryNoun, TurnIndex: 2, Bucket: model.BucketB, Score: 40},
	}

	got := s.Select(candidates, 20, 0.25)
	require.Len(t, got, 1)
	assert.Equal(t, "kitchen", got[0].Candidate.Phrase)
	assert.Equal(t, 2, got[0].TurnIndex)
}

func TestSelect_OtherBucketWinsSharedTurn(t *testing.T) {
	s := NewSelector()

	// 40 turns -> other target 1
	candidates := []model.Candidate{
		{Phrase: "going", Category: model.CategoryVerb, TurnIndex: 5, Score: 80},
		{Phrase: "quickly", Category: model.CategoryAdv, TurnIndex: 5, Score: 30},
	}

	got := s.Select(candidates, 40, 0.25)
	require.Len(t, got, 1)
	assert.Equal(t, "quickly", got[0].Candidate.Phrase)
}

func TestSelect_CandidateInSeveralBuckets(t *testing.T) {
	s := NewSelector()

	idiomVerb := model.Candidate{Phrase: "break the ice", Category: model.CategoryVerb, IsIdiom: true, Bucket: model.BucketA, TurnIndex: 3, Score: 100}

	got := s.Select([]model.Candidate{idiomVerb}, 20, 0.25)
	require.Len(t, got, 1, "one candidate picked by three buckets collapses to one blank")
	assert.Equal(t, idiomVerb, got[0].Candidate)
}

func TestSelect_EnforcesSpacing(t *testing.T) {
	s := NewSelector()

	// 100 turns -> target 25 -> 10 verbs; consecutive turns 0..9
	var candidates []model.Candidate
	for turn := 0; turn < 10; turn++ {
		candidates = append(candidates, verb(turn, 50))
	}

	got := s.Select(candidates, 100, 0.25)

	var turns []int
	for _, b := range got {
		turns = append(turns, b.TurnIndex)
	}
	assert.Equal(t, []int{0, 2, 4, 6, 8}, turns)
}

func TestSelect_SpacingUsesLastKeptTurn(t *testing.T) {
	s := NewSelector()

	candidates := []model.Candidate{verb(1, 50), verb(2, 50), verb(3, 50), verb(4, 50)}

	got := s.Select(candidates, 100, 0.25)

	var turns []int
	for _, b := range got {
		turns = append(turns, b.TurnIndex)
	}
	// 2 is dropped (gap 1 from 1), 3 is kept (gap 2 from 1), 4 dropped
	assert.Equal(t, []int{1, 3}, turns)
}

func TestSelect_Invariants(t *testing.T) {
	s := NewSelector()

	var candidates []model.Candidate
	for turn := 0; turn < 30; turn++ {
		for k := 0; k < 3; k++ {
			c := model.Candidate{
				Phrase:    fmt.Sprintf("p%d-%d", turn, k),
				TurnIndex: turn,
				Score:     float64((turn*7 + k*13) % 100),
			}
			switch k {
			case 0:
				c.Category = model.CategoryVerb
			case 1:
				c.Category = model.CategoryAdj
				c.IsExpression = turn%2 == 0
			case 2:
				c.Category = model.CategoryNoun
				c.Bucket = model.BucketA
			}
			candidates = append(candidates, c)
		}
	}

	got := s.Select(candidates, 30, 0.5)
	require.NotEmpty(t, got)

	seen := map[int]bool{}
	for i, b := range got {
		assert.False(t, seen[b.TurnIndex], "turn %d selected twice", b.TurnIndex)
		seen[b.TurnIndex] = true
		assert.Equal(t, b.Candidate.TurnIndex, b.TurnIndex)
		if i > 0 {
			assert.GreaterOrEqual(t, b.TurnIndex-got[i-1].TurnIndex, MinTurnGap)
		}
	}
}

func TestTopN_StableOnTies(t *testing.T) {
	bucket := []model.Candidate{
		{Phrase: "a", Score: 10},
		{Phrase: "b", Score: 20},
		{Phrase: "c", Score: 10},
		{Phrase: "d", Score: 20},
	}

	got := topN(bucket, 3)
	require.Len(t, got, 3)
	assert.Equal(t, []string{"b", "d", "a"}, []string{got[0].Phrase, got[1].Phrase, got[2].Phrase})
	assert.Equal(t, "a", bucket[0].Phrase, "input order untouched")

	assert.Nil(t, topN(bucket, 0))
	assert.Len(t, topN(bucket, 10), 4)
}
