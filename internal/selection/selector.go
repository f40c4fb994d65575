package selection

import (
	"math"
	"sort"

	"github.com/ppiankov/gapfill/internal/model"
)

const (
	// MinBlanks is the floor on the blank target regardless of dialogue length
	MinBlanks = 3
	// MinTurnGap is the minimum distance between two kept blank turns
	MinTurnGap = 2
)

// Distribution shares of the blank target, in percent. Each share is
// truncated independently, so the sub-targets may sum to less than the target.
const (
	verbShare   = 40
	idiomShare  = 20
	lockedShare = 30
	otherShare  = 10
)

// Selector chooses which candidates become blanks
type Selector struct{}

// NewSelector creates a new selector
func NewSelector() *Selector {
	return &Selector{}
}

// Plan records the per-bucket targets for one selection run
type Plan struct {
	Target int `json:"target"`
	Verbs  int `json:"verbs"`
	Idioms int `json:"idioms"`
	Locked int `json:"locked"`
	Other  int `json:"other"`
}

// TargetBlanks returns max(3, floor(turnCount*density))
func TargetBlanks(turnCount int, density float64) int {
	n := int(math.Floor(float64(turnCount) * density))
	if n < MinBlanks {
		return MinBlanks
	}
	return n
}

// NewPlan splits the blank target across the four buckets
func NewPlan(turnCount int, density float64) Plan {
	target := TargetBlanks(turnCount, density)
	return Plan{
		Target: target,
		Verbs:  target * verbShare / 100,
		Idioms: target * idiomShare / 100,
		Locked: target * lockedShare / 100,
		Other:  target * otherShare / 100,
	}
}

// Select picks blanks from scored candidates. The result is in ascending turn
// order with at most one blank per turn and kept turns at least MinTurnGap apart.
func (s *Selector) Select(candidates []model.Candidate, turnCount int, density float64) []model.SelectedBlank {
	plan := NewPlan(turnCount, density)

	var verbs, idioms, locked, other []model.Candidate
	for _, c := range candidates {
		if c.Category == model.CategoryVerb {
			verbs = append(verbs, c)
		}
		if c.IsIdiom || c.IsExpression {
			idioms = append(idioms, c)
		}
		if c.Bucket.IsLocked() {
			locked = append(locked, c)
		}
		if c.Category == model.CategoryAdj || c.Category == model.CategoryAdv {
			other = append(other, c)
		}
	}

	// Merge order matters: a later bucket replaces an earlier pick on the same turn.
	merged := make([]model.Candidate, 0, plan.Target)
	merged = append(merged, topN(verbs, plan.Verbs)...)
	merged = append(merged, topN(idioms, plan.Idioms)...)
	merged = append(merged, topN(locked, plan.Locked)...)
	merged = append(merged, topN(other, plan.Other)...)

	perTurn := make(map[int]model.Candidate, len(merged))
	for _, c := range merged {
		perTurn[c.TurnIndex] = c
	}

	deduped := make([]model.Candidate, 0, len(perTurn))
	for _, c := range perTurn {
		deduped = append(deduped, c)
	}
	sort.Slice(deduped, func(i, j int) bool {
		return deduped[i].TurnIndex < deduped[j].TurnIndex
	})

	return enforceSpacing(deduped)
}

// topN returns the n highest-scoring candidates. Ties keep extraction order.
func topN(bucket []model.Candidate, n int) []model.Candidate {
	if n <= 0 || len(bucket) == 0 {
		return nil
	}
	sorted := append([]model.Candidate(nil), bucket...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Score > sorted[j].Score
	})
	if n > len(sorted) {
		n = len(sorted)
	}
	return sorted[:n]
}

// enforceSpacing scans turn-sorted candidates and keeps one only if it is at
// least MinTurnGap turns after the last kept one
func enforceSpacing(sorted []model.Candidate) []model.SelectedBlank {
	result := make([]model.SelectedBlank, 0, len(sorted))
	lastTurn := math.MinInt / 2

	for _, c := range sorted {
		if c.TurnIndex-lastTurn >= MinTurnGap {
			result = append(result, model.SelectedBlank{Candidate: c, TurnIndex: c.TurnIndex})
			lastTurn = c.TurnIndex
		}
	}

	return result
}
