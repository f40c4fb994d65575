package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ppiankov/gapfill/internal/model"
)

func blank(turn int, category model.Category, bucket model.Bucket, conf model.Confidence) model.SelectedBlank {
	return model.SelectedBlank{
		Candidate:  model.Candidate{Phrase: "x", Category: category, TurnIndex: turn, Bucket: bucket},
		TurnIndex:  turn,
		Confidence: conf,
	}
}

func TestBuildMetadata_Compliance(t *testing.T) {
	blanks := []model.SelectedBlank{
		blank(0, model.CategoryVerb, model.BucketA, model.ConfidenceHigh),
		blank(2, model.CategoryVerb, model.BucketB, model.ConfidenceHigh),
		blank(4, model.CategoryIdiom, model.BucketA, model.ConfidenceMedium),
		blank(6, model.CategoryAdj, model.BucketNone, model.ConfidenceHigh),
		blank(8, model.CategoryNoun, model.BucketNone, model.ConfidenceMedium),
	}

	meta := buildMetadata(blanks, 20, defaultOptions())

	assert.InDelta(t, 0.6, meta.LockedChunkCompliance, 1e-9)
	assert.InDelta(t, 0.25, meta.AchievedDensity, 1e-9)
	assert.Equal(t, 5, meta.TotalBlanks)
	assert.Equal(t, map[model.Category]int{
		model.CategoryVerb:  2,
		model.CategoryIdiom: 1,
		model.CategoryAdj:   1,
		model.CategoryNoun:  1,
	}, meta.GrammarDistribution)
	assert.Equal(t, 3, meta.HighConfidence)
	assert.Equal(t, 2, meta.MediumConfidence)
	assert.Zero(t, meta.LowConfidence)
	assert.Equal(t, model.StatusPass, meta.ValidationStatus)
	assert.Equal(t, model.CEFRB2, meta.TargetCEFR)
}

func TestBuildMetadata_NoTurns(t *testing.T) {
	meta := buildMetadata(nil, 0, defaultOptions())

	assert.Zero(t, meta.AchievedDensity)
	assert.Zero(t, meta.LockedChunkCompliance)
	assert.NotNil(t, meta.GrammarDistribution)
}

func TestCompliance(t *testing.T) {
	assert.Zero(t, Compliance(0, 0))
	assert.InDelta(t, 0.6, Compliance(3, 5), 1e-9)
	assert.InDelta(t, 1.0, Compliance(4, 4), 1e-9)
}

func TestStatus(t *testing.T) {
	tests := []struct {
		name       string
		total      int
		low        int
		strictness model.Strictness
		want       model.ValidationStatus
	}{
		{"all covered", 4, 0, model.StrictnessStandard, model.StatusPass},
		{"all covered strict", 4, 0, model.StrictnessStrict, model.StatusPass},
		{"one low standard", 4, 1, model.StrictnessStandard, model.StatusWarn},
		{"one low strict", 4, 1, model.StrictnessStrict, model.StatusFail},
		{"one low lenient", 4, 1, model.StrictnessLenient, model.StatusPass},
		{"half low lenient", 4, 2, model.StrictnessLenient, model.StatusWarn},
		{"no blanks standard", 0, 0, model.StrictnessStandard, model.StatusWarn},
		{"no blanks lenient", 0, 0, model.StrictnessLenient, model.StatusWarn},
		{"no blanks strict", 0, 0, model.StrictnessStrict, model.StatusFail},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Status(tt.total, tt.low, tt.strictness))
		})
	}
}
