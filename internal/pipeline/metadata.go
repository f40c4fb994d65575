package pipeline

import (
	"github.com/ppiankov/gapfill/internal/model"
)

// buildMetadata aggregates per-exercise quality figures from the selected blanks.
// Confidence must already be assigned.
func buildMetadata(blanks []model.SelectedBlank, turnCount int, options model.ExerciseConfig) model.Metadata {
	meta := model.Metadata{
		TargetDensity:       options.Density,
		TotalBlanks:         len(blanks),
		GrammarDistribution: make(map[model.Category]int),
		TargetCEFR:          options.Difficulty,
	}

	if turnCount > 0 {
		meta.AchievedDensity = float64(len(blanks)) / float64(turnCount)
	}

	locked := 0
	for _, b := range blanks {
		meta.GrammarDistribution[b.Candidate.Category]++
		if b.Candidate.Bucket.IsLocked() {
			locked++
		}
		switch b.Confidence {
		case model.ConfidenceHigh:
			meta.HighConfidence++
		case model.ConfidenceMedium:
			meta.MediumConfidence++
		default:
			meta.LowConfidence++
		}
	}
	meta.LockedChunkCompliance = Compliance(locked, len(blanks))
	meta.ValidationStatus = Status(len(blanks), meta.LowConfidence, options.Strictness)

	return meta
}

// Compliance is the fraction of blanks drawn from locked-chunk buckets
func Compliance(locked, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(locked) / float64(total)
}

// Status derives the validation status from the LOW-confidence count.
//
// An exercise with no LOW blank passes. Otherwise strict fails, lenient
// tolerates LOW blanks while they are fewer than half, and everything else
// warns. An exercise with no blanks never passes.
func Status(total, low int, strictness model.Strictness) model.ValidationStatus {
	switch {
	case total > 0 && low == 0:
		return model.StatusPass
	case total == 0:
		if strictness == model.StrictnessStrict {
			return model.StatusFail
		}
		return model.StatusWarn
	case strictness == model.StrictnessStrict:
		return model.StatusFail
	case strictness == model.StrictnessLenient && low*2 < total:
		return model.StatusPass
	default:
		return model.StatusWarn
	}
}
