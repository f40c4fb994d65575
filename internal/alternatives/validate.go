package alternatives

import (
	"strings"

	"github.com/agnivade/levenshtein"
	"github.com/ppiankov/gapfill/internal/util"
)

// MinEditDistance rejects near-duplicates of the original
const MinEditDistance = 2

// MaxWordRatio rejects replacements much longer than the original
const MaxWordRatio = 1.5

// Rejection reasons returned by Check
const (
	RejectIdentical = "identical to original"
	RejectSpelling  = "american spelling"
	RejectDistance  = "edit distance too small"
	RejectLength    = "too many words"
)

// Check runs the validation gate and returns the first failing reason, or ""
// if the alternative is acceptable
func (g *Generator) Check(original, alternative string) string {
	orig := util.FoldKey(original)
	alt := util.FoldKey(alternative)

	if alt == orig {
		return RejectIdentical
	}

	for _, pair := range g.kb.Spellings() {
		if strings.Contains(alt, pair.US) && !strings.Contains(alt, pair.GB) {
			return RejectSpelling
		}
	}

	if EditDistance(orig, alt) < MinEditDistance {
		return RejectDistance
	}

	if float64(len(strings.Fields(alt))) > float64(len(strings.Fields(orig)))*MaxWordRatio {
		return RejectLength
	}

	return ""
}

// EditDistance is the case-insensitive character Levenshtein distance
func EditDistance(a, b string) int {
	return levenshtein.ComputeDistance(strings.ToLower(a), strings.ToLower(b))
}
