package model

import "strings"

// CEFR is a Common European Framework proficiency level
type CEFR string

const (
	CEFRA1 CEFR = "A1"
	CEFRA2 CEFR = "A2"
	CEFRB1 CEFR = "B1"
	CEFRB2 CEFR = "B2"
	CEFRC1 CEFR = "C1"
	CEFRC2 CEFR = "C2"
)

// CEFRLevels lists the six levels from lowest to highest
var CEFRLevels = []CEFR{CEFRA1, CEFRA2, CEFRB1, CEFRB2, CEFRC1, CEFRC2}

// Index returns the position of the level on the ordered scale, or -1
func (c CEFR) Index() int {
	for i, lvl := range CEFRLevels {
		if lvl == c {
			return i
		}
	}
	return -1
}

// Valid reports whether c is one of the six levels
func (c CEFR) Valid() bool {
	return c.Index() >= 0
}

// ParseCEFR normalizes a level string ("b2" -> B2). The second return is false
// for anything outside A1..C2.
func ParseCEFR(s string) (CEFR, bool) {
	lvl := CEFR(strings.ToUpper(strings.TrimSpace(s)))
	return lvl, lvl.Valid()
}

// CEFRByLength is the fallback level when no vocabulary band knows a word
func CEFRByLength(phrase string) CEFR {
	n := len([]rune(phrase))
	switch {
	case n < 5:
		return CEFRA1
	case n < 8:
		return CEFRA2
	default:
		return CEFRB1
	}
}
