package util

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// NormalizeText applies NFKC, strips control characters and collapses runs of
// whitespace to a single space.
func NormalizeText(s string) string {
	s = norm.NFKC.String(s)
	s = strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' {
			return ' '
		}
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)
	return strings.Join(strings.Fields(s), " ")
}

// FoldKey is the lookup key used by every knowledge table: normalized and lowercased
func FoldKey(s string) string {
	return strings.ToLower(NormalizeText(s))
}

// EqualFold compares two phrases after normalization, ignoring case
func EqualFold(a, b string) bool {
	return FoldKey(a) == FoldKey(b)
}
