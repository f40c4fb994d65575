package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConfidenceFor(t *testing.T) {
	tests := []struct {
		alternatives int
		want         Confidence
	}{
		{0, ConfidenceLow},
		{1, ConfidenceLow},
		{2, ConfidenceLow},
		{3, ConfidenceMedium},
		{4, ConfidenceHigh},
		{5, ConfidenceHigh},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ConfidenceFor(tt.alternatives), "alternatives=%d", tt.alternatives)
	}
}

func TestParseCategory(t *testing.T) {
	tests := []struct {
		pos  string
		want Category
	}{
		{"VERB", CategoryVerb},
		{" verb ", CategoryVerb},
		{"adj", CategoryAdj},
		{"ADV", CategoryAdv},
		{"Idiom", CategoryIdiom},
		{"EXPRESSION", CategoryExpression},
		{"collocation", CategoryCollocation},
		{"NOUN", CategoryNoun},
		{"PROPN", CategoryNoun},
		{"", CategoryNoun},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseCategory(tt.pos), "pos=%q", tt.pos)
	}
}

func TestBucket_IsLocked(t *testing.T) {
	assert.True(t, BucketA.IsLocked())
	assert.True(t, BucketB.IsLocked())
	assert.False(t, BucketNone.IsLocked())
	assert.False(t, Bucket("C").IsLocked())
}

func TestCandidate_WordCount(t *testing.T) {
	assert.Equal(t, 3, Candidate{Phrase: "  look forward  to "}.WordCount())
	assert.Equal(t, 0, Candidate{}.WordCount())
}

func TestCEFR_Index(t *testing.T) {
	for i, lvl := range []CEFR{CEFRA1, CEFRA2, CEFRB1, CEFRB2, CEFRC1, CEFRC2} {
		assert.Equal(t, i, lvl.Index())
		assert.True(t, lvl.Valid())
	}
	assert.Equal(t, -1, CEFR("D1").Index())
	assert.Equal(t, -1, CEFR("b2").Index())
	assert.False(t, CEFR("").Valid())
}

func TestParseCEFR(t *testing.T) {
	tests := []struct {
		in   string
		want CEFR
		ok   bool
	}{
		{"B2", CEFRB2, true},
		{" c1 ", CEFRC1, true},
		{"a1", CEFRA1, true},
		{"D1", CEFR("D1"), false},
		{"", CEFR(""), false},
	}

	for _, tt := range tests {
		got, ok := ParseCEFR(tt.in)
		assert.Equal(t, tt.want, got, "in=%q", tt.in)
		assert.Equal(t, tt.ok, ok, "in=%q", tt.in)
	}
}

func TestCEFRByLength(t *testing.T) {
	tests := []struct {
		phrase string
		want   CEFR
	}{
		{"go", CEFRA1},
		{"bake", CEFRA1},
		{"bread", CEFRA2},
		{"quickly", CEFRA2},
		{"delicious", CEFRB1},
		{"café", CEFRA1},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, CEFRByLength(tt.phrase), "phrase=%q", tt.phrase)
	}
}
