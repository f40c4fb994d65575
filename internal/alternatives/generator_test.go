package alternatives

import (
	"strings"
	"testing"

	"github.com/ppiankov/gapfill/internal/knowledge"
	"github.com/ppiankov/gapfill/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGenerator(t *testing.T) *Generator {
	t.Helper()
	return NewGenerator(knowledge.Default(), nil)
}

func TestGenerate_VariationsAndVerbForms(t *testing.T) {
	g := newTestGenerator(t)

	c := model.Candidate{Phrase: "trying", Lemma: "try", Category: model.CategoryVerb, Register: model.RegisterNeutral}

	got := g.Generate(c, 3)
	assert.Equal(t, []string{"attempting", "planning", "wanting", "hoping", "try"}, got)
}

func TestGenerate_RejectsMultiWordForSingleWord(t *testing.T) {
	g := newTestGenerator(t)

	c := model.Candidate{Phrase: "missing", Lemma: "miss", Category: model.CategoryAdj, Register: model.RegisterNeutral}

	got := g.Generate(c, 3)
	assert.Equal(t, []string{"lacking", "needing", "without"}, got, "'short of' has too many words")
}

func TestGenerate_FallbackFromVariationTable(t *testing.T) {
	g := newTestGenerator(t)

	c := model.Candidate{Phrase: "kitchen", Lemma: "kitchen", Category: model.CategoryNoun, Register: model.RegisterNeutral}

	got := g.Generate(c, 3)
	assert.Equal(t, []string{"attempting", "planning", "wanting"}, got)
}

func TestGenerate_FallbackCollocationsFirst(t *testing.T) {
	g := newTestGenerator(t)

	c := model.Candidate{Phrase: "make", Lemma: "unknown", Category: model.CategoryNoun, Register: model.RegisterNeutral}

	got := g.Generate(c, 3)
	assert.Equal(t, []string{"progress", "attempting", "planning"}, got)
}

func TestGenerate_RegisterVariants(t *testing.T) {
	g := newTestGenerator(t)

	formal := model.Candidate{Phrase: "facilitate", Lemma: "facilitate", Category: model.CategoryAdj, Register: model.RegisterFormal}
	assert.Equal(t, []string{"help", "assist", "attempting"}, g.Generate(formal, 3))

	neutral := formal
	neutral.Register = model.RegisterNeutral
	assert.Equal(t, []string{"attempting", "planning", "wanting"}, g.Generate(neutral, 3),
		"register table is only consulted for non-neutral phrases")
}

func TestGenerate_MinCountZeroSkipsFallback(t *testing.T) {
	g := newTestGenerator(t)

	c := model.Candidate{Phrase: "kitchen", Lemma: "kitchen", Category: model.CategoryNoun, Register: model.RegisterNeutral}
	assert.Empty(t, g.Generate(c, 0))
}

func TestGenerate_ExhaustedTablesStayShort(t *testing.T) {
	tables := knowledge.DefaultTables()
	tables.Variations = []knowledge.Entry{{Key: "go", Values: []string{"went"}}}
	tables.Collocations = nil
	kb, err := knowledge.New(tables)
	require.NoError(t, err)

	g := NewGenerator(kb, nil)
	c := model.Candidate{Phrase: "table", Lemma: "table", Category: model.CategoryNoun, Register: model.RegisterNeutral}

	assert.Equal(t, []string{"went"}, g.Generate(c, 3))
}

func TestGenerate_PropertiesHold(t *testing.T) {
	g := newTestGenerator(t)

	candidates := []model.Candidate{
		{Phrase: "trying", Lemma: "try", Category: model.CategoryVerb, Register: model.RegisterNeutral},
		{Phrase: "got", Lemma: "get", Category: model.CategoryVerb, Register: model.RegisterNeutral},
		{Phrase: "missing", Lemma: "miss", Category: model.CategoryVerb, Register: model.RegisterCasual},
		{Phrase: "break the ice", Lemma: "break the ice", Category: model.CategoryIdiom, IsIdiom: true, Register: model.RegisterNeutral},
		{Phrase: "know", Lemma: "know", Category: model.CategoryVerb, Register: model.RegisterNeutral},
		{Phrase: "ready", Lemma: "ready", Category: model.CategoryAdj, Register: model.RegisterNeutral},
		{Phrase: "is", Lemma: "be", Category: model.CategoryVerb, Register: model.RegisterNeutral},
		{Phrase: "consequently", Lemma: "consequently", Category: model.CategoryAdv, Register: model.RegisterFormal},
	}

	for _, c := range candidates {
		t.Run(c.Phrase, func(t *testing.T) {
			got := g.Generate(c, 3)
			assert.LessOrEqual(t, len(got), MaxAlternatives)

			seen := map[string]bool{}
			for _, alt := range got {
				key := strings.ToLower(alt)
				assert.False(t, seen[key], "duplicate %q", alt)
				seen[key] = true

				assert.GreaterOrEqual(t, EditDistance(c.Phrase, alt), MinEditDistance, alt)
				ratio := float64(len(strings.Fields(alt))) / float64(len(strings.Fields(c.Phrase)))
				assert.LessOrEqual(t, ratio, MaxWordRatio, alt)
				assert.Empty(t, g.Check(c.Phrase, alt))
			}
		})
	}
}

func TestGenerate_Deterministic(t *testing.T) {
	g := newTestGenerator(t)
	c := model.Candidate{Phrase: "welcome", Lemma: "welcome", Category: model.CategoryVerb, Register: model.RegisterCasual}

	first := g.Generate(c, 3)
	for i := 0; i < 20; i++ {
		assert.Equal(t, first, g.Generate(c, 3))
	}
}

func TestVerbVariants(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"trying", []string{"try", "tryed"}},
		{"Walked", []string{"walk", "walking"}},
		{"walk", []string{"walking", "walked"}},
		{"is", nil},
		{"are", nil},
		{"be", nil},
		{"ing", []string{"ed"}},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := VerbVariants(tt.in)
			if tt.want == nil {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, tt.want, got)
		})
	}
}
