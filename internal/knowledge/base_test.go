package knowledge

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ppiankov/gapfill/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_Lookups(t *testing.T) {
	kb := Default()

	assert.Equal(t, model.BucketA, kb.Bucket("Piece of Cake"))
	assert.Equal(t, model.BucketB, kb.Bucket("kitchen"))
	assert.Equal(t, model.BucketNone, kb.Bucket("spaceship"))

	assert.True(t, kb.IsPhrasalVerb("Work Out"))
	assert.False(t, kb.IsPhrasalVerb("work"))

	meaning, ok := kb.Idiom("break the ice")
	assert.True(t, ok)
	assert.Equal(t, "start conversation in uncomfortable situations", meaning)

	lvl, ok := kb.CEFR("Try")
	assert.True(t, ok)
	assert.Equal(t, model.CEFRA1, lvl)

	_, ok = kb.CEFR("zeppelin")
	assert.False(t, ok)

	assert.Len(t, kb.Variations("try"), 4)
	assert.Nil(t, kb.Variations("trying"), "variations are keyed by lemma")

	note, ok := kb.LearnerError("TRYING")
	assert.True(t, ok)
	assert.Contains(t, note, "trying to")
}

func TestCollocations_ReturnsCopy(t *testing.T) {
	kb := Default()

	first := kb.Collocations("make")
	require.NotEmpty(t, first)
	first[0] = "mutated"

	assert.Equal(t, "a cake", kb.Collocations("make")[0])
}

func TestHasCollocation(t *testing.T) {
	kb := Default()

	assert.True(t, kb.HasCollocation("make"))
	assert.True(t, kb.HasCollocation("make a decision"))
	assert.False(t, kb.HasCollocation("make a sandwich"))
	assert.False(t, kb.HasCollocation("sandwich"))
}

func TestAllVariations_DeclarationOrder(t *testing.T) {
	kb := Default()

	all := kb.AllVariations()
	require.Len(t, all, 40)
	assert.Equal(t, []string{"attempting", "planning", "wanting", "hoping", "lacking"}, all[:5])
	assert.Equal(t, "be aware", all[len(all)-1])
}

func TestDetectRegister(t *testing.T) {
	kb := Default()

	tests := []struct {
		phrase string
		want   model.Register
	}{
		{"gonna", model.RegisterCasual},
		{"I kinda think so", model.RegisterCasual},
		{"therefore", model.RegisterFormal},
		{"likely", model.RegisterNeutral},
		{"kitchen", model.RegisterNeutral},
	}

	for _, tt := range tests {
		t.Run(tt.phrase, func(t *testing.T) {
			assert.Equal(t, tt.want, kb.DetectRegister(tt.phrase))
		})
	}
}

func TestNew_RejectsBadTables(t *testing.T) {
	tables := DefaultTables()
	tables.CEFRBands = append(tables.CEFRBands, Band{Level: "D9", Words: []string{"x"}})
	_, err := New(tables)
	assert.Error(t, err)

	tables = DefaultTables()
	tables.Variations = append(tables.Variations, Entry{Key: "TRY", Values: []string{"x"}})
	_, err = New(tables)
	assert.Error(t, err)

	tables = DefaultTables()
	tables.Spellings = append(tables.Spellings, SpellingPair{US: "gray"})
	_, err = New(tables)
	assert.Error(t, err)
}

func TestCEFRBands_LowestLevelWins(t *testing.T) {
	tables := DefaultTables()
	tables.CEFRBands = []Band{
		{Level: "B2", Words: []string{"plan"}},
		{Level: "A2", Words: []string{"plan"}},
	}
	kb, err := New(tables)
	require.NoError(t, err)

	lvl, ok := kb.CEFR("plan")
	require.True(t, ok)
	assert.Equal(t, model.CEFRA2, lvl)
}

func TestFingerprint(t *testing.T) {
	a := Default()
	b := Default()
	assert.Equal(t, a.Fingerprint(), b.Fingerprint())
	assert.NotEmpty(t, a.Fingerprint())

	tables := DefaultTables()
	tables.Stopwords = append(tables.Stopwords, "so")
	c, err := New(tables)
	require.NoError(t, err)
	assert.NotEqual(t, a.Fingerprint(), c.Fingerprint())
}

func TestLoadFile_RoundTripsDefaults(t *testing.T) {
	data, err := MarshalDefault()
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "tables.yaml")
	require.NoError(t, os.WriteFile(path, data, 0o644))

	kb, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, Default().Fingerprint(), kb.Fingerprint())
}

func TestLoadFile_UnknownField(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tables.yaml")
	require.NoError(t, os.WriteFile(path, []byte("not_a_table: [1]\n"), 0o644))

	_, err := LoadFile(path)
	assert.Error(t, err)
}

func TestResolve_EmptyPathUsesDefaults(t *testing.T) {
	kb, err := Resolve("")
	require.NoError(t, err)
	assert.Equal(t, Default().Fingerprint(), kb.Fingerprint())

	_, err = Resolve(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
