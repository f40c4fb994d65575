package knowledge

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/ppiankov/gapfill/internal/model"
	"github.com/ppiankov/gapfill/internal/util"
	"gopkg.in/yaml.v3"
)

// KnowledgeBase is the immutable set of lookup tables shared by every pipeline
// stage. All keys are folded with util.FoldKey. Accessors return copies, so
// a single instance can be shared across goroutines without locking.
type KnowledgeBase struct {
	bucketA      map[string]struct{}
	bucketB      map[string]struct{}
	collocations map[string][]string
	phrasal      map[string]struct{}
	idioms       map[string]string
	cefr         map[string]model.CEFR
	spellings    []SpellingPair
	variations   []Entry
	variationIdx map[string]int
	errors       map[string]string
	examples     map[string]string
	registerVars map[string][]string
	casual       []string
	formal       []string
	stopwords    map[string]struct{}

	fingerprint string
}

// Default builds the knowledge base from the built-in tables
func Default() *KnowledgeBase {
	kb, err := New(DefaultTables())
	if err != nil {
		// The built-in tables are static; failing here is a programming error.
		panic(fmt.Sprintf("knowledge: invalid default tables: %v", err))
	}
	return kb
}

// New builds a knowledge base from tables, copying every entry
func New(t Tables) (*KnowledgeBase, error) {
	kb := &KnowledgeBase{
		bucketA:      toSet(t.LockedChunks.A),
		bucketB:      toSet(t.LockedChunks.B),
		collocations: make(map[string][]string, len(t.Collocations)),
		phrasal:      toSet(t.PhrasalVerbs),
		idioms:       make(map[string]string, len(t.Idioms)),
		cefr:         make(map[string]model.CEFR),
		variationIdx: make(map[string]int, len(t.Variations)),
		errors:       foldMap(t.LearnerErrors),
		examples:     foldMap(t.Examples),
		registerVars: make(map[string][]string, len(t.RegisterVariants)),
		stopwords:    toSet(t.Stopwords),
	}

	for _, e := range t.Collocations {
		kb.collocations[util.FoldKey(e.Key)] = append([]string(nil), e.Values...)
	}
	for k, v := range t.Idioms {
		kb.idioms[util.FoldKey(k)] = v
	}

	// Lower bands win when a word is listed twice.
	for _, band := range t.CEFRBands {
		lvl, ok := model.ParseCEFR(band.Level)
		if !ok {
			return nil, fmt.Errorf("cefr band %q: unknown level", band.Level)
		}
		for _, w := range band.Words {
			key := util.FoldKey(w)
			if prev, seen := kb.cefr[key]; !seen || lvl.Index() < prev.Index() {
				kb.cefr[key] = lvl
			}
		}
	}

	for _, p := range t.Spellings {
		us, gb := util.FoldKey(p.US), util.FoldKey(p.GB)
		if us == "" || gb == "" {
			return nil, fmt.Errorf("regional spelling pair %q/%q: both sides required", p.US, p.GB)
		}
		kb.spellings = append(kb.spellings, SpellingPair{US: us, GB: gb})
	}

	for _, e := range t.Variations {
		key := util.FoldKey(e.Key)
		if key == "" {
			return nil, fmt.Errorf("variation entry with empty lemma")
		}
		if _, dup := kb.variationIdx[key]; dup {
			return nil, fmt.Errorf("variation lemma %q listed twice", e.Key)
		}
		kb.variationIdx[key] = len(kb.variations)
		kb.variations = append(kb.variations, Entry{Key: key, Values: append([]string(nil), e.Values...)})
	}

	for _, e := range t.RegisterVariants {
		kb.registerVars[util.FoldKey(e.Key)] = append([]string(nil), e.Values...)
	}
	for _, w := range t.CasualMarkers {
		kb.casual = append(kb.casual, util.FoldKey(w))
	}
	for _, w := range t.FormalMarkers {
		kb.formal = append(kb.formal, util.FoldKey(w))
	}

	raw, err := yaml.Marshal(t)
	if err != nil {
		return nil, fmt.Errorf("fingerprint tables: %w", err)
	}
	sum := sha256.Sum256(raw)
	kb.fingerprint = hex.EncodeToString(sum[:8])

	return kb, nil
}

// Fingerprint identifies the table contents (used in cache keys)
func (kb *KnowledgeBase) Fingerprint() string {
	return kb.fingerprint
}

// Bucket returns the locked-chunk bucket of a phrase
func (kb *KnowledgeBase) Bucket(phrase string) model.Bucket {
	key := util.FoldKey(phrase)
	if _, ok := kb.bucketA[key]; ok {
		return model.BucketA
	}
	if _, ok := kb.bucketB[key]; ok {
		return model.BucketB
	}
	return model.BucketNone
}

// Collocations returns the collocations recorded for a phrase (nil if none)
func (kb *KnowledgeBase) Collocations(phrase string) []string {
	return clone(kb.collocations[util.FoldKey(phrase)])
}

// HasCollocation reports whether a phrase is a known collocation head or a
// complete "head + partner" collocation such as "make a decision"
func (kb *KnowledgeBase) HasCollocation(phrase string) bool {
	key := util.FoldKey(phrase)
	if _, ok := kb.collocations[key]; ok {
		return true
	}
	head, rest, found := strings.Cut(key, " ")
	if !found {
		return false
	}
	for _, partner := range kb.collocations[head] {
		if util.FoldKey(partner) == rest {
			return true
		}
	}
	return false
}

// IsPhrasalVerb reports whether the phrase is in the phrasal-verb set
func (kb *KnowledgeBase) IsPhrasalVerb(phrase string) bool {
	_, ok := kb.phrasal[util.FoldKey(phrase)]
	return ok
}

// Idiom returns the glossary meaning of an idiom
func (kb *KnowledgeBase) Idiom(phrase string) (string, bool) {
	meaning, ok := kb.idioms[util.FoldKey(phrase)]
	return meaning, ok
}

// CEFR returns the vocabulary band of a word
func (kb *KnowledgeBase) CEFR(word string) (model.CEFR, bool) {
	lvl, ok := kb.cefr[util.FoldKey(word)]
	return lvl, ok
}

// Spellings returns the American/British pairs in table order
func (kb *KnowledgeBase) Spellings() []SpellingPair {
	return append([]SpellingPair(nil), kb.spellings...)
}

// Variations returns the alternatives mapped to a lemma
func (kb *KnowledgeBase) Variations(lemma string) []string {
	idx, ok := kb.variationIdx[util.FoldKey(lemma)]
	if !ok {
		return nil
	}
	return clone(kb.variations[idx].Values)
}

// AllVariations flattens the whole variation table in declaration order
func (kb *KnowledgeBase) AllVariations() []string {
	var out []string
	for _, e := range kb.variations {
		out = append(out, e.Values...)
	}
	return out
}

// LearnerError returns the documented common error for a phrase
func (kb *KnowledgeBase) LearnerError(phrase string) (string, bool) {
	note, ok := kb.errors[util.FoldKey(phrase)]
	return note, ok
}

// Example returns the curated example sentence for a phrase
func (kb *KnowledgeBase) Example(phrase string) (string, bool) {
	ex, ok := kb.examples[util.FoldKey(phrase)]
	return ex, ok
}

// RegisterVariants returns the informal synonyms of a formal phrase
func (kb *KnowledgeBase) RegisterVariants(phrase string) []string {
	return clone(kb.registerVars[util.FoldKey(phrase)])
}

// DetectRegister classifies a phrase by its marker words. Casual markers are
// checked first.
func (kb *KnowledgeBase) DetectRegister(phrase string) model.Register {
	words := strings.FieldsFunc(util.FoldKey(phrase), func(r rune) bool {
		return r == ' ' || r == ',' || r == '.' || r == '!' || r == '?'
	})
	if containsAny(words, kb.casual) {
		return model.RegisterCasual
	}
	if containsAny(words, kb.formal) {
		return model.RegisterFormal
	}
	return model.RegisterNeutral
}

// IsStopword reports whether a token should never become a candidate
func (kb *KnowledgeBase) IsStopword(word string) bool {
	_, ok := kb.stopwords[util.FoldKey(word)]
	return ok
}

func toSet(items []string) map[string]struct{} {
	set := make(map[string]struct{}, len(items))
	for _, it := range items {
		set[util.FoldKey(it)] = struct{}{}
	}
	return set
}

func foldMap(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[util.FoldKey(k)] = v
	}
	return out
}

func clone(s []string) []string {
	if len(s) == 0 {
		return nil
	}
	return append([]string(nil), s...)
}

func containsAny(words, markers []string) bool {
	for _, w := range words {
		for _, m := range markers {
			if w == m {
				return true
			}
		}
	}
	return false
}
