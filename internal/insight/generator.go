package insight

import (
	"fmt"

	"github.com/ppiankov/gapfill/internal/knowledge"
	"github.com/ppiankov/gapfill/internal/model"
)

// Grammar classifications, in priority order
const (
	GrammarPhrasalVerb = "PHRASAL_VERB"
	GrammarIdiom       = "IDIOM"
	GrammarVerb        = "VERB"
	GrammarAdjective   = "ADJECTIVE"
	GrammarAdverb      = "ADVERB"
	GrammarOther       = "OTHER"
)

// NoErrorsDocumented is the common-error note when the error table has no entry
const NoErrorsDocumented = "No common errors documented"

type template struct {
	explanation string // %s is the phrase
	usage       string
}

var templates = map[string]template{
	GrammarPhrasalVerb: {"Phrasal verb '%s' combines verb + particle", "Common in both spoken and written English"},
	GrammarIdiom:       {"Idiom '%s' is a fixed expression with special meaning", "Often used in informal or conversational contexts"},
	GrammarVerb:        {"Verb '%s' expresses action or state", "Essential for sentence construction and tense formation"},
	GrammarAdjective:   {"Adjective '%s' describes or modifies nouns", "Adds description and detail to noun phrases"},
	GrammarAdverb:      {"Adverb '%s' modifies verbs, adjectives, or other adverbs", "Provides additional information about actions or qualities"},
	GrammarOther:       {"Word '%s' has grammatical significance", "Common in English communication"},
}

var ieltsBands = map[model.CEFR]string{
	model.CEFRA1: "Band 4-5 (Elementary)",
	model.CEFRA2: "Band 5-6 (Elementary-Intermediate)",
	model.CEFRB1: "Band 6-7 (Intermediate-Upper Intermediate)",
	model.CEFRB2: "Band 7-8 (Upper Intermediate-Advanced)",
	model.CEFRC1: "Band 8-9 (Advanced-Expert)",
	model.CEFRC2: "Band 8-9 (Advanced-Expert)",
}

// Generator builds deep-dive usage notes
type Generator struct {
	kb *knowledge.KnowledgeBase
}

// NewGenerator creates a new insight generator
func NewGenerator(kb *knowledge.KnowledgeBase) *Generator {
	return &Generator{kb: kb}
}

// Generate builds the insight for a selected blank. Every table miss has a
// default, so the result is always populated. The alternatives are accepted
// for interface symmetry with the answer key and are not used in the text.
func (g *Generator) Generate(c model.Candidate, alternatives []string) *model.DeepDiveInsight {
	grammar := Classify(c)
	tpl := templates[grammar]

	collocations := g.kb.Collocations(c.Phrase)
	if collocations == nil {
		collocations = []string{}
	}

	commonErrors, ok := g.kb.LearnerError(c.Phrase)
	if !ok {
		commonErrors = NoErrorsDocumented
	}

	example, ok := g.kb.Example(c.Phrase)
	if !ok {
		example = fmt.Sprintf("Example with '%s' in context.", c.Phrase)
	}

	return &model.DeepDiveInsight{
		TurnIndex:      c.TurnIndex,
		Phrase:         c.Phrase,
		GrammarType:    grammar,
		Explanation:    fmt.Sprintf(tpl.explanation, c.Phrase),
		UsageContext:   tpl.usage,
		Collocations:   collocations,
		IELTSRelevance: IELTSRelevance(c.CEFR),
		CommonErrors:   commonErrors,
		Example:        example,
	}
}

// Classify picks the grammar classification: phrasal verb > idiom > POS > OTHER
func Classify(c model.Candidate) string {
	switch {
	case c.IsPhrasalVerb:
		return GrammarPhrasalVerb
	case c.IsIdiom:
		return GrammarIdiom
	case c.Category == model.CategoryVerb:
		return GrammarVerb
	case c.Category == model.CategoryAdj:
		return GrammarAdjective
	case c.Category == model.CategoryAdv:
		return GrammarAdverb
	default:
		return GrammarOther
	}
}

// IELTSRelevance maps a CEFR level to its IELTS band label.
// Anything that is not A1-B2 is treated as advanced.
func IELTSRelevance(level model.CEFR) string {
	if band, ok := ieltsBands[level]; ok {
		return band
	}
	return ieltsBands[model.CEFRC2]
}
