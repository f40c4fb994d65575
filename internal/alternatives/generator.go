package alternatives

import (
	"strings"

	"github.com/ppiankov/gapfill/internal/knowledge"
	"github.com/ppiankov/gapfill/internal/model"
	"github.com/ppiankov/gapfill/internal/util"
	"go.uber.org/zap"
)

// MaxAlternatives caps the list returned for a single blank
const MaxAlternatives = 5

// copulas never get -ing/-ed forms
var copulas = map[string]bool{"is": true, "are": true, "be": true}

// Generator produces validated alternative answers for a blank
type Generator struct {
	kb     *knowledge.KnowledgeBase
	logger *zap.Logger
}

// NewGenerator creates a new generator. A nil logger disables logging.
func NewGenerator(kb *knowledge.KnowledgeBase, logger *zap.Logger) *Generator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Generator{kb: kb, logger: logger}
}

// Generate returns up to MaxAlternatives distinct phrases that could replace the
// candidate's phrase. When fewer than minCount pass validation the list is
// topped up from the collocation table, then from the whole variation table.
// Filling is best-effort: the result can stay short if every table is exhausted.
func (g *Generator) Generate(c model.Candidate, minCount int) []string {
	var pool []string
	pool = append(pool, g.kb.Variations(c.Lemma)...)
	if c.Category == model.CategoryVerb {
		pool = append(pool, VerbVariants(c.Phrase)...)
	}
	if c.Register != model.RegisterNeutral {
		pool = append(pool, g.kb.RegisterVariants(c.Phrase)...)
	}

	accepted := newPhraseSet(c.Phrase)
	for _, alt := range pool {
		if accepted.has(alt) {
			continue
		}
		if reason := g.Check(c.Phrase, alt); reason != "" {
			g.logger.Debug("alternative rejected",
				zap.String("phrase", c.Phrase),
				zap.String("alternative", alt),
				zap.String("reason", reason))
			continue
		}
		accepted.add(alt)
	}

	if accepted.len() < minCount {
		g.fallback(c, minCount, accepted)
	}

	out := accepted.list()
	if len(out) > MaxAlternatives {
		out = out[:MaxAlternatives]
	}
	return out
}

// fallback tops the set up to minCount. Fallback phrases go through the same
// gate as generated ones.
func (g *Generator) fallback(c model.Candidate, minCount int, accepted *phraseSet) {
	sources := [][]string{
		g.kb.Collocations(c.Phrase),
		g.kb.AllVariations(),
	}

	for _, src := range sources {
		for _, alt := range src {
			if accepted.len() >= minCount {
				return
			}
			if accepted.has(alt) || g.Check(c.Phrase, alt) != "" {
				continue
			}
			accepted.add(alt)
		}
	}

	if accepted.len() < minCount {
		g.logger.Debug("alternative tables exhausted",
			zap.String("phrase", c.Phrase),
			zap.Int("found", accepted.len()),
			zap.Int("wanted", minCount))
	}
}

// VerbVariants derives naive -ing/-ed forms: "trying" -> "try", "tryed";
// "walked" -> "walk", "walking"; "walk" -> "walking", "walked"
func VerbVariants(phrase string) []string {
	base := strings.ToLower(strings.TrimSpace(phrase))
	var variants []string

	switch {
	case strings.HasSuffix(base, "ing"):
		stem := strings.TrimSuffix(base, "ing")
		variants = append(variants, stem, stem+"ed")
	case strings.HasSuffix(base, "ed"):
		stem := strings.TrimSuffix(base, "ed")
		variants = append(variants, stem, stem+"ing")
	case !copulas[base]:
		variants = append(variants, base+"ing", base+"ed")
	}

	out := variants[:0]
	for _, v := range variants {
		if v != "" && v != base {
			out = append(out, v)
		}
	}
	return out
}

// phraseSet keeps accepted alternatives in insertion order, compared case-insensitively
type phraseSet struct {
	seen  map[string]struct{}
	order []string
}

func newPhraseSet(original string) *phraseSet {
	// The original is never an alternative of itself.
	return &phraseSet{seen: map[string]struct{}{util.FoldKey(original): {}}}
}

func (s *phraseSet) has(p string) bool {
	_, ok := s.seen[util.FoldKey(p)]
	return ok
}

func (s *phraseSet) add(p string) {
	s.seen[util.FoldKey(p)] = struct{}{}
	s.order = append(s.order, p)
}

func (s *phraseSet) len() int {
	return len(s.order)
}

func (s *phraseSet) list() []string {
	return append([]string(nil), s.order...)
}
