package extract

import (
	"strings"

	"github.com/ppiankov/gapfill/internal/knowledge"
	"github.com/ppiankov/gapfill/internal/model"
	"github.com/ppiankov/gapfill/internal/util"
)

// minTokenLength skips very short tokens ("I", "to", "ok")
const minTokenLength = 3

// maxWindow is the longest token run checked against the idiom and phrasal tables
const maxWindow = 4

// CandidateExtractor turns tagger output into blank candidates. It does no
// tagging of its own: POS, lemmas and sentence numbers come from the input.
type CandidateExtractor struct {
	kb *knowledge.KnowledgeBase
}

// NewCandidateExtractor creates a new candidate extractor
func NewCandidateExtractor(kb *knowledge.KnowledgeBase) *CandidateExtractor {
	return &CandidateExtractor{kb: kb}
}

// Extract returns the candidates of every turn in dialogue order. Within a turn:
// single tokens first, then idiom/phrasal windows, noun chunks, and
// tagger-supplied phrases.
func (e *CandidateExtractor) Extract(d *model.Dialogue) []model.Candidate {
	var candidates []model.Candidate
	for i, turn := range d.Turns {
		candidates = append(candidates, e.extractTurn(i, turn)...)
	}
	return candidates
}

func (e *CandidateExtractor) extractTurn(turnIdx int, turn model.Turn) []model.Candidate {
	var out []model.Candidate
	multi := make(map[string]bool) // folded multi-word phrases already emitted for this turn

	for i, tok := range turn.Tokens {
		phrase := util.NormalizeText(tok.Text)
		if len([]rune(phrase)) < minTokenLength || e.kb.IsStopword(phrase) {
			continue
		}

		lemma := tok.Lemma
		if lemma == "" {
			lemma = strings.ToLower(phrase)
		}

		out = append(out, model.Candidate{
			Phrase:        phrase,
			Category:      model.ParseCategory(tok.POS),
			TurnIndex:     turnIdx,
			SentenceIndex: tok.Sentence,
			WordStart:     i,
			WordEnd:       i + 1,
			Lemma:         lemma,
			Register:      e.kb.DetectRegister(phrase),
			IsPhrasalVerb: tok.PhrasalVerb,
			IsIdiom:       tok.Idiom,
			CEFR:          e.cefrFor(lemma, phrase),
			Bucket:        e.kb.Bucket(phrase),
		})
	}

	for _, c := range e.windowCandidates(turnIdx, turn.Tokens) {
		key := util.FoldKey(c.Phrase)
		if multi[key] {
			continue
		}
		multi[key] = true
		out = append(out, c)
	}

	for _, chunk := range turn.NounChunks {
		c, ok := e.chunkCandidate(turnIdx, chunk, turn.Tokens)
		if !ok || multi[util.FoldKey(c.Phrase)] {
			continue
		}
		multi[util.FoldKey(c.Phrase)] = true
		out = append(out, c)
	}

	for _, p := range turn.Phrases {
		c, ok := e.phraseCandidate(turnIdx, p)
		if !ok || multi[util.FoldKey(c.Phrase)] {
			continue
		}
		multi[util.FoldKey(c.Phrase)] = true
		out = append(out, c)
	}

	return out
}

// windowCandidates finds idioms and phrasal verbs spanning 2-4 tokens of one sentence
func (e *CandidateExtractor) windowCandidates(turnIdx int, tokens []model.Token) []model.Candidate {
	var out []model.Candidate

	for start := range tokens {
		for size := 2; size <= maxWindow && start+size <= len(tokens); size++ {
			window := tokens[start : start+size]
			if window[0].Sentence != window[size-1].Sentence {
				break
			}

			words := make([]string, size)
			for i, tok := range window {
				words[i] = util.NormalizeText(tok.Text)
			}
			phrase := strings.Join(words, " ")

			_, isIdiom := e.kb.Idiom(phrase)
			isPhrasal := e.kb.IsPhrasalVerb(phrase) && model.ParseCategory(window[0].POS) == model.CategoryVerb
			if !isIdiom && !isPhrasal {
				continue
			}

			category := model.CategoryIdiom
			if isPhrasal {
				category = model.CategoryVerb
			}

			lemma := strings.ToLower(phrase)
			if window[0].Lemma != "" {
				lemma = strings.ToLower(window[0].Lemma + " " + strings.Join(words[1:], " "))
			}

			out = append(out, model.Candidate{
				Phrase:        phrase,
				Category:      category,
				TurnIndex:     turnIdx,
				SentenceIndex: window[0].Sentence,
				WordStart:     start,
				WordEnd:       start + size,
				Lemma:         lemma,
				Register:      e.kb.DetectRegister(phrase),
				IsPhrasalVerb: isPhrasal,
				IsIdiom:       isIdiom,
				IsExpression:  isIdiom,
				CEFR:          e.cefrFor(lemma, phrase),
				Bucket:        e.kb.Bucket(phrase),
			})
		}
	}

	return out
}

// chunkCandidate promotes a multi-word noun chunk that is a locked chunk or a
// known collocation
func (e *CandidateExtractor) chunkCandidate(turnIdx int, chunk model.Span, tokens []model.Token) (model.Candidate, bool) {
	phrase := util.NormalizeText(chunk.Text)
	words := strings.Fields(phrase)
	if len(words) < 2 {
		return model.Candidate{}, false
	}

	bucket := e.kb.Bucket(phrase)
	collocation := e.kb.HasCollocation(phrase)
	if !bucket.IsLocked() && !collocation {
		return model.Candidate{}, false
	}

	category := model.CategoryExpression
	if collocation {
		category = model.CategoryCollocation
	}

	start, sentence := locate(chunk.Start, tokens)
	lemma := strings.ToLower(phrase)

	return model.Candidate{
		Phrase:        phrase,
		Category:      category,
		TurnIndex:     turnIdx,
		SentenceIndex: sentence,
		WordStart:     start,
		WordEnd:       start + len(words),
		Lemma:         lemma,
		Register:      e.kb.DetectRegister(phrase),
		IsExpression:  !collocation,
		IsCollocation: collocation,
		CEFR:          e.cefrFor(lemma, phrase),
		Bucket:        bucket,
	}, true
}

// phraseCandidate passes a tagger-supplied phrase through, filling defaults
func (e *CandidateExtractor) phraseCandidate(turnIdx int, p model.TaggedPhrase) (model.Candidate, bool) {
	phrase := util.NormalizeText(p.Text)
	if phrase == "" {
		return model.Candidate{}, false
	}

	var category model.Category
	switch {
	case p.POS != "":
		category = model.ParseCategory(p.POS)
	case p.Idiom:
		category = model.CategoryIdiom
	case p.Collocation:
		category = model.CategoryCollocation
	case p.Expression:
		category = model.CategoryExpression
	default:
		category = model.CategoryNoun
	}

	lemma := p.Lemma
	if lemma == "" {
		lemma = strings.ToLower(phrase)
	}

	_, knownIdiom := e.kb.Idiom(phrase)

	return model.Candidate{
		Phrase:        phrase,
		Category:      category,
		TurnIndex:     turnIdx,
		SentenceIndex: p.Sentence,
		WordStart:     0,
		WordEnd:       len(strings.Fields(phrase)),
		Lemma:         lemma,
		Register:      e.kb.DetectRegister(phrase),
		IsPhrasalVerb: p.PhrasalVerb || e.kb.IsPhrasalVerb(phrase),
		IsIdiom:       p.Idiom || knownIdiom,
		IsExpression:  p.Expression,
		IsCollocation: p.Collocation || e.kb.HasCollocation(phrase),
		CEFR:          e.cefrFor(lemma, phrase),
		Bucket:        e.kb.Bucket(phrase),
	}, true
}

// cefrFor looks the lemma up in the vocabulary bands, falling back to the
// phrase-length heuristic
func (e *CandidateExtractor) cefrFor(lemma, phrase string) model.CEFR {
	if lvl, ok := e.kb.CEFR(lemma); ok {
		return lvl
	}
	return model.CEFRByLength(phrase)
}

// locate maps a character offset to the token index and sentence starting there
func locate(offset int, tokens []model.Token) (int, int) {
	for i, tok := range tokens {
		if tok.Start == offset {
			return i, tok.Sentence
		}
	}
	return 0, 0
}
