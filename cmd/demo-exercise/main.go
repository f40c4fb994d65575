// Demo program that runs a built-in tagged dialogue through the exercise
// pipeline and shows how candidates are scored and blanks chosen
package main

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/ppiankov/gapfill/internal/extract"
	"github.com/ppiankov/gapfill/internal/knowledge"
	"github.com/ppiankov/gapfill/internal/model"
	"github.com/ppiankov/gapfill/internal/pipeline"
	"github.com/ppiankov/gapfill/internal/score"
)

// word is text/lemma/POS for one token
type word struct {
	text, lemma, pos string
}

// turn builds a tagged turn from words, computing character offsets
func turn(speaker string, words ...word) model.Turn {
	var b strings.Builder
	tokens := make([]model.Token, 0, len(words))
	for i, w := range words {
		if i > 0 {
			b.WriteByte(' ')
		}
		start := b.Len()
		b.WriteString(w.text)
		tokens = append(tokens, model.Token{
			Text:  w.text,
			Lemma: w.lemma,
			POS:   w.pos,
			Start: start,
			End:   b.Len(),
		})
	}
	return model.Turn{Speaker: speaker, Text: b.String(), Tokens: tokens}
}

func sampleDialogue() *model.Dialogue {
	return &model.Dialogue{
		Title: "Planning the office party",
		Turns: []model.Turn{
			turn("Maya",
				word{"We", "we", "PRON"}, word{"need", "need", "VERB"}, word{"to", "to", "PART"},
				word{"break", "break", "VERB"}, word{"the", "the", "DET"}, word{"ice", "ice", "NOUN"},
				word{"with", "with", "ADP"}, word{"the", "the", "DET"}, word{"new", "new", "ADJ"},
				word{"team", "team", "NOUN"}),
			turn("Leo",
				word{"Organising", "organise", "VERB"}, word{"a", "a", "DET"}, word{"party", "party", "NOUN"},
				word{"is", "be", "AUX"}, word{"a", "a", "DET"}, word{"piece", "piece", "NOUN"},
				word{"of", "of", "ADP"}, word{"cake", "cake", "NOUN"}),
			turn("Maya",
				word{"Great", "great", "ADJ"}, word{"we", "we", "PRON"}, word{"should", "should", "AUX"},
				word{"figure", "figure", "VERB"}, word{"out", "out", "ADP"}, word{"the", "the", "DET"},
				word{"budget", "budget", "NOUN"}, word{"quickly", "quickly", "ADV"}),
			turn("Leo",
				word{"I", "I", "PRON"}, word{"will", "will", "AUX"}, word{"make", "make", "VERB"},
				word{"a", "a", "DET"}, word{"decision", "decision", "NOUN"}, word{"tomorrow", "tomorrow", "NOUN"}),
			turn("Maya",
				word{"Perfect", "perfect", "ADJ"}, word{"everyone", "everyone", "PRON"}, word{"is", "be", "AUX"},
				word{"looking", "look", "VERB"}, word{"forward", "forward", "ADV"}, word{"to", "to", "ADP"},
				word{"it", "it", "PRON"}),
			turn("Leo",
				word{"Let's", "let", "VERB"}, word{"set", "set", "VERB"}, word{"up", "up", "ADP"},
				word{"the", "the", "DET"}, word{"room", "room", "NOUN"}, word{"early", "early", "ADV"}),
			turn("Maya",
				word{"Happy", "happy", "ADJ"}, word{"holiday", "holiday", "NOUN"}, word{"everyone", "everyone", "PRON"}),
			turn("Leo",
				word{"We", "we", "PRON"}, word{"should", "should", "AUX"}, word{"celebrate", "celebrate", "VERB"},
				word{"properly", "properly", "ADV"}),
		},
	}
}

func main() {
	fmt.Println("=== Gap-fill Exercise Demo ===")
	fmt.Println()

	kb := knowledge.Default()
	d := sampleDialogue()
	options := model.DefaultConfig().Exercise

	// Show the candidate stream and how each one scores
	candidates := extract.NewCandidateExtractor(kb).Extract(d)
	scorer := score.NewScorer(kb)
	for i := range candidates {
		candidates[i].Score = scorer.Score(candidates[i], options.Difficulty)
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Score > candidates[j].Score
	})

	fmt.Printf("Candidates: %d (top 10 at target %s)\n", len(candidates), options.Difficulty)
	fmt.Println(strings.Repeat("-", 60))
	for i, c := range candidates {
		if i == 10 {
			break
		}
		b := scorer.Breakdown(c, options.Difficulty)
		fmt.Printf("  %5.1f  %-18q turn %d  %-11s grammar %.0f, chunk %.0f, level %.0f, pedagogy %.0f\n",
			b.Total, c.Phrase, c.TurnIndex, c.Category, b.Grammar, b.LockedChunk, b.Difficulty, b.Pedagogy)
	}
	fmt.Println()

	// Run the full pipeline
	p, err := pipeline.NewPipeline(options, kb)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	ex, err := p.Process(d)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Blanks: %d (status %s)\n", ex.Metadata.TotalBlanks, ex.Metadata.ValidationStatus)
	fmt.Println(strings.Repeat("-", 60))
	for _, av := range ex.AnswerVariations {
		fmt.Printf("  turn %d: %q [%s, %s, %s]\n", av.Index, av.Answer, av.Category, av.CEFR, av.Confidence)
		if len(av.Alternatives) > 0 {
			fmt.Printf("          also: %s\n", strings.Join(av.Alternatives, ", "))
		}
	}
	fmt.Println()

	fmt.Println(pipeline.Markdown(ex))

	fmt.Println("=== Demo Complete ===")
	fmt.Println("\nNote: real input comes from an external tagger; see 'gapfill generate --help'.")
}
