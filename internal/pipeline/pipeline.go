package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ppiankov/gapfill/internal/alternatives"
	"github.com/ppiankov/gapfill/internal/cache"
	"github.com/ppiankov/gapfill/internal/extract"
	"github.com/ppiankov/gapfill/internal/insight"
	"github.com/ppiankov/gapfill/internal/knowledge"
	"github.com/ppiankov/gapfill/internal/llm"
	"github.com/ppiankov/gapfill/internal/model"
	"github.com/ppiankov/gapfill/internal/score"
	"github.com/ppiankov/gapfill/internal/selection"
)

// ErrInvalidTurnIndex is returned when a candidate points outside the dialogue
var ErrInvalidTurnIndex = errors.New("candidate turn index outside dialogue")

// MinInsights is the floor of the deep-dive cap
const MinInsights = 3

// exerciseNamespace scopes the name-based exercise IDs
var exerciseNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/ppiankov/gapfill/exercise"))

// Pipeline orchestrates one dialogue through scoring, selection,
// alternatives and insights. It holds no per-run state, so one Pipeline can
// process many dialogues concurrently.
type Pipeline struct {
	kb           *knowledge.KnowledgeBase
	extractor    *extract.CandidateExtractor
	scorer       *score.Scorer
	selector     *selection.Selector
	alternatives *alternatives.Generator
	insights     *insight.Generator
	reviewer     *llm.Reviewer // Optional (nil if disabled)
	loader       *cache.Loader // Optional (nil if caching is off)
	fetcher      *extract.Fetcher
	options      model.ExerciseConfig
	logger       *zap.Logger
	now          func() time.Time
}

// Option customizes a Pipeline
type Option func(*Pipeline)

// WithLogger sets the logger (default: no-op)
func WithLogger(logger *zap.Logger) Option {
	return func(p *Pipeline) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithClock replaces time.Now for processing-duration metadata
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) {
		if now != nil {
			p.now = now
		}
	}
}

// WithCache enables read-through caching of generated exercises
func WithCache(c cache.Cache, ttl time.Duration) Option {
	return func(p *Pipeline) {
		if c != nil {
			p.loader = cache.NewLoader(c, ttl)
		}
	}
}

// WithReviewer attaches an optional LLM reviewer
func WithReviewer(r *llm.Reviewer) Option {
	return func(p *Pipeline) {
		p.reviewer = r
	}
}

// WithFetcher sets the fetcher used for http(s) dialogue inputs
func WithFetcher(f *extract.Fetcher) Option {
	return func(p *Pipeline) {
		if f != nil {
			p.fetcher = f
		}
	}
}

// NewPipeline creates a new pipeline for the given exercise options
func NewPipeline(options model.ExerciseConfig, kb *knowledge.KnowledgeBase, opts ...Option) (*Pipeline, error) {
	if err := options.Validate(); err != nil {
		return nil, fmt.Errorf("invalid exercise options: %w", err)
	}
	if kb == nil {
		kb = knowledge.Default()
	}

	p := &Pipeline{
		kb:        kb,
		extractor: extract.NewCandidateExtractor(kb),
		scorer:    score.NewScorer(kb),
		selector:  selection.NewSelector(),
		insights:  insight.NewGenerator(kb),
		options:   options,
		logger:    zap.NewNop(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.fetcher == nil {
		p.fetcher = extract.NewFetcher(nil, 30*time.Second, "", 0)
	}
	p.alternatives = alternatives.NewGenerator(kb, p.logger)

	return p, nil
}

// Result is one generated exercise plus its optional review
type Result struct {
	Exercise *model.Exercise
	Review   *model.Review
	Cached   bool
}

// Process extracts candidates from a tagged dialogue and assembles the exercise
func (p *Pipeline) Process(d *model.Dialogue) (*model.Exercise, error) {
	candidates := p.extractor.Extract(d)
	return p.Assemble(d, candidates)
}

// Assemble builds the exercise from already extracted candidates. Scores are
// written into the candidates slice.
func (p *Pipeline) Assemble(d *model.Dialogue, candidates []model.Candidate) (*model.Exercise, error) {
	start := p.now()
	turnCount := len(d.Turns)

	// 1. Validate turn indexes
	for _, c := range candidates {
		if c.TurnIndex < 0 || c.TurnIndex >= turnCount {
			return nil, fmt.Errorf("%w: %q at turn %d, dialogue has %d turns", ErrInvalidTurnIndex, c.Phrase, c.TurnIndex, turnCount)
		}
	}

	// 2. Score all candidates
	avg := p.scorer.ScoreAll(candidates, p.options.Difficulty)
	if len(candidates) > 0 {
		p.logger.Info("scored candidates",
			zap.Int("candidates", len(candidates)),
			zap.Float64("average_score", avg))
	} else {
		p.logger.Warn("no candidates to score", zap.Int("turns", turnCount))
	}

	// 3. Select blanks
	blanks := p.selector.Select(candidates, turnCount, p.options.Density)
	p.logger.Info("selected blanks",
		zap.Int("blanks", len(blanks)),
		zap.Int("target", selection.TargetBlanks(turnCount, p.options.Density)))

	// 4. Alternatives and confidence
	answers := make([]model.AnswerVariation, 0, len(blanks))
	alts := make([][]string, len(blanks))
	for i := range blanks {
		alts[i] = p.alternatives.Generate(blanks[i].Candidate, p.options.MinAlternatives)
		if alts[i] == nil {
			alts[i] = []string{}
		}
		blanks[i].Confidence = model.ConfidenceFor(len(alts[i]))

		answers = append(answers, model.AnswerVariation{
			Index:        blanks[i].TurnIndex,
			Answer:       blanks[i].Candidate.Phrase,
			Alternatives: alts[i],
			Confidence:   blanks[i].Confidence,
			Category:     blanks[i].Candidate.Category,
			CEFR:         blanks[i].Candidate.CEFR,
		})
	}

	// 5. Insights for a bounded prefix of the blanks
	deepDive := make([]model.DeepDiveInsight, 0)
	if p.options.IncludeDeepDive {
		limit := InsightCap(len(blanks))
		for i := 0; i < len(blanks) && i < limit; i++ {
			if in := p.insights.Generate(blanks[i].Candidate, alts[i]); in != nil {
				deepDive = append(deepDive, *in)
			}
		}
	}
	p.logger.Debug("generated insights", zap.Int("insights", len(deepDive)))

	// 6. Metadata
	meta := buildMetadata(blanks, turnCount, p.options)
	meta.CandidateCount = len(candidates)
	meta.AverageScore = avg
	meta.ProcessingSeconds = p.now().Sub(start).Seconds()

	id, err := p.exerciseID(d)
	if err != nil {
		return nil, err
	}

	ex := &model.Exercise{
		ID:               id,
		Title:            d.Title,
		Dialogue:         echoDialogue(d),
		AnswerVariations: answers,
		DeepDive:         deepDive,
		Metadata:         meta,
	}

	p.logger.Info("exercise assembled",
		zap.String("id", ex.ID),
		zap.String("status", string(meta.ValidationStatus)),
		zap.Float64("density", meta.AchievedDensity))

	return ex, nil
}

// Run processes a dialogue through the cache (when enabled) and then asks
// the reviewer for notes. A failed review is logged and never fails the run.
func (p *Pipeline) Run(ctx context.Context, d *model.Dialogue) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ex, cached, err := p.processCached(d)
	if err != nil {
		return nil, err
	}

	result := &Result{Exercise: ex, Cached: cached}

	// 7. Optional review (after assembly, never changes the exercise)
	if p.reviewer.IsEnabled() {
		review, err := p.review(ctx, *ex)
		if err != nil {
			p.logger.Warn("review failed", zap.String("id", ex.ID), zap.Error(err))
		} else {
			result.Review = review
		}
	}

	return result, nil
}

// GenerateFile loads a tagged dialogue from a file or an http(s) URL and
// runs it
func (p *Pipeline) GenerateFile(ctx context.Context, path string) (*Result, error) {
	var (
		d   *model.Dialogue
		err error
	)
	if extract.IsURL(path) {
		d, err = p.fetcher.Fetch(ctx, path)
	} else {
		d, err = extract.LoadDialogue(path)
	}
	if err != nil {
		return nil, err
	}
	return p.Run(ctx, d)
}

func (p *Pipeline) processCached(d *model.Dialogue) (*model.Exercise, bool, error) {
	if p.loader == nil {
		ex, err := p.Process(d)
		return ex, false, err
	}

	canonical, err := json.Marshal(d)
	if err != nil {
		return nil, false, fmt.Errorf("encode dialogue: %w", err)
	}
	key := cache.Key(cache.KindExercise, string(canonical), p.optionsKey(), p.kb.Fingerprint())

	data, hit, err := p.loader.Load(key, func() ([]byte, error) {
		ex, err := p.Process(d)
		if err != nil {
			return nil, err
		}
		return json.Marshal(ex)
	})
	if err != nil {
		return nil, false, err
	}

	var ex model.Exercise
	if err := json.Unmarshal(data, &ex); err != nil {
		// A corrupt entry is dropped and regenerated
		p.logger.Warn("discarding unreadable cache entry", zap.Error(err))
		_ = p.loader.Invalidate(key)
		fresh, err := p.Process(d)
		return fresh, false, err
	}

	if hit {
		p.logger.Debug("exercise served from cache", zap.String("id", ex.ID))
	}
	return &ex, hit, nil
}

func (p *Pipeline) review(ctx context.Context, ex model.Exercise) (*model.Review, error) {
	if p.loader == nil {
		return p.reviewer.Review(ctx, ex)
	}

	key := cache.Key(cache.KindReview, ex.ID, p.reviewer.ProviderName(), p.reviewer.ModelName())
	data, _, err := p.loader.Load(key, func() ([]byte, error) {
		review, err := p.reviewer.Review(ctx, ex)
		if err != nil {
			return nil, err
		}
		return json.Marshal(review)
	})
	if err != nil {
		return nil, err
	}

	var review model.Review
	if err := json.Unmarshal(data, &review); err != nil {
		return nil, fmt.Errorf("decode cached review: %w", err)
	}
	return &review, nil
}

// exerciseID derives a stable UUID from the input, the options and the tables
func (p *Pipeline) exerciseID(d *model.Dialogue) (string, error) {
	canonical, err := json.Marshal(d)
	if err != nil {
		return "", fmt.Errorf("encode dialogue: %w", err)
	}
	name := append(canonical, []byte("|"+p.optionsKey()+"|"+p.kb.Fingerprint())...)
	return uuid.NewSHA1(exerciseNamespace, name).String(), nil
}

func (p *Pipeline) optionsKey() string {
	o := p.options
	return fmt.Sprintf("density=%g;difficulty=%s;min_alternatives=%d;strictness=%s;deep_dive=%t",
		o.Density, o.Difficulty, o.MinAlternatives, o.Strictness, o.IncludeDeepDive)
}

// InsightCap is the number of blanks that get a deep dive: max(3, n/3)
func InsightCap(blanks int) int {
	return max(MinInsights, blanks/3)
}

func echoDialogue(d *model.Dialogue) []model.DialogueLine {
	lines := make([]model.DialogueLine, len(d.Turns))
	for i, t := range d.Turns {
		lines[i] = model.DialogueLine{Index: i, Speaker: t.Speaker, Text: t.Text}
	}
	return lines
}
