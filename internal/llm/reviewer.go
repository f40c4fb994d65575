package llm

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/ppiankov/gapfill/internal/model"
)

// Waiter throttles calls per key (see worker.Limiter)
type Waiter interface {
	Wait(ctx context.Context, key string) error
}

// Reviewer produces optional teacher notes for finished exercises.
// A Reviewer with no provider is valid and simply disabled.
type Reviewer struct {
	provider Provider
	config   Config
	limiter  Waiter
	logger   *zap.Logger
}

// NewReviewer creates a reviewer from configuration. An empty provider name
// yields a disabled reviewer.
func NewReviewer(config Config, limiter Waiter, logger *zap.Logger) (*Reviewer, error) {
	provider, err := NewProvider(config)
	if err != nil {
		return nil, err
	}
	return NewReviewerWithProvider(provider, config, limiter, logger), nil
}

// NewReviewerWithProvider wraps an already constructed provider
func NewReviewerWithProvider(provider Provider, config Config, limiter Waiter, logger *zap.Logger) *Reviewer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Reviewer{
		provider: provider,
		config:   config,
		limiter:  limiter,
		logger:   logger,
	}
}

// IsEnabled reports whether a provider is configured
func (r *Reviewer) IsEnabled() bool {
	return r != nil && r.provider != nil
}

// ProviderName returns the configured provider name ("" when disabled)
func (r *Reviewer) ProviderName() string {
	if !r.IsEnabled() {
		return ""
	}
	return r.provider.Name()
}

// ModelName returns the configured model name
func (r *Reviewer) ModelName() string {
	if r == nil {
		return ""
	}
	return r.config.Model
}

// Review asks the provider for notes. It returns nil without error when the
// reviewer is disabled. The exercise is passed by value and never modified.
func (r *Reviewer) Review(ctx context.Context, ex model.Exercise) (*model.Review, error) {
	if !r.IsEnabled() {
		return nil, nil
	}

	if r.limiter != nil {
		if err := r.limiter.Wait(ctx, r.provider.Name()); err != nil {
			return nil, fmt.Errorf("rate limit: %w", err)
		}
	}

	r.logger.Debug("requesting review",
		zap.String("provider", r.provider.Name()),
		zap.String("exercise", ex.ID),
		zap.Int("blanks", len(ex.AnswerVariations)))

	resp, err := r.provider.Review(ctx, ReviewRequest{
		Exercise:  ex,
		Model:     r.config.Model,
		MaxTokens: r.config.MaxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("%s review: %w", r.provider.Name(), err)
	}

	r.logger.Info("review generated",
		zap.String("provider", r.provider.Name()),
		zap.String("model", resp.Model),
		zap.Int("tokens", resp.TokensUsed))

	return &model.Review{
		Provider:   r.provider.Name(),
		Model:      resp.Model,
		NotesMD:    resp.Notes,
		TokensUsed: resp.TokensUsed,
	}, nil
}

// RenderMarkdown formats a review as a standalone Markdown document
func RenderMarkdown(review *model.Review, ex model.Exercise) string {
	var b strings.Builder

	title := ex.Title
	if title == "" {
		title = "Gap-fill exercise"
	}

	fmt.Fprintf(&b, "# Teacher review: %s\n\n", title)
	fmt.Fprintf(&b, "_Exercise `%s` · %d blanks · %s_\n\n", ex.ID, len(ex.AnswerVariations), ex.Metadata.ValidationStatus)
	b.WriteString(review.NotesMD)
	b.WriteString("\n\n---\n\n")
	fmt.Fprintf(&b, "_Generated by %s", review.Provider)
	if review.Model != "" {
		fmt.Fprintf(&b, " (%s)", review.Model)
	}
	if review.TokensUsed > 0 {
		fmt.Fprintf(&b, ", %d tokens", review.TokensUsed)
	}
	b.WriteString(". These notes are advisory and did not change the exercise._\n")

	return b.String()
}
