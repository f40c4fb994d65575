package llm

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/ppiankov/gapfill/internal/model"
)

// Provider defines the interface for LLM providers
type Provider interface {
	// Name returns the provider name
	Name() string

	// Review writes teacher-facing notes for a finished exercise
	Review(ctx context.Context, req ReviewRequest) (*ReviewResponse, error)

	// IsAvailable checks if the provider is properly configured and accessible
	IsAvailable(ctx context.Context) bool
}

// ReviewRequest contains the input for an exercise review
type ReviewRequest struct {
	// Exercise is the assembled exercise. Providers only read it.
	Exercise model.Exercise

	// Prompt is an optional custom prompt (if empty, use default)
	Prompt string

	// Model is the specific model to use (provider-specific)
	Model string

	// MaxTokens limits the response length
	MaxTokens int
}

// ReviewResponse contains the provider's notes
type ReviewResponse struct {
	Notes      string
	Model      string
	TokensUsed int
}

// Config holds LLM provider configuration
type Config struct {
	// Provider name: "openai", "gemini", "anthropic", "ollama", ""
	Provider string

	// Model name (provider-specific)
	Model string

	// APIKey for hosted providers
	APIKey string

	// BaseURL for custom endpoints (OpenAI-compatible gateways, Ollama)
	BaseURL string

	// Timeout for API requests
	Timeout int // seconds

	// StrictReferences rejects notes that mention blanks the exercise does not have
	StrictReferences bool

	// MaxTokens for response generation
	MaxTokens int

	// Proxy settings
	HTTPProxy  string
	HTTPSProxy string
	NoProxy    string
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Provider:         "", // Disabled by default
		Timeout:          30,
		StrictReferences: true,
		MaxTokens:        800,
	}
}

const systemPrompt = "You are an experienced English teacher reviewing gap-fill exercises for other teachers. " +
	"You comment on the exercise as given and never propose new answers for a blank."

// BuildPrompt constructs the default review prompt
func BuildPrompt(ex model.Exercise) string {
	var b strings.Builder

	fmt.Fprintf(&b, `Review this gap-fill exercise built from a %d-turn dialogue at CEFR level %s.

RULES:
1. Refer to blanks ONLY as "Blank #N" using the numbers listed below (1-%d).
2. Do not add, remove or replace answers. Comment on them.
3. Point out blanks whose alternatives might confuse learners.
4. Keep it under 200 words, in Markdown.

Validation status: %s (%d high, %d medium, %d low confidence blanks)

Blanks:
`, len(ex.Dialogue), ex.Metadata.TargetCEFR, len(ex.AnswerVariations),
		ex.Metadata.ValidationStatus, ex.Metadata.HighConfidence, ex.Metadata.MediumConfidence, ex.Metadata.LowConfidence)

	for i, av := range ex.AnswerVariations {
		line := ""
		if av.Index >= 0 && av.Index < len(ex.Dialogue) {
			line = ex.Dialogue[av.Index].Text
		}
		fmt.Fprintf(&b, "- Blank #%d (turn %d, %s, %s): %q in %q; alternatives: %s\n",
			i+1, av.Index, av.Category, av.CEFR, av.Answer, line, strings.Join(av.Alternatives, ", "))
	}

	b.WriteString("\nWrite the review now.")
	return b.String()
}

var blankRef = regexp.MustCompile(`(?i)blank\s*#?\s*(\d+)`)

// checkReferences returns an error if the notes mention a blank number outside 1..blanks
func checkReferences(notes string, blanks int) error {
	for _, m := range blankRef.FindAllStringSubmatch(notes, -1) {
		n, err := strconv.Atoi(m[1])
		if err != nil || n < 1 || n > blanks {
			return fmt.Errorf("REFERENCE LEAK: review mentions %q but the exercise has %d blanks", m[0], blanks)
		}
	}
	return nil
}

// resolveModel picks the request model, then the configured model, then the fallback
func resolveModel(req ReviewRequest, config Config, fallback string) string {
	if req.Model != "" {
		return req.Model
	}
	if config.Model != "" {
		return config.Model
	}
	return fallback
}

// resolveMaxTokens picks the request limit, then the configured limit, then 800
func resolveMaxTokens(req ReviewRequest, config Config) int {
	if req.MaxTokens > 0 {
		return req.MaxTokens
	}
	if config.MaxTokens > 0 {
		return config.MaxTokens
	}
	return 800
}

// finish trims the notes and enforces the reference check
func finish(notes string, req ReviewRequest, config Config) (string, error) {
	notes = strings.TrimSpace(notes)
	if notes == "" {
		return "", fmt.Errorf("empty review")
	}
	if config.StrictReferences {
		if err := checkReferences(notes, len(req.Exercise.AnswerVariations)); err != nil {
			return "", err
		}
	}
	return notes, nil
}

func promptFor(req ReviewRequest) string {
	if req.Prompt != "" {
		return req.Prompt
	}
	return BuildPrompt(req.Exercise)
}
