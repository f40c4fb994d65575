package llm

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/ppiankov/gapfill/internal/model"
)

// mockProvider implements the Provider interface for testing
type mockProvider struct {
	name     string
	response *ReviewResponse
	err      error
	calls    int
	lastReq  ReviewRequest
}

func (m *mockProvider) Name() string { return m.name }

func (m *mockProvider) Review(ctx context.Context, req ReviewRequest) (*ReviewResponse, error) {
	m.calls++
	m.lastReq = req
	if m.err != nil {
		return nil, m.err
	}
	return m.response, nil
}

func (m *mockProvider) IsAvailable(ctx context.Context) bool { return true }

type recordingWaiter struct {
	keys []string
	err  error
}

func (w *recordingWaiter) Wait(ctx context.Context, key string) error {
	w.keys = append(w.keys, key)
	return w.err
}

func TestNewReviewer_Disabled(t *testing.T) {
	r, err := NewReviewer(Config{}, nil, nil)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if r.IsEnabled() {
		t.Error("Expected reviewer to be disabled")
	}
	if r.ProviderName() != "" {
		t.Error("Expected empty provider name when disabled")
	}

	review, err := r.Review(context.Background(), sampleExercise())
	if err != nil || review != nil {
		t.Errorf("Expected nil review from disabled reviewer, got %v, %v", review, err)
	}

	var nilReviewer *Reviewer
	if nilReviewer.IsEnabled() {
		t.Error("nil reviewer must report disabled")
	}
}

func TestNewReviewer_UnknownProvider(t *testing.T) {
	if _, err := NewReviewer(Config{Provider: "nope"}, nil, nil); err == nil {
		t.Fatal("Expected error for unknown provider")
	}
}

func TestReviewer_Review(t *testing.T) {
	provider := &mockProvider{
		name:     "mock",
		response: &ReviewResponse{Notes: "Blank #1 is solid.", Model: "m-1", TokensUsed: 55},
	}
	waiter := &recordingWaiter{}
	r := NewReviewerWithProvider(provider, Config{Model: "m-1", MaxTokens: 300}, waiter, nil)

	ex := sampleExercise()
	review, err := r.Review(context.Background(), ex)
	if err != nil {
		t.Fatalf("Review failed: %v", err)
	}

	if review.Provider != "mock" || review.Model != "m-1" || review.TokensUsed != 55 {
		t.Errorf("Unexpected review: %+v", review)
	}
	if review.NotesMD != "Blank #1 is solid." {
		t.Errorf("Unexpected notes: %s", review.NotesMD)
	}
	if len(waiter.keys) != 1 || waiter.keys[0] != "mock" {
		t.Errorf("Expected one throttled call keyed by provider, got %v", waiter.keys)
	}
	if provider.lastReq.MaxTokens != 300 || provider.lastReq.Model != "m-1" {
		t.Errorf("Config not forwarded: %+v", provider.lastReq)
	}
	if provider.lastReq.Exercise.ID != ex.ID {
		t.Error("Exercise not forwarded")
	}
}

func TestReviewer_Review_Errors(t *testing.T) {
	provider := &mockProvider{name: "mock", err: errors.New("upstream down")}
	r := NewReviewerWithProvider(provider, Config{}, nil, nil)

	_, err := r.Review(context.Background(), sampleExercise())
	if err == nil || !strings.Contains(err.Error(), "mock review: upstream down") {
		t.Fatalf("Expected wrapped provider error, got %v", err)
	}

	limited := NewReviewerWithProvider(&mockProvider{name: "mock"}, Config{}, &recordingWaiter{err: context.Canceled}, nil)
	_, err = limited.Review(context.Background(), sampleExercise())
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Expected rate limit error, got %v", err)
	}
}

func TestRenderMarkdown(t *testing.T) {
	ex := sampleExercise()
	review := model.Review{Provider: "openai", Model: "gpt-4o-mini", NotesMD: "Blank #2 is thin.", TokensUsed: 120}
	out := RenderMarkdown(&review, ex)

	for _, want := range []string{
		"# Teacher review: Baking day",
		"2 blanks · WARN",
		"Blank #2 is thin.",
		"_Generated by openai (gpt-4o-mini), 120 tokens.",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("markdown missing %q\n%s", want, out)
		}
	}
}
