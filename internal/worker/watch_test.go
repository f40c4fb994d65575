package worker

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestWatcher_HandlesSettledWrites(t *testing.T) {
	dir := t.TempDir()

	changed := make(chan string, 10)
	w, err := NewWatcher(dir, nil, func(ctx context.Context, path string) {
		changed <- path
	}, nil)
	if err != nil {
		t.Fatalf("NewWatcher failed: %v", err)
	}
	w.SetDebounce(30 * time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	path := filepath.Join(dir, "dialogue.json")
	for i := 0; i < 3; i++ {
		if err := os.WriteFile(path, []byte(`{"dialogue":[]}`), 0644); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	select {
	case got := <-changed:
		if got != path {
			t.Errorf("expected %s, got %s", path, got)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for change")
	}

	// Rapid writes collapse into one call and the .txt file is ignored
	select {
	case got := <-changed:
		t.Errorf("unexpected extra change: %s", got)
	case <-time.After(150 * time.Millisecond):
	}

	cancel()
	if err := <-done; err != context.Canceled {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestWatcher_CustomFilter(t *testing.T) {
	dir := t.TempDir()

	changed := make(chan string, 10)
	filter := func(path string) bool {
		return IsDialogueFile(path) && !strings.Contains(filepath.Base(path), ".exercise.")
	}
	w, err := NewWatcher(dir, filter, func(ctx context.Context, path string) {
		changed <- path
	}, nil)
	if err != nil {
		t.Fatalf("NewWatcher failed: %v", err)
	}
	w.SetDebounce(20 * time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	if err := os.WriteFile(filepath.Join(dir, "a.exercise.json"), []byte("{}"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "b.yaml"), []byte("dialogue: []"), 0644); err != nil {
		t.Fatal(err)
	}

	select {
	case got := <-changed:
		if filepath.Base(got) != "b.yaml" {
			t.Errorf("expected b.yaml, got %s", got)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for change")
	}

	cancel()
	<-done
}

func TestNewWatcher_MissingDir(t *testing.T) {
	_, err := NewWatcher(filepath.Join(t.TempDir(), "missing"), nil, func(context.Context, string) {}, nil)
	if err == nil {
		t.Error("expected error for missing directory, got nil")
	}
}

func TestWatcher_Settled(t *testing.T) {
	w := &Watcher{debounce: time.Second, pending: make(map[string]time.Time)}
	now := time.Now()
	w.pending["old.json"] = now.Add(-2 * time.Second)
	w.pending["new.json"] = now

	ready := w.settled(now)
	if len(ready) != 1 || ready[0] != "old.json" {
		t.Errorf("expected [old.json], got %v", ready)
	}
	if _, ok := w.pending["new.json"]; !ok {
		t.Error("recent change should stay pending")
	}
}
