package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// DefaultDebounce is how long a file must stay quiet before it is handled
const DefaultDebounce = 300 * time.Millisecond

// WatchHandler is called once per settled file change
type WatchHandler func(ctx context.Context, path string)

// Watcher regenerates dialogue files when they change on disk
type Watcher struct {
	watcher  *fsnotify.Watcher
	handler  WatchHandler
	filter   func(path string) bool
	debounce time.Duration
	logger   *zap.Logger

	mu      sync.Mutex
	pending map[string]time.Time
}

// NewWatcher watches dir (non-recursively). Only paths accepted by filter are
// passed to handler; a nil filter accepts dialogue files.
func NewWatcher(dir string, filter func(string) bool, handler WatchHandler, logger *zap.Logger) (*Watcher, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if filter == nil {
		filter = IsDialogueFile
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := fw.Add(dir); err != nil {
		_ = fw.Close()
		return nil, fmt.Errorf("watch %s: %w", dir, err)
	}

	return &Watcher{
		watcher:  fw,
		handler:  handler,
		filter:   filter,
		debounce: DefaultDebounce,
		logger:   logger,
		pending:  make(map[string]time.Time),
	}, nil
}

// SetDebounce changes the quiet period (must be called before Run)
func (w *Watcher) SetDebounce(d time.Duration) {
	w.debounce = d
}

// Run dispatches settled changes until ctx ends. Handlers run on the Run
// goroutine, one at a time. The underlying watcher is closed on return.
func (w *Watcher) Run(ctx context.Context) error {
	defer func() { _ = w.watcher.Close() }()

	tick := w.debounce / 3
	if tick <= 0 {
		tick = 10 * time.Millisecond
	}
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			w.handleEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watch error", zap.Error(err))

		case <-ticker.C:
			for _, path := range w.settled(time.Now()) {
				w.handler(ctx, path)
			}
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
		return
	}
	if !w.filter(event.Name) {
		return
	}

	w.logger.Debug("file changed", zap.String("path", event.Name), zap.String("op", event.Op.String()))

	w.mu.Lock()
	w.pending[event.Name] = time.Now()
	w.mu.Unlock()
}

// settled returns and forgets the paths quiet for at least the debounce period
func (w *Watcher) settled(now time.Time) []string {
	w.mu.Lock()
	defer w.mu.Unlock()

	var ready []string
	for path, last := range w.pending {
		if now.Sub(last) >= w.debounce {
			ready = append(ready, path)
			delete(w.pending, path)
		}
	}
	return ready
}
