package dataset

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"
	"github.com/jonboulle/clockwork"
)

// DefaultDebounce coalesces editor save bursts into one reload.
const DefaultDebounce = 250 * time.Millisecond

// Watcher calls OnChange after files matching a dataset pattern change.
type Watcher struct {
	pattern  string
	base     string
	onChange func(ctx context.Context)
	debounce time.Duration
	clock    clockwork.Clock
	logger   *slog.Logger

	mu    sync.Mutex
	timer clockwork.Timer
}

// WatcherOption configures a Watcher.
type WatcherOption func(*Watcher)

// WithDebounce sets the quiet period before OnChange fires.
func WithDebounce(d time.Duration) WatcherOption {
	return func(w *Watcher) { w.debounce = d }
}

// WithClock injects the clock used for debouncing.
func WithClock(c clockwork.Clock) WatcherOption {
	return func(w *Watcher) { w.clock = c }
}

// NewWatcher creates a watcher for pattern. Nothing is watched until Run.
func NewWatcher(pattern string, onChange func(ctx context.Context), logger *slog.Logger, opts ...WatcherOption) *Watcher {
	slashed := filepath.ToSlash(pattern)
	base, _ := doublestar.SplitPattern(slashed)
	w := &Watcher{
		pattern:  slashed,
		base:     filepath.FromSlash(base),
		onChange: onChange,
		debounce: DefaultDebounce,
		clock:    clockwork.NewRealClock(),
		logger:   logger,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run watches until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create dataset watcher: %w", err)
	}
	defer fw.Close()

	for _, dir := range w.dirs() {
		if err := fw.Add(dir); err != nil {
			return fmt.Errorf("watch %s: %w", dir, err)
		}
	}
	w.logger.Info("watching dataset", "pattern", w.pattern, "base", w.base)

	for {
		select {
		case <-ctx.Done():
			w.stop()
			return nil
		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if w.Relevant(ev) {
				w.logger.Debug("dataset changed", "path", ev.Name, "op", ev.Op.String())
				w.schedule(ctx)
			}
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("dataset watcher error", "error", err)
		}
	}
}

// Relevant reports whether ev touches a supported file matching the pattern.
func (w *Watcher) Relevant(ev fsnotify.Event) bool {
	if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) &&
		!ev.Has(fsnotify.Remove) && !ev.Has(fsnotify.Rename) {
		return false
	}
	if !Supported(ev.Name) {
		return false
	}
	ok, err := doublestar.PathMatch(filepath.FromSlash(w.pattern), ev.Name)
	return err == nil && ok
}

func (w *Watcher) schedule(ctx context.Context) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = w.clock.AfterFunc(w.debounce, func() {
		if ctx.Err() != nil {
			return
		}
		w.onChange(ctx)
	})
}

func (w *Watcher) stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
}

// dirs lists the base directory plus the directories of current matches.
func (w *Watcher) dirs() []string {
	seen := map[string]struct{}{w.base: {}}
	out := []string{w.base}
	if paths, err := Match(filepath.FromSlash(w.pattern)); err == nil {
		for _, p := range paths {
			d := filepath.Dir(p)
			if _, ok := seen[d]; !ok {
				seen[d] = struct{}{}
				out = append(out, d)
			}
		}
	}
	return out
}
