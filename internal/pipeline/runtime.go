package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/blue-plaque-map/internal/mapview"
	"github.com/couchcryptid/blue-plaque-map/internal/observability"
)

// SessionFactory builds a fresh, uninitialized session.
type SessionFactory func() *mapview.Session

// SnapshotListener is notified after a session finishes initializing.
type SnapshotListener func(mapview.Snapshot)

// Runtime owns the current map session. Each page session gets its host
// initialized once; a dataset reload replaces the whole session.
type Runtime struct {
	newSession SessionFactory
	elementID  string
	initDelay  time.Duration
	clock      clockwork.Clock
	logger     *slog.Logger
	metrics    *observability.Metrics

	current atomic.Pointer[mapview.Session]
	seq     atomic.Uint64

	// swapMu orders stores and notifications; active is the generation
	// of the stored session.
	swapMu sync.Mutex
	active uint64

	mu        sync.Mutex
	listeners []SnapshotListener
}

// RuntimeConfig wires a Runtime.
type RuntimeConfig struct {
	NewSession SessionFactory
	ElementID  string
	InitDelay  time.Duration
	Clock      clockwork.Clock
	Logger     *slog.Logger
	Metrics    *observability.Metrics
}

// NewRuntime creates a Runtime with no session yet.
func NewRuntime(cfg RuntimeConfig) *Runtime {
	if cfg.Clock == nil {
		cfg.Clock = clockwork.NewRealClock()
	}
	return &Runtime{
		newSession: cfg.NewSession,
		elementID:  cfg.ElementID,
		initDelay:  cfg.InitDelay,
		clock:      cfg.Clock,
		logger:     cfg.Logger,
		metrics:    cfg.Metrics,
	}
}

// Subscribe registers l for snapshots of every initialized session.
func (r *Runtime) Subscribe(l SnapshotListener) {
	r.mu.Lock()
	r.listeners = append(r.listeners, l)
	r.mu.Unlock()
}

// Start waits for the init delay, then initializes the first session.
// Returns the initialization error, which is also shown on the page.
func (r *Runtime) Start(ctx context.Context) error {
	if r.initDelay > 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-r.clock.After(r.initDelay):
		}
	}
	return r.activate(ctx)
}

// Reload replaces the current session with a fresh one built from the
// current dataset. The previous session is never populated again.
func (r *Runtime) Reload(ctx context.Context) error {
	r.logger.Info("reloading dataset")
	r.metrics.DatasetReloads.Inc()
	return r.activate(ctx)
}

// activate builds and initializes a session, then stores it unless a
// session built later has already been stored.
func (r *Runtime) activate(ctx context.Context) error {
	gen := r.seq.Add(1)
	s := r.newSession()
	_, err := s.EnsureInitialized(ctx, r.elementID)

	r.swapMu.Lock()
	defer r.swapMu.Unlock()
	if gen < r.active {
		r.logger.Info("discarding superseded session", "generation", gen, "active", r.active)
		return err
	}
	r.active = gen
	r.current.Store(s)
	r.notify(s.Snapshot())
	return err
}

func (r *Runtime) notify(snap mapview.Snapshot) {
	r.mu.Lock()
	listeners := append([]SnapshotListener(nil), r.listeners...)
	r.mu.Unlock()
	for _, l := range listeners {
		l(snap)
	}
}

// Session returns the current session, or nil before Start completes.
func (r *Runtime) Session() *mapview.Session {
	return r.current.Load()
}

// CheckReadiness reports whether the current session has populated its map.
func (r *Runtime) CheckReadiness(ctx context.Context) error {
	s := r.current.Load()
	if s == nil {
		return errors.New("map session has not started yet")
	}
	return s.CheckReadiness(ctx)
}
