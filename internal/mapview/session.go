package mapview

import (
	"context"
	"errors"
	"html/template"
	"log/slog"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/blue-plaque-map/internal/domain"
)

// State is the lifecycle state of a session's map host.
type State int

const (
	StateUninitialized State = iota
	StateInitialized
)

func (s State) String() string {
	if s == StateInitialized {
		return "initialized"
	}
	return "uninitialized"
}

// DatasetSource loads the plaque dataset for a population pass.
type DatasetSource func(ctx context.Context) ([]domain.Plaque, error)

// MarkerHost receives placed markers. *Host implements it.
type MarkerHost interface {
	AddMarker(m domain.Marker) error
}

// Populator fills a host from a dataset.
type Populator interface {
	Populate(ctx context.Context, dataset []domain.Plaque, host MarkerHost) domain.Tally
}

// SessionConfig wires a session's collaborators.
type SessionConfig struct {
	Options     Options
	Dataset     DatasetSource
	DatasetName string
	Populator   Populator
	Logger      *slog.Logger
	Clock       clockwork.Clock
}

// Session owns one map host and its one-shot population flag.
type Session struct {
	cfg SessionConfig

	mu          sync.RWMutex
	host        *Host
	initErr     error
	populated   bool
	status      template.HTML
	tally       domain.Tally
	populatedAt time.Time
}

// NewSession creates an uninitialized session.
func NewSession(cfg SessionConfig) *Session {
	if cfg.Clock == nil {
		cfg.Clock = clockwork.NewRealClock()
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Session{cfg: cfg, status: StatusLoading}
}

// EnsureInitialized builds the map host on first call and populates it once.
// Later calls only resize the existing host. A failed construction is final
// for the session: the same error is returned and nothing is retried.
// Population runs without holding the session lock, so readers see the
// loading status until it finishes.
func (s *Session) EnsureInitialized(ctx context.Context, elementID string) (*Host, error) {
	s.mu.Lock()
	if s.host != nil {
		s.host.Resize()
		host := s.host
		s.mu.Unlock()
		return host, nil
	}
	if s.initErr != nil {
		err := s.initErr
		s.mu.Unlock()
		return nil, err
	}

	s.cfg.Logger.Info("initializing map", "element_id", elementID)
	host, err := NewHost(elementID, s.cfg.Options)
	if err != nil {
		s.cfg.Logger.Error("map initialization failed", "error", err)
		s.initErr = err
		s.status = InitErrorStatus(err)
		s.mu.Unlock()
		return nil, err
	}
	s.host = host
	s.cfg.Logger.Info("map initialized", "element_id", elementID, "zoom", host.Options().Zoom)
	// Only the call that built the host reaches here, so population is one-shot.
	s.mu.Unlock()

	status, tally, at := s.populate(ctx, host)
	s.mu.Lock()
	s.status, s.tally, s.populatedAt = status, tally, at
	s.populated = true
	s.mu.Unlock()
	return host, nil
}

// populate runs one population pass against host.
func (s *Session) populate(ctx context.Context, host *Host) (template.HTML, domain.Tally, time.Time) {
	if s.cfg.Dataset == nil || s.cfg.Populator == nil {
		s.cfg.Logger.Error("dataset not configured")
		return DatasetErrorStatus(s.cfg.DatasetName), domain.Tally{}, time.Time{}
	}

	dataset, err := s.cfg.Dataset(ctx)
	if err != nil {
		s.cfg.Logger.Error("dataset not loaded", "dataset", s.cfg.DatasetName, "error", err)
		return DatasetErrorStatus(s.cfg.DatasetName), domain.Tally{}, time.Time{}
	}

	s.cfg.Logger.Info("creating markers", "records", len(dataset))
	tally := s.cfg.Populator.Populate(ctx, dataset, host)
	s.cfg.Logger.Info("markers created", "valid", tally.Valid, "invalid", tally.Invalid)
	return SummaryStatus(tally), tally, s.cfg.Clock.Now().UTC()
}

// State reports the host lifecycle state.
func (s *Session) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.host != nil {
		return StateInitialized
	}
	return StateUninitialized
}

// Host returns the session's host, or nil before initialization.
func (s *Session) Host() *Host {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.host
}

// Populated reports whether the one-shot population has run.
func (s *Session) Populated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.populated
}

// CheckReadiness returns nil once the host exists and population has run.
func (s *Session) CheckReadiness(_ context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	switch {
	case s.initErr != nil:
		return s.initErr
	case s.host == nil:
		return errors.New("map has not been initialized yet")
	case !s.populated:
		return errors.New("markers have not been populated yet")
	}
	return nil
}

// Snapshot is a read-only view of a session for rendering.
type Snapshot struct {
	State       State
	ElementID   string
	Options     Options
	Status      template.HTML
	Tally       domain.Tally
	Markers     []domain.Marker
	PopulatedAt time.Time
}

// Snapshot copies the session's current state.
func (s *Session) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := Snapshot{
		State:       StateUninitialized,
		Options:     s.cfg.Options,
		Status:      s.status,
		Tally:       s.tally,
		PopulatedAt: s.populatedAt,
	}
	if s.host != nil {
		snap.State = StateInitialized
		snap.ElementID = s.host.ElementID()
	}
	if s.host != nil && s.populated {
		snap.Markers = s.host.Markers()
	}
	return snap
}
