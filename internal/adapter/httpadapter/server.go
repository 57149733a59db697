package httpadapter

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/couchcryptid/blue-plaque-map/internal/mapview"
)

// SessionSource provides the current map session and its readiness.
type SessionSource interface {
	sharedobs.ReadinessChecker
	Session() *mapview.Session
}

// Server serves the map page, its data API and the health endpoints.
type Server struct {
	httpServer *http.Server
	source     SessionSource
	title      string
	logger     *slog.Logger
}

// NewServer creates an HTTP server with the page, /api, /ws, /healthz,
// /readyz and /metrics routes.
func NewServer(addr string, source SessionSource, hub *Hub, logger *slog.Logger) *Server {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      r,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		source: source,
		title:  DefaultPageTitle,
		logger: logger,
	}

	r.Get("/healthz", sharedobs.LivenessHandler())
	r.Get("/readyz", sharedobs.ReadinessHandler(source))
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Get("/", s.handlePage)
	r.Route("/api", func(r chi.Router) {
		r.Get("/markers", s.handleMarkers)
		r.Get("/status", s.handleStatus)
	})
	if hub != nil {
		r.Get("/ws", hub.handleWebSocket)
	}

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

// snapshot returns the current session's view, or a loading view before the
// first session exists.
func (s *Server) snapshot() mapview.Snapshot {
	if sess := s.source.Session(); sess != nil {
		return sess.Snapshot()
	}
	return mapview.Snapshot{
		State:   mapview.StateUninitialized,
		Options: mapview.DefaultOptions(),
		Status:  mapview.StatusLoading,
	}
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := RenderPage(&buf, s.title, s.snapshot(), true); err != nil {
		s.logger.Error("page render failed", "error", err, "request_id", middleware.GetReqID(r.Context()))
		http.Error(w, "page unavailable", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) handleMarkers(w http.ResponseWriter, r *http.Request) {
	fc := mapview.FeatureCollection(s.snapshot().Markers)
	data, err := fc.MarshalJSON()
	if err != nil {
		s.logger.Error("encode markers", "error", err, "request_id", middleware.GetReqID(r.Context()))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "encode markers"})
		return
	}
	w.Header().Set("Content-Type", "application/geo+json")
	_, _ = w.Write(data)
}

func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	resp := newStatusResponse(s.snapshot())
	resp.Features = nil
	writeJSON(w, http.StatusOK, resp)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
