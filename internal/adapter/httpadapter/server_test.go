package httpadapter_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/blue-plaque-map/internal/adapter/httpadapter"
	"github.com/couchcryptid/blue-plaque-map/internal/domain"
	"github.com/couchcryptid/blue-plaque-map/internal/mapview"
	"github.com/couchcryptid/blue-plaque-map/internal/observability"
)

type stubPopulator struct{}

func (stubPopulator) Populate(_ context.Context, dataset []domain.Plaque, host mapview.MarkerHost) domain.Tally {
	var t domain.Tally
	f := domain.NewPopupFormatter("Leeds")
	for i, p := range dataset {
		pos, ok := domain.SafeConvert(domain.ApproximateConverter{}, p.Easting, p.Northing)
		if !p.HasCoordinates() || !ok {
			t.Invalid++
			continue
		}
		if err := host.AddMarker(domain.NewMarker(i, p, pos, f.Format(p))); err != nil {
			t.Invalid++
			continue
		}
		t.Valid++
	}
	return t
}

type stubSource struct {
	session *mapview.Session
	err     error
}

func (s *stubSource) Session() *mapview.Session              { return s.session }
func (s *stubSource) CheckReadiness(_ context.Context) error { return s.err }

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func populatedSession(t *testing.T) *mapview.Session {
	t.Helper()
	s := mapview.NewSession(mapview.SessionConfig{
		Options: mapview.DefaultOptions(),
		Dataset: func(context.Context) ([]domain.Plaque, error) {
			return []domain.Plaque{
				{Title: "Test", Easting: 430000, Northing: 433000},
				{Title: "Bad", Northing: 433000},
			}, nil
		},
		Populator: stubPopulator{},
		Logger:    quietLogger(),
	})
	_, err := s.EnsureInitialized(context.Background(), "map")
	require.NoError(t, err)
	return s
}

func newTestServer(src *stubSource, hub *httpadapter.Hub) *httpadapter.Server {
	return httpadapter.NewServer(":0", src, hub, quietLogger())
}

func get(t *testing.T, srv http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestHealthzReturns200(t *testing.T) {
	rec := get(t, newTestServer(&stubSource{}, nil), "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestReadyzReturns200WhenReady(t *testing.T) {
	rec := get(t, newTestServer(&stubSource{}, nil), "/readyz")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestReadyzReturns503WhenNotReady(t *testing.T) {
	rec := get(t, newTestServer(&stubSource{err: errors.New("map has not been initialized yet")}, nil), "/readyz")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	rec := get(t, newTestServer(&stubSource{}, nil), "/metrics")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestPageBeforeSession(t *testing.T) {
	rec := get(t, newTestServer(&stubSource{}, nil), "/")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	body := rec.Body.String()
	assert.Contains(t, body, `<div id="map"></div>`)
	assert.Contains(t, body, string(mapview.StatusLoading))
}

func TestPageShowsSummaryAndMarkers(t *testing.T) {
	rec := get(t, newTestServer(&stubSource{session: populatedSession(t)}, nil), "/")

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `<div id="plaque-count">Displaying <strong>1</strong> blue plaques on the map.`)
	assert.Contains(t, body, "openstreetmap")
	assert.Contains(t, body, "Test")
}

func TestMarkersReturnsGeoJSON(t *testing.T) {
	rec := get(t, newTestServer(&stubSource{session: populatedSession(t)}, nil), "/api/markers")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/geo+json", rec.Header().Get("Content-Type"))

	var fc struct {
		Type     string `json:"type"`
		Features []struct {
			Geometry struct {
				Coordinates []float64 `json:"coordinates"`
			} `json:"geometry"`
			Properties map[string]any `json:"properties"`
		} `json:"features"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &fc))
	assert.Equal(t, "FeatureCollection", fc.Type)
	require.Len(t, fc.Features, 1)
	assert.InDelta(t, -1.55, fc.Features[0].Geometry.Coordinates[0], 1e-9)
	assert.InDelta(t, 53.8, fc.Features[0].Geometry.Coordinates[1], 1e-9)
	assert.Equal(t, "Test", fc.Features[0].Properties["title"])
}

func TestMarkersEmptyBeforeSession(t *testing.T) {
	rec := get(t, newTestServer(&stubSource{}, nil), "/api/markers")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"features":[]`)
}

func TestStatusReportsTally(t *testing.T) {
	rec := get(t, newTestServer(&stubSource{session: populatedSession(t)}, nil), "/api/status")

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "initialized", body["state"])
	assert.InDelta(t, 1, body["valid"], 0)
	assert.InDelta(t, 1, body["invalid"], 0)
	assert.InDelta(t, 1, body["markers"], 0)
	assert.NotContains(t, body, "features")
}

func TestRenderPageStatic(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, httpadapter.RenderPage(&buf, "Plaques", populatedSession(t).Snapshot(), false))

	page := buf.String()
	assert.Contains(t, page, "<title>Plaques</title>")
	assert.Regexp(t, `const live =\s*false\s*;`, page)
	assert.Contains(t, page, "title: f.properties.title", "markers carry a hover title")
}

func TestWebSocketReceivesSnapshots(t *testing.T) {
	hub := httpadapter.NewHub(quietLogger(), observability.NewMetricsForTesting())
	sess := populatedSession(t)
	hub.Broadcast(sess.Snapshot())

	ts := httptest.NewServer(newTestServer(&stubSource{session: sess}, hub))
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	defer conn.Close()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	var first map[string]any
	require.NoError(t, conn.ReadJSON(&first))
	assert.InDelta(t, 1, first["valid"], 0)
	assert.Contains(t, first, "features")

	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, time.Second, 10*time.Millisecond)

	hub.Broadcast(mapview.Snapshot{Status: mapview.StatusLoading})
	var second map[string]any
	require.NoError(t, conn.ReadJSON(&second))
	assert.Equal(t, string(mapview.StatusLoading), second["status"])
}
