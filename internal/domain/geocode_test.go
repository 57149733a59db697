package domain

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

// --- mock geocoder ---

type mockGeocoder struct {
	result GeocodingResult
	err    error
	calls  int
}

func (m *mockGeocoder) ReverseGeocode(_ context.Context, _, _ float64) (GeocodingResult, error) {
	m.calls++
	return m.result, m.err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testMarker() Marker {
	return Marker{ID: "m-1", Title: "Test", Position: LatLng{Lat: 53.8, Lng: -1.55}}
}

// --- tests ---

func TestEnrichWithGeocoding_NilGeocoder(t *testing.T) {
	result := EnrichWithGeocoding(context.Background(), testMarker(), nil, discardLogger())

	assert.Empty(t, result.GeoSource)
	assert.Empty(t, result.Address)
}

func TestEnrichWithGeocoding_Reverse(t *testing.T) {
	geo := &mockGeocoder{
		result: GeocodingResult{
			FormattedAddress: "Park Row, Leeds, England",
			PlaceName:        "Park Row",
			Confidence:       0.9,
		},
	}

	result := EnrichWithGeocoding(context.Background(), testMarker(), geo, discardLogger())

	assert.Equal(t, "Park Row, Leeds, England", result.Address)
	assert.Equal(t, "Park Row", result.PlaceName)
	assert.Equal(t, 0.9, result.GeoConfidence)
	assert.Equal(t, "reverse", result.GeoSource)
	assert.Equal(t, 1, geo.calls)
}

func TestEnrichWithGeocoding_Error_GracefulDegradation(t *testing.T) {
	geo := &mockGeocoder{err: errors.New("rate limited")}

	result := EnrichWithGeocoding(context.Background(), testMarker(), geo, discardLogger())

	assert.Equal(t, "failed", result.GeoSource)
	assert.Equal(t, 53.8, result.Position.Lat) // position preserved
}

func TestEnrichWithGeocoding_EmptyResult(t *testing.T) {
	geo := &mockGeocoder{}

	result := EnrichWithGeocoding(context.Background(), testMarker(), geo, discardLogger())

	assert.Equal(t, "original", result.GeoSource)
	assert.Empty(t, result.Address)
}

func TestGeocodeEnricher_Enrich(t *testing.T) {
	geo := &mockGeocoder{result: GeocodingResult{FormattedAddress: "Leeds"}}
	e := NewGeocodeEnricher(geo, discardLogger())

	result := e.Enrich(context.Background(), testMarker())
	assert.Equal(t, "Leeds", result.Address)
}
