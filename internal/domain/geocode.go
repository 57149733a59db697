package domain

import (
	"context"
	"log/slog"
)

// GeocodeEnricher adds reverse geocoded addresses to placed markers.
type GeocodeEnricher struct {
	geocoder Geocoder
	logger   *slog.Logger
}

// NewGeocodeEnricher wraps geocoder. A nil geocoder makes Enrich a no-op.
func NewGeocodeEnricher(geocoder Geocoder, logger *slog.Logger) *GeocodeEnricher {
	return &GeocodeEnricher{geocoder: geocoder, logger: logger}
}

// Enrich calls EnrichWithGeocoding with the configured geocoder.
func (e *GeocodeEnricher) Enrich(ctx context.Context, m Marker) Marker {
	return EnrichWithGeocoding(ctx, m, e.geocoder, e.logger)
}

// EnrichWithGeocoding attempts to attach an address to a marker.
// If geocoder is nil or geocoding fails, the marker is returned with
// GeoSource set accordingly (graceful degradation). Position is never changed.
func EnrichWithGeocoding(ctx context.Context, m Marker, geocoder Geocoder, logger *slog.Logger) Marker {
	if geocoder == nil {
		return m
	}

	result, err := geocoder.ReverseGeocode(ctx, m.Position.Lat, m.Position.Lng)
	if err != nil {
		logger.Warn("reverse geocoding failed",
			"marker_id", m.ID,
			"title", m.Title,
			"lat", m.Position.Lat,
			"lng", m.Position.Lng,
			"error", err,
		)
		m.GeoSource = "failed"
		return m
	}
	if result.FormattedAddress == "" {
		m.GeoSource = "original"
		return m
	}

	m.Address = result.FormattedAddress
	m.PlaceName = result.PlaceName
	m.GeoConfidence = result.Confidence
	m.GeoSource = "reverse"
	return m
}
