package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/blue-plaque-map/internal/domain"
	"github.com/couchcryptid/blue-plaque-map/internal/mapview"
	"github.com/couchcryptid/blue-plaque-map/internal/observability"
)

// Record outcomes, used as the metrics label.
const (
	outcomePlaced             = "placed"
	outcomeMissingCoordinates = "missing_coordinates"
	outcomeConversionFailed   = "conversion_failed"
	outcomeMarkerFailed       = "marker_failed"
)

// Enricher decorates a marker before registration. Enrichers must not fail
// the record; they degrade by returning the marker unchanged.
type Enricher interface {
	Enrich(ctx context.Context, m domain.Marker) domain.Marker
}

// BatchLoader receives every placed marker after a population pass.
type BatchLoader interface {
	LoadBatch(ctx context.Context, markers []domain.Marker) error
}

// Option customizes a Populator.
type Option func(*Populator)

// WithEnricher runs e on every marker before it is registered.
func WithEnricher(e Enricher) Option {
	return func(p *Populator) { p.enricher = e }
}

// WithSink publishes placed markers to l after each pass.
func WithSink(l BatchLoader) Option {
	return func(p *Populator) { p.sink = l }
}

// Populator converts plaque records into markers on a map host.
type Populator struct {
	converter domain.Converter
	formatter domain.PopupFormatter
	enricher  Enricher
	sink      BatchLoader
	logger    *slog.Logger
	metrics   *observability.Metrics
}

// New creates a Populator with the given converter strategy and popup formatter.
func New(converter domain.Converter, formatter domain.PopupFormatter, logger *slog.Logger, metrics *observability.Metrics, opts ...Option) *Populator {
	p := &Populator{
		converter: converter,
		formatter: formatter,
		logger:    logger,
		metrics:   metrics,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Populate walks dataset once, in order, and registers one marker per valid
// record. Invalid records are counted and logged; processing always continues.
// Valid+Invalid equals len(dataset).
func (p *Populator) Populate(ctx context.Context, dataset []domain.Plaque, host mapview.MarkerHost) domain.Tally {
	start := time.Now()
	p.metrics.PopulationRuns.Inc()
	p.logger.Info("processing plaques", "records", len(dataset), "converter", p.converter.Name())

	var tally domain.Tally
	placed := make([]domain.Marker, 0, len(dataset))

	for i, plaque := range dataset {
		if !plaque.HasCoordinates() {
			p.reject(&tally, i, plaque, outcomeMissingCoordinates, nil)
			continue
		}

		pos, ok := domain.SafeConvert(p.converter, plaque.Easting, plaque.Northing)
		if !ok || !pos.Valid() {
			p.reject(&tally, i, plaque, outcomeConversionFailed, nil)
			continue
		}

		m, err := p.place(ctx, i, plaque, pos, host)
		if err != nil {
			p.reject(&tally, i, plaque, outcomeMarkerFailed, err)
			continue
		}

		tally.Valid++
		placed = append(placed, m)
		p.metrics.RecordsProcessed.WithLabelValues(outcomePlaced).Inc()
	}

	p.metrics.MarkersPlaced.Set(float64(tally.Valid))
	p.metrics.PopulationDuration.Observe(time.Since(start).Seconds())
	p.logger.Info("plaques loaded", "valid", tally.Valid, "skipped", tally.Invalid)

	if p.sink != nil && len(placed) > 0 {
		p.publish(ctx, placed)
	}
	return tally
}

// place builds, enriches and registers one marker. Panics raised while doing
// so are reported as errors.
func (p *Populator) place(ctx context.Context, index int, plaque domain.Plaque, pos domain.LatLng, host mapview.MarkerHost) (m domain.Marker, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("add marker: panic: %v", r)
		}
	}()

	m = domain.NewMarker(index, plaque, pos, p.formatter.Format(plaque))
	if p.enricher != nil {
		m = p.enricher.Enrich(ctx, m)
	}
	if err := host.AddMarker(m); err != nil {
		return domain.Marker{}, fmt.Errorf("add marker: %w", err)
	}
	return m, nil
}

func (p *Populator) reject(tally *domain.Tally, index int, plaque domain.Plaque, outcome string, err error) {
	tally.Invalid++
	p.metrics.RecordsProcessed.WithLabelValues(outcome).Inc()

	attrs := []any{
		"index", index,
		"title", plaque.Title,
		"easting", plaque.Easting,
		"northing", plaque.Northing,
		"reason", outcome,
	}
	if err != nil {
		attrs = append(attrs, "error", err)
	}
	p.logger.Warn("plaque skipped", attrs...)
}
