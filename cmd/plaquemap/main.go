// Command plaquemap serves the Leeds blue plaque web map.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/couchcryptid/blue-plaque-map/internal/adapter/httpadapter"
	kafkaadapter "github.com/couchcryptid/blue-plaque-map/internal/adapter/kafka"
	"github.com/couchcryptid/blue-plaque-map/internal/adapter/mapbox"
	"github.com/couchcryptid/blue-plaque-map/internal/config"
	"github.com/couchcryptid/blue-plaque-map/internal/dataset"
	"github.com/couchcryptid/blue-plaque-map/internal/domain"
	"github.com/couchcryptid/blue-plaque-map/internal/mapview"
	"github.com/couchcryptid/blue-plaque-map/internal/observability"
	"github.com/couchcryptid/blue-plaque-map/internal/pipeline"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	converter, err := domain.NewConverter(cfg.Converter)
	if err != nil {
		logger.Error("invalid converter", "error", err)
		os.Exit(1)
	}

	var opts []pipeline.Option

	// Reverse geocoding is feature-flagged via MAPBOX_ENABLED / MAPBOX_TOKEN.
	if cfg.MapboxEnabled {
		client := mapbox.NewClient(cfg.MapboxToken, cfg.MapboxTimeout, metrics, logger)
		geocoder := mapbox.NewCachedGeocoder(client, cfg.MapboxCacheSize, metrics)
		opts = append(opts, pipeline.WithEnricher(domain.NewGeocodeEnricher(geocoder, logger)))
		metrics.GeocodeEnabled.Set(1)
		logger.Info("mapbox geocoding enabled", "cache_size", cfg.MapboxCacheSize, "timeout", cfg.MapboxTimeout)
	} else {
		logger.Info("mapbox geocoding disabled")
	}

	var writer *kafkaadapter.Writer
	if cfg.KafkaEnabled {
		writer = kafkaadapter.NewWriter(cfg, logger)
		opts = append(opts, pipeline.WithSink(writer))
		logger.Info("kafka marker sink enabled", "topic", cfg.KafkaMarkerTopic, "brokers", cfg.KafkaBrokers)
	}

	populator := pipeline.New(converter, domain.NewPopupFormatter(cfg.SearchLocality), logger, metrics, opts...)
	source := dataset.Source(cfg.DatasetPath)

	rt := pipeline.NewRuntime(pipeline.RuntimeConfig{
		NewSession: func() *mapview.Session {
			return mapview.NewSession(mapview.SessionConfig{
				Options:     mapview.DefaultOptions(),
				Dataset:     source,
				DatasetName: cfg.DatasetPath,
				Populator:   populator,
				Logger:      logger,
			})
		},
		ElementID: cfg.MapElementID,
		InitDelay: cfg.InitDelay,
		Logger:    logger,
		Metrics:   metrics,
	})

	hub := httpadapter.NewHub(logger, metrics)
	rt.Subscribe(hub.Broadcast)

	srv := httpadapter.NewServer(cfg.HTTPAddr, rt, hub, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	// Initialize the map after the page-load delay.
	go func() {
		if err := rt.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("map session failed", "error", err)
		}
	}()

	if cfg.DatasetWatch {
		w := dataset.NewWatcher(cfg.DatasetPath, func(ctx context.Context) {
			if err := rt.Reload(ctx); err != nil {
				logger.Error("dataset reload failed", "error", err)
			}
		}, logger)
		go func() {
			if err := w.Run(ctx); err != nil {
				logger.Error("dataset watcher stopped", "error", err)
			}
		}()
	}

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if writer != nil {
		if err := writer.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
