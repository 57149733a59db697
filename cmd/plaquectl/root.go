package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/couchcryptid/blue-plaque-map/internal/dataset"
	"github.com/couchcryptid/blue-plaque-map/internal/domain"
	"github.com/couchcryptid/blue-plaque-map/internal/mapview"
	"github.com/couchcryptid/blue-plaque-map/internal/observability"
	"github.com/couchcryptid/blue-plaque-map/internal/pipeline"
)

type rootOptions struct {
	verbose   bool
	converter string
	locality  string
	elementID string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "plaquectl",
		Short:         "Tools for the Leeds blue plaque map",
		Long:          "plaquectl converts OS grid references and validates, exports or renders plaque datasets.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			level := slog.LevelWarn
			if opts.verbose {
				level = slog.LevelDebug
			}
			logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
			slog.SetDefault(logger)
		},
	}

	pf := cmd.PersistentFlags()
	pf.BoolVarP(&opts.verbose, "verbose", "v", false, "Enable verbose logging")
	pf.StringVar(&opts.converter, "converter", domain.ConverterPrecise, "Grid converter: precise or approximate")
	pf.StringVar(&opts.locality, "locality", domain.DefaultSearchLocality, "Locality appended to popup search links")
	pf.StringVar(&opts.elementID, "element-id", "map", "Page element hosting the map")

	cmd.AddCommand(
		newConvertCmd(opts),
		newValidateCmd(opts),
		newExportCmd(opts),
		newRenderCmd(opts),
	)
	return cmd
}

// populate loads the dataset at pattern into a fresh, initialized session.
func (o *rootOptions) populate(ctx context.Context, pattern string) (*mapview.Session, error) {
	converter, err := domain.NewConverter(o.converter)
	if err != nil {
		return nil, err
	}
	records, err := dataset.Load(ctx, pattern)
	if err != nil {
		return nil, err
	}

	logger := slog.Default()
	metrics := observability.NewMetricsWithRegistry(prometheus.NewRegistry())
	populator := pipeline.New(converter, domain.NewPopupFormatter(o.locality), logger, metrics)

	session := mapview.NewSession(mapview.SessionConfig{
		Options:     mapview.DefaultOptions(),
		Dataset:     func(context.Context) ([]domain.Plaque, error) { return records, nil },
		DatasetName: pattern,
		Populator:   populator,
		Logger:      logger,
	})
	if _, err := session.EnsureInitialized(ctx, o.elementID); err != nil {
		return nil, fmt.Errorf("initialize map: %w", err)
	}
	return session, nil
}

// openOutput returns stdout for "" or "-", else a created file.
func openOutput(cmd *cobra.Command, path string) (io.Writer, func() error, error) {
	if path == "" || path == "-" {
		return cmd.OutOrStdout(), func() error { return nil }, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("create %s: %w", path, err)
	}
	return f, f.Close, nil
}
