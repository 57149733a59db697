package main

import (
	"github.com/spf13/cobra"

	"github.com/couchcryptid/blue-plaque-map/internal/mapview"
)

func newExportCmd(opts *rootOptions) *cobra.Command {
	var outPath string

	cmd := &cobra.Command{
		Use:   "export DATASET",
		Short: "Write placed markers as a GeoJSON FeatureCollection",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := opts.populate(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			data, err := mapview.FeatureCollection(session.Snapshot().Markers).MarshalJSON()
			if err != nil {
				return err
			}

			w, closeFn, err := openOutput(cmd, outPath)
			if err != nil {
				return err
			}
			if _, err := w.Write(append(data, '\n')); err != nil {
				_ = closeFn()
				return err
			}
			return closeFn()
		},
	}
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "Output file (default stdout)")
	return cmd
}
