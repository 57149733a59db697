package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/couchcryptid/blue-plaque-map/internal/domain"
)

// errInvalidRecords is returned by validate --strict when any record was rejected.
var errInvalidRecords = errors.New("dataset contains records that cannot be placed")

func newValidateCmd(opts *rootOptions) *cobra.Command {
	var strict bool

	cmd := &cobra.Command{
		Use:   "validate DATASET",
		Short: "Run a population pass and report placeable and rejected records",
		Long: "Loads every file matching DATASET (a path or glob) and runs the same population\n" +
			"pass as the server. Rejected records are logged with --verbose.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := opts.populate(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			snap := session.Snapshot()

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "records:  %d\n", snap.Tally.Total())
			fmt.Fprintf(out, "placed:   %d\n", snap.Tally.Valid)
			fmt.Fprintf(out, "rejected: %d\n", snap.Tally.Invalid)
			if len(snap.Markers) > 0 {
				fmt.Fprintf(out, "first:    %s (%s)\n", snap.Markers[0].Title, formatPosition(snap.Markers[0]))
			}

			if strict && snap.Tally.Invalid > 0 {
				return fmt.Errorf("%w: %d of %d", errInvalidRecords, snap.Tally.Invalid, snap.Tally.Total())
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&strict, "strict", false, "Fail when any record cannot be placed")
	return cmd
}

func formatPosition(m domain.Marker) string {
	return fmt.Sprintf("%.5f,%.5f", m.Position.Lat, m.Position.Lng)
}
