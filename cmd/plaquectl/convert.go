package main

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/couchcryptid/blue-plaque-map/internal/domain"
)

func newConvertCmd(opts *rootOptions) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "convert EASTING NORTHING",
		Short: "Convert an OS grid reference to WGS84 latitude/longitude",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			easting, err := strconv.ParseFloat(args[0], 64)
			if err != nil {
				return fmt.Errorf("invalid easting %q: %w", args[0], err)
			}
			northing, err := strconv.ParseFloat(args[1], 64)
			if err != nil {
				return fmt.Errorf("invalid northing %q: %w", args[1], err)
			}

			converter, err := domain.NewConverter(opts.converter)
			if err != nil {
				return err
			}
			ll, err := converter.Convert(easting, northing)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				return json.NewEncoder(out).Encode(map[string]any{
					"easting":   easting,
					"northing":  northing,
					"lat":       ll.Lat,
					"lng":       ll.Lng,
					"converter": converter.Name(),
				})
			}
			_, err = fmt.Fprintf(out, "%.6f,%.6f\n", ll.Lat, ll.Lng)
			return err
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	return cmd
}
