package main

import (
	"github.com/spf13/cobra"

	"github.com/couchcryptid/blue-plaque-map/internal/adapter/httpadapter"
)

func newRenderCmd(opts *rootOptions) *cobra.Command {
	var (
		outPath string
		title   string
	)

	cmd := &cobra.Command{
		Use:   "render DATASET",
		Short: "Render a self-contained HTML map page",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := opts.populate(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			w, closeFn, err := openOutput(cmd, outPath)
			if err != nil {
				return err
			}
			if err := httpadapter.RenderPage(w, title, session.Snapshot(), false); err != nil {
				_ = closeFn()
				return err
			}
			return closeFn()
		},
	}
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "Output file (default stdout)")
	cmd.Flags().StringVar(&title, "title", httpadapter.DefaultPageTitle, "Page title")
	return cmd
}
