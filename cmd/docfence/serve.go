package main

import (
	"github.com/spf13/cobra"

	"github.com/jcorbin/docfence/internal/serve"
)

func newServeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve source documents, rendered fresh on every request",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rend, err := a.renderer()
			if err != nil {
				return err
			}
			srv := serve.New(serve.Options{
				Source:   a.cfg.Source,
				Include:  a.cfg.Include,
				Version:  a.cfg.Version,
				Margin:   a.cfg.Margin,
				Renderer: rend,
				Log:      a.log,
			})
			return srv.ListenAndServe(cmd.Context(), a.cfg.Listen)
		},
	}
	addRenderFlags(cmd.Flags())
	addSourceFlags(cmd.Flags())
	cmd.Flags().String("listen", "localhost:8080", "address to serve on")
	return cmd
}
