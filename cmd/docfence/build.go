package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jcorbin/docfence/internal/site"
	"github.com/jcorbin/docfence/internal/watch"
)

func newBuildCmd(a *app) *cobra.Command {
	var overwrite, watching bool
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Render every source document into a versioned HTML tree",
		Long: `Build renders the included source documents under --source into
<out>/<version>, along with an index page. It refuses to build into an
existing version directory unless --overwrite is given. With --watch it keeps
running, rebuilding whenever a source document changes.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rend, err := a.renderer()
			if err != nil {
				return err
			}
			opts := site.Options{
				Source:    a.cfg.Source,
				Include:   a.cfg.Include,
				Out:       a.cfg.Out,
				Version:   a.cfg.Version,
				Overwrite: overwrite,
				Jobs:      a.cfg.Jobs,
				Margin:    a.cfg.Margin,
				Renderer:  rend,
				Log:       a.log,
			}
			ctx := cmd.Context()
			res, err := site.Build(ctx, opts)
			if err != nil {
				return err
			}
			if !watching {
				_, err := fmt.Fprintln(cmd.OutOrStdout(), res.Root)
				return err
			}

			opts.Overwrite = true
			return watch.Run(ctx, watch.Options{
				Root:    a.cfg.Source,
				Include: a.cfg.Include,
				Log:     a.log,
			}, func(ctx context.Context) error {
				_, err := site.Build(ctx, opts)
				return err
			})
		},
	}
	addRenderFlags(cmd.Flags())
	addSourceFlags(cmd.Flags())
	cmd.Flags().String("out", "docs/api", "output directory")
	cmd.Flags().Int("jobs", 4, "concurrent page renders")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "build into an existing version directory")
	cmd.Flags().BoolVarP(&watching, "watch", "w", false, "rebuild when source documents change")
	return cmd
}
