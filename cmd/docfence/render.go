package main

import (
	"bytes"

	"github.com/spf13/cobra"

	"github.com/jcorbin/docfence/internal/render"
)

func newRenderCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "render [file]",
		Short: "Render one docstring document, from a file or stdin, as an HTML fragment",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rend, err := a.renderer()
			if err != nil {
				return err
			}
			name := "-"
			if len(args) > 0 {
				name = args[0]
			}
			src, err := readInput(cmd, name)
			if err != nil {
				return err
			}
			return render.Doc(cmd.OutOrStdout(), bytes.NewReader(src), rend, a.cfg.Margin)
		},
	}
	addRenderFlags(cmd.Flags())
	return cmd
}

func (a *app) renderer() (render.Renderer, error) {
	return render.New(a.cfg.Engine, a.cfg.RenderOptions())
}
