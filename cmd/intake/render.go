package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-intake/pkg/orchestrator"
	"github.com/goliatone/go-intake/pkg/render"
)

func newRenderCmd(a *app) *cobra.Command {
	var (
		renderer string
		page     string
		output   string
		action   string
	)
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render one page with stored answers as HTML or text",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			sess, err := a.openSession(ctx, page)
			if err != nil {
				return err
			}
			defer sess.Close()

			out, err := sess.orch.Render(ctx, sess.engine, orchestrator.Request{
				Renderer: renderer,
				RenderOptions: render.RenderOptions{
					Locale: a.cfg.Locale,
					Action: action,
				},
			})
			if err != nil {
				return err
			}
			return writeOutput(cmd.OutOrStdout(), output, out)
		},
	}
	cmd.Flags().StringVarP(&renderer, "renderer", "r", "", "renderer name (html, text)")
	cmd.Flags().StringVar(&page, "page", "", "page code to render")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (stdout if empty)")
	cmd.Flags().StringVar(&action, "action", "", "form post target for HTML output")
	return cmd
}

func writeOutput(stdout io.Writer, path string, data []byte) error {
	if path == "" {
		_, err := stdout.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	fmt.Fprintf(stdout, "Written to %s\n", path)
	return nil
}
