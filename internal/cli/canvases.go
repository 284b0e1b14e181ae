package cli

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"easel/internal/imageload"
	"easel/internal/surface"

	"github.com/spf13/cobra"
)

const requestTimeout = 60 * time.Second

func newListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List canvases, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), requestTimeout)
			defer cancel()

			list, err := app.client().List(ctx)
			if err != nil {
				return writeErr(cmd, err)
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, c := range list {
				fmt.Fprintf(tw, "%s\t%s\n", c.ID, c.Name)
			}
			return tw.Flush()
		},
	}
}

func newCreateCmd(app *App) *cobra.Command {
	var width, height float64

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create an empty canvas and print its id",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), requestTimeout)
			defer cancel()

			id, err := app.client().Create(ctx, width, height)
			if err != nil {
				return writeErr(cmd, err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), id)
			return nil
		},
	}

	cmd.Flags().Float64Var(&width, "width", 600, "Canvas width in pixels")
	cmd.Flags().Float64Var(&height, "height", 400, "Canvas height in pixels")
	return cmd
}

func newExportCmd(app *App) *cobra.Command {
	var out string
	var asPNG bool

	cmd := &cobra.Command{
		Use:   "export <canvas-id>",
		Short: "Render a canvas to PDF (server side) or PNG (locally)",
		Example: strings.TrimSpace(`
easel export 6f1c2a4e-0d57-4a53-9a8e-0c4c8f2f8a11
easel export 6f1c2a4e-0d57-4a53-9a8e-0c4c8f2f8a11 --png -o poster.png
`),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), requestTimeout)
			defer cancel()

			id := args[0]
			ext := ".pdf"
			if asPNG {
				ext = ".png"
			}
			path := out
			if path == "" {
				path = app.Config.GetSavePath(id + ext)
			}

			var buf bytes.Buffer
			api := app.client()
			if asPNG {
				c, err := api.Get(ctx, id)
				if err != nil {
					return writeErr(cmd, err)
				}
				err = surface.ExportPNG(ctx, &buf, c.Elements, int(c.Width), int(c.Height), imageload.FetchLoader{})
				if err != nil {
					return writeErr(cmd, err)
				}
			} else if err := api.Export(ctx, id, &buf); err != nil {
				return writeErr(cmd, err)
			}

			if path == "-" {
				_, err := cmd.OutOrStdout().Write(buf.Bytes())
				return err
			}
			if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
				return writeErr(cmd, err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}

	cmd.Flags().StringVarP(&out, "output", "o", "", "Output file, - for stdout (default: save_directory/<id>.<ext>)")
	cmd.Flags().BoolVar(&asPNG, "png", false, "Render PNG locally instead of requesting a PDF")
	return cmd
}
