// Package cli wires the easel commands: the API server, the terminal editor
// and a few scriptable canvas operations.
package cli

import (
	"fmt"
	"os"
	"strings"

	"easel/internal/client"
	"easel/internal/config"

	"github.com/spf13/cobra"
)

type App struct {
	ConfigPath string
	APIURL     string

	Config *config.Config
}

func NewRootCmd() *cobra.Command {
	app := &App{}

	cmd := &cobra.Command{
		Use:          "easel",
		Short:        "Canvas editor with a REST backend",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Run the API server
  easel serve

  # Open the canvas picker in the terminal editor
  easel

  # Edit a canvas directly
  easel edit 6f1c2a4e-0d57-4a53-9a8e-0c4c8f2f8a11

  # Render a canvas to a file
  easel export 6f1c2a4e-0d57-4a53-9a8e-0c4c8f2f8a11 -o poster.pdf
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			// No subcommand => interactive editor.
			if len(args) == 0 {
				return runEditor(app, "")
			}
			return cmd.Help()
		},
	}

	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		return app.loadConfig()
	}

	cmd.PersistentFlags().StringVar(&app.ConfigPath, "config", envOr("EASEL_CONFIG", ""), "Path to config.toml (default: user config dir)")
	cmd.PersistentFlags().StringVar(&app.APIURL, "api", "", "API base URL (overrides api_url)")

	cmd.AddCommand(newServeCmd(app))
	cmd.AddCommand(newEditCmd(app))
	cmd.AddCommand(newListCmd(app))
	cmd.AddCommand(newCreateCmd(app))
	cmd.AddCommand(newExportCmd(app))

	return cmd
}

func (app *App) loadConfig() error {
	var (
		cfg *config.Config
		err error
	)
	if app.ConfigPath != "" {
		cfg, err = config.LoadFile(app.ConfigPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return err
	}
	if u := strings.TrimSpace(app.APIURL); u != "" {
		cfg.APIURL = strings.TrimRight(u, "/")
	}
	app.Config = cfg
	return nil
}

func (app *App) client() *client.Client {
	return client.New(app.Config.APIURL)
}

func envOr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func writeErr(cmd *cobra.Command, err error) error {
	fmt.Fprintln(cmd.ErrOrStderr(), err.Error())
	return err
}
