package cli

import (
	"io"
	"log"
	"os"

	"easel/internal/imageload"
	"easel/internal/tui"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

func newEditCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "edit [canvas-id]",
		Short: "Open the terminal editor",
		Long:  "Open a canvas in the terminal editor. Without an id the canvas picker is shown.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := ""
			if len(args) == 1 {
				id = args[0]
			}
			return runEditor(app, id)
		},
	}
}

func runEditor(app *App, id string) error {
	// the log would otherwise draw over the alt screen
	if path := os.Getenv("EASEL_DEBUG"); path != "" {
		f, err := tea.LogToFile(path, "easel")
		if err != nil {
			return err
		}
		defer f.Close()
	} else {
		log.SetOutput(io.Discard)
	}

	m := tui.New(tui.Options{
		Config:   app.Config,
		API:      app.client(),
		Loader:   imageload.FetchLoader{},
		CanvasID: id,
	})
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion())
	_, err := p.Run()
	return err
}
