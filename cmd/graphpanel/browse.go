package main

import (
	"fmt"
	"io"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/recera/graphpanel/cmd/graphpanel/internal/ui"
	"github.com/recera/graphpanel/internal/logger"
	"github.com/recera/graphpanel/pkg/panel"
	"github.com/recera/graphpanel/pkg/scheduler"
)

func newBrowseCommand(a *app) *cobra.Command {
	var rootNode, logFile string

	cmd := &cobra.Command{
		Use:   "browse",
		Short: "Pick, render and pan around graphs in the terminal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			log, closer, err := a.browseLogger(logFile)
			if err != nil {
				return err
			}
			defer closer.Close()

			loop := ui.NewProgramLoop(nil)
			surface := ui.NewSurface(80, 24, ui.HeaderRows, ui.FooterRows)
			ctrl, err := a.browsePanel(log, loop, surface)
			if err != nil {
				return err
			}

			model := ui.NewModel(cmd.Context(), ctrl, surface, rootNode)
			p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(cmd.Context()))
			loop.Bind(p)
			defer loop.Stop()

			if _, err := p.Run(); err != nil {
				return fmt.Errorf("terminal UI: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&rootNode, "root", "r", "", "Render subgraphs rooted at this node")
	cmd.Flags().StringVar(&logFile, "log-file", "", "Write logs to this file while the UI runs")
	return cmd
}

// browseLogger keeps log lines off the terminal the UI draws on. They go to
// logFile when set, to log.output when that is a file, and nowhere otherwise.
func (a *app) browseLogger(logFile string) (zerolog.Logger, io.Closer, error) {
	cfg := a.cfg.Log
	if logFile != "" {
		cfg.Output = logFile
	} else if logger.IsStream(cfg.Output) {
		return zerolog.Nop(), io.NopCloser(nil), nil
	}
	return logger.New(cfg)
}

// browsePanel wires the controller behind the terminal UI
func (a *app) browsePanel(log zerolog.Logger, loop scheduler.Loop, surface *ui.Surface) (*panel.Controller, error) {
	client, err := a.clientWith(log)
	if err != nil {
		return nil, err
	}
	return panel.New(panel.Config{
		Service:   client,
		Display:   surface,
		Loop:      loop,
		Viewports: surface.Viewports(a.cfg.PanZoom()),
		Backoff:   a.cfg.Backoff(),
		Logger:    &log,
	})
}
