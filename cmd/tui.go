package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/tdx/internal/shared"
	"github.com/desertthunder/tdx/internal/ui"
	"github.com/urfave/cli/v3"
)

const tuiLogPath = "./tmp/tdx-tui.log"

// TUI launches the interactive playlist browser.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireTidal(); err != nil {
		return err
	}

	opts, err := r.exportOpts(cmd)
	if err != nil {
		return err
	}

	// Logs go to a file so they do not interfere with rendering
	fileLogger, logFile, err := shared.NewFileLogger(tuiLogPath)
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	defer logFile.Close()
	r.SetLogger(fileLogger)

	model := ui.NewModel(ctx, r.engine, opts)
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}
