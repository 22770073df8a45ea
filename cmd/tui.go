package main

import (
	"context"
	"fmt"

	"github.com/Nishad-30/vibelist-ai/internal/shared"
	"github.com/Nishad-30/vibelist-ai/internal/ui"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/urfave/cli/v3"
)

// TUI launches the interactive terminal UI for playlist curation.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	if r.spotify == nil {
		return fmt.Errorf("%w: Spotify credentials not configured", shared.ErrServiceUnavailable)
	}

	db, history, err := r.openHistory()
	if err != nil {
		return err
	}
	defer db.Close()

	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger("./tmp/vibelist-tui.log")
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	r.SetLogger(fileLogger)

	engine, err := r.newEngine(history)
	if err != nil {
		return err
	}

	model := ui.NewModel(ctx, engine, r.config.Curator.PlaylistSize, r.spotify.UserAuthenticated())
	p := tea.NewProgram(model)

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}
