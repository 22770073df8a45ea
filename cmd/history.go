package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/Nishad-30/vibelist-ai/internal/formatter"
	"github.com/Nishad-30/vibelist-ai/internal/shared"
	"github.com/urfave/cli/v3"
)

// HistoryList lists recently generated playlists.
func (r *Runner) HistoryList(ctx context.Context, cmd *cli.Command) error {
	db, history, err := r.openHistory()
	if err != nil {
		return err
	}
	defer db.Close()

	playlists, err := history.Recent(cmd.Int("limit"))
	if err != nil {
		return fmt.Errorf("failed to load history: %w", err)
	}

	if cmd.Bool("json") {
		return r.writeJSON(playlists, cmd.Bool("pretty"))
	}

	if len(playlists) == 0 {
		r.writePlain("No playlists yet. Run 'vibelist curate \"your vibe\"' first.\n")
		return nil
	}

	r.writePlain("Found %d playlists:\n\n", len(playlists))
	for i, p := range playlists {
		r.writePlain("%d. %s\n", i+1, p.Name)
		r.writePlain("   ID: %s\n", p.ID)
		r.writePlain("   Vibe: %s\n", p.Vibe)
		r.writePlain("   Tracks: %d", len(p.Tracks))
		if p.Validated {
			r.writePlain(" (validated)")
		}
		r.writePlain("\n")
		if !p.CreatedAt.IsZero() {
			r.writePlain("   Created: %s\n", p.CreatedAt.Format("2006-01-02 15:04"))
		}
		r.writePlain("\n")
	}

	return nil
}

// HistoryShow prints one playlist with its tracks.
func (r *Runner) HistoryShow(ctx context.Context, cmd *cli.Command) error {
	id := strings.TrimSpace(cmd.StringArg("id"))
	if id == "" {
		return fmt.Errorf("%w: playlist ID is required", shared.ErrMissingArgument)
	}

	db, history, err := r.openHistory()
	if err != nil {
		return err
	}
	defer db.Close()

	playlist, err := history.GetPlaylist(id)
	if err != nil {
		return fmt.Errorf("failed to load playlist: %w", err)
	}

	if cmd.Bool("json") {
		return r.writeJSON(playlist, cmd.Bool("pretty"))
	}

	r.writePlainHeader(playlist.Name)
	r.writePlain("Vibe: %s\n", playlist.Vibe)
	r.writePlain("Genres: %s\n", strings.Join(playlist.Profile.Genres, ", "))
	r.writePlain("Energy %.2f · Valence %.2f · %s tempo\n\n",
		playlist.Profile.Energy, playlist.Profile.Valence, playlist.Profile.Tempo)

	for i, track := range playlist.Tracks {
		r.writePlain("%d. %s - %s\n", i+1, track.Artist, track.Name)
	}

	if playlist.ShareURL != "" {
		r.writePlain("\nListen: %s\n", playlist.ShareURL)
	}

	return nil
}

// HistoryExport writes a stored playlist to a file.
func (r *Runner) HistoryExport(ctx context.Context, cmd *cli.Command) error {
	id := strings.TrimSpace(cmd.StringArg("id"))
	if id == "" {
		return fmt.Errorf("%w: playlist ID is required", shared.ErrMissingArgument)
	}

	db, history, err := r.openHistory()
	if err != nil {
		return err
	}
	defer db.Close()

	playlist, err := history.GetPlaylist(id)
	if err != nil {
		return fmt.Errorf("failed to load playlist: %w", err)
	}

	outputPath := cmd.String("output")
	if err := formatter.WriteExport(playlist, outputPath, ""); err != nil {
		return fmt.Errorf("failed to export playlist: %w", err)
	}

	r.writePlain("✓ Playlist exported to %s\n", outputPath)
	r.writePlain("  Playlist: %s\n", playlist.Name)
	r.writePlain("  Tracks: %d\n", len(playlist.Tracks))

	return nil
}
