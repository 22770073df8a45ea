package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/Nishad-30/vibelist-ai/internal/formatter"
	"github.com/Nishad-30/vibelist-ai/internal/shared"
	"github.com/Nishad-30/vibelist-ai/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Curate generates a playlist from the vibe argument.
//
// Without Spotify credentials the command falls back to suggestion-only
// mode: interpretation plus raw suggestions, no catalog validation.
func (r *Runner) Curate(ctx context.Context, cmd *cli.Command) error {
	vibe := strings.TrimSpace(cmd.StringArg("vibe"))
	if vibe == "" {
		return fmt.Errorf("%w: vibe description is required", shared.ErrMissingArgument)
	}

	size := cmd.Int("size")
	if size <= 0 {
		size = r.config.Curator.PlaylistSize
	}

	if r.spotify == nil {
		return r.curateSuggestionsOnly(vibe, size, cmd)
	}

	db, history, err := r.openHistory()
	if err != nil {
		return err
	}
	defer db.Close()

	var cache tasks.PlaylistCacher
	if !cmd.Bool("no-save") {
		cache = history
	}

	engine, err := r.newEngine(cache)
	if err != nil {
		return err
	}

	r.writePlain("Curating playlist for: %q\n\n", vibe)

	progressCh := make(chan tasks.ProgressUpdate, 50)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progressCh {
			switch update.Phase {
			case tasks.Interpret:
				r.writePlain("🎯 %s\n", update.Message)
			case tasks.Suggest, tasks.Refine:
				r.writePlain("\n💡 %s\n", update.Message)
			case tasks.Validate:
				if update.Step == 0 {
					r.writePlain("\n🔍 %s\n", update.Message)
				} else {
					r.writePlain("   %s\n", update.Message)
				}
			case tasks.Assemble:
				r.writePlain("\n📝 %s\n", update.Message)
			}
		}
	}()

	result, err := engine.Curate(ctx, vibe, size, progressCh)
	close(progressCh)
	<-done

	if err != nil {
		return err
	}

	playlist := result.Playlist

	if cmd.Bool("publish") {
		created, err := engine.Publish(ctx, playlist, nil)
		if err != nil {
			r.logger.Warn("publishing failed", "err", err)
			r.writePlainln("⚠ Publishing failed: %v", err)
		} else {
			r.writePlainln("✓ Created %q on Spotify (%d tracks)", created.Name, created.TrackCount)
		}
	}

	if cmd.Bool("json") {
		return r.writeJSON(result, cmd.Bool("pretty"))
	}

	r.writePlain("\n")
	r.writePlainHeader("Playlist Ready")
	r.writePlain("Name: %s\n", playlist.Name)
	r.writePlain("Genres: %s\n", strings.Join(playlist.Profile.Genres, ", "))
	r.writePlain("Energy %.2f · Valence %.2f · %s tempo\n", playlist.Profile.Energy, playlist.Profile.Valence, playlist.Profile.Tempo)
	r.writePlain("Rounds: %d · Matched %d · Substituted %d · Missed %d\n\n",
		result.Attempts, result.MatchedCount, result.SubCount, result.MissedCount)

	for i, track := range playlist.Tracks {
		r.writePlain("%d. %s - %s\n", i+1, track.Artist, track.Name)
	}

	if playlist.ShareURL != "" {
		r.writePlain("\nListen: %s\n", playlist.ShareURL)
	}

	if outputFile := cmd.String("output"); outputFile != "" {
		if err := formatter.WriteExport(playlist, outputFile, ""); err != nil {
			return fmt.Errorf("failed to export playlist: %w", err)
		}
		r.writePlain("✓ Exported to %s\n", outputFile)
	}

	return nil
}

// curateSuggestionsOnly prints the interpretation and raw suggestions when no
// catalog service is available.
func (r *Runner) curateSuggestionsOnly(vibe string, size int, cmd *cli.Command) error {
	r.logger.Info("no Spotify credentials, skipping catalog validation")

	profile := r.curator.InterpretVibe(vibe)
	suggestions := r.curator.Suggest(profile, nil, size)

	if cmd.Bool("json") {
		return r.writeJSON(map[string]any{
			"vibe":           vibe,
			"interpretation": profile,
			"suggestions":    suggestions,
		}, cmd.Bool("pretty"))
	}

	r.writePlainHeader("Suggestions (no Spotify credentials)")
	r.writePlain("Genres: %s\n", strings.Join(profile.Genres, ", "))
	r.writePlain("Energy %.2f · Valence %.2f · %s tempo\n\n", profile.Energy, profile.Valence, profile.Tempo)

	for i, s := range suggestions {
		r.writePlain("%d. %s - %s (%s)\n", i+1, s.Artist, s.Song, s.Genre)
	}

	r.writePlain("\nConfigure credentials.spotify in config.toml to validate against the catalog.\n")
	return nil
}
