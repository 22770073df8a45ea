package main

import (
	"context"
	"errors"
	"os"

	"github.com/Nishad-30/vibelist-ai/internal/services"
	"github.com/Nishad-30/vibelist-ai/internal/shared"
	"github.com/urfave/cli/v3"
)

func main() {
	logger := shared.NewLogger(nil)

	configPath := "config.toml"
	config := shared.DefaultConfig()
	if _, err := os.Stat(configPath); err == nil {
		if loadedConfig, err := shared.LoadConfig(configPath); err == nil {
			config = loadedConfig
		}
	} else {
		configPath = ""
	}

	var spotifyService *services.SpotifyService
	if config.Credentials.Spotify.Configured() {
		if svc, err := services.NewSpotifyService(config.Credentials.Spotify, logger); err == nil {
			spotifyService = svc
		} else {
			logger.Warn("Spotify unavailable, running in suggestion-only mode", "err", err)
		}
	}

	runner := NewRunner(RunnerOpts{
		Config:     config,
		ConfigPath: configPath,
		Spotify:    spotifyService,
		Logger:     logger,
	})

	app := &cli.Command{
		Name:     "vibelist",
		Usage:    "Generate Spotify playlists from free-text vibes",
		Version:  "0.3.0",
		Commands: runner.register(),
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		err_ := errors.Unwrap(err)
		if errors.Is(err_, shared.ErrNotImplemented) {
			logger.Warn("not implemented")
			os.Exit(0)
		} else {
			logger.Fatalf("application error: %v", err)
		}
	}
}
