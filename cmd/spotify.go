package main

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/Nishad-30/vibelist-ai/internal/server"
	"github.com/Nishad-30/vibelist-ai/internal/services"
	"github.com/Nishad-30/vibelist-ai/internal/shared"
	"github.com/urfave/cli/v3"
	"golang.org/x/oauth2"
)

// SpotifyAuth performs the OAuth2 authorization-code flow for Spotify.
//
// Starts a local HTTP server, opens the browser for user authorization, and
// exchanges the auth code for tokens which are saved back to the config file.
func (r *Runner) SpotifyAuth(ctx context.Context, cmd *cli.Command) error {
	if configPath := cmd.String("config"); configPath != "" {
		if loaded, err := shared.LoadConfig(configPath); err == nil {
			r.config = loaded
			r.configPath = configPath
		}
	}

	if !r.config.Credentials.Spotify.Configured() {
		return fmt.Errorf("%w: Spotify client_id and client_secret must be set in config.toml", shared.ErrInvalidArgument)
	}

	svc := r.spotify
	if svc == nil {
		var err error
		if svc, err = services.NewSpotifyService(r.config.Credentials.Spotify, r.logger); err != nil {
			return fmt.Errorf("failed to create Spotify service: %w", err)
		}
		r.spotify = svc
	}

	token, err := r.doOAuth(ctx, svc)
	if err != nil {
		return err
	}

	if err := r.saveTokens(token); err != nil {
		return err
	}

	r.writePlainln("✓ Authorization successful")
	if r.configPath != "" {
		r.writePlain("✓ Tokens saved to %s\n\n", r.configPath)
	}
	r.writePlain("You can now use: vibelist curate \"your vibe\" --publish\n")

	return nil
}

// doOAuth executes the OAuth2 authorization flow with a local HTTP server.
func (r *Runner) doOAuth(ctx context.Context, svc *services.SpotifyService) (*oauth2.Token, error) {
	state := shared.GenerateID()
	authURL := svc.GetAuthURL(state)

	callback := server.NewCallbackHandler(state, func(code string) (*oauth2.Token, error) {
		if err := svc.Authenticate(ctx, map[string]string{"auth_code": code}); err != nil {
			return nil, err
		}
		return svc.UserToken(), nil
	})

	mux := http.NewServeMux()
	mux.Handle("/callback", callback)

	httpServer := &http.Server{
		Addr:    r.config.Server.Addr(),
		Handler: mux,
	}

	serverErrors := make(chan error, 1)
	go func() {
		r.logger.Info("starting OAuth callback server", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrors <- err
		}
	}()

	time.Sleep(100 * time.Millisecond)

	r.writePlain("→ Opening browser for Spotify authorization...\n")
	if err := shared.OpenBrowser(authURL); err != nil {
		r.logger.Warnf("failed to open browser automatically %v", err)
		r.writePlainln("⚠ Could not open browser automatically.")
		r.writePlain("Please open this URL in your browser:\n%s\n\n", authURL)
	}

	r.writePlain("→ Waiting for authorization (2 minute timeout)...\n")

	timeout := time.NewTimer(2 * time.Minute)
	defer timeout.Stop()

	var result server.AuthResult

	select {
	case result = <-callback.Done():
		// Got result from callback
	case err := <-serverErrors:
		return nil, fmt.Errorf("server error: %w", err)
	case <-timeout.C:
		return nil, fmt.Errorf("authorization timed out after 2 minutes")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		r.logger.Warn("error shutting down server", "error", err)
	}

	if result.Err != nil {
		return nil, fmt.Errorf("authorization failed: %w", result.Err)
	}

	if result.Token == nil {
		return nil, fmt.Errorf("no token received")
	}

	return result.Token, nil
}

// SpotifySearch runs an ad-hoc catalog search.
func (r *Runner) SpotifySearch(ctx context.Context, cmd *cli.Command) error {
	query := strings.TrimSpace(cmd.StringArg("query"))
	if query == "" {
		return fmt.Errorf("%w: search query is required", shared.ErrMissingArgument)
	}

	if r.spotify == nil {
		return fmt.Errorf("%w: Spotify credentials not configured", shared.ErrServiceUnavailable)
	}

	useJSON := cmd.Bool("json")
	pretty := cmd.Bool("pretty")

	if song := cmd.String("song"); song != "" {
		track, err := r.spotify.SearchTrack(ctx, query, song)
		if err != nil {
			return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
		}

		if useJSON {
			return r.writeJSON(track, pretty)
		}

		r.writePlain("✓ %s - %s\n", track.Artist, track.Name)
		if track.ExternalURL != "" {
			r.writePlain("  %s\n", track.ExternalURL)
		}
		return nil
	}

	tracks, err := r.spotify.SearchSimilar(ctx, query, cmd.String("genre"), cmd.Int("limit"))
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}

	if useJSON {
		return r.writeJSON(tracks, pretty)
	}

	r.writePlain("Found %d tracks:\n\n", len(tracks))
	for i, track := range tracks {
		r.writePlain("%d. %s - %s\n", i+1, track.Artist, track.Name)
		if track.Popularity > 0 {
			r.writePlain("   Popularity: %d\n", track.Popularity)
		}
	}

	return nil
}
