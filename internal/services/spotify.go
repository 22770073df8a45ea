// Spotify API implementation of [Service]
//
// Spotify API response types based on https://developer.spotify.com/documentation/web-api/reference/
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/Nishad-30/vibelist-ai/internal/models"
	"github.com/Nishad-30/vibelist-ai/internal/shared"
	"github.com/charmbracelet/log"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

const (
	spotifyAuthURL  = "https://accounts.spotify.com/authorize"
	spotifyTokenURL = "https://accounts.spotify.com/api/token"
	spotifyBaseURL  = "https://api.spotify.com/v1"
	spotifyOpenURL  = "https://open.spotify.com"

	playlistBatchSize = 100
)

type externalURLs struct {
	Spotify string `json:"spotify"`
}

// SpotifyArtist represents a Spotify artist.
type SpotifyArtist struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	URI  string `json:"uri"`
}

// SpotifyAlbum represents a Spotify album.
type SpotifyAlbum struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	ReleaseDate string `json:"release_date"`
	URI         string `json:"uri"`
}

// SpotifyTrack represents a Spotify track.
type SpotifyTrack struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Artists      []SpotifyArtist `json:"artists"`
	Album        SpotifyAlbum    `json:"album"`
	DurationMS   int             `json:"duration_ms"`
	Popularity   int             `json:"popularity"`
	PreviewURL   string          `json:"preview_url"`
	URI          string          `json:"uri"`
	ExternalURLs externalURLs    `json:"external_urls"`
}

type trackPage struct {
	Items []SpotifyTrack `json:"items"`
	Total int            `json:"total"`
}

type searchResponse struct {
	Tracks trackPage `json:"tracks"`
}

// SpotifyUser represents a Spotify user profile.
type SpotifyUser struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
}

// SpotifyPlaylist represents a Spotify playlist.
type SpotifyPlaylist struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	Description  string       `json:"description"`
	Public       bool         `json:"public"`
	URI          string       `json:"uri"`
	ExternalURLs externalURLs `json:"external_urls"`
}

// SpotifyService implements the Service interface for Spotify API interactions.
// Catalog access (search, audio features) runs on a client-credentials token;
// playlist creation additionally requires a user token obtained via the
// authorization-code flow.
type SpotifyService struct {
	userConfig *oauth2.Config
	appTokens  oauth2.TokenSource
	userToken  *oauth2.Token
	httpClient *http.Client
	baseURL    string
	logger     *log.Logger
}

// NewSpotifyService creates a Spotify service from the configured credentials.
func NewSpotifyService(cfg shared.SpotifyConfig, logger *log.Logger) (*SpotifyService, error) {
	if cfg.ClientID == "" || cfg.ClientSecret == "" {
		return nil, fmt.Errorf("%w: spotify client_id and client_secret are required", shared.ErrMissingCredentials)
	}
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	redirectURI := cfg.RedirectURI
	if redirectURI == "" {
		redirectURI = "http://localhost:8501/callback"
	}

	appConfig := &clientcredentials.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		TokenURL:     spotifyTokenURL,
	}

	userConfig := &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		RedirectURL:  redirectURI,
		Scopes: []string{
			"playlist-modify-public",
			"playlist-modify-private",
		},
		Endpoint: oauth2.Endpoint{
			AuthURL:  spotifyAuthURL,
			TokenURL: spotifyTokenURL,
		},
	}

	s := &SpotifyService{
		userConfig: userConfig,
		appTokens:  appConfig.TokenSource(context.Background()),
		httpClient: http.DefaultClient,
		baseURL:    spotifyBaseURL,
		logger:     logger,
	}

	if cfg.AccessToken != "" {
		s.userToken = &oauth2.Token{
			AccessToken:  cfg.AccessToken,
			RefreshToken: cfg.RefreshToken,
			Expiry:       cfg.TokenExpiry,
		}
	}

	return s, nil
}

// Authenticate verifies credentials with Spotify. An "access_token" or
// "auth_code" entry establishes user-level access; an empty map fetches a
// client-credentials token for catalog access.
func (s *SpotifyService) Authenticate(ctx context.Context, credentials map[string]string) error {
	if accessToken, ok := credentials["access_token"]; ok && accessToken != "" {
		s.userToken = &oauth2.Token{AccessToken: accessToken}
		return nil
	}

	if authCode, ok := credentials["auth_code"]; ok && authCode != "" {
		token, err := s.userConfig.Exchange(ctx, authCode)
		if err != nil {
			return fmt.Errorf("%w: failed to exchange auth code: %v", shared.ErrAuthFailed, err)
		}
		s.userToken = token
		return nil
	}

	if _, err := s.appTokens.Token(); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAuthFailed, err)
	}
	return nil
}

func (s *SpotifyService) Name() string {
	return "Spotify"
}

// GetAuthURL returns the OAuth2 authorization URL for user login.
func (s *SpotifyService) GetAuthURL(state string) string {
	return s.userConfig.AuthCodeURL(state, oauth2.AccessTypeOffline)
}

// UserToken returns the current user-level token, nil when only catalog
// access is available.
func (s *SpotifyService) UserToken() *oauth2.Token {
	return s.userToken
}

// UserAuthenticated reports whether playlist creation is possible.
func (s *SpotifyService) UserAuthenticated() bool {
	return s.userToken != nil && s.userToken.AccessToken != ""
}

// doRequest performs an authenticated HTTP request to the Spotify API.
// User token is preferred when present; catalog requests fall back to the
// client-credentials token.
func (s *SpotifyService) doRequest(ctx context.Context, method, endpoint string, body, result any) error {
	accessToken, err := s.accessToken()
	if err != nil {
		return err
	}

	var reqBody *bytes.Buffer
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reqBody = bytes.NewBuffer(data)
	} else {
		reqBody = &bytes.Buffer{}
	}

	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+endpoint, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrServiceUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return fmt.Errorf("%w: spotify rejected the token", shared.ErrNotAuthenticated)
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return fmt.Errorf("%w: spotify API status %d", shared.ErrAPIRequest, resp.StatusCode)
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}

func (s *SpotifyService) accessToken() (string, error) {
	if s.UserAuthenticated() {
		return s.userToken.AccessToken, nil
	}
	token, err := s.appTokens.Token()
	if err != nil {
		return "", fmt.Errorf("%w: %v", shared.ErrNotAuthenticated, err)
	}
	return token.AccessToken, nil
}

// SearchTrack searches for an exact artist/song match, single result.
func (s *SpotifyService) SearchTrack(ctx context.Context, artist, song string) (*models.Track, error) {
	query := fmt.Sprintf("artist:%s track:%s", artist, song)
	endpoint := fmt.Sprintf("/search?q=%s&type=track&limit=1", url.QueryEscape(query))

	var response searchResponse
	if err := s.doRequest(ctx, http.MethodGet, endpoint, nil, &response); err != nil {
		return nil, err
	}

	if len(response.Tracks.Items) == 0 {
		return nil, fmt.Errorf("%w: %s - %s", shared.ErrTrackNotFound, artist, song)
	}

	track := toTrack(response.Tracks.Items[0])
	return &track, nil
}

// SearchSimilar finds tracks near an artist, falling back to a genre search
// when the artist alone yields nothing.
func (s *SpotifyService) SearchSimilar(ctx context.Context, artist, genre string, limit int) ([]models.Track, error) {
	if limit <= 0 {
		limit = 3
	}
	if limit > 50 {
		limit = 50
	}

	tracks, err := s.searchTracks(ctx, artist, limit)
	if err != nil {
		return nil, err
	}

	if len(tracks) == 0 && genre != "" {
		tracks, err = s.searchTracks(ctx, fmt.Sprintf("genre:%q", genre), limit)
		if err != nil {
			return nil, err
		}
	}

	if len(tracks) == 0 {
		return nil, fmt.Errorf("%w: no tracks near %s (%s)", shared.ErrTrackNotFound, artist, genre)
	}

	return tracks, nil
}

func (s *SpotifyService) searchTracks(ctx context.Context, query string, limit int) ([]models.Track, error) {
	endpoint := fmt.Sprintf("/search?q=%s&type=track&limit=%d", url.QueryEscape(query), limit)

	var response searchResponse
	if err := s.doRequest(ctx, http.MethodGet, endpoint, nil, &response); err != nil {
		return nil, err
	}

	tracks := make([]models.Track, 0, len(response.Tracks.Items))
	for _, item := range response.Tracks.Items {
		tracks = append(tracks, toTrack(item))
	}
	return tracks, nil
}

// AudioFeatures retrieves audio analysis for up to 100 tracks.
func (s *SpotifyService) AudioFeatures(ctx context.Context, trackIDs []string) ([]AudioFeatures, error) {
	if len(trackIDs) == 0 {
		return nil, fmt.Errorf("no track IDs provided")
	}
	if len(trackIDs) > 100 {
		trackIDs = trackIDs[:100]
	}

	endpoint := fmt.Sprintf("/audio-features?ids=%s", url.QueryEscape(strings.Join(trackIDs, ",")))

	var response struct {
		Features []AudioFeatures `json:"audio_features"`
	}
	if err := s.doRequest(ctx, http.MethodGet, endpoint, nil, &response); err != nil {
		return nil, err
	}

	return response.Features, nil
}

// CreatePlaylist creates a playlist for the authenticated user and adds the
// given track URIs in batches.
func (s *SpotifyService) CreatePlaylist(ctx context.Context, name, description string, trackURIs []string) (*CreatedPlaylist, error) {
	if !s.UserAuthenticated() {
		return nil, fmt.Errorf("%w: playlist creation requires user login", shared.ErrNotAuthenticated)
	}

	user, err := s.userProfile(ctx)
	if err != nil {
		return nil, err
	}

	var playlist SpotifyPlaylist
	body := map[string]any{
		"name":        name,
		"description": description,
		"public":      false,
	}
	endpoint := fmt.Sprintf("/users/%s/playlists", url.PathEscape(user.ID))
	if err := s.doRequest(ctx, http.MethodPost, endpoint, body, &playlist); err != nil {
		return nil, err
	}

	for start := 0; start < len(trackURIs); start += playlistBatchSize {
		end := min(start+playlistBatchSize, len(trackURIs))
		addBody := map[string]any{"uris": trackURIs[start:end]}
		addEndpoint := fmt.Sprintf("/playlists/%s/tracks", url.PathEscape(playlist.ID))
		if err := s.doRequest(ctx, http.MethodPost, addEndpoint, addBody, nil); err != nil {
			return nil, fmt.Errorf("failed to add tracks: %w", err)
		}
	}

	s.logger.Info("created playlist", "id", playlist.ID, "name", name, "tracks", len(trackURIs))

	return &CreatedPlaylist{
		ID:          playlist.ID,
		Name:        playlist.Name,
		ExternalURL: playlist.ExternalURLs.Spotify,
		TrackCount:  len(trackURIs),
	}, nil
}

func (s *SpotifyService) userProfile(ctx context.Context) (*SpotifyUser, error) {
	var user SpotifyUser
	if err := s.doRequest(ctx, http.MethodGet, "/me", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// ShareURL builds a Spotify search link for a playlist that was not published
// to the user's account.
func ShareURL(query string) string {
	return spotifyOpenURL + "/search/" + url.PathEscape(query)
}

func toTrack(t SpotifyTrack) models.Track {
	artist := ""
	if len(t.Artists) > 0 {
		artist = t.Artists[0].Name
	}
	return models.Track{
		SpotifyID:   t.ID,
		Name:        t.Name,
		Artist:      artist,
		URI:         t.URI,
		ExternalURL: t.ExternalURLs.Spotify,
		PreviewURL:  t.PreviewURL,
		Popularity:  t.Popularity,
		Source:      "spotify",
	}
}
