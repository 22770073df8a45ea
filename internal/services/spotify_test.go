package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Nishad-30/vibelist-ai/internal/shared"
	"golang.org/x/oauth2"
)

func testService(t *testing.T, handler http.Handler) (*SpotifyService, *httptest.Server) {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	srv, err := NewSpotifyService(shared.SpotifyConfig{
		ClientID:     "test_client_id",
		ClientSecret: "test_client_secret",
	}, nil)
	if err != nil {
		t.Fatalf("failed to create service: %v", err)
	}

	srv.baseURL = server.URL
	srv.appTokens = oauth2.StaticTokenSource(&oauth2.Token{AccessToken: "test_app_token"})
	return srv, server
}

func searchHandler(results map[string][]SpotifyTrack) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query().Get("q")
		response := searchResponse{}
		for key, tracks := range results {
			if strings.Contains(query, key) {
				response.Tracks.Items = tracks
				break
			}
		}
		json.NewEncoder(w).Encode(response)
	})
}

func TestSpotifyService(t *testing.T) {
	t.Run("NewSpotifyService", func(t *testing.T) {
		t.Run("With Valid Credentials", func(t *testing.T) {
			srv, err := NewSpotifyService(shared.SpotifyConfig{
				ClientID:     "test_client_id",
				ClientSecret: "test_client_secret",
			}, nil)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if srv.Name() != "Spotify" {
				t.Errorf("expected service name 'Spotify', got %s", srv.Name())
			}
			if srv.UserAuthenticated() {
				t.Error("expected no user token without configured tokens")
			}
		})

		t.Run("Missing Credentials", func(t *testing.T) {
			_, err := NewSpotifyService(shared.SpotifyConfig{ClientID: "only_id"}, nil)
			if !errors.Is(err, shared.ErrMissingCredentials) {
				t.Errorf("expected ErrMissingCredentials, got %v", err)
			}
		})

		t.Run("Configured Access Token", func(t *testing.T) {
			srv, err := NewSpotifyService(shared.SpotifyConfig{
				ClientID:     "test_client_id",
				ClientSecret: "test_client_secret",
				AccessToken:  "stored_token",
			}, nil)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if !srv.UserAuthenticated() {
				t.Error("expected user token from configured access token")
			}
		})
	})

	t.Run("Get AuthURL", func(t *testing.T) {
		srv, err := NewSpotifyService(shared.SpotifyConfig{
			ClientID:     "test_client_id",
			ClientSecret: "test_client_secret",
		}, nil)
		if err != nil {
			t.Fatalf("failed to create service: %v", err)
		}

		authURL := srv.GetAuthURL("test_state")
		if !strings.Contains(authURL, "accounts.spotify.com") {
			t.Error("auth URL should contain Spotify domain")
		}
		if !strings.Contains(authURL, "test_client_id") {
			t.Error("auth URL should contain client_id")
		}
		if !strings.Contains(authURL, "test_state") {
			t.Error("auth URL should contain state")
		}
		if !strings.Contains(authURL, "playlist-modify") {
			t.Error("auth URL should request playlist scopes")
		}
	})

	t.Run("Authenticate With Access Token", func(t *testing.T) {
		srv, _ := testService(t, http.NotFoundHandler())

		err := srv.Authenticate(context.Background(), map[string]string{"access_token": "user_token"})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !srv.UserAuthenticated() {
			t.Error("expected user authentication after access_token")
		}
	})
}

func TestSearchTrack(t *testing.T) {
	match := SpotifyTrack{
		ID:         "track123",
		Name:       "So What",
		Artists:    []SpotifyArtist{{Name: "Miles Davis"}},
		URI:        "spotify:track:track123",
		Popularity: 70,
	}
	match.ExternalURLs.Spotify = "https://open.spotify.com/track/track123"

	srv, _ := testService(t, searchHandler(map[string][]SpotifyTrack{
		"Miles Davis": {match},
	}))

	t.Run("Exact Match", func(t *testing.T) {
		track, err := srv.SearchTrack(context.Background(), "Miles Davis", "So What")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if track.SpotifyID != "track123" || track.Artist != "Miles Davis" {
			t.Errorf("unexpected track %+v", track)
		}
		if track.Source != "spotify" {
			t.Errorf("expected source 'spotify', got %q", track.Source)
		}
	})

	t.Run("No Match", func(t *testing.T) {
		_, err := srv.SearchTrack(context.Background(), "Unknown", "Nothing")
		if !errors.Is(err, shared.ErrTrackNotFound) {
			t.Fatalf("expected ErrTrackNotFound, got %v", err)
		}
	})
}

func TestSearchSimilar(t *testing.T) {
	artistTracks := []SpotifyTrack{
		{ID: "a1", Name: "Blue in Green", Artists: []SpotifyArtist{{Name: "Miles Davis"}}},
		{ID: "a2", Name: "Freddie Freeloader", Artists: []SpotifyArtist{{Name: "Miles Davis"}}},
	}
	genreTracks := []SpotifyTrack{
		{ID: "g1", Name: "Take Five", Artists: []SpotifyArtist{{Name: "Dave Brubeck"}}},
	}

	srv, _ := testService(t, searchHandler(map[string][]SpotifyTrack{
		"Miles Davis": artistTracks,
		"genre":       genreTracks,
	}))

	t.Run("Artist Results", func(t *testing.T) {
		tracks, err := srv.SearchSimilar(context.Background(), "Miles Davis", "jazz", 3)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(tracks) != 2 {
			t.Fatalf("expected 2 tracks, got %d", len(tracks))
		}
	})

	t.Run("Genre Fallback", func(t *testing.T) {
		tracks, err := srv.SearchSimilar(context.Background(), "Nobody", "jazz", 3)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(tracks) != 1 || tracks[0].SpotifyID != "g1" {
			t.Fatalf("expected genre fallback result, got %+v", tracks)
		}
	})

	t.Run("Nothing Found", func(t *testing.T) {
		_, err := srv.SearchSimilar(context.Background(), "Nobody", "", 3)
		if !errors.Is(err, shared.ErrTrackNotFound) {
			t.Fatalf("expected ErrTrackNotFound, got %v", err)
		}
	})
}

func TestCreatePlaylist(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /me", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(SpotifyUser{ID: "user1", DisplayName: "Test User"})
	})
	mux.HandleFunc("POST /users/user1/playlists", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		json.NewDecoder(r.Body).Decode(&body)

		playlist := SpotifyPlaylist{ID: "pl1", Name: body["name"].(string)}
		playlist.ExternalURLs.Spotify = "https://open.spotify.com/playlist/pl1"
		json.NewEncoder(w).Encode(playlist)
	})

	var added []string
	mux.HandleFunc("POST /playlists/pl1/tracks", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			URIs []string `json:"uris"`
		}
		json.NewDecoder(r.Body).Decode(&body)
		added = append(added, body.URIs...)
		w.WriteHeader(http.StatusCreated)
	})

	srv, _ := testService(t, mux)

	t.Run("Requires User Login", func(t *testing.T) {
		_, err := srv.CreatePlaylist(context.Background(), "Vibes", "", []string{"spotify:track:1"})
		if !errors.Is(err, shared.ErrNotAuthenticated) {
			t.Fatalf("expected ErrNotAuthenticated, got %v", err)
		}
	})

	t.Run("Creates And Fills", func(t *testing.T) {
		if err := srv.Authenticate(context.Background(), map[string]string{"access_token": "user_token"}); err != nil {
			t.Fatalf("authenticate: %v", err)
		}

		uris := []string{"spotify:track:1", "spotify:track:2"}
		created, err := srv.CreatePlaylist(context.Background(), "Vibes", "curated", uris)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if created.ID != "pl1" || created.TrackCount != 2 {
			t.Errorf("unexpected playlist %+v", created)
		}
		if len(added) != 2 {
			t.Errorf("expected 2 URIs added, got %d", len(added))
		}
	})
}

func TestShareURL(t *testing.T) {
	u := ShareURL("late night jazz")
	if !strings.HasPrefix(u, "https://open.spotify.com/search/") {
		t.Errorf("unexpected share URL %q", u)
	}
	if strings.Contains(u, " ") {
		t.Errorf("share URL should be escaped, got %q", u)
	}
}
