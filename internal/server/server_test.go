package server

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/Nishad-30/vibelist-ai/internal/curator"
	"github.com/Nishad-30/vibelist-ai/internal/models"
	"github.com/Nishad-30/vibelist-ai/internal/repositories"
	"github.com/Nishad-30/vibelist-ai/internal/shared"
	"github.com/Nishad-30/vibelist-ai/internal/tasks"
	mocks "github.com/Nishad-30/vibelist-ai/internal/testing"
)

// calmCatalog matches every suggestion the rule-based curator makes for a
// calm vibe, so curation succeeds on the first round.
func calmCatalog() *mocks.MockService {
	svc := &mocks.MockService{Catalog: map[string]models.Track{}, Similar: map[string][]models.Track{}}

	c := curator.NewWithBundle(nil, nil)
	profile := c.InterpretVibe("calm evening")
	for i, s := range c.Suggest(profile, nil, 20) {
		track := mocks.MockTrack("t"+string(rune('a'+i)), s.Song, s.Artist)
		svc.Catalog[mocks.CatalogKey(s.Artist, s.Song)] = track
	}
	return svc
}

// testServer builds a Server over a mock catalog with a fresh in-memory
// history store. Spotify is left unconfigured.
func testServer(t *testing.T) *Server {
	t.Helper()

	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err := shared.RunMigrations(db); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	c := curator.NewWithBundle(nil, nil)
	engine := tasks.NewVibeEngine(tasks.EngineOpts{
		Curator:   c,
		Service:   calmCatalog(),
		Logger:    shared.NewLogger(io.Discard),
		RateLimit: 10000,
	})

	srv, err := NewServer(ServerOpts{
		Config:  shared.DefaultConfig(),
		Engine:  engine,
		Curator: c,
		History: repositories.NewHistoryStore(db),
		Logger:  shared.NewLogger(io.Discard),
	})
	if err != nil {
		t.Fatalf("failed to create server: %v", err)
	}
	return srv
}

func TestIndex(t *testing.T) {
	srv := testServer(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	srv.Routes().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	body := rec.Body.String()
	mocks.AssertContains(t, body, "Curate")
	for _, example := range exampleVibes {
		mocks.AssertContains(t, body, example)
	}
}

func TestCreatePlaylist(t *testing.T) {
	t.Run("Renders Result And Sets Session", func(t *testing.T) {
		srv := testServer(t)
		handler := srv.Routes()

		form := url.Values{"vibe": {"calm evening"}, "size": {"20"}}
		req := httptest.NewRequest(http.MethodPost, "/playlists", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		mocks.AssertContains(t, rec.Body.String(), "Calm Evening Mix")

		cookies := rec.Result().Cookies()
		if len(cookies) == 0 {
			t.Fatal("expected a session cookie after curation")
		}

		// the recorded playlist shows up in the same visitor's history
		histReq := httptest.NewRequest(http.MethodGet, "/history", nil)
		for _, c := range cookies {
			histReq.AddCookie(c)
		}
		histRec := httptest.NewRecorder()
		handler.ServeHTTP(histRec, histReq)

		if histRec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", histRec.Code)
		}
		mocks.AssertContains(t, histRec.Body.String(), "Calm Evening Mix")
	})

	t.Run("Empty Vibe Shows Error", func(t *testing.T) {
		srv := testServer(t)

		form := url.Values{"vibe": {"   "}}
		req := httptest.NewRequest(http.MethodPost, "/playlists", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		rec := httptest.NewRecorder()
		srv.Routes().ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		mocks.AssertContains(t, rec.Body.String(), "Curation failed")
	})

	t.Run("History Without Session Is Empty", func(t *testing.T) {
		srv := testServer(t)

		req := httptest.NewRequest(http.MethodGet, "/history", nil)
		rec := httptest.NewRecorder()
		srv.Routes().ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if strings.Contains(rec.Body.String(), "Calm Evening Mix") {
			t.Error("expected no playlists for a fresh session")
		}
	})
}

func TestHealthz(t *testing.T) {
	srv := testServer(t)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	srv.Routes().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var payload map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&payload); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if payload["status"] != "ok" {
		t.Errorf("expected status ok, got %q", payload["status"])
	}
}

func TestAPIInterpret(t *testing.T) {
	t.Run("Returns Profile", func(t *testing.T) {
		srv := testServer(t)

		req := httptest.NewRequest(http.MethodPost, "/api/interpret", strings.NewReader(`{"vibe":"calm evening"}`))
		rec := httptest.NewRecorder()
		srv.Routes().ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}

		var profile models.VibeProfile
		if err := json.NewDecoder(rec.Body).Decode(&profile); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if len(profile.Genres) == 0 {
			t.Error("expected at least one genre")
		}
		if profile.Tempo == "" {
			t.Error("expected a tempo label")
		}
	})

	t.Run("Rejects Empty Vibe", func(t *testing.T) {
		srv := testServer(t)

		req := httptest.NewRequest(http.MethodPost, "/api/interpret", strings.NewReader(`{"vibe":""}`))
		rec := httptest.NewRecorder()
		srv.Routes().ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("Rejects Invalid JSON", func(t *testing.T) {
		srv := testServer(t)

		req := httptest.NewRequest(http.MethodPost, "/api/interpret", strings.NewReader("{"))
		rec := httptest.NewRecorder()
		srv.Routes().ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})
}

func TestAPICurate(t *testing.T) {
	srv := testServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/playlists", strings.NewReader(`{"vibe":"calm evening","size":20}`))
	rec := httptest.NewRecorder()
	srv.Routes().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var result tasks.CurateRunResult
	if err := json.NewDecoder(rec.Body).Decode(&result); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if result.Playlist == nil {
		t.Fatal("expected a playlist in the response")
	}
	if result.Playlist.Name != "Calm Evening Mix" {
		t.Errorf("expected playlist named Calm Evening Mix, got %q", result.Playlist.Name)
	}
	if len(result.Playlist.Tracks) == 0 {
		t.Error("expected tracks in the assembled playlist")
	}
}

func TestAuthRoutes(t *testing.T) {
	t.Run("Login Without Spotify", func(t *testing.T) {
		srv := testServer(t)

		req := httptest.NewRequest(http.MethodGet, "/auth/login", nil)
		rec := httptest.NewRecorder()
		srv.Routes().ServeHTTP(rec, req)

		if rec.Code != http.StatusServiceUnavailable {
			t.Fatalf("expected 503, got %d", rec.Code)
		}
	})

	t.Run("Callback Without Spotify", func(t *testing.T) {
		srv := testServer(t)

		req := httptest.NewRequest(http.MethodGet, "/callback?code=abc&state=xyz", nil)
		rec := httptest.NewRecorder()
		srv.Routes().ServeHTTP(rec, req)

		if rec.Code != http.StatusServiceUnavailable {
			t.Fatalf("expected 503, got %d", rec.Code)
		}
	})
}
