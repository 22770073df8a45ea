package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/Nishad-30/vibelist-ai/internal/models"
	"github.com/Nishad-30/vibelist-ai/internal/services"
	"github.com/Nishad-30/vibelist-ai/internal/shared"
	"github.com/Nishad-30/vibelist-ai/internal/tasks"
)

// pageData carries everything the HTML templates render.
type pageData struct {
	Title          string
	Error          string
	Notice         string
	Vibe           string
	Size           int
	Examples       []string
	CanPublish     bool
	SuggestionOnly bool
	Playlist       *models.Playlist
	Attempts       int
	Playlists      []models.Playlist
}

func (s *Server) render(w http.ResponseWriter, page string, data pageData) {
	t, ok := s.templates[page]
	if !ok {
		http.Error(w, "template not found", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := t.ExecuteTemplate(w, "layout", data); err != nil {
		s.logger.Error("template render failed", "page", page, "err", err)
	}
}

func (s *Server) indexData() pageData {
	return pageData{
		Title:          "Curate",
		Size:           s.config.Curator.PlaylistSize,
		Examples:       exampleVibes,
		CanPublish:     s.spotify != nil && s.spotify.UserAuthenticated(),
		SuggestionOnly: s.engine == nil,
	}
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	s.render(w, "index.html", s.indexData())
}

func (s *Server) handleCreatePlaylist(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}

	data := s.indexData()
	data.Vibe = strings.TrimSpace(r.FormValue("vibe"))

	size := s.config.Curator.PlaylistSize
	if v, err := strconv.Atoi(r.FormValue("size")); err == nil && v >= 10 && v <= 50 {
		size = v
	}
	data.Size = size

	if s.engine == nil {
		if data.Vibe == "" {
			data.Error = "Describe a vibe first."
		} else {
			data.Playlist = s.suggestionPlaylist(data.Vibe, size)
			data.Attempts = 1
			data.Notice = "Spotify is not configured; showing unvalidated suggestions."
		}
		s.render(w, "index.html", data)
		return
	}

	result, err := s.engine.Curate(r.Context(), data.Vibe, size, nil)
	if err != nil {
		s.logger.Error("curation failed", "vibe", data.Vibe, "err", err)
		data.Error = "Curation failed: " + err.Error()
		s.render(w, "index.html", data)
		return
	}

	data.Playlist = result.Playlist
	data.Attempts = result.Attempts

	if result.MissedCount > 0 {
		data.Notice = fmt.Sprintf("%d of %d suggestions had no catalog match; the rest were kept.",
			result.MissedCount, result.MissedCount+result.MatchedCount+result.SubCount)
	}

	if r.FormValue("publish") == "1" && data.CanPublish {
		if created, err := s.engine.Publish(r.Context(), result.Playlist, nil); err != nil {
			data.Error = "Playlist assembled, but publishing failed: " + err.Error()
		} else {
			data.Notice = fmt.Sprintf("Created %q on your Spotify account (%d tracks).", created.Name, created.TrackCount)
		}
	}

	s.rememberPlaylist(w, r, *result.Playlist)
	s.render(w, "index.html", data)
}

// suggestionPlaylist builds an unvalidated playlist straight from curator
// suggestions for the engine-less suggestion-only mode.
func (s *Server) suggestionPlaylist(vibe string, size int) *models.Playlist {
	profile := s.curator.InterpretVibe(vibe)
	suggestions := s.curator.Suggest(profile, nil, size)

	tracks := make([]models.Track, 0, len(suggestions))
	for _, sg := range suggestions {
		tracks = append(tracks, models.Track{Name: sg.Song, Artist: sg.Artist, Source: "suggestion"})
	}

	return &models.Playlist{
		Vibe:     vibe,
		Name:     tasks.PlaylistName(vibe),
		Profile:  profile,
		Tracks:   tracks,
		ShareURL: services.ShareURL(vibe),
	}
}

// rememberPlaylist stores the playlist and keeps its ID in the visitor's
// session so /history stays scoped to them.
func (s *Server) rememberPlaylist(w http.ResponseWriter, r *http.Request, playlist models.Playlist) {
	if s.history == nil {
		return
	}

	id, err := s.history.Record(playlist)
	if err != nil {
		s.logger.Warn("failed to record playlist", "err", err)
		return
	}

	session, _ := s.store.Get(r, sessionName)
	ids, _ := session.Values[sessionHistoryKey].([]string)

	ids = append([]string{id}, ids...)
	if len(ids) > sessionHistoryMax {
		ids = ids[:sessionHistoryMax]
	}
	session.Values[sessionHistoryKey] = ids

	if err := session.Save(r, w); err != nil {
		s.logger.Warn("failed to save session", "err", err)
	}
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	data := pageData{Title: "History"}

	if s.history == nil {
		s.render(w, "history.html", data)
		return
	}

	session, _ := s.store.Get(r, sessionName)
	ids, _ := session.Values[sessionHistoryKey].([]string)

	for _, id := range ids {
		playlist, err := s.history.GetPlaylist(id)
		if err != nil {
			continue
		}
		data.Playlists = append(data.Playlists, *playlist)
	}

	s.render(w, "history.html", data)
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"service": "vibelist",
	})
}

// handleAuthLogin redirects the visitor to Spotify's consent page with a
// session-bound state token.
func (s *Server) handleAuthLogin(w http.ResponseWriter, r *http.Request) {
	if s.spotify == nil {
		http.Error(w, "Spotify is not configured", http.StatusServiceUnavailable)
		return
	}

	state := shared.GenerateID()
	session, _ := s.store.Get(r, sessionName)
	session.Values[sessionStateKey] = state
	if err := session.Save(r, w); err != nil {
		http.Error(w, "failed to save session", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, s.spotify.GetAuthURL(state), http.StatusFound)
}

// handleAuthCallback finishes the authorization-code flow for the web UI.
func (s *Server) handleAuthCallback(w http.ResponseWriter, r *http.Request) {
	if s.spotify == nil {
		http.Error(w, "Spotify is not configured", http.StatusServiceUnavailable)
		return
	}

	session, _ := s.store.Get(r, sessionName)
	expected, _ := session.Values[sessionStateKey].(string)
	delete(session.Values, sessionStateKey)
	_ = session.Save(r, w)

	if expected == "" || r.URL.Query().Get("state") != expected {
		http.Error(w, "Invalid state parameter", http.StatusBadRequest)
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		http.Error(w, "Authorization failed", http.StatusBadRequest)
		return
	}

	if err := s.spotify.Authenticate(r.Context(), map[string]string{"auth_code": code}); err != nil {
		s.logger.Error("token exchange failed", "err", err)
		http.Error(w, "Token exchange failed", http.StatusInternalServerError)
		return
	}

	if token := s.spotify.UserToken(); token != nil {
		if err := s.config.Credentials.Spotify.Update(token); err == nil {
			s.logger.Info("stored user token in config")
		}
	}

	http.Redirect(w, r, "/", http.StatusFound)
}

// interpretRequest is the JSON API input for both endpoints.
type interpretRequest struct {
	Vibe string `json:"vibe"`
	Size int    `json:"size,omitempty"`
}

func (s *Server) handleAPIInterpret(w http.ResponseWriter, r *http.Request) {
	var req interpretRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.Vibe) == "" {
		s.writeError(w, http.StatusBadRequest, "vibe is required")
		return
	}

	// Interpretation only: no catalog calls, so skip the engine.
	s.writeJSON(w, http.StatusOK, s.curator.InterpretVibe(req.Vibe))
}

func (s *Server) handleAPICurate(w http.ResponseWriter, r *http.Request) {
	if s.engine == nil {
		s.writeError(w, http.StatusServiceUnavailable, "Spotify is not configured")
		return
	}

	var req interpretRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	result, err := s.engine.Curate(r.Context(), req.Vibe, req.Size, nil)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if s.history != nil {
		if _, err := s.history.Record(*result.Playlist); err != nil {
			s.logger.Warn("failed to record playlist", "err", err)
		}
	}

	s.writeJSON(w, http.StatusOK, result)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("failed to encode response", "err", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}
