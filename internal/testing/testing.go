// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"testing"

	"github.com/Nishad-30/vibelist-ai/internal/models"
	"github.com/Nishad-30/vibelist-ai/internal/services"
	"github.com/Nishad-30/vibelist-ai/internal/shared"
)

// MockService is a configurable test double for [services.Service].
// Catalog holds exact matches keyed "artist|song"; Similar holds fallback
// results keyed by genre. Zero value misses everything.
type MockService struct {
	Catalog      map[string]models.Track
	Similar      map[string][]models.Track
	Created      []services.CreatedPlaylist
	AuthErr      error
	SearchCalls  int
	SimilarCalls int
	FeatureCalls int
}

// CatalogKey builds the exact-match lookup key.
func CatalogKey(artist, song string) string {
	return artist + "|" + song
}

func (m *MockService) Authenticate(ctx context.Context, credentials map[string]string) error {
	return m.AuthErr
}

func (m *MockService) SearchTrack(ctx context.Context, artist, song string) (*models.Track, error) {
	m.SearchCalls++
	if track, ok := m.Catalog[CatalogKey(artist, song)]; ok {
		return &track, nil
	}
	return nil, fmt.Errorf("%w: %s - %s", shared.ErrTrackNotFound, artist, song)
}

func (m *MockService) SearchSimilar(ctx context.Context, artist, genre string, limit int) ([]models.Track, error) {
	m.SimilarCalls++
	tracks, ok := m.Similar[genre]
	if !ok || len(tracks) == 0 {
		return nil, fmt.Errorf("%w: %s (%s)", shared.ErrTrackNotFound, artist, genre)
	}
	if len(tracks) > limit {
		tracks = tracks[:limit]
	}
	return tracks, nil
}

func (m *MockService) AudioFeatures(ctx context.Context, trackIDs []string) ([]services.AudioFeatures, error) {
	m.FeatureCalls++
	features := make([]services.AudioFeatures, 0, len(trackIDs))
	for _, id := range trackIDs {
		features = append(features, services.AudioFeatures{TrackID: id, Energy: 0.5, Valence: 0.5})
	}
	return features, nil
}

func (m *MockService) CreatePlaylist(ctx context.Context, name, description string, trackURIs []string) (*services.CreatedPlaylist, error) {
	created := services.CreatedPlaylist{
		ID:          fmt.Sprintf("mock_pl_%d", len(m.Created)+1),
		Name:        name,
		ExternalURL: "https://open.spotify.com/playlist/mock",
		TrackCount:  len(trackURIs),
	}
	m.Created = append(m.Created, created)
	return &created, nil
}

func (m *MockService) Name() string { return "mock" }

// MockTrack builds a catalog track for fixtures.
func MockTrack(id, name, artist string) models.Track {
	return models.Track{
		SpotifyID:   id,
		Name:        name,
		Artist:      artist,
		URI:         "spotify:track:" + id,
		ExternalURL: "https://open.spotify.com/track/" + id,
		Source:      "spotify",
	}
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

func MustGetwd(t *testing.T) string {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get working directory: %v", err)
	}
	return wd
}

func MustChdir(t *testing.T, dir string) {
	t.Helper()
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Failed to change directory to %s: %v", dir, err)
	}
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func AssertContains(t *testing.T, haystack, needle string) {
	t.Helper()
	if !strings.Contains(haystack, needle) {
		t.Errorf("Expected %q to contain %q", haystack, needle)
	}
}
