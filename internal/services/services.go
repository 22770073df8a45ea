// package services defines interface Service for interacting with HTTP APIs
//
// Spotify is the only provider; the interface keeps the curation engine
// testable and leaves room for other catalogs.
package services

import (
	"context"

	"github.com/Nishad-30/vibelist-ai/internal/models"
)

// Service defines the interface for music catalog providers used by the
// curation engine to validate suggestions and publish playlists.
type Service interface {
	// Authenticate performs authentication with the service. An empty
	// credentials map requests an app-level (catalog only) token; user
	// credentials unlock playlist creation.
	Authenticate(ctx context.Context, credentials map[string]string) error

	// SearchTrack searches for an exact artist/song match.
	// Returns the best match or an error if no match is found.
	SearchTrack(ctx context.Context, artist, song string) (*models.Track, error)

	// SearchSimilar finds tracks related to an artist, falling back to a
	// genre search when the artist yields nothing.
	SearchSimilar(ctx context.Context, artist, genre string, limit int) ([]models.Track, error)

	// AudioFeatures retrieves energy/valence/tempo analysis for tracks.
	AudioFeatures(ctx context.Context, trackIDs []string) ([]AudioFeatures, error)

	// CreatePlaylist creates a playlist on the service and fills it with
	// the given track URIs. Requires user-level authentication.
	CreatePlaylist(ctx context.Context, name, description string, trackURIs []string) (*CreatedPlaylist, error)

	// Name returns the name of the service (e.g., "Spotify")
	Name() string
}

// AudioFeatures holds the audio analysis attributes for a track.
type AudioFeatures struct {
	TrackID      string  `json:"id"`
	Energy       float64 `json:"energy"`
	Valence      float64 `json:"valence"`
	Tempo        float64 `json:"tempo"`
	Danceability float64 `json:"danceability"`
	Acousticness float64 `json:"acousticness"`
}

// CreatedPlaylist describes a playlist created on the remote service.
type CreatedPlaylist struct {
	ID          string
	Name        string
	ExternalURL string
	TrackCount  int
}
