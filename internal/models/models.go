// package models defines the data model for the playlist generator
package models

import (
	"time"
)

// Model defines the base interface for all persistent models.
// Implementations include PlaylistRecord and TrackRecord.
type Model interface {
	ID() string           // ID returns the unique identifier for this model
	CreatedAt() time.Time // CreatedAt returns when this model was created
	UpdatedAt() time.Time // UpdatedAt returns when this model was last updated
	Validate() error      // Validate checks if the model's data is valid and returns an error if not
}

// Repository defines the interface for data access operations.
// Implementations handle database interactions for specific model types.
type Repository[T Model] interface {
	Create(model T) error                      // Create inserts a new model into the database
	Get(id string) (T, error)                  // Get retrieves a model by its ID
	Update(model T) error                      // Update modifies an existing model in the database
	Delete(id string) error                    // Delete removes a model from the database by its ID
	List(criteria map[string]any) ([]T, error) // List retrieves all models matching the given criteria
}

// VibeProfile is the model's interpretation of a free-text vibe description.
type VibeProfile struct {
	Genres          []string `json:"primary_genres"`
	Energy          float64  `json:"energy"`
	Valence         float64  `json:"valence"`
	Tempo           string   `json:"tempo"`
	Characteristics []string `json:"characteristics"`
}

// PrimaryGenre returns the first genre, or "unknown" when empty.
func (p VibeProfile) PrimaryGenre() string {
	if len(p.Genres) == 0 {
		return "unknown"
	}
	return p.Genres[0]
}

// Suggestion is a single artist/song proposal produced by the curator.
type Suggestion struct {
	Artist     string  `json:"artist"`
	Song       string  `json:"song"`
	Genre      string  `json:"genre"`
	Energy     float64 `json:"energy"`
	Valence    float64 `json:"valence"`
	Confidence float64 `json:"confidence"`
	Source     string  `json:"source,omitempty"`
}

// Track is a concrete Spotify track resolved from a suggestion.
type Track struct {
	SpotifyID   string `json:"id,omitempty"`
	Name        string `json:"name"`
	Artist      string `json:"artist"`
	URI         string `json:"uri,omitempty"`
	ExternalURL string `json:"external_url,omitempty"`
	PreviewURL  string `json:"preview_url,omitempty"`
	Popularity  int    `json:"popularity,omitempty"`
	Source      string `json:"source,omitempty"`
}

// FeedbackLine formats a track as "Artist - Song" for curator refinement.
func (t Track) FeedbackLine() string {
	return t.Artist + " - " + t.Name
}

// Playlist is a fully assembled curation result. ID and CreatedAt are set
// when the playlist is loaded from history.
type Playlist struct {
	ID        string      `json:"id,omitempty"`
	Vibe      string      `json:"vibe"`
	Name      string      `json:"name"`
	Profile   VibeProfile `json:"interpretation"`
	Tracks    []Track     `json:"tracks"`
	Feedback  []string    `json:"spotify_feedback,omitempty"`
	Validated bool        `json:"validated"`
	ShareURL  string      `json:"share_url,omitempty"`
	CreatedAt time.Time   `json:"created_at,omitzero"`
}

// TrainingExample is one labeled entry in the training data file.
type TrainingExample struct {
	Vibe            string   `json:"vibe"`
	Genres          []string `json:"genres"`
	Energy          float64  `json:"energy"`
	Valence         float64  `json:"valence"`
	Tempo           string   `json:"tempo"`
	Characteristics []string `json:"characteristics"`
}

// PrimaryGenre returns the first genre label, or "unknown" when none exist.
func (e TrainingExample) PrimaryGenre() string {
	if len(e.Genres) == 0 {
		return "unknown"
	}
	return e.Genres[0]
}
