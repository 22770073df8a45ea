package repositories

import (
	"database/sql"
	"fmt"

	"github.com/Nishad-30/vibelist-ai/internal/models"
)

// HistoryStore implements tasks.PlaylistCacher over the playlist and track
// repositories.
//
// Every curation run is recorded as a playlist record plus its positioned
// tracks, and can be reconstructed into a full [models.Playlist] for the
// history views.
type HistoryStore struct {
	playlists *PlaylistRepository
	tracks    *TrackRepository
}

// NewHistoryStore creates a HistoryStore backed by the given database.
func NewHistoryStore(db *sql.DB) *HistoryStore {
	return &HistoryStore{
		playlists: NewPlaylistRepository(db),
		tracks:    NewTrackRepository(db),
	}
}

// Playlists exposes the underlying playlist repository.
func (h *HistoryStore) Playlists() *PlaylistRepository { return h.playlists }

// Tracks exposes the underlying track repository.
func (h *HistoryStore) Tracks() *TrackRepository { return h.tracks }

// SavePlaylist records an assembled playlist with all its tracks.
func (h *HistoryStore) SavePlaylist(playlist models.Playlist) error {
	_, err := h.Record(playlist)
	return err
}

// Record saves a playlist and returns the generated record ID.
func (h *HistoryStore) Record(playlist models.Playlist) (string, error) {
	record := models.NewPlaylistRecord(0, playlist)
	if err := h.playlists.Create(record); err != nil {
		return "", fmt.Errorf("failed to record playlist: %w", err)
	}

	for position, track := range playlist.Tracks {
		trackRecord := models.NewTrackRecord(0, record.ID(), position, track)
		if err := h.tracks.Create(trackRecord); err != nil {
			return "", fmt.Errorf("failed to record track %d: %w", position, err)
		}
	}

	return record.ID(), nil
}

// Recent returns the most recent playlists, newest first, with tracks
// attached.
func (h *HistoryStore) Recent(limit int) ([]models.Playlist, error) {
	if limit <= 0 {
		limit = 5
	}

	records, err := h.playlists.List(map[string]any{"limit": limit})
	if err != nil {
		return nil, err
	}

	playlists := make([]models.Playlist, 0, len(records))
	for _, record := range records {
		playlist, err := h.assemble(record)
		if err != nil {
			return nil, err
		}
		playlists = append(playlists, *playlist)
	}

	return playlists, nil
}

// GetPlaylist reconstructs a stored playlist by ID.
func (h *HistoryStore) GetPlaylist(id string) (*models.Playlist, error) {
	record, err := h.playlists.Get(id)
	if err != nil {
		return nil, err
	}
	return h.assemble(record)
}

func (h *HistoryStore) assemble(record *models.PlaylistRecord) (*models.Playlist, error) {
	trackRecords, err := h.tracks.ListByPlaylist(record.ID())
	if err != nil {
		return nil, err
	}

	tracks := make([]models.Track, 0, len(trackRecords))
	for _, tr := range trackRecords {
		tracks = append(tracks, tr.Track())
	}

	return &models.Playlist{
		ID:        record.ID(),
		Vibe:      record.Vibe(),
		Name:      record.Name(),
		CreatedAt: record.CreatedAt(),
		Profile: models.VibeProfile{
			Genres:  record.Genres(),
			Energy:  record.Energy(),
			Valence: record.Valence(),
			Tempo:   record.Tempo(),
		},
		Tracks:    tracks,
		Validated: record.Validated(),
		ShareURL:  record.ShareURL(),
	}, nil
}
