package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/Nishad-30/vibelist-ai/internal/models"
	"github.com/Nishad-30/vibelist-ai/internal/shared"
)

// TrackRepository implements models.Repository[*models.TrackRecord] for
// playlist track persistence.
//
// Tracks are stored per playlist with their position so history views can
// reconstruct the full curation result.
type TrackRepository struct {
	db *sql.DB
}

// NewTrackRepository creates a new TrackRepository with the given database connection
func NewTrackRepository(db *sql.DB) *TrackRepository {
	return &TrackRepository{db: db}
}

// Create inserts a new [models.TrackRecord] into the database with generated ID and sequence
func (r *TrackRepository) Create(record *models.TrackRecord) error {
	sequence, err := NextSequence(r.db, "tracks")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	record.SetSequence(sequence)
	record.SetID(shared.GenerateID())

	if err := record.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	track := record.Track()
	query := `
		INSERT INTO tracks (id, sequence, playlist_id, position, spotify_id, name, artist, uri, external_url, preview_url, popularity, source, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.Exec(query,
		record.ID(),
		record.Sequence(),
		record.PlaylistID(),
		record.Position(),
		track.SpotifyID,
		track.Name,
		track.Artist,
		track.URI,
		track.ExternalURL,
		track.PreviewURL,
		track.Popularity,
		track.Source,
		record.CreatedAt(),
		record.UpdatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert track: %w", err)
	}

	return nil
}

// Get retrieves a track record by ID, excluding soft-deleted records
func (r *TrackRepository) Get(id string) (*models.TrackRecord, error) {
	query := trackSelect + " WHERE id = ? AND deleted_at IS NULL"
	return r.scanOne(r.db.QueryRow(query, id))
}

// Update is not supported for track records; playlists are immutable once
// assembled. Re-curating a vibe creates a new playlist instead.
func (r *TrackRepository) Update(record *models.TrackRecord) error {
	return fmt.Errorf("%w: track records are immutable", shared.ErrNotImplemented)
}

// Delete soft-deletes a track record by ID
func (r *TrackRepository) Delete(id string) error {
	query := `
		UPDATE tracks
		SET deleted_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to delete track: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("track not found or already deleted: %s", id)
	}

	return nil
}

// List retrieves track records matching the given criteria, excluding soft-deleted records.
// Supported criteria: "playlist_id" (exact), "artist" (substring match).
// Results are in playlist position order.
func (r *TrackRepository) List(criteria map[string]any) ([]*models.TrackRecord, error) {
	query := trackSelect + " WHERE deleted_at IS NULL"
	args := []any{}

	if playlistID, ok := criteria["playlist_id"].(string); ok && playlistID != "" {
		query += " AND playlist_id = ?"
		args = append(args, playlistID)
	}

	if artist, ok := criteria["artist"].(string); ok && artist != "" {
		query += " AND artist LIKE ?"
		args = append(args, "%"+artist+"%")
	}

	query += " ORDER BY playlist_id, position ASC"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query tracks: %w", err)
	}
	defer rows.Close()

	var records []*models.TrackRecord
	for rows.Next() {
		record, err := r.scanRow(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return records, nil
}

// ListByPlaylist retrieves all tracks for a playlist in position order.
func (r *TrackRepository) ListByPlaylist(playlistID string) ([]*models.TrackRecord, error) {
	return r.List(map[string]any{"playlist_id": playlistID})
}

const trackSelect = `
	SELECT id, sequence, playlist_id, position, spotify_id, name, artist, uri, external_url, preview_url, popularity, source, created_at, updated_at, deleted_at
	FROM tracks`

// scanOne scans a single [sql.Row] into a [models.TrackRecord]
func (r *TrackRepository) scanOne(row *sql.Row) (*models.TrackRecord, error) {
	record, err := scanTrack(row.Scan)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: stored track", shared.ErrTrackNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan track: %w", err)
	}
	return record, nil
}

// scanRow scans a row from [sql.Rows] into a [models.TrackRecord]
func (r *TrackRepository) scanRow(rows *sql.Rows) (*models.TrackRecord, error) {
	record, err := scanTrack(rows.Scan)
	if err != nil {
		return nil, fmt.Errorf("failed to scan track: %w", err)
	}
	return record, nil
}

func scanTrack(scan func(dest ...any) error) (*models.TrackRecord, error) {
	var (
		id          string
		sequence    int
		playlistID  string
		position    int
		spotifyID   string
		name        string
		artist      string
		uri         string
		externalURL string
		previewURL  string
		popularity  int
		source      string
		createdAt   time.Time
		updatedAt   time.Time
		deletedAt   sql.NullTime
	)

	err := scan(&id, &sequence, &playlistID, &position, &spotifyID, &name, &artist, &uri, &externalURL, &previewURL, &popularity, &source, &createdAt, &updatedAt, &deletedAt)
	if err != nil {
		return nil, err
	}

	dto := models.Track{
		SpotifyID:   spotifyID,
		Name:        name,
		Artist:      artist,
		URI:         uri,
		ExternalURL: externalURL,
		PreviewURL:  previewURL,
		Popularity:  popularity,
		Source:      source,
	}

	record := models.NewTrackRecord(sequence, playlistID, position, dto)
	record.SetID(id)
	record.SetCreatedAt(createdAt)
	record.SetUpdatedAt(updatedAt)
	if deletedAt.Valid {
		record.SetDeletedAt(&deletedAt.Time)
	}

	return record, nil
}
