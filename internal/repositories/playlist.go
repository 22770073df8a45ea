package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/Nishad-30/vibelist-ai/internal/models"
	"github.com/Nishad-30/vibelist-ai/internal/shared"
)

// PlaylistRepository implements models.Repository[*models.PlaylistRecord] for
// curation history.
//
// Every assembled playlist is recorded with its interpretation values so past
// vibes can be listed and re-curated. Soft deletes keep history recoverable.
type PlaylistRepository struct {
	db *sql.DB
}

// NewPlaylistRepository creates a new PlaylistRepository with the given database connection
func NewPlaylistRepository(db *sql.DB) *PlaylistRepository {
	return &PlaylistRepository{db: db}
}

// Create inserts a new [models.PlaylistRecord] into the database with generated ID and sequence
func (r *PlaylistRepository) Create(record *models.PlaylistRecord) error {
	sequence, err := NextSequence(r.db, "playlists")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	record.SetSequence(sequence)
	record.SetID(shared.GenerateID())

	if err := record.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	query := `
		INSERT INTO playlists (id, sequence, vibe, name, genres, energy, valence, tempo, track_count, validated, share_url, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.Exec(query,
		record.ID(),
		record.Sequence(),
		record.Vibe(),
		record.Name(),
		record.GenresCSV(),
		record.Energy(),
		record.Valence(),
		record.Tempo(),
		record.TrackCount(),
		record.Validated(),
		record.ShareURL(),
		record.CreatedAt(),
		record.UpdatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert playlist: %w", err)
	}

	return nil
}

// Get retrieves a playlist record by ID, excluding soft-deleted records
func (r *PlaylistRepository) Get(id string) (*models.PlaylistRecord, error) {
	query := `
		SELECT id, sequence, vibe, name, genres, energy, valence, tempo, track_count, validated, share_url, created_at, updated_at, deleted_at
		FROM playlists
		WHERE id = ? AND deleted_at IS NULL
	`

	return r.scanOne(r.db.QueryRow(query, id))
}

// Update modifies an existing playlist record in the database
func (r *PlaylistRepository) Update(record *models.PlaylistRecord) error {
	if err := record.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	now := time.Now()
	record.SetUpdatedAt(now)

	query := `
		UPDATE playlists
		SET name = ?, genres = ?, energy = ?, valence = ?, tempo = ?, track_count = ?, validated = ?, share_url = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query,
		record.Name(),
		record.GenresCSV(),
		record.Energy(),
		record.Valence(),
		record.Tempo(),
		record.TrackCount(),
		record.Validated(),
		record.ShareURL(),
		now,
		record.ID(),
	)
	if err != nil {
		return fmt.Errorf("failed to update playlist: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("playlist not found or already deleted: %s", record.ID())
	}

	return nil
}

// Delete soft-deletes a playlist record by ID
func (r *PlaylistRepository) Delete(id string) error {
	query := `
		UPDATE playlists
		SET deleted_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to delete playlist: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("playlist not found or already deleted: %s", id)
	}

	return nil
}

// List retrieves playlist records matching the given criteria, excluding soft-deleted records.
// Supported criteria: "vibe" (substring match), "validated" (bool), "limit" (int).
// Results are newest first.
func (r *PlaylistRepository) List(criteria map[string]any) ([]*models.PlaylistRecord, error) {
	query := `
		SELECT id, sequence, vibe, name, genres, energy, valence, tempo, track_count, validated, share_url, created_at, updated_at, deleted_at
		FROM playlists
		WHERE deleted_at IS NULL
	`

	args := []any{}

	if vibe, ok := criteria["vibe"].(string); ok && vibe != "" {
		query += " AND vibe LIKE ?"
		args = append(args, "%"+vibe+"%")
	}

	if validated, ok := criteria["validated"].(bool); ok {
		query += " AND validated = ?"
		args = append(args, validated)
	}

	query += " ORDER BY sequence DESC"

	if limit, ok := criteria["limit"].(int); ok && limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query playlists: %w", err)
	}
	defer rows.Close()

	var records []*models.PlaylistRecord
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

// scanOne scans a single [sql.Row] into a [models.PlaylistRecord]
func (r *PlaylistRepository) scanOne(row *sql.Row) (*models.PlaylistRecord, error) {
	record, err := scanPlaylist(row.Scan)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: playlist", shared.ErrPlaylistNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan playlist: %w", err)
	}
	return record, nil
}

// scanRow scans a row from [sql.Rows] into a [models.PlaylistRecord]
func (r *PlaylistRepository) scanRow(rows *sql.Rows) (*models.PlaylistRecord, error) {
	record, err := scanPlaylist(rows.Scan)
	if err != nil {
		return nil, fmt.Errorf("failed to scan playlist: %w", err)
	}
	return record, nil
}

func scanPlaylist(scan func(dest ...any) error) (*models.PlaylistRecord, error) {
	var (
		id         string
		sequence   int
		vibe       string
		name       string
		genres     string
		energy     float64
		valence    float64
		tempo      string
		trackCount int
		validated  bool
		shareURL   string
		createdAt  time.Time
		updatedAt  time.Time
		deletedAt  sql.NullTime
	)

	err := scan(&id, &sequence, &vibe, &name, &genres, &energy, &valence, &tempo, &trackCount, &validated, &shareURL, &createdAt, &updatedAt, &deletedAt)
	if err != nil {
		return nil, err
	}

	record := &models.PlaylistRecord{}
	record.SetID(id)
	record.SetSequence(sequence)
	record.SetVibe(vibe, name)
	record.SetGenresCSV(genres)
	record.SetValues(energy, valence)
	record.SetTempo(tempo)
	record.SetTrackCount(trackCount)
	record.SetValidated(validated)
	record.SetShareURL(shareURL)
	record.SetCreatedAt(createdAt)
	record.SetUpdatedAt(updatedAt)
	if deletedAt.Valid {
		record.SetDeletedAt(&deletedAt.Time)
	}

	return record, nil
}
