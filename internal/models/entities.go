package models

import (
	"fmt"
	"strings"
	"time"
)

// PlaylistRecord is a persisted curation result with full lifecycle management.
type PlaylistRecord struct {
	id         string
	sequence   int
	vibe       string
	name       string
	genres     []string
	energy     float64
	valence    float64
	tempo      string
	trackCount int
	validated  bool
	shareURL   string
	createdAt  time.Time
	updatedAt  time.Time
	deletedAt  *time.Time
}

// NewPlaylistRecord creates a record from a curated playlist.
func NewPlaylistRecord(sequence int, pl Playlist) *PlaylistRecord {
	now := time.Now()
	return &PlaylistRecord{
		sequence:   sequence,
		vibe:       pl.Vibe,
		name:       pl.Name,
		genres:     pl.Profile.Genres,
		energy:     pl.Profile.Energy,
		valence:    pl.Profile.Valence,
		tempo:      pl.Profile.Tempo,
		trackCount: len(pl.Tracks),
		validated:  pl.Validated,
		shareURL:   pl.ShareURL,
		createdAt:  now,
		updatedAt:  now,
	}
}

func (p *PlaylistRecord) ID() string            { return p.id }
func (p *PlaylistRecord) Sequence() int         { return p.sequence }
func (p *PlaylistRecord) Vibe() string          { return p.vibe }
func (p *PlaylistRecord) Name() string          { return p.name }
func (p *PlaylistRecord) Genres() []string      { return p.genres }
func (p *PlaylistRecord) Energy() float64       { return p.energy }
func (p *PlaylistRecord) Valence() float64      { return p.valence }
func (p *PlaylistRecord) Tempo() string         { return p.tempo }
func (p *PlaylistRecord) TrackCount() int       { return p.trackCount }
func (p *PlaylistRecord) Validated() bool       { return p.validated }
func (p *PlaylistRecord) ShareURL() string      { return p.shareURL }
func (p *PlaylistRecord) CreatedAt() time.Time  { return p.createdAt }
func (p *PlaylistRecord) UpdatedAt() time.Time  { return p.updatedAt }
func (p *PlaylistRecord) DeletedAt() *time.Time { return p.deletedAt }

func (p *PlaylistRecord) SetID(id string)            { p.id = id }
func (p *PlaylistRecord) SetSequence(seq int)        { p.sequence = seq }
func (p *PlaylistRecord) SetTrackCount(n int)        { p.trackCount = n }
func (p *PlaylistRecord) SetCreatedAt(t time.Time)   { p.createdAt = t }
func (p *PlaylistRecord) SetUpdatedAt(t time.Time)   { p.updatedAt = t }
func (p *PlaylistRecord) SetDeletedAt(t *time.Time)  { p.deletedAt = t }
func (p *PlaylistRecord) SetGenres(genres []string)  { p.genres = genres }
func (p *PlaylistRecord) SetValues(e, v float64)     { p.energy, p.valence = e, v }
func (p *PlaylistRecord) SetTempo(tempo string)      { p.tempo = tempo }
func (p *PlaylistRecord) SetVibe(vibe, name string)  { p.vibe, p.name = vibe, name }
func (p *PlaylistRecord) SetValidated(ok bool)       { p.validated = ok }
func (p *PlaylistRecord) SetShareURL(u string)       { p.shareURL = u }

// GenresCSV serializes genres as a comma-separated column value.
func (p *PlaylistRecord) GenresCSV() string { return strings.Join(p.genres, ",") }

// SetGenresCSV parses a comma-separated column value into genres.
func (p *PlaylistRecord) SetGenresCSV(csv string) {
	if csv == "" {
		p.genres = nil
		return
	}
	p.genres = strings.Split(csv, ",")
}

// Validate checks invariants before persistence.
func (p *PlaylistRecord) Validate() error {
	if p.id == "" {
		return fmt.Errorf("playlist record missing ID")
	}
	if strings.TrimSpace(p.vibe) == "" {
		return fmt.Errorf("playlist record missing vibe")
	}
	if p.energy < 0 || p.energy > 1 {
		return fmt.Errorf("energy out of range: %f", p.energy)
	}
	if p.valence < 0 || p.valence > 1 {
		return fmt.Errorf("valence out of range: %f", p.valence)
	}
	return nil
}

// TrackRecord is a persisted track belonging to a playlist record.
type TrackRecord struct {
	id         string
	sequence   int
	playlistID string
	position   int
	track      Track
	createdAt  time.Time
	updatedAt  time.Time
	deletedAt  *time.Time
}

// NewTrackRecord creates a record for a track at a position within a playlist.
func NewTrackRecord(sequence int, playlistID string, position int, track Track) *TrackRecord {
	now := time.Now()
	return &TrackRecord{
		sequence:   sequence,
		playlistID: playlistID,
		position:   position,
		track:      track,
		createdAt:  now,
		updatedAt:  now,
	}
}

func (t *TrackRecord) ID() string            { return t.id }
func (t *TrackRecord) Sequence() int         { return t.sequence }
func (t *TrackRecord) PlaylistID() string    { return t.playlistID }
func (t *TrackRecord) Position() int         { return t.position }
func (t *TrackRecord) Track() Track          { return t.track }
func (t *TrackRecord) CreatedAt() time.Time  { return t.createdAt }
func (t *TrackRecord) UpdatedAt() time.Time  { return t.updatedAt }
func (t *TrackRecord) DeletedAt() *time.Time { return t.deletedAt }

func (t *TrackRecord) SetID(id string)            { t.id = id }
func (t *TrackRecord) SetSequence(seq int)        { t.sequence = seq }
func (t *TrackRecord) SetCreatedAt(ts time.Time)  { t.createdAt = ts }
func (t *TrackRecord) SetUpdatedAt(ts time.Time)  { t.updatedAt = ts }
func (t *TrackRecord) SetDeletedAt(ts *time.Time) { t.deletedAt = ts }

// Validate checks invariants before persistence.
func (t *TrackRecord) Validate() error {
	if t.id == "" {
		return fmt.Errorf("track record missing ID")
	}
	if t.playlistID == "" {
		return fmt.Errorf("track record missing playlist ID")
	}
	if t.track.Name == "" || t.track.Artist == "" {
		return fmt.Errorf("track record missing name or artist")
	}
	if t.position < 0 {
		return fmt.Errorf("track position out of range: %d", t.position)
	}
	return nil
}
