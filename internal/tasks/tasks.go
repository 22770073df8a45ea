// package tasks implements the vibe-to-playlist curation pipeline.
//
// The core abstraction is CurateEngine, which orchestrates interpretation,
// suggestion, catalog validation, and playlist assembly. Operations emit
// progress updates via channels for non-blocking status reporting to CLI/UI
// layers.
package tasks

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Nishad-30/vibelist-ai/internal/curator"
	"github.com/Nishad-30/vibelist-ai/internal/models"
	"github.com/Nishad-30/vibelist-ai/internal/services"
	"github.com/Nishad-30/vibelist-ai/internal/shared"
	"github.com/charmbracelet/log"
	"golang.org/x/time/rate"
)

// SuggestionResult represents the outcome of validating a single suggestion.
type SuggestionResult struct {
	Suggestion models.Suggestion // Original curator suggestion
	Track      *models.Track     // Catalog match (nil if not found)
	Substitute bool              // Match came from the similar-track fallback
	Error      error             // Error if validation failed
}

// CurateRunResult contains all data from a full curation run.
type CurateRunResult struct {
	Playlist     *models.Playlist   // Assembled playlist
	Results      []SuggestionResult // Individual validation results
	Attempts     int                // Suggestion/validation rounds used
	MatchedCount int                // Exact catalog matches
	SubCount     int                // Substituted via similar-track search
	MissedCount  int                // Suggestions with no catalog match
}

// CurateEngine defines operations for building playlists from vibe text.
type CurateEngine interface {
	// Curate runs the full pipeline: interpret the vibe, generate
	// suggestions, validate them against the catalog, and refine with
	// feedback until everything matches or attempts run out.
	Curate(ctx context.Context, vibe string, size int, progress chan<- ProgressUpdate) (*CurateRunResult, error)

	// Publish creates the playlist on the music service. Requires
	// user-level authentication on the underlying service.
	Publish(ctx context.Context, playlist *models.Playlist, progress chan<- ProgressUpdate) (*services.CreatedPlaylist, error)
}

// PlaylistCacher persists assembled playlists. Errors during caching are
// logged but never fail a curation run.
type PlaylistCacher interface {
	SavePlaylist(playlist models.Playlist) error
}

// VibeEngine implements CurateEngine.
// Holds the curator, the catalog service, and a rate limiter shared across
// all outbound search calls.
type VibeEngine struct {
	curator    *curator.Curator
	service    services.Service
	limiter    *rate.Limiter
	cache      PlaylistCacher
	logger     *log.Logger
	maxRetries int
}

// EngineOpts configures a VibeEngine.
type EngineOpts struct {
	Curator    *curator.Curator
	Service    services.Service
	Cache      PlaylistCacher
	Logger     *log.Logger
	MaxRetries int
	RateLimit  float64
}

// NewVibeEngine creates a VibeEngine with the provided dependencies.
func NewVibeEngine(opts EngineOpts) *VibeEngine {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.MaxRetries <= 0 {
		opts.MaxRetries = 3
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = 5
	}

	return &VibeEngine{
		curator:    opts.Curator,
		service:    opts.Service,
		limiter:    rate.NewLimiter(rate.Limit(opts.RateLimit), 1),
		cache:      opts.Cache,
		logger:     opts.Logger,
		maxRetries: opts.MaxRetries,
	}
}

// sendProgress sends a progress update through the channel without blocking.
func (e *VibeEngine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
		// Sent successfully
	default:
		// Channel full or closed, skip this update
	}
}

// Curate runs the full vibe-to-playlist pipeline.
func (e *VibeEngine) Curate(ctx context.Context, vibe string, size int, progress chan<- ProgressUpdate) (*CurateRunResult, error) {
	vibe = strings.TrimSpace(vibe)
	if vibe == "" {
		return nil, fmt.Errorf("%w: vibe description is empty", shared.ErrInvalidInput)
	}
	if size <= 0 {
		size = 20
	}

	e.sendProgress(progress, interpretUpdate(vibe))
	profile := e.curator.InterpretVibe(vibe)
	e.sendProgress(progress, interpretedUpdate(profile))
	e.logger.Info("interpreted vibe", "vibe", vibe, "genre", profile.PrimaryGenre(), "energy", profile.Energy, "valence", profile.Valence)

	var (
		results  []SuggestionResult
		feedback []string
		attempts int
	)

	for attempt := 1; attempt <= e.maxRetries; attempt++ {
		attempts = attempt

		if attempt > 1 {
			e.sendProgress(progress, refineUpdate(attempt, e.maxRetries, len(feedback)))
		}

		suggestions := e.curator.Suggest(profile, feedback, size)
		e.sendProgress(progress, suggestUpdate(attempt, e.maxRetries, len(suggestions)))

		roundResults, roundFeedback, err := e.validate(ctx, suggestions, progress)
		if err != nil {
			return nil, err
		}

		results = roundResults
		feedback = roundFeedback

		missed := 0
		for _, r := range results {
			if r.Track == nil {
				missed++
			}
		}
		if missed == 0 || len(feedback) == 0 {
			break
		}
		e.logger.Info("retrying with catalog feedback", "attempt", attempt, "missed", missed, "feedback", len(feedback))
	}

	result := &CurateRunResult{Results: results, Attempts: attempts}
	tracks := e.collectTracks(results, size, result)
	e.applyAudioFeatures(ctx, tracks, &profile)

	playlist := &models.Playlist{
		Vibe:      vibe,
		Name:      PlaylistName(vibe),
		Profile:   profile,
		Tracks:    tracks,
		Feedback:  feedback,
		Validated: result.MissedCount == 0 && len(tracks) > 0,
		ShareURL:  services.ShareURL(vibe),
	}
	result.Playlist = playlist
	e.sendProgress(progress, assembleUpdate(playlist))

	if e.cache != nil {
		if err := e.cache.SavePlaylist(*playlist); err != nil {
			e.logger.Warn("failed to cache playlist", "err", err)
		}
	}

	return result, nil
}

// validate checks each suggestion against the catalog. A miss on the exact
// search falls back to a similar-track search seeded by the suggestion's
// artist and its related genres. Returns per-suggestion results plus feedback
// lines drawn from each miss's closest alternatives. Exact hits contribute no
// feedback; the next round only needs to know what the misses mapped to.
func (e *VibeEngine) validate(ctx context.Context, suggestions []models.Suggestion, progress chan<- ProgressUpdate) ([]SuggestionResult, []string, error) {
	total := len(suggestions)
	results := make([]SuggestionResult, 0, total)
	seen := make(map[string]struct{})

	var feedback []string

	for i, s := range suggestions {
		step := i + 1
		e.sendProgress(progress, validateUpdate(step, total, s))

		if err := e.limiter.Wait(ctx); err != nil {
			return nil, nil, err
		}

		track, err := e.service.SearchTrack(ctx, s.Artist, s.Song)
		if err == nil {
			if e.remember(seen, track) {
				results = append(results, SuggestionResult{Suggestion: s, Track: track})
				e.sendProgress(progress, matchedUpdate(step, total, *track))
				continue
			}
			// Duplicate of an earlier match, treat as a miss and
			// look for a substitute instead.
		} else if !errors.Is(err, shared.ErrTrackNotFound) {
			return nil, nil, err
		}

		substitute, alternatives, err := e.findSubstitute(ctx, s, seen)
		if err != nil {
			if !errors.Is(err, shared.ErrTrackNotFound) {
				return nil, nil, err
			}
			results = append(results, SuggestionResult{Suggestion: s, Error: err})
			e.sendProgress(progress, missedUpdate(step, total, s))
			continue
		}

		results = append(results, SuggestionResult{Suggestion: s, Track: substitute, Substitute: true})
		feedback = appendFeedback(feedback, alternatives)
		e.sendProgress(progress, substitutedUpdate(step, total, s, *substitute))
	}

	return results, feedback, nil
}

// findSubstitute searches for a similar track, widening from the suggestion's
// own genre to its related genres. Alongside the substitute it returns the
// candidate list it was drawn from so validation can feed the alternatives
// back to the curator.
func (e *VibeEngine) findSubstitute(ctx context.Context, s models.Suggestion, seen map[string]struct{}) (*models.Track, []models.Track, error) {
	genres := append([]string{s.Genre}, curator.RelatedGenres(s.Genre)...)

	for _, genre := range genres {
		if err := e.limiter.Wait(ctx); err != nil {
			return nil, nil, err
		}

		candidates, err := e.service.SearchSimilar(ctx, s.Artist, genre, 3)
		if errors.Is(err, shared.ErrTrackNotFound) {
			continue
		}
		if err != nil {
			return nil, nil, err
		}

		for _, candidate := range candidates {
			if e.remember(seen, &candidate) {
				return &candidate, candidates, nil
			}
		}
	}

	return nil, nil, fmt.Errorf("%w: no substitute for %s - %s", shared.ErrTrackNotFound, s.Artist, s.Song)
}

// remember records a track's normalized identity, reporting false for
// duplicates so the playlist stays free of repeats.
func (e *VibeEngine) remember(seen map[string]struct{}, track *models.Track) bool {
	key := shared.NormalizeKey(track.Name, track.Artist)
	if _, ok := seen[key]; ok {
		return false
	}
	seen[key] = struct{}{}
	return true
}

// applyAudioFeatures replaces the predicted energy and valence with the mean
// of the catalog's measured values for the matched tracks. Lookup failures
// leave the prediction in place.
func (e *VibeEngine) applyAudioFeatures(ctx context.Context, tracks []models.Track, profile *models.VibeProfile) {
	ids := make([]string, 0, len(tracks))
	for _, track := range tracks {
		if track.SpotifyID != "" {
			ids = append(ids, track.SpotifyID)
		}
	}
	if len(ids) == 0 {
		return
	}

	if err := e.limiter.Wait(ctx); err != nil {
		return
	}
	features, err := e.service.AudioFeatures(ctx, ids)
	if err != nil {
		e.logger.Warn("audio feature lookup failed", "err", err)
		return
	}
	if len(features) == 0 {
		return
	}

	var energy, valence float64
	for _, f := range features {
		energy += f.Energy
		valence += f.Valence
	}
	n := float64(len(features))
	profile.Energy = shared.Clamp01(energy / n)
	profile.Valence = shared.Clamp01(valence / n)
}

// collectTracks gathers matched tracks in suggestion order, capped at size,
// and fills the result counters.
func (e *VibeEngine) collectTracks(results []SuggestionResult, size int, result *CurateRunResult) []models.Track {
	var tracks []models.Track
	for _, r := range results {
		switch {
		case r.Track == nil:
			result.MissedCount++
		case r.Substitute:
			result.SubCount++
		default:
			result.MatchedCount++
		}

		if r.Track != nil && len(tracks) < size {
			tracks = append(tracks, *r.Track)
		}
	}
	return tracks
}

// Publish creates the assembled playlist on the music service and updates the
// share URL to the real playlist link.
func (e *VibeEngine) Publish(ctx context.Context, playlist *models.Playlist, progress chan<- ProgressUpdate) (*services.CreatedPlaylist, error) {
	if playlist == nil || len(playlist.Tracks) == 0 {
		return nil, fmt.Errorf("%w: playlist has no tracks", shared.ErrInvalidInput)
	}

	e.sendProgress(progress, publishUpdate(playlist.Name))

	uris := make([]string, 0, len(playlist.Tracks))
	for _, track := range playlist.Tracks {
		if track.URI != "" {
			uris = append(uris, track.URI)
		}
	}

	description := fmt.Sprintf("Curated for: %s", playlist.Vibe)
	created, err := e.service.CreatePlaylist(ctx, playlist.Name, description, uris)
	if err != nil {
		return nil, err
	}

	if created.ExternalURL != "" {
		playlist.ShareURL = created.ExternalURL
	}
	e.logger.Info("published playlist", "id", created.ID, "tracks", created.TrackCount)

	return created, nil
}

// appendFeedback records up to two of a missed suggestion's similar-track
// alternatives as "Artist - Song" lines for the next suggestion round.
func appendFeedback(feedback []string, alternatives []models.Track) []string {
	kept := 0
	for _, alt := range alternatives {
		if kept == 2 {
			break
		}
		line := alt.FeedbackLine()
		dup := false
		for _, existing := range feedback {
			if existing == line {
				dup = true
				break
			}
		}
		if !dup {
			feedback = append(feedback, line)
			kept++
		}
	}
	return feedback
}

// PlaylistName derives a display name from the vibe text.
func PlaylistName(vibe string) string {
	words := strings.Fields(vibe)
	if len(words) > 4 {
		words = words[:4]
	}
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + strings.ToLower(w[1:])
	}
	return strings.Join(words, " ") + " Mix"
}
