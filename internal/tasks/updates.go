package tasks

import (
	"fmt"

	"github.com/Nishad-30/vibelist-ai/internal/models"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	Interpret Phase = iota
	Suggest
	Validate
	Refine
	Assemble
	Publish
)

func (p Phase) String() string {
	switch p {
	case Interpret:
		return "interpret"
	case Suggest:
		return "suggest"
	case Validate:
		return "validate"
	case Refine:
		return "refine"
	case Assemble:
		return "assemble"
	case Publish:
		return "publish"
	default:
		return ""
	}
}

func interpretUpdate(vibe string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Interpret,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Interpreting vibe: %q...", vibe),
	}
}

func interpretedUpdate(profile models.VibeProfile) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Interpret,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Detected %s / %s tempo (energy %.2f, valence %.2f)", profile.PrimaryGenre(), profile.Tempo, profile.Energy, profile.Valence),
		Data:    profile,
	}
}

func suggestUpdate(attempt, maxAttempts, count int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Suggest,
		Step:    attempt,
		Total:   maxAttempts,
		Message: fmt.Sprintf("[attempt %d/%d] Generated %d suggestions", attempt, maxAttempts, count),
	}
}

func validateUpdate(step, total int, s models.Suggestion) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Validate,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] %s - %s", step, total, s.Artist, s.Song),
	}
}

func matchedUpdate(step, total int, track models.Track) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Validate,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✓ %s - %s", step, total, track.Artist, track.Name),
		Data:    track,
	}
}

func substitutedUpdate(step, total int, s models.Suggestion, track models.Track) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Validate,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ~ %s - %s → %s - %s", step, total, s.Artist, s.Song, track.Artist, track.Name),
		Data:    track,
	}
}

func missedUpdate(step, total int, s models.Suggestion) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Validate,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✗ %s - %s", step, total, s.Artist, s.Song),
	}
}

func refineUpdate(attempt, maxAttempts, feedbackCount int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Refine,
		Step:    attempt,
		Total:   maxAttempts,
		Message: fmt.Sprintf("Refining suggestions with %d catalog matches...", feedbackCount),
	}
}

func assembleUpdate(pl *models.Playlist) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Assemble,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Assembled %q with %d tracks", pl.Name, len(pl.Tracks)),
		Data:    pl,
	}
}

func publishUpdate(name string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Publish,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Publishing %q to Spotify...", name),
	}
}
