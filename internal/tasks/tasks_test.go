package tasks

import (
	"context"
	"errors"
	"testing"

	"github.com/Nishad-30/vibelist-ai/internal/curator"
	"github.com/Nishad-30/vibelist-ai/internal/models"
	"github.com/Nishad-30/vibelist-ai/internal/shared"
	mocks "github.com/Nishad-30/vibelist-ai/internal/testing"
)

// fallbackEngine builds an engine around a rule-based curator and the given
// mock catalog. A high rate limit keeps runs instant.
func fallbackEngine(svc *mocks.MockService) *VibeEngine {
	return NewVibeEngine(EngineOpts{
		Curator:   curator.NewWithBundle(nil, nil),
		Service:   svc,
		RateLimit: 10000,
	})
}

// calmCatalog matches every base suggestion the rule-based curator produces
// for a calm vibe: ambient, lo-fi, and acoustic genres, two artists each.
func calmCatalog() *mocks.MockService {
	svc := &mocks.MockService{Catalog: map[string]models.Track{}, Similar: map[string][]models.Track{}}

	profile := curator.NewWithBundle(nil, nil).InterpretVibe("calm evening")
	for i, s := range curator.NewWithBundle(nil, nil).Suggest(profile, nil, 20) {
		track := mocks.MockTrack(
			"t"+string(rune('a'+i)),
			s.Song,
			s.Artist,
		)
		svc.Catalog[mocks.CatalogKey(s.Artist, s.Song)] = track
	}
	return svc
}

func TestCurate(t *testing.T) {
	t.Run("All Suggestions Match", func(t *testing.T) {
		svc := calmCatalog()
		engine := fallbackEngine(svc)

		result, err := engine.Curate(context.Background(), "calm evening", 20, nil)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if result.Attempts != 1 {
			t.Errorf("expected 1 attempt, got %d", result.Attempts)
		}
		if result.MissedCount != 0 {
			t.Errorf("expected no misses, got %d", result.MissedCount)
		}
		if !result.Playlist.Validated {
			t.Error("expected a fully matched playlist to be validated")
		}
		if len(result.Playlist.Tracks) != result.MatchedCount {
			t.Errorf("expected %d tracks, got %d", result.MatchedCount, len(result.Playlist.Tracks))
		}
		if result.Playlist.ShareURL == "" {
			t.Error("expected a share URL")
		}
		if len(result.Playlist.Feedback) != 0 {
			t.Errorf("fully matched run should carry no feedback, got %v", result.Playlist.Feedback)
		}
	})

	t.Run("Applies Measured Audio Features", func(t *testing.T) {
		svc := calmCatalog()
		engine := fallbackEngine(svc)

		result, err := engine.Curate(context.Background(), "calm evening", 20, nil)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		// the mock catalog reports 0.5 energy and valence for every track
		if svc.FeatureCalls != 1 {
			t.Errorf("expected one audio feature lookup, got %d", svc.FeatureCalls)
		}
		if result.Playlist.Profile.Energy != 0.5 || result.Playlist.Profile.Valence != 0.5 {
			t.Errorf("expected measured energy/valence 0.5, got %.2f/%.2f",
				result.Playlist.Profile.Energy, result.Playlist.Profile.Valence)
		}
	})

	t.Run("Empty Vibe", func(t *testing.T) {
		engine := fallbackEngine(&mocks.MockService{})

		_, err := engine.Curate(context.Background(), "   ", 20, nil)
		if !errors.Is(err, shared.ErrInvalidInput) {
			t.Fatalf("expected ErrInvalidInput, got %v", err)
		}
	})

	t.Run("Substitution Via Genre Fallback", func(t *testing.T) {
		// nothing matches exactly; the ambient genre search has results
		svc := &mocks.MockService{
			Similar: map[string][]models.Track{
				"ambient": {
					mocks.MockTrack("s1", "Discreet Music", "Brian Eno"),
					mocks.MockTrack("s2", "An Ending", "Brian Eno"),
				},
			},
		}
		engine := fallbackEngine(svc)

		result, err := engine.Curate(context.Background(), "calm evening", 20, nil)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if result.SubCount == 0 {
			t.Error("expected substituted tracks from the genre fallback")
		}
		if result.MatchedCount != 0 {
			t.Errorf("expected no exact matches, got %d", result.MatchedCount)
		}
		for _, track := range result.Playlist.Tracks {
			if track.Artist != "Brian Eno" {
				t.Errorf("unexpected substitute %+v", track)
			}
		}
	})

	t.Run("Nothing Matches", func(t *testing.T) {
		svc := &mocks.MockService{}
		engine := fallbackEngine(svc)

		result, err := engine.Curate(context.Background(), "calm evening", 20, nil)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if result.MissedCount == 0 {
			t.Error("expected misses with an empty catalog")
		}
		if result.Playlist.Validated {
			t.Error("playlist with misses should not be validated")
		}
		if len(result.Playlist.Tracks) != 0 {
			t.Errorf("expected no tracks, got %d", len(result.Playlist.Tracks))
		}
		if svc.FeatureCalls != 0 {
			t.Errorf("expected no audio feature lookup without tracks, got %d", svc.FeatureCalls)
		}
	})

	t.Run("Feedback Comes From Miss Alternatives", func(t *testing.T) {
		c := curator.NewWithBundle(nil, nil)
		profile := c.InterpretVibe("calm evening")
		suggestions := c.Suggest(profile, nil, 20)

		// the first two suggestions match exactly; the rest miss and fall
		// back to a similar-track alternative under their own genre
		svc := &mocks.MockService{Catalog: map[string]models.Track{}, Similar: map[string][]models.Track{}}
		for i, s := range suggestions[:2] {
			svc.Catalog[mocks.CatalogKey(s.Artist, s.Song)] = mocks.MockTrack(
				"hit"+string(rune('a'+i)), s.Song, s.Artist,
			)
		}
		alt := mocks.MockTrack("alt1", "Weightless", "Marconi Union")
		for _, s := range suggestions[2:] {
			svc.Similar[s.Genre] = []models.Track{alt}
		}

		engine := fallbackEngine(svc)
		result, err := engine.Curate(context.Background(), "calm evening", 20, nil)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		feedback := result.Playlist.Feedback
		for _, s := range suggestions[:2] {
			line := s.Artist + " - " + s.Song
			for _, got := range feedback {
				if got == line {
					t.Errorf("exact match %q must not appear in feedback", line)
				}
			}
		}

		found := false
		for _, got := range feedback {
			if got == alt.FeedbackLine() {
				found = true
			}
		}
		if !found {
			t.Errorf("expected alternative %q in feedback, got %v", alt.FeedbackLine(), feedback)
		}
	})

	t.Run("Deduplicates Tracks", func(t *testing.T) {
		same := mocks.MockTrack("dup", "Same Song", "Same Artist")
		svc := &mocks.MockService{
			Similar: map[string][]models.Track{
				"ambient": {same},
				"lo-fi":   {same},
			},
		}
		engine := fallbackEngine(svc)

		result, err := engine.Curate(context.Background(), "calm evening", 20, nil)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		count := 0
		for _, track := range result.Playlist.Tracks {
			if track.SpotifyID == "dup" {
				count++
			}
		}
		if count != 1 {
			t.Errorf("expected the duplicate to appear once, got %d", count)
		}
	})

	t.Run("Emits Progress Updates", func(t *testing.T) {
		svc := calmCatalog()
		engine := fallbackEngine(svc)

		progress := make(chan ProgressUpdate, 64)
		_, err := engine.Curate(context.Background(), "calm evening", 20, progress)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		close(progress)

		phases := map[Phase]bool{}
		for update := range progress {
			phases[update.Phase] = true
		}

		for _, phase := range []Phase{Interpret, Suggest, Validate, Assemble} {
			if !phases[phase] {
				t.Errorf("expected a %s update", phase)
			}
		}
	})
}

func TestPublish(t *testing.T) {
	svc := &mocks.MockService{}
	engine := fallbackEngine(svc)

	playlist := &models.Playlist{
		Vibe: "calm evening",
		Name: "Calm Evening Mix",
		Tracks: []models.Track{
			mocks.MockTrack("t1", "Discreet Music", "Brian Eno"),
			mocks.MockTrack("t2", "An Ending", "Brian Eno"),
		},
	}

	created, err := engine.Publish(context.Background(), playlist, nil)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if created.TrackCount != 2 {
		t.Errorf("expected 2 tracks published, got %d", created.TrackCount)
	}
	if playlist.ShareURL != created.ExternalURL {
		t.Errorf("expected share URL updated to %q, got %q", created.ExternalURL, playlist.ShareURL)
	}

	t.Run("Empty Playlist", func(t *testing.T) {
		_, err := engine.Publish(context.Background(), &models.Playlist{}, nil)
		if !errors.Is(err, shared.ErrInvalidInput) {
			t.Fatalf("expected ErrInvalidInput, got %v", err)
		}
	})
}

func TestPlaylistName(t *testing.T) {
	cases := []struct {
		vibe string
		want string
	}{
		{"calm evening", "Calm Evening Mix"},
		{"HIGH ENERGY workout playlist for mornings", "High Energy Workout Playlist Mix"},
	}
	for _, tc := range cases {
		if got := PlaylistName(tc.vibe); got != tc.want {
			t.Errorf("PlaylistName(%q): expected %q, got %q", tc.vibe, tc.want, got)
		}
	}
}
