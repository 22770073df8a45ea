package curator

import (
	"strings"
	"testing"

	"github.com/Nishad-30/vibelist-ai/internal/models"
)

func TestFallbackInterpretation(t *testing.T) {
	c := NewWithBundle(nil, nil)

	cases := []struct {
		name  string
		vibe  string
		genre string
		tempo string
	}{
		{"energetic", "high energy workout mix", "pop", "fast"},
		{"calm", "chill evening by the fire", "ambient", "slow"},
		{"neutral", "something for the afternoon", "indie", "medium"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			profile := c.InterpretVibe(tc.vibe)
			if profile.Genres[0] != tc.genre {
				t.Errorf("expected primary genre %q, got %q", tc.genre, profile.Genres[0])
			}
			if profile.Tempo != tc.tempo {
				t.Errorf("expected tempo %q, got %q", tc.tempo, profile.Tempo)
			}
			if profile.Energy < 0 || profile.Energy > 1 {
				t.Errorf("energy out of range: %f", profile.Energy)
			}
		})
	}
}

func TestExpandGenres(t *testing.T) {
	expanded := expandGenres("electronic")

	if len(expanded) != 5 {
		t.Fatalf("expected 5 genres, got %d (%v)", len(expanded), expanded)
	}
	if expanded[0] != "electronic" {
		t.Errorf("expected primary genre first, got %q", expanded[0])
	}

	seen := make(map[string]bool)
	for _, g := range expanded {
		if seen[g] {
			t.Errorf("duplicate genre %q", g)
		}
		seen[g] = true
	}
}

func TestExpandGenresUnmapped(t *testing.T) {
	expanded := expandGenres("vaporwave")
	if len(expanded) != 1 || expanded[0] != "vaporwave" {
		t.Fatalf("expected unmapped genre passed through, got %v", expanded)
	}
}

func TestEnergyToTempo(t *testing.T) {
	cases := []struct {
		energy float64
		want   string
	}{
		{0.1, "slow"},
		{0.3, "medium"},
		{0.59, "medium"},
		{0.6, "fast"},
		{0.95, "fast"},
	}
	for _, tc := range cases {
		if got := energyToTempo(tc.energy); got != tc.want {
			t.Errorf("energy %f: expected %q, got %q", tc.energy, tc.want, got)
		}
	}
}

func TestDeriveCharacteristics(t *testing.T) {
	tags := deriveCharacteristics("deep focus coding session", 0.2, 0.5)

	if len(tags) > 6 {
		t.Fatalf("expected at most 6 characteristics, got %d", len(tags))
	}
	if tags[0] != "calm" {
		t.Errorf("expected low-energy tag first, got %q", tags[0])
	}

	found := false
	for _, tag := range tags {
		if tag == "focus" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected keyword-derived 'focus' tag in %v", tags)
	}
}

func TestSuggest(t *testing.T) {
	c := NewWithBundle(nil, nil)
	profile := models.VibeProfile{
		Genres:  []string{"jazz", "ambient", "lo-fi", "electronic"},
		Energy:  0.25,
		Valence: 0.5,
		Tempo:   "slow",
	}

	suggestions := c.Suggest(profile, nil, 20)

	// top 3 genres, 2 artists each
	if len(suggestions) != 6 {
		t.Fatalf("expected 6 suggestions, got %d", len(suggestions))
	}
	if suggestions[0].Artist != "Miles Davis" {
		t.Errorf("expected first curated jazz artist, got %q", suggestions[0].Artist)
	}
	for i, s := range suggestions {
		if s.Confidence != 0.8 {
			t.Errorf("suggestion %d: expected confidence 0.8, got %f", i, s.Confidence)
		}
	}

	// energy 0.25 -> "Gentle", valence 0.5 -> "Neutral"
	if !strings.HasPrefix(suggestions[0].Song, "Gentle Neutral") {
		t.Errorf("unexpected song title %q", suggestions[0].Song)
	}
}

func TestSuggestWithFeedback(t *testing.T) {
	c := NewWithBundle(nil, nil)
	profile := models.VibeProfile{Genres: []string{"jazz"}, Energy: 0.5, Valence: 0.5}

	feedback := []string{"Chet Baker - My Funny Valentine", "malformed line"}
	suggestions := c.Suggest(profile, feedback, 20)

	first := suggestions[0]
	if first.Artist != "Chet Baker" || first.Song != "My Funny Valentine" {
		t.Fatalf("expected feedback suggestion first, got %+v", first)
	}
	if first.Confidence != 0.9 || first.Source != "spotify_feedback" {
		t.Errorf("expected refined confidence and source, got %+v", first)
	}
	if first.Genre != "spotify_suggested" {
		t.Errorf("expected the spotify_suggested genre label, got %q", first.Genre)
	}

	for _, s := range suggestions[1:] {
		if s.Source == "spotify_feedback" {
			t.Errorf("malformed feedback line should be skipped, got %+v", s)
		}
	}
}

func TestSuggestCapsSize(t *testing.T) {
	c := NewWithBundle(nil, nil)
	profile := models.VibeProfile{Genres: []string{"jazz", "rock", "pop"}, Energy: 0.5, Valence: 0.5}

	suggestions := c.Suggest(profile, nil, 3)
	if len(suggestions) != 3 {
		t.Fatalf("expected size cap of 3, got %d", len(suggestions))
	}
}

func TestRelatedGenres(t *testing.T) {
	related := RelatedGenres("jazz")
	if len(related) == 0 {
		t.Fatal("expected related genres for jazz")
	}
	for _, g := range related {
		if g == "jazz" {
			t.Error("related genres should exclude the genre itself")
		}
	}

	if got := RelatedGenres("polka"); got != nil {
		t.Errorf("expected nil for unmapped genre, got %v", got)
	}
}
