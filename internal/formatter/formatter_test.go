package formatter

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Nishad-30/vibelist-ai/internal/models"
	mocks "github.com/Nishad-30/vibelist-ai/internal/testing"
)

func samplePlaylist() *models.Playlist {
	return &models.Playlist{
		Vibe: "calm evening by the fireplace",
		Name: "Calm Evening Mix",
		Profile: models.VibeProfile{
			Genres:          []string{"ambient", "drone"},
			Energy:          0.2,
			Valence:         0.6,
			Tempo:           "slow",
			Characteristics: []string{"calm", "peaceful"},
		},
		Tracks: []models.Track{
			mocks.MockTrack("t1", "Discreet Music", "Brian Eno"),
			mocks.MockTrack("t2", "An Ending", "Brian Eno"),
		},
		Validated: true,
		ShareURL:  "https://open.spotify.com/search/calm",
	}
}

func TestExportToCSV(t *testing.T) {
	data, err := ExportToCSV(samplePlaylist())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	records, err := csv.NewReader(strings.NewReader(string(data))).ReadAll()
	if err != nil {
		t.Fatalf("invalid CSV output: %v", err)
	}

	if len(records) != 3 {
		t.Fatalf("expected header plus 2 rows, got %d", len(records))
	}
	if records[0][0] != "Position" {
		t.Errorf("unexpected header %v", records[0])
	}
	if records[1][1] != "Brian Eno" || records[1][2] != "Discreet Music" {
		t.Errorf("unexpected first row %v", records[1])
	}
}

func TestExportToMarkdown(t *testing.T) {
	data, err := ExportToMarkdown(samplePlaylist())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	md := string(data)
	mocks.AssertContains(t, md, "# Calm Evening Mix")
	mocks.AssertContains(t, md, "**Vibe**: calm evening by the fireplace")
	mocks.AssertContains(t, md, "ambient, drone")
	mocks.AssertContains(t, md, "1. Brian Eno - Discreet Music")
	mocks.AssertContains(t, md, "[Open on Spotify]")
}

func TestExportToText(t *testing.T) {
	data, err := ExportToText(samplePlaylist())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	text := string(data)
	mocks.AssertContains(t, text, "Playlist: Calm Evening Mix")
	mocks.AssertContains(t, text, "2. Brian Eno - An Ending")
}

func TestExportToJSON(t *testing.T) {
	data, err := ExportToJSON(samplePlaylist())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	var decoded models.Playlist
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("invalid JSON output: %v", err)
	}
	if decoded.Profile.Tempo != "slow" {
		t.Errorf("expected interpretation in JSON export, got %+v", decoded.Profile)
	}
}

func TestExport(t *testing.T) {
	playlist := samplePlaylist()

	for _, format := range []string{"json", "csv", "markdown", "md", "text", "txt", ""} {
		if _, err := Export(playlist, format); err != nil {
			t.Errorf("format %q: expected no error, got %v", format, err)
		}
	}

	if _, err := Export(playlist, "yaml"); err == nil {
		t.Error("expected error for unknown format")
	}
}

func TestWriteExport(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "playlist.md")

	if err := WriteExport(samplePlaylist(), path, ""); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read export: %v", err)
	}
	mocks.AssertContains(t, string(data), "# Calm Evening Mix")
}
