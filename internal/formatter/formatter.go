// package formatter provides functions to export curated playlists to various formats (CSV, Markdown, plain text, JSON)
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/Nishad-30/vibelist-ai/internal/models"
	"github.com/Nishad-30/vibelist-ai/internal/shared"
)

// ExportToCSV converts a playlist to CSV format with columns: Position, Artist, Name, Spotify ID, URI, Popularity, Source
func ExportToCSV(playlist *models.Playlist) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"Position", "Artist", "Name", "Spotify ID", "URI", "Popularity", "Source"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for i, track := range playlist.Tracks {
		record := []string{
			strconv.Itoa(i + 1),
			track.Artist,
			track.Name,
			track.SpotifyID,
			track.URI,
			strconv.Itoa(track.Popularity),
			track.Source,
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown converts a playlist to Markdown with the interpretation summary up top
func ExportToMarkdown(playlist *models.Playlist) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("# %s\n\n", playlist.Name))
	buf.WriteString(fmt.Sprintf("**Vibe**: %s\n\n", playlist.Vibe))

	buf.WriteString(fmt.Sprintf("**Genres**: %s\n", strings.Join(playlist.Profile.Genres, ", ")))
	buf.WriteString(fmt.Sprintf("**Energy**: %.2f · **Valence**: %.2f · **Tempo**: %s\n", playlist.Profile.Energy, playlist.Profile.Valence, playlist.Profile.Tempo))
	if len(playlist.Profile.Characteristics) > 0 {
		buf.WriteString(fmt.Sprintf("**Mood**: %s\n", strings.Join(playlist.Profile.Characteristics, ", ")))
	}
	buf.WriteString(fmt.Sprintf("**Tracks**: %d\n\n", len(playlist.Tracks)))

	if playlist.ShareURL != "" {
		buf.WriteString(fmt.Sprintf("[Open on Spotify](%s)\n\n", playlist.ShareURL))
	}

	buf.WriteString("## Tracks\n\n")
	for i, track := range playlist.Tracks {
		linkPart := ""
		if track.ExternalURL != "" {
			linkPart = fmt.Sprintf(" ([listen](%s))", track.ExternalURL)
		}
		buf.WriteString(fmt.Sprintf("%d. %s - %s%s\n", i+1, track.Artist, track.Name, linkPart))
	}

	return buf.Bytes(), nil
}

// ExportToText converts a playlist to plain text format
func ExportToText(playlist *models.Playlist) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Playlist: %s\n", playlist.Name))
	buf.WriteString(fmt.Sprintf("Vibe: %s\n", playlist.Vibe))
	buf.WriteString(fmt.Sprintf("Tracks: %d\n\n", len(playlist.Tracks)))

	for i, track := range playlist.Tracks {
		buf.WriteString(fmt.Sprintf("%d. %s - %s\n", i+1, track.Artist, track.Name))
	}

	return buf.Bytes(), nil
}

// ExportToJSON serializes the full playlist, interpretation included
func ExportToJSON(playlist *models.Playlist) ([]byte, error) {
	return shared.MarshalJSON(playlist, true)
}

// Export renders a playlist in the named format: json, csv, markdown, or text.
func Export(playlist *models.Playlist, format string) ([]byte, error) {
	switch strings.ToLower(format) {
	case "json":
		return ExportToJSON(playlist)
	case "csv":
		return ExportToCSV(playlist)
	case "markdown", "md":
		return ExportToMarkdown(playlist)
	case "text", "txt", "":
		return ExportToText(playlist)
	default:
		return nil, fmt.Errorf("%w: unknown export format %q", shared.ErrInvalidArgument, format)
	}
}

// WriteExport renders a playlist and writes it to path, deriving the format
// from the file extension when format is empty.
func WriteExport(playlist *models.Playlist, path, format string) error {
	if format == "" {
		format = strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	}

	data, err := Export(playlist, format)
	if err != nil {
		return err
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write export: %w", err)
	}
	return nil
}
