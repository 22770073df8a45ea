package ui

import (
	"fmt"

	"github.com/Nishad-30/vibelist-ai/internal/models"
	"github.com/charmbracelet/bubbles/list"
)

var _ list.Item = trackItem{}

// trackItem wraps [models.Track] to implement [list.Item].
type trackItem struct {
	track models.Track
}

func (i trackItem) FilterValue() string { return i.track.Name }
func (i trackItem) Title() string       { return i.track.Name }
func (i trackItem) Description() string {
	desc := i.track.Artist
	if i.track.Popularity > 0 {
		desc = fmt.Sprintf("%s • popularity %d", desc, i.track.Popularity)
	}
	return desc
}
