package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/Nishad-30/vibelist-ai/internal/models"
	"github.com/Nishad-30/vibelist-ai/internal/services"
	"github.com/Nishad-30/vibelist-ai/internal/tasks"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	InputView ViewState = iota
	CurateView
	ResultView
)

// Model represents the TUI application state.
type Model struct {
	ctx        context.Context
	view       ViewState
	engine     tasks.CurateEngine
	canPublish bool
	size       int
	width      int
	height     int

	vibeInput textinput.Model
	trackList list.Model

	progressChan chan tasks.ProgressUpdate
	progress     tasks.ProgressUpdate
	result       *tasks.CurateRunResult
	created      *services.CreatedPlaylist
	err          error

	help help.Model
	keys keyMap
}

type progressUpdateMsg tasks.ProgressUpdate

type curateCompleteMsg struct {
	result *tasks.CurateRunResult
	err    error
}

type publishDoneMsg struct {
	created *services.CreatedPlaylist
	err     error
}

// NewModel creates a new TUI model with the provided dependencies.
// canPublish enables the publish binding on the result view.
func NewModel(ctx context.Context, engine tasks.CurateEngine, size int, canPublish bool) *Model {
	input := textinput.New()
	input.Placeholder = "rainy sunday morning with coffee"
	input.CharLimit = 200
	input.Width = 60
	input.Focus()

	return &Model{
		ctx:        ctx,
		view:       InputView,
		engine:     engine,
		canPublish: canPublish,
		size:       size,
		vibeInput:  input,
		help:       help.New(),
		keys:       newKeyMap(),
	}
}

// Init starts the cursor blink on the vibe input.
func (m *Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if m.trackList.Width() == 0 {
			m.trackList.SetSize(msg.Width-4, msg.Height-10)
		}
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case InputView:
			return m.handleInputKeys(msg)
		case CurateView:
			if msg.String() == "ctrl+c" {
				return m, tea.Quit
			}
			return m, nil
		case ResultView:
			return m.handleResultKeys(msg)
		}

	case progressUpdateMsg:
		m.progress = tasks.ProgressUpdate(msg)
		return m, m.waitForProgress()

	case curateCompleteMsg:
		m.result = msg.result
		m.err = msg.err
		m.view = ResultView
		m.progressChan = nil
		if m.result != nil && m.result.Playlist != nil {
			items := make([]list.Item, len(m.result.Playlist.Tracks))
			for i, track := range m.result.Playlist.Tracks {
				items[i] = trackItem{track: track}
			}
			m.trackList = list.New(items, list.NewDefaultDelegate(), 0, 0)
			m.trackList.Title = m.result.Playlist.Name
			m.trackList.SetSize(m.width-4, m.height-10)
		}
		return m, nil

	case publishDoneMsg:
		m.created = msg.created
		m.err = msg.err
		return m, nil
	}

	return m.updateInner(msg)
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	switch m.view {
	case InputView:
		return m.renderInput()
	case CurateView:
		return m.renderCurate()
	case ResultView:
		return m.renderResult()
	default:
		return ""
	}
}

func (m *Model) handleInputKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "esc":
		return m, tea.Quit
	case "enter":
		vibe := strings.TrimSpace(m.vibeInput.Value())
		if vibe == "" {
			return m, nil
		}
		m.err = nil
		m.view = CurateView
		return m, m.startCuration(vibe)
	}

	var cmd tea.Cmd
	m.vibeInput, cmd = m.vibeInput.Update(msg)
	return m, cmd
}

func (m *Model) handleResultKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "r":
		m.view = InputView
		m.result = nil
		m.created = nil
		m.err = nil
		m.vibeInput.SetValue("")
		m.vibeInput.Focus()
		return m, textinput.Blink
	case "p":
		if m.canPublish && m.created == nil && m.result != nil && m.result.Playlist != nil {
			return m, m.publishPlaylist()
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.trackList, cmd = m.trackList.Update(msg)
	return m, cmd
}

func (m *Model) updateInner(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.view {
	case InputView:
		m.vibeInput, cmd = m.vibeInput.Update(msg)
	case ResultView:
		m.trackList, cmd = m.trackList.Update(msg)
	}
	return m, cmd
}

func (m *Model) startCuration(vibe string) tea.Cmd {
	m.progressChan = make(chan tasks.ProgressUpdate, 50)
	ch := m.progressChan

	go func() {
		result, err := m.engine.Curate(m.ctx, vibe, m.size, ch)
		m.result = result
		m.err = err
		close(ch)
	}()

	return m.waitForProgress()
}

func (m *Model) waitForProgress() tea.Cmd {
	return func() tea.Msg {
		if m.progressChan == nil {
			return curateCompleteMsg{result: m.result, err: m.err}
		}

		update, ok := <-m.progressChan
		if !ok {
			return curateCompleteMsg{result: m.result, err: m.err}
		}
		return progressUpdateMsg(update)
	}
}

func (m *Model) publishPlaylist() tea.Cmd {
	playlist := m.result.Playlist
	return func() tea.Msg {
		created, err := m.engine.Publish(m.ctx, playlist, nil)
		return publishDoneMsg{created: created, err: err}
	}
}

func (m *Model) renderInput() string {
	title := styles.title.Render("What's the vibe?")
	hint := styles.help.Render("enter to curate • esc to quit")
	return fmt.Sprintf("%s\n%s\n\n%s", title, m.vibeInput.View(), hint)
}

func (m *Model) renderCurate() string {
	title := styles.title.Render("Curating Playlist")

	var phase string
	switch m.progress.Phase {
	case tasks.Interpret:
		phase = "Interpreting vibe..."
	case tasks.Suggest:
		phase = "Generating suggestions..."
	case tasks.Validate:
		phase = fmt.Sprintf("Checking catalog (%d/%d)", m.progress.Step, m.progress.Total)
	case tasks.Refine:
		phase = "Refining with catalog feedback..."
	case tasks.Assemble:
		phase = "Assembling playlist..."
	default:
		phase = "Working..."
	}

	return fmt.Sprintf("%s\n\n%s\n%s", title, phase, m.progress.Message)
}

func (m *Model) renderResult() string {
	if m.err != nil && m.result == nil {
		return styles.err.Render(fmt.Sprintf("Curation failed: %v\n\nPress r for a new vibe, q to quit", m.err))
	}

	if m.result == nil || m.result.Playlist == nil {
		return styles.err.Render("No playlist available\n\nPress r for a new vibe, q to quit")
	}

	playlist := m.result.Playlist
	header := m.renderSummary(playlist)

	var notice string
	switch {
	case m.err != nil:
		notice = "\n" + styles.err.Render(fmt.Sprintf("Publishing failed: %v", m.err))
	case m.created != nil:
		notice = "\n" + styles.ok.Render(fmt.Sprintf("✓ Created %q on Spotify (%d tracks)", m.created.Name, m.created.TrackCount))
	case m.result.MissedCount > 0:
		notice = "\n" + styles.warn.Render(fmt.Sprintf("%d suggestions had no catalog match", m.result.MissedCount))
	}

	helpKeys := []key.Binding{m.keys.up, m.keys.down, m.keys.restart, m.keys.quit}
	if m.canPublish && m.created == nil {
		helpKeys = append(helpKeys, m.keys.publish)
	}
	helpView := m.help.ShortHelpView(helpKeys)

	return fmt.Sprintf("%s%s\n\n%s\n\n%s", header, notice, m.trackList.View(), helpView)
}

func (m *Model) renderSummary(playlist *models.Playlist) string {
	profile := playlist.Profile
	return fmt.Sprintf("%s\n%s",
		styles.title.Render(fmt.Sprintf("✓ %s", playlist.Name)),
		styles.help.Render(fmt.Sprintf("%s • energy %.1f • valence %.1f • %s tempo • %d rounds",
			strings.Join(profile.Genres, ", "), profile.Energy, profile.Valence, profile.Tempo, m.result.Attempts)),
	)
}
