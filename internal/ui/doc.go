// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI provides a three-view workflow for playlist curation:
//  1. [InputView] : Describe the vibe in free text
//  2. [CurateView] : Watch interpretation, suggestion, and validation progress
//  3. [ResultView] : Review the assembled playlist and optionally publish it
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern.
// Progress updates flow through a channel from the VibeEngine, providing
// non-blocking status reporting during curation.
//
// Keyboard navigation uses vim-style bindings (j/k, enter, esc, p, r, q) with
// contextual help displayed via charmbracelet/bubbles/help.
package ui
