package tui

import (
	"github.com/charmbracelet/bubbles/textinput"

	"github.com/nikbrunner/bmsync/internal/tui/layout"
)

// Pane identifies which pane has keyboard focus.
type Pane int

const (
	PaneFolders Pane = iota
	PaneBookmarks
)

// MessageType selects how the status message is styled.
type MessageType int

const (
	MessageInfo MessageType = iota
	MessageSuccess
	MessageWarning
	MessageError
)

// SearchState holds the search input and the active term.
type SearchState struct {
	Input  textinput.Model
	Active bool   // input has focus
	Query  string // term applied to the view, kept after the input closes
}

// NewSearchState creates a SearchState with an initialized input.
func NewSearchState(cfg layout.Config) SearchState {
	input := textinput.New()
	input.Placeholder = "Search title or URL..."
	input.Prompt = "/"
	input.CharLimit = cfg.SearchCharLimit
	input.Width = cfg.SearchWidth
	return SearchState{Input: input}
}

// Reset clears the term and closes the input.
func (s *SearchState) Reset() {
	s.Input.Reset()
	s.Input.Blur()
	s.Active = false
	s.Query = ""
}

// CursorState is a cursor over a list of n rows.
type CursorState struct {
	Index int
}

// Move shifts the cursor by delta, staying inside [0, n).
func (c *CursorState) Move(delta, n int) {
	c.Index = clamp(c.Index+delta, n)
}

// Clamp keeps the cursor valid after the list changed length.
func (c *CursorState) Clamp(n int) {
	c.Index = clamp(c.Index, n)
}

func clamp(i, n int) int {
	if n <= 0 || i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}
