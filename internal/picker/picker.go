// Package picker is a small full-screen chooser for quick-search results.
package picker

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nikbrunner/bmsync/internal/model"
	"github.com/nikbrunner/bmsync/internal/search"
)

var (
	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("212")).
			Bold(true)

	normalStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	hiddenStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Strikethrough(true)

	detailStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("244")).
			Italic(true)

	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("99")).
			Bold(true).
			MarginBottom(1)
)

// Action is what the user chose to do with the selection.
type Action int

const (
	ActionNone Action = iota
	ActionOpen
	ActionYank
)

// Picker lets the user pick one search result.
type Picker struct {
	results []search.Match
	query   string
	cursor  int
	offset  int
	action  Action
	width   int
	height  int
}

// New creates a Picker over results for query.
func New(results []search.Match, query string) Picker {
	return Picker{
		results: results,
		query:   query,
		width:   80,
		height:  24,
	}
}

// Init implements tea.Model.
func (p Picker) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (p Picker) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		p.width = msg.Width
		p.height = msg.Height
		p.scroll()
		return p, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc", "ctrl+c", "q":
			p.action = ActionNone
			return p, tea.Quit
		case "enter", "o":
			if len(p.results) == 0 {
				return p, nil
			}
			p.action = ActionOpen
			return p, tea.Quit
		case "y":
			if len(p.results) == 0 {
				return p, nil
			}
			p.action = ActionYank
			return p, tea.Quit
		case "down", "j", "ctrl+n":
			p.move(1)
		case "up", "k", "ctrl+p":
			p.move(-1)
		case "g", "home":
			p.cursor = 0
			p.scroll()
		case "G", "end":
			p.cursor = max(len(p.results)-1, 0)
			p.scroll()
		}
	}

	return p, nil
}

func (p *Picker) move(delta int) {
	next := p.cursor + delta
	if next < 0 || next >= len(p.results) {
		return
	}
	p.cursor = next
	p.scroll()
}

// visibleRows is how many results fit under the header and above the footer.
// Each result takes two lines.
func (p Picker) visibleRows() int {
	return max((p.height-4)/2, 1)
}

func (p *Picker) scroll() {
	rows := p.visibleRows()
	if p.cursor < p.offset {
		p.offset = p.cursor
	}
	if p.cursor >= p.offset+rows {
		p.offset = p.cursor - rows + 1
	}
}

// View implements tea.Model.
func (p Picker) View() string {
	var b strings.Builder

	b.WriteString(headerStyle.Render(fmt.Sprintf("Search: %s (%d results)", p.query, len(p.results))))
	b.WriteString("\n\n")

	end := min(p.offset+p.visibleRows(), len(p.results))
	for i := p.offset; i < end; i++ {
		result := p.results[i]
		cursor := "  "
		style := normalStyle
		if result.Bookmark.Hidden {
			style = hiddenStyle
		}
		if i == p.cursor {
			cursor = "> "
			style = selectedStyle
		}

		b.WriteString(cursor + style.Render(result.Bookmark.Title) + "\n")

		detail := result.Bookmark.URL
		if result.Path != "" {
			detail = result.Path + "  " + detail
		}
		b.WriteString("   " + detailStyle.Render(truncate(detail, p.width-3)) + "\n")
	}

	b.WriteString("\n")
	b.WriteString(detailStyle.Render("j/k: move  enter: open  y: yank url  q/esc: cancel"))

	return b.String()
}

func truncate(s string, width int) string {
	if width <= 1 || lipgloss.Width(s) <= width {
		return s
	}
	r := []rune(s)
	if len(r) > width-1 {
		r = r[:width-1]
	}
	return string(r) + "…"
}

// Selected returns the chosen bookmark, or nil if the picker was cancelled.
func (p Picker) Selected() *model.Node {
	if p.action == ActionNone || p.cursor >= len(p.results) {
		return nil
	}
	return p.results[p.cursor].Bookmark
}

// Action returns what the user chose to do with Selected.
func (p Picker) Action() Action {
	return p.action
}

// Cancelled returns true if the user left without choosing.
func (p Picker) Cancelled() bool {
	return p.action == ActionNone
}
