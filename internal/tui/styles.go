package tui

import "github.com/charmbracelet/lipgloss"

// Styles holds the lipgloss styles of the browser.
type Styles struct {
	App          lipgloss.Style
	Header       lipgloss.Style
	Pane         lipgloss.Style
	PaneActive   lipgloss.Style
	Modal        lipgloss.Style
	Title        lipgloss.Style
	Item         lipgloss.Style
	ItemSelected lipgloss.Style
	ItemHidden   lipgloss.Style // hidden nodes under the "all" filter
	URL          lipgloss.Style
	Date         lipgloss.Style
	Empty        lipgloss.Style
	HintKey      lipgloss.Style
	HintDesc     lipgloss.Style
}

// Palette is the set of colors Styles are built from.
type Palette struct {
	Text     lipgloss.TerminalColor
	Muted    lipgloss.TerminalColor
	Accent   lipgloss.TerminalColor
	Border   lipgloss.TerminalColor
	OnAccent lipgloss.TerminalColor
}

// DefaultPalette is grayscale with a desaturated teal accent.
func DefaultPalette() Palette {
	return Palette{
		Text:     lipgloss.AdaptiveColor{Light: "#505050", Dark: "#A0A0A0"},
		Muted:    lipgloss.AdaptiveColor{Light: "#888888", Dark: "#606060"},
		Accent:   lipgloss.AdaptiveColor{Light: "#4A7070", Dark: "#5F8787"},
		Border:   lipgloss.AdaptiveColor{Light: "#888888", Dark: "#505050"},
		OnAccent: lipgloss.Color("#1A1A1A"),
	}
}

// DefaultStyles builds Styles from DefaultPalette.
func DefaultStyles() Styles {
	return NewStyles(DefaultPalette())
}

// NewStyles builds Styles from p.
func NewStyles(p Palette) Styles {
	boxed := func(c lipgloss.TerminalColor) lipgloss.Style {
		return lipgloss.NewStyle().Border(lipgloss.ThickBorder()).BorderForeground(c)
	}
	fg := func(c lipgloss.TerminalColor) lipgloss.Style {
		return lipgloss.NewStyle().Foreground(c)
	}
	row := lipgloss.NewStyle().PaddingLeft(1)

	return Styles{
		App:        lipgloss.NewStyle().Padding(1, 2, 0, 2),
		Header:     fg(p.Muted).PaddingLeft(1),
		Pane:       boxed(p.Border).Padding(0, 1),
		PaneActive: boxed(p.Accent).Padding(0, 1),
		Modal:      boxed(p.Accent).Padding(1, 2),

		Title:        fg(p.Accent).Bold(true),
		Item:         row.Foreground(p.Text),
		ItemSelected: row.Foreground(p.OnAccent).Background(p.Accent),
		ItemHidden:   row.Foreground(p.Muted).Italic(true),
		URL:          fg(p.Muted),
		Date:         fg(p.Muted),
		Empty:        fg(p.Muted),

		HintKey:  fg(p.Accent),
		HintDesc: fg(p.Muted),
	}
}
