package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/nikbrunner/bmsync/internal/tui/layout"
)

// renderView creates the three-pane browser view.
func (a App) renderView() string {
	if a.showHelp {
		return a.renderHelpOverlay()
	}

	frame := a.layout.Frame(a.width, a.height)

	columns := lipgloss.JoinHorizontal(
		lipgloss.Top,
		a.renderFolderPane(frame.Folders, frame.Height),
		a.renderBookmarkPane(frame.List, frame.Height),
		a.renderDetailPane(frame.Detail, frame.Height),
	)

	content := a.styles.App.Render(
		lipgloss.JoinVertical(lipgloss.Left, a.renderHeader(), columns, a.renderStatusBar()),
	)

	// Use Place to ensure exact terminal dimensions and prevent overflow
	return lipgloss.Place(a.width, a.height, lipgloss.Left, lipgloss.Top, content)
}

// renderHeader shows the selected folder path and the data source.
func (a App) renderHeader() string {
	path := "bm"
	if row := a.selectedFolder(); row.Folder != nil {
		path = strings.Join(row.Path, "/")
	}

	source := fmt.Sprintf("  [%s]", a.view.Source)
	available := a.width - 4 - layout.Width(source)
	return a.styles.Header.Render(layout.FitLeft(path, available, a.layout.Ellipsis) + source)
}

func (a App) pane(active bool) lipgloss.Style {
	if active {
		return a.styles.PaneActive
	}
	return a.styles.Pane
}

func (a App) renderFolderPane(width, height int) string {
	var content strings.Builder

	itemWidth := a.layout.ItemWidth(width)
	start, end := layout.Window(a.folderNav.Index, len(a.folders), height)

	for i := start; i < end; i++ {
		row := a.folders[i]
		indent := strings.Repeat(" ", row.Depth*a.layout.IndentWidth)
		hidden := row.Folder != nil && row.Folder.Hidden
		content.WriteString(a.renderLine(indent, row.Title(), "/", itemWidth, i == a.folderNav.Index, hidden) + "\n")
	}

	return a.pane(a.focusedPane == PaneFolders).
		Width(width).
		Height(height).
		Render(strings.TrimRight(content.String(), "\n"))
}

func (a App) renderBookmarkPane(width, height int) string {
	var content strings.Builder

	headerLines := 0
	if a.search.Active || a.search.Query != "" {
		headerLines = 1
	}
	itemWidth := a.layout.ItemWidth(width)

	// Show search input or indicator at top
	if a.search.Active {
		content.WriteString(a.search.Input.View() + "\n")
	} else if a.search.Query != "" {
		content.WriteString(a.styles.URL.Render("/"+a.search.Query) + "\n")
	}

	if len(a.bookmarks) == 0 {
		if a.search.Query != "" {
			content.WriteString(a.styles.Empty.Render("(no matches)"))
		} else {
			content.WriteString(a.styles.Empty.Render("(empty)"))
		}
	} else {
		start, end := layout.Window(a.listNav.Index, len(a.bookmarks), height-headerLines)
		for i := start; i < end; i++ {
			b := a.bookmarks[i]
			selected := a.focusedPane == PaneBookmarks && i == a.listNav.Index
			content.WriteString(a.renderLine("", b.Node.Title, "", itemWidth, selected, b.Node.Hidden) + "\n")
		}
	}

	return a.pane(a.focusedPane == PaneBookmarks).
		Width(width).
		Height(height).
		Render(strings.TrimRight(content.String(), "\n"))
}

func (a App) renderDetailPane(width, height int) string {
	var content strings.Builder
	itemWidth := a.layout.ItemWidth(width)

	if b, ok := a.selectedBookmark(); ok {
		title := layout.Fit("", b.Node.Title, "", itemWidth, a.layout.Ellipsis)
		content.WriteString(a.styles.Title.Render(title) + "\n\n")

		url := layout.Fit("", b.Node.URL, "", itemWidth, a.layout.Ellipsis)
		content.WriteString(a.styles.URL.Render(url) + "\n\n")

		if b.Path != "" {
			path := layout.FitLeft(b.Path, itemWidth, a.layout.Ellipsis)
			content.WriteString(a.styles.Date.Render(path) + "\n")
		}
		if b.Node.DateAdded != nil {
			content.WriteString(a.styles.Date.Render("Added: "+b.Node.AddedAt().Format("2006-01-02")) + "\n")
		}
		if b.Node.Hidden {
			content.WriteString(a.styles.ItemHidden.Render("hidden") + "\n")
		}
	} else {
		content.WriteString(a.styles.Empty.Render("(nothing selected)"))
	}

	return a.styles.Pane.
		Width(width).
		Height(height).
		Render(strings.TrimRight(content.String(), "\n"))
}

// renderLine renders one row, padded to maxWidth when highlighted.
func (a App) renderLine(prefix, text, suffix string, maxWidth int, selected, hidden bool) string {
	line := layout.Fit(prefix, text, suffix, maxWidth, a.layout.Ellipsis)

	if selected {
		return a.styles.ItemSelected.Render(layout.Pad(line, maxWidth))
	}
	if hidden {
		return a.styles.ItemHidden.Render(line)
	}
	return a.styles.Item.Render(line)
}

// renderStatusBar renders the message, the filter/stats line and key hints.
func (a App) renderStatusBar() string {
	lines := []string{a.renderMessageLine()}

	s := a.view.Stats
	status := fmt.Sprintf("[filter:%s] %d bookmarks  %d folders  %d recent", a.mode, s.Bookmarks, s.Folders, s.Recent)
	if a.busy {
		status += "  (saving)"
	}
	lines = append(lines, a.styles.HintDesc.Render(status))

	local, global := a.shortcuts()
	lines = append(lines, a.renderShortcuts(local)+"  "+a.renderShortcuts(global))
	return strings.Join(lines, "\n")
}

// renderMessageLine renders the styled message with prefix icon based on type.
func (a App) renderMessageLine() string {
	if a.messageText == "" {
		return ""
	}

	var msgStyle lipgloss.Style
	var prefix string

	switch a.messageType {
	case MessageError:
		msgStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#CC3333", Dark: "#FF6666"}).
			Bold(true)
		prefix = "✗ "
	case MessageWarning:
		msgStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#CC8800", Dark: "#FFAA00"}).
			Bold(true)
		prefix = "⚠ "
	case MessageSuccess:
		msgStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#338833", Dark: "#66CC66"}).
			Bold(true)
		prefix = "✓ "
	default:
		msgStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#4A7070", Dark: "#5F8787"}).
			Bold(true)
	}

	return msgStyle.Render(prefix + a.messageText)
}

func (a App) renderHelpOverlay() string {
	width := a.layout.HelpWidth(a.width)
	keyWidth := a.layout.HelpKeyWidth

	var content strings.Builder
	content.WriteString(a.styles.Title.Render("Keys") + "\n\n")
	for _, b := range a.keys.HelpBindings() {
		h := b.Help()
		content.WriteString(a.styles.HintKey.Width(keyWidth).Render(h.Key) + a.styles.HintDesc.Render(h.Desc) + "\n")
	}
	content.WriteString("\n" + a.styles.Empty.Render("press any key to close"))

	modal := a.styles.Modal.Width(width).Render(content.String())
	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, modal)
}
