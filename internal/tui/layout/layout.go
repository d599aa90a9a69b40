// Package layout sizes the browser's three panes and fits text into them.
package layout

// Config holds the sizing rules of the browser.
type Config struct {
	// ChromeRows is taken from the terminal height for the header, pane
	// borders and the three status lines.
	ChromeRows    int
	MinPaneHeight int

	// BorderColumns is taken from the terminal width for app padding and the
	// borders of the three panes.
	BorderColumns int
	// FolderShare and DetailShare are percentages of the remaining width; the
	// bookmark list gets what is left over.
	FolderShare  int
	DetailShare  int
	MinPaneWidth int
	ItemPadding  int
	IndentWidth  int

	HelpShare    int
	HelpMinWidth int
	HelpMaxWidth int
	HelpKeyWidth int

	SearchCharLimit int
	SearchWidth     int

	Ellipsis string
}

// DefaultConfig returns the default sizing rules.
func DefaultConfig() Config {
	return Config{
		ChromeRows:    7,
		MinPaneHeight: 5,

		BorderColumns: 10,
		FolderShare:   25,
		DetailShare:   30,
		MinPaneWidth:  16,
		ItemPadding:   4,
		IndentWidth:   2,

		HelpShare:    50,
		HelpMinWidth: 40,
		HelpMaxWidth: 70,
		HelpKeyWidth: 12,

		SearchCharLimit: 100,
		SearchWidth:     30,

		Ellipsis: "…",
	}
}

// Frame is the size of each pane for one terminal size.
type Frame struct {
	Height  int
	Folders int
	List    int
	Detail  int
}

// Frame splits a terminal of width x height into the three panes. Every pane
// is at least MinPaneWidth wide and MinPaneHeight tall.
func (c Config) Frame(width, height int) Frame {
	available := width - c.BorderColumns
	folders := max(available*c.FolderShare/100, c.MinPaneWidth)
	detail := max(available*c.DetailShare/100, c.MinPaneWidth)

	return Frame{
		Height:  max(height-c.ChromeRows, c.MinPaneHeight),
		Folders: folders,
		List:    max(available-folders-detail, c.MinPaneWidth),
		Detail:  detail,
	}
}

// ItemWidth is the text width inside a pane of the given width.
func (c Config) ItemWidth(paneWidth int) int {
	return max(paneWidth-c.ItemPadding, 1)
}

// HelpWidth is the help overlay width: HelpShare of the terminal, clamped to
// [HelpMinWidth, HelpMaxWidth] and never wider than the terminal allows.
func (c Config) HelpWidth(terminalWidth int) int {
	width := terminalWidth * c.HelpShare / 100
	width = min(max(width, c.HelpMinWidth), c.HelpMaxWidth)
	return max(min(width, terminalWidth-4), 1)
}

// Window returns the [start, end) range of rows to draw so that selected
// stays visible, kept near the middle once the list scrolls.
func Window(selected, total, rows int) (start, end int) {
	rows = max(rows, 1)
	if total <= rows {
		return 0, total
	}
	start = min(max(selected-rows/2, 0), total-rows)
	return start, start + rows
}
