package layout

import (
	"strings"

	"github.com/charmbracelet/x/ansi"
)

// Strip removes ANSI escape sequences.
func Strip(s string) string {
	return ansi.Strip(s)
}

// Width is the number of terminal cells s occupies.
func Width(s string) int {
	return ansi.StringWidth(s)
}

// Fit renders prefix+text+suffix in at most width cells. Only text is
// shortened, ending in ellipsis; when even that does not fit the whole line
// is cut.
func Fit(prefix, text, suffix string, width int, ellipsis string) string {
	if width <= 0 {
		return ""
	}
	line := prefix + text + suffix
	if Width(line) <= width {
		return line
	}
	room := width - Width(prefix) - Width(suffix)
	if room <= Width(ellipsis) {
		return ansi.Truncate(line, width, "")
	}
	return prefix + ansi.Truncate(text, room, ellipsis) + suffix
}

// FitLeft shortens a path from the left so the deepest folders stay
// readable: "…/Work/Docs".
func FitLeft(path string, width int, ellipsis string) string {
	if width <= 0 {
		return ""
	}
	w := Width(path)
	if w <= width {
		return path
	}
	if width <= Width(ellipsis) {
		return ansi.TruncateLeft(path, w-width, "")
	}
	return ansi.TruncateLeft(path, w-(width-Width(ellipsis)), ellipsis)
}

// Pad right-pads s with spaces to width cells.
func Pad(s string, width int) string {
	if gap := width - Width(s); gap > 0 {
		return s + strings.Repeat(" ", gap)
	}
	return s
}
