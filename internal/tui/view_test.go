package tui_test

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"gotest.tools/v3/assert"

	"github.com/nikbrunner/bmsync/internal/model"
	"github.com/nikbrunner/bmsync/internal/tui"
	"github.com/nikbrunner/bmsync/internal/tui/layout"
)

func render(t *testing.T, app tui.App, width, height int) string {
	t.Helper()
	updated, _ := app.Update(tea.WindowSizeMsg{Width: width, Height: height})
	return layout.Strip(updated.(tui.App).View())
}

func TestView_ThreePanes(t *testing.T) {
	app, _ := newTestApp(t)
	out := render(t, app, 120, 30)

	for _, want := range []string{
		"All bookmarks/", "Bookmarks bar/", "Work/",
		"Alpha", "Gamma",
		"[filter:all] 3 bookmarks  3 folders",
		"[remote]",
	} {
		assert.Assert(t, strings.Contains(out, want), "missing %q in\n%s", want, out)
	}
}

func TestView_DetailPaneShowsSelectedBookmark(t *testing.T) {
	app, _ := newTestApp(t)
	app = press(t, app, runes("l"))
	out := render(t, app, 120, 30)

	assert.Assert(t, strings.Contains(out, "https://alpha.dev"))
	assert.Assert(t, strings.Contains(out, "Bookmarks bar/Work"))
}

func TestView_SearchIndicator(t *testing.T) {
	app, _ := newTestApp(t)
	app = press(t, app, runes("/"))
	app = press(t, app, runes("zzz"))
	app = press(t, app, tea.KeyMsg{Type: tea.KeyEnter})
	out := render(t, app, 100, 24)

	assert.Assert(t, strings.Contains(out, "/zzz"))
	assert.Assert(t, strings.Contains(out, "(no matches)"))
}

func TestView_EmptyState(t *testing.T) {
	app := tui.NewApp(tui.AppParams{Backend: &fakeBackend{tree: []model.Node{}}})
	out := render(t, app, 80, 24)

	assert.Assert(t, strings.Contains(out, "(empty)"))
	assert.Assert(t, strings.Contains(out, "(nothing selected)"))
}

func TestView_HelpOverlay(t *testing.T) {
	app, _ := newTestApp(t)
	app = press(t, app, runes("?"))
	out := render(t, app, 100, 30)
	assert.Assert(t, strings.Contains(out, "hide/show"))
	assert.Assert(t, strings.Contains(out, "press any key to close"))

	app = press(t, app, runes("j"))
	assert.Equal(t, app.FolderCursor(), 0, "closing key is swallowed")
	out = render(t, app, 100, 30)
	assert.Assert(t, !strings.Contains(out, "press any key to close"))
}

func TestView_StatusBarShortcutsFollowFocus(t *testing.T) {
	app, _ := newTestApp(t)
	out := render(t, app, 160, 30)
	assert.Assert(t, strings.Contains(out, "j/k:move"), out)
	assert.Assert(t, strings.Contains(out, "l:bookmarks"), out)
	assert.Assert(t, strings.Contains(out, "q:quit"), out)

	app = press(t, app, runes("l"))
	out = render(t, app, 160, 30)
	assert.Assert(t, strings.Contains(out, "space:hide/show"), out)
	assert.Assert(t, strings.Contains(out, "enter:open"), out)

	app = press(t, app, runes("/"))
	out = render(t, app, 160, 30)
	assert.Assert(t, strings.Contains(out, "enter:apply"), out)
	assert.Assert(t, !strings.Contains(out, "l:bookmarks"), out)
}
