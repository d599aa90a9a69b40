// Package tui is the terminal browser for the managed bookmark tree: a
// folder pane, a bookmark list and a detail pane, with all/visible/hidden
// filtering, search and visibility toggling.
package tui

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nikbrunner/bmsync/internal/gitee"
	"github.com/nikbrunner/bmsync/internal/model"
	bmsync "github.com/nikbrunner/bmsync/internal/sync"
	"github.com/nikbrunner/bmsync/internal/tui/layout"
	"github.com/nikbrunner/bmsync/internal/visibility"
)

// Backend is the part of the syncer the browser drives.
type Backend interface {
	Load(ctx context.Context) (bmsync.Source, error)
	View(mode visibility.Mode, term string) bmsync.View
	Toggle(ctx context.Context, id string) (model.Node, bmsync.Report, error)
}

// App is the main bubbletea model for the bookmark browser.
type App struct {
	backend  Backend
	ctx      context.Context
	keys     KeyMap
	styles   Styles
	layout   layout.Config
	copyText func(string) error
	openURL  func(string) error

	// UI state handed to the backend on every refresh
	mode   visibility.Mode
	search SearchState

	view        bmsync.View
	folders     []FolderRow
	bookmarks   []model.FlatBookmark
	folderNav   CursorState
	listNav     CursorState
	focusedPane Pane

	busy        bool
	showHelp    bool
	lastKeyWasG bool

	messageText string
	messageType MessageType

	width  int
	height int
}

// AppParams holds parameters for creating a new App.
type AppParams struct {
	Backend Backend
	Context context.Context // optional, defaults to context.Background
	Mode    visibility.Mode
	Keys    *KeyMap // optional, uses default if nil
	Styles  *Styles // optional, uses default if nil
	Layout  *layout.Config
	// CopyText and OpenURL are required for yank and open.
	CopyText func(string) error
	OpenURL  func(string) error
}

// NewApp creates a new App showing the backend's current tree.
func NewApp(params AppParams) App {
	keys := DefaultKeyMap()
	if params.Keys != nil {
		keys = *params.Keys
	}

	styles := DefaultStyles()
	if params.Styles != nil {
		styles = *params.Styles
	}

	layoutConfig := layout.DefaultConfig()
	if params.Layout != nil {
		layoutConfig = *params.Layout
	}

	ctx := params.Context
	if ctx == nil {
		ctx = context.Background()
	}

	app := App{
		backend:  params.Backend,
		ctx:      ctx,
		keys:     keys,
		styles:   styles,
		layout:   layoutConfig,
		copyText: params.CopyText,
		openURL:  params.OpenURL,
		mode:     params.Mode,
		search:   NewSearchState(layoutConfig),
		width:    80,
		height:   24,
	}

	app.refresh()
	return app
}

// refresh rebuilds both panes from the backend, keeping the selected folder
// when it still exists.
func (a *App) refresh() {
	selected := ""
	if len(a.folders) > 0 {
		selected = a.selectedFolder().Key()
	}

	a.view = a.backend.View(a.mode, a.search.Query)
	a.folders = folderRows(a.view.Folders)

	a.folderNav.Index = 0
	for i, row := range a.folders {
		if row.Key() == selected {
			a.folderNav.Index = i
			break
		}
	}
	a.refreshBookmarks()
}

func (a *App) refreshBookmarks() {
	a.bookmarks = bookmarksIn(a.view.Tree, a.selectedFolder())
	a.listNav.Clamp(len(a.bookmarks))
}

func (a App) selectedFolder() FolderRow {
	if a.folderNav.Index >= len(a.folders) {
		return FolderRow{}
	}
	return a.folders[a.folderNav.Index]
}

func (a App) selectedBookmark() (model.FlatBookmark, bool) {
	if a.listNav.Index >= len(a.bookmarks) {
		return model.FlatBookmark{}, false
	}
	return a.bookmarks[a.listNav.Index], true
}

// Mode returns the active filter mode.
func (a App) Mode() visibility.Mode {
	return a.mode
}

// Query returns the active search term.
func (a App) Query() string {
	return a.search.Query
}

// FocusedPane returns the pane with keyboard focus.
func (a App) FocusedPane() Pane {
	return a.focusedPane
}

// Folders returns the folder pane rows.
func (a App) Folders() []FolderRow {
	return a.folders
}

// FolderCursor returns the selected folder row index.
func (a App) FolderCursor() int {
	return a.folderNav.Index
}

// Bookmarks returns the bookmark list for the selected folder.
func (a App) Bookmarks() []model.FlatBookmark {
	return a.bookmarks
}

// Cursor returns the selected bookmark index.
func (a App) Cursor() int {
	return a.listNav.Index
}

// Message returns the status line text.
func (a App) Message() string {
	return a.messageText
}

// Busy reports whether a backend call is in flight.
func (a App) Busy() bool {
	return a.busy
}

func (a *App) setMessage(t MessageType, format string, args ...any) {
	a.messageType = t
	a.messageText = fmt.Sprintf(format, args...)
}

// Messages produced by backend commands.
type (
	toggledMsg struct {
		node   model.Node
		report bmsync.Report
		err    error
	}
	loadedMsg struct {
		source bmsync.Source
		err    error
	}
)

// Init implements tea.Model.
func (a App) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		return a, nil

	case toggledMsg:
		a.busy = false
		if msg.err != nil {
			a.setMessage(MessageError, "%s", describeError(msg.err))
			if errors.Is(msg.err, bmsync.ErrHostPartiallyRewritten) {
				a.refresh()
			}
			return a, nil
		}
		state := "Shown"
		if msg.node.Hidden {
			state = "Hidden"
		}
		a.setMessage(MessageSuccess, "%s %q (%d created in browser)", state, msg.node.Title, msg.report.Created)
		a.refresh()
		return a, nil

	case loadedMsg:
		a.busy = false
		if msg.err != nil {
			a.setMessage(MessageError, "%s", describeError(msg.err))
			return a, nil
		}
		a.setMessage(MessageInfo, "Loaded from %s", msg.source)
		a.refresh()
		return a, nil

	case tea.KeyMsg:
		if a.search.Active {
			return a.updateSearch(msg)
		}
		return a.updateNormal(msg)
	}

	return a, nil
}

func (a App) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		a.search.Active = false
		a.search.Input.Blur()
		return a, nil
	case tea.KeyEsc:
		a.search.Reset()
		a.refresh()
		return a, nil
	}

	var cmd tea.Cmd
	a.search.Input, cmd = a.search.Input.Update(msg)
	if q := a.search.Input.Value(); q != a.search.Query {
		a.search.Query = q
		a.listNav.Index = 0
		a.refresh()
	}
	return a, cmd
}

func (a App) updateNormal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if a.showHelp {
		// Any key closes the help overlay.
		a.showHelp = false
		return a, nil
	}

	// Handle gg sequence
	if key.Matches(msg, a.keys.Top) {
		if a.lastKeyWasG {
			a.lastKeyWasG = false
			a.moveTo(0)
			return a, nil
		}
		a.lastKeyWasG = true
		return a, nil
	}
	a.lastKeyWasG = false

	switch {
	case key.Matches(msg, a.keys.Quit):
		return a, tea.Quit

	case key.Matches(msg, a.keys.Help):
		a.showHelp = true

	case key.Matches(msg, a.keys.Down):
		a.move(1)

	case key.Matches(msg, a.keys.Up):
		a.move(-1)

	case key.Matches(msg, a.keys.Bottom):
		a.moveTo(-1)

	case key.Matches(msg, a.keys.SwitchPane):
		if a.focusedPane == PaneFolders {
			a.focusedPane = PaneBookmarks
		} else {
			a.focusedPane = PaneFolders
		}

	case key.Matches(msg, a.keys.Left):
		a.focusedPane = PaneFolders

	case key.Matches(msg, a.keys.Right):
		a.focusedPane = PaneBookmarks

	case key.Matches(msg, a.keys.CycleFilter):
		a.mode = a.mode.Next()
		a.setMessage(MessageInfo, "Showing %s bookmarks", a.mode)
		a.refresh()

	case key.Matches(msg, a.keys.Search):
		a.search.Active = true
		a.search.Input.SetValue(a.search.Query)
		a.search.Input.CursorEnd()
		return a, a.search.Input.Focus()

	case key.Matches(msg, a.keys.ClearSearch):
		if a.search.Query != "" {
			a.search.Reset()
			a.refresh()
		}

	case key.Matches(msg, a.keys.Toggle):
		return a.toggleSelected()

	case key.Matches(msg, a.keys.Open):
		if a.focusedPane == PaneFolders {
			a.focusedPane = PaneBookmarks
			return a, nil
		}
		a.openSelected()

	case key.Matches(msg, a.keys.YankURL):
		a.yankSelected()

	case key.Matches(msg, a.keys.Reload):
		if a.busy {
			return a, nil
		}
		a.busy = true
		a.setMessage(MessageInfo, "Reloading...")
		return a, a.loadCmd()
	}

	return a, nil
}

func (a *App) move(delta int) {
	if a.focusedPane == PaneFolders {
		a.folderNav.Move(delta, len(a.folders))
		a.listNav.Index = 0
		a.refreshBookmarks()
		return
	}
	a.listNav.Move(delta, len(a.bookmarks))
}

// moveTo jumps to index i; a negative i means the last row.
func (a *App) moveTo(i int) {
	if a.focusedPane == PaneFolders {
		if i < 0 {
			i = len(a.folders) - 1
		}
		a.folderNav.Index = clamp(i, len(a.folders))
		a.listNav.Index = 0
		a.refreshBookmarks()
		return
	}
	if i < 0 {
		i = len(a.bookmarks) - 1
	}
	a.listNav.Index = clamp(i, len(a.bookmarks))
}

func (a App) toggleSelected() (tea.Model, tea.Cmd) {
	if a.busy {
		return a, nil
	}

	var id, title string
	if a.focusedPane == PaneFolders {
		row := a.selectedFolder()
		if row.Folder == nil {
			return a, nil
		}
		id, title = row.Folder.ID, row.Folder.Title
	} else {
		b, ok := a.selectedBookmark()
		if !ok {
			return a, nil
		}
		id, title = b.Node.ID, b.Node.Title
	}
	if id == "" {
		a.setMessage(MessageWarning, "%q has no id", title)
		return a, nil
	}

	a.busy = true
	a.setMessage(MessageInfo, "Saving %q...", title)
	return a, a.toggleCmd(id)
}

func (a App) toggleCmd(id string) tea.Cmd {
	backend, ctx := a.backend, a.ctx
	return func() tea.Msg {
		n, rep, err := backend.Toggle(ctx, id)
		return toggledMsg{node: n, report: rep, err: err}
	}
}

func (a App) loadCmd() tea.Cmd {
	backend, ctx := a.backend, a.ctx
	return func() tea.Msg {
		src, err := backend.Load(ctx)
		return loadedMsg{source: src, err: err}
	}
}

func (a *App) openSelected() {
	b, ok := a.selectedBookmark()
	if !ok || a.openURL == nil {
		return
	}
	if err := a.openURL(b.Node.URL); err != nil {
		a.setMessage(MessageError, "Could not open URL: %v", err)
		return
	}
	a.setMessage(MessageSuccess, "Opened %s", b.Node.URL)
}

func (a *App) yankSelected() {
	b, ok := a.selectedBookmark()
	if !ok || a.copyText == nil {
		return
	}
	if err := a.copyText(b.Node.URL); err != nil {
		a.setMessage(MessageError, "Could not copy URL: %v", err)
		return
	}
	a.setMessage(MessageSuccess, "Copied %s", b.Node.URL)
}

func describeError(err error) string {
	switch {
	case errors.Is(err, bmsync.ErrRemoteNotConfigured):
		return "No remote configured, run 'bm config set' first"
	case errors.Is(err, bmsync.ErrRemoteRequired):
		return "Remote file not loaded, run 'bm sync push' first"
	case errors.Is(err, gitee.ErrConflict):
		return "Remote file changed elsewhere, press r to reload"
	case errors.Is(err, gitee.ErrUnauthorized):
		return "Remote rejected the token"
	case errors.Is(err, bmsync.ErrHostPartiallyRewritten):
		return "Browser bookmarks only partly rewritten: " + err.Error()
	}
	return err.Error()
}

// View implements tea.Model.
func (a App) View() string {
	return a.renderView()
}
