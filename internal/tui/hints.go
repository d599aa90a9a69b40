package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
)

// shortcut is one status bar entry: the keys of its bindings and a short
// label. Disabled bindings are left out.
type shortcut struct {
	bindings []key.Binding
	label    string
}

func sc(label string, bindings ...key.Binding) shortcut {
	return shortcut{bindings: bindings, label: label}
}

// keys renders the first key of each binding, "j/k" for a pair. A single
// binding shows its help key so that space reads as "space".
func (s shortcut) keys() string {
	if len(s.bindings) == 1 {
		return s.bindings[0].Help().Key
	}
	var names []string
	for _, b := range s.bindings {
		if ks := b.Keys(); len(ks) > 0 {
			names = append(names, ks[0])
		}
	}
	return strings.Join(names, "/")
}

func (s shortcut) enabled() bool {
	for _, b := range s.bindings {
		if !b.Enabled() {
			return false
		}
	}
	return len(s.bindings) > 0
}

// shortcuts lists what can be done from the current focus, then the keys
// that work everywhere.
func (a App) shortcuts() (local, global []shortcut) {
	k := a.keys
	global = []shortcut{sc("reload", k.Reload), sc("help", k.Help), sc("quit", k.Quit)}

	if a.search.Active {
		return []shortcut{sc("apply", k.Open), sc("clear", k.ClearSearch)}, global
	}

	local = []shortcut{sc("move", k.Down, k.Up), sc("pane", k.SwitchPane), sc("filter", k.CycleFilter), sc("search", k.Search)}
	if a.focusedPane == PaneFolders {
		if a.selectedFolder().Folder != nil {
			local = append(local, sc("hide/show folder", k.Toggle))
		}
		return append(local, sc("bookmarks", k.Right)), global
	}
	if _, ok := a.selectedBookmark(); ok {
		local = append(local, sc("hide/show", k.Toggle), sc("open", k.Open), sc("yank", k.YankURL))
	}
	return local, global
}

func (a App) renderShortcuts(list []shortcut) string {
	parts := make([]string, 0, len(list))
	for _, s := range list {
		if s.enabled() {
			parts = append(parts, a.styles.HintKey.Render(s.keys())+":"+a.styles.HintDesc.Render(s.label))
		}
	}
	return strings.Join(parts, " ")
}
