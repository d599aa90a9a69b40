// Package visibility toggles the hidden flag on bookmark trees and derives
// the all / visible-only / hidden-only views of a tree.
//
// Toggle and SetHidden are the only operations that mutate their input. Every
// filter returns freshly built folder nodes and leaves the source untouched.
package visibility

import (
	"fmt"
	"strings"

	"github.com/nikbrunner/bmsync/internal/model"
)

// Mode selects which nodes a view keeps.
type Mode int

const (
	ModeAll Mode = iota
	ModeVisible
	ModeHidden
)

var modeNames = [...]string{"all", "visible", "hidden"}

func (m Mode) String() string {
	if m < ModeAll || m > ModeHidden {
		return fmt.Sprintf("Mode(%d)", int(m))
	}
	return modeNames[m]
}

// Next cycles all → visible → hidden → all.
func (m Mode) Next() Mode {
	return (m + 1) % Mode(len(modeNames))
}

// ParseMode accepts "all", "visible" or "hidden" (case-insensitive).
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "all":
		return ModeAll, nil
	case "visible":
		return ModeVisible, nil
	case "hidden":
		return ModeHidden, nil
	}
	return ModeAll, fmt.Errorf("unknown filter %q (want all, visible or hidden)", s)
}

// Toggle flips the hidden flag of the node with the given id and, for a
// folder, broadcasts the new value to every descendant. The tree is modified
// in place. When id is absent nothing is changed and model.ErrNotFound is
// returned.
func Toggle(tree []model.Node, id string) (*model.Node, error) {
	n, err := model.Find(tree, id)
	if err != nil {
		return nil, err
	}
	apply(n, !n.Hidden)
	return n, nil
}

// SetHidden sets the hidden flag on id and all of its descendants.
func SetHidden(tree []model.Node, id string, hidden bool) (*model.Node, error) {
	n, err := model.Find(tree, id)
	if err != nil {
		return nil, err
	}
	apply(n, hidden)
	return n, nil
}

// apply overwrites the flag on n and its whole subtree unconditionally.
func apply(n *model.Node, hidden bool) {
	n.Hidden = hidden
	for i := range n.Children {
		apply(&n.Children[i], hidden)
	}
}

// Apply returns the view of tree selected by mode.
func Apply(mode Mode, tree []model.Node) []model.Node {
	switch mode {
	case ModeVisible:
		return FilterVisible(tree)
	case ModeHidden:
		return FilterHiddenOnly(tree)
	default:
		return tree
	}
}

// FilterVisible drops hidden nodes. A folder whose children are all filtered
// away is dropped as well, even if the folder itself is visible.
func FilterVisible(tree []model.Node) []model.Node {
	out := make([]model.Node, 0, len(tree))
	for _, n := range tree {
		if n.Hidden {
			continue
		}
		if !n.IsFolder() {
			out = append(out, n)
			continue
		}
		children := FilterVisible(n.Children)
		if len(children) == 0 {
			continue
		}
		f := n
		f.Children = children
		out = append(out, f)
	}
	return out
}

// FilterHiddenOnly keeps hidden nodes (with their whole subtree) and the
// visible folders that lead to them.
func FilterHiddenOnly(tree []model.Node) []model.Node {
	out := make([]model.Node, 0)
	for _, n := range tree {
		if n.Hidden {
			out = append(out, n.Clone())
			continue
		}
		if !n.IsFolder() {
			continue
		}
		children := FilterHiddenOnly(n.Children)
		if len(children) == 0 {
			continue
		}
		f := n
		f.Children = children
		out = append(out, f)
	}
	return out
}

// HasHiddenContent reports whether any direct or transitive descendant in
// children is hidden.
func HasHiddenContent(children []model.Node) bool {
	for _, c := range children {
		if c.Hidden {
			return true
		}
		if c.IsFolder() && HasHiddenContent(c.Children) {
			return true
		}
	}
	return false
}

// FolderTree projects tree onto its folders for the folder pane. Bookmarks
// are dropped. In ModeHidden only folders that are hidden or contain hidden
// content are kept; in ModeVisible hidden folders are dropped.
func FolderTree(tree []model.Node, mode Mode) []model.Node {
	out := make([]model.Node, 0)
	for _, n := range tree {
		if !n.IsFolder() {
			continue
		}
		switch mode {
		case ModeHidden:
			if !n.Hidden && !HasHiddenContent(n.Children) {
				continue
			}
		case ModeVisible:
			if n.Hidden {
				continue
			}
		}
		f := n
		f.Children = FolderTree(n.Children, mode)
		out = append(out, f)
	}
	return out
}
