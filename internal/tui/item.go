package tui

import (
	"strings"

	"github.com/nikbrunner/bmsync/internal/model"
)

// FolderRow is one line of the folder pane. The first row has a nil Folder
// and stands for the whole tree.
type FolderRow struct {
	Folder *model.Node
	Depth  int
	// Path holds the titles from the outermost folder down to this one.
	Path []string
}

// Key identifies the row across refreshes: the folder id when there is one,
// its title path otherwise. The whole-tree row has the empty key.
func (r FolderRow) Key() string {
	if r.Folder == nil {
		return ""
	}
	if r.Folder.ID != "" {
		return "id:" + r.Folder.ID
	}
	return "path:" + strings.Join(r.Path, "\x00")
}

// Title returns a display title for the row.
func (r FolderRow) Title() string {
	if r.Folder == nil {
		return "All bookmarks"
	}
	if r.Folder.Title == "" {
		return "(untitled)"
	}
	return r.Folder.Title
}

// folderRows flattens a folder-only tree depth-first behind the whole-tree row.
func folderRows(folders []model.Node) []FolderRow {
	rows := []FolderRow{{}}
	model.Walk(folders, func(n *model.Node, parents []*model.Node) bool {
		path := make([]string, 0, len(parents)+1)
		for _, p := range parents {
			path = append(path, p.Title)
		}
		rows = append(rows, FolderRow{Folder: n, Depth: len(parents), Path: append(path, n.Title)})
		return true
	})
	return rows
}

// bookmarksIn lists the bookmarks under row's folder in tree, or every
// bookmark for the whole-tree row. Folders without an id are found by
// their title path. A folder missing from tree yields nothing.
func bookmarksIn(tree []model.Node, row FolderRow) []model.FlatBookmark {
	if row.Folder == nil {
		return model.FlattenBookmarks(tree)
	}

	var f *model.Node
	if row.Folder.ID != "" {
		f, _ = model.Find(tree, row.Folder.ID)
	} else {
		f = folderAt(tree, row.Path)
	}
	if f == nil || !f.IsFolder() {
		return nil
	}
	return model.FlattenBookmarks(f.Children)
}

// folderAt follows path one title per level, taking the first folder with
// a matching title at each level.
func folderAt(nodes []model.Node, path []string) *model.Node {
	var found *model.Node
	for _, title := range path {
		found = nil
		for i := range nodes {
			if nodes[i].IsFolder() && nodes[i].Title == title {
				found = &nodes[i]
				break
			}
		}
		if found == nil {
			return nil
		}
		nodes = found.Children
	}
	return found
}
