// Package stats counts folders, bookmarks and recently added bookmarks.
package stats

import (
	"time"

	"github.com/nikbrunner/bmsync/internal/model"
)

// RecentWindow is how far back a bookmark still counts as recently added.
const RecentWindow = 7 * 24 * time.Hour

// Stats summarizes a tree. Hidden nodes are counted like any other.
type Stats struct {
	Bookmarks int `json:"bookmarks"`
	Folders   int `json:"folders"`
	Recent    int `json:"recent"`
}

// Compute walks the tree once. A bookmark is recent when its DateAdded is
// strictly after now-RecentWindow; bookmarks without a date never are.
func Compute(tree []model.Node, now time.Time) Stats {
	cutoff := now.Add(-RecentWindow).UnixMilli()

	var s Stats
	model.Walk(tree, func(n *model.Node, _ []*model.Node) bool {
		if n.IsFolder() {
			s.Folders++
			return true
		}
		s.Bookmarks++
		if n.DateAdded != nil && *n.DateAdded > cutoff {
			s.Recent++
		}
		return true
	})
	return s
}
