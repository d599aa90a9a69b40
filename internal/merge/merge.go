// Package merge combines two bookmark trees by structural identity.
//
// Folders are matched by title and bookmarks by (title, url) at each level.
// Merge is deliberately asymmetric: for a folder present on both sides the
// entry keeps its primary position but takes the secondary node's metadata,
// while children are merged recursively. A bookmark already present is never
// duplicated; the first occurrence wins.
package merge

import "github.com/nikbrunner/bmsync/internal/model"

// Report counts what a merge did.
type Report struct {
	Added   int // bookmarks taken from secondary
	Skipped int // bookmarks dropped as duplicates
	Folders int // folders matched by title and merged
}

// Merge returns primary ∪ secondary. Entries derived from primary come first
// in their original order, followed by unmatched secondary entries. Neither
// input is modified.
func Merge(primary, secondary []model.Node) []model.Node {
	return MergeWithReport(primary, secondary, nil)
}

// MergeWithReport is Merge that also tallies the result into r (nil allowed).
func MergeWithReport(primary, secondary []model.Node, r *Report) []model.Node {
	m := newOrderedMap(len(primary) + len(secondary))

	for _, n := range primary {
		m.put(n, r, false)
	}
	for _, n := range secondary {
		m.put(n, r, true)
	}

	return m.values()
}

// orderedMap keeps insertion order of identity keys. Replacing an existing
// key keeps its original slot.
type orderedMap struct {
	index map[model.Key]int
	nodes []model.Node
}

func newOrderedMap(capacity int) *orderedMap {
	return &orderedMap{
		index: make(map[model.Key]int, capacity),
		nodes: make([]model.Node, 0, capacity),
	}
}

func (m *orderedMap) put(n model.Node, r *Report, fromSecondary bool) {
	key := n.Key()
	i, exists := m.index[key]

	if !exists {
		m.index[key] = len(m.nodes)
		normalized := normalize(n)
		m.nodes = append(m.nodes, normalized)
		if fromSecondary && r != nil {
			r.Added += countBookmarks(normalized)
		}
		return
	}

	if !n.IsFolder() {
		if r != nil {
			r.Skipped++
		}
		return
	}

	existing := m.nodes[i]
	merged := n.Clone()
	merged.Children = MergeWithReport(existing.Children, n.Children, r)
	m.nodes[i] = merged
	if r != nil {
		r.Folders++
	}
}

func (m *orderedMap) values() []model.Node {
	return m.nodes
}

// normalize deep-copies n, collapsing duplicate keys inside folders.
func normalize(n model.Node) model.Node {
	if !n.IsFolder() {
		return n.Clone()
	}
	c := n.Clone()
	c.Children = Merge(n.Children, nil)
	return c
}

func countBookmarks(n model.Node) int {
	if !n.IsFolder() {
		return 1
	}
	total := 0
	for _, c := range n.Children {
		total += countBookmarks(c)
	}
	return total
}
