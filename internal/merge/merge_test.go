package merge_test

import (
	"testing"

	"gotest.tools/v3/assert"

	"github.com/nikbrunner/bmsync/internal/merge"
	"github.com/nikbrunner/bmsync/internal/model"
)

func bm(title, url string) model.Node {
	return model.Node{Kind: model.KindBookmark, Title: title, URL: url}
}

func folder(title string, children ...model.Node) model.Node {
	if children == nil {
		children = []model.Node{}
	}
	return model.Node{Kind: model.KindFolder, Title: title, Children: children}
}

// keysOf renders a tree as nested key strings for order-sensitive comparisons.
func keysOf(nodes []model.Node) []any {
	out := make([]any, 0, len(nodes))
	for _, n := range nodes {
		if n.IsFolder() {
			out = append(out, map[string]any{n.Title: keysOf(n.Children)})
			continue
		}
		out = append(out, n.Key().String())
	}
	return out
}

func TestMerge_UnionsChildrenOfSameFolder(t *testing.T) {
	a := []model.Node{folder("F", bm("X", "u1"))}
	b := []model.Node{folder("F", bm("Y", "u2"))}

	got := merge.Merge(a, b)

	want := []model.Node{folder("F", bm("X", "u1"), bm("Y", "u2"))}
	assert.DeepEqual(t, got, want)
}

func TestMerge_ExactDuplicateBookmarkCollapses(t *testing.T) {
	got := merge.Merge([]model.Node{bm("A", "u")}, []model.Node{bm("A", "u")})
	assert.DeepEqual(t, got, []model.Node{bm("A", "u")})
}

func TestMerge_EmptySecondaryIsIdentity(t *testing.T) {
	tree := []model.Node{
		folder("Work", bm("A", "https://a.com"), folder("Sub", bm("B", "https://b.com"))),
		bm("C", "https://c.com"),
		folder("Empty"),
	}

	assert.DeepEqual(t, merge.Merge(tree, nil), tree)
	assert.DeepEqual(t, merge.Merge(tree, []model.Node{}), tree)
}

func TestMerge_EmptyPrimaryNormalizesSecondary(t *testing.T) {
	tree := []model.Node{
		folder("F", bm("A", "u"), bm("A", "u"), folder("G", bm("B", "v")), folder("G", bm("C", "w"))),
	}

	got := merge.Merge(nil, tree)

	want := []model.Node{folder("F", bm("A", "u"), folder("G", bm("B", "v"), bm("C", "w")))}
	assert.DeepEqual(t, got, want)
}

func TestMerge_SelfMergeHasNoDuplicateBookmarks(t *testing.T) {
	tree := []model.Node{
		folder("Work", bm("A", "u1"), bm("B", "u2"), folder("Deep", bm("C", "u3"))),
		bm("Top", "u4"),
	}

	got := merge.Merge(tree, tree)

	assert.DeepEqual(t, got, tree)

	seen := map[string]int{}
	model.Walk(got, func(n *model.Node, parents []*model.Node) bool {
		if !n.IsFolder() {
			path := ""
			for _, p := range parents {
				path += p.Title + "/"
			}
			seen[path+n.Key().String()]++
		}
		return true
	})
	for key, count := range seen {
		assert.Equal(t, count, 1, "duplicate bookmark %s", key)
	}
}

func TestMerge_SecondaryFolderMetadataWins(t *testing.T) {
	primary := []model.Node{
		{Kind: model.KindFolder, ID: "p", Title: "F", Children: []model.Node{bm("X", "u1")}},
		bm("Other", "o"),
	}
	secondary := []model.Node{
		{Kind: model.KindFolder, ID: "s", Title: "F", Hidden: true, Children: []model.Node{bm("Y", "u2")}},
	}

	got := merge.Merge(primary, secondary)

	assert.Equal(t, len(got), 2)
	// Keeps the primary slot.
	assert.Equal(t, got[0].Title, "F")
	// Takes the secondary metadata.
	assert.Equal(t, got[0].ID, "s")
	assert.Equal(t, got[0].Hidden, true)
	// Children are still unioned, primary first.
	assert.DeepEqual(t, keysOf(got[0].Children), []any{"bookmark:X|u1", "bookmark:Y|u2"})
}

func TestMerge_FirstBookmarkWins(t *testing.T) {
	primary := []model.Node{{Kind: model.KindBookmark, ID: "first", Title: "A", URL: "u"}}
	secondary := []model.Node{{Kind: model.KindBookmark, ID: "second", Title: "A", URL: "u", Hidden: true}}

	got := merge.Merge(primary, secondary)

	assert.Equal(t, len(got), 1)
	assert.Equal(t, got[0].ID, "first")
	assert.Equal(t, got[0].Hidden, false)
}

func TestMerge_IsNotCommutative(t *testing.T) {
	a := []model.Node{
		{Kind: model.KindFolder, ID: "a", Title: "F", Children: []model.Node{bm("X", "u1")}},
		bm("OnlyA", "a"),
	}
	b := []model.Node{
		bm("OnlyB", "b"),
		{Kind: model.KindFolder, ID: "b", Title: "F", Children: []model.Node{bm("Y", "u2")}},
	}

	ab := merge.Merge(a, b)
	ba := merge.Merge(b, a)

	assert.DeepEqual(t, keysOf(ab), []any{
		map[string]any{"F": []any{"bookmark:X|u1", "bookmark:Y|u2"}},
		"bookmark:OnlyA|a",
		"bookmark:OnlyB|b",
	})
	assert.DeepEqual(t, keysOf(ba), []any{
		"bookmark:OnlyB|b",
		map[string]any{"F": []any{"bookmark:Y|u2", "bookmark:X|u1"}},
		"bookmark:OnlyA|a",
	})

	// The metadata winner flips with the argument order.
	assert.Equal(t, ab[0].ID, "b")
	assert.Equal(t, ba[1].ID, "a")
}

func TestMerge_SameTitleDifferentURLAreDistinct(t *testing.T) {
	got := merge.Merge([]model.Node{bm("A", "u1")}, []model.Node{bm("A", "u2")})
	assert.DeepEqual(t, got, []model.Node{bm("A", "u1"), bm("A", "u2")})
}

func TestMerge_FolderAndBookmarkWithSameTitleDoNotCollide(t *testing.T) {
	got := merge.Merge([]model.Node{folder("A")}, []model.Node{bm("A", "u")})
	assert.Equal(t, len(got), 2)
}

func TestMerge_DoesNotMutateInputs(t *testing.T) {
	primary := []model.Node{folder("F", bm("X", "u1"))}
	secondary := []model.Node{folder("F", bm("Y", "u2"))}

	got := merge.Merge(primary, secondary)
	got[0].Children[0].Title = "changed"

	assert.DeepEqual(t, primary, []model.Node{folder("F", bm("X", "u1"))})
	assert.DeepEqual(t, secondary, []model.Node{folder("F", bm("Y", "u2"))})
}

func TestMergeWithReport(t *testing.T) {
	primary := []model.Node{folder("F", bm("X", "u1")), bm("A", "a")}
	secondary := []model.Node{
		folder("F", bm("X", "u1"), bm("Y", "u2")),
		bm("A", "a"),
		folder("New", bm("N1", "n1"), bm("N2", "n2")),
	}

	var r merge.Report
	merge.MergeWithReport(primary, secondary, &r)

	assert.Equal(t, r.Added, 3)
	assert.Equal(t, r.Skipped, 2)
	assert.Equal(t, r.Folders, 1)
}

func TestMerge_DuplicatesInsidePrimary(t *testing.T) {
	primary := []model.Node{
		{Kind: model.KindBookmark, ID: "first", Title: "A", URL: "u"},
		{Kind: model.KindFolder, ID: "f1", Title: "F", Children: []model.Node{bm("X", "x")}},
		{Kind: model.KindBookmark, ID: "second", Title: "A", URL: "u", Hidden: true},
		{Kind: model.KindFolder, ID: "f2", Title: "F", Hidden: true, Children: []model.Node{bm("Y", "y")}},
	}

	got := merge.Merge(primary, nil)

	assert.Equal(t, len(got), 2)
	// A duplicate bookmark keeps the first occurrence's fields and slot.
	assert.Equal(t, got[0].ID, "first")
	assert.Equal(t, got[0].Hidden, false)
	// A duplicate folder keeps the first slot but takes the later metadata.
	assert.Equal(t, got[1].ID, "f2")
	assert.Equal(t, got[1].Hidden, true)
	assert.DeepEqual(t, keysOf(got[1].Children), []any{"bookmark:X|x", "bookmark:Y|y"})
}
