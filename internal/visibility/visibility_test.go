package visibility_test

import (
	"errors"
	"fmt"
	"math/rand"
	"testing"

	"gotest.tools/v3/assert"
	is "gotest.tools/v3/assert/cmp"

	"github.com/nikbrunner/bmsync/internal/model"
	"github.com/nikbrunner/bmsync/internal/visibility"
)

func bm(id, title, url string, hidden bool) model.Node {
	return model.Node{Kind: model.KindBookmark, ID: id, Title: title, URL: url, Hidden: hidden}
}

func folder(id, title string, hidden bool, children ...model.Node) model.Node {
	if children == nil {
		children = []model.Node{}
	}
	return model.Node{Kind: model.KindFolder, ID: id, Title: title, Hidden: hidden, Children: children}
}

func workTree() []model.Node {
	return []model.Node{
		folder("w", "Work", false,
			bm("a", "A", "https://a.com", false),
			bm("b", "B", "https://b.com", true),
		),
	}
}

// randomTree builds a deterministic pseudo-random tree for property checks.
func randomTree(r *rand.Rand, depth int, next *int) []model.Node {
	count := r.Intn(4)
	nodes := make([]model.Node, 0, count)
	for i := 0; i < count; i++ {
		*next++
		id := fmt.Sprintf("n%d", *next)
		hidden := r.Intn(3) == 0
		if depth > 0 && r.Intn(2) == 0 {
			nodes = append(nodes, folder(id, "F"+id, hidden, randomTree(r, depth-1, next)...))
			continue
		}
		nodes = append(nodes, bm(id, "B"+id, "https://"+id, hidden))
	}
	return nodes
}

func randomTrees(n int) [][]model.Node {
	r := rand.New(rand.NewSource(7))
	trees := make([][]model.Node, n)
	for i := range trees {
		next := 0
		trees[i] = randomTree(r, 4, &next)
	}
	return trees
}

func bookmarkIDs(tree []model.Node) map[string]bool {
	ids := map[string]bool{}
	model.Walk(tree, func(n *model.Node, _ []*model.Node) bool {
		if !n.IsFolder() {
			ids[n.ID] = true
		}
		return true
	})
	return ids
}

func TestFilterVisible_Scenario(t *testing.T) {
	got := visibility.FilterVisible(workTree())
	want := []model.Node{folder("w", "Work", false, bm("a", "A", "https://a.com", false))}
	assert.DeepEqual(t, got, want)
}

func TestFilterHiddenOnly_Scenario(t *testing.T) {
	got := visibility.FilterHiddenOnly(workTree())
	want := []model.Node{folder("w", "Work", false, bm("b", "B", "https://b.com", true))}
	assert.DeepEqual(t, got, want)
}

func TestFilterVisible_DropsFolderEmptiedByFilter(t *testing.T) {
	tree := []model.Node{
		folder("f", "AllHidden", false, bm("x", "X", "u", true)),
		folder("e", "Empty", false),
		bm("v", "V", "v", false),
	}
	got := visibility.FilterVisible(tree)
	assert.DeepEqual(t, got, []model.Node{bm("v", "V", "v", false)})
}

func TestFilterVisible_DropsHiddenFolderWithVisibleChildren(t *testing.T) {
	tree := []model.Node{folder("f", "F", true, bm("x", "X", "u", false))}
	assert.Check(t, is.Len(visibility.FilterVisible(tree), 0))
}

func TestFilterHiddenOnly_KeepsHiddenFolderWhole(t *testing.T) {
	tree := []model.Node{folder("f", "F", true, bm("x", "X", "u", false), bm("y", "Y", "v", true))}
	got := visibility.FilterHiddenOnly(tree)
	assert.DeepEqual(t, got, tree)
}

func TestFilterVisible_NeverContainsHidden(t *testing.T) {
	for i, tree := range randomTrees(50) {
		got := visibility.FilterVisible(tree)
		model.Walk(got, func(n *model.Node, _ []*model.Node) bool {
			assert.Assert(t, !n.Hidden, "tree %d: hidden node %s in visible view", i, n.ID)
			return true
		})
	}
}

func TestFilters_DisjointAtLeafLevel(t *testing.T) {
	for i, tree := range randomTrees(50) {
		visible := bookmarkIDs(visibility.FilterVisible(tree))
		hidden := bookmarkIDs(visibility.FilterHiddenOnly(tree))
		for id := range visible {
			assert.Assert(t, !hidden[id], "tree %d: bookmark %s in both views", i, id)
		}
	}
}

func TestFilters_DoNotMutateInput(t *testing.T) {
	for _, tree := range randomTrees(20) {
		before := model.CloneTree(tree)
		visibility.FilterVisible(tree)
		visibility.FilterHiddenOnly(tree)
		visibility.FolderTree(tree, visibility.ModeHidden)
		assert.DeepEqual(t, tree, before)
	}
}

func TestFilterHiddenOnly_ResultDoesNotAliasSource(t *testing.T) {
	tree := []model.Node{folder("f", "F", true, bm("x", "X", "u", true))}
	got := visibility.FilterHiddenOnly(tree)
	got[0].Children[0].Title = "changed"
	assert.Equal(t, tree[0].Children[0].Title, "X")
}

func TestToggle_Bookmark(t *testing.T) {
	tree := workTree()

	n, err := visibility.Toggle(tree, "a")
	assert.NilError(t, err)
	assert.Equal(t, n.ID, "a")
	assert.Assert(t, tree[0].Children[0].Hidden)
	assert.Assert(t, !tree[0].Hidden, "parent must not change")
}

func TestToggle_FolderPropagatesUnconditionally(t *testing.T) {
	tree := []model.Node{
		folder("f", "F", false,
			bm("a", "A", "u1", true),
			folder("g", "G", false, bm("b", "B", "u2", false)),
		),
	}

	_, err := visibility.Toggle(tree, "f")
	assert.NilError(t, err)

	model.Walk(tree, func(n *model.Node, _ []*model.Node) bool {
		assert.Assert(t, n.Hidden, "%s should be hidden", n.ID)
		return true
	})

	_, err = visibility.Toggle(tree, "f")
	assert.NilError(t, err)

	model.Walk(tree, func(n *model.Node, _ []*model.Node) bool {
		assert.Assert(t, !n.Hidden, "%s should be visible", n.ID)
		return true
	})
}

func TestToggle_DoubleToggleRestoresSubtree(t *testing.T) {
	for _, tree := range randomTrees(30) {
		var folderID string
		model.Walk(tree, func(n *model.Node, _ []*model.Node) bool {
			if n.IsFolder() {
				folderID = n.ID
				return false
			}
			return true
		})
		if folderID == "" {
			continue
		}

		// Propagation overwrites the subtree, so start from a uniform subtree.
		_, err := visibility.SetHidden(tree, folderID, false)
		assert.NilError(t, err)
		before := model.CloneTree(tree)

		_, err = visibility.Toggle(tree, folderID)
		assert.NilError(t, err)
		_, err = visibility.Toggle(tree, folderID)
		assert.NilError(t, err)

		assert.DeepEqual(t, tree, before)
	}
}

func TestToggle_NotFoundLeavesTreeUntouched(t *testing.T) {
	tree := workTree()
	before := model.CloneTree(tree)

	_, err := visibility.Toggle(tree, "missing")
	assert.Assert(t, errors.Is(err, model.ErrNotFound))
	assert.DeepEqual(t, tree, before)
}

func TestSetHidden(t *testing.T) {
	tree := workTree()
	_, err := visibility.SetHidden(tree, "w", true)
	assert.NilError(t, err)
	assert.Assert(t, tree[0].Hidden && tree[0].Children[0].Hidden && tree[0].Children[1].Hidden)

	_, err = visibility.SetHidden(tree, "w", true)
	assert.NilError(t, err)
	assert.Assert(t, tree[0].Hidden, "setting twice is idempotent")
}

func TestHasHiddenContent(t *testing.T) {
	assert.Assert(t, visibility.HasHiddenContent(workTree()[0].Children))
	assert.Assert(t, !visibility.HasHiddenContent([]model.Node{bm("a", "A", "u", false)}))
	assert.Assert(t, !visibility.HasHiddenContent(nil))

	deep := []model.Node{folder("f", "F", false, folder("g", "G", false, bm("x", "X", "u", true)))}
	assert.Assert(t, visibility.HasHiddenContent(deep))
}

func TestFolderTree(t *testing.T) {
	tree := []model.Node{
		folder("plain", "Plain", false, bm("a", "A", "u", false), folder("sub", "Sub", false)),
		folder("has", "HasHidden", false, bm("b", "B", "v", true)),
		folder("hid", "Hidden", true),
		bm("top", "Top", "t", false),
	}

	titles := func(nodes []model.Node) []string {
		var out []string
		for _, n := range nodes {
			out = append(out, n.Title)
		}
		return out
	}

	all := visibility.FolderTree(tree, visibility.ModeAll)
	assert.DeepEqual(t, titles(all), []string{"Plain", "HasHidden", "Hidden"})
	assert.DeepEqual(t, titles(all[0].Children), []string{"Sub"})

	assert.DeepEqual(t, titles(visibility.FolderTree(tree, visibility.ModeVisible)), []string{"Plain", "HasHidden"})
	assert.DeepEqual(t, titles(visibility.FolderTree(tree, visibility.ModeHidden)), []string{"HasHidden", "Hidden"})
}

func TestApply(t *testing.T) {
	tree := workTree()
	assert.DeepEqual(t, visibility.Apply(visibility.ModeAll, tree), tree)
	assert.DeepEqual(t, visibility.Apply(visibility.ModeVisible, tree), visibility.FilterVisible(tree))
	assert.DeepEqual(t, visibility.Apply(visibility.ModeHidden, tree), visibility.FilterHiddenOnly(tree))
}

func TestParseMode(t *testing.T) {
	tests := []struct {
		in      string
		want    visibility.Mode
		wantErr bool
	}{
		{in: "", want: visibility.ModeAll},
		{in: "all", want: visibility.ModeAll},
		{in: "Visible", want: visibility.ModeVisible},
		{in: " hidden ", want: visibility.ModeHidden},
		{in: "bogus", wantErr: true},
	}
	for _, tt := range tests {
		got, err := visibility.ParseMode(tt.in)
		if tt.wantErr {
			assert.Assert(t, err != nil)
			continue
		}
		assert.NilError(t, err)
		assert.Equal(t, got, tt.want)
		assert.Equal(t, got.String(), tt.want.String())
	}
}

func TestMode_Next(t *testing.T) {
	assert.Equal(t, visibility.ModeAll.Next(), visibility.ModeVisible)
	assert.Equal(t, visibility.ModeVisible.Next(), visibility.ModeHidden)
	assert.Equal(t, visibility.ModeHidden.Next(), visibility.ModeAll)
}
