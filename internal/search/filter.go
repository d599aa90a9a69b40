// Package search narrows bookmark trees by a search term.
//
// Filter is the exact, case-folded substring filter used for tree views;
// Fuzzy ranks a flat list by title, then URL, for the quick-search picker.
package search

import (
	"strings"

	"golang.org/x/text/cases"

	"github.com/nikbrunner/bmsync/internal/model"
)

// Filter keeps bookmarks whose title or url contains term (case-folded) and
// the folders that transitively contain them. Folders never match on their
// own title. An empty term returns tree unchanged. The input is not modified.
func Filter(tree []model.Node, term string) []model.Node {
	term = strings.TrimSpace(term)
	if term == "" {
		return tree
	}
	m := newMatcher(term)
	return m.filter(tree)
}

type matcher struct {
	fold cases.Caser
	term string
}

func newMatcher(term string) *matcher {
	fold := cases.Fold()
	return &matcher{fold: fold, term: fold.String(term)}
}

func (m *matcher) matches(s string) bool {
	return strings.Contains(m.fold.String(s), m.term)
}

func (m *matcher) filter(nodes []model.Node) []model.Node {
	out := make([]model.Node, 0)
	for _, n := range nodes {
		if !n.IsFolder() {
			if m.matches(n.Title) || m.matches(n.URL) {
				out = append(out, n)
			}
			continue
		}
		children := m.filter(n.Children)
		if len(children) == 0 {
			continue
		}
		f := n
		f.Children = children
		out = append(out, f)
	}
	return out
}
