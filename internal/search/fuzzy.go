package search

import (
	"cmp"
	"slices"
	"strings"

	"github.com/sahilm/fuzzy"

	"github.com/nikbrunner/bmsync/internal/model"
)

// Match is one bookmark found by Fuzzy.
type Match struct {
	Bookmark *model.Node
	Path     string // enclosing folder titles
	Score    int
	// ByURL is set when only the URL matched the query.
	ByURL bool
}

// titles and urls adapt a flattened bookmark list to fuzzy.Source.
type (
	titles []model.FlatBookmark
	urls   []model.FlatBookmark
)

func (s titles) String(i int) string { return s[i].Node.Title }
func (s titles) Len() int            { return len(s) }

func (s urls) String(i int) string {
	u := s[i].Node.URL
	if _, rest, ok := strings.Cut(u, "://"); ok {
		return rest
	}
	return u
}
func (s urls) Len() int { return len(s) }

// Fuzzy matches query against every bookmark in tree. Title matches come
// first, best score first; bookmarks whose URL matches but whose title does
// not follow them. An empty query matches nothing.
func Fuzzy(tree []model.Node, query string) []Match {
	if query == "" {
		return nil
	}

	flat := model.FlattenBookmarks(tree)
	matched := make(map[int]bool)

	var out []Match
	for _, m := range fuzzy.FindFrom(query, titles(flat)) {
		matched[m.Index] = true
		out = append(out, newMatch(flat[m.Index], m.Score, false))
	}

	var byURL []Match
	for _, m := range fuzzy.FindFrom(query, urls(flat)) {
		if !matched[m.Index] {
			byURL = append(byURL, newMatch(flat[m.Index], m.Score, true))
		}
	}
	slices.SortStableFunc(byURL, func(a, b Match) int { return cmp.Compare(b.Score, a.Score) })

	return append(out, byURL...)
}

func newMatch(b model.FlatBookmark, score int, byURL bool) Match {
	return Match{Bookmark: b.Node, Path: b.Path, Score: score, ByURL: byURL}
}
