package model

import (
	"fmt"
	"strings"
)

// WalkFunc is called for every node in depth-first pre-order.
// parents holds the chain of enclosing folders, outermost first.
// Returning false stops the walk.
type WalkFunc func(n *Node, parents []*Node) bool

// Walk visits every node of the tree depth-first, pre-order. Nodes are passed
// by pointer into the tree so callers may mutate them in place.
func Walk(nodes []Node, fn WalkFunc) {
	walk(nodes, nil, fn)
}

func walk(nodes []Node, parents []*Node, fn WalkFunc) bool {
	for i := range nodes {
		n := &nodes[i]
		if !fn(n, parents) {
			return false
		}
		if n.IsFolder() && len(n.Children) > 0 {
			if !walk(n.Children, append(parents, n), fn) {
				return false
			}
		}
	}
	return true
}

// Find returns a pointer to the first node with the given id (depth-first),
// or ErrNotFound.
func Find(nodes []Node, id string) (*Node, error) {
	var found *Node
	Walk(nodes, func(n *Node, _ []*Node) bool {
		if n.ID == id {
			found = n
			return false
		}
		return true
	})
	if found == nil {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, id)
	}
	return found, nil
}

// Validate checks that every node is exactly one variant.
// The first offending node fails the whole tree.
func Validate(nodes []Node) error {
	var err error
	Walk(nodes, func(n *Node, parents []*Node) bool {
		switch n.Kind {
		case KindBookmark:
			if n.Children != nil {
				err = fmt.Errorf("%w: bookmark %q at %q has children", ErrMalformedNode, n.Title, pathOf(parents))
			}
		case KindFolder:
			if n.URL != "" {
				err = fmt.Errorf("%w: folder %q at %q has a url", ErrMalformedNode, n.Title, pathOf(parents))
			}
		default:
			err = fmt.Errorf("%w: %q has unknown kind %d", ErrMalformedNode, n.Title, n.Kind)
		}
		return err == nil
	})
	return err
}

// FlatBookmark is a bookmark together with the folder path leading to it.
type FlatBookmark struct {
	Node *Node
	Path string // "Bookmarks bar/Work", empty at root
}

// FlattenBookmarks lists every bookmark in the tree in depth-first order.
func FlattenBookmarks(nodes []Node) []FlatBookmark {
	var out []FlatBookmark
	Walk(nodes, func(n *Node, parents []*Node) bool {
		if !n.IsFolder() {
			out = append(out, FlatBookmark{Node: n, Path: pathOf(parents)})
		}
		return true
	})
	return out
}

// FolderPath returns the slash-joined titles of the folders enclosing id.
func FolderPath(nodes []Node, id string) (string, error) {
	path := ""
	found := false
	Walk(nodes, func(n *Node, parents []*Node) bool {
		if n.ID == id {
			path = pathOf(parents)
			found = true
			return false
		}
		return true
	})
	if !found {
		return "", fmt.Errorf("%w: %q", ErrNotFound, id)
	}
	return path, nil
}

func pathOf(parents []*Node) string {
	titles := make([]string, len(parents))
	for i, p := range parents {
		titles[i] = p.Title
	}
	return strings.Join(titles, "/")
}
