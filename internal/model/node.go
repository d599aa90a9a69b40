package model

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Kind distinguishes bookmarks from folders.
type Kind int

const (
	KindBookmark Kind = iota
	KindFolder
)

func (k Kind) String() string {
	if k == KindFolder {
		return "folder"
	}
	return "bookmark"
}

// Node is an element of a bookmark tree: a Bookmark (leaf with a URL) or a
// Folder (ordered children). Kind decides which fields are meaningful.
type Node struct {
	Kind      Kind
	ID        string // empty for nodes that only exist in a remote file
	Title     string
	URL       string // bookmarks only
	Hidden    bool
	DateAdded *int64 // epoch millis, nil = unknown
	Children  []Node // folders only
}

// IsFolder returns true if the node is a folder.
func (n Node) IsFolder() bool {
	return n.Kind == KindFolder
}

// Key returns the identity key used to match nodes across trees.
// Bookmarks are keyed by (title, url), folders by title.
func (n Node) Key() Key {
	if n.IsFolder() {
		return Key{Kind: KindFolder, Title: n.Title}
	}
	return Key{Kind: KindBookmark, Title: n.Title, URL: n.URL}
}

// Key identifies "the same logical entry" at one tree level.
type Key struct {
	Kind  Kind
	Title string
	URL   string
}

func (k Key) String() string {
	if k.Kind == KindFolder {
		return "folder:" + k.Title
	}
	return "bookmark:" + k.Title + "|" + k.URL
}

// Clone returns a deep copy of the node.
func (n Node) Clone() Node {
	c := n
	if n.DateAdded != nil {
		d := *n.DateAdded
		c.DateAdded = &d
	}
	if n.Children != nil {
		c.Children = CloneTree(n.Children)
	}
	return c
}

// CloneTree deep-copies a sequence of nodes.
func CloneTree(nodes []Node) []Node {
	if nodes == nil {
		return nil
	}
	out := make([]Node, len(nodes))
	for i := range nodes {
		out[i] = nodes[i].Clone()
	}
	return out
}

// wireNode is the JSON shape shared by the remote file and JSON storage.
type wireNode struct {
	ID        string      `json:"id,omitempty"`
	Title     string      `json:"title"`
	URL       *string     `json:"url,omitempty"`
	Hidden    bool        `json:"hidden,omitempty"`
	DateAdded *int64      `json:"dateAdded,omitempty"`
	Children  *[]wireNode `json:"children,omitempty"`
}

// MarshalJSON emits url for bookmarks and children (possibly empty) for folders.
func (n Node) MarshalJSON() ([]byte, error) {
	return json.Marshal(toWire(n))
}

// UnmarshalJSON decodes a node, deciding its kind by the presence of url or
// children. A node with both or neither is rejected with ErrMalformedNode.
func (n *Node) UnmarshalJSON(data []byte) error {
	var w wireNode
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	node, err := fromWire(w)
	if err != nil {
		return err
	}
	*n = node
	return nil
}

func toWire(n Node) wireNode {
	w := wireNode{
		ID:        n.ID,
		Title:     n.Title,
		Hidden:    n.Hidden,
		DateAdded: n.DateAdded,
	}
	if n.IsFolder() {
		children := make([]wireNode, len(n.Children))
		for i, c := range n.Children {
			children[i] = toWire(c)
		}
		w.Children = &children
		return w
	}
	url := n.URL
	w.URL = &url
	return w
}

func fromWire(w wireNode) (Node, error) {
	hasURL := w.URL != nil
	hasChildren := w.Children != nil
	if hasURL == hasChildren {
		return Node{}, fmt.Errorf("%w: %q has url=%t children=%t", ErrMalformedNode, w.Title, hasURL, hasChildren)
	}

	n := Node{
		ID:        w.ID,
		Title:     w.Title,
		Hidden:    w.Hidden,
		DateAdded: w.DateAdded,
	}
	if hasURL {
		n.Kind = KindBookmark
		n.URL = *w.URL
		return n, nil
	}

	n.Kind = KindFolder
	n.Children = make([]Node, 0, len(*w.Children))
	for _, cw := range *w.Children {
		child, err := fromWire(cw)
		if err != nil {
			return Node{}, err
		}
		n.Children = append(n.Children, child)
	}
	return n, nil
}

// DecodeTree parses a JSON array of nodes. An empty or whitespace-only input
// yields an empty tree.
func DecodeTree(data []byte) ([]Node, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return []Node{}, nil
	}
	var nodes []Node
	if err := json.Unmarshal(data, &nodes); err != nil {
		return nil, err
	}
	if nodes == nil {
		nodes = []Node{}
	}
	return nodes, nil
}

// EncodeTree renders a tree as indented JSON.
func EncodeTree(nodes []Node) ([]byte, error) {
	if nodes == nil {
		nodes = []Node{}
	}
	return json.MarshalIndent(nodes, "", "  ")
}
