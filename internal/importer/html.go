// Package importer reads browser bookmark exports.
package importer

import (
	"io"
	"strconv"
	"strings"
	"time"

	"golang.org/x/net/html"

	"github.com/nikbrunner/bmsync/internal/model"
)

// ParseHTML reads a Netscape bookmark file, the format every browser
// exports. Each H3 becomes a folder that owns the DL following it, each A
// with an HREF becomes a bookmark. Nodes get fresh ids, and ADD_DATE
// (seconds) becomes DateAdded.
func ParseHTML(r io.Reader) ([]model.Node, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, err
	}
	p := &netscapeParser{levels: [][]model.Node{{}}, owner: -1}
	p.visit(doc)
	return p.levels[0], nil
}

// netscapeParser keeps one node list per open DL. A folder is appended to
// its level as soon as its H3 is seen; the DL after it fills its children.
type netscapeParser struct {
	levels [][]model.Node
	// owner is the index of the folder in the current level still waiting
	// for its DL, or -1.
	owner int
}

func (p *netscapeParser) add(n model.Node) {
	top := len(p.levels) - 1
	p.levels[top] = append(p.levels[top], n)
}

func (p *netscapeParser) visit(n *html.Node) {
	if n.Type == html.ElementNode {
		switch strings.ToLower(n.Data) {
		case "h3":
			p.folder(n)
			return
		case "a":
			p.bookmark(n)
			return
		case "dl":
			p.list(n)
			return
		}
	}
	p.children(n)
}

func (p *netscapeParser) children(n *html.Node) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		p.visit(c)
	}
}

func (p *netscapeParser) folder(n *html.Node) {
	p.owner = -1
	title := textOf(n)
	if title == "" {
		return
	}
	f := model.NewFolder(model.NewFolderParams{Title: title})
	f.DateAdded = addDate(n)
	p.add(f)
	p.owner = len(p.levels[len(p.levels)-1]) - 1
}

func (p *netscapeParser) bookmark(n *html.Node) {
	p.owner = -1
	href := attr(n, "href")
	if href == "" {
		return
	}
	title := textOf(n)
	if title == "" {
		title = href
	}
	p.add(model.Node{
		Kind:      model.KindBookmark,
		ID:        model.GenerateUUID(),
		Title:     title,
		URL:       href,
		DateAdded: addDate(n),
	})
}

// list parses a DL. Without a waiting folder its entries join the current
// level, which is how the outermost DL and stray lists are handled.
func (p *netscapeParser) list(n *html.Node) {
	owner := p.owner
	p.owner = -1
	if owner < 0 {
		p.children(n)
		return
	}

	p.levels = append(p.levels, []model.Node{})
	p.children(n)
	contents := p.levels[len(p.levels)-1]
	p.levels = p.levels[:len(p.levels)-1]
	p.levels[len(p.levels)-1][owner].Children = contents
	p.owner = -1
}

func addDate(n *html.Node) *int64 {
	secs, err := strconv.ParseInt(attr(n, "add_date"), 10, 64)
	if err != nil || secs <= 0 {
		return nil
	}
	return model.Millis(time.Unix(secs, 0))
}

func textOf(n *html.Node) string {
	var b strings.Builder
	var collect func(*html.Node)
	collect = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			collect(c)
		}
	}
	collect(n)
	return strings.TrimSpace(b.String())
}

// attr looks up an attribute by name. The html tokenizer lower-cases
// attribute keys already; EqualFold keeps hand-built nodes working too.
func attr(n *html.Node, name string) string {
	for _, a := range n.Attr {
		if strings.EqualFold(a.Key, name) {
			return a.Val
		}
	}
	return ""
}
