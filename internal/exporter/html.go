package exporter

import (
	"fmt"
	"html"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/nikbrunner/bmsync/internal/model"
)

// Format is an export file format.
type Format string

const (
	FormatHTML Format = "html"
	FormatJSON Format = "json"
)

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatHTML, FormatJSON:
		return f, nil
	case "":
		return FormatHTML, nil
	}
	return "", fmt.Errorf("unknown export format %q (want html or json)", s)
}

// DefaultExportPath returns the default export file path.
// Format: ~/Downloads/bookmarks-export-YYYY-MM-DD.<ext>
func DefaultExportPath(format Format, now time.Time) (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	filename := fmt.Sprintf("bookmarks-export-%s.%s", now.Format("2006-01-02"), format)
	return filepath.Join(home, "Downloads", filename), nil
}

// Export renders the tree in the given format.
func Export(tree []model.Node, format Format) ([]byte, error) {
	switch format {
	case FormatJSON:
		return ExportJSON(tree)
	case FormatHTML, "":
		return []byte(ExportHTML(tree)), nil
	}
	return nil, fmt.Errorf("unknown export format %q", format)
}

// ExportJSON renders the tree in the remote file's JSON shape.
func ExportJSON(tree []model.Node) ([]byte, error) {
	return model.EncodeTree(tree)
}

// ExportHTML exports the tree to Netscape bookmark HTML format.
func ExportHTML(tree []model.Node) string {
	var b strings.Builder

	// Header
	b.WriteString("<!DOCTYPE NETSCAPE-Bookmark-file-1>\n")
	b.WriteString("<META HTTP-EQUIV=\"Content-Type\" CONTENT=\"text/html; charset=UTF-8\">\n")
	b.WriteString("<TITLE>Bookmarks</TITLE>\n")
	b.WriteString("<H1>Bookmarks</H1>\n")
	b.WriteString("<DL><p>\n")

	writeItems(&b, tree, 1)

	// Footer
	b.WriteString("</DL><p>\n")

	return b.String()
}

// writeItems recursively writes nodes in tree order.
func writeItems(b *strings.Builder, nodes []model.Node, indent int) {
	prefix := strings.Repeat("    ", indent)

	for _, n := range nodes {
		if n.IsFolder() {
			fmt.Fprintf(b, "%s<DT><H3%s>%s</H3>\n", prefix, addDate(n), html.EscapeString(n.Title))
			fmt.Fprintf(b, "%s<DL><p>\n", prefix)
			writeItems(b, n.Children, indent+1)
			fmt.Fprintf(b, "%s</DL><p>\n", prefix)
			continue
		}

		fmt.Fprintf(b,
			"%s<DT><A HREF=\"%s\"%s>%s</A>\n",
			prefix,
			html.EscapeString(n.URL),
			addDate(n),
			html.EscapeString(n.Title),
		)
	}
}

func addDate(n model.Node) string {
	if n.DateAdded == nil {
		return ""
	}
	return fmt.Sprintf(" ADD_DATE=\"%d\"", *n.DateAdded/1000)
}
