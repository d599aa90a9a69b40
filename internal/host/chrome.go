package host

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/nikbrunner/bmsync/internal/model"
	"github.com/nikbrunner/bmsync/internal/storage"
)

// Chrome stores timestamps as microseconds since 1601-01-01 UTC.
const windowsEpochOffsetMicros = 11644473600000000

// ChromeStore reads and writes a Chromium profile "Bookmarks" file.
// Every mutation rewrites the file; the browser should not be running, or
// it will overwrite the changes on exit.
type ChromeStore struct {
	mu   sync.Mutex
	path string
	log  logrus.FieldLogger
	now  func() time.Time
}

// NewChromeStore creates a store for the given Bookmarks file.
func NewChromeStore(path string, log logrus.FieldLogger) *ChromeStore {
	return &ChromeStore{
		path: path,
		log:  log.WithField("bookmarks_file", path),
		now:  time.Now,
	}
}

// Path returns the Bookmarks file path.
func (s *ChromeStore) Path() string {
	return s.path
}

type chromeNode struct {
	Children     []chromeNode    `json:"children,omitempty"`
	DateAdded    string          `json:"date_added,omitempty"`
	DateLastUsed string          `json:"date_last_used,omitempty"`
	DateModified string          `json:"date_modified,omitempty"`
	GUID         string          `json:"guid,omitempty"`
	ID           string          `json:"id"`
	MetaInfo     json.RawMessage `json:"meta_info,omitempty"`
	Name         string          `json:"name"`
	Type         string          `json:"type"`
	URL          string          `json:"url,omitempty"`
}

// MarshalJSON always writes a children array for folders, even when empty.
func (n chromeNode) MarshalJSON() ([]byte, error) {
	type alias chromeNode
	out := struct {
		alias
		Children *[]chromeNode `json:"children,omitempty"`
	}{alias: alias(n)}
	if n.Type == "folder" {
		children := n.Children
		if children == nil {
			children = []chromeNode{}
		}
		out.Children = &children
	}
	return json.Marshal(out)
}

type chromeRoots struct {
	BookmarkBar chromeNode `json:"bookmark_bar"`
	Other       chromeNode `json:"other"`
	Synced      chromeNode `json:"synced"`
}

// chromeDoc keeps unknown top-level keys so they survive a rewrite.
type chromeDoc struct {
	extra map[string]json.RawMessage
	roots chromeRoots
}

func (d *chromeDoc) rootNodes() []*chromeNode {
	return []*chromeNode{&d.roots.BookmarkBar, &d.roots.Other, &d.roots.Synced}
}

func emptyDoc(now time.Time) *chromeDoc {
	stamp := toChromeTime(now)
	folder := func(id, name string) chromeNode {
		return chromeNode{ID: id, GUID: uuid.NewString(), Name: name, Type: "folder", DateAdded: stamp, DateModified: stamp, Children: []chromeNode{}}
	}
	return &chromeDoc{
		extra: map[string]json.RawMessage{"version": json.RawMessage("1")},
		roots: chromeRoots{
			BookmarkBar: folder(BarID, "Bookmarks bar"),
			Other:       folder(OtherID, "Other bookmarks"),
			Synced:      folder(MobileID, "Mobile bookmarks"),
		},
	}
}

func (s *ChromeStore) read() (*chromeDoc, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			s.log.Debug("bookmarks file missing, starting from empty roots")
			return emptyDoc(s.now()), nil
		}
		return nil, err
	}

	doc := &chromeDoc{}
	if err := json.Unmarshal(data, &doc.extra); err != nil {
		return nil, fmt.Errorf("parse %s: %w", s.path, err)
	}
	rawRoots, ok := doc.extra["roots"]
	if !ok {
		return nil, fmt.Errorf("parse %s: no roots", s.path)
	}
	if err := json.Unmarshal(rawRoots, &doc.roots); err != nil {
		return nil, fmt.Errorf("parse %s roots: %w", s.path, err)
	}
	delete(doc.extra, "roots")
	// The checksum no longer matches after a rewrite; Chrome recomputes it.
	delete(doc.extra, "checksum")
	return doc, nil
}

func (s *ChromeStore) write(doc *chromeDoc) error {
	out := make(map[string]any, len(doc.extra)+1)
	for k, v := range doc.extra {
		out[k] = v
	}
	out["roots"] = doc.roots

	data, err := json.MarshalIndent(out, "", "   ")
	if err != nil {
		return err
	}
	return storage.WriteFileAtomic(s.path, data, 0600)
}

// GetTree returns the synthetic root with the three permanent folders.
func (s *ChromeStore) GetTree(ctx context.Context) ([]model.Node, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.read()
	if err != nil {
		return nil, err
	}

	root := model.Node{Kind: model.KindFolder, ID: RootID, Children: make([]model.Node, 0, 3)}
	for _, r := range doc.rootNodes() {
		root.Children = append(root.Children, toModel(*r))
	}
	return []model.Node{root}, nil
}

// Create appends a bookmark (url non-nil) or folder to parentID.
func (s *ChromeStore) Create(ctx context.Context, parentID, title string, url *string) (model.Node, error) {
	if err := ctx.Err(); err != nil {
		return model.Node{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.read()
	if err != nil {
		return model.Node{}, err
	}
	if parentID == RootID {
		return model.Node{}, fmt.Errorf("%w: cannot create under root", ErrPermanentNode)
	}
	parent := findChrome(doc.rootNodes(), parentID)
	if parent == nil {
		return model.Node{}, fmt.Errorf("%w: parent %q", model.ErrNotFound, parentID)
	}
	if parent.Type != "folder" {
		return model.Node{}, fmt.Errorf("%w: %q", ErrNotFolder, parentID)
	}

	stamp := toChromeTime(s.now())
	n := chromeNode{
		ID:        strconv.FormatInt(maxID(doc.rootNodes())+1, 10),
		GUID:      uuid.NewString(),
		Name:      title,
		DateAdded: stamp,
	}
	if url != nil {
		n.Type = "url"
		n.URL = *url
	} else {
		n.Type = "folder"
		n.DateModified = stamp
		n.Children = []chromeNode{}
	}
	parent.Children = append(parent.Children, n)
	parent.DateModified = stamp

	if err := s.write(doc); err != nil {
		return model.Node{}, err
	}
	s.log.WithFields(logrus.Fields{"id": n.ID, "parent": parentID}).Debug("created host node")
	return toModel(n), nil
}

// RemoveSubtree deletes a node and everything below it.
func (s *ChromeStore) RemoveSubtree(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if isPermanent(id) {
		return fmt.Errorf("%w: %q", ErrPermanentNode, id)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.read()
	if err != nil {
		return err
	}
	if !removeChrome(doc.rootNodes(), id) {
		return fmt.Errorf("%w: %q", model.ErrNotFound, id)
	}
	if err := s.write(doc); err != nil {
		return err
	}
	s.log.WithField("id", id).Debug("removed host subtree")
	return nil
}

func findChrome(nodes []*chromeNode, id string) *chromeNode {
	for _, n := range nodes {
		if n.ID == id {
			return n
		}
		children := make([]*chromeNode, len(n.Children))
		for i := range n.Children {
			children[i] = &n.Children[i]
		}
		if found := findChrome(children, id); found != nil {
			return found
		}
	}
	return nil
}

func removeChrome(nodes []*chromeNode, id string) bool {
	for _, n := range nodes {
		for i := range n.Children {
			if n.Children[i].ID == id {
				n.Children = append(n.Children[:i], n.Children[i+1:]...)
				return true
			}
		}
		children := make([]*chromeNode, len(n.Children))
		for i := range n.Children {
			children[i] = &n.Children[i]
		}
		if removeChrome(children, id) {
			return true
		}
	}
	return false
}

func maxID(nodes []*chromeNode) int64 {
	var highest int64
	for _, n := range nodes {
		if v, err := strconv.ParseInt(n.ID, 10, 64); err == nil && v > highest {
			highest = v
		}
		for i := range n.Children {
			if v := maxID([]*chromeNode{&n.Children[i]}); v > highest {
				highest = v
			}
		}
	}
	return highest
}

func toModel(n chromeNode) model.Node {
	out := model.Node{ID: n.ID, Title: n.Name, DateAdded: fromChromeTime(n.DateAdded)}
	if n.Type != "folder" {
		out.Kind = model.KindBookmark
		out.URL = n.URL
		return out
	}
	out.Kind = model.KindFolder
	out.Children = make([]model.Node, 0, len(n.Children))
	for _, c := range n.Children {
		out.Children = append(out.Children, toModel(c))
	}
	return out
}

func toChromeTime(t time.Time) string {
	return strconv.FormatInt(t.UnixMicro()+windowsEpochOffsetMicros, 10)
}

// fromChromeTime converts a Chrome timestamp to epoch millis; zero or
// unparsable values are unknown.
func fromChromeTime(s string) *int64 {
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil || v <= 0 {
		return nil
	}
	ms := (v - windowsEpochOffsetMicros) / 1000
	return &ms
}
