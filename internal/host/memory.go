package host

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/nikbrunner/bmsync/internal/model"
)

// MemoryStore is an in-memory host with the same permanent layout as
// ChromeStore.
type MemoryStore struct {
	mu   sync.Mutex
	root model.Node
	next int64
	now  func() time.Time
}

// NewMemoryStore returns a store with empty permanent folders.
func NewMemoryStore() *MemoryStore {
	folder := func(id, title string) model.Node {
		return model.Node{Kind: model.KindFolder, ID: id, Title: title, Children: []model.Node{}}
	}
	return &MemoryStore{
		root: model.Node{Kind: model.KindFolder, ID: RootID, Children: []model.Node{
			folder(BarID, "Bookmarks bar"),
			folder(OtherID, "Other bookmarks"),
			folder(MobileID, "Mobile bookmarks"),
		}},
		next: 4,
		now:  time.Now,
	}
}

// NewMemoryStoreFrom snapshots a tree as returned by GetTree, so changes
// can be previewed without touching the real host.
func NewMemoryStoreFrom(tree []model.Node) (*MemoryStore, error) {
	if len(tree) != 1 || tree[0].ID != RootID || !tree[0].IsFolder() {
		return nil, fmt.Errorf("host tree must be a single root folder with id %q", RootID)
	}
	s := &MemoryStore{root: tree[0].Clone(), now: time.Now}
	model.Walk(s.root.Children, func(n *model.Node, _ []*model.Node) bool {
		if v, err := strconv.ParseInt(n.ID, 10, 64); err == nil && v >= s.next {
			s.next = v + 1
		}
		return true
	})
	if s.next < 4 {
		s.next = 4
	}
	return s, nil
}

// GetTree returns a copy of the whole tree.
func (s *MemoryStore) GetTree(ctx context.Context) ([]model.Node, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return []model.Node{s.root.Clone()}, nil
}

// Create appends a bookmark (url non-nil) or folder to parentID.
func (s *MemoryStore) Create(ctx context.Context, parentID, title string, url *string) (model.Node, error) {
	if err := ctx.Err(); err != nil {
		return model.Node{}, err
	}
	if parentID == RootID {
		return model.Node{}, fmt.Errorf("%w: cannot create under root", ErrPermanentNode)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	parent, err := model.Find(s.root.Children, parentID)
	if err != nil {
		return model.Node{}, err
	}
	if !parent.IsFolder() {
		return model.Node{}, fmt.Errorf("%w: %q", ErrNotFolder, parentID)
	}

	n := model.Node{
		ID:        strconv.FormatInt(s.next, 10),
		Title:     title,
		DateAdded: model.Millis(s.now()),
	}
	s.next++
	if url != nil {
		n.Kind = model.KindBookmark
		n.URL = *url
	} else {
		n.Kind = model.KindFolder
		n.Children = []model.Node{}
	}
	parent.Children = append(parent.Children, n)
	return n.Clone(), nil
}

// RemoveSubtree deletes a node and everything below it.
func (s *MemoryStore) RemoveSubtree(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if isPermanent(id) {
		return fmt.Errorf("%w: %q", ErrPermanentNode, id)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if !removeNode(&s.root, id) {
		return fmt.Errorf("%w: %q", model.ErrNotFound, id)
	}
	return nil
}

func removeNode(parent *model.Node, id string) bool {
	for i := range parent.Children {
		if parent.Children[i].ID == id {
			parent.Children = append(parent.Children[:i], parent.Children[i+1:]...)
			return true
		}
		if parent.Children[i].IsFolder() && removeNode(&parent.Children[i], id) {
			return true
		}
	}
	return false
}
