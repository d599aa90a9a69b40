package sync

import (
	"context"
	"errors"

	"github.com/nikbrunner/bmsync/internal/gitee"
	"github.com/nikbrunner/bmsync/internal/model"
)

// HostBookmarkStore is the browser's native bookmark store.
type HostBookmarkStore interface {
	// GetTree returns a single synthetic root whose children are the
	// permanent folders, the bookmarks bar first.
	GetTree(ctx context.Context) ([]model.Node, error)
	// Create adds a bookmark when url is non-nil, a folder otherwise.
	Create(ctx context.Context, parentID, title string, url *string) (model.Node, error)
	RemoveSubtree(ctx context.Context, id string) error
}

// RemoteFileStore holds the managed tree as one JSON document.
type RemoteFileStore interface {
	Fetch(ctx context.Context) (gitee.RemoteFile, error)
	// Put fails with gitee.ErrConflict when revision is stale.
	Put(ctx context.Context, content []model.Node, revision string) error
}

// KeyValueConfig persists flat string settings.
type KeyValueConfig interface {
	Get(ctx context.Context, keys ...string) (map[string]string, error)
	Set(ctx context.Context, values map[string]string) error
}

// Snapshot keeps the last managed tree for offline use.
type Snapshot interface {
	Load() ([]model.Node, error)
	Save(tree []model.Node) error
}

var (
	// ErrHostPartiallyRewritten means the host bar was cleared (fully or in
	// part) but not fully recreated. It is never retried automatically.
	ErrHostPartiallyRewritten = errors.New("sync: host bookmarks partially rewritten")

	ErrRemoteNotConfigured = errors.New("sync: remote not configured")
	ErrRemoteRequired      = errors.New("sync: managed tree is not from the remote file, run 'bm sync push' first")
	ErrNotLoaded           = errors.New("sync: managed tree not loaded")
)
