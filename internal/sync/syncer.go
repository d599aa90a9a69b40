// Package sync moves bookmark trees between the browser host store and the
// remote file.
//
// The remote file holds the managed tree: the host's permanent folders
// ([bar, other, mobile]) including hidden nodes. The host bookmarks bar only
// ever receives the visible part of the managed bar.
package sync

import (
	"context"
	"errors"
	"fmt"
	gosync "sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/nikbrunner/bmsync/internal/gitee"
	"github.com/nikbrunner/bmsync/internal/host"
	"github.com/nikbrunner/bmsync/internal/merge"
	"github.com/nikbrunner/bmsync/internal/model"
	"github.com/nikbrunner/bmsync/internal/search"
	"github.com/nikbrunner/bmsync/internal/stats"
	"github.com/nikbrunner/bmsync/internal/visibility"
)

// Source says where the managed tree was last loaded from.
type Source int

const (
	SourceNone Source = iota
	SourceRemote
	SourceHost
	SourceSnapshot
)

func (s Source) String() string {
	switch s {
	case SourceRemote:
		return "remote"
	case SourceHost:
		return "host"
	case SourceSnapshot:
		return "snapshot"
	}
	return "none"
}

// Strategy selects how push and pull combine the two sides.
type Strategy int

const (
	Overwrite Strategy = iota
	Merge
)

func (s Strategy) String() string {
	if s == Merge {
		return "merge"
	}
	return "overwrite"
}

// Report summarizes a sync operation.
type Report struct {
	Operation string
	Strategy  Strategy
	Merge     merge.Report
	Removed   int // host subtrees removed
	Created   int // host nodes created
	Revision  string
}

// Options configures a Syncer. Host is required; Remote is nil when no
// remote is configured.
type Options struct {
	Host     HostBookmarkStore
	Remote   RemoteFileStore
	Snapshot Snapshot
	Logger   logrus.FieldLogger
	Now      func() time.Time
}

// Syncer owns the managed tree and serializes every operation on it.
type Syncer struct {
	mu       gosync.Mutex
	host     HostBookmarkStore
	remote   RemoteFileStore
	snapshot Snapshot
	log      logrus.FieldLogger
	now      func() time.Time

	tree     []model.Node
	revision string
	source   Source
	// emptyRemote is set when the remote file exists but holds no nodes. The
	// host tree is then the whole managed tree and may be committed at
	// revision.
	emptyRemote bool
}

// NewSyncer creates a Syncer. Call Load before reading the tree.
func NewSyncer(opts Options) (*Syncer, error) {
	if opts.Host == nil {
		return nil, errors.New("sync: host store is required")
	}
	log := opts.Logger
	if log == nil {
		l := logrus.New()
		l.SetLevel(logrus.WarnLevel)
		log = l
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Syncer{
		host:     opts.Host,
		remote:   opts.Remote,
		snapshot: opts.Snapshot,
		log:      log,
		now:      now,
	}, nil
}

// HasRemote reports whether a remote store is configured.
func (s *Syncer) HasRemote() bool {
	return s.remote != nil
}

// Source returns where the current managed tree came from.
func (s *Syncer) Source() Source {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.source
}

// Tree returns a copy of the managed tree.
func (s *Syncer) Tree() []model.Node {
	s.mu.Lock()
	defer s.mu.Unlock()
	return model.CloneTree(s.tree)
}

// Load reads the managed tree from the remote file, falling back to the
// host tree when the remote is unconfigured, empty or unreachable, and then
// to the last snapshot. Only remote trees refresh the snapshot.
func (s *Syncer) Load(ctx context.Context) (Source, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	log := s.log.WithField("op", "load")

	emptyRevision, empty := "", false
	if s.remote != nil {
		file, err := s.remote.Fetch(ctx)
		switch {
		case err == nil && len(file.Content) > 0:
			s.adopt(file.Content, file.Revision)
			log.WithField("revision", file.Revision).Debug("loaded managed tree from remote")
			return s.source, nil
		case err == nil:
			emptyRevision, empty = file.Revision, true
			log.WithField("revision", file.Revision).Debug("remote file is empty, falling back to host")
		default:
			log.WithError(err).Debug("remote unavailable, falling back to host")
		}
	}

	hostTree, hostErr := s.hostRoots(ctx)
	if hostErr == nil {
		s.tree = hostTree
		s.revision = emptyRevision
		s.source = SourceHost
		s.emptyRemote = empty
		log.Debug("loaded managed tree from host")
		return s.source, nil
	}
	log.WithError(hostErr).Debug("host unavailable")

	if s.snapshot != nil {
		tree, err := s.snapshot.Load()
		if err == nil && len(tree) > 0 {
			s.tree = tree
			s.revision = ""
			s.source = SourceSnapshot
			s.emptyRemote = false
			log.Warn("remote and host unavailable, showing last snapshot")
			return s.source, nil
		}
	}
	return SourceNone, fmt.Errorf("load bookmarks: %w", hostErr)
}

// View is the managed tree projected for display.
type View struct {
	Tree    []model.Node
	Folders []model.Node
	Stats   stats.Stats
	Source  Source
}

// View filters the managed tree by mode and search term. Stats always
// describe the full managed tree.
func (s *Syncer) View(mode visibility.Mode, term string) View {
	s.mu.Lock()
	defer s.mu.Unlock()

	filtered := search.Filter(visibility.Apply(mode, s.tree), term)
	return View{
		Tree:    model.CloneTree(filtered),
		Folders: visibility.FolderTree(s.tree, mode),
		Stats:   stats.Compute(s.tree, s.now()),
		Source:  s.source,
	}
}

// Toggle flips the hidden flag of id and its whole subtree, saves the
// managed tree to the remote file and rewrites the host bar with the
// visible part.
func (s *Syncer) Toggle(ctx context.Context, id string) (model.Node, Report, error) {
	return s.changeVisibility(ctx, "toggle", id, func(tree []model.Node) (*model.Node, error) {
		return visibility.Toggle(tree, id)
	})
}

// SetHidden is Toggle with an explicit target state.
func (s *Syncer) SetHidden(ctx context.Context, id string, hidden bool) (model.Node, Report, error) {
	op := "show"
	if hidden {
		op = "hide"
	}
	return s.changeVisibility(ctx, op, id, func(tree []model.Node) (*model.Node, error) {
		return visibility.SetHidden(tree, id, hidden)
	})
}

func (s *Syncer) changeVisibility(ctx context.Context, op, id string, change func([]model.Node) (*model.Node, error)) (model.Node, Report, error) {
	var changed model.Node
	rep, err := s.edit(ctx, op, func(tree []model.Node) ([]model.Node, error) {
		n, err := change(tree)
		if err != nil {
			return nil, err
		}
		changed = n.Clone()
		return tree, nil
	})
	if err == nil {
		s.log.WithFields(logrus.Fields{"op": op, "id": id, "hidden": changed.Hidden}).Debug("visibility changed")
	}
	return changed, rep, err
}

// SetHiddenMany sets the hidden flag of every listed node in a single
// remote commit. Unknown ids fail the whole call before anything is written.
func (s *Syncer) SetHiddenMany(ctx context.Context, ids []string, hidden bool) (Report, error) {
	return s.edit(ctx, "hide-many", func(tree []model.Node) ([]model.Node, error) {
		for _, id := range ids {
			if _, err := visibility.SetHidden(tree, id, hidden); err != nil {
				return nil, err
			}
		}
		return tree, nil
	})
}

// Import merges nodes into the managed bookmarks bar, saves the managed tree
// and rewrites the host bar. Existing entries keep their ids and hidden flags.
func (s *Syncer) Import(ctx context.Context, nodes []model.Node) (Report, error) {
	var mrep merge.Report
	rep, err := s.edit(ctx, "import", func(tree []model.Node) ([]model.Node, error) {
		if len(tree) == 0 || !tree[0].IsFolder() {
			empty := model.NewFolder(model.NewFolderParams{ID: host.BarID, Title: "Bookmarks bar"})
			tree = append([]model.Node{empty}, tree...)
		}
		bar := tree[0].Children
		merged := merge.MergeWithReport(bar, nodes, &mrep)
		// Merging the bar back restores its folder ids and hidden flags.
		tree[0].Children = merge.Merge(merged, bar)
		return tree, nil
	})
	rep.Merge = mrep
	return rep, err
}

// edit applies fn to a copy of the managed tree, commits the result to the
// remote file and rewrites the host bar with its visible part. The tree must
// have been loaded from the remote so hidden nodes are never lost.
func (s *Syncer) edit(ctx context.Context, op string, fn func([]model.Node) ([]model.Node, error)) (Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rep := Report{Operation: op}
	if s.source == SourceNone {
		return rep, ErrNotLoaded
	}
	if s.remote == nil {
		return rep, ErrRemoteNotConfigured
	}
	if s.source != SourceRemote && !s.emptyRemote {
		return rep, ErrRemoteRequired
	}

	next, err := fn(model.CloneTree(s.tree))
	if err != nil {
		return rep, err
	}
	if err := s.commitRemote(ctx, next, s.revision, &rep); err != nil {
		return rep, err
	}
	s.log.WithFields(logrus.Fields{"op": op, "revision": rep.Revision}).Info("managed tree saved")

	err = s.rewriteBar(ctx, visibleBar(next), &rep)
	return rep, err
}

// ApplyToHost rewrites the host bar with the visible part of the managed bar.
func (s *Syncer) ApplyToHost(ctx context.Context) (Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rep := Report{Operation: "apply"}
	if s.source == SourceNone {
		return rep, ErrNotLoaded
	}
	err := s.rewriteBar(ctx, visibleBar(s.tree), &rep)
	return rep, err
}

// Push writes the host tree to the remote file. Merge combines it with the
// current remote content, remote first.
func (s *Syncer) Push(ctx context.Context, strategy Strategy) (Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rep := Report{Operation: "push", Strategy: strategy}
	if s.remote == nil {
		return rep, ErrRemoteNotConfigured
	}

	local, err := s.hostRoots(ctx)
	if err != nil {
		return rep, err
	}

	current, err := s.fetchOrEmpty(ctx)
	if err != nil {
		return rep, err
	}

	content := local
	if strategy == Merge {
		content = merge.MergeWithReport(current.Content, local, &rep.Merge)
	}
	if err := s.commitRemote(ctx, content, current.Revision, &rep); err != nil {
		return rep, err
	}
	s.log.WithFields(logrus.Fields{"op": "push", "strategy": strategy}).Info("pushed host bookmarks")
	return rep, nil
}

// Pull replaces the host bar with the remote bar. Merge combines it with
// the current host bar, host first. Hidden nodes never reach the host.
func (s *Syncer) Pull(ctx context.Context, strategy Strategy) (Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rep := Report{Operation: "pull", Strategy: strategy}
	if s.remote == nil {
		return rep, ErrRemoteNotConfigured
	}

	file, err := s.remote.Fetch(ctx)
	if err != nil {
		return rep, err
	}
	rep.Revision = file.Revision

	nodes := barChildren(file.Content)
	if strategy == Merge {
		local, err := s.hostRoots(ctx)
		if err != nil {
			return rep, err
		}
		nodes = merge.MergeWithReport(barChildren(local), nodes, &rep.Merge)
	}

	s.adopt(file.Content, file.Revision)

	if err := s.rewriteBar(ctx, visibility.FilterVisible(nodes), &rep); err != nil {
		return rep, err
	}
	s.log.WithFields(logrus.Fields{"op": "pull", "strategy": strategy}).Info("pulled remote bookmarks")
	return rep, nil
}

// adopt makes a remote tree the managed tree and refreshes the snapshot.
func (s *Syncer) adopt(tree []model.Node, revision string) {
	s.tree = tree
	s.revision = revision
	s.source = SourceRemote
	s.emptyRemote = false
	if s.snapshot != nil {
		if err := s.snapshot.Save(tree); err != nil {
			s.log.WithError(err).Warn("could not save snapshot")
		}
	}
}

func (s *Syncer) fetchOrEmpty(ctx context.Context) (gitee.RemoteFile, error) {
	file, err := s.remote.Fetch(ctx)
	if errors.Is(err, gitee.ErrFileNotFound) {
		return gitee.RemoteFile{Content: []model.Node{}}, nil
	}
	return file, err
}

// commitRemote writes content at revision and adopts it as the managed tree.
func (s *Syncer) commitRemote(ctx context.Context, content []model.Node, revision string, rep *Report) error {
	if err := s.remote.Put(ctx, content, revision); err != nil {
		return fmt.Errorf("save remote: %w", err)
	}

	// Put does not report the new revision; read it back.
	newRevision := ""
	if file, err := s.remote.Fetch(ctx); err == nil {
		newRevision = file.Revision
	} else {
		s.log.WithError(err).Warn("saved remote but could not read back its revision")
	}
	s.adopt(content, newRevision)
	rep.Revision = newRevision
	return nil
}

// hostRoots returns the host's permanent folders (the root's children).
func (s *Syncer) hostRoots(ctx context.Context) ([]model.Node, error) {
	tree, err := s.host.GetTree(ctx)
	if err != nil {
		return nil, fmt.Errorf("read host bookmarks: %w", err)
	}
	if len(tree) == 0 {
		return []model.Node{}, nil
	}
	roots := tree[0].Children
	if roots == nil {
		roots = []model.Node{}
	}
	return roots, nil
}

// barChildren returns the contents of the first permanent folder.
func barChildren(roots []model.Node) []model.Node {
	if len(roots) == 0 || !roots[0].IsFolder() {
		return []model.Node{}
	}
	return roots[0].Children
}

func visibleBar(roots []model.Node) []model.Node {
	return visibility.FilterVisible(barChildren(roots))
}
