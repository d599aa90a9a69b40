package sync

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/nikbrunner/bmsync/internal/host"
	"github.com/nikbrunner/bmsync/internal/model"
)

// rewriteBar deletes every child of the host bookmarks bar and recreates
// nodes in its place. Nothing is rolled back on failure.
func (s *Syncer) rewriteBar(ctx context.Context, nodes []model.Node, rep *Report) error {
	tree, err := s.host.GetTree(ctx)
	if err != nil {
		return fmt.Errorf("read host bookmarks: %w", err)
	}
	bar, err := model.Find(tree, host.BarID)
	if err != nil {
		return fmt.Errorf("host bookmarks bar: %w", err)
	}

	log := s.log.WithField("op", rep.Operation)

	for _, child := range bar.Children {
		if err := s.host.RemoveSubtree(ctx, child.ID); err != nil {
			if rep.Removed == 0 {
				return fmt.Errorf("clear host bar: %w", err)
			}
			return fmt.Errorf("%w: removed %d of %d: %w", ErrHostPartiallyRewritten, rep.Removed, len(bar.Children), err)
		}
		rep.Removed++
	}

	if err := s.recreate(ctx, host.BarID, nodes, rep); err != nil {
		log.WithError(err).Error("host rewrite interrupted")
		return fmt.Errorf("%w: created %d nodes: %w", ErrHostPartiallyRewritten, rep.Created, err)
	}
	log.WithFields(logrus.Fields{"removed": rep.Removed, "created": rep.Created}).Debug("host bar rewritten")
	return nil
}

func (s *Syncer) recreate(ctx context.Context, parentID string, nodes []model.Node, rep *Report) error {
	for _, n := range nodes {
		var url *string
		if !n.IsFolder() {
			u := n.URL
			url = &u
		}
		created, err := s.host.Create(ctx, parentID, n.Title, url)
		if err != nil {
			return fmt.Errorf("create %q: %w", n.Title, err)
		}
		rep.Created++
		if n.IsFolder() {
			if err := s.recreate(ctx, created.ID, n.Children, rep); err != nil {
				return err
			}
		}
	}
	return nil
}
