package service

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/ammiranda/idtree/cache"
	"github.com/ammiranda/idtree/models"
	"github.com/ammiranda/idtree/tree"

	"github.com/google/uuid"
)

// TreeService serialises access to a single tree shared by request handlers
// and keeps the snapshot cache and metrics in step with every mutation.
//
// The snapshot cache may be shared with other services, in this process or
// others, so every cache key carries the service's instance token.
type TreeService struct {
	mu       sync.RWMutex
	tree     *tree.Tree
	instance string
	logger   *slog.Logger
}

// New creates a TreeService over a fresh tree backed by storage. Cached
// snapshots left by earlier trees are dropped.
func New(storage tree.NodeStorage, logger *slog.Logger) (*TreeService, error) {
	if logger == nil {
		logger = slog.Default()
	}
	t, err := tree.New(storage)
	if err != nil {
		return nil, err
	}

	instance := uuid.NewString()
	s := &TreeService{
		tree:     t,
		instance: instance,
		logger:   logger.With("component", "tree", "instance", instance),
	}
	cache.InvalidateCache()
	nodesGauge.WithLabelValues(instance).Set(float64(t.Len()))
	return s, nil
}

// Instance returns the token identifying this service's tree
func (s *TreeService) Instance() string { return s.instance }

// cacheKey scopes a subtree root to this service's tree
func (s *TreeService) cacheKey(rootID string) string {
	return s.instance + "/" + rootID
}

func result(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, tree.ErrNodeNotFound):
		return "not_found"
	case errors.Is(err, tree.ErrDuplicateNode):
		return "duplicate"
	case errors.Is(err, tree.ErrOperationNotAllowed):
		return "not_allowed"
	case errors.Is(err, tree.ErrCyclicMove):
		return "cyclic"
	default:
		return "error"
	}
}

// mutated records a finished mutation; callers hold the write lock
func (s *TreeService) mutated(op string, err error) {
	operationsTotal.WithLabelValues(op, result(err)).Inc()
	if err != nil {
		return
	}
	nodesGauge.WithLabelValues(s.instance).Set(float64(s.tree.Len()))
	cache.InvalidateCache()
}

// CreateNode creates a node from a validated request
func (s *TreeService) CreateNode(ctx context.Context, req models.CreateNodeRequest) (*models.Node, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	opts := []tree.CreateOption{tree.WithData(req.Data)}
	if req.ParentID != nil {
		opts = append(opts, tree.WithParent(*req.ParentID))
	}
	if req.Position != nil {
		opts = append(opts, tree.WithPosition(*req.Position))
	}

	node, err := s.tree.CreateNode(req.ID, opts...)
	s.mutated("create", err)
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "created node", "id", node.ID(), "parent", node.Parent().ID())
	return models.FromNode(node), nil
}

// GetNode returns the node with id and its direct children
func (s *TreeService) GetNode(ctx context.Context, id string) (*models.Node, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	node, err := s.tree.FindNode(id)
	if err != nil {
		return nil, err
	}

	m := models.FromNode(node)
	for _, child := range node.Children() {
		m.AddChild(models.FromNode(child))
	}
	return m, nil
}

// NodeExists reports whether a node with id exists
func (s *TreeService) NodeExists(ctx context.Context, id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tree.NodeExists(id)
}

// RemoveNode removes the node with id and its subtree, returning the removed
// ids with descendants ahead of their ancestors
func (s *TreeService) RemoveNode(ctx context.Context, id string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed, err := s.tree.RemoveSubtree(id)
	s.mutated("remove", err)
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "removed node", "id", id, "removed", len(removed))
	return removed, nil
}

// MoveNode re-parents the node with id beneath parentID
func (s *TreeService) MoveNode(ctx context.Context, id, parentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.tree.MoveNode(id, parentID)
	s.mutated("move", err)
	if err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "moved node", "id", id, "parent", parentID)
	return nil
}

// SetData replaces the payload of the node with id
func (s *TreeService) SetData(ctx context.Context, id string, data any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	node, err := s.tree.FindNode(id)
	if err == nil {
		node.SetData(data)
	}
	s.mutated("set_data", err)
	if err != nil {
		return err
	}

	s.logger.DebugContext(ctx, "updated node data", "id", id)
	return nil
}

// Snapshot returns the subtree rooted at rootID, served from the snapshot
// cache when possible
func (s *TreeService) Snapshot(ctx context.Context, rootID string) (*models.Node, error) {
	if rootID == "" {
		rootID = tree.RootNodeID
	}

	// the read lock is held across the cache write so a concurrent
	// mutation cannot invalidate before a stale snapshot is stored
	s.mu.RLock()
	defer s.mu.RUnlock()

	node, err := s.tree.FindNode(rootID)
	if err != nil {
		return nil, err
	}

	key := s.cacheKey(rootID)
	if cached, found := cache.GetTree(key); found {
		snapshotCacheLookups.WithLabelValues("hit").Inc()
		return cached, nil
	}
	snapshotCacheLookups.WithLabelValues("miss").Inc()

	snapshot := models.BuildTree(node)
	cache.SetTree(key, snapshot)
	return snapshot, nil
}

// Len returns the number of nodes in the tree, root included
func (s *TreeService) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tree.Len()
}
