package tree

import (
	"slices"

	"github.com/cockroachdb/errors"
)

// RootNodeID is the reserved id of the root node
const RootNodeID = "root"

// Tree is a mutable tree of uniquely identified nodes. It owns the root node
// and the NodeStorage holding every node, and is the only entry point for
// structural changes. A Tree is not safe for concurrent use.
type Tree struct {
	storage NodeStorage
	root    *Node
}

// New creates a tree backed by storage. A nil storage uses a MapStorage.
// Returns:
//   - ErrStorageNotEmpty if storage already holds nodes
//   - any error from storing the root node
func New(storage NodeStorage) (*Tree, error) {
	if storage == nil {
		storage = NewMapStorage()
	}
	if n := storage.Len(); n != 0 {
		return nil, errors.Wrapf(ErrStorageNotEmpty, "storage holds %d nodes", n)
	}

	root := NewNode(RootNodeID, nil)
	if err := storage.Add(root); err != nil {
		return nil, errors.Wrap(err, "storing root node")
	}

	return &Tree{
		storage: storage,
		root:    root,
	}, nil
}

// Root returns the root node
func (t *Tree) Root() *Node { return t.root }

// Len returns the number of nodes in the tree, root included
func (t *Tree) Len() int { return t.storage.Len() }

// Nodes returns a snapshot of every node in the tree
func (t *Tree) Nodes() []*Node { return t.storage.Nodes() }

// NodeExists reports whether a node with id is in the tree
func (t *Tree) NodeExists(id string) bool {
	return t.storage.Exists(id)
}

// FindNode retrieves the node with id
func (t *Tree) FindNode(id string) (*Node, error) {
	return t.storage.Find(id)
}

type createOptions struct {
	parentID *string
	data     any
	position *int
}

// CreateOption configures CreateNode
type CreateOption func(*createOptions)

// WithParent attaches the new node beneath parentID instead of the root
func WithParent(parentID string) CreateOption {
	return func(o *createOptions) { o.parentID = &parentID }
}

// WithData sets the new node's payload
func WithData(data any) CreateOption {
	return func(o *createOptions) { o.data = data }
}

// WithPosition inserts the new node at position among its siblings
func WithPosition(position int) CreateOption {
	return func(o *createOptions) { o.position = &position }
}

// CreateNode creates a node with id beneath the root, or beneath the parent
// given by WithParent.
// Returns:
//   - The new node
//   - ErrDuplicateNode if id is already in use
//   - ErrNodeNotFound if the parent does not exist
func (t *Tree) CreateNode(id string, opts ...CreateOption) (*Node, error) {
	var o createOptions
	for _, opt := range opts {
		opt(&o)
	}

	if t.storage.Exists(id) {
		return nil, errors.Wrapf(ErrDuplicateNode, "id %q is already in use", id)
	}

	parent := t.root
	if o.parentID != nil {
		p, err := t.storage.Find(*o.parentID)
		if err != nil {
			return nil, err
		}
		parent = p
	}

	node := NewNode(id, parent)
	if o.position != nil {
		node.SetPosition(*o.position)
	}
	node.SetData(o.data)

	if err := t.storage.Add(node); err != nil {
		return nil, err
	}
	parent.AddChild(node)

	return node, nil
}

// RemoveNode removes the node with id and its whole subtree. Descendants are
// removed before their ancestors.
// Returns:
//   - ErrNodeNotFound if id does not exist
//   - ErrOperationNotAllowed if id is the root
func (t *Tree) RemoveNode(id string) error {
	_, err := t.removeNode(id)
	return err
}

// RemoveSubtree behaves like RemoveNode and also returns the removed ids in
// deletion order.
func (t *Tree) RemoveSubtree(id string) ([]string, error) {
	return t.removeNode(id)
}

func (t *Tree) removeNode(id string) ([]string, error) {
	node, err := t.storage.Find(id)
	if err != nil {
		return nil, err
	}
	if err := assertNotRoot(node); err != nil {
		return nil, err
	}

	order := postOrder(node)
	removed := make([]string, 0, len(order))
	for _, n := range order {
		if err := t.detach(n); err != nil {
			return removed, err
		}
		if err := t.storage.Remove(n.ID()); err != nil {
			return removed, err
		}
		removed = append(removed, n.ID())
	}
	return removed, nil
}

// MoveNode re-parents the node with id beneath newParentID, keeping its
// subtree intact. The node is inserted using its stored position hint.
// Returns:
//   - ErrNodeNotFound if either id does not exist
//   - ErrOperationNotAllowed if id is the root
//   - ErrCyclicMove if newParentID is the node itself or a descendant
func (t *Tree) MoveNode(id, newParentID string) error {
	node, err := t.storage.Find(id)
	if err != nil {
		return err
	}
	if err := assertNotRoot(node); err != nil {
		return err
	}

	newParent, err := t.storage.Find(newParentID)
	if err != nil {
		return err
	}
	for p := newParent; p != nil; p = p.Parent() {
		if p == node {
			return errors.Wrapf(ErrCyclicMove, "cannot move %q beneath %q", id, newParentID)
		}
	}

	if err := t.detach(node); err != nil {
		return err
	}
	newParent.AddChild(node)
	node.SetParent(newParent)

	return nil
}

// detach removes the node from its parent's child list without touching
// storage
func (t *Tree) detach(node *Node) error {
	if err := assertNotRoot(node); err != nil {
		return err
	}
	node.Parent().RemoveChild(node)
	return nil
}

// Walk visits node and its descendants depth first, parents before
// children. Returning false from fn skips the node's subtree.
func Walk(node *Node, fn func(n *Node, depth int) bool) {
	type frame struct {
		node  *Node
		depth int
	}
	stack := []frame{{node, 0}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if !fn(f.node, f.depth) {
			continue
		}
		children := f.node.Children()
		for i := len(children) - 1; i >= 0; i-- {
			stack = append(stack, frame{children[i], f.depth + 1})
		}
	}
}

// postOrder lists node's subtree with every child ahead of its parent,
// using an explicit stack so deep trees cannot exhaust the call stack
func postOrder(node *Node) []*Node {
	var order []*Node
	Walk(node, func(n *Node, _ int) bool {
		order = append(order, n)
		return true
	})
	slices.Reverse(order)
	return order
}

func assertNotRoot(node *Node) error {
	if node.IsRoot() {
		return errors.Wrapf(ErrOperationNotAllowed, "could not perform operation on root node %q", node.ID())
	}
	return nil
}
