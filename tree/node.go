package tree

import "slices"

// Node represents a single vertex in the tree. Parent and child links point
// into the owning Tree's storage; a Node never owns its relatives.
type Node struct {
	id       string
	parent   *Node
	children []*Node
	position *int
	data     any
}

// NewNode creates a node with the given id and optional parent
func NewNode(id string, parent *Node) *Node {
	return &Node{
		id:       id,
		parent:   parent,
		children: make([]*Node, 0),
	}
}

// ID returns the node's immutable identifier
func (n *Node) ID() string { return n.id }

// Parent returns the node's parent, or nil for a root node
func (n *Node) Parent() *Node { return n.parent }

// SetParent sets the node's parent without touching either child list
func (n *Node) SetParent(parent *Node) { n.parent = parent }

// IsRoot reports whether the node has no parent
func (n *Node) IsRoot() bool { return n.parent == nil }

// Children returns the ordered child list. The slice is shared with the node
// and must not be modified by the caller.
func (n *Node) Children() []*Node { return n.children }

// Position returns the insertion hint and whether one is set
func (n *Node) Position() (int, bool) {
	if n.position == nil {
		return 0, false
	}
	return *n.position, true
}

// SetPosition sets the insertion hint used the next time the node is added
// to a parent. It is not kept in sync with sibling changes.
func (n *Node) SetPosition(position int) {
	n.position = &position
}

// ClearPosition removes the insertion hint so the node is appended
func (n *Node) ClearPosition() { n.position = nil }

// Data returns the opaque payload
func (n *Node) Data() any { return n.data }

// SetData replaces the opaque payload
func (n *Node) SetData(data any) { n.data = data }

// AddChild adds a child node.
//
// If position is passed it overrides the child's stored position. A child
// with a position is inserted at that index, shifting later siblings down;
// an index past the end appends and a negative index inserts first. A child
// without a position is appended.
func (n *Node) AddChild(child *Node, position ...int) {
	if len(position) > 0 {
		child.SetPosition(position[0])
	}

	pos, ok := child.Position()
	if !ok {
		n.children = append(n.children, child)
		return
	}

	pos = max(0, min(pos, len(n.children)))
	n.children = slices.Insert(n.children, pos, child)
}

// RemoveChild removes the child by identity. It is a no-op if the child is
// not present.
func (n *Node) RemoveChild(child *Node) {
	if i := slices.Index(n.children, child); i >= 0 {
		n.children = slices.Delete(n.children, i, i+1)
	}
}

// HasChild reports whether child is in the node's child list
func (n *Node) HasChild(child *Node) bool {
	return slices.Contains(n.children, child)
}
