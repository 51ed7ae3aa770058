package tree

import (
	"iter"
	"slices"

	"github.com/cockroachdb/errors"
)

// ListStorage implements NodeStorage as an ordered sequence. Lookup by id is
// a linear scan; the sequence keeps insertion and explicit index order.
type ListStorage struct {
	nodes []*Node
}

// NewListStorage creates an empty list storage
func NewListStorage() *ListStorage {
	return &ListStorage{
		nodes: make([]*Node, 0),
	}
}

func (s *ListStorage) indexOf(id string) int {
	return slices.IndexFunc(s.nodes, func(n *Node) bool {
		return n.ID() == id
	})
}

// Exists reports whether a node with the given id is stored
func (s *ListStorage) Exists(id string) bool {
	return s.indexOf(id) >= 0
}

// Find retrieves the first node with the given id
func (s *ListStorage) Find(id string) (*Node, error) {
	i := s.indexOf(id)
	if i < 0 {
		return nil, nodeNotFound(id)
	}
	return s.nodes[i], nil
}

// Add inserts the node at index, or appends when no index is given
func (s *ListStorage) Add(node *Node, index ...int) error {
	if len(index) == 0 {
		s.nodes = append(s.nodes, node)
		return nil
	}

	i := index[0]
	if i < 0 || i > len(s.nodes) {
		return errors.Wrapf(ErrIndexOutOfRange, "index %d not in [0, %d]", i, len(s.nodes))
	}
	s.nodes = slices.Insert(s.nodes, i, node)
	return nil
}

// Remove deletes the first node with the given id
func (s *ListStorage) Remove(id string) error {
	i := s.indexOf(id)
	if i < 0 {
		return nodeNotFound(id)
	}
	s.nodes = slices.Delete(s.nodes, i, i+1)
	return nil
}

// At returns the node stored at index i
func (s *ListStorage) At(i int) (*Node, error) {
	if i < 0 || i >= len(s.nodes) {
		return nil, errors.Wrapf(ErrIndexOutOfRange, "index %d not in [0, %d)", i, len(s.nodes))
	}
	return s.nodes[i], nil
}

// All returns a lazy sequence over the stored nodes in order
func (s *ListStorage) All() iter.Seq[*Node] {
	return slices.Values(s.nodes)
}

// Nodes returns a snapshot of the stored nodes in order
func (s *ListStorage) Nodes() []*Node {
	return slices.Clone(s.nodes)
}

// Len returns the number of stored nodes
func (s *ListStorage) Len() int {
	return len(s.nodes)
}
