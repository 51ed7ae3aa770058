package tree

import (
	"iter"

	"github.com/cockroachdb/swiss"
)

const defaultMapCapacity = 16

// MapStorage implements NodeStorage with a swiss table keyed by node id.
// Iteration order is unspecified.
type MapStorage struct {
	nodes swiss.Map[string, *Node]
}

// NewMapStorage creates an empty map storage
func NewMapStorage() *MapStorage {
	s := &MapStorage{}
	s.nodes.Init(defaultMapCapacity)
	return s
}

// Exists reports whether a node with the given id is stored
func (s *MapStorage) Exists(id string) bool {
	_, ok := s.nodes.Get(id)
	return ok
}

// Find retrieves a node by id
func (s *MapStorage) Find(id string) (*Node, error) {
	node, ok := s.nodes.Get(id)
	if !ok {
		return nil, nodeNotFound(id)
	}
	return node, nil
}

// Add stores the node under its id, replacing any node with the same id.
// The index is ignored.
func (s *MapStorage) Add(node *Node, _ ...int) error {
	s.nodes.Put(node.ID(), node)
	return nil
}

// Remove deletes the node with the given id
func (s *MapStorage) Remove(id string) error {
	if !s.Exists(id) {
		return nodeNotFound(id)
	}
	s.nodes.Delete(id)
	return nil
}

// All returns a lazy sequence over the stored nodes
func (s *MapStorage) All() iter.Seq[*Node] {
	return func(yield func(*Node) bool) {
		s.nodes.All(func(_ string, node *Node) bool {
			return yield(node)
		})
	}
}

// Nodes returns a snapshot of the stored nodes
func (s *MapStorage) Nodes() []*Node {
	nodes := make([]*Node, 0, s.nodes.Len())
	for node := range s.All() {
		nodes = append(nodes, node)
	}
	return nodes
}

// Len returns the number of stored nodes
func (s *MapStorage) Len() int {
	return s.nodes.Len()
}
