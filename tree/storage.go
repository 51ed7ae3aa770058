package tree

import "iter"

// NodeStorage defines the lookup contract backing a Tree.
// It owns every node in the tree and resolves identifiers to nodes.
// Implementations do not enforce identifier uniqueness; the Tree rejects
// duplicates before calling Add.
type NodeStorage interface {
	// Exists reports whether a node with the given id is stored.
	Exists(id string) bool

	// Find retrieves a node by its id.
	// Returns:
	//   - The stored node, the same pointer that was added
	//   - ErrNodeNotFound if no node exists with the given id
	Find(id string) (*Node, error)

	// Add stores a node.
	// Parameters:
	//   - node: The node to store
	//   - index: Optional insert position for ordered implementations;
	//     identifier-keyed implementations ignore it
	// Returns:
	//   - ErrIndexOutOfRange if an ordered implementation is given an index
	//     outside [0, Len()]
	Add(node *Node, index ...int) error

	// Remove deletes the node with the given id.
	// Returns:
	//   - ErrNodeNotFound if no node exists with the given id
	Remove(id string) error

	// All returns a lazy sequence over the stored nodes. Mutating the
	// storage while ranging over it is not supported.
	All() iter.Seq[*Node]

	// Nodes returns a snapshot of the stored nodes.
	Nodes() []*Node

	// Len returns the number of stored nodes.
	Len() int
}

// Backend names a NodeStorage implementation
type Backend string

const (
	BackendMap  Backend = "map"
	BackendList Backend = "list"
)

// NewStorage returns an empty NodeStorage for the given backend. Unknown
// backends fall back to the map storage.
func NewStorage(backend Backend) NodeStorage {
	switch backend {
	case BackendList:
		return NewListStorage()
	default:
		return NewMapStorage()
	}
}
