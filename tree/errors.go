package tree

import "github.com/cockroachdb/errors"

// Common errors
var (
	// ErrNodeNotFound is returned when a requested node does not exist
	ErrNodeNotFound = errors.New("node not found")
	// ErrDuplicateNode is returned when a node id is already in use
	ErrDuplicateNode = errors.New("duplicate node")
	// ErrOperationNotAllowed is returned when removing or moving the root node
	ErrOperationNotAllowed = errors.New("operation not allowed")
	// ErrCyclicMove is returned when a node would be moved beneath itself or
	// one of its descendants
	ErrCyclicMove = errors.New("cyclic move")
	// ErrIndexOutOfRange is returned by ordered storage for an insert index
	// outside [0, Len()]
	ErrIndexOutOfRange = errors.New("index out of range")
	// ErrStorageNotEmpty is returned when a tree is created over storage that
	// already holds nodes
	ErrStorageNotEmpty = errors.New("storage not empty")
)

func nodeNotFound(id string) error {
	return errors.Wrapf(ErrNodeNotFound, "could not find node with id %q", id)
}
