package planner

import "errors"

var (
	// ErrInvalidConfig is returned when a Config is rejected before a run starts.
	ErrInvalidConfig = errors.New("rrt: invalid config")

	// ErrInvalidReference is returned when a node index does not refer to an inserted node.
	ErrInvalidReference = errors.New("rrt: invalid node reference")

	// ErrMalformedTree signals a cycle or dangling parent found while walking the tree.
	ErrMalformedTree = errors.New("rrt: malformed tree")
)
