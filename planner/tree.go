package planner

import (
	"fmt"
	"math"
)

// NoParent marks the root node
const NoParent = -1

// NearestIndex selects how Tree.Nearest is answered
type NearestIndex string

const (
	// NearestLinear scans every node. This is the default.
	NearestLinear NearestIndex = "linear"
	// NearestRTree keeps an R-tree over node positions.
	NearestRTree NearestIndex = "rtree"
)

func (k NearestIndex) validate() error {
	switch k {
	case NearestLinear, NearestRTree:
		return nil
	}
	return fmt.Errorf("%w: unknown nearest index %q", ErrInvalidConfig, string(k))
}

// Node is a tree vertex. Parent is an index into the owning Tree.
type Node struct {
	Position Point `json:"position"`
	Parent   int   `json:"parent"`
}

// IsRoot reports whether the node has no parent
func (n Node) IsRoot() bool {
	return n.Parent == NoParent
}

// Edge connects a parent position to a child position
type Edge struct {
	Parent Point `json:"parent"`
	Child  Point `json:"child"`
}

// Tree is an append-only node store. A node's index is its insertion order,
// so every parent index is smaller than its child's index.
type Tree struct {
	nodes []Node
	index *nodeIndex
}

// NewTree creates an empty tree answering Nearest with the given strategy.
// An empty kind selects NearestLinear.
func NewTree(kind NearestIndex) *Tree {
	t := &Tree{}
	if kind == NearestRTree {
		t.index = newNodeIndex()
	}
	return t
}

// Insert appends a node and returns its index. NoParent is only accepted
// for the first node.
func (t *Tree) Insert(parent int, pos Point) (int, error) {
	idx := len(t.nodes)
	if parent == NoParent {
		if idx != 0 {
			return -1, fmt.Errorf("%w: tree already has a root", ErrInvalidReference)
		}
	} else if parent < 0 || parent >= idx {
		return -1, fmt.Errorf("%w: parent %d with %d nodes", ErrInvalidReference, parent, idx)
	}

	t.nodes = append(t.nodes, Node{Position: pos, Parent: parent})
	if t.index != nil {
		t.index.insert(idx, pos)
	}
	return idx, nil
}

// Nearest returns the index of the node closest to q, or -1 for an empty
// tree. Ties go to the earliest inserted node.
func (t *Tree) Nearest(q Point) int {
	if t.index != nil {
		return t.index.nearest(q)
	}

	if len(t.nodes) == 0 {
		return -1
	}

	nearestID := 0
	minDist := q.Distance(t.nodes[0].Position)
	for i := 1; i < len(t.nodes); i++ {
		dist := q.Distance(t.nodes[i].Position)
		if dist < minDist {
			minDist = dist
			nearestID = i
		}
	}
	return nearestID
}

// Size returns the number of nodes
func (t *Tree) Size() int {
	return len(t.nodes)
}

// Get returns the node at index i
func (t *Tree) Get(i int) (Node, error) {
	if i < 0 || i >= len(t.nodes) {
		return Node{}, fmt.Errorf("%w: index %d with %d nodes", ErrInvalidReference, i, len(t.nodes))
	}
	return t.nodes[i], nil
}

// Nodes returns a copy of all nodes in insertion order
func (t *Tree) Nodes() []Node {
	return append([]Node(nil), t.nodes...)
}

// Edges returns one edge per non-root node, in insertion order
func (t *Tree) Edges() []Edge {
	return edgesOf(t.nodes)
}

// Path walks parent links from terminal back to the root and returns the
// positions ordered root first.
func (t *Tree) Path(terminal int) ([]Point, error) {
	return pathOf(t.nodes, terminal)
}

func edgesOf(nodes []Node) []Edge {
	if len(nodes) < 2 {
		return []Edge{}
	}
	edges := make([]Edge, 0, len(nodes)-1)
	for _, n := range nodes {
		if n.IsRoot() || n.Parent < 0 || n.Parent >= len(nodes) {
			continue
		}
		edges = append(edges, Edge{Parent: nodes[n.Parent].Position, Child: n.Position})
	}
	return edges
}

func pathOf(nodes []Node, terminal int) ([]Point, error) {
	if terminal < 0 || terminal >= len(nodes) {
		return nil, fmt.Errorf("%w: index %d with %d nodes", ErrInvalidReference, terminal, len(nodes))
	}

	path := []Point{}
	current := terminal
	for steps := 0; ; steps++ {
		if steps >= len(nodes) {
			return nil, fmt.Errorf("%w: cycle through node %d", ErrMalformedTree, terminal)
		}
		node := nodes[current]
		path = append(path, node.Position)
		if node.IsRoot() {
			break
		}
		if node.Parent < 0 || node.Parent >= current {
			return nil, fmt.Errorf("%w: node %d has parent %d", ErrMalformedTree, current, node.Parent)
		}
		current = node.Parent
	}

	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path, nil
}

// minDistance returns the smallest distance from q to any node
func minDistance(nodes []Node, q Point) float64 {
	best := math.Inf(1)
	for _, n := range nodes {
		best = math.Min(best, q.Distance(n.Position))
	}
	return best
}
