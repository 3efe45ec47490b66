package planner

import (
	"math"

	"github.com/dhconnelly/rtreego"
)

const (
	// R-tree fan-out: min 25, max 50 entries per node
	indexMinChildren = 25
	indexMaxChildren = 50

	// half-side of the box stored for a point entry
	pointTolerance = 0.01

	// query boxes are grown by this much on every side so that boxes which
	// only touch still intersect, and rtreego never sees a zero length
	queryPadding = 1e-6
)

// obstacleEntry wraps an obstacle for R-tree storage
type obstacleEntry struct {
	Obstacle Obstacle
	BBox     rtreego.Rect
}

// Bounds implements rtreego.Spatial interface
func (e *obstacleEntry) Bounds() rtreego.Rect {
	return e.BBox
}

// obstacleIndex manages obstacle spatial queries
type obstacleIndex struct {
	tree *rtreego.Rtree
	size int
}

// newObstacleIndex creates a new spatial index over validated obstacles
func newObstacleIndex(obstacles []Obstacle) *obstacleIndex {
	entries := make([]rtreego.Spatial, 0, len(obstacles))
	for _, o := range obstacles {
		bbox, err := rtreego.NewRect(
			rtreego.Point{o.X, o.Y},
			[]float64{o.Width, o.Height},
		)
		if err != nil {
			continue
		}
		entries = append(entries, &obstacleEntry{Obstacle: o, BBox: bbox})
	}

	return &obstacleIndex{
		tree: rtreego.NewTree(2, indexMinChildren, indexMaxChildren, entries...),
		size: len(entries),
	}
}

// QueryRegion returns obstacles that intersect with the given bounding box
func (si *obstacleIndex) QueryRegion(minX, minY, maxX, maxY float64) []Obstacle {
	bbox, err := queryRect(minX, minY, maxX, maxY)
	if err != nil {
		return []Obstacle{}
	}

	results := si.tree.SearchIntersect(bbox)
	obstacles := make([]Obstacle, 0, len(results))
	for _, item := range results {
		obstacles = append(obstacles, item.(*obstacleEntry).Obstacle)
	}
	return obstacles
}

// nodeEntry is a tree node position stored in the R-tree
type nodeEntry struct {
	index int
	pos   Point
}

// Bounds implements rtreego.Spatial interface
func (e *nodeEntry) Bounds() rtreego.Rect {
	return rtreego.Point{e.pos.X, e.pos.Y}.ToRect(pointTolerance)
}

// nodeIndex answers nearest-node queries for a Tree
type nodeIndex struct {
	tree *rtreego.Rtree
}

func newNodeIndex() *nodeIndex {
	return &nodeIndex{tree: rtreego.NewTree(2, indexMinChildren, indexMaxChildren)}
}

func (ni *nodeIndex) insert(index int, pos Point) {
	ni.tree.Insert(&nodeEntry{index: index, pos: pos})
}

// nearest returns the node closest to q, breaking ties by lowest index.
// rtreego measures distance to the entry boxes, so its answer is only used
// to bound an exact window query around q.
func (ni *nodeIndex) nearest(q Point) int {
	candidate := ni.tree.NearestNeighbor(rtreego.Point{q.X, q.Y})
	if candidate == nil {
		return -1
	}

	radius := q.Distance(candidate.(*nodeEntry).pos) + pointTolerance
	window, err := queryRect(q.X-radius, q.Y-radius, q.X+radius, q.Y+radius)
	if err != nil {
		return candidate.(*nodeEntry).index
	}

	best := -1
	bestDist := math.MaxFloat64
	for _, item := range ni.tree.SearchIntersect(window) {
		entry := item.(*nodeEntry)
		d := q.Distance(entry.pos)
		if d < bestDist || (d == bestDist && entry.index < best) {
			best = entry.index
			bestDist = d
		}
	}
	return best
}

// queryRect builds a padded search box
func queryRect(minX, minY, maxX, maxY float64) (rtreego.Rect, error) {
	return rtreego.NewRect(
		rtreego.Point{minX - queryPadding, minY - queryPadding},
		[]float64{maxX - minX + 2*queryPadding, maxY - minY + 2*queryPadding},
	)
}
