package planner

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// Point is a position in the planning plane
type Point struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// Orb converts the point to an orb.Point
func (p Point) Orb() orb.Point {
	return orb.Point{p.X, p.Y}
}

// FromOrb converts an orb.Point back to a Point
func FromOrb(p orb.Point) Point {
	return Point{X: p.X(), Y: p.Y()}
}

// Distance calculates Euclidean distance between two points
func (p Point) Distance(other Point) float64 {
	return planar.Distance(p.Orb(), other.Orb())
}

// Distance is the free-function form of Point.Distance
func Distance(p1, p2 Point) float64 {
	return p1.Distance(p2)
}

// Step moves from `from` toward `toward` by at most eps.
// When the target is closer than eps it is returned unchanged.
func Step(from, toward Point, eps float64) Point {
	if from.Distance(toward) < eps {
		return toward
	}

	theta := math.Atan2(toward.Y-from.Y, toward.X-from.X)
	return Point{
		X: from.X + eps*math.Cos(theta),
		Y: from.Y + eps*math.Sin(theta),
	}
}

// PathLength sums the segment lengths of a polyline
func PathLength(path []Point) float64 {
	var total float64
	for i := 0; i < len(path)-1; i++ {
		total += path[i].Distance(path[i+1])
	}
	return total
}

// LineString converts a polyline to its orb representation
func LineString(path []Point) orb.LineString {
	ls := make(orb.LineString, 0, len(path))
	for _, p := range path {
		ls = append(ls, p.Orb())
	}
	return ls
}
