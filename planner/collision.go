package planner

import (
	"fmt"
	"math"
)

// CollisionPolicy selects how a segment is rasterized into candidate points.
//
// Both policies test integer candidate points against inclusive obstacle
// bounds, so obstacles effectively grow by up to one unit on their upper
// sides.
type CollisionPolicy string

const (
	// PolicySupercover visits every unit cell the segment passes through and
	// tests each cell's lower-left corner. Steep segments cannot skip rows, so
	// a segment crossing the interior of an integer-cornered obstacle is
	// always detected. This is the default.
	PolicySupercover CollisionPolicy = "supercover"

	// PolicyRasterX keeps the x-only rasterization: one candidate per integer
	// x with y from the slope-intercept form. Near-vertical segments can skip
	// rows and miss thin obstacles. Vertical segments iterate y instead.
	PolicyRasterX CollisionPolicy = "rasterx"
)

func (p CollisionPolicy) validate() error {
	switch p {
	case PolicySupercover, PolicyRasterX:
		return nil
	}
	return fmt.Errorf("%w: unknown collision policy %q", ErrInvalidConfig, string(p))
}

// Collides reports whether the segment p1-p2 hits any obstacle, using the
// default policy and a linear scan over the obstacles.
func Collides(p1, p2 Point, obstacles []Obstacle) bool {
	return CollidesWith(PolicySupercover, p1, p2, obstacles)
}

// CollidesWith is Collides with an explicit rasterization policy
func CollidesWith(policy CollisionPolicy, p1, p2 Point, obstacles []Obstacle) bool {
	if len(obstacles) == 0 {
		return false
	}
	if p1 == p2 {
		return anyContains(obstacles, p1)
	}

	return walk(policy, p1, p2, func(c Point) bool {
		return anyContains(obstacles, c)
	})
}

// CollisionChecker tests segments against a fixed obstacle set. It keeps an
// R-tree over the obstacles and only tests those overlapping the candidates'
// bounding box, which gives the same answer as a full scan.
type CollisionChecker struct {
	policy    CollisionPolicy
	obstacles []Obstacle
	index     *obstacleIndex
}

// NewCollisionChecker builds a checker for the given obstacles. An empty
// policy selects PolicySupercover.
func NewCollisionChecker(obstacles []Obstacle, policy CollisionPolicy) *CollisionChecker {
	if policy == "" {
		policy = PolicySupercover
	}
	c := &CollisionChecker{
		policy:    policy,
		obstacles: append([]Obstacle(nil), obstacles...),
	}
	if len(obstacles) > 0 {
		c.index = newObstacleIndex(c.obstacles)
	}
	return c
}

// Policy returns the rasterization policy in use
func (c *CollisionChecker) Policy() CollisionPolicy {
	return c.policy
}

// Collides reports whether the segment p1-p2 hits any obstacle
func (c *CollisionChecker) Collides(p1, p2 Point) bool {
	if c.index == nil {
		return false
	}
	if p1 == p2 {
		return anyContains(c.index.QueryRegion(p1.X, p1.Y, p1.X, p1.Y), p1)
	}

	minX, minY, maxX, maxY := candidateBounds(c.policy, p1, p2)
	nearby := c.index.QueryRegion(minX-1, minY-1, maxX+1, maxY+1)
	if len(nearby) == 0 {
		return false
	}

	return walk(c.policy, p1, p2, func(p Point) bool {
		return anyContains(nearby, p)
	})
}

func anyContains(obstacles []Obstacle, p Point) bool {
	for _, o := range obstacles {
		if o.Contains(p) {
			return true
		}
	}
	return false
}

// walk feeds the candidate points of p1-p2 to hit in order and stops at the
// first one hit accepts.
func walk(policy CollisionPolicy, p1, p2 Point, hit func(Point) bool) bool {
	if policy == PolicyRasterX {
		return rasterX(p1, p2, hit)
	}
	return supercover(p1, p2, hit)
}

// rasterX walks integer x between the endpoints. A vertical segment has no
// slope, so it walks integer y at the fixed x instead.
func rasterX(p1, p2 Point, hit func(Point) bool) bool {
	if p1.X == p2.X {
		x := math.Floor(p1.X)
		minY := math.Floor(math.Min(p1.Y, p2.Y))
		maxY := math.Floor(math.Max(p1.Y, p2.Y))
		for y := minY; y <= maxY; y++ {
			if hit(Point{X: x, Y: y}) {
				return true
			}
		}
		return false
	}

	m, b := slopeIntercept(p1, p2)
	minX := math.Floor(math.Min(p1.X, p2.X))
	maxX := math.Floor(math.Max(p1.X, p2.X))
	for x := minX; x <= maxX; x++ {
		if hit(Point{X: x, Y: math.Floor(m*x + b)}) {
			return true
		}
	}
	return false
}

func slopeIntercept(p1, p2 Point) (m, b float64) {
	m = (p2.Y - p1.Y) / (p2.X - p1.X)
	return m, p2.Y - m*p2.X
}

// supercover is a unit-grid traversal (Amanatides-Woo). When the segment
// passes exactly through a grid corner both side cells are visited.
func supercover(p1, p2 Point, hit func(Point) bool) bool {
	cx, cy := math.Floor(p1.X), math.Floor(p1.Y)
	ex, ey := math.Floor(p2.X), math.Floor(p2.Y)
	dx, dy := p2.X-p1.X, p2.Y-p1.Y

	stepX, tMaxX, tDeltaX := axisSetup(p1.X, cx, dx)
	stepY, tMaxY, tDeltaY := axisSetup(p1.Y, cy, dy)

	if hit(Point{X: cx, Y: cy}) {
		return true
	}

	n := int(math.Abs(ex-cx) + math.Abs(ey-cy))
	for i := 0; i < n; i++ {
		switch {
		case tMaxX < tMaxY:
			cx += stepX
			tMaxX += tDeltaX
		case tMaxY < tMaxX:
			cy += stepY
			tMaxY += tDeltaY
		default:
			if hit(Point{X: cx + stepX, Y: cy}) || hit(Point{X: cx, Y: cy + stepY}) {
				return true
			}
			cx += stepX
			cy += stepY
			tMaxX += tDeltaX
			tMaxY += tDeltaY
			i++
		}
		if hit(Point{X: cx, Y: cy}) {
			return true
		}
	}
	return false
}

// axisSetup returns the cell step, the parameter t of the first cell
// boundary crossing, and the t distance between crossings along one axis.
func axisSetup(start, cell, delta float64) (step, tMax, tDelta float64) {
	switch {
	case delta > 0:
		return 1, (cell + 1 - start) / delta, 1 / delta
	case delta < 0:
		return -1, (start - cell) / -delta, 1 / -delta
	}
	return 0, math.Inf(1), math.Inf(1)
}

// candidateBounds is the box holding every point walk visits for p1-p2.
// Supercover stays within the endpoint cells up to rounding at grid
// corners, which the caller's one-unit margin absorbs.
func candidateBounds(policy CollisionPolicy, p1, p2 Point) (minX, minY, maxX, maxY float64) {
	minX = math.Floor(math.Min(p1.X, p2.X))
	maxX = math.Floor(math.Max(p1.X, p2.X))
	if policy != PolicyRasterX || p1.X == p2.X {
		return minX, math.Floor(math.Min(p1.Y, p2.Y)), maxX, math.Floor(math.Max(p1.Y, p2.Y))
	}

	// the x-walk extrapolates y to the integer columns, past the endpoints
	m, b := slopeIntercept(p1, p2)
	y1, y2 := math.Floor(m*minX+b), math.Floor(m*maxX+b)
	return minX, math.Min(y1, y2), maxX, math.Max(y1, y2)
}
