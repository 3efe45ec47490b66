package planner

import (
	"fmt"
	"math"

	"github.com/paulmach/orb"
)

// Obstacle is an axis-aligned rectangle. Its bounds are inclusive on all sides.
type Obstacle struct {
	X      float64 `json:"x" yaml:"x"`
	Y      float64 `json:"y" yaml:"y"`
	Width  float64 `json:"width" yaml:"width"`
	Height float64 `json:"height" yaml:"height"`
}

// Rect builds an obstacle from the [x, y, width, height] form
func Rect(x, y, width, height float64) Obstacle {
	return Obstacle{X: x, Y: y, Width: width, Height: height}
}

// Bound returns the obstacle as an orb.Bound
func (o Obstacle) Bound() orb.Bound {
	return orb.Bound{
		Min: orb.Point{o.X, o.Y},
		Max: orb.Point{o.X + o.Width, o.Y + o.Height},
	}
}

// Contains reports whether p lies inside the obstacle, edges included
func (o Obstacle) Contains(p Point) bool {
	return o.Bound().Contains(p.Orb())
}

func (o Obstacle) validate() error {
	if !(o.Width > 0) || !(o.Height > 0) {
		return fmt.Errorf("%w: obstacle %v has non-positive size", ErrInvalidConfig, o)
	}
	for _, v := range []float64{o.X, o.Y, o.Width, o.Height} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: obstacle %v is not finite", ErrInvalidConfig, o)
		}
	}
	return nil
}

// ObstacleFromBound converts an orb.Bound into an obstacle
func ObstacleFromBound(b orb.Bound) Obstacle {
	return Obstacle{
		X:      b.Min.X(),
		Y:      b.Min.Y(),
		Width:  b.Max.X() - b.Min.X(),
		Height: b.Max.Y() - b.Min.Y(),
	}
}
