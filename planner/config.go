package planner

import "fmt"

// Bounds is the size of the planning plane. The plane spans [0, Width] x [0, Height].
type Bounds struct {
	Width  float64 `json:"width" yaml:"width"`
	Height float64 `json:"height" yaml:"height"`
}

// Contains reports whether p lies in the plane, edges included
func (b Bounds) Contains(p Point) bool {
	return p.X >= 0 && p.X <= b.Width && p.Y >= 0 && p.Y <= b.Height
}

// Config holds every input of a planning run
type Config struct {
	Bounds        Bounds          `json:"bounds" yaml:"bounds"`
	StepSize      float64         `json:"stepSize" yaml:"stepSize"`
	GoalRadius    float64         `json:"goalRadius" yaml:"goalRadius"`
	Start         Point           `json:"start" yaml:"start"`
	Goal          Point           `json:"goal" yaml:"goal"`
	Obstacles     []Obstacle      `json:"obstacles" yaml:"obstacles"`
	MaxIterations int             `json:"maxIterations" yaml:"maxIterations"`
	Seed          int64           `json:"seed" yaml:"seed"`
	// RunFullBudget keeps sampling after the goal is reached. By default the
	// run stops at the first node within GoalRadius.
	RunFullBudget bool            `json:"runFullBudget,omitempty" yaml:"runFullBudget,omitempty"`
	Collision     CollisionPolicy `json:"collision,omitempty" yaml:"collision,omitempty"`
	NearestIndex  NearestIndex    `json:"nearestIndex,omitempty" yaml:"nearestIndex,omitempty"`
}

// DefaultConfig returns a 640x480 scene with four obstacles
func DefaultConfig() Config {
	return Config{
		Bounds:     Bounds{Width: 640, Height: 480},
		StepSize:   7.0,
		GoalRadius: 5.0,
		Start:      Point{X: 320, Y: 240},
		Goal:       Point{X: 500, Y: 400},
		Obstacles: []Obstacle{
			Rect(150, 250, 30, 40),
			Rect(500, 250, 40, 30),
			Rect(300, 350, 20, 30),
			Rect(350, 150, 60, 40),
		},
		MaxIterations: 20000,
		Seed:          1,
		Collision:     PolicySupercover,
		NearestIndex:  NearestLinear,
	}
}

// Normalize returns c with the optional enum fields filled in
func (c Config) Normalize() Config {
	if c.Collision == "" {
		c.Collision = PolicySupercover
	}
	if c.NearestIndex == "" {
		c.NearestIndex = NearestLinear
	}
	return c
}

// Validate checks the config. Every failure wraps ErrInvalidConfig.
func (c Config) Validate() error {
	c = c.Normalize()

	if !(c.Bounds.Width > 0) || !(c.Bounds.Height > 0) {
		return fmt.Errorf("%w: bounds must be positive, got %vx%v", ErrInvalidConfig, c.Bounds.Width, c.Bounds.Height)
	}
	if !(c.StepSize > 0) {
		return fmt.Errorf("%w: step size must be positive, got %v", ErrInvalidConfig, c.StepSize)
	}
	if !(c.GoalRadius > 0) {
		return fmt.Errorf("%w: goal radius must be positive, got %v", ErrInvalidConfig, c.GoalRadius)
	}
	if c.MaxIterations < 0 {
		return fmt.Errorf("%w: max iterations must not be negative, got %d", ErrInvalidConfig, c.MaxIterations)
	}
	if !c.Bounds.Contains(c.Start) {
		return fmt.Errorf("%w: start %v outside bounds", ErrInvalidConfig, c.Start)
	}
	if !c.Bounds.Contains(c.Goal) {
		return fmt.Errorf("%w: goal %v outside bounds", ErrInvalidConfig, c.Goal)
	}
	for _, o := range c.Obstacles {
		if err := o.validate(); err != nil {
			return err
		}
	}
	if err := c.Collision.validate(); err != nil {
		return err
	}
	return c.NearestIndex.validate()
}
