package planner

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	zapobserver "go.uber.org/zap/zaptest/observer"
)

type recordingObserver struct {
	edges []Edge
	paths [][]Point
}

func (r *recordingObserver) EdgeAdded(edge Edge)    { r.edges = append(r.edges, edge) }
func (r *recordingObserver) PathFound(path []Point) { r.paths = append(r.paths, path) }

func openConfig() Config {
	cfg := DefaultConfig()
	cfg.Obstacles = nil
	return cfg
}

func TestNew_InvalidConfig(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero step", func(c *Config) { c.StepSize = 0 }},
		{"negative step", func(c *Config) { c.StepSize = -1 }},
		{"NaN step", func(c *Config) { c.StepSize = math.NaN() }},
		{"zero goal radius", func(c *Config) { c.GoalRadius = 0 }},
		{"zero width", func(c *Config) { c.Bounds.Width = 0 }},
		{"negative height", func(c *Config) { c.Bounds.Height = -5 }},
		{"negative budget", func(c *Config) { c.MaxIterations = -1 }},
		{"start outside", func(c *Config) { c.Start = Point{X: -1, Y: 10} }},
		{"goal outside", func(c *Config) { c.Goal = Point{X: 10, Y: 481} }},
		{"flat obstacle", func(c *Config) { c.Obstacles = append(c.Obstacles, Rect(10, 10, 5, 0)) }},
		{"negative obstacle", func(c *Config) { c.Obstacles = append(c.Obstacles, Rect(10, 10, -5, 5)) }},
		{"unknown policy", func(c *Config) { c.Collision = "bresenham" }},
		{"unknown index", func(c *Config) { c.NearestIndex = "kdtree" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)

			p, err := New(cfg)
			assert.ErrorIs(t, err, ErrInvalidConfig)
			assert.Nil(t, p)
		})
	}
}

func TestNew_FillsDefaults(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Collision = ""
	cfg.NearestIndex = ""

	p, err := New(cfg)
	require.NoError(t, err)
	assert.Equal(t, PolicySupercover, p.Config().Collision)
	assert.Equal(t, NearestLinear, p.Config().NearestIndex)
}

func TestRun_StraightLineReachesGoal(t *testing.T) {
	cfg := openConfig()
	cfg.Start = Point{X: 0, Y: 0}
	cfg.Goal = Point{X: 100, Y: 0}
	cfg.StepSize = 7
	cfg.GoalRadius = 5
	cfg.MaxIterations = 1000

	sampler := SamplerFunc(func() Point { return Point{X: 100, Y: 0} })
	obs := &recordingObserver{}

	p, err := New(cfg, WithSampler(sampler), WithObserver(obs))
	require.NoError(t, err)

	res, err := p.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, StatusGoalReached, res.Status)
	assert.LessOrEqual(t, res.Iterations, int(math.Ceil(100.0/7.0)))
	assert.Zero(t, res.Collisions)

	terminal, ok := res.TerminalIndex()
	require.True(t, ok)
	assert.Equal(t, len(res.Nodes)-1, terminal)
	assert.LessOrEqual(t, res.Nodes[terminal].Position.Distance(cfg.Goal), cfg.GoalRadius)

	require.Len(t, res.Path, len(res.Nodes))
	assert.Equal(t, cfg.Start, res.Path[0])
	assert.Equal(t, res.Nodes[terminal].Position, res.Path[len(res.Path)-1])

	assert.Len(t, obs.edges, len(res.Nodes)-1)
	require.Len(t, obs.paths, 1)
	assert.Equal(t, res.Path, obs.paths[0])
}

func TestRun_ConfigLiteralStopsAtGoal(t *testing.T) {
	cfg := Config{
		Bounds:        Bounds{Width: 200, Height: 10},
		StepSize:      7,
		GoalRadius:    5,
		Start:         Point{X: 0, Y: 0},
		Goal:          Point{X: 100, Y: 0},
		MaxIterations: 1000,
	}

	sampler := SamplerFunc(func() Point { return Point{X: 100, Y: 0} })
	p, err := New(cfg, WithSampler(sampler))
	require.NoError(t, err)

	res, err := p.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StatusGoalReached, res.Status)
	assert.LessOrEqual(t, res.Iterations, 15)
	assert.Len(t, res.Nodes, res.Iterations+1)
	assert.Equal(t, len(res.Nodes)-1, res.Terminal)
}

func TestRun_EdgesAvoidObstacle(t *testing.T) {
	obstacle := Rect(200, 200, 40, 80)
	cfg := openConfig()
	cfg.Start = Point{X: 100, Y: 240}
	cfg.Goal = Point{X: 340, Y: 240}
	cfg.Obstacles = []Obstacle{obstacle}
	cfg.MaxIterations = 20000

	for _, kind := range []NearestIndex{NearestLinear, NearestRTree} {
		t.Run(string(kind), func(t *testing.T) {
			cfg.NearestIndex = kind
			p, err := New(cfg)
			require.NoError(t, err)

			res, err := p.Run(context.Background())
			require.NoError(t, err)
			require.Greater(t, len(res.Nodes), 1)

			for _, e := range res.Edges() {
				assert.False(t, segmentCrossesInterior(e.Parent, e.Child, obstacle),
					"edge %v -> %v crosses the obstacle", e.Parent, e.Child)
				assert.False(t, obstacle.Contains(e.Child))
			}
			if res.Status == StatusGoalReached {
				for i := 0; i < len(res.Path)-1; i++ {
					assert.False(t, segmentCrossesInterior(res.Path[i], res.Path[i+1], obstacle))
				}
			}
		})
	}
}

func TestRun_ZeroBudget(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxIterations = 0

	p, err := New(cfg)
	require.NoError(t, err)

	res, err := p.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StatusBudgetExhausted, res.Status)
	assert.Equal(t, []Node{{Position: cfg.Start, Parent: NoParent}}, res.Nodes)
	assert.Zero(t, res.Iterations)
	_, ok := res.TerminalIndex()
	assert.False(t, ok)
	assert.Empty(t, res.Path)
}

func TestRun_StartInsideGoalRadius(t *testing.T) {
	cfg := openConfig()
	cfg.Goal = Point{X: cfg.Start.X + 1, Y: cfg.Start.Y}

	p, err := New(cfg)
	require.NoError(t, err)
	res, err := p.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, StatusGoalReached, res.Status)
	assert.Zero(t, res.Terminal)
	assert.Zero(t, res.Iterations)
	assert.Equal(t, []Point{cfg.Start}, res.Path)
}

func TestRun_BudgetCountsCollisions(t *testing.T) {
	cfg := openConfig()
	cfg.Start = Point{X: 10, Y: 10}
	// the start is boxed in on every side
	cfg.Obstacles = []Obstacle{Rect(0, 0, 30, 2), Rect(0, 18, 30, 2), Rect(0, 0, 2, 20), Rect(18, 0, 2, 20)}
	cfg.StepSize = 50
	cfg.MaxIterations = 50

	sampler := SamplerFunc(func() Point { return Point{X: 600, Y: 400} })
	p, err := New(cfg, WithSampler(sampler))
	require.NoError(t, err)

	res, err := p.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StatusBudgetExhausted, res.Status)
	assert.Equal(t, 50, res.Iterations)
	assert.Equal(t, 50, res.Collisions)
	assert.Len(t, res.Nodes, 1)
}

func TestRun_Reproducible(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Seed = 99
	cfg.MaxIterations = 3000

	run := func() Result {
		p, err := New(cfg)
		require.NoError(t, err)
		res, err := p.Run(context.Background())
		require.NoError(t, err)
		return res
	}

	first := run()
	second := run()
	assert.Equal(t, first, second)

	p, err := New(cfg)
	require.NoError(t, err)
	again, err := p.Run(context.Background())
	require.NoError(t, err)
	rerun, err := p.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, again, rerun)
}

func TestRun_FixedBudgetKeepsGrowing(t *testing.T) {
	cfg := openConfig()
	cfg.Start = Point{X: 0, Y: 0}
	cfg.Goal = Point{X: 100, Y: 0}
	cfg.MaxIterations = 40
	cfg.RunFullBudget = true

	sampler := SamplerFunc(func() Point { return Point{X: 300, Y: 0} })
	p, err := New(cfg, WithSampler(sampler))
	require.NoError(t, err)

	res, err := p.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StatusGoalReached, res.Status)
	assert.Equal(t, 40, res.Iterations)
	assert.Len(t, res.Nodes, 41)

	// the first node within 5 of (100, 0) is at x = 98
	terminal, ok := res.TerminalIndex()
	require.True(t, ok)
	assert.Equal(t, 14, terminal)
	assert.InDelta(t, 98.0, res.Nodes[terminal].Position.X, 1e-9)
}

func TestRun_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	cfg := DefaultConfig()
	cfg.Goal = Point{X: 639, Y: 479}
	cfg.GoalRadius = 0.001
	cfg.MaxIterations = 1_000_000

	calls := 0
	sampler := SamplerFunc(func() Point {
		calls++
		if calls == 100 {
			cancel()
		}
		return Point{X: float64(calls % 640), Y: float64(calls % 480)}
	})

	p, err := New(cfg, WithSampler(sampler))
	require.NoError(t, err)

	res, err := p.Run(ctx)
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, StatusCancelled, res.Status)
	assert.Equal(t, 100, res.Iterations)
	assert.NotEmpty(t, res.Nodes)
}

func TestRun_LogsCollisions(t *testing.T) {
	core, logs := zapobserver.New(zapcore.DebugLevel)

	cfg := openConfig()
	cfg.Start = Point{X: 10, Y: 10}
	cfg.Obstacles = []Obstacle{Rect(12, 0, 5, 40)}
	cfg.MaxIterations = 3

	sampler := SamplerFunc(func() Point { return Point{X: 30, Y: 10} })
	p, err := New(cfg, WithSampler(sampler), WithLogger(zap.New(core)))
	require.NoError(t, err)

	_, err = p.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, logs.FilterMessage("collision detected, skipping point").Len())
	assert.Equal(t, 1, logs.FilterMessage("planning started").Len())
	assert.Equal(t, 1, logs.FilterMessage("iteration budget exhausted").Len())
}
