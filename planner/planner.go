package planner

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// Status is the state of a planning run
type Status string

const (
	StatusRunning         Status = "RUNNING"
	StatusGoalReached     Status = "GOAL_REACHED"
	StatusBudgetExhausted Status = "BUDGET_EXHAUSTED"
	StatusCancelled       Status = "CANCELLED"
)

// Result is the outcome of Planner.Run
type Result struct {
	Status Status `json:"status"`
	// Terminal is the first node within the goal radius, -1 if none
	Terminal   int     `json:"terminal"`
	Nodes      []Node  `json:"nodes"`
	Path       []Point `json:"path,omitempty"`
	Iterations int     `json:"iterations"`
	Collisions int     `json:"collisions"`
}

// TerminalIndex returns the terminal node index when the goal was reached
func (r Result) TerminalIndex() (int, bool) {
	return r.Terminal, r.Terminal >= 0
}

// Edges returns the tree edges of the result in insertion order
func (r Result) Edges() []Edge {
	return edgesOf(r.Nodes)
}

// Observer receives tree growth events, e.g. for an external renderer.
// Calls happen on the goroutine running the planner.
type Observer interface {
	EdgeAdded(edge Edge)
	PathFound(path []Point)
}

type nopObserver struct{}

func (nopObserver) EdgeAdded(Edge)    {}
func (nopObserver) PathFound([]Point) {}

// Option configures a Planner
type Option func(*Planner)

// WithSampler replaces the seeded uniform sampler
func WithSampler(s Sampler) Option {
	return func(p *Planner) { p.sampler = s }
}

// WithObserver registers an observer for edge and path events
func WithObserver(o Observer) Option {
	return func(p *Planner) { p.observer = o }
}

// WithLogger sets the logger; the default discards everything
func WithLogger(l *zap.Logger) Option {
	return func(p *Planner) { p.logger = l }
}

// Planner grows an RRT from Config.Start toward Config.Goal
type Planner struct {
	cfg      Config
	sampler  Sampler
	checker  *CollisionChecker
	observer Observer
	logger   *zap.Logger
}

// New validates cfg and builds a planner. No run starts on error.
func New(cfg Config, opts ...Option) (*Planner, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg = cfg.Normalize()

	p := &Planner{
		cfg:      cfg,
		checker:  NewCollisionChecker(cfg.Obstacles, cfg.Collision),
		observer: nopObserver{},
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Config returns the validated config
func (p *Planner) Config() Config {
	return p.cfg
}

// Run grows a fresh tree until the goal is reached or the iteration budget
// is spent. Every sampled candidate costs one iteration, including the ones
// discarded by the collision check. ctx is checked once per iteration; on
// cancellation the partial tree is returned with StatusCancelled.
func (p *Planner) Run(ctx context.Context) (Result, error) {
	sampler := p.sampler
	if sampler == nil {
		sampler = NewUniformSampler(p.cfg.Bounds.Width, p.cfg.Bounds.Height, p.cfg.Seed)
	}

	tree := NewTree(p.cfg.NearestIndex)
	root, err := tree.Insert(NoParent, p.cfg.Start)
	if err != nil {
		return Result{}, err
	}

	log := p.logger.With(zap.Int64("seed", p.cfg.Seed))
	log.Info("planning started",
		zap.Float64("startX", p.cfg.Start.X), zap.Float64("startY", p.cfg.Start.Y),
		zap.Float64("goalX", p.cfg.Goal.X), zap.Float64("goalY", p.cfg.Goal.Y),
		zap.Int("maxIterations", p.cfg.MaxIterations),
		zap.Int("obstacles", len(p.cfg.Obstacles)),
		zap.String("collision", string(p.cfg.Collision)),
	)

	res := Result{Status: StatusRunning, Terminal: -1}
	if p.withinGoal(p.cfg.Start) {
		res.Terminal = root
	}

	for res.Iterations < p.cfg.MaxIterations && (p.cfg.RunFullBudget || res.Terminal < 0) {
		if err := ctx.Err(); err != nil {
			res.Status = StatusCancelled
			res.Nodes = tree.Nodes()
			log.Warn("planning cancelled", zap.Int("iterations", res.Iterations), zap.Int("nodes", tree.Size()))
			return res, fmt.Errorf("planning cancelled: %w", err)
		}
		res.Iterations++

		candidate := sampler.Sample()
		nearest := tree.Nearest(candidate)
		from := tree.nodes[nearest].Position
		target := Step(from, candidate, p.cfg.StepSize)

		if p.checker.Collides(from, target) {
			res.Collisions++
			log.Debug("collision detected, skipping point",
				zap.Float64("x", target.X), zap.Float64("y", target.Y))
			continue
		}

		idx, err := tree.Insert(nearest, target)
		if err != nil {
			return res, err
		}
		p.observer.EdgeAdded(Edge{Parent: from, Child: target})

		if res.Terminal < 0 && p.withinGoal(target) {
			res.Terminal = idx
		}
	}

	res.Nodes = tree.Nodes()
	if res.Terminal < 0 {
		res.Status = StatusBudgetExhausted
		log.Info("iteration budget exhausted",
			zap.Int("iterations", res.Iterations),
			zap.Int("nodes", tree.Size()),
			zap.Float64("closestGoalDistance", minDistance(res.Nodes, p.cfg.Goal)),
		)
		return res, nil
	}

	path, err := tree.Path(res.Terminal)
	if err != nil {
		return res, err
	}
	res.Status = StatusGoalReached
	res.Path = path
	p.observer.PathFound(path)

	log.Info("goal reached",
		zap.Int("iterations", res.Iterations),
		zap.Int("nodes", tree.Size()),
		zap.Int("waypoints", len(path)),
		zap.Float64("pathLength", PathLength(path)),
	)
	return res, nil
}

func (p *Planner) withinGoal(pos Point) bool {
	return pos.Distance(p.cfg.Goal) <= p.cfg.GoalRadius
}
