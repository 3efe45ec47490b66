package main

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"rrt-planner/planner"
)

// runBatch plans base once per seed with at most parallelism runs at a
// time. Every run owns its tree; results are returned in seed order. The
// first error cancels the remaining runs.
func runBatch(ctx context.Context, base planner.Config, seeds []int64, parallelism int, logger *zap.Logger) ([]planner.Config, []planner.Result, error) {
	configs := make([]planner.Config, len(seeds))
	results := make([]planner.Result, len(seeds))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(parallelism)

	for i, seed := range seeds {
		cfg := base
		cfg.Seed = seed
		configs[i] = cfg

		g.Go(func() error {
			p, err := planner.New(cfg, planner.WithLogger(logger))
			if err != nil {
				return err
			}
			res, err := p.Run(gctx)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return configs, results, nil
}

// shortestRun returns the index of the successful run with the shortest
// path, or -1 when no run reached the goal.
func shortestRun(results []planner.Result) int {
	best := -1
	bestLength := 0.0
	for i, res := range results {
		if res.Status != planner.StatusGoalReached {
			continue
		}
		length := planner.PathLength(res.Path)
		if best < 0 || length < bestLength {
			best = i
			bestLength = length
		}
	}
	return best
}
