package engine

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// RunBatch runs every config as an independent simulation, at most
// concurrency at a time (0 means unbounded). Results are returned in input
// order. The first failure cancels the remaining runs.
func RunBatch(ctx context.Context, cfgs []SimulationConfig, concurrency int, opts ...Option) ([]History, error) {
	out := make([]History, len(cfgs))
	g, ctx := errgroup.WithContext(ctx)
	if concurrency > 0 {
		g.SetLimit(concurrency)
	}
	for i, cfg := range cfgs {
		i, cfg := i, cfg
		g.Go(func() error {
			sim, err := New(cfg, opts...)
			if err != nil {
				return fmt.Errorf("config %d: %w", i, err)
			}
			h, err := sim.Run(ctx)
			if err != nil {
				return fmt.Errorf("config %d: %w", i, err)
			}
			out[i] = h
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
