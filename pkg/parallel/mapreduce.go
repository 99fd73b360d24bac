// Package parallel provides generic parallel processing utilities.
package parallel

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// PoolConfig configures parallel execution behavior.
type PoolConfig struct {
	// MaxWorkers is the maximum number of concurrent workers.
	// Default: runtime.NumCPU().
	MaxWorkers int
}

// DefaultPoolConfig returns a default pool configuration.
func DefaultPoolConfig() PoolConfig {
	return PoolConfig{MaxWorkers: runtime.NumCPU()}
}

// WithWorkers returns a new config with the specified number of workers.
func (c PoolConfig) WithWorkers(n int) PoolConfig {
	c.MaxWorkers = n
	return c
}

// normalize returns a usable worker count for the given task count.
func (c PoolConfig) normalize(tasks int) int {
	workers := c.MaxWorkers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > tasks {
		workers = tasks
	}
	return workers
}

// Map applies fn to every item concurrently and returns the results in
// input order. Goroutines are scoped to this call: all workers have
// finished, successfully or not, by the time Map returns. The first error
// cancels the shared context and is returned.
func Map[T any, R any](ctx context.Context, items []T, config PoolConfig, fn func(ctx context.Context, item T) (R, error)) ([]R, error) {
	if len(items) == 0 {
		return nil, nil
	}

	results := make([]R, len(items))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(config.normalize(len(items)))

	for i := range items {
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			r, err := fn(ctx, items[i])
			if err != nil {
				return err
			}
			results[i] = r
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// MapReduce applies fn to every item concurrently and folds the results
// into a single value. The reducer runs on the calling goroutine after all
// workers have finished, so it needs no locking. Results are reduced in
// input order for deterministic merges.
func MapReduce[T any, M any, R any](
	ctx context.Context,
	items []T,
	config PoolConfig,
	fn func(ctx context.Context, item T) (M, error),
	reduce func(acc R, mapped M) R,
) (R, error) {
	var acc R

	mapped, err := Map(ctx, items, config, fn)
	if err != nil {
		return acc, err
	}

	for _, m := range mapped {
		acc = reduce(acc, m)
	}
	return acc, nil
}
