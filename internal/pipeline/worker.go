package pipeline

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// forEach calls fn for every index in [0, n) using at most workerCount
// goroutines. Results written by index keep their input order.
func forEach(ctx context.Context, n, workerCount int, fn func(ctx context.Context, i int) error) error {
	if workerCount < 1 {
		workerCount = 1
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workerCount)

	for i := range n {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			return fn(ctx, i)
		})
	}

	return g.Wait()
}
