// Package parallel scores independent items concurrently while keeping the
// output in input order.
package parallel

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Map applies fn to every item with at most limit goroutines in flight
// (unbounded when limit <= 0). out[i] always corresponds to items[i]. The
// first error or a cancelled ctx aborts the whole map and no results are
// returned.
func Map[T, R any](ctx context.Context, items []T, limit int, fn func(context.Context, T) (R, error)) ([]R, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out := make([]R, len(items))
	g, gctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}

	for i, item := range items {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			r, err := fn(gctx, item)
			if err != nil {
				return err
			}
			out[i] = r
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
