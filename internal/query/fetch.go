package query

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// FetchPage runs count and find concurrently and joins them. The first error
// cancels the other call.
func FetchPage[T any](
	ctx context.Context,
	count func(context.Context) (int64, error),
	find func(context.Context) ([]T, error),
) ([]T, int64, error) {
	g, gctx := errgroup.WithContext(ctx)

	var (
		total   int64
		records []T
	)
	g.Go(func() error {
		n, err := count(gctx)
		total = n
		return err
	})
	g.Go(func() error {
		r, err := find(gctx)
		records = r
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, 0, err
	}
	return records, total, nil
}
