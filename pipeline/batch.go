package pipeline

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Batches splits items into fixed-size groups, preserving order. The
// final batch holds the remainder. A non-positive size yields a single
// batch containing all items.
func Batches[T any](items []T, size int) [][]T {
	if len(items) == 0 {
		return nil
	}
	if size <= 0 {
		return [][]T{items}
	}

	batches := make([][]T, 0, (len(items)+size-1)/size)
	for start := 0; start < len(items); start += size {
		end := min(start+size, len(items))
		batches = append(batches, items[start:end])
	}
	return batches
}

// ProcessBatches runs fn over fixed-size batches of items with bounded
// concurrency, concatenating per-batch outputs in input order regardless
// of completion order. The first batch error cancels the remaining work
// and is returned.
func ProcessBatches[T, R any](
	ctx context.Context,
	items []T,
	size int,
	concurrency int,
	fn func(ctx context.Context, batch []T, index int) ([]R, error),
) ([]R, error) {
	batches := Batches(items, size)
	if len(batches) == 0 {
		return nil, nil
	}

	outputs := make([][]R, len(batches))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(concurrency, 1))

	for i, batch := range batches {
		g.Go(func() error {
			if gctx.Err() != nil {
				return gctx.Err()
			}

			out, err := fn(gctx, batch, i)
			if err != nil {
				return err
			}

			outputs[i] = out
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	var results []R
	for _, out := range outputs {
		results = append(results, out...)
	}
	return results, nil
}
