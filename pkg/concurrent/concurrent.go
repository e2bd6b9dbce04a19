package concurrent

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Result pairs a value with the error that produced it.
type Result[R any] struct {
	Value R
	Err   error
}

func group(ctx context.Context, limit int) (*errgroup.Group, context.Context) {
	g, ctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}
	return g, ctx
}

// Concurrent runs action for each item with at most limit goroutines at once
// (no limit when limit <= 0). The first error cancels the context passed to
// the remaining actions and is returned.
func Concurrent[T any](ctx context.Context, items []T, limit int, action func(context.Context, T) error) error {
	g, ctx := group(ctx, limit)
	for _, item := range items {
		item := item
		g.Go(func() error {
			return action(ctx, item)
		})
	}
	return g.Wait()
}

// Map applies mapFn to each item in parallel, preserving order. It stops on the
// first error like Concurrent.
func Map[T any, R any](ctx context.Context, items []T, limit int, mapFn func(context.Context, T) (R, error)) ([]R, error) {
	out := make([]R, len(items))
	g, ctx := group(ctx, limit)
	for i, item := range items {
		i, item := i, item
		g.Go(func() error {
			r, err := mapFn(ctx, item)
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

// Collect is Map that keeps going after failures: every item gets its own
// Result and no context is cancelled on error.
func Collect[T any, R any](ctx context.Context, items []T, limit int, mapFn func(context.Context, T) (R, error)) []Result[R] {
	out := make([]Result[R], len(items))
	g := new(errgroup.Group)
	if limit > 0 {
		g.SetLimit(limit)
	}
	for i, item := range items {
		i, item := i, item
		g.Go(func() error {
			r, err := mapFn(ctx, item)
			out[i] = Result[R]{Value: r, Err: err}
			return nil
		})
	}
	_ = g.Wait()
	return out
}
