package parallel

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// InThreads spawns exactly count concurrent tasks, invokes fn with each
// slot index in [0, count), waits for all of them and returns their
// results ordered by slot. Every task's outcome is collected before the
// first error is returned, so an interrupted task cannot hide a sibling's
// failure.
//
// Example:
//
//	pages, err := parallel.InThreads(ctx, 4, func(ctx context.Context, slot int) (string, error) {
//	    return fetchPage(ctx, slot)
//	})
func InThreads[R any](
	ctx context.Context,
	count int,
	fn func(ctx context.Context, slot int) (R, error),
) ([]R, error) {
	if count <= 0 {
		return []R{}, nil
	}

	scope := enterScope()
	defer scope.exit()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	scope.add(&cancelHandle{cancel: cancel})

	results := make([]R, count)
	var g errgroup.Group
	for i := range count {
		g.Go(func() error {
			r, err := fn(ctx, i)
			results[i] = r
			return err
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// runThreads services the shared cursor with n goroutines. Errors are
// recorded into the invocation first-wins; a failing executor stops, its
// siblings observe the outcome at their next claim and stop too, and
// already-in-flight items finish naturally. Kill additionally cancels the
// executors' context so in-flight work that honors it stops promptly.
func runThreads[T any, R any](
	ctx context.Context,
	n int,
	items []T,
	fn IndexedWorkFunc[T, R],
	results []R,
	inv *invocation,
	hooks *hookSet,
	limiter *rate.Limiter,
	scope *interruptScope,
) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	scope.add(&cancelHandle{cancel: cancel})

	var g errgroup.Group
	for range n {
		g.Go(func() error {
			return claimLoop(ctx, items, fn, results, inv, hooks, limiter, cancel)
		})
	}
	return g.Wait()
}

func claimLoop[T any, R any](
	ctx context.Context,
	items []T,
	fn IndexedWorkFunc[T, R],
	results []R,
	inv *invocation,
	hooks *hookSet,
	limiter *rate.Limiter,
	cancel context.CancelFunc,
) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if limiter != nil {
			if err := limiter.Wait(ctx); err != nil {
				return err
			}
		}

		i, ok := inv.claim()
		if !ok {
			return nil
		}

		item := items[i]
		hooks.itemStart(item, i)
		result, err := safeCall(ctx, fn, item, i)
		hooks.itemFinish(item, i, result, err)

		if err != nil {
			inv.fail(err)
			if errors.Is(err, Kill) {
				cancel()
			}
			return nil
		}
		results[i] = result
	}
}
