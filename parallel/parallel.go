package parallel

import (
	"context"
	"sync"

	"github.com/utkarsh5026/parallel/internal/cpu"
)

// Map applies fn to every item concurrently and returns the results in
// input order, regardless of completion order. Work is distributed
// dynamically: each executor repeatedly claims the next unclaimed index,
// so slow items do not strand a statically assigned chunk.
//
// A plain function runs on goroutines (use a registered Work for worker
// processes). The pool size defaults to the detected CPU count, clamped to
// len(items); WithCount(0) degenerates to sequential execution in the
// calling goroutine.
//
// The first error returned by fn is re-raised after all executors have
// stopped and every resource is released; later errors are discarded.
// Break and Kill stop the run early without an error, yielding a nil
// result slice.
//
// Example:
//
//	doubled, err := parallel.Map(ctx, []int{1, 2, 3}, func(ctx context.Context, n int) (int, error) {
//	    return n * 2, nil
//	}, parallel.WithCount(2))
//	// doubled = [2 4 6]
func Map[T any, R any](ctx context.Context, items []T, fn WorkFunc[T, R], opts ...Option) ([]R, error) {
	indexed := func(ctx context.Context, item T, _ int) (R, error) {
		return fn(ctx, item)
	}
	return run(ctx, items, indexed, "", false, opts)
}

// MapWithIndex is Map for work that needs each item's position.
func MapWithIndex[T any, R any](ctx context.Context, items []T, fn IndexedWorkFunc[T, R], opts ...Option) ([]R, error) {
	return run(ctx, items, fn, "", false, opts)
}

// Each applies fn to every item concurrently for its side effects and
// returns the original slice unchanged. Results are discarded, which also
// spares worker processes from shipping them back.
func Each[T any](ctx context.Context, items []T, fn EachFunc[T], opts ...Option) ([]T, error) {
	indexed := func(ctx context.Context, item T, _ int) (struct{}, error) {
		return struct{}{}, fn(ctx, item)
	}
	_, err := run(ctx, items, indexed, "", true, opts)
	return items, err
}

// EachWithIndex is Each for work that needs each item's position.
func EachWithIndex[T any](ctx context.Context, items []T, fn IndexedEachFunc[T], opts ...Option) ([]T, error) {
	indexed := func(ctx context.Context, item T, i int) (struct{}, error) {
		return struct{}{}, fn(ctx, item, i)
	}
	_, err := run(ctx, items, indexed, "", true, opts)
	return items, err
}

// InProcesses fans out over worker processes: it maps the registered work
// across the slot indices 0..count-1, where count comes from WithCount /
// WithProcesses or defaults to the detected CPU count.
func InProcesses[R any](ctx context.Context, work *Work[int, R], opts ...Option) ([]R, error) {
	cfg := newConfig(opts...)
	n := cfg.count
	if n < 0 {
		n = cpu.Available()
	}

	slots := make([]int, n)
	for i := range slots {
		slots[i] = i
	}
	return work.Map(ctx, slots, append(opts, WithProcesses(n))...)
}

// run is the dispatcher behind every Map/Each variant: it resolves the
// strategy and pool size, sets up the shared invocation state and hooks,
// runs the chosen executor set inside an interrupt scope, and assembles
// the outcome.
func run[T any, R any](
	ctx context.Context,
	items []T,
	fn IndexedWorkFunc[T, R],
	workName string,
	discard bool,
	opts []Option,
) ([]R, error) {
	cfg := newConfig(opts...)
	n, processes := cfg.poolSize(len(items), workName != "")

	mu := cfg.mu
	if mu == nil {
		mu = &sync.Mutex{}
	}
	inv := newInvocation(len(items), mu)
	hooks := newHookSet(cfg, mu, len(items))
	results := make([]R, len(items))

	if n == 0 {
		err := runSequential(ctx, items, fn, results, inv, hooks)
		return assemble(inv, results, err)
	}

	scope := enterScope()
	defer scope.exit()

	var execErr error
	if processes {
		execErr = runProcesses(ctx, workName, n, items, results, discard, inv, hooks, cfg.rateLimiter, scope)
	} else {
		execErr = runThreads(ctx, n, items, fn, results, inv, hooks, cfg.rateLimiter, scope)
	}
	return assemble(inv, results, execErr)
}

// runSequential executes every item in the calling goroutine, preserving
// the exact per-item hook contract of the parallel paths.
func runSequential[T any, R any](
	ctx context.Context,
	items []T,
	fn IndexedWorkFunc[T, R],
	results []R,
	inv *invocation,
	hooks *hookSet,
) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
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
			return nil
		}
		results[i] = result
	}
}

// assemble turns the invocation's terminal outcome into the caller-facing
// return values. Break and Kill yield no result and no error; a recorded
// failure wins over executor plumbing errors (context cancellation from a
// Kill, for example).
func assemble[R any](inv *invocation, results []R, execErr error) ([]R, error) {
	kind, err := inv.outcome()
	switch kind {
	case outcomeFailed:
		return nil, err
	case outcomeBroken, outcomeKilled:
		return nil, nil
	default:
		if execErr != nil {
			return nil, execErr
		}
		return results, nil
	}
}
