package parallel

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	"github.com/utkarsh5026/parallel/internal/wire"
)

// WorkFunc computes the result for one item.
type WorkFunc[T any, R any] func(ctx context.Context, item T) (R, error)

// IndexedWorkFunc additionally receives the item's position in the input.
type IndexedWorkFunc[T any, R any] func(ctx context.Context, item T, index int) (R, error)

// EachFunc performs a side effect for one item; results are discarded.
type EachFunc[T any] func(ctx context.Context, item T) error

// IndexedEachFunc is EachFunc with the item's position.
type IndexedEachFunc[T any] func(ctx context.Context, item T, index int) error

// Work is a named, registered unit of work. Registration is what makes
// process-based execution possible: a spawned worker resolves the work by
// name in its own address space, so the function itself never crosses the
// process boundary, only items and results do.
//
// Register all work at package init time, before WorkerMain runs.
type Work[T any, R any] struct {
	name string
	fn   IndexedWorkFunc[T, R]
}

// workAdapter is the untyped, wire-level view of a registered Work,
// invoked by the worker process serving loop.
type workAdapter func(ctx context.Context, req *wire.Request) *wire.Response

var registry = struct {
	mu sync.Mutex
	m  map[string]workAdapter
}{m: make(map[string]workAdapter)}

// Register names a work function so worker processes can run it.
// It panics if the name is already taken; names must be unique per binary.
//
// Example:
//
//	var double = parallel.Register("double", func(ctx context.Context, n int) (int, error) {
//	    return n * 2, nil
//	})
//
//	func main() {
//	    if parallel.WorkerMain() {
//	        return
//	    }
//	    results, err := double.Map(ctx, []int{1, 2, 3})
//	    ...
//	}
func Register[T any, R any](name string, fn WorkFunc[T, R]) *Work[T, R] {
	return RegisterIndexed(name, func(ctx context.Context, item T, _ int) (R, error) {
		return fn(ctx, item)
	})
}

// RegisterIndexed is Register for work that needs the item index.
func RegisterIndexed[T any, R any](name string, fn IndexedWorkFunc[T, R]) *Work[T, R] {
	w := &Work[T, R]{name: name, fn: fn}

	registry.mu.Lock()
	defer registry.mu.Unlock()
	if _, dup := registry.m[name]; dup {
		panic(fmt.Sprintf("parallel: work %q registered twice", name))
	}
	registry.m[name] = w.serve
	return w
}

func lookupWork(name string) workAdapter {
	registry.mu.Lock()
	defer registry.mu.Unlock()
	return registry.m[name]
}

// Map runs the work over items, preferring worker processes (one per CPU
// unless configured otherwise). See the package-level Map for the contract.
func (w *Work[T, R]) Map(ctx context.Context, items []T, opts ...Option) ([]R, error) {
	return run(ctx, items, w.fn, w.name, false, opts)
}

// Each runs the work over items for its side effects, discarding results
// both in the parent and on the wire. It returns the original slice.
func (w *Work[T, R]) Each(ctx context.Context, items []T, opts ...Option) ([]T, error) {
	_, err := run(ctx, items, w.fn, w.name, true, opts)
	return items, err
}

// Run invokes the work directly in the calling goroutine, outside any pool.
func (w *Work[T, R]) Run(ctx context.Context, item T) (R, error) {
	return w.fn(ctx, item, 0)
}

// serve executes one request inside a worker process. Any error or panic
// is wrapped in an envelope; the serving loop never fails because of a
// work-function error.
func (w *Work[T, R]) serve(ctx context.Context, req *wire.Request) *wire.Response {
	resp := &wire.Response{Index: req.Index}

	var item T
	if err := wire.Decode(req.Item, &item); err != nil {
		resp.Err = sealError(fmt.Errorf("decode item %d: %w", req.Index, err))
		return resp
	}

	result, err := safeCall(ctx, w.fn, item, req.Index)
	if err != nil {
		resp.Err = sealError(err)
		return resp
	}

	if req.Discard {
		return resp
	}

	encoded, err := wire.Encode(result)
	if err != nil {
		resp.Err = sealError(fmt.Errorf("encode result %d: %w", req.Index, err))
		return resp
	}
	resp.Result = encoded
	return resp
}

// safeCall executes the work function with panic recovery. A panic is
// converted to an error so one bad item cannot take down an executor or a
// whole worker process.
func safeCall[T any, R any](
	ctx context.Context,
	fn IndexedWorkFunc[T, R],
	item T,
	index int,
) (result R, err error) {
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			err = fmt.Errorf("work panic: %v\nstack trace:\n%s", r, buf[:n])
		}
	}()

	return fn(ctx, item, index)
}
