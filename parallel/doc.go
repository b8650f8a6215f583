// Package parallel is a parallel map/each execution engine: it distributes
// the items of a slice across a bounded pool of concurrent executors,
// either goroutines or spawned worker processes, and collects results in
// input order.
//
// # Basic Usage
//
//	ctx := context.Background()
//	doubled, err := parallel.Map(ctx, []int{1, 2, 3, 4}, func(ctx context.Context, n int) (int, error) {
//	    return n * 2, nil
//	})
//	// doubled = [2 4 6 8]
//
// Work is handed out through a shared cursor, one item at a time, so the
// distribution is dynamic rather than chunked: a slow item never strands
// the rest of its chunk. Completion order is unconstrained, but results
// are stored by index and the returned slice always matches input order.
//
// # Strategies
//
// Three execution strategies share one contract:
//
//   - goroutines (the default for plain functions): parallel.Map,
//     parallel.Each, with WithThreads(n) to size the pool explicitly
//   - worker processes (the default for registered work): Register a Work,
//     then work.Map / work.Each / parallel.InProcesses
//   - sequential: WithCount(0) runs every item in the calling goroutine
//     with the same per-item hooks
//
// Worker processes are the program's own binary re-executed in a serving
// mode, which is why process-based work must be registered by name and why
// main must give WorkerMain the first word:
//
//	var thumb = parallel.Register("thumbnail", makeThumbnail)
//
//	func main() {
//	    if parallel.WorkerMain() {
//	        return
//	    }
//	    _, err := thumb.Each(ctx, photos, parallel.WithProgress("thumbnails"))
//	    ...
//	}
//
// Items and results cross the process boundary explicitly (gob-encoded);
// nothing is shared by memory, so anything a work function needs beyond
// its item must be rebuilt in the worker or carried inside the item.
//
// # Stopping Early
//
// Returning Break from a work function stops the run without an error:
// no further items are claimed, in-flight items finish, and the caller
// gets a nil result. Kill does the same but force-terminates sibling
// workers immediately. Any other error is re-raised to the caller after
// all executors have stopped and every pipe and process is released;
// only the first error survives, later ones are discarded.
//
// An interrupt (Ctrl-C) while any pool is active kills every outstanding
// worker process and cancels every executor before the signal's previous
// disposition runs, so no orphaned child survives an abort.
//
// # Hooks and Progress
//
// WithStart and WithFinish observe each item around its computation, never
// interleaving with each other; WithProgress drives a progress bar off the
// finish hook, advancing exactly once per item whether it succeeded or
// failed:
//
//	_, err := parallel.Each(ctx, files, convert,
//	    parallel.WithProgress("converting"),
//	    parallel.WithFinish(func(item any, i int, result any, err error) {
//	        if err != nil {
//	            log.Printf("%v: %v", item, err)
//	        }
//	    }),
//	)
package parallel
