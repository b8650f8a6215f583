package parallel

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/utkarsh5026/parallel/internal/wire"
)

// procWorker owns one spawned worker process and its two pipes. A worker
// and its pipes belong to exactly one supervisor goroutine, so no
// synchronization is needed around the codec.
type procWorker struct {
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	stdout io.ReadCloser
	codec  *wire.Codec
}

// spawnWorker re-executes the current binary as a worker serving the named
// work, wiring its stdin/stdout as the request/response pipes.
func spawnWorker(name string) (*procWorker, error) {
	exe, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("locate executable: %w", err)
	}

	cmd := exec.Command(exe)
	cmd.Env = append(os.Environ(), workerEnv+"="+name)
	cmd.Stderr = os.Stderr

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("open request pipe: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("open response pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start worker: %w", err)
	}

	return &procWorker{
		cmd:    cmd,
		stdin:  stdin,
		stdout: stdout,
		codec:  wire.NewCodec(stdout, stdin),
	}, nil
}

// call ships one request and blocks for its response. A broken pipe or
// premature end-of-file on either side means the worker died.
func (w *procWorker) call(req *wire.Request) (*wire.Response, error) {
	if err := w.codec.WriteRequest(req); err != nil {
		return nil, fmt.Errorf("%w (pid %d): send request: %v", ErrDeadWorker, w.pid(), err)
	}
	resp, err := w.codec.ReadResponse()
	if err != nil {
		return nil, fmt.Errorf("%w (pid %d): read response: %v", ErrDeadWorker, w.pid(), err)
	}
	return resp, nil
}

func (w *procWorker) pid() int {
	if w.cmd.Process != nil {
		return w.cmd.Process.Pid
	}
	return 0
}

// shutdown closes both pipes and reaps the process. Closing stdin is the
// worker's end-of-input signal; a healthy worker exits on its own right
// after. Must run on every supervisor exit path.
func (w *procWorker) shutdown() {
	_ = w.stdin.Close()
	_ = w.stdout.Close()
	_ = w.cmd.Wait()
}

// terminate force-kills the worker without waiting for its current item,
// tolerating a process that already exited.
func (w *procWorker) terminate() {
	if w.cmd.Process != nil {
		_ = w.cmd.Process.Kill()
	}
}

// runProcesses spawns n workers up front, then supervises each from its
// own goroutine running the shared claim loop.
func runProcesses[T any, R any](
	ctx context.Context,
	name string,
	n int,
	items []T,
	results []R,
	discard bool,
	inv *invocation,
	hooks *hookSet,
	limiter *rate.Limiter,
	scope *interruptScope,
) error {
	workers := make([]*procWorker, 0, n)
	for range n {
		w, err := spawnWorker(name)
		if err != nil {
			for _, started := range workers {
				started.terminate()
				started.shutdown()
			}
			return err
		}
		workers = append(workers, w)
		scope.add(&procHandle{proc: w.cmd.Process})
	}

	var g errgroup.Group
	for _, w := range workers {
		g.Go(func() error {
			return supervise(ctx, w, workers, items, results, discard, inv, hooks, limiter)
		})
	}
	return g.Wait()
}

// supervise feeds one worker indices from the shared cursor and collects
// its responses. It records outcomes into the invocation exactly like a
// thread executor; the difference is only where the computation runs.
func supervise[T any, R any](
	ctx context.Context,
	w *procWorker,
	workers []*procWorker,
	items []T,
	results []R,
	discard bool,
	inv *invocation,
	hooks *hookSet,
	limiter *rate.Limiter,
) error {
	defer w.shutdown()

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

		encoded, err := wire.Encode(item)
		if err != nil {
			err = fmt.Errorf("encode item %d: %w", i, err)
			hooks.itemFinish(item, i, nil, err)
			inv.fail(err)
			return nil
		}

		resp, err := w.call(&wire.Request{Index: i, Item: encoded, Discard: discard})
		if err != nil {
			// Worker is gone; fatal for this supervision loop.
			hooks.itemFinish(item, i, nil, err)
			inv.fail(err)
			return nil
		}

		if resp.Err != nil {
			cause := openEnvelope(resp.Err)
			hooks.itemFinish(item, i, nil, cause)
			inv.fail(cause)
			if errors.Is(cause, Kill) {
				terminateOthers(workers, w)
				return nil
			}
			// The worker survives its own work-function errors and keeps
			// serving; this loop stops at the next claim once the
			// invocation has a terminal outcome.
			continue
		}

		var result R
		if !discard && len(resp.Result) > 0 {
			if err := wire.Decode(resp.Result, &result); err != nil {
				err = fmt.Errorf("decode result %d: %w", i, err)
				hooks.itemFinish(item, i, nil, err)
				inv.fail(err)
				continue
			}
		}
		results[i] = result
		hooks.itemFinish(item, i, result, nil)
	}
}

func terminateOthers(workers []*procWorker, except *procWorker) {
	for _, other := range workers {
		if other != except {
			other.terminate()
		}
	}
}
