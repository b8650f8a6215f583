package parallel

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/utkarsh5026/parallel/internal/wire"
)

// workerEnv marks a process as a spawned worker and names the work it
// serves. Worker processes are the program's own binary re-executed with
// this variable set; stdin carries requests, stdout carries responses.
const workerEnv = "GO_PARALLEL_WORKER"

// WorkerMain serves work requests when the current process is a spawned
// worker, and reports whether it was one. Call it at the top of main
// (after all Register calls have run, e.g. from package init) and return
// immediately when it yields true:
//
//	func main() {
//	    if parallel.WorkerMain() {
//	        return
//	    }
//	    // normal program
//	}
//
// A worker reads one request at a time from stdin and answers each with
// exactly one response on stdout; it never writes unprompted. Closing its
// stdin is the parent's only shutdown signal.
func WorkerMain() bool {
	name := os.Getenv(workerEnv)
	if name == "" {
		return false
	}

	serveRequests(name, os.Stdin, os.Stdout)
	return true
}

func serveRequests(name string, r io.Reader, w io.Writer) {
	adapter := lookupWork(name)
	if adapter == nil {
		// Nothing can be answered without a request to answer; exiting
		// nonzero surfaces as a dead worker in the parent.
		fmt.Fprintf(os.Stderr, "parallel worker: no work registered as %q\n", name)
		os.Exit(2)
	}

	ctx := context.Background()
	codec := wire.NewCodec(r, w)

	for {
		req, err := codec.ReadRequest()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return
			}
			fmt.Fprintf(os.Stderr, "parallel worker %q: read request: %v\n", name, err)
			os.Exit(2)
		}

		if err := codec.WriteResponse(adapter(ctx, req)); err != nil {
			fmt.Fprintf(os.Stderr, "parallel worker %q: write response: %v\n", name, err)
			os.Exit(2)
		}
	}
}
