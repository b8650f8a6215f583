package parallel

import "errors"

var (
	// Break stops the current invocation early without signaling failure.
	// Return it (or an error wrapping it) from a work function: no further
	// items are claimed, in-flight items finish, and the invocation returns
	// a nil result with a nil error.
	Break = errors.New("parallel: break")

	// Kill stops the current invocation like Break, but additionally
	// terminates sibling worker processes immediately instead of letting
	// their in-flight item finish.
	Kill = errors.New("parallel: kill")

	// ErrDeadWorker reports that a worker process's communication channel
	// closed unexpectedly, typically because the process crashed or exited
	// before end of input. It is fatal to the invocation.
	ErrDeadWorker = errors.New("parallel: dead worker")
)

// RemoteError substitutes an error raised in a worker process whose
// concrete value could not be serialized back to the parent. Message is
// the formatted text of the original error; the original type and any
// wrapped errors do not survive the boundary.
type RemoteError struct {
	Message string
}

func (e *RemoteError) Error() string {
	return e.Message
}
