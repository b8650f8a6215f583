package parallel

import (
	"errors"
	"sync"
)

// outcomeKind tags the terminal state of a pool invocation. Executors
// report Break, Kill and plain failures through the invocation rather than
// through their own return values, so the dispatcher switches on one tag
// instead of matching sentinel errors all over.
type outcomeKind int

const (
	outcomeRunning outcomeKind = iota
	outcomeBroken
	outcomeKilled
	outcomeFailed
)

// invocation is the shared state of one pool run: the work cursor and the
// first recorded outcome. One mutex guards both, and the same mutex
// serializes the instrumentation hooks (see hookSet), so a pool invocation
// has exactly one lock.
type invocation struct {
	mu    *sync.Mutex
	next  int
	total int
	kind  outcomeKind
	err   error
}

func newInvocation(total int, mu *sync.Mutex) *invocation {
	if mu == nil {
		mu = &sync.Mutex{}
	}
	return &invocation{mu: mu, total: total}
}

// claim hands out the next unclaimed item index. It returns false once the
// cursor is exhausted or a sibling has recorded a terminal outcome, which
// is how executors learn to stop without polling anything else.
func (inv *invocation) claim() (int, bool) {
	inv.mu.Lock()
	defer inv.mu.Unlock()

	if inv.kind != outcomeRunning || inv.next >= inv.total {
		return 0, false
	}

	i := inv.next
	inv.next++
	return i, true
}

// fail records an executor's terminal outcome. The first writer wins;
// later errors from siblings are discarded. Break and Kill map to their
// non-failing outcome kinds.
func (inv *invocation) fail(err error) {
	inv.mu.Lock()
	defer inv.mu.Unlock()

	if inv.kind != outcomeRunning {
		return
	}

	switch {
	case errors.Is(err, Kill):
		inv.kind = outcomeKilled
	case errors.Is(err, Break):
		inv.kind = outcomeBroken
	default:
		inv.kind = outcomeFailed
		inv.err = err
	}
}

// outcome returns the terminal tag and, for failures, the recorded error.
func (inv *invocation) outcome() (outcomeKind, error) {
	inv.mu.Lock()
	defer inv.mu.Unlock()
	return inv.kind, inv.err
}
