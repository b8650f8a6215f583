package parallel

import (
	"context"
	"os"
	"os/signal"
	"sync"

	"github.com/fatih/color"
)

// killable is anything an interrupt must take down: a worker process or
// the context of a goroutine-based executor set.
type killable interface {
	kill()
}

// cancelHandle cancels the context driving a set of goroutine executors.
type cancelHandle struct {
	cancel context.CancelFunc
}

func (c *cancelHandle) kill() {
	c.cancel()
}

// procHandle terminates one worker process, tolerating one that already
// exited.
type procHandle struct {
	proc *os.Process
}

func (p *procHandle) kill() {
	if p.proc != nil {
		_ = p.proc.Kill()
	}
}

// interruptScope collects the killable handles of one pool invocation.
// The first scope entered installs the process-wide interrupt handler;
// nested invocations push their own scope without reinstalling it. When
// the last scope exits the previous signal disposition is restored.
type interruptScope struct {
	mu    sync.Mutex
	kills []killable
}

var guard struct {
	mu    sync.Mutex
	stack []*interruptScope
	sigCh chan os.Signal
	done  chan struct{}
}

func enterScope() *interruptScope {
	guard.mu.Lock()
	defer guard.mu.Unlock()

	sc := &interruptScope{}
	guard.stack = append(guard.stack, sc)
	if len(guard.stack) == 1 {
		arm()
	}
	return sc
}

func (sc *interruptScope) exit() {
	guard.mu.Lock()
	defer guard.mu.Unlock()

	for i, s := range guard.stack {
		if s == sc {
			guard.stack = append(guard.stack[:i], guard.stack[i+1:]...)
			break
		}
	}
	if len(guard.stack) == 0 {
		disarm()
	}
}

func (sc *interruptScope) add(k killable) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.kills = append(sc.kills, k)
}

func (sc *interruptScope) killAll() {
	sc.mu.Lock()
	kills := make([]killable, len(sc.kills))
	copy(kills, sc.kills)
	sc.mu.Unlock()

	for _, k := range kills {
		k.kill()
	}
}

// arm installs the interrupt handler. Caller holds guard.mu.
func arm() {
	guard.sigCh = make(chan os.Signal, 1)
	guard.done = make(chan struct{})
	signal.Notify(guard.sigCh, os.Interrupt)

	go watch(guard.sigCh, guard.done)
}

// disarm restores the previous signal disposition. Caller holds guard.mu.
func disarm() {
	signal.Stop(guard.sigCh)
	close(guard.done)
	guard.sigCh = nil
	guard.done = nil
}

// watch waits for one interrupt, kills everything registered across the
// whole scope stack, then unsubscribes and re-delivers the signal: a
// handler the host program installed before us still runs, and with no
// handler the default disposition terminates the process.
func watch(sigCh chan os.Signal, done <-chan struct{}) {
	select {
	case <-done:
		return
	case sig := <-sigCh:
		color.New(color.FgRed).Fprintln(os.Stderr, "interrupt received, terminating workers")

		guard.mu.Lock()
		stack := make([]*interruptScope, len(guard.stack))
		copy(stack, guard.stack)
		guard.mu.Unlock()

		for _, sc := range stack {
			sc.killAll()
		}

		signal.Stop(sigCh)
		if p, err := os.FindProcess(os.Getpid()); err == nil {
			_ = p.Signal(sig)
		}
	}
}
