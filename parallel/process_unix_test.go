//go:build unix

package parallel

import (
	"context"
	"errors"
	"syscall"
	"testing"
	"time"
)

// waitGone polls signal 0 until the pid is gone or the deadline passes.
// A worker orphaned mid-kill may linger as a zombie until it is reaped.
func waitGone(pid int, within time.Duration) bool {
	deadline := time.Now().Add(within)
	for {
		if err := syscall.Kill(pid, 0); err == syscall.ESRCH {
			return true
		}
		if time.Now().After(deadline) {
			return false
		}
		time.Sleep(20 * time.Millisecond)
	}
}

func TestWork_KillReapsAllWorkers(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(pidDirEnv, dir)

	_, err := workKill.Map(context.Background(), []int{0, 1, 2, 3}, WithProcesses(2))
	if err != nil {
		t.Fatalf("expected no error from Kill, got %v", err)
	}

	pids := recordedPids(t, dir)
	if len(pids) != 2 {
		t.Fatalf("expected 2 recorded worker pids, got %d", len(pids))
	}
	for _, pid := range pids {
		if !waitGone(pid, time.Second) {
			t.Errorf("worker %d still present after the call returned", pid)
		}
	}
}

func TestWork_DeadWorkerIsReaped(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(pidDirEnv, dir)

	_, err := workExit.Map(context.Background(), []int{1, 2}, WithProcesses(1))
	if !errors.Is(err, ErrDeadWorker) {
		t.Fatalf("expected ErrDeadWorker, got %v", err)
	}

	pids := recordedPids(t, dir)
	if len(pids) != 1 {
		t.Fatalf("expected 1 recorded worker pid, got %d", len(pids))
	}
	for _, pid := range pids {
		if !waitGone(pid, time.Second) {
			t.Errorf("worker %d still present after the call returned", pid)
		}
	}
}
