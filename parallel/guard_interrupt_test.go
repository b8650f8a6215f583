//go:build unix

package parallel

import (
	"bufio"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"syscall"
	"testing"
	"time"
)

// Re-executes the test binary as a helper running a process-mode
// invocation with four lingering workers (see TestMain), interrupts it,
// and verifies no worker survives the signal.
func TestInterrupt_NoSurvivingWorkers(t *testing.T) {
	exe, err := os.Executable()
	if err != nil {
		t.Fatalf("locate test binary: %v", err)
	}

	cmd := exec.Command(exe)
	cmd.Env = append(os.Environ(), interruptEnv+"=1")
	stderr, err := cmd.StderrPipe()
	if err != nil {
		t.Fatalf("open stderr pipe: %v", err)
	}
	if err := cmd.Start(); err != nil {
		t.Fatalf("start helper: %v", err)
	}

	// Each worker announces its pid on stderr once it holds an item.
	pids := make([]int, 0, 4)
	scanner := bufio.NewScanner(stderr)
	for len(pids) < 4 && scanner.Scan() {
		rest, ok := strings.CutPrefix(scanner.Text(), "lingering pid ")
		if !ok {
			continue
		}
		pid, err := strconv.Atoi(strings.TrimSpace(rest))
		if err != nil {
			t.Fatalf("bad pid line %q: %v", scanner.Text(), err)
		}
		pids = append(pids, pid)
	}
	if len(pids) != 4 {
		_ = cmd.Process.Kill()
		_ = cmd.Wait()
		t.Fatalf("expected 4 worker pids before interrupting, got %d", len(pids))
	}

	if err := cmd.Process.Signal(os.Interrupt); err != nil {
		t.Fatalf("interrupt helper: %v", err)
	}
	_ = cmd.Wait()

	for _, pid := range pids {
		if !waitGone(pid, 5*time.Second) {
			_ = syscall.Kill(pid, syscall.SIGKILL)
			t.Errorf("worker %d survived the interrupt", pid)
		}
	}
}
