//go:build linux

package cpu

import (
	"runtime"

	"golang.org/x/sys/unix"
)

// Available returns the number of CPUs this process is allowed to run on.
// On Linux the scheduler affinity mask is authoritative: a process confined
// to a cpuset (containers, taskset) should not spawn one worker per
// machine CPU.
func Available() int {
	var mask unix.CPUSet
	if err := unix.SchedGetaffinity(0, &mask); err != nil {
		return runtime.NumCPU()
	}

	if n := mask.Count(); n > 0 {
		return n
	}
	return runtime.NumCPU()
}
