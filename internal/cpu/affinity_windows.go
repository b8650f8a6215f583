//go:build windows

package cpu

import (
	"runtime"
)

// Available returns the number of logical CPUs.
func Available() int {
	return runtime.NumCPU()
}
