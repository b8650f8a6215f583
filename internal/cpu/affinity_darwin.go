//go:build darwin

package cpu

import (
	"runtime"
)

// Available returns the number of logical CPUs.
// Affinity masks are not available on macOS.
func Available() int {
	return runtime.NumCPU()
}
