// Package platform reports advisory CPU topology hints used to place
// matching goroutines (spec.md §4.8). Nothing here pins threads or
// enforces NUMA locality — Go's scheduler gives no such guarantee, so
// this is informational only. No other package in this module calls it.
package platform

import (
	"runtime"

	"github.com/klauspost/cpuid/v2"
)

// Info is a snapshot of the host's CPU topology as seen at process start.
type Info struct {
	LogicalCPUs     int
	PhysicalCores   int
	VectorExtension string
	CacheLineBytes  int
}

// Detect captures the current host's topology. Safe to call repeatedly;
// cpuid.CPU is itself populated once at that package's init.
func Detect() Info {
	return Info{
		LogicalCPUs:     runtime.NumCPU(),
		PhysicalCores:   physicalCores(),
		VectorExtension: vectorExtension(),
		CacheLineBytes:  cpuid.CPU.CacheLine,
	}
}

func physicalCores() int {
	if cpuid.CPU.PhysicalCores > 0 {
		return cpuid.CPU.PhysicalCores
	}
	return runtime.NumCPU()
}

func vectorExtension() string {
	switch {
	case cpuid.CPU.Supports(cpuid.AVX512F):
		return "avx512"
	case cpuid.CPU.Supports(cpuid.AVX2):
		return "avx2"
	case cpuid.CPU.Supports(cpuid.ASIMD):
		return "neon"
	default:
		return "scalar"
	}
}

// RecommendedWorkers is the advisory worker-pool size for symbol
// dispatch (spec.md §4.8): one goroutine per physical core, reserving
// one core for the submission dispatcher and GC, with a floor of 1.
func RecommendedWorkers() int {
	n := physicalCores() - 1
	if n < 1 {
		return 1
	}
	return n
}
