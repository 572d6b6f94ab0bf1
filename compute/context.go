// Package compute negotiates the compute context once at startup: which
// device backs the model capability, how many workers feed it, and how wide
// the CPU float kernels may vectorize. Nothing downstream branches on the
// device kind again.
package compute

import (
	"fmt"
	"runtime"
)

import "github.com/klauspost/cpuid/v2"

// Context is the opaque handle threaded into the model capability at
// construction.
type Context struct {
	Device      string // "cpu" or "cuda"
	Label       string // human-readable device description
	Workers     int    // bounded parallelism for kernels and prefetching
	VectorWidth int    // float32 lanes the CPU kernels assume
	MemoryBytes uint64 // device memory, when known
}

// Detect resolves the compute context. An accelerator wins when the binary
// was built with one; otherwise the CPU is described via its feature flags.
func Detect() Context {
	if ctx, ok := detectAccelerator(); ok {
		return ctx
	}
	width := 1
	switch {
	case cpuid.CPU.Supports(cpuid.AVX512F, cpuid.AVX512DQ):
		width = 16
	case cpuid.CPU.Supports(cpuid.AVX2):
		width = 8
	case cpuid.CPU.Supports(cpuid.SSE2):
		width = 4
	}
	return Context{
		Device:      "cpu",
		Label:       fmt.Sprintf("%s (%d-wide float32)", cpuid.CPU.BrandName, width),
		Workers:     runtime.NumCPU(),
		VectorWidth: width,
	}
}
