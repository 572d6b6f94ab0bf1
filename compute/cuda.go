//go:build cuda

package compute

import "runtime"

import "gorgonia.org/cu"

// detectAccelerator queries the first CUDA device. Requires the cuda build
// tag and a CUDA toolchain, like the vectorized learning backends upstream.
func detectAccelerator() (Context, bool) {
	n, err := cu.NumDevices()
	if err != nil || n == 0 {
		return Context{}, false
	}
	dev := cu.Device(0)
	name, err := dev.Name()
	if err != nil {
		name = "cuda:0"
	}
	mem, err := dev.TotalMem()
	if err != nil {
		mem = 0
	}
	return Context{
		Device:      "cuda",
		Label:       name,
		Workers:     runtime.NumCPU(),
		VectorWidth: 1,
		MemoryBytes: uint64(mem),
	}, true
}
