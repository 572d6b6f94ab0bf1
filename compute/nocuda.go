//go:build !cuda

package compute

// detectAccelerator reports no accelerator on builds without the cuda tag.
func detectAccelerator() (Context, bool) {
	return Context{}, false
}
