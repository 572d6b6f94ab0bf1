package compute

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDetect(t *testing.T) {
	ctx := Detect()
	require.NotEmpty(t, ctx.Device)
	require.NotEmpty(t, ctx.Label)
	require.Greater(t, ctx.Workers, 0)
	if ctx.Device == "cpu" {
		require.Contains(t, []int{1, 4, 8, 16}, ctx.VectorWidth)
	}
}
