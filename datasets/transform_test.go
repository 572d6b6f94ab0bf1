package datasets

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func rawPair() RawPair {
	return RawPair{
		Input:  []float32{0, 1, 2.5, 1e8, 0.25, 3},
		Target: []float32{4, 0, 9.75, 1e6, 0.5, 1},
		Height: 2,
		Width:  3,
	}
}

func TestPrepareShapesAndValues(t *testing.T) {
	in, tgt := Prepare(rawPair())
	require.Equal(t, []int{1, 2, 3}, in.Shape)
	require.Equal(t, []int{1, 2, 3}, tgt.Shape)
	require.Equal(t, float32(0), in.Data[0])
	require.Equal(t, float32(math.Log1p(2.5)), in.Data[2])
	require.Equal(t, float32(math.Log1p(4)), tgt.Data[0])
}

func TestPrepareDeterministicAndFinite(t *testing.T) {
	raw := rawPair()
	in1, tgt1 := Prepare(raw)
	in2, tgt2 := Prepare(raw)
	require.Equal(t, in1.Data, in2.Data)
	require.Equal(t, tgt1.Data, tgt2.Data)

	for _, v := range append(in1.Data, tgt1.Data...) {
		require.False(t, math.IsNaN(float64(v)))
		require.False(t, math.IsInf(float64(v), 0))
	}
}

func TestPrepareDoesNotAliasRawData(t *testing.T) {
	raw := rawPair()
	in, _ := Prepare(raw)
	raw.Input[0] = 99
	require.Equal(t, float32(0), in.Data[0])
}
