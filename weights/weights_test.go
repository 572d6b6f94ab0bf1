package weights

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func sampleSnapshot() Snapshot {
	return Snapshot{
		Model: "unet",
		Params: []Param{
			{Name: "conv1.weight", Shape: []int{2, 1, 3, 3}, Data: ramp(18)},
			{Name: "conv1.bias", Shape: []int{2}, Data: []float32{0.125, -3.5}},
		},
	}
}

func ramp(n int) []float32 {
	out := make([]float32, n)
	for i := range out {
		out[i] = float32(i) * 0.3
	}
	return out
}

func TestSnapshotRoundTripIsBitExact(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ckpt", "unet.json.z")
	want := sampleSnapshot()
	// Values with no short decimal form must still survive.
	want.Params[0].Data[0] = float32(math.Pi)
	want.Params[0].Data[1] = math.SmallestNonzeroFloat32

	require.NoError(t, WriteFile(path, want))
	got, err := ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, want.Model, got.Model)
	require.Len(t, got.Params, len(want.Params))
	for i, p := range want.Params {
		require.Equal(t, p.Name, got.Params[i].Name)
		require.Equal(t, p.Shape, got.Params[i].Shape)
		for j, v := range p.Data {
			require.Equal(t, math.Float32bits(v), math.Float32bits(got.Params[i].Data[j]),
				"%s[%d]", p.Name, j)
		}
	}
}

func TestReadFileMissingReportsExpectedPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nope.json.z")
	_, err := ReadFile(path)
	require.ErrorIs(t, err, ErrNotFound)
	require.Contains(t, err.Error(), path)
}

func TestWriteFileLeavesNoTempResidue(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "unet.json.z")
	require.NoError(t, WriteFile(path, sampleSnapshot()))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "unet.json.z", entries[0].Name())
}

func TestWriteFileOverwritesAtomically(t *testing.T) {
	path := filepath.Join(t.TempDir(), "unet.json.z")
	first := sampleSnapshot()
	require.NoError(t, WriteFile(path, first))

	second := sampleSnapshot()
	second.Params[1].Data = []float32{42, 42}
	require.NoError(t, WriteFile(path, second))

	got, err := ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, []float32{42, 42}, got.Find("conv1.bias").Data)
}

func TestFind(t *testing.T) {
	s := sampleSnapshot()
	require.NotNil(t, s.Find("conv1.weight"))
	require.Nil(t, s.Find("conv9.weight"))
}

func TestReadFileRejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "unet.json.z")
	require.NoError(t, os.WriteFile(path, []byte("not zlib at all"), 0644))
	_, err := ReadFile(path)
	require.Error(t, err)
	require.NotErrorIs(t, err, ErrNotFound)
}
