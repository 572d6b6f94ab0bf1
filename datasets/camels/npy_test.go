package camels

import (
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/bayronik/emulator/datasets"
)

// writeNPY writes a minimal NumPy v1.0 archive of float32 maps.
func writeNPY(t *testing.T, path string, count, h, w int, data []float32) {
	t.Helper()
	require.Len(t, data, count*h*w)

	header := fmt.Sprintf("{'descr': '<f4', 'fortran_order': False, 'shape': (%d, %d, %d), }", count, h, w)
	for (10+len(header)+1)%64 != 0 {
		header += " "
	}
	header += "\n"

	buf := []byte("\x93NUMPY\x01\x00")
	buf = binary.LittleEndian.AppendUint16(buf, uint16(len(header)))
	buf = append(buf, header...)
	for _, v := range data {
		buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(v))
	}
	require.NoError(t, os.WriteFile(path, buf, 0644))
}

func ramp(n int) []float32 {
	v := make([]float32, n)
	for i := range v {
		v[i] = float32(i) / 8
	}
	return v
}

func writeNPYPair(t *testing.T, d Descriptor, count, h, w int) {
	t.Helper()
	in, tgt := d.NPYPaths()
	writeNPY(t, in, count, h, w, ramp(count*h*w))
	writeNPY(t, tgt, count, h, w, ramp(count*h*w))
}

func testDescriptor(t *testing.T) Descriptor {
	return Descriptor{Root: t.TempDir(), Suite: "IllustrisTNG", DatasetType: "CV"}
}

func TestNPYStoreReadsEveryIndex(t *testing.T) {
	d := testDescriptor(t)
	writeNPYPair(t, d, 6, 4, 5)

	s, err := OpenNPY(d)
	require.NoError(t, err)
	defer s.Close()

	require.Equal(t, 6, s.Len())
	h, w := s.Shape()
	require.Equal(t, 4, h)
	require.Equal(t, 5, w)

	for i := 0; i < s.Len(); i++ {
		pair, err := s.Read(i)
		require.NoError(t, err)
		require.Len(t, pair.Input, 20)
		require.Equal(t, float32(i*20)/8, pair.Input[0])
	}
	_, err = s.Read(6)
	require.ErrorIs(t, err, datasets.ErrAccess)
}

func TestNPYStoreMismatchedCountsFatal(t *testing.T) {
	d := testDescriptor(t)
	in, tgt := d.NPYPaths()
	writeNPY(t, in, 4, 2, 2, ramp(16))
	writeNPY(t, tgt, 5, 2, 2, ramp(20))

	_, err := OpenNPY(d)
	require.ErrorIs(t, err, ErrConfig)
}

func TestNPYStoreMissingFileFatal(t *testing.T) {
	d := testDescriptor(t)
	in, _ := d.NPYPaths()
	writeNPY(t, in, 2, 2, 2, ramp(8))

	_, err := OpenNPY(d)
	require.ErrorIs(t, err, ErrConfig)
}

func TestNPYReadCopiesData(t *testing.T) {
	d := testDescriptor(t)
	writeNPYPair(t, d, 2, 2, 2)

	s, err := OpenNPY(d)
	require.NoError(t, err)

	pair, err := s.Read(0)
	require.NoError(t, err)
	pair.Input[0] = -1

	again, err := s.Read(0)
	require.NoError(t, err)
	require.NotEqual(t, float32(-1), again.Input[0])
}

func TestOpenPrefersFlatArchive(t *testing.T) {
	d := testDescriptor(t)
	writeNPYPair(t, d, 3, 2, 2)

	s, err := Open(d)
	require.NoError(t, err)
	defer s.Close()
	require.IsType(t, &NPYStore{}, s)
}

func TestOpenNamesExpectedFiles(t *testing.T) {
	d := testDescriptor(t)
	_, err := Open(d)
	require.ErrorIs(t, err, ErrConfig)
	require.ErrorContains(t, err, "Maps_Mcdm_IllustrisTNG_CV_z=0.00.npy")
	require.ErrorContains(t, err, "Maps_Mtot_IllustrisTNG_CV_z=0.00.hdf5")
}

func TestDescriptorPathTemplates(t *testing.T) {
	d := Descriptor{Root: "/data", Suite: "SIMBA", DatasetType: "LH", Redshift: 1.5}
	in, tgt := d.HDF5Paths()
	require.Equal(t, filepath.Join("/data", "Maps_Mcdm_SIMBA_LH_z=1.50.hdf5"), in)
	require.Equal(t, filepath.Join("/data", "Maps_Mtot_SIMBA_LH_z=1.50.hdf5"), tgt)
}
