package camels

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gonum.org/v1/hdf5"
)

// writeHDF5 writes one archive with a single named (count, h, w) dataset.
func writeHDF5(t *testing.T, path, name string, count, h, w int, data []float32) {
	t.Helper()
	require.Len(t, data, count*h*w)

	f, err := hdf5.CreateFile(path, hdf5.F_ACC_TRUNC)
	require.NoError(t, err)
	defer f.Close()

	space, err := hdf5.CreateSimpleDataspace([]uint{uint(count), uint(h), uint(w)}, nil)
	require.NoError(t, err)
	defer space.Close()

	dset, err := f.CreateDataset(name, hdf5.T_NATIVE_FLOAT, space)
	require.NoError(t, err)
	defer dset.Close()

	require.NoError(t, dset.Write(&data))
}

func writeHDF5Pair(t *testing.T, d Descriptor, count, h, w int) {
	t.Helper()
	in, tgt := d.HDF5Paths()
	writeHDF5(t, in, "Maps_Mcdm", count, h, w, ramp(count*h*w))
	writeHDF5(t, tgt, "Maps_Mtot", count, h, w, ramp(count*h*w))
}

func TestHDF5StoreShapeWithoutPayload(t *testing.T) {
	d := testDescriptor(t)
	writeHDF5Pair(t, d, 7, 4, 6)

	s, err := OpenHDF5(d)
	require.NoError(t, err)
	defer s.Close()

	require.Equal(t, 7, s.Len())
	h, w := s.Shape()
	require.Equal(t, 4, h)
	require.Equal(t, 6, w)
	require.False(t, s.Cached())
}

func TestHDF5LazyAndCachedBitIdentical(t *testing.T) {
	d := testDescriptor(t)
	writeHDF5Pair(t, d, 5, 3, 3)

	lazy, err := OpenHDF5(d)
	require.NoError(t, err)
	defer lazy.Close()

	d.Cache = true
	cached, err := OpenHDF5(d)
	require.NoError(t, err)
	defer cached.Close()
	require.True(t, cached.Cached())

	for i := 0; i < lazy.Len(); i++ {
		a, err := lazy.Read(i)
		require.NoError(t, err)
		b, err := cached.Read(i)
		require.NoError(t, err)
		require.Equal(t, a.Input, b.Input, "input map %d", i)
		require.Equal(t, a.Target, b.Target, "target map %d", i)
	}
}

func TestHDF5MismatchedCountsFatal(t *testing.T) {
	d := testDescriptor(t)
	in, tgt := d.HDF5Paths()
	writeHDF5(t, in, "Maps_Mcdm", 3, 2, 2, ramp(12))
	writeHDF5(t, tgt, "Maps_Mtot", 4, 2, 2, ramp(16))

	_, err := OpenHDF5(d)
	require.ErrorIs(t, err, ErrConfig)
}

func TestHDF5MissingDatasetFatal(t *testing.T) {
	d := testDescriptor(t)
	in, tgt := d.HDF5Paths()
	writeHDF5(t, in, "Maps_Wrong", 2, 2, 2, ramp(8))
	writeHDF5(t, tgt, "Maps_Mtot", 2, 2, 2, ramp(8))

	_, err := OpenHDF5(d)
	require.ErrorIs(t, err, ErrConfig)
}

func TestOpenFallsBackToHDF5(t *testing.T) {
	d := testDescriptor(t)
	writeHDF5Pair(t, d, 2, 2, 2)

	s, err := Open(d)
	require.NoError(t, err)
	defer s.Close()
	require.IsType(t, &HDF5Store{}, s)
}
