package camels

import (
	"fmt"

	"gonum.org/v1/hdf5"

	"github.com/bayronik/emulator/datasets"
)

// HDF5Store is the self-describing backend. Archives expose the named
// datasets Maps_Mcdm and Maps_Mtot; shape metadata is queried at open
// without touching the payload. In lazy mode every Read opens the archive,
// slices one map and closes it again, so no file handle outlives a call.
// In cached mode both datasets are loaded once at construction and Read is
// memory indexing.
type HDF5Store struct {
	inPath  string
	tgtPath string
	count   int
	height  int
	width   int

	// nil unless the descriptor asked for caching
	inCache  []float32
	tgtCache []float32
}

// OpenHDF5 opens the self-describing archive pair named by the descriptor.
func OpenHDF5(d Descriptor) (*HDF5Store, error) {
	inPath, tgtPath := d.HDF5Paths()

	inCount, h, w, err := describe(inPath, "Maps_"+FieldInput)
	if err != nil {
		return nil, err
	}
	tgtCount, th, tw, err := describe(tgtPath, "Maps_"+FieldTarget)
	if err != nil {
		return nil, err
	}
	if inCount != tgtCount {
		return nil, fmt.Errorf("%w: %s holds %d maps but %s holds %d",
			ErrConfig, inPath, inCount, tgtPath, tgtCount)
	}
	if th != h || tw != w {
		return nil, fmt.Errorf("%w: map shape %dx%d in %s differs from %dx%d in %s",
			ErrConfig, h, w, inPath, th, tw, tgtPath)
	}

	s := &HDF5Store{inPath: inPath, tgtPath: tgtPath, count: inCount, height: h, width: w}
	if d.Cache {
		if s.inCache, err = loadAll(inPath, "Maps_"+FieldInput, inCount*h*w); err != nil {
			return nil, err
		}
		if s.tgtCache, err = loadAll(tgtPath, "Maps_"+FieldTarget, inCount*h*w); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// describe reads the (count, height, width) extent of a named dataset
// without loading its payload.
func describe(path, name string) (count, h, w int, err error) {
	f, err := hdf5.OpenFile(path, hdf5.F_ACC_RDONLY)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("%w: cannot open archive %s: %v", ErrConfig, path, err)
	}
	defer f.Close()

	dset, err := f.OpenDataset(name)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("%w: archive %s has no dataset %s: %v", ErrConfig, path, name, err)
	}
	defer dset.Close()

	space := dset.Space()
	defer space.Close()
	dims, _, err := space.SimpleExtentDims()
	if err != nil {
		return 0, 0, 0, fmt.Errorf("%w: reading extent of %s in %s: %v", ErrConfig, name, path, err)
	}
	if len(dims) != 3 {
		return 0, 0, 0, fmt.Errorf("%w: dataset %s in %s has rank %d, want (count, height, width)",
			ErrConfig, name, path, len(dims))
	}
	return int(dims[0]), int(dims[1]), int(dims[2]), nil
}

// loadAll reads a whole named dataset into memory as float32, whatever the
// on-disk storage precision.
func loadAll(path, name string, n int) ([]float32, error) {
	f, err := hdf5.OpenFile(path, hdf5.F_ACC_RDONLY)
	if err != nil {
		return nil, fmt.Errorf("%w: cannot open archive %s: %v", ErrConfig, path, err)
	}
	defer f.Close()

	dset, err := f.OpenDataset(name)
	if err != nil {
		return nil, fmt.Errorf("%w: archive %s has no dataset %s: %v", ErrConfig, path, name, err)
	}
	defer dset.Close()

	data := make([]float32, n)
	if err := dset.Read(&data); err != nil {
		return nil, fmt.Errorf("%w: loading %s from %s: %v", ErrConfig, name, path, err)
	}
	return data, nil
}

// readSlice reads map i of a named dataset through a hyperslab selection.
func (s *HDF5Store) readSlice(path, name string, i int) ([]float32, error) {
	f, err := hdf5.OpenFile(path, hdf5.F_ACC_RDONLY)
	if err != nil {
		return nil, fmt.Errorf("%w: reopening archive %s: %v", datasets.ErrAccess, path, err)
	}
	defer f.Close()

	dset, err := f.OpenDataset(name)
	if err != nil {
		return nil, fmt.Errorf("%w: dataset %s vanished from %s: %v", datasets.ErrAccess, name, path, err)
	}
	defer dset.Close()

	filespace := dset.Space()
	defer filespace.Close()
	offset := []uint{uint(i), 0, 0}
	count := []uint{1, uint(s.height), uint(s.width)}
	if err := filespace.SelectHyperslab(offset, nil, count, nil); err != nil {
		return nil, fmt.Errorf("%w: selecting map %d of %s in %s: %v", datasets.ErrAccess, i, name, path, err)
	}

	memspace, err := hdf5.CreateSimpleDataspace(count, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", datasets.ErrAccess, err)
	}
	defer memspace.Close()

	data := make([]float32, s.height*s.width)
	if err := dset.ReadSubset(&data, memspace, filespace); err != nil {
		return nil, fmt.Errorf("%w: reading map %d of %s in %s: %v", datasets.ErrAccess, i, name, path, err)
	}
	return data, nil
}

// Len reports the number of sample pairs.
func (s *HDF5Store) Len() int {
	return s.count
}

// Shape reports the height and width of every map.
func (s *HDF5Store) Shape() (h, w int) {
	return s.height, s.width
}

// Cached reports whether the archives were materialized in memory at open.
func (s *HDF5Store) Cached() bool {
	return s.inCache != nil
}

// Read returns the i-th raw sample pair. Lazy and cached modes return
// bit-identical data.
func (s *HDF5Store) Read(i int) (datasets.RawPair, error) {
	if err := datasets.CheckIndex(i, s.count); err != nil {
		return datasets.RawPair{}, err
	}
	stride := s.height * s.width
	in := make([]float32, stride)
	tgt := make([]float32, stride)
	if s.Cached() {
		copy(in, s.inCache[i*stride:(i+1)*stride])
		copy(tgt, s.tgtCache[i*stride:(i+1)*stride])
	} else {
		slice, err := s.readSlice(s.inPath, "Maps_"+FieldInput, i)
		if err != nil {
			return datasets.RawPair{}, err
		}
		copy(in, slice)
		slice, err = s.readSlice(s.tgtPath, "Maps_"+FieldTarget, i)
		if err != nil {
			return datasets.RawPair{}, err
		}
		copy(tgt, slice)
	}
	return datasets.RawPair{Input: in, Target: tgt, Height: s.height, Width: s.width}, nil
}

// Close drops the cache, if any. Lazy mode holds no handles between reads.
func (s *HDF5Store) Close() error {
	s.inCache = nil
	s.tgtCache = nil
	return nil
}
