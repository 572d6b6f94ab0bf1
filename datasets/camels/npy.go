package camels

import (
	"fmt"
	"os"
	"strings"

	"github.com/sbinet/npyio"

	"github.com/bayronik/emulator/datasets"
)

// NPYStore is the flat-array backend. Both archives are whole-dataset
// numeric arrays decoded fully into memory at open time; Read is pure
// array indexing.
type NPYStore struct {
	input  []float32
	target []float32
	count  int
	height int
	width  int
}

// OpenNPY opens the flat-array archive pair named by the descriptor.
func OpenNPY(d Descriptor) (*NPYStore, error) {
	inPath, tgtPath := d.NPYPaths()

	input, inShape, err := readNPY(inPath)
	if err != nil {
		return nil, err
	}
	target, tgtShape, err := readNPY(tgtPath)
	if err != nil {
		return nil, err
	}
	if inShape[0] != tgtShape[0] {
		return nil, fmt.Errorf("%w: %s holds %d maps but %s holds %d",
			ErrConfig, inPath, inShape[0], tgtPath, tgtShape[0])
	}
	if inShape[1] != tgtShape[1] || inShape[2] != tgtShape[2] {
		return nil, fmt.Errorf("%w: map shape %dx%d in %s differs from %dx%d in %s",
			ErrConfig, inShape[1], inShape[2], inPath, tgtShape[1], tgtShape[2], tgtPath)
	}

	return &NPYStore{
		input:  input,
		target: target,
		count:  inShape[0],
		height: inShape[1],
		width:  inShape[2],
	}, nil
}

// readNPY decodes a (count, height, width) archive into a flat float32
// slice, converting from 64-bit storage when needed.
func readNPY(path string) ([]float32, [3]int, error) {
	var shape [3]int

	f, err := os.Open(path)
	if err != nil {
		return nil, shape, fmt.Errorf("%w: cannot open archive %s: %v", ErrConfig, path, err)
	}
	defer f.Close()

	r, err := npyio.NewReader(f)
	if err != nil {
		return nil, shape, fmt.Errorf("%w: %s is not a flat-array archive: %v", ErrConfig, path, err)
	}
	dims := r.Header.Descr.Shape
	if len(dims) != 3 {
		return nil, shape, fmt.Errorf("%w: %s has rank %d, want (count, height, width)", ErrConfig, path, len(dims))
	}
	copy(shape[:], dims)

	n := shape[0] * shape[1] * shape[2]
	if strings.Contains(r.Header.Descr.Type, "f8") {
		wide := make([]float64, n)
		if err := r.Read(&wide); err != nil {
			return nil, shape, fmt.Errorf("%w: decoding %s: %v", ErrConfig, path, err)
		}
		data := make([]float32, n)
		for i, v := range wide {
			data[i] = float32(v)
		}
		return data, shape, nil
	}
	data := make([]float32, n)
	if err := r.Read(&data); err != nil {
		return nil, shape, fmt.Errorf("%w: decoding %s: %v", ErrConfig, path, err)
	}
	return data, shape, nil
}

// Len reports the number of sample pairs.
func (s *NPYStore) Len() int {
	return s.count
}

// Shape reports the height and width of every map.
func (s *NPYStore) Shape() (h, w int) {
	return s.height, s.width
}

// Read returns the i-th raw sample pair. The returned slices are copies, so
// callers cannot disturb the in-memory archive.
func (s *NPYStore) Read(i int) (datasets.RawPair, error) {
	if err := datasets.CheckIndex(i, s.count); err != nil {
		return datasets.RawPair{}, err
	}
	stride := s.height * s.width
	in := make([]float32, stride)
	tgt := make([]float32, stride)
	copy(in, s.input[i*stride:(i+1)*stride])
	copy(tgt, s.target[i*stride:(i+1)*stride])
	return datasets.RawPair{Input: in, Target: tgt, Height: s.height, Width: s.width}, nil
}

// Close is a no-op; the backing arrays are plain memory.
func (s *NPYStore) Close() error {
	return nil
}
