// Package datasets implements the field-map dataset types: the store
// contract over on-disk map archives, the per-sample transform, the
// index-addressable dataset facade and the train/validation partitioner.
package datasets

import (
	"errors"
	"fmt"
)

// ErrAccess marks a failed per-sample access (index out of range or a
// corrupt archive entry). Already-loaded cache state stays valid.
var ErrAccess = errors.New("sample access failed")

// RawPair is one simulation instance: the input field map and the target
// field map, both height x width, as read from the archive.
type RawPair struct {
	Input  []float32
	Target []float32
	Height int
	Width  int
}

// Store is the uniform read interface over heterogeneous map archives.
// Implementations never mutate samples after read and are safe for
// concurrent readers.
type Store interface {

	// Len reports the number of sample pairs in the archive.
	Len() int

	// Shape reports the height and width of every map.
	Shape() (h, w int)

	// Read returns the i-th raw sample pair.
	Read(i int) (RawPair, error)

	// Close releases any resources held by the store.
	Close() error
}

// CheckIndex validates i against a store of n samples.
func CheckIndex(i, n int) error {
	if i < 0 || i >= n {
		return fmt.Errorf("%w: index %d out of range [0,%d)", ErrAccess, i, n)
	}
	return nil
}
