// Package weights implements parameter snapshots and their on-disk codec.
// A snapshot file is zlib-compressed JSON; float32 values round-trip
// bit-exactly through the shortest-form JSON encoding.
package weights

import (
	"compress/zlib"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ErrNotFound marks a snapshot path with no file behind it.
var ErrNotFound = errors.New("checkpoint not found")

// Param is one named learnable parameter tensor.
type Param struct {
	Name  string    `json:"name"`
	Shape []int     `json:"shape"`
	Data  []float32 `json:"data"`
}

// Snapshot is a full copy of a model's learnable parameter values.
type Snapshot struct {
	Model  string  `json:"model"`
	Params []Param `json:"params"`
}

// Find returns the named parameter, or nil.
func (s *Snapshot) Find(name string) *Param {
	for i := range s.Params {
		if s.Params[i].Name == name {
			return &s.Params[i]
		}
	}
	return nil
}

// WriteFile persists a snapshot atomically: the file is written next to its
// final path and renamed into place, so an interrupted write never clobbers
// a previously valid snapshot.
func WriteFile(path string, s Snapshot) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating snapshot directory for %s: %w", path, err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp*")
	if err != nil {
		return fmt.Errorf("creating temp snapshot for %s: %w", path, err)
	}
	defer os.Remove(tmp.Name())

	zw := zlib.NewWriter(tmp)
	if err := json.NewEncoder(zw).Encode(&s); err != nil {
		tmp.Close()
		return fmt.Errorf("encoding snapshot %s: %w", path, err)
	}
	if err := zw.Close(); err != nil {
		tmp.Close()
		return fmt.Errorf("encoding snapshot %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("writing snapshot %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("publishing snapshot %s: %w", path, err)
	}
	return nil
}

// ReadFile loads a snapshot. A missing file reports ErrNotFound with the
// expected path.
func ReadFile(path string) (Snapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Snapshot{}, fmt.Errorf("%w: expected %s", ErrNotFound, path)
		}
		return Snapshot{}, fmt.Errorf("opening snapshot %s: %w", path, err)
	}
	defer f.Close()

	zr, err := zlib.NewReader(f)
	if err != nil {
		return Snapshot{}, fmt.Errorf("snapshot %s is not a compressed snapshot: %w", path, err)
	}
	defer zr.Close()

	var s Snapshot
	if err := json.NewDecoder(zr).Decode(&s); err != nil {
		return Snapshot{}, fmt.Errorf("decoding snapshot %s: %w", path, err)
	}
	return s, nil
}
