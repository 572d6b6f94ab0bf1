package datasets

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// memStore is an in-memory Store for tests.
type memStore struct {
	pairs []RawPair
}

func (m *memStore) Len() int { return len(m.pairs) }

func (m *memStore) Shape() (int, int) { return m.pairs[0].Height, m.pairs[0].Width }

func (m *memStore) Read(i int) (RawPair, error) {
	if err := CheckIndex(i, len(m.pairs)); err != nil {
		return RawPair{}, err
	}
	return m.pairs[i], nil
}

func (m *memStore) Close() error { return nil }

func newMemStore(n, h, w int, fill float32) *memStore {
	s := &memStore{}
	for i := 0; i < n; i++ {
		in := make([]float32, h*w)
		tgt := make([]float32, h*w)
		for j := range in {
			in[j] = fill + float32(i)
			tgt[j] = 2 * (fill + float32(i))
		}
		s.pairs = append(s.pairs, RawPair{Input: in, Target: tgt, Height: h, Width: w})
	}
	return s
}

func TestDatasetGet(t *testing.T) {
	d := NewDataset(newMemStore(5, 4, 4, 1))
	require.Equal(t, 5, d.Len())

	in, tgt, err := d.Get(3)
	require.NoError(t, err)
	require.Equal(t, []int{1, 4, 4}, in.Shape)
	require.Equal(t, []int{1, 4, 4}, tgt.Shape)
}

func TestDatasetIndexOutOfRange(t *testing.T) {
	d := NewDataset(newMemStore(5, 4, 4, 0))
	_, _, err := d.Get(5)
	require.ErrorIs(t, err, ErrAccess)
	_, _, err = d.Get(-1)
	require.ErrorIs(t, err, ErrAccess)
}
