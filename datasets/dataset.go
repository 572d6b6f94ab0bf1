package datasets

import "github.com/bayronik/emulator/tensor"

// Dataset composes a Store with the sample transform behind an
// index-addressable sequence of training pairs. The transform is applied on
// every access; only the store may cache raw data.
type Dataset struct {
	store Store
}

// NewDataset wraps a store.
func NewDataset(s Store) *Dataset {
	return &Dataset{store: s}
}

// Len reports the number of sample pairs.
func (d *Dataset) Len() int {
	return d.store.Len()
}

// Shape reports the height and width of every map.
func (d *Dataset) Shape() (h, w int) {
	return d.store.Shape()
}

// Get returns the i-th prepared tensor pair.
func (d *Dataset) Get(i int) (in, tgt *tensor.Tensor, err error) {
	if err := CheckIndex(i, d.store.Len()); err != nil {
		return nil, nil, err
	}
	raw, err := d.store.Read(i)
	if err != nil {
		return nil, nil, err
	}
	in, tgt = Prepare(raw)
	return in, tgt, nil
}
