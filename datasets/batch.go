package datasets

import "math/rand"

// Batches groups indices into mini-batches. The sequence is finite and
// restartable per epoch: Reset re-randomizes the order when shuffling is
// enabled, otherwise groups preserve the insertion order of the indices.
// The final group of an epoch may be shorter than the batch size.
type Batches struct {
	indices []int
	order   []int
	size    int
	shuffle bool
	rng     *rand.Rand
	pos     int
}

// NewBatches builds a batch sequence over indices with the given batch size.
func NewBatches(indices []int, size int, shuffle bool, seed int64) *Batches {
	if size <= 0 {
		size = 1
	}
	b := &Batches{
		indices: append([]int(nil), indices...),
		size:    size,
		shuffle: shuffle,
		rng:     rand.New(rand.NewSource(seed)),
	}
	b.Reset()
	return b
}

// Count reports the number of groups per epoch.
func (b *Batches) Count() int {
	return (len(b.indices) + b.size - 1) / b.size
}

// Reset restarts the sequence for a new epoch.
func (b *Batches) Reset() {
	b.order = append(b.order[:0], b.indices...)
	if b.shuffle {
		b.rng.Shuffle(len(b.order), func(i, j int) { b.order[i], b.order[j] = b.order[j], b.order[i] })
	}
	b.pos = 0
}

// Next returns the next index group, or ok=false at the end of the epoch.
func (b *Batches) Next() (group []int, ok bool) {
	if b.pos >= len(b.order) {
		return nil, false
	}
	end := b.pos + b.size
	if end > len(b.order) {
		end = len(b.order)
	}
	group = b.order[b.pos:end]
	b.pos = end
	return group, true
}
