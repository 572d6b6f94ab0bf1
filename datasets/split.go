package datasets

import "math/rand"

// Split partitions the index range [0,n) into disjoint training and
// validation index sets. The validation set holds floor(n*frac) indices
// drawn from a permutation seeded by seed, so the partition is reproducible
// for a fixed seed and covers the full range exactly once.
func Split(n int, frac float64, seed int64) (train, val []int) {
	perm := rand.New(rand.NewSource(seed)).Perm(n)
	valSize := int(float64(n) * frac)
	trainSize := n - valSize
	return perm[:trainSize], perm[trainSize:]
}
