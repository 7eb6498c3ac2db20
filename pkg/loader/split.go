package loader

import (
	"math"
	"math/rand"
)

// DefaultTestRatio and DefaultSeed define the holdout used by training runs.
// Repeated runs with the same seed see the same partition.
const (
	DefaultTestRatio = 0.2
	DefaultSeed      = 42
)

// TrainTestSplit partitions row indices 0..n-1 into train and test sets.
// The test set holds ceil(n*testRatio) rows, capped so that at least one row
// remains for training when n > 1. The permutation comes from a private
// source seeded with seed, so the result depends only on (n, testRatio, seed).
func TrainTestSplit(n int, testRatio float64, seed int64) (trainIdx, testIdx []int) {
	if n <= 0 {
		return nil, nil
	}
	nTest := int(math.Ceil(float64(n) * testRatio))
	if nTest >= n {
		nTest = n - 1
	}
	if nTest < 0 {
		nTest = 0
	}
	rng := rand.New(rand.NewSource(seed))
	indices := rng.Perm(n)
	testIdx = append([]int(nil), indices[:nTest]...)
	trainIdx = append([]int(nil), indices[nTest:]...)
	return trainIdx, testIdx
}

// Take returns the elements of xs at the given indices.
func Take[T any](xs []T, indices []int) []T {
	out := make([]T, len(indices))
	for i, idx := range indices {
		out[i] = xs[idx]
	}
	return out
}
