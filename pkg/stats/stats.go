package stats

import (
	"math"
	"sort"
)

// Mean computes the average of a slice.
func Mean(x []float64) float64 {
	n := len(x)
	if n == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range x {
		sum += v
	}
	return sum / float64(n)
}

// Variance computes the population variance of a slice.
func Variance(x []float64) float64 {
	n := float64(len(x))
	if n == 0 {
		return 0
	}
	mean := Mean(x)
	ss := 0.0
	for _, v := range x {
		d := v - mean
		ss += d * d
	}
	return ss / n
}

// Std computes the population standard deviation of a slice.
func Std(x []float64) float64 {
	return math.Sqrt(Variance(x))
}

// Median returns the median value of the slice (allocates a copy).
func Median(x []float64) float64 {
	n := len(x)
	if n == 0 {
		return 0
	}
	cp := make([]float64, n)
	copy(cp, x)
	sort.Float64s(cp)
	mid := n >> 1
	if n&1 == 0 {
		return (cp[mid-1] + cp[mid]) * 0.5
	}
	return cp[mid]
}

// DropNaN returns the non-NaN values of x, in order.
func DropNaN(x []float64) []float64 {
	out := make([]float64, 0, len(x))
	for _, v := range x {
		if !math.IsNaN(v) {
			out = append(out, v)
		}
	}
	return out
}

// ModeString returns the most frequent value of x.
// Ties resolve to the lexicographically smallest value so the result
// does not depend on row order. ok is false when x is empty.
func ModeString(x []string) (mode string, ok bool) {
	if len(x) == 0 {
		return "", false
	}
	counts := make(map[string]int, len(x))
	for _, v := range x {
		counts[v]++
	}
	maxCount := 0
	for v, c := range counts {
		if c > maxCount || (c == maxCount && v < mode) {
			maxCount = c
			mode = v
		}
	}
	return mode, true
}
