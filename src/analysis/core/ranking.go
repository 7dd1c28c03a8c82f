package core

import "sort"

// -----------------------------------------------------------------------------

// TopNDesc returns the indices of the n largest keys, descending. Equal keys
// keep their input order. n <= 0 or n > len(keys) returns every index.
func TopNDesc(keys []float64, n int) []int {
	idx := make([]int, len(keys))
	for i := range idx {
		idx[i] = i
	}

	sort.SliceStable(idx, func(a, b int) bool {
		return keys[idx[a]] > keys[idx[b]]
	})

	if n > 0 && n < len(idx) {
		idx = idx[:n]
	}
	return idx
}
