package kmeans

import (
	"fmt"
	"math/rand/v2"

	"github.com/vexsearch/kmeans/internal/vector"
)

// Initializer picks the point-set indices whose points seed the centroids.
type Initializer interface {
	Init(points []vector.Point, k int, rng *rand.Rand) ([]int, error)
}

// RandomInitializer samples k distinct indices uniformly without replacement.
//
// Indices are drawn one at a time and redrawn when already taken, so the
// chosen centroids are distinct by index but may repeat values if the point
// set contains duplicates.
type RandomInitializer struct{}

// Init implements Initializer.
func (RandomInitializer) Init(points []vector.Point, k int, rng *rand.Rand) ([]int, error) {
	if err := checkK(k, len(points)); err != nil {
		return nil, err
	}

	used := make([]bool, len(points))
	indices := make([]int, 0, k)
	for len(indices) < k {
		idx := rng.IntN(len(points))
		if used[idx] {
			continue
		}
		used[idx] = true
		indices = append(indices, idx)
	}
	return indices, nil
}

// FixedInitializer always returns the same indices. It lets two runs start
// from identical centroids regardless of their random source.
type FixedInitializer []int

// Init implements Initializer.
func (f FixedInitializer) Init(points []vector.Point, k int, _ *rand.Rand) ([]int, error) {
	if err := checkK(k, len(points)); err != nil {
		return nil, err
	}
	if len(f) != k {
		return nil, configError("initial_indices", len(f), fmt.Sprintf("need exactly %d indices", k))
	}

	seen := make(map[int]struct{}, len(f))
	for _, idx := range f {
		if idx < 0 || idx >= len(points) {
			return nil, configError("initial_indices", idx, "index out of range")
		}
		if _, dup := seen[idx]; dup {
			return nil, configError("initial_indices", idx, "duplicate index")
		}
		seen[idx] = struct{}{}
	}

	out := make([]int, len(f))
	copy(out, f)
	return out, nil
}

func checkK(k, n int) error {
	if k <= 0 {
		return configError("k", k, "must be positive")
	}
	if k > n {
		return configError("k", k, fmt.Sprintf("exceeds number of points (%d)", n))
	}
	return nil
}
