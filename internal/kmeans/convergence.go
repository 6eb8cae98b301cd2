package kmeans

import (
	"fmt"

	"github.com/vexsearch/kmeans/internal/vector"
)

// ConvergenceChecker compares two successive centroid sets.
//
// MinChange bounds the summed displacement of all centroids, not the
// displacement of any single one, so the same per-centroid movement
// accumulates faster with a larger k.
type ConvergenceChecker struct {
	MinChange float64
}

// Check returns the total shift and whether it is at or below MinChange.
func (c ConvergenceChecker) Check(prev, next []vector.Point) (float64, bool, error) {
	shift, err := TotalShift(prev, next)
	if err != nil {
		return 0, false, err
	}
	return shift, shift <= c.MinChange, nil
}

// TotalShift sums the Euclidean distance between prev[i] and next[i].
func TotalShift(prev, next []vector.Point) (float64, error) {
	if len(prev) != len(next) {
		return 0, fmt.Errorf("centroid count changed from %d to %d", len(prev), len(next))
	}
	var total float64
	for i := range prev {
		d, err := vector.Euclidean(prev[i], next[i])
		if err != nil {
			return 0, &InvalidInputError{Index: -1, Err: err}
		}
		total += d
	}
	return total, nil
}
