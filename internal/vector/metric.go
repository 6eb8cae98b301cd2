package vector

import (
	"math"
)

// DistanceMetric represents the distance metric used for clustering.
// Only Euclidean distance is supported.
type DistanceMetric string

const (
	// MetricEuclidean is sqrt(sum((a[i] - b[i])^2)).
	MetricEuclidean DistanceMetric = "euclidean"
)

// DefaultMetric is the metric used when none is configured.
const DefaultMetric = MetricEuclidean

// String returns the string representation of the metric.
func (m DistanceMetric) String() string {
	return string(m)
}

// EuclideanSquared returns the sum of squared coordinate differences.
func EuclideanSquared(a, b Point) (float64, error) {
	if len(a) != len(b) {
		return 0, &MismatchError{Index: -1, Expected: len(a), Actual: len(b)}
	}
	var sum float64
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum, nil
}

// Euclidean returns the Euclidean distance between a and b.
func Euclidean(a, b Point) (float64, error) {
	sq, err := EuclideanSquared(a, b)
	if err != nil {
		return 0, err
	}
	return math.Sqrt(sq), nil
}
