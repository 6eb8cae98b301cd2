package vector

import "errors"

var (
	// ErrInvalidDimensions is returned when a configured dimension is not positive.
	ErrInvalidDimensions = errors.New("invalid vector dimensions")

	// ErrDimensionMismatch is returned when two points, or a point and the
	// configured dimension, disagree.
	ErrDimensionMismatch = errors.New("vector dimension mismatch")

	// ErrNoVectors is returned when an operation needs at least one point.
	ErrNoVectors = errors.New("no vectors provided")
)
