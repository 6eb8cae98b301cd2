package vector

import (
	"fmt"
	"strconv"
	"strings"
)

// Point is a fixed-dimension vector of real numbers.
//
// Points handed to the clustering engine are treated as read-only for the
// whole run. Centroids computed by the engine are always fresh slices.
type Point []float64

// NewPoint copies coords into a new Point.
func NewPoint(coords ...float64) Point {
	p := make(Point, len(coords))
	copy(p, coords)
	return p
}

// Dims returns the number of coordinates.
func (p Point) Dims() int {
	return len(p)
}

// Clone returns a copy that shares no memory with p.
func (p Point) Clone() Point {
	if p == nil {
		return nil
	}
	return NewPoint(p...)
}

// Equal reports whether both points have the same coordinates.
func (p Point) Equal(o Point) bool {
	if len(p) != len(o) {
		return false
	}
	for i := range p {
		if p[i] != o[i] {
			return false
		}
	}
	return true
}

// String renders the point as "(x, y, ...)".
func (p Point) String() string {
	var b strings.Builder
	b.WriteByte('(')
	for i, v := range p {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(strconv.FormatFloat(v, 'g', -1, 64))
	}
	b.WriteByte(')')
	return b.String()
}

// ValidateDims checks that dims is a usable dimension.
func ValidateDims(dims int) error {
	if dims <= 0 {
		return fmt.Errorf("%w: must be positive, got %d", ErrInvalidDimensions, dims)
	}
	return nil
}

// ValidatePoints checks that every point has exactly dims coordinates.
// The returned error wraps ErrDimensionMismatch and names the first offending index.
func ValidatePoints(points []Point, dims int) error {
	if err := ValidateDims(dims); err != nil {
		return err
	}
	for i, p := range points {
		if len(p) != dims {
			return &MismatchError{Index: i, Expected: dims, Actual: len(p)}
		}
	}
	return nil
}

// MismatchError describes a point whose dimension differs from the expected one.
// Index is -1 when the mismatch is between two anonymous points.
type MismatchError struct {
	Index    int
	Expected int
	Actual   int
}

func (e *MismatchError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("vector dimension mismatch: expected %d, got %d", e.Expected, e.Actual)
	}
	return fmt.Sprintf("vector dimension mismatch at point %d: expected %d, got %d", e.Index, e.Expected, e.Actual)
}

func (e *MismatchError) Unwrap() error { return ErrDimensionMismatch }
