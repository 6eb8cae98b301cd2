package kmeans

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidConfiguration is the class of errors returned for unusable engine parameters.
	ErrInvalidConfiguration = errors.New("invalid kmeans configuration")

	// ErrInvalidInput is the class of errors returned for points of the wrong dimension.
	ErrInvalidInput = errors.New("invalid kmeans input")

	// ErrEmptyCluster is the class of errors returned when a cluster received no points.
	ErrEmptyCluster = errors.New("empty cluster")
)

// InvalidConfigurationError reports a parameter that cannot be used to start a run.
type InvalidConfigurationError struct {
	Field  string
	Value  any
	Reason string
}

func (e *InvalidConfigurationError) Error() string {
	return fmt.Sprintf("invalid kmeans configuration: %s=%v: %s", e.Field, e.Value, e.Reason)
}

func (e *InvalidConfigurationError) Is(target error) bool {
	return target == ErrInvalidConfiguration
}

// InvalidInputError reports a point that does not match the configured dimension.
// Index is the position in the input point set, or -1 when unknown.
type InvalidInputError struct {
	Index int
	Err   error
}

func (e *InvalidInputError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("invalid kmeans input: %v", e.Err)
	}
	return fmt.Sprintf("invalid kmeans input at point %d: %v", e.Index, e.Err)
}

func (e *InvalidInputError) Is(target error) bool {
	return target == ErrInvalidInput
}

func (e *InvalidInputError) Unwrap() error { return e.Err }

// EmptyClusterError lists the clusters that received no points in one assignment.
// Clusters is sorted ascending.
type EmptyClusterError struct {
	Clusters  []int
	Iteration int
}

func (e *EmptyClusterError) Error() string {
	return fmt.Sprintf("empty cluster(s) %v in iteration %d", e.Clusters, e.Iteration)
}

func (e *EmptyClusterError) Is(target error) bool {
	return target == ErrEmptyCluster
}

func configError(field string, value any, reason string) error {
	return &InvalidConfigurationError{Field: field, Value: value, Reason: reason}
}
