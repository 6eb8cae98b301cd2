package kmeans

import (
	"fmt"
	"runtime"

	"github.com/vexsearch/kmeans/internal/vector"
)

// Strategy selects how assignment and centroid updates are executed.
type Strategy string

const (
	StrategySequential Strategy = "sequential"
	StrategyParallel   Strategy = "parallel"
)

// IsValid returns true if the strategy is a recognized value.
func (s Strategy) IsValid() bool {
	switch s {
	case StrategySequential, StrategyParallel:
		return true
	default:
		return false
	}
}

// ParseStrategy parses a strategy name.
func ParseStrategy(s string) (Strategy, error) {
	st := Strategy(s)
	if !st.IsValid() {
		return "", configError("strategy", s, "must be sequential or parallel")
	}
	return st, nil
}

// EmptyClusterPolicy decides what happens when a cluster receives no points.
type EmptyClusterPolicy string

const (
	// EmptyClusterReinit replaces the centroid of an empty cluster with a point
	// drawn uniformly from the point set and keeps iterating.
	EmptyClusterReinit EmptyClusterPolicy = "reinit"

	// EmptyClusterFail aborts the run with an *EmptyClusterError.
	EmptyClusterFail EmptyClusterPolicy = "fail"
)

// DefaultEmptyClusterPolicy is used when the policy is left empty.
const DefaultEmptyClusterPolicy = EmptyClusterReinit

// IsValid returns true if the policy is a recognized value.
func (p EmptyClusterPolicy) IsValid() bool {
	switch p {
	case EmptyClusterReinit, EmptyClusterFail:
		return true
	default:
		return false
	}
}

// ParseEmptyClusterPolicy parses a policy name.
func ParseEmptyClusterPolicy(s string) (EmptyClusterPolicy, error) {
	p := EmptyClusterPolicy(s)
	if !p.IsValid() {
		return "", configError("empty_cluster_policy", s, "must be reinit or fail")
	}
	return p, nil
}

// Config holds the parameters of a clustering run.
type Config struct {
	// K is the number of clusters. Must be in [1, len(points)].
	K int

	// Dims is the dimension every point must have.
	Dims int

	// MinChange is the convergence threshold on the summed centroid shift.
	MinChange float64

	// Workers is the goroutine count of the parallel strategy.
	Workers int

	// MaxIterations caps the number of assign/update rounds. 0 means no cap.
	MaxIterations int

	// EmptyClusterPolicy defaults to EmptyClusterReinit.
	EmptyClusterPolicy EmptyClusterPolicy

	// Seed feeds the random source. 0 picks a fresh seed for every run.
	Seed uint64
}

// DefaultConfig returns a Config with every optional field filled in.
func DefaultConfig() Config {
	return Config{
		MinChange:          1e-9,
		Workers:            runtime.NumCPU(),
		EmptyClusterPolicy: DefaultEmptyClusterPolicy,
	}
}

// Validate checks the configuration against a point set of size n.
func (c Config) Validate(n int) error {
	if n <= 0 {
		return configError("points", n, "at least one point is required")
	}
	if err := checkK(c.K, n); err != nil {
		return err
	}
	if err := vector.ValidateDims(c.Dims); err != nil {
		return configError("dims", c.Dims, "must be positive")
	}
	if !(c.MinChange > 0) {
		return configError("min_change", c.MinChange, "must be positive")
	}
	if c.Workers <= 0 {
		return configError("workers", c.Workers, "must be positive")
	}
	if c.MaxIterations < 0 {
		return configError("max_iterations", c.MaxIterations, "must not be negative")
	}
	if c.EmptyClusterPolicy != "" && !c.EmptyClusterPolicy.IsValid() {
		return configError("empty_cluster_policy", c.EmptyClusterPolicy, "must be reinit or fail")
	}
	return nil
}

func (c Config) emptyClusterPolicy() EmptyClusterPolicy {
	if c.EmptyClusterPolicy == "" {
		return DefaultEmptyClusterPolicy
	}
	return c.EmptyClusterPolicy
}

func (c Config) String() string {
	return fmt.Sprintf("k=%d dims=%d min_change=%g workers=%d max_iterations=%d empty_cluster_policy=%s",
		c.K, c.Dims, c.MinChange, c.Workers, c.MaxIterations, c.emptyClusterPolicy())
}
