// Package bench times the sequential and parallel strategies against each
// other on the same data.
package bench

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/vexsearch/kmeans/internal/kmeans"
	"github.com/vexsearch/kmeans/internal/logging"
	"github.com/vexsearch/kmeans/internal/report"
	"github.com/vexsearch/kmeans/internal/vector"
)

// Options controls a benchmark.
type Options struct {
	// Repeat is the number of sequential/parallel run pairs.
	Repeat int
	Logger *logging.Logger
	// EngineOptions are passed to every engine, e.g. an observer.
	EngineOptions []kmeans.Option
}

// Summary aggregates a benchmark.
type Summary struct {
	Repeat        int
	Points        int
	SequentialAvg time.Duration
	ParallelAvg   time.Duration

	// Agreements counts the pairs whose strategies produced the same
	// membership.
	Agreements int

	// Sequential and Parallel are the results of the last pair.
	Sequential *kmeans.Result
	Parallel   *kmeans.Result
}

// Speedup is SequentialAvg / ParallelAvg, or 0 when the parallel average
// is zero.
func (s *Summary) Speedup() float64 {
	if s.ParallelAvg <= 0 {
		return 0
	}
	return float64(s.SequentialAvg) / float64(s.ParallelAvg)
}

// Run clusters points opts.Repeat times with each strategy. Both runs of a
// pair share a seed; with cfg.Seed 0 every pair draws a new one.
func Run(ctx context.Context, points []vector.Point, cfg kmeans.Config, opts Options) (*Summary, error) {
	if opts.Repeat <= 0 {
		return nil, &kmeans.InvalidConfigurationError{Field: "repeat", Value: opts.Repeat, Reason: "must be positive"}
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.Nop()
	}

	engineOpts := append([]kmeans.Option{kmeans.WithLogger(logger)}, opts.EngineOptions...)

	summary := &Summary{Repeat: opts.Repeat, Points: len(points)}
	var seqTotal, parTotal time.Duration

	for i := 0; i < opts.Repeat; i++ {
		pairCfg := cfg
		if pairCfg.Seed == 0 {
			pairCfg.Seed = rand.Uint64() | 1
		}
		engine, err := kmeans.New(points, pairCfg, engineOpts...)
		if err != nil {
			return nil, err
		}

		seq, err := engine.RunSequential(ctx)
		if err != nil {
			return nil, fmt.Errorf("sequential run %d: %w", i, err)
		}
		par, err := engine.RunParallel(ctx)
		if err != nil {
			return nil, fmt.Errorf("parallel run %d: %w", i, err)
		}

		seqTotal += seq.Elapsed
		parTotal += par.Elapsed
		same := report.SameMembership(seq.Clusters, par.Clusters)
		if same {
			summary.Agreements++
		}
		summary.Sequential, summary.Parallel = seq, par

		logger.Info("bench pair finished",
			"repeat", i,
			"seed", pairCfg.Seed,
			"sequential_ms", float64(seq.Elapsed.Microseconds())/1000.0,
			"parallel_ms", float64(par.Elapsed.Microseconds())/1000.0,
			"same_membership", same,
		)
	}

	summary.SequentialAvg = seqTotal / time.Duration(opts.Repeat)
	summary.ParallelAvg = parTotal / time.Duration(opts.Repeat)
	return summary, nil
}
