package kmeans

import (
	"context"
	"errors"
	"math/rand/v2"
	"time"

	"github.com/vexsearch/kmeans/internal/logging"
	"github.com/vexsearch/kmeans/internal/metrics"
	"github.com/vexsearch/kmeans/internal/vector"
)

// Result is the outcome of one clustering run.
type Result struct {
	Strategy Strategy
	Seed     uint64

	// InitialIndices are the point-set indices that seeded the centroids.
	InitialIndices []int

	// Clusters come from the last assignment step and therefore belong to the
	// centroids in effect before the final update, not to Centroids.
	Clusters []Cluster

	// Centroids are the ones computed by the final update.
	Centroids []vector.Point

	Iterations    int
	TotalShift    float64
	Converged     bool
	Reinitialized int
	Elapsed       time.Duration
}

// Event describes one state transition of a run.
type Event struct {
	Strategy  Strategy
	From      State
	To        State
	Iteration int
	Elapsed   time.Duration

	// TotalShift is set once the first convergence check has run.
	TotalShift float64

	// Centroids were used by the latest assignment, Clusters is that
	// assignment, Next holds the centroids of the latest update. Observers
	// must treat all three as read-only.
	Centroids []vector.Point
	Clusters  []Cluster
	Next      []vector.Point
}

// Observer is called synchronously after every state transition.
type Observer func(Event)

// Option configures an Engine.
type Option func(*Engine)

// WithInitializer replaces the default RandomInitializer.
func WithInitializer(init Initializer) Option {
	return func(e *Engine) { e.initializer = init }
}

// WithPolicy replaces the transition policy derived from Config.MaxIterations.
func WithPolicy(p TransitionPolicy) Option {
	return func(e *Engine) { e.policy = p }
}

// WithObserver registers an observer for state transitions.
func WithObserver(o Observer) Option {
	return func(e *Engine) { e.observers = append(e.observers, o) }
}

// WithLogger sets the logger used for run progress.
func WithLogger(l *logging.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// Engine runs Lloyd's algorithm over a fixed point set.
// An Engine can be run any number of times with either strategy.
type Engine struct {
	points      []vector.Point
	cfg         Config
	initializer Initializer
	policy      TransitionPolicy
	observers   []Observer
	logger      *logging.Logger
}

// New validates cfg and points and returns an engine ready to run.
func New(points []vector.Point, cfg Config, opts ...Option) (*Engine, error) {
	if err := cfg.Validate(len(points)); err != nil {
		return nil, err
	}
	if err := vector.ValidatePoints(points, cfg.Dims); err != nil {
		idx := -1
		var me *vector.MismatchError
		if errors.As(err, &me) {
			idx = me.Index
		}
		return nil, &InvalidInputError{Index: idx, Err: err}
	}

	e := &Engine{
		points:      points,
		cfg:         cfg,
		initializer: RandomInitializer{},
		policy:      Bounded{MaxIterations: cfg.MaxIterations},
		logger:      logging.Nop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Config returns the engine configuration.
func (e *Engine) Config() Config {
	return e.cfg
}

// RunSequential clusters the points with the sequential strategy.
func (e *Engine) RunSequential(ctx context.Context) (*Result, error) {
	return e.Run(ctx, StrategySequential)
}

// RunParallel clusters the points with the parallel strategy.
func (e *Engine) RunParallel(ctx context.Context) (*Result, error) {
	return e.Run(ctx, StrategyParallel)
}

// Run clusters the points with the given strategy.
//
// The context is checked between steps only; a step that has started always
// runs to completion.
func (e *Engine) Run(ctx context.Context, strategy Strategy) (*Result, error) {
	var assigner Assigner
	var updater Updater
	switch strategy {
	case StrategySequential:
		assigner, updater = SequentialAssigner{}, SequentialUpdater{}
	case StrategyParallel:
		assigner = ParallelAssigner{Workers: e.cfg.Workers}
		updater = ParallelUpdater{Workers: e.cfg.Workers}
	default:
		return nil, configError("strategy", strategy, "must be sequential or parallel")
	}

	seed := e.cfg.Seed
	if seed == 0 {
		seed = rand.Uint64()
	}
	r := &run{
		engine:   e,
		strategy: strategy,
		seed:     seed,
		rng:      newRand(seed),
		assigner: assigner,
		updater:  updater,
		checker:  ConvergenceChecker{MinChange: e.cfg.MinChange},
	}

	logger := e.logger.WithContext(ctx).With("strategy", string(strategy), "seed", seed)
	logger.Debug("kmeans run started", "config", e.cfg.String(), "points", len(e.points))

	start := time.Now()
	state, err := r.loop(ctx)
	elapsed := time.Since(start)
	metrics.ObserveRun(string(strategy), r.iteration, elapsed.Seconds(), err)
	if err != nil {
		logger.Error("kmeans run failed", "iterations", r.iteration, "error", err)
		return nil, err
	}

	res := &Result{
		Strategy:       strategy,
		Seed:           seed,
		InitialIndices: r.initial,
		Clusters:       r.clusters,
		Centroids:      r.next,
		Iterations:     r.iteration,
		TotalShift:     r.shift,
		Converged:      state == StateConverged,
		Reinitialized:  r.reinits,
		Elapsed:        elapsed,
	}
	logger.Info("kmeans run finished",
		"iterations", res.Iterations,
		"converged", res.Converged,
		"total_shift", res.TotalShift,
		"reinitialized", res.Reinitialized,
		"elapsed_ms", float64(elapsed.Microseconds())/1000.0,
	)
	return res, nil
}

// run carries the mutable state of a single Run call.
type run struct {
	engine   *Engine
	strategy Strategy
	seed     uint64
	rng      *rand.Rand
	assigner Assigner
	updater  Updater
	checker  ConvergenceChecker

	initial   []int
	centroids []vector.Point
	clusters  []Cluster
	next      []vector.Point
	iteration int
	shift     float64
	reinits   int
}

func (r *run) loop(ctx context.Context) (State, error) {
	state := StateInitializing
	for !state.Terminal() {
		if err := ctx.Err(); err != nil {
			return state, err
		}
		start := time.Now()
		to, err := r.step(ctx, state)
		if err != nil {
			return state, err
		}
		elapsed := time.Since(start)
		if state == StateAssigning || state == StateUpdating {
			metrics.ObserveStep(string(r.strategy), state.String(), elapsed.Seconds())
		}
		r.emit(state, to, elapsed)

		if state == StateCheckingConvergence && to == StateAssigning {
			r.centroids = r.next
		}
		state = to
	}
	return state, nil
}

func (r *run) step(ctx context.Context, state State) (State, error) {
	e := r.engine
	switch state {
	case StateInitializing:
		indices, err := e.initializer.Init(e.points, e.cfg.K, r.rng)
		if err != nil {
			return state, err
		}
		r.initial = indices
		r.centroids = make([]vector.Point, len(indices))
		for i, idx := range indices {
			r.centroids[i] = e.points[idx]
		}
		return StateAssigning, nil

	case StateAssigning:
		clusters, err := r.assigner.Assign(ctx, r.centroids, e.points)
		if err != nil {
			return state, err
		}
		r.clusters = clusters
		return StateUpdating, nil

	case StateUpdating:
		next, err := r.updater.Update(ctx, r.clusters, e.cfg.Dims)
		var empty *EmptyClusterError
		if errors.As(err, &empty) {
			empty.Iteration = r.iteration + 1
			if e.cfg.emptyClusterPolicy() == EmptyClusterFail {
				return state, empty
			}
			r.reinitialize(next, empty.Clusters)
		} else if err != nil {
			return state, err
		}
		r.next = next
		return StateCheckingConvergence, nil

	case StateCheckingConvergence:
		shift, converged, err := r.checker.Check(r.centroids, r.next)
		if err != nil {
			return state, err
		}
		r.iteration++
		r.shift = shift
		metrics.SetTotalShift(string(r.strategy), shift)
		return e.policy.AfterCheck(r.iteration, shift, converged), nil
	}
	return state, nil
}

// reinitialize draws a replacement centroid for each empty cluster, in
// ascending cluster order so both strategies consume the random source alike.
func (r *run) reinitialize(next []vector.Point, empty []int) {
	points := r.engine.points
	for _, c := range empty {
		next[c] = points[r.rng.IntN(len(points))].Clone()
	}
	r.reinits += len(empty)
	metrics.AddEmptyClusterReinits(string(r.strategy), len(empty))
	r.engine.logger.Warn("reinitialized empty clusters",
		"strategy", string(r.strategy),
		"iteration", r.iteration+1,
		"clusters", empty,
	)
}

func (r *run) emit(from, to State, elapsed time.Duration) {
	r.engine.logger.Debug("kmeans transition",
		"strategy", string(r.strategy),
		"from", from.String(),
		"to", to.String(),
		"iteration", r.iteration,
	)
	if len(r.engine.observers) == 0 {
		return
	}
	ev := Event{
		Strategy:   r.strategy,
		From:       from,
		To:         to,
		Iteration:  r.iteration,
		Elapsed:    elapsed,
		TotalShift: r.shift,
		Centroids:  r.centroids,
		Clusters:   r.clusters,
		Next:       r.next,
	}
	for _, o := range r.engine.observers {
		o(ev)
	}
}

func newRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}
