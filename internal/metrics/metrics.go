// Package metrics provides Prometheus metrics for kmeans runs.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "kmeans"

var (
	// RunsTotal tracks finished runs per strategy and outcome.
	RunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Total clustering runs",
		},
		[]string{"strategy", "status"}, // status: success/error
	)

	// RunLatency tracks wall-clock time of whole runs.
	RunLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_latency_seconds",
			Help:      "Clustering run latency in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 10),
		},
		[]string{"strategy"},
	)

	// RunIterations tracks how many assign/update rounds a run needed.
	RunIterations = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_iterations",
			Help:      "Assign/update rounds per clustering run",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 12),
		},
		[]string{"strategy"},
	)

	// StepLatency tracks the duration of single assignment and update steps.
	StepLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "step_latency_seconds",
			Help:      "Assignment/update step latency in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 10),
		},
		[]string{"strategy", "step"}, // step: assigning/updating
	)

	// EmptyClusterReinits counts centroids redrawn because their cluster was empty.
	EmptyClusterReinits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "empty_cluster_reinits_total",
			Help:      "Centroids reinitialized after an empty assignment",
		},
		[]string{"strategy"},
	)

	// TotalShift holds the summed centroid displacement of the latest check.
	TotalShift = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "total_shift",
			Help:      "Summed centroid displacement of the latest convergence check",
		},
		[]string{"strategy"},
	)

	// DatasetPoints holds the number of points of the latest loaded dataset.
	DatasetPoints = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "dataset_points",
			Help:      "Number of points in the latest loaded dataset",
		},
	)

	// ObjectStoreOps tracks object store operations.
	ObjectStoreOps = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "objectstore_ops_total",
			Help:      "Total object store operations",
		},
		[]string{"operation", "status"}, // operation: get/head/put/list/delete, status: success/error
	)

	// ObjectStoreLatency tracks object store operation latency.
	ObjectStoreLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "objectstore_latency_seconds",
			Help:      "Object store operation latency in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"operation"},
	)
)

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

// ObserveRun records a finished run.
func ObserveRun(strategy string, iterations int, latencySeconds float64, err error) {
	RunsTotal.WithLabelValues(strategy, status(err)).Inc()
	if err != nil {
		return
	}
	RunLatency.WithLabelValues(strategy).Observe(latencySeconds)
	RunIterations.WithLabelValues(strategy).Observe(float64(iterations))
}

// ObserveStep records one assignment or update step.
func ObserveStep(strategy, step string, latencySeconds float64) {
	StepLatency.WithLabelValues(strategy, step).Observe(latencySeconds)
}

// AddEmptyClusterReinits adds n reinitialized centroids.
func AddEmptyClusterReinits(strategy string, n int) {
	if n <= 0 {
		return
	}
	EmptyClusterReinits.WithLabelValues(strategy).Add(float64(n))
}

// SetTotalShift sets the latest total centroid shift.
func SetTotalShift(strategy string, shift float64) {
	TotalShift.WithLabelValues(strategy).Set(shift)
}

// SetDatasetPoints sets the size of the latest loaded dataset.
func SetDatasetPoints(n int) {
	DatasetPoints.Set(float64(n))
}

// ObserveObjectStoreOp records an object store operation.
func ObserveObjectStoreOp(operation string, latencySeconds float64, err error) {
	ObjectStoreOps.WithLabelValues(operation, status(err)).Inc()
	ObjectStoreLatency.WithLabelValues(operation).Observe(latencySeconds)
}

// Handler returns the HTTP handler exposing the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
