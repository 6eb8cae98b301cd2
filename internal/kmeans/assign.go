package kmeans

import (
	"context"
	"errors"
	"math"

	"golang.org/x/sync/errgroup"

	"github.com/vexsearch/kmeans/internal/vector"
)

// Assigner partitions points into one cluster per centroid.
type Assigner interface {
	Assign(ctx context.Context, centroids, points []vector.Point) ([]Cluster, error)
}

// SequentialAssigner assigns points one by one in input order.
type SequentialAssigner struct{}

// Assign implements Assigner.
func (SequentialAssigner) Assign(_ context.Context, centroids, points []vector.Point) ([]Cluster, error) {
	if len(centroids) == 0 {
		return nil, configError("k", 0, "must be positive")
	}
	clusters := newClusters(len(centroids))
	for i, p := range points {
		c, err := nearestCentroid(p, centroids)
		if err != nil {
			return nil, &InvalidInputError{Index: i, Err: err}
		}
		clusters[c].add(i, p)
	}
	return clusters, nil
}

// ParallelAssigner splits the points into Workers contiguous ranges and
// assigns each range in its own goroutine.
type ParallelAssigner struct {
	Workers int
}

// Assign implements Assigner. Each worker fills a private set of buckets that
// only it writes; the sets are concatenated in worker order once all workers
// have returned. A failing worker fails the whole step.
func (a ParallelAssigner) Assign(ctx context.Context, centroids, points []vector.Point) ([]Cluster, error) {
	if a.Workers <= 0 {
		return nil, configError("workers", a.Workers, "must be positive")
	}
	if len(centroids) == 0 {
		return nil, configError("k", 0, "must be positive")
	}

	ranges := partitionIntoRanges(len(points), a.Workers)
	partials := make([][]Cluster, len(ranges))

	g, _ := errgroup.WithContext(ctx)
	for w, r := range ranges {
		g.Go(func() error {
			local := newClusters(len(centroids))
			for i := r.Start; i < r.End; i++ {
				c, err := nearestCentroid(points[i], centroids)
				if err != nil {
					return &InvalidInputError{Index: i, Err: err}
				}
				local[c].add(i, points[i])
			}
			partials[w] = local
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	clusters := newClusters(len(centroids))
	for _, local := range partials {
		for c := range local {
			clusters[c].addAll(&local[c])
		}
	}
	return clusters, nil
}

var errNoFiniteDistance = errors.New("point has no finite distance to any centroid")

// nearestCentroid returns the index of the closest centroid. Ties keep the
// lowest index because only a strictly smaller distance replaces the best.
func nearestCentroid(p vector.Point, centroids []vector.Point) (int, error) {
	best := -1
	bestDist := math.MaxFloat64
	for i, c := range centroids {
		d, err := vector.Euclidean(p, c)
		if err != nil {
			return -1, err
		}
		if d < bestDist {
			bestDist = d
			best = i
		}
	}
	if best < 0 {
		return -1, errNoFiniteDistance
	}
	return best, nil
}
