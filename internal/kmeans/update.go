package kmeans

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/vexsearch/kmeans/internal/vector"
)

// Updater recomputes one centroid per cluster as the mean of its members.
//
// The returned slice always has len(clusters) entries and entry i belongs to
// clusters[i]. Clusters without members leave a nil entry and are listed in
// an *EmptyClusterError returned alongside the partial result.
type Updater interface {
	Update(ctx context.Context, clusters []Cluster, dims int) ([]vector.Point, error)
}

// SequentialUpdater computes the means one cluster at a time in index order.
type SequentialUpdater struct{}

// Update implements Updater.
func (SequentialUpdater) Update(_ context.Context, clusters []Cluster, dims int) ([]vector.Point, error) {
	centroids := make([]vector.Point, len(clusters))
	var empty []int
	for i := range clusters {
		if clusters[i].Len() == 0 {
			empty = append(empty, i)
			continue
		}
		m, err := mean(&clusters[i], dims)
		if err != nil {
			return nil, err
		}
		centroids[i] = m
	}
	if len(empty) > 0 {
		return centroids, &EmptyClusterError{Clusters: empty}
	}
	return centroids, nil
}

// ParallelUpdater distributes contiguous ranges of clusters over Workers goroutines.
type ParallelUpdater struct {
	Workers int
}

// Update implements Updater. Worker w writes only the centroid slots of the
// clusters in its range, plus its own entry in the empty-cluster table, so
// the result is aligned with the cluster index without any locking.
func (u ParallelUpdater) Update(ctx context.Context, clusters []Cluster, dims int) ([]vector.Point, error) {
	if u.Workers <= 0 {
		return nil, configError("workers", u.Workers, "must be positive")
	}

	ranges := partitionIntoRanges(len(clusters), u.Workers)
	centroids := make([]vector.Point, len(clusters))
	emptyByWorker := make([][]int, len(ranges))

	g, _ := errgroup.WithContext(ctx)
	for w, r := range ranges {
		g.Go(func() error {
			for i := r.Start; i < r.End; i++ {
				if clusters[i].Len() == 0 {
					emptyByWorker[w] = append(emptyByWorker[w], i)
					continue
				}
				m, err := mean(&clusters[i], dims)
				if err != nil {
					return err
				}
				centroids[i] = m
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// Ranges are ascending, so concatenating in worker order keeps the list sorted.
	var empty []int
	for _, e := range emptyByWorker {
		empty = append(empty, e...)
	}
	if len(empty) > 0 {
		return centroids, &EmptyClusterError{Clusters: empty}
	}
	return centroids, nil
}

// mean returns a fresh point holding the componentwise mean of c's members.
// c must not be empty.
func mean(c *Cluster, dims int) (vector.Point, error) {
	sum := make(vector.Point, dims)
	for j, p := range c.Points {
		if len(p) != dims {
			return nil, &InvalidInputError{
				Index: c.Indices[j],
				Err:   &vector.MismatchError{Index: c.Indices[j], Expected: dims, Actual: len(p)},
			}
		}
		for d := 0; d < dims; d++ {
			sum[d] += p[d]
		}
	}
	n := float64(c.Len())
	for d := range sum {
		sum[d] /= n
	}
	return sum, nil
}
