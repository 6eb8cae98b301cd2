// Package kmeans implements Lloyd's algorithm over a fixed set of points.
//
// The engine alternates nearest-centroid assignment and mean-based centroid
// recomputation until the summed centroid displacement of one iteration
// falls to or below a configured threshold. Assignment and recomputation each
// come in a sequential and a parallel flavour; the parallel flavour splits its
// input into contiguous ranges, runs one goroutine per range for the duration
// of a single step, and merges the per-worker results after every worker has
// finished.
//
// The clusters returned by a run are the ones produced by the last assignment
// step, i.e. they were built against the centroids that preceded the final
// update. The final centroids are reported separately in Result.Centroids.
package kmeans
