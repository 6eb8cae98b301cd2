// Package report summarizes clustering results for people and machines.
package report

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/vexsearch/kmeans/internal/dataset"
	"github.com/vexsearch/kmeans/internal/kmeans"
	"github.com/vexsearch/kmeans/pkg/objectstore"
)

// Meta identifies the run and its input.
type Meta struct {
	RunID       string
	Dataset     string
	Fingerprint string
	Points      int
	Config      kmeans.Config
}

// Report is the JSON document written after a run.
type Report struct {
	RunID         string           `json:"run_id"`
	Dataset       string           `json:"dataset,omitempty"`
	Fingerprint   string           `json:"fingerprint,omitempty"`
	Points        int              `json:"points"`
	K             int              `json:"k"`
	Dims          int              `json:"dims"`
	MinChange     float64          `json:"min_change"`
	Workers       int              `json:"workers"`
	Strategy      string           `json:"strategy"`
	Seed          uint64           `json:"seed"`
	Iterations    int              `json:"iterations"`
	Converged     bool             `json:"converged"`
	TotalShift    float64          `json:"total_shift"`
	Reinitialized int              `json:"reinitialized"`
	ElapsedMs     float64          `json:"elapsed_ms"`
	CreatedAt     time.Time        `json:"created_at"`
	Clusters      []ClusterSummary `json:"clusters"`
}

// ClusterSummary describes one cluster. Centroid is the final centroid,
// Members the xxhash digest of the member indices.
type ClusterSummary struct {
	Index    int       `json:"index"`
	Size     int       `json:"size"`
	Centroid []float64 `json:"centroid"`
	Members  string    `json:"members"`
}

// New builds the report for res.
func New(res *kmeans.Result, meta Meta) *Report {
	r := &Report{
		RunID:         meta.RunID,
		Dataset:       meta.Dataset,
		Fingerprint:   meta.Fingerprint,
		Points:        meta.Points,
		K:             meta.Config.K,
		Dims:          meta.Config.Dims,
		MinChange:     meta.Config.MinChange,
		Workers:       meta.Config.Workers,
		Strategy:      string(res.Strategy),
		Seed:          res.Seed,
		Iterations:    res.Iterations,
		Converged:     res.Converged,
		TotalShift:    res.TotalShift,
		Reinitialized: res.Reinitialized,
		ElapsedMs:     float64(res.Elapsed.Microseconds()) / 1000.0,
		CreatedAt:     time.Now().UTC(),
	}
	members := Membership(res.Clusters)
	for i := range res.Clusters {
		cs := ClusterSummary{
			Index:   i,
			Size:    res.Clusters[i].Len(),
			Members: Digest(members[i]),
		}
		if i < len(res.Centroids) {
			cs.Centroid = append([]float64(nil), res.Centroids[i]...)
		}
		r.Clusters = append(r.Clusters, cs)
	}
	return r
}

// Save writes the report as indented JSON under key, zstd-compressed when
// the key ends in ".zst".
func (r *Report) Save(ctx context.Context, store objectstore.Store, key string) (*objectstore.ObjectInfo, error) {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode report: %w", err)
	}
	return dataset.Put(ctx, store, key, append(data, '\n'), "application/json")
}

// WriteSizes prints one "Cluster: <size>" line per cluster, followed by its
// points when withPoints is set.
func WriteSizes(w io.Writer, clusters []kmeans.Cluster, withPoints bool) error {
	for i := range clusters {
		if _, err := fmt.Fprintf(w, "Cluster: %d\n", clusters[i].Len()); err != nil {
			return err
		}
		if !withPoints {
			continue
		}
		for _, p := range clusters[i].Points {
			if _, err := fmt.Fprintf(w, "Point: %s\n", p); err != nil {
				return err
			}
		}
	}
	return nil
}
