package kmeans

import (
	"math/rand/v2"
	"sort"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vexsearch/kmeans/internal/vector"
)

// blobs returns n points per center, jittered uniformly by spread.
func blobs(seed uint64, n int, spread float64, centers ...vector.Point) []vector.Point {
	rng := rand.New(rand.NewPCG(seed, seed+1))
	var points []vector.Point
	for i := 0; i < n; i++ {
		for _, c := range centers {
			p := make(vector.Point, len(c))
			for d := range c {
				p[d] = c[d] + (rng.Float64()*2-1)*spread
			}
			points = append(points, p)
		}
	}
	return points
}

func sortedIndices(c Cluster) []int {
	out := append([]int(nil), c.Indices...)
	sort.Ints(out)
	return out
}

// requirePartition checks every point index appears in exactly one cluster.
func requirePartition(t *testing.T, clusters []Cluster, n int) {
	t.Helper()
	require.Equal(t, n, TotalMembers(clusters))
	seen := make([]bool, n)
	for ci := range clusters {
		require.Len(t, clusters[ci].Indices, clusters[ci].Len())
		for _, idx := range clusters[ci].Indices {
			require.False(t, seen[idx], "point %d assigned twice", idx)
			seen[idx] = true
		}
	}
}
