package kmeans

import "github.com/vexsearch/kmeans/internal/vector"

// Cluster is the set of points assigned to one centroid.
//
// Indices[i] is the position of Points[i] in the input point set. Member
// order is input order for sequential assignment and worker order, then
// input order within a worker, for parallel assignment.
type Cluster struct {
	Indices []int
	Points  []vector.Point
}

// Len returns the number of members.
func (c *Cluster) Len() int {
	return len(c.Points)
}

func (c *Cluster) add(idx int, p vector.Point) {
	c.Indices = append(c.Indices, idx)
	c.Points = append(c.Points, p)
}

func (c *Cluster) addAll(o *Cluster) {
	c.Indices = append(c.Indices, o.Indices...)
	c.Points = append(c.Points, o.Points...)
}

func newClusters(k int) []Cluster {
	return make([]Cluster, k)
}

// TotalMembers sums the member counts of all clusters.
func TotalMembers(clusters []Cluster) int {
	n := 0
	for i := range clusters {
		n += clusters[i].Len()
	}
	return n
}
