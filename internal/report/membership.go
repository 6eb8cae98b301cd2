package report

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/RoaringBitmap/roaring"
	"github.com/cespare/xxhash/v2"

	"github.com/vexsearch/kmeans/internal/kmeans"
)

var ErrNotPartition = errors.New("clusters do not partition the point set")

// Membership returns one bitmap of point indices per cluster.
func Membership(clusters []kmeans.Cluster) []*roaring.Bitmap {
	out := make([]*roaring.Bitmap, len(clusters))
	for i := range clusters {
		bm := roaring.New()
		for _, idx := range clusters[i].Indices {
			bm.Add(uint32(idx))
		}
		out[i] = bm
	}
	return out
}

// Verify checks that clusters cover every index in [0, n) exactly once.
func Verify(clusters []kmeans.Cluster, n int) error {
	union := roaring.New()
	total := 0
	for i, bm := range Membership(clusters) {
		if bm.GetCardinality() != uint64(len(clusters[i].Indices)) {
			return fmt.Errorf("%w: cluster %d lists a point twice", ErrNotPartition, i)
		}
		if union.Intersects(bm) {
			return fmt.Errorf("%w: cluster %d shares points with an earlier cluster", ErrNotPartition, i)
		}
		union.Or(bm)
		total += len(clusters[i].Indices)
	}
	if total != n || union.GetCardinality() != uint64(n) {
		return fmt.Errorf("%w: %d of %d points assigned", ErrNotPartition, union.GetCardinality(), n)
	}
	if n > 0 && union.Maximum() != uint32(n-1) {
		return fmt.Errorf("%w: index %d out of range", ErrNotPartition, union.Maximum())
	}
	return nil
}

// SameMembership reports whether a and b group the points identically,
// regardless of cluster order.
func SameMembership(a, b []kmeans.Cluster) bool {
	if len(a) != len(b) {
		return false
	}
	left, right := Membership(a), Membership(b)
	used := make([]bool, len(right))
	for _, l := range left {
		found := false
		for j, r := range right {
			if !used[j] && l.Equals(r) {
				used[j] = true
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// Digest hashes the member indices of bm in ascending order.
func Digest(bm *roaring.Bitmap) string {
	h := xxhash.New()
	var buf [4]byte
	it := bm.Iterator()
	for it.HasNext() {
		binary.LittleEndian.PutUint32(buf[:], it.Next())
		h.Write(buf[:])
	}
	return fmt.Sprintf("%016x", h.Sum64())
}
