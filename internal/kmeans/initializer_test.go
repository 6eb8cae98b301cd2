package kmeans

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vexsearch/kmeans/internal/vector"
)

func linePoints(n int) []vector.Point {
	points := make([]vector.Point, n)
	for i := range points {
		points[i] = vector.NewPoint(float64(i), 0)
	}
	return points
}

func TestRandomInitializer_DistinctIndices(t *testing.T) {
	points := linePoints(20)
	for seed := uint64(1); seed <= 50; seed++ {
		indices, err := RandomInitializer{}.Init(points, 7, newRand(seed))
		require.NoError(t, err)
		require.Len(t, indices, 7)

		seen := make(map[int]bool)
		for _, idx := range indices {
			assert.False(t, seen[idx], "seed %d drew index %d twice", seed, idx)
			assert.GreaterOrEqual(t, idx, 0)
			assert.Less(t, idx, len(points))
			seen[idx] = true
		}
	}
}

func TestRandomInitializer_KEqualsN(t *testing.T) {
	points := linePoints(6)
	indices, err := RandomInitializer{}.Init(points, 6, newRand(3))
	require.NoError(t, err)
	assert.ElementsMatch(t, []int{0, 1, 2, 3, 4, 5}, indices)
}

func TestRandomInitializer_SameSeedSameDraw(t *testing.T) {
	points := linePoints(50)
	a, err := RandomInitializer{}.Init(points, 5, newRand(99))
	require.NoError(t, err)
	b, err := RandomInitializer{}.Init(points, 5, newRand(99))
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestRandomInitializer_DuplicateValuesAccepted(t *testing.T) {
	points := []vector.Point{vector.NewPoint(1, 1), vector.NewPoint(1, 1)}
	indices, err := RandomInitializer{}.Init(points, 2, newRand(1))
	require.NoError(t, err)
	assert.ElementsMatch(t, []int{0, 1}, indices)
}

func TestRandomInitializer_InvalidK(t *testing.T) {
	points := linePoints(3)

	_, err := RandomInitializer{}.Init(points, 4, newRand(1))
	assert.ErrorIs(t, err, ErrInvalidConfiguration)

	_, err = RandomInitializer{}.Init(points, 0, newRand(1))
	assert.ErrorIs(t, err, ErrInvalidConfiguration)
}

func TestFixedInitializer(t *testing.T) {
	points := linePoints(4)

	indices, err := FixedInitializer{3, 1}.Init(points, 2, nil)
	require.NoError(t, err)
	assert.Equal(t, []int{3, 1}, indices)

	_, err = FixedInitializer{1, 1}.Init(points, 2, nil)
	assert.ErrorIs(t, err, ErrInvalidConfiguration)

	_, err = FixedInitializer{0, 9}.Init(points, 2, nil)
	assert.ErrorIs(t, err, ErrInvalidConfiguration)

	_, err = FixedInitializer{0}.Init(points, 2, nil)
	assert.ErrorIs(t, err, ErrInvalidConfiguration)
}
