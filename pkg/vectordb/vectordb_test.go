package vectordb

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterAndPut(t *testing.T) {
	idx := NewHNSWVectorIndex()
	require.NoError(t, idx.Register("Doc", 3, MetricCosine))

	ctx := context.Background()
	require.NoError(t, idx.Put(ctx, "Doc", "d1", []float32{1, 0, 0}))

	err := idx.Put(ctx, "Doc", "d2", []float32{1, 0})
	assert.ErrorIs(t, err, ErrDimensionMismatch)

	err = idx.Put(ctx, "Other", "x", []float32{1})
	assert.ErrorIs(t, err, ErrUnknownType)
}

func TestSearchOrdersByAscendingCosineDistance(t *testing.T) {
	idx := NewHNSWVectorIndex()
	require.NoError(t, idx.Register("Doc", 2, MetricCosine))
	ctx := context.Background()

	require.NoError(t, idx.Put(ctx, "Doc", "same", []float32{1, 0}))
	require.NoError(t, idx.Put(ctx, "Doc", "close", []float32{1, 0.1}))
	require.NoError(t, idx.Put(ctx, "Doc", "far", []float32{0, 1}))

	results, err := idx.Search(ctx, "Doc", []float32{1, 0}, 3)
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.Equal(t, "same", results[0].ID)
	assert.InDelta(t, 0, results[0].Distance, 1e-9)
	for i := 1; i < len(results); i++ {
		assert.GreaterOrEqual(t, results[i].Distance, results[i-1].Distance)
	}
}

func TestSearchTieBreaksByIDAscending(t *testing.T) {
	idx := NewHNSWVectorIndex()
	require.NoError(t, idx.Register("Doc", 2, MetricCosine))
	ctx := context.Background()

	require.NoError(t, idx.Put(ctx, "Doc", "b", []float32{1, 0}))
	require.NoError(t, idx.Put(ctx, "Doc", "a", []float32{1, 0}))

	results, err := idx.Search(ctx, "Doc", []float32{1, 0}, 2)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "a", results[0].ID)
	assert.Equal(t, "b", results[1].ID)
}

func TestEuclideanMetricDoesNotNormalize(t *testing.T) {
	idx := NewHNSWVectorIndex()
	require.NoError(t, idx.Register("Point", 2, MetricEuclidean))
	ctx := context.Background()

	require.NoError(t, idx.Put(ctx, "Point", "p1", []float32{3, 4}))
	require.NoError(t, idx.Put(ctx, "Point", "p2", []float32{0, 0}))

	results, err := idx.Search(ctx, "Point", []float32{0, 0}, 2)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "p2", results[0].ID)
	assert.InDelta(t, 0, results[0].Distance, 1e-9)
	assert.Equal(t, "p1", results[1].ID)
	assert.InDelta(t, 5, results[1].Distance, 1e-6)
}

func TestDeleteRemovesVector(t *testing.T) {
	idx := NewHNSWVectorIndex()
	require.NoError(t, idx.Register("Doc", 2, MetricCosine))
	ctx := context.Background()

	require.NoError(t, idx.Put(ctx, "Doc", "d1", []float32{1, 0}))
	require.NoError(t, idx.Delete(ctx, "Doc", "d1"))

	results, err := idx.Search(ctx, "Doc", []float32{1, 0}, 5)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestRegisterTwiceFails(t *testing.T) {
	idx := NewHNSWVectorIndex()
	require.NoError(t, idx.Register("Doc", 2, MetricCosine))
	err := idx.Register("Doc", 2, MetricCosine)
	assert.ErrorIs(t, err, ErrAlreadyRegistered)
}
