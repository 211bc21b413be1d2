package hnsw

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/vexo/testutil"
)

func TestExportRestoreRoundtrip(t *testing.T) {
	ctx := context.Background()
	idx := newTestIndex(t, 8)

	rng := testutil.NewRNG(11)
	vectors := rng.UniformVectors(80, 8)
	ids := testutil.IDs("v", 80)
	for i, v := range vectors {
		_, err := idx.Insert(ctx, ids[i], v)
		require.NoError(t, err)
	}
	require.NoError(t, idx.Delete(ctx, ids[5]))

	snap := idx.Export()
	restored, err := Restore(snap)
	require.NoError(t, err)

	assert.Equal(t, idx.Len(), restored.Len())
	assert.Equal(t, idx.Dimension(), restored.Dimension())
	assert.Equal(t, idx.Metric(), restored.Metric())
	assert.InDelta(t, idx.TombstoneRatio(), restored.TombstoneRatio(), 1e-9)
	assert.False(t, restored.Contains(ids[5]))
	assert.True(t, restored.Contains(ids[6]))

	// Identical adjacency means identical search results.
	q := rng.UniformVectors(1, 8)[0]
	want, err := idx.Search(ctx, q, 10, nil)
	require.NoError(t, err)
	got, err := restored.Search(ctx, q, 10, nil)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestExportIsDeepCopy(t *testing.T) {
	ctx := context.Background()
	idx := newTestIndex(t, 2)
	_, err := idx.Insert(ctx, "a", []float32{1, 2})
	require.NoError(t, err)

	snap := idx.Export()
	require.NoError(t, idx.Delete(ctx, "a"))

	restored, err := Restore(snap)
	require.NoError(t, err)
	assert.True(t, restored.Contains("a"), "snapshot must not observe later mutations")
}

func TestRestoreUnknownMetric(t *testing.T) {
	snap := &Snapshot{Metric: "bogus", Dimension: 2, M: 16, EF: 200}
	_, err := Restore(snap)
	assert.Error(t, err)
}

func TestRebuildCompacted(t *testing.T) {
	ctx := context.Background()
	idx := newTestIndex(t, 8)

	rng := testutil.NewRNG(23)
	vectors := rng.UniformVectors(50, 8)
	ids := testutil.IDs("v", 50)
	for i, v := range vectors {
		_, err := idx.Insert(ctx, ids[i], v)
		require.NoError(t, err)
	}
	for i := 0; i < 20; i++ {
		require.NoError(t, idx.Delete(ctx, ids[i]))
	}
	require.InDelta(t, 0.4, idx.TombstoneRatio(), 1e-9)

	fresh, err := idx.RebuildCompacted(ctx)
	require.NoError(t, err)

	assert.Equal(t, 30, fresh.Len())
	assert.Zero(t, fresh.TombstoneRatio())
	for i := 0; i < 20; i++ {
		assert.False(t, fresh.Contains(ids[i]))
	}
	for i := 20; i < 50; i++ {
		assert.True(t, fresh.Contains(ids[i]))
	}

	// The original index is left untouched.
	assert.Equal(t, 30, idx.Len())
	assert.InDelta(t, 0.4, idx.TombstoneRatio(), 1e-9)
}
