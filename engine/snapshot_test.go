package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/vexo/blobstore"
	"github.com/hupe1980/vexo/model"
	"github.com/hupe1980/vexo/persistence"
)

func TestSnapshotRoundtrip(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t, 2)
	seedWines(t, e)
	require.NoError(t, e.Delete(ctx, "rose"))

	mgr := persistence.NewManager(blobstore.NewMemoryStore(), nil, nil)
	require.NoError(t, e.SaveSnapshot(ctx, mgr, "snapshots/latest"))

	restored, err := LoadSnapshot(ctx, mgr, "snapshots/latest")
	require.NoError(t, err)

	assert.Equal(t, e.Len(), restored.Len())
	assert.Equal(t, e.DocCount(), restored.DocCount())
	assert.InDelta(t, e.TombstoneRatio(), restored.TombstoneRatio(), 1e-9)
	assert.False(t, restored.Contains("rose"))

	rec, err := restored.Get("red")
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 0}, rec.Dense)
	assert.Equal(t, "red wine", rec.Fields["title"])

	// Dense search runs against the restored adjacency.
	want, err := e.Search(ctx, Query{Vector: []float32{1, 0}, K: 2})
	require.NoError(t, err)
	got, err := restored.Search(ctx, Query{Vector: []float32{1, 0}, K: 2})
	require.NoError(t, err)
	assert.Equal(t, want, got)

	// The lexical index is rebuilt from the documents, not serialized.
	res, err := restored.Search(ctx, Query{Text: "white", K: 5})
	require.NoError(t, err)
	require.Len(t, res, 1)
	assert.Equal(t, model.ID("white"), res[0].ID)
}

func TestSnapshotIsConsistentCopy(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t, 2)
	seedWines(t, e)

	snap := e.Snapshot()
	require.NoError(t, e.Delete(ctx, "red"))

	restored, err := Restore(snap)
	require.NoError(t, err)
	assert.True(t, restored.Contains("red"), "snapshot must not observe later mutations")
	assert.Equal(t, 3, restored.Len())
}

func TestRestoredEngineAcceptsWrites(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t, 2)
	seedWines(t, e)

	restored, err := Restore(e.Snapshot())
	require.NoError(t, err)

	require.NoError(t, restored.Insert(ctx, model.Record{
		ID: "port", Dense: []float32{0.5, 0.5}, Fields: map[string]string{"title": "tawny port"},
	}))
	assert.Equal(t, 4, restored.Len())

	res, err := restored.Search(ctx, Query{Text: "tawny", K: 5})
	require.NoError(t, err)
	require.Len(t, res, 1)
	assert.Equal(t, model.ID("port"), res[0].ID)
}

func TestLoadSnapshotMissing(t *testing.T) {
	mgr := persistence.NewManager(blobstore.NewMemoryStore(), nil, nil)
	_, err := LoadSnapshot(context.Background(), mgr, "ghost")
	assert.ErrorIs(t, err, blobstore.ErrNotFound)
}
