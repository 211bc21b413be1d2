package blobstore

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStoreLifecycle(t *testing.T) {
	ctx := context.Background()
	store := NewLocalStore(t.TempDir())

	data := []byte("hello world, this is a snapshot blob")
	require.NoError(t, store.Put(ctx, "snapshots/latest", data))

	got, err := store.Get(ctx, "snapshots/latest")
	require.NoError(t, err)
	assert.Equal(t, data, got)

	require.NoError(t, store.Delete(ctx, "snapshots/latest"))
	_, err = store.Get(ctx, "snapshots/latest")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLocalStorePutCreatesDirectories(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	store := NewLocalStore(root)

	require.NoError(t, store.Put(ctx, "a/b/c/blob", []byte("x")))

	_, err := os.Stat(filepath.Join(root, "a", "b", "c", "blob"))
	assert.NoError(t, err)
}

func TestLocalStorePutLeavesNoTempFiles(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	store := NewLocalStore(root)

	require.NoError(t, store.Put(ctx, "blob", []byte("x")))
	require.NoError(t, store.Put(ctx, "blob", []byte("y"))) // overwrite

	entries, err := os.ReadDir(root)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "blob", entries[0].Name())

	got, err := store.Get(ctx, "blob")
	require.NoError(t, err)
	assert.Equal(t, []byte("y"), got)
}

func TestLocalStoreDeleteMissingIsNoop(t *testing.T) {
	store := NewLocalStore(t.TempDir())
	assert.NoError(t, store.Delete(context.Background(), "ghost"))
}

func TestLocalStoreList(t *testing.T) {
	ctx := context.Background()
	store := NewLocalStore(t.TempDir())

	require.NoError(t, store.Put(ctx, "snap/b", nil))
	require.NoError(t, store.Put(ctx, "snap/a", nil))
	require.NoError(t, store.Put(ctx, "wal/1", nil))

	names, err := store.List(ctx, "snap/")
	require.NoError(t, err)
	assert.Equal(t, []string{"snap/a", "snap/b"}, names)

	all, err := store.List(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestLocalStoreListMissingRoot(t *testing.T) {
	store := NewLocalStore(filepath.Join(t.TempDir(), "does-not-exist"))
	names, err := store.List(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestLocalStoreCanceledContext(t *testing.T) {
	store := NewLocalStore(t.TempDir())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, store.Put(ctx, "a", nil), context.Canceled)
	_, err := store.Get(ctx, "a")
	assert.ErrorIs(t, err, context.Canceled)
}
