package blobstore

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dfs "github.com/hupe1980/delaunay/internal/fs"
)

func testStoreLifecycle(t *testing.T, store Store) {
	t.Helper()

	ctx := context.Background()

	data := []byte("hello world, this is a test archive")
	require.NoError(t, store.Put(ctx, "a/one.dlna", data))
	require.NoError(t, store.Put(ctx, "a/two.dlna", []byte("second")))
	require.NoError(t, store.Put(ctx, "b.dlna", []byte("third")))

	got, err := store.Get(ctx, "a/one.dlna")
	require.NoError(t, err)
	assert.Equal(t, data, got)

	// Mutating the returned slice must not affect the stored blob.
	got[0] = 'X'
	again, err := store.Get(ctx, "a/one.dlna")
	require.NoError(t, err)
	assert.Equal(t, data, again)

	names, err := store.List(ctx, "a/")
	require.NoError(t, err)
	assert.Equal(t, []string{"a/one.dlna", "a/two.dlna"}, names)

	all, err := store.List(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"a/one.dlna", "a/two.dlna", "b.dlna"}, all)

	// Overwrite
	require.NoError(t, store.Put(ctx, "b.dlna", []byte("replaced")))
	got, err = store.Get(ctx, "b.dlna")
	require.NoError(t, err)
	assert.Equal(t, "replaced", string(got))

	require.NoError(t, store.Delete(ctx, "a/two.dlna"))
	_, err = store.Get(ctx, "a/two.dlna")
	assert.ErrorIs(t, err, ErrNotFound)

	// Deleting twice is fine.
	require.NoError(t, store.Delete(ctx, "a/two.dlna"))

	_, err = store.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore(t *testing.T) {
	testStoreLifecycle(t, NewMemoryStore())
}

func TestLocalStore(t *testing.T) {
	dir := t.TempDir()
	store := NewLocalStore(dir)
	testStoreLifecycle(t, store)

	t.Run("NoTempFilesLeft", func(t *testing.T) {
		entries, err := os.ReadDir(filepath.Join(dir, "a"))
		require.NoError(t, err)
		for _, e := range entries {
			assert.NotContains(t, e.Name(), ".tmp-")
		}
	})

	t.Run("EmptyBlob", func(t *testing.T) {
		ctx := context.Background()
		require.NoError(t, store.Put(ctx, "empty", nil))
		got, err := store.Get(ctx, "empty")
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("MissingRoot", func(t *testing.T) {
		names, err := NewLocalStore(filepath.Join(dir, "nope")).List(context.Background(), "")
		require.NoError(t, err)
		assert.Empty(t, names)
	})
}

func TestCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	store := NewMemoryStore()
	assert.ErrorIs(t, store.Put(ctx, "x", []byte("y")), context.Canceled)

	_, err := store.Get(ctx, "x")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLocalStore_FailedPutLeavesNoTrace(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name  string
		fault dfs.Fault
	}{
		{"Write", dfs.Fault{FailAfterBytes: 2}},
		{"Sync", dfs.Fault{FailAfterBytes: -1, FailOnSync: true}},
		{"Close", dfs.Fault{FailAfterBytes: -1, FailOnClose: true}},
		{"Rename", dfs.Fault{FailAfterBytes: -1, FailOnRename: true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			ffs := dfs.NewFaultyFS(nil)
			ffs.AddRule("mesh", tt.fault)
			store := newLocalStoreFS(dir, ffs)

			err := store.Put(ctx, "mesh.dlna", []byte("payload"))
			assert.ErrorIs(t, err, dfs.ErrInjected)

			_, err = store.Get(ctx, "mesh.dlna")
			assert.ErrorIs(t, err, ErrNotFound)

			entries, err := os.ReadDir(dir)
			require.NoError(t, err)
			assert.Empty(t, entries)
		})
	}

	t.Run("PreviousBlobSurvives", func(t *testing.T) {
		dir := t.TempDir()
		ffs := dfs.NewFaultyFS(nil)
		store := newLocalStoreFS(dir, ffs)
		require.NoError(t, store.Put(ctx, "mesh.dlna", []byte("v1")))

		ffs.AddRule("mesh", dfs.Fault{FailAfterBytes: -1, FailOnSync: true})
		require.Error(t, store.Put(ctx, "mesh.dlna", []byte("v2")))

		got, err := store.Get(ctx, "mesh.dlna")
		require.NoError(t, err)
		assert.Equal(t, "v1", string(got))
	})
}
