package fs

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalFS(t *testing.T) {
	tmp := t.TempDir()
	lfs := LocalFS{}

	dir := filepath.Join(tmp, "sub")
	require.NoError(t, lfs.MkdirAll(dir, 0o755))

	f, err := lfs.CreateTemp(dir, ".tmp-*")
	require.NoError(t, err)
	_, err = f.Write([]byte("hello"))
	require.NoError(t, err)
	require.NoError(t, f.Sync())
	require.NoError(t, f.Close())

	target := filepath.Join(dir, "blob")
	require.NoError(t, lfs.Rename(f.Name(), target))
	data, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))

	require.NoError(t, lfs.Remove(target))
	_, err = os.Stat(target)
	assert.True(t, os.IsNotExist(err))
}

func TestFaultyFS(t *testing.T) {
	errDisk := errors.New("disk full")

	t.Run("WriteLimit", func(t *testing.T) {
		ffs := NewFaultyFS(nil)
		ffs.AddRule(".tmp-", Fault{FailAfterBytes: 4, Err: errDisk})

		f, err := ffs.CreateTemp(t.TempDir(), ".tmp-*")
		require.NoError(t, err)
		defer f.Close()

		_, err = f.Write([]byte("abc"))
		require.NoError(t, err)
		_, err = f.Write([]byte("de"))
		assert.ErrorIs(t, err, errDisk)
		assert.Equal(t, int64(3), ffs.Written())
	})

	t.Run("SyncAndClose", func(t *testing.T) {
		ffs := NewFaultyFS(nil)
		ffs.AddRule("bad", Fault{FailAfterBytes: -1, FailOnSync: true, FailOnClose: true})

		f, err := ffs.CreateTemp(t.TempDir(), "bad-*")
		require.NoError(t, err)
		assert.ErrorIs(t, f.Sync(), ErrInjected)
		assert.ErrorIs(t, f.Close(), ErrInjected)

		good, err := ffs.CreateTemp(t.TempDir(), "good-*")
		require.NoError(t, err)
		assert.NoError(t, good.Sync())
		assert.NoError(t, good.Close())
	})

	t.Run("Rename", func(t *testing.T) {
		dir := t.TempDir()
		ffs := NewFaultyFS(nil)
		ffs.AddRule("locked", Fault{FailAfterBytes: -1, FailOnRename: true})

		f, err := ffs.CreateTemp(dir, "x-*")
		require.NoError(t, err)
		require.NoError(t, f.Close())

		assert.ErrorIs(t, ffs.Rename(f.Name(), filepath.Join(dir, "locked")), ErrInjected)
		assert.NoError(t, ffs.Rename(f.Name(), filepath.Join(dir, "open")))
	})

	t.Run("LongestPatternWins", func(t *testing.T) {
		ffs := NewFaultyFS(nil)
		ffs.AddRule("a", Fault{FailAfterBytes: -1, FailOnSync: true})
		ffs.AddRule("abc", NoFault)

		f, err := ffs.CreateTemp(t.TempDir(), "abc-*")
		require.NoError(t, err)
		defer f.Close()
		assert.NoError(t, f.Sync())
	})
}
