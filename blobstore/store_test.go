package blobstore

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStore(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "subj", "variants"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "subj", "source.npy"), []byte("src"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "subj", "variants", "b.npy"), []byte("bb"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "subj", "variants", "a.npy"), []byte("aa"), 0o644))

	ctx := context.Background()
	store := NewLocalStore(root)

	t.Run("Open", func(t *testing.T) {
		data, err := ReadAll(ctx, store, "subj/source.npy")
		require.NoError(t, err)
		assert.Equal(t, []byte("src"), data)
	})

	t.Run("OpenMissing", func(t *testing.T) {
		_, err := store.Open(ctx, "subj/nope.npy")
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrNotFound))
	})

	t.Run("List", func(t *testing.T) {
		names, err := store.List(ctx, "subj/variants/")
		require.NoError(t, err)
		assert.Equal(t, []string{"subj/variants/a.npy", "subj/variants/b.npy"}, names)
	})
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	store.Put("x/one", []byte("1"))
	store.Put("x/two", []byte("2"))
	store.Put("y/three", []byte("3"))

	data, err := ReadAll(ctx, store, "x/two")
	require.NoError(t, err)
	assert.Equal(t, []byte("2"), data)

	_, err = store.Open(ctx, "missing")
	assert.True(t, errors.Is(err, ErrNotFound))

	names, err := store.List(ctx, "x/")
	require.NoError(t, err)
	assert.Equal(t, []string{"x/one", "x/two"}, names)
}

func TestMemoryStorePutClones(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	buf := []byte("abc")
	store.Put("k", buf)
	buf[0] = 'z'

	data, err := ReadAll(ctx, store, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("abc"), data)
}
