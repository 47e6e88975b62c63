package blobstore

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStore_Lifecycle(t *testing.T) {
	for name, opts := range map[string][]LocalOption{
		"mmap":  nil,
		"pread": {WithPread()},
	} {
		t.Run(name, func(t *testing.T) {
			dir := t.TempDir()
			store := NewLocalStore(dir, opts...)
			ctx := context.Background()

			data := []byte("hello world, this is a zone file")
			require.NoError(t, store.Put(ctx, "z001", data))

			_, err := os.Stat(filepath.Join(dir, "z001"))
			require.NoError(t, err)

			blob, err := store.Open(ctx, "z001")
			require.NoError(t, err)
			defer blob.Close()

			assert.Equal(t, int64(len(data)), blob.Size())

			buf := make([]byte, 5)
			n, err := blob.ReadAt(ctx, buf, 6)
			require.NoError(t, err)
			assert.Equal(t, 5, n)
			assert.Equal(t, "world", string(buf))

			// Short read at the tail.
			buf = make([]byte, 10)
			n, err = blob.ReadAt(ctx, buf, int64(len(data)-4))
			assert.ErrorIs(t, err, io.EOF)
			assert.Equal(t, 4, n)

			all, err := ReadAll(ctx, blob)
			require.NoError(t, err)
			assert.Equal(t, data, all)
		})
	}
}

func TestLocalStore_NotFound(t *testing.T) {
	store := NewLocalStore(t.TempDir())
	_, err := store.Open(context.Background(), "z900")
	assert.True(t, errors.Is(err, ErrNotFound))

	store = NewLocalStore(t.TempDir(), WithPread())
	_, err = store.Open(context.Background(), "z900")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestLocalStore_PutOverwrite(t *testing.T) {
	dir := t.TempDir()
	store := NewLocalStore(dir)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "sub/z001.idx", []byte("first")))
	require.NoError(t, store.Put(ctx, "sub/z001.idx", []byte("second")))

	got, err := os.ReadFile(filepath.Join(dir, "sub", "z001.idx"))
	require.NoError(t, err)
	assert.Equal(t, "second", string(got))

	entries, err := os.ReadDir(filepath.Join(dir, "sub"))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary files must not be left behind")
}

func TestLocalStore_EmptyBlob(t *testing.T) {
	store := NewLocalStore(t.TempDir())
	ctx := context.Background()
	require.NoError(t, store.Put(ctx, "z002", nil))

	blob, err := store.Open(ctx, "z002")
	require.NoError(t, err)
	defer blob.Close()

	assert.Zero(t, blob.Size())
	all, err := ReadAll(ctx, blob)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestReadFull_Short(t *testing.T) {
	ctx := context.Background()
	mem := NewMemoryStore()
	require.NoError(t, mem.Put(ctx, "z001", []byte("abc")))

	blob, err := mem.Open(ctx, "z001")
	require.NoError(t, err)

	buf := make([]byte, 3)
	require.NoError(t, ReadFull(ctx, blob, buf, 0))
	assert.Equal(t, "abc", string(buf))

	err = ReadFull(ctx, blob, make([]byte, 4), 0)
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
}
