package blobstore

import (
	"context"
	"io"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/skycat/internal/cache"
)

type countingBlob struct {
	Blob
	reads     atomic.Int64
	readBytes atomic.Int64
}

func (c *countingBlob) ReadAt(ctx context.Context, p []byte, off int64) (int, error) {
	n, err := c.Blob.ReadAt(ctx, p, off)
	c.reads.Add(1)
	c.readBytes.Add(int64(n))
	return n, err
}

type countingStore struct {
	inner *MemoryStore
	blobs map[string]*countingBlob
}

func newCountingStore(t *testing.T, blobs map[string][]byte) *countingStore {
	t.Helper()
	s := &countingStore{inner: NewMemoryStore(), blobs: map[string]*countingBlob{}}
	for name, data := range blobs {
		require.NoError(t, s.inner.Put(context.Background(), name, data))
		b, err := s.inner.Open(context.Background(), name)
		require.NoError(t, err)
		s.blobs[name] = &countingBlob{Blob: b}
	}
	return s
}

func (s *countingStore) Open(_ context.Context, name string) (Blob, error) {
	b, ok := s.blobs[name]
	if !ok {
		return nil, ErrNotFound
	}
	return b, nil
}

func TestCachingStore_ReadAt(t *testing.T) {
	ctx := context.Background()
	data := make([]byte, 1024)
	for i := range data {
		data[i] = byte(i % 251)
	}

	inner := newCountingStore(t, map[string][]byte{"z001": data})
	store := NewCachingStore(inner, cache.NewLRU(1<<20, nil), 256)

	blob, err := store.Open(ctx, "z001")
	require.NoError(t, err)
	counted := inner.blobs["z001"]

	buf := make([]byte, 100)
	n, err := blob.ReadAt(ctx, buf, 0)
	require.NoError(t, err)
	assert.Equal(t, 100, n)
	assert.Equal(t, data[:100], buf)
	assert.Equal(t, int64(1), counted.reads.Load())
	assert.Equal(t, int64(256), counted.readBytes.Load(), "whole block 0 is fetched")

	// Cached.
	_, err = blob.ReadAt(ctx, buf, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), counted.reads.Load())

	// Spans block 0 (cached) and block 1 (missing).
	n, err = blob.ReadAt(ctx, buf, 200)
	require.NoError(t, err)
	assert.Equal(t, 100, n)
	assert.Equal(t, data[200:300], buf)
	assert.Equal(t, int64(2), counted.reads.Load())
	assert.Equal(t, int64(512), counted.readBytes.Load())
}

func TestCachingStore_CoalescesMissingRuns(t *testing.T) {
	ctx := context.Background()
	data := make([]byte, 2048)
	inner := newCountingStore(t, map[string][]byte{"z002": data})
	store := NewCachingStore(inner, cache.NewLRU(1<<20, nil), 256)

	blob, err := store.Open(ctx, "z002")
	require.NoError(t, err)

	buf := make([]byte, 1024)
	n, err := blob.ReadAt(ctx, buf, 0)
	require.NoError(t, err)
	assert.Equal(t, 1024, n)
	assert.Equal(t, int64(1), inner.blobs["z002"].reads.Load(), "four missing blocks in one request")
}

func TestCachingStore_ShortFile(t *testing.T) {
	ctx := context.Background()
	data := []byte("hello")
	inner := newCountingStore(t, map[string][]byte{"small": data})
	store := NewCachingStore(inner, cache.NewLRU(1024, nil), 256)

	blob, err := store.Open(ctx, "small")
	require.NoError(t, err)

	buf := make([]byte, 10)
	n, err := blob.ReadAt(ctx, buf, 0)
	assert.ErrorIs(t, err, io.EOF)
	assert.Equal(t, 5, n)
	assert.Equal(t, data, buf[:n])

	_, err = blob.ReadAt(ctx, buf, 5)
	assert.ErrorIs(t, err, io.EOF)
}

func TestCachingStore_CacheDeclines(t *testing.T) {
	ctx := context.Background()
	data := []byte("0123456789abcdef")
	inner := newCountingStore(t, map[string][]byte{"z003": data})
	// Capacity smaller than a block: nothing is ever cached.
	store := NewCachingStore(inner, cache.NewLRU(4, nil), 8)

	blob, err := store.Open(ctx, "z003")
	require.NoError(t, err)

	buf := make([]byte, 6)
	n, err := blob.ReadAt(ctx, buf, 5)
	require.NoError(t, err)
	assert.Equal(t, 6, n)
	assert.Equal(t, "56789a", string(buf))
}

func TestCachingStore_Canceled(t *testing.T) {
	inner := newCountingStore(t, map[string][]byte{"z004": make([]byte, 64)})
	store := NewCachingStore(inner, cache.NewLRU(1024, nil), 16)

	blob, err := store.Open(context.Background(), "z004")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = blob.ReadAt(ctx, make([]byte, 8), 0)
	assert.ErrorIs(t, err, context.Canceled)
}
