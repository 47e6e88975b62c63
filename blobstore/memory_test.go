package blobstore

import (
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/skycat/internal/resource"
)

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	data := []byte("zone")
	require.NoError(t, store.Put(ctx, "z001", data))
	data[0] = 'X' // Put copies

	blob, err := store.Open(ctx, "z001")
	require.NoError(t, err)
	got, err := ReadAll(ctx, blob)
	require.NoError(t, err)
	assert.Equal(t, "zone", string(got))

	view, err := blob.(Mappable).View(1, 2)
	require.NoError(t, err)
	assert.Equal(t, "on", string(view))
	_, err = blob.(Mappable).View(3, 4)
	assert.ErrorIs(t, err, io.EOF)

	require.NoError(t, store.Put(ctx, "z001.idx", nil))
	assert.Equal(t, 2, store.Len())

	_, err = store.Open(ctx, "z002")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestThrottledStore(t *testing.T) {
	ctx := context.Background()
	mem := NewMemoryStore()
	require.NoError(t, mem.Put(ctx, "z001", []byte("0123456789")))

	rc := resource.NewController(resource.Limits{ConcurrentReads: 1, ReadBytesPerSecond: 1 << 20})
	store := NewThrottledStore(mem, rc)

	blob, err := store.Open(ctx, "z001")
	require.NoError(t, err)
	assert.Equal(t, int64(10), blob.Size())

	buf := make([]byte, 4)
	require.NoError(t, ReadFull(ctx, blob, buf, 3))
	assert.Equal(t, "3456", string(buf))

	canceled, cancel := context.WithCancel(ctx)
	cancel()
	hold, err := rc.BeginRead(ctx, 0) // the only slot
	require.NoError(t, err)
	_, err = blob.ReadAt(canceled, buf, 0)
	assert.ErrorIs(t, err, context.Canceled)
	hold()

	_, err = store.Open(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}
