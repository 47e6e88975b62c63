package zone

import (
	"context"
	"encoding/binary"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/skycat/blobstore"
	"github.com/hupe1980/skycat/manifest"
	"github.com/hupe1980/skycat/model"
)

func smallManifest() manifest.Manifest {
	m := manifest.Default()
	m.Zones = 2
	m.Buckets = 4
	return m
}

func sampleTable(zone model.ZoneID) *Table {
	return NewTable(zone, []Entry{
		{Count: 2, Offset: 0},
		{Count: 0, Offset: 156},
		{Count: 1, Offset: 156},
		{Count: 3, Offset: 234},
	})
}

func TestTable_ParseEncode(t *testing.T) {
	want := sampleTable(1)
	data := want.Encode(binary.LittleEndian)
	require.Len(t, data, 4*manifest.IndexEntrySize)

	got, err := ParseTable(1, data, 4, binary.LittleEndian)
	require.NoError(t, err)
	assert.Equal(t, want, got)
	assert.Equal(t, uint64(6), got.Records())

	off, n, err := got.AddressRange(4)
	require.NoError(t, err)
	assert.Equal(t, uint64(234), off)
	assert.Equal(t, uint32(3), n)

	_, _, err = got.AddressRange(5)
	assert.ErrorIs(t, err, ErrOutOfRange)
	_, _, err = got.AddressRange(0)
	assert.ErrorIs(t, err, ErrOutOfRange)

	_, err = ParseTable(1, data[:len(data)-1], 4, binary.LittleEndian)
	assert.ErrorIs(t, err, ErrCorruptIndex)
	assert.ErrorIs(t, err, ErrZoneNotFound)
}

func TestTable_Validate(t *testing.T) {
	tbl := sampleTable(1)
	assert.NoError(t, tbl.Validate(6*78, 78))
	assert.ErrorIs(t, tbl.Validate(5*78, 78), ErrCorruptIndex)

	misaligned := NewTable(1, []Entry{{Count: 1, Offset: 10}})
	assert.ErrorIs(t, misaligned.Validate(1000, 78), ErrCorruptIndex)
}

func TestIndex_LoadsOncePerZone(t *testing.T) {
	ctx := context.Background()
	m := smallManifest()
	store := blobstore.NewMemoryStore()
	require.NoError(t, store.Put(ctx, m.IndexName(1), sampleTable(1).Encode(m.Order())))

	ix := NewIndex(store, m)

	var wg sync.WaitGroup
	for range 32 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			off, n, err := ix.AddressRange(ctx, model.Address{Zone: 1, Bucket: 3})
			assert.NoError(t, err)
			assert.Equal(t, uint64(156), off)
			assert.Equal(t, uint32(1), n)
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(1), ix.Loads())

	// Same table pointer on every call.
	a, err := ix.Table(ctx, 1)
	require.NoError(t, err)
	b, err := ix.Table(ctx, 1)
	require.NoError(t, err)
	assert.Same(t, a, b)
}

// gatedStore blocks Open until release is closed.
type gatedStore struct {
	blobstore.BlobStore
	once    sync.Once
	entered chan struct{}
	release chan struct{}
}

func (g *gatedStore) Open(ctx context.Context, name string) (blobstore.Blob, error) {
	g.once.Do(func() { close(g.entered) })
	<-g.release
	return g.BlobStore.Open(ctx, name)
}

func TestIndex_CanceledCallerDoesNotFailSharedLoad(t *testing.T) {
	m := smallManifest()
	mem := blobstore.NewMemoryStore()
	require.NoError(t, mem.Put(context.Background(), m.IndexName(1), sampleTable(1).Encode(m.Order())))

	gs := &gatedStore{BlobStore: mem, entered: make(chan struct{}), release: make(chan struct{})}
	ix := NewIndex(gs, m)

	ctx, cancel := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := ix.Table(ctx, 1)
		firstErr <- err
	}()

	<-gs.entered
	cancel()
	assert.ErrorIs(t, <-firstErr, context.Canceled)

	// The load started by the canceled caller is still in flight; joining it
	// with a live context must succeed.
	second := make(chan error, 1)
	go func() {
		tbl, err := ix.Table(context.Background(), 1)
		if err == nil {
			assert.Equal(t, uint64(6), tbl.Records())
		}
		second <- err
	}()
	close(gs.release)
	require.NoError(t, <-second)
	assert.Equal(t, int64(1), ix.Loads())
}

func TestIndex_Missing(t *testing.T) {
	ix := NewIndex(blobstore.NewMemoryStore(), smallManifest())

	_, err := ix.Table(context.Background(), 2)
	assert.ErrorIs(t, err, ErrMissingIndex)
	assert.ErrorIs(t, err, ErrZoneNotFound)

	_, err = ix.Probe(context.Background(), 2)
	assert.ErrorIs(t, err, ErrMissingIndex)
}

func TestIndex_ProbeRawSizeMismatch(t *testing.T) {
	ctx := context.Background()
	m := smallManifest()
	store := blobstore.NewMemoryStore()
	require.NoError(t, store.Put(ctx, m.IndexName(1), make([]byte, 47)))

	ix := NewIndex(store, m)
	_, err := ix.Probe(ctx, 1)
	assert.ErrorIs(t, err, ErrCorruptIndex)
	assert.Zero(t, ix.Loads(), "raw indexes are checked by length only")
}

func TestIndex_CompressedVariants(t *testing.T) {
	for _, c := range []Compression{CompressionZSTD, CompressionLZ4} {
		t.Run(c.String(), func(t *testing.T) {
			ctx := context.Background()
			m := smallManifest()
			store := blobstore.NewMemoryStore()

			page, err := Compress(c, sampleTable(2).Encode(m.Order()))
			require.NoError(t, err)
			require.NoError(t, store.Put(ctx, m.IndexName(2)+c.Suffix(), page))

			ix := NewIndex(store, m)
			loc, err := ix.Probe(ctx, 2)
			require.NoError(t, err)
			assert.Equal(t, c, loc.Compression)
			assert.Equal(t, "z002.idx"+c.Suffix(), loc.Name)
			assert.Equal(t, int64(1), ix.Loads())

			// Installed by Probe: no second decode.
			tbl, err := ix.Table(ctx, 2)
			require.NoError(t, err)
			assert.Equal(t, uint64(6), tbl.Records())
			assert.Equal(t, int64(1), ix.Loads())
		})
	}
}

func TestIndex_CompressedWrongLength(t *testing.T) {
	ctx := context.Background()
	m := smallManifest()
	store := blobstore.NewMemoryStore()

	page, err := Compress(CompressionZSTD, make([]byte, 5*manifest.IndexEntrySize))
	require.NoError(t, err)
	require.NoError(t, store.Put(ctx, m.IndexName(1)+".zst", page))

	_, err = NewIndex(store, m).Probe(ctx, 1)
	assert.ErrorIs(t, err, ErrCorruptIndex)

	require.NoError(t, store.Put(ctx, m.IndexName(2)+".lz4", []byte("not an lz4 frame")))
	_, err = NewIndex(store, m).Probe(ctx, 2)
	assert.ErrorIs(t, err, ErrCorruptIndex)
}

func TestDecompress_StopsPastLimit(t *testing.T) {
	const limit = 64
	big := make([]byte, 1<<20)
	for _, c := range []Compression{CompressionZSTD, CompressionLZ4} {
		t.Run(c.String(), func(t *testing.T) {
			page, err := Compress(c, big)
			require.NoError(t, err)

			out, err := decompress(c, page, limit)
			require.NoError(t, err)
			assert.Len(t, out, limit+1)

			exact, err := Compress(c, big[:limit])
			require.NoError(t, err)
			out, err = decompress(c, exact, limit)
			require.NoError(t, err)
			assert.Len(t, out, limit)
		})
	}
}
