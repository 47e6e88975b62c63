package skycat_test

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/skycat"
	"github.com/hupe1980/skycat/blobstore"
	"github.com/hupe1980/skycat/manifest"
	"github.com/hupe1980/skycat/testutil"
)

func smallCatalog(t *testing.T, configure func(*testutil.CatalogBuilder)) *blobstore.MemoryStore {
	t.Helper()
	b := testutil.NewCatalogBuilder(testutil.SmallManifest()).WriteManifest()
	b.Add(15, 5, 10.5, 0.1).
		Add(25, 5, 11.5, 0.1).
		Add(26, 6, math.NaN(), math.NaN()).
		Add(200, -85, 9.5, 0.2)
	if configure != nil {
		configure(b)
	}
	blobs := blobstore.NewMemoryStore()
	_, err := b.Build(context.Background(), blobs)
	require.NoError(t, err)
	return blobs
}

func openSmall(t *testing.T, blobs blobstore.BlobStore, opts ...skycat.Option) *skycat.Catalog {
	t.Helper()
	cat, err := skycat.Open(context.Background(), skycat.Remote(blobs), opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = cat.Close() })
	return cat
}

func TestOpen_ReadsManifest(t *testing.T) {
	cat := openSmall(t, smallCatalog(t, nil))

	m := cat.Manifest()
	assert.Equal(t, "TEST", m.Prefix)
	assert.Equal(t, 18, m.Zones)
	assert.Equal(t, 36, m.Buckets)
}

func TestOpen_Local(t *testing.T) {
	dir := t.TempDir()
	b := testutil.NewCatalogBuilder(testutil.SmallManifest()).WriteManifest()
	b.Add(25, 5, 11.5, 0.1)
	_, err := b.Build(context.Background(), blobstore.NewLocalStore(dir))
	require.NoError(t, err)

	for _, opts := range [][]skycat.Option{
		nil,
		{skycat.WithLocalOptions(blobstore.WithPread())},
	} {
		cat, err := skycat.Open(context.Background(), skycat.Local(dir), opts...)
		require.NoError(t, err)

		star, err := cat.LookupByID(context.Background(), "TEST 010-000001")
		require.NoError(t, err)
		assert.InDelta(t, 25.0, star.RA, 1e-9)
		require.NoError(t, cat.Close())
	}
}

func TestOpen_Failures(t *testing.T) {
	ctx := context.Background()
	m := testutil.SmallManifest()

	t.Run("missing zone", func(t *testing.T) {
		blobs := smallCatalog(t, func(b *testutil.CatalogBuilder) {
			b.Omit(m.DataName(7))
		})
		_, err := skycat.Open(ctx, skycat.Remote(blobs))
		require.ErrorIs(t, err, skycat.ErrMissingZone)

		var ze *skycat.ZoneError
		require.True(t, errors.As(err, &ze))
		assert.EqualValues(t, 7, ze.Zone)
	})

	t.Run("short index", func(t *testing.T) {
		blobs := smallCatalog(t, func(b *testutil.CatalogBuilder) {
			b.Override(m.IndexName(3), make([]byte, 11))
		})
		_, err := skycat.Open(ctx, skycat.Remote(blobs))
		assert.ErrorIs(t, err, skycat.ErrCorruptIndex)
	})

	t.Run("ragged zone", func(t *testing.T) {
		blobs := smallCatalog(t, func(b *testutil.CatalogBuilder) {
			b.Override(m.DataName(4), make([]byte, m.Record.Size+1))
		})
		_, err := skycat.Open(ctx, skycat.Remote(blobs))
		assert.ErrorIs(t, err, skycat.ErrCorruptZone)
	})

	t.Run("invalid manifest", func(t *testing.T) {
		bad := testutil.SmallManifest()
		bad.Zones = 0
		_, err := skycat.Open(ctx, skycat.Remote(blobstore.NewMemoryStore()), skycat.WithManifest(bad))
		assert.ErrorIs(t, err, skycat.ErrInvalidManifest)
	})

	t.Run("empty location", func(t *testing.T) {
		_, err := skycat.Open(ctx, skycat.Local(""))
		assert.ErrorIs(t, err, skycat.ErrInvalidArgument)
	})
}

func TestLookupByID(t *testing.T) {
	cat := openSmall(t, smallCatalog(t, nil))
	ctx := context.Background()

	star, err := cat.LookupByID(ctx, "TEST 010-000003")
	require.NoError(t, err)
	assert.InDelta(t, 26.0, star.RA, 1e-9)
	assert.InDelta(t, 6.0, star.Dec, 1e-9)
	assert.True(t, math.IsNaN(star.Mag))
	assert.True(t, math.IsNaN(star.MagErr))

	_, err = cat.LookupByID(ctx, "TEST 010-000009")
	assert.ErrorIs(t, err, skycat.ErrNotFound)
	assert.ErrorIs(t, err, skycat.ErrOutOfRange)

	_, err = cat.LookupByID(ctx, "TEST 010_000001")
	assert.ErrorIs(t, err, skycat.ErrInvalidIdentifier)
}

func TestLookupMany(t *testing.T) {
	cat := openSmall(t, smallCatalog(t, nil))
	ctx := context.Background()

	stars, err := cat.LookupMany(ctx, []skycat.CatalogID{"TEST 010-000003", "TEST 001-000001", "TEST 010-000001"})
	require.NoError(t, err)
	require.Len(t, stars, 3)
	assert.InDelta(t, 26.0, stars[0].RA, 1e-9)
	assert.InDelta(t, -85.0, stars[1].Dec, 1e-9)
	assert.InDelta(t, 15.0, stars[2].RA, 1e-9)

	_, err = cat.LookupMany(ctx, []skycat.CatalogID{"TEST 010-000001", "TEST 001-000002"})
	assert.ErrorIs(t, err, skycat.ErrNotFound)
}

func TestNearest(t *testing.T) {
	cat := openSmall(t, smallCatalog(t, nil))
	ctx := context.Background()

	res, err := cat.Nearest(ctx, 25.1, 5.1, 2, 1)
	require.NoError(t, err)
	require.Len(t, res, 2)
	assert.Equal(t, skycat.CatalogID("TEST 010-000002"), res[0].Star.ID)
	assert.Equal(t, skycat.CatalogID("TEST 010-000003"), res[1].Star.ID)

	res, err = cat.Nearest(ctx, 120, 60, 3, 1)
	require.NoError(t, err)
	assert.Empty(t, res)

	_, err = cat.Nearest(ctx, 25, 5, 0, 1)
	assert.ErrorIs(t, err, skycat.ErrInvalidArgument)

	_, err = cat.Nearest(ctx, 25, -90.5, 1, 1)
	assert.ErrorIs(t, err, skycat.ErrOutOfRange)

	n, ok, err := cat.NearestOne(ctx, 199, -84, 1, skycat.WithMaxSeparation(2))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, skycat.CatalogID("TEST 001-000001"), n.Star.ID)
}

func TestNearestMany(t *testing.T) {
	cat := openSmall(t, smallCatalog(t, nil), skycat.WithParallelism(3))

	res := cat.NearestMany(context.Background(), []skycat.Point{
		{RA: 25.1, Dec: 5.1},
		{RA: 25, Dec: 95},
		{RA: 15, Dec: 5},
	}, 1, 1)
	require.Len(t, res, 3)
	require.NoError(t, res[0].Err)
	assert.ErrorIs(t, res[1].Err, skycat.ErrOutOfRange)
	require.NoError(t, res[2].Err)
	assert.Equal(t, skycat.CatalogID("TEST 010-000001"), res[2].Neighbors[0].Star.ID)
}

func TestReadBucket(t *testing.T) {
	cat := openSmall(t, smallCatalog(t, nil))
	ctx := context.Background()

	first, err := cat.ReadBucket(ctx, 10, 3)
	require.NoError(t, err)
	require.Len(t, first, 2)
	assert.Equal(t, skycat.CatalogID("TEST 010-000002"), first[0].ID)

	second, err := cat.ReadBucket(ctx, 10, 3)
	require.NoError(t, err)
	assert.Equal(t, len(first), len(second))
	for i := range first {
		assert.Equal(t, first[i].ID, second[i].ID)
		assert.Equal(t, first[i].RA, second[i].RA)
	}

	empty, err := cat.ReadBucket(ctx, 2, 2)
	require.NoError(t, err)
	assert.Empty(t, empty)

	_, err = cat.ReadBucket(ctx, 19, 1)
	assert.ErrorIs(t, err, skycat.ErrOutOfRange)
	_, err = cat.ReadBucket(ctx, 1, 0)
	assert.ErrorIs(t, err, skycat.ErrOutOfRange)
}

func TestReadBucket_SkipsCorrupt(t *testing.T) {
	mc := &skycat.BasicMetricsCollector{}
	cat := openSmall(t, smallCatalog(t, func(b *testutil.CatalogBuilder) {
		b.AddCorrupt(10, 27)
		b.AddCorrupt(12, 55)
	}), skycat.WithMetricsCollector(mc))
	ctx := context.Background()

	stars, err := cat.ReadBucket(ctx, 10, 3)
	require.NoError(t, err)
	assert.Len(t, stars, 2)
	assert.EqualValues(t, 1, mc.GetStats().SkippedRecords)

	_, err = cat.ReadBucket(ctx, 12, 6)
	assert.ErrorIs(t, err, skycat.ErrInvalidField)
}

func TestClose(t *testing.T) {
	cat, err := skycat.Open(context.Background(), skycat.Remote(smallCatalog(t, nil)))
	require.NoError(t, err)

	require.NoError(t, cat.Close())
	require.NoError(t, cat.Close())

	_, err = cat.LookupByID(context.Background(), "TEST 010-000001")
	assert.ErrorIs(t, err, skycat.ErrClosed)
	_, err = cat.Nearest(context.Background(), 25, 5, 1, 1)
	assert.ErrorIs(t, err, skycat.ErrClosed)
	for _, r := range cat.NearestMany(context.Background(), []skycat.Point{{RA: 1, Dec: 1}}, 1, 1) {
		assert.ErrorIs(t, r.Err, skycat.ErrClosed)
	}
}

func TestMetrics(t *testing.T) {
	mc := &skycat.BasicMetricsCollector{}
	cat := openSmall(t, smallCatalog(t, nil), skycat.WithMetricsCollector(mc))
	ctx := context.Background()

	_, _ = cat.LookupByID(ctx, "TEST 010-000001")
	_, _ = cat.LookupByID(ctx, "TEST 010-000099")
	_, _ = cat.Nearest(ctx, 25.1, 5.1, 1, 1)
	_ = cat.NearestMany(ctx, []skycat.Point{{RA: 25, Dec: 5}, {RA: -5, Dec: 0}}, 1, 0)

	stats := mc.GetStats()
	assert.EqualValues(t, 2, stats.LookupCount)
	assert.EqualValues(t, 1, stats.LookupErrors)
	assert.EqualValues(t, 3, stats.NearestCount)
	assert.EqualValues(t, 1, stats.NearestErrors)
	assert.Positive(t, stats.CellsScanned)
	assert.EqualValues(t, 1, stats.BatchCount)
	assert.EqualValues(t, 2, stats.BatchPoints)
	assert.EqualValues(t, 1, stats.BatchFailed)
}

func TestOpen_CacheAndThrottle(t *testing.T) {
	cat := openSmall(t, smallCatalog(t, nil),
		skycat.WithBlockCache(1<<20, 512),
		skycat.WithMemoryLimit(1<<20),
		skycat.WithIOLimit(64<<20),
		skycat.WithMaxConcurrentReads(4),
		skycat.WithOpenConcurrency(2),
		skycat.WithVerifyIndexes(),
		skycat.WithLogger(skycat.NoopLogger()),
	)
	ctx := context.Background()

	for range 3 {
		res, err := cat.Nearest(ctx, 25.1, 5.1, 1, 1)
		require.NoError(t, err)
		require.Len(t, res, 1)
		assert.Equal(t, skycat.CatalogID("TEST 010-000002"), res[0].Star.ID)
	}
	assert.Positive(t, cat.CacheMemoryUsage())
}

func TestOpen_ExplicitManifest(t *testing.T) {
	m := testutil.SmallManifest()
	m.Name = "Override"
	cat := openSmall(t, smallCatalog(t, nil), skycat.WithManifest(m))
	assert.Equal(t, "Override", cat.Manifest().Name)

	// Zones are validated in parallel, so either failure may surface first.
	_, err := skycat.Open(context.Background(), skycat.Remote(smallCatalog(t, nil)), skycat.WithManifest(manifest.Default()))
	require.Error(t, err)
	assert.True(t, errors.Is(err, skycat.ErrCorruptIndex) || errors.Is(err, skycat.ErrMissingZone), err.Error())
}
