package skycat

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/hupe1980/skycat/blobstore"
	"github.com/hupe1980/skycat/internal/cache"
	"github.com/hupe1980/skycat/internal/engine"
	"github.com/hupe1980/skycat/internal/resource"
	"github.com/hupe1980/skycat/internal/store"
	"github.com/hupe1980/skycat/manifest"
	"github.com/hupe1980/skycat/model"
)

type (
	// CatalogID is the display identifier "<PREFIX> <zone:03d>-<running:06d>".
	CatalogID = model.CatalogID
	// ZoneID is the 1-based declination zone number.
	ZoneID = model.ZoneID
	// BucketID is the 1-based right-ascension bucket number.
	BucketID = model.BucketID
	// RunningNumber is the 1-based position of a star within its zone.
	RunningNumber = model.RunningNumber
	// Address identifies one cell of the zone grid.
	Address = model.Address
	// StarEntry is a decoded catalog star.
	StarEntry = model.StarEntry
	// Neighbor is a star together with its separation from a query point.
	Neighbor = model.Neighbor
	// Point is a sky position in degrees.
	Point = model.Point
	// QueryOption tunes a single positional query.
	QueryOption = engine.QueryOption
)

// WithWrapRA lets positional queries continue across the 360°/0° seam.
func WithWrapRA() QueryOption { return engine.WithWrapRA() }

// WithMaxSeparation drops candidates farther than deg degrees from the
// query point.
func WithMaxSeparation(deg float64) QueryOption { return engine.WithMaxSeparation(deg) }

// Location names where a catalog lives.
type Location struct {
	dir   string
	blobs blobstore.BlobStore
}

// Local selects a catalog stored in a directory on the local file system.
func Local(dir string) Location {
	return Location{dir: dir}
}

// Remote selects a catalog served by any blob store (S3, MinIO, memory).
func Remote(blobs blobstore.BlobStore) Location {
	return Location{blobs: blobs}
}

// String returns a description of the location for logs.
func (l Location) String() string {
	if l.blobs != nil {
		return fmt.Sprintf("remote(%T)", l.blobs)
	}
	return l.dir
}

// Catalog is an opened star catalog. It is safe for concurrent use.
type Catalog struct {
	m       manifest.Manifest
	store   *store.Store
	engine  *engine.Engine
	logger  *Logger
	metrics MetricsCollector
	blocks  cache.BlockCache
	closed  atomic.Bool
}

// Open validates the catalog at loc and prepares it for queries. Every zone
// file must be present and consistent with the catalog layout; no star data
// is read.
func Open(ctx context.Context, loc Location, optFns ...Option) (*Catalog, error) {
	o := options{}
	for _, fn := range optFns {
		fn(&o)
	}
	if o.logger == nil {
		o.logger = NoopLogger()
	}
	if o.metricsCollector == nil {
		o.metricsCollector = NoopMetricsCollector{}
	}

	blobs := loc.blobs
	if blobs == nil {
		if loc.dir == "" {
			return nil, fmt.Errorf("%w: empty catalog location", ErrInvalidArgument)
		}
		blobs = blobstore.NewLocalStore(loc.dir, o.localOptions...)
	}

	var rc *resource.Controller
	if o.memoryLimit > 0 || o.ioLimit > 0 || o.maxConcurrentReads > 0 {
		rc = resource.NewController(resource.Limits{
			MemoryBytes:        o.memoryLimit,
			ConcurrentReads:    int64(o.maxConcurrentReads),
			ReadBytesPerSecond: o.ioLimit,
		})
	}
	if o.ioLimit > 0 || o.maxConcurrentReads > 0 {
		blobs = blobstore.NewThrottledStore(blobs, rc)
	}
	var blocks cache.BlockCache
	if o.blockCacheSize > 0 {
		blocks = cache.NewSharded(o.blockCacheSize, rc)
		blobs = blobstore.NewCachingStore(blobs, blocks, o.blockSize)
	}

	var m manifest.Manifest
	if o.manifest != nil {
		m = *o.manifest
		if err := m.Validate(); err != nil {
			return nil, translateError(err)
		}
	} else {
		var err error
		if m, err = manifest.Load(ctx, blobs); err != nil {
			o.logger.LogOpen(ctx, loc.String(), 0, 0, err)
			return nil, translateError(err)
		}
	}

	c := &Catalog{
		m:       m,
		logger:  o.logger.WithCatalog(m.Name),
		metrics: o.metricsCollector,
		blocks:  blocks,
	}

	st, err := store.Open(ctx, blobs, m, store.Options{
		Logger:          c.logger.Logger,
		OpenConcurrency: o.openConcurrency,
		VerifyIndexes:   o.verifyIndexes,
		OnSkipped: func(addr model.Address, skipped int, err error) {
			c.metrics.RecordSkippedRecords(skipped)
			c.logger.LogSkippedRecords(addr.String(), skipped, err)
		},
	})
	if err != nil {
		c.logger.LogOpen(ctx, loc.String(), m.Zones, m.Buckets, err)
		return nil, translateError(err)
	}

	c.store = st
	c.engine = engine.New(st,
		engine.WithLogger(c.logger.Logger),
		engine.WithParallelism(o.parallelism),
		engine.WithMetricsObserver(engineMetrics{mc: c.metrics}),
	)
	c.logger.LogOpen(ctx, loc.String(), m.Zones, m.Buckets, nil)
	return c, nil
}

// Manifest returns the layout of the catalog.
func (c *Catalog) Manifest() manifest.Manifest {
	return c.m
}

// LookupByID returns the star with the given identifier. It fails with
// ErrInvalidIdentifier if id does not parse and with ErrNotFound if no such
// star exists.
func (c *Catalog) LookupByID(ctx context.Context, id CatalogID) (StarEntry, error) {
	if c.closed.Load() {
		return StarEntry{}, ErrClosed
	}
	entry, err := c.engine.LookupByID(ctx, id)
	err = translateError(err)
	c.logger.LogLookup(ctx, string(id), err)
	return entry, err
}

// LookupMany resolves several identifiers at once, in the order given.
// Records of one zone are read together; any failing identifier fails the
// whole call.
func (c *Catalog) LookupMany(ctx context.Context, ids []CatalogID) ([]StarEntry, error) {
	if c.closed.Load() {
		return nil, ErrClosed
	}
	entries, err := c.engine.LookupMany(ctx, ids)
	err = translateError(err)
	c.logger.LogLookup(ctx, fmt.Sprintf("%d identifiers", len(ids)), err)
	return entries, err
}

// Nearest returns up to maxResults stars around (ra, dec), closest first.
// The home cell and at most expandRadius rings of neighbouring cells are
// searched. No star in range yields an empty slice and a nil error.
func (c *Catalog) Nearest(ctx context.Context, ra, dec float64, maxResults, expandRadius int, opts ...QueryOption) ([]Neighbor, error) {
	if c.closed.Load() {
		return nil, ErrClosed
	}
	res, err := c.engine.Nearest(ctx, ra, dec, maxResults, expandRadius, opts...)
	err = translateError(err)
	c.logger.LogNearest(ctx, ra, dec, maxResults, len(res), err)
	return res, err
}

// NearestOne returns the closest star to (ra, dec); ok is false when none
// lies within the searched cells.
func (c *Catalog) NearestOne(ctx context.Context, ra, dec float64, expandRadius int, opts ...QueryOption) (n Neighbor, ok bool, err error) {
	if c.closed.Load() {
		return Neighbor{}, false, ErrClosed
	}
	n, ok, err = c.engine.NearestOne(ctx, ra, dec, expandRadius, opts...)
	err = translateError(err)
	c.logger.LogNearest(ctx, ra, dec, 1, boolToInt(ok), err)
	return n, ok, err
}

// BatchResult is the outcome for one point of NearestMany.
type BatchResult struct {
	Neighbors []Neighbor
	Err       error
}

// NearestMany resolves every point concurrently. The result at index i
// belongs to points[i]; a failing point never aborts the batch.
func (c *Catalog) NearestMany(ctx context.Context, points []Point, maxResults, expandRadius int, opts ...QueryOption) []BatchResult {
	out := make([]BatchResult, len(points))
	if c.closed.Load() {
		for i := range out {
			out[i].Err = ErrClosed
		}
		return out
	}

	failed := 0
	for i, r := range c.engine.NearestMany(ctx, points, maxResults, expandRadius, opts...) {
		out[i] = BatchResult{Neighbors: r.Neighbors, Err: translateError(r.Err)}
		if r.Err != nil {
			failed++
		}
	}
	c.logger.LogBatch(ctx, len(points), failed)
	return out
}

// ReadBucket returns every star of one cell in running-number order.
// Records that fail to decode are skipped and reported to the logger.
func (c *Catalog) ReadBucket(ctx context.Context, z ZoneID, b BucketID) ([]StarEntry, error) {
	if c.closed.Load() {
		return nil, ErrClosed
	}
	addr := model.Address{Zone: z, Bucket: b}
	if !c.store.Grid().ValidZone(z) || !c.store.Grid().ValidBucket(b) {
		return nil, fmt.Errorf("%w: %s", ErrOutOfRange, addr)
	}

	recs, err := c.store.ReadBucket(ctx, addr)
	if err != nil {
		return nil, translateError(err)
	}

	dec := c.store.Decoder()
	out := make([]StarEntry, len(recs))
	for i, r := range recs {
		out[i] = dec.Entry(model.FormatID(c.m.Prefix, z, r.Number), z, r.Number, r.Raw)
	}
	return out, nil
}

// CacheMemoryUsage returns the bytes currently held by the block cache, or
// zero when the catalog was opened without WithBlockCache.
func (c *Catalog) CacheMemoryUsage() int64 {
	if c.blocks == nil {
		return 0
	}
	return c.blocks.Stats().Bytes
}

// Close releases every zone file. It is idempotent.
func (c *Catalog) Close() error {
	if c.closed.Swap(true) {
		return nil
	}
	return translateError(c.store.Close())
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
