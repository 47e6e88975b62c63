package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"runtime"
	"time"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/hupe1980/skycat/distance"
	"github.com/hupe1980/skycat/internal/store"
	"github.com/hupe1980/skycat/internal/zone"
	"github.com/hupe1980/skycat/model"
)

// Engine resolves queries against one Store.
type Engine struct {
	store       *store.Store
	grid        zone.Grid
	prefix      string
	logger      *slog.Logger
	metrics     MetricsObserver
	parallelism int
}

// New creates an engine over st. The store stays owned by the caller.
func New(st *store.Store, opts ...Option) *Engine {
	e := &Engine{
		store:       st,
		grid:        st.Grid(),
		prefix:      st.Manifest().Prefix,
		logger:      slog.New(slog.DiscardHandler),
		metrics:     NoopMetricsObserver{},
		parallelism: runtime.GOMAXPROCS(0),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// LookupByID returns the star with the given identifier.
func (e *Engine) LookupByID(ctx context.Context, id model.CatalogID) (entry model.StarEntry, err error) {
	start := time.Now()
	defer func() { e.metrics.OnLookup(time.Since(start), err) }()

	z, rn, err := model.ParseID(e.prefix, id)
	if err != nil {
		return model.StarEntry{}, err
	}

	raw, err := e.store.ReadRaw(ctx, z, rn)
	if err != nil {
		if errors.Is(err, store.ErrOutOfRange) {
			return model.StarEntry{}, fmt.Errorf("%w: %s: %w", ErrNotFound, id, err)
		}
		return model.StarEntry{}, err
	}
	return e.store.Decoder().Entry(id, z, rn, raw), nil
}

// LookupMany resolves several identifiers, returning entries in the order of
// ids. Identifiers are grouped by zone so each zone file is visited once. The
// first failure aborts the call.
func (e *Engine) LookupMany(ctx context.Context, ids []model.CatalogID) (entries []model.StarEntry, err error) {
	start := time.Now()
	defer func() { e.metrics.OnLookup(time.Since(start), err) }()

	type slot struct {
		pos int
		rn  model.RunningNumber
	}
	byZone := make(map[model.ZoneID][]slot)
	var zones []model.ZoneID
	for i, id := range ids {
		z, rn, err := model.ParseID(e.prefix, id)
		if err != nil {
			return nil, err
		}
		if _, ok := byZone[z]; !ok {
			zones = append(zones, z)
		}
		byZone[z] = append(byZone[z], slot{pos: i, rn: rn})
	}

	entries = make([]model.StarEntry, len(ids))
	dec := e.store.Decoder()
	for _, z := range zones {
		slots := byZone[z]
		rns := make([]model.RunningNumber, len(slots))
		for i, sl := range slots {
			rns[i] = sl.rn
		}
		raws, err := e.store.ReadRawMany(ctx, z, rns)
		if err != nil {
			if errors.Is(err, store.ErrOutOfRange) {
				return nil, fmt.Errorf("%w: %w", ErrNotFound, err)
			}
			return nil, err
		}
		for i, sl := range slots {
			entries[sl.pos] = dec.Entry(ids[sl.pos], z, sl.rn, raws[i])
		}
	}
	return entries, nil
}

// MaxRing returns the largest expandRadius that can reach a new cell. Larger
// values are accepted and behave the same.
func (e *Engine) MaxRing() int { return e.grid.MaxRing() }

// Nearest returns up to maxResults stars ordered by ascending separation from
// (ra, dec), ties broken by identifier. The search reads the home cell and at
// most expandRadius rings around it. An empty result is not an error.
func (e *Engine) Nearest(ctx context.Context, ra, dec float64, maxResults, expandRadius int, opts ...QueryOption) (result []model.Neighbor, err error) {
	start := time.Now()
	var stats QueryStats
	defer func() { e.metrics.OnNearest(time.Since(start), stats, err) }()

	var q queryOptions
	for _, opt := range opts {
		opt(&q)
	}

	if maxResults < 1 {
		return nil, fmt.Errorf("%w: maxResults must be >= 1, got %d", ErrInvalidArgument, maxResults)
	}
	if expandRadius < 0 {
		return nil, fmt.Errorf("%w: expandRadius must be >= 0, got %d", ErrInvalidArgument, expandRadius)
	}
	if q.maxSeparation < 0 || math.IsNaN(q.maxSeparation) {
		return nil, fmt.Errorf("%w: max separation %v", ErrInvalidArgument, q.maxSeparation)
	}

	home, err := e.grid.Address(ra, dec)
	if err != nil {
		return nil, err
	}

	results := newResultQueue(maxResults)
	visited := roaring.New()

	// Past MaxRing every ring is empty.
	expandRadius = min(expandRadius, e.grid.MaxRing())
	for r := 0; r <= expandRadius; r++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		stats.Rings++

		for _, addr := range e.grid.Ring(home, r, q.wrapRA) {
			if !visited.CheckedAdd(e.grid.CellKey(addr)) {
				continue
			}
			recs, err := e.store.ReadBucket(ctx, addr)
			if err != nil {
				return nil, err
			}
			stats.Cells++
			stats.Candidates += len(recs)

			for _, rec := range recs {
				sra, sdec := rec.Raw.Degrees()
				sep := distance.Separation(ra, dec, sra, sdec)
				if q.maxSeparation > 0 && sep > q.maxSeparation {
					continue
				}
				results.Push(candidate{sep: sep, zone: addr.Zone, number: rec.Number, raw: rec.Raw})
			}
		}

		if e.settled(results, q, home, r, ra, dec) {
			break
		}
	}

	result = e.materialize(results.Drain())
	e.logger.Debug("nearest",
		slog.Float64("ra", ra),
		slog.Float64("dec", dec),
		slog.String("home", home.String()),
		slog.Int("rings", stats.Rings),
		slog.Int("cells", stats.Cells),
		slog.Int("results", len(result)),
	)
	return result, nil
}

// settled reports whether no star outside the box searched after ring r can
// enter the result.
func (e *Engine) settled(results *resultQueue, q queryOptions, home model.Address, r int, ra, dec float64) bool {
	bound := math.Inf(1)
	if results.Full() {
		top, _ := results.Top()
		bound = top.sep
	}
	if q.maxSeparation > 0 {
		bound = math.Min(bound, q.maxSeparation)
	}
	if math.IsInf(bound, 1) {
		return false
	}
	return bound <= e.margin(home, r, ra, dec, q.wrapRA)
}

// margin returns the distance from (ra, dec) to the nearest edge of the box of
// cells within Chebyshev distance r of home that borders unsearched cells.
// Catalog edges (the poles, and the RA seam when not wrapping) do not count.
func (e *Engine) margin(home model.Address, r int, ra, dec float64, wrap bool) float64 {
	m := math.Inf(1)

	if z := int(home.Zone) - r; z > 1 {
		lo, _ := e.grid.ZoneBounds(model.ZoneID(z))
		m = math.Min(m, dec-lo)
	}
	if z := int(home.Zone) + r; z < e.grid.Zones() {
		_, hi := e.grid.ZoneBounds(model.ZoneID(z))
		m = math.Min(m, hi-dec)
	}

	buckets := e.grid.Buckets()
	if wrap && 2*r+1 >= buckets {
		return m
	}

	west := int(home.Bucket) - r
	if west < 1 && wrap {
		west += buckets
	}
	if west >= 1 {
		lo, _ := e.grid.BucketBounds(model.BucketID(west))
		m = math.Min(m, distance.ToMeridian(ra, dec, lo))
	}

	east := int(home.Bucket) + r
	if east > buckets && wrap {
		east -= buckets
	}
	if east <= buckets {
		_, hi := e.grid.BucketBounds(model.BucketID(east))
		m = math.Min(m, distance.ToMeridian(ra, dec, hi))
	}
	return m
}

func (e *Engine) materialize(cands []candidate) []model.Neighbor {
	out := make([]model.Neighbor, len(cands))
	dec := e.store.Decoder()
	for i, c := range cands {
		id := model.FormatID(e.prefix, c.zone, c.number)
		out[i] = model.Neighbor{
			Star:       dec.Entry(id, c.zone, c.number, c.raw),
			Separation: c.sep,
		}
	}
	return out
}

// NearestOne returns the single closest star, if any.
func (e *Engine) NearestOne(ctx context.Context, ra, dec float64, expandRadius int, opts ...QueryOption) (model.Neighbor, bool, error) {
	res, err := e.Nearest(ctx, ra, dec, 1, expandRadius, opts...)
	if err != nil || len(res) == 0 {
		return model.Neighbor{}, false, err
	}
	return res[0], true, nil
}
