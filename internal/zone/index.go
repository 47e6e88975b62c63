package zone

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/singleflight"

	"github.com/hupe1980/skycat/blobstore"
	"github.com/hupe1980/skycat/manifest"
	"github.com/hupe1980/skycat/model"
)

// Index serves zone bucket tables from a blob store.
//
// Tables are loaded on first use and cached for the lifetime of the Index.
// Concurrent misses for the same zone share one load.
type Index struct {
	blobs  blobstore.BlobStore
	m      manifest.Manifest
	tables sync.Map // model.ZoneID -> *Table
	group  singleflight.Group
	loads  atomic.Int64
}

// NewIndex creates an index over the catalog described by m.
func NewIndex(blobs blobstore.BlobStore, m manifest.Manifest) *Index {
	return &Index{blobs: blobs, m: m}
}

// Located describes the index file found for a zone.
type Located struct {
	Name        string
	Compression Compression
	Size        int64
}

// Locate finds the index file of zone, trying the raw name first and then
// each compressed variant. It returns ErrMissingIndex if none exists.
func (ix *Index) Locate(ctx context.Context, zone model.ZoneID) (Located, blobstore.Blob, error) {
	base := ix.m.IndexName(zone)
	for _, c := range Compressions {
		name := base + c.Suffix()
		b, err := ix.blobs.Open(ctx, name)
		if err != nil {
			if errors.Is(err, blobstore.ErrNotFound) {
				continue
			}
			return Located{}, nil, fmt.Errorf("opening %s: %w", name, err)
		}
		return Located{Name: name, Compression: c, Size: b.Size()}, b, nil
	}
	return Located{}, nil, fmt.Errorf("%w: zone %d (%s)", ErrMissingIndex, zone, base)
}

// Probe checks that the zone's index exists and has the expected size.
// A raw index is checked by length alone; a compressed index is decoded,
// and the resulting table is cached.
func (ix *Index) Probe(ctx context.Context, zone model.ZoneID) (Located, error) {
	loc, b, err := ix.Locate(ctx, zone)
	if err != nil {
		return loc, err
	}
	defer b.Close()

	if loc.Compression == CompressionNone {
		if loc.Size != ix.m.IndexSize() {
			return loc, fmt.Errorf("%w: %s is %d bytes, want %d", ErrCorruptIndex, loc.Name, loc.Size, ix.m.IndexSize())
		}
		return loc, nil
	}

	t, err := ix.parse(ctx, zone, loc, b)
	if err != nil {
		return loc, err
	}
	ix.tables.LoadOrStore(zone, t)
	return loc, nil
}

// Table returns the bucket table of zone, loading it on first use.
// Concurrent callers share one load, which runs detached from any single
// caller's cancellation; each caller still stops waiting when its own
// context is done.
func (ix *Index) Table(ctx context.Context, zone model.ZoneID) (*Table, error) {
	if t, ok := ix.tables.Load(zone); ok {
		return t.(*Table), nil
	}

	fill := context.WithoutCancel(ctx)
	ch := ix.group.DoChan(strconv.FormatUint(uint64(zone), 10), func() (any, error) {
		if t, ok := ix.tables.Load(zone); ok {
			return t, nil
		}
		t, err := ix.load(fill, zone)
		if err != nil {
			return nil, err
		}
		actual, _ := ix.tables.LoadOrStore(zone, t)
		return actual, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*Table), nil
	}
}

// AddressRange returns the byte offset and record count of a cell.
func (ix *Index) AddressRange(ctx context.Context, addr model.Address) (offset uint64, count uint32, err error) {
	t, err := ix.Table(ctx, addr.Zone)
	if err != nil {
		return 0, 0, err
	}
	return t.AddressRange(addr.Bucket)
}

// Loads returns how many index files have been read and parsed.
func (ix *Index) Loads() int64 {
	return ix.loads.Load()
}

func (ix *Index) load(ctx context.Context, zone model.ZoneID) (*Table, error) {
	loc, b, err := ix.Locate(ctx, zone)
	if err != nil {
		return nil, err
	}
	defer b.Close()
	return ix.parse(ctx, zone, loc, b)
}

func (ix *Index) parse(ctx context.Context, zone model.ZoneID, loc Located, b blobstore.Blob) (*Table, error) {
	ix.loads.Add(1)

	raw, err := blobstore.ReadAll(ctx, b)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", loc.Name, err)
	}
	data, err := decompress(loc.Compression, raw, int(ix.m.IndexSize()))
	if err != nil {
		return nil, fmt.Errorf("%w: decoding %s: %w", ErrCorruptIndex, loc.Name, err)
	}
	// ParseTable copies entries out, so a mapped raw page may be released.
	return ParseTable(zone, data, ix.m.Buckets, ix.m.Order())
}
