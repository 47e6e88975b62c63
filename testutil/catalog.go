package testutil

import (
	"context"
	"fmt"
	"sort"

	"github.com/hupe1980/skycat/blobstore"
	"github.com/hupe1980/skycat/codec"
	"github.com/hupe1980/skycat/internal/record"
	"github.com/hupe1980/skycat/internal/zone"
	"github.com/hupe1980/skycat/manifest"
	"github.com/hupe1980/skycat/model"
)

// CatalogBuilder writes a complete zone-partitioned catalog for tests.
//
// Stars are bucketed by the same grid the reader uses, sorted by RA within
// each zone, and written with one data file and one index per zone.
type CatalogBuilder struct {
	m        manifest.Manifest
	grid     zone.Grid
	dec      *record.Decoder
	pending  map[model.ZoneID][]pendingStar
	compress map[model.ZoneID]zone.Compression
	omit     map[string]struct{}
	override map[string][]byte
	manifest bool
	seq      int
}

type pendingStar struct {
	raw record.Raw
	seq int
}

// NewCatalogBuilder creates a builder for the layout m.
func NewCatalogBuilder(m manifest.Manifest) *CatalogBuilder {
	return &CatalogBuilder{
		m:        m,
		grid:     zone.NewGrid(m),
		dec:      record.NewDecoder(m),
		pending:  make(map[model.ZoneID][]pendingStar),
		compress: make(map[model.ZoneID]zone.Compression),
		omit:     make(map[string]struct{}),
		override: make(map[string][]byte),
	}
}

// Manifest returns the layout being written.
func (b *CatalogBuilder) Manifest() manifest.Manifest { return b.m }

// WriteManifest makes Build also write catalog.toml.
func (b *CatalogBuilder) WriteManifest() *CatalogBuilder {
	b.manifest = true
	return b
}

// Add adds a star at (ra, dec) degrees. NaN magnitudes are written as the
// layout's missing sentinel.
func (b *CatalogBuilder) Add(ra, dec, mag, magErr float64) *CatalogBuilder {
	z, err := b.grid.ZoneForDec(dec)
	if err != nil {
		panic(fmt.Sprintf("testutil: %v", err))
	}
	l := b.m.Record
	b.addRaw(z, record.Raw{
		RA:     codec.FromDegrees(ra),
		Dec:    codec.FromDegrees(dec),
		Mag:    codec.MagFromFloat(mag, l.Mag.Scale, l.Mag.Missing),
		MagErr: codec.MagFromFloat(magErr, l.MagErr.Scale, l.MagErr.Missing),
	})
	return b
}

// AddPoints adds one star per point with magnitudes from rng.
func (b *CatalogBuilder) AddPoints(rng *RNG, pts []model.Point) *CatalogBuilder {
	for _, p := range pts {
		b.Add(p.RA, p.Dec, rng.Magnitude(), 0.05)
	}
	return b
}

// Fill adds n stars to zone z, evenly spaced in RA over [raLo, raHi), at
// the zone's central declination without photometry. It is used to shift
// the running numbers of later stars.
func (b *CatalogBuilder) Fill(z model.ZoneID, n int, raLo, raHi float64) *CatalogBuilder {
	lo, hi := b.grid.ZoneBounds(z)
	dec := codec.FromDegrees((lo + hi) / 2)
	for i := range n {
		ra := raLo + (raHi-raLo)*float64(i)/float64(n)
		b.addRaw(z, record.Raw{
			RA:     codec.FromDegrees(ra),
			Dec:    dec,
			Mag:    b.m.Record.Mag.Missing,
			MagErr: b.m.Record.MagErr.Missing,
		})
	}
	return b
}

// AddCorrupt adds a record at ra in zone z whose declination field is
// outside the valid range, so it fails to decode.
func (b *CatalogBuilder) AddCorrupt(z model.ZoneID, ra float64) *CatalogBuilder {
	b.addRaw(z, record.Raw{
		RA:  codec.FromDegrees(ra),
		Dec: codec.NativeHalfCircle,
	})
	return b
}

func (b *CatalogBuilder) addRaw(z model.ZoneID, raw record.Raw) {
	b.pending[z] = append(b.pending[z], pendingStar{raw: raw, seq: b.seq})
	b.seq++
}

// CompressIndex stores the index of zone z with compression c.
func (b *CatalogBuilder) CompressIndex(z model.ZoneID, c zone.Compression) *CatalogBuilder {
	b.compress[z] = c
	return b
}

// Omit skips writing the named file.
func (b *CatalogBuilder) Omit(name string) *CatalogBuilder {
	b.omit[name] = struct{}{}
	return b
}

// Override writes data in place of the named file.
func (b *CatalogBuilder) Override(name string, data []byte) *CatalogBuilder {
	b.override[name] = data
	return b
}

// Build writes every zone to p and returns the decodable stars in
// identifier order.
func (b *CatalogBuilder) Build(ctx context.Context, p blobstore.Putter) ([]model.StarEntry, error) {
	var stars []model.StarEntry

	put := func(name string, data []byte) error {
		if _, skip := b.omit[name]; skip {
			return nil
		}
		if o, ok := b.override[name]; ok {
			data = o
		}
		return p.Put(ctx, name, data)
	}

	for i := range b.m.Zones {
		z := model.ZoneID(i + 1)
		recs := b.pending[z]
		sort.SliceStable(recs, func(i, j int) bool { return recs[i].raw.RA < recs[j].raw.RA })

		entries := make([]zone.Entry, b.m.Buckets)
		data := make([]byte, 0, len(recs)*b.m.Record.Size)
		next := 0
		for bi := range entries {
			bucket := model.BucketID(bi + 1)
			entries[bi].Offset = uint64(next * b.m.Record.Size)
			for next < len(recs) {
				got, err := b.grid.BucketForRA(codec.ToDegrees(recs[next].raw.RA))
				if err != nil {
					return nil, err
				}
				if got != bucket {
					break
				}
				data = append(data, b.dec.Encode(recs[next].raw)...)
				entries[bi].Count++
				next++
			}
		}

		for rn := range recs {
			number := model.RunningNumber(rn + 1)
			raw, err := b.dec.Decode(data[rn*b.m.Record.Size:])
			if err != nil {
				continue // corrupt on purpose
			}
			stars = append(stars, b.dec.Entry(model.FormatID(b.m.Prefix, z, number), z, number, raw))
		}

		if err := put(b.m.DataName(z), data); err != nil {
			return nil, err
		}
		c := b.compress[z]
		page, err := zone.Compress(c, zone.NewTable(z, entries).Encode(b.m.Order()))
		if err != nil {
			return nil, err
		}
		if err := put(b.m.IndexName(z)+c.Suffix(), page); err != nil {
			return nil, err
		}
	}

	if b.manifest {
		data, err := b.m.Marshal()
		if err != nil {
			return nil, err
		}
		if err := put(manifest.FileName, data); err != nil {
			return nil, err
		}
	}
	return stars, nil
}

// SmallManifest returns a coarse layout (18 zones of 10°, 36 buckets of 10°)
// that keeps test catalogs tiny.
func SmallManifest() manifest.Manifest {
	m := manifest.Default()
	m.Name = "Test"
	m.Prefix = "TEST"
	m.Zones = 18
	m.Buckets = 36
	return m
}
