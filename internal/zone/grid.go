package zone

import (
	"errors"
	"fmt"
	"math"

	"github.com/hupe1980/skycat/codec"
	"github.com/hupe1980/skycat/manifest"
	"github.com/hupe1980/skycat/model"
)

// ErrOutOfRange is returned for coordinates or cell numbers outside the catalog domain.
var ErrOutOfRange = errors.New("zone: out of range")

// Grid is the zone/bucket partition of the sky.
type Grid struct {
	zones       int
	buckets     int
	zoneWidth   int64 // native units
	bucketWidth int64 // native units
}

// NewGrid returns the grid described by m. m must be valid.
func NewGrid(m manifest.Manifest) Grid {
	return Grid{
		zones:       m.Zones,
		buckets:     m.Buckets,
		zoneWidth:   m.ZoneWidth(),
		bucketWidth: m.BucketWidth(),
	}
}

// Zones returns the number of declination zones.
func (g Grid) Zones() int { return g.zones }

// Buckets returns the number of RA buckets per zone.
func (g Grid) Buckets() int { return g.buckets }

// MaxRing returns a ring distance beyond which no further cell exists.
func (g Grid) MaxRing() int { return max(g.zones, g.buckets) }

// ZoneForDec returns the zone containing dec (degrees, [-90, 90]).
func (g Grid) ZoneForDec(dec float64) (model.ZoneID, error) {
	if math.IsNaN(dec) || dec < -90 || dec > 90 {
		return 0, fmt.Errorf("%w: declination %v", ErrOutOfRange, dec)
	}
	n := codec.FromDegrees(dec + 90)
	return model.ZoneID(clampCeil(n, g.zoneWidth, g.zones)), nil
}

// BucketForRA returns the bucket containing ra (degrees, [0, 360]).
// Values within one native unit outside the domain are clamped.
func (g Grid) BucketForRA(ra float64) (model.BucketID, error) {
	if math.IsNaN(ra) {
		return 0, fmt.Errorf("%w: right ascension NaN", ErrOutOfRange)
	}
	n := codec.FromDegrees(ra)
	if n < 0 || n > codec.NativeFullCircle {
		return 0, fmt.Errorf("%w: right ascension %v", ErrOutOfRange, ra)
	}
	return model.BucketID(clampCeil(n, g.bucketWidth, g.buckets)), nil
}

// Address returns the cell containing (ra, dec).
func (g Grid) Address(ra, dec float64) (model.Address, error) {
	z, err := g.ZoneForDec(dec)
	if err != nil {
		return model.Address{}, err
	}
	b, err := g.BucketForRA(ra)
	if err != nil {
		return model.Address{}, err
	}
	return model.Address{Zone: z, Bucket: b}, nil
}

// clampCeil computes max(1, ceil(n/width)) clamped to limit.
func clampCeil(n, width int64, limit int) int {
	c := (n + width - 1) / width
	if c < 1 {
		c = 1
	}
	if c > int64(limit) {
		c = int64(limit)
	}
	return int(c)
}

// ValidZone reports whether z is a zone of the grid.
func (g Grid) ValidZone(z model.ZoneID) bool {
	return z >= 1 && int(z) <= g.zones
}

// ValidBucket reports whether b is a bucket of the grid.
func (g Grid) ValidBucket(b model.BucketID) bool {
	return b >= 1 && int(b) <= g.buckets
}

// ZoneBounds returns the declination interval (lo, hi] covered by z in degrees.
func (g Grid) ZoneBounds(z model.ZoneID) (lo, hi float64) {
	lo = codec.ToDegrees(int64(z-1)*g.zoneWidth) - 90
	hi = codec.ToDegrees(int64(z)*g.zoneWidth) - 90
	return lo, hi
}

// BucketBounds returns the RA interval (lo, hi] covered by b in degrees.
func (g Grid) BucketBounds(b model.BucketID) (lo, hi float64) {
	return codec.ToDegrees(int64(b-1) * g.bucketWidth), codec.ToDegrees(int64(b) * g.bucketWidth)
}

// CellKey returns a dense 0-based key for addr, suitable for bitmaps.
func (g Grid) CellKey(addr model.Address) uint32 {
	return uint32(addr.Zone-1)*uint32(g.buckets) + uint32(addr.Bucket-1)
}

// Ring returns the cells at Chebyshev distance exactly r from addr, in
// ascending zone then bucket order. Cells beyond the first or last zone are
// dropped. Buckets beyond the RA seam are dropped unless wrap is set, in
// which case they continue on the other side of 0°.
func (g Grid) Ring(addr model.Address, r int, wrap bool) []model.Address {
	if r == 0 {
		return []model.Address{addr}
	}

	var (
		out  []model.Address
		seen map[model.Address]struct{}
	)
	if wrap && 2*r+1 > g.buckets {
		seen = make(map[model.Address]struct{})
	}

	add := func(z, b int) {
		if z < 1 || z > g.zones {
			return
		}
		if b < 1 || b > g.buckets {
			if !wrap {
				return
			}
			b = ((b-1)%g.buckets+g.buckets)%g.buckets + 1
		}
		a := model.Address{Zone: model.ZoneID(z), Bucket: model.BucketID(b)}
		if seen != nil {
			if _, dup := seen[a]; dup || a == addr {
				return
			}
			seen[a] = struct{}{}
		}
		out = append(out, a)
	}

	z0, b0 := int(addr.Zone), int(addr.Bucket)
	for z := z0 - r; z <= z0+r; z++ {
		if z == z0-r || z == z0+r {
			for b := b0 - r; b <= b0+r; b++ {
				add(z, b)
			}
			continue
		}
		add(z, b0-r)
		add(z, b0+r)
	}
	return out
}

// NeighborBuckets returns addr followed by every cell within Chebyshev
// distance radius, ring by ring.
func (g Grid) NeighborBuckets(addr model.Address, radius int, wrap bool) []model.Address {
	radius = min(radius, g.MaxRing())
	out := []model.Address{addr}
	seen := map[model.Address]struct{}{addr: {}}
	for r := 1; r <= radius; r++ {
		for _, a := range g.Ring(addr, r, wrap) {
			if _, dup := seen[a]; dup {
				continue
			}
			seen[a] = struct{}{}
			out = append(out, a)
		}
	}
	return out
}
