// Package manifest describes the physical layout of a zone-partitioned catalog.
//
// A catalog root may carry a catalog.toml file overriding any of the defaults:
//
//	name = "UCAC4"
//	prefix = "UCAC4"
//	zones = 900
//	buckets = 1440
//	data_pattern = "z%03d"
//	index_pattern = "z%03d.idx"
//
//	[record]
//	size = 78
//	byte_order = "little"
//	ra_offset = 0
//	dec_offset = 4
//	dec_encoding = "spd"
//
//	[record.mag]
//	offset = 48
//	width = 2
//	signed = true
//	scale = 0.001
//	missing = 20000
//
// Keys that are absent keep the UCAC4 defaults returned by Default.
package manifest

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/hupe1980/skycat/blobstore"
	"github.com/hupe1980/skycat/codec"
	"github.com/hupe1980/skycat/model"
)

// FileName is the name of the optional manifest at the catalog root.
const FileName = "catalog.toml"

// IndexEntrySize is the on-disk size of one bucket entry:
// record_count uint32 followed by byte_offset uint64.
const IndexEntrySize = 12

// maxManifestSize guards against reading an unrelated large blob.
const maxManifestSize = 1 << 20

// ErrInvalidManifest is returned when a manifest is inconsistent.
var ErrInvalidManifest = errors.New("invalid catalog manifest")

// DecEncoding selects how the declination field is stored.
type DecEncoding string

const (
	// DecSouthPoleDistance stores declination + 90 degrees (0 at the south pole).
	DecSouthPoleDistance DecEncoding = "spd"
	// DecSigned stores declination directly as a signed value.
	DecSigned DecEncoding = "signed"
)

// Manifest describes a catalog.
type Manifest struct {
	Name         string       `toml:"name"`
	Prefix       string       `toml:"prefix"`
	Zones        int          `toml:"zones"`
	Buckets      int          `toml:"buckets"`
	DataPattern  string       `toml:"data_pattern"`
	IndexPattern string       `toml:"index_pattern"`
	Record       RecordLayout `toml:"record"`
}

// RecordLayout describes one fixed-size record.
type RecordLayout struct {
	Size        int         `toml:"size"`
	ByteOrder   string      `toml:"byte_order"`
	RAOffset    int         `toml:"ra_offset"`
	DecOffset   int         `toml:"dec_offset"`
	DecEncoding DecEncoding `toml:"dec_encoding"`
	Mag         FieldLayout `toml:"mag"`
	MagErr      FieldLayout `toml:"mag_err"`
}

// FieldLayout describes a fixed-point integer field.
type FieldLayout struct {
	Offset  int     `toml:"offset"`
	Width   int     `toml:"width"`
	Signed  bool    `toml:"signed"`
	Scale   float64 `toml:"scale"`
	Missing int64   `toml:"missing"`
}

// Default returns the UCAC4 layout: 900 zones of 0.2 degrees, 1440 RA buckets
// of 0.25 degrees, 78-byte little-endian records with the APASS V magnitude as
// the primary magnitude.
func Default() Manifest {
	return Manifest{
		Name:         "UCAC4",
		Prefix:       "UCAC4",
		Zones:        900,
		Buckets:      1440,
		DataPattern:  "z%03d",
		IndexPattern: "z%03d.idx",
		Record: RecordLayout{
			Size:        78,
			ByteOrder:   "little",
			RAOffset:    0,
			DecOffset:   4,
			DecEncoding: DecSouthPoleDistance,
			Mag: FieldLayout{
				Offset:  48,
				Width:   2,
				Signed:  true,
				Scale:   0.001,
				Missing: 20000,
			},
			MagErr: FieldLayout{
				Offset:  57,
				Width:   1,
				Signed:  false,
				Scale:   0.01,
				Missing: 99,
			},
		},
	}
}

// Parse decodes a TOML manifest on top of the defaults and validates it.
func Parse(data []byte) (Manifest, error) {
	m := Default()
	if err := toml.Unmarshal(data, &m); err != nil {
		return Manifest{}, fmt.Errorf("%w: parsing %s: %w", ErrInvalidManifest, FileName, err)
	}
	if err := m.Validate(); err != nil {
		return Manifest{}, err
	}
	return m, nil
}

// Load reads FileName from the store. A missing manifest yields Default.
func Load(ctx context.Context, store blobstore.BlobStore) (Manifest, error) {
	blob, err := store.Open(ctx, FileName)
	if err != nil {
		if errors.Is(err, blobstore.ErrNotFound) {
			return Default(), nil
		}
		return Manifest{}, fmt.Errorf("opening %s: %w", FileName, err)
	}
	defer blob.Close()

	size := blob.Size()
	if size > maxManifestSize {
		return Manifest{}, fmt.Errorf("%w: %s is %d bytes", ErrInvalidManifest, FileName, size)
	}
	data, err := blobstore.ReadAll(ctx, blob)
	if err != nil {
		return Manifest{}, fmt.Errorf("reading %s: %w", FileName, err)
	}
	// The blob may be a mapping that is released on Close.
	return Parse(bytes.Clone(data))
}

// Marshal encodes the manifest as TOML.
func (m Manifest) Marshal() ([]byte, error) {
	return toml.Marshal(m)
}

// MaxCells bounds zones*buckets so every cell has a distinct uint32 key.
const MaxCells = 1 << 32

// Validate checks that the layout is self-consistent.
func (m Manifest) Validate() error {
	if m.Prefix == "" {
		return fmt.Errorf("%w: empty identifier prefix", ErrInvalidManifest)
	}
	if m.Zones <= 0 || m.Zones > model.MaxZone || codec.NativeHalfCircle%m.Zones != 0 {
		return fmt.Errorf("%w: zones=%d must divide 180 degrees in whole milliarcseconds", ErrInvalidManifest, m.Zones)
	}
	if m.Buckets <= 0 || codec.NativeFullCircle%m.Buckets != 0 {
		return fmt.Errorf("%w: buckets=%d must divide 360 degrees in whole milliarcseconds", ErrInvalidManifest, m.Buckets)
	}
	if int64(m.Zones)*int64(m.Buckets) > MaxCells {
		return fmt.Errorf("%w: %d zones x %d buckets exceeds %d cells", ErrInvalidManifest, m.Zones, m.Buckets, int64(MaxCells))
	}
	if m.DataPattern == "" || m.IndexPattern == "" || m.DataPattern == m.IndexPattern {
		return fmt.Errorf("%w: data and index patterns must be distinct", ErrInvalidManifest)
	}

	r := m.Record
	if r.ByteOrder != "little" && r.ByteOrder != "big" {
		return fmt.Errorf("%w: byte_order %q", ErrInvalidManifest, r.ByteOrder)
	}
	if r.DecEncoding != DecSouthPoleDistance && r.DecEncoding != DecSigned {
		return fmt.Errorf("%w: dec_encoding %q", ErrInvalidManifest, r.DecEncoding)
	}
	if r.Size <= 0 {
		return fmt.Errorf("%w: record size %d", ErrInvalidManifest, r.Size)
	}
	for name, off := range map[string]int{"ra_offset": r.RAOffset, "dec_offset": r.DecOffset} {
		if off < 0 || off+4 > r.Size {
			return fmt.Errorf("%w: %s %d outside %d-byte record", ErrInvalidManifest, name, off, r.Size)
		}
	}
	for name, f := range map[string]FieldLayout{"mag": r.Mag, "mag_err": r.MagErr} {
		if f.Width != 1 && f.Width != 2 && f.Width != 4 {
			return fmt.Errorf("%w: %s width %d", ErrInvalidManifest, name, f.Width)
		}
		if f.Offset < 0 || f.Offset+f.Width > r.Size {
			return fmt.Errorf("%w: %s offset %d outside %d-byte record", ErrInvalidManifest, name, f.Offset, r.Size)
		}
		if f.Scale <= 0 {
			return fmt.Errorf("%w: %s scale %v", ErrInvalidManifest, name, f.Scale)
		}
	}
	return nil
}

// ZoneWidth returns the zone height in native angle units.
func (m Manifest) ZoneWidth() int64 {
	return int64(codec.NativeHalfCircle / m.Zones)
}

// BucketWidth returns the bucket width in native angle units.
func (m Manifest) BucketWidth() int64 {
	return int64(codec.NativeFullCircle / m.Buckets)
}

// IndexSize returns the expected byte length of one zone index.
func (m Manifest) IndexSize() int64 {
	return int64(m.Buckets) * IndexEntrySize
}

// DataName returns the blob name of a zone's data file.
func (m Manifest) DataName(zone model.ZoneID) string {
	return fmt.Sprintf(m.DataPattern, zone)
}

// IndexName returns the blob name of a zone's uncompressed index file.
func (m Manifest) IndexName(zone model.ZoneID) string {
	return fmt.Sprintf(m.IndexPattern, zone)
}

// Order returns the byte order of record and index fields.
func (m Manifest) Order() binary.ByteOrder {
	if m.Record.ByteOrder == "big" {
		return binary.BigEndian
	}
	return binary.LittleEndian
}
