package zone

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/hupe1980/skycat/manifest"
	"github.com/hupe1980/skycat/model"
)

var (
	// ErrZoneNotFound is returned when a zone's bucket table is unavailable.
	ErrZoneNotFound = errors.New("zone: index unavailable")
	// ErrMissingIndex is returned when no index file exists for a zone.
	ErrMissingIndex = fmt.Errorf("%w: index file missing", ErrZoneNotFound)
	// ErrCorruptIndex is returned when an index does not hold exactly one
	// entry per bucket, or an entry points outside the zone data.
	ErrCorruptIndex = fmt.Errorf("%w: corrupt index", ErrZoneNotFound)
)

// Entry is one bucket of a zone index.
type Entry struct {
	Count  uint32
	Offset uint64
}

// Table is the parsed, immutable bucket table of one zone.
type Table struct {
	zone    model.ZoneID
	entries []Entry
	records uint64
}

// ParseTable decodes a zone index of exactly buckets entries.
func ParseTable(zone model.ZoneID, data []byte, buckets int, order binary.ByteOrder) (*Table, error) {
	if len(data) != buckets*manifest.IndexEntrySize {
		return nil, fmt.Errorf("%w: zone %d index is %d bytes, want %d",
			ErrCorruptIndex, zone, len(data), buckets*manifest.IndexEntrySize)
	}

	t := &Table{zone: zone, entries: make([]Entry, buckets)}
	for i := range t.entries {
		p := data[i*manifest.IndexEntrySize:]
		e := Entry{
			Count:  order.Uint32(p[0:4]),
			Offset: order.Uint64(p[4:12]),
		}
		t.entries[i] = e
		t.records += uint64(e.Count)
	}
	return t, nil
}

// Encode serializes the table in the on-disk layout.
func (t *Table) Encode(order binary.ByteOrder) []byte {
	out := make([]byte, len(t.entries)*manifest.IndexEntrySize)
	for i, e := range t.entries {
		p := out[i*manifest.IndexEntrySize:]
		order.PutUint32(p[0:4], e.Count)
		order.PutUint64(p[4:12], e.Offset)
	}
	return out
}

// NewTable builds a table from entries. It is used by catalog writers.
func NewTable(zone model.ZoneID, entries []Entry) *Table {
	t := &Table{zone: zone, entries: append([]Entry(nil), entries...)}
	for _, e := range entries {
		t.records += uint64(e.Count)
	}
	return t
}

// Zone returns the zone the table belongs to.
func (t *Table) Zone() model.ZoneID { return t.zone }

// Len returns the number of buckets.
func (t *Table) Len() int { return len(t.entries) }

// Records returns the total record count over all buckets.
func (t *Table) Records() uint64 { return t.records }

// AddressRange returns the byte offset and record count of bucket b.
func (t *Table) AddressRange(b model.BucketID) (offset uint64, count uint32, err error) {
	if b < 1 || int(b) > len(t.entries) {
		return 0, 0, fmt.Errorf("%w: bucket %d of zone %d", ErrOutOfRange, b, t.zone)
	}
	e := t.entries[b-1]
	return e.Offset, e.Count, nil
}

// Validate checks every bucket against the zone data size: buckets must be
// record aligned and lie within the data file.
func (t *Table) Validate(dataSize int64, recordSize int) error {
	for i, e := range t.entries {
		if e.Count == 0 {
			continue
		}
		end := e.Offset + uint64(e.Count)*uint64(recordSize)
		if e.Offset%uint64(recordSize) != 0 || end > uint64(dataSize) {
			return fmt.Errorf("%w: zone %d bucket %d spans [%d, %d) of %d bytes",
				ErrCorruptIndex, t.zone, i+1, e.Offset, end, dataSize)
		}
	}
	return nil
}
