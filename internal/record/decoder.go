// Package record decodes fixed-size catalog records.
package record

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/hupe1980/skycat/codec"
	"github.com/hupe1980/skycat/manifest"
	"github.com/hupe1980/skycat/model"
)

var (
	// ErrTruncatedRecord is returned when fewer bytes than one record are given.
	ErrTruncatedRecord = errors.New("record: truncated")
	// ErrInvalidField is returned for values no valid record can hold.
	ErrInvalidField = errors.New("record: invalid field")
)

// southPoleOffset converts south-pole distance to declination (90 degrees).
const southPoleOffset = codec.NativeHalfCircle / 2

// Raw is one undecoded star. Angles are in native units; magnitudes are
// the raw fixed-point field values.
type Raw struct {
	RA     int64 // [0, 360°)
	Dec    int64 // [-90°, +90°], signed
	Mag    int64
	MagErr int64
	// Aux holds the complete record bytes for fields this package does not
	// interpret. It aliases the input of Decode.
	Aux []byte
}

// Decoder decodes records of one layout. It is immutable and safe for
// concurrent use.
type Decoder struct {
	layout manifest.RecordLayout
	order  binary.ByteOrder
}

// NewDecoder returns a decoder for the records of m.
func NewDecoder(m manifest.Manifest) *Decoder {
	return &Decoder{layout: m.Record, order: m.Order()}
}

// Size returns the record size in bytes.
func (d *Decoder) Size() int { return d.layout.Size }

// Decode decodes the first record of b.
func (d *Decoder) Decode(b []byte) (Raw, error) {
	l := d.layout
	if len(b) < l.Size {
		return Raw{}, fmt.Errorf("%w: %d of %d bytes", ErrTruncatedRecord, len(b), l.Size)
	}
	b = b[:l.Size]

	ra := int64(d.order.Uint32(b[l.RAOffset:]))
	if ra >= codec.NativeFullCircle {
		return Raw{}, fmt.Errorf("%w: ra %d mas", ErrInvalidField, ra)
	}

	var dec int64
	switch l.DecEncoding {
	case manifest.DecSouthPoleDistance:
		dec = int64(d.order.Uint32(b[l.DecOffset:])) - southPoleOffset
	default:
		dec = int64(int32(d.order.Uint32(b[l.DecOffset:])))
	}
	if dec < -southPoleOffset || dec > southPoleOffset {
		return Raw{}, fmt.Errorf("%w: dec %d mas", ErrInvalidField, dec)
	}

	return Raw{
		RA:     ra,
		Dec:    dec,
		Mag:    d.field(b, l.Mag),
		MagErr: d.field(b, l.MagErr),
		Aux:    b,
	}, nil
}

func (d *Decoder) field(b []byte, f manifest.FieldLayout) int64 {
	p := b[f.Offset:]
	switch f.Width {
	case 1:
		if f.Signed {
			return int64(int8(p[0]))
		}
		return int64(p[0])
	case 2:
		v := d.order.Uint16(p)
		if f.Signed {
			return int64(int16(v))
		}
		return int64(v)
	default:
		v := d.order.Uint32(p)
		if f.Signed {
			return int64(int32(v))
		}
		return int64(v)
	}
}

// Degrees returns the position of r in degrees.
func (r Raw) Degrees() (ra, dec float64) {
	return codec.ToDegrees(r.RA), codec.ToDegrees(r.Dec)
}

// Magnitudes scales the magnitude fields of r using the layout of d.
// Sentinel values yield NaN.
func (d *Decoder) Magnitudes(r Raw) (mag, magErr float64) {
	l := d.layout
	return codec.MagToFloat(r.Mag, l.Mag.Scale, l.Mag.Missing),
		codec.MagToFloat(r.MagErr, l.MagErr.Scale, l.MagErr.Missing)
}

// Entry converts r into a decoded star.
func (d *Decoder) Entry(id model.CatalogID, z model.ZoneID, rn model.RunningNumber, r Raw) model.StarEntry {
	ra, dec := r.Degrees()
	mag, magErr := d.Magnitudes(r)
	return model.StarEntry{
		ID:     id,
		Zone:   z,
		Number: rn,
		RA:     ra,
		Dec:    dec,
		Mag:    mag,
		MagErr: magErr,
	}
}

// Encode writes r into a fresh record. Bytes outside the interpreted fields
// are taken from r.Aux when present. It is used by catalog writers.
func (d *Decoder) Encode(r Raw) []byte {
	l := d.layout
	out := make([]byte, l.Size)
	copy(out, r.Aux)

	d.order.PutUint32(out[l.RAOffset:], uint32(r.RA))
	if l.DecEncoding == manifest.DecSouthPoleDistance {
		d.order.PutUint32(out[l.DecOffset:], uint32(r.Dec+southPoleOffset))
	} else {
		d.order.PutUint32(out[l.DecOffset:], uint32(int32(r.Dec)))
	}
	d.putField(out, l.Mag, r.Mag)
	d.putField(out, l.MagErr, r.MagErr)
	return out
}

func (d *Decoder) putField(b []byte, f manifest.FieldLayout, v int64) {
	p := b[f.Offset:]
	switch f.Width {
	case 1:
		p[0] = byte(v)
	case 2:
		d.order.PutUint16(p, uint16(v))
	default:
		d.order.PutUint32(p, uint32(v))
	}
}
