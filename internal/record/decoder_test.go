package record

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/skycat/manifest"
)

// ucac4Record builds a UCAC4 record with the given raw field values.
func ucac4Record(ra, spd uint32, apassV int16, apassVErr uint8) []byte {
	b := make([]byte, 78)
	binary.LittleEndian.PutUint32(b[0:], ra)
	binary.LittleEndian.PutUint32(b[4:], spd)
	binary.LittleEndian.PutUint16(b[48:], uint16(apassV))
	b[57] = apassVErr
	return b
}

func TestDecoder_UCAC4Fixture(t *testing.T) {
	d := NewDecoder(manifest.Default())
	require.Equal(t, 78, d.Size())

	raw, err := d.Decode(ucac4Record(18290451, 682045, 10986, 5))
	require.NoError(t, err)

	ra, dec := raw.Degrees()
	assert.InDelta(t, 5.08068083, ra, 5e-9)
	assert.InDelta(t, -89.81054306, dec, 5e-9)

	mag, magErr := d.Magnitudes(raw)
	assert.InDelta(t, 10.986, mag, 1e-9)
	assert.InDelta(t, 0.05, magErr, 1e-9)
	assert.Len(t, raw.Aux, 78)
}

func TestDecoder_Sentinels(t *testing.T) {
	d := NewDecoder(manifest.Default())

	raw, err := d.Decode(ucac4Record(1000, 324_000_000, 20000, 99))
	require.NoError(t, err, "missing photometry is not an error")

	mag, magErr := d.Magnitudes(raw)
	assert.True(t, math.IsNaN(mag))
	assert.True(t, math.IsNaN(magErr))

	_, dec := raw.Degrees()
	assert.Zero(t, dec)
}

func TestDecoder_Errors(t *testing.T) {
	d := NewDecoder(manifest.Default())

	_, err := d.Decode(make([]byte, 77))
	assert.ErrorIs(t, err, ErrTruncatedRecord)

	_, err = d.Decode(ucac4Record(1_296_000_000, 0, 0, 0))
	assert.ErrorIs(t, err, ErrInvalidField, "ra of exactly 360 degrees")

	_, err = d.Decode(ucac4Record(0, 648_000_001, 0, 0))
	assert.ErrorIs(t, err, ErrInvalidField, "spd beyond the north pole")

	// Longer input decodes the first record only.
	raw, err := d.Decode(append(ucac4Record(5, 6, 7, 8), 0xff, 0xff))
	require.NoError(t, err)
	assert.Equal(t, int64(5), raw.RA)
	assert.Len(t, raw.Aux, 78)
}

func TestDecoder_SignedBigEndianLayout(t *testing.T) {
	m := manifest.Default()
	m.Record = manifest.RecordLayout{
		Size:        16,
		ByteOrder:   "big",
		RAOffset:    0,
		DecOffset:   4,
		DecEncoding: manifest.DecSigned,
		Mag:         manifest.FieldLayout{Offset: 8, Width: 4, Signed: true, Scale: 0.001, Missing: -1},
		MagErr:      manifest.FieldLayout{Offset: 12, Width: 1, Scale: 0.01, Missing: 255},
	}
	require.NoError(t, m.Validate())
	d := NewDecoder(m)

	want := Raw{RA: 976_445_044, Dec: -157_844_938, Mag: 12_107, MagErr: 3}
	b := d.Encode(want)
	assert.Equal(t, uint32(976_445_044), binary.BigEndian.Uint32(b))

	got, err := d.Decode(b)
	require.NoError(t, err)
	assert.Equal(t, want.RA, got.RA)
	assert.Equal(t, want.Dec, got.Dec)
	assert.Equal(t, want.Mag, got.Mag)
	assert.Equal(t, want.MagErr, got.MagErr)

	mag, magErr := d.Magnitudes(got)
	assert.InDelta(t, 12.107, mag, 1e-9)
	assert.InDelta(t, 0.03, magErr, 1e-9)
}

func TestDecoder_EncodePreservesAux(t *testing.T) {
	d := NewDecoder(manifest.Default())
	src := ucac4Record(100, 200, 300, 4)
	src[70] = 0xab // an uninterpreted byte

	raw, err := d.Decode(src)
	require.NoError(t, err)
	assert.Equal(t, src, d.Encode(raw))
}

func TestDecoder_Deterministic(t *testing.T) {
	d := NewDecoder(manifest.Default())
	b := ucac4Record(18290451, 682045, 10986, 5)

	a, err := d.Decode(b)
	require.NoError(t, err)
	c, err := d.Decode(b)
	require.NoError(t, err)
	assert.Equal(t, a, c)
}
