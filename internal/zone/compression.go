package zone

import (
	"bytes"
	"fmt"
	"io"
	"sync"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Compression identifies how an index file is stored.
type Compression uint8

const (
	// CompressionNone is a raw index file.
	CompressionNone Compression = iota
	// CompressionZSTD is a zstd frame (suffix ".zst").
	CompressionZSTD
	// CompressionLZ4 is an lz4 frame (suffix ".lz4").
	CompressionLZ4
)

// Compressions lists the storage variants in lookup order.
var Compressions = []Compression{CompressionNone, CompressionZSTD, CompressionLZ4}

// Suffix returns the file name suffix of the variant.
func (c Compression) Suffix() string {
	switch c {
	case CompressionZSTD:
		return ".zst"
	case CompressionLZ4:
		return ".lz4"
	default:
		return ""
	}
}

func (c Compression) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionZSTD:
		return "zstd"
	case CompressionLZ4:
		return "lz4"
	default:
		return fmt.Sprintf("Compression(%d)", c)
	}
}

var (
	zstdEncoderPool sync.Pool
	zstdDecoderPool sync.Pool
)

func getZstdEncoder() *zstd.Encoder {
	if v := zstdEncoderPool.Get(); v != nil {
		return v.(*zstd.Encoder)
	}
	enc, _ := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedBetterCompression))
	return enc
}

func getZstdDecoder() *zstd.Decoder {
	if v := zstdDecoderPool.Get(); v != nil {
		return v.(*zstd.Decoder)
	}
	dec, _ := zstd.NewReader(nil, zstd.WithDecoderConcurrency(1))
	return dec
}

// Compress encodes an index page. It is used by catalog writers.
func Compress(c Compression, data []byte) ([]byte, error) {
	switch c {
	case CompressionNone:
		return data, nil
	case CompressionZSTD:
		enc := getZstdEncoder()
		defer zstdEncoderPool.Put(enc)
		return enc.EncodeAll(data, nil), nil
	case CompressionLZ4:
		var buf bytes.Buffer
		w := lz4.NewWriter(&buf)
		if _, err := w.Write(data); err != nil {
			return nil, err
		}
		if err := w.Close(); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	default:
		return nil, fmt.Errorf("zone: unknown compression %v", c)
	}
}

// decompress decodes an index page. At most limit+1 bytes are produced, so an
// oversize page surfaces as a length mismatch without being inflated in full.
func decompress(c Compression, data []byte, limit int) ([]byte, error) {
	switch c {
	case CompressionNone:
		return data, nil
	case CompressionZSTD:
		dec := getZstdDecoder()
		defer zstdDecoderPool.Put(dec)
		if err := dec.Reset(bytes.NewReader(data)); err != nil {
			return nil, err
		}
		return readLimited(dec, limit)
	case CompressionLZ4:
		return readLimited(lz4.NewReader(bytes.NewReader(data)), limit)
	default:
		return nil, fmt.Errorf("zone: unknown compression %v", c)
	}
}

// readLimited reads one byte past limit so oversize pages are detected.
func readLimited(r io.Reader, limit int) ([]byte, error) {
	return io.ReadAll(io.LimitReader(r, int64(limit)+1))
}
