package cache

// Key identifies one block of a catalog file.
type Key struct {
	Blob  string // e.g. "u4b/z231"
	Block int64
}

// Stats describes cache effectiveness and footprint.
type Stats struct {
	Hits      int64
	Misses    int64
	Evictions int64
	Blocks    int
	Bytes     int64
}

// BlockCache caches immutable blocks. Returned slices are shared and must
// not be modified.
type BlockCache interface {
	Get(key Key) ([]byte, bool)
	// Add caches b, which the cache may retain. A block that does not fit is
	// dropped silently.
	Add(key Key, b []byte)
	Stats() Stats
}
