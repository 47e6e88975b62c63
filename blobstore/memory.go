package blobstore

import (
	"context"
	"io"
	"sync"
)

// MemoryStore keeps catalog files in memory. Tests and examples build
// catalogs into it; it is safe for concurrent use.
type MemoryStore struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{blobs: make(map[string][]byte)}
}

// Open returns a handle sharing the stored bytes.
func (m *MemoryStore) Open(_ context.Context, name string) (Blob, error) {
	m.mu.RLock()
	data, ok := m.blobs[name]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	return memoryBlob(data), nil
}

// Put stores a copy of data under name.
func (m *MemoryStore) Put(_ context.Context, name string, data []byte) error {
	m.mu.Lock()
	m.blobs[name] = append([]byte(nil), data...)
	m.mu.Unlock()
	return nil
}

// Len returns the number of stored files.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.blobs)
}

type memoryBlob []byte

func (b memoryBlob) ReadAt(_ context.Context, p []byte, off int64) (int, error) {
	if off < 0 || off >= int64(len(b)) {
		return 0, io.EOF
	}
	n := copy(p, b[off:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

func (b memoryBlob) View(off int64, n int) ([]byte, error) {
	if off < 0 || off > int64(len(b)) || n < 0 {
		return nil, io.ErrUnexpectedEOF
	}
	end := min(off+int64(n), int64(len(b)))
	if end-off < int64(n) {
		return b[off:end:end], io.EOF
	}
	return b[off:end:end], nil
}

func (memoryBlob) Close() error { return nil }

func (b memoryBlob) Size() int64 { return int64(len(b)) }
