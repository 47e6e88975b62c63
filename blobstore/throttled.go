package blobstore

import (
	"context"

	"github.com/hupe1980/skycat/internal/resource"
)

// ThrottledStore bounds concurrent reads and read throughput of the inner
// store using a resource.Controller.
type ThrottledStore struct {
	inner BlobStore
	rc    *resource.Controller
}

// NewThrottledStore wraps inner. A nil controller makes the wrapper transparent.
func NewThrottledStore(inner BlobStore, rc *resource.Controller) *ThrottledStore {
	return &ThrottledStore{inner: inner, rc: rc}
}

// Open opens a throttled blob.
func (s *ThrottledStore) Open(ctx context.Context, name string) (Blob, error) {
	b, err := s.inner.Open(ctx, name)
	if err != nil {
		return nil, err
	}
	return &throttledBlob{Blob: b, rc: s.rc}, nil
}

type throttledBlob struct {
	Blob
	rc *resource.Controller
}

func (b *throttledBlob) ReadAt(ctx context.Context, p []byte, off int64) (int, error) {
	done, err := b.rc.BeginRead(ctx, len(p))
	if err != nil {
		return 0, err
	}
	defer done()
	return b.Blob.ReadAt(ctx, p, off)
}
