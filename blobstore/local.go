package blobstore

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"

	"github.com/hupe1980/skycat/internal/mmap"
)

// LocalStore implements BlobStore using the local file system.
type LocalStore struct {
	root  string
	pread bool
}

// LocalOption configures a LocalStore.
type LocalOption func(*LocalStore)

// WithPread makes the store read through positional file reads instead of
// memory mappings. Useful on filesystems where mmap is unavailable or slow.
func WithPread() LocalOption {
	return func(s *LocalStore) {
		s.pread = true
	}
}

// NewLocalStore creates a new LocalStore rooted at the given directory.
func NewLocalStore(root string, optFns ...LocalOption) *LocalStore {
	s := &LocalStore{root: root}
	for _, fn := range optFns {
		fn(s)
	}
	return s
}

// Root returns the directory the store is rooted at.
func (s *LocalStore) Root() string {
	return s.root
}

// Open opens a blob for reading.
func (s *LocalStore) Open(ctx context.Context, name string) (Blob, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path := filepath.Join(s.root, name)

	if s.pread {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		fi, err := f.Stat()
		if err != nil {
			_ = f.Close()
			return nil, err
		}
		return &fileBlob{f: f, size: fi.Size()}, nil
	}

	// Zone files are read at random offsets; mmap is the default.
	m, err := mmap.Open(path)
	if err != nil {
		return nil, err
	}
	return &localBlob{m: m}, nil
}

// Put writes data to a temporary file and renames it into place.
func (s *LocalStore) Put(_ context.Context, name string, data []byte) error {
	path := filepath.Join(s.root, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-"+filepath.Base(name)+"-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	return os.Rename(tmpName, path)
}

type localBlob struct {
	m *mmap.File
}

func (b *localBlob) ReadAt(_ context.Context, p []byte, off int64) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	return b.m.ReadAt(p, off)
}

func (b *localBlob) Close() error {
	return b.m.Close()
}

func (b *localBlob) Size() int64 {
	return b.m.Len()
}

func (b *localBlob) View(off int64, n int) ([]byte, error) {
	return b.m.View(off, n)
}

type fileBlob struct {
	f    *os.File
	size int64
}

func (b *fileBlob) ReadAt(ctx context.Context, p []byte, off int64) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	n, err := b.f.ReadAt(p, off)
	if errors.Is(err, os.ErrClosed) {
		return n, err
	}
	if n < len(p) && err == nil {
		err = io.EOF
	}
	return n, err
}

func (b *fileBlob) Close() error {
	err := b.f.Close()
	if errors.Is(err, os.ErrClosed) {
		return nil
	}
	return err
}

func (b *fileBlob) Size() int64 {
	return b.size
}
