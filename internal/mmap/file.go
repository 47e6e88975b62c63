package mmap

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"sync/atomic"
)

var (
	// ErrClosed is returned by reads on a closed File.
	ErrClosed = errors.New("mmap: file is closed")
	// ErrRange is returned for reads that start outside the file.
	ErrRange = errors.New("mmap: offset out of range")
)

// File is a read-only mapping of a whole file.
type File struct {
	data   []byte
	closed atomic.Bool
	unmap  func([]byte) error
}

// Open maps the file at path. Empty files are valid and map to nothing.
func Open(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return nil, err
	}
	size := fi.Size()
	if size == 0 {
		return &File{}, nil
	}
	if size > math.MaxInt {
		return nil, fmt.Errorf("mmap: %s: %d bytes exceed the address space", path, size)
	}

	data, unmap, err := mapFile(f, int(size))
	if err != nil {
		return nil, fmt.Errorf("mmap: %s: %w", path, err)
	}
	adviseRandom(data)
	return &File{data: data, unmap: unmap}, nil
}

// Len returns the file size in bytes.
func (f *File) Len() int64 {
	return int64(len(f.data))
}

// View returns n bytes starting at off without copying. The slice is valid
// until Close; a view reaching past the end of the file is truncated and
// reported with io.EOF.
func (f *File) View(off int64, n int) ([]byte, error) {
	if f.closed.Load() {
		return nil, ErrClosed
	}
	if off < 0 || off > f.Len() || n < 0 {
		return nil, ErrRange
	}
	end := off + int64(n)
	if end > f.Len() {
		return f.data[off:], io.EOF
	}
	return f.data[off:end:end], nil
}

// ReadAt implements io.ReaderAt.
func (f *File) ReadAt(p []byte, off int64) (int, error) {
	if f.closed.Load() {
		return 0, ErrClosed
	}
	if off < 0 {
		return 0, ErrRange
	}
	if off >= f.Len() {
		return 0, io.EOF
	}
	n := copy(p, f.data[off:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

// Close unmaps the file. It is idempotent.
func (f *File) Close() error {
	if f.closed.Swap(true) || f.unmap == nil {
		return nil
	}
	return f.unmap(f.data)
}
