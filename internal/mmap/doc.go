// Package mmap maps immutable catalog files read-only into memory.
//
// Zone data files may be gigabytes in size and are read at random offsets,
// one bucket at a time. A mapped File serves any number of concurrent
// positioned reads without a shared cursor, and its descriptor is released
// as soon as the mapping exists, so a catalog with 900 zones does not hold
// 900 open files.
//
//	f, err := mmap.Open("u4b/z231")
//	if err != nil { ... }
//	defer f.Close()
//
//	rec, err := f.View(off, 78) // zero-copy, valid until Close
//
// Unix uses mmap(2) and advises the kernel of random access; Windows uses
// CreateFileMapping/MapViewOfFile.
package mmap
