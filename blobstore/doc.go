// Package blobstore provides storage abstraction for catalog files.
//
// A catalog root is a flat namespace of immutable blobs: one data file and
// one index file per zone, plus an optional catalog.toml manifest.
// Implementations must be safe for concurrent use.
//
// # Built-in Implementations
//
//   - LocalStore: Local filesystem, memory-mapped by default (WithPread for pread)
//   - MemoryStore: In-memory store for tests and fixtures
//   - s3.Store: Amazon S3 with ranged GETs
//   - minio.Store: MinIO and other S3-compatible servers
//
// # Wrappers
//
//   - CachingStore: block cache in front of a slow backend
//   - ThrottledStore: concurrency and bytes-per-second limits
//
// Wrappers compose:
//
//	store := blobstore.NewCachingStore(
//	    blobstore.NewThrottledStore(s3Store, rc),
//	    cache.NewSharded(256<<20, rc),
//	    0,
//	)
package blobstore
