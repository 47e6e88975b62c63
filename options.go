package skycat

import (
	"log/slog"

	"github.com/hupe1980/skycat/blobstore"
	"github.com/hupe1980/skycat/manifest"
)

type options struct {
	logger             *Logger
	metricsCollector   MetricsCollector
	manifest           *manifest.Manifest
	parallelism        int
	openConcurrency    int
	verifyIndexes      bool
	blockCacheSize     int64
	blockSize          int64
	memoryLimit        int64
	ioLimit            int64
	maxConcurrentReads int
	localOptions       []blobstore.LocalOption
}

// Option configures Open.
type Option func(*options)

// WithLogger configures structured logging for operations.
// Pass nil to disable logging.
//
// Example with JSON logging:
//
//	logger := skycat.NewJSONLogger(slog.LevelInfo)
//	cat, _ := skycat.Open(ctx, skycat.Local("/data/ucac4"), skycat.WithLogger(logger))
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

// WithMetricsCollector configures a metrics collector for monitoring queries.
// Pass nil to disable metrics collection.
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		o.metricsCollector = mc
	}
}

// WithManifest overrides the catalog layout instead of reading catalog.toml
// from the catalog root.
func WithManifest(m manifest.Manifest) Option {
	return func(o *options) {
		o.manifest = &m
	}
}

// WithParallelism bounds how many points NearestMany resolves at once.
// Values below 1 select GOMAXPROCS.
func WithParallelism(n int) Option {
	return func(o *options) {
		o.parallelism = n
	}
}

// WithOpenConcurrency bounds how many zones Open validates at once.
func WithOpenConcurrency(n int) Option {
	return func(o *options) {
		o.openConcurrency = n
	}
}

// WithVerifyIndexes makes Open load every zone index and check each bucket
// against its data file. This reads all index files up front.
func WithVerifyIndexes() Option {
	return func(o *options) {
		o.verifyIndexes = true
	}
}

// WithBlockCache caches zone file reads in fixed-size blocks, up to size
// bytes in total. It mostly pays off for remote catalogs.
// blockSize <= 0 selects blobstore.DefaultBlockSize.
func WithBlockCache(size, blockSize int64) Option {
	return func(o *options) {
		o.blockCacheSize = size
		o.blockSize = blockSize
	}
}

// WithMemoryLimit caps the memory the block cache may hold.
func WithMemoryLimit(bytes int64) Option {
	return func(o *options) {
		o.memoryLimit = bytes
	}
}

// WithIOLimit throttles zone file reads to bytesPerSec.
func WithIOLimit(bytesPerSec int64) Option {
	return func(o *options) {
		o.ioLimit = bytesPerSec
	}
}

// WithMaxConcurrentReads bounds the number of zone file reads in flight.
func WithMaxConcurrentReads(n int) Option {
	return func(o *options) {
		o.maxConcurrentReads = n
	}
}

// WithLocalOptions passes options to the local blob store used by Local.
func WithLocalOptions(opts ...blobstore.LocalOption) Option {
	return func(o *options) {
		o.localOptions = append(o.localOptions, opts...)
	}
}
