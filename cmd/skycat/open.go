package main

import (
	"context"
	"fmt"
	"os"

	"github.com/hupe1980/skycat"
	"github.com/hupe1980/skycat/blobstore"
	"github.com/hupe1980/skycat/blobstore/minio"
	"github.com/hupe1980/skycat/blobstore/s3"
	"github.com/hupe1980/skycat/internal/config"
)

// newLogger builds the CLI logger from config.
func newLogger(cfg config.Config) (*skycat.Logger, error) {
	level, err := cfg.SlogLevel()
	if err != nil {
		return nil, err
	}
	if cfg.LogFormat == "json" {
		return skycat.NewJSONLogger(level), nil
	}
	return skycat.NewTextLogger(level), nil
}

// location resolves the configured catalog root.
func location(ctx context.Context, cfg config.Config) (skycat.Location, error) {
	loc, err := config.ParseLocation(cfg.Catalog)
	if err != nil {
		return skycat.Location{}, err
	}

	var blobs blobstore.BlobStore
	switch loc.Scheme {
	case config.SchemeLocal:
		return skycat.Local(loc.Dir), nil
	case config.SchemeS3:
		opts := []s3.Option{s3.WithPrefix(loc.Prefix)}
		if cfg.S3.Region != "" {
			opts = append(opts, s3.WithRegion(cfg.S3.Region))
		}
		if cfg.S3.Endpoint != "" {
			opts = append(opts, s3.WithEndpoint(cfg.S3.Endpoint))
		}
		st, err := s3.New(ctx, loc.Bucket, opts...)
		if err != nil {
			return skycat.Location{}, fmt.Errorf("s3 catalog %s: %w", cfg.Catalog, err)
		}
		blobs = st
	case config.SchemeMinio:
		accessKey, secretKey := cfg.Minio.AccessKey, cfg.Minio.SecretKey
		if accessKey == "" {
			accessKey = os.Getenv("MINIO_ACCESS_KEY")
		}
		if secretKey == "" {
			secretKey = os.Getenv("MINIO_SECRET_KEY")
		}
		client, err := minio.Dial(loc.Endpoint, accessKey, secretKey, cfg.Minio.Secure)
		if err != nil {
			return skycat.Location{}, fmt.Errorf("minio catalog %s: %w", cfg.Catalog, err)
		}
		blobs = minio.NewStore(client, loc.Bucket, loc.Prefix)
	}
	return skycat.Remote(blobs), nil
}

// catalogOptions maps config to library options.
func catalogOptions(cfg config.Config, logger *skycat.Logger) []skycat.Option {
	opts := []skycat.Option{
		skycat.WithLogger(logger),
		skycat.WithParallelism(cfg.Parallelism),
	}
	if cfg.Cache.Size > 0 {
		opts = append(opts, skycat.WithBlockCache(cfg.Cache.Size, cfg.Cache.BlockSize))
	}
	if cfg.MemoryLimit > 0 {
		opts = append(opts, skycat.WithMemoryLimit(cfg.MemoryLimit))
	}
	if cfg.IOLimit > 0 {
		opts = append(opts, skycat.WithIOLimit(cfg.IOLimit))
	}
	if cfg.MaxConcurrentReads > 0 {
		opts = append(opts, skycat.WithMaxConcurrentReads(cfg.MaxConcurrentReads))
	}
	return opts
}

// queryOptions maps config to per-query options.
func queryOptions(cfg config.Config) []skycat.QueryOption {
	var opts []skycat.QueryOption
	if cfg.WrapRA {
		opts = append(opts, skycat.WithWrapRA())
	}
	if cfg.MaxSeparation > 0 {
		opts = append(opts, skycat.WithMaxSeparation(cfg.MaxSeparation))
	}
	return opts
}

// openCatalog loads config and opens the configured catalog.
func openCatalog(ctx context.Context, extra ...skycat.Option) (*skycat.Catalog, config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, config.Config{}, fmt.Errorf("failed to load config: %w", err)
	}
	logger, err := newLogger(cfg)
	if err != nil {
		return nil, config.Config{}, err
	}
	loc, err := location(ctx, cfg)
	if err != nil {
		return nil, config.Config{}, err
	}
	cat, err := skycat.Open(ctx, loc, append(catalogOptions(cfg, logger), extra...)...)
	if err != nil {
		return nil, config.Config{}, err
	}
	return cat, cfg, nil
}
