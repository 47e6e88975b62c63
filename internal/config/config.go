// Package config loads skycat CLI settings from .skycat.yaml, SKYCAT_* env
// vars and command-line flags.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/spf13/viper"
)

// ErrInvalidConfig is returned when a setting is unusable.
var ErrInvalidConfig = errors.New("invalid config")

// CacheConfig configures the block cache in front of the catalog files.
type CacheConfig struct {
	Size      int64 `mapstructure:"size"`
	BlockSize int64 `mapstructure:"block_size"`
}

// S3Config holds settings for s3:// catalog roots.
type S3Config struct {
	Region   string `mapstructure:"region"`
	Endpoint string `mapstructure:"endpoint"`
}

// MinioConfig holds credentials for minio:// catalog roots.
type MinioConfig struct {
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Secure    bool   `mapstructure:"secure"`
}

// ServeConfig configures the HTTP server.
type ServeConfig struct {
	Addr string `mapstructure:"addr"`
}

// Config holds all runtime configuration for the skycat CLI.
type Config struct {
	Catalog            string      `mapstructure:"catalog"`
	LogLevel           string      `mapstructure:"log_level"`
	LogFormat          string      `mapstructure:"log_format"`
	Parallelism        int         `mapstructure:"parallelism"`
	MaxResults         int         `mapstructure:"max_results"`
	ExpandRadius       int         `mapstructure:"expand_radius"`
	WrapRA             bool        `mapstructure:"wrap_ra"`
	MaxSeparation      float64     `mapstructure:"max_separation"`
	IOLimit            int64       `mapstructure:"io_limit"`
	MaxConcurrentReads int         `mapstructure:"max_concurrent_reads"`
	MemoryLimit        int64       `mapstructure:"memory_limit"`
	Cache              CacheConfig `mapstructure:"cache"`
	S3                 S3Config    `mapstructure:"s3"`
	Minio              MinioConfig `mapstructure:"minio"`
	Serve              ServeConfig `mapstructure:"serve"`
}

// InitEnv makes viper resolve SKYCAT_* environment variables, with nested
// keys joined by underscores (cache.size -> SKYCAT_CACHE_SIZE).
func InitEnv() {
	viper.SetEnvPrefix("SKYCAT")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
}

// Load reads configuration from viper, applying built-in defaults for any
// values not set by config file, environment, or flags.
func Load() (Config, error) {
	viper.SetDefault("catalog", ".")
	viper.SetDefault("log_level", "info")
	viper.SetDefault("log_format", "text")
	viper.SetDefault("parallelism", 0)
	viper.SetDefault("max_results", 1)
	viper.SetDefault("expand_radius", 1)
	viper.SetDefault("wrap_ra", false)
	viper.SetDefault("max_separation", 0.0)
	viper.SetDefault("io_limit", 0)
	viper.SetDefault("max_concurrent_reads", 0)
	viper.SetDefault("memory_limit", 0)
	viper.SetDefault("cache.size", 0)
	viper.SetDefault("cache.block_size", 4096)
	viper.SetDefault("s3.region", "")
	viper.SetDefault("s3.endpoint", "")
	viper.SetDefault("minio.access_key", "")
	viper.SetDefault("minio.secret_key", "")
	viper.SetDefault("minio.secure", true)
	viper.SetDefault("serve.addr", ":8080")

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks value ranges and enumerations.
func (c Config) Validate() error {
	if c.Catalog == "" {
		return fmt.Errorf("%w: catalog must not be empty", ErrInvalidConfig)
	}
	if _, err := c.SlogLevel(); err != nil {
		return err
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("%w: log_format must be text or json, got %q", ErrInvalidConfig, c.LogFormat)
	}
	if c.MaxResults < 1 {
		return fmt.Errorf("%w: max_results must be >= 1, got %d", ErrInvalidConfig, c.MaxResults)
	}
	if c.ExpandRadius < 0 {
		return fmt.Errorf("%w: expand_radius must be >= 0, got %d", ErrInvalidConfig, c.ExpandRadius)
	}
	if c.MaxSeparation < 0 {
		return fmt.Errorf("%w: max_separation must be >= 0, got %v", ErrInvalidConfig, c.MaxSeparation)
	}
	if c.Cache.Size < 0 || c.Cache.BlockSize < 0 || c.IOLimit < 0 || c.MemoryLimit < 0 || c.MaxConcurrentReads < 0 {
		return fmt.Errorf("%w: sizes and limits must not be negative", ErrInvalidConfig)
	}
	_, err := ParseLocation(c.Catalog)
	return err
}

// SlogLevel converts LogLevel into a slog level.
func (c Config) SlogLevel() (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("%w: log_level %q", ErrInvalidConfig, c.LogLevel)
	}
	return l, nil
}

// Scheme is the kind of catalog root.
type Scheme string

// Supported catalog roots.
const (
	SchemeLocal Scheme = "file"
	SchemeS3    Scheme = "s3"
	SchemeMinio Scheme = "minio"
)

// Location is a parsed catalog root.
type Location struct {
	Scheme   Scheme
	Dir      string // SchemeLocal
	Endpoint string // SchemeMinio
	Bucket   string
	Prefix   string // always empty or ending in "/"
}

// ParseLocation parses a catalog root: a directory, s3://bucket/prefix or
// minio://endpoint/bucket/prefix.
func ParseLocation(s string) (Location, error) {
	if !strings.Contains(s, "://") {
		return Location{Scheme: SchemeLocal, Dir: s}, nil
	}

	u, err := url.Parse(s)
	if err != nil {
		return Location{}, fmt.Errorf("%w: catalog %q: %w", ErrInvalidConfig, s, err)
	}
	path := strings.Trim(u.Path, "/")

	switch Scheme(u.Scheme) {
	case SchemeLocal:
		return Location{Scheme: SchemeLocal, Dir: u.Path}, nil
	case SchemeS3:
		if u.Host == "" {
			return Location{}, fmt.Errorf("%w: catalog %q: missing bucket", ErrInvalidConfig, s)
		}
		return Location{Scheme: SchemeS3, Bucket: u.Host, Prefix: dirPrefix(path)}, nil
	case SchemeMinio:
		bucket, prefix, _ := strings.Cut(path, "/")
		if u.Host == "" || bucket == "" {
			return Location{}, fmt.Errorf("%w: catalog %q: want minio://endpoint/bucket[/prefix]", ErrInvalidConfig, s)
		}
		return Location{Scheme: SchemeMinio, Endpoint: u.Host, Bucket: bucket, Prefix: dirPrefix(prefix)}, nil
	default:
		return Location{}, fmt.Errorf("%w: catalog %q: unsupported scheme %q", ErrInvalidConfig, s, u.Scheme)
	}
}

func dirPrefix(p string) string {
	if p == "" {
		return ""
	}
	return p + "/"
}
