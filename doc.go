// Package skycat provides indexed lookups into large zone-partitioned star
// catalogs such as UCAC4.
//
// A catalog is a set of zone files, one per declination strip, each holding
// fixed-size binary records sorted by right ascension, plus one small index
// per zone that maps right-ascension buckets to byte ranges. skycat answers
// two kinds of queries with a handful of positioned reads and without ever
// loading a zone into memory:
//
//   - identifier lookup ("UCAC4 231-154752")
//   - nearest stars around a sky position
//
// # Quick Start
//
// Local mode:
//
//	ctx := context.Background()
//	cat, _ := skycat.Open(ctx, skycat.Local("/data/ucac4"))
//	defer cat.Close()
//
//	star, _ := cat.LookupByID(ctx, "UCAC4 001-000003")
//	n, ok, _ := cat.NearestOne(ctx, 271.2347, -43.8458, 1)
//
// Cloud mode:
//
//	st, _ := s3.New(ctx, "my-bucket", s3.WithPrefix("ucac4/"))
//	cat, _ := skycat.Open(ctx, skycat.Remote(st), skycat.WithBlockCache(256<<20, 0))
//
// # Catalog Layout
//
// The layout (zone and bucket counts, file names, record fields) is read
// from an optional catalog.toml at the catalog root; without it the UCAC4
// layout is assumed. See package manifest.
//
// # Positional Queries
//
// Nearest starts at the cell containing the query point and widens ring by
// ring, up to expandRadius rings. A ring is added while fewer than
// maxResults stars were found, or while a star beyond the searched cells
// could still be closer than the current result. Results are ordered by
// great-circle separation, ties broken by identifier.
//
// # Errors
//
// Every failure matches one of the package sentinels with errors.Is.
// Open-time failures (ErrMissingZone, ErrCorruptIndex, ErrCorruptZone) are
// fatal for the catalog; per-query failures never affect other queries.
package skycat
