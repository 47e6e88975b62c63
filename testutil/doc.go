// Package testutil provides testing utilities for skycat.
//
// This package is intended for use in tests and benchmarks only.
// It provides a fixture catalog writer, seeded random sky positions, and a
// brute-force nearest-neighbour search used as ground truth.
//
// # Fixture Catalogs
//
//	b := testutil.NewCatalogBuilder(manifest.Default())
//	b.Add(271.2347344444444, -43.84581611111111, 12.107, 0.03)
//	stars, err := b.Build(ctx, blobstore.NewMemoryStore())
//
// # Random Sky Positions
//
//	rng := testutil.NewRNG(seed)
//	pts := rng.SkyPoints(1000)      // uniform on the sphere
//
// # Exact Search (Ground Truth)
//
//	want := testutil.ExactNearest(stars, ra, dec, k)
package testutil
