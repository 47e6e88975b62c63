// Package model defines core types used throughout skycat.
//
// # Identity Types
//
//   - ZoneID: 1-based declination zone number
//   - BucketID: 1-based right-ascension bucket number within a zone
//   - RunningNumber: 1-based position of a record inside its zone file
//   - CatalogID: display identifier, e.g. "UCAC4 231-154752"
//
// # Data Types
//
//   - StarEntry: decoded, immutable catalog star
//   - Neighbor: StarEntry plus its separation from a query point
//
// # Identifiers
//
// Identifiers are a bidirectional, lossless encoding of (zone, running number):
//
//	id := model.FormatID("UCAC4", 1, 3)          // "UCAC4 001-000003"
//	zone, rn, err := model.ParseID("UCAC4", id)  // 1, 3, nil
package model
