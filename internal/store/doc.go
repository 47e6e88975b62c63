// Package store provides positioned access to the zone files of a catalog.
//
// Open validates the whole catalog layout up front (every zone data file and
// index must exist with a consistent size) but reads no star data. After
// that, every read is a single positioned read against an immutable blob, so
// any number of goroutines may query the same Store.
package store
