// Package engine answers identifier and positional queries against a
// catalog store.
//
// Positional queries start at the cell containing the query point and widen
// ring by ring through the zone grid. A ring is only added while the result
// set is short or while a star outside the searched box could still beat the
// current k-th best separation. Every cell is read at most once per query.
//
// The engine holds no mutable state between queries; one Engine may serve
// any number of goroutines.
package engine
