// Package resource enforces process-wide limits shared by every catalog
// opened with the same Controller:
//
//   - a memory budget charged by block caches; reservations never block and
//     a cache that cannot reserve simply skips caching
//   - a bound on in-flight backend reads
//   - a bytes-per-second rate on backend reads (token bucket)
//
// A nil *Controller imposes no limits.
package resource
