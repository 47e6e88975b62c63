package skycat

import (
	"sync/atomic"
	"time"

	"github.com/hupe1980/skycat/internal/engine"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems like
// Prometheus (see package observability).
type MetricsCollector interface {
	// RecordLookup is called after each identifier lookup.
	RecordLookup(duration time.Duration, err error)

	// RecordNearest is called after each positional query with the number of
	// cells read and records considered.
	RecordNearest(cells, candidates int, duration time.Duration, err error)

	// RecordBatch is called after each NearestMany call.
	RecordBatch(count, failed int, duration time.Duration)

	// RecordSkippedRecords is called when a cell read drops corrupt records.
	RecordSkippedRecords(n int)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordLookup(time.Duration, error)            {}
func (NoopMetricsCollector) RecordNearest(int, int, time.Duration, error) {}
func (NoopMetricsCollector) RecordBatch(int, int, time.Duration)          {}
func (NoopMetricsCollector) RecordSkippedRecords(int)                     {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	LookupCount       atomic.Int64
	LookupErrors      atomic.Int64
	LookupTotalNanos  atomic.Int64
	NearestCount      atomic.Int64
	NearestErrors     atomic.Int64
	NearestTotalNanos atomic.Int64
	CellsScanned      atomic.Int64
	BatchCount        atomic.Int64
	BatchPoints       atomic.Int64
	BatchFailed       atomic.Int64
	SkippedRecords    atomic.Int64
}

// RecordLookup implements MetricsCollector.
func (b *BasicMetricsCollector) RecordLookup(duration time.Duration, err error) {
	b.LookupCount.Add(1)
	b.LookupTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.LookupErrors.Add(1)
	}
}

// RecordNearest implements MetricsCollector.
func (b *BasicMetricsCollector) RecordNearest(cells, _ int, duration time.Duration, err error) {
	b.NearestCount.Add(1)
	b.NearestTotalNanos.Add(duration.Nanoseconds())
	b.CellsScanned.Add(int64(cells))
	if err != nil {
		b.NearestErrors.Add(1)
	}
}

// RecordBatch implements MetricsCollector.
func (b *BasicMetricsCollector) RecordBatch(count, failed int, _ time.Duration) {
	b.BatchCount.Add(1)
	b.BatchPoints.Add(int64(count))
	b.BatchFailed.Add(int64(failed))
}

// RecordSkippedRecords implements MetricsCollector.
func (b *BasicMetricsCollector) RecordSkippedRecords(n int) {
	b.SkippedRecords.Add(int64(n))
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		LookupCount:     b.LookupCount.Load(),
		LookupErrors:    b.LookupErrors.Load(),
		LookupAvgNanos:  average(b.LookupTotalNanos.Load(), b.LookupCount.Load()),
		NearestCount:    b.NearestCount.Load(),
		NearestErrors:   b.NearestErrors.Load(),
		NearestAvgNanos: average(b.NearestTotalNanos.Load(), b.NearestCount.Load()),
		CellsScanned:    b.CellsScanned.Load(),
		BatchCount:      b.BatchCount.Load(),
		BatchPoints:     b.BatchPoints.Load(),
		BatchFailed:     b.BatchFailed.Load(),
		SkippedRecords:  b.SkippedRecords.Load(),
	}
}

func average(total, count int64) int64 {
	if count == 0 {
		return 0
	}
	return total / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	LookupCount     int64
	LookupErrors    int64
	LookupAvgNanos  int64
	NearestCount    int64
	NearestErrors   int64
	NearestAvgNanos int64
	CellsScanned    int64
	BatchCount      int64
	BatchPoints     int64
	BatchFailed     int64
	SkippedRecords  int64
}

// engineMetrics forwards engine observations to a MetricsCollector.
type engineMetrics struct {
	mc MetricsCollector
}

func (m engineMetrics) OnLookup(d time.Duration, err error) {
	m.mc.RecordLookup(d, err)
}

func (m engineMetrics) OnNearest(d time.Duration, stats engine.QueryStats, err error) {
	m.mc.RecordNearest(stats.Cells, stats.Candidates, d, err)
}

func (m engineMetrics) OnBatch(d time.Duration, points, failed int) {
	m.mc.RecordBatch(points, failed, d)
}
