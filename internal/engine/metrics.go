package engine

import "time"

// QueryStats describes the work done by one positional query.
type QueryStats struct {
	// Rings is the number of rings searched, the home cell included.
	Rings int
	// Cells is the number of cells read.
	Cells int
	// Candidates is the number of decoded records considered.
	Candidates int
}

// MetricsObserver defines the interface for observing engine queries.
type MetricsObserver interface {
	// OnLookup is called after each identifier lookup.
	OnLookup(duration time.Duration, err error)

	// OnNearest is called after each positional query.
	OnNearest(duration time.Duration, stats QueryStats, err error)

	// OnBatch is called after each NearestMany call.
	OnBatch(duration time.Duration, points, failed int)
}

// NoopMetricsObserver is a no-op implementation of MetricsObserver.
type NoopMetricsObserver struct{}

func (NoopMetricsObserver) OnLookup(time.Duration, error)              {}
func (NoopMetricsObserver) OnNearest(time.Duration, QueryStats, error) {}
func (NoopMetricsObserver) OnBatch(time.Duration, int, int)            {}
