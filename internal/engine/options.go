package engine

import (
	"log/slog"
	"runtime"
)

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger for the engine.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithParallelism bounds how many points NearestMany resolves at once.
// Values below 1 select GOMAXPROCS.
func WithParallelism(n int) Option {
	return func(e *Engine) {
		if n < 1 {
			n = runtime.GOMAXPROCS(0)
		}
		e.parallelism = n
	}
}

// WithMetricsObserver sets the metrics observer for the engine.
func WithMetricsObserver(observer MetricsObserver) Option {
	return func(e *Engine) {
		if observer != nil {
			e.metrics = observer
		}
	}
}

// QueryOption tunes a single positional query.
type QueryOption func(*queryOptions)

type queryOptions struct {
	wrapRA        bool
	maxSeparation float64
}

// WithWrapRA lets the search continue across the 360°/0° right ascension
// seam. Without it, cells on the other side of the seam are never read.
func WithWrapRA() QueryOption {
	return func(o *queryOptions) {
		o.wrapRA = true
	}
}

// WithMaxSeparation drops candidates farther than deg degrees from the query
// point. Zero disables the limit.
func WithMaxSeparation(deg float64) QueryOption {
	return func(o *queryOptions) {
		o.maxSeparation = deg
	}
}
