// Package observability exposes catalog query metrics to Prometheus.
package observability

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/hupe1980/skycat"
)

var latencyBuckets = []float64{0.0001, 0.00025, 0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 1}

// PrometheusCollector implements skycat.MetricsCollector with Prometheus
// metrics and serves them over HTTP.
type PrometheusCollector struct {
	gatherer prometheus.Gatherer

	Queries        *prometheus.CounterVec
	QueryDurations *prometheus.HistogramVec
	CellsScanned   prometheus.Counter
	Candidates     prometheus.Counter
	BatchPoints    *prometheus.CounterVec
	SkippedRecords prometheus.Counter
	HTTPRequests   *prometheus.CounterVec
	HTTPDurations  *prometheus.HistogramVec
}

var _ skycat.MetricsCollector = (*PrometheusCollector)(nil)

// NewPrometheusCollector registers skycat metrics against the provided
// registerer, defaulting to the global Prometheus registry when nil.
func NewPrometheusCollector(reg prometheus.Registerer) (*PrometheusCollector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	queries, err := register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "skycat_queries_total",
		Help: "Total number of catalog queries, labeled by kind and outcome.",
	}, []string{"kind", "outcome"}), "skycat_queries_total")
	if err != nil {
		return nil, err
	}
	durations, err := register(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "skycat_query_duration_seconds",
		Help:    "Catalog query latency in seconds.",
		Buckets: latencyBuckets,
	}, []string{"kind"}), "skycat_query_duration_seconds")
	if err != nil {
		return nil, err
	}
	cells, err := register(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "skycat_cells_scanned_total",
		Help: "Total number of index cells read by positional queries.",
	}), "skycat_cells_scanned_total")
	if err != nil {
		return nil, err
	}
	candidates, err := register(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "skycat_candidates_total",
		Help: "Total number of records considered by positional queries.",
	}), "skycat_candidates_total")
	if err != nil {
		return nil, err
	}
	batch, err := register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "skycat_batch_points_total",
		Help: "Total number of points resolved in batches, labeled by outcome.",
	}, []string{"outcome"}), "skycat_batch_points_total")
	if err != nil {
		return nil, err
	}
	skipped, err := register(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "skycat_skipped_records_total",
		Help: "Total number of records dropped because they failed to decode.",
	}), "skycat_skipped_records_total")
	if err != nil {
		return nil, err
	}
	httpRequests, err := register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "skycat_http_requests_total",
		Help: "Total number of handled HTTP requests, labeled by route and status code.",
	}, []string{"route", "code"}), "skycat_http_requests_total")
	if err != nil {
		return nil, err
	}
	httpDurations, err := register(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "skycat_http_request_duration_seconds",
		Help:    "HTTP request latency in seconds.",
		Buckets: latencyBuckets,
	}, []string{"route"}), "skycat_http_request_duration_seconds")
	if err != nil {
		return nil, err
	}

	return &PrometheusCollector{
		gatherer:       gatherer,
		Queries:        queries,
		QueryDurations: durations,
		CellsScanned:   cells,
		Candidates:     candidates,
		BatchPoints:    batch,
		SkippedRecords: skipped,
		HTTPRequests:   httpRequests,
		HTTPDurations:  httpDurations,
	}, nil
}

// RecordLookup implements skycat.MetricsCollector.
func (c *PrometheusCollector) RecordLookup(duration time.Duration, err error) {
	c.observe("lookup", duration, err)
}

// RecordNearest implements skycat.MetricsCollector.
func (c *PrometheusCollector) RecordNearest(cells, candidates int, duration time.Duration, err error) {
	c.observe("nearest", duration, err)
	c.CellsScanned.Add(float64(cells))
	c.Candidates.Add(float64(candidates))
}

// RecordBatch implements skycat.MetricsCollector.
func (c *PrometheusCollector) RecordBatch(count, failed int, duration time.Duration) {
	c.QueryDurations.WithLabelValues("batch").Observe(duration.Seconds())
	c.BatchPoints.WithLabelValues("ok").Add(float64(count - failed))
	c.BatchPoints.WithLabelValues("error").Add(float64(failed))
}

// RecordSkippedRecords implements skycat.MetricsCollector.
func (c *PrometheusCollector) RecordSkippedRecords(n int) {
	c.SkippedRecords.Add(float64(n))
}

func (c *PrometheusCollector) observe(kind string, duration time.Duration, err error) {
	c.Queries.WithLabelValues(kind, Outcome(err)).Inc()
	c.QueryDurations.WithLabelValues(kind).Observe(duration.Seconds())
}

// Outcome classifies a query error into a low-cardinality label value.
func Outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, skycat.ErrNotFound):
		return "not_found"
	case errors.Is(err, skycat.ErrInvalidIdentifier),
		errors.Is(err, skycat.ErrInvalidArgument),
		errors.Is(err, skycat.ErrOutOfRange):
		return "invalid"
	default:
		return "error"
	}
}

// Handler exposes a ready-to-use /metrics handler.
func (c *PrometheusCollector) Handler() http.Handler {
	gatherer := c.gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// Middleware records request counts and durations for one route.
func (c *PrometheusCollector) Middleware(route string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, code: http.StatusOK}
		next.ServeHTTP(rec, r)

		if c == nil {
			return
		}
		c.HTTPRequests.WithLabelValues(route, strconv.Itoa(rec.code)).Inc()
		c.HTTPDurations.WithLabelValues(route).Observe(time.Since(start).Seconds())
	})
}

type statusRecorder struct {
	http.ResponseWriter
	code int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.code = code
	r.ResponseWriter.WriteHeader(code)
}

// register registers col, reusing an identical collector that is already
// registered under the same name.
func register[T prometheus.Collector](reg prometheus.Registerer, col T, name string) (T, error) {
	if err := reg.Register(col); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(T); ok {
				return existing, nil
			}
			var zero T
			return zero, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		var zero T
		return zero, err
	}
	return col, nil
}
