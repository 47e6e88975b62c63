package engine

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/skycat/model"
)

// BatchResult is the outcome for one point of a NearestMany call.
type BatchResult struct {
	Neighbors []model.Neighbor
	Err       error
}

// NearestMany runs Nearest for every point concurrently. Results are returned
// in input order; a failing point sets its Err and never aborts the others.
func (e *Engine) NearestMany(ctx context.Context, points []model.Point, maxResults, expandRadius int, opts ...QueryOption) []BatchResult {
	start := time.Now()
	out := make([]BatchResult, len(points))

	var g errgroup.Group
	g.SetLimit(e.parallelism)
	for i, p := range points {
		g.Go(func() error {
			res, err := e.Nearest(ctx, p.RA, p.Dec, maxResults, expandRadius, opts...)
			out[i] = BatchResult{Neighbors: res, Err: err}
			return nil
		})
	}
	_ = g.Wait()

	failed := 0
	for _, r := range out {
		if r.Err != nil {
			failed++
		}
	}
	e.metrics.OnBatch(time.Since(start), len(points), failed)
	e.logger.Debug("nearest batch",
		slog.Int("points", len(points)),
		slog.Int("failed", failed),
		slog.Duration("duration", time.Since(start)),
	)
	return out
}
