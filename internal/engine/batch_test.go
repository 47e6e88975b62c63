package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/skycat/internal/zone"
	"github.com/hupe1980/skycat/model"
	"github.com/hupe1980/skycat/testutil"
)

func TestNearestMany(t *testing.T) {
	obs := &recordingObserver{}
	e, _ := newSmallEngine(t, basicStars, WithMetricsObserver(obs), WithParallelism(2))

	points := []model.Point{
		{RA: 25.1, Dec: 5.1},
		{RA: 400, Dec: 0},
		{RA: 15.2, Dec: 5},
		{RA: 100, Dec: 40},
	}
	res := e.NearestMany(context.Background(), points, 1, 1)
	require.Len(t, res, len(points))

	require.NoError(t, res[0].Err)
	require.Len(t, res[0].Neighbors, 1)
	assert.Equal(t, model.CatalogID("TEST 010-000002"), res[0].Neighbors[0].Star.ID)

	assert.ErrorIs(t, res[1].Err, zone.ErrOutOfRange)
	assert.Nil(t, res[1].Neighbors)

	require.NoError(t, res[2].Err)
	require.Len(t, res[2].Neighbors, 1)
	assert.Equal(t, model.CatalogID("TEST 010-000001"), res[2].Neighbors[0].Star.ID)

	require.NoError(t, res[3].Err)
	assert.Empty(t, res[3].Neighbors)

	assert.Equal(t, 1, obs.batches)
	assert.Equal(t, 1, obs.failed)
}

func TestNearestMany_MatchesSequential(t *testing.T) {
	rng := testutil.NewRNG(7)
	e, _ := newSmallEngine(t, func(b *testutil.CatalogBuilder) {
		b.AddPoints(rng, rng.SkyPoints(500))
	}, WithParallelism(4))
	ctx := context.Background()

	points := rng.SkyPoints(64)
	batch := e.NearestMany(ctx, points, 3, 2, WithWrapRA())
	for i, p := range points {
		want, err := e.Nearest(ctx, p.RA, p.Dec, 3, 2, WithWrapRA())
		require.NoError(t, err)
		require.NoError(t, batch[i].Err)
		assert.Equal(t, want, batch[i].Neighbors)
	}
}

func TestNearestMany_Empty(t *testing.T) {
	e, _ := newSmallEngine(t, basicStars)
	assert.Empty(t, e.NearestMany(context.Background(), nil, 1, 1))
}
