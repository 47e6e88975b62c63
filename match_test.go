package skycat_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/skycat"
	"github.com/hupe1980/skycat/testutil"
)

func TestMatches(t *testing.T) {
	m := make(skycat.Matches)
	assert.False(t, m.Has(skycat.SourceUCAC4))

	m.Set(skycat.OwnCatalogMatch{Name: "V0001", RA: 1, Dec: 2, Separation: 0.001})
	assert.True(t, m.Has(skycat.SourceOwnCatalog))
	assert.False(t, m.Has(skycat.SourceUCAC4))

	own, ok := m.OwnCatalog()
	require.True(t, ok)
	assert.Equal(t, "V0001", own.Name)

	_, ok = m.UCAC4()
	assert.False(t, ok)

	m.Set(skycat.UCAC4Match{ID: "UCAC4 001-000003", Mag: 10.986})
	u, ok := m.UCAC4()
	require.True(t, ok)
	assert.Equal(t, skycat.CatalogID("UCAC4 001-000003"), u.ID)
	assert.Len(t, m, 2)

	var empty skycat.Matches
	assert.False(t, empty.Has(skycat.SourceUCAC4))
	_, ok = empty.UCAC4()
	assert.False(t, ok)
}

func TestSource_String(t *testing.T) {
	assert.Equal(t, "UCAC4", skycat.SourceUCAC4.String())
	assert.Equal(t, "OWN", skycat.SourceOwnCatalog.String())
	assert.Equal(t, "Source(9)", skycat.Source(9).String())
}

func TestAugment(t *testing.T) {
	cat := openSmall(t, smallCatalog(t, nil))

	stars := []*skycat.StarDescription{
		{LocalID: 1, RA: 25.005, Dec: 5.0},
		{LocalID: 2, RA: 120, Dec: 60},
		{LocalID: 3, RA: 25.05, Dec: 5.0},
		{LocalID: 4, RA: 10, Dec: 100},
		{LocalID: 5, RA: 15.0, Dec: 5.002, Matches: skycat.Matches{
			skycat.SourceOwnCatalog: skycat.OwnCatalogMatch{Name: "mine"},
		}},
	}

	matched, err := cat.Augment(context.Background(), stars, 0)
	require.ErrorIs(t, err, skycat.ErrOutOfRange)
	assert.Equal(t, 2, matched)

	u, ok := stars[0].Matches.UCAC4()
	require.True(t, ok)
	assert.Equal(t, skycat.CatalogID("TEST 010-000002"), u.ID)
	assert.InDelta(t, 11.5, u.Mag, 1e-9)
	assert.InDelta(t, 0.005, u.Separation, 1e-4)

	assert.False(t, stars[1].Matches.Has(skycat.SourceUCAC4))
	assert.False(t, stars[2].Matches.Has(skycat.SourceUCAC4), "0.05° is beyond the default radius")
	assert.Nil(t, stars[3].Matches)

	assert.True(t, stars[4].Matches.Has(skycat.SourceUCAC4))
	assert.True(t, stars[4].Matches.Has(skycat.SourceOwnCatalog))

	matched, err = cat.Augment(context.Background(), stars[2:3], 0.1)
	require.NoError(t, err)
	assert.Equal(t, 1, matched)
}

func TestAugment_NearPole(t *testing.T) {
	// At dec 89.98 the 20° of RA between the two points span two buckets but
	// only about 0.007° of sky.
	cat := openSmall(t, smallCatalog(t, func(b *testutil.CatalogBuilder) {
		b.Add(15, 89.98, 8.0, 0.1)
	}))

	stars := []*skycat.StarDescription{{LocalID: 1, RA: 35, Dec: 89.98}}
	matched, err := cat.Augment(context.Background(), stars, 0.01)
	require.NoError(t, err)
	assert.Equal(t, 1, matched)

	u, ok := stars[0].Matches.UCAC4()
	require.True(t, ok)
	assert.InDelta(t, 89.98, u.Dec, 1e-6)
	assert.InDelta(t, 0.00695, u.Separation, 1e-4)
}
