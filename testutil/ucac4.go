package testutil

import (
	"context"

	"github.com/hupe1980/skycat/blobstore"
	"github.com/hupe1980/skycat/codec"
	"github.com/hupe1980/skycat/manifest"
	"github.com/hupe1980/skycat/model"
)

// Reference is a known star of the UCAC4 fixture.
type Reference struct {
	ID  model.CatalogID
	RA  float64
	Dec float64
	Mag float64
}

// UCAC4 reference stars, reproduced with the exact identifiers and
// positions of the real catalog.
var (
	// PolarStar sits in the first zone; its raw RA field is 18290451 mas.
	PolarStar = Reference{
		ID:  "UCAC4 001-000003",
		RA:  codec.ToDegrees(18290451),
		Dec: codec.ToDegrees(682045 - codec.NativeHalfCircle/2),
		Mag: 10.986,
	}
	// SouthernStarA and SouthernStarB are neighbours across a zone boundary.
	SouthernStarA = Reference{
		ID:  "UCAC4 231-154752",
		RA:  271.2347344444444,
		Dec: -43.84581611111111,
		Mag: 12.107,
	}
	SouthernStarB = Reference{
		ID:  "UCAC4 232-147677",
		RA:  271.2807819444444,
		Dec: -43.77729194444444,
		Mag: 12.314,
	}
)

// BuildUCAC4 writes a full 900-zone UCAC4-layout catalog containing the
// reference stars at their real running numbers. Filler stars far away in
// RA take the preceding running numbers.
func BuildUCAC4(ctx context.Context, p blobstore.Putter) ([]model.StarEntry, error) {
	b := NewCatalogBuilder(manifest.Default())

	b.Fill(1, 2, 0, 5)
	b.Add(PolarStar.RA, PolarStar.Dec, PolarStar.Mag, 0.02)

	b.Fill(231, 154_751, 0, 270)
	b.Add(SouthernStarA.RA, SouthernStarA.Dec, SouthernStarA.Mag, 0.03)
	b.Add(271.30, -43.90, 14.2, 0.05) // fainter neighbour, 0.07° away

	b.Fill(232, 147_676, 0, 270)
	b.Add(SouthernStarB.RA, SouthernStarB.Dec, SouthernStarB.Mag, 0.04)
	b.Add(271.36, -43.70, 15.1, 0.06)

	return b.Build(ctx, p)
}
