package skycat

import (
	"context"
	"fmt"
)

// DefaultAugmentRadius is the largest separation, in degrees, at which
// Augment attaches a catalog match.
const DefaultAugmentRadius = 0.01

// Source identifies the catalog a match comes from.
type Source uint8

const (
	// SourceUCAC4 marks matches against the zone catalog.
	SourceUCAC4 Source = iota + 1
	// SourceOwnCatalog marks matches against a caller-maintained list of
	// known stars.
	SourceOwnCatalog
)

// String returns the conventional tag of the source.
func (s Source) String() string {
	switch s {
	case SourceUCAC4:
		return "UCAC4"
	case SourceOwnCatalog:
		return "OWN"
	default:
		return fmt.Sprintf("Source(%d)", uint8(s))
	}
}

// Match is a catalog match attached to a star description. The set of
// implementations is closed: UCAC4Match and OwnCatalogMatch.
type Match interface {
	Source() Source
	match()
}

// UCAC4Match is the nearest zone-catalog star of a described star.
type UCAC4Match struct {
	ID         CatalogID
	RA         float64
	Dec        float64
	Mag        float64
	MagErr     float64
	Separation float64
}

// Source implements Match.
func (UCAC4Match) Source() Source { return SourceUCAC4 }
func (UCAC4Match) match()         {}

// OwnCatalogMatch links a described star to an entry of the caller's own
// list of stars.
type OwnCatalogMatch struct {
	Name       string
	RA         float64
	Dec        float64
	Separation float64
}

// Source implements Match.
func (OwnCatalogMatch) Source() Source { return SourceOwnCatalog }
func (OwnCatalogMatch) match()         {}

// Matches holds at most one match per source.
type Matches map[Source]Match

// Has reports whether a match from src is present.
func (m Matches) Has(src Source) bool {
	_, ok := m[src]
	return ok
}

// Set stores mt under its source, replacing any previous match.
func (m Matches) Set(mt Match) {
	m[mt.Source()] = mt
}

// UCAC4 returns the zone-catalog match, if any.
func (m Matches) UCAC4() (UCAC4Match, bool) {
	mt, ok := m[SourceUCAC4].(UCAC4Match)
	return mt, ok
}

// OwnCatalog returns the own-catalog match, if any.
func (m Matches) OwnCatalog() (OwnCatalogMatch, bool) {
	mt, ok := m[SourceOwnCatalog].(OwnCatalogMatch)
	return mt, ok
}

// StarDescription is a star measured by the caller, positioned on the sky,
// that catalog matches are attached to.
type StarDescription struct {
	LocalID int
	RA      float64
	Dec     float64
	Matches Matches
}

// Augment attaches a UCAC4Match to every star whose nearest catalog star lies
// within radius degrees (DefaultAugmentRadius if radius <= 0). Stars are
// resolved concurrently; the first per-star error is returned after all stars
// have been processed, and the stars that did resolve keep their matches.
// Every cell that can hold a star within radius is searched, however narrow
// the RA buckets are near the poles.
// It returns the number of stars that received a match.
func (c *Catalog) Augment(ctx context.Context, stars []*StarDescription, radius float64) (int, error) {
	if radius <= 0 {
		radius = DefaultAugmentRadius
	}

	points := make([]Point, len(stars))
	for i, s := range stars {
		points[i] = Point{RA: s.RA, Dec: s.Dec}
	}

	var (
		matched  int
		firstErr error
	)
	for i, r := range c.NearestMany(ctx, points, 1, c.engine.MaxRing(), WithWrapRA(), WithMaxSeparation(radius)) {
		if r.Err != nil {
			if firstErr == nil {
				firstErr = fmt.Errorf("star %d: %w", stars[i].LocalID, r.Err)
			}
			continue
		}
		if len(r.Neighbors) == 0 {
			continue
		}
		n := r.Neighbors[0]
		if stars[i].Matches == nil {
			stars[i].Matches = make(Matches)
		}
		stars[i].Matches.Set(UCAC4Match{
			ID:         n.Star.ID,
			RA:         n.Star.RA,
			Dec:        n.Star.Dec,
			Mag:        n.Star.Mag,
			MagErr:     n.Star.MagErr,
			Separation: n.Separation,
		})
		matched++
	}

	c.logger.LogAugment(ctx, len(stars), matched, firstErr)
	return matched, firstErr
}
