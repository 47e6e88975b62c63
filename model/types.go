package model

import (
	"fmt"
)

// ZoneID is the 1-based declination zone number.
type ZoneID uint32

// BucketID is the 1-based right-ascension bucket number within a zone.
type BucketID uint32

// RunningNumber is the 1-based position of a record within its zone file.
type RunningNumber uint32

// Address identifies one cell of the two-level spatial index.
type Address struct {
	Zone   ZoneID
	Bucket BucketID
}

// String returns a string representation of the Address.
func (a Address) String() string {
	return fmt.Sprintf("Cell(%d:%d)", a.Zone, a.Bucket)
}

// StarEntry is a decoded catalog star.
//
// Mag and MagErr are NaN when the catalog carries its "no measurement"
// sentinel for the field.
type StarEntry struct {
	ID     CatalogID
	Zone   ZoneID
	Number RunningNumber
	RA     float64 // degrees
	Dec    float64 // degrees
	Mag    float64
	MagErr float64
}

// String returns a compact, human readable description.
func (s StarEntry) String() string {
	return fmt.Sprintf("%s (%.8f, %.8f) mag=%.3f±%.3f", s.ID, s.RA, s.Dec, s.Mag, s.MagErr)
}

// Less orders entries by ascending identifier.
func (s StarEntry) Less(other StarEntry) bool {
	if s.Zone != other.Zone {
		return s.Zone < other.Zone
	}
	return s.Number < other.Number
}

// Neighbor is a candidate returned by a positional query.
type Neighbor struct {
	Star StarEntry
	// Separation is the great-circle distance from the query point in degrees.
	Separation float64
}

// Point is a sky position in degrees.
type Point struct {
	RA  float64
	Dec float64
}
