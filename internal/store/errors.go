package store

import (
	"errors"
	"fmt"

	"github.com/hupe1980/skycat/model"
)

var (
	// ErrMissingZone is returned by Open when a zone data or index file is absent.
	ErrMissingZone = errors.New("store: missing zone file")
	// ErrCorruptIndex is returned when a zone index has the wrong size or
	// points outside the zone data.
	ErrCorruptIndex = errors.New("store: corrupt zone index")
	// ErrCorruptZone is returned when a zone data file is not a whole number of
	// records or holds more records than an identifier can number.
	ErrCorruptZone = errors.New("store: corrupt zone data")
	// ErrOutOfRange is returned for zones or running numbers that do not exist.
	ErrOutOfRange = errors.New("store: out of range")
	// ErrClosed is returned after Close.
	ErrClosed = errors.New("store: closed")
)

// ZoneError attaches the zone and file to a failure.
type ZoneError struct {
	Zone model.ZoneID
	File string
	Err  error
}

func (e *ZoneError) Error() string {
	if e.File == "" {
		return fmt.Sprintf("zone %03d: %v", e.Zone, e.Err)
	}
	return fmt.Sprintf("zone %03d (%s): %v", e.Zone, e.File, e.Err)
}

func (e *ZoneError) Unwrap() error {
	return e.Err
}
