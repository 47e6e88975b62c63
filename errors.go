package skycat

import (
	"errors"
	"fmt"
	"strings"

	"github.com/hupe1980/skycat/internal/engine"
	"github.com/hupe1980/skycat/internal/record"
	"github.com/hupe1980/skycat/internal/store"
	"github.com/hupe1980/skycat/internal/zone"
	"github.com/hupe1980/skycat/manifest"
	"github.com/hupe1980/skycat/model"
)

var (
	// ErrOutOfRange is returned when an angle or index lies outside its domain.
	ErrOutOfRange = errors.New("out of range")

	// ErrInvalidIdentifier is returned when a catalog identifier does not parse.
	ErrInvalidIdentifier = errors.New("invalid identifier")

	// ErrMissingZone is returned by Open when a zone data or index file is absent.
	ErrMissingZone = errors.New("missing zone")

	// ErrCorruptIndex is returned when a zone index does not match the catalog layout.
	ErrCorruptIndex = errors.New("corrupt index")

	// ErrCorruptZone is returned when a zone data file does not match the catalog layout.
	ErrCorruptZone = errors.New("corrupt zone")

	// ErrTruncatedRecord is returned when a record is shorter than the layout requires.
	ErrTruncatedRecord = errors.New("truncated record")

	// ErrInvalidField is returned when a record field holds an impossible value.
	ErrInvalidField = errors.New("invalid field")

	// ErrNotFound is returned when a well-formed identifier names no star.
	ErrNotFound = errors.New("not found")

	// ErrInvalidArgument is returned for unusable query parameters.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrInvalidManifest is returned when catalog.toml cannot be used.
	ErrInvalidManifest = errors.New("invalid manifest")

	// ErrClosed is returned when the catalog has been closed.
	ErrClosed = errors.New("catalog closed")
)

// ZoneError reports a failure tied to one zone file. It is returned wrapped
// by the matching sentinel, so both errors.Is and errors.As apply.
type ZoneError = store.ZoneError

var translations = []struct {
	internal error
	public   error
}{
	{engine.ErrNotFound, ErrNotFound},
	{zone.ErrOutOfRange, ErrOutOfRange},
	{store.ErrOutOfRange, ErrOutOfRange},
	{engine.ErrInvalidArgument, ErrInvalidArgument},
	{model.ErrInvalidIdentifier, ErrInvalidIdentifier},
	{store.ErrMissingZone, ErrMissingZone},
	{store.ErrCorruptIndex, ErrCorruptIndex},
	{store.ErrCorruptZone, ErrCorruptZone},
	{record.ErrTruncatedRecord, ErrTruncatedRecord},
	{record.ErrInvalidField, ErrInvalidField},
	{manifest.ErrInvalidManifest, ErrInvalidManifest},
	{store.ErrClosed, ErrClosed},
}

// translateError wraps err with every public sentinel it corresponds to, so
// callers never need to import internal packages to classify a failure.
func translateError(err error) error {
	if err == nil {
		return nil
	}

	var matched []any
	for _, t := range translations {
		if !errors.Is(err, t.internal) || containsErr(matched, t.public) {
			continue
		}
		matched = append(matched, t.public)
	}
	if len(matched) == 0 {
		return err
	}
	return fmt.Errorf(strings.Repeat("%w: ", len(matched))+"%w", append(matched, err)...)
}

func containsErr(errs []any, target error) bool {
	for _, e := range errs {
		if e == target {
			return true
		}
	}
	return false
}
