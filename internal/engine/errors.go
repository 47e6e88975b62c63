package engine

import "errors"

var (
	// ErrInvalidArgument is returned for unusable query parameters (maxResults < 1, negative radius).
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrNotFound is returned when an identifier parses but names no record.
	ErrNotFound = errors.New("not found")
)
