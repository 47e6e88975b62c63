package model

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalidIdentifier is returned when a catalog identifier does not parse.
var ErrInvalidIdentifier = errors.New("invalid catalog identifier")

const (
	zoneDigits   = 3
	numberDigits = 6

	// MaxZone is the largest zone expressible in an identifier.
	MaxZone = 999
	// MaxRunningNumber is the largest running number expressible in an identifier.
	MaxRunningNumber = 999_999
)

// CatalogID is the display identifier of a catalog star:
// "<PREFIX> <zone:03d>-<running_number:06d>".
type CatalogID string

// FormatID encodes (zone, running number) as an identifier.
func FormatID(prefix string, zone ZoneID, rn RunningNumber) CatalogID {
	return CatalogID(fmt.Sprintf("%s %03d-%06d", prefix, zone, rn))
}

// ParseID decodes an identifier into (zone, running number).
//
// The zero padding is part of the format: "UCAC4 1-3" is rejected so that
// FormatID(ParseID(s)) == s holds for every accepted s.
func ParseID(prefix string, id CatalogID) (ZoneID, RunningNumber, error) {
	s := string(id)
	rest, ok := strings.CutPrefix(s, prefix+" ")
	if !ok {
		return 0, 0, fmt.Errorf("%w: %q: expected prefix %q", ErrInvalidIdentifier, s, prefix)
	}

	zonePart, numberPart, ok := strings.Cut(rest, "-")
	if !ok {
		return 0, 0, fmt.Errorf("%w: %q: missing '-'", ErrInvalidIdentifier, s)
	}
	if len(zonePart) != zoneDigits || len(numberPart) != numberDigits {
		return 0, 0, fmt.Errorf("%w: %q: expected NNN-NNNNNN", ErrInvalidIdentifier, s)
	}

	zone, err := parseDigits(zonePart)
	if err != nil || zone == 0 {
		return 0, 0, fmt.Errorf("%w: %q: bad zone", ErrInvalidIdentifier, s)
	}
	rn, err := parseDigits(numberPart)
	if err != nil || rn == 0 {
		return 0, 0, fmt.Errorf("%w: %q: bad running number", ErrInvalidIdentifier, s)
	}

	return ZoneID(zone), RunningNumber(rn), nil
}

// parseDigits accepts ASCII digits only (no sign, no spaces).
func parseDigits(s string) (uint64, error) {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return 0, strconv.ErrSyntax
		}
	}
	return strconv.ParseUint(s, 10, 32)
}

// String implements fmt.Stringer.
func (id CatalogID) String() string {
	return string(id)
}
