// Package codec converts the catalog's fixed-point integer fields into
// floating point values.
//
// Angles are stored in milliarcseconds (the native angle unit) and magnitudes
// in fixed-point units whose scale is declared by the catalog manifest. The
// conversions here are pure and never fail: range validation is left to the
// caller (see internal/zone and internal/record).
package codec

import "math"

// NativePerDegree is the number of native angle units (milliarcseconds) in
// one degree.
const NativePerDegree = 3_600_000

// NativeFullCircle is 360 degrees in native units.
const NativeFullCircle = 360 * NativePerDegree

// NativeHalfCircle is 180 degrees in native units (the declination span).
const NativeHalfCircle = 180 * NativePerDegree

// ToDegrees converts a native angle to degrees.
func ToDegrees(native int64) float64 {
	return float64(native) / NativePerDegree
}

// FromDegrees converts degrees to the nearest native angle unit.
func FromDegrees(deg float64) int64 {
	return int64(math.Round(deg * NativePerDegree))
}

// MagToFloat scales a fixed-point magnitude field.
// A raw value equal to sentinel yields NaN ("no measurement").
func MagToFloat(raw int64, scale float64, sentinel int64) float64 {
	if raw == sentinel {
		return math.NaN()
	}
	return float64(raw) * scale
}

// MagFromFloat is the inverse of MagToFloat. NaN maps to the sentinel.
func MagFromFloat(mag float64, scale float64, sentinel int64) int64 {
	if math.IsNaN(mag) {
		return sentinel
	}
	return int64(math.Round(mag / scale))
}
