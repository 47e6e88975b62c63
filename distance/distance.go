package distance

import "math"

const (
	degToRad = math.Pi / 180
	radToDeg = 180 / math.Pi
)

// Separation returns the great-circle distance in degrees between two sky
// positions given as (ra, dec) in degrees.
func Separation(ra1, dec1, ra2, dec2 float64) float64 {
	phi1 := dec1 * degToRad
	phi2 := dec2 * degToRad
	dPhi := (dec2 - dec1) * degToRad
	dLambda := (ra2 - ra1) * degToRad

	sinPhi := math.Sin(dPhi / 2)
	sinLambda := math.Sin(dLambda / 2)
	h := sinPhi*sinPhi + math.Cos(phi1)*math.Cos(phi2)*sinLambda*sinLambda
	if h > 1 {
		h = 1
	}
	return 2 * math.Asin(math.Sqrt(h)) * radToDeg
}

// ToMeridian returns the angular distance in degrees from (ra, dec) to the
// great circle through the poles at right ascension meridianRA.
//
// Only the half of the great circle on the same side as meridianRA is
// considered; if the point is more than 90 degrees of RA away the distance to
// the nearest pole-crossing is returned instead.
func ToMeridian(ra, dec, meridianRA float64) float64 {
	dRA := math.Abs(NormalizeRA(ra-meridianRA+180) - 180)
	if dRA >= 90 {
		return 90 - math.Abs(dec)
	}
	s := math.Sin(dRA*degToRad) * math.Cos(dec*degToRad)
	if s > 1 {
		s = 1
	}
	return math.Asin(s) * radToDeg
}

// NormalizeRA wraps a right ascension into [0, 360).
func NormalizeRA(ra float64) float64 {
	ra = math.Mod(ra, 360)
	if ra < 0 {
		ra += 360
	}
	return ra
}
