// Package distance provides angular distance calculations on the celestial
// sphere.
//
// All inputs and outputs are in degrees. Separation uses the haversine form of
// the great-circle distance, which stays accurate for the sub-arcsecond
// separations typical of catalog cross-matching (the spherical law of cosines
// loses precision there).
//
// # Usage
//
//	sep := distance.Separation(ra1, dec1, ra2, dec2)
//	edge := distance.ToMeridian(ra, dec, 90.25)
package distance
