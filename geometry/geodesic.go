package geometry

import (
	"math"

	"github.com/soniakeys/unit"
)

// earthRadius is the mean spherical Earth radius used for the
// short-baseline (instrument-to-instrument, instrument-to-vent) distance
// and bearing calculations below; no pack example repo ships a
// geodesy/great-circle library, so these are hand-rolled over stdlib
// math (see DESIGN.md).
const earthRadius = 6371000.0

func deg2rad(d float64) float64 { return d * math.Pi / 180 }
func rad2deg(r float64) float64 { return r * 180 / math.Pi }

// gpsDistance returns the great-circle distance in meters between two
// (lat, lon) points in degrees.
func gpsDistance(lat1, lon1, lat2, lon2 float64) float64 {
	phi1, phi2 := deg2rad(lat1), deg2rad(lat2)
	dPhi := deg2rad(lat2 - lat1)
	dLambda := deg2rad(lon2 - lon1)

	a := math.Sin(dPhi/2)*math.Sin(dPhi/2) +
		math.Cos(phi1)*math.Cos(phi2)*math.Sin(dLambda/2)*math.Sin(dLambda/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadius * c
}

// Distance returns the great-circle distance in meters between two
// (lat, lon) points in degrees, exported for the orchestrator's pairing
// sweep (spec.md §4.6: "lie within 200-10000 m of each other").
func Distance(lat1, lon1, lat2, lon2 float64) float64 {
	return gpsDistance(lat1, lon1, lat2, lon2)
}

// gpsBearing returns the initial forward bearing in degrees from north,
// clockwise, of the great-circle path from (lat1, lon1) to (lat2, lon2).
func gpsBearing(lat1, lon1, lat2, lon2 float64) float64 {
	phi1, phi2 := deg2rad(lat1), deg2rad(lat2)
	dLambda := deg2rad(lon2 - lon1)

	y := math.Sin(dLambda) * math.Cos(phi2)
	x := math.Cos(phi1)*math.Sin(phi2) - math.Sin(phi1)*math.Cos(phi2)*math.Cos(dLambda)
	theta := math.Atan2(y, x)
	return unit.PMod(rad2deg(theta), 360)
}

// destination returns the (lat, lon) reached by travelling distance
// meters from (lat, lon) along bearingDeg (degrees from north, clockwise).
func destination(lat, lon, distance, bearingDeg float64) (destLat, destLon float64) {
	phi1 := deg2rad(lat)
	lambda1 := deg2rad(lon)
	theta := deg2rad(bearingDeg)
	delta := distance / earthRadius

	phi2 := math.Asin(math.Sin(phi1)*math.Cos(delta) + math.Cos(phi1)*math.Sin(delta)*math.Cos(theta))
	lambda2 := lambda1 + math.Atan2(
		math.Sin(theta)*math.Sin(delta)*math.Cos(phi1),
		math.Cos(delta)-math.Sin(phi1)*math.Sin(phi2),
	)
	return rad2deg(phi2), rad2deg(lambda2)
}

// NormalizeLatitude clamps an out-of-range latitude read off a wind XML
// record (spec.md §6, §8 boundary behavior: 95 -> 5). Ported directly
// from XMLWindFileReader's `latitude > 90.0` check; it only folds
// values above +90 and leaves everything else, including negative
// overflow, untouched — preserved as-is rather than generalized into a
// symmetric wrap. Exported so winddb and config apply the same clamp to
// values read off disk.
func NormalizeLatitude(lat float64) float64 {
	if lat > 90.0 {
		return lat - math.Floor(lat/90.0)*90.0
	}
	return lat
}

// NormalizeLongitude clamps an out-of-range longitude the same way
// XMLWindFileReader does for its `longitude > 180.0` check.
func NormalizeLongitude(lon float64) float64 {
	if lon > 180.0 {
		return lon - (1+math.Floor(lon/360.0))*360.0
	}
	return lon
}

// wrapAngleDifference folds the absolute difference of two bearings into
// [0, 180] (spec.md §4.4 "wrapped into [0, 180deg]").
func wrapAngleDifference(a, b float64) float64 {
	d := math.Abs(a - b)
	if d > 180 {
		d = 360 - d
	}
	return d
}
