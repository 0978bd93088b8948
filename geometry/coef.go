// Package geometry reconstructs plume altitude and wind direction from
// one or two scans given instrument placement and, optionally, assumed
// wind (spec.md §4.4).
package geometry

import (
	"math"

	ppp "github.com/novacppp/novacppp"
)

// wgs84Coefficients are the empirical meters-per-degree scale-factor
// coefficients for latitude and longitude at a given latitude, the same
// WGS84 series the teacher's geo-coefficients use for beam geolocation
// (only the coefficient table is reused here; the plume/wind-direction
// solve below has no sonar analogue).
type wgs84Coefficients struct {
	a, b, c, d float64 // latitude scale factor terms
	e, f, g    float64 // longitude scale factor terms
}

func newWGS84Coefficients() wgs84Coefficients {
	return wgs84Coefficients{
		a: 111132.92, b: 559.82, c: 1.175, d: 0.0023,
		e: 111412.84, f: 93.5, g: 0.118,
	}
}

// metersPerDegree returns the local (latitude, longitude) scale factors
// in meters per degree at latDeg.
func (w wgs84Coefficients) metersPerDegree(latDeg float64) (latSF, lonSF float64) {
	latRad := latDeg * math.Pi / 180

	latSF = w.a - w.b*math.Cos(2*latRad) + w.c*math.Cos(4*latRad) - w.d*math.Cos(6*latRad)
	lonSF = w.e*math.Cos(latRad) - w.f*math.Cos(3*latRad) + w.g*math.Cos(5*latRad)
	return latSF, lonSF
}

// Vector3 is a point or direction in the local east-north-up frame a
// two-scan solve works in, origin at the lower-altitude instrument.
type Vector3 struct {
	X, Y, Z float64 // east, north, up (meters)
}

// Sub returns v - o.
func (v Vector3) Sub(o Vector3) Vector3 { return Vector3{v.X - o.X, v.Y - o.Y, v.Z - o.Z} }

// Add returns v + o.
func (v Vector3) Add(o Vector3) Vector3 { return Vector3{v.X + o.X, v.Y + o.Y, v.Z + o.Z} }

// Scale returns v scaled by s.
func (v Vector3) Scale(s float64) Vector3 { return Vector3{v.X * s, v.Y * s, v.Z * s} }

// Dot returns the dot product of v and o.
func (v Vector3) Dot(o Vector3) float64 { return v.X*o.X + v.Y*o.Y + v.Z*o.Z }

// Norm returns the Euclidean length of v.
func (v Vector3) Norm() float64 { return math.Sqrt(v.Dot(v)) }

// localFrame converts geographic coordinates to the local east-north-up
// frame centered at origin, using the WGS84 scale-factor approximation
// (valid at the kilometer scale spec.md §4.4 geometry pairs operate at).
type localFrame struct {
	origin       ppp.InstrumentLocation
	latSF, lonSF float64
}

// newLocalFrame builds a local frame centered at origin.
func newLocalFrame(origin ppp.InstrumentLocation) localFrame {
	latSF, lonSF := newWGS84Coefficients().metersPerDegree(origin.Latitude)
	return localFrame{origin: origin, latSF: latSF, lonSF: lonSF}
}

// point converts a (latitude, longitude, altitude) location to this
// frame's east-north-up coordinates.
func (f localFrame) point(lat, lon, alt float64) Vector3 {
	return Vector3{
		X: (lon - f.origin.Longitude) * f.lonSF,
		Y: (lat - f.origin.Latitude) * f.latSF,
		Z: alt - f.origin.Altitude,
	}
}

// location converts an InstrumentLocation's position to this frame.
func (f localFrame) location(loc ppp.InstrumentLocation) Vector3 {
	return f.point(loc.Latitude, loc.Longitude, loc.Altitude)
}
