package geometry

import (
	"math"

	ppp "github.com/novacppp/novacppp"
)

// sightVector returns the unit line-of-sight direction of a scan angle
// (and, for a two-axis instrument, azimuth) in the instrument's own
// frame, before the compass rotation into the common frame (spec.md
// §4.4 "Line-of-sight math"). coneHalfAngle and tilt are in degrees; a
// flat scanner (cone half-angle within 0.5 degrees of 90) degenerates to
// (0, tan alpha, 1) regardless of tilt, per spec.
func sightVector(loc *ppp.InstrumentLocation, scanAngleDeg float64) Vector3 {
	alpha := scanAngleDeg * math.Pi / 180

	if loc.IsFlat() {
		return Vector3{X: 0, Y: math.Tan(alpha), Z: 1}
	}

	theta := loc.ConeAngle * math.Pi / 180
	tau := loc.Tilt * math.Pi / 180

	cosA, sinA := math.Cos(alpha), math.Sin(alpha)
	cosT, sinT := math.Cos(tau), math.Sin(tau)
	cotTheta := math.Cos(theta) / math.Sin(theta)

	d := cosA*cosT + sinT*cotTheta
	if d == 0 {
		d = 1e-12
	}

	return Vector3{
		X: (cotTheta - cosA*sinT) / d,
		Y: sinA / d,
		Z: 1,
	}
}

// rotateByCompass rotates v (instrument frame, +Y "forward") into the
// common east-north-up frame by the instrument's compass bearing
// (degrees clockwise from north).
func rotateByCompass(v Vector3, compassDeg float64) Vector3 {
	c := compassDeg * math.Pi / 180
	cosC, sinC := math.Cos(c), math.Sin(c)
	return Vector3{
		X: v.X*cosC + v.Y*sinC,
		Y: -v.X*sinC + v.Y*cosC,
		Z: v.Z,
	}
}

// sightLineCommonFrame returns the unit sight-line direction of loc's
// scan angle in the common east-north-up frame.
func sightLineCommonFrame(loc *ppp.InstrumentLocation, scanAngleDeg float64) Vector3 {
	v := rotateByCompass(sightVector(loc, scanAngleDeg), loc.Compass)
	n := v.Norm()
	if n == 0 {
		return v
	}
	return v.Scale(1 / n)
}

// AirMassFactor returns A(alpha, theta, tau) of spec.md §4.5: the
// geometric path-length multiplier a conical (or two-axis) scanner's
// line of sight accumulates relative to a vertical column, derived from
// the same line-of-sight construction as sightVector. Flat scanners do
// not use this factor; Heidelberg uses 1/cos(alpha), computed directly
// by the flux package instead of through this general form.
func AirMassFactor(loc *ppp.InstrumentLocation, scanAngleDeg float64) float64 {
	v := sightVector(loc, scanAngleDeg)
	if v.Z == 0 {
		return math.Inf(1)
	}
	return v.Norm() / math.Abs(v.Z)
}

// ConeGroundOffset returns the (x, y) ground-plane projection of a
// conical scanner's sight line at scanAngleDeg, height meters above the
// instrument, in the instrument's own azimuthal frame before any
// compass rotation — the x[i], y[i] buffers of the original conical
// flux formula (spec.md §4.5 "projected intersections"). Unlike
// GroundProjection this is not rotated into the common compass frame:
// the conical/Heidelberg flux integrators compare their local-bearing
// wind factor against this same local frame.
func ConeGroundOffset(loc *ppp.InstrumentLocation, scanAngleDeg, height float64) (x, y float64) {
	v := sightVector(loc, scanAngleDeg)
	return v.X * height, v.Y * height
}

// GroundProjection returns the (east, north) offset, in meters in the
// common compass-rotated frame, of the point a height meters above the
// instrument where scanAngleDeg's sight line would cross it. Used both
// by windDirectionFor and by the flux package's conical/Heidelberg
// integrators to build the scan-swept ground path spec.md §4.5
// describes (the "projected intersections").
func GroundProjection(loc *ppp.InstrumentLocation, scanAngleDeg, height float64) (x, y float64) {
	v := sightVector(loc, scanAngleDeg)
	if v.Z == 0 {
		return math.NaN(), math.NaN()
	}
	scale := height / v.Z
	ground := rotateByCompass(Vector3{X: v.X * scale, Y: v.Y * scale, Z: 0}, loc.Compass)
	return ground.X, ground.Y
}
