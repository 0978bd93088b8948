package ppp

import "time"

// InstrumentLocation is the validity-interval-scoped placement and
// geometric configuration of one instrument (spec.md §3). For a given
// Serial, validity intervals must not overlap; that invariant is enforced
// by config.LocationTable, not by this type.
type InstrumentLocation struct {
	Serial string
	From   time.Time
	To     time.Time // zero value means "open-ended"

	Latitude, Longitude, Altitude float64

	// Compass is the scanner's reference-direction bearing, degrees
	// clockwise from north.
	Compass float64

	// ConeAngle is the cone half-angle theta; 90 denotes a flat scanner,
	// <90 a conical scanner.
	ConeAngle float64

	// Tilt is the deviation of the scanner's rotation axis from vertical.
	Tilt float64

	Type InstrumentType

	Volcano string
}

// IsFlat reports whether the scanner is a flat (non-conical) scanner,
// i.e. its cone half-angle is (within tolerance) 90 degrees.
func (l *InstrumentLocation) IsFlat() bool {
	const tol = 0.5
	return l.ConeAngle > 90-tol && l.ConeAngle < 90+tol
}

// Covers reports whether t falls within [From, To), with To==zero meaning
// unbounded.
func (l *InstrumentLocation) Covers(t time.Time) bool {
	if t.Before(l.From) {
		return false
	}
	if !l.To.IsZero() && !t.Before(l.To) {
		return false
	}
	return true
}
