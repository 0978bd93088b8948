package ppp

import "math"

// PlumeInScanProperty is the plume geometry extracted from one scan's
// column-vs-angle series by the plume analyzer (spec.md §3, §4.3). A scan
// that does not see the plume carries the zero value: Centre is NaN.
type PlumeInScanProperty struct {
	// Centre is the plume-centre viewing angle. CentreAzimuth is only
	// meaningful for Heidelberg (two-axis) instruments.
	Centre        float64
	CentreAzimuth float64
	CentreError   float64

	LowEdge, HighEdge float64

	// Completeness is the fraction of the plume captured within the
	// scan's angular range, in [0, 1].
	Completeness float64

	Offset float64
}

// NoPlume returns the sentinel "plume not found" value (spec.md §3).
func NoPlume() PlumeInScanProperty {
	return PlumeInScanProperty{Centre: math.NaN(), CentreAzimuth: math.NaN()}
}

// Found reports whether a plume was located in the scan.
func (p PlumeInScanProperty) Found() bool {
	return !math.IsNaN(p.Centre)
}
