package ppp

import "time"

// Quality is the aggregate green/yellow/red grade of a FluxResult
// (spec.md §4.5).
type Quality int

const (
	Green Quality = iota
	Yellow
	Red
)

func (q Quality) String() string {
	switch q {
	case Green:
		return "g"
	case Yellow:
		return "y"
	case Red:
		return "r"
	default:
		return "?"
	}
}

// Letter is an alias of String kept for readability at call sites that
// write the flux-log "quality letter" column (spec.md §6).
func (q Quality) Letter() string { return q.String() }

// Worse returns the worse (higher-numbered) of q and other, implementing
// the "overall grade equals the worst sub-grade" rule of spec.md §4.5.
func (q Quality) Worse(other Quality) Quality {
	if other > q {
		return other
	}
	return q
}

// FluxResult is the outcome of integrating one scan's column series into
// a mass flux (spec.md §3, §4.5).
type FluxResult struct {
	Value float64 // kg/s

	WindErrorComponent        float64
	PlumeHeightErrorComponent float64

	Quality Quality

	Wind        WindField
	PlumeHeight PlumeHeight

	StartTime, StopTime time.Time
	Serial              string
	Type                InstrumentType

	Compass, ConeAngle, Tilt float64
	Completeness             float64
	PlumeCentre              float64
	PlumeCentreAzimuth       float64
	Offset                   float64
	NumGoodSpectra           int
}
