// Package ppp holds the shared domain model for the NovacPPP-Go post
// processing pipeline: spectra, references, fit windows, evaluation and
// scan results, instrument/volcano metadata, wind and plume-height records,
// and the geometry/flux outputs derived from them. Subpackages (doas, scan,
// geometry, flux, pipeline, ...) operate on these types; none of them is
// mutated after the point at which it is handed to a worker.
package ppp

import "time"

// InstrumentType distinguishes the two scanner families the pipeline
// supports. A Gothenburg scanner sweeps a single elevation angle; a
// Heidelberg scanner additionally steps azimuth.
type InstrumentType int

const (
	Gothenburg InstrumentType = iota
	Heidelberg
)

func (t InstrumentType) String() string {
	switch t {
	case Gothenburg:
		return "gothenburg"
	case Heidelberg:
		return "heidelberg"
	default:
		return "unknown"
	}
}

// Spectrum is a fixed-length vector of channel intensities plus the
// acquisition metadata spec.md §3 requires. All spectra belonging to one
// scan share Serial, Channel and StartChannel; Length must match the fit
// window the spectrum is evaluated against.
type Spectrum struct {
	Intensities []float64

	StartTime time.Time
	StopTime  time.Time
	Exposure  time.Duration
	NumCoAdds int

	// Angle is the elevation (Gothenburg and Heidelberg) scan angle in
	// degrees. Azimuth is only meaningful for Heidelberg instruments.
	Angle   float64
	Azimuth float64
	HasAzimuth bool

	Serial       string
	Channel      int
	StartChannel int

	Offset       float64
	PeakIntensity float64
}

// Len returns the number of channels in the spectrum.
func (s *Spectrum) Len() int { return len(s.Intensities) }
