package ppp

import "time"

// ScanMode classifies what a scan was acquired for (spec.md §3).
type ScanMode int

const (
	ModeFlux ScanMode = iota
	ModeWindSpeed
	ModeComposition
	ModeStratospheric
)

func (m ScanMode) String() string {
	switch m {
	case ModeFlux:
		return "flux"
	case ModeWindSpeed:
		return "wind-speed"
	case ModeComposition:
		return "composition"
	case ModeStratospheric:
		return "stratosphere"
	default:
		return "unknown"
	}
}

// SpectrumInfo is the angle/time metadata kept alongside an evaluated
// spectrum's EvaluationResult, forming one row of the scan's column series.
type SpectrumInfo struct {
	Angle      float64
	Azimuth    float64
	HasAzimuth bool
	StartTime  time.Time
	StopTime   time.Time
	Name       string

	SpecSaturation float64
	FitSaturation  float64
	Exposure       time.Duration
	NumSpec        int

	// Offset is the measurement spectrum's recorded DC-offset estimate
	// (spec.md §6 evaluation-log "offset" column), carried through from
	// the raw spectrum rather than derived by the fit.
	Offset float64

	IsGoodPoint bool
}

// EvaluatedSpectrum bundles one spectrum's angle metadata with its fit
// result, bound together the way spec.md §3 "Scan result" requires.
type EvaluatedSpectrum struct {
	Info   SpectrumInfo
	Result EvaluationResult
}

// ScanResult is the per-window output of §4.2: the ordered evaluated
// measurement series plus the sky/dark spectra that were excluded from
// it and the per-scan aggregate fields.
type ScanResult struct {
	Serial string
	Mode   ScanMode
	Type   InstrumentType

	Sky  Spectrum
	Dark *Spectrum // nil if the scan carries no dark spectrum

	Spectra []EvaluatedSpectrum

	Battery     float64
	Temperature float64
}

// StartTime returns the sky spectrum's start time, the scan-ordering key
// spec.md §4.6 sorts on.
func (r *ScanResult) StartTime() time.Time { return r.Sky.StartTime }

// Columns returns the per-reference column series for the named species,
// aligned 1:1 with r.Spectra, along with the column-error series and a
// "good" mask (IsGoodPoint && IsOk). Returns ok=false if the species was
// not fit in this scan.
func (r *ScanResult) Columns(species string) (cols, errs []float64, good []bool, ok bool) {
	n := len(r.Spectra)
	cols = make([]float64, n)
	errs = make([]float64, n)
	good = make([]bool, n)

	found := false
	for i, sp := range r.Spectra {
		for _, ref := range sp.Result.References {
			if ref.Name == species {
				cols[i] = ref.Column
				errs[i] = ref.ColumnError
				good[i] = sp.Info.IsGoodPoint && sp.Result.IsOk
				found = true
				break
			}
		}
	}
	return cols, errs, good, found
}

// ExtendedScanResult bundles a ScanResult with the derived plume
// properties and log provenance §4.2 requires of a successful scan
// evaluation.
type ExtendedScanResult struct {
	ScanResult

	Plume PlumeInScanProperty

	// LogPaths maps fit-window name to the canonical evaluation-log file
	// written for it (spec.md §6).
	LogPaths map[string]string

	// Flux is populated once flux.Integrate has run for this scan; it is
	// nil until then.
	Flux *FluxResult

	// Rejected, if non-empty, names why the orchestrator excluded this
	// scan from flux output (spec.md §7 taxonomy 3).
	Rejected string
}
