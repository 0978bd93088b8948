package config

import "time"

// ProcessingMode is the `mode` CLI/processing.xml value (spec.md §6):
// what the orchestrator does with the matched raw scan files.
type ProcessingMode int

const (
	ModeFlux ProcessingMode = iota
	ModeComposition
	ModeStratosphere
	ModeTroposphere
	ModeGeometry
	ModeDualBeam
	ModeInstrumentCalibration
)

func (m ProcessingMode) String() string {
	switch m {
	case ModeFlux:
		return "flux"
	case ModeComposition:
		return "composition"
	case ModeStratosphere:
		return "stratosphere"
	case ModeTroposphere:
		return "troposphere"
	case ModeGeometry:
		return "geometry"
	case ModeDualBeam:
		return "dualbeam"
	case ModeInstrumentCalibration:
		return "instrument_calibration"
	default:
		return "unknown"
	}
}

// ParseProcessingMode parses one of spec.md §6's recognized `mode` values.
func ParseProcessingMode(s string) (ProcessingMode, error) {
	switch s {
	case "flux":
		return ModeFlux, nil
	case "composition":
		return ModeComposition, nil
	case "stratosphere":
		return ModeStratosphere, nil
	case "troposphere":
		return ModeTroposphere, nil
	case "geometry":
		return ModeGeometry, nil
	case "dualbeam":
		return ModeDualBeam, nil
	case "instrument_calibration":
		return ModeInstrumentCalibration, nil
	default:
		return 0, ErrInvalidMode
	}
}

// Molecule is the `molecule` CLI/processing.xml value (spec.md §6),
// naming which species' column series the flux integrator reads.
type Molecule int

const (
	MoleculeSO2 Molecule = iota
	MoleculeNO2
	MoleculeO3
	MoleculeBrO
)

func (m Molecule) String() string {
	switch m {
	case MoleculeSO2:
		return "SO2"
	case MoleculeNO2:
		return "NO2"
	case MoleculeO3:
		return "O3"
	case MoleculeBrO:
		return "BrO"
	default:
		return "unknown"
	}
}

// ParseMolecule parses one of spec.md §6's recognized `molecule` values.
func ParseMolecule(s string) (Molecule, error) {
	switch s {
	case "SO2":
		return MoleculeSO2, nil
	case "NO2":
		return MoleculeNO2, nil
	case "O3":
		return MoleculeO3, nil
	case "BrO":
		return MoleculeBrO, nil
	default:
		return 0, ErrInvalidMolecule
	}
}

// CalibrationWindow is the local-hour window (original UserConfiguration's
// m_calibrationIntervalTimeOfDayLow/High) that gates solar-shift
// calibration to a plausible daylight period (SPEC_FULL.md §5). FromHour
// may exceed ToHour for a window that wraps past midnight, matching the
// original's "totally valid... for locations far from Europe" comment.
// The zero value (0, 24) never narrows a scan's eligibility.
type CalibrationWindow struct {
	FromHour, ToHour int
}

// DefaultCalibrationWindow disables the gate: every hour is eligible.
func DefaultCalibrationWindow() CalibrationWindow {
	return CalibrationWindow{FromHour: 0, ToHour: 24}
}

// Contains reports whether localHour (0-23) falls within the window,
// wrapping past midnight when FromHour > ToHour.
func (w CalibrationWindow) Contains(localHour int) bool {
	if w.FromHour <= w.ToHour {
		return localHour >= w.FromHour && localHour < w.ToHour
	}
	return localHour >= w.FromHour || localHour < w.ToHour
}

// UserConfiguration is the run's processing settings (original
// CUserConfiguration / processing.xml), validated with struct tags the
// way `de-bkg-gognss`'s site package validates a GNSS site log.
type UserConfiguration struct {
	MaxThreadNum int `validate:"min=1"`
	WorkDir      string

	Mode     ProcessingMode
	Molecule Molecule

	Volcano string `validate:"required"`

	FromDate, ToDate time.Time `validate:"required"`

	LocalDirectory      string
	IncludeSubdirsLocal bool

	FTPDirectory      string
	FTPUsername       string
	FTPPassword       string
	IncludeSubdirsFTP bool

	UploadResults bool

	OutputDirectory string `validate:"required"`
	TempDirectory   string `validate:"required"`

	// WindFieldFile is either one .wxml file, or a directory of them
	// named "VOLCANO_analysis_YYYYMMDD.wxml" (original
	// m_windFieldFileOption); winddb distinguishes the two by stat'ing
	// the path, so no separate option field is carried here.
	WindFieldFile string

	CalcGeometryCompletenessLimit float64
	CalcGeometryValidTime         time.Duration
	CalcGeometryMaxTimeDifference time.Duration
	CalcGeometryMinDistance       float64
	CalcGeometryMaxDistance       float64
	CalcGeometryMaxPlumeAltError  float64
	CalcGeometryMaxWindDirError   float64

	CompletenessLimitFlux float64

	Calibration CalibrationWindow
}

// DefaultUserConfiguration returns the original's hard-coded defaults
// (UserConfiguration.h), before any CLI/processing.xml override is
// applied.
func DefaultUserConfiguration() UserConfiguration {
	return UserConfiguration{
		MaxThreadNum:                  2,
		Mode:                          ModeFlux,
		Molecule:                      MoleculeSO2,
		IncludeSubdirsLocal:           true,
		IncludeSubdirsFTP:             true,
		CalcGeometryCompletenessLimit: 0.7,
		CalcGeometryValidTime:         10 * time.Minute,
		CalcGeometryMaxTimeDifference: 15 * time.Minute,
		CalcGeometryMinDistance:       200,
		CalcGeometryMaxDistance:       10000,
		CalcGeometryMaxPlumeAltError:  500,
		CalcGeometryMaxWindDirError:   10,
		CompletenessLimitFlux:         0.9,
		Calibration:                   DefaultCalibrationWindow(),
	}
}
