package config

import "errors"

// Configuration errors are fatal at phase start (spec.md §7 taxonomy 1):
// the orchestrator aborts the run rather than skipping a file.
var (
	ErrUnknownVolcano        = errors.New("config: unknown volcano")
	ErrInstrumentNotFound    = errors.New("config: instrument not configured")
	ErrDuplicateInstrument   = errors.New("config: duplicate instrument serial")
	ErrOverlappingInterval   = errors.New("config: instrument location validity intervals overlap")
	ErrNoLocationAt          = errors.New("config: instrument has no location valid at the given time")
	ErrNoFitWindowAt         = errors.New("config: instrument has no fit window valid at the given time")
	ErrInvalidCalibrationDay = errors.New("config: invalid calibration interval of day")
	ErrUnreadableXML         = errors.New("config: could not read or parse XML configuration")
	ErrInvalidMode           = errors.New("config: unrecognized mode value")
	ErrInvalidMolecule       = errors.New("config: unrecognized molecule value")
)
