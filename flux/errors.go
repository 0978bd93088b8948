package flux

import "errors"

// Well-typed rejection reasons (spec.md §4.5 "Rejection"); a scan that
// fails one of these is skipped, not produced as a red-graded result.
var (
	ErrPlumeAbsent          = errors.New("flux: scan does not see the plume")
	ErrLowCompleteness      = errors.New("flux: plume completeness below configured minimum")
	ErrPlumeBelowInstrument = errors.New("flux: plume-relative altitude is not positive")
	ErrUnknownInstrument    = errors.New("flux: instrument location not known at scan time")
	ErrNoColumnSeries       = errors.New("flux: species has no evaluated column series in this scan")
)
