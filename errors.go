package ppp

import "errors"

// Root-level sentinel errors shared across packages, in the flat
// var-block style of the teacher's errors.go. Package-specific failures
// live in each package's own errors.go.
var (
	ErrUnknownVolcano      = errors.New("unknown volcano")
	ErrInstrumentNotFound  = errors.New("instrument location not known at scan time")
	ErrOverlappingInterval = errors.New("instrument location validity intervals overlap")
	ErrInvariant           = errors.New("invariant violation")
)
