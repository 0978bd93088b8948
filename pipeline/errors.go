package pipeline

import "errors"

var (
	// ErrNoRawFiles is returned when the configured search directories
	// produced no raw scan files for [fromdate, todate]; the original
	// treats this as a fatal configuration problem rather than a
	// trivially empty run (spec.md §5 "a fatal error inside the
	// orchestrator... aborts the run").
	ErrNoRawFiles = errors.New("pipeline: no raw scan files found in the requested date range")

	// ErrNoOpener is returned when Options.Open is nil: the raw-file
	// reader is an external collaborator (spec.md §1 non-goals), so Run
	// always requires one to be supplied rather than defaulting to a
	// concrete binary-format decoder this module doesn't ship.
	ErrNoOpener = errors.New("pipeline: no raw scan file opener configured")
)
