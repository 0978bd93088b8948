package doas

import "errors"

// Well-typed failures the evaluator returns instead of panicking
// (spec.md §4.1 "Contract", and the redesign note in SPEC_FULL.md about
// result types replacing exceptions at scan granularity).
var (
	ErrWindowMismatch           = errors.New("doas: spectrum length does not match fit window")
	ErrFitIntervalOutOfRange    = errors.New("doas: fit interval outside spectrum")
	ErrReferencesNotInitialized = errors.New("doas: fit window has no references")
	ErrLinearAlgebra            = errors.New("doas: linear algebra failure")
	ErrNonConvergence           = errors.New("doas: fit did not converge")
)
