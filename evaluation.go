package ppp

// ReferenceResult is the per-reference output of one DOAS solve: column
// density and its error, spectral shift and squeeze and their errors.
type ReferenceResult struct {
	Name string

	Column      float64
	ColumnError float64
	Shift       float64
	ShiftError  float64
	Squeeze     float64
	SqueezeError float64
}

// EvaluationResult is the outcome of fitting one (sky, measurement) pair
// in one fit window (spec.md §3). The invariant `len(References) ==
// fitWindow.References` is enforced by doas.Evaluate.
type EvaluationResult struct {
	References []ReferenceResult

	PolyCoefficients []float64
	ChiSquare        float64
	Delta            float64
	Steps            int

	// IsOk is the derived quality flag from spec.md §4.1 "Quality
	// judgment": chi-square below threshold, peak in-range, delta below
	// threshold, and a finite column error.
	IsOk bool
}
