package doas

import (
	"fmt"

	ppp "github.com/novacppp/novacppp"
)

// Evaluate fits measured against sky in the given fit window (spec.md
// §4.1 "Contract"). sky should already be the raw sky spectrum; Evaluate
// preconditions both spectra internally. A contract violation (no
// references, a length/interval mismatch) returns an empty result and
// one of the package's well-typed errors. A numeric failure during the
// fit itself (ErrNonConvergence, ErrLinearAlgebra) still returns the
// best result reached (IsOk false) alongside the error, so a caller
// fitting many spectra can count the failure without discarding the
// point outright.
func Evaluate(measured, sky ppp.Spectrum, window *ppp.FitWindow) (ppp.EvaluationResult, error) {
	if len(window.References) == 0 {
		return ppp.EvaluationResult{}, ErrReferencesNotInitialized
	}
	if measured.Len() != window.Length || sky.Len() != window.Length {
		return ppp.EvaluationResult{}, fmt.Errorf("%w: measured=%d sky=%d window=%d",
			ErrWindowMismatch, measured.Len(), sky.Len(), window.Length)
	}
	if window.Fit.Low < 0 || window.Fit.High > window.Length || window.Fit.Width() <= 0 {
		return ppp.EvaluationResult{}, ErrFitIntervalOutOfRange
	}

	target := Precondition(measured.Intensities, sky.Intensities, window.Mode, window.UV)

	result, x, params, paramErr, steps, err := evaluate(window, target, window.MaxIterations, window.ChiSqThreshold)
	if err != nil && steps == 0 {
		return ppp.EvaluationResult{}, err
	}

	out := ppp.EvaluationResult{
		References:       make([]ppp.ReferenceResult, len(window.References)),
		PolyCoefficients: result.polyCoeffs,
		ChiSquare:        result.chiSquare,
		Delta:            result.delta,
		Steps:            steps,
	}

	shifts, squeezes := resolveNonlinear(window, x, params)
	shiftErrs, squeezeErrs := resolveNonlinearErrors(window, paramErr, params)
	for i, ref := range window.References {
		out.References[i] = ppp.ReferenceResult{
			Name:         ref.Name,
			Column:       result.columns[i],
			ColumnError:  result.columnErr[i],
			Shift:        shifts[i],
			ShiftError:   shiftErrs[i],
			Squeeze:      squeezes[i],
			SqueezeError: squeezeErrs[i],
		}
	}

	out.IsOk = err == nil && judgeQuality(window, &result, measured.PeakIntensity)

	return out, err
}
