package doas

import ppp "github.com/novacppp/novacppp"

// SolarShift runs the solar-shift registration fit of spec.md §4.1: only
// the fit window's Fraunhofer reference is fit, with its column fixed at
// +/-1 (sign depends on fit mode, since HP_DIV works on a ratio and
// HP_SUB/POLY work on a log-difference) and its squeeze fixed at 1. The
// returned shift/squeeze are the per-instrument spectral-registration
// correction; callers apply it by pointing the other references' Shift
// and Squeeze policies at the Fraunhofer reference with ppp.LinkPolicy
// before running ordinary Evaluate fits (spec.md: "reports the shift and
// squeeze of the other references by linking them to the solar
// reference").
func SolarShift(measured, sky ppp.Spectrum, window *ppp.FitWindow) (shift, squeeze, chiSquare float64, err error) {
	if window.FraunhoferIndex < 0 || window.FraunhoferIndex >= len(window.References) {
		return 0, 0, 0, ErrReferencesNotInitialized
	}

	sign := -1.0
	if window.Mode == ppp.HpDiv {
		sign = 1.0
	}

	fraunhofer := window.References[window.FraunhoferIndex]
	solverWindow := &ppp.FitWindow{
		Name:             window.Name + "/solar-shift",
		References:       []ppp.Reference{{Name: fraunhofer.Name, CrossSection: fraunhofer.CrossSection, Column: ppp.FixedPolicy(sign), Shift: ppp.FreePolicy(), Squeeze: ppp.FixedPolicy(1)}},
		PolyOrder:        window.PolyOrder,
		Fit:              window.Fit,
		Length:           window.Length,
		Mode:             window.Mode,
		FraunhoferIndex:  0,
		UV:               window.UV,
		MaxIterations:    solarShiftMaxIterations,
		ChiSqThreshold:   window.ChiSqThreshold,
		ChiSqOkThreshold: window.ChiSqOkThreshold,
		DeltaThreshold:   window.DeltaThreshold,
		SaturationMin:    window.SaturationMin,
		SaturationMax:    window.SaturationMax,
	}

	result, err := Evaluate(measured, sky, solverWindow)
	if err != nil {
		return 0, 0, 0, err
	}

	return result.References[0].Shift, result.References[0].Squeeze, result.ChiSquare, nil
}
