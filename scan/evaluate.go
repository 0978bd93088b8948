package scan

import (
	"errors"
	"fmt"

	"github.com/novacppp/novacppp/doas"
	"github.com/novacppp/novacppp/rawscan"
	"github.com/novacppp/novacppp/stats"

	ppp "github.com/novacppp/novacppp"
)

// LogWriter persists one fit window's evaluated scan to the canonical
// evaluation-log format of spec.md §6 and returns the path written. The
// concrete implementation (evallog.Writer) is supplied by the caller so
// this package stays independent of the on-disk log format.
type LogWriter interface {
	WriteLog(window *ppp.FitWindow, result ppp.ScanResult) (path string, err error)
}

// EvaluateScan implements spec.md §4.2: it runs doas.Evaluate over every
// measurement spectrum of raw, once per configured fit window, and
// builds the plume properties (§4.3) from the mainWindow's column
// series. If any configured window fails outright (not a per-spectrum
// rejection, but a contract error such as a reference/length mismatch)
// the whole scan is rejected, matching "if a scan fails in any
// configured fit window, the whole scan is rejected from the pipeline".
// A per-spectrum numeric failure (fit non-convergence, a singular
// design matrix) does not reject the scan — it is counted against st
// (spec.md §7 category 4) and the point is carried through as not-ok,
// the same way a per-spectrum quality rejection is. st may be nil.
func EvaluateScan(raw rawscan.Source, windows map[string]*ppp.FitWindow, mainWindow string, logs LogWriter, st *stats.Statistics) (ppp.ExtendedScanResult, error) {
	sky, err := raw.Sky()
	if err != nil {
		return ppp.ExtendedScanResult{}, fmt.Errorf("scan: reading sky spectrum: %w", err)
	}
	dark, err := raw.Dark()
	if err != nil {
		return ppp.ExtendedScanResult{}, fmt.Errorf("scan: reading dark spectrum: %w", err)
	}
	measurements, err := raw.Measurements()
	if err != nil {
		return ppp.ExtendedScanResult{}, fmt.Errorf("scan: reading measurements: %w", err)
	}

	window, ok := windows[mainWindow]
	if !ok {
		return ppp.ExtendedScanResult{}, fmt.Errorf("scan: main fit window %q not configured", mainWindow)
	}

	logPaths := make(map[string]string, len(windows))
	var mainResult ppp.ScanResult

	for name, w := range windows {
		w := solarShiftAdjustedWindow(w, sky, measurements, st)

		result := ppp.ScanResult{
			Serial:  raw.Serial(),
			Mode:    raw.Mode(),
			Type:    raw.Type(),
			Sky:     sky,
			Dark:    dark,
			Spectra: make([]ppp.EvaluatedSpectrum, 0, len(measurements)),
		}

		for _, m := range measurements {
			evalResult, err := doas.Evaluate(m, sky, w)
			if reason, ok := numericFailureReason(err); ok {
				if st != nil {
					st.IncrementNumericFailure(reason)
				}
			} else if err != nil {
				return ppp.ExtendedScanResult{}, fmt.Errorf("scan: window %q: %w", name, err)
			}
			result.Spectra = append(result.Spectra, ppp.EvaluatedSpectrum{
				Info: ppp.SpectrumInfo{
					Angle:          m.Angle,
					Azimuth:        m.Azimuth,
					HasAzimuth:     m.HasAzimuth,
					StartTime:      m.StartTime,
					StopTime:       m.StopTime,
					Name:           m.Serial,
					SpecSaturation: m.PeakIntensity,
					FitSaturation:  peakInRange(m.Intensities, w.Fit),
					Exposure:       m.Exposure,
					NumSpec:        m.NumCoAdds,
					Offset:         m.Offset,
					IsGoodPoint:    evalResult.IsOk,
				},
				Result: evalResult,
			})
		}

		if name == mainWindow {
			mainResult = result
		}

		if logs != nil {
			path, err := logs.WriteLog(w, result)
			if err != nil {
				return ppp.ExtendedScanResult{}, fmt.Errorf("scan: writing log for window %q: %w", name, err)
			}
			logPaths[name] = path
		}
	}

	species := mainSpecies(window)
	angles, azimuths := make([]float64, len(mainResult.Spectra)), make([]float64, len(mainResult.Spectra))
	for i, sp := range mainResult.Spectra {
		angles[i] = sp.Info.Angle
		azimuths[i] = sp.Info.Azimuth
	}
	columns, columnErrs, good, _ := mainResult.Columns(species)
	plume := AnalyzePlume(angles, azimuths, mainResult.Type == ppp.Heidelberg, columns, columnErrs, good)

	return ppp.ExtendedScanResult{
		ScanResult: mainResult,
		Plume:      plume,
		LogPaths:   logPaths,
	}, nil
}

// solarShiftAdjustedWindow runs one doas.SolarShift registration fit per
// scan session against the session's first measurement spectrum (spec.md
// §4.1 "Solar-shift mode": "used to derive a per-instrument spectral-
// registration correction before normal fits"), then returns a copy of
// window with the Fraunhofer reference's shift/squeeze fixed at that
// correction and every other reference linked to it via ppp.LinkPolicy,
// ready for the ordinary per-spectrum Evaluate loop — exactly the
// hand-off solarshift.go's own doc comment describes. A window with no
// configured Fraunhofer reference is returned unchanged. A failed
// registration counts as a spec.md §7 category-4 SolarShiftException and
// falls back to window's own configured policies rather than rejecting
// the scan.
func solarShiftAdjustedWindow(window *ppp.FitWindow, sky ppp.Spectrum, measurements []ppp.Spectrum, st *stats.Statistics) *ppp.FitWindow {
	if window.FraunhoferIndex < 0 || window.FraunhoferIndex >= len(window.References) || len(measurements) == 0 {
		return window
	}

	shift, squeeze, _, err := doas.SolarShift(measurements[0], sky, window)
	if err != nil {
		if st != nil {
			st.IncrementNumericFailure(stats.SolarShiftException)
		}
		return window
	}

	fraunhofer := window.References[window.FraunhoferIndex].Name
	adjusted := *window
	adjusted.References = append([]ppp.Reference(nil), window.References...)
	for i := range adjusted.References {
		if i == window.FraunhoferIndex {
			adjusted.References[i].Shift = ppp.FixedPolicy(shift)
			adjusted.References[i].Squeeze = ppp.FixedPolicy(squeeze)
			continue
		}
		adjusted.References[i].Shift = ppp.LinkPolicy(fraunhofer)
		adjusted.References[i].Squeeze = ppp.LinkPolicy(fraunhofer)
	}
	return &adjusted
}

// numericFailureReason classifies a doas.Evaluate error as one of
// spec.md §7 category 4's numerical failures rather than a contract
// violation: ErrNonConvergence/ErrLinearAlgebra still come with a
// (not-ok) result attached, so they're counted and the scan continues,
// unlike ErrWindowMismatch/ErrFitIntervalOutOfRange/
// ErrReferencesNotInitialized, which reject the whole scan.
func numericFailureReason(err error) (stats.NumericFailure, bool) {
	switch {
	case errors.Is(err, doas.ErrNonConvergence):
		return stats.FitNonConvergence, true
	case errors.Is(err, doas.ErrLinearAlgebra):
		return stats.SingularMatrix, true
	default:
		return 0, false
	}
}

// mainSpecies returns the first configured reference's name, the
// species the plume analyzer tracks (spec.md §4.3 operates on a single
// column series per scan).
func mainSpecies(window *ppp.FitWindow) string {
	if len(window.References) == 0 {
		return ""
	}
	return window.References[0].Name
}

// peakInRange returns the largest intensity within [r.Low, r.High), the
// "fitsaturation" column of spec.md §6 (as opposed to "specsaturation",
// the peak over the whole spectrum).
func peakInRange(intensities []float64, r ppp.ChannelRange) float64 {
	peak := 0.0
	lo, hi := r.Low, r.High
	if lo < 0 {
		lo = 0
	}
	if hi > len(intensities) {
		hi = len(intensities)
	}
	for i := lo; i < hi; i++ {
		if intensities[i] > peak {
			peak = intensities[i]
		}
	}
	return peak
}
