// Package flux integrates a scan's column series into a mass flux and
// grades the result (spec.md §4.5), selecting the flat, conical, or
// Heidelberg formula by instrument geometry. Grounded on
// Common::CalculateFlux/_FlatFormula/_ConeFormula/_HeidelbergFormula.
package flux

import (
	"math"

	ppp "github.com/novacppp/novacppp"
	"github.com/novacppp/novacppp/geometry"
)

const defaultMinCompleteness = 0.9

// flatEdgeToleranceDegrees is the "distance calculation has a
// singularity at +-90 degrees" skip window of spec.md §8 ("two adjacent
// angles at +89.7 and +90.3 contributes zero"), ported from
// Common::CalculateFlux_FlatFormula's `fabs(fabs(scanAngle)-90.0)<0.5`.
const flatEdgeToleranceDegrees = 0.5

// coneEdgeToleranceRadians is the analogous singularity guard in the
// conical/Heidelberg formulas, ported from their `1e-2` radian check.
const coneEdgeToleranceRadians = 1e-2

// Standard atmospheric-chemistry constants used to convert a ppm.m slant
// column into a mass: CMolecule's own implementation is not among the
// retrieved original sources, so this conversion is grounded directly on
// the textbook relation instead of a specific source file (see
// DESIGN.md) — the Loschmidt number (molecules/cm^3 at standard
// temperature and pressure) gives the ppm.m -> molecules/cm^2 factor,
// combined with SO2's molar mass and Avogadro's number.
const (
	loschmidtPerCm3       = 2.6867811e19
	so2MolarMassGPerMol   = 64.0638
	avogadroPerMol        = 6.02214076e23
	ppmmToMoleculesPerCm2 = loschmidtPerCm3 * 1e-6 * 100
)

// kgPerPpmmMeterSquaredPerSecond converts one (ppm.m * m * m/s) unit of
// the raw VCD*distance*windspeed sum — the units Integrate's internal
// formulas work in — into kilograms of SO2 per second.
const kgPerPpmmMeterSquaredPerSecond = ppmmToMoleculesPerCm2 * 1e4 / avogadroPerMol * so2MolarMassGPerMol / 1000

// Integrate implements spec.md §4.5 end to end: it applies the
// rejection rules, dispatches to the flat/conical/Heidelberg formula by
// loc's geometry, and grades the result. species names the fit-window
// reference the flux is computed from. minCompleteness <= 0 uses the
// default of 0.9. windSpeedError and windDirectionError are the wind
// database record's own uncertainty (ppp.WindField carries no error of
// its own, mirroring the gap geometry.SingleKnownWind already notes);
// pass 0 when unavailable to skip the wind-error perturbation.
func Integrate(scan *ppp.ExtendedScanResult, species string, loc *ppp.InstrumentLocation, wind ppp.WindField, windSpeedError, windDirectionError float64, height ppp.PlumeHeight, minCompleteness float64) (ppp.FluxResult, error) {
	if loc == nil {
		return ppp.FluxResult{}, ErrUnknownInstrument
	}
	if !scan.Plume.Found() {
		return ppp.FluxResult{}, ErrPlumeAbsent
	}
	if minCompleteness <= 0 {
		minCompleteness = defaultMinCompleteness
	}
	if scan.Plume.Completeness < minCompleteness {
		return ppp.FluxResult{}, ErrLowCompleteness
	}

	relativeHeight := height.Altitude - loc.Altitude
	if relativeHeight <= 0 {
		return ppp.FluxResult{}, ErrPlumeBelowInstrument
	}

	columns, _, good, ok := scan.Columns(species)
	if !ok {
		return ppp.FluxResult{}, ErrNoColumnSeries
	}

	n := len(scan.Spectra)
	angles := make([]float64, n)
	azimuths := make([]float64, n)
	numGood := 0
	for i, sp := range scan.Spectra {
		angles[i] = sp.Info.Angle
		azimuths[i] = sp.Info.Azimuth
		if good[i] {
			numGood++
		}
	}

	value := integrate(loc, angles, azimuths, columns, scan.Plume.Offset, relativeHeight, wind)
	windErr := windErrorComponent(loc, angles, azimuths, columns, scan.Plume.Offset, relativeHeight, wind, windSpeedError, windDirectionError)
	heightErr := plumeHeightErrorComponent(loc, angles, azimuths, columns, scan.Plume.Offset, relativeHeight, wind, height.Error)

	result := ppp.FluxResult{
		Value:                     value,
		WindErrorComponent:        windErr,
		PlumeHeightErrorComponent: heightErr,
		Quality:                   Grade(wind.Source, height.Source, scan.Plume.Completeness),
		Wind:                      wind,
		PlumeHeight:               height,
		Serial:                    scan.Serial,
		Type:                      loc.Type,
		Compass:                   loc.Compass,
		ConeAngle:                 loc.ConeAngle,
		Tilt:                      loc.Tilt,
		Completeness:              scan.Plume.Completeness,
		PlumeCentre:               scan.Plume.Centre,
		PlumeCentreAzimuth:        scan.Plume.CentreAzimuth,
		Offset:                    scan.Plume.Offset,
		NumGoodSpectra:            numGood,
	}
	if n > 0 {
		result.StartTime = scan.Spectra[0].Info.StartTime
		result.StopTime = scan.Spectra[n-1].Info.StopTime
	}
	return result, nil
}

// integrate dispatches to the formula loc's geometry selects (spec.md
// §4.5 "Selection").
func integrate(loc *ppp.InstrumentLocation, angles, azimuths, columns []float64, offset, height float64, wind ppp.WindField) float64 {
	switch {
	case loc.Type == ppp.Heidelberg:
		return integrateHeidelberg(loc, angles, azimuths, columns, offset, height, wind)
	case loc.IsFlat():
		return integrateFlat(loc, angles, columns, offset, height, wind)
	default:
		return integrateConical(loc, angles, columns, offset, height, wind)
	}
}

// integrateFlat implements CalculateFlux_FlatFormula / spec.md §4.5's
// flat-scanner sum.
func integrateFlat(loc *ppp.InstrumentLocation, angles, columns []float64, offset, height float64, wind ppp.WindField) float64 {
	windFactor := math.Abs(math.Cos(deg2rad(wind.Direction - loc.Compass)))

	raw := 0.0
	for i := 0; i < len(columns)-1; i++ {
		a1, a2 := angles[i], angles[i+1]
		if nearSingularityDegrees(a1, flatEdgeToleranceDegrees) || nearSingularityDegrees(a2, flatEdgeToleranceDegrees) {
			continue
		}

		vcd1 := (columns[i] - offset) * math.Cos(deg2rad(a1))
		vcd2 := (columns[i+1] - offset) * math.Cos(deg2rad(a2))
		dx := height * math.Abs(math.Tan(deg2rad(a2))-math.Tan(deg2rad(a1)))

		raw += dx * (vcd1 + vcd2) / 2
	}

	return math.Abs(raw) * wind.Speed * windFactor * kgPerPpmmMeterSquaredPerSecond
}

// integrateConical implements CalculateFlux_ConeFormula / spec.md §4.5's
// conical-scanner sum, using geometry.AirMassFactor and
// geometry.ConeGroundOffset for the per-point AMF and ground projection.
func integrateConical(loc *ppp.InstrumentLocation, angles, columns []float64, offset, height float64, wind ppp.WindField) float64 {
	n := len(columns)
	vcd := make([]float64, n)
	x := make([]float64, n)
	y := make([]float64, n)
	for i := 0; i < n; i++ {
		vcd[i] = (columns[i] - offset) / geometry.AirMassFactor(loc, angles[i])
		x[i], y[i] = geometry.ConeGroundOffset(loc, angles[i], height)
	}

	raw := 0.0
	for i := 0; i < n-1; i++ {
		if nearSingularityRadians(deg2rad(angles[i])) || nearSingularityRadians(deg2rad(angles[i+1])) {
			continue
		}

		avgVCD := (vcd[i] + vcd[i+1]) / 2
		dx, dy := x[i+1]-x[i], y[i+1]-y[i]
		s := math.Hypot(dx, dy)
		localBearing := math.Atan2(dy, dx)
		windFactor := math.Abs(math.Sin(deg2rad(wind.Direction-loc.Compass) - localBearing))

		raw += avgVCD * s * windFactor
	}

	return math.Abs(raw) * wind.Speed * kgPerPpmmMeterSquaredPerSecond
}

// integrateHeidelberg implements CalculateFlux_HeidelbergFormula / spec.md
// §4.5's two-axis sum: elevation 0 points to zenith, azimuth is an
// absolute compass bearing already, so (unlike the conical formula)
// neither term is rotated by loc.Compass.
func integrateHeidelberg(loc *ppp.InstrumentLocation, elevations, azimuths, columns []float64, offset, height float64, wind ppp.WindField) float64 {
	n := len(columns)
	vcd := make([]float64, n)
	x := make([]float64, n)
	y := make([]float64, n)
	for i := 0; i < n; i++ {
		elev := deg2rad(elevations[i])
		azim := deg2rad(azimuths[i])
		vcd[i] = (columns[i] - offset) * math.Cos(elev)
		x[i] = math.Tan(elev) * math.Cos(azim)
		y[i] = math.Tan(elev) * math.Sin(azim)
	}

	raw := 0.0
	for i := 0; i < n-1; i++ {
		if nearSingularityRadians(deg2rad(elevations[i])) || nearSingularityRadians(deg2rad(elevations[i+1])) {
			continue
		}

		avgVCD := (vcd[i] + vcd[i+1]) / 2
		dx, dy := height*(x[i+1]-x[i]), height*(y[i+1]-y[i])
		s := math.Hypot(dx, dy)
		localBearing := math.Atan2(dy, dx)
		windFactor := math.Abs(math.Sin(deg2rad(wind.Direction) - localBearing))

		raw += avgVCD * s * windFactor
	}

	return math.Abs(raw) * wind.Speed * kgPerPpmmMeterSquaredPerSecond
}

// windErrorComponent perturbs the wind field by its own speed/direction
// error (the four-corner scheme geometry.TwoScan's error model already
// establishes) and averages the resulting flux deviation.
func windErrorComponent(loc *ppp.InstrumentLocation, angles, azimuths, columns []float64, offset, height float64, wind ppp.WindField, speedErr, dirErr float64) float64 {
	if speedErr <= 0 && dirErr <= 0 {
		return 0
	}
	base := integrate(loc, angles, azimuths, columns, offset, height, wind)

	var devs []float64
	for _, ds := range []float64{-speedErr, speedErr} {
		for _, dd := range []float64{-dirErr, dirErr} {
			perturbed := wind
			perturbed.Speed += ds
			perturbed.Direction += dd
			devs = append(devs, math.Abs(integrate(loc, angles, azimuths, columns, offset, height, perturbed)-base))
		}
	}
	return mean(devs)
}

// plumeHeightErrorComponent perturbs the plume height by its own error
// and averages the resulting flux deviation; a non-positive lower
// perturbation falls back to the unperturbed value rather than
// integrating with a plume below the instrument.
func plumeHeightErrorComponent(loc *ppp.InstrumentLocation, angles, azimuths, columns []float64, offset, height float64, wind ppp.WindField, heightErr float64) float64 {
	if heightErr <= 0 {
		return 0
	}
	base := integrate(loc, angles, azimuths, columns, offset, height, wind)
	hi := integrate(loc, angles, azimuths, columns, offset, height+heightErr, wind)

	lo := base
	if height-heightErr > 0 {
		lo = integrate(loc, angles, azimuths, columns, offset, height-heightErr, wind)
	}

	return (math.Abs(hi-base) + math.Abs(lo-base)) / 2
}

func nearSingularityDegrees(angle, toleranceDegrees float64) bool {
	return math.Abs(math.Abs(angle)-90) < toleranceDegrees
}

func nearSingularityRadians(angleRadians float64) bool {
	return math.Abs(math.Abs(angleRadians)-math.Pi/2) < coneEdgeToleranceRadians
}

func deg2rad(d float64) float64 { return d * math.Pi / 180 }

func mean(v []float64) float64 {
	if len(v) == 0 {
		return 0
	}
	sum := 0.0
	for _, x := range v {
		sum += x
	}
	return sum / float64(len(v))
}
