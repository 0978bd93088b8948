package geometry

import (
	"errors"
	"math"
	"time"

	"github.com/soniakeys/unit"

	ppp "github.com/novacppp/novacppp"
)

var (
	// ErrDegenerateGeometry covers both a singular wind/sight-line
	// intersection and two horizontally parallel sight lines (spec.md §7
	// taxonomy 4, §8 boundary behavior).
	ErrDegenerateGeometry = errors.New("geometry: degenerate sight-line configuration")
	// ErrNonConvergence is returned when the fuzzy two-scan altitude
	// search exceeds its iteration budget (spec.md §4.4).
	ErrNonConvergence = errors.New("geometry: plume-height search did not converge")
	// ErrNoPlume is returned when a required plume centre angle is absent.
	ErrNoPlume = errors.New("geometry: scan does not see the plume")
)

// Source is the point the plume is assumed to originate from: the
// volcano's peak (spec.md §4.4 "source position").
type Source struct {
	Latitude, Longitude, Altitude float64
}

// windDirectionFor returns the wind direction (degrees from north,
// clockwise) implied by an instrument's observed plume-centre angle,
// given a plume height (meters above the instrument) and the source
// position. Grounded on the original GeometryCalculator::GetWindDirection,
// unified over the flat/conical branch via the shared sightVector
// construction (see DESIGN.md).
func windDirectionFor(loc *ppp.InstrumentLocation, plumeCentreDeg, plumeHeight float64, source Source) float64 {
	x, y := GroundProjection(loc, plumeCentreDeg, plumeHeight)
	if math.IsNaN(x) {
		return math.NaN()
	}

	distance := math.Hypot(x, y)
	bearing := unit.PMod(rad2deg(math.Atan2(x, y)), 360)

	lat2, lon2 := destination(loc.Latitude, loc.Longitude, distance, bearing)
	return gpsBearing(lat2, lon2, source.Latitude, source.Longitude)
}

// plumeHeightFor returns the plume height (meters above the instrument)
// implied by an assumed wind direction and an instrument's observed
// plume-centre angle, or NaN if the sight line is near-parallel to the
// source-wind plane (spec.md §4.4 "Single-instrument mode (known wind)").
// Grounded on GeometryCalculator::GetPlumeHeight.
func plumeHeightFor(loc *ppp.InstrumentLocation, windDirection float64, source Source) func(plumeCentreDeg float64) float64 {
	distanceToSource := gpsDistance(loc.Latitude, loc.Longitude, source.Latitude, source.Longitude)
	bearingToSource := gpsBearing(loc.Latitude, loc.Longitude, source.Latitude, source.Longitude)
	sourceInFrame := rotateByCompass(Vector3{
		X: distanceToSource * math.Sin(deg2rad(bearingToSource)),
		Y: distanceToSource * math.Cos(deg2rad(bearingToSource)),
	}, -loc.Compass)

	sinWD := math.Sin(deg2rad(windDirection - loc.Compass))
	cosWD := math.Cos(deg2rad(windDirection - loc.Compass))

	return func(plumeCentreDeg float64) float64 {
		v := sightVector(loc, plumeCentreDeg)
		denom := v.X*sinWD - v.Y*cosWD
		if math.Abs(denom) < 1e-3 {
			return math.NaN()
		}
		return (sourceInFrame.X*sinWD - sourceInFrame.Y*cosWD) / denom
	}
}

// SingleKnownWind implements spec.md §4.4 "Single-instrument mode (known
// wind)": intersects the sight line at plumeCentreDeg with the plane
// through source containing the wind vector, returning the plume
// altitude above sea level.
func SingleKnownWind(loc *ppp.InstrumentLocation, plumeCentreDeg float64, wind ppp.WindField, source Source) (ppp.GeometryResult, error) {
	if math.IsNaN(plumeCentreDeg) {
		return ppp.GeometryResult{}, ErrNoPlume
	}

	height := plumeHeightFor(loc, wind.Direction, source)(plumeCentreDeg)
	if math.IsNaN(height) {
		return ppp.GeometryResult{}, ErrDegenerateGeometry
	}

	// WindField carries no error of its own in the shared domain model
	// (that belongs to the database record, not the instantaneous
	// value); spec.md's 5 deg floor is applied with no caller-supplied
	// estimate to widen it.
	windDirErr := 5.0
	hPlus := plumeHeightFor(loc, wind.Direction+windDirErr, source)(plumeCentreDeg)
	hMinus := plumeHeightFor(loc, wind.Direction-windDirErr, source)(plumeCentreDeg)
	altErr := math.Abs(hPlus-hMinus) / 2

	return ppp.GeometryResult{
		HasAltitude:   true,
		Altitude:      height + loc.Altitude,
		AltitudeError: altErr,
		Serial1:       loc.Serial,
		PlumeCentre1:  plumeCentreDeg,
	}, nil
}

// SingleKnownAltitude implements spec.md §4.4 "Single-instrument mode
// (known altitude)": projects the sight line onto the ground plane at
// the given absolute altitude and returns the implied wind direction.
func SingleKnownAltitude(loc *ppp.InstrumentLocation, plumeCentreDeg, plumeCentreError, plumeAltitudeASL float64, source Source) (ppp.GeometryResult, error) {
	if math.IsNaN(plumeCentreDeg) {
		return ppp.GeometryResult{}, ErrNoPlume
	}
	height := plumeAltitudeASL - loc.Altitude
	if height <= 0 {
		return ppp.GeometryResult{}, ErrDegenerateGeometry
	}

	wd := windDirectionFor(loc, plumeCentreDeg, height, source)
	if math.IsNaN(wd) {
		return ppp.GeometryResult{}, ErrDegenerateGeometry
	}

	wdPlusPC := windDirectionFor(loc, plumeCentreDeg+plumeCentreError, height, source)
	wdMinusPC := windDirectionFor(loc, plumeCentreDeg-plumeCentreError, height, source)
	wdErr := wrapAngleDifference(wdPlusPC, wdMinusPC) / 2

	return ppp.GeometryResult{
		HasWindDirection:   true,
		WindDirection:      wd,
		WindDirectionError: wdErr,
		Serial1:            loc.Serial,
		PlumeCentre1:       plumeCentreDeg,
		PlumeCentre1Error:  plumeCentreError,
	}, nil
}

// TwoScanInput bundles one instrument's contribution to a two-scan
// fuzzy altitude/wind-direction solve.
type TwoScanInput struct {
	Location         *ppp.InstrumentLocation
	PlumeCentre      float64
	PlumeCentreError float64
	StartTime        time.Time
}

// TwoScan implements spec.md §4.4 "Two-scan plume height + wind
// direction (fuzzy)" and its perturbation-based error model. Grounded on
// GeometryCalculator::GetPlumeHeight_Fuzzy.
func TwoScan(a, b TwoScanInput, source Source) (ppp.GeometryResult, error) {
	if math.IsNaN(a.PlumeCentre) || math.IsNaN(b.PlumeCentre) {
		return ppp.GeometryResult{}, ErrNoPlume
	}
	if horizontalParallel(sightVector(a.Location, a.PlumeCentre), sightVector(b.Location, b.PlumeCentre)) {
		return ppp.GeometryResult{}, ErrDegenerateGeometry
	}

	altitude, windDir, err := solveFuzzy(a, b, source)
	if err != nil {
		return ppp.GeometryResult{}, err
	}

	// Perturbation error model: re-solve with each instrument's
	// plume-centre angle perturbed by +/- its centre error (four corner
	// cases), average the absolute deviations.
	var altDevs, dirDevs []float64
	for _, da := range []float64{-a.PlumeCentreError, a.PlumeCentreError} {
		for _, db := range []float64{-b.PlumeCentreError, b.PlumeCentreError} {
			pa := a
			pa.PlumeCentre += da
			pb := b
			pb.PlumeCentre += db
			pAlt, pDir, perr := solveFuzzy(pa, pb, source)
			if perr != nil {
				continue
			}
			altDevs = append(altDevs, math.Abs(pAlt-altitude))
			dirDevs = append(dirDevs, wrapAngleDifference(pDir, windDir))
		}
	}

	altErr := mean(altDevs)
	dirErr := mean(dirDevs)

	// Scale the altitude error by 2^(dt/30min); the rationale for this
	// factor is not stated in the original implementation, so it is
	// preserved as-is behind this named constant (spec.md §9 open
	// questions).
	dt := b.StartTime.Sub(a.StartTime)
	if dt < 0 {
		dt = -dt
	}
	altErr *= math.Pow(2, dt.Minutes()/altitudeErrorHalfLifeMinutes)

	lowerAltitude := math.Min(a.Location.Altitude, b.Location.Altitude)
	avgStart := a.StartTime.Add(b.StartTime.Sub(a.StartTime) / 2)

	return ppp.GeometryResult{
		HasAltitude:         true,
		Altitude:            altitude + lowerAltitude,
		AltitudeError:       altErr,
		HasWindDirection:    true,
		WindDirection:       windDir,
		WindDirectionError:  dirErr,
		StartTime:           avgStart,
		StartTimeDifference: dt,
		Serial1:             a.Location.Serial,
		Serial2:             b.Location.Serial,
		PlumeCentre1:        a.PlumeCentre,
		PlumeCentre1Error:   a.PlumeCentreError,
		PlumeCentre2:        b.PlumeCentre,
		PlumeCentre2Error:   b.PlumeCentreError,
	}, nil
}

// TwoScanExact implements GeometryCalculator::GetPlumeHeight_Exact: the
// plume height (no wind direction) derived purely from the closest
// approach of the two instruments' plume-centre sight rays, with no
// dependence on an assumed source position or wind. This entry point
// was dropped from the distilled two-scan description in favor of the
// wind-direction-matching TwoScan/solveFuzzy, but the original carries
// both side by side as independent ways to derive a two-scan altitude;
// it is kept here as a cheap geometry-only cross-check that needs
// neither a volcano source position nor the iterative search TwoScan
// runs. Uses intersect.go's maxHitDistance (40 m) as the non-meeting-ray
// tolerance in place of the original's literal 20 m, per spec.md §4.4's
// one stated figure.
func TwoScanExact(a, b TwoScanInput) (ppp.GeometryResult, error) {
	if math.IsNaN(a.PlumeCentre) || math.IsNaN(b.PlumeCentre) {
		return ppp.GeometryResult{}, ErrNoPlume
	}

	lower, upper := lowerUpper(a, b)

	frame := newLocalFrame(*lower.Location)
	rLower := ray{origin: frame.location(*lower.Location), direction: sightLineCommonFrame(lower.Location, lower.PlumeCentre)}
	rUpper := ray{origin: frame.location(*upper.Location), direction: sightLineCommonFrame(upper.Location, upper.PlumeCentre)}

	point, _, ok := closestApproach(rLower, rUpper)
	if !ok {
		return ppp.GeometryResult{}, ErrDegenerateGeometry
	}

	avgStart := a.StartTime.Add(b.StartTime.Sub(a.StartTime) / 2)
	dt := b.StartTime.Sub(a.StartTime)
	if dt < 0 {
		dt = -dt
	}
	return ppp.GeometryResult{
		HasAltitude:         true,
		Altitude:            point.Z + lower.Location.Altitude,
		StartTime:           avgStart,
		StartTimeDifference: dt,
		Serial1:             a.Location.Serial,
		Serial2:             b.Location.Serial,
		PlumeCentre1:        a.PlumeCentre,
		PlumeCentre1Error:   a.PlumeCentreError,
		PlumeCentre2:        b.PlumeCentre,
		PlumeCentre2Error:   b.PlumeCentreError,
	}, nil
}

// altitudeErrorHalfLifeMinutes is the named constant for the
// altitude-error time-scaling factor of spec.md §4.4 ("Error model").
const altitudeErrorHalfLifeMinutes = 30.0

const (
	initialStep        = 10.0
	lineSearchDampen   = 0.5
	maxLineSearchTries = 1000
	maxOuterIterations = 100
	convergenceDegrees = 1.0
)

// solveFuzzy runs the damped-Newton altitude search of
// GetPlumeHeight_Fuzzy: the local frame is centered at the lower of the
// two instruments, and the solved height is relative to it.
func solveFuzzy(a, b TwoScanInput, source Source) (altitude, windDirection float64, err error) {
	lower, upper := lowerUpper(a, b)
	heightDiff := upper.Location.Altitude - lower.Location.Altitude

	guess := 1000.0
	if lower.Location.Altitude > 0 && source.Altitude > 0 {
		guess = math.Min(5000, math.Max(0, source.Altitude-lower.Location.Altitude))
	}

	f := func(h float64) (diff, wdLower, wdUpper float64) {
		wdLower = windDirectionFor(lower.Location, lower.PlumeCentre, h, source)
		wdUpper = windDirectionFor(upper.Location, upper.PlumeCentre, h-heightDiff, source)
		return wrapAngleDifference(wdLower, wdUpper), wdLower, wdUpper
	}

	for outer := 0; outer < maxOuterIterations; outer++ {
		fh, wd1, wd2 := f(guess)
		if fh < convergenceDegrees {
			return guess, (wd1 + wd2) / 2, nil
		}

		fPlus, wd1p, wd2p := f(guess + initialStep)
		if fPlus < convergenceDegrees {
			return guess + initialStep, (wd1p + wd2p) / 2, nil
		}

		deriv := (fPlus - fh) / initialStep
		if deriv == 0 {
			return 0, 0, ErrDegenerateGeometry
		}

		alpha := lineSearchDampen
		newGuess := guess - alpha*fh/deriv
		fNew, wd1n, wd2n := f(newGuess)

		for tries := 0; fNew > fh; tries++ {
			if tries >= maxLineSearchTries {
				return 0, 0, ErrNonConvergence
			}
			alpha /= 2
			newGuess = guess - alpha*fh/deriv
			fNew, wd1n, wd2n = f(newGuess)
		}

		if fNew < convergenceDegrees {
			return newGuess, (wd1n + wd2n) / 2, nil
		}
		guess = newGuess
	}

	return 0, 0, ErrNonConvergence
}

// lowerUpper orders a pair of two-scan inputs by instrument altitude,
// the local-frame convention solveFuzzy and TwoScanExact share.
func lowerUpper(a, b TwoScanInput) (lower, upper TwoScanInput) {
	if b.Location.Altitude < a.Location.Altitude {
		return b, a
	}
	return a, b
}

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
