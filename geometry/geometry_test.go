package geometry

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ppp "github.com/novacppp/novacppp"
)

func flatInstrument(serial string, lat, lon, alt, compass float64) *ppp.InstrumentLocation {
	return &ppp.InstrumentLocation{
		Serial:    serial,
		Latitude:  lat,
		Longitude: lon,
		Altitude:  alt,
		Compass:   compass,
		ConeAngle: 90,
	}
}

// angleMatchingWindDirection grid-searches for the scan angle at which
// windDirectionFor(loc, angle, height, source) matches target, the
// inverse of the same function solveFuzzy's Newton search calls. Used
// to build a two-scan scenario that f(height) is known to be (near)
// zero at by construction, rather than asserting it analytically.
func angleMatchingWindDirection(loc *ppp.InstrumentLocation, height, target float64, source Source) float64 {
	best, bestDiff := 0.0, math.Inf(1)
	for angle := -89.0; angle <= 89.0; angle += 0.02 {
		wd := windDirectionFor(loc, angle, height, source)
		if math.IsNaN(wd) {
			continue
		}
		if diff := wrapAngleDifference(wd, target); diff < bestDiff {
			bestDiff, best = diff, angle
		}
	}
	return best
}

// TestTwoScanRecoversWindMatchedAltitude reproduces spec.md §8 scenario
// 3: two flat scanners 2 km apart at the same altitude, compasses 90
// degrees apart, constructed (via angleMatchingWindDirection) so that
// both imply the same wind direction at the same true altitude.
func TestTwoScanRecoversWindMatchedAltitude(t *testing.T) {
	source := Source{Latitude: 0.05, Longitude: 0.05, Altitude: 2500}

	a := flatInstrument("A", 0, 0, 0, 0)
	_, lonSF := newWGS84Coefficients().metersPerDegree(0)
	b := flatInstrument("B", 0, 2000/lonSF, 0, 90)

	const trueHeight = 1200.0
	const angleA = 10.0

	trueWindDir := windDirectionFor(a, angleA, trueHeight, source)
	angleB := angleMatchingWindDirection(b, trueHeight, trueWindDir, source)

	aIn := TwoScanInput{
		Location:         a,
		PlumeCentre:      angleA,
		PlumeCentreError: 0.3,
		StartTime:        time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC),
	}
	bIn := TwoScanInput{
		Location:         b,
		PlumeCentre:      angleB,
		PlumeCentreError: 0.3,
		StartTime:        time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC),
	}

	result, err := TwoScan(aIn, bIn, source)
	require.NoError(t, err)
	assert.True(t, result.HasAltitude)
	assert.True(t, result.HasWindDirection)
	assert.InDelta(t, trueHeight, result.Altitude, 60)
	assert.InDelta(t, trueWindDir, result.WindDirection, 2)
	assert.Less(t, result.AltitudeError, 60.0)

	swapped, err := TwoScan(bIn, aIn, source)
	require.NoError(t, err)
	assert.InDelta(t, result.Altitude, swapped.Altitude, 1)
	assert.Less(t, wrapAngleDifference(result.WindDirection, swapped.WindDirection), 0.5)
}

// TestTwoScanParallelSightLinesFails covers the §8 boundary behavior:
// two instruments whose sight lines are horizontally parallel have no
// meaningful triangulation.
func TestTwoScanParallelSightLinesFails(t *testing.T) {
	source := Source{Latitude: 0.05, Longitude: 0.05, Altitude: 2500}
	a := flatInstrument("A", 0, 0, 500, 0)
	_, lonSF := newWGS84Coefficients().metersPerDegree(0)
	b := flatInstrument("B", 0, 2000/lonSF, 500, 0)

	aIn := TwoScanInput{Location: a, PlumeCentre: 12, PlumeCentreError: 0.3}
	bIn := TwoScanInput{Location: b, PlumeCentre: 12, PlumeCentreError: 0.3}

	_, err := TwoScan(aIn, bIn, source)
	assert.ErrorIs(t, err, ErrDegenerateGeometry)
}

// TestTwoScanExactRecoversCollinearIntersection constructs two
// collinear flat scanners (same compass) whose sight lines meet exactly
// at a known 3D point, and checks TwoScanExact recovers its height.
func TestTwoScanExactRecoversCollinearIntersection(t *testing.T) {
	a := flatInstrument("A", 0, 0, 0, 0)
	latSF, _ := newWGS84Coefficients().metersPerDegree(0)
	b := flatInstrument("B", -2000/latSF, 0, 50, 0)

	// Target point, in the frame centered at A: 1000 m south, 1200 m up.
	plumeDY, plumeDZ := -1000.0, 1200.0
	angleA := rad2deg(math.Atan2(plumeDY, plumeDZ))

	// Relative to B (at ENU offset (0, -2000, 50)):
	bDY, bDZ := plumeDY-(-2000), plumeDZ-50
	angleB := rad2deg(math.Atan2(bDY, bDZ))

	aIn := TwoScanInput{Location: a, PlumeCentre: angleA}
	bIn := TwoScanInput{Location: b, PlumeCentre: angleB}

	result, err := TwoScanExact(aIn, bIn)
	require.NoError(t, err)
	assert.True(t, result.HasAltitude)
	assert.False(t, result.HasWindDirection)
	assert.InDelta(t, 1200.0, result.Altitude, 1.0)
}

func TestNormalizeLatitudeWraps(t *testing.T) {
	assert.InDelta(t, 5.0, NormalizeLatitude(95), 1e-9)
	assert.InDelta(t, 10.0, NormalizeLatitude(10), 1e-9)
	// Only the `> 90` branch is folded, matching the ported original:
	// negative overflow passes through unchanged.
	assert.InDelta(t, -95.0, NormalizeLatitude(-95), 1e-9)
}

func TestNormalizeLongitudeWraps(t *testing.T) {
	assert.InDelta(t, -170.0, NormalizeLongitude(190), 1e-9)
	assert.InDelta(t, 10.0, NormalizeLongitude(10), 1e-9)
}

func TestSingleKnownWindRejectsMissingPlume(t *testing.T) {
	a := flatInstrument("A", 0, 0, 500, 0)
	source := Source{Latitude: 0.05, Longitude: 0.05, Altitude: 2500}
	_, err := SingleKnownWind(a, math.NaN(), ppp.WindField{Direction: 225, Speed: 5}, source)
	assert.ErrorIs(t, err, ErrNoPlume)
}
