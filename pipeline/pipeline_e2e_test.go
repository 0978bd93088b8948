package pipeline

import (
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ppp "github.com/novacppp/novacppp"
	"github.com/novacppp/novacppp/config"
	"github.com/novacppp/novacppp/rawscan"
)

// e2eCrossSection/e2eFitWindow/e2eScan reproduce the synthetic flat-scan
// shape scan/evaluate_test.go's flatScanWindow/buildFlatScan build for
// EvaluateScan's own happy-path test, parameterized here by serial/start
// time so a raw file discovered on disk can be evaluated through the
// real DOAS-fit/plume-analysis path by a single top-level Run call.
func e2eCrossSection(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		x := float64(i)
		out[i] = math.Sin(x/7) + 0.2*math.Sin(x/3)
	}
	return out
}

func e2eFitWindow(crossSection []float64) *ppp.FitWindow {
	n := len(crossSection)
	return &ppp.FitWindow{
		Name: "so2",
		References: []ppp.Reference{
			{Name: "SO2", CrossSection: crossSection, Column: ppp.FreePolicy(), Shift: ppp.FixedPolicy(0), Squeeze: ppp.FixedPolicy(1)},
		},
		PolyOrder:       1,
		Fit:             ppp.ChannelRange{Low: 0, High: n},
		Length:          n,
		Mode:            ppp.NoPrecondition,
		FraunhoferIndex: -1,
	}
}

func e2eScan(serial string, crossSection []float64, start time.Time) *rawscan.Fake {
	const n = 64
	measurements := make([]ppp.Spectrum, 45)
	for i := range measurements {
		angle := -60 + float64(i)*(120.0/44.0)
		column := 500 * math.Exp(-math.Pow((angle-10)/20, 2))

		intensities := make([]float64, n)
		for k := range intensities {
			intensities[k] = 30000 + column*crossSection[k]
		}
		measurements[i] = ppp.Spectrum{
			Intensities:   intensities,
			StartTime:     start.Add(time.Duration(i) * time.Minute),
			StopTime:      start.Add(time.Duration(i)*time.Minute + 10*time.Second),
			Angle:         angle,
			Serial:        serial,
			PeakIntensity: 30000,
		}
	}

	return &rawscan.Fake{
		SkySpectrum:        ppp.Spectrum{Intensities: make([]float64, n), StartTime: start, PeakIntensity: 30000},
		MeasurementSpectra: measurements,
		SerialValue:        serial,
		ModeValue:          ppp.ModeFlux,
		TypeValue:          ppp.Gothenburg,
	}
}

// TestRunProducesFluxAndGeometryResultsEndToEnd exercises Run's whole
// top-level sequence (spec.md §4.6) with one real discovered raw file: it
// is evaluated through the actual DOAS fit and plume analyzer, falls back
// to a single-instrument geometry solve (no second scan to pair with, but
// a default plume height is seeded from the volcano's peak altitude), and
// is integrated into a flux result that lands in every persisted output.
func TestRunProducesFluxAndGeometryResultsEndToEnd(t *testing.T) {
	localDir := t.TempDir()
	outputDir := t.TempDir()

	require.NoError(t, os.WriteFile(filepath.Join(localDir, "A.pak"), []byte("a"), 0o644))

	crossSection := e2eCrossSection(64)
	window := e2eFitWindow(crossSection)

	start := time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)
	fake := e2eScan("A", crossSection, start)
	opener := func(path string) (rawscan.Source, error) { return fake, nil }

	volcano := ppp.Volcano{Name: "Soloatoa", PeakLatitude: 0.05, PeakLongitude: 0.05, PeakAltitude: 2500}

	setup := &config.Setup{Instruments: []config.InstrumentConfig{
		{
			Serial:     "A",
			Locations:  []ppp.InstrumentLocation{{Serial: "A", Latitude: 0, Longitude: 0, Altitude: 0, Compass: 0, ConeAngle: 90, Volcano: volcano.Name}},
			FitWindows: []ppp.FitWindow{*window},
		},
	}}

	u := config.DefaultUserConfiguration()
	u.Volcano = volcano.Name
	u.FromDate = time.Now().Add(-24 * time.Hour)
	u.ToDate = time.Now().Add(24 * time.Hour)
	u.LocalDirectory = localDir
	u.OutputDirectory = outputDir
	u.TempDirectory = t.TempDir()
	u.CompletenessLimitFlux = 0.5

	opts := Options{Setup: setup, User: u, Volcano: volcano, Open: opener}

	summary, err := Run(opts)
	require.NoError(t, err)

	assert.Equal(t, 1, summary.FilesProcessed)
	assert.Equal(t, 0, summary.IOErrors)
	assert.Equal(t, 1, summary.GeometryResults)
	assert.Equal(t, 1, summary.FluxResults)

	assert.FileExists(t, summary.FluxTextPath)
	assert.FileExists(t, summary.FluxXMLPath)
	assert.FileExists(t, summary.GeometryLogPath)
	assert.FileExists(t, summary.StatisticsPath)
	assert.FileExists(t, filepath.Join(outputDir, "StatusLog.txt"))
}

// TestRunIsAContinuationOnASecondIdenticalPass implements spec.md §8
// scenario 6: rerunning Run against the same output directory with
// byte-identical configuration reuses the first pass's evaluation logs
// (stats.ScansReused) rather than re-fitting, and produces the same
// flux result count.
func TestRunIsAContinuationOnASecondIdenticalPass(t *testing.T) {
	localDir := t.TempDir()
	outputDir := t.TempDir()

	require.NoError(t, os.WriteFile(filepath.Join(localDir, "A.pak"), []byte("a"), 0o644))

	crossSection := e2eCrossSection(64)
	window := e2eFitWindow(crossSection)

	start := time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)
	fake := e2eScan("A", crossSection, start)
	opener := func(path string) (rawscan.Source, error) { return fake, nil }

	volcano := ppp.Volcano{Name: "Soloatoa", PeakLatitude: 0.05, PeakLongitude: 0.05, PeakAltitude: 2500}

	setup := &config.Setup{Instruments: []config.InstrumentConfig{
		{
			Serial:     "A",
			Locations:  []ppp.InstrumentLocation{{Serial: "A", Latitude: 0, Longitude: 0, Altitude: 0, Compass: 0, ConeAngle: 90, Volcano: volcano.Name}},
			FitWindows: []ppp.FitWindow{*window},
		},
	}}

	u := config.DefaultUserConfiguration()
	u.Volcano = volcano.Name
	u.FromDate = time.Now().Add(-24 * time.Hour)
	u.ToDate = time.Now().Add(24 * time.Hour)
	u.LocalDirectory = localDir
	u.OutputDirectory = outputDir
	u.TempDirectory = t.TempDir()
	u.CompletenessLimitFlux = 0.5

	configXML := ConfigSnapshot{Setup: []byte("<setup/>"), Processing: []byte("<processing/>")}
	opts := Options{Setup: setup, User: u, Volcano: volcano, Open: opener, ConfigXML: configXML}

	first, err := Run(opts)
	require.NoError(t, err)
	assert.Equal(t, 0, first.ScansReused)

	second, err := Run(opts)
	require.NoError(t, err)
	assert.Equal(t, 1, second.ScansReused)
	assert.Equal(t, second.FluxResults, first.FluxResults)
}
