package pipeline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ppp "github.com/novacppp/novacppp"
	"github.com/novacppp/novacppp/config"
	"github.com/novacppp/novacppp/plumedb"
	"github.com/novacppp/novacppp/rawscan"
	"github.com/novacppp/novacppp/stats"
	"github.com/novacppp/novacppp/winddb"
)

func TestRunRequiresOpener(t *testing.T) {
	_, err := Run(Options{})
	assert.ErrorIs(t, err, ErrNoOpener)
}

func TestRunRejectsInvalidConfiguration(t *testing.T) {
	_, err := Run(Options{Open: func(string) (rawscan.Source, error) { return nil, nil }})
	assert.Error(t, err)
}

func masaya() ppp.Volcano {
	return ppp.Volcano{Code: "1501-07", Name: "Masaya", PeakLatitude: 11.984, PeakLongitude: -86.161, PeakAltitude: 635}
}

func TestSeedPlumeHeightUsesHighestMatchingInstrument(t *testing.T) {
	setup := &config.Setup{
		Instruments: []config.InstrumentConfig{
			{Serial: "D2J2008", Locations: []ppp.InstrumentLocation{{Serial: "D2J2008", Volcano: "Masaya", Altitude: 400}}},
			{Serial: "I2J2008", Locations: []ppp.InstrumentLocation{{Serial: "I2J2008", Volcano: "Masaya", Altitude: 500}}},
		},
	}

	plumes := &plumedb.DataBase{}
	seedPlumeHeight(plumes, setup, masaya())

	height, ok := plumes.At(time.Now())
	require.True(t, ok)
	assert.Equal(t, 635.0, height.Altitude)
	assert.Equal(t, ppp.WindDefault, height.Source)
	assert.InDelta(t, (635.0-500.0)/2, height.Error, 1e-9)
}

func TestSeedPlumeHeightFallsBackWhenNoInstrumentMatchesVolcano(t *testing.T) {
	setup := &config.Setup{
		Instruments: []config.InstrumentConfig{
			{Serial: "D2J2008", Locations: []ppp.InstrumentLocation{{Serial: "D2J2008", Volcano: "Etna", Altitude: 3000}}},
		},
	}

	plumes := &plumedb.DataBase{}
	seedPlumeHeight(plumes, setup, masaya())

	height, ok := plumes.At(time.Now())
	require.True(t, ok)
	assert.InDelta(t, 635.0/2, height.Error, 1e-9)
}

func TestCandidateForGeometryRequiresFluxModeAndCompleteness(t *testing.T) {
	good := ppp.ExtendedScanResult{
		ScanResult: ppp.ScanResult{Mode: ppp.ModeFlux},
		Plume:      ppp.PlumeInScanProperty{Centre: 10, Completeness: 0.8},
	}
	assert.True(t, candidateForGeometry(&good, 0.7))

	wrongMode := good
	wrongMode.Mode = ppp.ModeWindSpeed
	assert.False(t, candidateForGeometry(&wrongMode, 0.7))

	lowCompleteness := good
	lowCompleteness.Plume.Completeness = 0.5
	assert.False(t, candidateForGeometry(&lowCompleteness, 0.7))

	noPlume := good
	noPlume.Plume = ppp.NoPlume()
	assert.False(t, candidateForGeometry(&noPlume, 0.7))
}

func TestInheritedSpeedReturnsZeroWhenNoRecordCoversTime(t *testing.T) {
	wind := &winddb.DataBase{}
	speed, speedErr := inheritedSpeed(wind, time.Now())
	assert.Zero(t, speed)
	assert.Zero(t, speedErr)
}

func TestInheritedSpeedCarriesOverExistingRecord(t *testing.T) {
	wind := &winddb.DataBase{}
	now := time.Now()
	wind.Insert(winddb.Record{Field: ppp.WindField{Speed: 4.5, Source: ppp.WindWrf}, SpeedError: 0.5})

	speed, speedErr := inheritedSpeed(wind, now)
	assert.Equal(t, 4.5, speed)
	assert.Equal(t, 0.5, speedErr)
}

func fluxReadyScan(serial string, t time.Time, completeness float64) ppp.ExtendedScanResult {
	return ppp.ExtendedScanResult{
		ScanResult: ppp.ScanResult{
			Serial: serial,
			Mode:   ppp.ModeFlux,
			Sky:    ppp.Spectrum{StartTime: t},
			Spectra: []ppp.EvaluatedSpectrum{
				{Info: ppp.SpectrumInfo{Angle: -10, StartTime: t, IsGoodPoint: true}, Result: ppp.EvaluationResult{IsOk: true, References: []ppp.ReferenceResult{{Name: "SO2", Column: 100}}}},
				{Info: ppp.SpectrumInfo{Angle: 10, StartTime: t, IsGoodPoint: true}, Result: ppp.EvaluationResult{IsOk: true, References: []ppp.ReferenceResult{{Name: "SO2", Column: 50}}}},
			},
		},
		Plume: ppp.PlumeInScanProperty{Centre: 0, CentreAzimuth: 0, Completeness: completeness},
	}
}

func fluxReadySetup(serial string, altitude float64) *config.Setup {
	return &config.Setup{
		Instruments: []config.InstrumentConfig{
			{
				Serial: serial,
				Locations: []ppp.InstrumentLocation{
					{Serial: serial, Volcano: "Masaya", Altitude: altitude, ConeAngle: 90},
				},
				FitWindows: []ppp.FitWindow{
					{Name: "main", References: []ppp.Reference{{Name: "SO2"}}},
				},
			},
		},
	}
}

func TestIntegrateFluxRejectsLowCompleteness(t *testing.T) {
	now := time.Now()
	results := []ppp.ExtendedScanResult{fluxReadyScan("D2J2008", now, 0.2)}
	opts := Options{Setup: fluxReadySetup("D2J2008", 400), User: config.UserConfiguration{CompletenessLimitFlux: 0.9}}

	wind := &winddb.DataBase{}
	wind.Insert(winddb.Record{Field: ppp.WindField{Speed: 5, Direction: 90, Source: ppp.WindWrf}})
	plumes := &plumedb.DataBase{}
	plumes.Insert(ppp.PlumeHeight{Altitude: 1000, Source: ppp.WindGeometryCalc})

	st := &stats.Statistics{}
	entries := integrateFlux(results, opts, wind, plumes, st)

	assert.Empty(t, entries)
	assert.Equal(t, 1, st.QualityRejections(stats.LowCompleteness))
	assert.Equal(t, stats.LowCompleteness.String(), results[0].Rejected)
}

func TestIntegrateFluxRejectsPlumeBelowInstrument(t *testing.T) {
	now := time.Now()
	results := []ppp.ExtendedScanResult{fluxReadyScan("D2J2008", now, 0.95)}
	opts := Options{Setup: fluxReadySetup("D2J2008", 2000), User: config.UserConfiguration{CompletenessLimitFlux: 0.9}}

	wind := &winddb.DataBase{}
	wind.Insert(winddb.Record{Field: ppp.WindField{Speed: 5, Direction: 90, Source: ppp.WindWrf}})
	plumes := &plumedb.DataBase{}
	plumes.Insert(ppp.PlumeHeight{Altitude: 1000, Source: ppp.WindGeometryCalc})

	st := &stats.Statistics{}
	entries := integrateFlux(results, opts, wind, plumes, st)

	assert.Empty(t, entries)
	assert.Equal(t, 1, st.QualityRejections(stats.PlumeBelowInstrument))
}

func TestIntegrateFluxProducesEntryForQualifyingScan(t *testing.T) {
	now := time.Now()
	results := []ppp.ExtendedScanResult{fluxReadyScan("D2J2008", now, 0.95)}
	opts := Options{Setup: fluxReadySetup("D2J2008", 400), User: config.UserConfiguration{CompletenessLimitFlux: 0.9}}

	wind := &winddb.DataBase{}
	wind.Insert(winddb.Record{Field: ppp.WindField{Speed: 5, Direction: 90, Source: ppp.WindWrf}, SpeedError: 1})
	plumes := &plumedb.DataBase{}
	plumes.Insert(ppp.PlumeHeight{Altitude: 1000, Source: ppp.WindGeometryCalc})

	st := &stats.Statistics{}
	entries := integrateFlux(results, opts, wind, plumes, st)

	require.Len(t, entries, 1)
	assert.Equal(t, 1, st.FluxResults())
	assert.NotNil(t, results[0].Flux)
	assert.Equal(t, "D2J2008", entries[0].Result.Serial)
}
