package config

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ppp "github.com/novacppp/novacppp"
)

func TestCatalogFindMatchesAliasCaseInsensitively(t *testing.T) {
	catalog := &Catalog{Volcanoes: []ppp.Volcano{
		{Code: "1234-01", Name: "Masaya", SimplifiedName: "masaya", Aliases: []string{"Santiago"}},
	}}

	v, err := catalog.Find("SANTIAGO")
	require.NoError(t, err)
	assert.Equal(t, "Masaya", v.Name)

	_, err = catalog.Find("Unknown Peak")
	assert.ErrorIs(t, err, ErrUnknownVolcano)
}

func TestCheckNonOverlappingDetectsOverlap(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	ok := []ppp.InstrumentLocation{
		{From: base, To: base.Add(24 * time.Hour)},
		{From: base.Add(24 * time.Hour), To: base.Add(48 * time.Hour)},
	}
	assert.NoError(t, CheckNonOverlapping(ok))

	overlapping := []ppp.InstrumentLocation{
		{From: base, To: base.Add(25 * time.Hour)},
		{From: base.Add(24 * time.Hour), To: base.Add(48 * time.Hour)},
	}
	assert.ErrorIs(t, CheckNonOverlapping(overlapping), ErrOverlappingInterval)
}

func TestCheckNonOverlappingRejectsUnboundedBeforeLast(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	locations := []ppp.InstrumentLocation{
		{From: base}, // open-ended, but not the last interval
		{From: base.Add(24 * time.Hour), To: base.Add(48 * time.Hour)},
	}
	assert.ErrorIs(t, CheckNonOverlapping(locations), ErrOverlappingInterval)
}

func TestSetupValidateRejectsDuplicateSerial(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	setup := &Setup{Instruments: []InstrumentConfig{
		{Serial: "D2J2124", Locations: []ppp.InstrumentLocation{{From: base}}},
		{Serial: "D2J2124", Locations: []ppp.InstrumentLocation{{From: base}}},
	}}
	assert.ErrorIs(t, setup.Validate(), ErrDuplicateInstrument)
}

func TestInstrumentLocationResolvesByTime(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	setup := &Setup{Instruments: []InstrumentConfig{
		{Serial: "A", Locations: []ppp.InstrumentLocation{
			{Serial: "A", From: base, To: base.Add(24 * time.Hour), Altitude: 100},
			{Serial: "A", From: base.Add(24 * time.Hour), Altitude: 200},
		}},
	}}

	loc, err := setup.InstrumentLocation("A", base.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 100.0, loc.Altitude)

	loc, err = setup.InstrumentLocation("A", base.Add(30*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 200.0, loc.Altitude)

	_, err = setup.InstrumentLocation("missing", base)
	assert.ErrorIs(t, err, ErrInstrumentNotFound)
}

func TestCalibrationWindowWrapsPastMidnight(t *testing.T) {
	w := CalibrationWindow{FromHour: 22, ToHour: 4}
	assert.True(t, w.Contains(23))
	assert.True(t, w.Contains(2))
	assert.False(t, w.Contains(12))

	assert.True(t, DefaultCalibrationWindow().Contains(0))
	assert.True(t, DefaultCalibrationWindow().Contains(23))
}

func TestApplyFlagsParsesDatesAndVolcano(t *testing.T) {
	catalog := &Catalog{Volcanoes: []ppp.Volcano{{Code: "V1", Name: "Villarrica"}}}
	cfg := DefaultUserConfiguration()

	err := ApplyFlags(&cfg, catalog, map[string]string{
		"fromdate":             "2026.01.01",
		"todate":               "2026-01-31",
		"volcano":              "V1",
		"maxthreadnum":         "0",
		"includesubdirs_local": "1",
		"outputdirectory":      "/tmp/out",
		"mode":                 "geometry",
		"molecule":             "BrO",
	})
	require.NoError(t, err)

	assert.Equal(t, 2026, cfg.FromDate.Year())
	assert.Equal(t, 31, cfg.ToDate.Day())
	assert.Equal(t, "Villarrica", cfg.Volcano)
	assert.Equal(t, 1, cfg.MaxThreadNum)
	assert.True(t, cfg.IncludeSubdirsLocal)
	assert.True(t, strings.HasSuffix(cfg.OutputDirectory, "/"))
	assert.Equal(t, ModeGeometry, cfg.Mode)
	assert.Equal(t, MoleculeBrO, cfg.Molecule)
}

func TestApplyFlagRejectsUnknownVolcano(t *testing.T) {
	catalog := &Catalog{}
	cfg := DefaultUserConfiguration()
	err := ApplyFlag(&cfg, catalog, "volcano", "Nonexistent")
	assert.ErrorIs(t, err, ErrUnknownVolcano)
}

func TestParseSetupDecodesInstrumentsAndLocations(t *testing.T) {
	doc := `<NovacPPPSetup>
  <instrument serial="D2J2124">
    <location from="2026-01-01T00:00:00" latitude="95.0" longitude="185.0" altitude="1200" compass="90" coneangle="90" tilt="0" type="gothenburg" volcano="Villarrica"/>
  </instrument>
</NovacPPPSetup>`

	setup, err := ParseSetup(strings.NewReader(doc), "/opt/novacppp")
	require.NoError(t, err)
	require.Len(t, setup.Instruments, 1)

	loc := setup.Instruments[0].Locations[0]
	assert.Equal(t, "D2J2124", loc.Serial)
	assert.Equal(t, 5.0, loc.Latitude)
	assert.Equal(t, -175.0, loc.Longitude)
	assert.Equal(t, ppp.Gothenburg, loc.Type)
}

func TestParseInstrumentExmlDecodesFitWindowsAndDark(t *testing.T) {
	doc := `<FitWindows>
  <dark mode="model"/>
  <fitwindow name="SO2" polyorder="3" fitlow="320" fithigh="460" length="2048" mode="hp_div">
    <reference name="SO2"/>
    <reference name="Fraunhofer" fraunhofer="true" shiftfixed="true"/>
  </fitwindow>
</FitWindows>`

	fitWindows, dark, err := ParseInstrumentExml(strings.NewReader(doc))
	require.NoError(t, err)
	assert.Equal(t, DarkModeModel, dark.Mode)
	require.Len(t, fitWindows, 1)
	assert.Equal(t, "SO2", fitWindows[0].Name)
	assert.Equal(t, 1, fitWindows[0].FraunhoferIndex)
}

func TestParseUserConfigurationAppliesDefaultsForOmittedFields(t *testing.T) {
	doc := `<processing>
  <Volcano>Villarrica</Volcano>
  <FromDate>2026-01-01</FromDate>
  <ToDate>2026-01-31</ToDate>
  <outputdirectory>/tmp/out</outputdirectory>
  <tempdirectory>/tmp/tmp</tempdirectory>
</processing>`

	cfg, err := ParseUserConfiguration(strings.NewReader(doc))
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.MaxThreadNum) // default preserved
	assert.Equal(t, ModeFlux, cfg.Mode)
	assert.Equal(t, 0.9, cfg.CompletenessLimitFlux)
	assert.True(t, strings.HasSuffix(cfg.OutputDirectory, "/"))
}
