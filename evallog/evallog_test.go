package evallog

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ppp "github.com/novacppp/novacppp"
)

func gothenburgScan(serial string, n int) ppp.ScanResult {
	day := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)
	result := ppp.ScanResult{
		Serial:      serial,
		Mode:        ppp.ModeFlux,
		Type:        ppp.Gothenburg,
		Battery:     12.3,
		Temperature: 21.5,
	}
	result.Sky.StartTime = day

	for i := 0; i < n; i++ {
		t := day.Add(time.Duration(i) * 15 * time.Second)
		result.Spectra = append(result.Spectra, ppp.EvaluatedSpectrum{
			Info: ppp.SpectrumInfo{
				Angle:          -60 + float64(i),
				StartTime:      t,
				StopTime:       t.Add(10 * time.Second),
				Name:           serial + "_" + strconv.Itoa(i),
				SpecSaturation: 30000,
				FitSaturation:  25000,
				Exposure:       200 * time.Millisecond,
				NumSpec:        10,
				Offset:         123.456789,
				IsGoodPoint:    i%7 != 0,
			},
			Result: ppp.EvaluationResult{
				ChiSquare: 0.002,
				Delta:     0.01,
				IsOk:      i%7 != 0,
				References: []ppp.ReferenceResult{
					{Name: "SO2", Column: 500.5, ColumnError: 12.25, Shift: 0.1, ShiftError: 0.01, Squeeze: 1.0, SqueezeError: 0.001},
				},
			},
		})
	}
	return result
}

func TestWriteThenParseRoundTrips(t *testing.T) {
	dir := t.TempDir()
	w := &Writer{Dir: dir}
	window := &ppp.FitWindow{Name: "SO2", References: []ppp.Reference{{Name: "SO2"}}, PolyOrder: 3, Fit: ppp.ChannelRange{Low: 320, High: 460}}

	original := gothenburgScan("D2J2124", 45)
	path, err := w.WriteLog(window, original)
	require.NoError(t, err)

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	parsed, err := Parse(f)
	require.NoError(t, err)

	require.Len(t, parsed.Spectra, len(original.Spectra))
	assert.Equal(t, original.Serial, parsed.Serial)
	assert.Equal(t, original.Mode, parsed.Mode)
	assert.Equal(t, original.Type, parsed.Type)
	assert.InDelta(t, original.Battery, parsed.Battery, 1e-6)
	assert.InDelta(t, original.Temperature, parsed.Temperature, 1e-6)

	for i := range original.Spectra {
		wantInfo := original.Spectra[i].Info
		gotInfo := parsed.Spectra[i].Info
		assert.InDelta(t, wantInfo.Angle, gotInfo.Angle, 1e-6)
		assert.WithinDuration(t, wantInfo.StartTime, gotInfo.StartTime, time.Second)
		assert.WithinDuration(t, wantInfo.StopTime, gotInfo.StopTime, time.Second)
		assert.Equal(t, wantInfo.Name, gotInfo.Name)
		assert.InDelta(t, wantInfo.Offset, gotInfo.Offset, 1e-6)
		assert.Equal(t, wantInfo.IsGoodPoint, gotInfo.IsGoodPoint)
		assert.Equal(t, wantInfo.NumSpec, gotInfo.NumSpec)

		wantRef := original.Spectra[i].Result.References[0]
		gotRef := parsed.Spectra[i].Result.References[0]
		assert.InDelta(t, wantRef.Column, gotRef.Column, 1e-6)
		assert.InDelta(t, wantRef.ColumnError, gotRef.ColumnError, 1e-6)
		assert.InDelta(t, wantRef.Shift, gotRef.Shift, 1e-6)
		assert.InDelta(t, wantRef.Squeeze, gotRef.Squeeze, 1e-6)
	}
}

func TestWriteLogGroupsByDateAndSerial(t *testing.T) {
	dir := t.TempDir()
	w := &Writer{Dir: dir}
	window := &ppp.FitWindow{Name: "SO2", References: []ppp.Reference{{Name: "SO2"}}}

	result := gothenburgScan("D2J2124", 3)
	path, err := w.WriteLog(window, result)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "2026-03-15", "D2J2124_SO2.txt"), path)
	assert.FileExists(t, path)
}

func TestHeaderMatchesCanonicalSO2Layout(t *testing.T) {
	header := headerRow(false, []string{"SO2"})
	assert.Equal(t, []string{
		"scanangle", "starttime", "stoptime", "name", "specsaturation",
		"fitsaturation", "delta", "chisquare", "exposuretime", "numspec",
		"column(SO2)", "columnerror(SO2)", "shift(SO2)", "shifterror(SO2)",
		"squeeze(SO2)", "squeezeerror(SO2)", "isgoodpoint", "offset", "flag",
	}, header)
}

// TestParseCanonicalLog feeds a hand-built log matching spec.md §8
// scenario 5's header exactly, with 52 data rows, and checks the parser
// recovers all of them with scan-information fields populated.
func TestParseCanonicalLog(t *testing.T) {
	var b strings.Builder
	b.WriteString("<scaninformation>\n")
	b.WriteString("serial=D2J2124\n")
	b.WriteString("date=2026.03.15\n")
	b.WriteString("mode=flux\n")
	b.WriteString("type=gothenburg\n")
	b.WriteString("</scaninformation>\n")
	b.WriteString("<fluxinfo>\n")
	b.WriteString("battery=12.1\n")
	b.WriteString("temperature=19.4\n")
	b.WriteString("</fluxinfo>\n")
	b.WriteString("#scanangle\tstarttime\tstoptime\tname\tspecsaturation\tfitsaturation\tdelta\tchisquare\texposuretime\tnumspec\tcolumn(SO2)\tcolumnerror(SO2)\tshift(SO2)\tshifterror(SO2)\tsqueeze(SO2)\tsqueezeerror(SO2)\tisgoodpoint\toffset\tflag\n")
	b.WriteString("<spectraldata>\n")
	for i := 0; i < 52; i++ {
		b.WriteString(strings.Join([]string{
			strconv.Itoa(-60 + i),
			"10.00.0" + strconv.Itoa(i%10),
			"10.00.1" + strconv.Itoa(i%10),
			"spec" + strconv.Itoa(i),
			"30000", "25000", "0.01", "0.002", "0.5", "10",
			"500.0", "10.0", "0.0", "0.01", "1.0", "0.001",
			"1", "0.0", "0",
		}, "\t"))
		b.WriteString("\n")
	}
	b.WriteString("</spectraldata>\n")

	result, err := Parse(strings.NewReader(b.String()))
	require.NoError(t, err)
	assert.Equal(t, "D2J2124", result.Serial)
	assert.Equal(t, ppp.Gothenburg, result.Type)
	require.Len(t, result.Spectra, 52)
	assert.Equal(t, "SO2", result.Spectra[0].Result.References[0].Name)
	assert.Equal(t, 500.0, result.Spectra[0].Result.References[0].Column)
}

func TestParseAcceptsDottedTimeFormat(t *testing.T) {
	date := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)
	ts, err := parseTimeOfDay("10.15.30", date)
	require.NoError(t, err)
	assert.Equal(t, 10, ts.Hour())
	assert.Equal(t, 15, ts.Minute())
	assert.Equal(t, 30, ts.Second())

	ts2, err := parseTimeOfDay("10:15:30", date)
	require.NoError(t, err)
	assert.Equal(t, ts, ts2)
}
