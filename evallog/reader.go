package evallog

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/soniakeys/meeus/v3/julian"

	ppp "github.com/novacppp/novacppp"
)

// Parse reads one canonical evaluation-log file (spec.md §6) and
// reconstructs the ScanResult it was written from: Serial, Mode, Type,
// Battery, Temperature and the evaluated spectrum series. Sky and dark
// spectra are not retained in the log format (spec.md §8 scenario 5:
// "after sky/dark removal"), so ScanResult.Sky/Dark are left zero-valued
// except for Sky.StartTime, which carries the log's scaninformation
// date so callers can still recover the scan's calendar day.
func Parse(r io.Reader) (ppp.ScanResult, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var lines []string
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return ppp.ScanResult{}, fmt.Errorf("evallog: reading: %w", err)
	}

	scanInfo, rest, err := readSection(lines, "<scaninformation>", "</scaninformation>")
	if err != nil {
		return ppp.ScanResult{}, err
	}
	fluxInfo, rest, err := readSection(rest, "<fluxinfo>", "</fluxinfo>")
	if err != nil {
		return ppp.ScanResult{}, err
	}

	rest = dropBlank(rest)
	if len(rest) == 0 {
		return ppp.ScanResult{}, fmt.Errorf("%w: header row", ErrMissingSection)
	}
	header := splitRow(strings.TrimPrefix(strings.TrimSpace(rest[0]), "#"))
	rest = rest[1:]

	dataLines, err := readDelimited(rest, "<spectraldata>", "</spectraldata>")
	if err != nil {
		return ppp.ScanResult{}, err
	}

	date, err := time.Parse("2006.01.02", scanInfo["date"])
	if err != nil {
		return ppp.ScanResult{}, fmt.Errorf("evallog: scaninformation date: %w", err)
	}

	result := ppp.ScanResult{
		Serial:      scanInfo["serial"],
		Mode:        parseScanMode(scanInfo["mode"]),
		Type:        parseInstrumentType(scanInfo["type"]),
		Battery:     mustFloat(fluxInfo["battery"]),
		Temperature: mustFloat(fluxInfo["temperature"]),
	}
	result.Sky.StartTime = date

	heidelberg := result.Type == ppp.Heidelberg
	cols := indexHeader(header)
	species := speciesInHeader(header)

	for _, line := range dataLines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		sp, err := parseSpectrumRow(line, cols, heidelberg, species, date)
		if err != nil {
			return ppp.ScanResult{}, err
		}
		result.Spectra = append(result.Spectra, sp)
	}

	return result, nil
}

func dropBlank(lines []string) []string {
	for len(lines) > 0 && strings.TrimSpace(lines[0]) == "" {
		lines = lines[1:]
	}
	return lines
}

// readSection consumes lines up to and including close, parsing every
// "key=value" line in between, and returns the remaining lines.
func readSection(lines []string, open, close string) (map[string]string, []string, error) {
	lines = dropBlank(lines)
	if len(lines) == 0 || strings.TrimSpace(lines[0]) != open {
		return nil, nil, fmt.Errorf("%w: %s", ErrMissingSection, open)
	}
	lines = lines[1:]

	values := make(map[string]string)
	for len(lines) > 0 {
		line := strings.TrimSpace(lines[0])
		lines = lines[1:]
		if line == close {
			return values, lines, nil
		}
		if line == "" {
			continue
		}
		k, v, ok := strings.Cut(line, "=")
		if !ok {
			return nil, nil, fmt.Errorf("%w: %q in %s", ErrMalformedRow, line, open)
		}
		values[strings.TrimSpace(k)] = strings.TrimSpace(v)
	}
	return nil, nil, fmt.Errorf("%w: %s", ErrMissingSection, close)
}

// readDelimited returns the lines strictly between an open and close
// marker line.
func readDelimited(lines []string, open, close string) ([]string, error) {
	lines = dropBlank(lines)
	if len(lines) == 0 || strings.TrimSpace(lines[0]) != open {
		return nil, fmt.Errorf("%w: %s", ErrMissingSection, open)
	}
	lines = lines[1:]

	var data []string
	for _, line := range lines {
		if strings.TrimSpace(line) == close {
			return data, nil
		}
		data = append(data, line)
	}
	return nil, fmt.Errorf("%w: %s", ErrMissingSection, close)
}

func indexHeader(header []string) map[string]int {
	idx := make(map[string]int, len(header))
	for i, name := range header {
		idx[name] = i
	}
	return idx
}

// speciesInHeader recovers the species list from a header's "column(X)"
// tokens, in the order they appear (spec.md §6 per-species block order).
func speciesInHeader(header []string) []string {
	var species []string
	for _, name := range header {
		if strings.HasPrefix(name, "column(") && strings.HasSuffix(name, ")") {
			species = append(species, strings.TrimSuffix(strings.TrimPrefix(name, "column("), ")"))
		}
	}
	return species
}

func field(row []string, cols map[string]int, name string) (string, bool) {
	i, ok := cols[name]
	if !ok || i >= len(row) {
		return "", false
	}
	return row[i], true
}

func parseSpectrumRow(line string, cols map[string]int, heidelberg bool, species []string, date time.Time) (ppp.EvaluatedSpectrum, error) {
	row := splitRow(line)

	info := ppp.SpectrumInfo{HasAzimuth: heidelberg}

	angleName := "scanangle"
	if heidelberg {
		angleName = "observationangle"
	}
	angleStr, ok := field(row, cols, angleName)
	if !ok {
		return ppp.EvaluatedSpectrum{}, fmt.Errorf("%w: missing %s", ErrColumnMismatch, angleName)
	}
	info.Angle = mustFloat(angleStr)
	if heidelberg {
		if az, ok := field(row, cols, "azimuth"); ok {
			info.Azimuth = mustFloat(az)
		}
	}

	start, ok := field(row, cols, "starttime")
	if !ok {
		return ppp.EvaluatedSpectrum{}, fmt.Errorf("%w: missing starttime", ErrColumnMismatch)
	}
	stop, ok := field(row, cols, "stoptime")
	if !ok {
		return ppp.EvaluatedSpectrum{}, fmt.Errorf("%w: missing stoptime", ErrColumnMismatch)
	}
	st, err := parseTimeOfDay(start, date)
	if err != nil {
		return ppp.EvaluatedSpectrum{}, err
	}
	sp, err := parseTimeOfDay(stop, date)
	if err != nil {
		return ppp.EvaluatedSpectrum{}, err
	}
	// A scan spanning local midnight writes a stoptime earlier than its
	// starttime; fold it onto the next calendar day via a Julian day
	// round trip, the same device config.LocalHour uses to carry an
	// offset across a UTC midnight boundary.
	if sp.Before(st) {
		sp = julian.JDToTime(julian.TimeToJD(sp) + 1)
	}
	info.StartTime = st
	info.StopTime = sp

	if v, ok := field(row, cols, "name"); ok {
		info.Name = v
	}
	if v, ok := field(row, cols, "specsaturation"); ok {
		info.SpecSaturation = mustFloat(v)
	}
	if v, ok := field(row, cols, "fitsaturation"); ok {
		info.FitSaturation = mustFloat(v)
	}
	if v, ok := field(row, cols, "exposuretime"); ok {
		info.Exposure = time.Duration(mustFloat(v) * float64(time.Second))
	}
	if v, ok := field(row, cols, "numspec"); ok {
		n, _ := strconv.Atoi(strings.TrimSpace(v))
		info.NumSpec = n
	}
	if v, ok := field(row, cols, "offset"); ok {
		info.Offset = mustFloat(v)
	}
	if v, ok := field(row, cols, "isgoodpoint"); ok {
		info.IsGoodPoint = v == "1" || strings.EqualFold(v, "true")
	}

	result := ppp.EvaluationResult{IsOk: info.IsGoodPoint}
	if v, ok := field(row, cols, "delta"); ok {
		result.Delta = mustFloat(v)
	}
	if v, ok := field(row, cols, "chisquare"); ok {
		result.ChiSquare = mustFloat(v)
	}

	result.References = make([]ppp.ReferenceResult, len(species))
	for i, name := range species {
		ref := ppp.ReferenceResult{Name: name}
		if v, ok := field(row, cols, "column("+name+")"); ok {
			ref.Column = mustFloat(v)
		}
		if v, ok := field(row, cols, "columnerror("+name+")"); ok {
			ref.ColumnError = mustFloat(v)
		}
		if v, ok := field(row, cols, "shift("+name+")"); ok {
			ref.Shift = mustFloat(v)
		}
		if v, ok := field(row, cols, "shifterror("+name+")"); ok {
			ref.ShiftError = mustFloat(v)
		}
		if v, ok := field(row, cols, "squeeze("+name+")"); ok {
			ref.Squeeze = mustFloat(v)
		}
		if v, ok := field(row, cols, "squeezeerror("+name+")"); ok {
			ref.SqueezeError = mustFloat(v)
		}
		result.References[i] = ref
	}

	return ppp.EvaluatedSpectrum{Info: info, Result: result}, nil
}

// parseTimeOfDay accepts both spec.md §6 time forms (HH:MM:SS and
// HH.MM.SS), anchored to date's calendar day.
func parseTimeOfDay(s string, date time.Time) (time.Time, error) {
	normalized := s
	if !strings.Contains(s, ":") && strings.Contains(s, ".") {
		normalized = strings.ReplaceAll(s, ".", ":")
	}
	clock, err := time.Parse("15:04:05", normalized)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrUnknownTimeForm, s)
	}
	return time.Date(date.Year(), date.Month(), date.Day(),
		clock.Hour(), clock.Minute(), clock.Second(), 0, time.UTC), nil
}

func mustFloat(s string) float64 {
	f, _ := strconv.ParseFloat(strings.TrimSpace(s), 64)
	return f
}

func parseScanMode(s string) ppp.ScanMode {
	switch s {
	case "wind-speed":
		return ppp.ModeWindSpeed
	case "composition":
		return ppp.ModeComposition
	case "stratosphere":
		return ppp.ModeStratospheric
	default:
		return ppp.ModeFlux
	}
}

func parseInstrumentType(s string) ppp.InstrumentType {
	if s == "heidelberg" {
		return ppp.Heidelberg
	}
	return ppp.Gothenburg
}
