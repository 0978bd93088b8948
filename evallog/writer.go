package evallog

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	ppp "github.com/novacppp/novacppp"
	"github.com/novacppp/novacppp/scan"
)

// Writer persists evaluated scans as canonical evaluation-log files
// under Dir, one file per date and instrument serial (spec.md §6
// "Persisted state": "per-date per-serial evaluation logs"). It
// implements scan.LogWriter.
type Writer struct {
	Dir string
}

var _ scan.LogWriter = (*Writer)(nil)

// timeOfDayLayout is the layout Writer writes; Parse additionally
// accepts the dotted form (spec.md §6 "Time formats accept both
// HH:MM:SS and HH.MM.SS").
const timeOfDayLayout = "15:04:05"

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}

func formatBool(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

// path returns the file Writer.WriteLog writes for window/result,
// grouped by the sky spectrum's UTC date and the instrument serial.
func (w *Writer) path(window *ppp.FitWindow, result ppp.ScanResult) string {
	return w.Path(result.Serial, window.Name, result.Sky.StartTime)
}

// Path returns the evaluation-log file for a given serial, fit-window
// name and UTC date, without requiring a full ScanResult. Exposed so
// the orchestrator's continuation check (spec.md §6: "may skip
// evaluation for scans whose log already exists and reuse those logs")
// can look for an existing log before running a scan's DOAS fit.
func (w *Writer) Path(serial, window string, date time.Time) string {
	return filepath.Join(w.Dir, date.UTC().Format("2006-01-02"), fmt.Sprintf("%s_%s.txt", serial, window))
}

// Exists reports whether Path(serial, window, date) is already present.
func (w *Writer) Exists(serial, window string, date time.Time) bool {
	_, err := os.Stat(w.Path(serial, window, date))
	return err == nil
}

// WriteLog renders result (evaluated against window) to the canonical
// evaluation-log format of spec.md §6 and writes it under w.Dir,
// archiving any previous copy first (spec.md §6 archive pattern is the
// orchestrator's responsibility; Writer itself always overwrites).
func (w *Writer) WriteLog(window *ppp.FitWindow, result ppp.ScanResult) (string, error) {
	out := w.path(window, result)
	if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
		return "", fmt.Errorf("evallog: creating directory for %s: %w", out, err)
	}

	var b strings.Builder
	writeScanInformation(&b, window, result)
	writeFluxInfo(&b, window, result)

	heidelberg := result.Type == ppp.Heidelberg
	species := make([]string, len(window.References))
	for i, r := range window.References {
		species[i] = r.Name
	}

	b.WriteString(joinRow(headerRow(heidelberg, species)))
	b.WriteString("\n")
	b.WriteString("<spectraldata>\n")
	for _, sp := range result.Spectra {
		b.WriteString(joinRow(spectrumRow(heidelberg, species, sp)))
		b.WriteString("\n")
	}
	b.WriteString("</spectraldata>\n")

	if err := os.WriteFile(out, []byte(b.String()), 0o644); err != nil {
		return "", fmt.Errorf("evallog: writing %s: %w", out, err)
	}
	return out, nil
}

func writeScanInformation(b *strings.Builder, window *ppp.FitWindow, result ppp.ScanResult) {
	b.WriteString("<scaninformation>\n")
	fmt.Fprintf(b, "serial=%s\n", result.Serial)
	fmt.Fprintf(b, "date=%s\n", result.Sky.StartTime.UTC().Format("2006.01.02"))
	fmt.Fprintf(b, "mode=%s\n", result.Mode)
	fmt.Fprintf(b, "type=%s\n", result.Type)
	fmt.Fprintf(b, "window=%s\n", window.Name)
	b.WriteString("</scaninformation>\n")
}

func writeFluxInfo(b *strings.Builder, window *ppp.FitWindow, result ppp.ScanResult) {
	b.WriteString("<fluxinfo>\n")
	fmt.Fprintf(b, "battery=%s\n", formatFloat(result.Battery))
	fmt.Fprintf(b, "temperature=%s\n", formatFloat(result.Temperature))
	fmt.Fprintf(b, "polyorder=%d\n", window.PolyOrder)
	fmt.Fprintf(b, "fitlow=%d\n", window.Fit.Low)
	fmt.Fprintf(b, "fithigh=%d\n", window.Fit.High)
	b.WriteString("</fluxinfo>\n")
}

func spectrumRow(heidelberg bool, species []string, sp ppp.EvaluatedSpectrum) []string {
	fields := make([]string, 0, 16)
	if heidelberg {
		fields = append(fields, formatFloat(sp.Info.Angle), formatFloat(sp.Info.Azimuth))
	} else {
		fields = append(fields, formatFloat(sp.Info.Angle))
	}

	fields = append(fields,
		sp.Info.StartTime.UTC().Format(timeOfDayLayout),
		sp.Info.StopTime.UTC().Format(timeOfDayLayout),
		sp.Info.Name,
		formatFloat(sp.Info.SpecSaturation),
		formatFloat(sp.Info.FitSaturation),
		formatFloat(sp.Result.Delta),
		formatFloat(sp.Result.ChiSquare),
		formatFloat(sp.Info.Exposure.Seconds()),
		strconv.Itoa(sp.Info.NumSpec),
	)

	for _, name := range species {
		ref := findReference(sp.Result.References, name)
		fields = append(fields,
			formatFloat(ref.Column),
			formatFloat(ref.ColumnError),
			formatFloat(ref.Shift),
			formatFloat(ref.ShiftError),
			formatFloat(ref.Squeeze),
			formatFloat(ref.SqueezeError),
		)
	}

	flag := 0
	if !sp.Info.IsGoodPoint {
		flag = 1
	}
	fields = append(fields,
		formatBool(sp.Info.IsGoodPoint),
		formatFloat(sp.Info.Offset),
		strconv.Itoa(flag),
	)
	return fields
}

func findReference(refs []ppp.ReferenceResult, name string) ppp.ReferenceResult {
	for _, r := range refs {
		if r.Name == name {
			return r
		}
	}
	return ppp.ReferenceResult{Name: name}
}
