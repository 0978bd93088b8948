package fluxlog

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/novacppp/novacppp/archivefile"
)

// timeLayout is the dotted-date/colon-time format both the text and XML
// flux logs use for timestamps, grounded on WriteFluxResult_XML's
// "%04d.%02d.%02dT%02d:%02d:%02d" format string.
const timeLayout = "2006.01.02T15:04:05"

const textHeader = "#StartTime\tStopTime\tSerial\tInstrumentType\tFlux_kgs\tFluxQuality\t" +
	"FluxError_Wind_kgs\tFluxError_PlumeHeight_kgs\t" +
	"WindSpeed_ms\tWindSpeedErr_ms\tWindSpeedSrc\tWindDir_deg\tWindDirErr_deg\tWindDirSrc\t" +
	"PlumeHeight_m\tPlumeHeightErr_m\tPlumeHeightSrc\t" +
	"Compass\tConeAngle\tTilt\tnSpectra\tPlumeCentre_1\tPlumeCentre_2\tPlumeCompleteness\tScanOffset"

// WriteText renders entries to outputDir/FluxLog.txt, archiving any
// previous copy first. Grounded on CPostProcessing::WriteFluxResult's
// tab-delimited layout (the aggregated, run-final log spec.md §4.6's
// orchestrator emits, as opposed to FluxCalculator::WriteFluxResult's
// per-instrument variant of the same format).
func WriteText(outputDir string, entries []Entry, generatedAt time.Time) (string, error) {
	path := filepath.Join(outputDir, "FluxLog.txt")
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return "", fmt.Errorf("fluxlog: creating output directory: %w", err)
	}
	if _, err := archivefile.Rename(path); err != nil {
		return "", fmt.Errorf("fluxlog: archiving previous flux log: %w", err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# This is result of the flux calculations the NOVAC Post Processing Program \n")
	fmt.Fprintf(&b, "#   File generated on %s \n\n", generatedAt.UTC().Format("2006.01.02 at 15:04:05"))
	b.WriteString(textHeader)
	b.WriteByte('\n')

	for _, e := range entries {
		writeTextRow(&b, e)
	}

	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return "", fmt.Errorf("fluxlog: writing %s: %w", path, err)
	}
	return path, nil
}

func writeTextRow(b *strings.Builder, e Entry) {
	r := e.Result
	fmt.Fprintf(b, "%s\t", r.StartTime.UTC().Format(timeLayout))
	fmt.Fprintf(b, "%s\t", r.StopTime.UTC().Format(timeLayout))
	fmt.Fprintf(b, "%s\t", r.Serial)
	fmt.Fprintf(b, "%s\t", r.Type.String())
	fmt.Fprintf(b, "%.2f\t", r.Value)
	fmt.Fprintf(b, "%s\t", r.Quality.Letter())
	fmt.Fprintf(b, "%.2f\t", r.WindErrorComponent)
	fmt.Fprintf(b, "%.2f\t", r.PlumeHeightErrorComponent)
	fmt.Fprintf(b, "%.2f\t", r.Wind.Speed)
	fmt.Fprintf(b, "%.2f\t", e.WindSpeedError)
	fmt.Fprintf(b, "%s\t", r.Wind.Source.String())
	fmt.Fprintf(b, "%.2f\t", r.Wind.Direction)
	fmt.Fprintf(b, "%.2f\t", e.WindDirectionError)
	fmt.Fprintf(b, "%s\t", r.Wind.Source.String())
	fmt.Fprintf(b, "%.2f\t", r.PlumeHeight.Altitude)
	fmt.Fprintf(b, "%.2f\t", r.PlumeHeight.Error)
	fmt.Fprintf(b, "%s\t", r.PlumeHeight.Source.String())
	fmt.Fprintf(b, "%.1f\t", r.Compass)
	fmt.Fprintf(b, "%.1f\t", r.ConeAngle)
	fmt.Fprintf(b, "%.1f\t", r.Tilt)
	fmt.Fprintf(b, "%d\t", r.NumGoodSpectra)
	fmt.Fprintf(b, "%.1f\t", r.PlumeCentre)
	fmt.Fprintf(b, "%.1f\t", r.PlumeCentreAzimuth)
	fmt.Fprintf(b, "%.2f\t", r.Completeness)
	fmt.Fprintf(b, "%.1e\n", r.Offset)
}
