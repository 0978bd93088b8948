package fluxlog

import (
	"fmt"
	"os"
	"path/filepath"

	ppp "github.com/novacppp/novacppp"
)

const geometryLogHeader = "Date;Time;DifferenceInStartTime_minutes;Instrument1;Instrument2;" +
	"PlumeAltitude_masl;PlumeHeightError_m;WindDirection_deg;WindDirectionError_deg;" +
	"PlumeCentre1_deg;PlumeCentreError1_deg;PlumeCentre2_deg;PlumeCentreError2_deg\n"

// WriteGeometryLog appends results to outputDir/GeometryLog.csv, writing
// the header only the first time the file is created. Grounded on
// CPostProcessing::WriteCalculatedGeometriesToFile, which appends rather
// than archiving-and-overwriting (unlike the flux logs) since geometry
// results accumulate continuously as the orchestrator runs. Only
// results carrying a computed wind direction are written, matching the
// original's two branches (two-instrument / single-instrument); a
// plume-height-only result (no wind direction) has nothing to log here.
func WriteGeometryLog(outputDir string, results []ppp.GeometryResult) (string, error) {
	path := filepath.Join(outputDir, "GeometryLog.csv")
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return "", fmt.Errorf("fluxlog: creating output directory: %w", err)
	}

	_, statErr := os.Stat(path)
	isNew := os.IsNotExist(statErr)

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return "", fmt.Errorf("fluxlog: opening %s: %w", path, err)
	}
	defer f.Close()

	if isNew {
		if _, err := f.WriteString(geometryLogHeader); err != nil {
			return "", fmt.Errorf("fluxlog: writing %s header: %w", path, err)
		}
	}

	for _, r := range results {
		if !r.HasWindDirection {
			continue
		}
		if _, err := f.WriteString(geometryLogRow(r)); err != nil {
			return "", fmt.Errorf("fluxlog: writing %s row: %w", path, err)
		}
	}

	return path, nil
}

func geometryLogRow(r ppp.GeometryResult) string {
	date := r.StartTime.UTC().Format("2006.01.02")
	timeOfDay := r.StartTime.UTC().Format("15:04:05")

	if r.Serial2 != "" {
		return fmt.Sprintf("%s;%s;%.1f;%s;%s;%.0f;%.0f;%.0f;%.0f;%.1f;%.1f;%.1f;%.1f\n",
			date, timeOfDay, r.StartTimeDifference.Minutes(),
			r.Serial1, r.Serial2,
			r.Altitude, r.AltitudeError,
			r.WindDirection, r.WindDirectionError,
			r.PlumeCentre1, r.PlumeCentre1Error,
			r.PlumeCentre2, r.PlumeCentre2Error)
	}

	return fmt.Sprintf("%s;%s;0;%s;;0;0;%.0f;%.0f;%.1f;%.1f;;\n",
		date, timeOfDay, r.Serial1,
		r.WindDirection, r.WindDirectionError,
		r.PlumeCentre1, r.PlumeCentre1Error)
}
