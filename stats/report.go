package stats

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/novacppp/novacppp/archivefile"
)

var qualityReasons = []QualityRejection{
	NoPlume,
	LowCompleteness,
	NoWindRecord,
	NoPlumeHeightRecord,
	PlumeBelowInstrument,
	OutsideCalibrationWindow,
}

var numericReasons = []NumericFailure{
	FitNonConvergence,
	SingularMatrix,
	DegenerateGeometry,
	SolarShiftException,
}

// WriteReport renders s to outputDir/ProcessingStatistics.txt, archiving
// any previous copy first (spec.md §6's archive pattern). This is the
// run-end summary spec.md §7 describes: "categories (2)-(4) are
// summarized in the statistics file at the end."
func WriteReport(outputDir string, s *Statistics, generatedAt time.Time) (string, error) {
	path := filepath.Join(outputDir, "ProcessingStatistics.txt")
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return "", fmt.Errorf("stats: creating output directory: %w", err)
	}
	if _, err := archivefile.Rename(path); err != nil {
		return "", fmt.Errorf("stats: archiving previous report: %w", err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# NovacPPP-Go processing statistics\n")
	fmt.Fprintf(&b, "#   File generated on %s\n\n", generatedAt.UTC().Format("2006.01.02 at 15:04:05"))

	fmt.Fprintf(&b, "Files processed: %d\n", s.FilesProcessed())
	fmt.Fprintf(&b, "Scans reused from a continuation run: %d\n", s.ScansReused())
	fmt.Fprintf(&b, "IO errors (category 2): %d\n\n", s.IOErrors())

	fmt.Fprintf(&b, "Data-quality rejections (category 3):\n")
	for _, r := range qualityReasons {
		fmt.Fprintf(&b, "  %s: %d\n", r, s.QualityRejections(r))
	}
	b.WriteByte('\n')

	fmt.Fprintf(&b, "Numerical failures (category 4):\n")
	for _, f := range numericReasons {
		fmt.Fprintf(&b, "  %s: %d\n", f, s.NumericFailures(f))
	}
	b.WriteByte('\n')

	fmt.Fprintf(&b, "Flux results: %d\n", s.FluxResults())
	fmt.Fprintf(&b, "Geometry results: %d\n", s.GeometryResults())

	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return "", fmt.Errorf("stats: writing %s: %w", path, err)
	}
	return path, nil
}
