// Package pipeline implements the orchestrator of spec.md §4.6: it wires
// together search, scan, geometry, flux, winddb, plumedb, evallog,
// fluxlog and stats into the top-level run sequence, following the
// bounded worker pool / shared result list / orchestrator-thread-only
// database mutation policy of spec.md §5. Grounded on the teacher's
// cmd/main.go convert_gsf_list (the pond.Pool worker-submission and
// signal.NotifyContext shutdown pattern), generalized from a flat list
// of independent file conversions to a pipeline with a sort barrier and
// a single-threaded geometry/flux phase after it.
package pipeline

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/alitto/pond"
	"github.com/go-playground/validator/v10"

	ppp "github.com/novacppp/novacppp"
	"github.com/novacppp/novacppp/config"
	"github.com/novacppp/novacppp/evallog"
	"github.com/novacppp/novacppp/fluxlog"
	"github.com/novacppp/novacppp/geometry"
	"github.com/novacppp/novacppp/plumedb"
	"github.com/novacppp/novacppp/rawscan"
	"github.com/novacppp/novacppp/scan"
	"github.com/novacppp/novacppp/search"
	"github.com/novacppp/novacppp/stats"
	"github.com/novacppp/novacppp/statuslog"
	"github.com/novacppp/novacppp/winddb"
)

var validate = validator.New()

// Options bundles one run's configuration and collaborators. Open is
// required: spec.md §1 treats the raw-spectrum reader as an external
// collaborator this module never implements (see rawscan.Source's doc
// comment), so production callers (cmd/novacppp) must supply a concrete
// reader.
type Options struct {
	Setup   *config.Setup
	User    config.UserConfiguration
	Volcano ppp.Volcano

	Open rawscan.Open

	// ConfigXML is the raw bytes of the run's input configuration
	// files, used to populate copiedConfiguration/ and to detect a
	// continuation run (spec.md §6/§8 scenario 6). Optional: a zero
	// value disables continuation and every scan is evaluated fresh.
	ConfigXML ConfigSnapshot

	// Archive optionally mirrors the run's flux results into a
	// TileDB-backed analytics array alongside FluxLog.txt/.xml. Nil
	// skips archiving entirely.
	Archive *AnalyticsTarget
}

// Summary reports what one Run call produced, for the caller to log or
// assert on in tests.
type Summary struct {
	FilesProcessed  int
	ScansReused     int
	IOErrors        int
	FluxResults     int
	GeometryResults int

	FluxTextPath    string
	FluxXMLPath     string
	StylesheetPath  string
	GeometryLogPath string
	WindFieldPath   string
	StatisticsPath  string
}

// resultStore is the "shared result list" of spec.md §5, guarded by its
// own mutex independently of the raw-file queue (which pond.Pool already
// owns internally).
type resultStore struct {
	mu      sync.Mutex
	results []ppp.ExtendedScanResult
}

func (s *resultStore) append(r ppp.ExtendedScanResult) {
	s.mu.Lock()
	s.results = append(s.results, r)
	s.mu.Unlock()
}

func (s *resultStore) all() []ppp.ExtendedScanResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]ppp.ExtendedScanResult, len(s.results))
	copy(out, s.results)
	return out
}

// Run executes one top-level pass of spec.md §4.6: validate, load the
// wind database, seed a default plume height, discover raw files,
// evaluate them across a bounded worker pool, sort, run the geometry
// sweep, integrate flux per scan, and persist every output log.
func Run(opts Options) (Summary, error) {
	if opts.Open == nil {
		return Summary{}, ErrNoOpener
	}
	if err := validate.Struct(&opts.User); err != nil {
		return Summary{}, fmt.Errorf("pipeline: invalid configuration: %w", err)
	}
	if opts.Setup == nil {
		return Summary{}, fmt.Errorf("pipeline: %w", config.ErrInstrumentNotFound)
	}
	if err := opts.Setup.Validate(); err != nil {
		return Summary{}, fmt.Errorf("pipeline: invalid setup: %w", err)
	}
	if err := config.ValidateCalibrationWindow(opts.User.Calibration); err != nil {
		return Summary{}, fmt.Errorf("pipeline: %w", err)
	}

	status, err := statuslog.Open(opts.User.OutputDirectory)
	if err != nil {
		return Summary{}, fmt.Errorf("pipeline: %w", err)
	}
	defer status.Close()
	status.Write(statuslog.Information, fmt.Sprintf("starting run for volcano %s", opts.Volcano.Name))

	continuation, err := snapshotConfiguration(opts.User.OutputDirectory, opts.ConfigXML)
	if err != nil {
		status.Write(statuslog.Error, err.Error())
		return Summary{}, fmt.Errorf("pipeline: %w", err)
	}
	if continuation {
		status.Write(statuslog.Information, "continuing previous run: configuration unchanged")
	}

	wind, err := winddb.Load(opts.User.WindFieldFile, opts.User.FromDate, opts.User.ToDate)
	if err != nil {
		status.Write(statuslog.Fatal, err.Error())
		return Summary{}, fmt.Errorf("pipeline: loading wind database: %w", err)
	}
	if wind.VolcanoName == "" {
		wind.VolcanoName = opts.Volcano.Name
	}

	plumes := &plumedb.DataBase{}
	seedPlumeHeight(plumes, opts.Setup, opts.Volcano)

	files, err := discoverRawFiles(opts.User)
	if err != nil {
		status.Write(statuslog.Fatal, err.Error())
		return Summary{}, fmt.Errorf("pipeline: searching for raw files: %w", err)
	}
	if len(files) == 0 {
		status.Write(statuslog.Error, ErrNoRawFiles.Error())
		return Summary{}, ErrNoRawFiles
	}

	st := &stats.Statistics{}
	logs := &evallog.Writer{Dir: opts.User.OutputDirectory}
	store := &resultStore{}

	evaluateAll(files, opts, logs, st, store, continuation)

	results := store.all()
	sort.Slice(results, func(i, j int) bool {
		return results[i].StartTime().Before(results[j].StartTime())
	})

	source := geometry.Source{
		Latitude:  opts.Volcano.PeakLatitude,
		Longitude: opts.Volcano.PeakLongitude,
		Altitude:  opts.Volcano.PeakAltitude,
	}
	geometryResults := runGeometrySweep(results, opts, source, wind, plumes, st)

	entries := integrateFlux(results, opts, wind, plumes, st)

	generatedAt := time.Now().UTC()

	summary := Summary{
		FilesProcessed:  st.FilesProcessed(),
		ScansReused:     st.ScansReused(),
		IOErrors:        st.IOErrors(),
		FluxResults:     st.FluxResults(),
		GeometryResults: st.GeometryResults(),
	}

	summary.FluxTextPath, err = fluxlog.WriteText(opts.User.OutputDirectory, entries, generatedAt)
	if err != nil {
		return summary, fmt.Errorf("pipeline: writing flux text log: %w", err)
	}
	summary.FluxXMLPath, err = fluxlog.WriteXML(opts.User.OutputDirectory, entries, generatedAt)
	if err != nil {
		return summary, fmt.Errorf("pipeline: writing flux xml log: %w", err)
	}
	summary.StylesheetPath, err = fluxlog.WriteStylesheet(opts.User.OutputDirectory)
	if err != nil {
		return summary, fmt.Errorf("pipeline: writing flux xsl stylesheet: %w", err)
	}
	summary.GeometryLogPath, err = fluxlog.WriteGeometryLog(opts.User.OutputDirectory, geometryResults)
	if err != nil {
		return summary, fmt.Errorf("pipeline: writing geometry log: %w", err)
	}

	summary.WindFieldPath, err = writeWindField(opts.User.OutputDirectory, wind)
	if err != nil {
		return summary, fmt.Errorf("pipeline: persisting wind database: %w", err)
	}

	summary.StatisticsPath, err = stats.WriteReport(opts.User.OutputDirectory, st, generatedAt)
	if err != nil {
		return summary, fmt.Errorf("pipeline: writing statistics report: %w", err)
	}

	archiveResults(opts.Archive, entries, status)

	status.Write(statuslog.Information, fmt.Sprintf("run complete: %d files processed, %d flux results", summary.FilesProcessed, summary.FluxResults))
	return summary, nil
}

// discoverRawFiles implements spec.md §4.6's "scan local and/or remote
// directories"; FTP discovery is an external-collaborator non-goal (see
// rawscan.Source's doc comment), so only the local directory is walked.
func discoverRawFiles(u config.UserConfiguration) ([]string, error) {
	if u.LocalDirectory == "" {
		return nil, nil
	}
	return search.Local(u.LocalDirectory, u.IncludeSubdirsLocal, u.FromDate, u.ToDate)
}

// evaluateAll dispatches one scan.EvaluateScan call per raw file across
// a fixed worker pool sized by opts.User.MaxThreadNum (spec.md §5
// "Scheduling"), joining every worker before returning (spec.md §5
// "Lifetime").
func evaluateAll(files []string, opts Options, logs *evallog.Writer, st *stats.Statistics, store *resultStore, continuation bool) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	n := opts.User.MaxThreadNum
	if n < 1 {
		n = 1
	}
	pool := pond.New(n, 0, pond.MinWorkers(n), pond.Context(ctx))
	defer pool.StopAndWait()

	for _, path := range files {
		path := path
		pool.Submit(func() {
			evaluateOne(path, opts, logs, st, store, continuation)
		})
	}
}

// evaluateOne reads one raw file, evaluates it against its instrument's
// configured fit windows, and reports the outcome through st/store. A
// failure at any stage is a spec.md §7 category-2 I/O rejection: it is
// counted and the worker moves on to its next file, never aborting the
// run (spec.md §5 "Cancellation and timeouts"). When continuation is
// true, a scan whose evaluation logs already exist from an earlier,
// configuration-identical run is parsed back rather than re-fit (spec.md
// §6's continuation behavior).
func evaluateOne(path string, opts Options, logs *evallog.Writer, st *stats.Statistics, store *resultStore, continuation bool) {
	st.IncrementFilesProcessed()

	raw, err := opts.Open(path)
	if err != nil {
		st.IncrementIOError()
		return
	}

	ic, err := opts.Setup.Instrument(raw.Serial())
	if err != nil {
		st.IncrementIOError()
		return
	}
	windows := make(map[string]*ppp.FitWindow, len(ic.FitWindows))
	for i := range ic.FitWindows {
		windows[ic.FitWindows[i].Name] = &ic.FitWindows[i]
	}
	mainWindow := ""
	if len(ic.FitWindows) > 0 {
		mainWindow = ic.FitWindows[0].Name
	}

	result, reused := ppp.ExtendedScanResult{}, false
	if continuation {
		result, reused = reuseLoggedScan(raw, windows, mainWindow, logs)
	}
	if !reused {
		var err error
		result, err = scan.EvaluateScan(raw, windows, mainWindow, logs, st)
		if err != nil {
			st.IncrementIOError()
			return
		}
	} else {
		st.IncrementScanReused()
	}

	if opts.User.Mode == config.ModeInstrumentCalibration {
		localHour := config.LocalHour(result.StartTime(), opts.Volcano.LocalTimeOffset)
		if !opts.User.Calibration.Contains(localHour) {
			st.IncrementQualityRejection(stats.OutsideCalibrationWindow)
			return
		}
	}

	store.append(result)
}

// writeWindField persists wind to GeneratedWindField.wxml, archiving any
// previous copy first (spec.md §6 archive pattern).
func writeWindField(outputDir string, wind *winddb.DataBase) (string, error) {
	path := filepath.Join(outputDir, "GeneratedWindField.wxml")
	if err := archiveCompressed(path); err != nil {
		return "", err
	}
	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	if err := winddb.Write(f, wind); err != nil {
		return "", err
	}
	return path, nil
}
