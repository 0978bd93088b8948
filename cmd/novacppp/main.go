// Command novacppp runs one post-processing pass over a network of
// scanning UV spectrometers: see pipeline.Run. Flag handling and the
// cli.App scaffolding are adapted from the teacher's cmd/main.go
// (cli.App{Commands: ...} + per-field typed flags), generalized from a
// two-subcommand GSF converter to the single `--key=value` command line
// spec.md §6 describes.
package main

import (
	"bytes"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/novacppp/novacppp/config"
	"github.com/novacppp/novacppp/pipeline"
	"github.com/novacppp/novacppp/rawscan"
)

// flagNames is spec.md §6's recognized `--key=value` keys, registered as
// cli.StringFlag so Go's underlying flag package accepts both `-key=`
// and `--key=` regardless of name length; config.ApplyFlag does the
// actual type conversion (int, bool, date, enum) per key.
var flagNames = []string{
	"fromdate", "todate", "volcano", "workdir", "maxthreadnum",
	"localdirectory", "ftpdirectory", "ftpusername", "ftppassword",
	"includesubdirs_local", "includesubdirs_ftp", "uploadresults",
	"outputdirectory", "tempdirectory", "windfieldfile",
	"mode", "molecule", "catalogfile",
}

func cliFlags() []cli.Flag {
	flags := make([]cli.Flag, 0, len(flagNames))
	for _, name := range flagNames {
		flags = append(flags, &cli.StringFlag{Name: name})
	}
	return flags
}

// normalizeArgs rewrites spec.md §6's bare `key=value` form (no leading
// dash at all) into `--key=value`, since Go's flag package — which
// cli.v2 delegates to per-flag — requires at least one leading dash.
// Arguments already carrying a dash, or without an `=`, pass through
// unchanged.
func normalizeArgs(args []string) []string {
	out := make([]string, len(args))
	for i, a := range args {
		if !strings.HasPrefix(a, "-") && strings.Contains(a, "=") {
			out[i] = "--" + a
		} else {
			out[i] = a
		}
	}
	return out
}

// rawScanOpener is the production raw-spectrum reader. spec.md §1 treats
// the raw scan file format as an external collaborator and names
// redesigning it a non-goal (see rawscan.Source's doc comment); this
// module ships no binary decoder, so a deployment links one in by
// setting this variable from an init function in its own main package
// (or a build replacing this file). Left nil, the run fails fast with
// rawscan's own explanatory error rather than silently no-op'ing.
var rawScanOpener rawscan.Open

func run(cCtx *cli.Context) error {
	workdir := cCtx.String("workdir")
	if workdir == "" {
		exe, err := os.Executable()
		if err != nil {
			return fmt.Errorf("novacppp: locating executable directory: %w", err)
		}
		workdir = filepath.Dir(exe)
	}
	configDir := filepath.Join(workdir, "configuration")

	catalogPath := cCtx.String("catalogfile")
	if catalogPath == "" {
		catalogPath = filepath.Join(configDir, "volcanoes.xml")
	}
	catalog, err := loadCatalog(catalogPath)
	if err != nil {
		return err
	}

	setup, setupXML, instrumentXML, err := loadSetup(configDir)
	if err != nil {
		return err
	}

	cfg, processingXML, err := loadUserConfiguration(configDir)
	if err != nil {
		return err
	}

	flags := make(map[string]string, len(flagNames))
	for _, name := range flagNames {
		if v := cCtx.String(name); v != "" {
			flags[name] = v
		}
	}
	if err := config.ApplyFlags(&cfg, catalog, flags); err != nil {
		return fmt.Errorf("novacppp: applying flags: %w", err)
	}

	volcano, err := catalog.Find(cfg.Volcano)
	if err != nil {
		return fmt.Errorf("novacppp: %w", err)
	}

	if rawScanOpener == nil {
		return fmt.Errorf("novacppp: no raw scan file reader linked; see rawScanOpener's doc comment")
	}

	summary, err := pipeline.Run(pipeline.Options{
		Setup:   setup,
		User:    cfg,
		Volcano: *volcano,
		Open:    rawScanOpener,
		ConfigXML: pipeline.ConfigSnapshot{
			Setup:       setupXML,
			Processing:  processingXML,
			Instruments: instrumentXML,
		},
	})
	if err != nil {
		return fmt.Errorf("novacppp: %w", err)
	}

	log.Printf("processed %d files (%d reused from a continuation run, %d IO errors), %d flux results, %d geometry results",
		summary.FilesProcessed, summary.ScansReused, summary.IOErrors, summary.FluxResults, summary.GeometryResults)
	log.Printf("flux log: %s", summary.FluxTextPath)
	log.Printf("statistics: %s", summary.StatisticsPath)
	return nil
}

func loadCatalog(path string) (*config.Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("novacppp: opening volcano catalog: %w", err)
	}
	defer f.Close()
	return config.ParseCatalog(f)
}

// loadSetup parses setup.xml and every referenced <serial>.exml,
// returning their raw bytes alongside the decoded Setup so the caller
// can hand them to pipeline.Options.ConfigXML for spec.md §6's
// copiedConfiguration/ snapshot and continuation check.
func loadSetup(configDir string) (*config.Setup, []byte, map[string][]byte, error) {
	data, err := os.ReadFile(filepath.Join(configDir, "setup.xml"))
	if err != nil {
		return nil, nil, nil, fmt.Errorf("novacppp: opening setup.xml: %w", err)
	}

	setup, err := config.ParseSetup(bytes.NewReader(data), configDir)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("novacppp: parsing setup.xml: %w", err)
	}

	instrumentXML := make(map[string][]byte, len(setup.Instruments))
	for i := range setup.Instruments {
		serial := setup.Instruments[i].Serial
		raw, err := mergeInstrumentExml(setup, configDir, serial)
		if err != nil {
			return nil, nil, nil, err
		}
		instrumentXML[serial] = raw
	}
	return setup, data, instrumentXML, nil
}

func mergeInstrumentExml(setup *config.Setup, configDir, serial string) ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(configDir, serial+".exml"))
	if err != nil {
		return nil, fmt.Errorf("novacppp: opening %s.exml: %w", serial, err)
	}

	fitWindows, dark, err := config.ParseInstrumentExml(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("novacppp: parsing %s.exml: %w", serial, err)
	}
	return data, setup.MergeInstrumentExml(serial, fitWindows, dark)
}

// loadUserConfiguration parses processing.xml, returning its raw bytes
// alongside the decoded configuration (nil if the file is absent, in
// which case DefaultUserConfiguration() is used and continuation
// detection for it is simply skipped).
func loadUserConfiguration(configDir string) (config.UserConfiguration, []byte, error) {
	data, err := os.ReadFile(filepath.Join(configDir, "processing.xml"))
	if err != nil {
		return config.DefaultUserConfiguration(), nil, nil
	}
	cfg, err := config.ParseUserConfiguration(bytes.NewReader(data))
	return cfg, data, err
}

func main() {
	app := &cli.App{
		Name:  "novacppp",
		Usage: "post-process a network of scanning UV DOAS spectrometers into a volcanic SO2 flux time series",
		Flags: cliFlags(),
		Action: func(cCtx *cli.Context) error {
			return run(cCtx)
		},
	}

	if err := app.Run(normalizeArgs(os.Args)); err != nil {
		log.Fatal(err)
	}
}
