package config

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// ParseFlagDate parses spec.md §6's two accepted `fromdate`/`todate`
// forms: `YYYY.MM.DD` and `YYYY-MM-DD`.
func ParseFlagDate(s string) (time.Time, error) {
	for _, layout := range []string{"2006.01.02", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("config: invalid date %q", s)
}

// withTrailingSeparator appends the OS path separator if path doesn't
// already end with one, per spec.md §6's "paths with enforced trailing
// separator" for outputdirectory/tempdirectory.
func withTrailingSeparator(path string) string {
	if path == "" || strings.HasSuffix(path, string(filepath.Separator)) {
		return path
	}
	return path + string(filepath.Separator)
}

func parseBoolFlag(s string) bool {
	return s == "1" || strings.EqualFold(s, "true")
}

// ApplyFlag applies one spec.md §6 `--key=value` CLI flag to cfg,
// looking up `volcano` in catalog. Unrecognized keys are ignored, since
// the original CLI silently accepted arbitrary extra flags.
func ApplyFlag(cfg *UserConfiguration, catalog *Catalog, key, value string) error {
	switch strings.ToLower(key) {
	case "fromdate":
		t, err := ParseFlagDate(value)
		if err != nil {
			return err
		}
		cfg.FromDate = t
	case "todate":
		t, err := ParseFlagDate(value)
		if err != nil {
			return err
		}
		cfg.ToDate = t
	case "volcano":
		v, err := catalog.Find(value)
		if err != nil {
			return err
		}
		cfg.Volcano = v.Name
	case "workdir":
		cfg.WorkDir = value
	case "maxthreadnum":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("config: invalid maxthreadnum %q: %w", value, err)
		}
		if n < 1 {
			n = 1
		}
		cfg.MaxThreadNum = n
	case "localdirectory":
		cfg.LocalDirectory = value
	case "ftpdirectory":
		cfg.FTPDirectory = value
	case "ftpusername":
		cfg.FTPUsername = value
	case "ftppassword":
		cfg.FTPPassword = value
	case "includesubdirs_local":
		cfg.IncludeSubdirsLocal = parseBoolFlag(value)
	case "includesubdirs_ftp":
		cfg.IncludeSubdirsFTP = parseBoolFlag(value)
	case "uploadresults":
		cfg.UploadResults = parseBoolFlag(value)
	case "outputdirectory":
		cfg.OutputDirectory = withTrailingSeparator(value)
	case "tempdirectory":
		cfg.TempDirectory = withTrailingSeparator(value)
	case "windfieldfile":
		cfg.WindFieldFile = value
	case "mode":
		m, err := ParseProcessingMode(value)
		if err != nil {
			return err
		}
		cfg.Mode = m
	case "molecule":
		m, err := ParseMolecule(value)
		if err != nil {
			return err
		}
		cfg.Molecule = m
	}
	return nil
}

// ApplyFlags applies each flags entry via ApplyFlag, in map iteration
// order (flags are independent; spec.md §6 does not require ordering).
func ApplyFlags(cfg *UserConfiguration, catalog *Catalog, flags map[string]string) error {
	for key, value := range flags {
		if err := ApplyFlag(cfg, catalog, key, value); err != nil {
			return err
		}
	}
	return nil
}
