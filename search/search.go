// Package search discovers raw scan files under a local directory tree,
// bounded by an inclusive UTC date range and an optional subdirectory
// recursion flag (spec.md §4.6 "scan local and/or remote directories for
// raw files in [fromDate, toDate]", §6 `localdirectory`/
// `includesubdirs_local`).
package search

import (
	"io/fs"
	"path/filepath"
	"strings"
	"time"
)

// rawScanExtension is the raw scan file suffix NOVAC instruments write,
// grounded on PostProcessing.cpp's `limits.fileExtension = ".pak"`.
const rawScanExtension = ".pak"

// Local walks dir (recursing into subdirectories only when includeSubdirs
// is set) and returns every ".pak" file whose modification time falls
// within [from, to] inclusive. The original SearchDirectoryForFiles
// implementation that filtered by date did not survive distillation
// retrieval, so file modification time stands in for whatever timestamp
// source it used; this is an interpretation of spec.md §4.6, not a
// citation.
func Local(dir string, includeSubdirs bool, from, to time.Time) ([]string, error) {
	var items []string

	walkFn := func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if !includeSubdirs && path != dir {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.EqualFold(filepath.Ext(path), rawScanExtension) {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return err
		}
		mod := info.ModTime().UTC()
		if mod.Before(from) || mod.After(to) {
			return nil
		}

		items = append(items, path)
		return nil
	}

	if err := filepath.WalkDir(dir, walkFn); err != nil {
		return nil, err
	}
	return items, nil
}
