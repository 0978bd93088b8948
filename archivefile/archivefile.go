// Package archivefile implements spec.md §6's archive pattern shared by
// every persisted-state writer: "when any of those already exist, the
// previous copy is renamed to <name>_YYYYMMDD_HHMM<ext>". Grounded on
// Common::ArchiveFile (original_source/PPPExe/Common/Common.cpp ~1138),
// factored out of fluxlog's first writer so stats and the orchestrator's
// status/evaluation-log writers share one implementation instead of
// three copies of the same rename.
package archivefile

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Rename archives an already-present file at path to
// "<name>_YYYYMMDD_HHMM<ext>", stamped with the old file's modification
// time (the closest stdlib equivalent to the original's creation-time
// stamp, which needs a platform-specific syscall Go's os package doesn't
// expose). It returns the stamped path, or "" if path didn't exist yet
// (a no-op, not an error).
func Rename(path string) (string, error) {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return "", nil
	}
	if err != nil {
		return "", err
	}

	ext := filepath.Ext(path)
	base := strings.TrimSuffix(path, ext)
	stamped := fmt.Sprintf("%s_%s%s", base, info.ModTime().UTC().Format("20060102_1504"), ext)

	if err := os.Rename(path, stamped); err != nil {
		return "", err
	}
	return stamped, nil
}
