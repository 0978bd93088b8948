package ppp

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// WriteJSON serialises data to a local JSON file, writing to a temp file
// in the same directory first and renaming over the destination so a
// concurrent reader never observes a partial write. The teacher's
// WriteJson wrote through a TileDB VFS handle so the same call could
// target an object store; NovacPPP-Go's persisted state (spec.md §6) is
// always local, so the VFS indirection is dropped here (the TileDB
// dependency is still wired, just in the archive package, see DESIGN.md).
func WriteJSON(path string, data any) (int, error) {
	jsn, err := json.MarshalIndent(data, "", "    ")
	if err != nil {
		return 0, err
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, jsn, 0o644); err != nil {
		return 0, err
	}
	if err := os.Rename(tmp, path); err != nil {
		return 0, err
	}

	return len(jsn), nil
}

// JSONDumps constructs a JSON string of the supplied data.
func JSONDumps(data any) (string, error) {
	jsn, err := json.Marshal(data)
	if err != nil {
		return "", err
	}
	return string(jsn), nil
}

// JSONIndentDumps constructs a JSON string of the supplied data using a
// four-space indent.
func JSONIndentDumps(data any) (string, error) {
	jsn, err := json.MarshalIndent(data, "", "    ")
	if err != nil {
		return "", err
	}
	return string(jsn), nil
}

// EnsureDir creates dir (and parents) if it does not already exist.
func EnsureDir(dir string) error {
	return os.MkdirAll(filepath.Clean(dir), 0o755)
}
