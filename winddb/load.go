package winddb

import (
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Load resolves path against a run's date window and reads one or more
// `.wxml` documents into a fresh DataBase, implementing spec.md §4.6's
// "read wind database from XML (single file or directory...)". Grounded
// on CXMLWindFileReader::ReadWindFile/ReadWindDirectory: a plain file is
// read directly; a directory is scanned for every "*_YYYYMMDD.wxml" file
// whose embedded date falls within [from, to] (a name with no parseable
// trailing date is read unconditionally, matching the original's
// "rpos > 0 && length==14" fallback). A path that resolves to nothing
// readable returns an empty, non-nil DataBase rather than an error: a
// run with no prior wind field starts from a clean slate.
func Load(path string, from, to time.Time) (*DataBase, error) {
	if path == "" {
		return &DataBase{}, nil
	}

	info, err := os.Stat(path)
	if err != nil {
		return &DataBase{}, nil
	}

	if !info.IsDir() {
		return readFile(path)
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return &DataBase{}, nil
	}

	merged := &DataBase{}
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".wxml") {
			continue
		}
		if t, ok := embeddedDate(e.Name()); ok && (t.Before(from) || t.After(to)) {
			continue
		}

		db, err := readFile(filepath.Join(path, e.Name()))
		if err != nil {
			continue
		}
		if merged.VolcanoName == "" {
			merged.VolcanoName = db.VolcanoName
		}
		for _, r := range db.All() {
			merged.Insert(r)
		}
	}
	return merged, nil
}

func readFile(path string) (*DataBase, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Read(f)
}

// embeddedDate extracts the "YYYYMMDD" suffix from a "PREFIX_YYYYMMDD.wxml"
// file name, the convention ReadWindDirectory checks via
// "name.ReverseFind('_')" and a fixed 14-character tail length.
func embeddedDate(name string) (time.Time, bool) {
	base := strings.TrimSuffix(name, filepath.Ext(name))
	i := strings.LastIndex(base, "_")
	if i < 0 || len(base)-i != 9 {
		return time.Time{}, false
	}
	t, err := time.Parse("20060102", base[i+1:])
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
