package winddb

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ppp "github.com/novacppp/novacppp"
)

func writeTestWxml(t *testing.T, path, volcano string, speed float64) {
	t.Helper()
	db := &DataBase{VolcanoName: volcano}
	db.Insert(Record{Field: ppp.WindField{Speed: speed, Source: ppp.WindUser}})

	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, Write(f, db))
}

func TestLoadReadsSingleFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "field.wxml")
	writeTestWxml(t, path, "Masaya", 4.0)

	db, err := Load(path, time.Time{}, time.Time{})
	require.NoError(t, err)
	assert.Equal(t, "Masaya", db.VolcanoName)
	assert.Equal(t, 1, db.Len())
}

func TestLoadMergesDirectoryFilteredByEmbeddedDate(t *testing.T) {
	dir := t.TempDir()
	writeTestWxml(t, filepath.Join(dir, "Masaya_20260110.wxml"), "Masaya", 1.0)
	writeTestWxml(t, filepath.Join(dir, "Masaya_20260220.wxml"), "Masaya", 2.0)
	writeTestWxml(t, filepath.Join(dir, "Masaya_untagged.wxml"), "Masaya", 3.0)

	from := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC)

	db, err := Load(dir, from, to)
	require.NoError(t, err)
	// In-range dated file + the undated fallback file, excluding the
	// out-of-range dated file.
	assert.Equal(t, 2, db.Len())
}

func TestLoadMissingPathReturnsEmptyDataBase(t *testing.T) {
	db, err := Load(filepath.Join(t.TempDir(), "missing.wxml"), time.Time{}, time.Time{})
	require.NoError(t, err)
	assert.Equal(t, 0, db.Len())
}

func TestLoadEmptyPathReturnsEmptyDataBase(t *testing.T) {
	db, err := Load("", time.Time{}, time.Time{})
	require.NoError(t, err)
	assert.Equal(t, 0, db.Len())
}
