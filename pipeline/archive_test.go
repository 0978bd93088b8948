package pipeline

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArchiveCompressedIsNoOpWhenFileMissing(t *testing.T) {
	assert.NoError(t, archiveCompressed(filepath.Join(t.TempDir(), "GeneratedWindField.wxml")))
}

func TestArchiveCompressedReplacesPreviousCopyWithGzip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "GeneratedWindField.wxml")
	require.NoError(t, os.WriteFile(path, []byte("<wind/>"), 0o644))

	require.NoError(t, archiveCompressed(path))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)

	var sawGzip bool
	for _, e := range entries {
		if filepath.Ext(e.Name()) == ".gz" {
			sawGzip = true
		}
		assert.NotEqual(t, "GeneratedWindField.wxml", e.Name(), "archived copy must not be left uncompressed")
	}
	assert.True(t, sawGzip, "expected an archived .gz copy")
}
