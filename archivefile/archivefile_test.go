package archivefile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenameIsNoOpWhenFileMissing(t *testing.T) {
	stamped, err := Rename(filepath.Join(t.TempDir(), "missing.txt"))
	require.NoError(t, err)
	assert.Equal(t, "", stamped)
}

func TestRenameStampsAndMovesExistingFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "FluxLog.txt")
	require.NoError(t, os.WriteFile(path, []byte("old"), 0o644))

	stamped, err := Rename(path)
	require.NoError(t, err)
	require.NotEqual(t, "", stamped)

	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))

	contents, err := os.ReadFile(stamped)
	require.NoError(t, err)
	assert.Equal(t, "old", string(contents))
}
