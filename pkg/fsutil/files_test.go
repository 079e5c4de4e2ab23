package fsutil

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteFileAtomic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out", "Soup-recipe-images.zip")

	require.NoError(t, WriteFileAtomic(path, []byte("first"), FileModeDefault))
	require.NoError(t, WriteFileAtomic(path, []byte("second"), FileModeDefault))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "second", string(data))

	if runtime.GOOS != "windows" {
		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(FileModeDefault), info.Mode().Perm())
	}

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary files must not be left behind")
}

func TestWriteFileAtomic_Errors(t *testing.T) {
	assert.Error(t, WriteFileAtomic("", []byte("x"), FileModeDefault))

	dir := t.TempDir()
	target := filepath.Join(dir, "taken")
	require.NoError(t, os.Mkdir(target, DirModeDefault))
	assert.Error(t, WriteFileAtomic(target, []byte("x"), FileModeDefault))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestPaths(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("XDG layout only applies on Linux")
	}
	t.Setenv("XDG_DATA_HOME", "/tmp/xdg-data")

	dataDir, err := GetDataDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/tmp/xdg-data", AppName), dataDir)

	exportDir, err := GetExportDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/tmp/xdg-data", AppName, "exports"), exportDir)
}
