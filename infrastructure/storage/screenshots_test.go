package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScreenshotStore_SaveOverwrites(t *testing.T) {
	dir := t.TempDir()
	store := NewScreenshotStore(dir)

	require.NoError(t, store.Save("error.png", []byte("first capture")))
	require.NoError(t, store.Save("error.png", []byte("second")))

	data, err := os.ReadFile(filepath.Join(dir, "error.png"))
	require.NoError(t, err)
	assert.Equal(t, "second", string(data))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestScreenshotStore_CreatesDirectories(t *testing.T) {
	dir := t.TempDir()
	store := NewScreenshotStore(dir)

	require.NoError(t, store.Save(filepath.Join("artifacts", "run", "error.png"), []byte("png")))
	_, err := os.Stat(filepath.Join(dir, "artifacts", "run", "error.png"))
	assert.NoError(t, err)
}

func TestScreenshotStore_AbsolutePathIgnoresBaseDir(t *testing.T) {
	abs := filepath.Join(t.TempDir(), "abs.png")
	store := NewScreenshotStore(t.TempDir())

	require.NoError(t, store.Save(abs, []byte("png")))
	_, err := os.Stat(abs)
	assert.NoError(t, err)
}

func TestScreenshotStore_EmptyPath(t *testing.T) {
	assert.Error(t, NewScreenshotStore(t.TempDir()).Save("", []byte("png")))
}
