package ingest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
}

func TestScanDirectory(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "a.jpg"))
	touch(t, filepath.Join(root, "notes.txt"))
	touch(t, filepath.Join(root, ".hidden.png"))
	touch(t, filepath.Join(root, "sub", "b.PNG"))
	touch(t, filepath.Join(root, ".git", "c.png"))

	files, err := ScanDirectory(root, nil)
	require.NoError(t, err)
	require.ElementsMatch(t, []string{
		filepath.Join(root, "a.jpg"),
		filepath.Join(root, "sub", "b.PNG"),
	}, files)
}

func TestScanDirectoryCustomExts(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "a.jpg"))
	touch(t, filepath.Join(root, "b.webp"))

	files, err := ScanDirectory(root, ExtSet("webp"))
	require.NoError(t, err)
	require.ElementsMatch(t, []string{filepath.Join(root, "b.webp")}, files)
}

func TestScanDirectoryEmptyRoot(t *testing.T) {
	_, err := ScanDirectory("", nil)
	require.Error(t, err)

	_, err = ScanDirectory("   ", nil)
	require.Error(t, err)
}

func TestExtSet(t *testing.T) {
	require.Equal(t, map[string]struct{}{"webp": {}, "gif": {}}, ExtSet(" .webp, GIF "))

	// empty list falls back to the defaults
	defaults := ExtSet("")
	require.Contains(t, defaults, "jpg")
	require.Contains(t, defaults, "png")
}
