package filex

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chdir(t *testing.T, dir string) func() {
	t.Helper()
	old, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	return func() { _ = os.Chdir(old) }
}

func TestEnsureSubDir_CreatesDirectoryInCWD(t *testing.T) {
	tmp := t.TempDir()
	defer chdir(t, tmp)()

	got, err := EnsureSubDir("received")
	require.NoError(t, err)

	want := filepath.Join(tmp, "received")
	require.Equal(t, want, got)

	fi, err := os.Stat(want)
	require.NoError(t, err)
	require.True(t, fi.IsDir(), "should create a directory")

	if runtime.GOOS != "windows" {
		perm := fi.Mode().Perm()
		require.Equal(t, os.FileMode(0o700), perm&0o700)
	}
}

func TestEnsureSubDir_Idempotent(t *testing.T) {
	tmp := t.TempDir()
	defer chdir(t, tmp)()

	first, err := EnsureSubDir("received")
	require.NoError(t, err)

	second, err := EnsureSubDir("received")
	require.NoError(t, err)

	require.Equal(t, first, second)
	fi, err := os.Stat(second)
	require.NoError(t, err)
	require.True(t, fi.IsDir())
}

func TestEnsureSubDir_FailsIfFileWithSameNameExists(t *testing.T) {
	tmp := t.TempDir()
	defer chdir(t, tmp)()

	require.NoError(t, os.WriteFile("received", []byte("x"), 0o660))

	_, err := EnsureSubDir("received")
	require.Error(t, err, "should fail when a file exists with the same name")
}

func TestSafeName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"photo.png", "photo.png"},
		{"../../etc/passwd", "passwd"},
		{"/abs/path/file.txt", "file.txt"},
		{"dir\\sub\\evil.exe", "evil.exe"},
		{"..", "unnamed"},
		{"", "unnamed"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, SafeName(tt.in), "input %q", tt.in)
	}
}

func TestSaveReceived_WritesAndDeduplicates(t *testing.T) {
	dir := t.TempDir()

	p1, err := SaveReceived(dir, "notes.txt", []byte("one"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "notes.txt"), p1)

	p2, err := SaveReceived(dir, "notes.txt", []byte("two"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "notes (1).txt"), p2)

	got, err := os.ReadFile(p1)
	require.NoError(t, err)
	assert.Equal(t, []byte("one"), got)

	got, err = os.ReadFile(p2)
	require.NoError(t, err)
	assert.Equal(t, []byte("two"), got)
}

func TestSaveReceived_StripsTraversal(t *testing.T) {
	dir := t.TempDir()

	p, err := SaveReceived(dir, "../escape.txt", []byte("x"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "escape.txt"), p)
}
