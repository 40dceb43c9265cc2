package utils

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatBytes(t *testing.T) {
	assert.Equal(t, "512 B", FormatBytes(512))
	assert.Equal(t, "1.0 KB", FormatBytes(1024))
	assert.Equal(t, "35.5 MB", FormatBytes(35*1024*1024+512*1024))
}

func TestShortenURL(t *testing.T) {
	assert.Equal(t, "github.com/oven-sh/bun", ShortenURL("https://github.com/oven-sh/bun"))
	assert.Equal(t, "github.com/.../bun-linux-x64-musl-baseline.zip",
		ShortenURL("https://github.com/oven-sh/bun/releases/download/bun-v1.1.0/bun-linux-x64-musl-baseline.zip"))
}

func TestCopyFileReplacesAndSetsMode(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "bun")
	dst := filepath.Join(dir, "node")
	require.NoError(t, os.WriteFile(src, []byte("new"), 0644))
	require.NoError(t, os.WriteFile(dst, []byte("old and longer"), 0600))

	require.NoError(t, CopyFile(src, dst, 0755))

	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "new", string(data))

	if runtime.GOOS != "windows" {
		info, err := os.Stat(dst)
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0755), info.Mode().Perm())
	}
}

func TestCopyFileCreatesParents(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "bun.zip")
	require.NoError(t, os.WriteFile(src, []byte("zip"), 0644))

	dst := filepath.Join(dir, "cache", "abc", "bun.zip")
	require.NoError(t, CopyFile(src, dst, 0644))
	assert.FileExists(t, dst)

	assert.Error(t, CopyFile(filepath.Join(dir, "missing"), dst, 0644))
}

func TestFileExists(t *testing.T) {
	dir := t.TempDir()
	assert.False(t, FileExists(filepath.Join(dir, "missing")))
	assert.False(t, FileExists(dir))

	f := filepath.Join(dir, "f")
	require.NoError(t, os.WriteFile(f, nil, 0644))
	assert.True(t, FileExists(f))
}
