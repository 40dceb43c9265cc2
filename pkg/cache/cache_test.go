package cache

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const archiveURL = "https://github.com/oven-sh/bun/releases/download/bun-v1.1.0/bun-linux-x64.zip"

func TestDisabledCache(t *testing.T) {
	c := New("")
	assert.False(t, c.Enabled())
	assert.Equal(t, "", c.Path(archiveURL, "bun-linux-x64.zip"))

	_, ok := c.Lookup(archiveURL, "bun-linux-x64.zip")
	assert.False(t, ok)
	assert.NoError(t, c.Store(archiveURL, "/does/not/matter.zip"))
	assert.NoError(t, c.Evict(archiveURL, "bun-linux-x64.zip"))
}

func TestPathIsStablePerURL(t *testing.T) {
	c := New("/tmp/cache")
	a := c.Path(archiveURL, "bun-linux-x64.zip")
	b := c.Path("http://github.com/oven-sh/bun/releases/download/bun-v1.1.0/bun-linux-x64.zip/", "bun-linux-x64.zip")
	assert.Equal(t, a, b)

	other := c.Path("https://github.com/oven-sh/bun/releases/download/bun-v1.1.1/bun-linux-x64.zip", "bun-linux-x64.zip")
	assert.NotEqual(t, a, other)
	assert.Equal(t, "bun-linux-x64.zip", filepath.Base(a))
}

func TestStoreLookupRestoreEvict(t *testing.T) {
	dir := t.TempDir()
	c := New(filepath.Join(dir, "cache"))

	src := filepath.Join(dir, "bun-linux-x64.zip")
	require.NoError(t, os.WriteFile(src, []byte("archive"), 0644))

	_, ok := c.Lookup(archiveURL, "bun-linux-x64.zip")
	assert.False(t, ok)

	require.NoError(t, c.Store(archiveURL, src))
	cached, ok := c.Lookup(archiveURL, "bun-linux-x64.zip")
	require.True(t, ok)

	dest := filepath.Join(dir, "root", "1.1.0", "bun-linux-x64", "bun-linux-x64.zip")
	require.NoError(t, c.Restore(cached, dest))
	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "archive", string(data))

	require.NoError(t, c.Evict(archiveURL, "bun-linux-x64.zip"))
	_, ok = c.Lookup(archiveURL, "bun-linux-x64.zip")
	assert.False(t, ok)
}
