package release

import (
	"path/filepath"
	"testing"

	"github.com/flanksource/bunup/pkg/platform"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDownloadURL(t *testing.T) {
	tests := []struct {
		version  string
		platform platform.Platform
		expected string
	}{
		{"1.1.0", platform.LinuxX64, "https://github.com/oven-sh/bun/releases/download/bun-v1.1.0/bun-linux-x64.zip"},
		{"latest", platform.DarwinAarch64, "https://github.com/oven-sh/bun/releases/latest/download/bun-darwin-aarch64.zip"},
		{"", platform.WindowsX64, "https://github.com/oven-sh/bun/releases/latest/download/bun-windows-x64.zip"},
		{"1.0.0", platform.LinuxX64MuslBaseline, "https://github.com/oven-sh/bun/releases/download/bun-v1.0.0/bun-linux-x64-musl-baseline.zip"},
	}
	for _, tt := range tests {
		t.Run(tt.version+"/"+tt.platform.Name, func(t *testing.T) {
			assert.Equal(t, tt.expected, DownloadURL(tt.version, tt.platform))
		})
	}
}

func TestMetadataPageURL(t *testing.T) {
	assert.Equal(t, "https://github.com/oven-sh/bun-releases-for-updater/releases/tag/bun-v1.1.0", MetadataPageURL("1.1.0"))
	assert.Equal(t, "https://github.com/oven-sh/bun-releases-for-updater/releases/latest", MetadataPageURL("latest"))
	assert.Equal(t, "https://github.com/oven-sh/bun-releases-for-updater/releases/latest", MetadataPageURL("  "))
}

func TestTag(t *testing.T) {
	assert.Equal(t, "bun-v1.1.0", Tag("1.1.0"))
	assert.Equal(t, "", Tag("latest"))
}

func TestPaths(t *testing.T) {
	root := filepath.Join("tmp", "bun")
	assert.Equal(t, filepath.Join(root, "2.0.0", "bun-linux-x64"), InstallDir(root, "2.0.0", platform.LinuxX64))
	assert.Equal(t, filepath.Join(root, "2.0.0", "bun-linux-x64", "bun-linux-x64.zip"), ArchivePath(root, "2.0.0", platform.LinuxX64))
	assert.Equal(t, filepath.Join(root, "latest", "bun-windows-x64"), InstallDir(root, "", platform.WindowsX64))
}

func TestLocatorDefaults(t *testing.T) {
	l := Locator{}
	assert.False(t, l.IsMirrored())

	u, err := l.DownloadURL("1.1.0", platform.LinuxAarch64)
	require.NoError(t, err)
	assert.Equal(t, DownloadURL("1.1.0", platform.LinuxAarch64), u)

	m, err := l.MetadataPageURL("1.1.0", platform.LinuxAarch64)
	require.NoError(t, err)
	assert.Equal(t, MetadataPageURL("1.1.0"), m)
}

func TestLocatorMirror(t *testing.T) {
	l := Locator{
		DownloadTemplate: "https://mirror.internal/bun/{{.version}}/{{.archive}}",
		MetadataTemplate: "https://mirror.internal/bun/{{.version}}/SHASUMS.html",
	}
	assert.True(t, l.IsMirrored())

	u, err := l.DownloadURL("1.1.0", platform.LinuxX64)
	require.NoError(t, err)
	assert.Equal(t, "https://mirror.internal/bun/1.1.0/bun-linux-x64.zip", u)

	m, err := l.MetadataPageURL("", platform.LinuxX64)
	require.NoError(t, err)
	assert.Equal(t, "https://mirror.internal/bun/latest/SHASUMS.html", m)
}
