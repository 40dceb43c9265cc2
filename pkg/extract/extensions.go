package extract

import (
	"path/filepath"
	"strings"
)

var archiveExtensions = []string{".tar.gz", ".tgz", ".tar.xz", ".txz", ".tar", ".zip"}

// GetExtension returns the archive extension from a file name or URL
func GetExtension(url string) string {
	// Remove query parameters from URLs
	if idx := strings.Index(url, "?"); idx != -1 {
		url = url[:idx]
	}

	lower := strings.ToLower(url)
	for _, ext := range archiveExtensions {
		if strings.HasSuffix(lower, ext) {
			return ext
		}
	}
	return filepath.Ext(url)
}

// IsArchive returns true if the file appears to be an archive based on its extension
func IsArchive(path string) bool {
	lower := strings.ToLower(path)
	for _, ext := range archiveExtensions {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}

// StripExtension removes a known archive suffix, bun-linux-x64.zip -> bun-linux-x64.
// Names without a known suffix are returned unchanged.
func StripExtension(name string) string {
	if !IsArchive(name) {
		return name
	}
	return name[:len(name)-len(GetExtension(name))]
}
