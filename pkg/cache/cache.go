package cache

import (
	"crypto/sha256"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/flanksource/bunup/pkg/utils"
)

// Cache is a download cache shared between install roots, keyed by archive URL.
// A zero Cache (empty Dir) is disabled: lookups miss and stores are no-ops.
type Cache struct {
	Dir string
}

// New returns a cache rooted at dir
func New(dir string) Cache {
	return Cache{Dir: dir}
}

// Enabled reports whether a cache directory is configured
func (c Cache) Enabled() bool {
	return c.Dir != ""
}

// Path returns where an archive downloaded from url is cached.
// Format: {dir}/{url-hash}/{filename}
func (c Cache) Path(url, filename string) string {
	if !c.Enabled() {
		return ""
	}
	return filepath.Join(c.Dir, hashURL(url), filename)
}

// Lookup returns the cached copy of url if present
func (c Cache) Lookup(url, filename string) (string, bool) {
	if !c.Enabled() {
		return "", false
	}

	path := c.Path(url, filename)
	if info, err := os.Stat(path); err == nil && info.Mode().IsRegular() {
		return path, true
	}
	return "", false
}

// Store copies a downloaded file into the cache
func (c Cache) Store(url, sourcePath string) error {
	if !c.Enabled() {
		return nil
	}

	path := c.Path(url, filepath.Base(sourcePath))
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}
	if err := utils.CopyFile(sourcePath, path, 0644); err != nil {
		return fmt.Errorf("failed to copy to cache: %w", err)
	}
	return nil
}

// Restore copies a cached file to dest, creating its parent directories
func (c Cache) Restore(cachePath, dest string) error {
	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return fmt.Errorf("failed to create destination directory: %w", err)
	}
	if err := utils.CopyFile(cachePath, dest, 0644); err != nil {
		return fmt.Errorf("failed to copy from cache: %w", err)
	}
	return nil
}

// Evict removes a cached entry, used when a cached archive fails verification
func (c Cache) Evict(url, filename string) error {
	if !c.Enabled() {
		return nil
	}
	if err := os.Remove(c.Path(url, filename)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to evict %s from cache: %w", filename, err)
	}
	return nil
}

// hashURL creates a short hash of a URL for directory naming
func hashURL(url string) string {
	// Normalize URL by removing protocol and trailing slashes
	normalized := strings.TrimPrefix(url, "https://")
	normalized = strings.TrimPrefix(normalized, "http://")
	normalized = strings.TrimSuffix(normalized, "/")

	hash := sha256.Sum256([]byte(normalized))
	return fmt.Sprintf("%x", hash[:8])
}
