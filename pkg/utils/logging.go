package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/flanksource/clicky/task"
)

// RelativePath converts an absolute path to one relative to the working
// directory, falling back to the base name when that is not shorter.
func RelativePath(absPath string) string {
	if absPath == "" {
		return ""
	}

	cwd, err := os.Getwd()
	if err != nil {
		return filepath.Base(absPath)
	}

	relPath, err := filepath.Rel(cwd, absPath)
	if err != nil || len(relPath) > len(absPath) {
		return filepath.Base(absPath)
	}
	return relPath
}

// LogPath returns a clean path for logging (relative if shorter, basename otherwise)
func LogPath(path string) string {
	if path == "" {
		return ""
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return filepath.Base(path)
	}
	return RelativePath(absPath)
}

// FormatFileInfo returns a formatted string with file size and permissions
func FormatFileInfo(path string) string {
	info, err := os.Stat(path)
	if err != nil {
		return filepath.Base(path)
	}
	if info.IsDir() {
		return fmt.Sprintf("%s (dir)", filepath.Base(path))
	}
	return fmt.Sprintf("%s (%s, %o)", filepath.Base(path), FormatBytes(info.Size()), info.Mode()&0777)
}

// FormatBytes formats bytes into human-readable format
func FormatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}

// ShortenURL drops the scheme and, for long URLs, everything between the host and the file name
func ShortenURL(url string) string {
	url = strings.TrimPrefix(url, "https://")
	url = strings.TrimPrefix(url, "http://")

	if len(url) > 60 {
		parts := strings.Split(url, "/")
		if len(parts) > 2 {
			return fmt.Sprintf("%s/.../%s", parts[0], parts[len(parts)-1])
		}
	}
	return url
}

// LogOperation runs fn as one named installer stage, logging its outcome and duration on t
func LogOperation(t *task.Task, operation, target string, fn func() error) error {
	if t == nil {
		return fn()
	}

	t.SetDescription(fmt.Sprintf("%s %s...", operation, target))

	start := time.Now()
	err := fn()
	duration := time.Since(start)

	if err != nil {
		t.Errorf("❌ %s failed: %v", operation, err)
		return err
	}

	if duration > 500*time.Millisecond {
		t.V(2).Infof("✅ %s completed (%v)", operation, duration.Round(10*time.Millisecond))
	} else {
		t.V(2).Infof("✅ %s completed", operation)
	}
	return nil
}

// LogDownloadStart logs the start of a download with clean formatting
func LogDownloadStart(t *task.Task, url, dest string) {
	if t == nil {
		return
	}
	t.Infof("Downloading from %s", ShortenURL(url))
	t.SetDescription(fmt.Sprintf("Downloading %s", filepath.Base(dest)))
}

// LogChecksumFetch logs where the expected digest is read from
func LogChecksumFetch(t *task.Task, pageURL, archive string) {
	if t == nil {
		return
	}
	t.V(3).Infof("Fetching sha256 of %s from %s", archive, ShortenURL(pageURL))
}

// LogChecksumVerified logs a successful digest comparison
func LogChecksumVerified(t *task.Task, digest, source string) {
	if t == nil {
		return
	}
	display := digest
	if len(display) > 16 {
		display = display[:16] + "..."
	}
	if source != "" {
		t.Infof("✓ Checksum verified: sha256:%s (from %s)", display, ShortenURL(source))
	} else {
		t.Infof("✓ Checksum verified: sha256:%s", display)
	}
}

// LogBinarySearch logs the outcome of an executable search
func LogBinarySearch(t *task.Task, searchDir, binaryName string, found bool, foundPath string) {
	if t == nil {
		return
	}

	if found {
		t.V(4).Infof("Binary search in %s → found %s", LogPath(searchDir), LogPath(foundPath))
	} else {
		t.V(4).Infof("Binary search in %s → %s not found", LogPath(searchDir), binaryName)
	}
}

// LogExtraction logs extraction operations with file count
func LogExtraction(t *task.Task, archivePath, extractDir string, fileCount int) {
	if t == nil {
		return
	}

	if fileCount > 0 {
		t.Infof("Extracted %s (%d files) to %s", filepath.Base(archivePath), fileCount, LogPath(extractDir))
	} else {
		t.Infof("Extracting %s to %s", filepath.Base(archivePath), LogPath(extractDir))
	}
}
