package utils

import (
	"fmt"
	"os"

	"github.com/flanksource/commons/files"
)

// CopyFile copies src to dst, replacing dst, and sets dst's permissions to mode
func CopyFile(src, dst string, mode os.FileMode) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", src, err)
	}
	defer func() { _ = in.Close() }()

	// CopyFromReader does not truncate an existing file
	if err := os.Remove(dst); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to replace %s: %w", dst, err)
	}
	if _, err := files.CopyFromReader(in, dst, mode); err != nil {
		return fmt.Errorf("failed to copy %s to %s: %w", src, dst, err)
	}
	// umask applies to newly created files
	return os.Chmod(dst, mode)
}

// FileExists reports whether path exists and is a regular file
func FileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
