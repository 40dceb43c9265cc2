package checksum

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/flanksource/bunup/pkg/download"
	"github.com/flanksource/bunup/pkg/utils"
	"github.com/flanksource/clicky/task"
)

var (
	// ErrChecksumMismatch is matched by *MismatchError
	ErrChecksumMismatch = errors.New("checksum mismatch")
	// ErrChecksumNotFound is returned when a release page lists no digest for an archive
	ErrChecksumNotFound = errors.New("checksum not found")
)

// searchWindow is how many characters may separate an archive name from its "sha256:" digest
const searchWindow = 400

// MismatchError reports a downloaded file whose digest differs from the published one
type MismatchError struct {
	File     string
	Expected string
	Actual   string
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("checksum mismatch for %s: expected sha256:%s, got sha256:%s", filepath.Base(e.File), e.Expected, e.Actual)
}

func (e *MismatchError) Is(target error) bool {
	return target == ErrChecksumMismatch
}

func digestPattern(archive string) *regexp.Regexp {
	return regexp.MustCompile(regexp.QuoteMeta(archive) + fmt.Sprintf(`[\s\S]{0,%d}?sha256:\s*([0-9a-fA-F]{64})`, searchWindow))
}

// FindChecksum searches page for archive followed within 400 characters by
// "sha256:" and 64 hex digits. The first match wins and is lower-cased. Pages
// that only match once markup is stripped (GitHub release pages) are searched
// again on their visible text, and sha256sum style listings are accepted last.
func FindChecksum(page, archive string) (string, bool) {
	re := digestPattern(archive)
	if m := re.FindStringSubmatch(page); m != nil {
		return strings.ToLower(m[1]), true
	}

	if text := VisibleText(page); text != page {
		if m := re.FindStringSubmatch(text); m != nil {
			return strings.ToLower(m[1]), true
		}
	}

	if value, err := ParseChecksumFile(page, archive); err == nil {
		return value, true
	}
	return "", false
}

// ExpectedChecksum fetches pageURL and returns the published sha256 of archive
func ExpectedChecksum(ctx context.Context, pageURL, archive string, t *task.Task, opts ...download.DownloadOption) (string, error) {
	utils.LogChecksumFetch(t, pageURL, archive)

	page, err := download.FetchText(ctx, pageURL, opts...)
	if err != nil {
		return "", fmt.Errorf("failed to fetch checksums for %s: %w", archive, err)
	}

	value, ok := FindChecksum(page, archive)
	if !ok {
		return "", fmt.Errorf("%w: no sha256 for %s on %s", ErrChecksumNotFound, archive, pageURL)
	}
	return value, nil
}

// CalculateBinaryChecksum streams path through SHA-256 and returns lower-case hex
func CalculateBinaryChecksum(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open file %s: %w", path, err)
	}
	defer func() { _ = file.Close() }()

	hasher := sha256.New()
	if _, err := io.Copy(hasher, file); err != nil {
		return "", fmt.Errorf("failed to read file %s: %w", path, err)
	}
	return hex.EncodeToString(hasher.Sum(nil)), nil
}

// Verify compares the digest of path with expected (case-insensitive). A
// mismatching file is deleted so the next install downloads it again.
func Verify(path, expected string) (string, error) {
	expected = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(expected), "sha256:")))

	actual, err := CalculateBinaryChecksum(path)
	if err != nil {
		return "", err
	}

	if actual != expected {
		if rmErr := os.Remove(path); rmErr != nil && !os.IsNotExist(rmErr) {
			return actual, fmt.Errorf("%w (failed to remove %s: %v)", &MismatchError{File: path, Expected: expected, Actual: actual}, path, rmErr)
		}
		return actual, &MismatchError{File: path, Expected: expected, Actual: actual}
	}
	return actual, nil
}
