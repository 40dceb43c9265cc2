package installer

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/flanksource/bunup/pkg/checksum"
	"github.com/flanksource/bunup/pkg/download"
	"github.com/flanksource/bunup/pkg/extract"
	"github.com/flanksource/bunup/pkg/platform"
	"github.com/flanksource/bunup/pkg/release"
	"github.com/flanksource/bunup/pkg/types"
	"github.com/flanksource/bunup/pkg/utils"
	"github.com/flanksource/bunup/pkg/version"
	"github.com/flanksource/clicky/task"
	"github.com/flanksource/commons/logger"
)

// ErrExecutableNotFound is returned when an extracted archive has no bun executable
var ErrExecutableNotFound = errors.New("executable not found in archive")

// Installer downloads, verifies and unpacks Bun releases into an install root
type Installer struct {
	options InstallOptions
}

// New creates a new installer with the given options
func New(opts ...InstallOption) *Installer {
	options := DefaultOptions()
	for _, opt := range opts {
		opt(&options)
	}
	if options.Root == "" {
		options.Root = DefaultRoot
	}
	return &Installer{options: options}
}

// Root returns the install root
func (i *Installer) Root() string {
	return i.options.Root
}

func (i *Installer) downloadOptions() []download.DownloadOption {
	opts := []download.DownloadOption{download.WithInsecureSkipVerify(i.options.InsecureSkipVerify)}
	if i.options.HTTPClient != nil {
		opts = append(opts, download.WithClient(i.options.HTTPClient))
	}
	return opts
}

// Install makes Bun v for platform p available under the install root. An
// existing executable short-circuits the install without any network access.
// Otherwise the archive is downloaded (or restored from the cache), verified
// against the published sha256, extracted and its executable located.
func (i *Installer) Install(ctx context.Context, v string, p platform.Platform, t *task.Task) (*types.InstallResult, error) {
	start := time.Now()
	v = version.Normalize(v)
	installDir := release.InstallDir(i.options.Root, v, p)

	result := &types.InstallResult{
		Version:    v,
		Platform:   p,
		InstallDir: installDir,
	}
	fail := func(err error) (*types.InstallResult, error) {
		result.Status = types.InstallStatusFailed
		result.Error = err
		result.Duration = time.Since(start)
		return result, err
	}

	if exe, ok := extract.FindExecutable(installDir, p.Executable); ok {
		exe = absPath(exe)
		infof(t, "bun@%s (%s) is already installed at %s", v, p, utils.LogPath(exe))
		result.Executable = exe
		result.Status = types.InstallStatusAlreadyInstalled
		result.VerifyStatus = types.VerifyStatusNotRun
		result.Duration = time.Since(start)
		return result, nil
	}

	downloadURL, err := i.options.Locator.DownloadURL(v, p)
	if err != nil {
		return fail(fmt.Errorf("failed to resolve download URL for %s: %w", p.Archive, err))
	}
	pageURL, err := i.options.Locator.MetadataPageURL(v, p)
	if err != nil {
		return fail(fmt.Errorf("failed to resolve checksum page for %s: %w", p.Archive, err))
	}
	result.DownloadURL = downloadURL
	result.ChecksumURL = pageURL

	archivePath := release.ArchivePath(i.options.Root, v, p)
	cleanup := NewCleanupManager(i.options.Debug, t)
	cleanup.AddFile(archivePath)
	defer cleanup.Cleanup()

	var fromCache bool
	err = utils.LogOperation(t, "Download", p.Archive, func() error {
		fromCache, err = i.fetchArchive(ctx, downloadURL, archivePath, p, t)
		return err
	})
	if err != nil {
		return fail(err)
	}
	if info, err := os.Stat(archivePath); err == nil {
		result.DownloadSize = info.Size()
	}

	err = utils.LogOperation(t, "Verify", p.Archive, func() error {
		return i.verify(ctx, result, archivePath, pageURL, p, t)
	})
	if err != nil {
		if fromCache && errors.Is(err, checksum.ErrChecksumMismatch) {
			if evictErr := i.options.Cache.Evict(downloadURL, p.Archive); evictErr != nil {
				warnf(t, "%v", evictErr)
			}
		}
		return fail(err)
	}

	if !fromCache && result.VerifyStatus == types.VerifyStatusChecksumMatch {
		if err := i.options.Cache.Store(downloadURL, archivePath); err != nil {
			warnf(t, "Could not cache %s: %v", p.Archive, err)
		}
	}

	err = utils.LogOperation(t, "Extract", p.Archive, func() error {
		_, err := extract.Extract(archivePath, installDir, t)
		return err
	})
	if err != nil {
		return fail(err)
	}

	exe, ok := extract.FindExecutableWithLogging(t, installDir, p.Executable)
	if !ok {
		return fail(fmt.Errorf("%w: no %s in %s", ErrExecutableNotFound, p.Executable, installDir))
	}
	exe = absPath(exe)

	if !strings.HasSuffix(strings.ToLower(exe), ".exe") {
		if err := os.Chmod(exe, 0755); err != nil {
			warnf(t, "Could not make %s executable: %v", utils.LogPath(exe), err)
		}
	}

	if t != nil {
		t.V(3).Infof("Executable: %s", utils.FormatFileInfo(exe))
	}

	result.Executable = exe
	result.Status = types.InstallStatusInstalled
	result.Duration = time.Since(start)
	infof(t, "Installed bun@%s (%s) to %s", v, p, utils.LogPath(exe))
	return result, nil
}

// fetchArchive places the archive at dest, reporting whether it came from the
// cache. An archive left by an earlier run is reused, it is verified like any other.
func (i *Installer) fetchArchive(ctx context.Context, url, dest string, p platform.Platform, t *task.Task) (bool, error) {
	if utils.FileExists(dest) {
		infof(t, "Reusing downloaded %s", utils.LogPath(dest))
		return false, nil
	}
	if cached, ok := i.options.Cache.Lookup(url, p.Archive); ok {
		err := i.options.Cache.Restore(cached, dest)
		if err == nil {
			infof(t, "Using cached %s", p.Archive)
			return true, nil
		}
		warnf(t, "Ignoring cached %s: %v", p.Archive, err)
	}
	return false, download.Download(ctx, url, dest, t, i.downloadOptions()...)
}

func (i *Installer) verify(ctx context.Context, result *types.InstallResult, archivePath, pageURL string, p platform.Platform, t *task.Task) error {
	if i.options.SkipChecksum {
		warnf(t, "Checksum verification of %s is disabled", p.Archive)
		result.VerifyStatus = types.VerifyStatusSkipped
		return nil
	}

	expected, err := checksum.ExpectedChecksum(ctx, pageURL, p.Archive, t, i.downloadOptions()...)
	if err != nil {
		return err
	}

	actual, err := checksum.Verify(archivePath, expected)
	result.Checksum = actual
	if err != nil {
		if errors.Is(err, checksum.ErrChecksumMismatch) {
			result.VerifyStatus = types.VerifyStatusChecksumMismatch
		}
		return err
	}

	result.VerifyStatus = types.VerifyStatusChecksumMatch
	utils.LogChecksumVerified(t, actual, pageURL)
	return nil
}

func absPath(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return path
}

func infof(t *task.Task, format string, args ...interface{}) {
	if t != nil {
		t.Infof(format, args...)
		return
	}
	logger.V(1).Infof(format, args...)
}

func warnf(t *task.Task, format string, args ...interface{}) {
	if t != nil {
		t.Warnf(format, args...)
		return
	}
	logger.Warnf(format, args...)
}
