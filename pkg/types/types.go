package types

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/flanksource/bunup/pkg/platform"
	"github.com/flanksource/bunup/pkg/utils"
	"github.com/flanksource/clicky"
	"github.com/flanksource/clicky/api"
	"github.com/flanksource/clicky/api/icons"
	"github.com/samber/lo"
)

type InstallStatus string

const (
	InstallStatusInstalled        InstallStatus = "installed"
	InstallStatusAlreadyInstalled InstallStatus = "already_installed"
	InstallStatusFailed           InstallStatus = "failed"
)

func (s InstallStatus) Pretty() api.Text {
	switch s {
	case InstallStatusInstalled:
		return clicky.Text("").Add(icons.Success).Append(" Installed", "text-green-500")
	case InstallStatusAlreadyInstalled:
		return clicky.Text("").Add(icons.Skip).Append(" Already Installed", "text-yellow-500")
	case InstallStatusFailed:
		return clicky.Text("").Add(icons.Error).Append(" Failed", "text-red-500")
	default:
		return clicky.Text(string(s))
	}
}

type VerifyStatus string

const (
	VerifyStatusChecksumMatch    VerifyStatus = "verified"
	VerifyStatusChecksumMismatch VerifyStatus = "checksum_mismatch"
	// VerifyStatusSkipped is only reported when verification was explicitly disabled
	VerifyStatusSkipped VerifyStatus = "skipped"
	// VerifyStatusNotRun is used when an existing installation short-circuits the install
	VerifyStatusNotRun VerifyStatus = "not_run"
)

func (s VerifyStatus) Pretty() api.Text {
	switch s {
	case VerifyStatusChecksumMatch:
		return clicky.Text("").Add(icons.Success).Append(" Checksum Match", "text-green-500")
	case VerifyStatusChecksumMismatch:
		return clicky.Text("").Add(icons.Error).Append(" Checksum Mismatch", "text-red-500")
	case VerifyStatusSkipped:
		return clicky.Text("").Add(icons.Warning).Append(" Checksum Skipped", "text-yellow-500")
	default:
		return clicky.Text(string(s))
	}
}

// InstallResult describes the outcome of installing one Bun version for one platform
type InstallResult struct {
	// Version is the normalized requested version ("latest" or e.g. "1.1.0")
	Version string `json:"version"`
	// Platform is the build that was installed
	Platform platform.Platform `json:"platform"`
	// InstallDir is root/version/<archive base>
	InstallDir string `json:"install_dir"`
	// Executable is the absolute path of the located bun executable
	Executable string `json:"executable,omitempty"`
	// Status indicates the installation outcome (installed, already_installed, failed)
	Status InstallStatus `json:"status,omitempty"`
	// VerifyStatus indicates the result of checksum verification
	VerifyStatus VerifyStatus `json:"verify_status,omitempty"`
	// DownloadURL is the archive URL that was fetched
	DownloadURL string `json:"download_url,omitempty"`
	// ChecksumURL is the release page the expected digest was read from
	ChecksumURL string `json:"checksum_url,omitempty"`
	// Checksum is the SHA-256 of the downloaded archive
	Checksum string `json:"checksum,omitempty"`
	// DownloadSize is the archive size in bytes
	DownloadSize int64 `json:"download_size,omitempty"`
	// Duration is the total time taken for the installation
	Duration time.Duration `json:"duration,omitempty"`
	// Error contains any error encountered during installation
	Error error `json:"-"`
}

func relativeDir(base string) string {
	if base == "" {
		return ""
	}
	cwd, _ := os.Getwd()
	rel, err := filepath.Rel(cwd, base)
	if err != nil || strings.HasPrefix(rel, "..") {
		return base
	}
	return rel
}

func (r InstallResult) Pretty() api.Text {
	text := clicky.Text("").Add(r.Status.Pretty()).Append(": bun@" + r.Version)
	if !r.Platform.IsZero() {
		text = text.Append(" (" + r.Platform.String() + ")")
	}

	if r.Error != nil {
		text = text.Append(" "+r.Error.Error(), "text-red-500")
		return text
	}

	if r.Executable != "" {
		text = text.Append(" to: ", "muted").Append(relativeDir(r.Executable))
	}
	if r.VerifyStatus != "" && r.VerifyStatus != VerifyStatusNotRun {
		text = text.Add(r.VerifyStatus.Pretty())
	}
	if r.Checksum != "" {
		text = text.Append(" sha256:", "muted").Append(lo.Ellipsis(r.Checksum, 12))
	}
	if r.Duration > 0 {
		text = text.Append(" in ", "muted").Printf("%s", r.Duration.Round(time.Millisecond))
	}
	if r.DownloadSize > 0 {
		text = text.Append(" downloaded: ", "muted").Append(utils.FormatBytes(r.DownloadSize))
	}

	return text
}

// Installation is a Bun executable found under an install root
type Installation struct {
	Version    string            `json:"version" yaml:"version"`
	Platform   platform.Platform `json:"platform" yaml:"platform"`
	InstallDir string            `json:"install_dir" yaml:"install_dir"`
	Executable string            `json:"executable" yaml:"executable"`
	Size       int64             `json:"size,omitempty" yaml:"size,omitempty"`
	ModTime    time.Time         `json:"mod_time" yaml:"mod_time"`
}

func (i Installation) Pretty() api.Text {
	return clicky.Text("").Append(i.Version, "bold").
		Append(" ("+i.Platform.String()+")").
		Append(" ").Append(relativeDir(i.Executable), "text-muted")
}

// Release is a published Bun release
type Release struct {
	// Tag is the git tag, e.g. bun-v1.1.0
	Tag string `json:"tag" yaml:"tag"`
	// Version is the tag with the bun-v prefix removed
	Version    string    `json:"version" yaml:"version"`
	Prerelease bool      `json:"prerelease,omitempty" yaml:"prerelease,omitempty"`
	Published  time.Time `json:"published,omitempty" yaml:"published,omitempty"`
	URL        string    `json:"url,omitempty" yaml:"url,omitempty"`
}

func (r Release) Pretty() api.Text {
	text := clicky.Text("").Append(r.Version, "bold")
	if r.Prerelease {
		text = text.Append(" prerelease", "text-yellow-500")
	}
	if !r.Published.IsZero() {
		text = text.Append(" "+r.Published.Format("2006-01-02"), "text-muted")
	}
	return text
}

// RateLimit represents API rate limit information
type RateLimit struct {
	Remaining int        `json:"remaining"`
	Total     int        `json:"total"`
	ResetTime *time.Time `json:"reset_time"`
}

// AuthStatus describes how GitHub API calls are authenticated
type AuthStatus struct {
	TokenSource   string     `json:"token_source,omitempty"`
	Authenticated bool       `json:"authenticated"`
	Username      string     `json:"username,omitempty"`
	Name          string     `json:"name,omitempty"`
	RateLimit     *RateLimit `json:"rate_limit,omitempty"`
	Error         string     `json:"error,omitempty"`
}
