package release

import (
	"fmt"
	"path/filepath"

	"github.com/flanksource/bunup/pkg/platform"
	"github.com/flanksource/bunup/pkg/template"
	"github.com/flanksource/bunup/pkg/version"
)

const (
	GitHubHost   = "https://github.com"
	Repo         = "oven-sh/bun"
	MetadataRepo = "oven-sh/bun-releases-for-updater"
	TagPrefix    = "bun-v"
)

// Tag returns the release tag for a pinned version, or "" for latest
func Tag(v string) string {
	v = version.Normalize(v)
	if version.IsLatest(v) {
		return ""
	}
	return TagPrefix + v
}

// DownloadURL returns the GitHub URL of the platform archive for a version
func DownloadURL(v string, p platform.Platform) string {
	v = version.Normalize(v)
	if version.IsLatest(v) {
		return fmt.Sprintf("%s/%s/releases/latest/download/%s", GitHubHost, Repo, p.Archive)
	}
	return fmt.Sprintf("%s/%s/releases/download/%s/%s", GitHubHost, Repo, Tag(v), p.Archive)
}

// MetadataPageURL returns the release page listing the sha256 digests of every archive
func MetadataPageURL(v string) string {
	v = version.Normalize(v)
	if version.IsLatest(v) {
		return fmt.Sprintf("%s/%s/releases/latest", GitHubHost, MetadataRepo)
	}
	return fmt.Sprintf("%s/%s/releases/tag/%s", GitHubHost, MetadataRepo, Tag(v))
}

// InstallDir is root/<version>/<archive name without .zip>
func InstallDir(root, v string, p platform.Platform) string {
	return filepath.Join(root, version.Normalize(v), p.ArchiveBase())
}

// ArchivePath is where the downloaded archive is stored before extraction
func ArchivePath(root, v string, p platform.Platform) string {
	return filepath.Join(InstallDir(root, v, p), p.Archive)
}

// Locator resolves artifact URLs, optionally through mirror templates.
// Templates are Go templates (or CEL expressions) over version, tag, archive,
// platform and latest. Empty templates use the GitHub URLs.
type Locator struct {
	DownloadTemplate string `json:"download,omitempty" yaml:"download,omitempty"`
	MetadataTemplate string `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}

func urlData(v string, p platform.Platform) template.URLData {
	v = version.Normalize(v)
	return template.URLData{
		Version:  v,
		Tag:      Tag(v),
		Archive:  p.Archive,
		Platform: p.Name,
		Latest:   version.IsLatest(v),
	}
}

func (l Locator) DownloadURL(v string, p platform.Platform) (string, error) {
	if l.DownloadTemplate == "" {
		return DownloadURL(v, p), nil
	}
	return template.RenderURL(l.DownloadTemplate, urlData(v, p))
}

func (l Locator) MetadataPageURL(v string, p platform.Platform) (string, error) {
	if l.MetadataTemplate == "" {
		return MetadataPageURL(v), nil
	}
	return template.RenderURL(l.MetadataTemplate, urlData(v, p))
}

// IsMirrored reports whether any URL is served from a template instead of GitHub
func (l Locator) IsMirrored() bool {
	return l.DownloadTemplate != "" || l.MetadataTemplate != ""
}
