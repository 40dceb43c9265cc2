package installer

import (
	"net/http"

	"github.com/flanksource/bunup/pkg/cache"
	"github.com/flanksource/bunup/pkg/release"
)

// DefaultRoot is the install root used when none is configured
const DefaultRoot = ".bunup"

// InstallOptions configures the installation behavior
type InstallOptions struct {
	// Root holds one directory per version: Root/<version>/<archive base>
	Root string
	// InsecureSkipVerify disables TLS verification for this installer's requests only
	InsecureSkipVerify bool
	// SkipChecksum installs without comparing the archive against the published sha256
	SkipChecksum bool
	// Debug keeps the downloaded archive after extraction
	Debug bool
	// Locator builds download and metadata URLs, the zero value uses GitHub
	Locator release.Locator
	// Cache is a shared download cache, the zero value disables it
	Cache      cache.Cache
	HTTPClient *http.Client
}

// InstallOption is a functional option for configuring installation
type InstallOption func(*InstallOptions)

// WithRoot sets the install root
func WithRoot(root string) InstallOption {
	return func(opts *InstallOptions) {
		opts.Root = root
	}
}

// WithInsecureSkipVerify disables TLS certificate verification for downloads
func WithInsecureSkipVerify(insecure bool) InstallOption {
	return func(opts *InstallOptions) {
		opts.InsecureSkipVerify = insecure
	}
}

// WithSkipChecksum disables checksum verification
func WithSkipChecksum(skip bool) InstallOption {
	return func(opts *InstallOptions) {
		opts.SkipChecksum = skip
	}
}

// WithDebug enables debug mode, keeping downloaded files
func WithDebug(debug bool) InstallOption {
	return func(opts *InstallOptions) {
		opts.Debug = debug
	}
}

// WithLocator serves downloads from mirror URL templates
func WithLocator(locator release.Locator) InstallOption {
	return func(opts *InstallOptions) {
		opts.Locator = locator
	}
}

func WithCache(c cache.Cache) InstallOption {
	return func(opts *InstallOptions) {
		opts.Cache = c
	}
}

// WithHTTPClient overrides the client used for every request
func WithHTTPClient(client *http.Client) InstallOption {
	return func(opts *InstallOptions) {
		opts.HTTPClient = client
	}
}

// DefaultOptions returns sensible default options
func DefaultOptions() InstallOptions {
	return InstallOptions{
		Root: DefaultRoot,
	}
}
