package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/flanksource/bunup/pkg/envs"
	"github.com/flanksource/bunup/pkg/platform"
	"github.com/flanksource/bunup/pkg/release"
	"github.com/flanksource/bunup/pkg/version"
	"gopkg.in/yaml.v3"
)

const (
	ConfigFile  = "bunup.yaml"
	DefaultRoot = ".bunup"
)

// ErrConfigNotFound is returned by Find when no bunup.yaml exists up to the filesystem root
var ErrConfigNotFound = errors.New(ConfigFile + " not found")

// Config is the contents of bunup.yaml
type Config struct {
	// Version of Bun to use, empty means latest
	Version string `json:"version,omitempty" yaml:"version,omitempty"`
	// System selects a platform by name, empty detects the host
	System string `json:"system,omitempty" yaml:"system,omitempty"`
	// Root is the install root, relative paths resolve against WorkingDir
	Root string `json:"root,omitempty" yaml:"root,omitempty"`
	// WorkingDir for launched commands, relative paths resolve against the config file
	WorkingDir         string `json:"working_dir,omitempty" yaml:"working_dir,omitempty"`
	InsecureSkipVerify bool   `json:"insecure_skip_verify,omitempty" yaml:"insecure_skip_verify,omitempty"`
	// ForceBun exposes bun as node and passes --bun to every command
	ForceBun     bool   `json:"force_bun,omitempty" yaml:"force_bun,omitempty"`
	SkipChecksum bool   `json:"skip_checksum,omitempty" yaml:"skip_checksum,omitempty"`
	CacheDir     string `json:"cache_dir,omitempty" yaml:"cache_dir,omitempty"`
	// Mirror replaces the GitHub URLs with templates
	Mirror release.Locator `json:"mirror,omitempty" yaml:"mirror,omitempty"`
	// Scripts are named argument lists run with `bunup exec <name>`
	Scripts map[string][]string `json:"scripts,omitempty" yaml:"scripts,omitempty"`
	// Env is added to the environment of launched commands, values are templates
	Env map[string]string `json:"env,omitempty" yaml:"env,omitempty"`

	// path is the file this config was loaded from, empty for defaults
	path string
}

// Default returns the configuration used when no bunup.yaml exists
func Default() *Config {
	return &Config{
		Version: version.Latest,
		Root:    DefaultRoot,
	}
}

// Path returns the file the configuration was loaded from
func (c *Config) Path() string {
	return c.path
}

// Load loads and parses a bunup.yaml file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	config := Default()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	config.path = path

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", path, err)
	}
	return config, nil
}

// LoadOrDefault loads path, or when empty the nearest bunup.yaml, falling back to defaults
func LoadOrDefault(path string) (*Config, error) {
	if path != "" {
		return Load(path)
	}

	found, err := Find("")
	if errors.Is(err, ErrConfigNotFound) {
		return Default(), nil
	} else if err != nil {
		return nil, err
	}
	return Load(found)
}

// Save writes the configuration as YAML
func Save(config *Config, path string) error {
	if path == "" {
		path = ConfigFile
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file %s: %w", path, err)
	}
	return nil
}

// Find searches for bunup.yaml in dir (default: the current directory) and its parents
func Find(dir string) (string, error) {
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", err
		}
		dir = wd
	}

	for {
		configPath := filepath.Join(dir, ConfigFile)
		if _, err := os.Stat(configPath); err == nil {
			return configPath, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached root directory
			break
		}
		dir = parent
	}

	return "", fmt.Errorf("%w in current directory or any parent directory", ErrConfigNotFound)
}

// Validate checks the configuration for common errors
func (c *Config) Validate() error {
	if c.System != "" {
		if _, err := platform.Parse(c.System); err != nil {
			return err
		}
	}

	for name, args := range c.Scripts {
		if strings.TrimSpace(name) == "" {
			return fmt.Errorf("script with an empty name")
		}
		if len(args) == 0 {
			return fmt.Errorf("script %s has no arguments", name)
		}
	}

	for key := range c.Env {
		if key == "" || strings.Contains(key, "=") {
			return fmt.Errorf("invalid environment variable name %q", key)
		}
	}
	return nil
}

// ScriptNames returns the configured script names, sorted
func (c *Config) ScriptNames() []string {
	names := make([]string, 0, len(c.Scripts))
	for name := range c.Scripts {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Overrides are command line values applied over the file. Empty strings and
// nil pointers leave the file value in place.
type Overrides struct {
	Version            string
	System             string
	Root               string
	WorkingDir         string
	CacheDir           string
	InsecureSkipVerify *bool
	ForceBun           *bool
	SkipChecksum       *bool
}

// Apply overlays o onto c
func (c *Config) Apply(o Overrides) *Config {
	if o.Version != "" {
		c.Version = o.Version
	}
	if o.System != "" {
		c.System = o.System
	}
	if o.Root != "" {
		c.Root = o.Root
	}
	if o.WorkingDir != "" {
		c.WorkingDir = o.WorkingDir
	}
	if o.CacheDir != "" {
		c.CacheDir = o.CacheDir
	}
	if o.InsecureSkipVerify != nil {
		c.InsecureSkipVerify = *o.InsecureSkipVerify
	}
	if o.ForceBun != nil {
		c.ForceBun = *o.ForceBun
	}
	if o.SkipChecksum != nil {
		c.SkipChecksum = *o.SkipChecksum
	}
	return c
}

// Resolved is the configuration with every default applied and every path absolute
type Resolved struct {
	Version            string
	Platform           platform.Platform
	Root               string
	WorkingDir         string
	CacheDir           string
	InsecureSkipVerify bool
	ForceBun           bool
	SkipChecksum       bool
	Mirror             release.Locator
	Scripts            map[string][]string
	// Env holds the rendered env values
	Env map[string]string
}

// Resolve applies defaults, detects the platform when none is configured and
// renders the env templates.
func (c *Config) Resolve() (*Resolved, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	base := ""
	if c.path != "" {
		base = filepath.Dir(c.path)
	}
	workingDir, err := absPath(base, c.WorkingDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve working_dir: %w", err)
	}

	root := c.Root
	if strings.TrimSpace(root) == "" {
		root = DefaultRoot
	}
	if root, err = absPath(workingDir, root); err != nil {
		return nil, fmt.Errorf("failed to resolve root: %w", err)
	}

	var cacheDir string
	if c.CacheDir != "" {
		if cacheDir, err = absPath(workingDir, c.CacheDir); err != nil {
			return nil, fmt.Errorf("failed to resolve cache_dir: %w", err)
		}
	}

	var p platform.Platform
	if c.System != "" {
		p, err = platform.Parse(c.System)
	} else {
		p, err = platform.Current()
	}
	if err != nil {
		return nil, err
	}

	resolved := &Resolved{
		Version:            version.Normalize(c.Version),
		Platform:           p,
		Root:               root,
		WorkingDir:         workingDir,
		CacheDir:           cacheDir,
		InsecureSkipVerify: c.InsecureSkipVerify,
		ForceBun:           c.ForceBun,
		SkipChecksum:       c.SkipChecksum,
		Mirror:             c.Mirror,
		Scripts:            c.Scripts,
	}

	resolved.Env, err = envs.RenderEnvs(c.Env, resolved.TemplateData())
	if err != nil {
		return nil, err
	}
	return resolved, nil
}

// InstallDir is where the configured version is installed
func (r *Resolved) InstallDir() string {
	return release.InstallDir(r.Root, r.Version, r.Platform)
}

// TemplateData is the set of variables available to env templates
func (r *Resolved) TemplateData() map[string]interface{} {
	return map[string]interface{}{
		"version":     r.Version,
		"platform":    r.Platform.Name,
		"os":          r.Platform.OS,
		"arch":        r.Platform.Arch,
		"root":        r.Root,
		"install_dir": r.InstallDir(),
		"working_dir": r.WorkingDir,
	}
}

// absPath expands ~ and makes path absolute relative to base (the current directory when empty)
func absPath(base, path string) (string, error) {
	path = strings.TrimSpace(path)
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		path = filepath.Join(home, strings.TrimPrefix(path, "~"))
	}
	if filepath.IsAbs(path) {
		return filepath.Clean(path), nil
	}
	if base == "" {
		return filepath.Abs(path)
	}
	return filepath.Abs(filepath.Join(base, path))
}
