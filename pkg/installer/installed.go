package installer

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/flanksource/bunup/pkg/extract"
	"github.com/flanksource/bunup/pkg/platform"
	"github.com/flanksource/bunup/pkg/release"
	"github.com/flanksource/bunup/pkg/types"
	"github.com/flanksource/bunup/pkg/version"
)

// ErrInvalidVersion is returned for version names that cannot be used as a directory
var ErrInvalidVersion = errors.New("invalid version")

// Installed lists every executable found under root, newest version first.
// A missing root has no installations.
func Installed(root string) ([]types.Installation, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read install root %s: %w", root, err)
	}

	var versions []string
	for _, entry := range entries {
		if entry.IsDir() {
			versions = append(versions, entry.Name())
		}
	}

	var installs []types.Installation
	for _, v := range version.Sort(versions) {
		for _, p := range platform.All() {
			dir := release.InstallDir(root, v, p)
			exe, ok := extract.FindExecutable(dir, p.Executable)
			if !ok {
				continue
			}
			install := types.Installation{
				Version:    v,
				Platform:   p,
				InstallDir: dir,
				Executable: exe,
			}
			if info, err := os.Stat(exe); err == nil {
				install.Size = info.Size()
				install.ModTime = info.ModTime()
			}
			installs = append(installs, install)
		}
	}
	return installs, nil
}

// Uninstall removes version v from root. A zero platform removes every
// platform of that version. Removing something that is not installed is not an error.
func Uninstall(root, v string, p platform.Platform) error {
	v = version.Normalize(v)
	if v == "." || v == ".." || strings.ContainsAny(v, `/\`) || filepath.Base(v) != v {
		return fmt.Errorf("%w: %q", ErrInvalidVersion, v)
	}

	dir := filepath.Join(root, v)
	if !p.IsZero() {
		dir = release.InstallDir(root, v, p)
	}
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("failed to remove %s: %w", dir, err)
	}

	// drop the version directory once its last platform is gone
	if !p.IsZero() {
		parent := filepath.Join(root, v)
		if entries, err := os.ReadDir(parent); err == nil && len(entries) == 0 {
			_ = os.Remove(parent)
		}
	}
	return nil
}
