package platform

import (
	"errors"
	"fmt"
	"runtime"
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"
	"github.com/flanksource/bunup/pkg/extract"
	"github.com/shirou/gopsutil/v4/host"
)

var (
	// ErrUnsupportedPlatform is returned when the host OS/arch pair has no auto-detectable build
	ErrUnsupportedPlatform = errors.New("unsupported platform")
	// ErrUnknownPlatform is returned when an explicitly selected platform name is not in the table
	ErrUnknownPlatform = errors.New("unknown platform")
)

// Platform describes one Bun release build: the archive published for it and
// the name of the executable inside that archive.
type Platform struct {
	Name       string `json:"name" yaml:"name"`
	Archive    string `json:"archive" yaml:"archive"`
	Executable string `json:"executable" yaml:"executable"`
	OS         string `json:"os" yaml:"os"`
	Arch       string `json:"arch" yaml:"arch"`
	// Variant is empty for the default build, otherwise "baseline", "musl" or "musl-baseline"
	Variant string `json:"variant,omitempty" yaml:"variant,omitempty"`
	// Detectable platforms can be returned by Detect, the rest require explicit selection
	Detectable bool `json:"detectable" yaml:"detectable"`
}

var (
	WindowsX64           = newPlatform("windows-x64", "windows", "x64", "", true)
	WindowsX64Baseline   = newPlatform("windows-x64-baseline", "windows", "x64", "baseline", false)
	DarwinAarch64        = newPlatform("darwin-aarch64", "darwin", "aarch64", "", true)
	DarwinX64            = newPlatform("darwin-x64", "darwin", "x64", "", true)
	LinuxX64             = newPlatform("linux-x64", "linux", "x64", "", true)
	LinuxX64Baseline     = newPlatform("linux-x64-baseline", "linux", "x64", "baseline", false)
	LinuxAarch64         = newPlatform("linux-aarch64", "linux", "aarch64", "", true)
	LinuxX64Musl         = newPlatform("linux-x64-musl", "linux", "x64", "musl", false)
	LinuxX64MuslBaseline = newPlatform("linux-x64-musl-baseline", "linux", "x64", "musl-baseline", false)
	LinuxAarch64Musl     = newPlatform("linux-aarch64-musl", "linux", "aarch64", "musl", false)
)

var table = []Platform{
	WindowsX64,
	WindowsX64Baseline,
	DarwinAarch64,
	DarwinX64,
	LinuxX64,
	LinuxX64Baseline,
	LinuxAarch64,
	LinuxX64Musl,
	LinuxX64MuslBaseline,
	LinuxAarch64Musl,
}

func newPlatform(name, os, arch, variant string, detectable bool) Platform {
	exe := "bun"
	if os == "windows" {
		exe = "bun.exe"
	}
	return Platform{
		Name:       name,
		Archive:    "bun-" + name + ".zip",
		Executable: exe,
		OS:         os,
		Arch:       arch,
		Variant:    variant,
		Detectable: detectable,
	}
}

// String returns the platform name (e.g., "linux-x64")
func (p Platform) String() string {
	return p.Name
}

// IsZero reports whether p is the empty Platform
func (p Platform) IsZero() bool {
	return p.Name == ""
}

// IsWindows returns true if the platform is Windows
func (p Platform) IsWindows() bool {
	return p.OS == "windows"
}

// ArchiveBase returns the archive name without its archive suffix, e.g. bun-linux-x64
func (p Platform) ArchiveBase() string {
	return extract.StripExtension(p.Archive)
}

// All returns every known platform in table order
func All() []Platform {
	out := make([]Platform, len(table))
	copy(out, table)
	return out
}

// Detect maps free-form OS and architecture strings to a platform. Only the
// common glibc builds are returned; baseline, musl and windows-baseline builds
// must be selected with Parse.
func Detect(osName, arch string) (Platform, error) {
	os := strings.ToLower(osName)
	a := strings.ToLower(arch)

	isArm64 := strings.Contains(a, "aarch64") || strings.Contains(a, "arm64")
	isX64 := strings.Contains(a, "x86_64") || strings.Contains(a, "amd64")
	isMac := strings.Contains(os, "mac") || strings.Contains(os, "darwin")

	switch {
	case strings.Contains(os, "win") && !strings.Contains(os, "darwin") && isX64:
		return WindowsX64, nil
	case isMac && isArm64:
		return DarwinAarch64, nil
	case isMac && isX64:
		return DarwinX64, nil
	case strings.Contains(os, "linux") && isArm64:
		return LinuxAarch64, nil
	case strings.Contains(os, "linux") && isX64:
		return LinuxX64, nil
	}

	return Platform{}, fmt.Errorf("%w: os=%s arch=%s", ErrUnsupportedPlatform, os, a)
}

// Current detects the platform of the running host. The architecture is the
// kernel machine string (uname -m), falling back to GOARCH.
func Current() (Platform, error) {
	arch, err := host.KernelArch()
	if err != nil || arch == "" {
		arch = runtime.GOARCH
	}
	p, err := Detect(runtime.GOOS, arch)
	if err != nil && arch != runtime.GOARCH {
		// kernel strings we don't understand (e.g. "i86pc") fall back to the Go toolchain view
		return Detect(runtime.GOOS, runtime.GOARCH)
	}
	return p, err
}

// Parse selects a platform explicitly by name (e.g., "linux-x64-musl") or by archive name
func Parse(name string) (Platform, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	for _, p := range table {
		if n == p.Name || n == p.Archive || n == p.ArchiveBase() {
			return p, nil
		}
	}

	if suggestion := Suggest(n); suggestion != "" {
		return Platform{}, fmt.Errorf("%w: %q (did you mean %s?)", ErrUnknownPlatform, name, suggestion)
	}
	return Platform{}, fmt.Errorf("%w: %q (expected one of %s)", ErrUnknownPlatform, name, strings.Join(Names(), ", "))
}

// Names returns the names of all known platforms
func Names() []string {
	names := make([]string, 0, len(table))
	for _, p := range table {
		names = append(names, p.Name)
	}
	return names
}

// Suggest returns the closest platform name to s, or "" when nothing is close
func Suggest(s string) string {
	if s == "" {
		return ""
	}

	type candidate struct {
		name     string
		distance int
	}
	var candidates []candidate
	for _, p := range table {
		d := levenshtein.ComputeDistance(s, p.Name)
		if d <= len(p.Name)/2 {
			candidates = append(candidates, candidate{p.Name, d})
		}
	}
	if len(candidates) == 0 {
		return ""
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].distance < candidates[j].distance
	})
	return candidates[0].name
}
