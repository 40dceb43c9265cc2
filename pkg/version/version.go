package version

import (
	"strings"
)

// Latest selects the newest published release
const Latest = "latest"

// Normalize returns Latest for blank input, otherwise the trimmed version
// unchanged. No prefix stripping or semver validation is applied: "1.1.0" is
// used as-is to build the bun-v1.1.0 release tag.
func Normalize(version string) string {
	version = strings.TrimSpace(version)
	if version == "" {
		return Latest
	}
	return version
}

// NormalizePtr is Normalize for optional values, nil means Latest
func NormalizePtr(version *string) string {
	if version == nil {
		return Latest
	}
	return Normalize(*version)
}

// IsLatest reports whether version resolves to the Latest alias
func IsLatest(version string) bool {
	return Normalize(version) == Latest
}
