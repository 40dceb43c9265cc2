package version

import (
	"fmt"
	"sort"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// Compare orders two versions, returning -1, 0 or 1. Semantic versions
// compare by precedence and always rank above names that are not semver
// (such as "latest"), which compare lexically.
func Compare(v1, v2 string) int {
	sv1, err1 := semver.NewVersion(v1)
	sv2, err2 := semver.NewVersion(v2)

	switch {
	case err1 == nil && err2 == nil:
		return sv1.Compare(sv2)
	case err1 == nil:
		return 1
	case err2 == nil:
		return -1
	}
	return strings.Compare(v1, v2)
}

// Sort orders versions newest first in place and returns the slice
func Sort(versions []string) []string {
	sort.SliceStable(versions, func(i, j int) bool {
		si, erri := semver.NewVersion(versions[i])
		sj, errj := semver.NewVersion(versions[j])
		switch {
		case erri == nil && errj == nil:
			return si.GreaterThan(sj)
		case erri == nil:
			return true
		case errj == nil:
			return false
		}
		return versions[i] < versions[j]
	})
	return versions
}

// IsPrerelease reports whether version carries a semver pre-release suffix (e.g. 1.2.0-canary.1)
func IsPrerelease(version string) bool {
	v, err := semver.NewVersion(version)
	if err != nil {
		return false
	}
	return v.Prerelease() != ""
}

// Filter returns the versions satisfying a semver constraint such as "^1.1" or ">=1.0.0 <1.2".
// An empty constraint or Latest keeps every version.
func Filter(versions []string, constraint string) ([]string, error) {
	constraint = strings.TrimSpace(constraint)
	if constraint == "" || constraint == Latest {
		return versions, nil
	}

	c, err := semver.NewConstraint(constraint)
	if err != nil {
		return nil, fmt.Errorf("invalid version constraint %q: %w", constraint, err)
	}

	var filtered []string
	for _, v := range versions {
		sv, err := semver.NewVersion(v)
		if err != nil {
			continue
		}
		if c.Check(sv) {
			filtered = append(filtered, v)
		}
	}
	return filtered, nil
}

// Newest returns the highest version, skipping pre-releases when stableOnly is set
func Newest(versions []string, stableOnly bool) (string, error) {
	var candidates []string
	for _, v := range versions {
		if _, err := semver.NewVersion(v); err != nil {
			continue
		}
		if stableOnly && IsPrerelease(v) {
			continue
		}
		candidates = append(candidates, v)
	}
	if len(candidates) == 0 {
		return "", fmt.Errorf("no matching versions in %d candidates", len(versions))
	}
	return Sort(candidates)[0], nil
}
