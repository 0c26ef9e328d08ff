package releases

import (
	"errors"
	"sort"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// ErrNoLatestRelease is returned when no tag parses as a semantic version.
var ErrNoLatestRelease = errors.New("releases: latest release is not defined")

// NormalizeTag drops everything up to and including the first "@", so
// monorepo tags such as "@remix-run/dev@1.6.0" become "1.6.0".
func NormalizeTag(tag string) string {
	if idx := strings.Index(tag, "@"); idx >= 0 {
		return tag[idx+1:]
	}
	return tag
}

// ParseVersion parses a full semantic version. A single leading "v" is
// accepted; "=" prefixes and partial versions such as "1.2" are rejected.
func ParseVersion(value string) (*semver.Version, error) {
	trimmed := strings.TrimPrefix(strings.TrimSpace(value), "v")
	return semver.StrictNewVersion(trimmed)
}

// Versioned pairs a release with its parsed version.
type Versioned struct {
	Release Release
	Version *semver.Version
}

// SortVersions returns the releases with valid normalised tags, highest
// version first. Releases sharing a version keep their input order.
func SortVersions(list []Release) []Versioned {
	out := make([]Versioned, 0, len(list))
	for _, release := range list {
		version, err := ParseVersion(release.Version())
		if err != nil {
			continue
		}
		out = append(out, Versioned{Release: release, Version: version})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Version.GreaterThan(out[j].Version)
	})
	return out
}

// LatestVersion returns the highest valid version in list.
func LatestVersion(list []Release) (*semver.Version, error) {
	sorted := SortVersions(list)
	if len(sorted) == 0 {
		return nil, ErrNoLatestRelease
	}
	return sorted[0].Version, nil
}

// ReleasesSince keeps the releases whose normalised version is at least
// latest, compared by plain precedence so prereleases participate. Input
// order is preserved.
func ReleasesSince(list []Release, latest *semver.Version) []Release {
	if latest == nil {
		return nil
	}
	out := make([]Release, 0, len(list))
	for _, release := range list {
		version, err := ParseVersion(release.Version())
		if err != nil {
			continue
		}
		if !version.LessThan(latest) {
			out = append(out, release)
		}
	}
	return out
}
