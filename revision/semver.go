package revision

import (
	"strings"

	"golang.org/x/mod/semver"
)

// normalize adapts a bare "MAJOR.MINOR.PATCH[-PRERELEASE]" engine
// version string (as used throughout the revision registry) to the
// "v"-prefixed form golang.org/x/mod/semver requires.
func normalize(v string) string {
	if v == "" {
		return ""
	}
	if strings.HasPrefix(v, "v") {
		return v
	}
	return "v" + v
}

// Compare orders two engine version strings, honoring pre-release tags
// (e.g. "3.2.0-dev1" < "3.2.0-stable"), per spec §4.7's version
// resolution rules.
func Compare(a, b string) int {
	return semver.Compare(normalize(a), normalize(b))
}

// IsPrerelease reports whether v carries a pre-release tag.
func IsPrerelease(v string) bool {
	return semver.Prerelease(normalize(v)) != ""
}

// Major returns the bare major version number, e.g. "3" for "3.2.0-dev1".
func Major(v string) string {
	return strings.TrimPrefix(semver.Major(normalize(v)), "v")
}

// Covers reports whether target falls within [min, max] inclusive. An
// empty max means open-ended (spec §3: engine_version_max "empty means
// open-ended").
func Covers(min, max, target string) bool {
	if Compare(target, min) < 0 {
		return false
	}
	if max != "" && Compare(target, max) > 0 {
		return false
	}
	return true
}
