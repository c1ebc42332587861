package inventory

import (
	"strings"

	"golang.org/x/mod/semver"
)

// IsUpgradable reports whether r should be reinstalled: it came from the
// registry, both versions are valid semantic versions, and the latest version
// is strictly newer. Malformed versions make the record not upgradable; this
// function never fails.
func IsUpgradable(r Record) bool {
	if !r.Provenance.IsRegistry() || !r.Resolved {
		return false
	}
	cmp, ok := CompareVersions(r.Installed, r.Latest)
	return ok && cmp < 0
}

// CompareVersions compares two semantic versions written without a "v"
// prefix, following semver precedence (build metadata is ignored). ok is
// false when either side is not a full MAJOR.MINOR.PATCH version.
func CompareVersions(a, b string) (cmp int, ok bool) {
	ca, okA := canonical(a)
	cb, okB := canonical(b)
	if !okA || !okB {
		return 0, false
	}
	return semver.Compare(ca, cb), true
}

// ValidVersion reports whether v is a full semantic version such as "1.2.3",
// "1.0.0-beta.2" or "0.3.1+build.5".
func ValidVersion(v string) bool {
	_, ok := canonical(v)
	return ok
}

// canonical converts v to the "v"-prefixed form x/mod/semver expects. The
// semver package accepts the "v1" and "v1.2" shorthands; crates never use
// them, so they are rejected here.
func canonical(v string) (string, bool) {
	if v == "" || strings.HasPrefix(v, "v") {
		return "", false
	}
	c := "v" + v
	if !semver.IsValid(c) {
		return "", false
	}
	core := c
	if i := strings.IndexAny(core, "-+"); i >= 0 {
		core = core[:i]
	}
	if strings.Count(core, ".") != 2 {
		return "", false
	}
	return c, true
}
