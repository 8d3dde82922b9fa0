// Package semver implements the loose semantic-version grammar used by
// plugin repositories, plus the constraint expressions administrators can
// pin dependencies with.
//
// The grammar is deliberately forgiving: an optional "v" prefix, one to
// three numeric segments (missing segments default to zero), and an
// optional pre-release suffix. Strings outside this shape are not errors,
// they are simply not versions — [Parse] reports absence with a bool so
// callers can treat unparsable version strings as skip candidates.
package semver

import (
	"fmt"
	"strconv"
	"strings"
)

// Version is a parsed semantic version. The zero value is "0.0.0".
// Versions are immutable once parsed.
type Version struct {
	Major      uint64
	Minor      uint64
	Patch      uint64
	Prerelease string
}

// Parse parses a loosely-formatted version string.
//
// Accepted shapes: "1", "1.2", "1.2.3", "v1.2.3", "1.2.3-beta.1".
// The pre-release suffix may contain alphanumerics, dots, and hyphens.
// Returns ok=false for anything else, including the empty string.
func Parse(raw string) (Version, bool) {
	s := strings.TrimSpace(raw)
	if len(s) > 0 && (s[0] == 'v' || s[0] == 'V') {
		s = s[1:]
	}
	if s == "" {
		return Version{}, false
	}

	var pre string
	if i := strings.IndexByte(s, '-'); i >= 0 {
		s, pre = s[:i], s[i+1:]
		if !validPrerelease(pre) {
			return Version{}, false
		}
	}

	segs := strings.Split(s, ".")
	if len(segs) > 3 {
		return Version{}, false
	}

	var nums [3]uint64
	for i, seg := range segs {
		n, err := strconv.ParseUint(seg, 10, 64)
		if err != nil {
			return Version{}, false
		}
		nums[i] = n
	}
	return Version{Major: nums[0], Minor: nums[1], Patch: nums[2], Prerelease: pre}, true
}

func validPrerelease(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
		case r >= 'a' && r <= 'z':
		case r >= 'A' && r <= 'Z':
		case r == '.' || r == '-':
		default:
			return false
		}
	}
	return true
}

// String formats the version as "major.minor.patch[-prerelease]".
func (v Version) String() string {
	s := fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
	if v.Prerelease != "" {
		s += "-" + v.Prerelease
	}
	return s
}

// Compare compares a and b, returning:
//
//	-1 if a < b
//	 0 if a == b
//	 1 if a > b
//
// Ordering is numeric on major, minor, patch. A version without a
// pre-release tag is strictly greater than an otherwise-equal version
// that has one; two pre-release tags compare lexicographically.
func Compare(a, b Version) int {
	if c := compareUint(a.Major, b.Major); c != 0 {
		return c
	}
	if c := compareUint(a.Minor, b.Minor); c != 0 {
		return c
	}
	if c := compareUint(a.Patch, b.Patch); c != 0 {
		return c
	}
	switch {
	case a.Prerelease == b.Prerelease:
		return 0
	case a.Prerelease == "":
		return 1
	case b.Prerelease == "":
		return -1
	}
	return strings.Compare(a.Prerelease, b.Prerelease)
}

func compareUint(a, b uint64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// MaxSatisfying returns the highest version in candidates that satisfies c.
//
// If multiple versions compare equal, the first encountered wins.
func MaxSatisfying(c Constraint, candidates []Version) (Version, bool) {
	var best Version
	found := false
	for _, candidate := range candidates {
		if !c.Matches(candidate) {
			continue
		}
		if !found || Compare(candidate, best) > 0 {
			best = candidate
			found = true
		}
	}
	return best, found
}
