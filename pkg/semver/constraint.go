package semver

import "strings"

// Constraint restricts which versions of a dependency are acceptable.
//
// A constraint is either a single inclusive range ("1.2.0 - 1.4.0") or a
// whitespace-separated list of tokens that must all match (logical AND):
//
//	"1.x"          wildcard: leading segments equal the fixed prefix
//	"^1.2.3"       same-major upgrades: [1.2.3, 2.0.0)
//	"~1.2.3"       patch upgrades only: [1.2.3, 1.3.0)
//	">=1.0 <2.0"   comparator tokens; no comparator means exact equality
//
// Tokens that fit none of these shapes degrade to match-everything. That
// permissiveness is recorded rather than hidden: [Constraint.Permissive]
// returns the unrecognized tokens so callers can warn about them.
//
// Constraints are stateless after construction and safe for concurrent use.
type Constraint struct {
	raw        string
	preds      []predicate
	permissive []string
}

type predicate func(Version) bool

// ParseConstraint compiles raw into a Constraint. It never fails: an empty
// or blank string matches everything, and unrecognized tokens degrade to
// match-everything (see [Constraint.Permissive]).
func ParseConstraint(raw string) Constraint {
	c := Constraint{raw: raw}
	s := strings.TrimSpace(raw)
	if s == "" {
		return c
	}

	// Inclusive range takes precedence over token splitting; the literal
	// " - " separator cannot appear inside any single token.
	if lo, hi, ok := strings.Cut(s, " - "); ok {
		loV, loOK := Parse(strings.TrimSpace(lo))
		hiV, hiOK := Parse(strings.TrimSpace(hi))
		if loOK && hiOK {
			c.preds = append(c.preds, func(v Version) bool {
				return Compare(v, loV) >= 0 && Compare(v, hiV) <= 0
			})
		} else {
			c.permissive = append(c.permissive, s)
		}
		return c
	}

	for _, tok := range strings.Fields(s) {
		if p, ok := parseToken(tok); ok {
			c.preds = append(c.preds, p)
		} else {
			c.permissive = append(c.permissive, tok)
		}
	}
	return c
}

// Matches reports whether v satisfies every token of the constraint.
func (c Constraint) Matches(v Version) bool {
	for _, p := range c.preds {
		if !p(v) {
			return false
		}
	}
	return true
}

// Permissive returns the tokens that could not be interpreted and
// therefore match every version. An empty result means the constraint is
// fully understood.
func (c Constraint) Permissive() []string {
	return c.permissive
}

// IsEmpty reports whether the constraint was built from a blank string.
func (c Constraint) IsEmpty() bool {
	return strings.TrimSpace(c.raw) == ""
}

// String returns the raw constraint expression.
func (c Constraint) String() string { return c.raw }

func parseToken(tok string) (predicate, bool) {
	if p, ok := parseWildcard(tok); ok {
		return p, true
	}

	switch {
	case strings.HasPrefix(tok, "^"):
		b, ok := Parse(tok[1:])
		if !ok {
			return nil, false
		}
		hi := Version{Major: b.Major + 1}
		return func(v Version) bool {
			return Compare(v, b) >= 0 && Compare(v, hi) < 0
		}, true

	case strings.HasPrefix(tok, "~"):
		b, ok := Parse(tok[1:])
		if !ok {
			return nil, false
		}
		hi := Version{Major: b.Major, Minor: b.Minor + 1}
		return func(v Version) bool {
			return Compare(v, b) >= 0 && Compare(v, hi) < 0
		}, true
	}

	op, rest := ">=", tok
	switch {
	case strings.HasPrefix(tok, ">="):
		rest = tok[2:]
	case strings.HasPrefix(tok, "<="):
		op, rest = "<=", tok[2:]
	case strings.HasPrefix(tok, ">"):
		op, rest = ">", tok[1:]
	case strings.HasPrefix(tok, "<"):
		op, rest = "<", tok[1:]
	case strings.HasPrefix(tok, "="):
		op, rest = "=", tok[1:]
	default:
		op = "="
	}

	b, ok := Parse(rest)
	if !ok {
		return nil, false
	}
	return func(v Version) bool {
		c := Compare(v, b)
		switch op {
		case ">":
			return c > 0
		case ">=":
			return c >= 0
		case "<":
			return c < 0
		case "<=":
			return c <= 0
		}
		return c == 0
	}, true
}

// parseWildcard handles "x", "*", "1.x", "1.2.*" and friends. Fixed
// numeric segments (at most two) must equal the version's leading
// segments; everything after the first wildcard segment is ignored.
func parseWildcard(tok string) (predicate, bool) {
	segs := strings.Split(tok, ".")
	var fixed []uint64
	sawWildcard := false

	for _, seg := range segs {
		switch seg {
		case "x", "X", "*":
			sawWildcard = true
		default:
			if sawWildcard {
				return nil, false
			}
			v, ok := Parse(seg)
			if !ok || v.Prerelease != "" {
				return nil, false
			}
			fixed = append(fixed, v.Major)
		}
	}
	if !sawWildcard || len(fixed) > 2 {
		return nil, false
	}

	return func(v Version) bool {
		if len(fixed) >= 1 && v.Major != fixed[0] {
			return false
		}
		if len(fixed) >= 2 && v.Minor != fixed[1] {
			return false
		}
		return true
	}, true
}
