package semver

import "testing"

func TestParse(t *testing.T) {
	tests := []struct {
		raw  string
		want Version
		ok   bool
	}{
		{"1.2.3", Version{1, 2, 3, ""}, true},
		{"v1.2.3", Version{1, 2, 3, ""}, true},
		{"V2.0", Version{2, 0, 0, ""}, true},
		{"1", Version{1, 0, 0, ""}, true},
		{"1.2", Version{1, 2, 0, ""}, true},
		{"1.2.3-beta.1", Version{1, 2, 3, "beta.1"}, true},
		{"1.0.0-rc-2", Version{1, 0, 0, "rc-2"}, true},
		{"  1.4.0 ", Version{1, 4, 0, ""}, true},
		{"", Version{}, false},
		{"v", Version{}, false},
		{"abc", Version{}, false},
		{"1.2.3.4", Version{}, false},
		{"1.two.3", Version{}, false},
		{"1.2.3-", Version{}, false},
		{"1.2.3-bad_tag", Version{}, false},
		{"1.2 .3", Version{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, ok := Parse(tt.raw)
			if ok != tt.ok {
				t.Fatalf("Parse(%q) ok = %v, want %v", tt.raw, ok, tt.ok)
			}
			if ok && got != tt.want {
				t.Errorf("Parse(%q) = %+v, want %+v", tt.raw, got, tt.want)
			}
		})
	}
}

func TestCompare(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"1.0.0", "1.0.0", 0},
		{"2.0.0", "1.9.9", 1},
		{"1.2.0", "1.10.0", -1},
		{"1.0.1", "1.0.0", 1},
		{"1.0.0", "1.0.0-beta", 1},
		{"1.0.0-alpha", "1.0.0", -1},
		{"1.0.0-alpha", "1.0.0-beta", -1},
		{"1.0.0-rc.1", "1.0.0-rc.1", 0},
	}

	for _, tt := range tests {
		a := mustParse(t, tt.a)
		b := mustParse(t, tt.b)
		if got := Compare(a, b); got != tt.want {
			t.Errorf("Compare(%s, %s) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
		if got := Compare(b, a); got != -tt.want {
			t.Errorf("Compare(%s, %s) = %d, want %d", tt.b, tt.a, got, -tt.want)
		}
	}
}

func TestCompare_Reflexive(t *testing.T) {
	for _, raw := range []string{"0.0.0", "1.2.3", "1.2.3-beta.1", "10.0.0-rc-2"} {
		v := mustParse(t, raw)
		if Compare(v, v) != 0 {
			t.Errorf("Compare(%s, %s) != 0", raw, raw)
		}
	}
}

func TestVersion_String(t *testing.T) {
	for _, raw := range []string{"1.2.3", "0.0.0", "1.2.3-beta.1"} {
		v := mustParse(t, raw)
		if v.String() != raw {
			t.Errorf("String() = %q, want %q", v.String(), raw)
		}
	}
	// Missing segments default to zero in the formatted form.
	v := mustParse(t, "v1.2")
	if v.String() != "1.2.0" {
		t.Errorf("String() = %q, want 1.2.0", v.String())
	}
}

func TestMaxSatisfying(t *testing.T) {
	versions := parseAll(t, "1.0.0", "1.2.0", "0.9.0")

	got, ok := MaxSatisfying(ParseConstraint(""), versions)
	if !ok {
		t.Fatal("expected a match against an empty constraint")
	}
	if got.String() != "1.2.0" {
		t.Errorf("MaxSatisfying = %s, want 1.2.0", got)
	}
}

func TestMaxSatisfying_Tilde(t *testing.T) {
	versions := parseAll(t, "1.2.0", "1.2.5", "1.3.0")

	got, ok := MaxSatisfying(ParseConstraint("~1.2.0"), versions)
	if !ok {
		t.Fatal("expected a match")
	}
	if got.String() != "1.2.5" {
		t.Errorf("MaxSatisfying = %s, want 1.2.5", got)
	}
}

func TestMaxSatisfying_NoMatch(t *testing.T) {
	versions := parseAll(t, "0.1.0", "0.2.0")
	if _, ok := MaxSatisfying(ParseConstraint("^1.0.0"), versions); ok {
		t.Error("expected no match")
	}
}

func mustParse(t *testing.T, raw string) Version {
	t.Helper()
	v, ok := Parse(raw)
	if !ok {
		t.Fatalf("Parse(%q) failed", raw)
	}
	return v
}

func parseAll(t *testing.T, raws ...string) []Version {
	t.Helper()
	vs := make([]Version, 0, len(raws))
	for _, raw := range raws {
		vs = append(vs, mustParse(t, raw))
	}
	return vs
}
