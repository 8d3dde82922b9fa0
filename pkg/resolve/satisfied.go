package resolve

import (
	"slices"
	"strings"

	"github.com/depo-mc/depo/pkg/manifest"
)

// NameSet is a case-insensitive set of dependency names. Keys are the
// folded form; values keep the original spelling for display.
type NameSet map[string]string

// Has reports membership, case-insensitively.
func (s NameSet) Has(name string) bool {
	_, ok := s[strings.ToLower(strings.TrimSpace(name))]
	return ok
}

func (s NameSet) add(name string) {
	name = strings.TrimSpace(name)
	if name == "" {
		return
	}
	key := strings.ToLower(name)
	if _, ok := s[key]; !ok {
		s[key] = name
	}
}

// Names returns the original spellings in sorted order.
func (s NameSet) Names() []string {
	names := make([]string, 0, len(s))
	for _, n := range s {
		names = append(names, n)
	}
	slices.Sort(names)
	return names
}

// SatisfiedNames computes the set of dependency names considered present:
// every installed component's name, every name in its provides list, and
// every configured alias whose target component is installed. The set is
// recomputed per pass, never cached.
func SatisfiedNames(inv *manifest.Inventory, aliases map[string]string) NameSet {
	set := make(NameSet)
	for _, a := range inv.Archives {
		set.add(a.Declaration.Name)
		for _, p := range a.Declaration.Provides {
			set.add(p)
		}
	}
	for dep, component := range aliases {
		if set.Has(component) {
			set.add(dep)
		}
	}
	return set
}

// Missing returns the required and soft dependency names from inv that
// the satisfied set does not cover, each sorted lexicographically.
func Missing(inv *manifest.Inventory, satisfied NameSet) (required, soft []string) {
	for dep := range inv.Required {
		if !satisfied.Has(dep) {
			required = append(required, dep)
		}
	}
	for dep := range inv.Soft {
		if !satisfied.Has(dep) && !slices.Contains(required, dep) {
			soft = append(soft, dep)
		}
	}
	slices.Sort(required)
	slices.Sort(soft)
	return required, soft
}
