package manifest

import (
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/charmbracelet/log"
)

// archiveExt is the package extension scanned for installed components.
const archiveExt = ".jar"

// Scanner enumerates the component-install directory and builds an
// Inventory from every readable archive manifest.
type Scanner struct {
	// Dir is the component-install directory.
	Dir string

	// SelfName is the resolver's own component name. Its declared
	// dependencies are excluded from the inventory so the resolver never
	// tries to install for itself.
	SelfName string

	// Logger receives warnings for malformed archives. Defaults to
	// log.Default when nil.
	Logger *log.Logger
}

// Inventory is the result of one scan: the declarations found plus the
// inverted dependency indexes. It is rebuilt whole on every scan and
// never patched in place.
type Inventory struct {
	// Archives maps each scanned declaration to its archive path, in
	// directory order.
	Archives []Archive

	// Required maps a dependency name to the components that require it.
	Required map[string][]string

	// Soft maps a dependency name to the components that soft-require it.
	Soft map[string][]string
}

// Archive pairs a declaration with the archive file it came from.
type Archive struct {
	Path        string
	Declaration Declaration
}

// Scan reads every archive in Dir. Malformed or unreadable archives are
// logged as warnings and skipped; archives without a manifest (or without
// a name) are skipped silently. Scan fails only when the directory itself
// cannot be read.
func (s *Scanner) Scan() (*Inventory, error) {
	logger := s.Logger
	if logger == nil {
		logger = log.Default()
	}

	entries, err := os.ReadDir(s.Dir)
	if err != nil {
		return nil, err
	}

	inv := &Inventory{
		Required: make(map[string][]string),
		Soft:     make(map[string][]string),
	}

	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), archiveExt) {
			continue
		}
		p := filepath.Join(s.Dir, e.Name())
		decl, err := ReadArchive(p)
		if err != nil {
			logger.Warn("skipping unreadable archive", "archive", e.Name(), "err", err)
			continue
		}
		if decl == nil {
			continue
		}

		inv.Archives = append(inv.Archives, Archive{Path: p, Declaration: *decl})

		// The manager's own requirements stay out of its dependency graph.
		if strings.EqualFold(decl.Name, s.SelfName) {
			continue
		}
		for _, dep := range decl.Depend {
			inv.Required[dep] = appendUnique(inv.Required[dep], decl.Name)
		}
		for _, dep := range decl.SoftDepend {
			inv.Soft[dep] = appendUnique(inv.Soft[dep], decl.Name)
		}
	}

	for _, m := range []map[string][]string{inv.Required, inv.Soft} {
		for _, requirers := range m {
			slices.Sort(requirers)
		}
	}
	return inv, nil
}

// Names returns the installed component names in sorted order.
func (inv *Inventory) Names() []string {
	names := make([]string, 0, len(inv.Archives))
	for _, a := range inv.Archives {
		names = append(names, a.Declaration.Name)
	}
	slices.Sort(names)
	return names
}

// ArchiveProviding returns the path of an installed archive whose
// declaration satisfies name, if one exists. This is the idempotence
// check the orchestrator runs before touching the network.
func (inv *Inventory) ArchiveProviding(name string) (string, bool) {
	for _, a := range inv.Archives {
		if a.Declaration.ProvidesName(name) {
			return a.Path, true
		}
	}
	return "", false
}

func appendUnique(list []string, s string) []string {
	if slices.Contains(list, s) {
		return list
	}
	return append(list, s)
}
