// Package resolve orchestrates one resolution pass: scan the installed
// inventory, compute the satisfied set, and acquire each missing
// dependency through overrides and prioritized providers.
package resolve

import (
	"strings"
	"time"

	"github.com/depo-mc/depo/pkg/providers"
)

// Snapshot is the administrator configuration a pass runs under. It is
// immutable: a reload produces a new Snapshot rather than mutating one
// shared by a running pass.
type Snapshot struct {
	// Dir is the component-install directory.
	Dir string

	// SelfName is the manager's own component name, excluded from the
	// dependency graph.
	SelfName string

	// AutoDownload enables acquiring missing required dependencies.
	AutoDownload bool

	// AutoDownloadSoft extends acquisition to soft dependencies.
	AutoDownloadSoft bool

	// RepositoryPriority orders the provider keys tried per dependency.
	RepositoryPriority []string

	// Overrides maps dependency names to explicit download URLs that
	// bypass provider lookup entirely.
	Overrides map[string]string

	// Aliases maps dependency names to the installed component that
	// provides them.
	Aliases map[string]string

	// Checksums maps dependency names to expected SHA-256 hex digests.
	Checksums map[string]string

	// Constraints maps dependency names to version constraint
	// expressions.
	Constraints map[string]string

	// Ignore lists dependency names dropped from the missing set for
	// this pass.
	Ignore []string

	// BlockInsecure rejects plaintext download URLs.
	BlockInsecure bool

	// HTTPTimeout bounds individual provider and download requests.
	HTTPTimeout time.Duration

	// Platform filters provider results to compatible artifacts.
	Platform providers.Platform

	// InstallLogPath is the append-only install event log.
	InstallLogPath string
}

// OverrideFor returns the override URL configured for name, if any.
// Lookup is case-insensitive.
func (s Snapshot) OverrideFor(name string) (string, bool) {
	return lookupFold(s.Overrides, name)
}

// ConstraintFor returns the raw constraint expression configured for
// name, if any. Lookup is case-insensitive.
func (s Snapshot) ConstraintFor(name string) (string, bool) {
	return lookupFold(s.Constraints, name)
}

// Ignored reports whether name is dropped from the missing set for this
// pass. Matching is case-insensitive.
func (s Snapshot) Ignored(name string) bool {
	for _, n := range s.Ignore {
		if strings.EqualFold(n, name) {
			return true
		}
	}
	return false
}

func lookupFold(m map[string]string, name string) (string, bool) {
	if v, ok := m[name]; ok {
		return v, true
	}
	for k, v := range m {
		if strings.EqualFold(k, name) {
			return v, true
		}
	}
	return "", false
}
