// Package providers translates a dependency name, platform descriptor,
// and optional version constraint into a concrete download URL, one
// implementation per external repository API.
package providers

import (
	"context"
	"strings"

	"github.com/depo-mc/depo/pkg/semver"
)

// Platform describes the server the artifact must be compatible with:
// the loader type and the game versions it runs.
type Platform struct {
	Loader       string
	GameVersions []string
}

// Resolution is the ephemeral result of a provider lookup. It is never
// cached across calls.
type Resolution struct {
	URL      string
	FileName string
}

// Provider resolves dependency names against one external repository.
//
// Implementations tolerate network failure and malformed responses by
// returning absent (ok=false) after logging a warning; they never fail
// the caller.
type Provider interface {
	// Name returns the provider key used in repository-priority lists.
	Name() string

	// ResolveDownloadURL finds a downloadable artifact for project that
	// is compatible with p and, where the repository API allows it,
	// satisfies c. A nil constraint means any version.
	ResolveDownloadURL(ctx context.Context, project string, p Platform, c *semver.Constraint) (Resolution, bool)

	// SuggestFileName returns the file name to store the artifact under.
	SuggestFileName(project, url string) string
}

// defaultFileName is the fallback artifact name when a provider response
// carries no usable file name.
func defaultFileName(project string) string {
	return project + ".jar"
}

// Registry holds the configured providers keyed by name.
type Registry struct {
	providers map[string]Provider
}

// NewRegistry builds a Registry from the given providers.
func NewRegistry(ps ...Provider) *Registry {
	r := &Registry{providers: make(map[string]Provider, len(ps))}
	for _, p := range ps {
		r.providers[strings.ToLower(p.Name())] = p
	}
	return r
}

// Get returns the provider registered under name (case-insensitive).
func (r *Registry) Get(name string) (Provider, bool) {
	p, ok := r.providers[strings.ToLower(strings.TrimSpace(name))]
	return p, ok
}

// InOrder returns the providers named by priority, in order, along with
// any keys that matched no registered provider.
func (r *Registry) InOrder(priority []string) (ps []Provider, unknown []string) {
	for _, name := range priority {
		if p, ok := r.Get(name); ok {
			ps = append(ps, p)
		} else {
			unknown = append(unknown, name)
		}
	}
	return ps, unknown
}
