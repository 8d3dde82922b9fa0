package resolve

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/depo-mc/depo/pkg/download"
	"github.com/depo-mc/depo/pkg/manifest"
	"github.com/depo-mc/depo/pkg/providers"
	"github.com/depo-mc/depo/pkg/semver"
)

// Resolver runs resolution passes. It is not safe for concurrent use:
// two passes over the same install directory race on the files the
// scanner reads and the pipeline writes.
type Resolver struct {
	snap      Snapshot
	providers *providers.Registry
	pipeline  *download.Pipeline
	logger    *log.Logger

	// pass-scoped state, reset at the start of each pass
	inv       *manifest.Inventory
	conflicts map[string]string
}

// New creates a Resolver over the given configuration snapshot.
func New(snap Snapshot, reg *providers.Registry, pipeline *download.Pipeline, logger *log.Logger) *Resolver {
	if logger == nil {
		logger = log.Default()
	}
	return &Resolver{
		snap:      snap,
		providers: reg,
		pipeline:  pipeline,
		logger:    logger,
		conflicts: make(map[string]string),
	}
}

// Snapshot returns the configuration the resolver was built with.
func (r *Resolver) Snapshot() Snapshot { return r.snap }

// Conflicts returns the dependencies that could not be resolved in the
// current pass, each with a human-readable reason.
func (r *Resolver) Conflicts() map[string]string {
	out := make(map[string]string, len(r.conflicts))
	for k, v := range r.conflicts {
		out[k] = v
	}
	return out
}

// Run executes one full resolution pass: fresh scan, fresh satisfied
// set, then a strictly sequential install of every missing required
// dependency (and soft dependencies when enabled). A single dependency's
// failure never aborts the rest of the pass.
func (r *Resolver) Run(ctx context.Context) (*Report, error) {
	start := time.Now()
	r.conflicts = make(map[string]string)

	inv, err := r.scan()
	if err != nil {
		return nil, err
	}
	r.inv = inv
	defer func() { r.inv = nil }()

	satisfied := SatisfiedNames(inv, r.snap.Aliases)
	missingRequired, missingSoft := Missing(inv, satisfied)
	missingRequired = r.dropIgnored(missingRequired)
	missingSoft = r.dropIgnored(missingSoft)

	report := &Report{
		ID:              uuid.NewString(),
		Started:         start.UTC(),
		Satisfied:       satisfied.Names(),
		MissingRequired: missingRequired,
		MissingSoft:     missingSoft,
		Conflicts:       map[string]string{},
	}
	r.logger.Info("resolution pass started", "pass", report.ID,
		"missing", len(missingRequired), "missing_soft", len(missingSoft))

	queue := missingRequired
	if r.snap.AutoDownloadSoft {
		queue = append(append([]string{}, queue...), missingSoft...)
	}
	if !r.snap.AutoDownload {
		queue = nil
	}

	for _, name := range queue {
		if source, ok := r.install(ctx, name); ok {
			report.Installed = append(report.Installed, InstallOutcome{Name: name, Source: source})
		}
	}

	report.Conflicts = r.Conflicts()
	report.Duration = time.Since(start)
	r.logger.Info("resolution pass finished", "pass", report.ID,
		"installed", len(report.Installed), "conflicts", len(report.Conflicts),
		"elapsed", report.Duration.Round(time.Millisecond))
	return report, nil
}

// InstallDependency resolves and installs a single dependency by name.
// Calling it when an archive providing name already exists on disk is a
// no-op success with zero network access.
func (r *Resolver) InstallDependency(ctx context.Context, name string) bool {
	if r.inv == nil {
		inv, err := r.scan()
		if err != nil {
			r.logger.Error("scan failed", "err", err)
			r.conflicts[name] = fmt.Sprintf("scan failed: %v", err)
			return false
		}
		r.inv = inv
		defer func() { r.inv = nil }()
	}
	_, ok := r.install(ctx, name)
	return ok
}

// dropIgnored filters out dependencies the snapshot ignores for this
// pass, logging each drop.
func (r *Resolver) dropIgnored(names []string) []string {
	if len(r.snap.Ignore) == 0 {
		return names
	}
	kept := names[:0]
	for _, n := range names {
		if r.snap.Ignored(n) {
			r.logger.Info("ignoring dependency", "dependency", n)
			continue
		}
		kept = append(kept, n)
	}
	return kept
}

func (r *Resolver) scan() (*manifest.Inventory, error) {
	s := &manifest.Scanner{Dir: r.snap.Dir, SelfName: r.snap.SelfName, Logger: r.logger}
	return s.Scan()
}

// install runs the per-dependency orchestration: existing archive, then
// override URL, then providers in priority order. Returns the source URL
// on success.
func (r *Resolver) install(ctx context.Context, name string) (string, bool) {
	if path, ok := r.inv.ArchiveProviding(name); ok {
		r.logger.Info("already installed", "dependency", name, "archive", filepath.Base(path))
		return "", true
	}

	// An explicit override is terminal either way: no provider fallback.
	if url, ok := r.snap.OverrideFor(name); ok {
		dest := filepath.Join(r.snap.Dir, name+".jar")
		if err := r.pipeline.Fetch(ctx, url, dest, name, download.DefaultAttempts); err != nil {
			r.logger.Warn("override download failed", "dependency", name, "err", err)
			r.conflicts[name] = fmt.Sprintf("override download failed: %v", err)
			return "", false
		}
		r.logger.Info("installed from override", "dependency", name, "url", url)
		return url, true
	}

	constraint := r.constraintFor(name)

	ps, unknown := r.providers.InOrder(r.snap.RepositoryPriority)
	for _, key := range unknown {
		r.logger.Warn("unknown provider in repository-priority", "provider", key)
	}

	for _, p := range ps {
		res, ok := p.ResolveDownloadURL(ctx, name, r.snap.Platform, constraint)
		if !ok {
			continue
		}
		fileName := res.FileName
		if fileName == "" {
			fileName = p.SuggestFileName(name, res.URL)
		}
		dest := filepath.Join(r.snap.Dir, fileName)
		if err := r.pipeline.Fetch(ctx, res.URL, dest, name, download.DefaultAttempts); err != nil {
			r.logger.Warn("download failed", "dependency", name, "provider", p.Name(), "err", err)
			continue
		}
		r.logger.Info("installed", "dependency", name, "provider", p.Name(), "file", fileName)
		return res.URL, true
	}

	if raw, ok := r.snap.ConstraintFor(name); ok {
		r.conflicts[name] = fmt.Sprintf("no version satisfies constraint '%s'", raw)
	} else {
		r.conflicts[name] = "not found"
	}
	return "", false
}

// constraintFor compiles the configured constraint for name, surfacing
// tokens that silently match everything.
func (r *Resolver) constraintFor(name string) *semver.Constraint {
	raw, ok := r.snap.ConstraintFor(name)
	if !ok {
		return nil
	}
	c := semver.ParseConstraint(raw)
	if perm := c.Permissive(); len(perm) > 0 {
		r.logger.Warn("constraint has unrecognized tokens that match any version",
			"dependency", name, "constraint", raw, "tokens", perm)
	}
	return &c
}
