package cli

import (
	"context"
	"net/http"
	"path/filepath"

	"github.com/depo-mc/depo/internal/config"
	"github.com/depo-mc/depo/pkg/download"
	"github.com/depo-mc/depo/pkg/manifest"
	"github.com/depo-mc/depo/pkg/providers"
	"github.com/depo-mc/depo/pkg/resolve"
)

// selfName is the manager's own component name, excluded from the
// dependency graph during scans.
const selfName = "Depo"

// loadSnapshot loads depo.toml and fills in the workspace-derived fields
// the file does not carry: the install directory, the manager's own name,
// and the install log location.
func loadSnapshot(opts *rootOpts) (resolve.Snapshot, error) {
	path := opts.configPath
	if path == "" {
		path = filepath.Join(opts.dir, "depo.toml")
	}

	snap, err := config.Load(path)
	if err != nil {
		return resolve.Snapshot{}, err
	}

	snap.Dir = opts.dir
	snap.SelfName = selfName
	if snap.InstallLogPath == "" {
		snap.InstallLogPath = filepath.Join(opts.dir, "depo-install.log")
	}
	return snap, nil
}

// newPipeline builds the download pipeline a snapshot prescribes.
func newPipeline(ctx context.Context, snap resolve.Snapshot) *download.Pipeline {
	return &download.Pipeline{
		Client:        &http.Client{Timeout: snap.HTTPTimeout},
		Logger:        loggerFromContext(ctx),
		BlockInsecure: snap.BlockInsecure,
		Checksums:     snap.Checksums,
		InstallLog:    &download.InstallLog{Path: snap.InstallLogPath},
	}
}

// newResolver wires the repository clients and pipeline into a resolver
// for one pass under snap.
func newResolver(ctx context.Context, snap resolve.Snapshot) *resolve.Resolver {
	logger := loggerFromContext(ctx)
	reg := providers.NewRegistry(
		providers.NewModrinth(snap.HTTPTimeout, logger),
		providers.NewSpiget(snap.HTTPTimeout, logger),
	)
	return resolve.New(snap, reg, newPipeline(ctx, snap), logger)
}

// scanInventory scans the install directory under snap.
func scanInventory(ctx context.Context, snap resolve.Snapshot) (*manifest.Inventory, error) {
	s := &manifest.Scanner{
		Dir:      snap.Dir,
		SelfName: snap.SelfName,
		Logger:   loggerFromContext(ctx),
	}
	return s.Scan()
}
