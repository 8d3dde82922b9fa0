// Package config loads the administrator configuration file into an
// immutable resolver snapshot. Reloading produces a new snapshot; nothing
// here is mutated after Load returns.
package config

import (
	"os"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/depo-mc/depo/pkg/errors"
	"github.com/depo-mc/depo/pkg/providers"
	"github.com/depo-mc/depo/pkg/resolve"
)

// Defaults applied when the file is absent or a key is unset.
const (
	DefaultTimeout = 30 * time.Second
)

var defaultPriority = []string{"modrinth", "spiget"}

// fileConfig mirrors the TOML document.
type fileConfig struct {
	AutoDownload       *bool             `toml:"auto-download"`
	AutoDownloadSoft   bool              `toml:"auto-download-soft"`
	RepositoryPriority []string          `toml:"repository-priority"`
	Platform           platformConfig    `toml:"platform"`
	Security           securityConfig    `toml:"security"`
	HTTP               httpConfig        `toml:"http"`
	Overrides          map[string]string `toml:"overrides"`
	Aliases            map[string]string `toml:"aliases"`
	Checksums          map[string]string `toml:"checksums"`
	Constraints        map[string]string `toml:"version-constraints"`
}

type platformConfig struct {
	Loader       string   `toml:"loader"`
	GameVersions []string `toml:"game-versions"`
}

type securityConfig struct {
	BlockInsecureDownloads *bool `toml:"block-insecure-downloads"`
}

type httpConfig struct {
	Timeout string `toml:"timeout"`
}

// Load reads the configuration at path. A missing file yields the
// defaults; a malformed file is an INVALID_CONFIG error. The returned
// snapshot has no install directory set — the caller owns that.
func Load(path string) (resolve.Snapshot, error) {
	var fc fileConfig
	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, &fc); err != nil {
			return resolve.Snapshot{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parsing %s", path)
		}
	} else if !os.IsNotExist(err) {
		return resolve.Snapshot{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "reading %s", path)
	}

	snap := resolve.Snapshot{
		AutoDownload:       boolOr(fc.AutoDownload, true),
		AutoDownloadSoft:   fc.AutoDownloadSoft,
		RepositoryPriority: fc.RepositoryPriority,
		Overrides:          fc.Overrides,
		Aliases:            fc.Aliases,
		Checksums:          fc.Checksums,
		Constraints:        fc.Constraints,
		BlockInsecure:      boolOr(fc.Security.BlockInsecureDownloads, true),
		HTTPTimeout:        DefaultTimeout,
		Platform: providers.Platform{
			Loader:       fc.Platform.Loader,
			GameVersions: fc.Platform.GameVersions,
		},
	}
	if len(snap.RepositoryPriority) == 0 {
		snap.RepositoryPriority = defaultPriority
	}

	if fc.HTTP.Timeout != "" {
		d, err := time.ParseDuration(fc.HTTP.Timeout)
		if err != nil {
			return resolve.Snapshot{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "http.timeout %q", fc.HTTP.Timeout)
		}
		snap.HTTPTimeout = d
	}

	if err := validateChecksums(fc.Checksums); err != nil {
		return resolve.Snapshot{}, err
	}
	return snap, nil
}

func validateChecksums(checksums map[string]string) error {
	for name, sum := range checksums {
		if len(sum) != 64 || !isHex(sum) {
			return errors.New(errors.ErrCodeInvalidConfig,
				"checksum for %q is not a SHA-256 hex digest", name)
		}
	}
	return nil
}

func isHex(s string) bool {
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
		case r >= 'a' && r <= 'f':
		case r >= 'A' && r <= 'F':
		default:
			return false
		}
	}
	return true
}

func boolOr(v *bool, fallback bool) bool {
	if v == nil {
		return fallback
	}
	return *v
}
