package cli

import (
	"context"
	"os"

	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/depo-mc/depo/pkg/buildinfo"
)

// rootOpts holds the global flags shared by every command.
type rootOpts struct {
	configPath string // depo.toml location (empty means <dir>/depo.toml)
	dir        string // component-install directory
}

// Execute runs the depo CLI and returns an error if any command fails.
// This is the main entry point for the CLI application.
//
// Logging:
//   - Default: info level (logs to stderr)
//   - With --verbose (-v): debug level
//
// The logger is attached to the context and accessible to all commands
// via loggerFromContext.
func Execute(ctx context.Context) error {
	var verbose bool
	opts := rootOpts{dir: "."}

	root := &cobra.Command{
		Use:          "depo",
		Short:        "Depo resolves and downloads server add-on dependencies",
		Long:         `Depo scans a server's plugin directory, works out which declared dependencies are missing, and acquires them from configured repositories with version constraints, overrides, and checksum validation.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := charmlog.InfoLevel
			if verbose {
				level = charmlog.DebugLevel
			}
			cmd.SetContext(withLogger(cmd.Context(), newLogger(os.Stderr, level)))
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "path to depo.toml (default <dir>/depo.toml)")
	root.PersistentFlags().StringVarP(&opts.dir, "dir", "d", opts.dir, "component-install directory")

	root.AddCommand(newStatusCmd(&opts))
	root.AddCommand(newTreeCmd(&opts))
	root.AddCommand(newResolveCmd(&opts))
	root.AddCommand(newSoftCmd(&opts))
	root.AddCommand(newDownloadCmd(&opts))
	root.AddCommand(newServeCmd(&opts))

	return root.ExecuteContext(ctx)
}
