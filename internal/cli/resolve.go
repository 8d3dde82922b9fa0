package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/depo-mc/depo/pkg/resolve"
)

// newResolveCmd creates the resolve command: run a resolution pass,
// optionally adjusting how one dependency is handled first.
func newResolveCmd(opts *rootOpts) *cobra.Command {
	var (
		ignore   bool
		relax    bool
		override string
	)

	cmd := &cobra.Command{
		Use:   "resolve [dependency]",
		Short: "Resolve and download missing dependencies",
		Long: `Run a resolution pass: scan the install directory, compute the missing
dependencies, and acquire them from the configured repositories.

With a dependency name, the pass can be adjusted first:
  --ignore          drop the dependency from the missing set
  --relax           clear its version constraint
  --override <url>  download it from an explicit URL

A bare name installs just that dependency.

Examples:
  depo resolve
  depo resolve Vault
  depo resolve Vault --relax
  depo resolve Vault --override https://example.com/Vault.jar
  depo resolve BrokenDep --ignore`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 && (ignore || relax || override != "") {
				return fmt.Errorf("--ignore, --relax and --override need a dependency name")
			}

			snap, err := loadSnapshot(opts)
			if err != nil {
				return err
			}

			if len(args) == 1 {
				name := args[0]
				switch {
				case ignore:
					snap.Ignore = append(snap.Ignore, name)
				case relax:
					snap.Constraints = withoutKeyFold(snap.Constraints, name)
				case override != "":
					snap.Overrides = withKey(snap.Overrides, name, override)
				default:
					return installOne(cmd, snap, name)
				}
			}

			r := newResolver(cmd.Context(), snap)
			report, err := r.Run(cmd.Context())
			if err != nil {
				return err
			}
			printReport(report)
			return nil
		},
	}

	cmd.Flags().BoolVar(&ignore, "ignore", false, "drop the named dependency from the missing set")
	cmd.Flags().BoolVar(&relax, "relax", false, "clear the named dependency's version constraint")
	cmd.Flags().StringVar(&override, "override", "", "download the named dependency from this URL")
	cmd.MarkFlagsMutuallyExclusive("ignore", "relax", "override")

	return cmd
}

// installOne resolves a single dependency outside a full pass.
func installOne(cmd *cobra.Command, snap resolve.Snapshot, name string) error {
	r := newResolver(cmd.Context(), snap)
	if !r.InstallDependency(cmd.Context(), name) {
		for dep, reason := range r.Conflicts() {
			printError("%s: %s", dep, reason)
		}
		return fmt.Errorf("could not install %s", name)
	}
	printSuccess("%s installed", StyleValue.Render(name))
	return nil
}

// printReport summarizes a finished pass.
func printReport(report *resolve.Report) {
	for _, out := range report.Installed {
		if out.Source == "" {
			printSuccess("%s %s", StyleValue.Render(out.Name), StyleDim.Render("already installed"))
			continue
		}
		printSuccess("%s %s", StyleValue.Render(out.Name), StyleDim.Render(iconArrow+" "+out.Source))
	}
	for dep, reason := range report.Conflicts {
		printError("%s: %s", StyleValue.Render(dep), StyleError.Render(reason))
	}
	if len(report.MissingSoft) > 0 {
		printDetail("soft dependencies not installed: %s", strings.Join(report.MissingSoft, ", "))
	}

	printNewline()
	printInfo("pass %s finished in %s: %d installed, %d conflicts",
		StyleDim.Render(report.ID), report.Duration.Round(time.Millisecond),
		len(report.Installed), len(report.Conflicts))
}

// withKey returns a copy of m with k set, leaving the snapshot's shared
// map untouched.
func withKey(m map[string]string, k, v string) map[string]string {
	out := make(map[string]string, len(m)+1)
	for key, val := range m {
		out[key] = val
	}
	out[k] = v
	return out
}

// withoutKeyFold returns a copy of m without k, matched case-insensitively.
func withoutKeyFold(m map[string]string, k string) map[string]string {
	out := make(map[string]string, len(m))
	for key, val := range m {
		if strings.EqualFold(key, k) {
			continue
		}
		out[key] = val
	}
	return out
}
