package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/depo-mc/depo/pkg/manifest"
	"github.com/depo-mc/depo/pkg/resolve"
)

// newSoftCmd creates the soft command group for optional dependencies,
// which a normal pass only installs when auto-download-soft is enabled.
func newSoftCmd(opts *rootOpts) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "soft",
		Short: "Inspect and install optional (soft) dependencies",
	}
	cmd.AddCommand(newSoftListCmd(opts))
	cmd.AddCommand(newSoftInstallCmd(opts))
	return cmd
}

func newSoftListCmd(opts *rootOpts) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List missing soft dependencies",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, err := loadSnapshot(opts)
			if err != nil {
				return err
			}
			soft, inv, err := missingSoft(cmd, snap)
			if err != nil {
				return err
			}
			if len(soft) == 0 {
				printSuccess("No missing soft dependencies")
				return nil
			}
			for i, name := range soft {
				fmt.Printf("%s %s %s\n",
					StyleDim.Render(fmt.Sprintf("%2d.", i+1)),
					StyleValue.Render(name),
					StyleDim.Render("wanted by "+strings.Join(inv.Soft[name], ", ")))
			}
			printNewline()
			printInfo("Install with %s", StyleHighlight.Render("depo soft install <names|indices|all>"))
			return nil
		},
	}
}

func newSoftInstallCmd(opts *rootOpts) *cobra.Command {
	return &cobra.Command{
		Use:   "install <names|indices|all>",
		Short: "Install selected soft dependencies",
		Long: `Install soft dependencies by name, by 1-based index from "depo soft list",
or all of them at once.

Examples:
  depo soft install all
  depo soft install PlaceholderAPI
  depo soft install 1 3`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, err := loadSnapshot(opts)
			if err != nil {
				return err
			}
			soft, _, err := missingSoft(cmd, snap)
			if err != nil {
				return err
			}
			if len(soft) == 0 {
				printSuccess("No missing soft dependencies")
				return nil
			}

			selected, err := selectSoft(soft, args)
			if err != nil {
				return err
			}

			r := newResolver(cmd.Context(), snap)
			failed := 0
			for _, name := range selected {
				if r.InstallDependency(cmd.Context(), name) {
					printSuccess("%s installed", StyleValue.Render(name))
				} else {
					failed++
					reason := r.Conflicts()[name]
					printError("%s: %s", StyleValue.Render(name), reason)
				}
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d soft dependencies failed", failed, len(selected))
			}
			return nil
		},
	}
}

// missingSoft scans and returns the currently missing soft dependencies.
func missingSoft(cmd *cobra.Command, snap resolve.Snapshot) ([]string, *manifest.Inventory, error) {
	inv, err := scanInventory(cmd.Context(), snap)
	if err != nil {
		return nil, nil, err
	}
	satisfied := resolve.SatisfiedNames(inv, snap.Aliases)
	_, soft := resolve.Missing(inv, satisfied)
	return soft, inv, nil
}

// selectSoft resolves the install arguments against the missing-soft
// list: "all", exact names (case-insensitive), or 1-based indices.
func selectSoft(soft []string, args []string) ([]string, error) {
	if len(args) == 1 && strings.EqualFold(args[0], "all") {
		return soft, nil
	}

	var selected []string
	for _, arg := range args {
		if i, err := strconv.Atoi(arg); err == nil {
			if i < 1 || i > len(soft) {
				return nil, fmt.Errorf("index %d out of range (1-%d)", i, len(soft))
			}
			selected = append(selected, soft[i-1])
			continue
		}
		found := false
		for _, name := range soft {
			if strings.EqualFold(name, arg) {
				selected = append(selected, name)
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("%q is not a missing soft dependency", arg)
		}
	}
	return selected, nil
}
