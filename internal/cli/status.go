package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/depo-mc/depo/pkg/resolve"
)

// newStatusCmd creates the status command: scan the install directory and
// report what is satisfied and what is missing, without downloading.
func newStatusCmd(opts *rootOpts) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show satisfied and missing dependencies",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, err := loadSnapshot(opts)
			if err != nil {
				return err
			}

			inv, err := scanInventory(cmd.Context(), snap)
			if err != nil {
				return err
			}

			satisfied := resolve.SatisfiedNames(inv, snap.Aliases)
			required, soft := resolve.Missing(inv, satisfied)

			fmt.Println(StyleTitle.Render("Depo status") + " " + StyleDim.Render(snap.Dir))
			printNewline()
			printKeyValue("components", fmt.Sprintf("%d", len(inv.Archives)))
			printKeyValue("satisfied", fmt.Sprintf("%d", len(satisfied)))
			printNewline()

			if len(required) == 0 && len(soft) == 0 {
				printSuccess("All declared dependencies are satisfied")
				return nil
			}

			for _, name := range required {
				printError("%s %s", StyleValue.Render(name), StyleDim.Render("required by "+strings.Join(inv.Required[name], ", ")))
			}
			for _, name := range soft {
				fmt.Println(styleSoft.Render(iconSoft) + " " + StyleValue.Render(name) + " " + StyleDim.Render("soft, wanted by "+strings.Join(inv.Soft[name], ", ")))
			}

			printNewline()
			printInfo("Run %s to acquire missing dependencies", StyleHighlight.Render("depo resolve"))
			return nil
		},
	}
}
