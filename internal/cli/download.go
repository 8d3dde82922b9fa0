package cli

import (
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/depo-mc/depo/pkg/download"
	"github.com/depo-mc/depo/pkg/providers"
	"github.com/depo-mc/depo/pkg/resolve"
)

// newDownloadCmd creates the download command group for fetching
// archives outside the resolution flow.
func newDownloadCmd(opts *rootOpts) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "download",
		Short: "Download an archive from a direct URL or a GitHub release",
	}
	cmd.AddCommand(newDownloadDirectCmd(opts))
	cmd.AddCommand(newDownloadGitHubCmd(opts))
	return cmd
}

func newDownloadDirectCmd(opts *rootOpts) *cobra.Command {
	var as string

	cmd := &cobra.Command{
		Use:   "direct <url>",
		Short: "Download an archive from an explicit URL",
		Long: `Download an archive into the install directory. The file still goes
through validation: it must be a readable archive with a manifest, and a
configured checksum for the component is enforced.

Examples:
  depo download direct https://example.com/Vault-1.7.3.jar
  depo download direct https://example.com/download?id=42 --as Vault`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, err := loadSnapshot(opts)
			if err != nil {
				return err
			}

			rawURL := args[0]
			name := as
			if name == "" {
				name = componentFromURL(rawURL)
			}
			if name == "" {
				return fmt.Errorf("cannot derive a component name from %s, pass --as", rawURL)
			}

			return fetchTo(cmd, snap, rawURL, name, name)
		},
	}

	cmd.Flags().StringVar(&as, "as", "", "component name (default derived from the URL)")
	return cmd
}

func newDownloadGitHubCmd(opts *rootOpts) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "github <owner/repo> [filter]",
		Short: "Download a jar from a repository's latest release",
		Long: `Fetch the latest release of a GitHub repository and download its jar
asset. With a filter, the first jar whose name contains the filter is
picked; otherwise the first jar wins.

Examples:
  depo download github EssentialsX/Essentials
  depo download github TownyAdvanced/Towny towny`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, err := loadSnapshot(opts)
			if err != nil {
				return err
			}

			owner, repo, err := providers.ParseRepoRef(args[0])
			if err != nil {
				return err
			}
			filter := ""
			if len(args) == 2 {
				filter = args[1]
			}

			gh := providers.NewGitHub(os.Getenv("GITHUB_TOKEN"), snap.HTTPTimeout)

			spinner := newSpinner(cmd.Context(), fmt.Sprintf("Fetching latest release of %s/%s...", owner, repo))
			spinner.Start()
			assets, err := gh.LatestReleaseAssets(cmd.Context(), owner, repo)
			spinner.Stop()
			if err != nil {
				return fmt.Errorf("latest release of %s/%s: %w", owner, repo, err)
			}

			asset, ok := providers.PickAsset(assets, filter)
			if !ok {
				return fmt.Errorf("no jar asset in the latest release of %s/%s", owner, repo)
			}

			name := strings.TrimSuffix(asset.Name, filepath.Ext(asset.Name))
			// Release asset names carry version suffixes the manifest
			// will not, so identity comes from the archive itself.
			return fetchTo(cmd, snap, asset.URL, name, "")
		},
	}
	return cmd
}

// fetchTo runs one download through the validation pipeline and reports
// the result. identity may be empty to accept whatever the archive
// declares.
func fetchTo(cmd *cobra.Command, snap resolve.Snapshot, rawURL, fileBase, identity string) error {
	dest := filepath.Join(snap.Dir, fileBase+".jar")
	p := newPipeline(cmd.Context(), snap)

	spinner := newSpinner(cmd.Context(), fmt.Sprintf("Downloading %s...", fileBase))
	spinner.Start()
	err := p.Fetch(cmd.Context(), rawURL, dest, identity, download.DefaultAttempts)
	if err != nil {
		spinner.StopWithError("%s: %v", fileBase, err)
		return err
	}
	spinner.StopWithSuccess("%s downloaded", StyleValue.Render(fileBase))
	printFile(dest)
	return nil
}

// componentFromURL derives a component name from the URL path's last
// segment, stripping a .jar extension. Query-style URLs yield "".
func componentFromURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	base := path.Base(u.Path)
	if base == "." || base == "/" {
		return ""
	}
	if !strings.HasSuffix(strings.ToLower(base), ".jar") {
		return ""
	}
	return strings.TrimSuffix(base, filepath.Ext(base))
}
