package cli

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/goccy/go-graphviz"
	"github.com/spf13/cobra"

	"github.com/depo-mc/depo/pkg/manifest"
	"github.com/depo-mc/depo/pkg/resolve"
)

// newTreeCmd creates the tree command: print each installed component
// with its declared dependencies, marking what is satisfied.
func newTreeCmd(opts *rootOpts) *cobra.Command {
	var (
		asDOT  bool
		render string
	)

	cmd := &cobra.Command{
		Use:   "tree",
		Short: "Show the dependency tree",
		Long: `Show each installed component with its declared dependencies.

Satisfied dependencies are marked ✓, missing required ones ✗, and soft
ones ~. With --dot the graph is printed in Graphviz DOT format; with
--render it is written as an SVG or PNG image.`,
		Args: cobra.NoArgs,
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

			if render != "" {
				if err := renderGraph(cmd.Context(), treeDOT(inv, satisfied), render); err != nil {
					return err
				}
				printSuccess("Rendered dependency graph")
				printFile(render)
				return nil
			}
			if asDOT {
				fmt.Print(treeDOT(inv, satisfied))
				return nil
			}
			fmt.Print(treeText(inv, satisfied))
			return nil
		},
	}

	cmd.Flags().BoolVar(&asDOT, "dot", false, "print the graph in Graphviz DOT format")
	cmd.Flags().StringVar(&render, "render", "", "write the graph as an image (.svg or .png)")

	return cmd
}

// treeText formats the inventory as an indented tree, one component per
// block, its dependencies below.
func treeText(inv *manifest.Inventory, satisfied resolve.NameSet) string {
	var buf bytes.Buffer
	for _, a := range sortedArchives(inv) {
		d := a.Declaration
		buf.WriteString(StyleTitle.Render(d.Name))
		buf.WriteString("\n")
		for _, dep := range d.Depend {
			buf.WriteString("  " + depMark(dep, satisfied, false) + "\n")
		}
		for _, dep := range d.SoftDepend {
			buf.WriteString("  " + depMark(dep, satisfied, true) + "\n")
		}
		if len(d.Depend) == 0 && len(d.SoftDepend) == 0 {
			buf.WriteString("  " + StyleDim.Render("no dependencies") + "\n")
		}
	}
	return buf.String()
}

func depMark(dep string, satisfied resolve.NameSet, soft bool) string {
	switch {
	case satisfied.Has(dep):
		return styleIconSuccess.Render(iconSuccess) + " " + StyleValue.Render(dep)
	case soft:
		return styleSoft.Render(iconSoft) + " " + dep + " " + StyleDim.Render("(soft, missing)")
	default:
		return styleIconError.Render(iconError) + " " + dep + " " + StyleError.Render("(missing)")
	}
}

// treeDOT converts the inventory to Graphviz DOT. Components are boxes,
// missing dependencies are filled red, and soft edges are dashed.
func treeDOT(inv *manifest.Inventory, satisfied resolve.NameSet) string {
	var buf bytes.Buffer
	buf.WriteString("digraph deps {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14];\n")
	buf.WriteString("\n")

	seen := map[string]bool{}
	for _, a := range sortedArchives(inv) {
		fmt.Fprintf(&buf, "  %q;\n", a.Declaration.Name)
		seen[strings.ToLower(a.Declaration.Name)] = true
	}
	for _, dep := range sortedDeps(inv) {
		if seen[strings.ToLower(dep)] {
			continue
		}
		attrs := ""
		if !satisfied.Has(dep) {
			attrs = " [fillcolor=lightcoral]"
		}
		fmt.Fprintf(&buf, "  %q%s;\n", dep, attrs)
	}

	buf.WriteString("\n")
	for _, a := range sortedArchives(inv) {
		d := a.Declaration
		for _, dep := range d.Depend {
			fmt.Fprintf(&buf, "  %q -> %q;\n", d.Name, dep)
		}
		for _, dep := range d.SoftDepend {
			fmt.Fprintf(&buf, "  %q -> %q [style=dashed];\n", d.Name, dep)
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

// sortedArchives returns the inventory's archives ordered by component
// name so output is stable regardless of directory order.
func sortedArchives(inv *manifest.Inventory) []manifest.Archive {
	archives := make([]manifest.Archive, len(inv.Archives))
	copy(archives, inv.Archives)
	sort.Slice(archives, func(i, j int) bool {
		return archives[i].Declaration.Name < archives[j].Declaration.Name
	})
	return archives
}

// sortedDeps returns every dependency name mentioned in the inventory,
// deduplicated and sorted.
func sortedDeps(inv *manifest.Inventory) []string {
	set := map[string]struct{}{}
	for dep := range inv.Required {
		set[dep] = struct{}{}
	}
	for dep := range inv.Soft {
		set[dep] = struct{}{}
	}
	deps := make([]string, 0, len(set))
	for dep := range set {
		deps = append(deps, dep)
	}
	sort.Strings(deps)
	return deps
}

// renderGraph rasterizes a DOT graph to the path's format (.svg or .png)
// using Graphviz.
func renderGraph(ctx context.Context, dot, path string) error {
	var format graphviz.Format
	switch strings.ToLower(filepath.Ext(path)) {
	case ".svg":
		format = graphviz.SVG
	case ".png":
		format = graphviz.PNG
	default:
		return fmt.Errorf("unsupported render format %q (want .svg or .png)", filepath.Ext(path))
	}

	gv, err := graphviz.New(ctx)
	if err != nil {
		return fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, format, &buf); err != nil {
		return fmt.Errorf("render: %w", err)
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}
