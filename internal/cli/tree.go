package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/seanwallawalla-forks/gyro/pkg/depgraph"
	"github.com/seanwallawalla-forks/gyro/pkg/depgraph/engine"
	"github.com/seanwallawalla-forks/gyro/pkg/depgraph/sources/gitsrc"
	"github.com/seanwallawalla-forks/gyro/pkg/depgraph/sources/localsrc"
	"github.com/seanwallawalla-forks/gyro/pkg/depgraph/sources/pkgsrc"
	"github.com/seanwallawalla-forks/gyro/pkg/depgraph/sources/urlsrc"
	"github.com/seanwallawalla-forks/gyro/pkg/httputil"
	"github.com/seanwallawalla-forks/gyro/pkg/project"
)

// treeCommand creates the "tree" command: resolve the project (without
// rewriting any files) and print the resulting dependency tree,
// indented by depth, using the accumulated edge list the same way
// pkg/buildgraph walks it for code generation.
func (c *CLI) treeCommand() *cobra.Command {
	var manifestPath, lockfilePath, registryURL string

	cmd := &cobra.Command{
		Use:   "tree",
		Short: "Print the resolved dependency tree",
		RunE: func(cmd *cobra.Command, args []string) error {
			proj, err := project.Load(manifestPath)
			if err != nil {
				return fmt.Errorf("load manifest: %w", err)
			}
			oldLock, err := readLockfile(lockfilePath)
			if err != nil {
				return err
			}

			dir, _ := cacheDir()
			respCache := newFileCache(false)
			drivers := []depgraph.Driver{
				pkgsrc.New(httputil.NewClient(respCache, nil), registryURL),
				localsrc.New("."),
				urlsrc.New(httputil.NewClient(respCache, nil), dir),
				gitsrc.New(dir),
			}

			eng, err := engine.New(proj, drivers, oldLock, engine.Options{Logger: c.Logger, CacheDir: dir, SkipGC: true})
			if err != nil {
				return err
			}
			defer eng.Close()

			result, err := eng.Fetch(cmd.Context())
			if err != nil {
				return err
			}

			if len(result.Edges) == 0 {
				printInfo("No dependencies")
				return nil
			}

			nodeCount := 0
			cached := true
			for _, tally := range result.Outcomes {
				nodeCount += tally["replace_me"] + tally["fill_resolution"] + tally["copy_deps"] + tally["new_entry"]
				if tally["new_entry"] > 0 {
					cached = false
				}
			}
			printStats(nodeCount, len(result.Edges), cached)

			printTree(os.Stdout, result.Edges, depgraph.RootNormal, "normal dependencies")
			printTree(os.Stdout, result.Edges, depgraph.RootBuild, "build dependencies")
			return nil
		},
	}

	cmd.Flags().StringVar(&manifestPath, "manifest", defaultManifestName, "path to the project manifest")
	cmd.Flags().StringVar(&lockfilePath, "lockfile", defaultLockfileName, "path to the lockfile")
	cmd.Flags().StringVar(&registryURL, "registry", "https://registry.example.com", "base URL of the package registry")

	return cmd
}

func printTree(w *os.File, edges []depgraph.Edge, kind depgraph.RootKind, heading string) {
	var roots []int
	for i, e := range edges {
		if e.Parent.IsRoot && e.Parent.Root == kind {
			roots = append(roots, i)
		}
	}
	if len(roots) == 0 {
		return
	}

	fmt.Fprintln(w, StyleTitle.Render(heading))
	for _, idx := range roots {
		printTreeNode(w, edges, idx, 0)
	}
	fmt.Fprintln(w)
}

func printTreeNode(w *os.File, edges []depgraph.Edge, edgeIdx, depth int) {
	e := edges[edgeIdx]
	fmt.Fprintf(w, "%s%s %s\n", strings.Repeat("  ", depth), StyleDim.Render(iconArrow), StyleValue.Render(e.Alias))

	parentDep := e.To
	for i := edgeIdx + 1; i < len(edges); i++ {
		if edges[i].Parent.IsRoot {
			continue
		}
		if edges[i].Parent.FromDep == parentDep {
			printTreeNode(w, edges, i, depth+1)
		}
	}
}
