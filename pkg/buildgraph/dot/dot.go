// Package dot renders the resolved dependency graph to Graphviz's dot
// format (and anything Graphviz can export from it), independent of the
// generated build-system literal pkg/buildgraph/buildgraph.go emits.
// Wired behind "gyro fetch --dot=<path>" as a diagnostic export: seeing
// the shape of a resolution is often faster than reading generated code.
package dot

import (
	"context"
	"fmt"
	"io"

	"github.com/goccy/go-graphviz"
	"github.com/goccy/go-graphviz/cgraph"

	"github.com/seanwallawalla-forks/gyro/pkg/depgraph"
)

// Render draws every edge in edges as a directed graph: one node per
// dep_idx, labeled by the alias it was first reached under, and one
// arrow per edge from parent dep_idx to child dep_idx. Root edges are
// drawn from a synthetic "normal"/"build" source node so both root
// groups are visible in one graph.
func Render(w io.Writer, edges []depgraph.Edge, format graphviz.Format) error {
	ctx := context.Background()
	g, err := graphviz.New(ctx)
	if err != nil {
		return fmt.Errorf("dot: create graphviz instance: %w", err)
	}
	defer g.Close()

	graph, err := g.Graph()
	if err != nil {
		return fmt.Errorf("dot: create graph: %w", err)
	}
	defer graph.Close()

	nodes := make(map[depgraph.DepIdx]*cgraph.Node)
	nodeFor := func(idx depgraph.DepIdx, label string) (*cgraph.Node, error) {
		if n, ok := nodes[idx]; ok {
			return n, nil
		}
		n, err := graph.CreateNodeByName(fmt.Sprintf("n%d", idx))
		if err != nil {
			return nil, err
		}
		n.SetLabel(label)
		nodes[idx] = n
		return n, nil
	}

	rootNormal, err := graph.CreateNodeByName("root_normal")
	if err != nil {
		return fmt.Errorf("dot: create root node: %w", err)
	}
	rootNormal.SetLabel("normal")
	rootBuild, err := graph.CreateNodeByName("root_build")
	if err != nil {
		return fmt.Errorf("dot: create root node: %w", err)
	}
	rootBuild.SetLabel("build")

	for i, e := range edges {
		child, err := nodeFor(e.To, e.Alias)
		if err != nil {
			return fmt.Errorf("dot: node for edge %d: %w", i, err)
		}

		if e.Parent.IsRoot {
			root := rootNormal
			if e.Parent.Root == depgraph.RootBuild {
				root = rootBuild
			}
			if _, err := graph.CreateEdgeByName(fmt.Sprintf("e%d", i), root, child); err != nil {
				return fmt.Errorf("dot: edge %d: %w", i, err)
			}
			continue
		}

		parent, ok := nodes[e.Parent.FromDep]
		if !ok {
			return fmt.Errorf("dot: edge %d references unseen parent dep_idx %d", i, e.Parent.FromDep)
		}
		if _, err := graph.CreateEdgeByName(fmt.Sprintf("e%d", i), parent, child); err != nil {
			return fmt.Errorf("dot: edge %d: %w", i, err)
		}
	}

	return g.Render(ctx, graph, format, w)
}
