package buildgraph_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/seanwallawalla-forks/gyro/pkg/buildgraph"
	"github.com/seanwallawalla-forks/gyro/pkg/depgraph"
	"github.com/seanwallawalla-forks/gyro/pkg/project"
)

type fakePaths map[depgraph.DepIdx]string

func (p fakePaths) Get(idx depgraph.DepIdx) (string, bool) {
	v, ok := p[idx]
	return v, ok
}

func TestLitSingleRootNoDeps(t *testing.T) {
	edges := []depgraph.Edge{
		{Parent: depgraph.RootParent(depgraph.RootNormal), To: 0, Alias: "a"},
	}
	paths := fakePaths{0: "/cache/a-1.0.0"}

	var w strings.Builder
	buildgraph.Lit(&w, edges, paths)
	out := w.String()

	require.Contains(t, out, `pub const a = Pkg{`)
	require.Contains(t, out, `.path = FileSource{ .path = "/cache/a-1.0.0" }`)
	require.NotContains(t, out, ".dependencies")
	require.Contains(t, out, "artifact.addPackage(pkgs.a);")
}

func TestLitTransitiveChild(t *testing.T) {
	edges := []depgraph.Edge{
		{Parent: depgraph.RootParent(depgraph.RootNormal), To: 0, Alias: "a"},
		{Parent: depgraph.DepParent(0), To: 1, Alias: "b"},
	}
	paths := fakePaths{0: "/cache/a", 1: "/cache/b"}

	var w strings.Builder
	buildgraph.Lit(&w, edges, paths)
	out := w.String()

	require.Contains(t, out, "pub const a = Pkg{")
	require.Contains(t, out, ".dependencies = &[_]Pkg{")
	require.Contains(t, out, `.name = "b"`)
}

func TestLitEmptyEdgesProducesNoRootsAndNoAddAllToBody(t *testing.T) {
	var w strings.Builder
	buildgraph.Lit(&w, nil, fakePaths{})
	out := w.String()

	require.Contains(t, out, "pub const pkgs = struct {\n};")
	require.Contains(t, out, "pub fn addAllTo(artifact: anytype) void {\n}")
}

func TestExportsBlockOmittedWhenNoExports(t *testing.T) {
	var w strings.Builder
	buildgraph.ExportsBlock(&w, &project.Project{}, "src/root.zig", nil)
	require.Empty(t, w.String())
}

func TestExportsBlockDefaultsPath(t *testing.T) {
	proj := &project.Project{Exports: []project.ExportedPackage{{Name: "lib"}}}

	var w strings.Builder
	buildgraph.ExportsBlock(&w, proj, "src/root.zig", []string{"a"})
	out := w.String()

	require.Contains(t, out, `pub const lib = Export{`)
	require.Contains(t, out, `.path = "src/root.zig"`)
	require.Contains(t, out, "&pkgs.a,")
}

func TestBuildTreeWalksRootBuildEdgesOnly(t *testing.T) {
	edges := []depgraph.Edge{
		{Parent: depgraph.RootParent(depgraph.RootNormal), To: 0, Alias: "a"},
		{Parent: depgraph.RootParent(depgraph.RootBuild), To: 1, Alias: "gen"},
		{Parent: depgraph.DepParent(1), To: 2, Alias: "genchild"},
	}
	paths := fakePaths{0: "/cache/a", 1: "/cache/gen", 2: "/cache/genchild"}

	tree := buildgraph.BuildTree(edges, paths)
	require.Len(t, tree, 1)
	require.Equal(t, "gen", tree[0].Name)
	require.Equal(t, "/cache/gen", tree[0].Path)
	require.Len(t, tree[0].Dependencies, 1)
	require.Equal(t, "genchild", tree[0].Dependencies[0].Name)
}

func TestEscapeIdentHandlesLeadingDigitAndSpecialChars(t *testing.T) {
	edges := []depgraph.Edge{
		{Parent: depgraph.RootParent(depgraph.RootNormal), To: 0, Alias: "1-weird.name"},
	}
	var w strings.Builder
	buildgraph.Lit(&w, edges, fakePaths{0: "/cache/x"})
	out := w.String()

	require.Contains(t, out, "pub const _1_weird_name = Pkg{")
}

func TestDiamondYieldsTwoEdgesOneEachChildNode(t *testing.T) {
	// a and b both depend on c (dep_idx 2); c's single resolution entry
	// still produces two edges pointing at dep_idx 2.
	edges := []depgraph.Edge{
		{Parent: depgraph.RootParent(depgraph.RootNormal), To: 0, Alias: "a"},
		{Parent: depgraph.RootParent(depgraph.RootNormal), To: 1, Alias: "b"},
		{Parent: depgraph.DepParent(0), To: 2, Alias: "c"},
		{Parent: depgraph.DepParent(1), To: 2, Alias: "c"},
	}
	paths := fakePaths{0: "/cache/a", 1: "/cache/b", 2: "/cache/c"}

	var w strings.Builder
	buildgraph.Lit(&w, edges, paths)
	out := w.String()

	require.Equal(t, 2, strings.Count(out, `.name = "c"`))
}
