// Package buildgraph is the build-graph emitter: it walks an engine's
// accumulated edge list and produces the two artifacts a host build
// system consumes — a textual nested package literal for root-as-normal
// deps, and an in-memory package tree for root-as-build deps — plus an
// optional exports block.
//
// Both sub-emitters share the same depth-first walk: a parent's children
// are the non-root edges after its own edge index whose parent is the
// parent's dep, located by scanning forward from one past the parent's
// index to the end of the list. Because every child edge appears after
// its parent's edge, both walks avoid building an adjacency map first.
package buildgraph

import (
	"fmt"
	"strings"

	"github.com/seanwallawalla-forks/gyro/pkg/depgraph"
	"github.com/seanwallawalla-forks/gyro/pkg/project"
)

// Resolver answers path lookups for a DepIdx; satisfied by
// *depgraph.PathsMap in production and by a map in tests.
type Resolver interface {
	Get(idx depgraph.DepIdx) (string, bool)
}

// Lit renders the top-level nested package literal plus the addAllTo
// function for every root-as-normal edge in edges, writing to w.
//
// Indentation follows an inherited quirk: the root package itself sits
// at one indent level (4 spaces), its first descent uses an indent
// offset of 2 levels, and every deeper descent uses an offset of 3. This
// asymmetry is intentional and reproduced exactly, not "fixed".
func Lit(w *strings.Builder, edges []depgraph.Edge, paths Resolver) {
	fmt.Fprintln(w, "pub const pkgs = struct {")

	var roots []depgraph.Edge
	for _, e := range edges {
		if e.Parent.IsRoot && e.Parent.Root == depgraph.RootNormal {
			roots = append(roots, e)
		}
	}

	for _, root := range roots {
		idx := indexOf(edges, root)
		writeRoot(w, edges, idx, paths)
	}

	fmt.Fprintln(w, "};")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "pub fn addAllTo(artifact: anytype) void {")
	for _, root := range roots {
		fmt.Fprintf(w, "    artifact.addPackage(pkgs.%s);\n", escapeIdent(root.Alias))
	}
	fmt.Fprintln(w, "}")
}

// writeRoot emits one top-level named package at indent level 1: a
// `pub const <alias> = Pkg{ ... };` declaration whose body is written by
// writeNode. The root's own first descent into its dependencies uses an
// indent offset of 2 from indent 1 (so children sit at indent 3); every
// descent after that uses an offset of 3.
func writeRoot(w *strings.Builder, edges []depgraph.Edge, edgeIdx int, paths Resolver) {
	e := edges[edgeIdx]
	fmt.Fprintf(w, "    pub const %s = Pkg{\n", escapeIdent(e.Alias))
	writeNodeFields(w, 1, edges, edgeIdx, paths, 2)
	fmt.Fprintf(w, "    };\n")
}

// writeNode emits one nested, unnamed `Pkg{ ... }` literal at the given
// indent level — an entry inside a parent's `.dependencies` slice.
func writeNode(w *strings.Builder, indent int, edges []depgraph.Edge, edgeIdx int, paths Resolver) {
	pad := strings.Repeat("    ", indent)
	fmt.Fprintf(w, "%sPkg{\n", pad)
	writeNodeFields(w, indent, edges, edgeIdx, paths, 3)
	fmt.Fprintf(w, "%s},\n", pad)
}

// writeNodeFields writes the `.name`/`.path`/optional `.dependencies`
// fields shared by both a root's named declaration and a nested literal,
// at body indent level+1. childOffset is the indent offset applied when
// opening this node's own `.dependencies` block, per the +2/+3 quirk.
func writeNodeFields(w *strings.Builder, indent int, edges []depgraph.Edge, edgeIdx int, paths Resolver, childOffset int) {
	e := edges[edgeIdx]
	pad := strings.Repeat("    ", indent)

	pathStr := ""
	if p, ok := paths.Get(e.To); ok {
		pathStr = escapePath(p)
	}

	fmt.Fprintf(w, "%s    .name = \"%s\",\n", pad, escapeIdent(e.Alias))
	fmt.Fprintf(w, "%s    .path = FileSource{ .path = \"%s\" },\n", pad, pathStr)

	children := childEdges(edges, edgeIdx)
	if len(children) > 0 {
		fmt.Fprintf(w, "%s    .dependencies = &[_]Pkg{\n", pad)
		for _, childIdx := range children {
			writeNode(w, indent+childOffset, edges, childIdx, paths)
		}
		fmt.Fprintf(w, "%s    },\n", pad)
	}
}

// childEdges returns the indices, in edges, of every edge whose parent
// is the dep named by edges[parentIdx].To. Per the BFS ordering
// invariant, every such child edge appears at a strictly
// greater index than parentIdx, so the scan covers the whole remainder
// of the list, skipping root edges and filtering by parent match; the
// edge list for one run is small enough not to warrant a precomputed
// adjacency index.
func childEdges(edges []depgraph.Edge, parentIdx int) []int {
	parentDep := edges[parentIdx].To
	var out []int
	for i := parentIdx + 1; i < len(edges); i++ {
		if edges[i].Parent.IsRoot {
			continue
		}
		if edges[i].Parent.FromDep == parentDep {
			out = append(out, i)
		}
	}
	return out
}

func indexOf(edges []depgraph.Edge, target depgraph.Edge) int {
	for i, e := range edges {
		if e == target {
			return i
		}
	}
	return -1
}

// escapeIdent makes alias valid as a host-language identifier: any byte
// outside [A-Za-z0-9_] is replaced with '_', and a leading digit is
// prefixed with '_' so the result is never mistaken for a numeric
// literal.
func escapeIdent(alias string) string {
	var b strings.Builder
	for i, r := range alias {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r == '_':
			b.WriteRune(r)
		case r >= '0' && r <= '9':
			if i == 0 {
				b.WriteByte('_')
			}
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}

// escapePath doubles backslashes so a Windows path survives the
// generated literal's string-escape rules, and escapes any literal
// double quote the path might contain.
func escapePath(p string) string {
	p = strings.ReplaceAll(p, `\`, `\\`)
	p = strings.ReplaceAll(p, `"`, `\"`)
	return p
}

// ExportsBlock renders the optional exports block. It writes nothing if
// proj declares no exported packages. defaultPath is used for any
// exported package whose manifest entry left Path empty.
func ExportsBlock(w *strings.Builder, proj *project.Project, defaultPath string, rootAliases []string) {
	if len(proj.Exports) == 0 {
		return
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "pub const exports = struct {")
	for _, exp := range proj.Exports {
		path := exp.Path
		if path == "" {
			path = defaultPath
		}
		fmt.Fprintf(w, "    pub const %s = Export{\n", escapeIdent(exp.Name))
		fmt.Fprintf(w, "        .name = \"%s\",\n", escapeIdent(exp.Name))
		fmt.Fprintf(w, "        .path = \"%s\",\n", escapePath(path))
		fmt.Fprintf(w, "        .dependencies = &[_]*const Pkg{\n")
		for _, alias := range rootAliases {
			fmt.Fprintf(w, "            &pkgs.%s,\n", escapeIdent(alias))
		}
		fmt.Fprintln(w, "        },")
		fmt.Fprintln(w, "    };")
	}
	fmt.Fprintln(w, "};")
}

// BuildPkg is one node of the in-memory build-deps tree: root-as-build
// edges and their descendants, mirroring the shape of the
// textual literal but as data rather than text, for host build systems
// that want to walk build-time dependencies programmatically instead of
// importing generated source.
type BuildPkg struct {
	Name         string
	Path         string
	Dependencies []*BuildPkg
}

// BuildTree walks every root-as-build edge in edges with the same stack
// discipline as Lit, returning one BuildPkg per root in edge order.
func BuildTree(edges []depgraph.Edge, paths Resolver) []*BuildPkg {
	var roots []*BuildPkg
	for i, e := range edges {
		if e.Parent.IsRoot && e.Parent.Root == depgraph.RootBuild {
			roots = append(roots, buildNode(edges, i, paths))
		}
	}
	return roots
}

func buildNode(edges []depgraph.Edge, edgeIdx int, paths Resolver) *BuildPkg {
	e := edges[edgeIdx]
	node := &BuildPkg{Name: e.Alias}
	if p, ok := paths.Get(e.To); ok {
		node.Path = p
	}
	for _, childIdx := range childEdges(edges, edgeIdx) {
		node.Dependencies = append(node.Dependencies, buildNode(edges, childIdx, paths))
	}
	return node
}
