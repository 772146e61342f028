package depgraph

// EdgeParent identifies where an Edge originates: one of the two root
// flavors, or an internal dependency by its DepIdx.
type EdgeParent struct {
	Root    RootKind
	FromDep DepIdx
	IsRoot  bool
}

// RootParent returns an EdgeParent for a root-level dependency of the
// given flavor.
func RootParent(kind RootKind) EdgeParent {
	return EdgeParent{Root: kind, IsRoot: true}
}

// DepParent returns an EdgeParent for an edge discovered while fetching an
// existing dependency.
func DepParent(idx DepIdx) EdgeParent {
	return EdgeParent{FromDep: idx, IsRoot: false}
}

// Edge is a parent -> child relation in the dependency graph. Edges are
// appended in BFS discovery order across batches and, within a batch, in
// per-source insertion order; the build-graph emitter depends on this
// ordering.
type Edge struct {
	Parent EdgeParent
	To     DepIdx
	Alias  string
}

// EdgeList is the Engine's accumulated, append-only edge history.
type EdgeList struct {
	edges []Edge
}

func (l *EdgeList) Append(e Edge) { l.edges = append(l.edges, e) }

func (l *EdgeList) Len() int { return len(l.edges) }

func (l *EdgeList) All() []Edge { return l.edges }
