// Package depgraph holds the resolve/fetch engine's core data structures:
// the Dependency Table, the accumulated Edge list, the Fetch Queue and its
// Next Buffer, the Paths Map, and the Driver contract every source kind
// must satisfy. pkg/depgraph/engine wires these into the BFS loop; this
// package only defines their shapes and invariants.
package depgraph

import "github.com/seanwallawalla-forks/gyro/pkg/project"

// DepIdx is a stable, monotonically increasing index into a [Table].
type DepIdx int

// RootKind distinguishes the two flavors of root dependency edges: a
// project's normal dependencies (emitted into the textual build-graph
// literal) and its build dependencies (emitted into the in-memory tree).
type RootKind int

const (
	RootNormal RootKind = iota
	RootBuild
)

// Table is the append-only Dependency Table: an ordered sequence of
// source descriptors indexed by DepIdx. It is shared read-only with
// workers during a batch and only extended between batches.
type Table struct {
	sources []project.Source
}

// Append adds a source descriptor and returns its new index.
func (t *Table) Append(src project.Source) DepIdx {
	t.sources = append(t.sources, src)
	return DepIdx(len(t.sources) - 1)
}

// Get returns the source descriptor at idx. It panics on an out-of-range
// index: every DepIdx in circulation is expected to have been produced by
// Append on this same table.
func (t *Table) Get(idx DepIdx) project.Source {
	return t.sources[idx]
}

// Len returns the number of entries appended so far.
func (t *Table) Len() int { return len(t.sources) }
