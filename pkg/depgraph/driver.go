package depgraph

import (
	"context"
	"io"

	"github.com/seanwallawalla-forks/gyro/pkg/project"
)

// ChildDep is one dependency discovered by a worker while fetching a row;
// the reconciler appends it to the Dependency Table and stages a Next
// Buffer edge from it.
type ChildDep struct {
	Alias  string
	Source project.Source
}

// ResultKind tags a Fetch Queue Row's outcome.
type ResultKind int

const (
	ResultPending ResultKind = iota
	ResultReplaceMe
	ResultFillResolution
	ResultCopyDeps
	ResultNewEntry
	ResultErr
)

// Result is the outcome a driver's worker writes into its queue row.
// Exactly one of ResIdx (for ReplaceMe/FillResolution/CopyDeps) or Entry
// (for NewEntry) or Err (for ResultErr) is meaningful, selected by Kind.
type Result struct {
	Kind ResultKind

	ResIdx int
	Entry  any // driver-defined resolution entry, for ResultNewEntry

	Err       error
	Explained bool // true if Err has already been communicated to the user
}

// Row is a Fetch Queue Row: one dependency being fetched by one worker
// within a batch.
type Row struct {
	Edge     Edge
	Result   Result
	Path     string
	Children []ChildDep
}

// Driver is the capability contract every source kind (pkg, local, url,
// git) must satisfy. The engine holds one Driver per source tag and
// fans out across them; each Driver owns its own Resolution Entries table
// internally rather than exposing a generic container, since entry shape
// differs per source.
type Driver interface {
	// Name returns the source tag used as the lockfile line prefix and as
	// this driver's key in the engine's driver map.
	Name() string

	// DeserializeLockfileEntry parses the tail of one lockfile line
	// (after the source tag token has been consumed) and appends a
	// Resolution Entry to this driver's table with a null dep_idx. A
	// parse failure returns an error; the caller drops the line and
	// continues loading the rest of the file.
	DeserializeLockfileEntry(tail string) error

	// SerializeResolutions writes one line per retained entry, each
	// prefixed by Name(), in this driver's own field order.
	SerializeResolutions(w io.Writer) error

	// FindResolution locates an entry equivalent to src, if any.
	FindResolution(src project.Source) (resIdx int, ok bool)

	// Fetch is the worker body (dedupe_resolve_and_fetch). It must read
	// only table and its own entries, write only row, never block on
	// another row, and never panic across the call boundary: any failure
	// is recorded as row.Result = Result{Kind: ResultErr, Err: ...}.
	Fetch(ctx context.Context, table *Table, row *Row)

	// UpdateResolution performs this driver's share of reconciliation for
	// one row: apply row.Result against this driver's entries table,
	// returning the filesystem path bound to the row (if any) and the
	// set of children the row discovered.
	UpdateResolution(row *Row) (path string, children []ChildDep)

	// LiveCacheBasenames returns the cache-directory basename of every
	// Resolution Entry with a non-null dep_idx (i.e. validated this
	// run), if this driver caches fetched content on disk. ok is false
	// for drivers with no cache footprint (e.g. localsrc); such drivers
	// are skipped by the post-loop cache GC pass.
	LiveCacheBasenames() (basenames []string, ok bool)

	// RemoveResolution deletes the entry at resIdx, if present, and
	// reports whether it removed one. Used by the clear-resolution
	// operation; ordered-remove preserves the relative order of the
	// remaining entries.
	RemoveResolution(resIdx int) bool
}
