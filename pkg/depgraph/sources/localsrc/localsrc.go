// Package localsrc is the reference driver for filesystem-path
// dependencies: a dep whose source is a relative or absolute path on the
// local disk, used for in-repo sibling packages or vendored checkouts.
//
// It is a reference implementation of the driver collaborator; the
// engine depends only on [depgraph.Driver].
package localsrc

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/seanwallawalla-forks/gyro/pkg/depgraph"
	"github.com/seanwallawalla-forks/gyro/pkg/project"
)

// entry is this driver's Resolution Entry shape: a canonical path plus
// the nullable dep_idx back-reference.
type entry struct {
	path   string
	depIdx int
	hasDep bool
}

// Driver resolves project.SourceLocal dependencies by canonicalizing
// their declared path. It has no network or cache footprint:
// [Driver.LiveCacheBasenames] always reports ok=false.
type Driver struct {
	root    string // base directory declared paths are resolved relative to
	entries []entry
}

// New returns a Driver that resolves relative paths against root (the
// directory containing the project manifest).
func New(root string) *Driver {
	return &Driver{root: root}
}

func (d *Driver) Name() string { return "local" }

// DeserializeLockfileEntry parses a single canonicalized path.
func (d *Driver) DeserializeLockfileEntry(tail string) error {
	path := strings.TrimSpace(tail)
	if path == "" {
		return fmt.Errorf("localsrc: empty path")
	}
	d.entries = append(d.entries, entry{path: path})
	return nil
}

func (d *Driver) SerializeResolutions(w io.Writer) error {
	for _, e := range d.entries {
		if _, err := fmt.Fprintf(w, "local %s\n", e.path); err != nil {
			return err
		}
	}
	return nil
}

func (d *Driver) FindResolution(src project.Source) (int, bool) {
	canon := d.canonicalize(src.Path)
	for i, e := range d.entries {
		if e.path == canon {
			return i, true
		}
	}
	return 0, false
}

func (d *Driver) canonicalize(path string) string {
	abs := path
	if !filepath.IsAbs(abs) {
		abs = filepath.Join(d.root, abs)
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		return resolved
	}
	return filepath.Clean(abs)
}

// Fetch canonicalizes the dependency's declared path and reports it as a
// fresh or reused entry. It performs no I/O beyond symlink resolution, so
// it never blocks on network or subprocess calls.
func (d *Driver) Fetch(ctx context.Context, table *depgraph.Table, row *depgraph.Row) {
	src := table.Get(row.Edge.To)
	canon := d.canonicalize(src.Path)

	if resIdx, ok := d.FindResolution(src); ok {
		row.Result = depgraph.Result{Kind: depgraph.ResultReplaceMe, ResIdx: resIdx}
		return
	}
	row.Result = depgraph.Result{Kind: depgraph.ResultNewEntry, Entry: entry{path: canon}}
}

func (d *Driver) UpdateResolution(row *depgraph.Row) (string, []depgraph.ChildDep) {
	switch row.Result.Kind {
	case depgraph.ResultReplaceMe:
		e := d.entries[row.Result.ResIdx]
		return e.path, nil
	case depgraph.ResultNewEntry:
		e := row.Result.Entry.(entry)
		// Another row in this same batch may have already reconciled an
		// equivalent entry for the same canonical path — both workers
		// decided new_entry independently since neither could see the
		// other's not-yet-reconciled result. Re-check now that
		// reconciliation is sequential before appending a duplicate.
		for _, existing := range d.entries {
			if existing.path == e.path {
				return existing.path, nil
			}
		}
		e.depIdx = int(row.Edge.To)
		e.hasDep = true
		d.entries = append(d.entries, e)
		return e.path, nil
	default:
		return "", nil
	}
}

func (d *Driver) LiveCacheBasenames() ([]string, bool) { return nil, false }

func (d *Driver) RemoveResolution(resIdx int) bool {
	if resIdx < 0 || resIdx >= len(d.entries) {
		return false
	}
	d.entries = append(d.entries[:resIdx], d.entries[resIdx+1:]...)
	return true
}

var _ depgraph.Driver = (*Driver)(nil)
