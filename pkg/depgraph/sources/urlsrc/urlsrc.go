// Package urlsrc is the reference driver for remote archive
// dependencies: a dep fetched from an arbitrary URL and verified against
// a declared "sha256:<hex>" integrity string.
package urlsrc

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/seanwallawalla-forks/gyro/pkg/cache"
	"github.com/seanwallawalla-forks/gyro/pkg/depgraph"
	"github.com/seanwallawalla-forks/gyro/pkg/httputil"
	"github.com/seanwallawalla-forks/gyro/pkg/project"
)

// entry is this driver's Resolution Entry: the resolved URL and its
// verified integrity string, plus the nullable dep_idx back-reference.
type entry struct {
	url       string
	integrity string
	depIdx    int
	hasDep    bool
}

// Driver resolves project.SourceURL dependencies by downloading via
// [httputil.Client] and verifying a sha256 integrity string.
type Driver struct {
	client   *httputil.Client
	cacheDir string
	entries  []entry
}

// New returns a Driver downloading through client and storing each
// downloaded archive, unextracted, as a file named "archive" in a
// per-URL subdirectory of cacheDir.
func New(client *httputil.Client, cacheDir string) *Driver {
	return &Driver{client: client, cacheDir: cacheDir}
}

func (d *Driver) Name() string { return "url" }

// DeserializeLockfileEntry parses "<url> <sha256:hex>".
func (d *Driver) DeserializeLockfileEntry(tail string) error {
	fields := strings.Fields(tail)
	if len(fields) != 2 {
		return fmt.Errorf("urlsrc: want \"url integrity\", got %q", tail)
	}
	d.entries = append(d.entries, entry{url: fields[0], integrity: fields[1]})
	return nil
}

func (d *Driver) SerializeResolutions(w io.Writer) error {
	for _, e := range d.entries {
		if _, err := fmt.Fprintf(w, "url %s %s\n", e.url, e.integrity); err != nil {
			return err
		}
	}
	return nil
}

func (d *Driver) FindResolution(src project.Source) (int, bool) {
	for i, e := range d.entries {
		if e.url == src.URL && (src.Integrity == "" || e.integrity == src.Integrity) {
			return i, true
		}
	}
	return 0, false
}

// Fetch downloads src.URL, verifies it against src.Integrity when set,
// and reports a new or reused entry. Network failures are wrapped as
// retryable so the caller's retry policy (if any) can apply; this
// driver's own worker body does not retry internally — workers never
// suspend waiting on anything but their own I/O.
func (d *Driver) Fetch(ctx context.Context, table *depgraph.Table, row *depgraph.Row) {
	src := table.Get(row.Edge.To)

	if resIdx, ok := d.FindResolution(src); ok {
		row.Result = depgraph.Result{Kind: depgraph.ResultReplaceMe, ResIdx: resIdx}
		return
	}

	data, err := d.client.GetBytes(ctx, src.URL)
	if err != nil {
		row.Result = depgraph.Result{Kind: depgraph.ResultErr, Err: err}
		return
	}

	sum := fmt.Sprintf("sha256:%s", cache.Hash(data))
	if src.Integrity != "" && src.Integrity != sum {
		row.Result = depgraph.Result{Kind: depgraph.ResultErr, Err: fmt.Errorf("urlsrc: integrity mismatch for %s: want %s, got %s", src.URL, src.Integrity, sum)}
		return
	}

	dir := filepath.Join(d.cacheDir, cache.Hash([]byte(src.URL)))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		row.Result = depgraph.Result{Kind: depgraph.ResultErr, Err: err}
		return
	}
	if err := os.WriteFile(filepath.Join(dir, "archive"), data, 0o644); err != nil {
		row.Result = depgraph.Result{Kind: depgraph.ResultErr, Err: err}
		return
	}

	row.Result = depgraph.Result{Kind: depgraph.ResultNewEntry, Entry: entry{url: src.URL, integrity: sum}}
	row.Path = dir
}

func (d *Driver) UpdateResolution(row *depgraph.Row) (string, []depgraph.ChildDep) {
	switch row.Result.Kind {
	case depgraph.ResultReplaceMe:
		d.entries[row.Result.ResIdx].depIdx = int(row.Edge.To)
		d.entries[row.Result.ResIdx].hasDep = true
		e := d.entries[row.Result.ResIdx]
		dir := filepath.Join(d.cacheDir, cache.Hash([]byte(e.url)))
		if _, err := os.Stat(dir); err != nil {
			// A reused entry whose cache directory no longer exists reports
			// no path. The archive is not downloaded again; the entry stays
			// in the lockfile, so later runs reuse it the same way.
			return "", nil
		}
		return dir, nil
	case depgraph.ResultNewEntry:
		e := row.Result.Entry.(entry)
		// Another row in this same batch may have already reconciled an
		// equivalent entry (e.g. a diamond where two parents discover the
		// same URL in one batch) — both workers decided new_entry
		// independently since neither could see the other's not-yet-
		// reconciled result. Re-check now that reconciliation is
		// sequential before appending a duplicate.
		if resIdx, ok := d.FindResolution(project.Source{URL: e.url, Integrity: e.integrity}); ok {
			existing := d.entries[resIdx]
			dir := filepath.Join(d.cacheDir, cache.Hash([]byte(existing.url)))
			return dir, nil
		}
		e.depIdx = int(row.Edge.To)
		e.hasDep = true
		d.entries = append(d.entries, e)
		return row.Path, nil
	default:
		return "", nil
	}
}

func (d *Driver) LiveCacheBasenames() ([]string, bool) {
	names := make([]string, 0, len(d.entries))
	for _, e := range d.entries {
		if e.hasDep {
			names = append(names, cache.Hash([]byte(e.url)))
		}
	}
	return names, true
}

func (d *Driver) RemoveResolution(resIdx int) bool {
	if resIdx < 0 || resIdx >= len(d.entries) {
		return false
	}
	d.entries = append(d.entries[:resIdx], d.entries[resIdx+1:]...)
	return true
}

var _ depgraph.Driver = (*Driver)(nil)
