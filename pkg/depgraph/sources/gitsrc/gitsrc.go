// Package gitsrc is the reference driver for version-controlled
// repository dependencies: a dep pinned to a commit in a remote git repo,
// cloned (or updated) into the local cache.
package gitsrc

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/seanwallawalla-forks/gyro/pkg/cache"
	"github.com/seanwallawalla-forks/gyro/pkg/depgraph"
	"github.com/seanwallawalla-forks/gyro/pkg/project"
)

// entry is this driver's Resolution Entry: a repo URL pinned to a
// resolved commit SHA, plus the nullable dep_idx back-reference.
type entry struct {
	repo   string
	commit string
	depIdx int
	hasDep bool
}

// Driver resolves project.SourceGit dependencies by shelling out to the
// git binary and pinning to a resolved commit SHA.
type Driver struct {
	cacheDir string
	entries  []entry
}

// New returns a Driver that clones into subdirectories of cacheDir.
func New(cacheDir string) *Driver {
	return &Driver{cacheDir: cacheDir}
}

func (d *Driver) Name() string { return "git" }

// DeserializeLockfileEntry parses "<repo> <commit>".
func (d *Driver) DeserializeLockfileEntry(tail string) error {
	fields := strings.Fields(tail)
	if len(fields) != 2 {
		return fmt.Errorf("gitsrc: want \"repo commit\", got %q", tail)
	}
	d.entries = append(d.entries, entry{repo: fields[0], commit: fields[1]})
	return nil
}

func (d *Driver) SerializeResolutions(w io.Writer) error {
	for _, e := range d.entries {
		if _, err := fmt.Fprintf(w, "git %s %s\n", e.repo, e.commit); err != nil {
			return err
		}
	}
	return nil
}

func (d *Driver) FindResolution(src project.Source) (int, bool) {
	for i, e := range d.entries {
		if e.repo == src.Repo && (src.Revision == "" || e.commit == src.Revision) {
			return i, true
		}
	}
	return 0, false
}

// Fetch resolves src.Revision to a concrete commit SHA (cloning or
// fetching into the cache directory as needed) and reports a new or
// reused entry. This is the only driver whose worker body routinely
// shells out to a subprocess; failures are reported in-band, never
// panicked across the worker boundary.
func (d *Driver) Fetch(ctx context.Context, table *depgraph.Table, row *depgraph.Row) {
	src := table.Get(row.Edge.To)

	if resIdx, ok := d.FindResolution(src); ok {
		row.Result = depgraph.Result{Kind: depgraph.ResultReplaceMe, ResIdx: resIdx}
		return
	}

	dir := filepath.Join(d.cacheDir, basename(src.Repo))
	commit, err := cloneAndResolve(ctx, dir, src.Repo, src.Revision)
	if err != nil {
		row.Result = depgraph.Result{Kind: depgraph.ResultErr, Err: cache.Retryable(err)}
		return
	}
	row.Result = depgraph.Result{Kind: depgraph.ResultNewEntry, Entry: entry{repo: src.Repo, commit: commit}}
	row.Path = dir
}

func cloneAndResolve(ctx context.Context, dir, repo, revision string) (string, error) {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		if _, err := runGit(ctx, "", "clone", "--quiet", repo, dir); err != nil {
			return "", fmt.Errorf("git clone %s: %w", repo, err)
		}
	}
	ref := revision
	if ref == "" {
		ref = "HEAD"
	}
	if _, err := runGit(ctx, dir, "checkout", "--quiet", ref); err != nil {
		return "", fmt.Errorf("git checkout %s: %w", ref, err)
	}
	sha, err := runGit(ctx, dir, "rev-parse", "HEAD")
	if err != nil {
		return "", fmt.Errorf("git rev-parse HEAD: %w", err)
	}
	return sha, nil
}

func runGit(ctx context.Context, dir string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = dir

	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out

	err := cmd.Run()
	return strings.TrimSpace(out.String()), err
}

func basename(repo string) string {
	repo = strings.TrimSuffix(repo, ".git")
	return cache.Hash([]byte(repo))
}

func (d *Driver) UpdateResolution(row *depgraph.Row) (string, []depgraph.ChildDep) {
	switch row.Result.Kind {
	case depgraph.ResultReplaceMe:
		d.entries[row.Result.ResIdx].depIdx = int(row.Edge.To)
		d.entries[row.Result.ResIdx].hasDep = true
		e := d.entries[row.Result.ResIdx]
		dir := filepath.Join(d.cacheDir, basename(e.repo))
		if _, err := os.Stat(dir); err != nil {
			// A reused entry whose cache directory no longer exists reports
			// no path. The directory is not cloned again; the entry stays
			// in the lockfile, so later runs reuse it the same way.
			return "", nil
		}
		return dir, nil
	case depgraph.ResultNewEntry:
		e := row.Result.Entry.(entry)
		// Another row in this same batch may have already reconciled an
		// equivalent entry (e.g. a diamond where two parents discover the
		// same repo in one batch) — both workers decided new_entry
		// independently since neither could see the other's not-yet-
		// reconciled result. Re-check now that reconciliation is
		// sequential before appending a duplicate.
		if resIdx, ok := d.FindResolution(project.Source{Repo: e.repo, Revision: e.commit}); ok {
			existing := d.entries[resIdx]
			dir := filepath.Join(d.cacheDir, basename(existing.repo))
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
			names = append(names, basename(e.repo))
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
