// Package pkgsrc is the reference driver for registry dependencies: a
// dep identified by (user, name, version) against a Go-module-proxy-
// shaped JSON API, with entries compared by real semver precedence
// rather than string equality.
package pkgsrc

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/Masterminds/semver/v3"

	"github.com/seanwallawalla-forks/gyro/pkg/depgraph"
	"github.com/seanwallawalla-forks/gyro/pkg/httputil"
	"github.com/seanwallawalla-forks/gyro/pkg/project"
)

// entry is this driver's Resolution Entry: the concrete
// (user, name, semver, integrity) tuple plus the nullable dep_idx
// back-reference and a cached child-dep list for copy_deps reuse.
type entry struct {
	user      string
	name      string
	version   *semver.Version
	integrity string
	depIdx    int
	hasDep    bool
	children  []depgraph.ChildDep
}

// registryInfo is the registry response shape, modeled on the Go module
// proxy's @v/<version>.info endpoint plus an extra Dependencies field
// this driver's registry adds.
type registryInfo struct {
	Version      string   `json:"version"`
	Integrity    string   `json:"integrity"`
	Dependencies []string `json:"dependencies"` // "user/name@version" entries
}

// Driver resolves project.SourcePkg dependencies against a registry API.
type Driver struct {
	client  *httputil.Client
	baseURL string
	entries []entry
}

// New returns a Driver querying baseURL (e.g. "https://registry.example.com").
func New(client *httputil.Client, baseURL string) *Driver {
	return &Driver{client: client, baseURL: strings.TrimSuffix(baseURL, "/")}
}

func (d *Driver) Name() string { return "pkg" }

// DeserializeLockfileEntry parses "<user> <name> <version> <integrity>".
func (d *Driver) DeserializeLockfileEntry(tail string) error {
	fields := strings.Fields(tail)
	if len(fields) != 4 {
		return fmt.Errorf("pkgsrc: want \"user name version integrity\", got %q", tail)
	}
	ver, err := semver.NewVersion(fields[2])
	if err != nil {
		return fmt.Errorf("pkgsrc: bad version %q: %w", fields[2], err)
	}
	d.entries = append(d.entries, entry{user: fields[0], name: fields[1], version: ver, integrity: fields[3]})
	return nil
}

func (d *Driver) SerializeResolutions(w io.Writer) error {
	for _, e := range d.entries {
		if _, err := fmt.Fprintf(w, "pkg %s %s %s %s\n", e.user, e.name, e.version.Original(), e.integrity); err != nil {
			return err
		}
	}
	return nil
}

// FindResolution locates an entry equivalent to src: same (user, name)
// and, when src carries a version, the same resolved semver precedence.
func (d *Driver) FindResolution(src project.Source) (int, bool) {
	for i, e := range d.entries {
		if e.user != src.User || e.name != src.Name {
			continue
		}
		if src.Version == "" {
			return i, true
		}
		if wanted, err := semver.NewVersion(src.Version); err == nil && wanted.Equal(e.version) {
			return i, true
		}
	}
	return 0, false
}

// Fetch queries the registry for (user, name, version) through the
// client's response cache, parsing the dependency list into ChildDeps,
// and reports a new or reused entry.
func (d *Driver) Fetch(ctx context.Context, table *depgraph.Table, row *depgraph.Row) {
	src := table.Get(row.Edge.To)

	if resIdx, ok := d.FindResolution(src); ok {
		row.Result = depgraph.Result{Kind: depgraph.ResultReplaceMe, ResIdx: resIdx}
		return
	}

	var info registryInfo
	url := fmt.Sprintf("%s/%s/%s/@v/%s.info", d.baseURL, src.User, src.Name, src.Version)
	if err := d.client.Cached(ctx, url, false, &info, func() error {
		return d.client.Get(ctx, url, &info)
	}); err != nil {
		row.Result = depgraph.Result{Kind: depgraph.ResultErr, Err: err}
		return
	}

	ver, err := semver.NewVersion(info.Version)
	if err != nil {
		row.Result = depgraph.Result{Kind: depgraph.ResultErr, Err: fmt.Errorf("pkgsrc: registry returned bad version %q: %w", info.Version, err)}
		return
	}

	children, err := parseDependencies(info.Dependencies)
	if err != nil {
		row.Result = depgraph.Result{Kind: depgraph.ResultErr, Err: err}
		return
	}

	row.Children = children
	row.Result = depgraph.Result{Kind: depgraph.ResultNewEntry, Entry: entry{
		user: src.User, name: src.Name, version: ver, integrity: info.Integrity, children: children,
	}}
}

func parseDependencies(deps []string) ([]depgraph.ChildDep, error) {
	children := make([]depgraph.ChildDep, 0, len(deps))
	for _, d := range deps {
		coord, version, ok := strings.Cut(d, "@")
		if !ok {
			return nil, fmt.Errorf("pkgsrc: malformed dependency coordinate %q", d)
		}
		user, name, ok := strings.Cut(coord, "/")
		if !ok {
			return nil, fmt.Errorf("pkgsrc: malformed dependency coordinate %q", d)
		}
		children = append(children, depgraph.ChildDep{
			Alias:  name,
			Source: project.Source{Kind: project.SourcePkg, User: user, Name: name, Version: version},
		})
	}
	return children, nil
}

func (d *Driver) UpdateResolution(row *depgraph.Row) (string, []depgraph.ChildDep) {
	switch row.Result.Kind {
	case depgraph.ResultReplaceMe:
		e := &d.entries[row.Result.ResIdx]
		e.depIdx = int(row.Edge.To)
		e.hasDep = true
		return d.cachePath(*e), e.children
	case depgraph.ResultNewEntry:
		e := row.Result.Entry.(entry)
		// Another row in this same batch may have already reconciled an
		// equivalent entry (e.g. a diamond where two parents discover the
		// same dep in one batch) — both workers decided new_entry
		// independently since neither could see the other's not-yet-
		// reconciled result. Re-check now that reconciliation is
		// sequential before appending a duplicate.
		if resIdx, ok := d.FindResolution(project.Source{Kind: project.SourcePkg, User: e.user, Name: e.name, Version: e.version.Original()}); ok {
			existing := &d.entries[resIdx]
			return d.cachePath(*existing), existing.children
		}
		e.depIdx = int(row.Edge.To)
		e.hasDep = true
		d.entries = append(d.entries, e)
		return d.cachePath(e), e.children
	default:
		return "", nil
	}
}

func (d *Driver) cachePath(e entry) string {
	basename, _ := d.basenameFor(e)
	return basename
}

func (d *Driver) basenameFor(e entry) (string, bool) {
	if e.version == nil {
		return "", false
	}
	return fmt.Sprintf("%s-%s-%s", e.user, e.name, e.version.Original()), true
}

func (d *Driver) LiveCacheBasenames() ([]string, bool) {
	names := make([]string, 0, len(d.entries))
	for _, e := range d.entries {
		if !e.hasDep {
			continue
		}
		if b, ok := d.basenameFor(e); ok {
			names = append(names, b)
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
