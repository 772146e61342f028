package lockfile_test

import (
	"context"
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/seanwallawalla-forks/gyro/pkg/depgraph"
	"github.com/seanwallawalla-forks/gyro/pkg/lockfile"
	"github.com/seanwallawalla-forks/gyro/pkg/project"
)

// fakeDriver serializes a fixed list of lines under a fixed tag, enough
// to exercise Emit's fixed-order invocation without pulling in a real
// source driver.
type fakeDriver struct {
	tag   string
	lines []string
}

func (f *fakeDriver) Name() string                                             { return f.tag }
func (f *fakeDriver) DeserializeLockfileEntry(tail string) error               { f.lines = append(f.lines, tail); return nil }
func (f *fakeDriver) FindResolution(project.Source) (int, bool)                { return 0, false }
func (f *fakeDriver) Fetch(context.Context, *depgraph.Table, *depgraph.Row)    {}
func (f *fakeDriver) UpdateResolution(*depgraph.Row) (string, []depgraph.ChildDep) { return "", nil }
func (f *fakeDriver) LiveCacheBasenames() ([]string, bool)                     { return nil, false }
func (f *fakeDriver) RemoveResolution(int) bool                                { return false }

func (f *fakeDriver) SerializeResolutions(w io.Writer) error {
	for _, line := range f.lines {
		if _, err := fmt.Fprintf(w, "%s %s\n", f.tag, line); err != nil {
			return err
		}
	}
	return nil
}

func TestEmitInvokesDriversInGivenOrder(t *testing.T) {
	pkg := &fakeDriver{tag: "pkg", lines: []string{"acme gadget 1.0.0 sha256:aaa"}}
	url := &fakeDriver{tag: "url", lines: []string{"https://example.com/a.tar.gz sha256:bbb"}}

	drivers := map[string]depgraph.Driver{"pkg": pkg, "url": url}
	out, err := lockfile.Emit(drivers, []string{"url", "pkg"})
	require.NoError(t, err)
	require.Equal(t, "url https://example.com/a.tar.gz sha256:bbb\npkg acme gadget 1.0.0 sha256:aaa\n", out)
}

func TestEmitSkipsOrderEntriesWithNoRegisteredDriver(t *testing.T) {
	pkg := &fakeDriver{tag: "pkg", lines: []string{"a b 1.0.0 sha256:aaa"}}
	drivers := map[string]depgraph.Driver{"pkg": pkg}

	out, err := lockfile.Emit(drivers, []string{"pkg", "git"})
	require.NoError(t, err)
	require.Equal(t, "pkg a b 1.0.0 sha256:aaa\n", out)
}

func TestDiffEmptyWhenUnchanged(t *testing.T) {
	diff, err := lockfile.Diff("old", "new", "pkg a 1.0.0\n", "pkg a 1.0.0\n")
	require.NoError(t, err)
	require.Empty(t, diff)
}

func TestDiffRendersUnifiedDiffOnChange(t *testing.T) {
	diff, err := lockfile.Diff("gyro.lock", "gyro.lock", "pkg a 1.0.0 sha256:aaa\n", "pkg a 2.0.0 sha256:bbb\n")
	require.NoError(t, err)
	require.Contains(t, diff, "--- gyro.lock")
	require.Contains(t, diff, "+++ gyro.lock")
	require.Contains(t, diff, "-pkg a 1.0.0 sha256:aaa")
	require.Contains(t, diff, "+pkg a 2.0.0 sha256:bbb")
}

func TestDiffHandlesEmptyOldLockfile(t *testing.T) {
	diff, err := lockfile.Diff("gyro.lock", "gyro.lock", "", "pkg a 1.0.0 sha256:aaa\n")
	require.NoError(t, err)
	require.Contains(t, diff, "+pkg a 1.0.0 sha256:aaa")
}
