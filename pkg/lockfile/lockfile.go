// Package lockfile is the lockfile codec's emission half: parsing is
// driven by pkg/depgraph/engine.New (one construction pass per engine
// run), but emission — "for each source in fixed order, invoke its
// serializer over its entries in their current table order" — has no
// reason to live on Engine itself, since a caller may want to emit
// without holding an engine (e.g. to preview what a dry run would write).
//
// This package also renders a unified diff of the previous lockfile
// text against the newly emitted one, via go-difflib.
package lockfile

import (
	"strings"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/seanwallawalla-forks/gyro/pkg/depgraph"
)

// Emit writes the lockfile body by invoking drivers[tag].SerializeResolutions
// for each tag in order, in the fixed driver order the caller supplies
// (typically the same order an Engine was constructed with). Fixed order
// means "this call's own invocation order", not an alphabetical or
// otherwise derived order — callers that want a stable re-emission across
// runs should pass the same order every time.
func Emit(drivers map[string]depgraph.Driver, order []string) (string, error) {
	var b strings.Builder
	for _, tag := range order {
		drv, ok := drivers[tag]
		if !ok {
			continue
		}
		if err := drv.SerializeResolutions(&b); err != nil {
			return "", err
		}
	}
	return b.String(), nil
}

// Diff renders a unified diff of old (the lockfile text read at engine
// construction) against next (freshly emitted by [Emit]), so a user can
// see exactly which entry lines were added or removed between one run
// and the next. Returns an empty string if old and next are identical.
func Diff(oldName, newName, old, next string) (string, error) {
	if old == next {
		return "", nil
	}
	u := difflib.UnifiedDiff{
		A:        splitLinesKeepNL(old),
		B:        splitLinesKeepNL(next),
		FromFile: oldName,
		ToFile:   newName,
		Context:  3,
	}
	return difflib.GetUnifiedDiffString(u)
}

func splitLinesKeepNL(s string) []string {
	if s == "" {
		return nil
	}
	return strings.SplitAfter(s, "\n")
}
