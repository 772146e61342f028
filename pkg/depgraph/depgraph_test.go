package depgraph_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/seanwallawalla-forks/gyro/pkg/depgraph"
	"github.com/seanwallawalla-forks/gyro/pkg/project"
)

func TestTableAppendIsMonotonic(t *testing.T) {
	var table depgraph.Table
	a := table.Append(project.Source{Kind: project.SourceLocal, Path: "a"})
	b := table.Append(project.Source{Kind: project.SourceLocal, Path: "b"})

	require.Equal(t, depgraph.DepIdx(0), a)
	require.Equal(t, depgraph.DepIdx(1), b)
	require.Equal(t, 2, table.Len())
	require.Equal(t, "b", table.Get(b).Path)
}

func TestPathsMapRejectsDuplicateInsert(t *testing.T) {
	m := depgraph.NewPathsMap()
	m.Insert(0, "/cache/a")

	require.Panics(t, func() { m.Insert(0, "/cache/a-again") })

	p, ok := m.Get(0)
	require.True(t, ok)
	require.Equal(t, "/cache/a", p)
}

func TestQueueEmptyAndClearAndLoad(t *testing.T) {
	q := depgraph.NewQueue()
	require.True(t, q.Empty())

	edge := depgraph.Edge{Parent: depgraph.RootParent(depgraph.RootNormal), To: 0, Alias: "a"}
	q.Append("pkg", edge)
	require.False(t, q.Empty())
	require.Len(t, q.Rows("pkg"), 1)

	next := depgraph.NewQueue()
	child := depgraph.Edge{Parent: depgraph.DepParent(0), To: 1, Alias: "b"}
	next.Append("pkg", child)
	q.ClearAndLoad(next, []string{"pkg"})
	require.Len(t, q.Rows("pkg"), 1)
	require.Equal(t, child, q.Rows("pkg")[0].Edge)

	q.ClearAndLoad(depgraph.NewQueue(), []string{"pkg"})
	require.True(t, q.Empty())
}
