package dot_test

import (
	"bytes"
	"testing"

	"github.com/goccy/go-graphviz"
	"github.com/stretchr/testify/require"

	"github.com/seanwallawalla-forks/gyro/pkg/buildgraph/dot"
	"github.com/seanwallawalla-forks/gyro/pkg/depgraph"
)

func TestRenderDrawsOneNodePerDepIdxAndOneRootPerKind(t *testing.T) {
	edges := []depgraph.Edge{
		{Parent: depgraph.RootParent(depgraph.RootNormal), To: 0, Alias: "a"},
		{Parent: depgraph.DepParent(0), To: 1, Alias: "b"},
		{Parent: depgraph.RootParent(depgraph.RootBuild), To: 2, Alias: "c"},
	}

	var buf bytes.Buffer
	err := dot.Render(&buf, edges, graphviz.XDOT)
	require.NoError(t, err)

	out := buf.String()
	require.Contains(t, out, "n0")
	require.Contains(t, out, "n1")
	require.Contains(t, out, "n2")
	require.Contains(t, out, "root_normal")
	require.Contains(t, out, "root_build")
}

func TestRenderRejectsEdgeWithUnseenParent(t *testing.T) {
	edges := []depgraph.Edge{
		{Parent: depgraph.DepParent(99), To: 0, Alias: "orphan"},
	}

	var buf bytes.Buffer
	err := dot.Render(&buf, edges, graphviz.XDOT)
	require.Error(t, err)
}

func TestRenderHandlesEmptyEdgeList(t *testing.T) {
	var buf bytes.Buffer
	err := dot.Render(&buf, nil, graphviz.XDOT)
	require.NoError(t, err)
	require.Contains(t, buf.String(), "root_normal")
}
