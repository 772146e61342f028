package localsrc_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/seanwallawalla-forks/gyro/pkg/depgraph"
	"github.com/seanwallawalla-forks/gyro/pkg/depgraph/sources/localsrc"
	"github.com/seanwallawalla-forks/gyro/pkg/project"
)

func TestFetchNewEntryThenReplaceMe(t *testing.T) {
	dir := t.TempDir()
	drv := localsrc.New(dir)

	var table depgraph.Table
	idx := table.Append(project.Source{Kind: project.SourceLocal, Path: "sibling"})

	row := &depgraph.Row{Edge: depgraph.Edge{To: idx, Alias: "sibling"}}
	drv.Fetch(context.Background(), &table, row)
	require.Equal(t, depgraph.ResultNewEntry, row.Result.Kind)

	path, _ := drv.UpdateResolution(row)
	require.NotEmpty(t, path)

	row2 := &depgraph.Row{Edge: depgraph.Edge{To: idx, Alias: "sibling"}}
	drv.Fetch(context.Background(), &table, row2)
	require.Equal(t, depgraph.ResultReplaceMe, row2.Result.Kind)
}

func TestRemoveResolution(t *testing.T) {
	drv := localsrc.New(t.TempDir())
	require.NoError(t, drv.DeserializeLockfileEntry("/tmp/x"))
	require.True(t, drv.RemoveResolution(0))
	require.False(t, drv.RemoveResolution(0))
}
