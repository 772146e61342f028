package gitsrc_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/seanwallawalla-forks/gyro/pkg/depgraph/sources/gitsrc"
	"github.com/seanwallawalla-forks/gyro/pkg/project"
)

func TestDeserializeAndSerializeRoundTrip(t *testing.T) {
	drv := gitsrc.New(t.TempDir())
	require.NoError(t, drv.DeserializeLockfileEntry("https://example.com/tool.git deadbeef"))

	var buf strings.Builder
	require.NoError(t, drv.SerializeResolutions(&buf))
	require.Equal(t, "git https://example.com/tool.git deadbeef\n", buf.String())
}

func TestDeserializeRejectsMalformedLine(t *testing.T) {
	drv := gitsrc.New(t.TempDir())
	require.Error(t, drv.DeserializeLockfileEntry("https://example.com/tool.git"))
}

func TestFindResolutionMatchesRepoAndRevision(t *testing.T) {
	drv := gitsrc.New(t.TempDir())
	require.NoError(t, drv.DeserializeLockfileEntry("https://example.com/tool.git deadbeef"))

	_, ok := drv.FindResolution(project.Source{Kind: project.SourceGit, Repo: "https://example.com/tool.git", Revision: "deadbeef"})
	require.True(t, ok)

	_, ok = drv.FindResolution(project.Source{Kind: project.SourceGit, Repo: "https://example.com/other.git"})
	require.False(t, ok)
}

func TestRemoveResolutionOrderedRemove(t *testing.T) {
	drv := gitsrc.New(t.TempDir())
	require.NoError(t, drv.DeserializeLockfileEntry("https://example.com/a.git aaaa"))
	require.NoError(t, drv.DeserializeLockfileEntry("https://example.com/b.git bbbb"))

	require.True(t, drv.RemoveResolution(0))

	var buf strings.Builder
	require.NoError(t, drv.SerializeResolutions(&buf))
	require.Equal(t, "git https://example.com/b.git bbbb\n", buf.String())
}
