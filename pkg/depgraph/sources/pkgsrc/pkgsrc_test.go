package pkgsrc_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/seanwallawalla-forks/gyro/pkg/cache"
	"github.com/seanwallawalla-forks/gyro/pkg/depgraph"
	"github.com/seanwallawalla-forks/gyro/pkg/depgraph/sources/pkgsrc"
	"github.com/seanwallawalla-forks/gyro/pkg/httputil"
	"github.com/seanwallawalla-forks/gyro/pkg/project"
)

func TestFetchNewEntryParsesDependencies(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"version":"1.0.0","integrity":"sha256:deadbeef","dependencies":["acme/widget@2.0.0"]}`))
	}))
	defer srv.Close()

	client := httputil.NewClient(cache.NewNullCache(), nil)
	drv := pkgsrc.New(client, srv.URL)

	var table depgraph.Table
	idx := table.Append(project.Source{Kind: project.SourcePkg, User: "acme", Name: "gadget", Version: "1.0.0"})

	row := &depgraph.Row{Edge: depgraph.Edge{To: idx, Alias: "gadget"}}
	drv.Fetch(context.Background(), &table, row)
	require.Equal(t, depgraph.ResultNewEntry, row.Result.Kind)
	require.Len(t, row.Children, 1)
	require.Equal(t, "widget", row.Children[0].Alias)
	require.Equal(t, "acme", row.Children[0].Source.User)
	require.Equal(t, "2.0.0", row.Children[0].Source.Version)

	path, children := drv.UpdateResolution(row)
	require.Equal(t, "acme-gadget-1.0.0", path)
	require.Len(t, children, 1)
}

func TestFetchReusesExistingResolutionWithoutNetworkCall(t *testing.T) {
	client := httputil.NewClient(cache.NewNullCache(), nil)
	drv := pkgsrc.New(client, "https://registry.example.com")
	require.NoError(t, drv.DeserializeLockfileEntry("acme gadget 1.0.0 sha256:deadbeef"))

	var table depgraph.Table
	idx := table.Append(project.Source{Kind: project.SourcePkg, User: "acme", Name: "gadget", Version: "1.0.0"})

	row := &depgraph.Row{Edge: depgraph.Edge{To: idx, Alias: "gadget"}}
	drv.Fetch(context.Background(), &table, row)
	require.Equal(t, depgraph.ResultReplaceMe, row.Result.Kind)
	require.Equal(t, 0, row.Result.ResIdx)
}

func TestFetchRejectsRegistryErrorResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	client := httputil.NewClient(cache.NewNullCache(), nil)
	drv := pkgsrc.New(client, srv.URL)

	var table depgraph.Table
	idx := table.Append(project.Source{Kind: project.SourcePkg, User: "acme", Name: "missing", Version: "1.0.0"})

	row := &depgraph.Row{Edge: depgraph.Edge{To: idx, Alias: "missing"}}
	drv.Fetch(context.Background(), &table, row)
	require.Equal(t, depgraph.ResultErr, row.Result.Kind)
}

func TestSerializeResolutionsRoundTripsThroughDeserialize(t *testing.T) {
	client := httputil.NewClient(cache.NewNullCache(), nil)
	drv := pkgsrc.New(client, "https://registry.example.com")
	require.NoError(t, drv.DeserializeLockfileEntry("acme gadget 1.0.0 sha256:deadbeef"))

	var out strings.Builder
	require.NoError(t, drv.SerializeResolutions(&out))
	require.Equal(t, "pkg acme gadget 1.0.0 sha256:deadbeef\n", out.String())
}

func TestFindResolutionMatchesOnNameAndSemverEquality(t *testing.T) {
	client := httputil.NewClient(cache.NewNullCache(), nil)
	drv := pkgsrc.New(client, "https://registry.example.com")
	require.NoError(t, drv.DeserializeLockfileEntry("acme gadget 1.0.0 sha256:deadbeef"))

	idx, ok := drv.FindResolution(project.Source{Kind: project.SourcePkg, User: "acme", Name: "gadget", Version: "1.0.0"})
	require.True(t, ok)
	require.Equal(t, 0, idx)

	_, ok = drv.FindResolution(project.Source{Kind: project.SourcePkg, User: "acme", Name: "gadget", Version: "2.0.0"})
	require.False(t, ok)
}

func TestRemoveResolutionDropsEntry(t *testing.T) {
	client := httputil.NewClient(cache.NewNullCache(), nil)
	drv := pkgsrc.New(client, "https://registry.example.com")
	require.NoError(t, drv.DeserializeLockfileEntry("acme gadget 1.0.0 sha256:deadbeef"))

	require.True(t, drv.RemoveResolution(0))
	_, ok := drv.FindResolution(project.Source{Kind: project.SourcePkg, User: "acme", Name: "gadget", Version: "1.0.0"})
	require.False(t, ok)
	require.False(t, drv.RemoveResolution(0))
}
