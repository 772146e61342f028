package urlsrc_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/seanwallawalla-forks/gyro/pkg/cache"
	"github.com/seanwallawalla-forks/gyro/pkg/depgraph"
	"github.com/seanwallawalla-forks/gyro/pkg/depgraph/sources/urlsrc"
	"github.com/seanwallawalla-forks/gyro/pkg/httputil"
	"github.com/seanwallawalla-forks/gyro/pkg/project"
)

func TestFetchVerifiesIntegrityAndCaches(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("archive-bytes"))
	}))
	defer srv.Close()

	client := httputil.NewClient(cache.NewNullCache(), nil)
	drv := urlsrc.New(client, t.TempDir())

	var table depgraph.Table
	sum := "sha256:" + cache.Hash([]byte("archive-bytes"))
	idx := table.Append(project.Source{Kind: project.SourceURL, URL: srv.URL, Integrity: sum})

	row := &depgraph.Row{Edge: depgraph.Edge{To: idx, Alias: "archive"}}
	drv.Fetch(context.Background(), &table, row)
	require.Equal(t, depgraph.ResultNewEntry, row.Result.Kind)

	path, _ := drv.UpdateResolution(row)
	require.DirExists(t, path)
}

func TestFetchRejectsIntegrityMismatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("archive-bytes"))
	}))
	defer srv.Close()

	client := httputil.NewClient(cache.NewNullCache(), nil)
	drv := urlsrc.New(client, t.TempDir())

	var table depgraph.Table
	idx := table.Append(project.Source{Kind: project.SourceURL, URL: srv.URL, Integrity: "sha256:deadbeef"})

	row := &depgraph.Row{Edge: depgraph.Edge{To: idx, Alias: "archive"}}
	drv.Fetch(context.Background(), &table, row)
	require.Equal(t, depgraph.ResultErr, row.Result.Kind)
}
