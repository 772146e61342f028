package debugserver_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/seanwallawalla-forks/gyro/internal/debugserver"
	"github.com/seanwallawalla-forks/gyro/pkg/depgraph/engine"
)

func do(t *testing.T, s *debugserver.Server, method, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

func TestHealthzUnreadyBeforeFirstBatch(t *testing.T) {
	s := debugserver.New()
	rec := do(t, s, http.MethodGet, "/healthz")
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestHealthzReadyAfterFirstBatch(t *testing.T) {
	s := debugserver.New()
	s.MarkBatchComplete(engine.BatchProgress{Batch: 0, Source: "pkg"})

	rec := do(t, s, http.MethodGet, "/healthz")
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestLastRunEmptyBeforeAnyRun(t *testing.T) {
	s := debugserver.New()
	rec := do(t, s, http.MethodGet, "/lastrun")
	require.Equal(t, http.StatusNoContent, rec.Code)
}

func TestLastRunReportsError(t *testing.T) {
	s := debugserver.New()
	s.SetLastRun(nil, errors.New("boom"))

	rec := do(t, s, http.MethodGet, "/lastrun")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "boom")
}

func TestLastRunReportsResult(t *testing.T) {
	s := debugserver.New()
	s.SetLastRun(&engine.FetchResult{RunID: "abc", Batches: 2, CycleFree: true}, nil)

	rec := do(t, s, http.MethodGet, "/lastrun")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"run_id":"abc"`)
	require.Contains(t, rec.Body.String(), `"batches":2`)
}
