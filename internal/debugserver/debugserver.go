// Package debugserver is the optional status HTTP server for long-lived
// fetch daemons: "gyro fetch --serve :PORT" starts it on a
// background goroutine alongside the resolve/fetch loop. It never blocks
// or participates in resolution — handlers only read state the caller
// records as batches and runs complete.
package debugserver

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"

	"github.com/seanwallawalla-forks/gyro/pkg/depgraph/engine"
)

// Server exposes GET /healthz (200 once at least one batch has
// completed) and GET /lastrun (JSON summary of the most recent run).
type Server struct {
	mu      sync.RWMutex
	ready   bool
	lastRun *engine.FetchResult
	lastErr error
	router  chi.Router
}

// New builds a Server. Call [Server.MarkBatchComplete] from
// Options.OnBatchProgress and [Server.SetLastRun] once Fetch returns.
func New() *Server {
	s := &Server{}
	r := chi.NewRouter()
	r.Get("/healthz", s.handleHealthz)
	r.Get("/lastrun", s.handleLastRun)
	s.router = r
	return s
}

// ServeHTTP makes Server itself an http.Handler, dispatching to the
// underlying chi router.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe starts the HTTP server on addr. Intended to be run in
// its own goroutine; it blocks until the listener fails or is closed.
func (s *Server) ListenAndServe(addr string) error {
	return http.ListenAndServe(addr, s)
}

// MarkBatchComplete flips the server to ready after the first batch of
// any run completes: callers see 200 once the engine has completed at
// least one batch.
func (s *Server) MarkBatchComplete(engine.BatchProgress) {
	s.mu.Lock()
	s.ready = true
	s.mu.Unlock()
}

// SetLastRun records the outcome of a completed Fetch call for /lastrun.
func (s *Server) SetLastRun(result *engine.FetchResult, err error) {
	s.mu.Lock()
	s.lastRun = result
	s.lastErr = err
	s.mu.Unlock()
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	ready := s.ready
	s.mu.RUnlock()

	if !ready {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusOK)
}

type lastRunResponse struct {
	RunID     string `json:"run_id,omitempty"`
	Batches   int    `json:"batches"`
	EdgeCount int    `json:"edge_count"`
	CycleFree bool   `json:"cycle_free"`
	Error     string `json:"error,omitempty"`
}

func (s *Server) handleLastRun(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	result, err := s.lastRun, s.lastErr
	s.mu.RUnlock()

	resp := lastRunResponse{}
	if result != nil {
		resp.RunID = result.RunID
		resp.Batches = result.Batches
		resp.EdgeCount = len(result.Edges)
		resp.CycleFree = result.CycleFree
	}
	if err != nil {
		resp.Error = err.Error()
	}

	w.Header().Set("Content-Type", "application/json")
	if result == nil && err == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	_ = json.NewEncoder(w).Encode(resp)
}
