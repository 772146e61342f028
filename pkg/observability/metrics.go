// Package observability provides the Prometheus collectors the engine
// reports batch and reconciliation activity to. Metrics are opt-in: a nil
// *Metrics behaves as a no-op, so unit tests and one-off CLI invocations
// never need a registry.
package observability

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the collectors the engine increments from inside its
// reconciliation and batch loop. The zero value is not usable; use [New].
type Metrics struct {
	BatchDuration  *prometheus.HistogramVec
	FetchOutcomes  *prometheus.CounterVec
	CacheGCRemoved prometheus.Counter
}

// New creates a Metrics registered against reg. Pass
// prometheus.NewRegistry() for an isolated registry, or
// prometheus.DefaultRegisterer to expose these alongside process metrics.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		BatchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "gyro_batch_duration_seconds",
			Help:    "Duration of one BFS batch (parallel fetch + reconciliation).",
			Buckets: prometheus.DefBuckets,
		}, []string{"batch"}),
		FetchOutcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gyro_fetch_outcomes_total",
			Help: "Count of fetch queue row outcomes, by source and outcome kind.",
		}, []string{"source", "outcome"}),
		CacheGCRemoved: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "gyro_cache_gc_removed_total",
			Help: "Total number of stale cache directories removed by the post-loop GC pass.",
		}),
	}
	reg.MustRegister(m.BatchDuration, m.FetchOutcomes, m.CacheGCRemoved)
	return m
}

// ObserveBatch records a batch's wall-clock duration, in seconds, labeled
// by its 0-based index. m may be nil.
func (m *Metrics) ObserveBatch(batch int, seconds float64) {
	if m == nil {
		return
	}
	m.BatchDuration.WithLabelValues(strconv.Itoa(batch)).Observe(seconds)
}

// ObserveOutcome increments the outcome counter for source/outcome. m may
// be nil.
func (m *Metrics) ObserveOutcome(source, outcome string) {
	if m == nil {
		return
	}
	m.FetchOutcomes.WithLabelValues(source, outcome).Inc()
}

// ObserveGC increments the cache-GC removal counter by n. m may be nil.
func (m *Metrics) ObserveGC(n int) {
	if m == nil {
		return
	}
	m.CacheGCRemoved.Add(float64(n))
}
