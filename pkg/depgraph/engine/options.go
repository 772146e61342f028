package engine

import (
	"github.com/charmbracelet/log"

	"github.com/seanwallawalla-forks/gyro/pkg/observability"
)

// Options configures an Engine. The zero value is usable;
// [Options.WithDefaults] fills in a logger and cache directory.
type Options struct {
	// Logger receives structured progress, warning, and explained-error
	// output. Defaults to a logger writing to the process's default
	// charmbracelet/log destination.
	Logger *log.Logger

	// Metrics receives batch/outcome/GC observations. Nil disables
	// metrics entirely.
	Metrics *observability.Metrics

	// CacheDir is the root cache directory passed to drivers that cache
	// fetched content on disk, and scanned by the post-loop GC pass.
	CacheDir string

	// SkipGC disables the post-loop cache GC pass: recursive delete of
	// hidden/read-only entries is unreliable on some filesystems, and
	// some callers would rather manage the cache directory themselves.
	SkipGC bool

	// OnBatchProgress, if set, is called once per source after that
	// source's rows in a batch have been reconciled, with the source's
	// total/new-entry/errored row counts, feeding the fetch progress TUI.
	// Nil disables the callback.
	OnBatchProgress func(BatchProgress)
}

// BatchProgress summarizes one source's row outcomes within a completed
// batch, reported to Options.OnBatchProgress.
type BatchProgress struct {
	Batch      int
	Source     string
	Total      int
	Errored    int
	NewEntries int
}

// WithDefaults returns a copy of o with zero-valued fields replaced by
// defaults.
func (o Options) WithDefaults() Options {
	if o.Logger == nil {
		o.Logger = log.Default()
	}
	if o.CacheDir == "" {
		o.CacheDir = "gyro-cache"
	}
	return o
}
