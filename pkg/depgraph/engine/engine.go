// Package engine drives the resolve/fetch loop: lifecycle and wiring,
// the BFS engine driver, the parallel fetch driver, and the sequential
// resolution reconciler. pkg/depgraph supplies the data structures this
// package operates on.
package engine

import (
	"bufio"
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/seanwallawalla-forks/gyro/pkg/depgraph"
	"github.com/seanwallawalla-forks/gyro/pkg/gyroerr"
	"github.com/seanwallawalla-forks/gyro/pkg/project"
)

// sourceTag maps a project.SourceKind to the driver name it dispatches to.
// The mapping is the identity today (driver names match manifest source
// kinds) but is kept as a function so the two vocabularies can diverge
// without touching call sites.
func sourceTag(kind project.SourceKind) string { return string(kind) }

// Engine owns the Dependency Table, the Resolutions Store (via its
// drivers), the Fetch Queue, the accumulated edge list, and the Paths
// Map for one project. Teardown via [Engine.Close] releases everything
// in one shot; no table is owned by callers.
type Engine struct {
	opts    Options
	project *project.Project

	drivers     map[string]depgraph.Driver
	driverOrder []string

	table *depgraph.Table
	queue *depgraph.Queue
	edges *depgraph.EdgeList
	paths *depgraph.PathsMap

	lockfileText string
}

// New performs lifecycle init: seeds the Dependency Table with each
// normal dep (parent=root-normal) then each build dep (parent=root-build),
// and loads the Resolutions Store from lockfile text. The table starts
// empty and grows by append; it is not preallocated to
// len(proj.Deps)+len(proj.BuildDeps).
//
// drivers must cover every source kind referenced by proj; New returns a
// gyroerr Error with ErrCodeUnknownSource otherwise.
func New(proj *project.Project, drivers []depgraph.Driver, lockfile string, opts Options) (*Engine, error) {
	opts = opts.WithDefaults()

	e := &Engine{
		opts:    opts,
		project: proj,
		drivers: make(map[string]depgraph.Driver, len(drivers)),
		table:   &depgraph.Table{},
		queue:   depgraph.NewQueue(),
		edges:   &depgraph.EdgeList{},
		paths:   depgraph.NewPathsMap(),
	}
	for _, d := range drivers {
		e.drivers[d.Name()] = d
		e.driverOrder = append(e.driverOrder, d.Name())
	}

	for _, dep := range proj.Deps {
		if err := e.seed(dep, depgraph.RootNormal); err != nil {
			return nil, err
		}
	}
	for _, dep := range proj.BuildDeps {
		if err := e.seed(dep, depgraph.RootBuild); err != nil {
			return nil, err
		}
	}

	if err := e.loadLockfile(lockfile); err != nil {
		return nil, err
	}
	e.lockfileText = lockfile
	return e, nil
}

func (e *Engine) seed(dep project.Dependency, kind depgraph.RootKind) error {
	tag := sourceTag(dep.Source.Kind)
	if _, ok := e.drivers[tag]; !ok {
		return gyroerr.New(gyroerr.ErrCodeUnknownSource, "dependency %q: no driver registered for source kind %q", dep.Alias, tag)
	}
	idx := e.table.Append(dep.Source)
	edge := depgraph.Edge{Parent: depgraph.RootParent(kind), To: idx, Alias: dep.Alias}
	e.queue.Append(tag, edge)
	return nil
}

// loadLockfile implements the Resolutions Store construction pass:
// line-oriented, LF-delimited, first token is the source tag. A driver
// error on one line is logged and the line is dropped; an unknown tag
// aborts the whole load with an explained error.
func (e *Engine) loadLockfile(text string) error {
	scanner := bufio.NewScanner(strings.NewReader(text))
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if line == "" {
			continue
		}
		tag, tail, _ := strings.Cut(line, " ")
		drv, ok := e.drivers[tag]
		if !ok {
			e.opts.Logger.Error("lockfile: unknown source tag, aborting load", "line", lineNo, "tag", tag)
			return gyroerr.Explained(gyroerr.New(gyroerr.ErrCodeInvalidLockLine, "lockfile line %d: unknown source tag %q", lineNo, tag))
		}
		if err := drv.DeserializeLockfileEntry(tail); err != nil {
			e.opts.Logger.Warn("lockfile: dropping malformed entry", "line", lineNo, "source", tag, "err", err)
			continue
		}
	}
	return scanner.Err()
}

// FetchResult summarizes one completed run, returned by [Engine.Fetch].
type FetchResult struct {
	RunID     string
	StartedAt time.Time
	EndedAt   time.Time
	Batches   int
	Edges     []depgraph.Edge

	// Outcomes tallies rows by source then outcome name ("replace_me",
	// "fill_resolution", "copy_deps", "new_entry", "err"), for
	// [pkg/historystore]'s per-run audit document.
	Outcomes map[string]map[string]int

	// CycleFree is true if the post-loop cycle check found no cycle.
	// Fetch returns the cycle error instead of a FetchResult when a
	// cycle is found, so this is always true on a successful return;
	// kept as an explicit field so callers recording run history don't
	// need to infer it from the absence of an error.
	CycleFree bool
}

// Fetch runs the BFS engine driver loop to completion: while the active
// queue is non-empty, it runs one parallel fetch batch then reconciles
// it sequentially, then promotes the Next Buffer into the active queue.
// After the loop empties, it runs the cycle-detection pass and, unless
// Options.SkipGC, the cache GC pass.
func (e *Engine) Fetch(ctx context.Context) (*FetchResult, error) {
	runID := uuid.NewString()
	startedAt := time.Now()
	batch := 0
	outcomes := make(map[string]map[string]int)

	for !e.queue.Empty() {
		start := time.Now()
		next := depgraph.NewQueue()

		if err := e.runBatch(ctx, batch, next, outcomes); err != nil {
			return nil, err
		}

		e.opts.Metrics.ObserveBatch(batch, time.Since(start).Seconds())
		e.opts.Logger.Debug("batch complete", "run", runID, "batch", batch, "duration", time.Since(start))

		e.queue.ClearAndLoad(next, e.driverOrder)
		batch++
	}

	if cycleErr := e.checkCycles(); cycleErr != nil {
		e.opts.Logger.Error("dependency cycle detected", "run", runID, "err", cycleErr)
		return nil, cycleErr
	}

	if !e.opts.SkipGC {
		if err := e.gcCache(); err != nil {
			e.opts.Logger.Warn("cache GC failed", "run", runID, "err", err)
		}
	}

	return &FetchResult{
		RunID:     runID,
		StartedAt: startedAt,
		EndedAt:   time.Now(),
		Batches:   batch,
		Edges:     e.edges.All(),
		Outcomes:  outcomes,
		CycleFree: true,
	}, nil
}

// runBatch runs the parallel fetch phase then sequential reconciliation
// for one batch across every source, staging discovered children into
// next. The explained-error flag is sticky across the whole batch: a
// source reporting explained failures does not stop the remaining
// sources in driverOrder from being fetched and reconciled, so a caller
// sees every independent failure in the batch at once rather than just
// the first source's.
func (e *Engine) runBatch(ctx context.Context, batch int, next *depgraph.Queue, outcomes map[string]map[string]int) error {
	anyExplained := false
	for _, source := range e.driverOrder {
		rows := e.queue.Rows(source)
		if len(rows) == 0 {
			continue
		}
		drv := e.drivers[source]

		e.parallelFetch(ctx, drv, rows)

		tally := outcomes[source]
		if tally == nil {
			tally = make(map[string]int)
			outcomes[source] = tally
		}

		explained, newEntries, errored, err := e.reconcile(batch, source, drv, rows, next, tally)
		if err != nil {
			return err
		}
		if e.opts.OnBatchProgress != nil {
			e.opts.OnBatchProgress(BatchProgress{Batch: batch, Source: source, Total: len(rows), Errored: errored, NewEntries: newEntries})
		}
		if explained {
			anyExplained = true
		}
	}
	if anyExplained {
		return gyroerr.Explained(fmt.Errorf("batch %d: one or more sources reported explained failures", batch))
	}
	return nil
}

// parallelFetch spawns one goroutine per row, running the driver's
// worker body. Workers write only their own row; the WaitGroup join means
// observable state after this call is independent of completion order.
func (e *Engine) parallelFetch(ctx context.Context, drv depgraph.Driver, rows []depgraph.Row) {
	var wg sync.WaitGroup
	wg.Add(len(rows))
	for i := range rows {
		go func(row *depgraph.Row) {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					row.Result = depgraph.Result{Kind: depgraph.ResultErr, Err: fmt.Errorf("worker panic: %v", r)}
				}
			}()
			drv.Fetch(ctx, e.table, row)
		}(&rows[i])
	}
	wg.Wait()
}

// reconcile runs sequentially over rows in row-index order. It returns
// explained=true if any row's error was already communicated to the user
// (the sticky flag), in which case the caller raises an Explained error
// once the rest of this source's rows have been processed.
func (e *Engine) reconcile(batch int, source string, drv depgraph.Driver, rows []depgraph.Row, next *depgraph.Queue, tally map[string]int) (explained bool, newEntries, errored int, err error) {
	for i := range rows {
		row := &rows[i]
		e.edges.Append(row.Edge)

		if row.Result.Kind == depgraph.ResultErr {
			e.opts.Metrics.ObserveOutcome(source, "err")
			tally["err"]++
			errored++
			if row.Result.Explained {
				explained = true
				continue
			}
			return false, newEntries, errored, fmt.Errorf("source %q row %d: %w", source, i, row.Result.Err)
		}

		e.opts.Metrics.ObserveOutcome(source, outcomeName(row.Result.Kind))
		tally[outcomeName(row.Result.Kind)]++
		if row.Result.Kind == depgraph.ResultNewEntry {
			newEntries++
		}

		path, children := drv.UpdateResolution(row)
		if path != "" {
			e.paths.Insert(row.Edge.To, path)
		}
		for _, child := range children {
			childTag := sourceTag(child.Source.Kind)
			if _, ok := e.drivers[childTag]; !ok {
				return false, newEntries, errored, gyroerr.New(gyroerr.ErrCodeUnknownSource, "alias %q: no driver registered for source kind %q", child.Alias, childTag)
			}
			childIdx := e.table.Append(child.Source)
			next.Append(childTag, depgraph.Edge{Parent: depgraph.DepParent(row.Edge.To), To: childIdx, Alias: child.Alias})
		}
	}
	return explained, newEntries, errored, nil
}

func outcomeName(k depgraph.ResultKind) string {
	switch k {
	case depgraph.ResultReplaceMe:
		return "replace_me"
	case depgraph.ResultFillResolution:
		return "fill_resolution"
	case depgraph.ResultCopyDeps:
		return "copy_deps"
	case depgraph.ResultNewEntry:
		return "new_entry"
	default:
		return "unknown"
	}
}

// Table returns the engine's Dependency Table.
func (e *Engine) Table() *depgraph.Table { return e.table }

// Edges returns the engine's accumulated edge list.
func (e *Engine) Edges() *depgraph.EdgeList { return e.edges }

// Paths returns the engine's Paths Map.
func (e *Engine) Paths() *depgraph.PathsMap { return e.paths }

// Project returns the project this engine was constructed from.
func (e *Engine) Project() *project.Project { return e.project }

// Driver returns the driver registered under tag, if any.
func (e *Engine) Driver(tag string) (depgraph.Driver, bool) {
	d, ok := e.drivers[tag]
	return d, ok
}

// SetBatchProgress installs (or replaces) the Options.OnBatchProgress
// callback after construction, for callers (the fetch progress TUI) that
// need to attach their own sink once Fetch is already about to run on a
// background goroutine.
func (e *Engine) SetBatchProgress(fn func(BatchProgress)) { e.opts.OnBatchProgress = fn }

// Drivers returns the engine's driver map, for callers (pkg/lockfile's
// Emit) that need to iterate every registered source.
func (e *Engine) Drivers() map[string]depgraph.Driver { return e.drivers }

// DriverOrder returns the fixed driver order this engine was constructed
// with, matching the lockfile emitter's "for each source in fixed order"
// rule.
func (e *Engine) DriverOrder() []string { return e.driverOrder }

// LockfileText returns the raw lockfile text this engine was constructed
// from, for [pkg/lockfile.Diff] against a freshly emitted lockfile.
func (e *Engine) LockfileText() string { return e.lockfileText }

// Close tears the engine down: nothing beyond the Go garbage
// collector is required since this implementation holds no
// non-memory resources on Engine itself, but Close is kept as the
// symmetrical lifecycle bookend callers expect and as the place a future
// resource (an open cache handle, a history-store connection) would be
// released.
func (e *Engine) Close() error { return nil }
