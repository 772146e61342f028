// Package pkg provides the core libraries behind gyro, a dependency
// resolution and fetch engine for projects declared in a TOML manifest.
//
// # Overview
//
// A gyro run loads a project manifest and its previous lockfile, then
// drives a breadth-first resolve/fetch loop: each batch fetches every
// queued dependency in parallel (one goroutine per row per source),
// reconciles the results sequentially, and stages newly discovered
// children for the next batch. The loop ends when the queue empties; the
// engine then checks for cycles, garbage-collects unused cache entries,
// and returns the accumulated edge list for lockfile emission and
// build-graph code generation.
//
//	Manifest + lockfile
//	         ↓
//	  [depgraph/engine] (BFS resolve/fetch loop)
//	         ↓
//	  [lockfile] (emit refreshed lockfile)      [buildgraph] (emit build-graph source)
//
// # Main packages
//
// [project] - TOML manifest loader: declared dependencies, their source
// (pkg/local/url/git), and exported packages.
//
// [depgraph] - The data model the engine operates on: the Dependency
// Table, the Fetch Queue and its Next Buffer, the accumulated Edge List,
// and the Paths Map, plus the Driver capability contract every source
// kind implements.
//
// [depgraph/engine] - Lifecycle, the parallel fetch driver, the
// sequential reconciler, cycle detection, and cache garbage collection.
//
// [depgraph/sources] - Reference drivers: pkgsrc (registry packages),
// localsrc (filesystem paths), urlsrc (remote archives), gitsrc (pinned
// git commits).
//
// [lockfile] - Lockfile emission and unified diffing.
//
// [buildgraph] - Nested build-graph literal and exports-block emission.
//
// # Infrastructure
//
// [cache] - Pluggable response/content caching (file, Redis, null).
//
// [httputil] - Cached, retrying HTTP client used by the network-facing
// drivers.
//
// [gyroerr] - Structured errors with a stable code and an explained flag
// distinguishing failures already surfaced to the user from ones still
// needing a wrapper.
//
// [observability] - Prometheus metrics for batch duration, fetch
// outcomes, and cache GC.
package pkg
