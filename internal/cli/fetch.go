package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/goccy/go-graphviz"
	"github.com/spf13/cobra"

	"github.com/seanwallawalla-forks/gyro/internal/debugserver"
	"github.com/seanwallawalla-forks/gyro/pkg/buildgraph"
	"github.com/seanwallawalla-forks/gyro/pkg/buildgraph/dot"
	"github.com/seanwallawalla-forks/gyro/pkg/cache"
	"github.com/seanwallawalla-forks/gyro/pkg/depgraph"
	"github.com/seanwallawalla-forks/gyro/pkg/depgraph/engine"
	"github.com/seanwallawalla-forks/gyro/pkg/depgraph/sources/gitsrc"
	"github.com/seanwallawalla-forks/gyro/pkg/depgraph/sources/localsrc"
	"github.com/seanwallawalla-forks/gyro/pkg/depgraph/sources/pkgsrc"
	"github.com/seanwallawalla-forks/gyro/pkg/depgraph/sources/urlsrc"
	"github.com/seanwallawalla-forks/gyro/pkg/historystore"
	"github.com/seanwallawalla-forks/gyro/pkg/httputil"
	"github.com/seanwallawalla-forks/gyro/pkg/lockfile"
	"github.com/seanwallawalla-forks/gyro/pkg/project"
)

// fetchCommand creates the "fetch" command: load the manifest and
// lockfile, run the resolve/fetch engine to completion, and write back
// the refreshed lockfile and generated build-graph source.
func (c *CLI) fetchCommand() *cobra.Command {
	var (
		manifestPath string
		lockfilePath string
		outPath      string
		registryURL  string
		noCache      string
		redisAddr    string
		showDiff     bool
		quiet        bool
		dotPath      string
		historyURI   string
		historyDB    string
		serveAddr    string
	)

	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Resolve and fetch this project's dependencies",
		RunE: func(cmd *cobra.Command, args []string) error {
			proj, err := project.Load(manifestPath)
			if err != nil {
				return fmt.Errorf("load manifest: %w", err)
			}

			oldLock, err := readLockfile(lockfilePath)
			if err != nil {
				return err
			}

			respCache := newFileCache(noCache == "none")
			if redisAddr != "" {
				rc, err := cache.NewRedisCache(redisAddr, 0)
				if err != nil {
					return fmt.Errorf("connect to redis cache: %w", err)
				}
				respCache = rc
			}

			dir, _ := cacheDir()
			drivers := []depgraph.Driver{
				pkgsrc.New(httputil.NewClient(respCache, nil), registryURL),
				localsrc.New("."),
				urlsrc.New(httputil.NewClient(respCache, nil), dir),
				gitsrc.New(dir),
			}

			useTUI := !quiet && isInteractive()

			var dbg *debugserver.Server
			if serveAddr != "" {
				dbg = debugserver.New()
				go func() {
					if err := dbg.ListenAndServe(serveAddr); err != nil {
						c.Logger.Error("debug server exited", "err", err)
					}
				}()
				printInfo("Serving debug status on %s", serveAddr)
			}

			opts := engine.Options{Logger: c.Logger, CacheDir: dir}
			if !useTUI && !quiet {
				opts.OnBatchProgress = func(p engine.BatchProgress) {
					c.Logger.Debug("batch progress", "batch", p.Batch, "source", p.Source, "total", p.Total, "new", p.NewEntries, "errored", p.Errored)
					printInline(".")
					if dbg != nil {
						dbg.MarkBatchComplete(p)
					}
				}
			} else if dbg != nil {
				opts.OnBatchProgress = dbg.MarkBatchComplete
			}

			eng, err := engine.New(proj, drivers, oldLock, opts)
			if err != nil {
				return err
			}
			defer eng.Close()

			var result *engine.FetchResult
			if useTUI {
				result, err = runFetchWithProgress(cmd.Context(), func(onProgress func(engine.BatchProgress)) (*engine.FetchResult, error) {
					eng.SetBatchProgress(func(p engine.BatchProgress) {
						onProgress(p)
						if dbg != nil {
							dbg.MarkBatchComplete(p)
						}
					})
					return eng.Fetch(cmd.Context())
				})
			} else {
				prog := newProgress(c.Logger)
				result, err = eng.Fetch(cmd.Context())
				if !quiet {
					printNewline()
				}
				if err == nil {
					prog.done(fmt.Sprintf("resolved %d edges across %d batches", len(result.Edges), result.Batches))
				}
			}
			if dbg != nil {
				dbg.SetLastRun(result, err)
			}
			if historyURI != "" {
				if herr := recordHistory(cmd.Context(), historyURI, historyDB, result); herr != nil {
					c.Logger.Warn("failed to record run history", "err", herr)
				}
			}
			if err != nil {
				return err
			}

			newLock, err := lockfile.Emit(eng.Drivers(), eng.DriverOrder())
			if err != nil {
				return fmt.Errorf("emit lockfile: %w", err)
			}
			if err := os.WriteFile(lockfilePath, []byte(newLock), 0o644); err != nil {
				return fmt.Errorf("write lockfile: %w", err)
			}

			if showDiff {
				diff, err := lockfile.Diff(lockfilePath, lockfilePath, oldLock, newLock)
				if err != nil {
					return fmt.Errorf("diff lockfile: %w", err)
				}
				if diff != "" {
					fmt.Print(diff)
				} else {
					printInfo("Lockfile unchanged")
				}
			}

			var out strings.Builder
			buildgraph.Lit(&out, result.Edges, eng.Paths())
			buildgraph.ExportsBlock(&out, proj, "src/root.zig", normalAliases(result.Edges))
			if err := os.WriteFile(outPath, []byte(out.String()), 0o644); err != nil {
				return fmt.Errorf("write build graph: %w", err)
			}

			if dotPath != "" {
				f, err := os.Create(dotPath)
				if err != nil {
					return fmt.Errorf("create dot output: %w", err)
				}
				defer f.Close()
				if err := dot.Render(f, result.Edges, graphviz.XDOT); err != nil {
					return fmt.Errorf("render dot graph: %w", err)
				}
				printFile(dotPath)
			}

			printSuccess("Wrote lockfile and build graph")
			printFile(lockfilePath)
			printFile(outPath)
			return nil
		},
	}

	cmd.Flags().StringVar(&manifestPath, "manifest", defaultManifestName, "path to the project manifest")
	cmd.Flags().StringVar(&lockfilePath, "lockfile", defaultLockfileName, "path to the lockfile")
	cmd.Flags().StringVar(&outPath, "out", "deps.zig.zon.gen.zig", "path to write the generated build-graph source")
	cmd.Flags().StringVar(&registryURL, "registry", "https://registry.example.com", "base URL of the package registry")
	cmd.Flags().StringVar(&noCache, "cache", "file", "cache backend: file or none")
	cmd.Flags().StringVar(&redisAddr, "redis-cache", "", "Redis address for a shared registry response cache (overrides --cache)")
	cmd.Flags().BoolVar(&showDiff, "diff", false, "print a unified diff of the lockfile before/after")
	cmd.Flags().BoolVar(&quiet, "quiet", false, "suppress per-batch progress logging")
	cmd.Flags().StringVar(&dotPath, "dot", "", "also export the resolved graph as Graphviz dot to this path")
	cmd.Flags().StringVar(&historyURI, "history-uri", "", "MongoDB URI to record this run's summary to (disabled if empty)")
	cmd.Flags().StringVar(&historyDB, "history-db", "gyro", "MongoDB database name used with --history-uri")
	cmd.Flags().StringVar(&serveAddr, "serve", "", "also serve /healthz and /lastrun on this address while fetching (e.g. :8080)")

	return cmd
}

// recordHistory opens a short-lived historystore connection, appends one
// RunRecord for result, and disconnects. Used by "fetch --history-uri".
func recordHistory(ctx context.Context, uri, database string, result *engine.FetchResult) error {
	if result == nil {
		return nil
	}
	store, err := historystore.Open(ctx, uri, database)
	if err != nil {
		return fmt.Errorf("connect to history store: %w", err)
	}
	defer store.Close(ctx)

	if err := store.RecordRun(ctx, result); err != nil {
		return fmt.Errorf("record run: %w", err)
	}
	return nil
}

func readLockfile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read lockfile: %w", err)
	}
	return string(data), nil
}

func normalAliases(edges []depgraph.Edge) []string {
	var aliases []string
	for _, e := range edges {
		if e.Parent.IsRoot && e.Parent.Root == depgraph.RootNormal {
			aliases = append(aliases, e.Alias)
		}
	}
	return aliases
}
