// Package httputil provides the shared HTTP client used by source drivers
// (pkg/depgraph/sources/*) that talk to package registries or download
// archives: a [Client] wrapping caching (via pkg/cache) and retry with
// exponential backoff around transient network failures.
//
// Usage:
//
//	c := httputil.NewClient(cache.NewNullCache(), nil)
//	var info ModuleInfo
//	err := c.Cached(ctx, "goproxy:github.com/spf13/cobra", false, &info, func() error {
//	    return c.Get(ctx, url, &info)
//	})
package httputil
