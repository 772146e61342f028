package cache

import (
	"context"
	"time"
)

// namespaced wraps a Cache and prefixes every key, so several drivers
// (pkgsrc, urlsrc, ...) can share one underlying backend without key
// collisions. Grounded on the teacher's ScopedKeyer, adapted from a
// key-generator wrapper to a Cache wrapper since this package's Cache
// interface operates directly on keys rather than structured key builders.
type namespaced struct {
	inner  Cache
	prefix string
}

// Namespace returns a Cache that prefixes all keys with prefix+":".
// Closing the returned Cache closes the underlying one; callers that share
// one backend across several namespaces should Close the original instead.
func Namespace(inner Cache, prefix string) Cache {
	return &namespaced{inner: inner, prefix: prefix + ":"}
}

func (n *namespaced) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return n.inner.Get(ctx, n.prefix+key)
}

func (n *namespaced) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	return n.inner.Set(ctx, n.prefix+key, data, ttl)
}

func (n *namespaced) Delete(ctx context.Context, key string) error {
	return n.inner.Delete(ctx, n.prefix+key)
}

func (n *namespaced) Close() error { return n.inner.Close() }
