package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/seanwallawalla-forks/gyro/pkg/cache"
)

func TestFileCacheRoundTrip(t *testing.T) {
	c, err := cache.NewFileCache(t.TempDir())
	require.NoError(t, err)

	ctx := context.Background()
	_, ok, err := c.Get(ctx, "missing")
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, c.Set(ctx, "k", []byte("v"), time.Hour))
	data, ok, err := c.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "v", string(data))

	require.NoError(t, c.Delete(ctx, "k"))
	_, ok, err = c.Get(ctx, "k")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestFileCacheExpiry(t *testing.T) {
	c, err := cache.NewFileCache(t.TempDir())
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, c.Set(ctx, "k", []byte("v"), time.Nanosecond))
	time.Sleep(time.Millisecond)

	_, ok, err := c.Get(ctx, "k")
	require.NoError(t, err)
	require.False(t, ok, "entry should have expired")
}

func TestNullCacheNeverHits(t *testing.T) {
	c := cache.NewNullCache()
	ctx := context.Background()
	require.NoError(t, c.Set(ctx, "k", []byte("v"), 0))

	_, ok, err := c.Get(ctx, "k")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestNamespaceIsolatesKeys(t *testing.T) {
	dir := t.TempDir()
	backend, err := cache.NewFileCache(dir)
	require.NoError(t, err)

	a := cache.Namespace(backend, "a")
	b := cache.Namespace(backend, "b")

	ctx := context.Background()
	require.NoError(t, a.Set(ctx, "x", []byte("from-a"), 0))

	_, ok, err := b.Get(ctx, "x")
	require.NoError(t, err)
	require.False(t, ok, "namespaces must not see each other's keys")

	data, ok, err := a.Get(ctx, "x")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "from-a", string(data))
}
