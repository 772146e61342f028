package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisCache is a Cache backed by a shared Redis instance. It lets several
// CI runners or a fleet of `gyro fetch` invocations share one registry
// response cache instead of each cold-starting its own file cache.
//
// Grounded on the teacher's redis-backed session store (pkg/session/redis
// in the reference pack), adapted here to the simpler byte-blob Cache
// contract used by the source drivers instead of structured sessions.
type RedisCache struct {
	client *redis.Client
}

// NewRedisCache dials addr (host:port) and returns a Cache. db selects the
// Redis logical database; pass 0 for the default.
func NewRedisCache(addr string, db int) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{Addr: addr, DB: db})
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, err
	}
	return &RedisCache{client: client}, nil
}

func (r *RedisCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, err := r.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

func (r *RedisCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	return r.client.Set(ctx, key, data, ttl).Err()
}

func (r *RedisCache) Delete(ctx context.Context, key string) error {
	return r.client.Del(ctx, key).Err()
}

func (r *RedisCache) Close() error { return r.client.Close() }

var _ Cache = (*RedisCache)(nil)
