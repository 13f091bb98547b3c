package cache

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// Redis is a Cache backed by a Redis instance, for deployments that run
// more than one proxy process and want a shared elevation cache. Redis
// errors degrade to cache misses; the caller falls through to the
// provider or its fallback either way.
type Redis struct {
	rc     *redis.Client
	prefix string
	logger *zap.SugaredLogger
}

// NewRedis wraps an existing Redis client. prefix namespaces the keys.
func NewRedis(rc *redis.Client, prefix string, logger *zap.SugaredLogger) *Redis {
	return &Redis{rc: rc, prefix: prefix, logger: logger}
}

func (r *Redis) Get(ctx context.Context, key string) ([]byte, bool) {
	value, err := r.rc.Get(ctx, r.prefix+key).Bytes()
	if err != nil {
		if err != redis.Nil {
			r.logger.Warnw("redis get failed", "key", key, "error", err)
		}
		return nil, false
	}
	return value, true
}

func (r *Redis) Set(ctx context.Context, key string, value []byte, ttl time.Duration) {
	if err := r.rc.Set(ctx, r.prefix+key, value, ttl).Err(); err != nil {
		r.logger.Warnw("redis set failed", "key", key, "error", err)
	}
}
