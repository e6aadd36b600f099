// internal/store/usage.go
package store

import (
	"context"
	"encoding/json"
	"time"

	"adgen-orchestrator/internal/api"
	"adgen-orchestrator/internal/common/database"
	"adgen-orchestrator/internal/common/logger"
)

const usageCacheKey = "adgen:usage"

// UsageFetcher is the slice of the API client the cache needs.
type UsageFetcher interface {
	Usage(ctx context.Context) (*api.Usage, error)
}

// CachedUsage serves the account's credit consumption from Redis with a short
// TTL so repeated checks (every submission gates on remaining credits) do not
// hammer the usage endpoint. A cache miss or decode failure falls through to
// the backend.
type CachedUsage struct {
	fetch  UsageFetcher
	redis  *database.RedisClient
	ttl    time.Duration
	logger logger.Logger
}

func NewCachedUsage(fetch UsageFetcher, redis *database.RedisClient, ttl time.Duration, log logger.Logger) *CachedUsage {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &CachedUsage{
		fetch:  fetch,
		redis:  redis,
		ttl:    ttl,
		logger: log.WithFields(map[string]interface{}{"component": "usage-cache"}),
	}
}

// Current returns the usage snapshot, from cache when fresh.
func (c *CachedUsage) Current(ctx context.Context) (*api.Usage, error) {
	if raw, err := c.redis.Get(ctx, usageCacheKey); err == nil {
		var usage api.Usage
		if json.Unmarshal([]byte(raw), &usage) == nil {
			return &usage, nil
		}
	}

	usage, err := c.fetch.Usage(ctx)
	if err != nil {
		return nil, err
	}

	if payload, err := json.Marshal(usage); err == nil {
		if err := c.redis.Set(ctx, usageCacheKey, payload, c.ttl); err != nil {
			c.logger.Warn("usage cache write failed", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}
	return usage, nil
}

// Invalidate drops the cached snapshot. Called after a submission changes the
// account's consumption.
func (c *CachedUsage) Invalidate(ctx context.Context) {
	_ = c.redis.Del(ctx, usageCacheKey)
}
