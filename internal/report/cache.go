package report

import (
	"context"
	"encoding/json"
	"time"

	redisplatform "github.com/felipebelchiorpro/sistema-de-pontos/internal/platform/redis"
)

const summaryCacheKey = "report:summary"

// SummaryCache keeps the dashboard summary in Redis for a bounded TTL. The
// cache is best-effort: a nil client or any Redis failure degrades to a
// recompute, never to a request failure.
type SummaryCache struct {
	client *redisplatform.Client
	ttl    time.Duration
}

// NewSummaryCache builds a cache over the given client. A nil client yields
// a cache that always misses.
func NewSummaryCache(client *redisplatform.Client, ttl time.Duration) *SummaryCache {
	return &SummaryCache{client: client, ttl: ttl}
}

func (c *SummaryCache) Get(ctx context.Context) (*Summary, bool) {
	if c == nil || c.client == nil {
		return nil, false
	}
	raw, err := c.client.Get(ctx, summaryCacheKey).Bytes()
	if err != nil {
		return nil, false
	}
	var summary Summary
	if err := json.Unmarshal(raw, &summary); err != nil {
		return nil, false
	}
	return &summary, true
}

func (c *SummaryCache) Set(ctx context.Context, summary *Summary) {
	if c == nil || c.client == nil {
		return
	}
	raw, err := json.Marshal(summary)
	if err != nil {
		return
	}
	_ = c.client.Set(ctx, summaryCacheKey, raw, c.ttl).Err()
}

// Invalidate drops the cached summary; callers invoke it after a balance
// mutation so the dashboard never lags a write by more than a read.
func (c *SummaryCache) Invalidate(ctx context.Context) {
	if c == nil || c.client == nil {
		return
	}
	_ = c.client.Del(ctx, summaryCacheKey).Err()
}
