package audit

import (
	"context"
	"sync"
	"time"

	"github.com/wonny/riskdesk/pkg/redis"
)

// ReportCache keeps the latest report in memory and, when Redis is enabled,
// shares it with other processes serving the API.
type ReportCache struct {
	mu     sync.RWMutex
	latest *Report
	remote *redis.Cache
	ttl    time.Duration
}

// NewReportCache creates a cache; remote may be nil
func NewReportCache(remote *redis.Cache, ttl time.Duration) *ReportCache {
	return &ReportCache{remote: remote, ttl: ttl}
}

// Store replaces the latest report
func (c *ReportCache) Store(ctx context.Context, r *Report) error {
	c.mu.Lock()
	c.latest = r
	c.mu.Unlock()

	if c.remote == nil {
		return nil
	}
	if err := c.remote.Set(ctx, redis.KeyLatestReport, r, c.ttl); err != nil {
		return err
	}
	return c.remote.Set(ctx, redis.KeyRiskScore, r.RiskScore, c.ttl)
}

// Latest returns the newest report, local first then Redis
func (c *ReportCache) Latest(ctx context.Context) (*Report, bool) {
	c.mu.RLock()
	r := c.latest
	c.mu.RUnlock()
	if r != nil {
		return r, true
	}

	if c.remote == nil {
		return nil, false
	}
	var cached Report
	ok, err := c.remote.Get(ctx, redis.KeyLatestReport, &cached)
	if err != nil || !ok {
		return nil, false
	}
	return &cached, true
}

// Invalidate drops the cached report everywhere
func (c *ReportCache) Invalidate(ctx context.Context) error {
	c.mu.Lock()
	c.latest = nil
	c.mu.Unlock()

	if c.remote == nil {
		return nil
	}
	return c.remote.Delete(ctx, redis.KeyLatestReport)
}
