package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-sla/internal/domain"
)

const activeRulesKey = "sla:rules:active"

// RuleCache keeps the active-rule evaluation snapshot in Redis so the
// matcher does not hit Postgres on every ticket event. The snapshot
// preserves the repository's (priority, created_at) ordering. All
// operations degrade to a miss when Redis is unavailable; correctness
// never depends on the cache.
type RuleCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewRuleCache builds the cache. A nil client yields a cache that always
// misses.
func NewRuleCache(client *redis.Client, ttl time.Duration, logger *zap.Logger) *RuleCache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RuleCache{client: client, ttl: ttl, logger: logger}
}

// GetActive returns the cached snapshot and whether it was present.
func (c *RuleCache) GetActive(ctx context.Context) ([]domain.SlaRule, bool) {
	if c == nil || c.client == nil {
		return nil, false
	}
	raw, err := c.client.Get(ctx, activeRulesKey).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.Debug("rule cache read failed", zap.Error(err))
		}
		return nil, false
	}
	var rules []domain.SlaRule
	if err := json.Unmarshal(raw, &rules); err != nil {
		c.logger.Warn("rule cache entry corrupt; dropping", zap.Error(err))
		c.Invalidate(ctx)
		return nil, false
	}
	return rules, true
}

// SetActive stores the snapshot with the configured TTL.
func (c *RuleCache) SetActive(ctx context.Context, rules []domain.SlaRule) {
	if c == nil || c.client == nil {
		return
	}
	raw, err := json.Marshal(rules)
	if err != nil {
		c.logger.Warn("rule cache marshal failed", zap.Error(err))
		return
	}
	if err := c.client.Set(ctx, activeRulesKey, raw, c.ttl).Err(); err != nil {
		c.logger.Debug("rule cache write failed", zap.Error(err))
	}
}

// Invalidate drops the snapshot; rule writes call this so matching picks
// up configuration changes immediately.
func (c *RuleCache) Invalidate(ctx context.Context) {
	if c == nil || c.client == nil {
		return
	}
	if err := c.client.Del(ctx, activeRulesKey).Err(); err != nil {
		c.logger.Debug("rule cache invalidate failed", zap.Error(err))
	}
}
