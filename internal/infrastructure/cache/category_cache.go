package cache

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/dentalshop/backend/internal/domain/catalog"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// DefaultCategoryTTL bounds how stale the category menu counts can get
const DefaultCategoryTTL = time.Minute

const categoryKey = "catalog:categories"

// CategoryCache memoizes per-category product counts.
// Concurrent misses share one database load. Redis errors degrade to a
// direct load rather than failing the request.
type CategoryCache struct {
	client redis.UniversalClient // nil selects the local copy
	ttl    time.Duration
	logger *zap.Logger
	group  singleflight.Group

	mu        sync.Mutex
	local     []catalog.CategoryCount
	expiresAt time.Time
	now       func() time.Time
}

// NewCategoryCache creates a category cache; client may be nil
func NewCategoryCache(client redis.UniversalClient, ttl time.Duration, logger *zap.Logger) *CategoryCache {
	if ttl <= 0 {
		ttl = DefaultCategoryTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CategoryCache{
		client: client,
		ttl:    ttl,
		logger: logger,
		now:    time.Now,
	}
}

// GetOrLoad returns cached counts or calls load and caches the result
func (c *CategoryCache) GetOrLoad(
	ctx context.Context,
	load func(context.Context) ([]catalog.CategoryCount, error),
) ([]catalog.CategoryCount, error) {
	if counts, ok := c.get(ctx); ok {
		return counts, nil
	}

	v, err, _ := c.group.Do(categoryKey, func() (interface{}, error) {
		counts, err := load(ctx)
		if err != nil {
			return nil, err
		}
		c.set(ctx, counts)
		return counts, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]catalog.CategoryCount), nil
}

// Invalidate drops the cached counts
func (c *CategoryCache) Invalidate(ctx context.Context) {
	if c.client != nil {
		if err := c.client.Del(ctx, categoryKey).Err(); err != nil {
			c.logger.Warn("Failed to invalidate category cache", zap.Error(err))
		}
		return
	}
	c.mu.Lock()
	c.local = nil
	c.expiresAt = time.Time{}
	c.mu.Unlock()
}

func (c *CategoryCache) get(ctx context.Context) ([]catalog.CategoryCount, bool) {
	if c.client == nil {
		c.mu.Lock()
		defer c.mu.Unlock()
		if c.local == nil || c.now().After(c.expiresAt) {
			return nil, false
		}
		return append([]catalog.CategoryCount(nil), c.local...), true
	}

	raw, err := c.client.Get(ctx, categoryKey).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn("Category cache read failed", zap.Error(err))
		}
		return nil, false
	}
	var counts []catalog.CategoryCount
	if err := json.Unmarshal(raw, &counts); err != nil {
		c.logger.Warn("Category cache entry corrupt", zap.Error(err))
		return nil, false
	}
	return counts, true
}

func (c *CategoryCache) set(ctx context.Context, counts []catalog.CategoryCount) {
	if c.client == nil {
		c.mu.Lock()
		c.local = append([]catalog.CategoryCount{}, counts...)
		c.expiresAt = c.now().Add(c.ttl)
		c.mu.Unlock()
		return
	}

	raw, err := json.Marshal(counts)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, categoryKey, raw, c.ttl).Err(); err != nil {
		c.logger.Warn("Category cache write failed", zap.Error(err))
	}
}
