package cache

import (
	"context"
	"sync"
	"time"

	"crypto-price-tracker/internal/domain/model"
	"crypto-price-tracker/pkg/logger"
)

type entry struct {
	series   model.ChartSeries
	storedAt time.Time
}

type MemoryCache struct {
	cacheMap map[string]entry
	mutex    sync.RWMutex
	cacheTTL time.Duration
	now      func() time.Time
	log      *logger.Logger
}

func NewMemoryCache(cacheTTL time.Duration, log *logger.Logger) *MemoryCache {
	return &MemoryCache{
		cacheMap: make(map[string]entry),
		cacheTTL: cacheTTL,
		now:      time.Now,
		log:      log,
	}
}

func (c *MemoryCache) Get(ctx context.Context, key string) (model.ChartSeries, bool) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	cached, found := c.cacheMap[key]
	if found {
		if c.now().Sub(cached.storedAt) > c.cacheTTL {
			c.log.Debug("Cache entry expired", "key", key)
			return nil, false
		}
		c.log.Debug("Cache hit", "key", key)
		return cached.series.Clone(), true
	}

	c.log.Debug("Cache miss", "key", key)
	return nil, false
}

func (c *MemoryCache) Set(ctx context.Context, key string, series model.ChartSeries) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.cacheMap[key] = entry{series: series.Clone(), storedAt: c.now()}
	c.log.Debug("Cache set", "key", key, "points", len(series))

	return nil
}

func (c *MemoryCache) ClearExpired(ctx context.Context) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	now := c.now()
	expiredKeys := make([]string, 0)

	for key, cached := range c.cacheMap {
		if now.Sub(cached.storedAt) > c.cacheTTL {
			expiredKeys = append(expiredKeys, key)
		}
	}

	for _, key := range expiredKeys {
		delete(c.cacheMap, key)
		c.log.Debug("Removed expired cache entry", "key", key)
	}

	c.log.Info("Cleared expired cache entries", "count", len(expiredKeys))
	return nil
}
