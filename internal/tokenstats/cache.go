package tokenstats

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/morb-dev/morbsite/internal/logger"
)

// Cache keeps the last aggregated stats so the explorer is not hit on every
// dashboard load. Misses and errors both fall through to a fresh fetch.
type Cache interface {
	Get(ctx context.Context) (*Stats, bool)
	Set(ctx context.Context, stats *Stats)
}

type MemoryCache struct {
	mu        sync.Mutex
	stats     *Stats
	fetchedAt time.Time
	ttl       time.Duration
}

func NewMemoryCache(ttl time.Duration) *MemoryCache {
	return &MemoryCache{ttl: ttl}
}

func (c *MemoryCache) Get(_ context.Context) (*Stats, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stats == nil || time.Since(c.fetchedAt) > c.ttl {
		return nil, false
	}
	return c.stats, true
}

func (c *MemoryCache) Set(_ context.Context, stats *Stats) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stats = stats
	c.fetchedAt = time.Now()
}

const redisCacheKey = "tokenstats:latest"

// RedisCache shares the cached stats across instances.
type RedisCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisCache(rdb *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{rdb: rdb, ttl: ttl}
}

func (c *RedisCache) Get(ctx context.Context) (*Stats, bool) {
	payload, err := c.rdb.Get(ctx, redisCacheKey).Bytes()
	if err != nil {
		return nil, false
	}
	var stats Stats
	if err := json.Unmarshal(payload, &stats); err != nil {
		return nil, false
	}
	return &stats, true
}

func (c *RedisCache) Set(ctx context.Context, stats *Stats) {
	payload, err := json.Marshal(stats)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, redisCacheKey, payload, c.ttl).Err(); err != nil {
		logger.Log.Warn("failed to cache token stats",
			"component", "tokenstats", "error", err)
	}
}

// Service answers dashboard requests from cache, fetching on miss.
type Service struct {
	client *Client
	cache  Cache
}

func NewService(client *Client, cache Cache) *Service {
	return &Service{client: client, cache: cache}
}

func (s *Service) Get(ctx context.Context) (*Stats, error) {
	if stats, ok := s.cache.Get(ctx); ok {
		return stats, nil
	}

	stats, err := s.client.Fetch(ctx)
	if err != nil {
		return nil, err
	}
	s.cache.Set(ctx, stats)
	return stats, nil
}
