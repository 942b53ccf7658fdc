package registry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"aims/pkg/platform/sentinel"
)

// DefaultCacheTTL bounds how stale a cached registry record may get.
const DefaultCacheTTL = 24 * time.Hour

// Cache stores registry lookups. Implementations return sentinel.ErrNotFound
// on a miss.
type Cache interface {
	Get(ctx context.Context, ref string) (*OrgInfo, error)
	Set(ctx context.Context, info *OrgInfo) error
}

// RedisCache keeps registry records in Redis with a TTL.
type RedisCache struct {
	client *goredis.Client
	ttl    time.Duration
}

// NewRedisCache constructs a Redis-backed registry cache.
func NewRedisCache(client *goredis.Client, ttl time.Duration) *RedisCache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &RedisCache{client: client, ttl: ttl}
}

func cacheKey(ref string) string { return "registry:org:" + ref }

func (c *RedisCache) Get(ctx context.Context, ref string) (*OrgInfo, error) {
	raw, err := c.client.Get(ctx, cacheKey(ref)).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("get cached org %q: %w", ref, err)
	}
	var info OrgInfo
	if err := json.Unmarshal(raw, &info); err != nil {
		return nil, fmt.Errorf("decode cached org %q: %w", ref, err)
	}
	return &info, nil
}

func (c *RedisCache) Set(ctx context.Context, info *OrgInfo) error {
	raw, err := json.Marshal(info)
	if err != nil {
		return fmt.Errorf("encode org %q: %w", info.Ref, err)
	}
	if err := c.client.Set(ctx, cacheKey(info.Ref), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache org %q: %w", info.Ref, err)
	}
	return nil
}

// MemoryCache is an in-process cache for tests and single-node setups.
type MemoryCache struct {
	mu      sync.RWMutex
	ttl     time.Duration
	entries map[string]memoryEntry
}

type memoryEntry struct {
	info     OrgInfo
	storedAt time.Time
}

// NewMemoryCache constructs an in-memory registry cache.
func NewMemoryCache(ttl time.Duration) *MemoryCache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &MemoryCache{ttl: ttl, entries: make(map[string]memoryEntry)}
}

func (c *MemoryCache) Get(_ context.Context, ref string) (*OrgInfo, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.entries[ref]
	if !ok || time.Since(entry.storedAt) > c.ttl {
		return nil, sentinel.ErrNotFound
	}
	info := entry.info
	return &info, nil
}

func (c *MemoryCache) Set(_ context.Context, info *OrgInfo) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[info.Ref] = memoryEntry{info: *info, storedAt: time.Now()}
	return nil
}
