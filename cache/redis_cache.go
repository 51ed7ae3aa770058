package cache

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/ammiranda/idtree/models"

	"github.com/redis/go-redis/v9"
)

// redisHashKey holds every cached snapshot as one field per subtree root,
// so invalidation is a single DEL
const redisHashKey = "idtree:snapshots"

// RedisCache implements CacheProvider using Redis
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCache creates a new Redis cache provider
func NewRedisCache(addr, password string) *RedisCache {
	if addr == "" {
		addr = "localhost:6379"
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       0, // use default DB
	})

	return NewRedisCacheWithClient(client)
}

// NewRedisCacheWithClient creates a new Redis cache provider with a custom client
func NewRedisCacheWithClient(client *redis.Client) *RedisCache {
	return &RedisCache{
		client: client,
		ttl:    5 * time.Minute,
	}
}

// Initialize performs any necessary setup for the cache provider
func (c *RedisCache) Initialize() error {
	ctx := context.Background()
	_, err := c.client.Ping(ctx).Result()
	return err
}

// GetTree retrieves a snapshot from cache if available
func (c *RedisCache) GetTree(rootID string) (*models.Node, bool) {
	ctx := context.Background()
	data, err := c.client.HGet(ctx, redisHashKey, cacheKey(rootID)).Result()
	if err != nil {
		return nil, false
	}

	var snapshot models.Node
	if err := json.Unmarshal([]byte(data), &snapshot); err != nil {
		return nil, false
	}

	return &snapshot, true
}

// SetTree stores a snapshot in cache
func (c *RedisCache) SetTree(rootID string, snapshot *models.Node) {
	ctx := context.Background()
	data, err := json.Marshal(snapshot)
	if err != nil {
		return
	}

	_, err = c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, redisHashKey, cacheKey(rootID), data)
		pipe.Expire(ctx, redisHashKey, c.ttl)
		return nil
	})
	if err != nil {
		slog.Warn("failed to cache tree snapshot", "root", rootID, "err", err)
	}
}

// InvalidateCache removes all cached snapshots
func (c *RedisCache) InvalidateCache() {
	ctx := context.Background()
	if err := c.client.Del(ctx, redisHashKey).Err(); err != nil {
		slog.Warn("failed to invalidate redis cache", "err", err)
	}
}

// SetCacheTTL sets the cache time-to-live duration
func (c *RedisCache) SetCacheTTL(ttl time.Duration) {
	c.ttl = ttl
}

// Close closes the Redis connection
func (c *RedisCache) Close() error {
	return c.client.Close()
}
