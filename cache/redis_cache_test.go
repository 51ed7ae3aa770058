package cache

import (
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRedis(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	server := miniredis.RunT(t)
	redisCache := NewRedisCache(server.Addr(), "")
	t.Cleanup(func() { redisCache.Close() })
	require.NoError(t, redisCache.Initialize())
	return redisCache, server
}

func TestRedisCache(t *testing.T) {
	redisCache, server := setupRedis(t)
	snapshot := sampleTree()

	redisCache.SetTree("root", snapshot)
	cached, found := redisCache.GetTree("root")
	require.True(t, found)
	assert.Equal(t, "root", cached.ID)
	assert.Equal(t, 2, cached.Count())

	// every snapshot is a field of one hash
	assert.True(t, server.Exists(redisHashKey))
	fields, err := server.HKeys(redisHashKey)
	require.NoError(t, err)
	assert.Equal(t, []string{cacheKey("root")}, fields)

	_, found = redisCache.GetTree("child")
	assert.False(t, found)
	redisCache.SetTree("child", snapshot.Children[0])
	cached, found = redisCache.GetTree("child")
	require.True(t, found)
	assert.Equal(t, "child", cached.ID)

	redisCache.InvalidateCache()
	assert.False(t, server.Exists(redisHashKey))
	_, found = redisCache.GetTree("root")
	assert.False(t, found)
	_, found = redisCache.GetTree("child")
	assert.False(t, found)
}

func TestRedisCacheExpiry(t *testing.T) {
	redisCache, server := setupRedis(t)

	redisCache.SetCacheTTL(time.Minute)
	redisCache.SetTree("root", sampleTree())
	assert.Equal(t, time.Minute, server.TTL(redisHashKey))

	server.FastForward(2 * time.Minute)
	_, found := redisCache.GetTree("root")
	assert.False(t, found)
}

func TestRedisCacheCorruptEntry(t *testing.T) {
	redisCache, server := setupRedis(t)

	server.HSet(redisHashKey, cacheKey("root"), "{not json")
	_, found := redisCache.GetTree("root")
	assert.False(t, found)
}

func TestRedisCacheUnavailable(t *testing.T) {
	server := miniredis.RunT(t)
	addr := server.Addr()
	server.Close()

	redisCache := NewRedisCacheWithClient(redis.NewClient(&redis.Options{
		Addr:        addr,
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	}))
	defer redisCache.Close()

	assert.Error(t, redisCache.Initialize())

	// failures degrade to cache misses
	redisCache.SetTree("root", sampleTree())
	_, found := redisCache.GetTree("root")
	assert.False(t, found)
	redisCache.InvalidateCache()
}
