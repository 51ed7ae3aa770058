package cache

import (
	"sync"
	"time"

	"github.com/ammiranda/idtree/models"
)

// MemoryCache implements CacheProvider using in-memory storage
type MemoryCache struct {
	mu       sync.RWMutex
	data     map[string]*models.Node
	ttl      time.Duration
	expiries map[string]time.Time
}

// NewMemoryCache creates a new in-memory cache provider
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		ttl:      5 * time.Minute,
		data:     make(map[string]*models.Node),
		expiries: make(map[string]time.Time),
	}
}

// Initialize performs any necessary setup for the cache provider
func (c *MemoryCache) Initialize() error {
	return nil
}

// GetTree retrieves a snapshot from cache if available
func (c *MemoryCache) GetTree(rootID string) (*models.Node, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	key := cacheKey(rootID)
	expiry, exists := c.expiries[key]
	if !exists || time.Now().After(expiry) {
		return nil, false
	}

	if snapshot, ok := c.data[key]; ok {
		return snapshot, true
	}

	return nil, false
}

// SetTree stores a snapshot in cache
func (c *MemoryCache) SetTree(rootID string, snapshot *models.Node) {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := cacheKey(rootID)
	c.data[key] = snapshot
	c.expiries[key] = time.Now().Add(c.ttl)
}

// InvalidateCache removes all cached data
func (c *MemoryCache) InvalidateCache() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.data = make(map[string]*models.Node)
	c.expiries = make(map[string]time.Time)
}

// SetCacheTTL sets the cache time-to-live duration
func (c *MemoryCache) SetCacheTTL(ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.ttl = ttl
	// Update all existing expiries
	now := time.Now()
	for key := range c.data {
		c.expiries[key] = now.Add(ttl)
	}
}
