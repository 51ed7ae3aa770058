package cache

import (
	"sync"
	"time"

	"github.com/ammiranda/idtree/models"
)

var (
	provider CacheProvider
	mu       sync.RWMutex
)

// Provider names a cache implementation
type Provider string

const (
	ProviderMemory   Provider = "memory"
	ProviderRedis    Provider = "redis"
	ProviderDynamoDB Provider = "dynamodb"
)

// CacheProvider defines the interface for cache implementations.
// It caches rendered tree snapshots keyed by the id of the subtree root.
type CacheProvider interface {
	// GetTree retrieves a snapshot from cache if available.
	// Parameters:
	//   - rootID: The id of the node the snapshot starts from
	// Returns:
	//   - The cached snapshot
	//   - A boolean indicating whether the snapshot was found in cache
	GetTree(rootID string) (*models.Node, bool)

	// SetTree stores a snapshot in cache.
	// Parameters:
	//   - rootID: The id of the node the snapshot starts from
	//   - snapshot: The snapshot to cache
	SetTree(rootID string, snapshot *models.Node)

	// InvalidateCache removes all cached data.
	// This is called whenever the tree structure or a payload changes.
	InvalidateCache()

	// SetCacheTTL sets the cache time-to-live duration.
	// Parameters:
	//   - ttl: The duration after which cached data should expire
	SetCacheTTL(ttl time.Duration)

	// Initialize performs any necessary setup for the cache provider.
	// This may include establishing connections, creating tables,
	// or any other initialization required for the cache to function.
	// Returns an error if initialization fails.
	Initialize() error
}

// cacheKey generates a cache key for the given subtree root
func cacheKey(rootID string) string {
	return "tree:" + rootID
}

// Initialize sets up the cache provider selected by name
func Initialize(name Provider, opts Options) error {
	var p CacheProvider
	switch name {
	case ProviderRedis:
		p = NewRedisCache(opts.RedisAddr, opts.RedisPassword)
	case ProviderDynamoDB:
		d, err := NewDynamoDBCache(opts.DynamoTable)
		if err != nil {
			return err
		}
		p = d
	default:
		p = NewMemoryCache()
	}
	if opts.TTL > 0 {
		p.SetCacheTTL(opts.TTL)
	}
	return SetProvider(p)
}

// Options configures Initialize
type Options struct {
	TTL           time.Duration
	RedisAddr     string
	RedisPassword string
	DynamoTable   string
}

// GetTree retrieves a snapshot from cache if available
func GetTree(rootID string) (*models.Node, bool) {
	mu.RLock()
	defer mu.RUnlock()
	if provider == nil {
		return nil, false
	}
	return provider.GetTree(rootID)
}

// SetTree stores a snapshot in cache
func SetTree(rootID string, snapshot *models.Node) {
	mu.Lock()
	defer mu.Unlock()
	if provider == nil {
		return
	}
	provider.SetTree(rootID, snapshot)
}

// InvalidateCache removes all cached data
func InvalidateCache() {
	mu.Lock()
	defer mu.Unlock()
	if provider == nil {
		return
	}
	provider.InvalidateCache()
}

// SetCacheTTL sets the cache time-to-live duration
func SetCacheTTL(ttl time.Duration) {
	mu.Lock()
	defer mu.Unlock()
	if provider == nil {
		return
	}
	provider.SetCacheTTL(ttl)
}

// SetProvider allows changing the cache provider at runtime
func SetProvider(p CacheProvider) error {
	mu.Lock()
	defer mu.Unlock()
	if err := p.Initialize(); err != nil {
		return err
	}
	provider = p
	return nil
}

// ResetProvider resets the cache provider for testing
func ResetProvider() {
	mu.Lock()
	defer mu.Unlock()
	provider = nil
}
