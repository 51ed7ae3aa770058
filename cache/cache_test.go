package cache

import (
	"testing"
	"time"

	"github.com/ammiranda/idtree/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleTree() *models.Node {
	root := models.NewNode("root")
	root.AddChild(models.NewNode("child"))
	return root
}

func TestDynamoDBCache(t *testing.T) {
	mockClient := NewMockDynamoDBClient()
	dynamoCache := NewDynamoDBCacheWithClient(mockClient)
	assert.NoError(t, dynamoCache.Initialize())

	testCacheProvider(t, dynamoCache)
}

func TestDynamoDBCacheInitializeExistingTable(t *testing.T) {
	mockClient := NewMockDynamoDBClient()
	first := NewDynamoDBCacheWithClient(mockClient)
	require.NoError(t, first.Initialize())
	first.SetTree("root", sampleTree())

	// a second instance on the same table sees the same item
	second := NewDynamoDBCacheWithClient(mockClient)
	require.NoError(t, second.Initialize())
	cached, found := second.GetTree("root")
	assert.True(t, found)
	assert.Equal(t, "root", cached.ID)
}

func TestMemoryCache(t *testing.T) {
	memoryCache := NewMemoryCache()
	assert.NoError(t, memoryCache.Initialize())

	testCacheProvider(t, memoryCache)
}

func TestMockCache(t *testing.T) {
	mockCache := NewMockCache()
	assert.NoError(t, mockCache.Initialize())

	testCacheProvider(t, mockCache)

	getTree, setTree, invalidate, setTTL, init := mockCache.GetCallCounts()
	assert.Greater(t, getTree, 0, "GetTree should have been called")
	assert.Greater(t, setTree, 0, "SetTree should have been called")
	assert.Greater(t, invalidate, 0, "InvalidateCache should have been called")
	assert.Greater(t, setTTL, 0, "SetCacheTTL should have been called")
	assert.Equal(t, 1, init, "Initialize should have been called once")

	// Test failure mode
	mockCache.Reset()
	mockCache.SetShouldFail(true)
	assert.Error(t, mockCache.Initialize(), "Initialize should fail when ShouldFail is true")
	mockCache.SetTree("root", sampleTree())
	snapshot, found := mockCache.GetTree("root")
	assert.Nil(t, snapshot, "GetTree should return nil when ShouldFail is true")
	assert.False(t, found, "GetTree should return false when ShouldFail is true")

	// Test reset functionality
	mockCache.Reset()
	getTree, setTree, invalidate, setTTL, init = mockCache.GetCallCounts()
	assert.Equal(t, 0, getTree, "GetTree calls should be reset")
	assert.Equal(t, 0, setTree, "SetTree calls should be reset")
	assert.Equal(t, 0, invalidate, "InvalidateCache calls should be reset")
	assert.Equal(t, 0, setTTL, "SetCacheTTL calls should be reset")
	assert.Equal(t, 0, init, "Initialize calls should be reset")
	assert.False(t, mockCache.ShouldFail, "ShouldFail should be reset")
}

func testCacheProvider(t *testing.T, provider CacheProvider) {
	snapshot := sampleTree()

	// Test SetTree and GetTree
	provider.SetTree("root", snapshot)
	cached, found := provider.GetTree("root")
	require.True(t, found)
	assert.Equal(t, "root", cached.ID)
	assert.Equal(t, 2, cached.Count())

	// Snapshots are keyed by subtree root
	_, found = provider.GetTree("child")
	assert.False(t, found)
	provider.SetTree("child", snapshot.Children[0])
	cached, found = provider.GetTree("child")
	require.True(t, found)
	assert.Equal(t, "child", cached.ID)

	// Test cache invalidation
	provider.InvalidateCache()
	_, found = provider.GetTree("root")
	assert.False(t, found)
	_, found = provider.GetTree("child")
	assert.False(t, found)

	// Test cache expiration
	provider.SetCacheTTL(1 * time.Second)
	provider.SetTree("root", snapshot)
	time.Sleep(2 * time.Second)
	_, found = provider.GetTree("root")
	assert.False(t, found)
}

func TestProviderFacade(t *testing.T) {
	defer ResetProvider()

	// no provider configured: every call is a miss or a no-op
	ResetProvider()
	SetTree("root", sampleTree())
	_, found := GetTree("root")
	assert.False(t, found)
	InvalidateCache()

	mockCache := NewMockCache()
	require.NoError(t, SetProvider(mockCache))
	SetTree("root", sampleTree())
	cached, found := GetTree("root")
	require.True(t, found)
	assert.Equal(t, "root", cached.ID)

	InvalidateCache()
	_, found = GetTree("root")
	assert.False(t, found)

	getTree, setTree, invalidate, _, init := mockCache.GetCallCounts()
	assert.Equal(t, 2, getTree)
	assert.Equal(t, 1, setTree)
	assert.Equal(t, 1, invalidate)
	assert.Equal(t, 1, init)
}

func TestSetProviderFailure(t *testing.T) {
	defer ResetProvider()

	failing := NewMockCache()
	failing.SetShouldFail(true)
	assert.ErrorIs(t, SetProvider(failing), ErrCacheInitialization)
}

func TestInitializeMemory(t *testing.T) {
	defer ResetProvider()

	require.NoError(t, Initialize(ProviderMemory, Options{TTL: time.Minute}))
	SetTree("root", sampleTree())
	_, found := GetTree("root")
	assert.True(t, found)
}
