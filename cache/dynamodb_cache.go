package cache

import (
	"context"
	"log/slog"
	"time"

	"github.com/ammiranda/idtree/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

const (
	defaultTableName = "TreeCache"
	itemKey          = "tree"
)

// DynamoDBAPI defines the interface for DynamoDB operations
type DynamoDBAPI interface {
	CreateTable(ctx context.Context, params *dynamodb.CreateTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.CreateTableOutput, error)
	DescribeTable(ctx context.Context, params *dynamodb.DescribeTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error)
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
}

// CacheItem is the single DynamoDB item holding every cached snapshot
type CacheItem struct {
	Key       string                  `dynamodbav:"key"`
	Data      map[string]*models.Node `dynamodbav:"data"`
	Timestamp int64                   `dynamodbav:"timestamp"`
	TTL       int64                   `dynamodbav:"ttl"`
}

// DynamoDBCache implements CacheProvider using DynamoDB
type DynamoDBCache struct {
	client    DynamoDBAPI
	tableName string
	cacheTTL  time.Duration
}

// NewDynamoDBCache creates a new DynamoDB cache provider
func NewDynamoDBCache(tableName string) (*DynamoDBCache, error) {
	cfg, err := config.LoadDefaultConfig(context.TODO())
	if err != nil {
		return nil, err
	}

	c := NewDynamoDBCacheWithClient(dynamodb.NewFromConfig(cfg))
	if tableName != "" {
		c.tableName = tableName
	}
	return c, nil
}

// NewDynamoDBCacheWithClient creates a new DynamoDB cache provider with a custom client
func NewDynamoDBCacheWithClient(client DynamoDBAPI) *DynamoDBCache {
	return &DynamoDBCache{
		client:    client,
		tableName: defaultTableName,
		cacheTTL:  5 * time.Minute,
	}
}

// Initialize creates the DynamoDB table if it doesn't exist
func (c *DynamoDBCache) Initialize() error {
	ctx := context.TODO()

	_, err := c.client.DescribeTable(ctx, &dynamodb.DescribeTableInput{
		TableName: aws.String(c.tableName),
	})
	if err == nil {
		return nil
	}

	_, err = c.client.CreateTable(ctx, &dynamodb.CreateTableInput{
		TableName: aws.String(c.tableName),
		AttributeDefinitions: []types.AttributeDefinition{
			{
				AttributeName: aws.String("key"),
				AttributeType: types.ScalarAttributeTypeS,
			},
		},
		KeySchema: []types.KeySchemaElement{
			{
				AttributeName: aws.String("key"),
				KeyType:       types.KeyTypeHash,
			},
		},
		BillingMode: types.BillingModePayPerRequest,
	})
	return err
}

func (c *DynamoDBCache) itemKey() map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"key": &types.AttributeValueMemberS{Value: itemKey},
	}
}

// load returns the live cache item, deleting it if it has expired
func (c *DynamoDBCache) load(ctx context.Context) (*CacheItem, bool) {
	result, err := c.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(c.tableName),
		Key:       c.itemKey(),
	})
	if err != nil || result.Item == nil {
		return nil, false
	}

	var item CacheItem
	if err := attributevalue.UnmarshalMap(result.Item, &item); err != nil {
		return nil, false
	}

	if time.Now().Unix() > item.TTL {
		if err := c.delete(ctx); err != nil {
			slog.Warn("failed to delete expired cache item", "err", err)
		}
		return nil, false
	}

	return &item, true
}

func (c *DynamoDBCache) delete(ctx context.Context) error {
	_, err := c.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(c.tableName),
		Key:       c.itemKey(),
	})
	return err
}

// GetTree retrieves a snapshot from the DynamoDB cache if available
func (c *DynamoDBCache) GetTree(rootID string) (*models.Node, bool) {
	item, ok := c.load(context.TODO())
	if !ok {
		return nil, false
	}
	snapshot, ok := item.Data[cacheKey(rootID)]
	return snapshot, ok && snapshot != nil
}

// SetTree stores a snapshot in the DynamoDB cache
func (c *DynamoDBCache) SetTree(rootID string, snapshot *models.Node) {
	ctx := context.TODO()
	now := time.Now()

	item, ok := c.load(ctx)
	if !ok {
		item = &CacheItem{
			Key:  itemKey,
			Data: make(map[string]*models.Node),
		}
	}
	item.Data[cacheKey(rootID)] = snapshot
	item.Timestamp = now.Unix()
	item.TTL = now.Add(c.cacheTTL).Unix()

	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		slog.Warn("failed to marshal cache item", "err", err)
		c.InvalidateCache()
		return
	}

	_, err = c.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(c.tableName),
		Item:      av,
	})
	if err != nil {
		slog.Warn("failed to put cache item", "err", err)
		c.InvalidateCache()
	}
}

// InvalidateCache removes every snapshot from the DynamoDB cache
func (c *DynamoDBCache) InvalidateCache() {
	if err := c.delete(context.Background()); err != nil {
		slog.Warn("failed to invalidate dynamodb cache", "err", err)
	}
}

// SetCacheTTL sets the cache time-to-live duration
func (c *DynamoDBCache) SetCacheTTL(ttl time.Duration) {
	c.cacheTTL = ttl
}
