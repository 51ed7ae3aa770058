package config

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockSecretsClient struct {
	secret string
	err    error
	calls  int
}

func (m *mockSecretsClient) GetSecretValue(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return &secretsmanager.GetSecretValueOutput{
		Name:         params.SecretId,
		SecretString: aws.String(m.secret),
	}, nil
}

func TestEnvProvider(t *testing.T) {
	t.Setenv("APP_ENV", "staging")
	t.Setenv("IDTREE_NAME", "value")
	t.Setenv("IDTREE_COUNT", "42")
	t.Setenv("IDTREE_ENABLED", "true")

	p := NewEnvProvider("IDTREE_")
	ctx := context.Background()

	assert.Equal(t, Staging, p.GetEnvironment())

	v, err := p.GetString(ctx, "NAME")
	require.NoError(t, err)
	assert.Equal(t, "value", v)

	n, err := p.GetInt(ctx, "COUNT")
	require.NoError(t, err)
	assert.Equal(t, 42, n)

	b, err := p.GetBool(ctx, "ENABLED")
	require.NoError(t, err)
	assert.True(t, b)

	_, err = p.GetString(ctx, "MISSING")
	assert.Error(t, err)
}

func TestEnvProviderDefaultEnvironment(t *testing.T) {
	t.Setenv("APP_ENV", "")
	assert.Equal(t, Development, NewEnvProvider("").GetEnvironment())
}

func TestGetAppConfigDefaults(t *testing.T) {
	t.Setenv("APP_ENV", "")
	cfg, err := GetAppConfig(context.Background(), NewEnvProvider("IDTREE_TEST_UNSET_"))
	require.NoError(t, err)

	assert.Equal(t, DefaultAddr, cfg.Addr)
	assert.Equal(t, DefaultStorageBackend, cfg.StorageBackend)
	assert.Equal(t, DefaultCacheProvider, cfg.CacheProvider)
	assert.Equal(t, DefaultCacheTTL, cfg.CacheTTL)
	assert.Equal(t, DefaultDynamoTable, cfg.DynamoTable)
	assert.Equal(t, "localhost:6379", cfg.RedisAddr())
}

func TestGetAppConfigFromEnv(t *testing.T) {
	t.Setenv("APP_ENV", "")
	t.Setenv("IDTREE_ADDR", ":9090")
	t.Setenv("IDTREE_STORAGE_BACKEND", "list")
	t.Setenv("IDTREE_CACHE_PROVIDER", "redis")
	t.Setenv("IDTREE_CACHE_TTL", "30")
	t.Setenv("IDTREE_REDIS_HOST", "cache.internal")
	t.Setenv("IDTREE_REDIS_PORT", "6380")
	t.Setenv("IDTREE_REDIS_PASSWORD", "secret")

	cfg, err := GetAppConfig(context.Background(), NewEnvProvider("IDTREE_"))
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Addr)
	assert.Equal(t, "list", cfg.StorageBackend)
	assert.Equal(t, "redis", cfg.CacheProvider)
	assert.Equal(t, 30*time.Second, cfg.CacheTTL)
	assert.Equal(t, "cache.internal:6380", cfg.RedisAddr())
	assert.Equal(t, "secret", cfg.RedisPassword)
}

func TestGetAppConfigInvalid(t *testing.T) {
	testCases := []struct {
		name string
		env  map[string]string
	}{
		{name: "Bad TTL", env: map[string]string{"IDTREE_CACHE_TTL": "soon"}},
		{name: "Bad port", env: map[string]string{"IDTREE_REDIS_PORT": "port"}},
		{name: "Unknown backend", env: map[string]string{"IDTREE_STORAGE_BACKEND": "btree"}},
		{name: "Unknown cache", env: map[string]string{"IDTREE_CACHE_PROVIDER": "memcached"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv("APP_ENV", "")
			for k, v := range tc.env {
				t.Setenv(k, v)
			}
			_, err := GetAppConfig(context.Background(), NewEnvProvider("IDTREE_"))
			assert.Error(t, err)
		})
	}
}

func TestAppConfigValidate(t *testing.T) {
	valid := func() AppConfig {
		return AppConfig{
			Addr:           ":8080",
			StorageBackend: "map",
			CacheProvider:  "redis",
			CacheTTL:       time.Minute,
			RedisHost:      "cache.internal",
			RedisPort:      6379,
			RedisPassword:  "Str0ng!Password",
			DynamoTable:    "TreeCache",
		}
	}

	testCases := []struct {
		name   string
		modify func(c *AppConfig)
		env    Environment
		field  string
	}{
		{name: "Valid", modify: func(c *AppConfig) {}, env: Production},
		{name: "Empty addr", modify: func(c *AppConfig) { c.Addr = "" }, env: Development, field: "Addr"},
		{name: "Zero TTL", modify: func(c *AppConfig) { c.CacheTTL = 0 }, env: Development, field: "CacheTTL"},
		{name: "Empty redis host", modify: func(c *AppConfig) { c.RedisHost = "" }, env: Development, field: "RedisHost"},
		{name: "Port out of range", modify: func(c *AppConfig) { c.RedisPort = 70000 }, env: Development, field: "RedisPort"},
		{name: "Localhost in production", modify: func(c *AppConfig) { c.RedisHost = "localhost" }, env: Production, field: "RedisHost"},
		{name: "Localhost in development", modify: func(c *AppConfig) { c.RedisHost = "localhost" }, env: Development},
		{name: "Weak password in production", modify: func(c *AppConfig) { c.RedisPassword = "password" }, env: Production, field: "RedisPassword"},
		{name: "Bad table name", modify: func(c *AppConfig) { c.CacheProvider = "dynamodb"; c.DynamoTable = "x" }, env: Development, field: "DynamoTable"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := valid()
			tc.modify(&cfg)
			err := cfg.Validate(tc.env)
			if tc.field == "" {
				assert.NoError(t, err)
				return
			}
			var vErr *ValidationError
			require.True(t, errors.As(err, &vErr), "expected ValidationError, got %v", err)
			assert.Equal(t, tc.field, vErr.Field)
		})
	}
}

func TestAWSSecretsProvider(t *testing.T) {
	t.Setenv("APP_ENV", "")
	client := &mockSecretsClient{secret: `{"CACHE_PROVIDER":"dynamodb","DYNAMO_TABLE":"Trees","CACHE_TTL":"60"}`}
	p := NewAWSSecretsProviderWithClient(client, "idtree")
	ctx := context.Background()

	v, err := p.GetString(ctx, "DYNAMO_TABLE")
	require.NoError(t, err)
	assert.Equal(t, "Trees", v)

	ttl, err := p.GetInt(ctx, "CACHE_TTL")
	require.NoError(t, err)
	assert.Equal(t, 60, ttl)

	_, err = p.GetString(ctx, "MISSING")
	assert.Error(t, err)
	assert.Equal(t, 1, client.calls)

	cfg, err := GetAppConfig(ctx, &AWSConfigProvider{secretsProvider: p})
	require.NoError(t, err)
	assert.Equal(t, "dynamodb", cfg.CacheProvider)
	assert.Equal(t, "Trees", cfg.DynamoTable)
	assert.Equal(t, time.Minute, cfg.CacheTTL)
}

func TestAWSSecretsProviderErrors(t *testing.T) {
	testCases := []struct {
		name   string
		client *mockSecretsClient
		env    string
	}{
		{name: "Fetch failure", client: &mockSecretsClient{err: errors.New("boom")}},
		{name: "Malformed JSON", client: &mockSecretsClient{secret: "{"}},
		{name: "Missing cache provider", client: &mockSecretsClient{secret: `{}`}},
		{name: "Redis without host", client: &mockSecretsClient{secret: `{"CACHE_PROVIDER":"redis","REDIS_PORT":"6379"}`}},
		{name: "Redis bad port", client: &mockSecretsClient{secret: `{"CACHE_PROVIDER":"redis","REDIS_HOST":"h","REDIS_PORT":"x"}`}},
		{
			name:   "Redis localhost in production",
			client: &mockSecretsClient{secret: `{"CACHE_PROVIDER":"redis","REDIS_HOST":"localhost","REDIS_PORT":"6379","REDIS_PASSWORD":"Str0ng!Password"}`},
			env:    "production",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv("APP_ENV", tc.env)
			p := NewAWSSecretsProviderWithClient(tc.client, "idtree")
			_, err := GetAppConfig(context.Background(), p)
			assert.Error(t, err)
		})
	}
}
