package config

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
)

// Environment represents the application environment
type Environment string

const (
	Development Environment = "development"
	Staging     Environment = "staging"
	Production  Environment = "production"
)

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Provider defines the interface for configuration management
type Provider interface {
	// GetString retrieves a string configuration value
	GetString(ctx context.Context, key string) (string, error)
	// GetInt retrieves an integer configuration value
	GetInt(ctx context.Context, key string) (int, error)
	// GetBool retrieves a boolean configuration value
	GetBool(ctx context.Context, key string) (bool, error)
	// GetSecret retrieves a secret value
	GetSecret(ctx context.Context, key string) (string, error)
	// GetEnvironment returns the current environment
	GetEnvironment() Environment
}

func currentEnvironment() Environment {
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = string(Development)
	}
	return Environment(env)
}

// EnvProvider implements Provider using environment variables
type EnvProvider struct {
	prefix      string
	environment Environment
}

// NewEnvProvider creates a new environment-based configuration provider
func NewEnvProvider(prefix string) Provider {
	return &EnvProvider{
		prefix:      prefix,
		environment: currentEnvironment(),
	}
}

// GetEnvironment returns the current environment
func (p *EnvProvider) GetEnvironment() Environment {
	return p.environment
}

// GetString retrieves a string configuration value from environment variables
func (p *EnvProvider) GetString(ctx context.Context, key string) (string, error) {
	value := os.Getenv(p.prefix + key)
	if value == "" {
		return "", fmt.Errorf("environment variable %s%s not set", p.prefix, key)
	}
	return value, nil
}

// GetInt retrieves an integer configuration value from environment variables
func (p *EnvProvider) GetInt(ctx context.Context, key string) (int, error) {
	value, err := p.GetString(ctx, key)
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(value)
}

// GetBool retrieves a boolean configuration value from environment variables
func (p *EnvProvider) GetBool(ctx context.Context, key string) (bool, error) {
	value, err := p.GetString(ctx, key)
	if err != nil {
		return false, err
	}
	return strconv.ParseBool(value)
}

// GetSecret retrieves a secret value from environment variables
func (p *EnvProvider) GetSecret(ctx context.Context, key string) (string, error) {
	return p.GetString(ctx, key)
}

// SecretsManagerAPI is the subset of the Secrets Manager client used here
type SecretsManagerAPI interface {
	GetSecretValue(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error)
}

// AWSSecretsProvider implements Provider using AWS Secrets Manager
type AWSSecretsProvider struct {
	mu          sync.Mutex
	client      SecretsManagerAPI
	secretName  string
	cache       map[string]string
	lastFetch   time.Time
	environment Environment
}

// NewAWSSecretsProvider creates a new AWS Secrets Manager based configuration provider
func NewAWSSecretsProvider(secretName string) (Provider, error) {
	// Load AWS configuration
	cfg, err := config.LoadDefaultConfig(context.Background())
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return NewAWSSecretsProviderWithClient(secretsmanager.NewFromConfig(cfg), secretName), nil
}

// NewAWSSecretsProviderWithClient creates a provider backed by the given client
func NewAWSSecretsProviderWithClient(client SecretsManagerAPI, secretName string) *AWSSecretsProvider {
	return &AWSSecretsProvider{
		client:      client,
		secretName:  secretName,
		cache:       make(map[string]string),
		environment: currentEnvironment(),
	}
}

// GetEnvironment returns the current environment
func (p *AWSSecretsProvider) GetEnvironment() Environment {
	return p.environment
}

// Load fetches, parses and validates the secret. Later lookups are served
// from the cached copy.
func (p *AWSSecretsProvider) Load(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.load(ctx)
}

func (p *AWSSecretsProvider) load(ctx context.Context) error {
	if !p.lastFetch.IsZero() {
		return nil
	}

	// Fetch secret from AWS Secrets Manager
	secret, err := p.client.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(p.secretName),
	})
	if err != nil {
		return fmt.Errorf("failed to get secret: %w", err)
	}
	if secret.SecretString == nil {
		return fmt.Errorf("secret %s has no string value", p.secretName)
	}

	// Parse secret string as JSON
	var secretMap map[string]string
	if err := json.Unmarshal([]byte(*secret.SecretString), &secretMap); err != nil {
		return fmt.Errorf("failed to parse secret JSON: %w", err)
	}

	// Validate secret schema
	if err := validateSecretSchema(secretMap, p.environment); err != nil {
		return fmt.Errorf("invalid secret schema: %w", err)
	}

	// Update cache
	p.cache = secretMap
	p.lastFetch = time.Now()
	return nil
}

// GetString retrieves a string configuration value from AWS Secrets Manager
func (p *AWSSecretsProvider) GetString(ctx context.Context, key string) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.load(ctx); err != nil {
		return "", err
	}

	value, ok := p.cache[key]
	if !ok {
		return "", fmt.Errorf("secret key %s not found", key)
	}
	return value, nil
}

// GetInt retrieves an integer configuration value from AWS Secrets Manager
func (p *AWSSecretsProvider) GetInt(ctx context.Context, key string) (int, error) {
	value, err := p.GetString(ctx, key)
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(value)
}

// GetBool retrieves a boolean configuration value from AWS Secrets Manager
func (p *AWSSecretsProvider) GetBool(ctx context.Context, key string) (bool, error) {
	value, err := p.GetString(ctx, key)
	if err != nil {
		return false, err
	}
	return strconv.ParseBool(value)
}

// GetSecret retrieves a secret value from AWS Secrets Manager
func (p *AWSSecretsProvider) GetSecret(ctx context.Context, key string) (string, error) {
	return p.GetString(ctx, key)
}

// Defaults applied by GetAppConfig when a key is unset
const (
	DefaultAddr           = ":8080"
	DefaultStorageBackend = "map"
	DefaultCacheProvider  = "memory"
	DefaultCacheTTL       = 5 * time.Minute
	DefaultRedisPort      = 6379
	DefaultDynamoTable    = "TreeCache"
)

// AppConfig holds the service configuration
type AppConfig struct {
	Addr           string
	StorageBackend string
	CacheProvider  string
	CacheTTL       time.Duration
	RedisHost      string
	RedisPort      int
	RedisPassword  string
	DynamoTable    string
}

// RedisAddr returns the host:port address of the redis server
func (c *AppConfig) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.RedisHost, c.RedisPort)
}

var (
	validStorageBackends = map[string]bool{"map": true, "list": true}
	validCacheProviders  = map[string]bool{"memory": true, "redis": true, "dynamodb": true}
	tableNamePattern     = regexp.MustCompile(`^[a-zA-Z0-9_.-]{3,255}$`)
)

// Validate checks if the application configuration is valid
func (c *AppConfig) Validate(env Environment) error {
	if c.Addr == "" {
		return &ValidationError{Field: "Addr", Message: "address cannot be empty"}
	}

	if !validStorageBackends[c.StorageBackend] {
		return &ValidationError{Field: "StorageBackend", Message: "storage backend must be map or list"}
	}

	if !validCacheProviders[c.CacheProvider] {
		return &ValidationError{Field: "CacheProvider", Message: "cache provider must be memory, redis or dynamodb"}
	}

	if c.CacheTTL <= 0 {
		return &ValidationError{Field: "CacheTTL", Message: "cache TTL must be positive"}
	}

	switch c.CacheProvider {
	case "redis":
		if c.RedisHost == "" {
			return &ValidationError{Field: "RedisHost", Message: "host cannot be empty"}
		}
		if c.RedisPort <= 0 || c.RedisPort > 65535 {
			return &ValidationError{Field: "RedisPort", Message: "port must be between 1 and 65535"}
		}
		// Stricter validation for production
		if env == Production {
			if isLocalhost(c.RedisHost) {
				return &ValidationError{Field: "RedisHost", Message: "localhost is not allowed in production"}
			}
			if err := validatePassword("RedisPassword", c.RedisPassword); err != nil {
				return err
			}
		}
	case "dynamodb":
		if !tableNamePattern.MatchString(c.DynamoTable) {
			return &ValidationError{Field: "DynamoTable", Message: "table name must be 3-255 characters of letters, numbers, '_', '-' or '.'"}
		}
	}

	return nil
}

func isLocalhost(host string) bool {
	h := strings.ToLower(host)
	return h == "localhost" || h == "127.0.0.1" || h == "::1"
}

// validatePassword applies the production password rules
func validatePassword(field, password string) error {
	if len(password) < 12 {
		return &ValidationError{Field: field, Message: "password must be at least 12 characters long in production"}
	}
	if !regexp.MustCompile(`[A-Z]`).MatchString(password) {
		return &ValidationError{Field: field, Message: "password must contain at least one uppercase letter in production"}
	}
	if !regexp.MustCompile(`[a-z]`).MatchString(password) {
		return &ValidationError{Field: field, Message: "password must contain at least one lowercase letter in production"}
	}
	if !regexp.MustCompile(`[0-9]`).MatchString(password) {
		return &ValidationError{Field: field, Message: "password must contain at least one number in production"}
	}
	if !regexp.MustCompile(`[^A-Za-z0-9]`).MatchString(password) {
		return &ValidationError{Field: field, Message: "password must contain at least one special character in production"}
	}
	return nil
}

// validateSecretSchema validates the structure of secrets stored in AWS Secrets Manager
func validateSecretSchema(secrets map[string]string, env Environment) error {
	if _, ok := secrets["CACHE_PROVIDER"]; !ok {
		return &ValidationError{
			Field:   "CACHE_PROVIDER",
			Message: "required secret key not found",
		}
	}

	if ttl, ok := secrets["CACHE_TTL"]; ok {
		if _, err := strconv.Atoi(ttl); err != nil {
			return &ValidationError{
				Field:   "CACHE_TTL",
				Message: "TTL must be a valid number of seconds",
			}
		}
	}

	if secrets["CACHE_PROVIDER"] != "redis" {
		return nil
	}

	for _, key := range []string{"REDIS_HOST", "REDIS_PORT"} {
		if _, ok := secrets[key]; !ok {
			return &ValidationError{
				Field:   key,
				Message: "required secret key not found",
			}
		}
	}

	// Validate port is a number
	if _, err := strconv.Atoi(secrets["REDIS_PORT"]); err != nil {
		return &ValidationError{
			Field:   "REDIS_PORT",
			Message: "port must be a valid number",
		}
	}

	// Stricter validation for production
	if env == Production {
		if isLocalhost(secrets["REDIS_HOST"]) {
			return &ValidationError{
				Field:   "REDIS_HOST",
				Message: "localhost is not allowed in production",
			}
		}
		if err := validatePassword("REDIS_PASSWORD", secrets["REDIS_PASSWORD"]); err != nil {
			return err
		}
	}

	return nil
}

func stringOr(ctx context.Context, provider Provider, key, fallback string) string {
	if v, err := provider.GetString(ctx, key); err == nil {
		return v
	}
	return fallback
}

// GetAppConfig retrieves the application configuration using the provided
// config provider. Unset keys take their defaults.
func GetAppConfig(ctx context.Context, provider Provider) (*AppConfig, error) {
	// Providers with a remote source surface fetch errors up front
	if l, ok := provider.(interface{ Load(context.Context) error }); ok {
		if err := l.Load(ctx); err != nil {
			return nil, fmt.Errorf("failed to load configuration: %w", err)
		}
	}

	cfg := &AppConfig{
		Addr:           stringOr(ctx, provider, "ADDR", DefaultAddr),
		StorageBackend: stringOr(ctx, provider, "STORAGE_BACKEND", DefaultStorageBackend),
		CacheProvider:  stringOr(ctx, provider, "CACHE_PROVIDER", DefaultCacheProvider),
		CacheTTL:       DefaultCacheTTL,
		RedisHost:      stringOr(ctx, provider, "REDIS_HOST", "localhost"),
		RedisPort:      DefaultRedisPort,
		DynamoTable:    stringOr(ctx, provider, "DYNAMO_TABLE", DefaultDynamoTable),
	}

	if _, err := provider.GetString(ctx, "CACHE_TTL"); err == nil {
		seconds, err := provider.GetInt(ctx, "CACHE_TTL")
		if err != nil {
			return nil, fmt.Errorf("failed to get CACHE_TTL: %w", err)
		}
		cfg.CacheTTL = time.Duration(seconds) * time.Second
	}

	if _, err := provider.GetString(ctx, "REDIS_PORT"); err == nil {
		port, err := provider.GetInt(ctx, "REDIS_PORT")
		if err != nil {
			return nil, fmt.Errorf("failed to get REDIS_PORT: %w", err)
		}
		cfg.RedisPort = port
	}

	if password, err := provider.GetSecret(ctx, "REDIS_PASSWORD"); err == nil {
		cfg.RedisPassword = password
	}

	// Validate configuration
	if err := cfg.Validate(provider.GetEnvironment()); err != nil {
		return nil, fmt.Errorf("invalid application configuration: %w", err)
	}

	return cfg, nil
}
