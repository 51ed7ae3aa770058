// Package app wires configuration, cache and tree service together for the
// HTTP server and the Lambda entry point.
package app

import (
	"fmt"
	"log/slog"

	"github.com/ammiranda/idtree/cache"
	"github.com/ammiranda/idtree/config"
	"github.com/ammiranda/idtree/handlers"
	"github.com/ammiranda/idtree/service"
	"github.com/ammiranda/idtree/tree"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewService initializes the configured cache provider and returns a tree
// service over the configured storage backend
func NewService(cfg *config.AppConfig, logger *slog.Logger) (*service.TreeService, error) {
	err := cache.Initialize(cache.Provider(cfg.CacheProvider), cache.Options{
		TTL:           cfg.CacheTTL,
		RedisAddr:     cfg.RedisAddr(),
		RedisPassword: cfg.RedisPassword,
		DynamoTable:   cfg.DynamoTable,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize cache: %w", err)
	}

	logger.Info("tree service configured",
		"storage", cfg.StorageBackend,
		"cache", cfg.CacheProvider,
		"cache_ttl", cfg.CacheTTL,
	)
	svc, err := service.New(tree.NewStorage(tree.Backend(cfg.StorageBackend)), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create tree service: %w", err)
	}
	return svc, nil
}

// NewRouter builds the gin engine serving the tree API and metrics
func NewRouter(svc *service.TreeService) *gin.Engine {
	r := gin.Default()

	// API routes
	api := r.Group("/api")
	handlers.NewTreeHandler(svc).Register(api)

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	return r
}
