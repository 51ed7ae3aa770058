// Command lambda serves the tree API from AWS Lambda. Every container holds
// its own in-memory tree, so nodes do not survive a cold start and are not
// shared between concurrent containers.
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/ammiranda/idtree/config"
	"github.com/ammiranda/idtree/internal/app"
	"github.com/ammiranda/idtree/internal/lambda"

	awslambda "github.com/aws/aws-lambda-go/lambda"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// Initialize configuration
	var provider config.Provider = config.NewEnvProvider("IDTREE_")
	if os.Getenv("AWS_SECRET_NAME") != "" {
		p, err := config.NewAWSConfigProvider("")
		if err != nil {
			logger.Error("failed to create config provider", "err", err)
			os.Exit(1)
		}
		provider = p
	}

	cfg, err := config.GetAppConfig(context.Background(), provider)
	if err != nil {
		logger.Error("failed to load configuration", "err", err)
		os.Exit(1)
	}

	svc, err := app.NewService(cfg, logger)
	if err != nil {
		logger.Error("failed to create tree service", "err", err)
		os.Exit(1)
	}

	// Create handler with tree service
	handler := lambda.NewHandler(svc)

	// Start Lambda
	awslambda.Start(handler.Handle)
}
