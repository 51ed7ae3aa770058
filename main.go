package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/ammiranda/idtree/config"
	"github.com/ammiranda/idtree/internal/app"

	_ "github.com/joho/godotenv/autoload"
	_ "go.uber.org/automaxprocs"

	"github.com/carlmjohnson/versioninfo"
	"github.com/gin-gonic/gin"
	"github.com/urfave/cli/v2"
)

func main() {
	if err := run(os.Args); err != nil {
		slog.Error(err.Error())
		os.Exit(1)
	}
}

func run(args []string) error {

	cliApp := cli.App{
		Name:    "idtree",
		Usage:   "in-memory id-keyed tree service",
		Version: versioninfo.Short(),
	}

	cliApp.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:    "log-level",
			Usage:   "log verbosity level (eg: warn, info, debug)",
			Value:   "info",
			EnvVars: []string{"IDTREE_LOG_LEVEL", "LOG_LEVEL"},
		},
	}
	cliApp.Before = func(cctx *cli.Context) error {
		logger, err := configLogger(cctx.String("log-level"), os.Stdout)
		if err != nil {
			return err
		}
		slog.SetDefault(logger)
		return nil
	}
	cliApp.Commands = []*cli.Command{
		&cli.Command{
			Name:   "serve",
			Usage:  "run the HTTP tree API",
			Action: runServe,
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:    "config-source",
					Usage:   "where configuration is read from (env or aws)",
					Value:   "env",
					EnvVars: []string{"IDTREE_CONFIG_SOURCE"},
				},
				&cli.StringFlag{
					Name:    "env-prefix",
					Usage:   "prefix of configuration environment variables",
					Value:   "IDTREE_",
					EnvVars: []string{"IDTREE_ENV_PREFIX"},
				},
				&cli.StringFlag{
					Name:    "aws-secret-name",
					Usage:   "Secrets Manager secret holding configuration, when config-source is aws",
					EnvVars: []string{"AWS_SECRET_NAME"},
				},
				&cli.StringFlag{
					Name:  "addr",
					Usage: "listen address, overrides configuration",
				},
				&cli.DurationFlag{
					Name:  "shutdown-timeout",
					Usage: "time allowed for in-flight requests on shutdown",
					Value: 10 * time.Second,
				},
			},
		},
	}

	return cliApp.Run(args)
}

func configLogger(level string, w io.Writer) (*slog.Logger, error) {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "error":
		lvl = slog.LevelError
	case "warn", "warning":
		lvl = slog.LevelWarn
	case "info":
		lvl = slog.LevelInfo
	case "debug":
		lvl = slog.LevelDebug
	default:
		return nil, fmt.Errorf("unknown log level: %s", level)
	}
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: lvl})), nil
}

func loadProvider(cctx *cli.Context) (config.Provider, error) {
	switch cctx.String("config-source") {
	case "env":
		return config.NewEnvProvider(cctx.String("env-prefix")), nil
	case "aws":
		return config.NewAWSConfigProvider(cctx.String("aws-secret-name"))
	default:
		return nil, fmt.Errorf("unknown config source: %s", cctx.String("config-source"))
	}
}

func runServe(cctx *cli.Context) error {
	ctx, stop := signal.NotifyContext(cctx.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := slog.Default().With("system", "idtree")

	provider, err := loadProvider(cctx)
	if err != nil {
		return err
	}
	if provider.GetEnvironment() == config.Production {
		gin.SetMode(gin.ReleaseMode)
	}

	cfg, err := config.GetAppConfig(ctx, provider)
	if err != nil {
		return err
	}
	if addr := cctx.String("addr"); addr != "" {
		cfg.Addr = addr
	}

	svc, err := app.NewService(cfg, logger)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:    cfg.Addr,
		Handler: app.NewRouter(svc),
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting server", "addr", cfg.Addr, "version", versioninfo.Short())
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cctx.Duration("shutdown-timeout"))
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
