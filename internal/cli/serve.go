package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/mcoot/connectfour-go/internal/api"
	"github.com/mcoot/connectfour-go/internal/factory"
	pgstorage "github.com/mcoot/connectfour-go/internal/storage/postgres"
	redisstorage "github.com/mcoot/connectfour-go/internal/storage/redis"
	"github.com/mcoot/connectfour-go/internal/worker"
)

// ServeOptions configures the serve command
type ServeOptions struct {
	Host        string
	Port        int
	Workers     int
	StorageType string
	RedisURL    string
	DatabaseURL string
	LogLevel    string
}

// DefaultServeOptions reads defaults from the environment
func DefaultServeOptions() ServeOptions {
	return ServeOptions{
		Host:        os.Getenv("C4_HOST"),
		Port:        getEnvIntOrDefault("C4_PORT", api.DefaultServerConfig().Port),
		Workers:     getEnvIntOrDefault("C4_WORKERS", worker.DefaultSize),
		StorageType: getEnvOrDefault("STORAGE_TYPE", factory.StorageTypeMemory),
		RedisURL:    os.Getenv("REDIS_URL"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		LogLevel:    getEnvOrDefault("LOG_LEVEL", "info"),
	}
}

// FactoryConfig builds the application config for these options
func (o ServeOptions) FactoryConfig(logger *slog.Logger) (factory.Config, error) {
	fc := factory.Config{
		Logger:      logger,
		StorageType: o.StorageType,
		Workers:     o.Workers,
	}

	switch o.StorageType {
	case factory.StorageTypeRedis:
		if o.RedisURL == "" {
			return fc, errors.New("REDIS_URL (--redis-url) required when storage is redis")
		}
		redisCfg := redisstorage.DefaultConfig()
		redisCfg.URL = o.RedisURL
		fc.RedisConfig = &redisCfg
	case factory.StorageTypePostgres:
		if o.DatabaseURL == "" {
			return fc, errors.New("DATABASE_URL (--database-url) required when storage is postgres")
		}
		pgCfg := pgstorage.DefaultConfig()
		pgCfg.URL = o.DatabaseURL
		fc.PostgresConfig = &pgCfg
	}

	return fc, nil
}

func newServeCmd() *cobra.Command {
	opts := DefaultServeOptions()

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the matchmaking server",
		RunE: func(cmd *cobra.Command, args []string) error {
			level, err := parseLogLevel(opts.LogLevel)
			if err != nil {
				return err
			}
			logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
			slog.SetDefault(logger)

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			listener, err := net.Listen("tcp", fmt.Sprintf("%s:%d", opts.Host, opts.Port))
			if err != nil {
				return err
			}
			return Serve(ctx, opts, listener, logger)
		},
	}

	cmd.Flags().StringVar(&opts.Host, "host", opts.Host, "Listen host (env: C4_HOST)")
	cmd.Flags().IntVar(&opts.Port, "port", opts.Port, "Listen port (env: C4_PORT)")
	cmd.Flags().IntVar(&opts.Workers, "workers", opts.Workers, "Request worker pool size (env: C4_WORKERS)")
	cmd.Flags().StringVar(&opts.StorageType, "storage", opts.StorageType, "Archive storage: memory, redis, postgres (env: STORAGE_TYPE)")
	cmd.Flags().StringVar(&opts.RedisURL, "redis-url", opts.RedisURL, "Redis URL (env: REDIS_URL)")
	cmd.Flags().StringVar(&opts.DatabaseURL, "database-url", opts.DatabaseURL, "PostgreSQL URL (env: DATABASE_URL)")
	cmd.Flags().StringVar(&opts.LogLevel, "log-level", opts.LogLevel, "Log level: debug, info, warn, error (env: LOG_LEVEL)")

	return cmd
}

// Serve runs the server on listener until ctx ends, then disconnects every
// client and releases the app
func Serve(ctx context.Context, opts ServeOptions, listener net.Listener, logger *slog.Logger) error {
	fc, err := opts.FactoryConfig(logger)
	if err != nil {
		return err
	}

	app, err := factory.New(ctx, fc)
	if err != nil {
		return fmt.Errorf("failed to create application: %w", err)
	}

	serverConfig := api.DefaultServerConfig()
	server := api.NewServer(app.Router(), serverConfig, logger)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Serve(listener)
	}()

	var serveErr error
	select {
	case serveErr = <-errCh:
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), serverConfig.ShutdownTimeout)
	defer cancel()

	if serveErr == nil {
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown error", slog.String("error", err.Error()))
		}
	}

	start := time.Now()
	if err := app.Close(shutdownCtx); err != nil {
		logger.Error("failed to release application", slog.String("error", err.Error()))
	}
	logger.Info("server stopped", slog.Duration("drain", time.Since(start)))

	return serveErr
}
