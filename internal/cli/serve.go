package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/dom/musikkhylla/internal/api"
	"github.com/dom/musikkhylla/internal/config"
	"github.com/dom/musikkhylla/internal/logging"
	"github.com/dom/musikkhylla/internal/metrics"
	"github.com/dom/musikkhylla/internal/ratelimit"
	"github.com/dom/musikkhylla/internal/repository/postgres"
	"github.com/dom/musikkhylla/internal/service"
	"github.com/dom/musikkhylla/internal/websocket"
	"github.com/getsentry/sentry-go"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 30 * time.Second

func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	var port string

	cmd := &cobra.Command{
		Use:          "serve",
		Short:        "Run the HTTP API",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger := rootOpts.load()
			if port != "" {
				cfg.Port = port
			}
			return runServe(cmd.Context(), cfg, logger)
		},
	}

	cmd.Flags().StringVarP(&port, "port", "p", "", "listen port (overrides PORT)")

	return cmd
}

func runServe(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.InsecureSecret {
		logger.Warn("SECRET_KEY is not set, signing tokens with the development default")
	}

	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:         cfg.SentryDSN,
			Environment: cfg.Environment,
		}); err != nil {
			logger.Error("sentry init failed", "error", err)
		} else {
			defer sentry.Flush(2 * time.Second)
		}
	}

	// Initialize database
	db, err := postgres.NewConnection(cfg.DatabaseURL, logging.GormLevel(cfg.LogLevel))
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}
	if err := postgres.Migrate(ctx, db); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	repos := postgres.NewRepositories(db)
	m := metrics.New()

	deps := service.Deps{Metrics: m, Logger: logger}

	if cfg.RedisURL != "" {
		client, err := ratelimit.NewClient(ctx, cfg.RedisURL)
		if err != nil {
			logger.Warn("redis unavailable, code requests are not throttled", "error", err)
		} else {
			defer client.Close()
			deps.Limiter = ratelimit.NewRedisLimiter(client, cfg.CodeRequestLimit, cfg.CodeRequestWindow)
		}
	}

	// Initialize WebSocket hub
	hub := websocket.NewHub(logger)
	go hub.Run()
	defer hub.Stop()
	deps.Events = hub

	services := service.NewServices(repos, cfg, deps)
	services.Auth.StartCodeCleanup(ctx, cfg.CodeCleanupInterval)

	srv := &http.Server{
		Addr:         "0.0.0.0:" + cfg.Port,
		Handler:      api.NewRouter(services, hub, m, cfg),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("server starting", "port", cfg.Port, "environment", cfg.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("start server: %w", err)
		}
	case <-ctx.Done():
	}

	logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	logger.Info("server stopped")
	return nil
}
