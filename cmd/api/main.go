package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"github.com/retailpilot/backend/internal/api"
	"github.com/retailpilot/backend/internal/circuitbreaker"
	"github.com/retailpilot/backend/internal/config"
	"github.com/retailpilot/backend/internal/infra"
	"github.com/retailpilot/backend/internal/ingest"
	"github.com/retailpilot/backend/internal/metrics"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("Failed to load .env", "error", err)
	}

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		slog.Error("Failed to load config", "path", configPath, "error", err)
		os.Exit(1)
	}
	if err := cfg.ApplyEnv(); err != nil {
		slog.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}

	setupLogging(cfg)

	ctx := context.Background()
	deps, cleanup, err := openStore(ctx, cfg)
	if err != nil {
		slog.Error("Failed to open upload store", "store", cfg.Upload.Store, "error", err)
		os.Exit(1)
	}
	defer cleanup()
	deps.Metrics = metrics.New()

	srv := api.NewServer(cfg, deps)
	defer srv.Close()

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      srv.Router(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Graceful shutdown on SIGTERM / Ctrl-C
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		slog.Info("Received shutdown signal, shutting down gracefully...")

		// demand streams are hijacked connections; Shutdown does not wait for them
		srv.Close()

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			slog.Error("Server shutdown error", "error", err)
		}
	}()

	slog.Info("RetailPilot API starting",
		"port", cfg.Server.Port,
		"env", cfg.Server.Env,
		"store", deps.StoreName,
	)
	slog.Info("Health check", "url", fmt.Sprintf("http://localhost:%s/health", cfg.Server.Port))

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("Server failed to start", "error", err)
		os.Exit(1)
	}

	slog.Info("Server stopped")
}

func setupLogging(cfg *config.Config) {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	var handler slog.Handler
	if cfg.IsProduction() {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		opts.Level = slog.LevelDebug
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))
}

// openStore builds the configured upload store. Remote stores sit behind a
// circuit breaker. A Redis that cannot be reached at startup falls back to
// memory; a Postgres that cannot be reached is fatal.
func openStore(ctx context.Context, cfg *config.Config) (api.Deps, func(), error) {
	noop := func() {}

	switch cfg.Upload.Store {
	case config.StoreRedis:
		adapter, err := infra.NewGoRedisAdapter(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			slog.Warn("Redis unavailable, falling back to in-memory upload store", "error", err)
			return api.Deps{Store: ingest.NewMemoryStore(), StoreName: config.StoreMemory}, noop, nil
		}
		return api.Deps{
			Store:     ingest.NewGuardedStore(ingest.NewRedisStore(adapter, cfg.Redis.KeyPrefix), circuitbreaker.DefaultConfig("redis-uploads")),
			StoreName: config.StoreRedis,
			StorePing: adapter.Ping,
		}, func() { adapter.Close() }, nil

	case config.StorePostgres:
		db, err := sql.Open("postgres", cfg.Database.URL)
		if err != nil {
			return api.Deps{}, noop, fmt.Errorf("open postgres: %w", err)
		}
		db.SetMaxOpenConns(10)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(30 * time.Minute)

		initCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		store, err := ingest.NewSQLStore(initCtx, db)
		if err != nil {
			db.Close()
			return api.Deps{}, noop, err
		}
		slog.Info("Postgres upload store ready")
		return api.Deps{
			Store:     ingest.NewGuardedStore(store, circuitbreaker.DefaultConfig("postgres-uploads")),
			StoreName: config.StorePostgres,
			StorePing: db.PingContext,
		}, func() { db.Close() }, nil

	default:
		return api.Deps{Store: ingest.NewMemoryStore(), StoreName: config.StoreMemory}, noop, nil
	}
}
