package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/openarcade/lobby/internal/admin"
	"github.com/openarcade/lobby/internal/factory"
	"github.com/openarcade/lobby/internal/server"
	redisstorage "github.com/openarcade/lobby/internal/storage/redis"
)

func main() {
	// .env is optional; real environments set variables directly
	_ = godotenv.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel(),
	}))
	slog.SetDefault(logger)

	cfg := factory.Config{
		BundleDir:   envOr("BUNDLE_DIR", "uploaded_games"),
		Logger:      logger,
		StorageType: os.Getenv("STORAGE_TYPE"),
		DataDir:     envOr("DATA_DIR", "data"),
	}

	if cfg.StorageType == factory.StorageTypeRedis {
		redisURL := os.Getenv("REDIS_URL")
		if redisURL == "" {
			logger.Error("REDIS_URL required when STORAGE_TYPE=redis")
			os.Exit(1)
		}
		redisCfg := redisstorage.DefaultConfig()
		redisCfg.URL = redisURL
		cfg.RedisConfig = &redisCfg
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	app, err := factory.New(ctx, cfg)
	if err != nil {
		logger.Error("failed to create application", slog.String("error", err.Error()))
		os.Exit(1)
	}

	lobbyCfg := server.DefaultConfig()
	lobbyCfg.Host = os.Getenv("LOBBY_HOST")
	if port := os.Getenv("LOBBY_PORT"); port != "" {
		p, err := strconv.Atoi(port)
		if err != nil {
			logger.Error("invalid LOBBY_PORT", slog.String("value", port))
			os.Exit(1)
		}
		lobbyCfg.Port = p
	}

	lobbyServer := server.New(app.ServerDeps(), lobbyCfg, logger)
	if err := lobbyServer.Listen(); err != nil {
		logger.Error("failed to bind lobby server", slog.String("error", err.Error()))
		os.Exit(1)
	}

	adminCfg := admin.DefaultServerConfig()
	if port := os.Getenv("ADMIN_PORT"); port != "" {
		p, err := strconv.Atoi(port)
		if err != nil {
			logger.Error("invalid ADMIN_PORT", slog.String("value", port))
			os.Exit(1)
		}
		adminCfg.Port = p
	}
	adminRouter := admin.NewRouter(admin.RouterConfig{
		Logger:   logger,
		Accounts: app.Accounts,
		Rooms:    app.Rooms,
		Catalog:  app.Catalog,
	})
	adminServer := admin.NewServer(adminRouter, adminCfg, logger)

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		logger.Info("shutdown signal received")
		cancel()
	}()

	errCh := make(chan error, 2)
	go func() {
		errCh <- lobbyServer.Serve(ctx)
	}()
	go func() {
		errCh <- adminServer.Start()
	}()

	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("server error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	case <-ctx.Done():
	}

	shutdownCtx := context.Background()
	if err := adminServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("admin shutdown error", slog.String("error", err.Error()))
	}
	if err := lobbyServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Info("server stopped")
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func logLevel() slog.Level {
	if os.Getenv("LOG_LEVEL") == "debug" {
		return slog.LevelDebug
	}
	return slog.LevelInfo
}
