package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/lmittmann/tint"

	httpHandlers "github.com/TheDhejavu/ratelimiter-go/internal/adapters/http/handlers"
	httpMiddleware "github.com/TheDhejavu/ratelimiter-go/internal/adapters/http/middleware"
	memorystorage "github.com/TheDhejavu/ratelimiter-go/internal/adapters/storage/memory"
	redisstorage "github.com/TheDhejavu/ratelimiter-go/internal/adapters/storage/redis"
	"github.com/TheDhejavu/ratelimiter-go/internal/config"
	"github.com/TheDhejavu/ratelimiter-go/internal/core/ports"
	"github.com/TheDhejavu/ratelimiter-go/internal/core/services"
)

func main() {
	initLogger()

	if err := run(); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

// run owns the server lifecycle so every deferred cleanup fires on any
// failure path before the process exits.
func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	storage, closeFn, err := initStorage(cfg.Storage, keyTTLFor(cfg.RateLimiter.Limits))
	if err != nil {
		return fmt.Errorf("failed to init storage: %w", err)
	}
	defer closeFn()

	registry := services.NewRegistry()
	for _, limit := range cfg.RateLimiter.Limits {
		if err := registry.Register(limit.Name, limit.MaxRequests, limit.Window); err != nil {
			return fmt.Errorf("failed to register limit %q: %w", limit.Name, err)
		}
	}

	limiter, err := services.NewSlidingWindowService(storage, registry)
	if err != nil {
		return fmt.Errorf("failed to create limiter: %w", err)
	}

	r := chi.NewRouter()
	r.Use(httpMiddleware.NewRateLimiterMiddleware(limiter, cfg.RateLimiter.HTTPLimitType))
	r.Get("/test", httpHandlers.TestHandler)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: r,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server listening", "port", cfg.Server.Port, "storage", cfg.Storage.Type, "http_limit", cfg.RateLimiter.HTTPLimitType)
		if err := srv.ListenAndServe(); err != nil {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		slog.Info("shutdown signal received")
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("graceful shutdown failed", "error", err)
	}
	return nil
}

// keyTTLFor sizes the Redis key TTL off the largest configured window.
// Twice the window keeps both the current and the previous bucket of any
// limit alive for as long as the engine can read them.
func keyTTLFor(limits []config.LimitDefinition) time.Duration {
	var largest time.Duration
	for _, limit := range limits {
		if limit.Window > largest {
			largest = limit.Window
		}
	}
	return 2 * largest
}

func initLogger() {
	handler := tint.NewHandler(os.Stdout, &tint.Options{
		Level:      slog.LevelInfo,
		TimeFormat: time.DateTime,
	})
	slog.SetDefault(slog.New(handler))
}

func initStorage(cfg config.StorageConfig, keyTTL time.Duration) (ports.CounterStore, func(), error) {
	switch cfg.Type {
	case "memory", "":
		return memorystorage.New(), func() {}, nil
	case "redis":
		redisCfg := redisstorage.Config{
			Addr:     fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			KeyTTL:   keyTTL,
		}
		storage, err := redisstorage.New(redisCfg)
		if err != nil {
			return nil, nil, err
		}
		return storage, func() {
			if err := storage.Close(); err != nil {
				slog.Error("failed to close redis storage", "error", err)
			}
		}, nil
	default:
		return nil, nil, fmt.Errorf("unsupported storage type: %s", cfg.Type)
	}
}
