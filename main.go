package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tienda/internal/config"
	"tienda/internal/database"
	"tienda/internal/events"
	"tienda/internal/server"
	"tienda/internal/services"
	"tienda/pkg/logger"
	"tienda/pkg/rabbitmq"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}
	logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		log.Fatal().Err(err).Msg("server stopped with error")
	}
	log.Info().Msg("server gracefully stopped")
}

// run wires the application and serves until ctx is cancelled.
func run(ctx context.Context, cfg *config.Config) error {
	// --- Database ---
	db, err := database.Open(cfg.DB)
	if err != nil {
		return err
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}
	if err := database.Migrate(db); err != nil {
		return err
	}
	if err := database.SeedRoles(ctx, db); err != nil {
		return err
	}
	if err := database.SeedAdmin(ctx, db, cfg.Admin); err != nil {
		return err
	}

	// --- RabbitMQ (optional) ---
	var publisher services.ReceiptPublisher
	if cfg.RabbitMQ.Enabled {
		mqClient, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQ.URL})
		if err != nil {
			log.Warn().Err(err).Msg("RabbitMQ unavailable, receipt events disabled")
		} else {
			defer mqClient.Close()
			publisher = mqClient

			handler := events.NewReceiptHandler(cfg.Catalog.LowStockThreshold, nil)
			if err := mqClient.ConsumeReceiptEvents(handler.Handle); err != nil {
				log.Error().Err(err).Msg("failed to start receipt consumer")
			}
		}
	}

	// --- Redis cache (optional) ---
	rdb := newRedis(ctx, cfg.Redis)
	if rdb != nil {
		defer rdb.Close()
	}

	app := server.New(server.Deps{Config: cfg, DB: db, Publisher: publisher, Redis: rdb})

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", cfg.App.Port).Msg("starting server")
		errCh <- app.Listen(cfg.App.Port)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed to start: %w", err)
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down server")
	timeout := cfg.App.ShutdownTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return app.ShutdownWithContext(shutdownCtx)
}

// newRedis returns a connected client, or nil when caching is off or Redis is unreachable.
func newRedis(ctx context.Context, cfg config.RedisConfig) *redis.Client {
	if cfg.Addr == "" {
		return nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		log.Warn().Err(err).Str("addr", cfg.Addr).Msg("Redis unavailable, catalog cache disabled")
		_ = client.Close()
		return nil
	}
	return client
}
