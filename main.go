package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"

	"tradelink/internal/config"
	"tradelink/internal/database"
	"tradelink/internal/handlers"
	"tradelink/internal/server"
	"tradelink/internal/storage"
	"tradelink/pkg/cache"
	"tradelink/pkg/logger"
	"tradelink/pkg/rabbitmq"
)

func main() {
	// --- Configuration ---
	cfg, err := config.Load()
	if err != nil {
		logger.New("info", os.Stderr, true).Fatal("failed to load configuration", map[string]interface{}{"error": err.Error()})
	}
	log := logger.New(cfg.LogLevel, os.Stdout, cfg.IsDevelopment())

	app, cleanup, err := newApp(context.Background(), cfg, log)
	if err != nil {
		log.Fatal("failed to initialize application", map[string]interface{}{"error": err.Error()})
	}
	defer cleanup()

	// --- Start HTTP Server ---
	log.Info("starting server", map[string]interface{}{"port": cfg.Server.Port, "env": cfg.AppEnv})

	// Graceful shutdown handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := app.Listen(cfg.Server.Port); err != nil {
			log.Fatal("server failed to start", map[string]interface{}{"error": err.Error()})
		}
	}()

	<-quit
	log.Info("shutting down server", nil)

	if err := app.Shutdown(); err != nil {
		log.Error("error during fiber shutdown", map[string]interface{}{"error": err.Error()})
	}
	log.Info("server gracefully stopped", nil)
}

// newApp opens every backing resource named by cfg and builds the HTTP app on top.
// Redis and RabbitMQ are optional. The returned cleanup releases whatever was opened.
func newApp(ctx context.Context, cfg *config.Config, log logger.Logger) (*fiber.App, func(), error) {
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	// --- Database ---
	db, err := database.Open(cfg.Database)
	if err != nil {
		return nil, cleanup, err
	}
	if sqlDB, err := db.DB(); err == nil {
		closers = append(closers, func() { _ = sqlDB.Close() })
	}
	if err := database.Migrate(db); err != nil {
		cleanup()
		return nil, func() {}, err
	}

	// --- Image store ---
	images, err := storage.NewDiskImageStore(cfg.Uploads.Dir)
	if err != nil {
		cleanup()
		return nil, func() {}, err
	}

	deps := server.Deps{DB: db, Images: images, Log: log}

	// --- Listing cache ---
	if cfg.Redis.Addr != "" {
		client, err := cache.NewRedisClient(ctx, cfg.Redis.Addr, cfg.Redis.Password)
		if err != nil {
			log.Warn("listing cache disabled", map[string]interface{}{"error": err.Error()})
		} else {
			closers = append(closers, func() { _ = client.Close() })
			deps.Cache = cache.NewRedisCache(client, "tradelink")
		}
	}

	// --- Listing events ---
	if cfg.RabbitMQ.URL != "" {
		mqClient, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQ.URL})
		if err != nil {
			log.Warn("listing events disabled", map[string]interface{}{"error": err.Error()})
		} else {
			closers = append(closers, func() { _ = mqClient.Close() })
			deps.Publisher = mqClient
			if err := mqClient.ConsumeListingEvents(handlers.ListingEventHandler(log)); err != nil {
				log.Warn("listing event consumer not started", map[string]interface{}{"error": err.Error()})
			}
		}
	}

	return server.New(cfg, deps), cleanup, nil
}
