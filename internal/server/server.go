// Package server assembles the HTTP application from configuration and its backing resources.
package server

import (
	"context"
	"time"

	"tradelink/internal/config"
	"tradelink/internal/handlers"
	"tradelink/internal/middleware"
	"tradelink/internal/repositories"
	"tradelink/internal/services"
	"tradelink/internal/storage"
	"tradelink/pkg/cache"
	"tradelink/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"
)

// Deps are the resources the application runs on.
// Cache and Publisher are optional.
type Deps struct {
	DB        *gorm.DB
	Images    storage.ImageStore
	Cache     cache.Cache
	Publisher services.EventPublisher
	Log       logger.Logger
}

// New wires repositories, services and handlers into a Fiber app.
func New(cfg *config.Config, deps Deps) *fiber.App {
	if deps.Cache == nil {
		deps.Cache = cache.Noop{}
	}

	// --- Repositories ---
	buyerRepo := repositories.NewGORMBuyerRepository(deps.DB)
	sellerRepo := repositories.NewGORMSellerRepository(deps.DB)
	listingRepo := repositories.NewGORMListingRepository(deps.DB)

	// --- Services ---
	tokenService := services.NewTokenService(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	authService := services.NewAuthService(buyerRepo, sellerRepo, tokenService, deps.Images, deps.Log)
	listingService := services.NewListingService(listingRepo, deps.Images, deps.Cache, cfg.Redis.TTL, deps.Publisher, deps.Log)
	sellerService := services.NewSellerService(sellerRepo, listingService, deps.Images, deps.Log)

	// --- Handlers ---
	gate := middleware.AuthRequired(authService)
	authHandler := handlers.NewAuthHandler(authService)
	buyerHandler := handlers.NewBuyerHandler(gate)
	sellerHandler := handlers.NewSellerHandler(authService, sellerService, gate)
	listingHandler := handlers.NewListingHandler(listingService, gate)

	app := fiber.New(fiber.Config{
		AppName:      "tradelink",
		BodyLimit:    cfg.Uploads.MaxBytes,
		ErrorHandler: middleware.ErrorHandler(deps.Log),
	})
	middleware.Setup(app, cfg)

	app.Static("/uploads", cfg.Uploads.Dir)
	app.Get("/health", healthHandler(deps))
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	api := app.Group("/api")
	authHandler.RegisterRoutes(api)
	buyerHandler.RegisterRoutes(api)
	sellerHandler.RegisterRoutes(api)
	listingHandler.RegisterRoutes(api)

	return app
}

// healthHandler reports 503 when the database is unreachable. A failing cache only degrades.
func healthHandler(deps Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()

		status, code := "healthy", fiber.StatusOK
		database := "up"
		if sqlDB, err := deps.DB.DB(); err != nil || sqlDB.PingContext(ctx) != nil {
			database = "down"
			status, code = "unhealthy", fiber.StatusServiceUnavailable
		}

		cacheStatus := "up"
		if _, ok := deps.Cache.(cache.Noop); ok {
			cacheStatus = "disabled"
		} else if err := deps.Cache.Ping(ctx); err != nil {
			cacheStatus = "down"
			if code == fiber.StatusOK {
				status = "degraded"
			}
		}

		return c.Status(code).JSON(fiber.Map{
			"status":   status,
			"time":     time.Now().Format(time.RFC3339),
			"database": database,
			"cache":    cacheStatus,
		})
	}
}
