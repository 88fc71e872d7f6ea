// Package server assembles the HTTP application from its dependencies.
package server

import (
	"context"
	"errors"
	"time"

	"tienda/internal/config"
	"tienda/internal/documents"
	"tienda/internal/handlers"
	"tienda/internal/metrics"
	"tienda/internal/middleware"
	"tienda/internal/repositories"
	"tienda/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

const (
	limiterCleanupInterval = time.Minute
	limiterMaxIdle         = 10 * time.Minute
)

// Deps are the external resources the application is built on.
type Deps struct {
	Config *config.Config
	DB     *gorm.DB
	// Publisher announces committed receipts; nil disables publishing.
	Publisher services.ReceiptPublisher
	// Redis backs the catalog response cache; nil disables caching.
	Redis *redis.Client
}

// errorHandler answers stray errors and recovered panics with the {"error": msg} body.
func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	msg := "internal server error"
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
		msg = fe.Message
	} else {
		log.Error().Err(err).Str("path", c.Path()).Msg("unhandled error")
	}
	return c.Status(code).JSON(fiber.Map{"error": msg})
}

// New builds the fiber application with every route under /api.
func New(deps Deps) *fiber.App {
	cfg := deps.Config

	productRepo := repositories.NewGORMProductRepository(deps.DB)
	categoryRepo := repositories.NewGORMCategoryRepository(deps.DB)
	userRepo := repositories.NewGORMUserRepository(deps.DB)
	receiptRepo := repositories.NewGORMReceiptRepository(deps.DB)
	reportRepo := repositories.NewGORMReportRepository(deps.DB)
	checkoutTx := repositories.NewGORMCheckoutTx(deps.DB)

	authService := services.NewAuthService(userRepo, cfg.JWT.Secret, cfg.JWT.TTL)
	catalogService := services.NewCatalogService(productRepo, categoryRepo, cfg.Catalog.LowStockThreshold)
	productService := services.NewProductService(productRepo, categoryRepo)
	categoryService := services.NewCategoryService(categoryRepo)
	userService := services.NewUserService(userRepo, receiptRepo)
	receiptService := services.NewReceiptService(receiptRepo, documents.NewReceiptPDF("Tienda"))
	reportService := services.NewReportService(reportRepo)
	checkoutService := services.NewCheckoutService(productRepo, checkoutTx, deps.Publisher)

	guards := handlers.NewGuards(authService)
	cache := middleware.NewCache(deps.Redis, cfg.Redis.TTL)
	loginLimiter := middleware.NewRateLimiter(cfg.RateLimit.LoginPerMinute, cfg.RateLimit.LoginBurst)

	app := fiber.New(fiber.Config{
		AppName:               "tienda",
		ErrorHandler:          errorHandler,
		DisableStartupMessage: true,
	})
	cleanupCtx, stopCleanup := context.WithCancel(context.Background())
	loginLimiter.StartCleanup(cleanupCtx, limiterCleanupInterval, limiterMaxIdle)
	app.Hooks().OnShutdown(func() error {
		stopCleanup()
		return nil
	})

	app.Use(recover.New())
	app.Use(middleware.RequestLogger())
	app.Use(middleware.Metrics())

	api := app.Group("/api")
	api.Get("/health", func(c *fiber.Ctx) error {
		status := "healthy"
		if sqlDB, err := deps.DB.DB(); err != nil || sqlDB.PingContext(c.UserContext()) != nil {
			status = "degraded"
		}
		return c.JSON(fiber.Map{
			"status":   status,
			"time":     time.Now().UTC().Format(time.RFC3339),
			"rabbitmq": deps.Publisher != nil,
			"cache":    cache.Enabled(),
		})
	})
	api.Get("/metrics", adaptor.HTTPHandler(metrics.Handler()))

	handlers.NewAuthHandler(authService, loginLimiter.Handler()).RegisterRoutes(api)
	handlers.NewProductHandler(catalogService, productService, cache, guards).RegisterRoutes(api)
	handlers.NewCategoryHandler(catalogService, categoryService, cache, guards).RegisterRoutes(api)
	handlers.NewCheckoutHandler(checkoutService, cache, guards).RegisterRoutes(api)
	handlers.NewUserHandler(userService, guards).RegisterRoutes(api)
	handlers.NewReceiptHandler(receiptService, guards).RegisterRoutes(api)
	handlers.NewReportHandler(reportService, guards).RegisterRoutes(api)

	return app
}
