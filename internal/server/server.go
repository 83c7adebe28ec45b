// Package server assembles the Fiber application from the storefront services.
package server

import (
	"time"

	"storefront/internal/handlers"
	"storefront/internal/middleware"
	"storefront/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

// Services are the business services exposed over HTTP.
type Services struct {
	Auth     *services.AuthService
	Products *services.ProductService
	Checkout *services.CheckoutService
	Orders   *services.OrderService
	Refunds  *services.RefundService
	Reports  *services.ReportService
	Settings *services.SettingsService
}

// Options tune the HTTP surface.
type Options struct {
	// BackfillToken guards the backfill endpoint. Empty disables it.
	BackfillToken string
	// RequestLog enables the access log middleware.
	RequestLog bool
}

// NewApp builds the Fiber app with every route registered.
func NewApp(svc Services, opts Options) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName: "storefront",
	})

	app.Use(recover.New())
	if opts.RequestLog {
		app.Use(logger.New())
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	apiV1 := app.Group("/api/v1")

	authHandler := handlers.NewAuthHandler(svc.Auth)
	productHandler := handlers.NewProductHandler(svc.Products)
	settingsHandler := handlers.NewSettingsHandler(svc.Settings)
	orderHandler := handlers.NewOrderHandler(svc.Orders, svc.Refunds)
	reportHandler := handlers.NewReportHandler(svc.Reports)

	// Public storefront routes
	authHandler.RegisterRoutes(apiV1)
	productHandler.RegisterRoutes(apiV1)
	settingsHandler.RegisterRoutes(apiV1)
	handlers.NewCheckoutHandler(svc.Checkout).RegisterRoutes(apiV1)
	handlers.NewWebhookHandler(svc.Orders).RegisterRoutes(apiV1)
	handlers.NewBackfillHandler(svc.Orders).RegisterRoutes(apiV1, middleware.AdminToken(opts.BackfillToken))

	// Admin routes (require JWT authentication)
	admin := apiV1.Group("/admin", middleware.AuthRequired(svc.Auth))
	authHandler.RegisterAdminRoutes(admin)
	productHandler.RegisterAdminRoutes(admin)
	settingsHandler.RegisterAdminRoutes(admin)
	orderHandler.RegisterRoutes(admin)
	reportHandler.RegisterRoutes(admin)

	return app
}
