package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/viper"
	"github.com/streadway/amqp"

	"storefront/internal/config"
	"storefront/internal/database"
	"storefront/internal/notify"
	"storefront/internal/repositories"
	"storefront/internal/server"
	"storefront/internal/services"
	"storefront/pkg/logging"
	"storefront/pkg/mailer"
	"storefront/pkg/payment"
	"storefront/pkg/rabbitmq"
)

func main() {
	slog.SetDefault(logging.New())

	// --- Configuration ---
	cfg := config.Load(viper.New())
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	// --- Database ---
	db, err := database.Open(cfg.DatabaseDriver, cfg.DatabaseDSN)
	if err != nil {
		slog.Error("failed to open database", "driver", cfg.DatabaseDriver, "error", err)
		os.Exit(1)
	}
	if err := database.Migrate(db); err != nil {
		slog.Error("failed to migrate database", "error", err)
		os.Exit(1)
	}

	// --- Repositories ---
	productRepo := repositories.NewGORMProductRepository(db)
	orderRepo := repositories.NewGORMOrderRepository(db)
	settingsRepo := repositories.NewGORMSettingsRepository(db)
	userRepo := repositories.NewGORMUserRepository(db)

	// --- Payment provider and notifications ---
	gateway := payment.NewStripeClient(cfg.StripeSecretKey, cfg.StripeWebhookSecret)
	mailNotifier := newMailNotifier(cfg)

	// Receipts go through the order queue when one is configured.
	var notifier services.Notifier = mailNotifier
	var mqClient *rabbitmq.Client
	if cfg.RabbitMQURL != "" {
		mqClient, err = rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL})
		if err != nil {
			slog.Error("failed to initialize RabbitMQ client", "error", err)
			os.Exit(1)
		}
		defer mqClient.Close()
		notifier = notify.NewQueueNotifier(mqClient)
	}

	// --- Services ---
	authService := services.NewAuthService(userRepo, cfg.JWTSecret)
	orderService := services.NewOrderService(orderRepo, gateway, notifier)
	svc := server.Services{
		Auth:     authService,
		Products: services.NewProductService(productRepo),
		Checkout: services.NewCheckoutService(productRepo, settingsRepo, gateway, cfg.Currency, cfg.SiteURL),
		Orders:   orderService,
		Refunds:  services.NewRefundService(orderRepo, gateway),
		Reports:  services.NewReportService(orderRepo, gateway),
		Settings: services.NewSettingsService(settingsRepo),
	}

	if err := authService.EnsureAdmin(context.Background(), cfg.AdminUsername, cfg.AdminEmail, cfg.AdminPassword); err != nil {
		slog.Error("failed to seed admin account", "error", err)
		os.Exit(1)
	}

	app := server.NewApp(svc, server.Options{
		BackfillToken: cfg.AdminBackfillToken,
		RequestLog:    true,
	})

	// --- Receipt consumer ---
	if mqClient != nil {
		err := mqClient.ConsumeOrderEvents(func(msg amqp.Delivery) error {
			return notify.HandleOrderEvent(context.Background(), mailNotifier, msg.Body)
		})
		if err != nil {
			slog.Error("failed to start RabbitMQ consumer", "error", err)
			os.Exit(1)
		}
		slog.Info("receipt consumer started", "queue", rabbitmq.OrderQueue)
	}

	// --- Start HTTP Server ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("starting server", "addr", cfg.AppPort)
		if err := app.Listen(cfg.AppPort); err != nil {
			slog.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	<-quit
	slog.Info("shutting down server")

	if err := app.Shutdown(); err != nil {
		slog.Error("error during Fiber shutdown", "error", err)
	}
	slog.Info("server gracefully stopped")
}

// newMailNotifier returns a receipt mailer; without an API key it sends nothing.
func newMailNotifier(cfg config.Config) *notify.MailNotifier {
	var m notify.Mailer
	if cfg.ResendAPIKey != "" {
		m = mailer.NewResendMailer(cfg.ResendAPIKey)
	} else {
		slog.Warn("RESEND_API_KEY not set, receipts are disabled")
	}
	return notify.NewMailNotifier(m, cfg.ResendFrom, cfg.StoreName, cfg.SiteURL)
}
