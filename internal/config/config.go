package config

import (
	"errors"
	"strings"

	"github.com/spf13/viper"
)

// Config holds the service settings, read from the environment.
type Config struct {
	AppPort string

	DatabaseDriver string
	DatabaseDSN    string

	JWTSecret          string
	AdminUsername      string
	AdminEmail         string
	AdminPassword      string
	AdminBackfillToken string

	StripeSecretKey     string
	StripeWebhookSecret string
	Currency            string
	SiteURL             string

	StoreName    string
	ResendAPIKey string
	ResendFrom   string

	RabbitMQURL string
}

// ErrMissingJWTSecret is returned by Validate when JWT_SECRET is unset.
var ErrMissingJWTSecret = errors.New("JWT_SECRET must be set")

// Validate rejects configurations the service must not start with.
func (c Config) Validate() error {
	if strings.TrimSpace(c.JWTSecret) == "" {
		return ErrMissingJWTSecret
	}
	return nil
}

// SetDefaults registers the default value of every key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("APP_PORT", ":8080")
	v.SetDefault("DATABASE_DRIVER", "postgres")
	v.SetDefault("DATABASE_DSN", "host=127.0.0.1 user=postgres password=postgres dbname=storefront port=5432 sslmode=disable")
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("ADMIN_USERNAME", "admin")
	v.SetDefault("ADMIN_EMAIL", "admin@example.com")
	v.SetDefault("ADMIN_PASSWORD", "")
	v.SetDefault("ADMIN_BACKFILL_TOKEN", "")
	v.SetDefault("STRIPE_SECRET_KEY", "")
	v.SetDefault("STRIPE_WEBHOOK_SECRET", "")
	v.SetDefault("STRIPE_CURRENCY", "cad")
	v.SetDefault("SITE_URL", "http://localhost:3000")
	v.SetDefault("STORE_NAME", "Storefront")
	v.SetDefault("RESEND_API_KEY", "")
	v.SetDefault("RESEND_FROM", "")
	v.SetDefault("RABBITMQ_URL", "")
}

// Load reads the configuration from environment variables, falling back to defaults.
func Load(v *viper.Viper) Config {
	SetDefaults(v)
	v.AutomaticEnv()

	return Config{
		AppPort:             v.GetString("APP_PORT"),
		DatabaseDriver:      strings.ToLower(v.GetString("DATABASE_DRIVER")),
		DatabaseDSN:         v.GetString("DATABASE_DSN"),
		JWTSecret:           v.GetString("JWT_SECRET"),
		AdminUsername:       v.GetString("ADMIN_USERNAME"),
		AdminEmail:          v.GetString("ADMIN_EMAIL"),
		AdminPassword:       v.GetString("ADMIN_PASSWORD"),
		AdminBackfillToken:  v.GetString("ADMIN_BACKFILL_TOKEN"),
		StripeSecretKey:     v.GetString("STRIPE_SECRET_KEY"),
		StripeWebhookSecret: v.GetString("STRIPE_WEBHOOK_SECRET"),
		Currency:            strings.ToLower(v.GetString("STRIPE_CURRENCY")),
		SiteURL:             strings.TrimRight(v.GetString("SITE_URL"), "/"),
		StoreName:           v.GetString("STORE_NAME"),
		ResendAPIKey:        v.GetString("RESEND_API_KEY"),
		ResendFrom:          v.GetString("RESEND_FROM"),
		RabbitMQURL:         v.GetString("RABBITMQ_URL"),
	}
}
