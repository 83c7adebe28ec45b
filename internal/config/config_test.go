package config_test

import (
	"testing"

	"storefront/internal/config"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := config.Load(viper.New())

	assert.Equal(t, ":8080", cfg.AppPort)
	assert.Equal(t, "postgres", cfg.DatabaseDriver)
	assert.Equal(t, "cad", cfg.Currency)
	assert.Empty(t, cfg.RabbitMQURL)
	assert.Empty(t, cfg.JWTSecret)
	assert.ErrorIs(t, cfg.Validate(), config.ErrMissingJWTSecret)
}

func TestConfig_ValidateRequiresJWTSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "   ")
	assert.ErrorIs(t, config.Load(viper.New()).Validate(), config.ErrMissingJWTSecret)

	t.Setenv("JWT_SECRET", "s3cret")
	cfg := config.Load(viper.New())
	assert.Equal(t, "s3cret", cfg.JWTSecret)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_Environment(t *testing.T) {
	t.Setenv("DATABASE_DRIVER", "SQLite")
	t.Setenv("SITE_URL", "https://shop.example.com/")
	t.Setenv("STRIPE_CURRENCY", "USD")

	cfg := config.Load(viper.New())

	assert.Equal(t, "sqlite", cfg.DatabaseDriver)
	assert.Equal(t, "https://shop.example.com", cfg.SiteURL)
	assert.Equal(t, "usd", cfg.Currency)
}
