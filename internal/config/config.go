// Package config loads and validates the service configuration from
// environment variables.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	Env        string `env:"ENV" envDefault:"production"`
	ListenAddr string `env:"LISTEN_ADDR" envDefault:":8080"`

	DatabaseDSN   string `env:"DATABASE_DSN,required"`
	RedisAddr     string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	JWTSecret string `env:"JWT_SECRET,required"`

	StripeSecretKey     string `env:"STRIPE_SECRET_KEY"`
	StripeWebhookSecret string `env:"STRIPE_WEBHOOK_SECRET"`
	FlutterwaveSecret   string `env:"FLUTTERWAVE_SECRET_KEY"`
	FlutterwaveHash     string `env:"FLUTTERWAVE_VERIF_HASH"`
	DonationRedirectURL string `env:"DONATION_REDIRECT_URL" envDefault:"https://listeningroom.app/donate/thanks"`

	TelegramBotToken    string `env:"TELEGRAM_BOT_TOKEN"`
	TelegramAdminChatID int64  `env:"TELEGRAM_ADMIN_CHAT_ID"`

	GeoAPIBaseURL   string `env:"GEO_API_BASE_URL" envDefault:"http://ip-api.com/json"`
	RatesAPIBaseURL string `env:"RATES_API_BASE_URL" envDefault:"https://open.er-api.com/v6/latest"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("environment variables are invalid or missing: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if len(c.JWTSecret) < 16 {
		return fmt.Errorf("JWT_SECRET must be at least 16 bytes, got %d", len(c.JWTSecret))
	}
	if c.TelegramBotToken != "" && c.TelegramAdminChatID == 0 {
		return fmt.Errorf("TELEGRAM_ADMIN_CHAT_ID is required when TELEGRAM_BOT_TOKEN is set")
	}
	return nil
}

func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}
