package config_test

import (
	"testing"

	"listeningroom/backend/internal/config"

	"github.com/stretchr/testify/assert"
)

func TestValidate_RejectsShortJWTSecret(t *testing.T) {
	cfg := &config.Config{JWTSecret: "short"}
	err := cfg.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")
}

func TestValidate_TelegramChatIDRequiredWithToken(t *testing.T) {
	cfg := &config.Config{
		JWTSecret:        "0123456789abcdef",
		TelegramBotToken: "123:token",
	}
	err := cfg.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "TELEGRAM_ADMIN_CHAT_ID")

	cfg.TelegramAdminChatID = 42
	assert.NoError(t, cfg.Validate())
}

func TestIsDevelopment(t *testing.T) {
	assert.True(t, (&config.Config{Env: "development"}).IsDevelopment())
	assert.False(t, (&config.Config{Env: "production"}).IsDevelopment())
}
