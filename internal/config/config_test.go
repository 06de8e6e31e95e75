package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vladimiradmaev/medication-helper/internal/logger"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"TELEGRAM_BOT_TOKEN", "BOT_DISABLED", "GEMINI_API_KEY", "GEMINI_MODEL", "OPENAI_API_KEY",
		"STORAGE", "APP_TIMEZONE", "DB_HOST", "DB_PORT", "DB_USER", "DB_PASSWORD", "DB_NAME",
		"REDIS_HOST", "REDIS_PORT", "REDIS_PASSWORD", "REDIS_DB", "HTTP_ADDR", "CORS_ALLOWED_ORIGINS",
		"TTS_LANGUAGE", "TTS_VOICE", "LOG_LEVEL", "LOG_OUTPUT", "LOG_FORMAT",
	} {
		t.Setenv(key, "")
	}
}

func TestLoad_defaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("GEMINI_API_KEY", "gem-key")
	t.Setenv("TELEGRAM_BOT_TOKEN", "tg-token")
	t.Setenv("APP_TIMEZONE", "UTC")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "gemini-1.5-flash", cfg.GeminiModel)
	assert.Equal(t, StoragePostgres, cfg.Storage)
	assert.Equal(t, ":8080", cfg.HTTP.Addr)
	assert.Equal(t, []string{"*"}, cfg.HTTP.AllowedOrigins)
	assert.Equal(t, "en-US", cfg.Speech.LanguageCode)
	assert.Equal(t, logger.LevelInfo, cfg.Logger.Level)
	assert.False(t, cfg.Redis.Enabled())
	assert.Equal(t, "UTC", cfg.Location.String())
	assert.Equal(t, "host=localhost port=5432 user=postgres password=postgres dbname=medication_helper sslmode=disable", cfg.DB.DSN())
}

func TestLoad_overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("GEMINI_API_KEY", "gem-key")
	t.Setenv("BOT_DISABLED", "true")
	t.Setenv("STORAGE", "Memory")
	t.Setenv("REDIS_HOST", "cache")
	t.Setenv("REDIS_DB", "2")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example,")
	t.Setenv("LOG_LEVEL", "WARNING")
	t.Setenv("APP_TIMEZONE", "Europe/Berlin")

	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, cfg.BotDisabled)
	assert.Equal(t, StorageMemory, cfg.Storage)
	assert.True(t, cfg.Redis.Enabled())
	assert.Equal(t, "cache:6379", cfg.Redis.Addr())
	assert.Equal(t, 2, cfg.Redis.DB)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.HTTP.AllowedOrigins)
	assert.Equal(t, logger.LevelWarn, cfg.Logger.Level)
	assert.Equal(t, "Europe/Berlin", cfg.Now().Location().String())
}

func TestLoad_validation(t *testing.T) {
	clearEnv(t)
	t.Setenv("STORAGE", "sqlite")
	t.Setenv("APP_TIMEZONE", "Mars/Olympus")

	_, err := Load()
	require.Error(t, err)
	msg := err.Error()
	assert.Contains(t, msg, "GEMINI_API_KEY is required")
	assert.Contains(t, msg, "TELEGRAM_BOT_TOKEN is required")
	assert.Contains(t, msg, "STORAGE must be")
	assert.Contains(t, msg, "APP_TIMEZONE")
}
