package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/vladimiradmaev/medication-helper/internal/config"
)

func main() {
	fmt.Println("🔍 Checking configuration...")

	if err := godotenv.Load(); err != nil {
		fmt.Printf("⚠️  .env file not found: %v\n", err)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("❌ Configuration is invalid:\n%v\n", err)
		os.Exit(1)
	}

	fmt.Println("✅ Configuration is valid!")
	fmt.Printf("📋 Details:\n")
	fmt.Printf("  - Telegram Token: %s (bot disabled: %t)\n", maskToken(cfg.TelegramToken), cfg.BotDisabled)
	fmt.Printf("  - Gemini API Key: %s (model %s)\n", maskToken(cfg.GeminiAPIKey), cfg.GeminiModel)
	fmt.Printf("  - OpenAI API Key: %s\n", maskToken(cfg.OpenAIAPIKey))
	fmt.Printf("  - Timezone: %s\n", cfg.Location)
	fmt.Printf("  - Storage: %s\n", cfg.Storage)
	if cfg.Storage == config.StoragePostgres {
		fmt.Printf("  - DB: %s@%s:%s/%s\n", cfg.DB.User, cfg.DB.Host, cfg.DB.Port, cfg.DB.DBName)
	}
	if cfg.Redis.Enabled() {
		fmt.Printf("  - Redis: %s (db %d)\n", cfg.Redis.Addr(), cfg.Redis.DB)
	} else {
		fmt.Printf("  - Redis: <disabled>\n")
	}
	fmt.Printf("  - HTTP: %s (origins %s)\n", cfg.HTTP.Addr, strings.Join(cfg.HTTP.AllowedOrigins, ", "))
	fmt.Printf("  - Speech: %s %s\n", cfg.Speech.LanguageCode, cfg.Speech.Voice)
	fmt.Printf("  - Log Level: %v\n", cfg.Logger.Level)
	fmt.Printf("  - Log Output: %s\n", cfg.Logger.OutputPath)
	fmt.Printf("  - Log Format: %s\n", cfg.Logger.Format)
}

func maskToken(token string) string {
	if token == "" {
		return "<not set>"
	}
	if len(token) <= 8 {
		return "***"
	}
	return token[:4] + "..." + token[len(token)-4:]
}
