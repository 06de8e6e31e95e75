package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/vladimiradmaev/medication-helper/internal/api"
	"github.com/vladimiradmaev/medication-helper/internal/bot"
	"github.com/vladimiradmaev/medication-helper/internal/bot/handlers"
	"github.com/vladimiradmaev/medication-helper/internal/bot/state"
	"github.com/vladimiradmaev/medication-helper/internal/config"
	"github.com/vladimiradmaev/medication-helper/internal/database"
	"github.com/vladimiradmaev/medication-helper/internal/domain"
	"github.com/vladimiradmaev/medication-helper/internal/interfaces"
	"github.com/vladimiradmaev/medication-helper/internal/logger"
	"github.com/vladimiradmaev/medication-helper/internal/repository"
	"github.com/vladimiradmaev/medication-helper/internal/services"
)

func main() {
	if err := godotenv.Load(); err != nil {
		// Logger is not configured yet; the default one is fine here.
		logger.Warn(".env file not found")
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load config", "error", err)
	}

	if err := logger.InitWithConfig(logger.Config{
		Level:      cfg.Logger.Level,
		OutputPath: cfg.Logger.OutputPath,
		Format:     cfg.Logger.Format,
	}); err != nil {
		logger.Fatal("Failed to initialize logger", "error", err)
	}
	defer logger.Close()

	logger.Info("Starting Medication Helper", "storage", cfg.Storage, "timezone", cfg.Location.String())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var redisClient *redis.Client
	if cfg.Redis.Enabled() {
		redisClient, err = repository.NewRedisClient(cfg.Redis.Addr(), cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			logger.Fatal("Failed to connect to Redis", "addr", cfg.Redis.Addr(), "error", err)
		}
		defer redisClient.Close()
		logger.Info("Redis connection established", "addr", cfg.Redis.Addr())
	}

	stores, err := newStores(cfg, redisClient)
	if err != nil {
		logger.Fatal("Failed to initialize storage", "error", err)
	}

	aiService, err := services.NewAIService(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, cfg.OpenAIAPIKey)
	if err != nil {
		logger.Fatal("Failed to initialize AI service", "error", err)
	}
	defer aiService.Close()

	var narrator interfaces.NarratorInterface
	speech, err := services.NewSpeechService(ctx, cfg.GeminiAPIKey, cfg.Speech.LanguageCode, cfg.Speech.Voice)
	if err != nil {
		logger.Warn("Speech disabled", "error", err)
	} else {
		narrator = speech
	}

	checks := services.NewCheckService(stores, aiService)
	meds := services.NewMedicationService(stores, aiService)
	doses := services.NewDoseService(stores, cfg.Now)
	logger.Info("Services initialized successfully")

	server := api.NewServer(api.Dependencies{
		Medications: meds,
		Doses:       doses,
		Checks:      checks,
		Narrator:    narrator,
		Now:         cfg.Now,
	}, cfg.HTTP.AllowedOrigins)

	var wg sync.WaitGroup
	errCh := make(chan error, 2)

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := server.Start(cfg.HTTP.Addr); err != nil {
			errCh <- err
		}
	}()

	if !cfg.BotDisabled {
		var sm state.StateManager = state.NewManager()
		if redisClient != nil {
			sm = state.NewRedisManager(redisClient)
		}

		telegramBot, err := bot.NewBot(cfg.TelegramToken, handlers.Dependencies{
			Medications: meds,
			Doses:       doses,
			Checks:      checks,
			Narrator:    narrator,
			Now:         cfg.Now,
		}, sm)
		if err != nil {
			logger.Fatal("Failed to create bot", "error", err)
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := telegramBot.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				errCh <- err
			}
		}()
		logger.Info("Bot is running")
	}

	select {
	case <-ctx.Done():
		logger.Info("Shutdown signal received")
	case err := <-errCh:
		logger.Error("Component stopped with error", "error", err)
		stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Stop(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown failed", "error", err)
	}
	wg.Wait()
	logger.Info("Medication Helper stopped")
}

// newStores picks the medication list and dose log backends. The dose log
// prefers Redis, then the Postgres key-value table, then memory.
func newStores(cfg *config.Config, redisClient *redis.Client) (*services.Stores, error) {
	var (
		medications domain.MedicationStore
		doses       domain.DoseLogStore
	)

	switch cfg.Storage {
	case config.StoragePostgres:
		db, err := database.NewPostgresDB(cfg.DB)
		if err != nil {
			return nil, err
		}
		medications = repository.NewMedicationRepository(db)
		doses = repository.NewGormDoseLog(db)
	default:
		medications = repository.NewMemoryMedicationStore()
		doses = repository.NewMemoryDoseLog()
	}

	if redisClient != nil {
		doses = repository.NewRedisDoseLog(redisClient)
	}
	return services.NewStores(medications, doses), nil
}
