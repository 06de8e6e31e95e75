package handlers

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/vladimiradmaev/medication-helper/internal/bot/keyboards"
	"github.com/vladimiradmaev/medication-helper/internal/bot/menus"
	"github.com/vladimiradmaev/medication-helper/internal/bot/state"
	"github.com/vladimiradmaev/medication-helper/internal/logger"
	"github.com/vladimiradmaev/medication-helper/internal/services"
)

const narrationTimeout = 30 * time.Second

// PhotoHandler handles photo messages
type PhotoHandler struct {
	api          Sender
	deps         Dependencies
	stateManager state.StateManager
	narrations   sync.WaitGroup
}

// NewPhotoHandler creates a new photo handler
func NewPhotoHandler(api Sender, deps Dependencies, stateManager state.StateManager) *PhotoHandler {
	return &PhotoHandler{
		api:          api,
		deps:         deps,
		stateManager: stateManager,
	}
}

// Handle processes a photo message
func (h *PhotoHandler) Handle(ctx context.Context, message *tgbotapi.Message) error {
	userID := message.From.ID
	chatID := message.Chat.ID

	mode := h.stateManager.GetUserState(userID)
	if mode != state.WaitingForCheckPhoto && mode != state.WaitingForPrescriptionPhoto {
		return sendText(h.api, chatID, "Please tap '💊 Check a pill' or '📄 Scan prescription' first.", keyboards.MainMenu())
	}

	// The caption may carry a time to check instead of now.
	now, err := services.ResolveNow(h.deps.Now(), message.Caption)
	if err != nil {
		return sendError(h.api, chatID, err)
	}

	// Get the largest photo
	photo := message.Photo[len(message.Photo)-1]
	image, err := h.deps.FetchPhoto(ctx, photo.FileID)
	if err != nil {
		logger.Error("Failed to download photo", "user_id", userID, "error", err)
		return sendText(h.api, chatID, "Sorry, I could not download the photo. Please try again.", keyboards.BackToMenu())
	}

	processing, err := h.api.Send(tgbotapi.NewMessage(chatID, "🔎 Analyzing the image..."))
	if err != nil {
		return fmt.Errorf("failed to send processing message: %w", err)
	}
	defer func() {
		if _, err := h.api.Request(tgbotapi.NewDeleteMessage(chatID, processing.MessageID)); err != nil {
			logger.Debug("Failed to delete processing message", "error", err)
		}
	}()

	if mode == state.WaitingForPrescriptionPhoto {
		result, err := h.deps.Medications.ImportPrescription(ctx, image)
		if err != nil {
			return sendError(h.api, chatID, err)
		}
		h.stateManager.SetUserState(userID, state.None)
		return sendText(h.api, chatID, menus.FormatImport(result), keyboards.MainMenu())
	}

	res, err := h.deps.Checks.Check(ctx, image, now)
	if err != nil {
		return sendError(h.api, chatID, err)
	}
	logger.Info("Photo check completed", "user_id", userID, "status", res.Decision.Status)

	// Stay in check mode so the next photo is checked too.
	if err := sendDecision(h.api, chatID, res); err != nil {
		return err
	}
	h.narrate(chatID, services.NarrationText(res.Decision.Summary, res.Decision.Recommendations))
	return nil
}

// narrate sends an audio reply in the background. Failures are logged and
// never reach the user.
func (h *PhotoHandler) narrate(chatID int64, text string) {
	if h.deps.Narrator == nil || strings.TrimSpace(text) == "" {
		return
	}
	h.narrations.Add(1)
	go func() {
		defer h.narrations.Done()
		log := logger.WithFields("chat_id", chatID)
		ctx, cancel := context.WithTimeout(context.Background(), narrationTimeout)
		defer cancel()

		audio, err := h.deps.Narrator.Synthesize(ctx, text)
		if err != nil {
			log.Warn("Narration failed", "error", err)
			return
		}
		voice := tgbotapi.NewAudio(chatID, tgbotapi.FileBytes{Name: "decision.mp3", Bytes: audio})
		voice.Title = "Medication check"
		if _, err := h.api.Send(voice); err != nil {
			log.Warn("Failed to send narration", "error", err)
		}
	}()
}

// Wait blocks until background narrations finish.
func (h *PhotoHandler) Wait() {
	h.narrations.Wait()
}
