package handlers

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/vladimiradmaev/medication-helper/internal/bot/keyboards"
	"github.com/vladimiradmaev/medication-helper/internal/bot/menus"
	"github.com/vladimiradmaev/medication-helper/internal/bot/state"
	"github.com/vladimiradmaev/medication-helper/internal/domain"
	"github.com/vladimiradmaev/medication-helper/internal/logger"
)

// CallbackHandler handles callback query messages
type CallbackHandler struct {
	api          Sender
	deps         Dependencies
	stateManager state.StateManager
}

// NewCallbackHandler creates a new callback handler
func NewCallbackHandler(api Sender, deps Dependencies, stateManager state.StateManager) *CallbackHandler {
	return &CallbackHandler{
		api:          api,
		deps:         deps,
		stateManager: stateManager,
	}
}

// Handle processes a callback query
func (h *CallbackHandler) Handle(ctx context.Context, query *tgbotapi.CallbackQuery) error {
	// Answer the callback query first
	if _, err := h.api.Request(tgbotapi.NewCallback(query.ID, "")); err != nil {
		logger.Warn("Failed to answer callback query", "error", err)
	}

	userID := query.From.ID
	chatID := query.Message.Chat.ID

	switch data := query.Data; {
	case data == keyboards.MainMenuData:
		h.stateManager.SetUserState(userID, state.None)
		h.stateManager.ClearTempData(userID)
		return menus.SendMainMenu(h.api, chatID)
	case data == keyboards.HelpData:
		return menus.SendHelp(h.api, chatID)
	case data == keyboards.CheckPillData:
		h.stateManager.SetUserState(userID, state.WaitingForCheckPhoto)
		return sendText(h.api, chatID, checkPhotoPrompt, keyboards.BackToMenu())
	case data == keyboards.ScanPrescriptionData:
		h.stateManager.SetUserState(userID, state.WaitingForPrescriptionPhoto)
		return sendText(h.api, chatID, scanPhotoPrompt, keyboards.BackToMenu())
	case data == keyboards.MyMedicationsData:
		return h.handleMyMedications(ctx, chatID)
	case data == keyboards.TodayLogData:
		return h.handleTodayLog(ctx, chatID)
	case data == keyboards.AddMedicationData:
		return startAddMedication(h.api, h.stateManager, userID, chatID)
	case strings.HasPrefix(data, keyboards.TakeDosePrefix):
		return h.handleTakeDose(ctx, chatID, strings.TrimPrefix(data, keyboards.TakeDosePrefix))
	case strings.HasPrefix(data, keyboards.DeleteDosePrefix):
		return h.handleDeleteDose(ctx, chatID, strings.TrimPrefix(data, keyboards.DeleteDosePrefix))
	case strings.HasPrefix(data, keyboards.DeleteMedicationPrefix):
		return h.handleDeleteMedication(ctx, chatID, strings.TrimPrefix(data, keyboards.DeleteMedicationPrefix))
	default:
		return sendText(h.api, chatID, "Unknown action. Please use the menu.", keyboards.MainMenu())
	}
}

func (h *CallbackHandler) handleMyMedications(ctx context.Context, chatID int64) error {
	meds, err := h.deps.Medications.List(ctx)
	if err != nil {
		return sendError(h.api, chatID, err)
	}
	return menus.SendMedications(h.api, chatID, meds)
}

func (h *CallbackHandler) handleTodayLog(ctx context.Context, chatID int64) error {
	log, err := h.deps.Doses.TodayLog(ctx)
	if err != nil {
		return sendError(h.api, chatID, err)
	}
	return menus.SendTodayLog(h.api, chatID, log)
}

// handleTakeDose logs the dose the user confirmed from a decision.
func (h *CallbackHandler) handleTakeDose(ctx context.Context, chatID int64, medicationID string) error {
	record, err := h.deps.Doses.RecordDose(ctx, medicationID, "")
	if err != nil {
		return sendError(h.api, chatID, err)
	}
	text := fmt.Sprintf("✅ Logged %s at %s", menus.EscapeMarkdown(record.Name), domain.TimeOfDayOf(record.TakenAt))
	return sendText(h.api, chatID, text, keyboards.MainMenu())
}

func (h *CallbackHandler) handleDeleteDose(ctx context.Context, chatID int64, recordID string) error {
	if err := h.deps.Doses.DeleteDose(ctx, recordID); err != nil {
		return sendError(h.api, chatID, err)
	}
	return h.handleTodayLog(ctx, chatID)
}

func (h *CallbackHandler) handleDeleteMedication(ctx context.Context, chatID int64, medicationID string) error {
	if err := h.deps.Medications.Delete(ctx, medicationID); err != nil {
		return sendError(h.api, chatID, err)
	}
	return h.handleMyMedications(ctx, chatID)
}
