package handlers

import (
	"context"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/vladimiradmaev/medication-helper/internal/bot/keyboards"
	"github.com/vladimiradmaev/medication-helper/internal/bot/state"
	apperrors "github.com/vladimiradmaev/medication-helper/internal/errors"
	"github.com/vladimiradmaev/medication-helper/internal/services"
)

// TextHandler handles text messages
type TextHandler struct {
	api          Sender
	deps         Dependencies
	stateManager state.StateManager
}

// NewTextHandler creates a new text handler
func NewTextHandler(api Sender, deps Dependencies, stateManager state.StateManager) *TextHandler {
	return &TextHandler{
		api:          api,
		deps:         deps,
		stateManager: stateManager,
	}
}

// Handle processes a text message
func (h *TextHandler) Handle(ctx context.Context, message *tgbotapi.Message) error {
	userID := message.From.ID
	chatID := message.Chat.ID
	text := strings.TrimSpace(message.Text)

	switch h.stateManager.GetUserState(userID) {
	case state.WaitingForMedicationName:
		return h.handleMedicationName(ctx, userID, chatID, text)
	case state.WaitingForMedicationSchedule:
		return h.handleMedicationSchedule(ctx, userID, chatID, text)
	case state.WaitingForCheckPhoto, state.WaitingForPrescriptionPhoto:
		return sendText(h.api, chatID, "Please send a photo, or go back to the main menu.", keyboards.BackToMenu())
	default:
		return sendText(h.api, chatID, "Please use the menu to choose an action.", keyboards.MainMenu())
	}
}

// handleMedicationName accepts "Name; dosage" or the full "Name; dosage; times".
func (h *TextHandler) handleMedicationName(ctx context.Context, userID, chatID int64, text string) error {
	in, err := parseMedicationLine(text)
	if err != nil {
		return sendError(h.api, chatID, err)
	}
	if len(in.Schedule) > 0 {
		added, err := addMedication(ctx, h.api, h.deps, chatID, in)
		if added {
			h.stateManager.SetUserState(userID, state.None)
			h.stateManager.ClearTempData(userID)
		}
		return err
	}
	if in.Name == "" || in.Dosage == "" {
		return sendError(h.api, chatID, apperrors.NewValidationError("Name and dosage are both required, e.g. Metformin; 500mg"))
	}

	h.stateManager.SetTempData(userID, state.KeyMedicationName, in.Name)
	h.stateManager.SetTempData(userID, state.KeyMedicationDosage, in.Dosage)
	h.stateManager.SetUserState(userID, state.WaitingForMedicationSchedule)
	return sendText(h.api, chatID, schedulePrompt, keyboards.BackToMenu())
}

func (h *TextHandler) handleMedicationSchedule(ctx context.Context, userID, chatID int64, text string) error {
	name, okName := h.stateManager.GetTempData(userID, state.KeyMedicationName)
	dosage, okDosage := h.stateManager.GetTempData(userID, state.KeyMedicationDosage)
	if !okName || !okDosage {
		return startAddMedication(h.api, h.stateManager, userID, chatID)
	}

	in := services.MedicationInput{Name: name, Dosage: dosage, Schedule: splitTimes(text)}
	added, err := addMedication(ctx, h.api, h.deps, chatID, in)
	// On rejection stay in this state so the user can resend the times.
	if added {
		h.stateManager.SetUserState(userID, state.None)
		h.stateManager.ClearTempData(userID)
	}
	return err
}
