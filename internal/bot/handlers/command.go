package handlers

import (
	"context"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/vladimiradmaev/medication-helper/internal/bot/keyboards"
	"github.com/vladimiradmaev/medication-helper/internal/bot/menus"
	"github.com/vladimiradmaev/medication-helper/internal/bot/state"
	apperrors "github.com/vladimiradmaev/medication-helper/internal/errors"
	"github.com/vladimiradmaev/medication-helper/internal/logger"
	"github.com/vladimiradmaev/medication-helper/internal/services"
)

// CommandHandler handles bot commands
type CommandHandler struct {
	api          Sender
	deps         Dependencies
	stateManager state.StateManager
}

// NewCommandHandler creates a new command handler
func NewCommandHandler(api Sender, deps Dependencies, stateManager state.StateManager) *CommandHandler {
	return &CommandHandler{
		api:          api,
		deps:         deps,
		stateManager: stateManager,
	}
}

// Handle processes a command message
func (h *CommandHandler) Handle(ctx context.Context, message *tgbotapi.Message) error {
	userID := message.From.ID
	chatID := message.Chat.ID
	logger.Info("Handling command", "command", message.Command(), "user_id", userID)

	switch message.Command() {
	case "start":
		h.stateManager.SetUserState(userID, state.None)
		h.stateManager.ClearTempData(userID)
		return menus.SendMainMenu(h.api, chatID)
	case "help":
		return menus.SendHelp(h.api, chatID)
	case "meds":
		meds, err := h.deps.Medications.List(ctx)
		if err != nil {
			return sendError(h.api, chatID, err)
		}
		return menus.SendMedications(h.api, chatID, meds)
	case "today":
		log, err := h.deps.Doses.TodayLog(ctx)
		if err != nil {
			return sendError(h.api, chatID, err)
		}
		return menus.SendTodayLog(h.api, chatID, log)
	case "add":
		args := strings.TrimSpace(message.CommandArguments())
		if args == "" {
			return startAddMedication(h.api, h.stateManager, userID, chatID)
		}
		in, err := parseMedicationLine(args)
		if err != nil {
			return sendError(h.api, chatID, err)
		}
		_, err = addMedication(ctx, h.api, h.deps, chatID, in)
		return err
	case "check":
		name := strings.TrimSpace(message.CommandArguments())
		if name == "" {
			h.stateManager.SetUserState(userID, state.WaitingForCheckPhoto)
			return sendText(h.api, chatID, checkPhotoPrompt, keyboards.BackToMenu())
		}
		res, err := h.deps.Checks.CheckName(ctx, name, h.deps.Now())
		if err != nil {
			return sendError(h.api, chatID, err)
		}
		return sendDecision(h.api, chatID, res)
	default:
		return sendText(h.api, chatID, "Unknown command. Use /help to see the available commands.", keyboards.BackToMenu())
	}
}

// parseMedicationLine reads "Name; dosage; 09:00, 21:00".
func parseMedicationLine(line string) (services.MedicationInput, error) {
	parts := strings.Split(line, ";")
	if len(parts) < 2 {
		return services.MedicationInput{}, apperrors.NewValidationError("Use the format: Name; dosage; 09:00, 21:00")
	}
	in := services.MedicationInput{
		Name:   strings.TrimSpace(parts[0]),
		Dosage: strings.TrimSpace(parts[1]),
	}
	if len(parts) > 2 {
		in.Schedule = splitTimes(parts[2])
	}
	return in, nil
}

func splitTimes(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == '\n' })
}
