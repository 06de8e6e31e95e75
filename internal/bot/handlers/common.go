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
	apperrors "github.com/vladimiradmaev/medication-helper/internal/errors"
	"github.com/vladimiradmaev/medication-helper/internal/logger"
	"github.com/vladimiradmaev/medication-helper/internal/services"
)

const (
	checkPhotoPrompt = `📷 *Send a photo of the medication*

💡 *Tips:*
• Make the name on the package readable
• Good lighting, no glare
• Write a time in the caption (e.g. "21:00") to check another time`

	scanPhotoPrompt = `📄 *Send a photo of your prescription*

I will add every medication on it that is not on your list yet.`

	addMedicationPrompt = `➕ *New medication*

Send the name and dosage separated by ";", for example:
Metformin; 500mg`

	schedulePrompt = `🕒 Now send the times to take it, separated by commas, for example:
09:00, 21:00`
)

func sendText(api Sender, chatID int64, text string, markup tgbotapi.InlineKeyboardMarkup) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = "Markdown"
	msg.ReplyMarkup = markup
	return menus.SendMarkdown(api, msg)
}

// sendError shows the user-safe message for err and logs anything unexpected.
func sendError(api Sender, chatID int64, err error) error {
	switch apperrors.TypeOf(err) {
	case apperrors.ErrorTypeValidation, apperrors.ErrorTypeNotFound:
		logger.Debug("User error", "chat_id", chatID, "error", err)
	default:
		logger.Error("Request failed", "chat_id", chatID, "error", err)
	}
	msg := tgbotapi.NewMessage(chatID, "⚠️ "+apperrors.UserMessage(err))
	msg.ReplyMarkup = keyboards.BackToMenu()
	_, sendErr := api.Send(msg)
	return sendErr
}

func sendDecision(api Sender, chatID int64, res services.CheckResult) error {
	msg := tgbotapi.NewMessage(chatID, menus.FormatDecision(res))
	msg.ParseMode = "Markdown"
	msg.ReplyMarkup = keyboards.Decision(res.Decision)
	return menus.SendMarkdown(api, msg)
}

func startAddMedication(api Sender, sm state.StateManager, userID, chatID int64) error {
	sm.ClearTempData(userID)
	sm.SetUserState(userID, state.WaitingForMedicationName)
	return sendText(api, chatID, addMedicationPrompt, keyboards.BackToMenu())
}

// addMedication creates the medication and reports the outcome to the chat.
// added is false when the input was rejected.
func addMedication(ctx context.Context, api Sender, deps Dependencies, chatID int64, in services.MedicationInput) (added bool, err error) {
	m, err := deps.Medications.Create(ctx, in)
	if err != nil {
		return false, sendError(api, chatID, err)
	}
	times := "no schedule"
	if len(m.Schedule) > 0 {
		times = strings.Join(domain.FormatSchedule(m.Schedule), ", ")
	}
	text := fmt.Sprintf("✅ Added *%s* %s\n🕒 %s", menus.EscapeMarkdown(m.Name), menus.EscapeMarkdown(m.Dosage), times)
	return true, sendText(api, chatID, text, keyboards.MainMenu())
}
