package menus

import (
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/vladimiradmaev/medication-helper/internal/bot/keyboards"
	"github.com/vladimiradmaev/medication-helper/internal/domain"
	"github.com/vladimiradmaev/medication-helper/internal/services"
)

// Sender is the part of *tgbotapi.BotAPI the menus use.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

const helpText = `*Commands*
/start - Show the main menu
/meds - List your medications
/today - Show today's dose log
/add Name; dosage; 09:00, 21:00 - Add a medication
/check Name - Check a medication by name
/help - Show this message

*Checking a pill*
1. Tap "💊 Check a pill"
2. Send a photo of the package or blister
3. Optionally write a time in the caption, e.g. "21:00"

A dose is on time within 30 minutes of a scheduled time. Tap "✅ I took it" to log it.`

// SendMainMenu sends the main menu to a chat
func SendMainMenu(api Sender, chatID int64) error {
	text := `💊 *Medication Helper* keeps your doses on schedule

Send a photo of a pill and I will tell you:
• whether it is on your list
• whether it is time to take it
• whether you already took it today

⚠️ *Important:* this is a reminder tool, always follow your doctor's instructions.

Choose an action:`

	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = "Markdown"
	msg.ReplyMarkup = keyboards.MainMenu()
	return SendMarkdown(api, msg)
}

// SendHelp sends the command reference
func SendHelp(api Sender, chatID int64) error {
	msg := tgbotapi.NewMessage(chatID, helpText)
	msg.ParseMode = "Markdown"
	msg.ReplyMarkup = keyboards.BackToMenu()
	return SendMarkdown(api, msg)
}

// SendMedications sends the medication list with delete buttons
func SendMedications(api Sender, chatID int64, meds []domain.Medication) error {
	msg := tgbotapi.NewMessage(chatID, FormatMedications(meds))
	msg.ParseMode = "Markdown"
	msg.ReplyMarkup = keyboards.Medications(meds)
	return SendMarkdown(api, msg)
}

// SendTodayLog sends today's doses with delete buttons
func SendTodayLog(api Sender, chatID int64, records []domain.DoseRecord) error {
	msg := tgbotapi.NewMessage(chatID, FormatTodayLog(records))
	msg.ParseMode = "Markdown"
	msg.ReplyMarkup = keyboards.TodayLog(records)
	return SendMarkdown(api, msg)
}

// SendMarkdown sends msg and retries as plain text if Telegram rejects the markup.
func SendMarkdown(api Sender, msg tgbotapi.MessageConfig) error {
	if _, err := api.Send(msg); err != nil {
		if msg.ParseMode == "" {
			return err
		}
		msg.ParseMode = ""
		if _, err := api.Send(msg); err != nil {
			return fmt.Errorf("failed to send message: %w", err)
		}
	}
	return nil
}

func FormatMedications(meds []domain.Medication) string {
	if len(meds) == 0 {
		return "You have no medications yet. Tap '➕ Add' or scan a prescription."
	}
	var sb strings.Builder
	sb.WriteString("📋 *Your medications:*\n\n")
	for _, m := range meds {
		times := "no schedule"
		if len(m.Schedule) > 0 {
			times = strings.Join(domain.FormatSchedule(m.Schedule), ", ")
		}
		fmt.Fprintf(&sb, "💊 *%s* %s\n🕒 %s\n\n", EscapeMarkdown(m.Name), EscapeMarkdown(m.Dosage), times)
	}
	return strings.TrimRight(sb.String(), "\n")
}

func FormatTodayLog(records []domain.DoseRecord) string {
	if len(records) == 0 {
		return "No doses logged today."
	}
	var sb strings.Builder
	sb.WriteString("🕒 *Today's doses:*\n\n")
	for _, r := range records {
		name := r.Name
		if name == "" {
			name = r.MedicationID
		}
		fmt.Fprintf(&sb, "✅ %s %s %s\n", domain.TimeOfDayOf(r.TakenAt), EscapeMarkdown(name), EscapeMarkdown(r.Dosage))
	}
	return strings.TrimRight(sb.String(), "\n")
}

var statusIcons = map[domain.DoseStatus]string{
	domain.StatusScheduled:            "✅",
	domain.StatusAlreadyTakenConflict: "⛔",
	domain.StatusWrongTime:            "⏰",
	domain.StatusUnrecognized:         "❓",
}

// FormatDecision renders a check result for chat.
func FormatDecision(res services.CheckResult) string {
	d := res.Decision
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s *%s*\n", statusIcons[d.Status], EscapeMarkdown(d.Summary))
	if !d.Matched() && res.RecognizedName != "" {
		fmt.Fprintf(&sb, "\n🔎 Recognized: %s\n", EscapeMarkdown(res.RecognizedName))
	}
	if len(d.Recommendations) > 0 {
		sb.WriteString("\n")
		for _, r := range d.Recommendations {
			fmt.Fprintf(&sb, "• %s\n", EscapeMarkdown(r))
		}
	}
	return strings.TrimRight(sb.String(), "\n")
}

// FormatImport renders a prescription import result.
func FormatImport(res services.ImportResult) string {
	if res.Empty() {
		return "No medications found on the prescription. Try a clearer photo."
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "📄 *Prescription imported:* %d added, %d skipped\n", res.AddedCount, res.SkippedCount)
	for _, m := range res.Added {
		fmt.Fprintf(&sb, "\n➕ %s %s (%s)", EscapeMarkdown(m.Name), EscapeMarkdown(m.Dosage), strings.Join(domain.FormatSchedule(m.Schedule), ", "))
	}
	if len(res.Skipped) > 0 {
		fmt.Fprintf(&sb, "\n\nAlready on your list: %s", EscapeMarkdown(strings.Join(res.Skipped, ", ")))
	}
	return sb.String()
}

// EscapeMarkdown escapes the characters legacy Markdown treats as markup.
func EscapeMarkdown(s string) string {
	r := strings.NewReplacer("_", "\\_", "*", "\\*", "[", "\\[", "]", "\\]", "`", "\\`")
	return strings.ToValidUTF8(r.Replace(s), "")
}
