package keyboards

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/vladimiradmaev/medication-helper/internal/domain"
)

// Callback data
const (
	MainMenuData         = "main_menu"
	CheckPillData        = "check_pill"
	ScanPrescriptionData = "scan_prescription"
	MyMedicationsData    = "my_medications"
	TodayLogData         = "today_log"
	AddMedicationData    = "add_medication"
	HelpData             = "help"

	// Prefixes followed by a medication or dose id.
	TakeDosePrefix         = "take:"
	DeleteDosePrefix       = "deldose:"
	DeleteMedicationPrefix = "delmed:"
)

// MainMenu creates the main menu keyboard
func MainMenu() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("💊 Check a pill", CheckPillData),
			tgbotapi.NewInlineKeyboardButtonData("📄 Scan prescription", ScanPrescriptionData),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📋 My medications", MyMedicationsData),
			tgbotapi.NewInlineKeyboardButtonData("🕒 Today's log", TodayLogData),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("❓ Help", HelpData),
		),
	)
}

// BackToMenu is a single "main menu" button
func BackToMenu() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("◀️ Main menu", MainMenuData),
		),
	)
}

// Decision offers to log the dose only when it is safe to take now.
func Decision(d domain.DosingDecision) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	if d.SafeToTake() {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ I took it", TakeDosePrefix+d.MatchedMedicationID),
		))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("💊 Check another", CheckPillData),
		tgbotapi.NewInlineKeyboardButtonData("◀️ Main menu", MainMenuData),
	))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// TodayLog has one delete button per record
func TodayLog(records []domain.DoseRecord) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, r := range records {
		label := fmt.Sprintf("🗑️ %s %s", domain.TimeOfDayOf(r.TakenAt), r.Name)
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(label, DeleteDosePrefix+r.ID),
		))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("◀️ Main menu", MainMenuData),
	))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// Medications has one delete button per medication plus "add"
func Medications(meds []domain.Medication) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, m := range meds {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🗑️ "+m.Name, DeleteMedicationPrefix+m.ID),
		))
	}
	rows = append(rows,
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("➕ Add", AddMedicationData),
			tgbotapi.NewInlineKeyboardButtonData("📄 Scan prescription", ScanPrescriptionData),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("◀️ Main menu", MainMenuData),
		),
	)
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}
