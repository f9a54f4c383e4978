package bot

import (
	tele "gopkg.in/telebot.v4"

	"xuibot/core/telegram/keyboard"
)

// Menu button labels. Incoming text matching a label is routed through the
// command registry's alias lookup.
const (
	BtnAddClient   = "➕ افزودن کلاینت"
	BtnBulkImport  = "👥 افزودن دسته‌جمعی"
	BtnSettings    = "⚙️ تنظیمات پنل"
	BtnChangePanel = "🔄 تغییر پنل"
	BtnBackToMenu  = "🏠 بازگشت به منو"
)

// MainMenu is the reply keyboard offered after setup and completed flows.
func MainMenu() *tele.ReplyMarkup {
	return keyboard.ReplyButtons(
		[]string{BtnAddClient, BtnBulkImport},
		[]string{BtnSettings},
	)
}

// SettingsMenu is the panel settings submenu.
func SettingsMenu() *tele.ReplyMarkup {
	return keyboard.ReplyButtons(
		[]string{BtnChangePanel},
		[]string{BtnBackToMenu},
	)
}
