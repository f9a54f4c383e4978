package bot

import (
	tele "gopkg.in/telebot.v4"

	tghelpers "xuibot/core/telegram/helpers"
	"xuibot/core/telegram/keyboard"
	"xuibot/internal/flow"
)

// responder adapts flow output onto the Telegram transport. All messages go
// out in HTML parse mode through the async send helpers.
type responder struct {
	c tele.Context
}

func (r responder) Send(text string) error {
	return tghelpers.SendHTML(r.c, text)
}

func (r responder) SendMenu(text string) error {
	return tghelpers.SendHTML(r.c, text, MainMenu())
}

func (r responder) SendInline(text string, rows [][]flow.Button) error {
	btnRows := make([][]keyboard.InlineBtn, len(rows))
	for i, row := range rows {
		btns := make([]keyboard.InlineBtn, len(row))
		for j, b := range row {
			btns[j] = keyboard.InlineBtn{Text: b.Text, Unique: b.Key, Data: b.Data}
		}
		btnRows[i] = btns
	}
	return tghelpers.SendHTML(r.c, text, keyboard.InlineButtonsRows(btnRows...))
}

func (r responder) Edit(text string) error {
	return tghelpers.EditHTML(r.c, text)
}
