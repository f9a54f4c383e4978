// Package bot binds the conversation engine to the Telegram transport:
// command and callback registration, menu keyboards, document download and
// the text fallback.
package bot

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	tele "gopkg.in/telebot.v4"

	"xuibot/core/buildinfo"
	tg "xuibot/core/telegram"
	"xuibot/core/telegram/callbacks"
	"xuibot/core/telegram/commands"
	"xuibot/core/telegram/format"
	tghelpers "xuibot/core/telegram/helpers"
	"xuibot/internal/flow"
)

const (
	msgSettingsMenu   = "⚙️ تنظیمات پنل\n\nگزینه مورد نظر را انتخاب کنید:"
	msgMainMenu       = "🏠 منوی اصلی:"
	msgUseMenu        = "لطفا از منو یا دستورات استفاده کنید."
	msgNotAllowed     = "⛔️ شما اجازه استفاده از این ربات را ندارید."
	msgBadInboundData = "❌ شناسه inbound نامعتبر است."
)

// maxDocumentBytes bounds bulk list uploads; anything larger is refused
// before download.
const maxDocumentBytes = 1 << 20

// Handlers owns the Telegram-facing side of the bot.
type Handlers struct {
	engine *flow.Engine
}

// NewHandlers binds the conversation engine.
func NewHandlers(engine *flow.Engine) *Handlers {
	return &Handlers{engine: engine}
}

// Register wires commands, callbacks and the text fallback into the registry.
// Menu button labels ride on command aliases so pressing a reply-keyboard
// button behaves exactly like typing the command.
func (h *Handlers) Register(reg *tg.Registry) {
	reg.RegisterCommand("/start", commands.Command{
		Handler:     h.handleStart,
		Description: "شروع کار با ربات",
	})
	reg.RegisterCommand("/setup", commands.Command{
		Handler:     h.handleSetup,
		Description: "تنظیم اتصال به پنل",
		Aliases:     []string{BtnChangePanel},
	})
	reg.RegisterCommand("/addclient", commands.Command{
		Handler:     h.handleAddClient,
		Description: "افزودن کلاینت جدید",
		Aliases:     []string{BtnAddClient},
	})
	reg.RegisterCommand("/bulkadd", commands.Command{
		Handler:     h.handleBulkImport,
		Description: "افزودن دسته‌جمعی کلاینت‌ها",
		Aliases:     []string{BtnBulkImport},
	})
	reg.RegisterCommand("/settings", commands.Command{
		Handler:     h.handleSettings,
		Description: "تنظیمات",
		Hidden:      true,
		Aliases:     []string{BtnSettings},
	})
	reg.RegisterCommand("/menu", commands.Command{
		Handler:     h.handleMenu,
		Description: "منوی اصلی",
		Hidden:      true,
		Aliases:     []string{BtnBackToMenu},
	})
	reg.RegisterCommand("/version", commands.Command{
		Handler:     h.handleVersion,
		Description: "Build info",
		AdminOnly:   true,
		Hidden:      true,
	})

	_ = reg.RegisterCallback(flow.CallbackInbound, h.handleInboundSelected)
	_ = reg.RegisterCallback(flow.CallbackBulkInbound, h.handleBulkInboundSelected)

	reg.SetTextFallback(func(c tele.Context) error {
		return tghelpers.SendHTML(c, msgUseMenu)
	})
}

// RejectHandler answers users outside the allow-list.
func RejectHandler(c tele.Context) error {
	if c.Callback() != nil {
		return c.Respond(&tele.CallbackResponse{Text: msgNotAllowed})
	}
	return tghelpers.SendHTML(c, msgNotAllowed)
}

func (h *Handlers) ctx(c tele.Context) context.Context {
	return tghelpers.BuildContext(c)
}

func (h *Handlers) handleStart(c tele.Context) error {
	return h.engine.Start(h.ctx(c), c.Sender().ID, responder{c: c})
}

func (h *Handlers) handleSetup(c tele.Context) error {
	return h.engine.StartSetup(h.ctx(c), c.Sender().ID, responder{c: c})
}

func (h *Handlers) handleAddClient(c tele.Context) error {
	return h.engine.StartAddClient(h.ctx(c), c.Sender().ID, responder{c: c})
}

func (h *Handlers) handleBulkImport(c tele.Context) error {
	return h.engine.StartBulkImport(h.ctx(c), c.Sender().ID, responder{c: c})
}

func (h *Handlers) handleSettings(c tele.Context) error {
	text := msgSettingsMenu
	cfg, err := h.engine.Store.PanelConfig(h.ctx(c), c.Sender().ID)
	if err != nil {
		return err
	}
	if cfg != nil {
		text = fmt.Sprintf("⚙️ تنظیمات پنل\n\nپنل فعلی: %s\n\nگزینه مورد نظر را انتخاب کنید:",
			format.Code(cfg.URL))
	}
	return tghelpers.SendHTML(c, text, SettingsMenu())
}

func (h *Handlers) handleMenu(c tele.Context) error {
	return tghelpers.SendHTML(c, msgMainMenu, MainMenu())
}

func (h *Handlers) handleVersion(c tele.Context) error {
	text := fmt.Sprintf("xuibot %s\ncommit %s", buildinfo.Version, buildinfo.Commit)
	if buildinfo.Date != "" {
		text += "\nbuilt " + buildinfo.Date
	}
	return tghelpers.SendText(c, text)
}

func (h *Handlers) handleInboundSelected(c tele.Context) error {
	inboundID, err := callbacks.PayloadInt64(c)
	if err != nil {
		return tghelpers.EditHTML(c, msgBadInboundData)
	}
	return h.engine.SelectInbound(h.ctx(c), c.Sender().ID, inboundID, responder{c: c})
}

func (h *Handlers) handleBulkInboundSelected(c tele.Context) error {
	inboundID, err := callbacks.PayloadInt64(c)
	if err != nil {
		return tghelpers.EditHTML(c, msgBadInboundData)
	}
	return h.engine.SelectBulkInbound(h.ctx(c), c.Sender().ID, inboundID, responder{c: c})
}

// HandleTextMessage feeds free text into the active flow, if any.
func (h *Handlers) HandleTextMessage(c tele.Context) (bool, error) {
	return h.engine.HandleText(h.ctx(c), c.Sender().ID, c.Text(), responder{c: c})
}

// HandleDocumentMessage hands an attached document to the bulk flow, which
// downloads it lazily. Documents outside the bulk step are left to fallbacks.
func (h *Handlers) HandleDocumentMessage(c tele.Context) (bool, error) {
	doc := c.Message().Document
	if doc == nil {
		return false, nil
	}
	fetch := func() (string, error) { return fetchDocument(c, doc) }
	return h.engine.HandleDocument(h.ctx(c), c.Sender().ID, fetch, responder{c: c})
}

func fetchDocument(c tele.Context, doc *tele.Document) (string, error) {
	if doc.FileSize > maxDocumentBytes {
		return "", fmt.Errorf("file too large: %d bytes", doc.FileSize)
	}
	rc, err := c.Bot().File(&doc.File)
	if err != nil {
		return "", fmt.Errorf("download file: %w", err)
	}
	defer rc.Close()

	data, err := io.ReadAll(io.LimitReader(rc, maxDocumentBytes+1))
	if err != nil {
		return "", fmt.Errorf("read file: %w", err)
	}
	if len(data) > maxDocumentBytes {
		return "", errors.New("file too large")
	}
	return strings.ToValidUTF8(string(data), ""), nil
}
