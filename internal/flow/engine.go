package flow

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"xuibot/core/logger"
	"xuibot/internal/panel"
	"xuibot/internal/storage"
)

// Button is one inline-keyboard option offered by a flow. Key selects the
// callback handler; Data is the payload delivered back on press.
type Button struct {
	Text string
	Key  string
	Data string
}

// Responder delivers flow output to the user. The bot layer adapts it onto
// the Telegram transport; tests substitute an in-memory recorder.
type Responder interface {
	Send(text string) error
	// SendMenu sends text together with the persistent main-menu keyboard.
	SendMenu(text string) error
	// SendInline sends text with an inline keyboard.
	SendInline(text string, rows [][]Button) error
	// Edit replaces the text of the message the pressed button belongs to.
	Edit(text string) error
}

// PanelAPI is the slice of the panel client the flows consume.
type PanelAPI interface {
	ListInbounds(ctx context.Context) ([]panel.Inbound, error)
	AddClient(ctx context.Context, inboundID int64, rec panel.ClientRecord) error
}

// LoginFunc authenticates against a panel and returns its session cookie.
type LoginFunc func(ctx context.Context, panelURL, username, password string) (string, error)

// DialFunc builds a panel API bound to a stored session.
type DialFunc func(baseURL, session string) PanelAPI

// Engine drives the conversation flows against the store and the panel.
// Fields are exported so tests can plug in fakes directly.
type Engine struct {
	Store storage.Store
	Login LoginFunc
	Dial  DialFunc
}

// New wires the engine to the real panel client over the given HTTP client.
func New(store storage.Store, httpc *http.Client) *Engine {
	return &Engine{
		Store: store,
		Login: func(ctx context.Context, panelURL, username, password string) (string, error) {
			return panel.Login(ctx, httpc, panelURL, username, password)
		},
		Dial: func(baseURL, session string) PanelAPI {
			return panel.NewClient(baseURL, session, httpc)
		},
	}
}

// Start handles /start. Configured users get the main menu; everyone else is
// dropped straight into the setup flow.
func (e *Engine) Start(ctx context.Context, userID int64, r Responder) error {
	cfg, err := e.Store.PanelConfig(ctx, userID)
	if err != nil {
		return err
	}
	if cfg == nil {
		if err := r.Send(msgWelcomeUnconfigured); err != nil {
			return err
		}
		return e.StartSetup(ctx, userID, r)
	}
	return r.SendMenu(msgWelcomeBack(cfg.URL))
}

// HandleText routes free text by the user's current step. It reports whether
// the text belonged to an active flow.
func (e *Engine) HandleText(ctx context.Context, userID int64, text string, r Responder) (bool, error) {
	st, err := e.Store.State(ctx, userID)
	if err != nil {
		return false, err
	}
	if st == nil || st.Step == "" {
		return false, nil
	}

	switch Step(st.Step) {
	case StepSetupAwaitingURL:
		return true, e.setupURL(ctx, userID, text, r)
	case StepSetupAwaitingUsername:
		return true, e.setupUsername(ctx, userID, text, r)
	case StepSetupAwaitingPassword:
		return true, e.setupPassword(ctx, userID, text, r)
	case StepClientAwaitingEmail:
		return true, e.createClient(ctx, userID, text, st, r)
	case StepBulkAwaitingList:
		return true, e.bulkImport(ctx, userID, text, st, r)
	}

	// Stale step from an older build; drop it so the user is not stuck.
	logger.LogEvent(ctx, logger.Flow, slog.LevelWarn, "step.unknown",
		slog.Int64("user_id", userID),
		slog.String("step", st.Step),
	)
	if err := e.Store.ClearState(ctx, userID); err != nil {
		return false, err
	}
	return false, nil
}

// HandleDocument routes an uploaded document into the bulk flow. fetch
// downloads the file content and runs only when the user is at the
// list-collection step, so stray uploads cost nothing. It reports whether
// the document was consumed.
func (e *Engine) HandleDocument(ctx context.Context, userID int64, fetch func() (string, error), r Responder) (bool, error) {
	st, err := e.Store.State(ctx, userID)
	if err != nil {
		return false, err
	}
	if st == nil || Step(st.Step) != StepBulkAwaitingList {
		return false, nil
	}
	if err := r.Send(msgFetchingFile); err != nil {
		return true, err
	}
	content, err := fetch()
	if err != nil {
		return true, r.Send(msgFileFailed(err))
	}
	return true, e.bulkImport(ctx, userID, content, st, r)
}

func (e *Engine) advance(ctx context.Context, userID int64, step Step, data map[string]any) (*storage.ConversationState, error) {
	st, err := e.Store.SetState(ctx, userID, string(step), data)
	if err != nil {
		return nil, err
	}
	logger.LogEvent(ctx, logger.Flow, slog.LevelDebug, "step.advance",
		slog.Int64("user_id", userID),
		slog.String("step", string(step)),
	)
	return st, nil
}

func (e *Engine) finish(ctx context.Context, userID int64) error {
	if err := e.Store.ClearState(ctx, userID); err != nil {
		return err
	}
	logger.LogEvent(ctx, logger.Flow, slog.LevelDebug, "flow.done",
		slog.Int64("user_id", userID),
	)
	return nil
}

func dataString(data map[string]any, key string) string {
	if data == nil {
		return ""
	}
	v, _ := data[key].(string)
	return v
}

// dataInt64 tolerates the numeric types a JSON round trip through the store
// can produce.
func dataInt64(data map[string]any, key string) (int64, bool) {
	if data == nil {
		return 0, false
	}
	switch v := data[key].(type) {
	case int64:
		return v, true
	case int:
		return int64(v), true
	case float64:
		return int64(v), true
	case json.Number:
		n, err := v.Int64()
		return n, err == nil
	case string:
		n, err := strconv.ParseInt(v, 10, 64)
		return n, err == nil
	}
	return 0, false
}
