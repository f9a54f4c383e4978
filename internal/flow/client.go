package flow

import (
	"context"
	"log/slog"
	"strconv"
	"strings"

	"xuibot/core/logger"
	"xuibot/internal/panel"
	"xuibot/internal/storage"
)

// Callback keys the bot layer registers for inbound selection buttons. The
// pressed button's payload is the decimal inbound id.
const (
	CallbackInbound     = "inbound"
	CallbackBulkInbound = "bulk_inbound"
)

// panelFor loads the user's credentials and returns an API bound to them.
// A nil API with a nil error means the user never completed setup.
func (e *Engine) panelFor(ctx context.Context, userID int64) (PanelAPI, *storage.PanelConfig, error) {
	cfg, err := e.Store.PanelConfig(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	if cfg == nil {
		return nil, nil, nil
	}
	return e.Dial(cfg.URL, cfg.Session), cfg, nil
}

// StartAddClient begins the single-client flow: list the panel's inbounds and
// offer them as buttons. No state is entered until a button is pressed.
func (e *Engine) StartAddClient(ctx context.Context, userID int64, r Responder) error {
	return e.startInboundPick(ctx, userID, r, CallbackInbound, msgPickInbound)
}

func (e *Engine) startInboundPick(ctx context.Context, userID int64, r Responder, key, prompt string) error {
	api, _, err := e.panelFor(ctx, userID)
	if err != nil {
		return err
	}
	if api == nil {
		return r.Send(msgNotConfigured)
	}

	if err := r.Send(msgFetchingInbounds); err != nil {
		return err
	}

	inbounds, err := api.ListInbounds(ctx)
	if err != nil {
		return r.Send(msgInboundsFailed(err))
	}
	if len(inbounds) == 0 {
		return r.Send(msgNoInbounds)
	}

	rows := make([][]Button, 0, len(inbounds))
	for _, ib := range inbounds {
		rows = append(rows, []Button{{
			Text: ib.Remark + " (" + ib.Protocol + ")",
			Key:  key,
			Data: strconv.FormatInt(ib.ID, 10),
		}})
	}
	return r.SendInline(prompt, rows)
}

// SelectInbound handles the single-client inbound button: verify the id still
// exists on the panel, remember it, and ask for the client email.
func (e *Engine) SelectInbound(ctx context.Context, userID, inboundID int64, r Responder) error {
	return e.selectInbound(ctx, userID, inboundID, r, StepClientAwaitingEmail, msgInboundSelected)
}

func (e *Engine) selectInbound(ctx context.Context, userID, inboundID int64, r Responder, next Step, confirm func(string) string) error {
	api, _, err := e.panelFor(ctx, userID)
	if err != nil {
		return err
	}
	if api == nil {
		return r.Edit(msgNotConfigured)
	}

	inbounds, err := api.ListInbounds(ctx)
	if err != nil {
		return r.Edit(msgInboundInfoErr)
	}

	var selected *panel.Inbound
	for i := range inbounds {
		if inbounds[i].ID == inboundID {
			selected = &inbounds[i]
			break
		}
	}
	if selected == nil {
		return r.Edit(msgInboundNotFound)
	}

	_, err = e.advance(ctx, userID, next, map[string]any{
		dataInboundID: inboundID,
		dataProtocol:  selected.Protocol,
	})
	if err != nil {
		return err
	}
	return r.Edit(confirm(selected.Remark))
}

// createClient is the terminal single-client step: a fresh UUID is attached to
// the selected inbound under the given email, and the shareable links are sent
// back. Success or panel failure both end the flow.
func (e *Engine) createClient(ctx context.Context, userID int64, input string, st *storage.ConversationState, r Responder) error {
	inboundID, ok := dataInt64(st.Data, dataInboundID)
	if !ok {
		return r.Send(msgStateLost)
	}
	protocol := dataString(st.Data, dataProtocol)

	api, cfg, err := e.panelFor(ctx, userID)
	if err != nil {
		return err
	}
	if api == nil {
		return r.Send(msgNotConfigured)
	}

	email := strings.TrimSpace(input)
	if err := r.Send(msgCreatingClient); err != nil {
		return err
	}

	uuid := panel.GenerateUUID()
	if err := api.AddClient(ctx, inboundID, panel.NewClientRecord(uuid, email)); err != nil {
		logger.LogEvent(ctx, logger.Flow, slog.LevelWarn, "client.add_failed",
			slog.Int64("user_id", userID),
			slog.Int64("inbound_id", inboundID),
			slog.String("err", err.Error()),
		)
		if clearErr := e.finish(ctx, userID); clearErr != nil {
			return clearErr
		}
		return r.SendMenu(msgClientFailed(err))
	}

	links, err := panel.GenerateClientConfig(protocol, uuid, email, cfg.URL)
	if err != nil {
		if clearErr := e.finish(ctx, userID); clearErr != nil {
			return clearErr
		}
		return r.SendMenu(msgClientFailed(err))
	}

	if err := e.finish(ctx, userID); err != nil {
		return err
	}
	logger.LogEvent(ctx, logger.Flow, slog.LevelInfo, "client.created",
		slog.Int64("user_id", userID),
		slog.Int64("inbound_id", inboundID),
		slog.String("protocol", protocol),
	)
	return r.SendMenu(msgClientCreated(email, uuid, protocol, links))
}
