package flow

import (
	"context"
	"log/slog"

	"xuibot/core/logger"
	"xuibot/internal/panel"
	"xuibot/internal/storage"
)

// StartBulkImport begins the bulk flow: same inbound picker as the single
// flow, but the buttons route to the bulk callback.
func (e *Engine) StartBulkImport(ctx context.Context, userID int64, r Responder) error {
	return e.startInboundPick(ctx, userID, r, CallbackBulkInbound, msgPickBulkInbound)
}

// SelectBulkInbound handles the bulk inbound button and asks for the list.
func (e *Engine) SelectBulkInbound(ctx context.Context, userID, inboundID int64, r Responder) error {
	return e.selectInbound(ctx, userID, inboundID, r, StepBulkAwaitingList, msgBulkInboundSelected)
}

// bulkImport is the terminal bulk step. The list (free text or document
// content) is parsed leniently, then each pair is added sequentially with
// progress reports every fifth item and on the last one. Per-item failures do
// not stop the batch; the final report aggregates them. State is cleared at
// the end regardless of failures.
func (e *Engine) bulkImport(ctx context.Context, userID int64, content string, st *storage.ConversationState, r Responder) error {
	inboundID, ok := dataInt64(st.Data, dataInboundID)
	if !ok {
		return r.Send(msgStateLost)
	}

	api, _, err := e.panelFor(ctx, userID)
	if err != nil {
		return err
	}
	if api == nil {
		return r.Send(msgNotConfigured)
	}

	clients, skipped := ParseClientList(content)
	if skipped > 0 {
		logger.LogEvent(ctx, logger.Flow, slog.LevelWarn, "bulk.lines_skipped",
			slog.Int64("user_id", userID),
			slog.Int("skipped", skipped),
		)
	}
	if len(clients) == 0 {
		// State stays in bulk_awaiting_list so the user can resend the list.
		return r.Send(msgNoValidClients)
	}

	if err := r.Send(msgBulkStarting(len(clients))); err != nil {
		return err
	}

	var success, failed int
	var errs []string
	for i, client := range clients {
		if (i+1)%5 == 0 || i == len(clients)-1 {
			if err := r.Send(msgBulkProgress(i+1, len(clients))); err != nil {
				return err
			}
		}

		rec := panel.NewClientRecord(client.UUID, client.Email)
		if err := api.AddClient(ctx, inboundID, rec); err != nil {
			failed++
			errs = append(errs, client.Email+": "+err.Error())
			continue
		}
		success++
	}

	if err := e.finish(ctx, userID); err != nil {
		return err
	}
	logger.LogEvent(ctx, logger.Flow, slog.LevelInfo, "bulk.done",
		slog.Int64("user_id", userID),
		slog.Int64("inbound_id", inboundID),
		slog.Int("clients", len(clients)),
		slog.Int("success", success),
		slog.Int("failed", failed),
	)
	return r.SendMenu(msgBulkReport(success, failed, errs))
}
