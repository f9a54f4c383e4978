package flow

import (
	"context"
	"log/slog"

	"xuibot/core/logger"
	"xuibot/internal/storage"
)

// StartSetup begins (or restarts) the setup flow. Any state left over from
// another flow is replaced by the first setup step.
func (e *Engine) StartSetup(ctx context.Context, userID int64, r Responder) error {
	if _, err := e.advance(ctx, userID, StepSetupAwaitingURL, nil); err != nil {
		return err
	}
	return r.Send(msgSetupIntro)
}

// setupURL validates the panel address. Invalid input re-prompts without
// advancing the step or touching accumulated data.
func (e *Engine) setupURL(ctx context.Context, userID int64, input string, r Responder) error {
	if err := ValidatePanelURL(input); err != nil {
		return r.Send(msgInvalidURL(err.Error()))
	}
	if _, err := e.advance(ctx, userID, StepSetupAwaitingUsername, map[string]any{dataURL: input}); err != nil {
		return err
	}
	return r.Send(msgAskUser)
}

func (e *Engine) setupUsername(ctx context.Context, userID int64, input string, r Responder) error {
	if _, err := e.advance(ctx, userID, StepSetupAwaitingPassword, map[string]any{dataUsername: input}); err != nil {
		return err
	}
	return r.Send(msgAskPass)
}

// setupPassword is the terminal setup step: merge the password, log in to the
// panel and persist the credentials. A failed login clears state entirely; the
// user restarts with /setup rather than retrying just the password.
func (e *Engine) setupPassword(ctx context.Context, userID int64, input string, r Responder) error {
	st, err := e.advance(ctx, userID, StepSetupAwaitingPassword, map[string]any{dataPassword: input})
	if err != nil {
		return err
	}
	if err := r.Send(msgConnecting); err != nil {
		return err
	}

	panelURL := dataString(st.Data, dataURL)
	username := dataString(st.Data, dataUsername)
	password := dataString(st.Data, dataPassword)

	session, err := e.Login(ctx, panelURL, username, password)
	if err != nil {
		logger.LogEvent(ctx, logger.Flow, slog.LevelWarn, "setup.login_failed",
			slog.Int64("user_id", userID),
			slog.String("err", err.Error()),
		)
		if clearErr := e.finish(ctx, userID); clearErr != nil {
			return clearErr
		}
		return r.Send(msgLoginFailed(err))
	}

	cfg := storage.PanelConfig{
		URL:      panelURL,
		Username: username,
		Password: password,
		Session:  session,
	}
	if err := e.Store.SetPanelConfig(ctx, userID, cfg); err != nil {
		return err
	}
	if err := e.finish(ctx, userID); err != nil {
		return err
	}

	logger.LogEvent(ctx, logger.Flow, slog.LevelInfo, "setup.done",
		slog.Int64("user_id", userID),
	)
	return r.SendMenu(msgSetupDone)
}
