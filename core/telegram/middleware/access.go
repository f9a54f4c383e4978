package middleware

import (
	"xuibot/core/logger"
	"log/slog"

	tele "gopkg.in/telebot.v4"
)

// AccessOptions defines how the allow-list gate behaves.
type AccessOptions struct {
	// Allowed decides whether the user may reach downstream handlers.
	Allowed func(userID int64) bool
	// OnReject runs for denied users; nil means silently drop the update.
	OnReject tele.HandlerFunc
}

// AccessMiddleware drops updates from users outside the allow-list.
func AccessMiddleware(opts AccessOptions) tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			user := c.Sender()
			if user == nil {
				return nil
			}
			if opts.Allowed == nil || opts.Allowed(user.ID) {
				return next(c)
			}
			logger.TG.Warn("access denied",
				slog.String("event", "tg.access_denied"),
				slog.Int64("user_id", user.ID),
			)
			if opts.OnReject != nil {
				return opts.OnReject(c)
			}
			return nil
		}
	}
}

// AdminOptions defines how admin-only checks should behave.
type AdminOptions struct {
	AdminID  int64
	OnReject tele.HandlerFunc
}

// AdminOnlyMiddleware ensures that only the admin user can invoke downstream handlers.
func AdminOnlyMiddleware(opts AdminOptions) tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			if opts.AdminID != 0 && c.Sender().ID != opts.AdminID {
				if opts.OnReject != nil {
					return opts.OnReject(c)
				}
				return nil
			}
			return next(c)
		}
	}
}
