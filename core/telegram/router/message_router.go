package router

import (
	"time"

	tg "xuibot/core/telegram"
	"xuibot/core/telegram/middleware"

	tele "gopkg.in/telebot.v4"
)

// Flows consumes free text and documents belonging to an active conversation.
// The boolean result reports whether the update was consumed; unconsumed
// updates fall through to command lookup and fallbacks.
type Flows interface {
	HandleTextMessage(c tele.Context) (bool, error)
	HandleDocumentMessage(c tele.Context) (bool, error)
}

// TextOptions controls fallback behaviour for text/document updates.
type TextOptions struct {
	UnknownText     tele.HandlerFunc
	UnknownDocument tele.HandlerFunc
}

// TextRoutes builds handlers for text and document routing. Active flows take
// priority, then command aliases, then the registry's text fallback.
func TextRoutes(flows Flows, reg *tg.Registry, opts TextOptions) []tg.Route {
	handler := func(c tele.Context) error {
		start := time.Now()
		text := c.Text()

		if flows != nil {
			handled, err := flows.HandleTextMessage(c)
			if handled || err != nil {
				logHandlerSummary(c, "flow", start, "", "", err)
				return err
			}
		}

		if reg != nil {
			if key, cmd, ok := reg.LookupCommand(text); ok && cmd.Handler != nil {
				name := normalizeHandlerName(key)
				return handleWithSummary(c, name, start, "", "", func() error {
					return cmd.Handler(c)
				})
			}
		}

		if reg != nil {
			if fb := reg.TextFallback(); fb != nil {
				return handleWithSummary(c, "fallback", start, "", "", func() error {
					return fb(c)
				})
			}
		}

		if opts.UnknownText != nil {
			return handleWithSummary(c, "unknown_text", start, "", "", func() error {
				return opts.UnknownText(c)
			})
		}

		logHandlerSummary(c, "unknown_text", start, "skip", "ok", nil)
		return nil
	}

	docHandler := func(c tele.Context) error {
		start := time.Now()
		if flows != nil {
			handled, err := flows.HandleDocumentMessage(c)
			if handled || err != nil {
				logHandlerSummary(c, "flow_document", start, "", "", err)
				return err
			}
		}
		if opts.UnknownDocument != nil {
			return handleWithSummary(c, "unexpected_document", start, "", "", func() error {
				return opts.UnknownDocument(c)
			})
		}
		logHandlerSummary(c, "unexpected_document", start, "skip", "ok", nil)
		return nil
	}

	return []tg.Route{
		{
			Endpoint: tele.OnText,
			Handler:  middleware.RecoverMiddleware(middleware.LoggerMiddleware(handler)),
		},
		{
			Endpoint: tele.OnDocument,
			Handler:  middleware.RecoverMiddleware(middleware.LoggerMiddleware(docHandler)),
		},
	}
}
