// Package app assembles configuration, storage, the conversation engine and
// the Telegram runtime into a runnable bot.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"xuibot/core/bootstrap"
	corecmd "xuibot/core/cmd"
	coretelegram "xuibot/core/telegram"
	"xuibot/core/telegram/middleware"
	"xuibot/core/telegram/router"
	tgsender "xuibot/core/telegram/sender"
	"xuibot/internal/bot"
	"xuibot/internal/flow"
	"xuibot/internal/panel"
	"xuibot/internal/storage"
)

// App holds the wired application components.
type App struct {
	cfg      *Config
	db       *sqlx.DB
	handlers *bot.Handlers
}

// Bootstrap initializes the logger, the database with migrations, the durable
// store and the conversation engine.
func Bootstrap(carrier corecmd.ConfigCarrier) (corecmd.TelegramApp, error) {
	cfg, ok := carrier.(*Config)
	if !ok {
		return nil, fmt.Errorf("app: unexpected config type %T", carrier)
	}

	res, err := bootstrap.Run(bootstrap.Options{
		Config:   cfg.Core,
		Database: cfg.Database,
	})
	if err != nil {
		return nil, err
	}

	store := storage.NewPostgresStore(res.DB)
	httpc := panel.BuildHTTPClient(panel.Options{
		RequestTimeout: time.Duration(cfg.Core.Panel.RequestTimeoutSeconds) * time.Second,
		RetryAttempts:  cfg.Core.Panel.RetryAttempts,
	})
	engine := flow.New(store, httpc)

	return &App{
		cfg:      cfg,
		db:       res.DB,
		handlers: bot.NewHandlers(engine),
	}, nil
}

// TelegramRunOptions builds the bot runtime: registry, middleware chain and
// routes. The outbound dispatcher runs a single worker so interleaved bulk
// progress messages keep their order.
func (a *App) TelegramRunOptions() (coretelegram.RunOptions, error) {
	reg := coretelegram.NewRegistry()
	a.handlers.Register(reg)

	base := coretelegram.DefaultMiddlewares(a.cfg.Core, nil)
	access := coretelegram.Middleware{
		Name: "access",
		Use: middleware.AccessMiddleware(middleware.AccessOptions{
			Allowed:  a.cfg.Core.Telegram.IsAllowedUser,
			OnReject: bot.RejectHandler,
		}),
	}
	// Recover stays outermost; the allow-list gate runs before anything else
	// touches the update.
	middlewares := make([]coretelegram.Middleware, 0, len(base)+1)
	middlewares = append(middlewares, base[0], access)
	middlewares = append(middlewares, base[1:]...)

	routes := router.CommandRoutes(reg, router.CommandRouteOptions{
		AdminID: a.cfg.Core.Telegram.AdminID,
	})
	routes = append(routes, router.TextRoutes(a.handlers, reg, router.TextOptions{})...)
	routes = append(routes, router.CallbackRoute(reg, router.CallbackOptions{}))

	return coretelegram.RunOptions{
		Config:            a.cfg.Core,
		Registry:          reg,
		DispatcherOptions: tgsender.Options{Workers: 1},
		Middlewares:       middlewares,
		Routes:            routes,
		OnStop: func(ctx context.Context, rt coretelegram.Runtime) error {
			return a.db.Close()
		},
	}, nil
}
