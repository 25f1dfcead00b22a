package app

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"

	"github.com/muratoffalex/errorer/internal/app/di"
	"github.com/muratoffalex/errorer/internal/commands/admin"
	"github.com/muratoffalex/errorer/internal/commands/ask"
	"github.com/muratoffalex/errorer/internal/commands/demo"
	"github.com/muratoffalex/errorer/internal/commands/start"
	"github.com/muratoffalex/errorer/internal/commands/styles"
	"github.com/muratoffalex/errorer/internal/config"
	"github.com/muratoffalex/errorer/internal/core"
	"github.com/muratoffalex/errorer/internal/logger"
	"github.com/muratoffalex/errorer/internal/scheduler"
)

type Application struct {
	Logger    logger.Logger
	cfg       *config.Config
	bot       *core.Bot
	di        *di.Container
	scheduler *scheduler.Scheduler
}

func New(ctx context.Context, configPath string) (*Application, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	logCfg := cfg.Log()
	log := logger.NewLogrusLogger(&logCfg)

	di, err := di.NewContainer(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	di.Logger.Info("DI Container created")

	botInstance := core.NewBot(
		di.BotClient,
		di.Queue,
		di.Logger,
		di.DB,
		cfg,
		di.Localizer,
		di.States,
		di.Throttle,
	)
	di.Logger.Info("Bot instance created")

	sched, err := scheduler.New(di.DB, cfg, di.Logger)
	if err != nil {
		return nil, err
	}

	app := &Application{
		cfg:       cfg,
		bot:       botInstance,
		di:        di,
		Logger:    di.Logger,
		scheduler: sched,
	}
	app.registerCommands()

	return app, nil
}

// Run serves updates and runs scheduled jobs until ctx is cancelled.
func (a *Application) Run(ctx context.Context) error {
	a.Logger.Info("Starting application")
	if err := a.scheduler.Start(ctx); err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		err := a.bot.Start(gctx)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})
	err := g.Wait()

	a.shutdown()
	return err
}

func (a *Application) shutdown() {
	if err := a.scheduler.Stop(); err != nil {
		a.Logger.WithError(err).Error("Failed to stop scheduler")
	}
	if err := a.di.DB.Close(); err != nil {
		a.Logger.WithError(err).Error("Failed to close database")
	}
	a.Logger.Info("Application stopped")
}

// registerCommands wires enabled commands. Demo triggers are checked before
// ".ai" requests, so the demo handler goes first.
func (a *Application) registerCommands() {
	a.bot.RegisterTextHandler(demo.New(a.di))

	if a.cfg.GetCommandConfig(start.CommandName).Enabled {
		a.bot.RegisterCommand(start.New(a.di))
	}
	if a.cfg.GetCommandConfig(styles.CommandName).Enabled {
		a.bot.RegisterCommand(styles.New(a.di))
	}
	if a.cfg.GetCommandConfig(admin.CommandName).Enabled {
		a.bot.RegisterCommand(admin.New(a.di))
	}
	if a.cfg.GetCommandConfig(ask.CommandName).Enabled {
		a.bot.RegisterCommand(ask.New(a.di))
	}
}
