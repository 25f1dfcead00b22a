package di

import (
	"context"
	"fmt"
	"net/http"

	tgbotapi "github.com/OvyFlash/telegram-bot-api"

	"github.com/muratoffalex/errorer/internal/ai"
	"github.com/muratoffalex/errorer/internal/cache"
	"github.com/muratoffalex/errorer/internal/config"
	"github.com/muratoffalex/errorer/internal/database"
	"github.com/muratoffalex/errorer/internal/logger"
	"github.com/muratoffalex/errorer/internal/network"
	"github.com/muratoffalex/errorer/internal/queue"
	"github.com/muratoffalex/errorer/internal/service"
	"github.com/muratoffalex/errorer/internal/service/state"
	"github.com/muratoffalex/errorer/internal/telegram"
	"github.com/muratoffalex/errorer/internal/throttle"
)

type Container struct {
	BotClient  telegram.Client
	Sender     *telegram.Sender
	Logger     logger.Logger
	DB         database.Database
	Cache      cache.Cache
	Cfg        *config.Config
	Queue      *queue.Queue
	Backends   *ai.BackendRegistry
	Generator  *ai.Generator
	HttpClient *http.Client
	Localizer  *service.Localizer
	States     *state.Manager
	Throttle   *throttle.Throttler
}

// NewGenerator builds the backend registry and the fallback generator. It
// needs no Telegram or database access, so CLI tools use it directly.
func NewGenerator(ctx context.Context, cfg *config.Config, l logger.Logger) (*ai.Generator, *ai.BackendRegistry, error) {
	httpCfg := network.NewAIHTTPClientConfig(cfg.HTTP())
	httpClient, err := network.SetupHTTPClient(httpCfg, l)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to set up AI HTTP client: %w", err)
	}

	aiCfg := cfg.AI()
	registry := ai.NewBackendRegistryFromConfig(ctx, aiCfg, httpClient, l)

	var respCache cache.Cache
	if aiCfg.Cache.Enabled {
		respCache = cache.NewBoundedMemoryCache(aiCfg.Cache.MaxEntries, aiCfg.Cache.Evict)
	}

	generator, err := ai.NewGenerator(
		registry,
		ai.CandidatesFromConfig(aiCfg),
		respCache,
		ai.OptionsFromConfig(aiCfg),
		l,
	)
	if err != nil {
		return nil, nil, err
	}
	return generator, registry, nil
}

func NewContainer(ctx context.Context, cfg *config.Config, l logger.Logger) (*Container, error) {
	db, err := database.NewSQLiteDB(cfg, l)
	if err != nil {
		return nil, err
	}

	memoryCache := cache.NewMemoryCache()
	dbCache := cache.NewDBCache(db)
	c := cache.NewMultiLevelCache(memoryCache, dbCache, l)
	q := queue.NewQueue(db, l)
	localizer, err := service.NewLocalizer(cfg.Global().InterfaceLanguage)
	if err != nil {
		return nil, fmt.Errorf("failed to create localizer: %w", err)
	}

	container := &Container{
		Logger:    l,
		DB:        db,
		Cache:     c,
		Cfg:       cfg,
		Queue:     q,
		Localizer: localizer,
		States:    state.NewManager(state.DefaultTTL),
		Throttle:  throttle.New(c, cfg.Limits().RequestTimeout, l),
	}

	httpCfg := network.NewDefaultHTTPClientConfig(cfg.HTTP())
	container.HttpClient, err = network.SetupHTTPClient(httpCfg, l)
	if err != nil {
		return nil, err
	}

	container.Generator, container.Backends, err = NewGenerator(ctx, cfg, l)
	if err != nil {
		return nil, err
	}
	l.WithField("backends", container.Backends.Names()).Info("AI backends initialized")

	api, err := tgbotapi.NewBotAPIWithClient(cfg.Telegram().Token, tgbotapi.APIEndpoint, container.HttpClient)
	if err != nil {
		return nil, fmt.Errorf("bot API client initialization error: %w", err)
	}
	api.Debug = cfg.Log().Level() == "trace"
	l.WithField("username", api.Self.UserName).Info("Bot API initialized")

	container.BotClient = telegram.NewBotClient(api, l)
	container.Sender = telegram.NewSender(container.BotClient, l, func(i, n int) string {
		return localizer.Localize("message.part", map[string]any{"Index": i, "Total": n})
	})

	return container, nil
}
