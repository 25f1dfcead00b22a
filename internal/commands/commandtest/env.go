// Package commandtest wires a container for command tests: in-memory
// SQLite, a mock Telegram client, the real localizer and a generator backed
// by a scripted backend.
package commandtest

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/muratoffalex/errorer/internal/ai"
	"github.com/muratoffalex/errorer/internal/app/di"
	"github.com/muratoffalex/errorer/internal/cache"
	"github.com/muratoffalex/errorer/internal/config"
	"github.com/muratoffalex/errorer/internal/database"
	"github.com/muratoffalex/errorer/internal/logger"
	"github.com/muratoffalex/errorer/internal/queue"
	"github.com/muratoffalex/errorer/internal/service"
	"github.com/muratoffalex/errorer/internal/service/state"
	"github.com/muratoffalex/errorer/internal/telegram"
	"github.com/muratoffalex/errorer/internal/throttle"
)

const (
	BackendName     = "scripted"
	FallbackMessage = "all backends failed"
)

type Env struct {
	Container *di.Container
	Client    *telegram.MockClient
	Backend   *Backend
	Logger    *logger.TestLogger
	DB        database.Database
}

// New builds an Env. values override config defaults; the interface
// language is English unless set.
func New(t *testing.T, values map[string]any) *Env {
	t.Helper()

	merged := map[string]any{
		config.TELEGRAM_TOKEN:  "test",
		config.GLOBAL_LANGUAGE: "en",
	}
	for k, v := range values {
		merged[k] = v
	}
	cfg, err := config.NewFromMap(merged)
	require.NoError(t, err)

	log := logger.NewTestLogger()
	db, err := database.Open(":memory:", log)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	localizer, err := service.NewLocalizer(cfg.Global().InterfaceLanguage)
	require.NoError(t, err)

	backend := &Backend{Reply: "a perfectly fine answer"}
	registry := ai.NewBackendRegistry(log)
	registry.Register(BackendName, backend)
	generator, err := ai.NewGenerator(registry,
		[]ai.Candidate{{Backend: BackendName, Model: "test-model"}},
		nil,
		ai.Options{FallbackMessage: FallbackMessage, MinLength: 1},
		log)
	require.NoError(t, err)

	client := telegram.NewMockClient(t)
	c := &di.Container{
		BotClient: client,
		Sender:    telegram.NewSender(client, log, nil),
		Logger:    log,
		DB:        db,
		Cache:     cache.NewMemoryCache(),
		Cfg:       cfg,
		Queue:     queue.NewQueue(db, log),
		Backends:  registry,
		Generator: generator,
		Localizer: localizer,
		States:    state.NewManager(state.DefaultTTL),
	}
	c.Throttle = throttle.New(c.Cache, cfg.Limits().RequestTimeout, log)

	return &Env{
		Container: c,
		Client:    client,
		Backend:   backend,
		Logger:    log,
		DB:        db,
	}
}

// L localizes like the commands do.
func (e *Env) L(id string, data map[string]any) string {
	return e.Container.Localizer.Localize(id, data)
}

// Backend answers every request with Reply or Err and records the requests.
type Backend struct {
	Reply string
	Err   error

	mu       sync.Mutex
	requests []ai.ChatRequest
}

func (b *Backend) Name() string {
	return BackendName
}

func (b *Backend) Complete(_ context.Context, request ai.ChatRequest) (any, error) {
	b.mu.Lock()
	b.requests = append(b.requests, request)
	b.mu.Unlock()
	if b.Err != nil {
		return nil, b.Err
	}
	return b.Reply, nil
}

func (b *Backend) Requests() []ai.ChatRequest {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]ai.ChatRequest(nil), b.requests...)
}
