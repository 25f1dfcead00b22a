package ai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"sync"

	"github.com/muratoffalex/errorer/internal/config"
	"github.com/muratoffalex/errorer/internal/logger"
)

var ErrBackendNotFound = errors.New("backend not found")

type BackendRegistry struct {
	backends      map[string]Backend
	backendsMutex sync.RWMutex
	logger        logger.Logger
}

func NewBackendRegistry(log logger.Logger) *BackendRegistry {
	return &BackendRegistry{
		backends: make(map[string]Backend),
		logger:   log,
	}
}

// NewBackendRegistryFromConfig builds every configured backend. A backend
// that fails to initialize is logged and skipped; its candidates will fail
// with ErrBackendNotFound and be passed over.
func NewBackendRegistryFromConfig(ctx context.Context, cfg config.AIConfig, httpClient *http.Client, log logger.Logger) *BackendRegistry {
	r := NewBackendRegistry(log)
	for _, backendCfg := range cfg.Backends {
		backend, err := NewBackend(ctx, backendCfg, httpClient, log)
		if err != nil {
			log.WithError(err).WithField("backend", backendCfg.Name).Error("Failed to initialize AI backend")
			continue
		}
		r.Register(backendCfg.Name, backend)
		log.WithFields(logger.Fields{
			"backend": backendCfg.Name,
			"type":    backendCfg.Type,
		}).Debug("AI backend registered")
	}
	return r
}

func NewBackend(ctx context.Context, cfg config.AIBackendConfig, httpClient *http.Client, log logger.Logger) (Backend, error) {
	switch cfg.Type {
	case config.BackendTypeOpenAICompatible, config.BackendTypeLocal:
		return NewOpenAICompatibleClient(cfg.Name, cfg.BaseURL, cfg.ChatURL, cfg.GetAPIKey(), log, httpClient), nil
	case config.BackendTypeOpenRouter:
		return NewOpenRouterClient(cfg, log, httpClient), nil
	case config.BackendTypeOpenAI:
		return NewOpenAISDKClient(cfg, log, httpClient), nil
	case config.BackendTypeGemini:
		return NewGeminiClient(ctx, cfg, log, httpClient)
	default:
		return nil, fmt.Errorf("unknown backend type %q", cfg.Type)
	}
}

func (r *BackendRegistry) Register(name string, backend Backend) {
	r.backendsMutex.Lock()
	defer r.backendsMutex.Unlock()
	r.backends[name] = backend
}

func (r *BackendRegistry) Get(name string) (Backend, error) {
	r.backendsMutex.RLock()
	defer r.backendsMutex.RUnlock()

	if backend, ok := r.backends[name]; ok {
		return backend, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrBackendNotFound, name)
}

func (r *BackendRegistry) Names() []string {
	r.backendsMutex.RLock()
	defer r.backendsMutex.RUnlock()

	names := make([]string, 0, len(r.backends))
	for name := range r.backends {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
