package ai

import (
	"context"
	"net/http"

	"github.com/muratoffalex/errorer/internal/config"
	"github.com/muratoffalex/errorer/internal/logger"
)

type OpenRouterClient struct {
	*OpenAICompatibleClient
}

type openRouterRouting struct {
	Order          []string `json:"order"`
	AllowFallbacks bool     `json:"allow_fallbacks"`
}

// openRouterRequest pins the upstream provider; the outer Provider field
// shadows the g4f-style string on ChatRequest.
type openRouterRequest struct {
	ChatRequest
	Provider *openRouterRouting `json:"provider,omitempty"`
}

func NewOpenRouterClient(cfg config.AIBackendConfig, log logger.Logger, httpClient *http.Client) *OpenRouterClient {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultOpenRouterURL
	}
	return &OpenRouterClient{
		OpenAICompatibleClient: NewOpenAICompatibleClient(
			cfg.Name,
			baseURL,
			cfg.ChatURL,
			cfg.GetAPIKey(),
			log,
			httpClient,
		),
	}
}

func (c *OpenRouterClient) Complete(ctx context.Context, request ChatRequest) (any, error) {
	body := openRouterRequest{ChatRequest: request}
	if request.Provider != "" && request.Provider != AutoProvider {
		body.Provider = &openRouterRouting{Order: []string{request.Provider}}
	}
	return c.post(ctx, body, request.Model, c.headers())
}

func (c *OpenRouterClient) headers() map[string]string {
	return map[string]string{
		"X-Title":      "errorer bot",
		"HTTP-Referer": "https://github.com/muratoffalex/errorer",
	}
}
