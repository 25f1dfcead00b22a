package ai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"google.golang.org/genai"

	"github.com/muratoffalex/errorer/internal/config"
	"github.com/muratoffalex/errorer/internal/logger"
)

type GeminiClient struct {
	name   string
	client *genai.Client
	logger logger.Logger
}

func NewGeminiClient(ctx context.Context, cfg config.AIBackendConfig, log logger.Logger, httpClient *http.Client) (*GeminiClient, error) {
	apiKey := cfg.GetAPIKey()
	if apiKey == "" {
		return nil, fmt.Errorf("gemini backend %q: API key is required", cfg.Name)
	}
	clientCfg := &genai.ClientConfig{
		APIKey:     apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: httpClient,
	}
	if cfg.BaseURL != "" {
		clientCfg.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}
	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}
	return &GeminiClient{name: cfg.Name, client: client, logger: log}, nil
}

func (c *GeminiClient) Name() string {
	return c.name
}

func (c *GeminiClient) Complete(ctx context.Context, request ChatRequest) (any, error) {
	system, user := request.SystemAndUser()
	contents := []*genai.Content{genai.NewContentFromText(user, genai.RoleUser)}

	genCfg := &genai.GenerateContentConfig{Temperature: request.Temperature}
	if request.MaxTokens > 0 {
		genCfg.MaxOutputTokens = int32(request.MaxTokens)
	}
	if system != "" {
		genCfg.SystemInstruction = &genai.Content{Parts: []*genai.Part{{Text: system}}}
	}

	resp, err := c.client.Models.GenerateContent(ctx, request.Model, contents, genCfg)
	if err != nil {
		aiErr := &AIError{
			OriginalErr:  err,
			ProviderName: c.name,
			ModelName:    request.Model,
		}
		var apiErr genai.APIError
		if errors.As(err, &apiErr) {
			aiErr.HTTPStatusCode = apiErr.Code
			aiErr.ErrorCode = apiErr.Status
		}
		return nil, aiErr
	}

	var parts []string
	if resp != nil && len(resp.Candidates) > 0 && resp.Candidates[0].Content != nil {
		for _, part := range resp.Candidates[0].Content.Parts {
			if part != nil && part.Text != "" && !part.Thought {
				parts = append(parts, part.Text)
			}
		}
	}
	return &ContentResponse{Content: strings.Join(parts, "")}, nil
}
