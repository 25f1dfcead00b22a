package ai

import (
	"context"
	"errors"
	"net/http"

	openai "github.com/sashabaranov/go-openai"

	"github.com/muratoffalex/errorer/internal/config"
	"github.com/muratoffalex/errorer/internal/logger"
)

// OpenAISDKClient uses the official-shaped go-openai client for hosted
// OpenAI endpoints.
type OpenAISDKClient struct {
	name   string
	client *openai.Client
	logger logger.Logger
}

func NewOpenAISDKClient(cfg config.AIBackendConfig, log logger.Logger, httpClient *http.Client) *OpenAISDKClient {
	clientCfg := openai.DefaultConfig(cfg.GetAPIKey())
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	if httpClient != nil {
		clientCfg.HTTPClient = httpClient
	}
	return &OpenAISDKClient{
		name:   cfg.Name,
		client: openai.NewClientWithConfig(clientCfg),
		logger: log,
	}
}

func (c *OpenAISDKClient) Name() string {
	return c.name
}

func (c *OpenAISDKClient) Complete(ctx context.Context, request ChatRequest) (any, error) {
	messages := make([]openai.ChatCompletionMessage, 0, len(request.Messages))
	for _, m := range request.Messages {
		messages = append(messages, openai.ChatCompletionMessage{Role: m.Role, Content: m.Content})
	}
	req := openai.ChatCompletionRequest{
		Model:     request.Model,
		Messages:  messages,
		MaxTokens: request.MaxTokens,
	}
	if request.Temperature != nil {
		req.Temperature = *request.Temperature
	}

	c.logger.WithFields(logger.Fields{
		"backend": c.name,
		"model":   request.Model,
	}).Trace("openai sdk request")

	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		aiErr := &AIError{
			OriginalErr:  err,
			ProviderName: c.name,
			ModelName:    request.Model,
		}
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) {
			aiErr.OriginalErr = nil
			aiErr.HTTPStatusCode = apiErr.HTTPStatusCode
			aiErr.Message = apiErr.Message
			if code, ok := apiErr.Code.(string); ok {
				aiErr.ErrorCode = code
			} else {
				aiErr.ErrorCode = apiErr.Type
			}
		}
		return nil, aiErr
	}

	out := &ChatResponse{ID: resp.ID, Model: resp.Model}
	for _, choice := range resp.Choices {
		out.Choices = append(out.Choices, Choice{
			Message: Message{Role: choice.Message.Role, Content: choice.Message.Content},
		})
	}
	return out, nil
}
