package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/muratoffalex/errorer/internal/logger"
)

var ErrEmptyResponse = errors.New("empty response body")

// OpenAICompatibleClient talks to any /chat/completions endpoint: g4f,
// a local llama.cpp/ollama server, or a hosted gateway.
type OpenAICompatibleClient struct {
	name       string
	chatURL    string
	logger     logger.Logger
	httpClient *baseHTTPClient
}

func NewOpenAICompatibleClient(
	name string,
	baseURL string,
	chatURL string,
	apiKey string,
	log logger.Logger,
	httpClient *http.Client,
) *OpenAICompatibleClient {
	if chatURL == "" {
		chatURL = DefaultChatURL
	}
	return &OpenAICompatibleClient{
		name:       name,
		chatURL:    strings.TrimPrefix(chatURL, "/"),
		httpClient: NewBaseHTTPClient(httpClient, baseURL, apiKey, log),
		logger:     log,
	}
}

func (c *OpenAICompatibleClient) Name() string {
	return c.name
}

func (c *OpenAICompatibleClient) Complete(ctx context.Context, request ChatRequest) (any, error) {
	return c.post(ctx, request, request.Model, nil)
}

func (c *OpenAICompatibleClient) post(ctx context.Context, body any, model string, headers map[string]string) (any, error) {
	responseBody, aiErr := c.doRequest(ctx, http.MethodPost, c.chatURL, body, headers)
	if aiErr != nil {
		aiErr.ModelName = model
		return nil, aiErr
	}
	return c.decode(responseBody, model)
}

func (c *OpenAICompatibleClient) makeRawRequest(ctx context.Context, method string, endpoint string, body any, headers map[string]string) (*http.Response, error) {
	requestBody, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal error: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, bytes.NewBuffer(requestBody))
	if err != nil {
		return nil, fmt.Errorf("create request error: %w", err)
	}

	for key, value := range headers {
		req.Header.Set(key, value)
	}

	return c.httpClient.Do(req)
}

func (c *OpenAICompatibleClient) doRequest(
	ctx context.Context,
	method string,
	endpoint string,
	body any,
	headers map[string]string,
) ([]byte, *AIError) {
	resp, err := c.makeRawRequest(ctx, method, endpoint, body, headers)
	if err != nil {
		return nil, &AIError{
			OriginalErr:  err,
			ProviderName: c.Name(),
			Message:      "network request failed",
		}
	}
	defer resp.Body.Close()

	responseBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &AIError{
			OriginalErr:  err,
			ProviderName: c.Name(),
			Message:      "failed to read response body",
		}
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		aiError := &AIError{
			ProviderName:   c.Name(),
			HTTPStatusCode: resp.StatusCode,
			Message:        fmt.Sprintf("HTTP request failed with status code: %d", resp.StatusCode),
		}
		if msg, code := parseErrorBody(responseBody); msg != "" {
			aiError.Message = msg
			aiError.ErrorCode = code
		}
		return nil, aiError
	}

	return responseBody, nil
}

// parseErrorBody understands {"error":{"message":..}}, {"error":".."},
// {"detail":..} and {"message":..}.
func parseErrorBody(body []byte) (message, code string) {
	var payload map[string]any
	if len(body) == 0 || json.Unmarshal(body, &payload) != nil {
		return "", ""
	}
	if pe := providerErrorFrom(payload["error"]); pe != nil && pe.Message != "" {
		return pe.Message, pe.Code
	}
	for _, key := range []string{"detail", "message"} {
		switch v := payload[key].(type) {
		case string:
			if v != "" {
				return v, ""
			}
		case nil:
		default:
			if raw, err := json.Marshal(v); err == nil {
				return string(raw), ""
			}
		}
	}
	return "", ""
}

func providerErrorFrom(v any) *ProviderError {
	switch e := v.(type) {
	case string:
		if e == "" {
			return nil
		}
		return &ProviderError{Message: e}
	case map[string]any:
		pe := &ProviderError{}
		pe.Message, _ = e["message"].(string)
		pe.Type, _ = e["type"].(string)
		switch code := e["code"].(type) {
		case string:
			pe.Code = code
		case float64:
			pe.Code = fmt.Sprintf("%.0f", code)
		}
		if pe.Message == "" {
			pe.Message = pe.Code
		}
		return pe
	}
	return nil
}

// decode returns the JSON payload as-is for ExtractText, a plain string for
// non-JSON bodies, or an error for in-band provider errors.
func (c *OpenAICompatibleClient) decode(body []byte, model string) (any, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, &AIError{
			OriginalErr:  ErrEmptyResponse,
			ProviderName: c.Name(),
			ModelName:    model,
		}
	}

	var result any
	if err := json.Unmarshal(body, &result); err != nil {
		return string(body), nil
	}

	// errors that arrive with 200 OK
	if m, ok := result.(map[string]any); ok {
		if pe := providerErrorFrom(m["error"]); pe != nil {
			return nil, &AIError{
				ProviderName: c.Name(),
				ModelName:    model,
				ErrorCode:    pe.Code,
				Message:      pe.Message,
			}
		}
	}
	return result, nil
}
