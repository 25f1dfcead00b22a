package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/muratoffalex/errorer/internal/logger"
)

// Backend is one LLM completion endpoint. Complete returns the raw decoded
// response; ExtractText turns it into text.
type Backend interface {
	Name() string
	Complete(ctx context.Context, request ChatRequest) (any, error)
}

type baseHTTPClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
	logger  logger.Logger
}

func NewBaseHTTPClient(client *http.Client, baseURL, apiKey string, log logger.Logger) *baseHTTPClient {
	if client == nil {
		client = http.DefaultClient
	}
	return &baseHTTPClient{
		client:  client,
		baseURL: baseURL,
		apiKey:  apiKey,
		logger:  log,
	}
}

func (c *baseHTTPClient) logRequest(req *http.Request, body []byte) {
	var bodyData any
	if len(body) > 0 {
		if err := json.Unmarshal(body, &bodyData); err == nil {
			if m, ok := bodyData.(map[string]any); ok {
				truncateLargeFields(m)
			}
		}
	}

	logData := map[string]any{
		"url":    req.URL.String(),
		"method": req.Method,
		"body":   bodyData,
	}

	jsonData, err := json.Marshal(logData)
	if err != nil {
		c.logger.WithError(err).WithField("data", logData).Error("Fail marshal json for request")
	}
	c.logger.WithField("request", string(jsonData)).Trace("HTTP request")
}

func truncateLargeFields(data map[string]any) {
	for k, v := range data {
		switch val := v.(type) {
		case string:
			if k == "content" && len(val) > 500 {
				data[k] = val[:500] + "...[truncated]"
			}
		case map[string]any:
			truncateLargeFields(val)
		case []any:
			for _, item := range val {
				if m, ok := item.(map[string]any); ok {
					truncateLargeFields(m)
				}
			}
		}
	}
}

func (c *baseHTTPClient) Do(req *http.Request) (*http.Response, error) {
	if c.baseURL != "" && !strings.HasPrefix(req.URL.String(), "http") {
		req.URL, _ = url.Parse(fmt.Sprintf(
			"%s/%s",
			strings.TrimSuffix(c.baseURL, "/"),
			strings.TrimPrefix(req.URL.String(), "/"),
		))
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	req.Header.Set("Content-Type", "application/json")

	var body []byte
	if req.Body != nil {
		body, _ = io.ReadAll(req.Body)
		req.Body = io.NopCloser(bytes.NewBuffer(body))
	}

	c.logRequest(req, body)

	return c.client.Do(req)
}

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest is the OpenAI-style chat completion body. Provider is the
// g4f-style upstream selector; empty lets the backend choose.
type ChatRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Provider    string    `json:"provider,omitempty"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
	Temperature *float32  `json:"temperature,omitempty"`
	Stream      bool      `json:"stream"`
}

func NewChatRequest(c Candidate, req CompletionRequest, maxTokens int, temperature *float32) ChatRequest {
	messages := make([]Message, 0, 2)
	if req.SystemPrompt != "" {
		messages = append(messages, Message{Role: RoleSystem, Content: req.SystemPrompt})
	}
	messages = append(messages, Message{Role: RoleUser, Content: req.Prompt})
	return ChatRequest{
		Model:       c.Model,
		Messages:    messages,
		Provider:    c.Provider,
		MaxTokens:   maxTokens,
		Temperature: temperature,
	}
}

// SystemAndUser splits messages for APIs that take the system instruction separately.
func (r ChatRequest) SystemAndUser() (system, user string) {
	var sys, usr []string
	for _, m := range r.Messages {
		switch m.Role {
		case RoleSystem:
			sys = append(sys, m.Content)
		default:
			usr = append(usr, m.Content)
		}
	}
	return strings.Join(sys, "\n\n"), strings.Join(usr, "\n\n")
}

type Choice struct {
	Message Message `json:"message"`
	Text    string  `json:"text,omitempty"`
}

// ChatResponse is the typed choice-list shape.
type ChatResponse struct {
	ID      string         `json:"id"`
	Model   string         `json:"model,omitempty"`
	Choices []Choice       `json:"choices"`
	Error   *ProviderError `json:"error,omitempty"`
}

func (r *ChatResponse) Text() (string, bool) {
	if r == nil || len(r.Choices) == 0 {
		return "", false
	}
	if c := r.Choices[0]; c.Message.Content != "" {
		return c.Message.Content, true
	} else if c.Text != "" {
		return c.Text, true
	}
	return "", false
}

// ContentResponse is the object-with-content shape.
type ContentResponse struct {
	Content string `json:"content"`
}

func (r *ContentResponse) GetContent() string {
	return r.Content
}

type ProviderError struct {
	Message string `json:"message"`
	Code    string `json:"code"`
	Type    string `json:"type"`
}

// AIError represents an enriched error from a completion backend
type AIError struct {
	// OriginalErr is the original error (if any)
	OriginalErr error `json:"-"`
	// ProviderName is the backend name from config
	ProviderName string `json:"provider_name"`
	// ModelName is the model name where the error occurred
	ModelName string `json:"model_name"`
	// HTTPStatusCode is the HTTP response status code (if applicable)
	HTTPStatusCode int `json:"http_status_code"`
	// ErrorCode is the provider's error code (e.g. "rate_limit_exceeded", "model_not_found")
	ErrorCode string `json:"error_code"`
	Message   string `json:"message"`
}

func (e *AIError) Error() string {
	msg := e.Message
	switch {
	case msg == "" && e.OriginalErr != nil:
		msg = e.OriginalErr.Error()
	case e.OriginalErr != nil:
		msg = fmt.Sprintf("%s: %v", msg, e.OriginalErr)
	}
	if e.ProviderName != "" && e.ModelName != "" {
		msg = fmt.Sprintf("[%s:%s] %s", e.ProviderName, e.ModelName, msg)
	}
	if e.ErrorCode != "" {
		msg = fmt.Sprintf("%s (code: %s)", msg, e.ErrorCode)
	}
	if e.HTTPStatusCode != 0 {
		msg = fmt.Sprintf("%d %s", e.HTTPStatusCode, msg)
	}
	return msg
}

func (e *AIError) Unwrap() error {
	return e.OriginalErr
}

// ErrorType returns the error type based on HTTP status code
func (e *AIError) ErrorType() ErrorType {
	switch {
	case e.HTTPStatusCode == 0 && e.OriginalErr != nil:
		return ErrorTypeNetwork
	case e.HTTPStatusCode == http.StatusTooManyRequests:
		return ErrorTypeRateLimit
	case e.HTTPStatusCode >= 500:
		return ErrorTypeServer
	case e.HTTPStatusCode >= 400:
		return ErrorTypeClient
	default:
		return ErrorTypeUnknown
	}
}

// IsRetryable reports whether another attempt at the same backend could succeed.
func (e *AIError) IsRetryable() bool {
	switch e.ErrorType() {
	case ErrorTypeNetwork, ErrorTypeRateLimit, ErrorTypeServer:
		return true
	default:
		return false
	}
}

type ErrorType string

const (
	ErrorTypeNetwork   ErrorType = "network"    // Network error, timeout
	ErrorTypeRateLimit ErrorType = "rate_limit" // 429, provider limits
	ErrorTypeServer    ErrorType = "server"     // 5xx, provider-side error
	ErrorTypeClient    ErrorType = "client"     // other 4xx
	ErrorTypeUnknown   ErrorType = "unknown"
)

func GetErrorType(err error) ErrorType {
	var aiErr *AIError
	if errors.As(err, &aiErr) {
		return aiErr.ErrorType()
	}
	return ErrorTypeUnknown
}
