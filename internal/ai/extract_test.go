package ai

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractText(t *testing.T) {
	tests := []struct {
		name   string
		raw    any
		want   string
		wantOK bool
	}{
		{"plain string", "hello", "hello", true},
		{"bytes", []byte("hello"), "hello", true},
		{"blank string", "  \n", "", false},
		{"nil", nil, "", false},
		{"typed choices", &ChatResponse{Choices: []Choice{{Message: Message{Content: "typed"}}}}, "typed", true},
		{"typed choices by value", ChatResponse{Choices: []Choice{{Text: "legacy"}}}, "legacy", true},
		{"typed no choices", &ChatResponse{}, "", false},
		{"content object", &ContentResponse{Content: "from gemini"}, "from gemini", true},
		{"decoded choices", map[string]any{
			"choices": []any{map[string]any{"message": map[string]any{"content": "decoded"}}},
		}, "decoded", true},
		{"decoded completion text", map[string]any{
			"choices": []any{map[string]any{"text": "completion"}},
		}, "completion", true},
		{"decoded content", map[string]any{"content": "content field"}, "content field", true},
		{"decoded message", map[string]any{"message": "message field"}, "message field", true},
		{"empty choices falls through", map[string]any{"choices": []any{}, "text": "t"}, "t", true},
		{"unknown shape", map[string]any{"foo": "bar"}, "", false},
		{"unsupported type", 42, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ExtractText(tt.raw)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClassifyError(t *testing.T) {
	tests := []struct {
		err  error
		want ErrorClass
	}{
		{nil, ErrorClassUnknown},
		{errors.New("Rate limit exceeded"), ErrorClassRateLimit},
		{&AIError{HTTPStatusCode: 429, Message: "slow down"}, ErrorClassRateLimit},
		{errors.New("rate_limit_exceeded"), ErrorClassRateLimit},
		{errors.New("Invalid API key provided"), ErrorClassAPIKey},
		{&AIError{HTTPStatusCode: 401, Message: "Unauthorized"}, ErrorClassAPIKey},
		{errors.New("model gpt-9 not found"), ErrorClassNotFound},
		{&AIError{HTTPStatusCode: 404, Message: "nope"}, ErrorClassNotFound},
		{errors.New("Service Unavailable"), ErrorClassUnavailable},
		{&AIError{HTTPStatusCode: 502, Message: "upstream"}, ErrorClassUnavailable},
		{context.DeadlineExceeded, ErrorClassTimeout},
		{fmt.Errorf("call: %w", context.DeadlineExceeded), ErrorClassTimeout},
		{fmt.Errorf("%w after 5s", ErrTimeout), ErrorClassTimeout},
		{errors.New("read tcp: i/o timeout"), ErrorClassTimeout},
		{errors.New("something odd"), ErrorClassUnknown},
		// first match wins
		{errors.New("429 while service unavailable"), ErrorClassRateLimit},
	}
	for _, tt := range tests {
		name := "nil"
		if tt.err != nil {
			name = tt.err.Error()
		}
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyError(tt.err))
		})
	}
}

func TestAIError(t *testing.T) {
	err := &AIError{
		ProviderName:   "g4f",
		ModelName:      "gpt-4",
		HTTPStatusCode: 503,
		ErrorCode:      "overloaded",
		Message:        "busy",
	}
	assert.Equal(t, "503 [g4f:gpt-4] busy (code: overloaded)", err.Error())
	assert.Equal(t, ErrorTypeServer, err.ErrorType())
	assert.True(t, err.IsRetryable())

	network := &AIError{OriginalErr: errors.New("dial tcp"), ProviderName: "g4f"}
	assert.Equal(t, ErrorTypeNetwork, GetErrorType(fmt.Errorf("wrap: %w", network)))
	assert.ErrorContains(t, network, "dial tcp")

	client := &AIError{HTTPStatusCode: 400}
	assert.False(t, client.IsRetryable())
	assert.Equal(t, ErrorTypeUnknown, GetErrorType(errors.New("plain")))
}
