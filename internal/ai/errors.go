package ai

import (
	"context"
	"errors"
	"strings"
)

var (
	ErrNoText       = errors.New("no text in response")
	ErrTooShort     = errors.New("response too short")
	ErrEmptyCleaned = errors.New("response empty after cleanup")
	ErrTimeout      = errors.New("candidate timed out")
)

// ErrorClass drives skip decisions in the fallback loop.
type ErrorClass string

const (
	ErrorClassRateLimit   ErrorClass = "rate_limit"
	ErrorClassAPIKey      ErrorClass = "api_key"
	ErrorClassNotFound    ErrorClass = "not_found"
	ErrorClassUnavailable ErrorClass = "unavailable"
	ErrorClassTimeout     ErrorClass = "timeout"
	ErrorClassUnknown     ErrorClass = "unknown"
)

var errorClassMarkers = []struct {
	class   ErrorClass
	markers []string
}{
	{ErrorClassRateLimit, []string{"rate_limit", "rate limit", "429", "too many requests"}},
	{ErrorClassAPIKey, []string{"api_key", "api key", "unauthorized", "401", "403", "forbidden"}},
	{ErrorClassNotFound, []string{"not found", "not_found", "404"}},
	{ErrorClassUnavailable, []string{"unavailable", "503", "502", "bad gateway"}},
	{ErrorClassTimeout, []string{"timeout", "deadline exceeded"}},
}

// ClassifyError maps an error to a class by its message. Order matters:
// a message mentioning both 429 and 503 is a rate limit.
func ClassifyError(err error) ErrorClass {
	if err == nil {
		return ErrorClassUnknown
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, ErrTimeout) {
		return ErrorClassTimeout
	}
	msg := strings.ToLower(err.Error())
	for _, entry := range errorClassMarkers {
		for _, marker := range entry.markers {
			if strings.Contains(msg, marker) {
				return entry.class
			}
		}
	}
	return ErrorClassUnknown
}
