package ai

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

var ErrInvalidPrompt = errors.New("invalid prompt")

var injectionMarkers = []string{
	"system:",
	"override:",
	"ignore previous",
	"new instructions",
}

// ValidatePrompt rejects empty prompts, prompts longer than maxRunes and
// prompts trying to replace the system instructions.
func ValidatePrompt(prompt string, maxRunes int) error {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return fmt.Errorf("%w: empty", ErrInvalidPrompt)
	}
	if maxRunes > 0 && utf8.RuneCountInString(prompt) > maxRunes {
		return fmt.Errorf("%w: longer than %d characters", ErrInvalidPrompt, maxRunes)
	}
	lower := strings.ToLower(prompt)
	for _, marker := range injectionMarkers {
		if strings.Contains(lower, marker) {
			return fmt.Errorf("%w: contains %q", ErrInvalidPrompt, marker)
		}
	}
	return nil
}
