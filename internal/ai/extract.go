package ai

import "strings"

type contentGetter interface {
	GetContent() string
}

// ExtractText pulls the response text out of whatever a backend returned.
// Known shapes: plain string/bytes, a choice list (typed or decoded JSON),
// and an object with a content field.
func ExtractText(raw any) (string, bool) {
	var text string
	switch v := raw.(type) {
	case nil:
		return "", false
	case string:
		text = v
	case []byte:
		text = string(v)
	case *ChatResponse:
		text, _ = v.Text()
	case ChatResponse:
		text, _ = v.Text()
	case contentGetter:
		text = v.GetContent()
	case map[string]any:
		text = textFromMap(v)
	}
	if strings.TrimSpace(text) == "" {
		return "", false
	}
	return text, true
}

func textFromMap(m map[string]any) string {
	if choices, ok := m["choices"].([]any); ok && len(choices) > 0 {
		if choice, ok := choices[0].(map[string]any); ok {
			if msg, ok := choice["message"].(map[string]any); ok {
				if s, ok := msg["content"].(string); ok && s != "" {
					return s
				}
			}
			if s, ok := choice["text"].(string); ok && s != "" {
				return s
			}
		}
	}
	for _, key := range []string{"content", "text", "message"} {
		if s, ok := m[key].(string); ok && s != "" {
			return s
		}
	}
	return ""
}
