package ai

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"

	DefaultOpenRouterURL = "https://openrouter.ai/api/v1"
	DefaultChatURL       = "chat/completions"

	// AutoProvider labels candidates that leave provider choice to the backend.
	AutoProvider = "auto"

	cacheKeyPrefix = "resp:"
)
