package config

import (
	"os"
	"slices"
	"strings"
	"time"
)

type globalConfig struct {
	TaskRetentionDays int    `koanf:"task_retention_days" validate:"gte=0"`
	InterfaceLanguage string `koanf:"interface_language" validate:"required"`
	BotName           string `koanf:"bot_name"`
}

type HTTPConfig struct {
	proxy   *string  `koanf:"proxy"`
	noProxy []string `koanf:"no_proxy"`
}

func (c HTTPConfig) GetProxy() string {
	if c.proxy != nil && *c.proxy != "" {
		return *c.proxy
	}
	if proxyURL := os.Getenv("HTTPS_PROXY"); proxyURL != "" {
		return proxyURL
	}
	if proxyURL := os.Getenv("https_proxy"); proxyURL != "" {
		return proxyURL
	}
	if proxyURL := os.Getenv("HTTP_PROXY"); proxyURL != "" {
		return proxyURL
	}
	if proxyURL := os.Getenv("http_proxy"); proxyURL != "" {
		return proxyURL
	}
	return ""
}

// GetNoProxy returns host patterns that bypass the proxy.
func (c HTTPConfig) GetNoProxy() []string {
	if len(c.noProxy) > 0 {
		return c.noProxy
	}
	raw := os.Getenv("NO_PROXY")
	if raw == "" {
		raw = os.Getenv("no_proxy")
	}
	if raw == "" {
		return nil
	}
	var hosts []string
	for h := range strings.SplitSeq(raw, ",") {
		if h = strings.TrimSpace(h); h != "" {
			hosts = append(hosts, h)
		}
	}
	return hosts
}

type LoggingConfig struct {
	LogLevel    string `koanf:"level"`
	WriteInFile bool   `koanf:"write_in_file"`
	FilePath    string `koanf:"file_path" validate:"required_if=WriteInFile true"`
	MaxSize     int    `koanf:"max_size" validate:"gte=0"` // megabytes
	MaxBackups  int    `koanf:"max_backups" validate:"gte=0"`
	MaxAge      int    `koanf:"max_age" validate:"gte=0"` // days
	Compress    bool   `koanf:"compress"`
}

func (c LoggingConfig) Level() string {
	return strings.ToLower(c.LogLevel)
}

func (c LoggingConfig) IsDebug() bool {
	return c.Level() == "debug" || c.Level() == "trace"
}

type TelegramConfig struct {
	Token        string  `koanf:"token" validate:"required"`
	AdminIDs     []int64 `koanf:"admin_ids"`
	AllowedChats []int64 `koanf:"allowed_chats"`
}

func (c TelegramConfig) IsAdmin(userID int64) bool {
	return slices.Contains(c.AdminIDs, userID)
}

// IsChatAllowed reports whether the bot serves the chat. Empty list means every chat.
func (c TelegramConfig) IsChatAllowed(chatID int64) bool {
	if len(c.AllowedChats) == 0 {
		return true
	}
	return slices.Contains(c.AllowedChats, chatID)
}

const (
	BackendTypeOpenAICompatible = "openai-compatible"
	BackendTypeLocal            = "local"
	BackendTypeOpenRouter       = "openrouter"
	BackendTypeOpenAI           = "openai"
	BackendTypeGemini           = "gemini"
)

type AIBackendConfig struct {
	Type      string `koanf:"type" validate:"required,oneof=openai-compatible local openrouter openai gemini"`
	Name      string `koanf:"name" validate:"required"`
	BaseURL   string `koanf:"base_url" validate:"omitempty,url"`
	ChatURL   string `koanf:"chat_url"`
	APIKey    string `koanf:"api_key"`
	EnvAPIKey string `koanf:"env_api_key"`
}

func (c *AIBackendConfig) GetAPIKey() string {
	var apiKey string
	if key := c.APIKey; key != "" {
		apiKey = key
	} else if c.EnvAPIKey != "" {
		apiKey = os.Getenv(c.EnvAPIKey)
	}
	return apiKey
}

type AICandidateConfig struct {
	Backend   string        `koanf:"backend"`
	Model     string        `koanf:"model" validate:"required"`
	Provider  string        `koanf:"provider"`
	Timeout   time.Duration `koanf:"timeout" validate:"gte=0"`
	Throttled bool          `koanf:"throttled"`
}

type aiRaceConfig struct {
	Enabled          bool          `koanf:"enabled"`
	Size             int           `koanf:"size" validate:"gte=0"`
	Timeout          time.Duration `koanf:"timeout" validate:"gte=0"`
	CandidateTimeout time.Duration `koanf:"candidate_timeout" validate:"gte=0"`
}

type aiCacheConfig struct {
	Enabled    bool          `koanf:"enabled"`
	TTL        time.Duration `koanf:"ttl"`
	MaxEntries int           `koanf:"max_entries" validate:"gte=0"`
	Evict      int           `koanf:"evict" validate:"gte=0"`
}

type AIConfig struct {
	SystemPrompt      string              `koanf:"system_prompt"`
	FallbackMessage   string              `koanf:"fallback_message" validate:"required"`
	Shuffle           bool                `koanf:"shuffle"`
	MinLength         int                 `koanf:"min_length" validate:"gte=0"`
	MaxResponseLength int                 `koanf:"max_response_length" validate:"gte=0"`
	MaxTokens         int                 `koanf:"max_tokens" validate:"gte=0"`
	Temperature       *float32            `koanf:"temperature" validate:"omitempty,gte=0,lte=2"`
	DefaultTimeout    time.Duration       `koanf:"default_timeout" validate:"gt=0"`
	RateLimitPause    time.Duration       `koanf:"rate_limit_pause" validate:"gte=0"`
	ProviderInterval  time.Duration       `koanf:"provider_interval" validate:"gte=0"`
	SpeedTestSize     int                 `koanf:"speed_test_size" validate:"gte=0"`
	Race              aiRaceConfig        `koanf:"race"`
	Cache             aiCacheConfig       `koanf:"cache"`
	Backends          []AIBackendConfig   `koanf:"backends" validate:"required,min=1,dive"`
	Candidates        []AICandidateConfig `koanf:"candidates" validate:"required,min=1,dive"`
}

func (c AIConfig) GetBackend(name string) *AIBackendConfig {
	for _, b := range c.Backends {
		if b.Name == name {
			return &b
		}
	}
	return nil
}

// DefaultBackend is the backend used by candidates that don't name one.
func (c AIConfig) DefaultBackend() string {
	if len(c.Backends) == 0 {
		return ""
	}
	return c.Backends[0].Name
}

type LimitsConfig struct {
	DailyRequestLimit int           `koanf:"daily_request_limit" validate:"gt=0"`
	RequestTimeout    time.Duration `koanf:"request_timeout" validate:"gte=0"`
	MaxPromptLength   int           `koanf:"max_prompt_length" validate:"gt=0"`
	MinResponseLength int           `koanf:"min_response_length" validate:"gte=0"`
	ThrottleCallbacks bool          `koanf:"throttle_callbacks"`
}

type DemoConfig struct {
	AnimationInterval time.Duration `koanf:"animation_interval" validate:"gt=0"`
}

type BroadcastConfig struct {
	PrivateDelay time.Duration `koanf:"private_delay" validate:"gte=0"`
	GroupDelay   time.Duration `koanf:"group_delay" validate:"gte=0"`
}

type SchedulerConfig struct {
	PurgeCron string `koanf:"purge_cron" validate:"required"`
	StatsCron string `koanf:"stats_cron" validate:"required"`
}

type queueThrottleOptions struct {
	Period      time.Duration `koanf:"period"`
	Concurrency int           `koanf:"concurrency"`
	Requests    int           `koanf:"requests"`
}

type queueOptions struct {
	Enabled    bool                 `koanf:"enabled"`
	MaxRetries int                  `koanf:"max_retries"`
	RetryDelay time.Duration        `koanf:"retry_delay"`
	Timeout    time.Duration        `koanf:"timeout"`
	Throttle   queueThrottleOptions `koanf:"throttle"`
}

type commandConfig struct {
	Enabled bool         `koanf:"enabled"`
	Queue   queueOptions `koanf:"queue"`
}
