package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
)

const (
	GLOBAL_TASK_RETENTION_DAYS   = "global.task_retention_days"
	GLOBAL_LANGUAGE              = "global.interface_language"
	GLOBAL_BOT_NAME              = "global.bot_name"
	HTTP_PROXY                   = "http.proxy"
	HTTP_NO_PROXY                = "http.no_proxy"
	AI_SYSTEM_PROMPT             = "ai.system_prompt"
	AI_FALLBACK_MESSAGE          = "ai.fallback_message"
	AI_SHUFFLE                   = "ai.shuffle"
	AI_MIN_LENGTH                = "ai.min_length"
	AI_MAX_RESPONSE_LENGTH       = "ai.max_response_length"
	AI_MAX_TOKENS                = "ai.max_tokens"
	AI_DEFAULT_TIMEOUT           = "ai.default_timeout"
	AI_RATE_LIMIT_PAUSE          = "ai.rate_limit_pause"
	AI_PROVIDER_INTERVAL         = "ai.provider_interval"
	AI_SPEED_TEST_SIZE           = "ai.speed_test_size"
	AI_RACE_ENABLED              = "ai.race.enabled"
	AI_RACE_SIZE                 = "ai.race.size"
	AI_RACE_TIMEOUT              = "ai.race.timeout"
	AI_RACE_CANDIDATE_TIMEOUT    = "ai.race.candidate_timeout"
	AI_CACHE_ENABLED             = "ai.cache.enabled"
	AI_CACHE_TTL                 = "ai.cache.ttl"
	AI_CACHE_MAX_ENTRIES         = "ai.cache.max_entries"
	AI_CACHE_EVICT               = "ai.cache.evict"
	AI_BACKENDS                  = "ai.backends"
	AI_CANDIDATES                = "ai.candidates"
	LIMITS_DAILY_REQUEST_LIMIT   = "limits.daily_request_limit"
	LIMITS_REQUEST_TIMEOUT       = "limits.request_timeout"
	LIMITS_MAX_PROMPT_LENGTH     = "limits.max_prompt_length"
	LIMITS_MIN_RESPONSE_LENGTH   = "limits.min_response_length"
	LIMITS_THROTTLE_CALLBACKS    = "limits.throttle_callbacks"
	DEMO_ANIMATION_INTERVAL      = "demo.animation_interval"
	BROADCAST_PRIVATE_DELAY      = "broadcast.private_delay"
	BROADCAST_GROUP_DELAY        = "broadcast.group_delay"
	SCHEDULER_PURGE_CRON         = "scheduler.purge_cron"
	SCHEDULER_STATS_CRON         = "scheduler.stats_cron"
	TELEGRAM_TOKEN               = "telegram.token"
	TELEGRAM_ADMIN_IDS           = "telegram.admin_ids"
	TELEGRAM_ALLOWED_CHATS       = "telegram.allowed_chats"
	DATABASE_DSN                 = "database.dsn"
	LOGGING_LEVEL                = "logging.level"
	LOGGING_WRITE_IN_FILE        = "logging.write_in_file"
	LOGGING_FILE_PATH            = "logging.file_path"
	LOGGING_MAX_SIZE             = "logging.max_size"
	LOGGING_MAX_BACKUPS          = "logging.max_backups"
	LOGGING_MAX_AGE              = "logging.max_age"
	LOGGING_COMPRESS             = "logging.compress"
	DEFAULT_FALLBACK_MESSAGE     = "❌ All AI providers are temporarily unavailable. Please try again later or rephrase your request."
	DEFAULT_G4F_BACKEND_NAME     = "g4f"
	DEFAULT_G4F_BACKEND_BASE_URL = "http://localhost:1337/v1"
)

const envPrefix = "ERRORER_"

var defaultSQLiteParams = map[string]string{
	"_journal":      "WAL",
	"_busy_timeout": "10000",
	"_synchronous":  "NORMAL",
	"_cache":        "shared",
	"_auto_vacuum":  "INCREMENTAL",
}

var ErrTokenRequired = errors.New("telegram token is required")

type Config struct {
	k *koanf.Koanf
}

func defaultValues() map[string]any {
	return map[string]any{
		GLOBAL_TASK_RETENTION_DAYS:               1,
		GLOBAL_LANGUAGE:                          "ru",
		GLOBAL_BOT_NAME:                          "errorer bot",
		TELEGRAM_TOKEN:                           "",
		HTTP_PROXY:                               nil,
		DATABASE_DSN:                             "errorer.db",
		LOGGING_LEVEL:                            "info",
		LOGGING_WRITE_IN_FILE:                    false,
		LOGGING_FILE_PATH:                        "errorer.log",
		LOGGING_MAX_SIZE:                         10,
		LOGGING_MAX_BACKUPS:                      5,
		LOGGING_MAX_AGE:                          30,
		LOGGING_COMPRESS:                         true,
		AI_SYSTEM_PROMPT:                         "",
		AI_FALLBACK_MESSAGE:                      DEFAULT_FALLBACK_MESSAGE,
		AI_SHUFFLE:                               false,
		AI_MIN_LENGTH:                            6,
		AI_MAX_RESPONSE_LENGTH:                   2000,
		AI_MAX_TOKENS:                            1000,
		AI_DEFAULT_TIMEOUT:                       15 * time.Second,
		AI_RATE_LIMIT_PAUSE:                      3 * time.Second,
		AI_PROVIDER_INTERVAL:                     2 * time.Second,
		AI_SPEED_TEST_SIZE:                       5,
		AI_RACE_ENABLED:                          false,
		AI_RACE_SIZE:                             3,
		AI_RACE_TIMEOUT:                          10 * time.Second,
		AI_RACE_CANDIDATE_TIMEOUT:                6 * time.Second,
		AI_CACHE_ENABLED:                         true,
		AI_CACHE_TTL:                             time.Hour,
		AI_CACHE_MAX_ENTRIES:                     1000,
		AI_CACHE_EVICT:                           200,
		LIMITS_DAILY_REQUEST_LIMIT:               100,
		LIMITS_REQUEST_TIMEOUT:                   10 * time.Second,
		LIMITS_MAX_PROMPT_LENGTH:                 1000,
		LIMITS_MIN_RESPONSE_LENGTH:               10,
		LIMITS_THROTTLE_CALLBACKS:                true,
		DEMO_ANIMATION_INTERVAL:                  time.Second,
		BROADCAST_PRIVATE_DELAY:                  50 * time.Millisecond,
		BROADCAST_GROUP_DELAY:                    100 * time.Millisecond,
		SCHEDULER_PURGE_CRON:                     "0 * * * *",
		SCHEDULER_STATS_CRON:                     "0 0 * * *",
		"commands.start.enabled":                 true,
		"commands.start.queue.enabled":           false,
		"commands.ai.enabled":                    true,
		"commands.ai.queue.enabled":              true,
		"commands.ai.queue.timeout":              2 * time.Minute,
		"commands.ai.queue.max_retries":          0,
		"commands.ai.queue.throttle.period":      time.Second,
		"commands.ai.queue.throttle.concurrency": 4,
		"commands.ai.queue.throttle.requests":    4,
		"commands.admin.enabled":                 true,
		"commands.admin.queue.enabled":           false,
		"commands.styles.enabled":                true,
		"commands.styles.queue.enabled":          false,
	}
}

// Load reads defaults, the first config file found and ERRORER_ environment
// variables, in that order. An explicit path takes precedence over the search list.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaultValues(), "."), nil); err != nil {
		return nil, fmt.Errorf("error loading defaults: %w", err)
	}

	for _, p := range getConfigPaths(path) {
		if _, err := os.Stat(p); err == nil {
			if err := k.Load(file.Provider(p), toml.Parser()); err != nil {
				return nil, fmt.Errorf("error loading config %s: %w", p, err)
			}
			break
		}
	}

	if err := k.Load(env.Provider(envPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("error loading env: %w", err)
	}

	cfg := &Config{k: k}
	if k.String(TELEGRAM_TOKEN) == "" {
		return nil, ErrTokenRequired
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// NewFromMap builds a config from defaults overlaid with values. Used by tests
// and tools that don't read files.
func NewFromMap(values map[string]any) (*Config, error) {
	k := koanf.New(".")
	if err := k.Load(confmap.Provider(defaultValues(), "."), nil); err != nil {
		return nil, err
	}
	if err := k.Load(confmap.Provider(values, "."), nil); err != nil {
		return nil, err
	}
	cfg := &Config{k: k}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// envKey maps ERRORER_LIMITS_DAILY__REQUEST__LIMIT to limits.daily_request_limit.
func envKey(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, envPrefix))
	s = strings.ReplaceAll(s, "__", "\x00")
	s = strings.ReplaceAll(s, "_", ".")
	return strings.ReplaceAll(s, "\x00", "_")
}

// Validate checks every typed section.
func (c *Config) Validate() error {
	v := validator.New()
	sections := map[string]any{
		"global":    c.Global(),
		"telegram":  c.Telegram(),
		"logging":   c.Log(),
		"ai":        c.AI(),
		"limits":    c.Limits(),
		"demo":      c.Demo(),
		"broadcast": c.Broadcast(),
		"scheduler": c.Scheduler(),
	}
	names := make([]string, 0, len(sections))
	for name := range sections {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := v.Struct(sections[name]); err != nil {
			return fmt.Errorf("invalid %s config: %w", name, err)
		}
	}

	ai := c.AI()
	for _, cand := range ai.Candidates {
		if cand.Backend != "" && ai.GetBackend(cand.Backend) == nil {
			return fmt.Errorf("invalid ai config: candidate %s references unknown backend %q", cand.Model, cand.Backend)
		}
	}
	return nil
}

func (c *Config) GetCommandConfig(name string) *commandConfig {
	concurrency := c.k.Int(fmt.Sprintf("commands.%s.queue.throttle.concurrency", name))
	if concurrency == 0 {
		concurrency = 1
	}
	requests := c.k.Int(fmt.Sprintf("commands.%s.queue.throttle.requests", name))
	if requests == 0 {
		requests = 1
	}
	period := c.k.Duration(fmt.Sprintf("commands.%s.queue.throttle.period", name))
	if period == 0 {
		period = 10 * time.Second
	}
	timeout := c.k.Duration(fmt.Sprintf("commands.%s.queue.timeout", name))
	if timeout == 0 {
		timeout = 1 * time.Minute
	}
	return &commandConfig{
		Enabled: c.k.Bool(fmt.Sprintf("commands.%s.enabled", name)),
		Queue: queueOptions{
			Enabled:    c.k.Bool(fmt.Sprintf("commands.%s.queue.enabled", name)),
			MaxRetries: c.k.Int(fmt.Sprintf("commands.%s.queue.max_retries", name)),
			RetryDelay: c.k.Duration(fmt.Sprintf("commands.%s.queue.retry_delay", name)),
			Timeout:    timeout,
			Throttle: queueThrottleOptions{
				Concurrency: concurrency,
				Period:      period,
				Requests:    requests,
			},
		},
	}
}

func (c *Config) Telegram() TelegramConfig {
	var cfg TelegramConfig
	if err := c.k.Unmarshal("telegram", &cfg); err != nil {
		log.Fatalf("telegramConfig unmarshal error: %v", err)
		return TelegramConfig{}
	}
	return cfg
}

func (c *Config) Log() LoggingConfig {
	return LoggingConfig{
		LogLevel:    c.k.String(LOGGING_LEVEL),
		WriteInFile: c.k.Bool(LOGGING_WRITE_IN_FILE),
		FilePath:    c.k.String(LOGGING_FILE_PATH),
		MaxSize:     c.k.Int(LOGGING_MAX_SIZE),
		MaxBackups:  c.k.Int(LOGGING_MAX_BACKUPS),
		MaxAge:      c.k.Int(LOGGING_MAX_AGE),
		Compress:    c.k.Bool(LOGGING_COMPRESS),
	}
}

func (c *Config) GetDatabaseDSN() string {
	dsn := c.k.String(DATABASE_DSN)
	parts := strings.Split(dsn, "?")
	path := parts[0]

	params := make(map[string]string)
	if len(parts) > 1 {
		for param := range strings.SplitSeq(parts[1], "&") {
			if kv := strings.Split(param, "="); len(kv) == 2 {
				params[kv[0]] = kv[1]
			}
		}
	}

	for k, v := range defaultSQLiteParams {
		if _, exists := params[k]; !exists {
			params[k] = v
		}
	}

	var queryParams []string
	for k, v := range params {
		queryParams = append(queryParams, k+"="+v)
	}
	sort.Strings(queryParams)

	if len(queryParams) > 0 {
		return path + "?" + strings.Join(queryParams, "&")
	}
	return path
}

func (c *Config) Global() globalConfig {
	return globalConfig{
		TaskRetentionDays: c.k.Int(GLOBAL_TASK_RETENTION_DAYS),
		InterfaceLanguage: c.k.String(GLOBAL_LANGUAGE),
		BotName:           c.k.String(GLOBAL_BOT_NAME),
	}
}

func (c *Config) HTTP() HTTPConfig {
	var proxy string
	if proxyValue, ok := c.k.Get(HTTP_PROXY).(string); ok {
		proxy = proxyValue
	}

	return HTTPConfig{
		proxy:   &proxy,
		noProxy: c.k.Strings(HTTP_NO_PROXY),
	}
}

func (c *Config) AI() AIConfig {
	var cfg AIConfig
	if err := c.k.Unmarshal("ai", &cfg); err != nil {
		log.Fatalf("aiConfig unmarshal error: %v", err)
		return AIConfig{}
	}
	if len(cfg.Backends) == 0 {
		cfg.Backends = DefaultBackends()
	}
	if len(cfg.Candidates) == 0 {
		cfg.Candidates = DefaultCandidates()
	}
	for i := range cfg.Candidates {
		if cfg.Candidates[i].Backend == "" {
			cfg.Candidates[i].Backend = cfg.DefaultBackend()
		}
		if cfg.Candidates[i].Timeout == 0 {
			cfg.Candidates[i].Timeout = cfg.DefaultTimeout
		}
	}
	return cfg
}

func (c *Config) Limits() LimitsConfig {
	return LimitsConfig{
		DailyRequestLimit: c.k.Int(LIMITS_DAILY_REQUEST_LIMIT),
		RequestTimeout:    c.k.Duration(LIMITS_REQUEST_TIMEOUT),
		MaxPromptLength:   c.k.Int(LIMITS_MAX_PROMPT_LENGTH),
		MinResponseLength: c.k.Int(LIMITS_MIN_RESPONSE_LENGTH),
		ThrottleCallbacks: c.k.Bool(LIMITS_THROTTLE_CALLBACKS),
	}
}

func (c *Config) Demo() DemoConfig {
	return DemoConfig{
		AnimationInterval: c.k.Duration(DEMO_ANIMATION_INTERVAL),
	}
}

func (c *Config) Broadcast() BroadcastConfig {
	return BroadcastConfig{
		PrivateDelay: c.k.Duration(BROADCAST_PRIVATE_DELAY),
		GroupDelay:   c.k.Duration(BROADCAST_GROUP_DELAY),
	}
}

func (c *Config) Scheduler() SchedulerConfig {
	return SchedulerConfig{
		PurgeCron: c.k.String(SCHEDULER_PURGE_CRON),
		StatsCron: c.k.String(SCHEDULER_STATS_CRON),
	}
}

// DefaultBackends points at a local g4f interference API.
func DefaultBackends() []AIBackendConfig {
	return []AIBackendConfig{
		{
			Type:    BackendTypeOpenAICompatible,
			Name:    DEFAULT_G4F_BACKEND_NAME,
			BaseURL: DEFAULT_G4F_BACKEND_BASE_URL,
		},
	}
}

func DefaultCandidates() []AICandidateConfig {
	return []AICandidateConfig{
		{Backend: DEFAULT_G4F_BACKEND_NAME, Model: "blackboxai", Provider: "Blackbox", Timeout: 20 * time.Second},
		{Backend: DEFAULT_G4F_BACKEND_NAME, Model: "gpt-4", Provider: "Blackbox", Timeout: 22 * time.Second},
		{Backend: DEFAULT_G4F_BACKEND_NAME, Model: "gpt-4o", Provider: "Blackbox", Timeout: 20 * time.Second},
		{Backend: DEFAULT_G4F_BACKEND_NAME, Model: "gpt-4o-mini", Provider: "Blackbox", Timeout: 18 * time.Second},
		{Backend: DEFAULT_G4F_BACKEND_NAME, Model: "gpt-4", Timeout: 25 * time.Second, Throttled: true},
		{Backend: DEFAULT_G4F_BACKEND_NAME, Model: "gpt-4o-mini", Timeout: 20 * time.Second, Throttled: true},
	}
}

func getConfigPaths(explicit string) []string {
	if explicit != "" {
		return []string{explicit}
	}

	xdgConfig := os.Getenv("XDG_CONFIG_HOME")
	if xdgConfig == "" {
		home, _ := os.UserHomeDir()
		xdgConfig = filepath.Join(home, ".config")
	}

	return []string{
		"errorer.toml",
		"config.toml",
		filepath.Join(xdgConfig, "errorer", "config.toml"),
		"/etc/errorer/config.toml",
	}
}
