package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_FromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "errorer.toml")
	content := `
[telegram]
token = "123:abc"
admin_ids = [42]

[limits]
daily_request_limit = 7

[[ai.backends]]
type = "openrouter"
name = "or"
base_url = "https://openrouter.ai/api/v1"
env_api_key = "OR_KEY"

[[ai.candidates]]
backend = "or"
model = "meta-llama/llama-3-8b-instruct:free"
timeout = "7s"

[[ai.candidates]]
model = "gpt-4o-mini"
provider = "Blackbox"
throttled = true
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "123:abc", cfg.Telegram().Token)
	assert.True(t, cfg.Telegram().IsAdmin(42))
	assert.False(t, cfg.Telegram().IsAdmin(43))
	assert.Equal(t, 7, cfg.Limits().DailyRequestLimit)
	assert.Equal(t, 1000, cfg.Limits().MaxPromptLength)

	ai := cfg.AI()
	require.Len(t, ai.Backends, 1)
	require.Len(t, ai.Candidates, 2)
	assert.Equal(t, 7*time.Second, ai.Candidates[0].Timeout)
	assert.Equal(t, "or", ai.Candidates[1].Backend, "empty backend resolves to the first one")
	assert.Equal(t, 15*time.Second, ai.Candidates[1].Timeout)
	assert.True(t, ai.Candidates[1].Throttled)
}

func TestLoad_TokenRequired(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.toml")
	require.NoError(t, os.WriteFile(path, []byte("[logging]\nlevel = \"debug\"\n"), 0o600))

	_, err := Load(path)
	assert.ErrorIs(t, err, ErrTokenRequired)
}

func TestLoad_EnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "c.toml")
	require.NoError(t, os.WriteFile(path, []byte("[telegram]\ntoken = \"file\"\n"), 0o600))
	t.Setenv("ERRORER_TELEGRAM_TOKEN", "env")
	t.Setenv("ERRORER_LIMITS_DAILY__REQUEST__LIMIT", "3")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "env", cfg.Telegram().Token)
	assert.Equal(t, 3, cfg.Limits().DailyRequestLimit)
}

func TestNewFromMap_Defaults(t *testing.T) {
	cfg, err := NewFromMap(map[string]any{TELEGRAM_TOKEN: "x"})
	require.NoError(t, err)

	ai := cfg.AI()
	assert.Equal(t, DefaultBackends(), ai.Backends)
	assert.Len(t, ai.Candidates, len(DefaultCandidates()))
	assert.Equal(t, DEFAULT_FALLBACK_MESSAGE, ai.FallbackMessage)
	assert.Equal(t, 6, ai.MinLength)
	assert.Equal(t, 3*time.Second, ai.RateLimitPause)
	assert.Equal(t, 100, cfg.Limits().DailyRequestLimit)
	assert.Equal(t, 10*time.Second, cfg.Limits().RequestTimeout)
}

func TestValidate_RejectsUnknownBackend(t *testing.T) {
	_, err := NewFromMap(map[string]any{
		TELEGRAM_TOKEN: "x",
		AI_CANDIDATES: []map[string]any{
			{"backend": "missing", "model": "m"},
		},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown backend")
}

func TestValidate_RejectsBadLimits(t *testing.T) {
	_, err := NewFromMap(map[string]any{
		TELEGRAM_TOKEN:             "x",
		LIMITS_DAILY_REQUEST_LIMIT: 0,
	})
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "limits"))
}

func TestGetDatabaseDSN(t *testing.T) {
	cfg, err := NewFromMap(map[string]any{
		TELEGRAM_TOKEN: "x",
		DATABASE_DSN:   "bot.db?_journal=DELETE",
	})
	require.NoError(t, err)

	dsn := cfg.GetDatabaseDSN()
	assert.True(t, strings.HasPrefix(dsn, "bot.db?"))
	assert.Contains(t, dsn, "_journal=DELETE")
	assert.Contains(t, dsn, "_busy_timeout=10000")
}

func TestTelegramConfig_IsChatAllowed(t *testing.T) {
	assert.True(t, TelegramConfig{}.IsChatAllowed(-100))
	c := TelegramConfig{AllowedChats: []int64{-1}}
	assert.True(t, c.IsChatAllowed(-1))
	assert.False(t, c.IsChatAllowed(-2))
}

func TestHTTPConfig_GetNoProxy(t *testing.T) {
	t.Setenv("NO_PROXY", "localhost, *.local,,")
	assert.Equal(t, []string{"localhost", "*.local"}, HTTPConfig{}.GetNoProxy())
	assert.Equal(t, []string{"a"}, HTTPConfig{noProxy: []string{"a"}}.GetNoProxy())
}

func TestEnvKey(t *testing.T) {
	assert.Equal(t, "telegram.token", envKey("ERRORER_TELEGRAM_TOKEN"))
	assert.Equal(t, "ai.race.candidate_timeout", envKey("ERRORER_AI_RACE_CANDIDATE__TIMEOUT"))
}
