package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"PORT", "AI_PROVIDER", "ARK_API_KEY", "ARK_ACCESS_KEY", "ARK_SECRET_KEY", "Model",
		"OPENAI_API_KEY", "OPENAI_MODEL", "OPENAI_BASE_URL", "GOOGLE_API_KEY", "GEMINI_MODEL",
		"GEMINI_BASE_URL", "AI_TEMPERATURE", "AI_TOP_P", "AI_MAX_TOKENS", "STORAGE_DRIVER",
		"STORAGE_KEY_PREFIX", "STORAGE_BOLT_PATH", "REDIS_ADDRESS", "REDIS_PASSWORD", "REDIS_DB",
		"REDIS_TTL", "DATABASE_URL", "DEFAULT_SESSION_ID", "TRANSLATE_TIMEOUT", "SUMMARY_TIMEOUT",
		"LOG_LEVEL", "LOG_PRETTY", "METRICS_ENABLED",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, ProviderArk, cfg.AI.Provider)
	assert.False(t, cfg.AI.Enabled())
	assert.Equal(t, DriverBolt, cfg.Storage.Driver)
	assert.Equal(t, "medical-chat-history", cfg.Storage.KeyPrefix)
	assert.Equal(t, "default", cfg.Conversation.DefaultSessionID)
	assert.Equal(t, 30*time.Second, cfg.Conversation.TranslateTimeout)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.True(t, cfg.MetricsEnabled)
}

func TestLoadServerAddr(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "127.0.0.1:9000")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:9000", cfg.Server.Addr)

	t.Setenv("PORT", "80 80")
	_, err = Load()
	assert.Error(t, err)
}

func TestGeminiSelectedFromGoogleKey(t *testing.T) {
	clearEnv(t)
	t.Setenv("GOOGLE_API_KEY", "g-key")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ProviderGemini, cfg.AI.Provider)
	assert.Equal(t, "gemini-2.5-flash", cfg.AI.OpenAIModel)
	assert.Equal(t, defaultGeminiBaseURL, cfg.AI.OpenAIBaseURL)
	assert.True(t, cfg.AI.Enabled())
}

func TestOpenAIProvider(t *testing.T) {
	clearEnv(t)
	t.Setenv("AI_PROVIDER", "openai")
	t.Setenv("OPENAI_API_KEY", "sk-test")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "gpt-4o-mini", cfg.AI.OpenAIModel)
	assert.True(t, cfg.AI.Enabled())
}

func TestArkEnabledWithKeyPair(t *testing.T) {
	clearEnv(t)
	t.Setenv("Model", "ep-123")
	t.Setenv("ARK_ACCESS_KEY", "ak")
	t.Setenv("ARK_SECRET_KEY", "sk")

	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.AI.Enabled())
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := map[string]string{
		"AI_PROVIDER":       "claude-ish",
		"STORAGE_DRIVER":    "floppy",
		"TRANSLATE_TIMEOUT": "soon",
		"SUMMARY_TIMEOUT":   "-5s",
		"REDIS_DB":          "zero",
		"LOG_PRETTY":        "sometimes",
		"AI_TEMPERATURE":    "warm",
	}

	for key, value := range cases {
		t.Run(key, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(key, value)
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestPostgresRequiresURL(t *testing.T) {
	clearEnv(t)
	t.Setenv("STORAGE_DRIVER", "postgres")

	_, err := Load()
	require.Error(t, err)

	t.Setenv("DATABASE_URL", "postgres://localhost/db")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, DriverPostgres, cfg.Storage.Driver)
}
