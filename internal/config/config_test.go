package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("CHAT_PROVIDER", "gemini")
	t.Setenv("GEMINI_API_KEY", "test-key")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "test-key", cfg.GeminiAPIKey)
	assert.Equal(t, 120*time.Second, cfg.ChatTimeout)
	assert.Equal(t, "file", cfg.StoreBackend)
	assert.Equal(t, ".saves", cfg.Storage().Dir)
	assert.Equal(t, "game.log", cfg.Logging().OutputPath)
}

func TestLoadConfigMissingKey(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("CHAT_PROVIDER", "openai")
	t.Setenv("OPENAI_API_KEY", "")

	_, err := LoadConfig()
	assert.ErrorContains(t, err, "OPENAI_API_KEY")
}

func TestLoadConfigOllama(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("CHAT_PROVIDER", "ollama")
	t.Setenv("CHAT_MODEL", "qwen2.5:7b")
	t.Setenv("STORE_BACKEND", "sqlite")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "qwen2.5:7b", cfg.Chat().Model)
	assert.Equal(t, "sqlite", cfg.Storage().Backend)
}

func TestValidateUnknownProvider(t *testing.T) {
	cfg := &Config{ChatProvider: "smoke-signals"}
	assert.Error(t, cfg.Validate())
}
