package common

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "doctrina.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestDefaultConfig(t *testing.T) {
	cfg := NewDefaultConfig()

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 1000, cfg.Chunking.Size)
	assert.Equal(t, 200, cfg.Chunking.Overlap)
	assert.Equal(t, 3, cfg.Retrieval.TopK)
	assert.Equal(t, float32(0.7), cfg.Chat.Temperature)
	assert.Equal(t, LLMProviderLocal, cfg.LLM.DefaultProvider)
	assert.Equal(t, "http://localhost:1234", cfg.Local.BaseURL)
	assert.NoError(t, cfg.Validate())
}

func TestLoadFromFileOverridesDefaults(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "")
	path := writeConfigFile(t, `
environment = "production"

[server]
port = 9090

[chunking]
size = 500
overlap = 50

[llm]
default_provider = "claude"

[claude]
api_key = "test-key"
`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 500, cfg.Chunking.Size)
	assert.Equal(t, 50, cfg.Chunking.Overlap)
	assert.Equal(t, LLMProviderClaude, cfg.LLM.DefaultProvider)
	assert.Equal(t, "test-key", cfg.Claude.APIKey)
	assert.True(t, cfg.IsProduction())

	// Untouched sections keep their defaults
	assert.Equal(t, 3, cfg.Retrieval.TopK)
	assert.Equal(t, "localhost", cfg.Server.Host)
}

func TestLoadFromFileMissingPath(t *testing.T) {
	_, err := LoadFromFile("/does/not/exist.toml")
	assert.Error(t, err)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("DOCTRINA_SERVER_PORT", "7777")
	t.Setenv("DOCTRINA_LLM_DEFAULT_PROVIDER", "gemini")
	t.Setenv("GEMINI_API_KEY", "env-key")
	t.Setenv("DOCTRINA_CHAT_REQUIRE_INDEX", "true")

	cfg, err := LoadFromFile("")
	require.NoError(t, err)

	assert.Equal(t, 7777, cfg.Server.Port)
	assert.Equal(t, LLMProviderGemini, cfg.LLM.DefaultProvider)
	assert.Equal(t, "env-key", cfg.Gemini.APIKey)
	assert.True(t, cfg.Chat.RequireIndex)
}

func TestValidateRejectsBadValues(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.LLM.DefaultProvider = "openai"
	assert.Error(t, cfg.Validate())

	cfg = NewDefaultConfig()
	cfg.Chunking.Overlap = cfg.Chunking.Size
	assert.Error(t, cfg.Validate())

	cfg = NewDefaultConfig()
	cfg.Server.Port = -1
	assert.Error(t, cfg.Validate())
}

func TestApplyFlagOverrides(t *testing.T) {
	cfg := NewDefaultConfig()

	ApplyFlagOverrides(cfg, 3000, "0.0.0.0")
	assert.Equal(t, 3000, cfg.Server.Port)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)

	// Zero values leave config untouched
	ApplyFlagOverrides(cfg, 0, "")
	assert.Equal(t, 3000, cfg.Server.Port)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
}
