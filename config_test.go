package ghostwrite

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearProviderEnv(t *testing.T) {
	t.Helper()
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("ANTHROPIC_API_KEY", "")
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, 1, cfg.Version)
	assert.Equal(t, "127.0.0.1:3000", cfg.Server.Listen)
	assert.Equal(t, "openai/gpt-4o-mini", cfg.Editor.DefaultModel)
	assert.Equal(t, "General AI Writer", cfg.Editor.DefaultPersona)
	assert.Equal(t, 8192, cfg.Editor.MaxInputLength)
	assert.Equal(t, 500, cfg.Editor.ThinkingDelayMS)
	assert.Equal(t, 2000, cfg.Editor.FetchDelayMS)
	assert.Equal(t, 50, cfg.Generation.MaxTokens)
	assert.Equal(t, "http://localhost:1234/v1", cfg.Providers.LMStudio.BaseURL)
	assert.Equal(t, "http://localhost:11434", cfg.Providers.Ollama.BaseURL)
}

func TestConfigDirEnvOverride(t *testing.T) {
	t.Setenv("GHOSTWRITE_CONFIG_DIR", "/custom/dir")
	assert.Equal(t, "/custom/dir", ConfigDir())
	assert.Equal(t, "/custom/dir/config.toml", ConfigPath())
	assert.Equal(t, "/custom/dir/prompt.md", PromptPath())
}

func TestConfigDirXDG(t *testing.T) {
	t.Setenv("GHOSTWRITE_CONFIG_DIR", "")
	t.Setenv("XDG_CONFIG_HOME", "/xdg")
	assert.Equal(t, "/xdg/ghostwrite", ConfigDir())
}

func TestLoadConfigMissingFileUsesDefaults(t *testing.T) {
	clearProviderEnv(t)
	cfg, err := loadConfigFrom(filepath.Join(t.TempDir(), "missing.toml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadConfigFileOverridesDefaults(t *testing.T) {
	clearProviderEnv(t)
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[editor]
default_model = "ollama/llama3.2"
fetch_delay_ms = 1500

[providers.openai]
api_key = "sk-file"
`), 0o644))

	cfg, err := loadConfigFrom(path)
	require.NoError(t, err)
	assert.Equal(t, "ollama/llama3.2", cfg.Editor.DefaultModel)
	assert.Equal(t, 1500, cfg.Editor.FetchDelayMS)
	assert.Equal(t, "sk-file", cfg.Providers.OpenAI.APIKey)
	// Untouched keys keep their defaults.
	assert.Equal(t, 500, cfg.Editor.ThinkingDelayMS)
	assert.Equal(t, "General AI Writer", cfg.Editor.DefaultPersona)
}

func TestLoadConfigEnvOverridesFile(t *testing.T) {
	clearProviderEnv(t)
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[editor]\ndefault_model = \"ollama/llama3.2\"\n"), 0o644))
	t.Setenv("GHOSTWRITE_EDITOR__DEFAULT_MODEL", "lmstudio:qwen2")
	t.Setenv("GHOSTWRITE_EDITOR__MAX_INPUT_LENGTH", "100")

	cfg, err := loadConfigFrom(path)
	require.NoError(t, err)
	assert.Equal(t, "lmstudio:qwen2", cfg.Editor.DefaultModel)
	assert.Equal(t, 100, cfg.Editor.MaxInputLength)
}

func TestLoadConfigStandardAPIKeyFallback(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-env")
	t.Setenv("ANTHROPIC_API_KEY", "ant-env")
	cfg, err := loadConfigFrom(filepath.Join(t.TempDir(), "missing.toml"))
	require.NoError(t, err)
	assert.Equal(t, "sk-env", cfg.Providers.OpenAI.APIKey)
	assert.Equal(t, "ant-env", cfg.Providers.Anthropic.APIKey)
}

func TestLoadConfigInvalidTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[editor\n"), 0o644))
	_, err := loadConfigFrom(path)
	assert.Error(t, err)
}

func TestEnvKey(t *testing.T) {
	key, value := envKey("GHOSTWRITE_PROVIDERS__OPENAI__API_KEY", "x")
	assert.Equal(t, "providers.openai.api_key", key)
	assert.Equal(t, "x", value)
}

func TestValidateConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Providers.OpenAI.APIKey = "sk"
	assert.Empty(t, ValidateConfig(cfg))

	cfg.Providers.OpenAI.APIKey = ""
	warnings := ValidateConfig(cfg)
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "OPENAI_API_KEY")

	cfg.Editor.DefaultModel = "anthropic/claude-3-haiku"
	cfg.Editor.MaxInputLength = 0
	cfg.Editor.FetchDelayMS = 100
	assert.Len(t, ValidateConfig(cfg), 3)

	assert.Empty(t, ValidateConfig(nil))
}

func TestMaskedDoesNotModifyOriginal(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Providers.Anthropic.APIKey = "secret"
	masked := cfg.Masked()
	assert.Equal(t, "***", masked.Providers.Anthropic.APIKey)
	assert.Equal(t, "", masked.Providers.OpenAI.APIKey)
	assert.Equal(t, "secret", cfg.Providers.Anthropic.APIKey)
}

func TestWriteTOML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteTOML(&buf, DefaultConfig()))
	out := buf.String()
	assert.Contains(t, out, "[editor]")
	assert.Contains(t, out, `default_model = "openai/gpt-4o-mini"`)
	assert.Contains(t, out, "[providers.lmstudio]")
}
