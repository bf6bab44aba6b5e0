package ghostwrite

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	koanftoml "github.com/knadh/koanf/parsers/toml/v2"
	koanfenv "github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	koanf "github.com/knadh/koanf/v2"

	defaults "github.com/Paranoid-AF/ghostwrite/default"
)

// Config represents the user's ghostwrite configuration.
type Config struct {
	Version    int              `toml:"version" koanf:"version" json:"version"`
	Server     ServerConfig     `toml:"server" koanf:"server" json:"server"`
	Editor     EditorConfig     `toml:"editor" koanf:"editor" json:"editor"`
	Logging    LoggingConfig    `toml:"logging" koanf:"logging" json:"logging"`
	Generation GenerationConfig `toml:"generation" koanf:"generation" json:"generation"`
	Cache      CacheConfig      `toml:"cache" koanf:"cache" json:"cache"`
	Providers  ProvidersConfig  `toml:"providers" koanf:"providers" json:"providers"`
}

// ServerConfig holds relay server settings.
type ServerConfig struct {
	// Listen is a TCP address ("127.0.0.1:3000") or "unix:/path/to.sock".
	Listen string `toml:"listen" koanf:"listen" json:"listen"`
}

// EditorConfig holds suggestion controller settings.
type EditorConfig struct {
	DefaultModel    string `toml:"default_model" koanf:"default_model" json:"default_model"`
	DefaultPersona  string `toml:"default_persona" koanf:"default_persona" json:"default_persona"`
	MaxInputLength  int    `toml:"max_input_length" koanf:"max_input_length" json:"max_input_length"`
	ThinkingDelayMS int    `toml:"thinking_delay_ms" koanf:"thinking_delay_ms" json:"thinking_delay_ms"`
	FetchDelayMS    int    `toml:"fetch_delay_ms" koanf:"fetch_delay_ms" json:"fetch_delay_ms"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `toml:"level" koanf:"level" json:"level"`
	// File enables a rotating log file when non-empty.
	File string `toml:"file" koanf:"file" json:"file"`
}

// GenerationConfig holds request parameters shared by all providers.
type GenerationConfig struct {
	MaxTokens   int     `toml:"max_tokens" koanf:"max_tokens" json:"max_tokens"`
	Temperature float64 `toml:"temperature" koanf:"temperature" json:"temperature"`
}

// CacheConfig holds completion cache settings.
type CacheConfig struct {
	// TTLSeconds is how long a completion for identical (model, persona, text)
	// is reused. 0 disables the cache.
	TTLSeconds int `toml:"ttl_seconds" koanf:"ttl_seconds" json:"ttl_seconds"`
}

// ProvidersConfig holds per-provider endpoints and credentials.
type ProvidersConfig struct {
	OpenAI    ProviderConfig `toml:"openai" koanf:"openai" json:"openai"`
	Anthropic ProviderConfig `toml:"anthropic" koanf:"anthropic" json:"anthropic"`
	LMStudio  ProviderConfig `toml:"lmstudio" koanf:"lmstudio" json:"lmstudio"`
	Ollama    ProviderConfig `toml:"ollama" koanf:"ollama" json:"ollama"`
}

// ProviderConfig holds settings for one completion provider.
type ProviderConfig struct {
	BaseURL string `toml:"base_url" koanf:"base_url" json:"base_url"`
	APIKey  string `toml:"api_key" koanf:"api_key" json:"api_key"`
}

// ConfigDir returns the config directory path.
// Resolution order: $GHOSTWRITE_CONFIG_DIR > $XDG_CONFIG_HOME/ghostwrite > ~/.config/ghostwrite
func ConfigDir() string {
	if dir := os.Getenv("GHOSTWRITE_CONFIG_DIR"); dir != "" {
		return dir
	}
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, "ghostwrite")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join("/tmp", "ghostwrite-config")
	}
	return filepath.Join(home, ".config", "ghostwrite")
}

// ConfigPath returns the full path to the config file.
func ConfigPath() string {
	return filepath.Join(ConfigDir(), "config.toml")
}

// PromptPath returns the custom prompt template path.
func PromptPath() string {
	return filepath.Join(ConfigDir(), "prompt.md")
}

// DefaultConfig returns the default configuration from the embedded default_config.toml.
func DefaultConfig() *Config {
	var cfg Config
	if _, err := toml.Decode(defaults.DefaultConfigTOML, &cfg); err != nil {
		panic("ghostwrite: invalid embedded default_config.toml: " + err.Error())
	}
	return &cfg
}

// LoadConfig layers the user's config file and GHOSTWRITE_* environment
// variables over the embedded defaults.
//
// Environment keys use a double underscore between sections, so
// GHOSTWRITE_EDITOR__DEFAULT_MODEL sets editor.default_model.
func LoadConfig() (*Config, error) {
	return loadConfigFrom(ConfigPath())
}

func loadConfigFrom(path string) (*Config, error) {
	cfg := DefaultConfig()
	k := koanf.New(".")

	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), koanftoml.Parser()); err != nil {
			return nil, fmt.Errorf("load %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, err
	}

	if err := k.Load(koanfenv.Provider(".", koanfenv.Opt{
		Prefix:        "GHOSTWRITE_",
		TransformFunc: envKey,
	}), nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	// Standard provider variables fill in keys the config leaves empty.
	if cfg.Providers.OpenAI.APIKey == "" {
		cfg.Providers.OpenAI.APIKey = os.Getenv("OPENAI_API_KEY")
	}
	if cfg.Providers.Anthropic.APIKey == "" {
		cfg.Providers.Anthropic.APIKey = os.Getenv("ANTHROPIC_API_KEY")
	}

	return cfg, nil
}

// envKey maps GHOSTWRITE_PROVIDERS__OPENAI__API_KEY to providers.openai.api_key.
func envKey(key, value string) (string, any) {
	key = strings.ToLower(strings.TrimPrefix(key, "GHOSTWRITE_"))
	return strings.ReplaceAll(key, "__", "."), value
}

// ValidateConfig checks configuration for potential issues and returns warnings.
func ValidateConfig(cfg *Config) []string {
	var warnings []string
	if cfg == nil {
		return warnings
	}
	if cfg.Editor.MaxInputLength <= 0 {
		warnings = append(warnings, "editor.max_input_length must be positive; suggestions will never be requested")
	}
	if cfg.Editor.FetchDelayMS < cfg.Editor.ThinkingDelayMS {
		warnings = append(warnings, "editor.fetch_delay_ms is shorter than editor.thinking_delay_ms; the thinking indicator will never show")
	}
	model := cfg.Editor.DefaultModel
	switch {
	case strings.HasPrefix(model, "openai/") && cfg.Providers.OpenAI.APIKey == "":
		warnings = append(warnings, "default model uses openai but no API key is configured; set OPENAI_API_KEY")
	case strings.HasPrefix(model, "anthropic/") && cfg.Providers.Anthropic.APIKey == "":
		warnings = append(warnings, "default model uses anthropic but no API key is configured; set ANTHROPIC_API_KEY")
	}
	return warnings
}

// Masked returns a copy of cfg with API keys replaced, safe to print or send.
func (cfg *Config) Masked() *Config {
	out := *cfg
	mask := func(p *ProviderConfig) {
		if p.APIKey != "" {
			p.APIKey = "***"
		}
	}
	mask(&out.Providers.OpenAI)
	mask(&out.Providers.Anthropic)
	mask(&out.Providers.LMStudio)
	mask(&out.Providers.Ollama)
	return &out
}

// WriteTOML encodes cfg as TOML.
func WriteTOML(w io.Writer, cfg *Config) error {
	return toml.NewEncoder(w).Encode(cfg)
}
