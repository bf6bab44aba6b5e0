// Package generate routes continuation requests to model providers.
package generate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"text/template"
	"time"

	ghostwrite "github.com/Paranoid-AF/ghostwrite"
	defaults "github.com/Paranoid-AF/ghostwrite/default"
	"github.com/Paranoid-AF/ghostwrite/persona"
)

// modelMaxLengths lists known input limits in characters, keyed by model id
// or by provider namespace for providers serving arbitrary local models.
var modelMaxLengths = map[string]int{
	"anthropic/claude-3-haiku-20240307": 8192,
	"openai/gpt-4o-mini":                8192,
	ProviderLMStudio:                    8192,
}

// Engine resolves personas and prompts and dispatches completions to providers.
type Engine struct {
	providers    map[string]Provider
	config       *ghostwrite.Config
	cache        *CompletionCache
	customPrompt string // loaded custom prompt template (empty = use default)
	logger       *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithProvider registers p for a provider namespace, replacing the one built from config.
func WithProvider(name string, p Provider) Option {
	return func(e *Engine) { e.providers[name] = p }
}

// WithLogger sets the engine's logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// WithPromptTemplate overrides the user message template.
func WithPromptTemplate(tmpl string) Option {
	return func(e *Engine) { e.customPrompt = tmpl }
}

// NewEngine creates a completion engine from cfg. OpenAI and Anthropic are
// only available when their API keys are configured; local providers are
// always registered.
func NewEngine(cfg *ghostwrite.Config, opts ...Option) *Engine {
	if cfg == nil {
		cfg = ghostwrite.DefaultConfig()
	}
	gen := cfg.Generation
	p := cfg.Providers

	e := &Engine{
		providers:    make(map[string]Provider),
		config:       cfg,
		cache:        NewCompletionCache(time.Duration(cfg.Cache.TTLSeconds) * time.Second),
		customPrompt: loadCustomPrompt(),
		logger:       slog.Default(),
	}

	if p.OpenAI.APIKey != "" {
		e.providers[ProviderOpenAI] = NewChatCompletions(ProviderOpenAI, p.OpenAI.BaseURL, p.OpenAI.APIKey, gen.MaxTokens, gen.Temperature)
	}
	if p.Anthropic.APIKey != "" {
		e.providers[ProviderAnthropic] = NewLangChain(ProviderAnthropic, AnthropicFactory(p.Anthropic.APIKey, p.Anthropic.BaseURL), gen.MaxTokens, gen.Temperature)
	}
	e.providers[ProviderLMStudio] = NewChatCompletions(ProviderLMStudio, p.LMStudio.BaseURL, p.LMStudio.APIKey, gen.MaxTokens, gen.Temperature)
	e.providers[ProviderOllama] = NewLangChain(ProviderOllama, OllamaFactory(p.Ollama.BaseURL), gen.MaxTokens, gen.Temperature)

	for _, opt := range opts {
		opt(e)
	}
	return e
}

// loadCustomPrompt loads a custom prompt template.
// Returns empty string if no custom prompt exists.
func loadCustomPrompt() string {
	promptPath := ghostwrite.PromptPath()
	data, err := os.ReadFile(promptPath)
	if err != nil {
		return ""
	}
	slog.Info("loaded custom prompt", "path", promptPath)
	return string(data)
}

// Close releases resources held by the engine.
func (e *Engine) Close() {
	e.cache.Close()
}

// Complete returns the raw continuation of text from the model named by
// modelID, written in the voice of the named persona. Whitespace-only text
// yields an empty completion without calling a provider.
func (e *Engine) Complete(ctx context.Context, text, modelID, personaName string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", nil
	}

	route, err := ParseModelID(modelID)
	if err != nil {
		return "", err
	}
	provider, err := e.provider(route)
	if err != nil {
		return "", err
	}

	name, systemPrompt, fellBack := persona.Resolve(personaName)
	if fellBack {
		e.logger.Warn("unknown persona, using default", "persona", personaName, "default", name)
	}

	if cached, ok := e.cache.Get(route.String(), name, text); ok {
		e.logger.Debug("completion cache hit", "model", route.String())
		return cached, nil
	}

	userMessage := e.buildUserMessage(text)
	e.logger.Debug("prompt", "model", route.String(), "persona", name, "user", userMessage)

	start := time.Now()
	out, err := provider.Generate(ctx, route.Model, systemPrompt, userMessage)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		var perr *ProviderError
		if !errors.As(err, &perr) {
			err = &ProviderError{Provider: route.Provider, Model: route.Model, Err: err}
		}
		e.logger.Error("generation error", "model", route.String(), "error", err)
		return "", err
	}
	e.logger.Debug("generation done", "model", route.String(), "elapsed", time.Since(start))

	e.cache.Set(route.String(), name, text, out)
	return out, nil
}

func (e *Engine) provider(route Route) (Provider, error) {
	if p, ok := e.providers[route.Provider]; ok {
		return p, nil
	}
	switch route.Provider {
	case ProviderOpenAI:
		return nil, fmt.Errorf("%w: openai API key not set; set OPENAI_API_KEY or providers.openai.api_key", ErrNotConfigured)
	case ProviderAnthropic:
		return nil, fmt.Errorf("%w: anthropic API key not set; set ANTHROPIC_API_KEY or providers.anthropic.api_key", ErrNotConfigured)
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownProvider, route.Provider)
}

// MaxInputLength returns the input limit in characters for modelID, falling
// back to editor.max_input_length for models not in the table.
func (e *Engine) MaxInputLength(modelID string) int {
	if n, ok := modelMaxLengths[modelID]; ok {
		return n
	}
	if route, err := ParseModelID(modelID); err == nil {
		if n, ok := modelMaxLengths[route.Provider]; ok {
			return n
		}
	}
	return e.config.Editor.MaxInputLength
}

// PromptData holds the data passed to the prompt template.
type PromptData struct {
	Input string
}

// buildUserMessage renders the user message from the template.
func (e *Engine) buildUserMessage(input string) string {
	tmplSrc := e.customPrompt
	if tmplSrc == "" {
		tmplSrc = defaults.DefaultPrompt
	}

	data := PromptData{Input: input}

	t, err := template.New("prompt").Parse(tmplSrc)
	if err != nil {
		e.logger.Warn("failed to parse prompt template, falling back to default", "error", err)
		t = template.Must(template.New("prompt").Parse(defaults.DefaultPrompt))
	}

	var buf strings.Builder
	if err := t.Execute(&buf, data); err != nil {
		e.logger.Warn("failed to execute prompt template, falling back to default", "error", err)
		t = template.Must(template.New("prompt").Parse(defaults.DefaultPrompt))
		buf.Reset()
		t.Execute(&buf, data)
	}

	return strings.TrimSuffix(buf.String(), "\n")
}
