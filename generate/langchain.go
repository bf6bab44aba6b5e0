package generate

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/anthropic"
	"github.com/tmc/langchaingo/llms/ollama"
)

// ModelFactory builds a langchaingo model for a model name.
type ModelFactory func(model string) (llms.Model, error)

// LangChain adapts langchaingo models to Provider. Clients are built lazily
// per model name and reused.
type LangChain struct {
	name        string
	factory     ModelFactory
	maxTokens   int
	temperature float64

	mu     sync.Mutex
	models map[string]llms.Model
}

// NewLangChain creates a provider that builds models with factory.
func NewLangChain(name string, factory ModelFactory, maxTokens int, temperature float64) *LangChain {
	return &LangChain{
		name:        name,
		factory:     factory,
		maxTokens:   maxTokens,
		temperature: temperature,
		models:      make(map[string]llms.Model),
	}
}

// AnthropicFactory returns a factory for Anthropic models. baseURL may be empty.
func AnthropicFactory(apiKey, baseURL string) ModelFactory {
	return func(model string) (llms.Model, error) {
		opts := []anthropic.Option{
			anthropic.WithModel(model),
			anthropic.WithToken(apiKey),
		}
		if baseURL != "" {
			opts = append(opts, anthropic.WithBaseURL(baseURL))
		}
		return anthropic.New(opts...)
	}
}

// OllamaFactory returns a factory for models served by a local Ollama.
func OllamaFactory(serverURL string) ModelFactory {
	return func(model string) (llms.Model, error) {
		opts := []ollama.Option{ollama.WithModel(model)}
		if serverURL != "" {
			opts = append(opts, ollama.WithServerURL(serverURL))
		}
		return ollama.New(opts...)
	}
}

func (l *LangChain) model(name string) (llms.Model, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if m, ok := l.models[name]; ok {
		return m, nil
	}
	m, err := l.factory(name)
	if err != nil {
		return nil, err
	}
	l.models[name] = m
	return m, nil
}

// Generate sends the system prompt and user message as a single chat turn.
func (l *LangChain) Generate(ctx context.Context, model, systemPrompt, userMessage string) (string, error) {
	m, err := l.model(model)
	if err != nil {
		return "", &ProviderError{Provider: l.name, Model: model, Err: err}
	}

	var messages []llms.MessageContent
	if systemPrompt != "" {
		messages = append(messages, llms.TextParts(llms.ChatMessageTypeSystem, systemPrompt))
	}
	messages = append(messages, llms.TextParts(llms.ChatMessageTypeHuman, userMessage))

	resp, err := m.GenerateContent(ctx, messages,
		llms.WithMaxTokens(l.maxTokens),
		llms.WithTemperature(l.temperature),
	)
	if err != nil {
		return "", &ProviderError{Provider: l.name, Model: model, Err: err}
	}
	if resp == nil || len(resp.Choices) == 0 {
		return "", &ProviderError{Provider: l.name, Model: model, Err: fmt.Errorf("no choices in response")}
	}
	return strings.TrimSpace(resp.Choices[0].Content), nil
}
