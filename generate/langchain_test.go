package generate

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"
)

// stubModel records the messages and options it is called with.
type stubModel struct {
	reply    string
	err      error
	messages []llms.MessageContent
	opts     llms.CallOptions
}

func (m *stubModel) GenerateContent(_ context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	m.messages = messages
	for _, o := range options {
		o(&m.opts)
	}
	if m.err != nil {
		return nil, m.err
	}
	return &llms.ContentResponse{Choices: []*llms.ContentChoice{{Content: m.reply}}}, nil
}

func (m *stubModel) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return llms.GenerateFromSinglePrompt(ctx, m, prompt, options...)
}

func TestLangChainGenerate(t *testing.T) {
	stub := &stubModel{reply: " over the dog. "}
	var built []string
	lc := NewLangChain(ProviderAnthropic, func(model string) (llms.Model, error) {
		built = append(built, model)
		return stub, nil
	}, 50, 0.2)

	out, err := lc.Generate(context.Background(), "claude-3-haiku-20240307", "persona", "Continue: fox")
	require.NoError(t, err)
	assert.Equal(t, "over the dog.", out)

	require.Len(t, stub.messages, 2)
	assert.Equal(t, llms.ChatMessageTypeSystem, stub.messages[0].Role)
	assert.Equal(t, llms.ChatMessageTypeHuman, stub.messages[1].Role)
	assert.Equal(t, llms.TextContent{Text: "Continue: fox"}, stub.messages[1].Parts[0])
	assert.Equal(t, 50, stub.opts.MaxTokens)
	assert.InDelta(t, 0.2, stub.opts.Temperature, 1e-9)

	// The client for a model is built once.
	_, err = lc.Generate(context.Background(), "claude-3-haiku-20240307", "persona", "again")
	require.NoError(t, err)
	assert.Equal(t, []string{"claude-3-haiku-20240307"}, built)
}

func TestLangChainOmitsEmptySystemPrompt(t *testing.T) {
	stub := &stubModel{reply: "x"}
	lc := NewLangChain(ProviderOllama, func(string) (llms.Model, error) { return stub, nil }, 50, 0)
	_, err := lc.Generate(context.Background(), "llama3.2", "", "hi")
	require.NoError(t, err)
	require.Len(t, stub.messages, 1)
	assert.Equal(t, llms.ChatMessageTypeHuman, stub.messages[0].Role)
}

func TestLangChainErrorsAreProviderErrors(t *testing.T) {
	lc := NewLangChain(ProviderOllama, func(string) (llms.Model, error) {
		return &stubModel{err: errors.New("connection refused")}, nil
	}, 50, 0)
	_, err := lc.Generate(context.Background(), "llama3.2", "", "hi")
	var perr *ProviderError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, ProviderOllama, perr.Provider)
	assert.Equal(t, "llama3.2", perr.Model)

	failing := NewLangChain(ProviderAnthropic, func(string) (llms.Model, error) {
		return nil, errors.New("missing token")
	}, 50, 0)
	_, err = failing.Generate(context.Background(), "claude", "", "hi")
	require.ErrorAs(t, err, &perr)
	assert.Contains(t, err.Error(), "missing token")
}
