package generate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseModelID(t *testing.T) {
	tests := []struct {
		id       string
		provider string
		model    string
	}{
		{"openai/gpt-4o-mini", ProviderOpenAI, "gpt-4o-mini"},
		{"anthropic/claude-3-haiku-20240307", ProviderAnthropic, "claude-3-haiku-20240307"},
		{"ollama/llama3.2:latest", ProviderOllama, "llama3.2:latest"},
		{"lmstudio:qwen2-7b-instruct", ProviderLMStudio, "qwen2-7b-instruct"},
		{"lmstudio:org/model-gguf", ProviderLMStudio, "org/model-gguf"},
		{"claude-3-haiku-20240307", ProviderAnthropic, "claude-3-haiku-20240307"},
	}
	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			r, err := ParseModelID(tt.id)
			require.NoError(t, err)
			assert.Equal(t, tt.provider, r.Provider)
			assert.Equal(t, tt.model, r.Model)
		})
	}
}

func TestParseModelIDErrors(t *testing.T) {
	for _, id := range []string{"", "  ", "openai/", "lmstudio:"} {
		_, err := ParseModelID(id)
		assert.Error(t, err, "id %q", id)
	}
}

func TestRouteString(t *testing.T) {
	assert.Equal(t, "lmstudio:qwen2", Route{Provider: ProviderLMStudio, Model: "qwen2"}.String())
	assert.Equal(t, "openai/gpt-4o-mini", Route{Provider: ProviderOpenAI, Model: "gpt-4o-mini"}.String())
}
