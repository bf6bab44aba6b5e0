package ghostwrite

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompleteRequestJSONKeys(t *testing.T) {
	req := CompleteRequest{RequestID: 42, SessionID: "s1", Text: "Hello,", Model: "openai/gpt-4o-mini"}
	data, err := json.Marshal(req)
	require.NoError(t, err)

	assert.Contains(t, string(data), `"request_id":42`)
	assert.Contains(t, string(data), `"session_id":"s1"`)
	assert.NotContains(t, string(data), `"persona"`, "empty persona should be omitted")

	var decoded CompleteRequest
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, req, decoded)
}

func TestCompleteResponseOmitsNilError(t *testing.T) {
	data, err := json.Marshal(CompleteResponse{RequestID: 7, Completion: " world"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"request_id":7,"completion":" world"}`, string(data))
}

func TestCompleteResponseWithError(t *testing.T) {
	resp := CompleteResponse{
		RequestID: 3,
		Error:     &Error{Code: CodeNotConfigured, Message: "no API key"},
	}
	data, err := json.Marshal(resp)
	require.NoError(t, err)

	var decoded CompleteResponse
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.NotNil(t, decoded.Error)
	assert.Equal(t, CodeNotConfigured, decoded.Error.Code)
	assert.Empty(t, decoded.Completion)
}

func TestConfigResponseCarriesMaskedConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Providers.OpenAI.APIKey = "sk-secret"
	data, err := json.Marshal(ConfigResponse{Config: cfg.Masked()})
	require.NoError(t, err)
	assert.NotContains(t, string(data), "sk-secret")
	assert.Contains(t, string(data), `"api_key":"***"`)
}
