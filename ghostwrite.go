// Package ghostwrite defines the request/response types spoken between the
// drafting client and the completion relay. Messages are JSON over HTTP.
package ghostwrite

// Error codes carried in Error.Code.
const (
	CodeInvalidRequest = "invalid_request"
	CodeNotConfigured  = "not_configured"
	CodeProviderError  = "provider_error"
	CodeUnknownAction  = "unknown_action"
	CodeConfigError    = "config_error"
)

// CompleteRequest asks the relay for a raw continuation of Text.
type CompleteRequest struct {
	// RequestID is a per-session incrementing identifier assigned by the client.
	// The relay echoes it back in the response for ordering.
	RequestID int `json:"request_id"`
	// SessionID identifies the drafting surface. A newer request for the same
	// session cancels the older one.
	SessionID string `json:"session_id,omitempty"`
	// Text is the full buffer to continue.
	Text string `json:"text"`
	// Model is a namespaced model id such as "openai/gpt-4o-mini" or "lmstudio:qwen2".
	Model string `json:"model"`
	// Persona names a system-prompt preset. Empty selects the default persona.
	Persona string `json:"persona,omitempty"`
}

// CompleteResponse carries the provider's raw completion. Clients clean it
// with suggest.Process before display.
type CompleteResponse struct {
	RequestID  int    `json:"request_id"`
	Completion string `json:"completion"`
	Error      *Error `json:"error,omitempty"`
}

// Error describes a relay-side error returned to the client.
type Error struct {
	// Code is a machine-readable error identifier (e.g. "not_configured", "provider_error").
	Code string `json:"code"`
	// Message is a human-readable error description.
	Message string `json:"message"`
}

// ModelInfo describes a selectable model.
type ModelInfo struct {
	// Value is the model id passed back in CompleteRequest.Model.
	Value string `json:"value"`
	// Label is a display name.
	Label string `json:"label"`
	// Provider is the routing namespace (openai, anthropic, lmstudio, ollama).
	Provider string `json:"provider"`
}

// ModelsResponse lists models in display order. Preferred is the model a
// client should select when the user has not chosen one.
type ModelsResponse struct {
	Models    []ModelInfo `json:"models"`
	Preferred string      `json:"preferred"`
	Error     *Error      `json:"error,omitempty"`
}

// PersonasResponse lists the available writing personas.
type PersonasResponse struct {
	Personas []string `json:"personas"`
	Default  string   `json:"default"`
}

// ConfigResponse is returned by the config endpoint.
type ConfigResponse struct {
	// Config is the current configuration (for "get" and "defaults" actions).
	// API keys are masked.
	Config *Config `json:"config,omitempty"`
	// Warnings contains configuration warnings (for "validate" action).
	Warnings []string `json:"warnings,omitempty"`
	// Error is set when the operation fails.
	Error *Error `json:"error,omitempty"`
}
