package generate

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownProvider is returned for a model id whose provider prefix is not routable.
	ErrUnknownProvider = errors.New("unknown provider")
	// ErrNotConfigured is returned when a provider needs an API key that is not set.
	ErrNotConfigured = errors.New("provider not configured")
)

// ProviderError wraps a failed completion call.
type ProviderError struct {
	Provider string
	Model    string
	// StatusCode is the upstream HTTP status, or 0 when no response was received.
	StatusCode int
	Err        error
}

func (e *ProviderError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s %s: status %d: %v", e.Provider, e.Model, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Provider, e.Model, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }
