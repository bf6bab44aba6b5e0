package generate

import (
	"errors"
	"fmt"
	"strings"
)

// Provider namespaces used in model ids.
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderLMStudio  = "lmstudio"
	ProviderOllama    = "ollama"
)

// Route is a parsed model id.
type Route struct {
	Provider string
	Model    string
}

// String returns the namespaced id for r.
func (r Route) String() string {
	if r.Provider == ProviderLMStudio {
		return ProviderLMStudio + ":" + r.Model
	}
	return r.Provider + "/" + r.Model
}

// ParseModelID splits a model id such as "openai/gpt-4o-mini" or
// "lmstudio:qwen2" into provider and model name. Ids without a recognized
// prefix go to Anthropic with the id used verbatim as the model name.
func ParseModelID(id string) (Route, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Route{}, errors.New("empty model id")
	}

	if name, ok := strings.CutPrefix(id, ProviderLMStudio+":"); ok {
		return routeOf(ProviderLMStudio, name, id)
	}
	for _, p := range []string{ProviderOpenAI, ProviderAnthropic, ProviderOllama} {
		if name, ok := strings.CutPrefix(id, p+"/"); ok {
			return routeOf(p, name, id)
		}
	}
	return Route{Provider: ProviderAnthropic, Model: id}, nil
}

func routeOf(provider, name, id string) (Route, error) {
	if name == "" {
		return Route{}, fmt.Errorf("model id %q has no model name", id)
	}
	return Route{Provider: provider, Model: name}, nil
}
