package generate

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/jellydator/ttlcache/v3"
	"golang.org/x/sync/errgroup"

	ghostwrite "github.com/Paranoid-AF/ghostwrite"
)

const (
	modelListTTL     = 1 * time.Minute
	discoveryTimeout = 3 * time.Second
	modelListKey     = "models"
)

// DefaultModels are always offered after any discovered local models.
var DefaultModels = []ghostwrite.ModelInfo{
	{Value: "openai/gpt-4o-mini", Label: "GPT-4o Mini", Provider: ProviderOpenAI},
	{Value: "anthropic/claude-3-haiku-20240307", Label: "Claude 3 Haiku", Provider: ProviderAnthropic},
}

// ModelCatalog lists selectable models, discovering those served by local
// LM Studio and Ollama instances.
type ModelCatalog struct {
	lmstudioURL  string
	ollamaURL    string
	defaultModel string
	client       *http.Client
	cache        *ttlcache.Cache[string, []ghostwrite.ModelInfo]
	logger       *slog.Logger
}

// NewModelCatalog creates a catalog for the providers in cfg.
func NewModelCatalog(cfg *ghostwrite.Config, logger *slog.Logger) *ModelCatalog {
	if logger == nil {
		logger = slog.Default()
	}
	c := ttlcache.New[string, []ghostwrite.ModelInfo](
		ttlcache.WithTTL[string, []ghostwrite.ModelInfo](modelListTTL),
	)
	go c.Start()
	return &ModelCatalog{
		lmstudioURL:  strings.TrimRight(cfg.Providers.LMStudio.BaseURL, "/"),
		ollamaURL:    strings.TrimRight(cfg.Providers.Ollama.BaseURL, "/"),
		defaultModel: cfg.Editor.DefaultModel,
		client:       &http.Client{Timeout: discoveryTimeout},
		cache:        c,
		logger:       logger,
	}
}

// Close stops the cache expiration loop.
func (mc *ModelCatalog) Close() {
	mc.cache.Stop()
}

// List returns local models followed by DefaultModels, and the preferred
// model id: the first local model when any were found, otherwise the
// configured default model.
func (mc *ModelCatalog) List(ctx context.Context) ([]ghostwrite.ModelInfo, string) {
	models := mc.models(ctx)
	preferred := mc.defaultModel
	if len(models) > len(DefaultModels) {
		preferred = models[0].Value
	}
	return models, preferred
}

func (mc *ModelCatalog) models(ctx context.Context) []ghostwrite.ModelInfo {
	if item := mc.cache.Get(modelListKey); item != nil {
		return item.Value()
	}

	var lmstudio, ollama []ghostwrite.ModelInfo
	var g errgroup.Group
	if mc.lmstudioURL != "" {
		g.Go(func() error {
			models, err := mc.discoverLMStudio(ctx)
			if err != nil {
				mc.logger.Debug("lmstudio discovery failed", "error", err)
				return nil
			}
			lmstudio = models
			return nil
		})
	}
	if mc.ollamaURL != "" {
		g.Go(func() error {
			models, err := mc.discoverOllama(ctx)
			if err != nil {
				mc.logger.Debug("ollama discovery failed", "error", err)
				return nil
			}
			ollama = models
			return nil
		})
	}
	_ = g.Wait()

	out := make([]ghostwrite.ModelInfo, 0, len(lmstudio)+len(ollama)+len(DefaultModels))
	out = append(out, lmstudio...)
	out = append(out, ollama...)
	out = append(out, DefaultModels...)

	// Only remember successful discoveries so a server started later is picked up.
	if len(out) > len(DefaultModels) {
		mc.cache.Set(modelListKey, out, ttlcache.DefaultTTL)
	}
	return out
}

type lmstudioModels struct {
	Data []struct {
		ID string `json:"id"`
	} `json:"data"`
}

func (mc *ModelCatalog) discoverLMStudio(ctx context.Context) ([]ghostwrite.ModelInfo, error) {
	var resp lmstudioModels
	if err := mc.getJSON(ctx, mc.lmstudioURL+"/models", &resp); err != nil {
		return nil, err
	}
	models := make([]ghostwrite.ModelInfo, 0, len(resp.Data))
	for _, m := range resp.Data {
		if m.ID == "" {
			continue
		}
		models = append(models, ghostwrite.ModelInfo{
			Value:    ProviderLMStudio + ":" + m.ID,
			Label:    FriendlyModelName(m.ID),
			Provider: ProviderLMStudio,
		})
	}
	return models, nil
}

type ollamaTags struct {
	Models []struct {
		Name string `json:"name"`
	} `json:"models"`
}

func (mc *ModelCatalog) discoverOllama(ctx context.Context) ([]ghostwrite.ModelInfo, error) {
	var resp ollamaTags
	if err := mc.getJSON(ctx, mc.ollamaURL+"/api/tags", &resp); err != nil {
		return nil, err
	}
	models := make([]ghostwrite.ModelInfo, 0, len(resp.Models))
	for _, m := range resp.Models {
		if m.Name == "" {
			continue
		}
		models = append(models, ghostwrite.ModelInfo{
			Value:    ProviderOllama + "/" + m.Name,
			Label:    FriendlyModelName(strings.TrimSuffix(m.Name, ":latest")),
			Provider: ProviderOllama,
		})
	}
	return models, nil
}

func (mc *ModelCatalog) getJSON(ctx context.Context, url string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := mc.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("GET %s: status %d", url, resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(v)
}

var versionPart = regexp.MustCompile(`^[0-9.]+[a-z]?$`)

// FriendlyModelName turns a hyphenated model id into a display label,
// e.g. "llama-3.2-1b-instruct" becomes "LLAMA 3.2 1B Instruct".
func FriendlyModelName(name string) string {
	parts := strings.Split(name, "-")
	for i, part := range parts {
		switch {
		case i == 0, versionPart.MatchString(part):
			parts[i] = strings.ToUpper(part)
		case part != "":
			parts[i] = strings.ToUpper(part[:1]) + part[1:]
		}
	}
	return strings.Join(parts, " ")
}
