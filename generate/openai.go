package generate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Provider generates a raw completion for a system prompt and user message.
type Provider interface {
	Generate(ctx context.Context, model, systemPrompt, userMessage string) (string, error)
}

// ChatCompletions performs text generation via an OpenAI-compatible
// chat completions API. It serves both OpenAI and LM Studio.
type ChatCompletions struct {
	name        string
	baseURL     string
	apiKey      string
	maxTokens   int
	temperature float64
	client      *http.Client
}

// NewChatCompletions creates a chat completions provider. name is used in errors.
func NewChatCompletions(name, baseURL, apiKey string, maxTokens int, temperature float64) *ChatCompletions {
	return &ChatCompletions{
		name:        name,
		baseURL:     strings.TrimRight(baseURL, "/"),
		apiKey:      apiKey,
		maxTokens:   maxTokens,
		temperature: temperature,
		client:      &http.Client{Timeout: 30 * time.Second},
	}
}

type chatCompletionsRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature float64       `json:"temperature,omitempty"`
	Stream      bool          `json:"stream"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionsResponse struct {
	Choices []chatChoice `json:"choices"`
	Error   *apiError    `json:"error,omitempty"`
}

type chatChoice struct {
	Message chatMessage `json:"message"`
}

type apiError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}

// Generate sends one chat completions request and returns the first choice's content.
func (c *ChatCompletions) Generate(ctx context.Context, model, systemPrompt, userMessage string) (string, error) {
	messages := make([]chatMessage, 0, 2)
	if systemPrompt != "" {
		messages = append(messages, chatMessage{Role: "system", Content: systemPrompt})
	}
	messages = append(messages, chatMessage{Role: "user", Content: userMessage})

	data, err := json.Marshal(chatCompletionsRequest{
		Model:       model,
		Messages:    messages,
		MaxTokens:   c.maxTokens,
		Temperature: c.temperature,
	})
	if err != nil {
		return "", err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(data))
	if err != nil {
		return "", c.fail(model, 0, err)
	}
	c.setHeaders(httpReq)

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return "", c.fail(model, 0, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", c.fail(model, resp.StatusCode, err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", c.fail(model, resp.StatusCode, fmt.Errorf("API error: %s", strings.TrimSpace(string(body))))
	}

	var result chatCompletionsResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return "", c.fail(model, resp.StatusCode, fmt.Errorf("failed to parse response: %w (body: %s)", err, string(body)))
	}

	if result.Error != nil {
		return "", c.fail(model, resp.StatusCode, fmt.Errorf("API error: %s", result.Error.Message))
	}

	if len(result.Choices) == 0 {
		return "", c.fail(model, resp.StatusCode, fmt.Errorf("no choices in response"))
	}

	return strings.TrimSpace(result.Choices[0].Message.Content), nil
}

func (c *ChatCompletions) fail(model string, status int, err error) error {
	return &ProviderError{Provider: c.name, Model: model, StatusCode: status, Err: err}
}

// setHeaders sets common headers for API requests.
func (c *ChatCompletions) setHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
}
