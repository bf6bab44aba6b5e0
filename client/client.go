// Package client talks to a running ghostwrite relay. A Client can stand in
// for the in-process engine behind a suggestion controller.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	ghostwrite "github.com/Paranoid-AF/ghostwrite"
	"github.com/Paranoid-AF/ghostwrite/generate"
)

// Client calls the relay's HTTP API. Completion requests carry a per-client
// session id so the relay cancels a superseded request.
type Client struct {
	baseURL   string
	sessionID string
	nextID    atomic.Int64
	http      *http.Client
}

// New creates a client for the relay at baseURL (e.g. "http://127.0.0.1:3000").
func New(baseURL string) *Client {
	return &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		sessionID: uuid.NewString(),
		http:      &http.Client{Timeout: 60 * time.Second},
	}
}

// SessionID returns the id sent with every completion request.
func (c *Client) SessionID() string {
	return c.sessionID
}

// Complete requests a raw continuation of text.
func (c *Client) Complete(ctx context.Context, text, modelID, persona string) (string, error) {
	reqID := int(c.nextID.Add(1))
	body, err := json.Marshal(ghostwrite.CompleteRequest{
		RequestID: reqID,
		SessionID: c.sessionID,
		Text:      text,
		Model:     modelID,
		Persona:   persona,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/complete", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", c.fail(modelID, 0, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", c.fail(modelID, resp.StatusCode, err)
	}

	var out ghostwrite.CompleteResponse
	if err := json.Unmarshal(data, &out); err != nil {
		return "", c.fail(modelID, resp.StatusCode, fmt.Errorf("failed to parse response: %w (body: %s)", err, strings.TrimSpace(string(data))))
	}
	if out.Error != nil {
		return "", c.fail(modelID, resp.StatusCode, fmt.Errorf("%s: %s", out.Error.Code, out.Error.Message))
	}
	if resp.StatusCode != http.StatusOK {
		return "", c.fail(modelID, resp.StatusCode, fmt.Errorf("unexpected status"))
	}
	if out.RequestID != reqID {
		return "", c.fail(modelID, resp.StatusCode, fmt.Errorf("response for request %d, want %d", out.RequestID, reqID))
	}
	return out.Completion, nil
}

func (c *Client) fail(model string, status int, err error) error {
	return &generate.ProviderError{Provider: "relay", Model: model, StatusCode: status, Err: err}
}

// Models lists the relay's selectable models.
func (c *Client) Models(ctx context.Context) (*ghostwrite.ModelsResponse, error) {
	var out ghostwrite.ModelsResponse
	if err := c.get(ctx, "/api/models", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Personas lists the relay's personas.
func (c *Client) Personas(ctx context.Context) (*ghostwrite.PersonasResponse, error) {
	var out ghostwrite.PersonasResponse
	if err := c.get(ctx, "/api/personas", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) get(ctx context.Context, path string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("GET %s: status %d", path, resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(v)
}
