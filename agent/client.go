package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/tailored-agentic-units/agentbook/core/protocol"
	"github.com/tailored-agentic-units/agentbook/core/response"
)

// client speaks the OpenAI-compatible chat completions protocol.
type client struct {
	id        string
	baseURL   string
	apiKey    string
	model     string
	maxTokens int
	http      *http.Client
}

func newClient(cfg *Config) (*client, error) {
	if cfg.Model == "" {
		return nil, ErrMissingModel
	}
	if cfg.APIKey == "" {
		return nil, ErrMissingAPIKey
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}

	return &client{
		id:        uuid.Must(uuid.NewV7()).String(),
		baseURL:   strings.TrimRight(baseURL, "/"),
		apiKey:    cfg.APIKey,
		model:     cfg.Model,
		maxTokens: maxTokens,
		http:      &http.Client{Timeout: cfg.Timeout()},
	}, nil
}

func (c *client) ID() string {
	return c.id
}

// toolDef is the nested tool definition shape of the chat completions API.
type toolDef struct {
	Type     string        `json:"type"`
	Function protocol.Tool `json:"function"`
}

type completionRequest struct {
	Model     string             `json:"model"`
	Messages  []protocol.Message `json:"messages"`
	MaxTokens int                `json:"max_tokens,omitempty"`
	Tools     []toolDef          `json:"tools,omitempty"`
}

func (c *client) Tools(ctx context.Context, messages []protocol.Message, catalog []protocol.Tool) (*response.ToolsResponse, error) {
	req := completionRequest{
		Model:     c.model,
		Messages:  messages,
		MaxTokens: c.maxTokens,
	}
	for _, t := range catalog {
		req.Tools = append(req.Tools, toolDef{Type: "function", Function: t})
	}

	body, err := c.post(ctx, req)
	if err != nil {
		return nil, err
	}
	return response.ParseTools(body)
}

func (c *client) Chat(ctx context.Context, messages []protocol.Message) (string, error) {
	body, err := c.post(ctx, completionRequest{
		Model:     c.model,
		Messages:  messages,
		MaxTokens: c.maxTokens,
	})
	if err != nil {
		return "", err
	}

	resp, err := response.ParseTools(body)
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", nil
	}
	return resp.Choices[0].Message.Content, nil
}

func (c *client) post(ctx context.Context, payload completionRequest) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal completion request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("completion request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read completion response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d: %s", ErrProviderStatus, resp.StatusCode, truncate(string(body), 300))
	}

	return body, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
