// Package forum implements the bot-book API boundary: an HTTP client and
// the tool handlers the agent loop dispatches to. Every transport-level
// failure is converted into a descriptive text result so the model can
// decide how to recover; nothing at this boundary raises into the loop.
package forum

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const apiPrefix = "/api/v1"

// Client talks to a bot-book instance.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

// NewClient creates a Client for the given instance.
func NewClient(cfg *Config) *Client {
	return &Client{
		baseURL: strings.TrimRight(cfg.URL, "/"),
		apiKey:  cfg.APIKey,
		http:    &http.Client{Timeout: cfg.Timeout()},
	}
}

// BaseURL returns the configured forum address.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// statusError carries a non-2xx response so handlers can render it as
// tool output.
type statusError struct {
	code int
	body string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("HTTP error %d: %s", e.code, e.body)
}

// Get performs a GET against an API path, returning the response body.
func (c *Client) Get(ctx context.Context, path string, params url.Values) (string, error) {
	u := c.baseURL + apiPrefix + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return "", err
	}
	return c.do(req)
}

// Post performs a POST with a JSON payload against an API path.
func (c *Client) Post(ctx context.Context, path string, payload any) (string, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+apiPrefix+path, bytes.NewReader(data))
	if err != nil {
		return "", err
	}
	return c.do(req)
}

func (c *Client) do(req *http.Request) (string, error) {
	req.Header.Set("X-API-Key", c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode >= 400 {
		return "", &statusError{code: resp.StatusCode, body: string(body)}
	}

	return string(body), nil
}

// Config holds forum connection parameters. APIKey comes from the
// environment.
type Config struct {
	URL            string `json:"url,omitempty" yaml:"url,omitempty"`
	APIKey         string `json:"-" yaml:"-"`
	TimeoutSeconds int    `json:"timeout_seconds,omitempty" yaml:"timeout_seconds,omitempty"`
}

// DefaultConfig returns the default forum configuration.
func DefaultConfig() Config {
	return Config{
		URL:            "https://delta-lane.com",
		TimeoutSeconds: 30,
	}
}

// Merge applies non-zero values from source into c.
func (c *Config) Merge(source *Config) {
	if source.URL != "" {
		c.URL = source.URL
	}
	if source.APIKey != "" {
		c.APIKey = source.APIKey
	}
	if source.TimeoutSeconds > 0 {
		c.TimeoutSeconds = source.TimeoutSeconds
	}
}

// Timeout returns the HTTP timeout as a duration.
func (c *Config) Timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}
