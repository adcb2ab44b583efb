package agent

import "time"

const (
	defaultBaseURL   = "https://api.openai.com/v1"
	defaultMaxTokens = 4096
	defaultTimeout   = 120 * time.Second
)

// Config holds LLM provider initialization parameters. APIKey comes from the
// environment, never from a config file on disk.
type Config struct {
	BaseURL        string `json:"base_url,omitempty" yaml:"base_url,omitempty"`
	APIKey         string `json:"-" yaml:"-"`
	Model          string `json:"model,omitempty" yaml:"model,omitempty"`
	MaxTokens      int    `json:"max_tokens,omitempty" yaml:"max_tokens,omitempty"`
	TimeoutSeconds int    `json:"timeout_seconds,omitempty" yaml:"timeout_seconds,omitempty"`
}

// DefaultConfig returns the default provider configuration.
func DefaultConfig() Config {
	return Config{
		BaseURL:   defaultBaseURL,
		MaxTokens: defaultMaxTokens,
	}
}

// Merge applies non-zero values from source into c.
func (c *Config) Merge(source *Config) {
	if source.BaseURL != "" {
		c.BaseURL = source.BaseURL
	}
	if source.APIKey != "" {
		c.APIKey = source.APIKey
	}
	if source.Model != "" {
		c.Model = source.Model
	}
	if source.MaxTokens > 0 {
		c.MaxTokens = source.MaxTokens
	}
	if source.TimeoutSeconds > 0 {
		c.TimeoutSeconds = source.TimeoutSeconds
	}
}

// Timeout returns the HTTP timeout as a duration.
func (c *Config) Timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return defaultTimeout
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}
