// Package config composes the section configurations into the root record
// loaded at startup. Resolution order is defaults, then an optional config
// file, then the environment; later layers override earlier ones.
// Credentials only ever come from the environment.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/tailored-agentic-units/agentbook/agent"
	"github.com/tailored-agentic-units/agentbook/forum"
	"github.com/tailored-agentic-units/agentbook/runtime"
	"github.com/tailored-agentic-units/agentbook/store"
)

// Defaults for the top-level knobs.
const (
	defaultMaxRounds       = 20
	defaultIntervalSeconds = 300
	defaultWarmupSeconds   = 10
	defaultHistoryLimit    = 20
	defaultContextMessages = 6
)

// Validation errors.
var (
	ErrMissingLLMKey   = errors.New("config: LLM api key not set (LLM_API_KEY)")
	ErrMissingForumKey = errors.New("config: forum api key not set (BOTBOOK_API_KEY)")
)

// Config is the root configuration record.
type Config struct {
	Agent agent.Config `json:"agent,omitempty" yaml:"agent,omitempty"`
	Forum forum.Config `json:"forum,omitempty" yaml:"forum,omitempty"`
	Store store.Config `json:"store,omitempty" yaml:"store,omitempty"`

	// MaxRounds is the hard per-run budget of model calls.
	MaxRounds int `json:"max_rounds,omitempty" yaml:"max_rounds,omitempty"`

	// AutoIntervalSeconds is the pause between autonomous cycles.
	AutoIntervalSeconds int `json:"auto_interval_seconds,omitempty" yaml:"auto_interval_seconds,omitempty"`

	// WarmupSeconds delays the first autonomous cycle after startup.
	WarmupSeconds int `json:"warmup_seconds,omitempty" yaml:"warmup_seconds,omitempty"`

	// HistoryLimit caps the persisted chat transcript.
	HistoryLimit int `json:"history_limit,omitempty" yaml:"history_limit,omitempty"`

	// ContextMessages is how much recent history seeds each run.
	ContextMessages int `json:"context_messages,omitempty" yaml:"context_messages,omitempty"`

	// Pricing overrides the built-in per-model cost table.
	Pricing map[string]runtime.Price `json:"pricing,omitempty" yaml:"pricing,omitempty"`

	// LogFile mirrors structured logs to a file when set.
	LogFile string `json:"log_file,omitempty" yaml:"log_file,omitempty"`

	// Verbose enables debug-level events.
	Verbose bool `json:"verbose,omitempty" yaml:"verbose,omitempty"`
}

// Default returns the root configuration defaults.
func Default() Config {
	return Config{
		Agent:               agent.DefaultConfig(),
		Forum:               forum.DefaultConfig(),
		Store:               store.DefaultConfig(),
		MaxRounds:           defaultMaxRounds,
		AutoIntervalSeconds: defaultIntervalSeconds,
		WarmupSeconds:       defaultWarmupSeconds,
		HistoryLimit:        defaultHistoryLimit,
		ContextMessages:     defaultContextMessages,
	}
}

// Merge applies non-zero values from source into c.
func (c *Config) Merge(source *Config) {
	c.Agent.Merge(&source.Agent)
	c.Forum.Merge(&source.Forum)
	c.Store.Merge(&source.Store)

	if source.MaxRounds > 0 {
		c.MaxRounds = source.MaxRounds
	}
	if source.AutoIntervalSeconds > 0 {
		c.AutoIntervalSeconds = source.AutoIntervalSeconds
	}
	if source.WarmupSeconds > 0 {
		c.WarmupSeconds = source.WarmupSeconds
	}
	if source.HistoryLimit > 0 {
		c.HistoryLimit = source.HistoryLimit
	}
	if source.ContextMessages > 0 {
		c.ContextMessages = source.ContextMessages
	}
	if len(source.Pricing) > 0 {
		if c.Pricing == nil {
			c.Pricing = make(map[string]runtime.Price, len(source.Pricing))
		}
		for model, price := range source.Pricing {
			c.Pricing[model] = price
		}
	}
	if source.LogFile != "" {
		c.LogFile = source.LogFile
	}
	if source.Verbose {
		c.Verbose = true
	}
}

// Load builds the effective configuration: defaults, overlaid with the
// file at path when non-empty, overlaid with the environment. The file
// format follows its extension; .json is JSON, anything else is YAML.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config: %w", err)
		}

		var file Config
		if filepath.Ext(path) == ".json" {
			err = json.Unmarshal(data, &file)
		} else {
			err = yaml.Unmarshal(data, &file)
		}
		if err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
		cfg.Merge(&file)
	}

	cfg.Merge(FromEnv())
	return cfg, nil
}

// FromEnv reads the environment overlay. Credentials live here and only
// here.
func FromEnv() *Config {
	var cfg Config

	cfg.Agent.APIKey = os.Getenv("LLM_API_KEY")
	if cfg.Agent.APIKey == "" {
		cfg.Agent.APIKey = os.Getenv("OPENAI_API_KEY")
	}
	cfg.Agent.BaseURL = os.Getenv("LLM_BASE_URL")
	cfg.Agent.Model = os.Getenv("LLM_MODEL")

	cfg.Forum.URL = os.Getenv("BOTBOOK_URL")
	cfg.Forum.APIKey = os.Getenv("BOTBOOK_API_KEY")

	cfg.Store.Driver = os.Getenv("AGENTBOOK_STORE_DRIVER")
	cfg.Store.Path = os.Getenv("AGENTBOOK_STORE_PATH")
	cfg.Store.URL = os.Getenv("AGENTBOOK_STORE_URL")

	cfg.MaxRounds = envInt("AGENTBOOK_MAX_ROUNDS")
	cfg.AutoIntervalSeconds = envInt("AGENTBOOK_AUTO_INTERVAL")

	return &cfg
}

// Validate checks that credentials required at runtime are present.
func (c *Config) Validate() error {
	if c.Agent.APIKey == "" {
		return ErrMissingLLMKey
	}
	if c.Forum.APIKey == "" {
		return ErrMissingForumKey
	}
	if c.Agent.Model == "" {
		return agent.ErrMissingModel
	}
	return nil
}

func envInt(key string) int {
	v := os.Getenv(key)
	if v == "" {
		return 0
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0
	}
	return n
}
