package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/tailored-agentic-units/agentbook/config"
	"github.com/tailored-agentic-units/agentbook/store"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"LLM_API_KEY", "OPENAI_API_KEY", "LLM_BASE_URL", "LLM_MODEL",
		"BOTBOOK_URL", "BOTBOOK_API_KEY",
		"AGENTBOOK_STORE_DRIVER", "AGENTBOOK_STORE_PATH", "AGENTBOOK_STORE_URL",
		"AGENTBOOK_MAX_ROUNDS", "AGENTBOOK_AUTO_INTERVAL",
	} {
		t.Setenv(key, "")
	}
}

func TestDefault(t *testing.T) {
	cfg := config.Default()

	if cfg.MaxRounds != 20 {
		t.Errorf("MaxRounds = %d, want 20", cfg.MaxRounds)
	}
	if cfg.AutoIntervalSeconds != 300 {
		t.Errorf("AutoIntervalSeconds = %d, want 300", cfg.AutoIntervalSeconds)
	}
	if cfg.WarmupSeconds != 10 {
		t.Errorf("WarmupSeconds = %d, want 10", cfg.WarmupSeconds)
	}
	if cfg.HistoryLimit != 20 {
		t.Errorf("HistoryLimit = %d, want 20", cfg.HistoryLimit)
	}
	if cfg.Store.Driver != store.DriverFile {
		t.Errorf("Store.Driver = %q, want file", cfg.Store.Driver)
	}
	if cfg.Forum.URL != "https://delta-lane.com" {
		t.Errorf("Forum.URL = %q", cfg.Forum.URL)
	}
}

func TestLoad_YAMLFile(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "agentbook.yaml")
	body := `
agent:
  model: gpt-4o-mini
  max_tokens: 1024
forum:
  url: https://forum.example.com
store:
  driver: sqlite
  path: /tmp/agent.db
max_rounds: 12
auto_interval_seconds: 60
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Agent.Model != "gpt-4o-mini" || cfg.Agent.MaxTokens != 1024 {
		t.Errorf("Agent = %+v", cfg.Agent)
	}
	if cfg.Forum.URL != "https://forum.example.com" {
		t.Errorf("Forum.URL = %q", cfg.Forum.URL)
	}
	if cfg.Store.Driver != store.DriverSQLite {
		t.Errorf("Store.Driver = %q", cfg.Store.Driver)
	}
	if cfg.MaxRounds != 12 || cfg.AutoIntervalSeconds != 60 {
		t.Errorf("rounds/interval = %d/%d", cfg.MaxRounds, cfg.AutoIntervalSeconds)
	}
	// Unset values keep their defaults.
	if cfg.WarmupSeconds != 10 {
		t.Errorf("WarmupSeconds = %d, want default 10", cfg.WarmupSeconds)
	}
}

func TestLoad_JSONFile(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "agentbook.json")
	body := `{"agent": {"model": "gpt-4o"}, "max_rounds": 8}`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Agent.Model != "gpt-4o" || cfg.MaxRounds != 8 {
		t.Errorf("cfg = model %q rounds %d", cfg.Agent.Model, cfg.MaxRounds)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	clearEnv(t)
	if _, err := config.Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("Load() error = nil for missing file")
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("LLM_MODEL", "env-model")
	t.Setenv("LLM_API_KEY", "env-key")
	t.Setenv("BOTBOOK_API_KEY", "forum-key")
	t.Setenv("AGENTBOOK_MAX_ROUNDS", "30")

	path := filepath.Join(t.TempDir(), "agentbook.yaml")
	if err := os.WriteFile(path, []byte("agent:\n  model: file-model\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Agent.Model != "env-model" {
		t.Errorf("Model = %q, env must override file", cfg.Agent.Model)
	}
	if cfg.Agent.APIKey != "env-key" || cfg.Forum.APIKey != "forum-key" {
		t.Errorf("keys not taken from env: %q / %q", cfg.Agent.APIKey, cfg.Forum.APIKey)
	}
	if cfg.MaxRounds != 30 {
		t.Errorf("MaxRounds = %d, want 30 from env", cfg.MaxRounds)
	}
}

func TestFromEnv_OpenAIKeyFallback(t *testing.T) {
	clearEnv(t)
	t.Setenv("OPENAI_API_KEY", "sk-fallback")

	if got := config.FromEnv().Agent.APIKey; got != "sk-fallback" {
		t.Errorf("APIKey = %q, want OPENAI_API_KEY fallback", got)
	}

	t.Setenv("LLM_API_KEY", "sk-primary")
	if got := config.FromEnv().Agent.APIKey; got != "sk-primary" {
		t.Errorf("APIKey = %q, LLM_API_KEY must win", got)
	}
}

func TestValidate(t *testing.T) {
	cfg := config.Default()
	if err := cfg.Validate(); !errors.Is(err, config.ErrMissingLLMKey) {
		t.Errorf("Validate() error = %v, want ErrMissingLLMKey", err)
	}

	cfg.Agent.APIKey = "k"
	if err := cfg.Validate(); !errors.Is(err, config.ErrMissingForumKey) {
		t.Errorf("Validate() error = %v, want ErrMissingForumKey", err)
	}

	cfg.Forum.APIKey = "f"
	if err := cfg.Validate(); err == nil {
		t.Error("Validate() error = nil without a model")
	}

	cfg.Agent.Model = "gpt-4o-mini"
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() error = %v, want nil", err)
	}
}
