package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaults(t *testing.T) {
	cfg := Default()

	if cfg.Addr() != "0.0.0.0:8080" {
		t.Fatalf("default addr %q", cfg.Addr())
	}
	if cfg.Assistant.Model != "gpt-4o-mini" {
		t.Fatalf("default model %q", cfg.Assistant.Model)
	}
	if cfg.Assistant.PollInterval.Std() != 5*time.Second || cfg.Assistant.RunTimeout.Std() != 2*time.Minute {
		t.Fatalf("default run timings: %v %v", cfg.Assistant.PollInterval, cfg.Assistant.RunTimeout)
	}
	if cfg.Search.Mode != "remote" || cfg.Search.Limit != 5 {
		t.Fatalf("default search config: %+v", cfg.Search)
	}
	if cfg.Search.Store.Type != "memory" {
		t.Fatalf("default store %q", cfg.Search.Store.Type)
	}
}

func TestLoadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := `
server:
  port: 9000
assistant:
  model: gpt-4o
  poll_interval: 2s
search:
  mode: local
  store:
    type: qdrant
    qdrant:
      url: http://qdrant:6333
`
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 9000 {
		t.Fatalf("port %d", cfg.Server.Port)
	}
	if cfg.Assistant.Model != "gpt-4o" || cfg.Assistant.PollInterval.Std() != 2*time.Second {
		t.Fatalf("assistant config: %+v", cfg.Assistant)
	}
	if cfg.Search.Mode != "local" || cfg.Search.Store.Type != "qdrant" {
		t.Fatalf("search config: %+v", cfg.Search)
	}
	// Untouched fields keep their defaults.
	if cfg.Server.Host != "0.0.0.0" || cfg.Search.Limit != 5 {
		t.Fatalf("defaults lost on partial file: %+v", cfg)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("explicit but missing config path should error")
	}
}

func TestLoadEmptyPath(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load without a file: %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Fatalf("defaults not applied: %+v", cfg.Server)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("ASSISTANT_ID", "asst_override")
	t.Setenv("SEARCH_MODE", "local")
	t.Setenv("PORT", "7777")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Assistant.APIKey != "sk-test" || cfg.Assistant.AssistantID != "asst_override" {
		t.Fatalf("assistant env not applied: %+v", cfg.Assistant)
	}
	if cfg.Search.Mode != "local" || cfg.Server.Port != 7777 {
		t.Fatalf("env not applied: mode=%q port=%d", cfg.Search.Mode, cfg.Server.Port)
	}
}

func TestEnvIgnoresBadPort(t *testing.T) {
	t.Setenv("PORT", "not-a-number")
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Fatalf("unparseable port should keep the default, got %d", cfg.Server.Port)
	}
}
