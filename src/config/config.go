// Package config loads service configuration: built-in defaults, an optional
// YAML file, then environment overrides, in that order.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Assistant AssistantConfig `yaml:"assistant"`
	Search    SearchConfig    `yaml:"search"`
	Log       LogConfig       `yaml:"log"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

type AssistantConfig struct {
	APIKey       string   `yaml:"-"` // env only, never from file
	BaseURL      string   `yaml:"base_url"`
	AssistantID  string   `yaml:"assistant_id"`
	Model        string   `yaml:"model"`
	Instructions string   `yaml:"instructions"`
	PollInterval Duration `yaml:"poll_interval"`
	RunTimeout   Duration `yaml:"run_timeout"`
}

// Duration lets YAML express durations as "5s" or "2m" rather than raw
// nanoseconds.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err == nil {
		v, err := time.ParseDuration(s)
		if err != nil {
			return fmt.Errorf("parse duration %q: %w", s, err)
		}
		*d = Duration(v)
		return nil
	}
	var n int64
	if err := value.Decode(&n); err != nil {
		return fmt.Errorf("parse duration: %w", err)
	}
	*d = Duration(n)
	return nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

type SearchConfig struct {
	// Mode selects where the content index lives: "local" runs it in-process,
	// "remote" calls a separate search service over HTTP.
	Mode    string         `yaml:"mode"`
	URL     string         `yaml:"url"` // remote mode
	Limit   int            `yaml:"limit"`
	CSVPath string         `yaml:"csv_path"`
	Store   StoreConfig    `yaml:"store"`
	Embed   EmbedderConfig `yaml:"embed"`
}

type StoreConfig struct {
	Type     string         `yaml:"type"` // "memory", "qdrant" or "postgres"
	Qdrant   QdrantConfig   `yaml:"qdrant"`
	Postgres PostgresConfig `yaml:"postgres"`
}

type QdrantConfig struct {
	URL        string `yaml:"url"`
	Collection string `yaml:"collection"`
	APIKey     string `yaml:"-"` // env only
}

type PostgresConfig struct {
	DSN string `yaml:"dsn"`
}

type EmbedderConfig struct {
	Provider string `yaml:"provider"` // "hashing", "openai" or "fastembed"
	Model    string `yaml:"model"`
	Dim      int    `yaml:"dim"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // "console" or "json"
}

// Default returns a Config populated with all default values.
func Default() *Config {
	return &Config{
		Server: ServerConfig{Host: "0.0.0.0", Port: 8080},
		Assistant: AssistantConfig{
			Model:        "gpt-4o-mini",
			PollInterval: Duration(5 * time.Second),
			RunTimeout:   Duration(2 * time.Minute),
		},
		Search: SearchConfig{
			Mode:    "remote",
			URL:     "http://localhost:5001",
			Limit:   5,
			CSVPath: "eds-content-data.csv",
			Store: StoreConfig{
				Type:   "memory",
				Qdrant: QdrantConfig{URL: "http://localhost:6333", Collection: "eds_content"},
			},
			Embed: EmbedderConfig{Provider: "hashing", Dim: 768},
		},
		Log: LogConfig{Level: "info", Format: "console"},
	}
}

// Load builds the configuration. path may be empty; a missing file at an
// explicitly given path is an error, absence of the default file is not.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) applyEnv() {
	setString(&c.Assistant.APIKey, "OPENAI_API_KEY")
	setString(&c.Assistant.AssistantID, "ASSISTANT_ID")
	setString(&c.Assistant.Model, "ASSISTANT_MODEL")
	setString(&c.Assistant.BaseURL, "OPENAI_BASE_URL")
	setString(&c.Search.URL, "SEARCH_URL")
	setString(&c.Search.Mode, "SEARCH_MODE")
	setString(&c.Search.CSVPath, "CONTENT_CSV")
	setString(&c.Search.Store.Type, "SEARCH_STORE")
	setString(&c.Search.Store.Qdrant.URL, "QDRANT_URL")
	setString(&c.Search.Store.Qdrant.Collection, "QDRANT_COLLECTION")
	setString(&c.Search.Store.Qdrant.APIKey, "QDRANT_API_KEY")
	setString(&c.Search.Store.Postgres.DSN, "POSTGRES_DSN")
	setString(&c.Search.Embed.Provider, "EMBED_PROVIDER")
	setString(&c.Search.Embed.Model, "EMBED_MODEL")
	setString(&c.Log.Level, "LOG_LEVEL")
	setString(&c.Server.Host, "HOST")
	setInt(&c.Server.Port, "PORT")
}

// Addr returns the listen address in host:port form.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}
