// Package file provides the TOML-based configuration adapter.
package file

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// Default configuration values.
const (
	DefaultIntervalMinutes = 60
	DefaultPageSize        = 100
	DefaultCommentWorkers  = 5
	DefaultServerAddr      = "127.0.0.1:8420"
)

// GitHubConfig configures the issue source.
type GitHubConfig struct {
	// Token is the API token. Falls back to $ISSUESCOPE_GITHUB_TOKEN,
	// then $GITHUB_TOKEN.
	Token string `toml:"token"`

	// Repo is the "owner/name" repository to track (required).
	Repo string `toml:"repo"`
}

// SyncConfig tunes the ingestion pipeline.
type SyncConfig struct {
	// IntervalMinutes is the scheduler period (default: 60).
	IntervalMinutes int `toml:"interval_minutes"`

	// PageSize is the number of issues fetched per page (default: 100).
	PageSize int `toml:"page_size"`

	// PageDelayMs is an optional pause between page fetches.
	PageDelayMs int `toml:"page_delay_ms"`

	// CommentWorkers caps concurrent comment fetches (default: 5).
	CommentWorkers int `toml:"comment_workers"`
}

// LLMConfig configures the summarization provider.
type LLMConfig struct {
	// Provider selects the adapter: "anthropic", "openai" or "" to
	// disable summarization.
	Provider string `toml:"provider"`

	// APIKey falls back to $ANTHROPIC_API_KEY or $OPENAI_API_KEY
	// depending on the provider.
	APIKey string `toml:"api_key"`

	// Model overrides the provider's default model.
	Model string `toml:"model"`
}

// ServerConfig configures the HTTP query surface.
type ServerConfig struct {
	// Addr is the listen address (default: 127.0.0.1:8420).
	Addr string `toml:"addr"`

	// Snapshot is an optional JSON snapshot file to load on startup and
	// reload when it changes on disk.
	Snapshot string `toml:"snapshot"`
}

// DataConfig configures local storage.
type DataConfig struct {
	// Dir is the data directory (default: ~/.issuescope/data).
	Dir string `toml:"dir"`
}

// Config is the typed application configuration.
type Config struct {
	GitHub GitHubConfig `toml:"github"`
	Sync   SyncConfig   `toml:"sync"`
	LLM    LLMConfig    `toml:"llm"`
	Server ServerConfig `toml:"server"`
	Data   DataConfig   `toml:"data"`
}

// DefaultPath returns the default configuration file location,
// ~/.issuescope/config.toml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".issuescope", "config.toml"), nil
}

// Load reads the configuration from path, applies environment fallbacks
// and defaults, and validates it. A missing file is not an error; the
// environment alone can carry a complete configuration.
func Load(path string) (*Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist):
		// Fall through to env fallbacks.
	default:
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	cfg.applyEnv()
	cfg.applyDefaults()

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyEnv() {
	if c.GitHub.Token == "" {
		c.GitHub.Token = os.Getenv("ISSUESCOPE_GITHUB_TOKEN")
	}
	if c.GitHub.Token == "" {
		c.GitHub.Token = os.Getenv("GITHUB_TOKEN")
	}
	if c.GitHub.Repo == "" {
		c.GitHub.Repo = os.Getenv("ISSUESCOPE_REPO")
	}

	if c.LLM.APIKey == "" {
		switch c.LLM.Provider {
		case "anthropic":
			c.LLM.APIKey = os.Getenv("ANTHROPIC_API_KEY")
		case "openai":
			c.LLM.APIKey = os.Getenv("OPENAI_API_KEY")
		}
	}
}

func (c *Config) applyDefaults() {
	if c.Sync.IntervalMinutes <= 0 {
		c.Sync.IntervalMinutes = DefaultIntervalMinutes
	}
	if c.Sync.PageSize <= 0 {
		c.Sync.PageSize = DefaultPageSize
	}
	if c.Sync.CommentWorkers <= 0 {
		c.Sync.CommentWorkers = DefaultCommentWorkers
	}
	if c.Server.Addr == "" {
		c.Server.Addr = DefaultServerAddr
	}
}

func (c *Config) validate() error {
	if c.GitHub.Repo == "" {
		return errors.New("config: github.repo is required")
	}
	switch c.LLM.Provider {
	case "", "anthropic", "openai":
	default:
		return fmt.Errorf("config: unsupported llm.provider %q", c.LLM.Provider)
	}
	return nil
}
