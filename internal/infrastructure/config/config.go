package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all application configuration.
type Config struct {
	Server     ServerConfig
	Logging    LogConfig
	RateLimit  RateLimitConfig
	Session    SessionConfig
	Search     SearchConfig
	VFS        VFSConfig
	Assets     AssetsConfig
	Completion CompletionConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port string `envconfig:"PORT" default:"8000"`
	Host string `envconfig:"HOST" default:"0.0.0.0"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" default:"info"`
	Development bool   `envconfig:"LOG_DEV" default:"false"`
}

// RateLimitConfig holds rate limiting configuration.
type RateLimitConfig struct {
	RequestsPerSecond int  `envconfig:"RATE_LIMIT_RPS" default:"100"`
	Burst             int  `envconfig:"RATE_LIMIT_BURST" default:"200"`
	Enabled           bool `envconfig:"RATE_LIMIT_ENABLED" default:"true"`
}

// SessionConfig tunes the session registry and its host bridge.
type SessionConfig struct {
	Debounce    time.Duration `envconfig:"SESSION_DEBOUNCE" default:"10ms"`
	HistorySize int           `envconfig:"SESSION_HISTORY" default:"10"`
	RevealDelay time.Duration `envconfig:"REVEAL_DELAY" default:"100ms"`
}

// SearchConfig bounds regex work per match.
type SearchConfig struct {
	MatchTimeout time.Duration `envconfig:"SEARCH_MATCH_TIMEOUT" default:"1s"`
}

// VFSConfig describes the optional directory seeded into the virtual filesystem.
type VFSConfig struct {
	SeedDir     string   `envconfig:"VFS_SEED_DIR"`
	Patterns    []string `envconfig:"VFS_SEED_PATTERNS" default:"**/*.lua,**/*.txt,**/*.json"`
	MaxFileSize int64    `envconfig:"VFS_MAX_FILE_SIZE" default:"1048576"`
}

// AssetsConfig points at optional theme and snippet files.
type AssetsConfig struct {
	ThemesFile   string `envconfig:"THEMES_FILE"`
	SnippetsFile string `envconfig:"SNIPPETS_FILE"`
}

// CompletionConfig configures the remote completion feed.
type CompletionConfig struct {
	FeedURL     string        `envconfig:"COMPLETION_FEED_URL"`
	FeedTimeout time.Duration `envconfig:"COMPLETION_FEED_TIMEOUT" default:"15s"`
}

// Addr returns the listen address.
func (c ServerConfig) Addr() string {
	return c.Host + ":" + c.Port
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

// LoadOrDefault loads configuration from environment or returns default.
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// Validate rejects values the editor cannot run with.
func (c *Config) Validate() error {
	if c.Session.HistorySize < 1 {
		return fmt.Errorf("SESSION_HISTORY must be at least 1, got %d", c.Session.HistorySize)
	}
	if c.Session.Debounce < 0 || c.Session.RevealDelay < 0 {
		return fmt.Errorf("session delays must not be negative")
	}
	if c.Search.MatchTimeout <= 0 {
		return fmt.Errorf("SEARCH_MATCH_TIMEOUT must be positive")
	}
	if c.VFS.MaxFileSize <= 0 {
		return fmt.Errorf("VFS_MAX_FILE_SIZE must be positive")
	}
	return nil
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port: "8000",
			Host: "0.0.0.0",
		},
		Logging: LogConfig{
			Level:       "info",
			Development: false,
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 100,
			Burst:             200,
			Enabled:           true,
		},
		Session: SessionConfig{
			Debounce:    10 * time.Millisecond,
			HistorySize: 10,
			RevealDelay: 100 * time.Millisecond,
		},
		Search: SearchConfig{
			MatchTimeout: time.Second,
		},
		VFS: VFSConfig{
			Patterns:    []string{"**/*.lua", "**/*.txt", "**/*.json"},
			MaxFileSize: 1 << 20,
		},
		Completion: CompletionConfig{
			FeedTimeout: 15 * time.Second,
		},
	}
}
