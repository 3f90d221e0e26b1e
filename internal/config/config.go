package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

const (
	defaultBackendURL = "http://localhost:8080"
	defaultLogLevel   = "info"
)

type Config struct {
	Environment string `toml:"environment"`
	// backend
	BackendURL     string   `toml:"backend_url"`
	RequestTimeout Duration `toml:"request_timeout"`
	SyncStrategy   string   `toml:"sync_strategy"`
	// logging
	LogLevel      string `toml:"log_level"`
	LogsPath      string `toml:"logs_path"`
	LogToStdout   bool   `toml:"log_to_stdout"`
	SentryEnabled bool   `toml:"sentry_enabled"`
}

// Duration reads TOML strings like "5s"; zero means no timeout.
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	if len(text) == 0 {
		d.Duration = 0
		return nil
	}
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("parse duration %q: %w", text, err)
	}
	d.Duration = parsed
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

type Toml struct {
	Development *Config
	Production  *Config
}

func (t *Toml) Get(env string) (*Config, error) {
	var cfg *Config
	switch strings.ToLower(env) {
	case "dev", "development":
		cfg = t.Development
	case "prod", "production":
		cfg = t.Production
	default:
		return nil, fmt.Errorf("unknown env: %s", env)
	}
	if cfg == nil {
		return nil, fmt.Errorf("no config for env: %s", env)
	}
	return cfg, nil
}

// Load reads the TOML file at path and returns the config of env.
func Load(env, path string) (*Config, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}
	return Parse(env, string(content))
}

func Parse(env, content string) (*Config, error) {
	var t Toml
	if _, err := toml.Decode(content, &t); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	cfg, err := t.Get(env)
	if err != nil {
		return nil, err
	}
	cfg.applyDefaults(env)

	if cfg.RequestTimeout.Duration < 0 {
		return nil, fmt.Errorf("negative request timeout: %s", cfg.RequestTimeout)
	}
	return cfg, nil
}

func (c *Config) applyDefaults(env string) {
	if c.BackendURL == "" {
		c.BackendURL = defaultBackendURL
	}
	c.BackendURL = strings.TrimRight(c.BackendURL, "/")
	if c.LogLevel == "" {
		c.LogLevel = defaultLogLevel
	}
	if c.Environment == "" {
		c.Environment = strings.ToLower(env)
	}
}
