package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	MarketplaceURL      string   `json:"marketplace_url" yaml:"marketplace_url"`
	LintCommand         string   `json:"lint_command" yaml:"lint_command"`
	LintEnabled         bool     `json:"lint_enabled" yaml:"lint_enabled"`
	LintMaxConcurrent   int      `json:"lint_max_concurrent" yaml:"lint_max_concurrent"`
	LintTimeoutMS       int      `json:"lint_timeout_ms" yaml:"lint_timeout_ms"`
	RefreshIntervalMS   int      `json:"refresh_interval_ms" yaml:"refresh_interval_ms"`
	CacheDir            string   `json:"cache_dir" yaml:"cache_dir"` // "" means $XDG_STATE_HOME/cloudify-ls
	CacheTTLHours       int      `json:"cache_ttl_hours" yaml:"cache_ttl_hours"`
	MaxNumberOfProblems int      `json:"max_number_of_problems" yaml:"max_number_of_problems"`
	ExtraPlugins        []string `json:"extra_plugins" yaml:"extra_plugins"`
	ParserPoolSize      int      `json:"parser_pool_size" yaml:"parser_pool_size"`
}

var defaultConfig = Config{
	MarketplaceURL:      "https://marketplace.cloudify.co",
	LintCommand:         "cfy-lint",
	LintEnabled:         true,
	LintMaxConcurrent:   2,
	LintTimeoutMS:       30000,
	RefreshIntervalMS:   1000,
	CacheTTLHours:       24 * 7,
	MaxNumberOfProblems: 100,
	ParserPoolSize:      4,
}

// Default returns the configuration used when nothing is overridden.
func Default() Config {
	return defaultConfig
}

// Load overlays v, typically the LSP initialization options, on the
// defaults.
func Load(v any) (Config, error) {
	return defaultConfig.Overlay(v)
}

// Overlay returns c with the fields present in v replaced. v is anything
// that marshals to a JSON object with Config's field names.
func (c Config) Overlay(v any) (Config, error) {
	if v == nil {
		return c, c.Validate()
	}

	data, err := json.Marshal(v)
	if err != nil {
		return Config{}, fmt.Errorf("failed to marshal source: %w", err)
	}

	// only fields present in src will overwrite.
	c.ExtraPlugins = slices.Clone(c.ExtraPlugins)
	if err := json.Unmarshal(data, &c); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal into Config: %w", err)
	}

	return c, c.Validate()
}

// LoadFromYAML reads a YAML configuration file from r.
func LoadFromYAML(r io.Reader) (Config, error) {
	cfg := defaultConfig

	if err := yaml.NewDecoder(r).Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("failed to decode config: %w", err)
	}

	return cfg, cfg.Validate()
}

// LoadFile reads the YAML configuration file at path.
func LoadFile(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, err
	}
	defer f.Close()
	return LoadFromYAML(f)
}

// Validate rejects settings that cannot work.
func (c Config) Validate() error {
	switch {
	case c.LintMaxConcurrent < 1:
		return fmt.Errorf("lint_max_concurrent must be at least 1, got %d", c.LintMaxConcurrent)
	case c.ParserPoolSize < 1:
		return fmt.Errorf("parser_pool_size must be at least 1, got %d", c.ParserPoolSize)
	case c.RefreshIntervalMS < 0 || c.LintTimeoutMS < 0 || c.CacheTTLHours < 0:
		return errors.New("durations must not be negative")
	}
	return nil
}

func (c Config) LintTimeout() time.Duration {
	return time.Duration(c.LintTimeoutMS) * time.Millisecond
}

func (c Config) RefreshInterval() time.Duration {
	return time.Duration(c.RefreshIntervalMS) * time.Millisecond
}

func (c Config) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLHours) * time.Hour
}

// CachePath is the node type database file.
func (c Config) CachePath() string {
	dir := c.CacheDir
	if dir == "" {
		dir = filepath.Join(stateHome(), "cloudify-ls")
	}
	return filepath.Join(dir, "node-types.db")
}

func stateHome() string {
	if dir := os.Getenv("XDG_STATE_HOME"); dir != "" {
		return dir
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".local", "state")
	}
	return os.TempDir()
}
