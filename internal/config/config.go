// Package config handles loading and saving user configuration for moodlog.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/f3rmion/moodlog/internal/journal"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// FileName is the config file inside the config directory.
const FileName = "config.yaml"

// EnvPrefix prefixes every environment override, e.g. MOODLOG_BACKEND_BASE_URL.
const EnvPrefix = "MOODLOG"

// Config holds all user configuration for moodlog.
type Config struct {
	Backend  BackendConfig  `yaml:"backend" mapstructure:"backend"`
	Analysis AnalysisConfig `yaml:"analysis" mapstructure:"analysis"`
	Health   HealthConfig   `yaml:"health" mapstructure:"health"`
	Log      LogConfig      `yaml:"log" mapstructure:"log"`
	History  HistoryConfig  `yaml:"history" mapstructure:"history"`
	Metrics  MetricsConfig  `yaml:"metrics" mapstructure:"metrics"`
}

// BackendConfig describes the analysis server.
type BackendConfig struct {
	BaseURL           string        `yaml:"base_url" mapstructure:"base_url"`
	Timeout           time.Duration `yaml:"timeout" mapstructure:"timeout"`
	RequestsPerMinute int           `yaml:"requests_per_minute" mapstructure:"requests_per_minute"` // 0 disables the limiter
}

// AnalysisConfig holds the per-request defaults.
type AnalysisConfig struct {
	ArticleCount int      `yaml:"article_count" mapstructure:"article_count"`
	Platforms    []string `yaml:"platforms" mapstructure:"platforms"`
}

// HealthConfig controls the backend health poller.
type HealthConfig struct {
	Interval time.Duration `yaml:"interval" mapstructure:"interval"`
}

// LogConfig controls the zap logger.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`   // debug, info, warn, error
	Format string `yaml:"format" mapstructure:"format"` // console or json
	File   string `yaml:"file" mapstructure:"file"`     // empty disables logging
}

// HistoryConfig controls the saved-reflection store.
type HistoryConfig struct {
	Enabled bool   `yaml:"enabled" mapstructure:"enabled"`
	Path    string `yaml:"path" mapstructure:"path"`
}

// MetricsConfig controls the optional Prometheus endpoint.
type MetricsConfig struct {
	Addr string `yaml:"addr" mapstructure:"addr"` // e.g. ":9464"; empty disables
}

// Default returns the built-in configuration rooted at dir.
func Default(dir string) *Config {
	return &Config{
		Backend: BackendConfig{
			BaseURL:           "http://localhost:8000",
			Timeout:           30 * time.Second,
			RequestsPerMinute: 20,
		},
		Analysis: AnalysisConfig{
			ArticleCount: journal.DefaultArticleCount,
			Platforms:    []string{"tiktok", "instagram", "twitter"},
		},
		Health: HealthConfig{Interval: 30 * time.Second},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
			File:   filepath.Join(dir, "moodlog.log"),
		},
		History: HistoryConfig{
			Enabled: true,
			Path:    filepath.Join(dir, "history.db"),
		},
	}
}

// SetDefaults registers the defaults of Default(dir) on v so that env
// variables and flags can override individual keys.
func SetDefaults(v *viper.Viper, dir string) {
	d := Default(dir)
	v.SetDefault("backend.base_url", d.Backend.BaseURL)
	v.SetDefault("backend.timeout", d.Backend.Timeout)
	v.SetDefault("backend.requests_per_minute", d.Backend.RequestsPerMinute)
	v.SetDefault("analysis.article_count", d.Analysis.ArticleCount)
	v.SetDefault("analysis.platforms", d.Analysis.Platforms)
	v.SetDefault("health.interval", d.Health.Interval)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
	v.SetDefault("log.file", d.Log.File)
	v.SetDefault("history.enabled", d.History.Enabled)
	v.SetDefault("history.path", d.History.Path)
	v.SetDefault("metrics.addr", d.Metrics.Addr)
}

// Load reads configuration from dir/config.yaml, dir/.env, ./.env and
// MOODLOG_* environment variables, in increasing priority. Flags bound
// on v take precedence over all of them. A missing config file is not
// an error.
func Load(v *viper.Viper, dir string) (*Config, error) {
	loadEnvFiles(dir)

	SetDefaults(v, dir)
	v.SetConfigFile(filepath.Join(dir, FileName))
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	cfg.normalize()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// LoadFile reads a config file without env or flag overrides.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := Default(filepath.Dir(path))
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}
	cfg.normalize()
	return cfg, nil
}

// Save writes cfg to path as YAML.
func Save(path string, cfg *Config) error {
	out, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.WriteFile(path, out, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

// Validate reports the first unusable setting.
func (c *Config) Validate() error {
	u, err := url.Parse(c.Backend.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("backend.base_url %q is not an absolute URL", c.Backend.BaseURL)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("backend.base_url must use http or https, got %q", u.Scheme)
	}
	if c.Backend.Timeout <= 0 {
		return fmt.Errorf("backend.timeout must be positive")
	}
	if c.Backend.RequestsPerMinute < 0 {
		return fmt.Errorf("backend.requests_per_minute must not be negative")
	}
	if c.Health.Interval <= 0 {
		return fmt.Errorf("health.interval must be positive")
	}
	if c.History.Enabled && c.History.Path == "" {
		return fmt.Errorf("history.path is required when history is enabled")
	}
	return nil
}

// ArticleCount returns the configured count clamped to the accepted range.
func (c *Config) ArticleCount() int {
	n := c.Analysis.ArticleCount
	switch {
	case n < journal.MinArticleCount:
		return journal.DefaultArticleCount
	case n > journal.MaxArticleCount:
		return journal.MaxArticleCount
	}
	return n
}

// Platforms returns the configured platforms restricted to the known set.
// An empty or entirely unknown list yields the defaults.
func (c *Config) Platforms() []journal.Platform {
	var out []journal.Platform
	seen := make(map[journal.Platform]bool)
	for _, name := range c.Analysis.Platforms {
		p, ok := journal.ParsePlatform(name)
		if !ok || seen[p] {
			continue
		}
		seen[p] = true
		out = append(out, p)
	}
	if len(out) == 0 {
		return journal.DefaultPlatforms()
	}
	return out
}

func (c *Config) normalize() {
	c.Backend.BaseURL = strings.TrimRight(strings.TrimSpace(c.Backend.BaseURL), "/")
	c.Log.Level = strings.ToLower(strings.TrimSpace(c.Log.Level))
	c.Log.Format = strings.ToLower(strings.TrimSpace(c.Log.Format))
	c.History.Path = expandHome(c.History.Path)
	c.Log.File = expandHome(c.Log.File)
}

// loadEnvFiles loads .env files without overriding variables already set.
func loadEnvFiles(dir string) {
	for _, p := range []string{".env", filepath.Join(dir, ".env")} {
		if _, err := os.Stat(p); err == nil {
			_ = godotenv.Load(p)
		}
	}
}

func expandHome(p string) string {
	if !strings.HasPrefix(p, "~/") {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	return filepath.Join(home, p[2:])
}

// GetConfigDir returns the default configuration directory.
func GetConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "moodlog"), nil
}

// EnsureConfigDir creates dir if it doesn't exist.
func EnsureConfigDir(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	return nil
}
