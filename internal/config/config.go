// Package config handles loading and validating the application configuration
// from YAML files with environment variable substitution.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"slices"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level application configuration.
type Config struct {
	API        APIConfig        `yaml:"api"`
	Browse     BrowseConfig     `yaml:"browse"`
	RateLimit  RateLimitConfig  `yaml:"rate_limit"`
	Categories CategoriesConfig `yaml:"categories"`
	Logging    LoggingConfig    `yaml:"logging"`
	Telemetry  TelemetryConfig  `yaml:"telemetry"`
}

// APIConfig defines the catalog backend location.
type APIConfig struct {
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"`
	Paths   PathsConfig   `yaml:"paths"`
}

// PathsConfig overrides backend endpoint paths. Empty values keep the
// client's defaults.
type PathsConfig struct {
	Products   string `yaml:"products"`
	Filter     string `yaml:"filter"`
	Search     string `yaml:"search"`
	Categories string `yaml:"categories"`
}

// BrowseConfig defines request coordination behavior.
type BrowseConfig struct {
	Debounce       time.Duration `yaml:"debounce"`
	MinQueryLength int           `yaml:"min_query_length"`
}

// RateLimitConfig defines client-side throttling of backend calls.
type RateLimitConfig struct {
	PerSecond float64       `yaml:"per_second"`
	Burst     int           `yaml:"burst"`
	Budget    int64         `yaml:"budget"` // calls per window; 0 disables
	Window    time.Duration `yaml:"window"`
}

// CategoriesConfig defines category list caching.
type CategoriesConfig struct {
	TTL             time.Duration `yaml:"ttl"`
	RefreshInterval time.Duration `yaml:"refresh_interval"`
}

// LoggingConfig defines logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text, json
	File   string `yaml:"file"`   // browse UI log destination
}

// TelemetryConfig defines OpenTelemetry trace export. Tracing is disabled
// when Endpoint is empty.
type TelemetryConfig struct {
	Endpoint    string  `yaml:"endpoint"`
	Insecure    bool    `yaml:"insecure"`
	ServiceName string  `yaml:"service_name"`
	SampleRatio float64 `yaml:"sample_ratio"`
}

// Load reads and parses a YAML config file, performing environment variable
// substitution and validation.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec // config path from trusted CLI flag
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	// Expand environment variables in the YAML content.
	expanded := os.ExpandEnv(string(data))

	cfg := &Config{}
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("parsing config YAML: %w", err)
	}

	applyDefaults(cfg)

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

// Validate checks cfg after flags or other overrides were applied.
func (c *Config) Validate() error {
	return validate(c)
}

func applyDefaults(cfg *Config) {
	applyAPIDefaults(&cfg.API)
	applyBrowseDefaults(&cfg.Browse)
	applyRateLimitDefaults(&cfg.RateLimit)
	applyCategoriesDefaults(&cfg.Categories)
	applyLoggingDefaults(&cfg.Logging)
	applyTelemetryDefaults(&cfg.Telemetry)
}

func applyAPIDefaults(a *APIConfig) {
	if a.BaseURL == "" {
		a.BaseURL = "http://localhost:8000"
	}
	if a.Timeout == 0 {
		a.Timeout = 10 * time.Second
	}
}

func applyBrowseDefaults(b *BrowseConfig) {
	if b.Debounce == 0 {
		b.Debounce = 500 * time.Millisecond
	}
	if b.MinQueryLength == 0 {
		b.MinQueryLength = 2
	}
}

func applyRateLimitDefaults(r *RateLimitConfig) {
	if r.PerSecond == 0 {
		r.PerSecond = 10.0
	}
	if r.Burst == 0 {
		r.Burst = 5
	}
	if r.Window == 0 {
		r.Window = time.Minute
	}
}

func applyCategoriesDefaults(c *CategoriesConfig) {
	if c.TTL == 0 {
		c.TTL = 5 * time.Minute
	}
	if c.RefreshInterval == 0 {
		c.RefreshInterval = 5 * time.Minute
	}
}

func applyLoggingDefaults(l *LoggingConfig) {
	if l.Level == "" {
		l.Level = "info"
	}
	if l.Format == "" {
		l.Format = "text"
	}
}

func applyTelemetryDefaults(t *TelemetryConfig) {
	if t.ServiceName == "" {
		t.ServiceName = "catalog-browser"
	}
	if t.SampleRatio == 0 {
		t.SampleRatio = 1.0
	}
}

var (
	validLevels  = []string{"debug", "info", "warn", "warning", "error"}
	validFormats = []string{"text", "json"}
)

func validate(cfg *Config) error {
	var errs []error

	u, err := url.Parse(cfg.API.BaseURL)
	switch {
	case err != nil:
		errs = append(errs, fmt.Errorf("api.base_url is not a valid URL: %w", err))
	case u.Scheme != "http" && u.Scheme != "https":
		errs = append(errs, fmt.Errorf("api.base_url must use http or https (got %q)", cfg.API.BaseURL))
	case u.Host == "":
		errs = append(errs, fmt.Errorf("api.base_url must include a host (got %q)", cfg.API.BaseURL))
	}
	if cfg.API.Timeout < 0 {
		errs = append(errs, fmt.Errorf("api.timeout must not be negative"))
	}

	if cfg.Browse.Debounce < 0 {
		errs = append(errs, fmt.Errorf("browse.debounce must not be negative"))
	}
	if cfg.Browse.MinQueryLength < 1 {
		errs = append(errs, fmt.Errorf("browse.min_query_length must be at least 1"))
	}

	if cfg.RateLimit.PerSecond < 0 {
		errs = append(errs, fmt.Errorf("rate_limit.per_second must not be negative"))
	}
	if cfg.RateLimit.Burst < 1 {
		errs = append(errs, fmt.Errorf("rate_limit.burst must be at least 1"))
	}
	if cfg.RateLimit.Budget < 0 {
		errs = append(errs, fmt.Errorf("rate_limit.budget must not be negative"))
	}

	if cfg.Categories.TTL < 0 {
		errs = append(errs, fmt.Errorf("categories.ttl must not be negative"))
	}
	if cfg.Categories.RefreshInterval < time.Second {
		errs = append(errs, fmt.Errorf("categories.refresh_interval must be at least 1s"))
	}

	if !slices.Contains(validLevels, cfg.Logging.Level) {
		errs = append(errs, fmt.Errorf(
			"logging.level must be one of: debug, info, warn, error (got %q)", cfg.Logging.Level,
		))
	}
	if !slices.Contains(validFormats, cfg.Logging.Format) {
		errs = append(errs, fmt.Errorf(
			"logging.format must be one of: text, json (got %q)", cfg.Logging.Format,
		))
	}

	if cfg.Telemetry.SampleRatio < 0 || cfg.Telemetry.SampleRatio > 1 {
		errs = append(errs, fmt.Errorf(
			"telemetry.sample_ratio must be between 0 and 1 (got %g)", cfg.Telemetry.SampleRatio,
		))
	}

	return errors.Join(errs...)
}
