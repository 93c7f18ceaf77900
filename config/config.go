// Package config holds tracewire configuration, loadable from
// environment variables (with defaults) or a YAML file overlay.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/kelseyhightower/envconfig"
)

// Reporter kinds accepted by Config.Reporter.Kind.
const (
	ReporterLog  = "log"
	ReporterHTTP = "http"
	ReporterNone = "none"
)

// Sampling strategies accepted by Config.Sampling.Strategy.
const (
	SamplerAlways = "always"
	SamplerNever  = "never"
	SamplerRatio  = "ratio"
	SamplerRate   = "rate"
)

// Config holds all tracewire configuration.
type Config struct {
	Service  ServiceConfig  `yaml:"service"`
	Sampling SamplingConfig `yaml:"sampling"`
	Reporter ReporterConfig `yaml:"reporter"`
	Client   ClientConfig   `yaml:"client"`
	Debug    DebugConfig    `yaml:"debug"`
	Logging  LogConfig      `yaml:"logging"`
}

// ServiceConfig identifies the local service.
type ServiceConfig struct {
	Name string `envconfig:"SERVICE_NAME" default:"unknown-service" yaml:"name"`
}

// SamplingConfig selects the sampling strategy for new trace roots.
type SamplingConfig struct {
	// Strategy is one of always, never, ratio, rate.
	Strategy string `envconfig:"SAMPLING_STRATEGY" default:"always" yaml:"strategy"`

	// Ratio is the sampled fraction for the ratio strategy, in [0, 1].
	Ratio float64 `envconfig:"SAMPLING_RATIO" default:"0.1" yaml:"ratio"`

	// RatePerSecond caps sampled trace roots for the rate strategy.
	RatePerSecond float64 `envconfig:"SAMPLING_RATE" default:"10" yaml:"rate_per_second"`
}

// ReporterConfig selects and tunes the span sink.
type ReporterConfig struct {
	// Kind is one of log, http, none.
	Kind       string        `envconfig:"REPORTER" default:"log" yaml:"kind"`
	Endpoint   string        `envconfig:"REPORTER_ENDPOINT" yaml:"endpoint"`
	Timeout    time.Duration `envconfig:"REPORTER_TIMEOUT" default:"5s" yaml:"timeout"`
	Compress   bool          `envconfig:"REPORTER_COMPRESS" default:"false" yaml:"compress"`
	MaxRetries int           `envconfig:"REPORTER_MAX_RETRIES" default:"2" yaml:"max_retries"`

	// Buffer is the tracer's finished-span buffer size.
	Buffer int `envconfig:"REPORTER_BUFFER" default:"1000" yaml:"buffer"`
}

// ClientConfig holds defaults for client instrumentation.
type ClientConfig struct {
	// ServerName statically names the remote service when the request
	// adapter cannot resolve one. Empty means unset.
	ServerName string `envconfig:"CLIENT_SERVER_NAME" yaml:"server_name"`
}

// DebugConfig controls the optional debug HTTP server.
type DebugConfig struct {
	Enabled  bool   `envconfig:"DEBUG_ENABLED" default:"false" yaml:"enabled"`
	Host     string `envconfig:"DEBUG_HOST" default:"127.0.0.1" yaml:"host"`
	Port     string `envconfig:"DEBUG_PORT" default:"9411" yaml:"port"`
	RingSize int    `envconfig:"DEBUG_RING_SIZE" default:"256" yaml:"ring_size"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" default:"info" yaml:"level"`
	Development bool   `envconfig:"LOG_DEV" default:"false" yaml:"development"`
}

// Load reads configuration from TRACEWIRE_* environment variables, with
// defaults applied for anything unset.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("tracewire", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadFile reads environment configuration and overlays it with a YAML
// file, so file values win over env and defaults.
func LoadFile(path string) (*Config, error) {
	var cfg Config
	if err := envconfig.Process("tracewire", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadOrDefault loads configuration from the environment or falls back
// to defaults when that fails.
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// Default returns the built-in defaults.
func Default() *Config {
	return &Config{
		Service:  ServiceConfig{Name: "unknown-service"},
		Sampling: SamplingConfig{Strategy: SamplerAlways, Ratio: 0.1, RatePerSecond: 10},
		Reporter: ReporterConfig{Kind: ReporterLog, Timeout: 5 * time.Second, MaxRetries: 2, Buffer: 1000},
		Debug:    DebugConfig{Host: "127.0.0.1", Port: "9411", RingSize: 256},
		Logging:  LogConfig{Level: "info"},
	}
}

// Validate rejects configurations the library cannot act on.
func (c *Config) Validate() error {
	switch c.Sampling.Strategy {
	case SamplerAlways, SamplerNever:
	case SamplerRatio:
		if c.Sampling.Ratio < 0 || c.Sampling.Ratio > 1 {
			return fmt.Errorf("config: sampling ratio %v outside [0, 1]", c.Sampling.Ratio)
		}
	case SamplerRate:
		if c.Sampling.RatePerSecond < 0 {
			return fmt.Errorf("config: sampling rate %v must not be negative", c.Sampling.RatePerSecond)
		}
	default:
		return fmt.Errorf("config: unknown sampling strategy %q", c.Sampling.Strategy)
	}

	switch c.Reporter.Kind {
	case ReporterLog, ReporterNone:
	case ReporterHTTP:
		if c.Reporter.Endpoint == "" {
			return fmt.Errorf("config: http reporter requires an endpoint")
		}
	default:
		return fmt.Errorf("config: unknown reporter kind %q", c.Reporter.Kind)
	}

	return nil
}
