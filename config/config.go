// Package config loads SDK configuration for applications (the CLI and
// the examples) from a YAML file with environment-variable overrides.
//
// Precedence: defaults, then the YAML file, then the environment. The
// process environment is read here and nowhere else in the SDK, so the
// core stays testable without environment mutation.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	tripo "github.com/tripolabs/tripo-go"
)

// Environment variables recognized by FromEnv and Load.
const (
	EnvAPIKey              = "TRIPO_API_KEY"
	EnvBaseURL             = "TRIPO_BASE_URL"
	EnvTimeout             = "TRIPO_TIMEOUT"
	EnvPollInterval        = "TRIPO_POLL_INTERVAL"
	EnvMaxWait             = "TRIPO_MAX_WAIT"
	EnvDownloadDir         = "TRIPO_DOWNLOAD_DIR"
	EnvDownloadConcurrency = "TRIPO_DOWNLOAD_CONCURRENCY"
	EnvLogLevel            = "TRIPO_LOG_LEVEL"
)

// Config is the full application configuration.
type Config struct {
	Client   tripo.Config   `yaml:"client"`
	Poll     PollConfig     `yaml:"poll"`
	Download DownloadConfig `yaml:"download"`
	Log      LogConfig      `yaml:"log"`
}

// PollConfig configures WaitForTask behavior.
type PollConfig struct {
	Interval time.Duration `yaml:"interval"`
	MaxWait  time.Duration `yaml:"max_wait"`
}

// DownloadConfig configures result downloads.
type DownloadConfig struct {
	Dir         string `yaml:"dir"`
	Concurrency int    `yaml:"concurrency"`
}

// LogConfig configures the zap logger built by NewLogger.
type LogConfig struct {
	Level       string `yaml:"level"`       // debug, info, warn, error
	Development bool   `yaml:"development"` // console encoder instead of JSON
}

// Default returns the configuration baseline.
func Default() Config {
	return Config{
		Client: tripo.Config{
			BaseURL: tripo.DefaultBaseURL,
			Timeout: 30 * time.Second,
		},
		Poll: PollConfig{
			Interval: 2 * time.Second,
			MaxWait:  10 * time.Minute,
		},
		Download: DownloadConfig{
			Dir:         ".",
			Concurrency: 3,
		},
		Log: LogConfig{Level: "info"},
	}
}

// Load reads the YAML file at path (when non-empty) over the defaults and
// applies the environment on top.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parsing config file: %w", err)
		}
	}

	cfg.applyEnv()
	return cfg, nil
}

// FromEnv returns the defaults with environment overrides applied — for
// callers that want no file at all.
func FromEnv() Config {
	cfg := Default()
	cfg.applyEnv()
	return cfg
}

func (c *Config) applyEnv() {
	setString(&c.Client.APIKey, EnvAPIKey)
	setString(&c.Client.BaseURL, EnvBaseURL)
	setDuration(&c.Client.Timeout, EnvTimeout)
	setDuration(&c.Poll.Interval, EnvPollInterval)
	setDuration(&c.Poll.MaxWait, EnvMaxWait)
	setString(&c.Download.Dir, EnvDownloadDir)
	setInt(&c.Download.Concurrency, EnvDownloadConcurrency)
	setString(&c.Log.Level, EnvLogLevel)
}

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}

func setDuration(dst *time.Duration, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			*dst = d
		}
	}
}

func setInt(dst *int, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}
