// Package config loads runtime configuration from the environment and an
// optional .env file using Viper.
package config

import (
	"errors"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config captures the runtime configuration for the PhotoMart CLI.
type Config struct {
	// APIBaseURL is the marketplace backend root (the /api prefix is added
	// by the client).
	APIBaseURL string `mapstructure:"API_URL"`
	// StateDir holds the encrypted token file and the cached user record.
	StateDir string `mapstructure:"STATE_DIR"`
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `mapstructure:"LOG_LEVEL"`
	// HTTPTimeout bounds every outbound request (e.g. "15s").
	HTTPTimeout string `mapstructure:"HTTP_TIMEOUT"`
	// RequestsPerSecond caps the outbound request rate; zero disables the throttle.
	RequestsPerSecond int `mapstructure:"REQUESTS_PER_SECOND"`
	// RequestBurst is the throttle burst allowance.
	RequestBurst int `mapstructure:"REQUEST_BURST"`
}

// Load reads .env (if present), then builds and validates Config from the
// environment. Env vars override .env values. Missing .env is ignored.
func Load() (Config, error) {
	v := viper.New()

	v.SetConfigFile(".env")
	v.SetConfigType("env")
	_ = v.ReadInConfig() // ignore ErrConfigFileNotFound

	v.SetEnvPrefix("PHOTOMART")
	v.AutomaticEnv()

	v.SetDefault("API_URL", "http://localhost:8000")
	v.SetDefault("STATE_DIR", defaultStateDir())
	v.SetDefault("LOG_LEVEL", "warn")
	v.SetDefault("HTTP_TIMEOUT", "15s")
	v.SetDefault("REQUESTS_PER_SECOND", 10)
	v.SetDefault("REQUEST_BURST", 5)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}

	cfg.APIBaseURL = strings.TrimRight(strings.TrimSpace(cfg.APIBaseURL), "/")
	if cfg.APIBaseURL == "" {
		return Config{}, errors.New("config: PHOTOMART_API_URL must be set")
	}
	if _, err := url.ParseRequestURI(cfg.APIBaseURL); err != nil {
		return Config{}, errors.New("config: PHOTOMART_API_URL is not a valid URL")
	}
	if cfg.StateDir == "" {
		return Config{}, errors.New("config: PHOTOMART_STATE_DIR must be set")
	}
	if cfg.RequestBurst <= 0 {
		cfg.RequestBurst = 1
	}

	return cfg, nil
}

// Timeout parses HTTPTimeout as a time.Duration. Returns 15s if unset or invalid.
func (c Config) Timeout() time.Duration {
	d, err := time.ParseDuration(c.HTTPTimeout)
	if err != nil || d <= 0 {
		return 15 * time.Second
	}
	return d
}

func defaultStateDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "photomart")
	}
	return ".photomart"
}
