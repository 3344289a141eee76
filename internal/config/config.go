// Package config loads docmirror configuration. Every setting has a
// hard-coded default; a TOML config file overrides defaults and
// environment variables override both. A .env file in the working
// directory is honoured.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

// Config holds the runtime settings of the pipeline. It is passed
// explicitly into each component at construction; there is no global
// settings object.
type Config struct {
	// Timeout bounds each network request.
	Timeout time.Duration

	// MaxRetries is how many attempts a download gets before its
	// failure is recorded in the ledger.
	MaxRetries int

	// RetryDelay is the linear backoff base: failed attempt n waits
	// n * RetryDelay before the next attempt.
	RetryDelay time.Duration

	// RequestInterval paces consecutive network requests.
	RequestInterval time.Duration

	// MaxConcurrent bounds in-flight downloads for one document.
	MaxConcurrent int

	// LogLevel is the verbosity name: error, warn, info or debug.
	LogLevel string

	// LogToFile tees log output to a file in the output directory.
	LogToFile bool
}

// Default returns the hard-coded defaults.
func Default() Config {
	return Config{
		Timeout:         30 * time.Second,
		MaxRetries:      3,
		RetryDelay:      time.Second,
		RequestInterval: 200 * time.Millisecond,
		MaxConcurrent:   5,
		LogLevel:        "info",
		LogToFile:       false,
	}
}

// fileConfig mirrors the TOML file schema. Pointer fields distinguish
// "absent" from zero values.
type fileConfig struct {
	TimeoutSeconds    *int    `toml:"timeout_seconds"`
	MaxRetries        *int    `toml:"max_retries"`
	RetryDelayMS      *int    `toml:"retry_delay_ms"`
	RequestIntervalMS *int    `toml:"request_interval_ms"`
	MaxConcurrent     *int    `toml:"max_concurrent"`
	LogLevel          *string `toml:"log_level"`
	LogToFile         *bool   `toml:"log_to_file"`
}

// Load builds the effective configuration: defaults, then the TOML
// file at path (or ~/.docmirror/config.toml when path is empty), then
// DOCMIRROR_* environment variables. A missing config file is fine; a
// malformed one is an error.
func Load(path string) (Config, error) {
	// Best effort: a .env file may carry the DOCMIRROR_* overrides.
	_ = godotenv.Load()

	cfg := Default()

	if path == "" {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, ".docmirror", "config.toml")
		}
	}
	if path != "" {
		if err := applyFile(&cfg, path); err != nil {
			return cfg, err
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func applyFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}

	var fc fileConfig
	if err := toml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	if fc.TimeoutSeconds != nil {
		cfg.Timeout = time.Duration(*fc.TimeoutSeconds) * time.Second
	}
	if fc.MaxRetries != nil {
		cfg.MaxRetries = *fc.MaxRetries
	}
	if fc.RetryDelayMS != nil {
		cfg.RetryDelay = time.Duration(*fc.RetryDelayMS) * time.Millisecond
	}
	if fc.RequestIntervalMS != nil {
		cfg.RequestInterval = time.Duration(*fc.RequestIntervalMS) * time.Millisecond
	}
	if fc.MaxConcurrent != nil {
		cfg.MaxConcurrent = *fc.MaxConcurrent
	}
	if fc.LogLevel != nil {
		cfg.LogLevel = *fc.LogLevel
	}
	if fc.LogToFile != nil {
		cfg.LogToFile = *fc.LogToFile
	}
	return nil
}

func applyEnv(cfg *Config) error {
	if err := envDuration("DOCMIRROR_TIMEOUT", &cfg.Timeout); err != nil {
		return err
	}
	if err := envInt("DOCMIRROR_MAX_RETRIES", &cfg.MaxRetries); err != nil {
		return err
	}
	if err := envDuration("DOCMIRROR_RETRY_DELAY", &cfg.RetryDelay); err != nil {
		return err
	}
	if err := envDuration("DOCMIRROR_REQUEST_INTERVAL", &cfg.RequestInterval); err != nil {
		return err
	}
	if err := envInt("DOCMIRROR_MAX_CONCURRENT", &cfg.MaxConcurrent); err != nil {
		return err
	}
	if v := os.Getenv("DOCMIRROR_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("DOCMIRROR_LOG_TO_FILE"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("DOCMIRROR_LOG_TO_FILE: %w", err)
		}
		cfg.LogToFile = b
	}
	return nil
}

func envDuration(name string, dst *time.Duration) error {
	v := os.Getenv(name)
	if v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	*dst = d
	return nil
}

func envInt(name string, dst *int) error {
	v := os.Getenv(name)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	*dst = n
	return nil
}
