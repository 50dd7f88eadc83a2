package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"canvas/internal/domain"
)

// ============================================================
// Configuration
// ============================================================
//
// User-editable YAML file; environment variables override it at runtime.
// A missing file means defaults.

type TableGenConfig struct {
	Endpoint      string `yaml:"endpoint"`
	TimeoutMs     int    `yaml:"timeout_ms"` // 0 = transport default
	RatePerMinute int    `yaml:"rate_per_minute"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	File   string `yaml:"file"`
}

type WindowConfig struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

type Config struct {
	Variant  domain.Variant `yaml:"variant"`
	TableGen TableGenConfig `yaml:"tablegen"`
	Logging  LoggingConfig  `yaml:"logging"`
	Window   WindowConfig   `yaml:"window"`
}

// Env var names used as overrides.
const (
	EnvVariant         = "CANVAS_VARIANT"
	EnvTableGenURL     = "CANVAS_TABLEGEN_URL"
	EnvTableGenTimeout = "CANVAS_TABLEGEN_TIMEOUT_MS"
	EnvTableGenRate    = "CANVAS_TABLEGEN_RATE"
	EnvLogLevel        = "CANVAS_LOG_LEVEL"
	EnvLogFormat       = "CANVAS_LOG_FORMAT"
	EnvLogFile         = "CANVAS_LOG_FILE"
	EnvConfigPath      = "CANVAS_CONFIG"
)

// Defaults returns the built-in configuration.
func Defaults() Config {
	return Config{
		Variant: domain.VariantFull,
		TableGen: TableGenConfig{
			Endpoint:      "http://localhost:8000/generate-table",
			TimeoutMs:     0,
			RatePerMinute: 30,
		},
		Logging: LoggingConfig{Level: "info", Format: "console"},
		Window:  WindowConfig{Width: 1280, Height: 800},
	}
}

// Timeout returns the generator timeout as a duration.
func (c TableGenConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutMs) * time.Millisecond
}

// DefaultPath is $CANVAS_CONFIG, else <user config dir>/canvas/config.yaml.
func DefaultPath() string {
	if p := os.Getenv(EnvConfigPath); p != "" {
		return p
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		home, _ := os.UserHomeDir()
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "canvas", "config.yaml")
}

// Load reads path (missing file = defaults), applies env overrides and validates.
func Load(path string) (Config, error) {
	cfg := Defaults()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return cfg, fmt.Errorf("read config: %w", err)
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	applyEnv(&cfg)
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Save writes cfg as YAML, creating the directory if needed.
func Save(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Validate rejects values the app cannot run with.
func (c Config) Validate() error {
	switch c.Variant {
	case domain.VariantFull, domain.VariantBasic:
	default:
		return fmt.Errorf("config: unknown variant %q (want full or basic)", c.Variant)
	}
	if c.Variant == domain.VariantFull && strings.TrimSpace(c.TableGen.Endpoint) == "" {
		return fmt.Errorf("config: tablegen.endpoint is required for the full variant")
	}
	if c.TableGen.TimeoutMs < 0 {
		return fmt.Errorf("config: tablegen.timeout_ms must not be negative")
	}
	if c.TableGen.RatePerMinute < 0 {
		return fmt.Errorf("config: tablegen.rate_per_minute must not be negative")
	}
	return nil
}

func applyEnv(c *Config) {
	if v := os.Getenv(EnvVariant); v != "" {
		c.Variant = domain.Variant(strings.ToLower(strings.TrimSpace(v)))
	}
	if v := os.Getenv(EnvTableGenURL); v != "" {
		c.TableGen.Endpoint = v
	}
	if n, ok := envInt(EnvTableGenTimeout); ok {
		c.TableGen.TimeoutMs = n
	}
	if n, ok := envInt(EnvTableGenRate); ok {
		c.TableGen.RatePerMinute = n
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv(EnvLogFormat); v != "" {
		c.Logging.Format = v
	}
	if v := os.Getenv(EnvLogFile); v != "" {
		c.Logging.File = v
	}
}

func envInt(key string) (int, bool) {
	v := os.Getenv(key)
	if v == "" {
		return 0, false
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return 0, false
	}
	return n, true
}
