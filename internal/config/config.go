// Package config loads todobench settings from defaults, an optional YAML
// file and TODOBENCH_* environment variables, in that order.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/pinchtab/todobench/internal/suite"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("config: invalid")

// Pointer modes.
const (
	PointerNative = "native"
	PointerMouse  = "mouse"
)

// MaxTimeout bounds a whole run. Serve mode holds the target lock for at
// most this long.
const MaxTimeout = 30 * time.Minute

// Report formats.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// Config holds every setting of a run or a server.
type Config struct {
	URL         string        `yaml:"url"`
	Items       int           `yaml:"items"`
	Only        []string      `yaml:"only"`
	Headless    bool          `yaml:"headless"`
	Timeout     time.Duration `yaml:"timeout"`
	StepTimeout time.Duration `yaml:"step_timeout"`
	Pointer     string        `yaml:"pointer"`
	Format      string        `yaml:"format"`
	RemoteURL   string        `yaml:"remote_url"`
	ChromePath  string        `yaml:"chrome_path"`
	Listen      string        `yaml:"listen"`
	LogLevel    string        `yaml:"log_level"`
	LogFormat   string        `yaml:"log_format"`
}

// Default returns the shipped configuration.
func Default() Config {
	return Config{
		Items:       suite.DefaultItems,
		Headless:    true,
		Timeout:     60 * time.Second,
		StepTimeout: 5 * time.Second,
		Pointer:     PointerNative,
		Format:      FormatText,
		Listen:      ":9867",
		LogLevel:    "info",
		LogFormat:   "text",
	}
}

// Load reads path (if non-empty) over the defaults, then applies the
// environment.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// ApplyEnv overrides fields from TODOBENCH_* variables.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	str("TODOBENCH_URL", &c.URL)
	str("TODOBENCH_POINTER", &c.Pointer)
	str("TODOBENCH_FORMAT", &c.Format)
	str("TODOBENCH_REMOTE_URL", &c.RemoteURL)
	str("TODOBENCH_CHROME_PATH", &c.ChromePath)
	str("TODOBENCH_LISTEN", &c.Listen)
	str("TODOBENCH_LOG_LEVEL", &c.LogLevel)
	str("TODOBENCH_LOG_FORMAT", &c.LogFormat)

	if v, ok := lookup("TODOBENCH_ITEMS"); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: TODOBENCH_ITEMS=%q", ErrInvalid, v)
		}
		c.Items = n
	}
	if v, ok := lookup("TODOBENCH_ONLY"); ok && v != "" {
		c.Only = strings.Split(v, ",")
	}
	if v, ok := lookup("TODOBENCH_HEADLESS"); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%w: TODOBENCH_HEADLESS=%q", ErrInvalid, v)
		}
		c.Headless = b
	}
	for key, dst := range map[string]*time.Duration{
		"TODOBENCH_TIMEOUT":      &c.Timeout,
		"TODOBENCH_STEP_TIMEOUT": &c.StepTimeout,
	} {
		v, ok := lookup(key)
		if !ok || v == "" {
			continue
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%w: %s=%q", ErrInvalid, key, v)
		}
		*dst = d
	}
	return nil
}

// Validate checks ranges and enumerations.
func (c Config) Validate() error {
	if c.Items < 0 {
		return fmt.Errorf("%w: items must be >= 0, got %d", ErrInvalid, c.Items)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("%w: timeout must be positive", ErrInvalid)
	}
	if c.Timeout > MaxTimeout {
		return fmt.Errorf("%w: timeout must be at most %s, got %s", ErrInvalid, MaxTimeout, c.Timeout)
	}
	if c.StepTimeout <= 0 {
		return fmt.Errorf("%w: step_timeout must be positive", ErrInvalid)
	}
	switch c.Pointer {
	case PointerNative, PointerMouse:
	default:
		return fmt.Errorf("%w: pointer %q (want native or mouse)", ErrInvalid, c.Pointer)
	}
	switch c.Format {
	case FormatText, FormatJSON, FormatYAML:
	default:
		return fmt.Errorf("%w: format %q (want text, json or yaml)", ErrInvalid, c.Format)
	}
	return nil
}
