// Package config declares the module's ambient (non-format) configuration:
// whether the snapshot cache is enabled and how it is compressed, and the
// logger's level and format.
//
// Modeled on samcharles93-mantle/cmd/mantle/config.go: a YAML-backed struct
// with a Default() and a Load(path) that never affects parse semantics,
// only the surrounding behavior.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/jgoedeke/IMCtermite/errs"
)

// Config controls the module's ambient behavior. The IMC raw format itself
// has no configurable dialect, so every field here is about caching or
// logging, never about how a block or channel is parsed.
type Config struct {
	Cache  CacheConfig  `yaml:"cache"`
	Logger LoggerConfig `yaml:"logger"`
}

// CacheConfig controls the snapshot cache (package cache).
type CacheConfig struct {
	// Enabled turns the snapshot cache on. Disabled by default: a fresh
	// scan is always correct, caching is a pure speed optimization.
	Enabled bool `yaml:"enabled"`

	// Dir collects every snapshot under one directory instead of writing
	// next to each source file. Empty means "next to the source file".
	Dir string `yaml:"dir"`

	// Codec names the compression codec: "none", "zstd", "s2", or "lz4".
	Codec string `yaml:"codec"`
}

// LoggerConfig describes a logger level and format. Load validates it;
// imcraw.Open does not build or configure a logger from it.
type LoggerConfig struct {
	// Level is one of "debug", "info", "warn", "error".
	Level string `yaml:"level"`

	// Format is "text" or "json".
	Format string `yaml:"format"`
}

// Default returns the zero-risk configuration: cache disabled, text
// logging at info level.
func Default() Config {
	return Config{
		Cache: CacheConfig{
			Enabled: false,
			Codec:   "none",
		},
		Logger: LoggerConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads and parses a YAML config file at path, filling any field the
// file omits from Default().
func Load(path string) (Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("%w: %v", errs.ErrInvalidConfig, err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return Config{}, fmt.Errorf("%w: %v", errs.ErrInvalidConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects a config that names something this build cannot honor.
func (c Config) Validate() error {
	switch c.Logger.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: unknown logger level %q", errs.ErrInvalidConfig, c.Logger.Level)
	}
	switch c.Logger.Format {
	case "text", "json":
	default:
		return fmt.Errorf("%w: unknown logger format %q", errs.ErrInvalidConfig, c.Logger.Format)
	}
	switch c.Cache.Codec {
	case "", "none", "zstd", "s2", "lz4":
	default:
		return fmt.Errorf("%w: unknown cache codec %q", errs.ErrInvalidConfig, c.Cache.Codec)
	}
	return nil
}
