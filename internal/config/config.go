// Package config loads the server's TOML configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/dustin/go-humanize"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const appName = "image-loader-mcp"

// Environment variables read by Load.
const (
	EnvLogLevel = "IMAGE_LOADER_LOG_LEVEL" // overrides log_level
	EnvConfig   = "IMAGE_LOADER_CONFIG"    // extra config file, highest priority
)

// Cache backends.
const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendRedis  = "redis"
)

// Config holds the settings for the server and its command line tools.
type Config struct {
	LogLevel       string          `koanf:"log_level"`       // "debug", "info", "warn", "error"
	DefaultDensity int             `koanf:"default_density"` // dpi assigned to decoded files
	Transform      TransformConfig `koanf:"transform"`
	Cache          CacheConfig     `koanf:"cache"`
}

// TransformConfig holds engine settings.
type TransformConfig struct {
	Filter      string `koanf:"filter"`       // resampling filter name, empty = lanczos
	BudgetBytes int64  `koanf:"budget_bytes"` // raster budget, 0 = unlimited
	Budget      string `koanf:"budget"`       // human form of budget_bytes, e.g. "512 MiB"
}

// CacheConfig selects and configures the result store.
type CacheConfig struct {
	Backend     string `koanf:"backend"`      // "memory", "file" or "redis"
	Dir         string `koanf:"dir"`          // file backend root
	RedisAddr   string `koanf:"redis_addr"`   // e.g. "localhost:6379"
	RedisPrefix string `koanf:"redis_prefix"` // key namespace
	Tiered      bool   `koanf:"tiered"`       // front the backend with a memory store
}

// Default returns the configuration used when no file sets a value.
func Default() *Config {
	return &Config{
		LogLevel:       "warn",
		DefaultDensity: 160,
		Cache: CacheConfig{
			Backend:     BackendMemory,
			Dir:         filepath.Join(xdg.CacheHome, appName),
			RedisAddr:   "localhost:6379",
			RedisPrefix: "image-loader:",
		},
	}
}

// Load reads the standard config locations and the environment.
func Load() (*Config, error) {
	return LoadFrom(configPaths()...)
}

// LoadFrom reads the given TOML files in order (later files win) on top of
// the defaults. Missing files are skipped.
func LoadFrom(paths ...string) (*Config, error) {
	k := koanf.New(".")

	for _, path := range paths {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
			return nil, fmt.Errorf("config %s: %w", path, err)
		}
	}

	cfg := Default()
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	if lvl := os.Getenv(EnvLogLevel); lvl != "" {
		cfg.LogLevel = lvl
	}
	cfg.LogLevel = strings.ToLower(strings.TrimSpace(cfg.LogLevel))
	cfg.Cache.Backend = strings.ToLower(strings.TrimSpace(cfg.Cache.Backend))
	cfg.Cache.Dir = expandPath(cfg.Cache.Dir)

	if cfg.Transform.Budget != "" {
		n, err := humanize.ParseBytes(cfg.Transform.Budget)
		if err != nil {
			return nil, fmt.Errorf("config: transform.budget: %w", err)
		}
		cfg.Transform.BudgetBytes = int64(n)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks value ranges and enumerations.
func (c *Config) Validate() error {
	switch c.Cache.Backend {
	case BackendMemory, BackendFile, BackendRedis:
	default:
		return fmt.Errorf("config: unknown cache.backend %q", c.Cache.Backend)
	}
	if c.Cache.Backend == BackendFile && c.Cache.Dir == "" {
		return errors.New("config: cache.dir is required for the file backend")
	}
	if c.Cache.Backend == BackendRedis && c.Cache.RedisAddr == "" {
		return errors.New("config: cache.redis_addr is required for the redis backend")
	}
	if c.DefaultDensity <= 0 {
		return fmt.Errorf("config: default_density must be positive, got %d", c.DefaultDensity)
	}
	if c.Transform.BudgetBytes < 0 {
		return errors.New("config: transform.budget_bytes must not be negative")
	}
	return nil
}

// BudgetString formats the raster budget for display.
func (c *Config) BudgetString() string {
	if c.Transform.BudgetBytes == 0 {
		return "unlimited"
	}
	return humanize.IBytes(uint64(c.Transform.BudgetBytes))
}

func configPaths() []string {
	// 1. $XDG_CONFIG_HOME/image-loader-mcp/config.toml
	paths := []string{filepath.Join(xdg.ConfigHome, appName, "config.toml")}

	// 2. ./config.toml
	paths = append(paths, "config.toml")

	// 3. $IMAGE_LOADER_CONFIG (highest priority)
	if p := os.Getenv(EnvConfig); p != "" {
		paths = append(paths, expandPath(p))
	}
	return paths
}

func expandPath(path string) string {
	if path != "" && path[0] == '~' {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}
