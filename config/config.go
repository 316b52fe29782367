// Package config assembles runtime settings from defaults, an optional
// TOML file, and environment variables, in that precedence order.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
	log "github.com/sirupsen/logrus"
)

// Auth modes.
const (
	AuthModeNone         = "none"
	AuthModeSharedSecret = "shared-secret"
	AuthModeJWKS         = "jwks"
)

// Duration wraps time.Duration so TOML files can use "30s" / "24h".
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler for TOML decoding.
func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = parsed
	return nil
}

// RedisConfig controls the optional read cache. The cache is disabled
// unless an address is set.
type RedisConfig struct {
	Addr     string   `toml:"addr"`
	CacheTTL Duration `toml:"cache_ttl"`
}

// AuthConfig selects how requests are authenticated.
type AuthConfig struct {
	Mode         string   `toml:"mode"`
	Secret       string   `toml:"secret"`
	Audience     string   `toml:"audience"`
	Domain       string   `toml:"domain"`
	JWKSCacheTTL Duration `toml:"jwks_cache_ttl"`
}

// Config holds all runtime settings.
type Config struct {
	ListenAddr  string      `toml:"listen_addr"`
	DataFile    string      `toml:"data_file"`
	LogLevel    string      `toml:"log_level"`
	CORSOrigins []string    `toml:"cors_origins"`
	Redis       RedisConfig `toml:"redis"`
	Auth        AuthConfig  `toml:"auth"`
}

// Default returns the built-in settings: a local single-user server with
// the data file next to the binary, no cache, no auth.
func Default() Config {
	return Config{
		ListenAddr:  ":8080",
		DataFile:    "todos.json",
		LogLevel:    "info",
		CORSOrigins: []string{"*"},
		Redis:       RedisConfig{CacheTTL: Duration{30 * time.Second}},
		Auth:        AuthConfig{Mode: AuthModeNone},
	}
}

// Load builds the configuration: defaults, then the TOML file at path
// (skipped when path is empty and the default file is absent), then
// environment overrides. The result is validated.
func Load(path string) (Config, error) {
	cfg := Default()

	if path == "" {
		path = os.Getenv("TODO_CONFIG")
	}
	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return Config{}, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	applyEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	cfg.ListenAddr = envString("TODO_LISTEN_ADDR", cfg.ListenAddr)
	cfg.DataFile = envString("TODO_DATA_FILE", cfg.DataFile)
	cfg.LogLevel = envString("TODO_LOG_LEVEL", cfg.LogLevel)
	cfg.CORSOrigins = envStrings("TODO_CORS_ORIGINS", cfg.CORSOrigins)
	cfg.Redis.Addr = envString("TODO_REDIS_ADDR", cfg.Redis.Addr)
	cfg.Redis.CacheTTL.Duration = envDuration("TODO_CACHE_TTL", cfg.Redis.CacheTTL.Duration)
	cfg.Auth.Mode = envString("TODO_AUTH_MODE", cfg.Auth.Mode)
	cfg.Auth.Secret = envString("TODO_AUTH_SECRET", cfg.Auth.Secret)
	cfg.Auth.Audience = envString("TODO_AUTH_AUDIENCE", cfg.Auth.Audience)
	cfg.Auth.Domain = envString("TODO_AUTH_DOMAIN", cfg.Auth.Domain)
	cfg.Auth.JWKSCacheTTL.Duration = envDuration("TODO_JWKS_CACHE_TTL", cfg.Auth.JWKSCacheTTL.Duration)
}

// Validate checks the assembled configuration for startup.
func (c Config) Validate() error {
	if c.ListenAddr == "" {
		return errors.New("listen address must not be empty")
	}
	if c.DataFile == "" {
		return errors.New("data file path must not be empty")
	}
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid log level %q: %w", c.LogLevel, err)
	}
	if c.Redis.CacheTTL.Duration < 0 {
		return errors.New("cache ttl must not be negative")
	}
	switch c.Auth.Mode {
	case AuthModeNone:
	case AuthModeSharedSecret:
		if c.Auth.Secret == "" {
			return errors.New("auth secret must be set for shared-secret mode")
		}
	case AuthModeJWKS:
		if c.Auth.Domain == "" {
			return errors.New("auth domain must be set for jwks mode")
		}
	default:
		return fmt.Errorf("unsupported auth mode: %q", c.Auth.Mode)
	}
	return nil
}

// Level returns the parsed logrus level. Validate must have passed.
func (c Config) Level() log.Level {
	level, err := log.ParseLevel(c.LogLevel)
	if err != nil {
		return log.InfoLevel
	}
	return level
}
