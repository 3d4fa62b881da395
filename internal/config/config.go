// Package config loads service configuration from defaults, an optional
// YAML file, and environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/chittyos/chittytrust/internal/domain"
)

// EnvPrefix is the prefix for configuration environment variables.
const EnvPrefix = "CHITTYTRUST_"

// ConfigPathEnv names the env var holding the YAML config file path.
const ConfigPathEnv = "CHITTYTRUST_CONFIG"

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. tier defaults (community unless CHITTYTRUST_TIER=pro)
//  2. file (YAML) if CHITTYTRUST_CONFIG is set
//  3. env (prefix CHITTYTRUST_, "__" nests: CHITTYTRUST_SERVER__PORT -> server.port)
func Load() (*domain.Config, error) {
	base := domain.DefaultConfig()
	if strings.EqualFold(os.Getenv(EnvPrefix+"TIER"), string(domain.TierPro)) {
		base = domain.ProConfig()
	}

	k := koanf.New(".")

	if path := os.Getenv(ConfigPathEnv); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	// Double underscore separates nesting levels so multi-word keys
	// like read_timeout survive: CHITTYTRUST_SERVER__READ_TIMEOUT ->
	// server.read_timeout.
	envProvider := env.Provider(EnvPrefix, ".", func(s string) string {
		s = strings.ToLower(s)
		s = strings.TrimPrefix(s, strings.ToLower(EnvPrefix))
		if s == "config" {
			return ""
		}
		return strings.ReplaceAll(s, "__", ".")
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment: %w", err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks required settings.
func Validate(cfg *domain.Config) error {
	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		return fmt.Errorf("server.port must be in 1-65535, got %d", cfg.Server.Port)
	}
	if cfg.Repository.Driver == "" {
		return errors.New("repository.driver must not be empty")
	}
	switch cfg.EventBus.Type {
	case "channel", "nats":
	default:
		return fmt.Errorf("event_bus.type must be channel or nats, got %q", cfg.EventBus.Type)
	}
	switch cfg.Cache.Type {
	case "memory", "redis":
	default:
		return fmt.Errorf("cache.type must be memory or redis, got %q", cfg.Cache.Type)
	}
	return nil
}
