package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config represents the top-level application config.
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Feed     FeedConfig     `koanf:"feed"`
	Register RegisterConfig `koanf:"register"`
	Ranking  RankingConfig  `koanf:"ranking"`
}

type ServerConfig struct {
	Port          int    `koanf:"port"`
	Host          string `koanf:"host"`
	MaxBodySizeMB int    `koanf:"max_body_size_mb"`
	Mode          string `koanf:"mode"` // debug | release
}

type FeedConfig struct {
	// BufferSize is the per-observer snapshot queue. When it is full the
	// oldest queued snapshot is dropped so ingest never waits on delivery.
	BufferSize int `koanf:"buffer_size"`
}

type RegisterConfig struct {
	Path     string `koanf:"path"`
	Required bool   `koanf:"required"`
}

type RankingConfig struct {
	DefaultTopN int `koanf:"default_top_n"`
}

func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server.port %d (must be 1-65535)", c.Server.Port)
	}
	if strings.TrimSpace(c.Server.Host) == "" {
		return fmt.Errorf("server.host is required")
	}
	if c.Server.MaxBodySizeMB <= 0 {
		return fmt.Errorf("server.max_body_size_mb must be > 0")
	}
	if c.Server.Mode != "debug" && c.Server.Mode != "release" {
		return fmt.Errorf("invalid server.mode %q (must be debug or release)", c.Server.Mode)
	}

	if c.Feed.BufferSize <= 0 {
		return fmt.Errorf("feed.buffer_size must be > 0")
	}
	if c.Ranking.DefaultTopN <= 0 {
		return fmt.Errorf("ranking.default_top_n must be > 0")
	}

	if c.Register.Required && strings.TrimSpace(c.Register.Path) == "" {
		return fmt.Errorf("register.path is required when register.required is set")
	}
	if c.Register.Path != "" {
		if _, err := os.Stat(c.Register.Path); err != nil {
			return fmt.Errorf("register.path %q is not accessible: %w", c.Register.Path, err)
		}
	}

	return nil
}

// Load parses config from file + env and validates it.
func Load(configPath string) (*Config, error) {
	k := koanf.New(".")

	defaults := map[string]interface{}{
		"server.port":             8080,
		"server.host":             "0.0.0.0",
		"server.max_body_size_mb": 1,
		"server.mode":             "release",
		"feed.buffer_size":        8,
		"register.path":           "",
		"register.required":       false,
		"ranking.default_top_n":   5,
	}
	for key, value := range defaults {
		k.Set(key, value)
	}

	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	}

	if err := k.Load(env.Provider("TALLY_", ".", func(s string) string {
		return strings.Replace(strings.ToLower(strings.TrimPrefix(s, "TALLY_")), "__", ".", -1)
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}
