// Package config loads wordmill's configuration from, in order of
// precedence: built-in defaults, an optional YAML file, WORDMILL_* environment
// variables and command-line flags.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"

	"github.com/conorfennell/wordmill/internal/domain"
)

const envPrefix = "WORDMILL_"

// Config holds everything the application needs at startup.
type Config struct {
	Addr     string `koanf:"addr" validate:"required"`
	DB       string `koanf:"db" validate:"required"`
	Repos    string `koanf:"repos" validate:"required"`
	Quota    int    `koanf:"quota" validate:"gt=0"`
	LogLevel string `koanf:"log-level" validate:"oneof=debug info warn error"`
}

// Flags returns the flag set the loader understands. The defaults declared
// here are the lowest-precedence configuration layer.
func Flags() *pflag.FlagSet {
	f := pflag.NewFlagSet("wordmill", pflag.ContinueOnError)
	f.String("config", "", "Path to an optional YAML config file")
	f.String("addr", "127.0.0.1:8080", "Address for the HTTP server to listen on")
	f.String("db", "wordmill.db", "Path to the SQLite database file")
	f.String("repos", "repos", "Directory git wordlist sources are cloned into")
	f.Int("quota", domain.DefaultWordsPerDay, "Daily quota of new words (used when creating the initial study plan)")
	f.String("log-level", "info", "Log level: debug, info, warn or error")
	return f
}

// Load merges file, environment and flag values into a validated Config.
func Load(f *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	if path, _ := f.GetString("config"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	// WORDMILL_LOG_LEVEL becomes log-level, WORDMILL_DB becomes db, and so on.
	err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, envPrefix)), "_", "-")
	}), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to load environment: %w", err)
	}

	// Flags win; unchanged flags only fill keys nothing else has set.
	if err := k.Load(posflag.Provider(f, ".", k), nil); err != nil {
		return nil, fmt.Errorf("failed to load flags: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

// EnsureDirs creates the directories the config points at.
func (c *Config) EnsureDirs() error {
	if err := os.MkdirAll(c.Repos, 0o755); err != nil {
		return fmt.Errorf("failed to create repos directory %s: %w", c.Repos, err)
	}
	return nil
}
