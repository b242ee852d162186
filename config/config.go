// ABOUTME: Layered configuration for pipetrack
// ABOUTME: Merges defaults, a YAML file, .env and PIPETRACK_ environment variables with koanf
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const (
	AppName   = "pipetrack"
	EnvPrefix = "PIPETRACK_"

	// ConfigFileName is looked up in the XDG config dir when no path is given.
	ConfigFileName = "config.yaml"
)

// Storage backends.
const (
	BackendSQLite = "sqlite"
	BackendBadger = "badger"
	BackendCharm  = "charm"
)

type Config struct {
	DataDir            string `koanf:"data_dir"`
	Backend            string `koanf:"backend"`
	CharmHost          string `koanf:"charm_host"`
	AutoSync           bool   `koanf:"auto_sync"`
	LogLevel           string `koanf:"log_level"`
	WebAddr            string `koanf:"web_addr"`
	WatchDir           string `koanf:"watch_dir"`
	GoogleClientID     string `koanf:"google_client_id"`
	GoogleClientSecret string `koanf:"google_client_secret"`

	// File is the config file that was read, if any.
	File string `koanf:"-"`
}

// Defaults returns the built-in settings.
func Defaults() map[string]any {
	dataDir := filepath.Join(xdg.DataHome, AppName)
	return map[string]any{
		"data_dir":   dataDir,
		"backend":    BackendSQLite,
		"charm_host": "",
		"auto_sync":  true,
		"log_level":  "info",
		"web_addr":   "127.0.0.1:8470",
		"watch_dir":  filepath.Join(dataDir, "inbox"),
	}
}

// DefaultPath is the config file used when Load gets no explicit path.
func DefaultPath() string {
	return filepath.Join(xdg.ConfigHome, AppName, ConfigFileName)
}

// Load builds the config. Precedence, highest first: environment, config file, defaults.
// A .env in the working directory is read into the environment first. An explicit path
// must exist; the default path is optional.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read .env: %w", err)
	}

	k := koanf.New(".")
	if err := k.Load(confmap.Provider(Defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	used := ""
	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		used = path
	} else if _, err := os.Stat(DefaultPath()); err == nil {
		used = DefaultPath()
	}
	if used != "" {
		if err := k.Load(file.Provider(used), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", used, err)
		}
	}

	// PIPETRACK_DATA_DIR -> data_dir
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	cfg.File = used

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks enumerated settings.
func (c *Config) Validate() error {
	switch c.Backend {
	case BackendSQLite, BackendBadger, BackendCharm:
	default:
		return fmt.Errorf("unknown backend %q (want sqlite, badger or charm)", c.Backend)
	}
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log level %q", c.LogLevel)
	}
	if c.DataDir == "" {
		return fmt.Errorf("data_dir must not be empty")
	}
	return nil
}

// DatabasePath is the SQLite file inside the data dir.
func (c *Config) DatabasePath() string {
	return filepath.Join(c.DataDir, "pipetrack.db")
}

// BadgerDir is the Badger directory inside the data dir.
func (c *Config) BadgerDir() string {
	return filepath.Join(c.DataDir, "badger")
}
