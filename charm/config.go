// ABOUTME: Configuration for the Charm KV backend connection
// ABOUTME: Holds server settings and auto-sync preferences

package charm

import (
	"time"

	"github.com/charmbracelet/charm/kv"
)

const (
	// DefaultCharmHost is the self-hosted 2389 research server.
	DefaultCharmHost = "charm.2389.dev"

	// AppName is the application name for the Charm KV database.
	AppName = "pipetrack"
)

// Config holds charm connection settings.
type Config struct {
	// Host is the charm server hostname
	Host string `json:"host,omitempty"`

	// AutoSync enables automatic sync after every write operation
	AutoSync bool `json:"auto_sync"`

	// StaleThreshold is the duration before data is considered stale and needs a sync
	StaleThreshold time.Duration `json:"stale_threshold,omitempty"`
}

// DefaultConfig returns a new config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Host:           DefaultCharmHost,
		AutoSync:       true,
		StaleThreshold: kv.DefaultStaleThreshold,
	}
}

// NewConfig fills unset fields with defaults.
func NewConfig(host string, autoSync bool) *Config {
	cfg := DefaultConfig()
	if host != "" {
		cfg.Host = host
	}
	cfg.AutoSync = autoSync
	return cfg
}
