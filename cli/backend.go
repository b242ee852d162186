// ABOUTME: Storage backend selection
// ABOUTME: Opens the SQLite, Badger or Charm KV named by the config
package cli

import (
	"fmt"
	"os"

	"github.com/harperreed/pipetrack/charm"
	"github.com/harperreed/pipetrack/config"
	"github.com/harperreed/pipetrack/db"
	"github.com/harperreed/pipetrack/store"
)

// OpenBackend opens the named backend with the paths and settings from cfg.
func OpenBackend(cfg *config.Config, name string) (store.Backend, error) {
	var (
		kv  store.Backend
		err error
	)
	switch name {
	case config.BackendSQLite:
		kv, err = openSQLite(cfg.DatabasePath())
	case config.BackendBadger:
		kv, err = openBadger(cfg.BadgerDir())
	case config.BackendCharm:
		kv, err = openCharm(cfg)
	default:
		return nil, fmt.Errorf("unknown backend %q (want sqlite, badger or charm)", name)
	}
	if err != nil {
		return nil, err
	}
	return kv, nil
}

func openSQLite(path string) (store.Backend, error) {
	kv, err := db.OpenKV(path)
	if err != nil {
		return nil, err
	}
	return kv, nil
}

func openBadger(dir string) (store.Backend, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create badger directory: %w", err)
	}
	kv, err := store.OpenBadger(dir)
	if err != nil {
		return nil, err
	}
	return kv, nil
}

func openCharm(cfg *config.Config) (store.Backend, error) {
	c, err := charm.NewClient(charm.NewConfig(cfg.CharmHost, cfg.AutoSync))
	if err != nil {
		return nil, err
	}
	return c, nil
}
