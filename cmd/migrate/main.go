// ABOUTME: Migration utility for moving tracker data between storage backends.
// ABOUTME: Provides dry-run and backup capabilities for a safe copy.

package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/harperreed/pipetrack/cli"
	"github.com/harperreed/pipetrack/config"
	"github.com/harperreed/pipetrack/store"
)

func main() {
	configPath := flag.String("config", "", "Config file (default: XDG config dir)")
	from := flag.String("from", "", "Source backend: sqlite, badger or charm (required)")
	to := flag.String("to", "", "Destination backend: sqlite, badger or charm (required)")
	dryRun := flag.Bool("dry-run", false, "Show what would happen without making changes")
	backup := flag.Bool("backup", true, "Back up the SQLite file before writing to it")
	force := flag.Bool("force", false, "Overwrite keys that already exist in the destination")
	flag.Parse()

	if *from == "" || *to == "" {
		log.Fatal("Error: -from and -to are required")
	}
	if *from == *to {
		log.Fatal("Error: -from and -to must differ")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal("failed to load config", "err", err)
	}

	if err := migrate(cfg, *from, *to, *dryRun, *backup, *force); err != nil {
		log.Fatal("migration failed", "err", err)
	}

	log.Info("migration completed successfully")
}

func migrate(cfg *config.Config, from, to string, dryRun, createBackup, force bool) error {
	src, err := cli.OpenBackend(cfg, from)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", from, err)
	}
	defer func() { _ = src.Close() }()

	keys, err := src.Keys()
	if err != nil {
		return fmt.Errorf("failed to list source keys: %w", err)
	}
	log.Info("source keys", "backend", from, "keys", keys)
	if len(keys) == 0 {
		return fmt.Errorf("nothing to migrate: %s backend is empty", from)
	}

	dst, err := cli.OpenBackend(cfg, to)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", to, err)
	}
	defer func() { _ = dst.Close() }()

	existing, err := dst.Keys()
	if err != nil {
		return fmt.Errorf("failed to list destination keys: %w", err)
	}
	if len(existing) > 0 && !force {
		log.Warn("destination already holds data", "backend", to, "keys", existing)
		log.Warn("use -force to overwrite it")
		return fmt.Errorf("migration requires -force flag")
	}

	if dryRun {
		log.Info("[DRY RUN] would copy keys", "from", from, "to", to, "count", len(keys))
		for _, k := range store.Domains {
			if _, err := src.Get(k); err == nil {
				log.Info("[DRY RUN] copy", "key", k)
			}
		}
		return nil
	}

	if createBackup && to == config.BackendSQLite {
		if err := backupFile(cfg.DatabasePath()); err != nil {
			return err
		}
	}

	n, err := store.Copy(dst, src)
	if err != nil {
		return fmt.Errorf("copied %d key(s) before failing: %w", n, err)
	}
	log.Info("copied keys", "count", n, "from", from, "to", to)
	return nil
}

// backupFile copies path next to itself with a timestamp. A missing file needs no backup.
func backupFile(path string) error {
	input, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read database: %w", err)
	}

	backupPath := fmt.Sprintf("%s.backup.%s", path, time.Now().Format("20060102-150405"))
	log.Info("creating backup", "path", backupPath)
	if err := os.WriteFile(backupPath, input, 0644); err != nil {
		return fmt.Errorf("failed to create backup: %w", err)
	}
	return nil
}
