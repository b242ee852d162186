// ABOUTME: Key-value table on SQLite implementing the store.KV contract
// ABOUTME: Keeps the last few replaced values of each key for manual recovery
package db

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/harperreed/pipetrack/store"
)

// historyDepth is how many replaced values are kept per key.
const historyDepth = 5

// KV stores values in the kv table.
type KV struct {
	db *sql.DB
}

func NewKV(db *sql.DB) *KV {
	return &KV{db: db}
}

// OpenKV opens the database at path and wraps it.
func OpenKV(path string) (*KV, error) {
	db, err := OpenDatabase(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return NewKV(db), nil
}

func (k *KV) Get(key string) ([]byte, error) {
	var value []byte
	err := k.db.QueryRow(`SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get %s: %w", key, err)
	}
	return value, nil
}

// Set upserts the value and moves the old one into kv_history.
func (k *KV) Set(key string, value []byte) error {
	tx, err := k.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now().UTC()
	if _, err := tx.Exec(`
		INSERT INTO kv_history (key, value, replaced_at)
		SELECT key, value, ? FROM kv WHERE key = ?
	`, now, key); err != nil {
		return fmt.Errorf("failed to record history for %s: %w", key, err)
	}

	if _, err := tx.Exec(`
		INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`, key, value, now); err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}

	if _, err := tx.Exec(`
		DELETE FROM kv_history WHERE key = ? AND id NOT IN (
			SELECT id FROM kv_history WHERE key = ? ORDER BY id DESC LIMIT ?
		)
	`, key, key, historyDepth); err != nil {
		return fmt.Errorf("failed to trim history for %s: %w", key, err)
	}

	return tx.Commit()
}

func (k *KV) Delete(key string) error {
	if _, err := k.db.Exec(`DELETE FROM kv WHERE key = ?`, key); err != nil {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	return nil
}

func (k *KV) Keys() ([]string, error) {
	rows, err := k.db.Query(`SELECT key FROM kv ORDER BY key`)
	if err != nil {
		return nil, fmt.Errorf("failed to list keys: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, err
		}
		keys = append(keys, key)
	}
	return keys, rows.Err()
}

// History returns replaced values of key, newest first.
func (k *KV) History(key string) ([][]byte, error) {
	rows, err := k.db.Query(`SELECT value FROM kv_history WHERE key = ? ORDER BY id DESC`, key)
	if err != nil {
		return nil, fmt.Errorf("failed to read history for %s: %w", key, err)
	}
	defer func() { _ = rows.Close() }()

	var values [][]byte
	for rows.Next() {
		var v []byte
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		values = append(values, v)
	}
	return values, rows.Err()
}

func (k *KV) Close() error {
	return k.db.Close()
}
