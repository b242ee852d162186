// ABOUTME: Key-value storage contract shared by every persistence backend
// ABOUTME: Defines the KV interface, domain keys and the in-memory Badger backend
package store

import (
	"errors"
	"fmt"
	"sort"

	"github.com/dgraph-io/badger/v3"
)

// ErrNotFound is returned by Get when a key has never been written.
var ErrNotFound = errors.New("key not found")

// KV is the persistence boundary. Values are opaque bytes.
type KV interface {
	Get(key string) ([]byte, error)
	Set(key string, value []byte) error
	Delete(key string) error
	Keys() ([]string, error)
}

// Backend is a KV that owns a resource to release.
type Backend interface {
	KV
	Close() error
}

// Domain keys. Each holds one versioned envelope.
const (
	KeyPartners    = "partners"
	KeyPipeline    = "pipeline"
	KeyInitiatives = "initiatives"
	KeyNotes       = "notes"
	KeySnapshot    = "snapshot"
)

// Domains lists every key the tracker writes, in load order.
var Domains = []string{KeyPartners, KeyPipeline, KeyInitiatives, KeyNotes, KeySnapshot}

// Badger is a KV on a local Badger database.
type Badger struct {
	db *badger.DB
}

// OpenBadger opens dir as a Badger database. An empty dir gives an in-memory store.
func OpenBadger(dir string) (*Badger, error) {
	opts := badger.DefaultOptions(dir).WithLogger(nil)
	if dir == "" {
		opts = opts.WithInMemory(true)
	}
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger: %w", err)
	}
	return &Badger{db: db}, nil
}

func (b *Badger) Get(key string) ([]byte, error) {
	var out []byte
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		out, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrNotFound
	}
	return out, err
}

func (b *Badger) Set(key string, value []byte) error {
	return b.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), value)
	})
}

// Delete is a no-op for missing keys.
func (b *Badger) Delete(key string) error {
	return b.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(key))
	})
}

func (b *Badger) Keys() ([]string, error) {
	var keys []string
	err := b.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			keys = append(keys, string(it.Item().KeyCopy(nil)))
		}
		return nil
	})
	sort.Strings(keys)
	return keys, err
}

// Reset drops every key.
func (b *Badger) Reset() error {
	return b.db.DropAll()
}

func (b *Badger) Close() error {
	return b.db.Close()
}
