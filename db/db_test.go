package db

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/harperreed/pipetrack/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestKV(t *testing.T) *KV {
	t.Helper()
	kv, err := OpenKV(filepath.Join(t.TempDir(), "pipetrack.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = kv.Close() })
	return kv
}

func TestOpenDatabase(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "nested", "test.db")

	db, err := OpenDatabase(dbPath)
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	_, err = os.Stat(dbPath)
	require.NoError(t, err)

	var mode string
	require.NoError(t, db.QueryRow("PRAGMA journal_mode").Scan(&mode))
	assert.Equal(t, "wal", mode)

	version, err := SchemaVersion(db)
	require.NoError(t, err)
	assert.Equal(t, int64(2), version)
}

func TestOpenDatabaseTwice(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")

	db, err := OpenDatabase(dbPath)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	db, err = OpenDatabase(dbPath)
	require.NoError(t, err)
	require.NoError(t, db.Close())
}

func TestOpenDatabaseInvalidPath(t *testing.T) {
	file := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0600))

	_, err := OpenDatabase(filepath.Join(file, "sub", "test.db"))
	assert.Error(t, err)
}

func TestKVCRUD(t *testing.T) {
	kv := openTestKV(t)
	var _ store.KV = kv

	_, err := kv.Get("missing")
	assert.True(t, errors.Is(err, store.ErrNotFound))

	require.NoError(t, kv.Set("pipeline", []byte(`{"a":1}`)))
	require.NoError(t, kv.Set("notes", []byte(`{}`)))

	v, err := kv.Get("pipeline")
	require.NoError(t, err)
	assert.Equal(t, `{"a":1}`, string(v))

	keys, err := kv.Keys()
	require.NoError(t, err)
	assert.Equal(t, []string{"notes", "pipeline"}, keys)

	require.NoError(t, kv.Delete("notes"))
	_, err = kv.Get("notes")
	assert.True(t, errors.Is(err, store.ErrNotFound))
}

func TestKVHistoryIsBounded(t *testing.T) {
	kv := openTestKV(t)

	for i := 0; i < historyDepth+3; i++ {
		require.NoError(t, kv.Set("pipeline", []byte(fmt.Sprintf("v%d", i))))
	}

	history, err := kv.History("pipeline")
	require.NoError(t, err)
	require.Len(t, history, historyDepth)
	assert.Equal(t, fmt.Sprintf("v%d", historyDepth+1), string(history[0]))

	v, err := kv.Get("pipeline")
	require.NoError(t, err)
	assert.Equal(t, fmt.Sprintf("v%d", historyDepth+2), string(v))
}
