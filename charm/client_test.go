package charm

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/harperreed/pipetrack/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientImplementsKV(t *testing.T) {
	var kv store.KV = NewTestClient(t, false)

	_, err := kv.Get("missing")
	assert.True(t, errors.Is(err, store.ErrNotFound))

	require.NoError(t, kv.Set("partners", []byte("[]")))
	require.NoError(t, kv.Set("notes", []byte("{}")))

	v, err := kv.Get("partners")
	require.NoError(t, err)
	assert.Equal(t, "[]", string(v))

	keys, err := kv.Keys()
	require.NoError(t, err)
	assert.Equal(t, []string{"notes", "partners"}, keys)

	require.NoError(t, kv.Delete("notes"))
	keys, err = kv.Keys()
	require.NoError(t, err)
	assert.Equal(t, []string{"partners"}, keys)
}

func TestAutoSyncAfterWrites(t *testing.T) {
	c := NewTestClient(t, true)
	require.NoError(t, c.Set("a", []byte("1")))
	require.NoError(t, c.Delete("a"))
	assert.Equal(t, 2, c.kv.(*testKV).syncs)

	quiet := NewTestClient(t, false)
	require.NoError(t, quiet.Set("a", []byte("1")))
	assert.Equal(t, 0, quiet.kv.(*testKV).syncs)
}

func TestResetAndEnvelopes(t *testing.T) {
	c := NewTestClient(t, false)
	require.NoError(t, store.Save(c, store.KeyPartners, []string{"Acme"}, time.Now()))

	var got []string
	_, err := store.Load(c, store.KeyPartners, &got)
	require.NoError(t, err)
	assert.Equal(t, []string{"Acme"}, got)

	require.NoError(t, c.Reset())
	keys, err := c.Keys()
	require.NoError(t, err)
	assert.Empty(t, keys)
}

func TestSyncCommands(t *testing.T) {
	c := NewTestClient(t, true)
	var out bytes.Buffer

	require.NoError(t, SyncNowCommand(c, &out, []string{"--verbose"}))
	assert.Contains(t, out.String(), "✓ Synced")

	out.Reset()
	require.NoError(t, SyncStatusCommand(c, &out, nil))
	assert.Contains(t, out.String(), "Server:    localhost")
	assert.Contains(t, out.String(), "Status: Not connected")
}

func TestNewConfig(t *testing.T) {
	cfg := NewConfig("", false)
	assert.Equal(t, DefaultCharmHost, cfg.Host)
	assert.False(t, cfg.AutoSync)
	assert.Equal(t, "example.com", NewConfig("example.com", true).Host)
}
