package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// SchemaVersion is written into every envelope.
const SchemaVersion = 1

// ErrNewerSchema means the stored data was written by a newer release.
var ErrNewerSchema = errors.New("stored data has a newer schema version")

// Envelope wraps a domain payload with its schema version and save time.
type Envelope struct {
	Version int             `json:"version"`
	SavedAt time.Time       `json:"saved_at"`
	Data    json.RawMessage `json:"data"`
}

// Save marshals v into a current-version envelope under key.
func Save(kv KV, key string, v any, now time.Time) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	raw, err := json.Marshal(Envelope{Version: SchemaVersion, SavedAt: now.UTC(), Data: data})
	if err != nil {
		return fmt.Errorf("failed to encode %s envelope: %w", key, err)
	}
	if err := kv.Set(key, raw); err != nil {
		return fmt.Errorf("failed to save %s: %w", key, err)
	}
	return nil
}

// Load decodes the payload under key into v, which should already hold defaults.
// Unwrapped payloads are treated as version 0 and decoded over those defaults; migrated
// reports this so the caller can save the upgraded form. A missing key leaves v alone
// and returns ErrNotFound.
func Load(kv KV, key string, v any) (migrated bool, err error) {
	raw, err := kv.Get(key)
	if err != nil {
		return false, err
	}

	env, ok := unwrap(raw)
	if !ok {
		if err := json.Unmarshal(raw, v); err != nil {
			return false, fmt.Errorf("failed to decode legacy %s: %w", key, err)
		}
		return true, nil
	}

	if env.Version > SchemaVersion {
		return false, fmt.Errorf("%w: %s is version %d, this build reads %d", ErrNewerSchema, key, env.Version, SchemaVersion)
	}
	if len(env.Data) > 0 && string(env.Data) != "null" {
		if err := json.Unmarshal(env.Data, v); err != nil {
			return false, fmt.Errorf("failed to decode %s: %w", key, err)
		}
	}
	return env.Version < SchemaVersion, nil
}

func unwrap(raw []byte) (Envelope, bool) {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(raw, &probe); err != nil {
		return Envelope{}, false
	}
	_, hasVersion := probe["version"]
	_, hasData := probe["data"]
	if !hasVersion || !hasData {
		return Envelope{}, false
	}
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return Envelope{}, false
	}
	return env, true
}

// Copy writes every key of src into dst and returns how many were copied.
func Copy(dst, src KV) (int, error) {
	keys, err := src.Keys()
	if err != nil {
		return 0, fmt.Errorf("failed to list keys: %w", err)
	}
	for i, key := range keys {
		value, err := src.Get(key)
		if err != nil {
			return i, fmt.Errorf("failed to read %s: %w", key, err)
		}
		if err := dst.Set(key, value); err != nil {
			return i, fmt.Errorf("failed to write %s: %w", key, err)
		}
	}
	return len(keys), nil
}
