// ABOUTME: Tracker service owning partners, pipeline generations, initiatives and notes
// ABOUTME: Loads every domain from an injected KV store and persists after each mutation
package tracker

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/harperreed/pipetrack/models"
	"github.com/harperreed/pipetrack/store"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrInvalidBackup = errors.New("invalid backup")
	ErrNoSnapshot    = errors.New("no rollback point available")
	ErrInvalidInput  = errors.New("invalid input")
)

// Tracker is the single owner of application state. All methods are safe for
// concurrent use; returned slices are copies.
type Tracker struct {
	mu  sync.Mutex
	kv  store.KV
	now func() time.Time

	partners    []models.Partner
	pipeline    models.PipelineState
	initiatives []models.Initiative
	notes       *notebook
	snapshot    *Snapshot
}

type Option func(*Tracker)

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(t *Tracker) { t.now = now }
}

// Open loads all domains from kv. Missing domains start empty; legacy payloads are
// upgraded and written back.
func Open(kv store.KV, opts ...Option) (*Tracker, error) {
	t := &Tracker{kv: kv, now: time.Now, notes: newNotebook()}
	for _, opt := range opts {
		opt(t)
	}
	if err := t.load(); err != nil {
		return nil, err
	}
	return t, nil
}

// load decodes every domain before touching the tracker, so a failed reload keeps the old state.
func (t *Tracker) load() error {
	partners := []models.Partner{}
	pipeline := models.PipelineState{Current: []models.Opportunity{}, Previous: []models.Opportunity{}}
	initiatives := []models.Initiative{}
	buckets := map[string][]models.Note{}
	var snap *Snapshot

	targets := map[string]any{
		store.KeyPartners:    &partners,
		store.KeyPipeline:    &pipeline,
		store.KeyInitiatives: &initiatives,
		store.KeyNotes:       &buckets,
		store.KeySnapshot:    &snap,
	}

	for _, key := range store.Domains {
		migrated, err := store.Load(t.kv, key, targets[key])
		if errors.Is(err, store.ErrNotFound) {
			continue
		}
		if err != nil {
			return fmt.Errorf("failed to load %s: %w", key, err)
		}
		if migrated {
			log.Info("upgrading stored data", "domain", key, "version", store.SchemaVersion)
			if err := store.Save(t.kv, key, targets[key], t.now()); err != nil {
				return err
			}
		}
	}

	if partners == nil {
		partners = []models.Partner{}
	}
	if initiatives == nil {
		initiatives = []models.Initiative{}
	}
	if pipeline.Current == nil {
		pipeline.Current = []models.Opportunity{}
	}
	if pipeline.Previous == nil {
		pipeline.Previous = []models.Opportunity{}
	}
	t.partners = partners
	t.pipeline = pipeline
	t.initiatives = initiatives
	t.notes = notebookFrom(buckets)
	t.snapshot = snap
	return nil
}

func (t *Tracker) save(key string, v any) error {
	return store.Save(t.kv, key, v, t.now())
}

func (t *Tracker) savePartners(p []models.Partner) error {
	return t.save(store.KeyPartners, p)
}

func (t *Tracker) savePipeline(p models.PipelineState) error {
	return t.save(store.KeyPipeline, p)
}

func (t *Tracker) saveInitiatives(i []models.Initiative) error {
	return t.save(store.KeyInitiatives, i)
}

func (t *Tracker) saveNotes(nb *notebook) error {
	return t.save(store.KeyNotes, nb.buckets())
}

// Reload discards in-memory state and reads the store again. Used after another
// process (or a charm sync) changed the data.
func (t *Tracker) Reload() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.load()
}

// Now returns the tracker's clock reading.
func (t *Tracker) Now() time.Time {
	return t.now()
}
