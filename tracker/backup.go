package tracker

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/charmbracelet/log"
	"github.com/harperreed/pipetrack/models"
	"github.com/harperreed/pipetrack/store"
	"github.com/oklog/ulid/v2"
)

const backupComment = "This data was exported from pipetrack"

// Backup is the portable export of all four domains. PipelineData holds only the
// current generation.
type Backup struct {
	Comment      string                   `json:"_comment,omitempty"`
	Partners     []models.Partner         `json:"partners"`
	PipelineData []models.Opportunity     `json:"pipelineData"`
	Initiatives  []models.Initiative      `json:"initiatives"`
	Notes        map[string][]models.Note `json:"notes"`
	ExportDate   time.Time                `json:"exportDate"`
}

var backupKeys = []string{"partners", "pipelineData", "initiatives", "notes"}

// Snapshot is the single rollback point taken before destructive operations.
type Snapshot struct {
	ID          string                   `json:"id"`
	TakenAt     time.Time                `json:"takenAt"`
	Reason      string                   `json:"reason"`
	Partners    []models.Partner         `json:"partners"`
	Pipeline    models.PipelineState     `json:"pipeline"`
	Initiatives []models.Initiative      `json:"initiatives"`
	Notes       map[string][]models.Note `json:"notes"`
}

// Export captures the current state as a Backup.
func (t *Tracker) Export() Backup {
	t.mu.Lock()
	defer t.mu.Unlock()
	return Backup{
		Comment:      backupComment,
		Partners:     slices.Clone(t.partners),
		PipelineData: slices.Clone(t.pipeline.Current),
		Initiatives:  slices.Clone(t.initiatives),
		Notes:        t.notes.buckets(),
		ExportDate:   t.now().UTC(),
	}
}

// ExportJSON renders Export as indented JSON.
func (t *Tracker) ExportJSON() ([]byte, error) {
	b := t.Export()
	data, err := json.MarshalIndent(b, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode backup: %w", err)
	}
	return data, nil
}

// ValidateBackup decodes raw and checks that all four domain keys are present and
// not null. It never touches tracker state.
func ValidateBackup(raw []byte) (*Backup, error) {
	var keys map[string]json.RawMessage
	if err := json.Unmarshal(raw, &keys); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBackup, err)
	}
	for _, k := range backupKeys {
		v, ok := keys[k]
		if !ok {
			return nil, fmt.Errorf("%w: missing %q", ErrInvalidBackup, k)
		}
		if bytes.Equal(bytes.TrimSpace(v), []byte("null")) {
			return nil, fmt.Errorf("%w: %q is null", ErrInvalidBackup, k)
		}
	}

	var b Backup
	if err := json.Unmarshal(raw, &b); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBackup, err)
	}
	for parent, notes := range b.Notes {
		for _, n := range notes {
			if n.OpportunityID == "" && n.InitiativeID == "" {
				return nil, fmt.Errorf("%w: note %s under %s has no parent", ErrInvalidBackup, n.ID, parent)
			}
		}
	}
	return &b, nil
}

// Import replaces all four domains with the backup in raw after taking a rollback
// snapshot. The imported records become the current generation and the old current
// generation becomes previous. Invalid input leaves everything unchanged.
func (t *Tracker) Import(raw []byte) (*Backup, error) {
	b, err := ValidateBackup(raw)
	if err != nil {
		return nil, err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.takeSnapshot("import"); err != nil {
		return nil, err
	}

	partners := orEmpty(b.Partners)
	pipeline := models.PipelineState{
		Current:  orEmpty(b.PipelineData),
		Previous: t.pipeline.Current,
	}
	initiatives := orEmpty(b.Initiatives)
	nb := notebookFrom(b.Notes)

	if err := t.replaceAll(partners, pipeline, initiatives, nb); err != nil {
		return nil, err
	}
	log.Info("backup imported", "partners", len(partners), "records", len(pipeline.Current),
		"initiatives", len(initiatives), "notes", nb.len())
	return b, nil
}

// ClearAll empties every domain after taking a rollback snapshot.
func (t *Tracker) ClearAll() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.takeSnapshot("clear"); err != nil {
		return err
	}
	empty := models.PipelineState{Current: []models.Opportunity{}, Previous: []models.Opportunity{}}
	return t.replaceAll([]models.Partner{}, empty, []models.Initiative{}, newNotebook())
}

// Rollback restores the snapshot and discards it.
func (t *Tracker) Rollback() (*Snapshot, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	snap := t.snapshot
	if snap == nil {
		return nil, ErrNoSnapshot
	}
	pipeline := models.PipelineState{
		Current:  orEmpty(snap.Pipeline.Current),
		Previous: orEmpty(snap.Pipeline.Previous),
	}
	if err := t.replaceAll(orEmpty(snap.Partners), pipeline, orEmpty(snap.Initiatives), notebookFrom(snap.Notes)); err != nil {
		return nil, err
	}
	if err := t.kv.Delete(store.KeySnapshot); err != nil && !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("failed to drop snapshot: %w", err)
	}
	t.snapshot = nil
	log.Info("rolled back", "snapshot", snap.ID, "reason", snap.Reason)
	return snap, nil
}

// LastSnapshot returns the pending rollback point, if any.
func (t *Tracker) LastSnapshot() (Snapshot, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.snapshot == nil {
		return Snapshot{}, false
	}
	return *t.snapshot, true
}

func (t *Tracker) takeSnapshot(reason string) error {
	now := t.now()
	snap := &Snapshot{
		ID:          ulid.MustNew(ulid.Timestamp(now), ulid.DefaultEntropy()).String(),
		TakenAt:     now,
		Reason:      reason,
		Partners:    slices.Clone(t.partners),
		Pipeline:    models.PipelineState{Current: slices.Clone(t.pipeline.Current), Previous: slices.Clone(t.pipeline.Previous)},
		Initiatives: slices.Clone(t.initiatives),
		Notes:       t.notes.buckets(),
	}
	if err := t.save(store.KeySnapshot, snap); err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}
	t.snapshot = snap
	return nil
}

func (t *Tracker) replaceAll(partners []models.Partner, pipeline models.PipelineState, initiatives []models.Initiative, nb *notebook) error {
	if err := t.savePartners(partners); err != nil {
		return err
	}
	if err := t.savePipeline(pipeline); err != nil {
		return err
	}
	if err := t.saveInitiatives(initiatives); err != nil {
		return err
	}
	if err := t.saveNotes(nb); err != nil {
		return err
	}
	t.partners = partners
	t.pipeline = pipeline
	t.initiatives = initiatives
	t.notes = nb
	return nil
}

func orEmpty[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
