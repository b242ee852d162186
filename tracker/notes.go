package tracker

import (
	"fmt"
	"strings"

	"github.com/harperreed/pipetrack/models"
	"github.com/oklog/ulid/v2"
)

// AddNote attaches a note to a current opportunity or an initiative.
func (t *Tracker) AddNote(parentID, content string, hasAction bool, kind models.NoteKind) (models.Note, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return models.Note{}, fmt.Errorf("%w: note content is required", ErrInvalidInput)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	note := models.Note{
		ID:        ulid.MustNew(ulid.Timestamp(now), ulid.DefaultEntropy()).String(),
		Content:   content,
		HasAction: hasAction,
		CreatedAt: now,
		UpdatedAt: now,
	}

	switch kind {
	case models.NoteOpportunity:
		if _, ok := t.opportunity(parentID); !ok {
			return models.Note{}, fmt.Errorf("%w: opportunity %s", ErrNotFound, parentID)
		}
		note.OpportunityID = parentID
	case models.NoteInitiative:
		if _, ok := t.initiative(parentID); !ok {
			return models.Note{}, fmt.Errorf("%w: initiative %s", ErrNotFound, parentID)
		}
		note.InitiativeID = parentID
	default:
		return models.Note{}, fmt.Errorf("%w: unknown note kind %q", ErrInvalidInput, kind)
	}

	next := t.notes.clone()
	next.add(note)
	if err := t.saveNotes(next); err != nil {
		return models.Note{}, err
	}
	t.notes = next
	return note, nil
}

// UpdateNote changes content and the action flag. The parent and CreatedAt never change.
func (t *Tracker) UpdateNote(noteID, content string, hasAction bool) (models.Note, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return models.Note{}, fmt.Errorf("%w: note content is required", ErrInvalidInput)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	note, ok := t.notes.get(noteID)
	if !ok {
		return models.Note{}, fmt.Errorf("%w: note %s", ErrNotFound, noteID)
	}
	note.Content = content
	note.HasAction = hasAction
	note.UpdatedAt = t.now()

	next := t.notes.clone()
	next.put(note)
	if err := t.saveNotes(next); err != nil {
		return models.Note{}, err
	}
	t.notes = next
	return note, nil
}

// DeleteNote removes a note; a parent left without notes loses its bucket.
func (t *Tracker) DeleteNote(noteID string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	next := t.notes.clone()
	if !next.remove(noteID) {
		return fmt.Errorf("%w: note %s", ErrNotFound, noteID)
	}
	if err := t.saveNotes(next); err != nil {
		return err
	}
	t.notes = next
	return nil
}

// Note looks a note up by ID.
func (t *Tracker) Note(noteID string) (models.Note, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.notes.get(noteID)
}

// NotesForOpportunity lists the notes of an opportunity in the order they were added.
func (t *Tracker) NotesForOpportunity(id string) []models.Note {
	t.mu.Lock()
	defer t.mu.Unlock()
	return filterNotes(t.notes.inBucket(id), func(n models.Note) bool { return n.OpportunityID == id })
}

// NotesForInitiative lists the notes of an initiative in the order they were added.
func (t *Tracker) NotesForInitiative(id string) []models.Note {
	t.mu.Lock()
	defer t.mu.Unlock()
	return filterNotes(t.notes.inBucket(id), func(n models.Note) bool { return n.InitiativeID == id })
}

// HasNotes reports whether a parent currently has a note bucket.
func (t *Tracker) HasNotes(parentID string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.notes.hasBucket(parentID)
}

// AllNotes returns every note by creation time.
func (t *Tracker) AllNotes() []models.Note {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.notes.all()
}

// PruneOrphanNotes deletes notes whose parent is neither a current opportunity nor an
// initiative and returns how many were removed. Nothing prunes automatically.
func (t *Tracker) PruneOrphanNotes() (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	next := t.notes.clone()
	removed := 0
	for _, n := range t.notes.all() {
		if t.parentExists(n) {
			continue
		}
		next.remove(n.ID)
		removed++
	}
	if removed == 0 {
		return 0, nil
	}
	if err := t.saveNotes(next); err != nil {
		return 0, err
	}
	t.notes = next
	return removed, nil
}

func (t *Tracker) parentExists(n models.Note) bool {
	if n.OpportunityID != "" {
		_, ok := t.opportunity(n.OpportunityID)
		return ok
	}
	_, ok := t.initiative(n.InitiativeID)
	return ok
}

func filterNotes(notes []models.Note, keep func(models.Note) bool) []models.Note {
	out := make([]models.Note, 0, len(notes))
	for _, n := range notes {
		if keep(n) {
			out = append(out, n)
		}
	}
	return out
}
