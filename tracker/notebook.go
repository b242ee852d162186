package tracker

import (
	"maps"
	"slices"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/harperreed/pipetrack/models"
)

// notebook is a flat note table with an index from parent ID to note IDs in
// append order. Buckets exist only while they hold at least one note.
type notebook struct {
	byID     map[string]models.Note
	byParent map[string][]string
}

func newNotebook() *notebook {
	return &notebook{
		byID:     make(map[string]models.Note),
		byParent: make(map[string][]string),
	}
}

// notebookFrom builds a notebook from the persisted parent -> notes layout.
// Duplicate note IDs keep their first occurrence.
func notebookFrom(buckets map[string][]models.Note) *notebook {
	nb := newNotebook()
	parents := slices.Sorted(maps.Keys(buckets))
	for _, parent := range parents {
		for _, n := range buckets[parent] {
			if _, dup := nb.byID[n.ID]; dup || n.ID == "" {
				log.Warn("skipping duplicate or unnamed note", "id", n.ID, "parent", parent)
				continue
			}
			nb.byID[n.ID] = n
			nb.byParent[parent] = append(nb.byParent[parent], n.ID)
		}
	}
	return nb
}

// buckets returns the persisted layout.
func (nb *notebook) buckets() map[string][]models.Note {
	out := make(map[string][]models.Note, len(nb.byParent))
	for parent, ids := range nb.byParent {
		notes := make([]models.Note, 0, len(ids))
		for _, id := range ids {
			notes = append(notes, nb.byID[id])
		}
		out[parent] = notes
	}
	return out
}

func (nb *notebook) clone() *notebook {
	c := &notebook{
		byID:     maps.Clone(nb.byID),
		byParent: make(map[string][]string, len(nb.byParent)),
	}
	for parent, ids := range nb.byParent {
		c.byParent[parent] = slices.Clone(ids)
	}
	return c
}

func (nb *notebook) add(n models.Note) {
	nb.byID[n.ID] = n
	parent := n.ParentID()
	nb.byParent[parent] = append(nb.byParent[parent], n.ID)
}

func (nb *notebook) get(id string) (models.Note, bool) {
	n, ok := nb.byID[id]
	return n, ok
}

func (nb *notebook) put(n models.Note) {
	nb.byID[n.ID] = n
}

// remove deletes a note and drops its bucket when it becomes empty.
func (nb *notebook) remove(id string) bool {
	if _, ok := nb.byID[id]; !ok {
		return false
	}
	delete(nb.byID, id)
	for parent, ids := range nb.byParent {
		i := slices.Index(ids, id)
		if i < 0 {
			continue
		}
		ids = slices.Delete(ids, i, i+1)
		if len(ids) == 0 {
			delete(nb.byParent, parent)
		} else {
			nb.byParent[parent] = ids
		}
		break
	}
	return true
}

// inBucket returns the notes stored under parent in append order.
func (nb *notebook) inBucket(parent string) []models.Note {
	ids := nb.byParent[parent]
	notes := make([]models.Note, 0, len(ids))
	for _, id := range ids {
		notes = append(notes, nb.byID[id])
	}
	return notes
}

func (nb *notebook) hasBucket(parent string) bool {
	_, ok := nb.byParent[parent]
	return ok
}

// all returns every note ordered by creation time, then ID.
func (nb *notebook) all() []models.Note {
	notes := slices.Collect(maps.Values(nb.byID))
	slices.SortFunc(notes, func(a, b models.Note) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
	return notes
}

func (nb *notebook) parents() []string {
	return slices.Sorted(maps.Keys(nb.byParent))
}

func (nb *notebook) len() int {
	return len(nb.byID)
}
