// ABOUTME: Opportunity identity matching across uploads
// ABOUTME: Reuses existing IDs for case-insensitive name matches so notes stay attached
package ingest

import (
	"strings"

	"github.com/harperreed/pipetrack/models"
)

type IdentityMatcher struct {
	byName map[string]string
}

// NewIdentityMatcher indexes existing opportunities by normalized name.
// When names collide the first record wins.
func NewIdentityMatcher(existing []models.Opportunity) *IdentityMatcher {
	m := &IdentityMatcher{
		byName: make(map[string]string, len(existing)),
	}
	for _, o := range existing {
		name := normalizeName(o.OpportunityName)
		if name == "" || o.ID == "" {
			continue
		}
		if _, dup := m.byName[name]; !dup {
			m.byName[name] = o.ID
		}
	}
	return m
}

// Claim returns the existing ID for name and removes it from the index, so a second
// record with the same name in one upload gets a fresh identity.
func (m *IdentityMatcher) Claim(name string) (string, bool) {
	key := normalizeName(name)
	if key == "" {
		return "", false
	}
	id, ok := m.byName[key]
	if ok {
		delete(m.byName, key)
	}
	return id, ok
}

// Len reports how many existing identities are still unclaimed.
func (m *IdentityMatcher) Len() int {
	return len(m.byName)
}

func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
