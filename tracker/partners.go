package tracker

import (
	"fmt"
	"slices"
	"strings"

	"github.com/google/uuid"
	"github.com/harperreed/pipetrack/models"
)

// PartnerPatch carries the fields to change; nil fields are left alone.
type PartnerPatch struct {
	Name     *string
	Category *string
	Status   *string
}

func (t *Tracker) Partners() []models.Partner {
	t.mu.Lock()
	defer t.mu.Unlock()
	return slices.Clone(t.partners)
}

// AddPartner creates a partner. Names must be unique ignoring case and surrounding space.
func (t *Tracker) AddPartner(name, category, status string) (models.Partner, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.Partner{}, fmt.Errorf("%w: partner name is required", ErrInvalidInput)
	}
	if status == "" {
		status = models.PartnerActive
	}
	if err := validateStatus(status); err != nil {
		return models.Partner{}, err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.partnerIndex(name, "") >= 0 {
		return models.Partner{}, fmt.Errorf("%w: partner %q already exists", ErrInvalidInput, name)
	}

	p := models.Partner{
		ID:        uuid.NewString(),
		Name:      name,
		Category:  strings.TrimSpace(category),
		Status:    status,
		DateAdded: t.now(),
	}
	next := append(slices.Clone(t.partners), p)
	if err := t.savePartners(next); err != nil {
		return models.Partner{}, err
	}
	t.partners = next
	return p, nil
}

func (t *Tracker) UpdatePartner(id string, patch PartnerPatch) (models.Partner, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	i := slices.IndexFunc(t.partners, func(p models.Partner) bool { return p.ID == id })
	if i < 0 {
		return models.Partner{}, fmt.Errorf("%w: partner %s", ErrNotFound, id)
	}
	p := t.partners[i]

	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return models.Partner{}, fmt.Errorf("%w: partner name is required", ErrInvalidInput)
		}
		if t.partnerIndex(name, id) >= 0 {
			return models.Partner{}, fmt.Errorf("%w: partner %q already exists", ErrInvalidInput, name)
		}
		p.Name = name
	}
	if patch.Category != nil {
		p.Category = strings.TrimSpace(*patch.Category)
	}
	if patch.Status != nil {
		if err := validateStatus(*patch.Status); err != nil {
			return models.Partner{}, err
		}
		p.Status = *patch.Status
	}

	next := slices.Clone(t.partners)
	next[i] = p
	if err := t.savePartners(next); err != nil {
		return models.Partner{}, err
	}
	t.partners = next
	return p, nil
}

// DeletePartner removes a partner. Its pipeline records fall back to the Other group.
func (t *Tracker) DeletePartner(id string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	i := slices.IndexFunc(t.partners, func(p models.Partner) bool { return p.ID == id })
	if i < 0 {
		return fmt.Errorf("%w: partner %s", ErrNotFound, id)
	}
	next := slices.Delete(slices.Clone(t.partners), i, i+1)
	if err := t.savePartners(next); err != nil {
		return err
	}
	t.partners = next
	return nil
}

// ClearPartners removes every partner after taking a rollback snapshot.
func (t *Tracker) ClearPartners() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.takeSnapshot("partners clear"); err != nil {
		return err
	}
	if err := t.savePartners([]models.Partner{}); err != nil {
		return err
	}
	t.partners = []models.Partner{}
	return nil
}

// FindPartner looks a partner up by ID or by case-insensitive name.
func (t *Tracker) FindPartner(idOrName string) (models.Partner, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for _, p := range t.partners {
		if p.ID == idOrName {
			return p, nil
		}
	}
	if i := t.partnerIndex(idOrName, ""); i >= 0 {
		return t.partners[i], nil
	}
	return models.Partner{}, fmt.Errorf("%w: partner %q", ErrNotFound, idOrName)
}

// partnerIndex finds a partner by name, skipping the one with exceptID.
func (t *Tracker) partnerIndex(name, exceptID string) int {
	key := strings.ToLower(strings.TrimSpace(name))
	return slices.IndexFunc(t.partners, func(p models.Partner) bool {
		return p.ID != exceptID && strings.ToLower(strings.TrimSpace(p.Name)) == key
	})
}

func validateStatus(status string) error {
	switch status {
	case models.PartnerActive, models.PartnerInactive:
		return nil
	}
	return fmt.Errorf("%w: status must be %q or %q", ErrInvalidInput, models.PartnerActive, models.PartnerInactive)
}
