package tracker

import (
	"fmt"
	"slices"
	"strings"

	"github.com/google/uuid"
	"github.com/harperreed/pipetrack/models"
)

// InitiativeInput is the editable part of an initiative.
type InitiativeInput struct {
	Partner         string `json:"partner"`
	Project         string `json:"project"`
	TargetQuarter   string `json:"targetQuarter"`
	HPEOwner        string `json:"hpeOwner"`
	PartnerOwner    string `json:"partnerOwner"`
	HPEResource     string `json:"hpeResource"`
	PartnerResource string `json:"partnerResource"`
	Role            string `json:"role"`
}

// InitiativePatch changes only the non-nil fields.
type InitiativePatch struct {
	Partner         *string
	Project         *string
	TargetQuarter   *string
	HPEOwner        *string
	PartnerOwner    *string
	HPEResource     *string
	PartnerResource *string
	Role            *string
}

func (t *Tracker) Initiatives() []models.Initiative {
	t.mu.Lock()
	defer t.mu.Unlock()
	return slices.Clone(t.initiatives)
}

func (t *Tracker) Initiative(id string) (models.Initiative, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.initiative(id)
}

func (t *Tracker) initiative(id string) (models.Initiative, bool) {
	i := slices.IndexFunc(t.initiatives, func(x models.Initiative) bool { return x.ID == id })
	if i < 0 {
		return models.Initiative{}, false
	}
	return t.initiatives[i], true
}

func (t *Tracker) AddInitiative(in InitiativeInput) (models.Initiative, error) {
	q, ok := models.ParseQuarter(in.TargetQuarter)
	if !ok {
		return models.Initiative{}, fmt.Errorf("%w: target quarter must be Q1-Q4, got %q", ErrInvalidInput, in.TargetQuarter)
	}
	if strings.TrimSpace(in.Partner) == "" || strings.TrimSpace(in.Project) == "" {
		return models.Initiative{}, fmt.Errorf("%w: partner and project are required", ErrInvalidInput)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	ini := models.Initiative{
		ID:              uuid.NewString(),
		Partner:         strings.TrimSpace(in.Partner),
		Project:         strings.TrimSpace(in.Project),
		TargetQuarter:   q,
		HPEOwner:        in.HPEOwner,
		PartnerOwner:    in.PartnerOwner,
		HPEResource:     in.HPEResource,
		PartnerResource: in.PartnerResource,
		Role:            in.Role,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	next := append(slices.Clone(t.initiatives), ini)
	if err := t.saveInitiatives(next); err != nil {
		return models.Initiative{}, err
	}
	t.initiatives = next
	return ini, nil
}

func (t *Tracker) UpdateInitiative(id string, patch InitiativePatch) (models.Initiative, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	i := slices.IndexFunc(t.initiatives, func(x models.Initiative) bool { return x.ID == id })
	if i < 0 {
		return models.Initiative{}, fmt.Errorf("%w: initiative %s", ErrNotFound, id)
	}
	ini := t.initiatives[i]

	if patch.TargetQuarter != nil {
		q, ok := models.ParseQuarter(*patch.TargetQuarter)
		if !ok {
			return models.Initiative{}, fmt.Errorf("%w: target quarter must be Q1-Q4, got %q", ErrInvalidInput, *patch.TargetQuarter)
		}
		ini.TargetQuarter = q
	}
	for _, f := range []struct {
		src *string
		dst *string
	}{
		{patch.Partner, &ini.Partner},
		{patch.Project, &ini.Project},
		{patch.HPEOwner, &ini.HPEOwner},
		{patch.PartnerOwner, &ini.PartnerOwner},
		{patch.HPEResource, &ini.HPEResource},
		{patch.PartnerResource, &ini.PartnerResource},
		{patch.Role, &ini.Role},
	} {
		if f.src != nil {
			*f.dst = *f.src
		}
	}
	if strings.TrimSpace(ini.Partner) == "" || strings.TrimSpace(ini.Project) == "" {
		return models.Initiative{}, fmt.Errorf("%w: partner and project are required", ErrInvalidInput)
	}
	ini.UpdatedAt = t.now()

	next := slices.Clone(t.initiatives)
	next[i] = ini
	if err := t.saveInitiatives(next); err != nil {
		return models.Initiative{}, err
	}
	t.initiatives = next
	return ini, nil
}

// DeleteInitiative removes an initiative. Its notes stay until pruned.
func (t *Tracker) DeleteInitiative(id string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	i := slices.IndexFunc(t.initiatives, func(x models.Initiative) bool { return x.ID == id })
	if i < 0 {
		return fmt.Errorf("%w: initiative %s", ErrNotFound, id)
	}
	next := slices.Delete(slices.Clone(t.initiatives), i, i+1)
	if err := t.saveInitiatives(next); err != nil {
		return err
	}
	t.initiatives = next
	return nil
}

// ClearInitiatives removes every initiative after taking a rollback snapshot. Notes stay until pruned.
func (t *Tracker) ClearInitiatives() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.takeSnapshot("initiatives clear"); err != nil {
		return err
	}
	if err := t.saveInitiatives([]models.Initiative{}); err != nil {
		return err
	}
	t.initiatives = []models.Initiative{}
	return nil
}
