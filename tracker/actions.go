package tracker

import (
	"slices"

	"github.com/harperreed/pipetrack/models"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// ActionItems joins every action-flagged note to its parent record. Notes whose parent
// is gone are skipped. Items are ordered by partner name using English collation, then
// by note creation.
func (t *Tracker) ActionItems() []models.ActionItem {
	t.mu.Lock()
	defer t.mu.Unlock()

	var items []models.ActionItem
	for _, n := range t.notes.all() {
		if !n.HasAction {
			continue
		}
		item := models.ActionItem{Note: n, Kind: n.Kind()}
		if n.OpportunityID != "" {
			o, ok := t.opportunity(n.OpportunityID)
			if !ok {
				continue
			}
			item.Opportunity = &o
			item.PartnerName = o.CoSellingWith
		} else {
			ini, ok := t.initiative(n.InitiativeID)
			if !ok {
				continue
			}
			item.Initiative = &ini
			item.PartnerName = ini.Partner
		}
		items = append(items, item)
	}

	col := collate.New(language.English)
	slices.SortStableFunc(items, func(a, b models.ActionItem) int {
		return col.CompareString(a.PartnerName, b.PartnerName)
	})
	return items
}
