// ABOUTME: Partner and fiscal quarter grouping of pipeline records
// ABOUTME: Resolves co-selling names against known partners and buckets deals by quarter
package report

import (
	"cmp"
	"slices"
	"strings"

	"github.com/harperreed/pipetrack/fiscal"
	"github.com/harperreed/pipetrack/models"
)

// OtherPartner collects records whose co-selling partner is not a known partner.
const OtherPartner = "Other"

// PartnerIndex resolves free-text co-selling names to canonical partner names.
type PartnerIndex struct {
	byName map[string]string
	order  []string
}

// NewPartnerIndex indexes partners by trimmed lowercase name. Later duplicates win the
// lookup, matching how the partner list is edited in place.
func NewPartnerIndex(partners []models.Partner) *PartnerIndex {
	idx := &PartnerIndex{byName: make(map[string]string, len(partners))}
	for _, p := range partners {
		key := partnerKey(p.Name)
		if key == "" {
			continue
		}
		idx.byName[key] = p.Name
		if !slices.Contains(idx.order, p.Name) {
			idx.order = append(idx.order, p.Name)
		}
	}
	if !slices.Contains(idx.order, OtherPartner) {
		idx.order = append(idx.order, OtherPartner)
	}
	return idx
}

// Resolve returns the canonical partner name for a co-selling value, or OtherPartner.
func (p *PartnerIndex) Resolve(coSellingWith string) string {
	if name, ok := p.byName[partnerKey(coSellingWith)]; ok {
		return name
	}
	return OtherPartner
}

// Names lists group names in partner list order with OtherPartner last.
func (p *PartnerIndex) Names() []string {
	return slices.Clone(p.order)
}

func partnerKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// QuarterBucket is one fiscal quarter of a partner's deals.
type QuarterBucket struct {
	Label   string               `json:"quarter"`
	Records []models.Opportunity `json:"opportunities"`
	Total   int64                `json:"total"`
}

func (b QuarterBucket) Count() int { return len(b.Records) }

// PartnerGroup is every current deal of one partner.
type PartnerGroup struct {
	Partner  string          `json:"partner"`
	Quarters []QuarterBucket `json:"quarters"`
	Count    int             `json:"count"`
	Total    int64           `json:"total"`
}

// GroupByPartner buckets records by resolved partner and fiscal quarter of the close date.
// Groups without records are left out. Groups are ordered by total descending, buckets
// chronologically, and records within a bucket by amount descending. All sorts are stable.
func GroupByPartner(records []models.Opportunity, partners []models.Partner) []PartnerGroup {
	idx := NewPartnerIndex(partners)

	byPartner := make(map[string]*PartnerGroup)
	buckets := make(map[string]map[string]*QuarterBucket)
	for _, name := range idx.Names() {
		byPartner[name] = &PartnerGroup{Partner: name}
		buckets[name] = make(map[string]*QuarterBucket)
	}

	for _, rec := range records {
		name := idx.Resolve(rec.CoSellingWith)
		g := byPartner[name]
		label := fiscal.LabelOf(rec.CloseDate)

		b, ok := buckets[name][label]
		if !ok {
			b = &QuarterBucket{Label: label}
			buckets[name][label] = b
		}
		b.Records = append(b.Records, rec)
		b.Total += rec.Amount
		g.Count++
		g.Total += rec.Amount
	}

	groups := make([]PartnerGroup, 0, len(byPartner))
	for _, name := range idx.Names() {
		g := byPartner[name]
		if g.Count == 0 {
			continue
		}
		for _, b := range buckets[name] {
			slices.SortStableFunc(b.Records, func(x, y models.Opportunity) int {
				return cmp.Compare(y.Amount, x.Amount)
			})
			g.Quarters = append(g.Quarters, *b)
		}
		slices.SortFunc(g.Quarters, func(x, y QuarterBucket) int {
			return compareLabels(x.Label, y.Label)
		})
		groups = append(groups, *g)
	}

	slices.SortStableFunc(groups, func(x, y PartnerGroup) int {
		return cmp.Compare(y.Total, x.Total)
	})
	return groups
}

// compareLabels orders well-formed labels chronologically and falls back to text order.
func compareLabels(a, b string) int {
	c, err := fiscal.CompareLabels(a, b)
	if err != nil {
		return strings.Compare(a, b)
	}
	return c
}

// NoteSummary is the note indicator for a set of records.
type NoteSummary struct {
	Count     int  `json:"count"`
	HasAction bool `json:"hasAction"`
}

// SummarizeNotes counts notes across records using the given lookup.
func SummarizeNotes(records []models.Opportunity, notesFor func(opportunityID string) []models.Note) NoteSummary {
	var s NoteSummary
	for _, rec := range records {
		for _, n := range notesFor(rec.ID) {
			s.Count++
			if n.HasAction {
				s.HasAction = true
			}
		}
	}
	return s
}
