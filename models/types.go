// ABOUTME: Data models for the partner pipeline tracker
// ABOUTME: Defines Partner, Opportunity, Initiative, Note and pipeline stats structs
package models

import (
	"strings"
	"time"
)

type Partner struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Category  string    `json:"category"`
	Status    string    `json:"status"`
	DateAdded time.Time `json:"dateAdded"`
}

// Partner categories. Category is free text; these are the ones the UI offers.
const (
	CategoryFocus     = "focus"
	CategoryIncubate  = "incubate"
	CategoryReference = "reference"
)

const (
	PartnerActive   = "active"
	PartnerInactive = "inactive"
)

// Opportunity is one row of an uploaded pipeline export.
type Opportunity struct {
	ID                string            `json:"id"`
	OpportunityName   string            `json:"opportunityName"`
	Amount            int64             `json:"amount"`
	CloseDate         time.Time         `json:"closeDate"`
	OpportunityOwner  string            `json:"opportunityOwner,omitempty"`
	CoSellingWith     string            `json:"coSellingWith"`
	RSMRegion         string            `json:"rsmRegion,omitempty"`
	Stage             string            `json:"stage,omitempty"`
	ParentRegion      string            `json:"parentRegion,omitempty"`
	AggregatedRegion  string            `json:"aggregatedRegion,omitempty"`
	AccountName       string            `json:"accountName,omitempty"`
	RegisteredPartner string            `json:"registeredPartner,omitempty"`
	EndPartner        string            `json:"endPartner,omitempty"`
	PublicCloudTarget string            `json:"publicCloudTarget,omitempty"`
	PlatformTarget    string            `json:"platformTarget,omitempty"`
	CurrentStatus     string            `json:"currentStatus,omitempty"`
	FiscalPeriod      string            `json:"fiscalPeriod,omitempty"`
	UploadDate        time.Time         `json:"uploadDate"`
	Extra             map[string]string `json:"extra,omitempty"`
}

// DisplayName shortens long opportunity names for narrow tables.
func (o Opportunity) DisplayName() string {
	return Truncate(o.OpportunityName, 15)
}

// Truncate cuts s to n runes and appends an ellipsis when it was longer.
func Truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}

// PipelineState holds the current upload generation and the one before it.
type PipelineState struct {
	Current  []Opportunity `json:"currentData"`
	Previous []Opportunity `json:"previousData"`
}

type PipelineStats struct {
	TotalValue           int64       `json:"totalValue"`
	ActiveDeals          int         `json:"activeDeals"`
	AverageDealSize      float64     `json:"averageDealSize"`
	ChangeFromLastUpload StatsChange `json:"changeFromLastUpload"`
}

type StatsChange struct {
	TotalValue      int64   `json:"totalValue"`
	ActiveDeals     int     `json:"activeDeals"`
	AverageDealSize float64 `json:"averageDealSize"`
}

// Quarter is the nominal target quarter of an initiative. It carries no fiscal year.
type Quarter string

const (
	Q1 Quarter = "Q1"
	Q2 Quarter = "Q2"
	Q3 Quarter = "Q3"
	Q4 Quarter = "Q4"
)

var Quarters = []Quarter{Q1, Q2, Q3, Q4}

// ParseQuarter accepts "q1".."Q4" with surrounding whitespace.
func ParseQuarter(s string) (Quarter, bool) {
	q := Quarter(strings.ToUpper(strings.TrimSpace(s)))
	for _, known := range Quarters {
		if q == known {
			return q, true
		}
	}
	return "", false
}

type Initiative struct {
	ID              string    `json:"id"`
	Partner         string    `json:"partner"`
	Project         string    `json:"project"`
	TargetQuarter   Quarter   `json:"targetQuarter"`
	HPEOwner        string    `json:"hpeOwner"`
	PartnerOwner    string    `json:"partnerOwner"`
	HPEResource     string    `json:"hpeResource"`
	PartnerResource string    `json:"partnerResource"`
	Role            string    `json:"role"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// NoteKind says which kind of record a note hangs off.
type NoteKind string

const (
	NoteOpportunity NoteKind = "opportunity"
	NoteInitiative  NoteKind = "initiative"
)

// Note is attached to exactly one opportunity or one initiative.
type Note struct {
	ID            string    `json:"id"`
	OpportunityID string    `json:"opportunityId,omitempty"`
	InitiativeID  string    `json:"initiativeId,omitempty"`
	Content       string    `json:"content"`
	HasAction     bool      `json:"hasAction"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// ParentID returns whichever foreign key is set.
func (n Note) ParentID() string {
	if n.OpportunityID != "" {
		return n.OpportunityID
	}
	return n.InitiativeID
}

// Kind reports the parent kind from the foreign key that is set.
func (n Note) Kind() NoteKind {
	if n.OpportunityID != "" {
		return NoteOpportunity
	}
	return NoteInitiative
}

// ActionItem is an action-flagged note joined with its parent record.
type ActionItem struct {
	Note        Note         `json:"note"`
	Kind        NoteKind     `json:"type"`
	PartnerName string       `json:"partnerName"`
	Opportunity *Opportunity `json:"opportunity,omitempty"`
	Initiative  *Initiative  `json:"initiative,omitempty"`
}

// Title names the parent record of the item.
func (a ActionItem) Title() string {
	if a.Opportunity != nil {
		return a.Opportunity.OpportunityName
	}
	if a.Initiative != nil {
		return a.Initiative.Project
	}
	return ""
}
