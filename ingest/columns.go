// ABOUTME: Column normalizer for spreadsheet exports
// ABOUTME: Maps varying header spellings onto canonical opportunity field names
package ingest

import "strings"

// Canonical field names produced by CanonicalField.
const (
	FieldOpportunityName   = "opportunityName"
	FieldAmount            = "amount"
	FieldCloseDate         = "closeDate"
	FieldOpportunityOwner  = "opportunityOwner"
	FieldCoSellingWith     = "coSellingWith"
	FieldRSMRegion         = "rsmRegion"
	FieldStage             = "stage"
	FieldParentRegion      = "parentRegion"
	FieldAggregatedRegion  = "aggregatedRegion"
	FieldAccountName       = "accountName"
	FieldRegisteredPartner = "registeredPartner"
	FieldEndPartner        = "endPartner"
	FieldPublicCloudTarget = "publicCloudTarget"
	FieldPlatformTarget    = "platformTarget"
	FieldCurrentStatus     = "currentStatus"
	FieldFiscalPeriod      = "fiscalPeriod"
)

var columnMappings = map[string]string{
	"opportunity name":    FieldOpportunityName,
	"amount (converted)":  FieldAmount,
	"close date":          FieldCloseDate,
	"opportunity owner":   FieldOpportunityOwner,
	"co-selling with":     FieldCoSellingWith,
	"rsm region":          FieldRSMRegion,
	"stage":               FieldStage,
	"parent region":       FieldParentRegion,
	"aggregated region":   FieldAggregatedRegion,
	"account name":        FieldAccountName,
	"registered partner":  FieldRegisteredPartner,
	"end-partner":         FieldEndPartner,
	"public cloud target": FieldPublicCloudTarget,
	"platform target":     FieldPlatformTarget,
	"current status":      FieldCurrentStatus,
	"fiscal period":       FieldFiscalPeriod,
}

// fieldNames accepts canonical names themselves as headers, so re-imported
// exports of our own records map cleanly.
var fieldNames = func() map[string]string {
	m := make(map[string]string, len(columnMappings))
	for _, f := range columnMappings {
		m[strings.ToLower(f)] = f
	}
	return m
}()

// NormalizeHeader lowercases and trims a raw header.
func NormalizeHeader(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

// CanonicalField maps a raw header to its field name. Unrecognized headers come back
// normalized with known=false; they are kept, not dropped.
func CanonicalField(raw string) (field string, known bool) {
	normalized := NormalizeHeader(raw)
	if f, ok := columnMappings[normalized]; ok {
		return f, true
	}
	if f, ok := fieldNames[normalized]; ok {
		return f, true
	}
	return normalized, false
}
