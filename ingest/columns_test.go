package ingest

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanonicalField(t *testing.T) {
	tests := []struct {
		raw   string
		field string
		known bool
	}{
		{"Opportunity Name", FieldOpportunityName, true},
		{"  AMOUNT (converted) ", FieldAmount, true},
		{"Close Date", FieldCloseDate, true},
		{"Co-Selling With", FieldCoSellingWith, true},
		{"End-Partner", FieldEndPartner, true},
		{"Fiscal Period", FieldFiscalPeriod, true},
		{"Deal Score", "deal score", false},
		{"Amount", FieldAmount, true},
		{"closeDate", FieldCloseDate, true},
	}
	for _, tt := range tests {
		field, known := CanonicalField(tt.raw)
		assert.Equal(t, tt.field, field, tt.raw)
		assert.Equal(t, tt.known, known, tt.raw)
	}
}

func TestNormalizeHeader(t *testing.T) {
	assert.Equal(t, "rsm region", NormalizeHeader("\tRSM Region  "))
	assert.Equal(t, "", NormalizeHeader("   "))
}
