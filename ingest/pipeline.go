// ABOUTME: Import pipeline turning raw spreadsheet rows into opportunity records
// ABOUTME: Normalizes columns, coerces amounts and dates, and assigns stable identity
package ingest

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/harperreed/pipetrack/models"
)

// RowError pins a coercion failure to a 1-based data row and its raw header.
type RowError struct {
	Row    int
	Header string
	Err    error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("row %d, column %q: %v", e.Row, e.Header, e.Err)
}

func (e *RowError) Unwrap() error { return e.Err }

// Result is the outcome of one import.
type Result struct {
	Records []models.Opportunity
	// Unmapped lists normalized headers with no canonical field, in first-seen order.
	Unmapped []string
	Reused   int
	Minted   int
}

// Process converts rows into opportunities. Any row that fails coercion aborts the whole
// import so callers never swap in a partial record set.
func Process(rows []Row, existing []models.Opportunity, now time.Time) (*Result, error) {
	matcher := NewIdentityMatcher(existing)
	res := &Result{Records: make([]models.Opportunity, 0, len(rows))}

	for i, row := range rows {
		opp, unmapped, err := buildRecord(row, i+1)
		if err != nil {
			return nil, err
		}
		for _, h := range unmapped {
			if !slices.Contains(res.Unmapped, h) {
				res.Unmapped = append(res.Unmapped, h)
			}
		}

		if id, ok := matcher.Claim(opp.OpportunityName); ok {
			opp.ID = id
			res.Reused++
		} else {
			opp.ID = uuid.NewString()
			res.Minted++
		}
		opp.UploadDate = now
		res.Records = append(res.Records, opp)
	}

	if len(res.Unmapped) > 0 {
		log.Warn("unrecognized columns kept as extra fields", "columns", res.Unmapped)
	}
	log.Debug("processed pipeline rows", "rows", len(rows), "reused", res.Reused, "minted", res.Minted)
	return res, nil
}

func buildRecord(row Row, n int) (models.Opportunity, []string, error) {
	var opp models.Opportunity
	var unmapped []string
	hasDate := false

	for _, cell := range row {
		field, known := CanonicalField(cell.Header)
		if !known {
			unmapped = append(unmapped, field)
		}

		switch field {
		case FieldAmount:
			amount, err := ParseAmount(cell.Value)
			if err != nil {
				return opp, nil, &RowError{Row: n, Header: cell.Header, Err: err}
			}
			opp.Amount = amount
		case FieldCloseDate:
			date, err := ParseDate(cell.Value)
			if err != nil {
				return opp, nil, &RowError{Row: n, Header: cell.Header, Err: err}
			}
			opp.CloseDate = date
			hasDate = true
		default:
			setText(&opp, field, cellString(cell.Value))
		}
	}

	if !hasDate {
		return opp, nil, &RowError{Row: n, Header: "close date", Err: fmt.Errorf("%w: missing", ErrBadDate)}
	}
	return opp, unmapped, nil
}

func setText(o *models.Opportunity, field, value string) {
	switch field {
	case FieldOpportunityName:
		o.OpportunityName = value
	case FieldOpportunityOwner:
		o.OpportunityOwner = value
	case FieldCoSellingWith:
		o.CoSellingWith = value
	case FieldRSMRegion:
		o.RSMRegion = value
	case FieldStage:
		o.Stage = value
	case FieldParentRegion:
		o.ParentRegion = value
	case FieldAggregatedRegion:
		o.AggregatedRegion = value
	case FieldAccountName:
		o.AccountName = value
	case FieldRegisteredPartner:
		o.RegisteredPartner = value
	case FieldEndPartner:
		o.EndPartner = value
	case FieldPublicCloudTarget:
		o.PublicCloudTarget = value
	case FieldPlatformTarget:
		o.PlatformTarget = value
	case FieldCurrentStatus:
		o.CurrentStatus = value
	case FieldFiscalPeriod:
		o.FiscalPeriod = value
	default:
		if o.Extra == nil {
			o.Extra = make(map[string]string)
		}
		o.Extra[field] = value
	}
}

// IsRowError reports whether err came from a specific input row.
func IsRowError(err error) bool {
	var re *RowError
	return errors.As(err, &re)
}
