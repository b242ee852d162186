// ABOUTME: Spreadsheet exports of opportunities and initiatives
// ABOUTME: Writes grouped, titled worksheets with fixed column widths using excelize
package report

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/harperreed/pipetrack/fiscal"
	"github.com/harperreed/pipetrack/models"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

const (
	OpportunitiesSheet = "Partner Opportunities"
	InitiativesSheet   = "Partner Initiatives"
)

var (
	opportunityHeader = []any{"Partner", "Quarter", "Opportunity", "Amount", "Close Date", "Stage", "Region", "Account"}
	opportunityWidths = []float64{30, 15, 40, 15, 12, 15, 15, 30}

	initiativeHeader = []any{"Quarter", "Partner", "Project", "HPE Owner", "Partner Owner", "HPE Resource", "Partner Resource", "Role"}
	initiativeWidths = []float64{15, 30, 40, 25, 25, 25, 25, 30}
)

// OpportunityLines lays out the opportunities sheet: title, blank line, header, then deals
// grouped by trimmed co-selling partner in first-seen order and by quarter chronologically.
// Partner and quarter are only named on the first line of their group, and a blank line
// follows each partner.
func OpportunityLines(records []models.Opportunity) [][]any {
	lines := [][]any{{"Partner Pipeline Opportunities"}, {}, opportunityHeader}

	var partners []string
	byPartner := make(map[string]map[string][]models.Opportunity)
	for _, rec := range records {
		partner := strings.TrimSpace(rec.CoSellingWith)
		if _, ok := byPartner[partner]; !ok {
			byPartner[partner] = make(map[string][]models.Opportunity)
			partners = append(partners, partner)
		}
		label := fiscal.LabelOf(rec.CloseDate)
		byPartner[partner][label] = append(byPartner[partner][label], rec)
	}

	for _, partner := range partners {
		quarters := make([]string, 0, len(byPartner[partner]))
		for label := range byPartner[partner] {
			quarters = append(quarters, label)
		}
		slices.SortFunc(quarters, compareLabels)

		for _, label := range quarters {
			for i, rec := range byPartner[partner][label] {
				partnerCell, quarterCell := "", ""
				if i == 0 {
					partnerCell, quarterCell = partner, label
				}
				lines = append(lines, []any{
					partnerCell,
					quarterCell,
					rec.OpportunityName,
					rec.Amount,
					rec.CloseDate.Format("1/2/2006"),
					rec.Stage,
					rec.RSMRegion,
					rec.AccountName,
				})
			}
		}
		lines = append(lines, []any{})
	}
	return lines
}

// InitiativeLines lays out the initiatives sheet grouped by target quarter, partners in
// collated order within a quarter, with a blank line after each quarter.
func InitiativeLines(initiatives []models.Initiative) [][]any {
	lines := [][]any{{"Partner Initiatives"}, {}, initiativeHeader}

	var order []models.Quarter
	byQuarter := make(map[models.Quarter][]models.Initiative)
	for _, ini := range initiatives {
		if _, ok := byQuarter[ini.TargetQuarter]; !ok {
			order = append(order, ini.TargetQuarter)
		}
		byQuarter[ini.TargetQuarter] = append(byQuarter[ini.TargetQuarter], ini)
	}
	slices.SortStableFunc(order, func(a, b models.Quarter) int {
		return strings.Compare(string(a), string(b))
	})

	col := collate.New(language.English)
	for _, q := range order {
		group := byQuarter[q]
		slices.SortStableFunc(group, func(a, b models.Initiative) int {
			return col.CompareString(a.Partner, b.Partner)
		})
		for i, ini := range group {
			quarterCell := ""
			if i == 0 {
				quarterCell = string(q)
			}
			lines = append(lines, []any{
				quarterCell,
				ini.Partner,
				ini.Project,
				ini.HPEOwner,
				ini.PartnerOwner,
				ini.HPEResource,
				ini.PartnerResource,
				ini.Role,
			})
		}
		lines = append(lines, []any{})
	}
	return lines
}

// WriteOpportunities writes the opportunities workbook to w.
func WriteOpportunities(w io.Writer, records []models.Opportunity) error {
	return writeSheet(w, OpportunitiesSheet, OpportunityLines(records), opportunityWidths)
}

// WriteInitiatives writes the initiatives workbook to w.
func WriteInitiatives(w io.Writer, initiatives []models.Initiative) error {
	return writeSheet(w, InitiativesSheet, InitiativeLines(initiatives), initiativeWidths)
}

func writeSheet(w io.Writer, name string, lines [][]any, widths []float64) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", name); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	for i, line := range lines {
		if len(line) == 0 {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(name, cell, &line); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+1, err)
		}
	}

	for i, width := range widths {
		colName, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(name, colName, colName, width); err != nil {
			return fmt.Errorf("failed to set column width: %w", err)
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}
