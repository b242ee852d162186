package report

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/harperreed/pipetrack/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func opp(id, name, partner string, amount int64, closeDate time.Time) models.Opportunity {
	return models.Opportunity{ID: id, OpportunityName: name, CoSellingWith: partner, Amount: amount, CloseDate: closeDate}
}

var testPartners = []models.Partner{
	{ID: "p1", Name: "Acme"},
	{ID: "p2", Name: "Globex"},
	{ID: "p3", Name: "Initech"},
}

func TestPartnerIndexResolve(t *testing.T) {
	idx := NewPartnerIndex(testPartners)
	assert.Equal(t, "Acme", idx.Resolve("acme "))
	assert.Equal(t, "Acme", idx.Resolve("  ACME"))
	assert.Equal(t, OtherPartner, idx.Resolve("Umbrella"))
	assert.Equal(t, OtherPartner, idx.Resolve(""))
	assert.Equal(t, []string{"Acme", "Globex", "Initech", OtherPartner}, idx.Names())
}

func TestGroupByPartner(t *testing.T) {
	records := []models.Opportunity{
		opp("1", "small acme", "acme ", 100, date(2025, time.March, 1)),
		opp("2", "big acme", "Acme", 900, date(2025, time.March, 2)),
		opp("3", "early acme", "ACME", 50, date(2024, time.November, 5)),
		opp("4", "globex", "Globex", 2000, date(2025, time.June, 1)),
		opp("5", "stray", "Umbrella", 10, date(2025, time.June, 1)),
	}

	groups := GroupByPartner(records, testPartners)
	require.Len(t, groups, 3)

	assert.Equal(t, "Globex", groups[0].Partner)
	assert.Equal(t, "Acme", groups[1].Partner)
	assert.Equal(t, OtherPartner, groups[2].Partner)

	acme := groups[1]
	assert.Equal(t, int64(1050), acme.Total)
	assert.Equal(t, 3, acme.Count)
	require.Len(t, acme.Quarters, 2)
	assert.Equal(t, "Q1 FY2025", acme.Quarters[0].Label)
	assert.Equal(t, "Q2 FY2025", acme.Quarters[1].Label)
	assert.Equal(t, "2", acme.Quarters[1].Records[0].ID)
	assert.Equal(t, "1", acme.Quarters[1].Records[1].ID)
	assert.Equal(t, int64(1000), acme.Quarters[1].Total)
	assert.Equal(t, 2, acme.Quarters[1].Count())

	for _, g := range groups {
		assert.NotEqual(t, "Initech", g.Partner, "empty groups are excluded")
	}
}

func TestGroupByPartnerTiesKeepPartnerOrder(t *testing.T) {
	records := []models.Opportunity{
		opp("1", "a", "Initech", 100, date(2025, time.March, 1)),
		opp("2", "b", "Globex", 100, date(2025, time.March, 1)),
	}
	groups := GroupByPartner(records, testPartners)
	require.Len(t, groups, 2)
	assert.Equal(t, "Globex", groups[0].Partner)
	assert.Equal(t, "Initech", groups[1].Partner)
}

func TestGroupByPartnerEmpty(t *testing.T) {
	assert.Empty(t, GroupByPartner(nil, testPartners))
}

func TestBuildWindow(t *testing.T) {
	today := date(2025, time.January, 15)
	records := []models.Opportunity{
		opp("1", "a", "Acme", 100, date(2025, time.January, 31)),
		opp("2", "b", "Acme", 200, date(2025, time.February, 1)),
		opp("3", "c", "Acme", 400, date(2026, time.March, 1)),
		opp("4", "d", "globex", 50, date(2025, time.October, 31)),
		opp("5", "e", "nobody", 5, date(2025, time.May, 1)),
	}

	wt := BuildWindow(records, testPartners, today)
	assert.Equal(t, []string{"Q1 FY2025", "Q2 FY2025", "Q3 FY2025", "Q4 FY2025"}, wt.Labels())
	require.Len(t, wt.Rows, 3)

	acme := wt.Rows[0]
	assert.Equal(t, "Acme", acme.Partner)
	assert.Equal(t, 3, acme.Opportunities)
	assert.Equal(t, int64(700), acme.Total)
	assert.Equal(t, []int64{100, 200, 0, 0}, acme.Amounts)

	assert.Equal(t, "Globex", wt.Rows[1].Partner)
	assert.Equal(t, []int64{0, 0, 0, 50}, wt.Rows[1].Amounts)
	assert.Equal(t, OtherPartner, wt.Rows[2].Partner)

	assert.Equal(t, 5, wt.Totals.Opportunities)
	assert.Equal(t, int64(755), wt.Totals.Total)
	assert.Equal(t, []int64{100, 200, 5, 50}, wt.Totals.Amounts)
}

func TestComputeStats(t *testing.T) {
	current := []models.Opportunity{{Amount: 100}, {Amount: 200}}
	previous := []models.Opportunity{{Amount: 50}}

	s := ComputeStats(current, previous)
	assert.Equal(t, int64(300), s.TotalValue)
	assert.Equal(t, 2, s.ActiveDeals)
	assert.Equal(t, 150.0, s.AverageDealSize)
	assert.Equal(t, int64(250), s.ChangeFromLastUpload.TotalValue)
	assert.Equal(t, 1, s.ChangeFromLastUpload.ActiveDeals)
	assert.Equal(t, 100.0, s.ChangeFromLastUpload.AverageDealSize)
}

func TestComputeStatsEmpty(t *testing.T) {
	s := ComputeStats(nil, nil)
	assert.Zero(t, s.AverageDealSize)
	assert.Zero(t, s.ChangeFromLastUpload.AverageDealSize)

	s = ComputeStats(nil, []models.Opportunity{{Amount: 80}, {Amount: 20}})
	assert.Equal(t, int64(-100), s.ChangeFromLastUpload.TotalValue)
	assert.Equal(t, -2, s.ChangeFromLastUpload.ActiveDeals)
	assert.Equal(t, -50.0, s.ChangeFromLastUpload.AverageDealSize)
}

func TestSummarizeNotes(t *testing.T) {
	notes := map[string][]models.Note{
		"1": {{ID: "n1"}, {ID: "n2", HasAction: true}},
		"2": {{ID: "n3"}},
	}
	lookup := func(id string) []models.Note { return notes[id] }

	s := SummarizeNotes([]models.Opportunity{{ID: "1"}, {ID: "2"}, {ID: "3"}}, lookup)
	assert.Equal(t, NoteSummary{Count: 3, HasAction: true}, s)
	assert.Equal(t, NoteSummary{}, SummarizeNotes([]models.Opportunity{{ID: "3"}}, lookup))
}

func TestOpportunityLines(t *testing.T) {
	records := []models.Opportunity{
		opp("1", "Late", " Acme ", 10, date(2025, time.June, 1)),
		opp("2", "Early", "Acme", 20, date(2025, time.January, 3)),
		opp("3", "Other", "Globex", 30, date(2025, time.January, 3)),
		opp("4", "Early Two", "Acme", 40, date(2024, time.December, 3)),
	}

	lines := OpportunityLines(records)
	require.Len(t, lines, 3+3+1+1+1)
	assert.Equal(t, []any{"Partner Pipeline Opportunities"}, lines[0])
	assert.Empty(t, lines[1])
	assert.Equal(t, "Partner", lines[2][0])

	assert.Equal(t, "Acme", lines[3][0])
	assert.Equal(t, "Q1 FY2025", lines[3][1])
	assert.Equal(t, "Early", lines[3][2])
	assert.Equal(t, "1/3/2025", lines[3][4])
	assert.Equal(t, "", lines[4][0])
	assert.Equal(t, "", lines[4][1])
	assert.Equal(t, "Early Two", lines[4][2])
	assert.Equal(t, "Acme", lines[5][0], "partner repeats on each quarter group")
	assert.Equal(t, "Q3 FY2025", lines[5][1])
	assert.Empty(t, lines[6])
	assert.Equal(t, "Globex", lines[7][0])
	assert.Empty(t, lines[8])
}

func TestInitiativeLines(t *testing.T) {
	initiatives := []models.Initiative{
		{Partner: "Zeta", Project: "z", TargetQuarter: models.Q2},
		{Partner: "beta", Project: "b", TargetQuarter: models.Q2},
		{Partner: "Alpha", Project: "a", TargetQuarter: models.Q1},
	}

	lines := InitiativeLines(initiatives)
	require.Len(t, lines, 3+1+1+2+1)
	assert.Equal(t, []any{"Q1", "Alpha"}, lines[3][:2])
	assert.Empty(t, lines[4])
	assert.Equal(t, []any{"Q2", "beta"}, lines[5][:2])
	assert.Equal(t, []any{"", "Zeta"}, lines[6][:2])
}

func TestWriteOpportunitiesWorkbook(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteOpportunities(&buf, []models.Opportunity{
		opp("1", "Deal", "Acme", 1234, date(2025, time.March, 4)),
	}))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	assert.Equal(t, []string{OpportunitiesSheet}, f.GetSheetList())
	title, err := f.GetCellValue(OpportunitiesSheet, "A1")
	require.NoError(t, err)
	assert.Equal(t, "Partner Pipeline Opportunities", title)

	amount, err := f.GetCellValue(OpportunitiesSheet, "D4")
	require.NoError(t, err)
	assert.Equal(t, "1234", amount)

	width, err := f.GetColWidth(OpportunitiesSheet, "C")
	require.NoError(t, err)
	assert.Equal(t, 40.0, width)
}

func TestWriteInitiativesWorkbook(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteInitiatives(&buf, []models.Initiative{{Partner: "Acme", Project: "Lab", TargetQuarter: models.Q3}}))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	assert.Equal(t, []string{InitiativesSheet}, f.GetSheetList())
	project, err := f.GetCellValue(InitiativesSheet, "C4")
	require.NoError(t, err)
	assert.Equal(t, "Lab", project)
}

func TestFormatAmount(t *testing.T) {
	assert.Equal(t, "$1,234", FormatAmount(1234))
	assert.Equal(t, "$0", FormatAmount(0))
	assert.Equal(t, "▲ $300", FormatChange(300))
	assert.Equal(t, "▼ $50", FormatChange(-50))
	assert.Equal(t, "-", FormatChange(0))
}

func TestRenderTables(t *testing.T) {
	records := []models.Opportunity{
		opp("1", "A very long opportunity name", "Acme", 1500, date(2025, time.March, 1)),
	}
	notes := func(id string) []models.Note {
		if id == "1" {
			return []models.Note{{HasAction: true}}
		}
		return nil
	}

	var buf bytes.Buffer
	RenderGroups(&buf, GroupByPartner(records, testPartners), notes)
	out := buf.String()
	assert.Contains(t, out, "A very long opp...")
	assert.Contains(t, out, "(1 note !)")
	assert.Contains(t, out, "$1,500")

	buf.Reset()
	RenderWindow(&buf, BuildWindow(records, testPartners, date(2025, time.February, 1)))
	assert.Contains(t, buf.String(), "Q2 FY2025")
	assert.Contains(t, strings.ToUpper(buf.String()), "TOTAL")

	buf.Reset()
	RenderStats(&buf, ComputeStats(records, nil))
	assert.Contains(t, buf.String(), "▲ $1,500")

	buf.Reset()
	RenderGroups(&buf, nil, nil)
	assert.Contains(t, buf.String(), "No pipeline data.")
}
