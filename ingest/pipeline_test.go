package ingest

import (
	"errors"
	"testing"
	"time"

	"github.com/harperreed/pipetrack/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var uploadTime = time.Date(2025, time.June, 1, 9, 0, 0, 0, time.UTC)

func row(name, amount, closeDate string, extra ...Cell) Row {
	r := Row{
		{Header: "Opportunity Name", Value: name},
		{Header: "Amount (converted)", Value: amount},
		{Header: "Close Date", Value: closeDate},
	}
	return append(r, extra...)
}

func TestProcessBuildsRecords(t *testing.T) {
	rows := []Row{
		row("Acme Renewal", "$12,345.67", "03/15/2025",
			Cell{Header: "Co-Selling With", Value: "Acme"},
			Cell{Header: "Stage", Value: "Qualify"},
			Cell{Header: "Deal Score", Value: float64(7)},
		),
	}

	res, err := Process(rows, nil, uploadTime)
	require.NoError(t, err)
	require.Len(t, res.Records, 1)

	got := res.Records[0]
	assert.NotEmpty(t, got.ID)
	assert.Equal(t, "Acme Renewal", got.OpportunityName)
	assert.Equal(t, int64(12346), got.Amount)
	assert.Equal(t, time.Date(2025, time.March, 15, 0, 0, 0, 0, time.UTC), got.CloseDate)
	assert.Equal(t, "Acme", got.CoSellingWith)
	assert.Equal(t, "Qualify", got.Stage)
	assert.Equal(t, map[string]string{"deal score": "7"}, got.Extra)
	assert.Equal(t, uploadTime, got.UploadDate)
	assert.Equal(t, []string{"deal score"}, res.Unmapped)
	assert.Equal(t, 1, res.Minted)
}

func TestProcessReusesIdentityCaseInsensitively(t *testing.T) {
	existing := []models.Opportunity{
		{ID: "id-1", OpportunityName: "Big Deal"},
		{ID: "id-2", OpportunityName: "Other Deal"},
	}
	rows := []Row{
		row("BIG DEAL", "100", "2025-01-10"),
		row("Brand New", "200", "2025-01-10"),
	}

	res, err := Process(rows, existing, uploadTime)
	require.NoError(t, err)
	assert.Equal(t, "id-1", res.Records[0].ID)
	assert.NotEqual(t, "id-2", res.Records[1].ID)
	assert.NotEmpty(t, res.Records[1].ID)
	assert.Equal(t, 1, res.Reused)
	assert.Equal(t, 1, res.Minted)
}

func TestProcessIsIdempotentOnNames(t *testing.T) {
	rows := []Row{
		row("Alpha", "10", "2025-02-01"),
		row("Beta", "20", "2025-02-01"),
	}
	first, err := Process(rows, nil, uploadTime)
	require.NoError(t, err)

	second, err := Process(rows, first.Records, uploadTime.Add(time.Hour))
	require.NoError(t, err)

	for i := range rows {
		assert.Equal(t, first.Records[i].ID, second.Records[i].ID)
	}
}

func TestProcessDuplicateNamesGetDistinctIDs(t *testing.T) {
	existing := []models.Opportunity{{ID: "id-1", OpportunityName: "Twin"}}
	rows := []Row{
		row("Twin", "1", "2025-02-01"),
		row("twin", "2", "2025-02-01"),
		row("", "3", "2025-02-01"),
	}

	res, err := Process(rows, existing, uploadTime)
	require.NoError(t, err)
	assert.Equal(t, "id-1", res.Records[0].ID)
	assert.NotEqual(t, "id-1", res.Records[1].ID)
	assert.NotEqual(t, res.Records[1].ID, res.Records[2].ID)
}

func TestProcessRejectsBadRows(t *testing.T) {
	rows := []Row{
		row("Fine", "10", "2025-02-01"),
		row("Broken", "10", "someday"),
	}

	res, err := Process(rows, nil, uploadTime)
	require.Error(t, err)
	assert.Nil(t, res)
	assert.True(t, errors.Is(err, ErrBadDate))

	var rowErr *RowError
	require.True(t, errors.As(err, &rowErr))
	assert.Equal(t, 2, rowErr.Row)
	assert.Equal(t, "Close Date", rowErr.Header)
	assert.True(t, IsRowError(err))
}

func TestProcessRequiresCloseDate(t *testing.T) {
	rows := []Row{{{Header: "Opportunity Name", Value: "No Date"}}}
	_, err := Process(rows, nil, uploadTime)
	assert.True(t, errors.Is(err, ErrBadDate))
}

func TestProcessRejectsBadAmount(t *testing.T) {
	_, err := Process([]Row{row("X", "1.2.3", "2025-02-01")}, nil, uploadTime)
	assert.True(t, errors.Is(err, ErrBadAmount))
}

func TestIdentityMatcherClaim(t *testing.T) {
	m := NewIdentityMatcher([]models.Opportunity{
		{ID: "a", OpportunityName: " Alpha "},
		{ID: "b", OpportunityName: "ALPHA"},
		{ID: "c", OpportunityName: ""},
	})
	assert.Equal(t, 1, m.Len())

	id, ok := m.Claim("alpha")
	assert.True(t, ok)
	assert.Equal(t, "a", id)

	_, ok = m.Claim("alpha")
	assert.False(t, ok)
	_, ok = m.Claim("")
	assert.False(t, ok)
}
