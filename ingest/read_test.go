package ingest

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func writeWorkbook(t *testing.T, lines [][]any) string {
	t.Helper()
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	for i, line := range lines {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &line))
	}

	path := filepath.Join(t.TempDir(), "pipeline.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func TestReadFileXLSX(t *testing.T) {
	path := writeWorkbook(t, [][]any{
		{"Opportunity Name", "Amount (converted)", "Close Date", "Co-Selling With"},
		{"Acme Renewal", 12345.67, "03/15/2025", "Acme"},
		{},
		{"Globex Expansion", "$2,000", "2025-04-01", ""},
	})

	rows, err := ReadFile(path)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	res, err := Process(rows, nil, time.Now())
	require.NoError(t, err)

	assert.Equal(t, "Acme Renewal", res.Records[0].OpportunityName)
	assert.Equal(t, int64(12346), res.Records[0].Amount)
	assert.Equal(t, time.Date(2025, time.March, 15, 0, 0, 0, 0, time.UTC), res.Records[0].CloseDate)
	assert.Equal(t, "Acme", res.Records[0].CoSellingWith)

	assert.Equal(t, int64(2000), res.Records[1].Amount)
	assert.Equal(t, "", res.Records[1].CoSellingWith)
}

func TestReadFileUnsupported(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pipeline.csv")
	require.NoError(t, os.WriteFile(path, []byte("a,b\n"), 0600))

	_, err := ReadFile(path)
	assert.True(t, errors.Is(err, ErrUnsupportedFormat))
}

func TestReadFileCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pipeline.xlsx")
	require.NoError(t, os.WriteFile(path, []byte("not a zip"), 0600))

	_, err := ReadFile(path)
	assert.Error(t, err)
}

func TestRowsFromGrid(t *testing.T) {
	rows := RowsFromGrid([][]any{
		{"Name", "", "Amount"},
		{"a", "ignored", float64(5), "beyond header"},
		{"", nil, "  "},
		{"b"},
	})
	require.Len(t, rows, 2)
	assert.Equal(t, Row{{Header: "Name", Value: "a"}, {Header: "Amount", Value: float64(5)}}, rows[0])
	assert.Equal(t, Row{{Header: "Name", Value: "b"}}, rows[1])

	v, ok := rows[0].Get("Amount")
	assert.True(t, ok)
	assert.Equal(t, float64(5), v)

	assert.Nil(t, RowsFromGrid(nil))
}

func TestSupportedFile(t *testing.T) {
	assert.True(t, SupportedFile("a.XLSX"))
	assert.True(t, SupportedFile("/tmp/b.xls"))
	assert.False(t, SupportedFile("c.csv"))
}
