package ingest

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Cell is one header/value pair. Value is a string, float64, int64 or time.Time.
type Cell struct {
	Header string
	Value  any
}

// Row is one spreadsheet line in column order.
type Row []Cell

// Get returns the value under an exact header.
func (r Row) Get(header string) (any, bool) {
	for _, c := range r {
		if c.Header == header {
			return c.Value, true
		}
	}
	return nil, false
}

// RowsFromGrid turns a header line plus data lines into rows. Columns with a blank
// header are skipped, blank cells are omitted, and lines with no values are dropped.
func RowsFromGrid(grid [][]any) []Row {
	if len(grid) == 0 {
		return nil
	}

	headers := make([]string, len(grid[0]))
	for i, h := range grid[0] {
		headers[i] = strings.TrimSpace(cellString(h))
	}

	rows := make([]Row, 0, len(grid)-1)
	for _, line := range grid[1:] {
		var row Row
		for i, v := range line {
			if i >= len(headers) || headers[i] == "" || isBlank(v) {
				continue
			}
			row = append(row, Cell{Header: headers[i], Value: v})
		}
		if len(row) > 0 {
			rows = append(rows, row)
		}
	}
	return rows
}

// StringGrid widens a grid of strings for RowsFromGrid.
func StringGrid(lines [][]string) [][]any {
	grid := make([][]any, len(lines))
	for i, line := range lines {
		grid[i] = make([]any, len(line))
		for j, v := range line {
			grid[i][j] = v
		}
	}
	return grid
}

func isBlank(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(x) == ""
	}
	return false
}

// cellString renders any cell value as text for passthrough fields.
func cellString(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case int64:
		return strconv.FormatInt(x, 10)
	case int:
		return strconv.Itoa(x)
	case bool:
		return strconv.FormatBool(x)
	case time.Time:
		return x.Format("2006-01-02")
	}
	return fmt.Sprint(v)
}
