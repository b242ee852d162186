// ABOUTME: Spreadsheet decoding for pipeline uploads
// ABOUTME: Reads the first worksheet of .xlsx and .xls files into header-keyed rows
package ingest

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"
)

var ErrUnsupportedFormat = errors.New("unsupported spreadsheet format")

// SupportedFile reports whether path has an extension ReadFile can decode.
func SupportedFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xls":
		return true
	}
	return false
}

// ReadFile decodes the first worksheet of an .xlsx or .xls file.
func ReadFile(path string) ([]Row, error) {
	if !SupportedFile(path) {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(path))
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return ReadNamed(path, bytes.NewReader(data))
}

// ReadNamed decodes r using the extension of name to pick the format. Used for
// uploads where the content never touches disk.
func ReadNamed(name string, r io.ReadSeeker) ([]Row, error) {
	switch ext := strings.ToLower(filepath.Ext(name)); ext {
	case ".xls":
		return ReadXLS(r)
	case ".xlsx":
		return ReadXLSX(r)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
}

// ReadXLSX decodes the first worksheet of an Office Open XML workbook.
// Cells are read raw, so dates arrive as serial numbers and amounts unformatted.
func ReadXLSX(r io.Reader) ([]Row, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no worksheets")
	}

	lines, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read worksheet %q: %w", sheets[0], err)
	}
	return RowsFromGrid(StringGrid(lines)), nil
}

// ReadXLS decodes the first worksheet of a legacy BIFF workbook.
func ReadXLS(r io.ReadSeeker) ([]Row, error) {
	wb, err := xls.OpenReader(r, "utf-8")
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	if wb.NumSheets() == 0 {
		return nil, fmt.Errorf("workbook has no worksheets")
	}
	sheet := wb.GetSheet(0)
	if sheet == nil {
		return nil, fmt.Errorf("workbook has no worksheets")
	}

	var lines [][]string
	for i := 0; i <= int(sheet.MaxRow); i++ {
		row := sheet.Row(i)
		if row == nil {
			if len(lines) > 0 {
				lines = append(lines, nil)
			}
			continue
		}
		line := make([]string, row.LastCol())
		for j := row.FirstCol(); j < row.LastCol(); j++ {
			line[j] = row.Col(j)
		}
		lines = append(lines, line)
	}
	return RowsFromGrid(StringGrid(lines)), nil
}
