// ABOUTME: Value coercion for imported amounts and close dates
// ABOUTME: Strips currency formatting, rounds amounts and parses several date encodings
package ingest

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

var (
	ErrBadAmount = errors.New("invalid amount")
	ErrBadDate   = errors.New("invalid date")
)

var nonNumeric = regexp.MustCompile(`[^0-9.\-]+`)

// ParseAmount strips everything but digits, dots and minus signs and rounds to a whole
// number. Halves round away from zero. A value with no digits left is zero.
func ParseAmount(v any) (int64, error) {
	switch x := v.(type) {
	case nil:
		return 0, nil
	case int64:
		return x, nil
	case int:
		return int64(x), nil
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return 0, fmt.Errorf("%w: %v", ErrBadAmount, x)
		}
		return decimal.NewFromFloat(x).Round(0).IntPart(), nil
	case time.Time:
		return 0, fmt.Errorf("%w: date value", ErrBadAmount)
	}

	raw := cellString(v)
	stripped := nonNumeric.ReplaceAllString(raw, "")
	if stripped == "" {
		return 0, nil
	}
	d, err := decimal.NewFromString(stripped)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrBadAmount, raw)
	}
	return d.Round(0).IntPart(), nil
}

// dateLayouts are tried in order before the M/D/YYYY fallback.
var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"2006/01/02",
	"Jan 2, 2006",
	"January 2, 2006",
	"Jan 2 2006",
	"2 Jan 2006",
	"02-Jan-2006",
	"Mon Jan 2 2006",
	time.RFC1123,
	time.RFC1123Z,
}

// Text cells holding a bare number are read as Excel serials only when they land in
// these years. A typed "2024" is a mistake, not 1905-07-16.
const (
	minSerialYear = 1950
	maxSerialYear = 2200
)

// ParseDate coerces a close date cell to a calendar date at UTC midnight.
// Strings try the native layouts, then strict M/D/YYYY, then an Excel serial number
// within [minSerialYear, maxSerialYear). Numbers are Excel serial dates.
func ParseDate(v any) (time.Time, error) {
	switch x := v.(type) {
	case time.Time:
		return dateOnly(x), nil
	case float64:
		return fromSerial(x)
	case int64:
		return fromSerial(float64(x))
	case int:
		return fromSerial(float64(x))
	case nil:
		return time.Time{}, fmt.Errorf("%w: empty", ErrBadDate)
	}

	s := strings.TrimSpace(cellString(v))
	if s == "" {
		return time.Time{}, fmt.Errorf("%w: empty", ErrBadDate)
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return dateOnly(t), nil
		}
	}
	if t, ok := parseMonthDayYear(s); ok {
		return t, nil
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		t, err := fromSerial(f)
		if err != nil {
			return time.Time{}, err
		}
		if t.Year() < minSerialYear || t.Year() >= maxSerialYear {
			return time.Time{}, fmt.Errorf("%w: %q is not a plausible serial date", ErrBadDate, s)
		}
		return t, nil
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrBadDate, s)
}

// parseMonthDayYear accepts exactly three slash-separated numbers with a four digit year
// and a day that exists in that month.
func parseMonthDayYear(s string) (time.Time, bool) {
	parts := strings.Split(s, "/")
	if len(parts) != 3 || len(parts[2]) != 4 {
		return time.Time{}, false
	}
	nums := make([]int, 3)
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return time.Time{}, false
		}
		nums[i] = n
	}
	month, day, year := nums[0], nums[1], nums[2]
	if month < 1 || month > 12 || day < 1 {
		return time.Time{}, false
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if t.Day() != day {
		return time.Time{}, false
	}
	return t, true
}

func fromSerial(f float64) (time.Time, error) {
	if f <= 0 || math.IsNaN(f) || math.IsInf(f, 0) {
		return time.Time{}, fmt.Errorf("%w: serial %v", ErrBadDate, f)
	}
	t, err := excelize.ExcelDateToTime(f, false)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %v", ErrBadDate, err)
	}
	return dateOnly(t), nil
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
