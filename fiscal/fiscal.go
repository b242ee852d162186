// ABOUTME: Fiscal calendar with a November 1st year start
// ABOUTME: Maps dates to quarter labels, builds rolling windows and orders labels
package fiscal

import (
	"cmp"
	"errors"
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"time"
)

// ErrMalformedLabel is returned when a string is not of the form "Qn FYyyyy".
var ErrMalformedLabel = errors.New("malformed fiscal quarter label")

// Quarter is one fiscal quarter with its inclusive calendar window.
type Quarter struct {
	Number     int       `json:"number"`
	FiscalYear int       `json:"fiscalYear"`
	Start      time.Time `json:"start"`
	End        time.Time `json:"end"`
}

// Label renders the quarter as "Q1 FY2025".
func (q Quarter) Label() string {
	return fmt.Sprintf("Q%d FY%d", q.Number, q.FiscalYear)
}

func (q Quarter) String() string { return q.Label() }

// Contains reports whether t falls on a day within [Start, End], boundaries included.
// Only the calendar day of t matters, not the time of day.
func (q Quarter) Contains(t time.Time) bool {
	d := dayKey(t)
	return d >= dayKey(q.Start) && d <= dayKey(q.End)
}

// Next returns the quarter that starts the day after q ends.
func (q Quarter) Next() Quarter {
	return QuarterOf(q.End.AddDate(0, 0, 1))
}

// Year returns the fiscal year t belongs to. November and December roll into the next year.
func Year(t time.Time) int {
	if t.Month() >= time.November {
		return t.Year() + 1
	}
	return t.Year()
}

// QuarterOf returns the fiscal quarter containing t.
//
//	Q1: Nov, Dec, Jan   Q2: Feb, Mar, Apr   Q3: May, Jun, Jul   Q4: Aug, Sep, Oct
func QuarterOf(t time.Time) Quarter {
	year, month, _ := t.Date()

	var number int
	var startMonth time.Month
	startYear := year

	switch {
	case month >= time.November:
		number, startMonth = 1, time.November
	case month >= time.August:
		number, startMonth = 4, time.August
	case month >= time.May:
		number, startMonth = 3, time.May
	case month >= time.February:
		number, startMonth = 2, time.February
	default: // January closes the quarter opened the previous November
		number, startMonth = 1, time.November
		startYear--
	}

	start := time.Date(startYear, startMonth, 1, 0, 0, 0, 0, t.Location())
	return Quarter{
		Number:     number,
		FiscalYear: Year(t),
		Start:      start,
		End:        start.AddDate(0, 3, -1),
	}
}

// LabelOf is shorthand for QuarterOf(t).Label().
func LabelOf(t time.Time) string {
	return QuarterOf(t).Label()
}

// Window returns four consecutive quarters starting with the one containing today.
func Window(today time.Time) []Quarter {
	quarters := make([]Quarter, 0, 4)
	q := QuarterOf(today)
	for i := 0; i < 4; i++ {
		quarters = append(quarters, q)
		q = q.Next()
	}
	return quarters
}

// Label is a parsed quarter label. FiscalYear is kept exactly as written,
// so "FY24" and "FY2024" are different years.
type Label struct {
	Number     int
	FiscalYear int
}

func (l Label) String() string {
	return fmt.Sprintf("Q%d FY%d", l.Number, l.FiscalYear)
}

// Compare orders labels by fiscal year, then quarter number.
func (l Label) Compare(o Label) int {
	if c := cmp.Compare(l.FiscalYear, o.FiscalYear); c != 0 {
		return c
	}
	return cmp.Compare(l.Number, o.Number)
}

var labelPattern = regexp.MustCompile(`^Q([1-4]) FY([0-9]{1,4})$`)

// ParseLabel parses "Qn FYyyyy". Anything else is ErrMalformedLabel.
func ParseLabel(s string) (Label, error) {
	m := labelPattern.FindStringSubmatch(s)
	if m == nil {
		return Label{}, fmt.Errorf("%w: %q", ErrMalformedLabel, s)
	}
	number, _ := strconv.Atoi(m[1])
	year, _ := strconv.Atoi(m[2])
	return Label{Number: number, FiscalYear: year}, nil
}

// CompareLabels returns a negative number when a is earlier than b, zero when they are
// the same quarter and a positive number when a is later.
func CompareLabels(a, b string) (int, error) {
	la, err := ParseLabel(a)
	if err != nil {
		return 0, err
	}
	lb, err := ParseLabel(b)
	if err != nil {
		return 0, err
	}
	return la.Compare(lb), nil
}

// SortLabels sorts labels chronologically in place.
// The slice is left untouched if any label is malformed.
func SortLabels(labels []string) error {
	parsed := make(map[string]Label, len(labels))
	for _, s := range labels {
		l, err := ParseLabel(s)
		if err != nil {
			return err
		}
		parsed[s] = l
	}
	slices.SortStableFunc(labels, func(a, b string) int {
		return parsed[a].Compare(parsed[b])
	})
	return nil
}

func dayKey(t time.Time) int {
	y, m, d := t.Date()
	return y*10000 + int(m)*100 + d
}
