package ingest

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in   any
		want int64
	}{
		{"$1,234.56", 1235},
		{"$1,234.49", 1234},
		{"USD 250000", 250000},
		{"-500", -500},
		{"€ 99.50", 100},
		{"", 0},
		{"n/a", 0},
		{12345.67, 12346},
		{float64(42), 42},
		{int64(7), 7},
		{nil, 0},
	}
	for _, tt := range tests {
		got, err := ParseAmount(tt.in)
		require.NoError(t, err, "%v", tt.in)
		assert.Equal(t, tt.want, got, "%v", tt.in)
	}
}

func TestParseAmountInvalid(t *testing.T) {
	for _, in := range []any{"1.2.3", "--5", "5-", time.Now()} {
		_, err := ParseAmount(in)
		assert.True(t, errors.Is(err, ErrBadAmount), "%v", in)
	}
}

func TestParseDate(t *testing.T) {
	want := time.Date(2025, time.March, 15, 0, 0, 0, 0, time.UTC)
	inputs := []any{
		"2025-03-15",
		"2025-03-15T10:30:00Z",
		"2025-03-15T22:30:00-08:00",
		"03/15/2025",
		"3/15/2025",
		"Mar 15, 2025",
		"March 15, 2025",
		" 2025/03/15 ",
		float64(45731),
		"45731",
		time.Date(2025, time.March, 15, 16, 0, 0, 0, time.UTC),
	}
	for _, in := range inputs {
		got, err := ParseDate(in)
		require.NoError(t, err, "%v", in)
		assert.Equal(t, want, got, "%v", in)
	}
}

func TestParseDateInvalid(t *testing.T) {
	for _, in := range []any{"", "not a date", "13/01/2025", "2/30/2025", "1/2/25", "1/2/2025/4", float64(0), nil} {
		_, err := ParseDate(in)
		assert.True(t, errors.Is(err, ErrBadDate), "%v", in)
	}
}

func TestParseDateTextSerialRange(t *testing.T) {
	for _, in := range []string{"2024", "12", "999999"} {
		_, err := ParseDate(in)
		assert.True(t, errors.Is(err, ErrBadDate), in)
	}

	got, err := ParseDate(float64(2024))
	require.NoError(t, err, "numeric cells keep the full serial range")
	assert.Equal(t, time.Date(1905, time.July, 16, 0, 0, 0, 0, time.UTC), got)
}
