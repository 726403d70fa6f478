package record

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate_Valid(t *testing.T) {
	d, err := ParseDate("2025-12-31")
	require.NoError(t, err)
	assert.Equal(t, NewDate(2025, time.December, 31), d)
	assert.Equal(t, "2025-12-31", d.ISO())
}

func TestParseDate_Invalid(t *testing.T) {
	tests := []string{
		"",
		"2025-13-01",
		"2025-02-30",
		"2023-02-29", // not a leap year
		"31-12-2025",
		"2025/12/31",
		"not a date",
	}
	for _, input := range tests {
		t.Run(input, func(t *testing.T) {
			_, err := ParseDate(input)
			assert.Error(t, err)
		})
	}
}

func TestParseDate_LeapDay(t *testing.T) {
	d, err := ParseDate("2024-02-29")
	require.NoError(t, err)
	assert.Equal(t, NewDate(2024, time.February, 29), d)
}

func TestDate_Compare(t *testing.T) {
	a := NewDate(2025, time.June, 15)
	tests := []struct {
		name  string
		other Date
		want  int
	}{
		{"earlier year", NewDate(2024, time.December, 31), 1},
		{"later year", NewDate(2026, time.January, 1), -1},
		{"earlier month", NewDate(2025, time.May, 31), 1},
		{"later month", NewDate(2025, time.July, 1), -1},
		{"earlier day", NewDate(2025, time.June, 14), 1},
		{"later day", NewDate(2025, time.June, 16), -1},
		{"equal", NewDate(2025, time.June, 15), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, a.Compare(tt.other))
			assert.Equal(t, tt.want < 0, a.Before(tt.other))
			assert.Equal(t, tt.want > 0, a.After(tt.other))
		})
	}
}

func TestDate_IsZero(t *testing.T) {
	assert.True(t, Date{}.IsZero())
	assert.False(t, NewDate(2025, time.January, 1).IsZero())
}

func TestDaysIn(t *testing.T) {
	assert.Equal(t, 31, DaysIn(2025, time.January))
	assert.Equal(t, 28, DaysIn(2025, time.February))
	assert.Equal(t, 29, DaysIn(2024, time.February))
	assert.Equal(t, 28, DaysIn(1900, time.February)) // century, not a leap year
	assert.Equal(t, 29, DaysIn(2000, time.February)) // quadricentennial leap year
	assert.Equal(t, 30, DaysIn(2025, time.September))
	assert.Equal(t, 31, DaysIn(2025, time.December))
}
