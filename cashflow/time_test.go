package cashflow_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/cashflow-engine/cashflow"
)

func TestDate_AddMonths_ClampsToMonthEnd(t *testing.T) {
	tests := []struct {
		name string
		from cashflow.Date
		n    int
		want cashflow.Date
	}{
		{"jan 31 to feb", day(2025, time.January, 31), 1, day(2025, time.February, 28)},
		{"jan 31 to leap feb", day(2024, time.January, 31), 1, day(2024, time.February, 29)},
		{"backwards across year", day(2025, time.March, 31), -4, day(2024, time.November, 30)},
		{"twelve months", day(2025, time.May, 15), 12, day(2026, time.May, 15)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.from.AddMonths(tt.n))
		})
	}
}

func TestDate_WithYear_LeapDay(t *testing.T) {
	// GIVEN: Feb 29 in a leap year
	// WHEN: Re-stamped into a common year
	// THEN: It lands on Feb 28
	assert.Equal(t, day(2025, time.February, 28), day(2024, time.February, 29).WithYear(2025))
	assert.Equal(t, day(2028, time.February, 29), day(2024, time.February, 29).WithYear(2028))
}

func TestDaysBetween(t *testing.T) {
	assert.Equal(t, 14, cashflow.DaysBetween(day(2025, time.January, 1), day(2025, time.January, 15)))
	assert.Equal(t, -1, cashflow.DaysBetween(day(2025, time.March, 1), day(2025, time.February, 28)))
	assert.Equal(t, 366, cashflow.DaysBetween(day(2024, time.January, 1), day(2025, time.January, 1)))
}

func TestDaysBetween_SpansBeyondDurationRange(t *testing.T) {
	// One-time cycles are a thousand years long, past what time.Duration holds.
	assert.Equal(t, 365242, cashflow.DaysBetween(day(2018, time.January, 1), day(3018, time.January, 1)))
	assert.Equal(t, -365243, cashflow.DaysBetween(day(2018, time.January, 1), day(1018, time.January, 1)))
}

func TestParseDate(t *testing.T) {
	d, err := cashflow.ParseDate("2025-04-15")
	require.NoError(t, err)
	assert.Equal(t, day(2025, time.April, 15), d)
	assert.Equal(t, "2025-04-15", d.String())

	_, err = cashflow.ParseDate("15/04/2025")
	assert.Error(t, err)
}

func TestPeriod_Validate(t *testing.T) {
	err := cashflow.Period{Start: day(2025, time.May, 1), End: day(2025, time.May, 1)}.Validate()
	assert.ErrorIs(t, err, cashflow.ErrInvalidRange)
	assert.True(t, cashflow.IsClientError(err))

	assert.NoError(t, cashflow.Period{Start: day(2025, time.May, 1), End: day(2025, time.May, 2)}.Validate())
}
