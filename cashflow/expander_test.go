package cashflow_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/cashflow-engine/cashflow"
)

// =============================================================================
// ONE-TIME
// =============================================================================

func TestExpand_OneTime_InsideRange(t *testing.T) {
	// GIVEN: A one-time definition dated inside the range
	// WHEN: Expanding [2025-01-01, 2025-04-01]
	// THEN: Exactly one instance on that date, tagged one-time
	rec := lookup(t, testControl(), nil, cashflow.KindOneTime)
	defs := []cashflow.Definition{{
		ID: "bonus", Name: "Bonus", Amount: dec("500"), Date: datePtr(day(2025, time.February, 10)),
	}}

	instances, err := cashflow.Expand(rec, defs, day(2025, time.January, 1), day(2025, time.April, 1))

	require.NoError(t, err)
	require.Len(t, instances, 1)
	assert.Equal(t, day(2025, time.February, 10), instances[0].Date)
	assert.Equal(t, cashflow.KindOneTime, instances[0].Kind)
	assert.Equal(t, "bonus", instances[0].DefinitionID)
	assertDecimal(t, "500", instances[0].Amount)
}

func TestExpand_OneTime_OutsideRange(t *testing.T) {
	rec := lookup(t, testControl(), nil, cashflow.KindOneTime)
	defs := []cashflow.Definition{{Name: "Old", Amount: dec("-50"), Date: datePtr(day(2024, time.June, 1))}}

	instances, err := cashflow.Expand(rec, defs, day(2025, time.January, 1), day(2025, time.April, 1))

	require.NoError(t, err)
	assert.Empty(t, instances)
}

func TestExpand_OneTime_OnEndDateIsIncluded(t *testing.T) {
	rec := lookup(t, testControl(), nil, cashflow.KindOneTime)
	defs := []cashflow.Definition{{Name: "Edge", Amount: dec("-1"), Date: datePtr(day(2025, time.April, 1))}}

	instances, err := cashflow.Expand(rec, defs, day(2025, time.January, 1), day(2025, time.April, 1))

	require.NoError(t, err)
	assert.Len(t, instances, 1)
}

func TestExpand_OneTime_RangeStraddlesAnchor(t *testing.T) {
	// GIVEN: A range starting before the one-time anchor and ending after it
	// WHEN: Expanding walks the cycle before the anchor and the one after
	// THEN: The date is emitted once, by the cycle that contains it
	rec := lookup(t, testControl(), nil, cashflow.KindOneTime)
	defs := []cashflow.Definition{
		{Name: "Deposit", Amount: dec("-5"), Date: datePtr(day(2017, time.September, 1))},
		{Name: "Refund", Amount: dec("5"), Date: datePtr(day(2018, time.March, 1))},
	}

	instances, err := cashflow.Expand(rec, defs, day(2017, time.June, 1), day(2018, time.June, 1))

	require.NoError(t, err)
	require.Len(t, instances, 2)
	assert.Equal(t, "Deposit", instances[0].Name)
	assert.Equal(t, day(2017, time.September, 1), instances[0].Date)
	assert.Equal(t, "Refund", instances[1].Name)
}

// =============================================================================
// MONTHLY
// =============================================================================

func TestExpand_Monthly_ThreeMonths(t *testing.T) {
	// GIVEN: Rent due on the 15th
	// WHEN: Expanding three months
	// THEN: Jan 15, Feb 15, Mar 15
	rec := lookup(t, testControl(), nil, cashflow.KindMonthly)
	defs := []cashflow.Definition{{Name: "Rent", Amount: dec("-1200"), DayOfMonth: intPtr(15)}}

	instances, err := cashflow.Expand(rec, defs, day(2025, time.January, 1), day(2025, time.April, 1))

	require.NoError(t, err)
	require.Len(t, instances, 3)
	assert.Equal(t, day(2025, time.January, 15), instances[0].Date)
	assert.Equal(t, day(2025, time.February, 15), instances[1].Date)
	assert.Equal(t, day(2025, time.March, 15), instances[2].Date)
}

func TestExpand_Monthly_DayPastMonthEndClamps(t *testing.T) {
	rec := lookup(t, testControl(), nil, cashflow.KindMonthly)
	defs := []cashflow.Definition{{Name: "Card", Amount: dec("-90"), DayOfMonth: intPtr(31)}}

	instances, err := cashflow.Expand(rec, defs, day(2025, time.February, 1), day(2025, time.March, 1))

	require.NoError(t, err)
	require.Len(t, instances, 1)
	assert.Equal(t, day(2025, time.February, 28), instances[0].Date)
}

func TestExpand_Monthly_ValidityWindow(t *testing.T) {
	// GIVEN: A monthly definition that stops after Feb 20
	// WHEN: Expanding three months
	// THEN: The March occurrence is dropped
	rec := lookup(t, testControl(), nil, cashflow.KindMonthly)
	defs := []cashflow.Definition{{
		Name: "Gym", Amount: dec("-40"), DayOfMonth: intPtr(15),
		LatestValid: datePtr(day(2025, time.February, 20)),
	}}

	instances, err := cashflow.Expand(rec, defs, day(2025, time.January, 1), day(2025, time.April, 1))

	require.NoError(t, err)
	require.Len(t, instances, 2)
	assert.Equal(t, day(2025, time.February, 15), instances[1].Date)
}

func TestExpand_Monthly_StartMidCycle(t *testing.T) {
	// GIVEN: A range starting after this month's occurrence
	// THEN: The first instance is next month's
	rec := lookup(t, testControl(), nil, cashflow.KindMonthly)
	defs := []cashflow.Definition{{Name: "Rent", Amount: dec("-1200"), DayOfMonth: intPtr(5)}}

	instances, err := cashflow.Expand(rec, defs, day(2025, time.January, 10), day(2025, time.March, 1))

	require.NoError(t, err)
	require.Len(t, instances, 1)
	assert.Equal(t, day(2025, time.February, 5), instances[0].Date)
}

func TestExpand_Monthly_OrderIsCycleThenDefinition(t *testing.T) {
	rec := lookup(t, testControl(), nil, cashflow.KindMonthly)
	defs := []cashflow.Definition{
		{Name: "Late", Amount: dec("-1"), DayOfMonth: intPtr(20)},
		{Name: "Early", Amount: dec("-1"), DayOfMonth: intPtr(2)},
	}

	instances, err := cashflow.Expand(rec, defs, day(2025, time.January, 1), day(2025, time.March, 1))

	require.NoError(t, err)
	names := make([]string, len(instances))
	for i, in := range instances {
		names[i] = in.Name
	}
	assert.Equal(t, []string{"Late", "Early", "Late", "Early"}, names)
}

// =============================================================================
// BIWEEKLY / WEEKLY / YEARLY
// =============================================================================

func TestExpand_Biweekly_FromAnchor(t *testing.T) {
	// GIVEN: Biweekly anchor Jan 3 and an anchor-day paycheck
	// WHEN: Expanding January
	// THEN: Jan 3, Jan 17, Jan 31; the cycle before the anchor yields nothing in range
	rec := lookup(t, testControl(), nil, cashflow.KindBiweekly)
	defs := []cashflow.Definition{{Name: "Pay", Amount: dec("2000"), DayOffset: intPtr(0)}}

	instances, err := cashflow.Expand(rec, defs, day(2025, time.January, 1), day(2025, time.February, 1))

	require.NoError(t, err)
	require.Len(t, instances, 3)
	assert.Equal(t, day(2025, time.January, 3), instances[0].Date)
	assert.Equal(t, day(2025, time.January, 17), instances[1].Date)
	assert.Equal(t, day(2025, time.January, 31), instances[2].Date)
}

func TestExpand_Weekly_Offset(t *testing.T) {
	// GIVEN: Weekly cycles start on Sundays; offset 1 is Monday
	rec := lookup(t, testControl(), nil, cashflow.KindWeekly)
	defs := []cashflow.Definition{{Name: "Lunch", Amount: dec("-30"), DayOffset: intPtr(1)}}

	instances, err := cashflow.Expand(rec, defs, day(2025, time.January, 1), day(2025, time.January, 31))

	require.NoError(t, err)
	require.Len(t, instances, 4)
	for _, in := range instances {
		assert.Equal(t, time.Monday, in.Date.Weekday())
	}
	assert.Equal(t, day(2025, time.January, 6), instances[0].Date)
}

func TestExpand_Yearly_RestampsYear(t *testing.T) {
	rec := lookup(t, testControl(), nil, cashflow.KindYearly)
	defs := []cashflow.Definition{{Name: "Insurance", Amount: dec("-900"), Date: datePtr(day(2020, time.March, 10))}}

	instances, err := cashflow.Expand(rec, defs, day(2025, time.January, 1), day(2027, time.January, 1))

	require.NoError(t, err)
	require.Len(t, instances, 2)
	assert.Equal(t, day(2025, time.March, 10), instances[0].Date)
	assert.Equal(t, day(2026, time.March, 10), instances[1].Date)
}

// =============================================================================
// HEBREW YEARLY
// =============================================================================

func TestExpand_HebrewYearly_AllMatchingDays(t *testing.T) {
	// GIVEN: A calendar where two consecutive days both read 7/1
	// WHEN: Expanding the Gregorian year
	// THEN: Both days produce instances
	cal := fakeCalendar{
		day(2025, time.September, 23): {Year: 5786, Month: 7, Day: 1},
		day(2025, time.September, 24): {Year: 5786, Month: 7, Day: 1},
		day(2025, time.October, 2):    {Year: 5786, Month: 7, Day: 10},
	}
	rec := lookup(t, testControl(), cal, cashflow.KindHebrewYearly)
	defs := []cashflow.Definition{{Name: "New year", Amount: dec("-250"), CalendarDay: "7, 1"}}

	instances, err := cashflow.Expand(rec, defs, day(2025, time.January, 1), day(2025, time.December, 31))

	require.NoError(t, err)
	require.Len(t, instances, 2)
	assert.Equal(t, day(2025, time.September, 23), instances[0].Date)
	assert.Equal(t, day(2025, time.September, 24), instances[1].Date)
	assert.Equal(t, cashflow.KindHebrewYearly, instances[0].Kind)
}

func TestExpand_HebrewYearly_BadDesignator(t *testing.T) {
	rec := lookup(t, testControl(), fakeCalendar{}, cashflow.KindHebrewYearly)
	defs := []cashflow.Definition{{Name: "Broken", Amount: dec("-1"), CalendarDay: "seven, 1"}}

	_, err := cashflow.Expand(rec, defs, day(2025, time.January, 1), day(2025, time.March, 1))

	assert.ErrorIs(t, err, cashflow.ErrParse)
	var pe *cashflow.ParseError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, "Broken", pe.Definition)
}

func TestExpand_HebrewYearly_NoCalendar(t *testing.T) {
	rec := lookup(t, testControl(), nil, cashflow.KindHebrewYearly)
	defs := []cashflow.Definition{{Name: "Holiday", Amount: dec("-1"), CalendarDay: "1, 15"}}

	_, err := cashflow.Expand(rec, defs, day(2025, time.January, 1), day(2025, time.March, 1))

	assert.Error(t, err)
}

// =============================================================================
// ERRORS
// =============================================================================

func TestExpand_InvalidRange(t *testing.T) {
	rec := lookup(t, testControl(), nil, cashflow.KindMonthly)

	_, err := cashflow.Expand(rec, nil, day(2025, time.March, 1), day(2025, time.January, 1))

	assert.ErrorIs(t, err, cashflow.ErrInvalidRange)
}

func TestExpand_MissingField(t *testing.T) {
	tests := []struct {
		kind  cashflow.Kind
		field string
	}{
		{cashflow.KindYearly, cashflow.FieldDate},
		{cashflow.KindMonthly, cashflow.FieldDayOfMonth},
		{cashflow.KindBiweekly, cashflow.FieldDayOffset},
		{cashflow.KindWeekly, cashflow.FieldDayOffset},
		{cashflow.KindOneTime, cashflow.FieldDate},
		{cashflow.KindHebrewYearly, cashflow.FieldCalendarDay},
	}

	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			rec := lookup(t, testControl(), fakeCalendar{}, tt.kind)
			defs := []cashflow.Definition{{Name: "Bare", Kind: tt.kind, Amount: dec("-1")}}

			_, err := cashflow.Expand(rec, defs, day(2025, time.January, 1), day(2025, time.March, 1))

			var mf *cashflow.MissingFieldError
			require.True(t, errors.As(err, &mf), "got %v", err)
			assert.Equal(t, tt.field, mf.Field)
			assert.Equal(t, "Bare", mf.Definition)
		})
	}
}

func TestExpand_MonthlyDayOutOfRange(t *testing.T) {
	rec := lookup(t, testControl(), nil, cashflow.KindMonthly)
	defs := []cashflow.Definition{{Name: "Odd", Amount: dec("-1"), DayOfMonth: intPtr(0)}}

	_, err := cashflow.Expand(rec, defs, day(2025, time.January, 1), day(2025, time.March, 1))

	assert.ErrorIs(t, err, cashflow.ErrInvalidField)
}

func TestMemoizedCalendar_CachesConversions(t *testing.T) {
	calls := 0
	inner := calendarFunc(func(d cashflow.Date) cashflow.CalendarDate {
		calls++
		return cashflow.CalendarDate{Month: int(d.Month()), Day: d.Day()}
	})
	memo := cashflow.NewMemoizedCalendar(inner)

	memo.FromGregorian(day(2025, time.May, 1))
	memo.FromGregorian(day(2025, time.May, 1))
	memo.FromGregorian(day(2025, time.May, 2))

	assert.Equal(t, 2, calls)
	assert.Equal(t, 2, memo.Len())
}

type calendarFunc func(cashflow.Date) cashflow.CalendarDate

func (f calendarFunc) FromGregorian(d cashflow.Date) cashflow.CalendarDate { return f(d) }
