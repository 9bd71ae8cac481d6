/*
selectors.go - Day selectors, one per recurrence kind

PURPOSE:
  A DaySelector maps one cycle window plus one definition to the concrete
  days the definition occurs on within that cycle. The contract is always
  "zero or more dates": the Hebrew selector can legitimately return several,
  so callers never assume at most one result.

SELECTORS:
  YearlySelector:      definition Date's month/day re-stamped to the cycle year
  MonthlySelector:     DayOfMonth within the cycle month (clamped to month end)
  OffsetSelector:      cycle start + DayOffset (biweekly and weekly)
  FixedDateSelector:   definition Date, in the cycle containing it (one-time)
  CalendarDaySelector: every day in the cycle whose Hebrew month/day match

FIELD CHECKS:
  Each selector validates only the fields it reads and fails with
  MissingFieldError / FieldError / ParseError. Expansion aborts on the
  first failure.

SEE ALSO:
  - recurrence.go: Binds selectors into the catalog
  - expander.go: Filters selected dates against range and validity window
*/
package cashflow

import (
	"fmt"
	"strconv"
	"strings"
)

// DaySelector picks the occurrence days of a definition within one cycle.
type DaySelector interface {
	Select(cycle Cycle, def Definition) ([]Date, error)
}

// Field names used in MissingFieldError.
const (
	FieldDate        = "date"
	FieldDayOfMonth  = "day_of_month"
	FieldDayOffset   = "day_offset"
	FieldCalendarDay = "calendar_day"
)

// =============================================================================
// YEARLY
// =============================================================================

// YearlySelector re-stamps the definition's month/day into the cycle's year.
type YearlySelector struct{}

func (YearlySelector) Select(cycle Cycle, def Definition) ([]Date, error) {
	if def.Date == nil {
		return nil, &MissingFieldError{Definition: def.Name, Kind: def.Kind, Field: FieldDate}
	}
	return []Date{def.Date.WithYear(cycle.Start.Year())}, nil
}

// =============================================================================
// MONTHLY
// =============================================================================

// MonthlySelector places the definition on its day of month. Days past the
// end of a short month land on the last day (a bill due on the 31st is due
// on Feb 28).
type MonthlySelector struct{}

func (MonthlySelector) Select(cycle Cycle, def Definition) ([]Date, error) {
	if def.DayOfMonth == nil {
		return nil, &MissingFieldError{Definition: def.Name, Kind: def.Kind, Field: FieldDayOfMonth}
	}
	day := *def.DayOfMonth
	if day < 1 || day > 31 {
		return nil, &FieldError{Definition: def.Name, Field: FieldDayOfMonth, Value: day, Reason: "must be between 1 and 31"}
	}
	return []Date{cycle.Start.WithDay(day)}, nil
}

// =============================================================================
// BIWEEKLY / WEEKLY
// =============================================================================

// OffsetSelector adds DayOffset days to the cycle start.
type OffsetSelector struct{}

func (OffsetSelector) Select(cycle Cycle, def Definition) ([]Date, error) {
	if def.DayOffset == nil {
		return nil, &MissingFieldError{Definition: def.Name, Kind: def.Kind, Field: FieldDayOffset}
	}
	if *def.DayOffset < 0 {
		return nil, &FieldError{Definition: def.Name, Field: FieldDayOffset, Value: *def.DayOffset, Reason: "must not be negative"}
	}
	return []Date{cycle.Start.AddDays(*def.DayOffset)}, nil
}

// =============================================================================
// ONE-TIME
// =============================================================================

// FixedDateSelector returns the definition's date in the one cycle that
// contains it.
type FixedDateSelector struct{}

func (FixedDateSelector) Select(cycle Cycle, def Definition) ([]Date, error) {
	if def.Date == nil {
		return nil, &MissingFieldError{Definition: def.Name, Kind: def.Kind, Field: FieldDate}
	}
	if !cycle.Contains(*def.Date) {
		return nil, nil
	}
	return []Date{*def.Date}, nil
}

// =============================================================================
// HEBREW YEARLY
// =============================================================================

// CalendarDaySelector scans every Gregorian day of the cycle and keeps those
// whose secondary-calendar month/day equal the definition's designator.
type CalendarDaySelector struct {
	Calendar SecondaryCalendar
}

func (s CalendarDaySelector) Select(cycle Cycle, def Definition) ([]Date, error) {
	if strings.TrimSpace(def.CalendarDay) == "" {
		return nil, &MissingFieldError{Definition: def.Name, Kind: def.Kind, Field: FieldCalendarDay}
	}
	month, day, err := ParseCalendarDay(def.CalendarDay)
	if err != nil {
		return nil, &ParseError{Definition: def.Name, Input: def.CalendarDay, Err: err}
	}
	if s.Calendar == nil {
		return nil, fmt.Errorf("definition %q: no secondary calendar configured", def.Name)
	}

	var matches []Date
	for _, d := range cycle.Days() {
		cd := s.Calendar.FromGregorian(d)
		if cd.Month == month && cd.Day == day {
			matches = append(matches, d)
		}
	}
	return matches, nil
}

// ParseCalendarDay parses a "month, day" designator such as "7, 10".
func ParseCalendarDay(s string) (month, day int, err error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("want \"month, day\", got %d part(s)", len(parts))
	}
	month, err = strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return 0, 0, fmt.Errorf("month: %w", err)
	}
	day, err = strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return 0, 0, fmt.Errorf("day: %w", err)
	}
	if month < 1 || month > 13 {
		return 0, 0, fmt.Errorf("month %d out of range 1-13", month)
	}
	if day < 1 || day > 30 {
		return 0, 0, fmt.Errorf("day %d out of range 1-30", day)
	}
	return month, day, nil
}
