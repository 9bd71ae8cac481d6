package cashflow

import "fmt"

// =============================================================================
// STEP - "Add one period" for a recurrence kind
// =============================================================================

// Step moves a date forward (or backward) by whole periods.
//
// Boundaries are always computed from the anchor (anchor + n*step) rather
// than by repeated single steps, so calendar steps never drift when a month
// clamps its day.
type Step interface {
	// Add returns d moved by n periods. n may be negative.
	Add(d Date, n int) Date
	String() string
}

// DayStep is a fixed day-count period (weekly = 7, biweekly = 14).
type DayStep struct {
	Days int
}

func (s DayStep) Add(d Date, n int) Date { return d.AddDays(s.Days * n) }
func (s DayStep) String() string         { return fmt.Sprintf("%dd", s.Days) }

// CalendarStep is a calendar-relative period of whole months/years.
type CalendarStep struct {
	Years  int
	Months int
}

func (s CalendarStep) Add(d Date, n int) Date { return d.AddMonths((12*s.Years + s.Months) * n) }

func (s CalendarStep) String() string {
	switch {
	case s.Months == 0:
		return fmt.Sprintf("%dy", s.Years)
	case s.Years == 0:
		return fmt.Sprintf("%dm", s.Months)
	default:
		return fmt.Sprintf("%dy%dm", s.Years, s.Months)
	}
}

// =============================================================================
// CYCLE / PERIOD
// =============================================================================

// Cycle is one period-length window of a recurrence kind: [Start, End).
type Cycle struct {
	Start Date
	End   Date
}

// Contains reports whether d is in [Start, End).
func (c Cycle) Contains(d Date) bool {
	return d.AfterOrEqual(c.Start) && d.Before(c.End)
}

// Days returns every day in [Start, End).
func (c Cycle) Days() []Date {
	var days []Date
	for current := c.Start; current.Before(c.End); current = current.AddDays(1) {
		days = append(days, current)
	}
	return days
}

func (c Cycle) String() string {
	return "[" + c.Start.String() + ", " + c.End.String() + ")"
}

// Period is a closed projection interval [Start, End].
type Period struct {
	Start Date
	End   Date
}

// Contains returns true if d is within [Start, End].
func (p Period) Contains(d Date) bool {
	return d.AfterOrEqual(p.Start) && d.BeforeOrEqual(p.End)
}

// Validate fails with ErrInvalidRange unless Start < End.
func (p Period) Validate() error {
	if !p.Start.Before(p.End) {
		return &RangeError{Start: p.Start, End: p.End}
	}
	return nil
}

func (p Period) String() string {
	return "[" + p.Start.String() + ", " + p.End.String() + "]"
}
