/*
recurrence.go - Recurrence kinds and the catalog that binds them

PURPOSE:
  A recurrence kind says how often something repeats and where its cycles
  are anchored. The catalog binds each of the six kinds to a Step (one
  period), an anchor date and a DaySelector that picks concrete days out
  of each cycle.

THE CATALOG:
  Kind           Step       Anchor                 Selector
  yearly         1 year     Jan 1 of NOW's year    definition month/day in cycle year
  monthly        1 month    1st of NOW's month     day-of-month in cycle month
  biweekly       14 days    BIWEEKLY_START         cycle start + offset
  weekly         7 days     2018-04-01 (Sunday)    cycle start + offset
  one-time       1000 years 2018-01-01             definition date, unconditionally
  hebrew-yearly  1 year     2018-01-01             days whose Hebrew month/day match

ORDER MATTERS:
  Kinds are enumerated in catalog order. The timeline builder breaks
  same-day ties by this order, so output is reproducible.

SEE ALSO:
  - selectors.go: DaySelector implementations
  - expander.go: Walks a Recurrence's cycles
*/
package cashflow

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

// =============================================================================
// KIND - Tagged recurrence variant
// =============================================================================

type Kind int

const (
	KindYearly Kind = iota
	KindMonthly
	KindBiweekly
	KindWeekly
	KindOneTime
	KindHebrewYearly
)

// Kinds lists every kind in catalog order.
var Kinds = []Kind{KindYearly, KindMonthly, KindBiweekly, KindWeekly, KindOneTime, KindHebrewYearly}

var kindNames = map[Kind]string{
	KindYearly:       "yearly",
	KindMonthly:      "monthly",
	KindBiweekly:     "biweekly",
	KindWeekly:       "weekly",
	KindOneTime:      "one-time",
	KindHebrewYearly: "hebrew-yearly",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// ParseKind accepts canonical names and the legacy sheet names
// ("ONE-TIME", "YEARLY-HEBREW", "ONE_TIME").
func ParseKind(s string) (Kind, error) {
	norm := strings.ToLower(strings.TrimSpace(s))
	norm = strings.ReplaceAll(norm, "_", "-")
	if norm == "yearly-hebrew" {
		norm = "hebrew-yearly"
	}
	for k, name := range kindNames {
		if name == norm {
			return k, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

func (k Kind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

func (k *Kind) UnmarshalText(b []byte) error {
	parsed, err := ParseKind(string(b))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// =============================================================================
// RECURRENCE - One catalog entry
// =============================================================================

// Recurrence binds a kind to its period, anchor and day selector.
type Recurrence struct {
	Kind     Kind
	Step     Step
	Anchor   Date
	Selector DaySelector
}

// Boundary returns the start of the n-th cycle relative to the anchor.
func (r Recurrence) Boundary(n int) Date { return r.Step.Add(r.Anchor, n) }

// Fixed anchors for kinds not tied to NOW.
var (
	WeeklyAnchor  = NewDate(2018, time.April, 1)
	OneTimeAnchor = NewDate(2018, time.January, 1)
	HebrewAnchor  = NewDate(2018, time.January, 1)
)

// =============================================================================
// CATALOG
// =============================================================================

// Catalog is the fixed table of six recurrences.
type Catalog struct {
	entries []Recurrence
}

// NewCatalog builds the catalog for a run. cal converts Gregorian days to the
// Hebrew calendar and is called once per candidate day; Projector wraps it in
// a MemoizedCalendar that lives for the run.
func NewCatalog(control ControlParameters, cal SecondaryCalendar) *Catalog {
	now := control.Now
	return &Catalog{entries: []Recurrence{
		{Kind: KindYearly, Step: CalendarStep{Years: 1}, Anchor: StartOfYear(now.Year()), Selector: YearlySelector{}},
		{Kind: KindMonthly, Step: CalendarStep{Months: 1}, Anchor: StartOfMonth(now.Year(), now.Month()), Selector: MonthlySelector{}},
		{Kind: KindBiweekly, Step: DayStep{Days: 14}, Anchor: control.BiweeklyAnchor, Selector: OffsetSelector{}},
		{Kind: KindWeekly, Step: DayStep{Days: 7}, Anchor: WeeklyAnchor, Selector: OffsetSelector{}},
		{Kind: KindOneTime, Step: CalendarStep{Years: 1000}, Anchor: OneTimeAnchor, Selector: FixedDateSelector{}},
		{Kind: KindHebrewYearly, Step: CalendarStep{Years: 1}, Anchor: HebrewAnchor, Selector: CalendarDaySelector{Calendar: cal}},
	}}
}

// Entries returns the recurrences in catalog order.
func (c *Catalog) Entries() []Recurrence {
	out := make([]Recurrence, len(c.entries))
	copy(out, c.entries)
	return out
}

// Lookup returns the recurrence for a kind.
func (c *Catalog) Lookup(k Kind) (Recurrence, bool) {
	for _, r := range c.entries {
		if r.Kind == k {
			return r, true
		}
	}
	return Recurrence{}, false
}

// =============================================================================
// SECONDARY CALENDAR - Opaque Gregorian -> Hebrew conversion
// =============================================================================

// CalendarDate is a date in the secondary calendar.
type CalendarDate struct {
	Year  int
	Month int
	Day   int
}

// SecondaryCalendar converts Gregorian days. Implementations must be pure.
type SecondaryCalendar interface {
	FromGregorian(d Date) CalendarDate
}

// MemoizedCalendar caches conversions; safe for concurrent use. The cache is
// never evicted, so scope one to a single run.
type MemoizedCalendar struct {
	inner SecondaryCalendar

	mu    sync.Mutex
	cache map[Date]CalendarDate
}

func NewMemoizedCalendar(inner SecondaryCalendar) *MemoizedCalendar {
	return &MemoizedCalendar{inner: inner, cache: make(map[Date]CalendarDate)}
}

func (m *MemoizedCalendar) FromGregorian(d Date) CalendarDate {
	m.mu.Lock()
	defer m.mu.Unlock()
	if cd, ok := m.cache[d]; ok {
		return cd
	}
	cd := m.inner.FromGregorian(d)
	m.cache[d] = cd
	return cd
}

// Len returns the number of cached days.
func (m *MemoizedCalendar) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.cache)
}
