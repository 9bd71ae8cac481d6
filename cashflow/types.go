/*
Package cashflow provides the recurrence-expansion and aggregation engine.

PURPOSE:
  Turns a catalog of recurring financial events (paychecks, bills, annual
  costs, Hebrew-calendar holidays) into a dated, chronologically ordered
  timeline of occurrences, then derives running metrics over it: balance,
  spare capital ("wiggle"), near-term floor ("latent") and lead time.

KEY CONCEPTS IN THIS FILE (types.go):
  - Definition: A named recurring obligation or income, as loaded
  - Instance:   One concrete dated occurrence derived from a Definition
  - LeadTime:   Tagged result - known day count, or no decline foreseen

DESIGN PRINCIPLES:
  1. Values, not references: instances are built by field-by-field copy,
     so stamping metrics never touches the definition it came from
  2. Precision: all money is decimal.Decimal
  3. Explicit inputs: ControlParameters are passed into every call, there
     is no process-wide configuration
  4. Fail fast: any malformed definition aborts the whole run

PIPELINE:
  Catalog -> Expand -> BuildTimeline -> Aggregate -> CalculateWiggle
          -> CalculateLatent -> CalculateLeadTime -> ProductionPoints

SEE ALSO:
  - recurrence.go: Kinds and the catalog
  - projection.go: Runs the pipeline in order
*/
package cashflow

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// =============================================================================
// DEFINITION - A recurring event as configured
// =============================================================================

// Definition is a recurring obligation (negative Amount) or income (positive).
// Kind-specific fields are optional pointers; each DaySelector checks the ones
// it needs and fails with MissingFieldError otherwise.
type Definition struct {
	ID      string
	Kind    Kind
	Name    string
	Amount  decimal.Decimal
	Class   string // category, e.g. "housing", "salary"
	Account string // target account the money moves to/from
	Auto    bool   // paid automatically
	Notes   string

	// Optional validity window, inclusive on both ends.
	EarliestValid *Date
	LatestValid   *Date

	// Kind-specific fields
	DayOfMonth  *int   // monthly
	DayOffset   *int   // biweekly/weekly: days after the cycle anchor
	Date        *Date  // yearly (month/day used), one-time (used as-is)
	CalendarDay string // hebrew-yearly: "month, day" in the Hebrew calendar
}

// ValidOn reports whether d falls inside the definition's validity window.
func (def Definition) ValidOn(d Date) bool {
	if def.EarliestValid != nil && d.Before(*def.EarliestValid) {
		return false
	}
	if def.LatestValid != nil && d.After(*def.LatestValid) {
		return false
	}
	return true
}

// IsIncome is true for positive amounts. Income ends a wiggle segment.
func (def Definition) IsIncome() bool { return def.Amount.IsPositive() }

// =============================================================================
// INSTANCE - One dated occurrence
// =============================================================================

// Instance is one concrete dated occurrence of a Definition.
type Instance struct {
	Date         Date
	Kind         Kind
	DefinitionID string
	Name         string
	Amount       decimal.Decimal
	Class        string
	Account      string
	Auto         bool
	Notes        string

	// Stamped by Aggregate and the calculators.
	Metrics map[string]decimal.Decimal
	Lead    LeadTime
}

// NewInstance copies every carried-over field of def onto a fresh value.
func NewInstance(def Definition, date Date) Instance {
	return Instance{
		Date:         date,
		Kind:         def.Kind,
		DefinitionID: def.ID,
		Name:         def.Name,
		Amount:       def.Amount,
		Class:        def.Class,
		Account:      def.Account,
		Auto:         def.Auto,
		Notes:        def.Notes,
	}
}

// Clone returns a deep copy; the metric map is not shared.
func (in Instance) Clone() Instance {
	out := in
	if in.Metrics != nil {
		out.Metrics = make(map[string]decimal.Decimal, len(in.Metrics))
		for k, v := range in.Metrics {
			out.Metrics[k] = v
		}
	}
	return out
}

// Metric returns a stamped value and whether it was present.
func (in Instance) Metric(name string) (decimal.Decimal, bool) {
	v, ok := in.Metrics[name]
	return v, ok
}

func (in *Instance) setMetric(name string, v decimal.Decimal) {
	if in.Metrics == nil {
		in.Metrics = make(map[string]decimal.Decimal, 8)
	}
	in.Metrics[name] = v
}

func (in Instance) Balance() decimal.Decimal  { return in.Metrics[MetricBalance] }
func (in Instance) Wiggle() decimal.Decimal   { return in.Metrics[MetricWiggle] }
func (in Instance) Latent() decimal.Decimal   { return in.Metrics[MetricLatent] }
func (in Instance) Expenses() decimal.Decimal { return in.Metrics[MetricExpenses] }
func (in Instance) Income() decimal.Decimal   { return in.Metrics[MetricIncome] }

// IsIncome is true for positive amounts.
func (in Instance) IsIncome() bool { return in.Amount.IsPositive() }

func (in Instance) String() string {
	return fmt.Sprintf("%s %s %s", in.Date, in.Name, in.Amount.StringFixed(2))
}

// =============================================================================
// LEAD TIME - Tagged result
// =============================================================================

// LeadTime is either a known number of days until the latent floor next
// drops, or NoDecline when nothing in the horizon is lower.
type LeadTime struct {
	days  int
	known bool
}

// NoDecline means no later instance has a strictly smaller latent floor.
var NoDecline = LeadTime{}

// KnownLead builds a lead time of n days.
func KnownLead(n int) LeadTime { return LeadTime{days: n, known: true} }

// Days returns the day count and whether it is known.
func (l LeadTime) Days() (int, bool) { return l.days, l.known }

func (l LeadTime) IsKnown() bool { return l.known }

// String renders "PRODUCTION" for NoDecline, matching the report column.
func (l LeadTime) String() string {
	if !l.known {
		return "PRODUCTION"
	}
	return fmt.Sprintf("%d", l.days)
}
