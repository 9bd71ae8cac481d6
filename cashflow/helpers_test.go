package cashflow_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/warp/cashflow-engine/cashflow"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func day(year int, month time.Month, d int) cashflow.Date {
	return cashflow.NewDate(year, month, d)
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func intPtr(n int) *int { return &n }

func datePtr(d cashflow.Date) *cashflow.Date { return &d }

func assertDecimal(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.Truef(t, dec(want).Equal(got), "want %s, got %s", want, got)
}

// testControl is a run starting 2025-01-01 with no balance and no reserve.
func testControl() cashflow.ControlParameters {
	return cashflow.ControlParameters{
		Current:        decimal.Zero,
		Reserve:        decimal.Zero,
		Now:            day(2025, time.January, 1),
		HorizonMonths:  3,
		BiweeklyAnchor: day(2025, time.January, 3),
	}
}

func lookup(t *testing.T, control cashflow.ControlParameters, cal cashflow.SecondaryCalendar, k cashflow.Kind) cashflow.Recurrence {
	t.Helper()
	rec, ok := cashflow.NewCatalog(control, cal).Lookup(k)
	if !ok {
		t.Fatalf("kind %s not in catalog", k)
	}
	return rec
}

// fakeCalendar maps chosen Gregorian days to secondary dates; every other
// day converts to the zero CalendarDate.
type fakeCalendar map[cashflow.Date]cashflow.CalendarDate

func (f fakeCalendar) FromGregorian(d cashflow.Date) cashflow.CalendarDate { return f[d] }

// entry is one row of a hand-built timeline.
type entry struct {
	date    cashflow.Date
	amount  string
	balance string
}

// withBalances builds instances already stamped with a balance metric.
func withBalances(entries ...entry) []cashflow.Instance {
	out := make([]cashflow.Instance, len(entries))
	for i, e := range entries {
		out[i] = cashflow.Instance{
			Date:    e.date,
			Name:    e.date.String(),
			Amount:  dec(e.amount),
			Metrics: map[string]decimal.Decimal{cashflow.MetricBalance: dec(e.balance)},
		}
	}
	return out
}

// withLatents builds instances already stamped with a latent metric.
func withLatents(dates []cashflow.Date, latents []string) []cashflow.Instance {
	out := make([]cashflow.Instance, len(dates))
	for i := range dates {
		out[i] = cashflow.Instance{
			Date:    dates[i],
			Metrics: map[string]decimal.Decimal{cashflow.MetricLatent: dec(latents[i])},
		}
	}
	return out
}
