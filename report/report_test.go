package report_test

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/cashflow-engine/cashflow"
	"github.com/warp/cashflow-engine/report"
)

func TestFormatMoney(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"0", "$0.00"},
		{"5", "$5.00"},
		{"999.999", "$1,000.00"},
		{"1234.5", "$1,234.50"},
		{"1234567.891", "$1,234,567.89"},
		{"-42.1", "-$42.10"},
		{"-100000", "-$100,000.00"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, report.FormatMoney(decimal.RequireFromString(tt.in)))
		})
	}
}

func point(d cashflow.Date, wiggle string) cashflow.Instance {
	return cashflow.Instance{
		Date:    d,
		Metrics: map[string]decimal.Decimal{cashflow.MetricWiggle: decimal.RequireFromString(wiggle)},
	}
}

func TestProductionLines(t *testing.T) {
	points := []cashflow.Instance{
		point(cashflow.NewDate(2025, time.January, 3), "200"),
		point(cashflow.NewDate(2025, time.January, 31), "2200"),
	}

	lines := report.ProductionLines(points, cashflow.NewDate(2025, time.January, 1))

	assert.Equal(t, []string{
		"2025-01-03 $200.00 (2 days later)",
		"2025-01-31 $2,200.00 (28 days later)",
	}, lines)

	lines = report.ProductionLines(points[:1], cashflow.Date{})
	assert.Equal(t, []string{"2025-01-03 $200.00"}, lines)
}

func TestGoalLines(t *testing.T) {
	results := []cashflow.GoalResult{
		{Scenario: cashflow.GoalScenario{Name: "Short"}, Value: decimal.RequireFromString("1120"), Progress: decimal.RequireFromString("50")},
		{Scenario: cashflow.GoalScenario{Name: "Much longer"}, Value: decimal.RequireFromString("2240"), Progress: decimal.RequireFromString("100")},
	}

	lines := report.GoalLines(results)

	assert.Equal(t, []string{
		"Short:       $1,120.00 (50.0%)",
		"Much longer: $2,240.00 (100.0%)",
	}, lines)
}

func TestWriteTimelineCSV(t *testing.T) {
	// GIVEN: A projected timeline
	// WHEN: Writing it as CSV
	// THEN: One header plus one row per instance, lead empty when no decline
	control := cashflow.ControlParameters{
		Current:        decimal.RequireFromString("500"),
		Reserve:        decimal.RequireFromString("100"),
		Now:            cashflow.NewDate(2025, time.January, 1),
		HorizonMonths:  1,
		BiweeklyAnchor: cashflow.NewDate(2025, time.January, 3),
	}
	offset := 0
	defs := map[cashflow.Kind][]cashflow.Definition{
		cashflow.KindBiweekly: {{Kind: cashflow.KindBiweekly, Name: "Pay", Amount: decimal.NewFromInt(1000), DayOffset: &offset, Account: "checking"}},
	}
	projection, err := cashflow.NewProjector(nil).ProjectHorizon(control, defs)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, report.WriteTimelineCSV(&buf, projection.Instances))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 1+len(projection.Instances))
	assert.Equal(t, report.TimelineColumns, rows[0])
	assert.Equal(t, []string{
		"2025-01-03", "biweekly", "Pay", "", "checking", "1000.00", "false", "",
		"0.00", "1000.00", "1500.00", "1400.00", "1400.00", "",
	}, rows[1])
}
